package logger

import (
	"runtime"

	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"
)

// LogResources reports heap usage and the number of live gocv Mats at debug
// level. The Mat count is only non-zero in builds with the matprofile tag.
func LogResources(logger *logrus.Logger, stage string) {
	if !logger.IsLevelEnabled(logrus.DebugLevel) {
		return
	}

	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	logger.WithFields(logrus.Fields{
		"stage":      stage,
		"alloc_mb":   float64(m.Alloc) / 1024 / 1024,
		"sys_mb":     float64(m.Sys) / 1024 / 1024,
		"num_gc":     m.NumGC,
		"goroutines": runtime.NumGoroutine(),
		"open_mats":  gocv.MatProfile.Count(),
	}).Debug("Resource usage")
}
