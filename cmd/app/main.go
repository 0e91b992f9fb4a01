package main

import (
	"context"
	"flag"
	"os"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/theme"
	"github.com/sirupsen/logrus"

	"image-editor/internal/config"
	"image-editor/internal/core"
	"image-editor/internal/detector"
	"image-editor/internal/gui"
	imageio "image-editor/internal/io"
	"image-editor/internal/logger"
)

const (
	AppName    = "Image Editing App"
	AppID      = "com.imageeditor.desktop"
	AppVersion = "1.0.0"
)

func main() {
	debugMode := flag.Bool("debug", false, "Enable debug mode with verbose logging")
	configPath := flag.String("config", "", "Path to a TOML configuration file")
	flag.Parse()

	log := logger.New(*debugMode)
	log.WithFields(logrus.Fields{
		"version":    AppVersion,
		"debug_mode": *debugMode,
		"config":     *configPath,
	}).Info("Starting Image Editing App")

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.WithError(err).Fatal("Failed to load configuration")
	}

	loader := imageio.NewImageLoader(cfg.Editor.SupportedFormats, cfg.Editor.JPEGQuality, log)

	// The editor stays usable without a cascade; only detection is refused.
	var det detector.FaceDetector
	if d, err := detector.FromConfig(cfg, log); err != nil {
		log.WithError(err).Warn("Face detection disabled")
	} else {
		det = d
	}

	session := core.NewSession(loader, det, cfg.Editor.OutputPath, log)

	myApp := app.NewWithID(AppID)
	myApp.SetIcon(theme.DocumentIcon())
	myApp.Settings().SetTheme(theme.DefaultTheme())

	mainApp := gui.NewApplication(myApp, cfg, session, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if *configPath != "" {
		go func() {
			err := config.Watch(ctx, *configPath, log, func(updated *config.Config) {
				fyne.Do(func() { mainApp.ApplyConfig(updated) })
			})
			if err != nil && ctx.Err() == nil {
				log.WithError(err).Warn("Configuration watching stopped")
			}
		}()
	}

	mainApp.ShowAndRun()

	log.Info("Application shutting down gracefully")
	cancel()
	os.Exit(0)
}
