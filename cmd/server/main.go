package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"image-editor/internal/config"
	"image-editor/internal/detector"
	imageio "image-editor/internal/io"
	"image-editor/internal/logger"
	"image-editor/internal/transport"
)

func main() {
	debugMode := flag.Bool("debug", false, "Enable debug mode with verbose logging")
	configPath := flag.String("config", "", "Path to a TOML configuration file")
	flag.Parse()

	log := logger.New(*debugMode)
	if !*debugMode {
		gin.SetMode(gin.ReleaseMode)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.WithError(err).Fatal("Failed to load configuration")
	}

	loader := imageio.NewImageLoader(cfg.Editor.SupportedFormats, cfg.Editor.JPEGQuality, log)

	var det detector.FaceDetector
	if d, err := detector.FromConfig(cfg, log); err != nil {
		log.WithError(err).Warn("Face detection disabled")
	} else {
		det = d
		defer d.Close()
	}

	server := &http.Server{
		Addr:         cfg.ServerAddress(),
		Handler:      transport.NewHandler(loader, det, cfg, log),
		ReadTimeout:  cfg.Server.RequestTimeout,
		WriteTimeout: cfg.Server.RequestTimeout,
	}

	go func() {
		log.WithFields(logrus.Fields{
			"address": cfg.ServerAddress(),
			"timeout": cfg.Server.RequestTimeout,
		}).Info("Starting HTTP server")

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.WithError(err).Error("Server forced to shutdown")
	}

	logger.LogResources(log, "shutdown")
	log.Info("Server exited")
}
