package main

import (
	"fmt"
	"os"

	"image-steganography/config"
	"image-steganography/handlers"
	"image-steganography/logging"
	"image-steganography/metrics"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid logging configuration: %v\n", err)
		os.Exit(1)
	}

	gin.SetMode(gin.ReleaseMode)
	gin.DefaultWriter = logger.Writer()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	stegoHandler := handlers.NewStegoHandler(cfg.StegoConfig(), cfg.PSNRThreshold, cfg.MaxUploadMB, m, logger)
	router := handlers.SetupRouter(stegoHandler, m, registry, cfg.CORSOrigins)

	logger.WithField("port", cfg.Port).Info("Server starting")
	logger.Info("API endpoints:")
	logger.Info("  POST /api/v1/stego/insert   - Embed a secret file into an image (returns stego image)")
	logger.Info("  POST /api/v1/stego/extract  - Extract the secret file from a stego image")
	logger.Info("  POST /api/v1/stego/capacity - Report how many payload bytes an image can carry")
	logger.Info("  GET  /api/v1/health         - Health check")
	logger.Info("  GET  /metrics               - Prometheus metrics")
	logger.WithFields(logrus.Fields{
		"header_width": cfg.Stego.HeaderWidth,
		"channels":     cfg.Stego.Channels,
		"compress":     cfg.Stego.Compress,
	}).Info("Protocol defaults")

	if err := router.Run(":" + cfg.Port); err != nil {
		logger.WithError(err).Fatal("Failed to start server")
	}
}
