package main

import (
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"steelforecast/config"
	shttp "steelforecast/http"
	"steelforecast/logging"
	"steelforecast/ml"
	"steelforecast/monitoring"
)

func main() {
	configPath := os.Getenv("STEEL_CONFIG")
	if configPath == "" {
		configPath = "config.yaml"
	}

	// 1. Load config
	cfg, err := config.Load(configPath)
	if err != nil {
		zap.NewExample().Fatal("failed to load config", zap.String("path", configPath), zap.Error(err))
	}

	logger, err := logging.New(logging.Options{
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
		Compress:   cfg.Log.Compress,
	})
	if err != nil {
		zap.NewExample().Fatal("failed to build logger", zap.Error(err))
	}
	defer logger.Sync()

	// 2. Load model artifacts, once, before serving
	paths := ml.ArtifactPaths{
		Dir:            cfg.Models.Dir,
		Regression:     cfg.Models.Regression,
		Classification: cfg.Models.Classification,
		LabelEncoder:   cfg.Models.LabelEncoder,
	}
	loader := ml.NewLoader(paths, logger)
	bundle, err := loader.Load()
	if err != nil {
		logger.Fatal("model artifacts unavailable", zap.Error(err))
	}

	var watcher *ml.ArtifactWatcher
	if cfg.Models.Watch {
		watcher, err = ml.NewArtifactWatcher(paths, logger)
		if err != nil {
			logger.Warn("artifact watcher disabled", zap.Error(err))
		} else {
			defer watcher.Close()
		}
	}

	service, err := ml.NewService(bundle, ml.WithCache(cfg.Predict.CacheSize), ml.WithLogger(logger))
	if err != nil {
		logger.Fatal("failed to build prediction service", zap.Error(err))
	}

	handler, err := shttp.NewHandler(shttp.HandlerOptions{
		Predictor:        service,
		ModelsLoaded:     loader.Loaded,
		ArtifactsChanged: watcher.Changed,
		Logger:           logger,
		Metrics:          monitoring.NewMetricsCollector(),
		MaxMessageBytes:  cfg.Http.MaxBodyBytes,
	})
	if err != nil {
		logger.Fatal("failed to build handler", zap.Error(err))
	}

	// 3. Start HTTP server
	server := shttp.NewServer(shttp.ServerConfig{
		Port:         cfg.Http.Port,
		ReadTimeout:  cfg.Http.ReadTimeout,
		WriteTimeout: cfg.Http.WriteTimeout,
		MaxBodyBytes: cfg.Http.MaxBodyBytes,
	}, handler, logger)
	go func() {
		if err := server.Start(); err != nil {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// 4. Handle graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	if err := server.Stop(); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}

	logger.Info("exiting")
}
