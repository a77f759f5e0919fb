package app

import (
	"github.com/timmy/contentfactory/internal/config"
	"github.com/timmy/contentfactory/internal/logger"
)

// SetupLogging installs the configured logger as the process default.
func SetupLogging(cfg config.LogConfig) *logger.Logger {
	opts := logger.Options{Level: cfg.Level, Format: cfg.Format}
	if cfg.File != "" {
		opts.File = &logger.Rotation{
			Path:       cfg.File,
			MaxSizeMB:  cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAgeDays: cfg.MaxAge,
			Compress:   cfg.Compress,
		}
		opts.FileOnly = cfg.FileOnly
	}
	l := logger.New(opts)
	logger.SetDefaultLogger(l)
	return l
}
