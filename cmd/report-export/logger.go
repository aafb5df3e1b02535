package main

import (
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/goliatone/go-report-export/internal/config"
)

func newLogger(cfg config.Logging, out io.Writer) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(out)

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
		logger.WithError(err).Warn("invalid log level, using info")
	}
	logger.SetLevel(level)

	switch cfg.Format {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339,
		})
	default:
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.RFC3339,
		})
	}
	return logger
}

// component returns a logger entry usable as export.Logger.
func component(logger *logrus.Logger, name string) *logrus.Entry {
	return logger.WithField("component", name)
}
