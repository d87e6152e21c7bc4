package app

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/izzsandya6-dev/gemini-ai-health/internal/config"
)

// NewLogger builds the process logger. Output goes to stderr so command
// output on stdout stays machine readable.
func NewLogger(cfg config.LogConfig) (*logrus.Logger, error) {
	return newLogger(cfg, os.Stderr)
}

func newLogger(cfg config.LogConfig, out io.Writer) (*logrus.Logger, error) {
	log := logrus.New()
	log.SetOutput(out)

	level := logrus.WarnLevel
	if cfg.Level != "" {
		parsed, err := logrus.ParseLevel(cfg.Level)
		if err != nil {
			return nil, fmt.Errorf("parse log level: %w", err)
		}
		level = parsed
	}
	log.SetLevel(level)

	if cfg.Format == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return log, nil
}
