package logger

import (
	"order-payment-engine/internal/config"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// New builds the process logger from the LOG_* settings.
func New(cfg config.Log) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stdout)

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
		log.Warnf("invalid LOG_LEVEL %q, using %s", cfg.Level, level)
	}
	log.SetLevel(level)

	if strings.EqualFold(cfg.Format, "text") {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		log.SetFormatter(&logrus.JSONFormatter{})
	}

	return log
}
