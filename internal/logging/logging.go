package logging

import (
	"os"

	"github.com/sirupsen/logrus"
)

// New returns the process logger: JSON in prod, coloured text otherwise.
// LOG_LEVEL overrides the default info level.
func New(env string) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stdout)

	if env == "prod" {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	log.SetLevel(logrus.InfoLevel)
	if lvl, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil {
		log.SetLevel(lvl)
	}
	return log
}
