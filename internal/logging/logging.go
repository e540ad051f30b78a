package logging

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/Hitesh-Saha/FeastAI/config"
)

// New builds the process logger. Production logs are JSON for the collector;
// everything else gets the human-readable text formatter.
func New(level string, env config.Environment) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stdout)

	if env.IsProduction() {
		log.SetFormatter(&logrus.JSONFormatter{
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "timestamp",
				logrus.FieldKeyLevel: "severity",
				logrus.FieldKeyMsg:   "message",
			},
		})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)
	return log
}

// Discard returns a logger that drops everything, for tests.
func Discard() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}
