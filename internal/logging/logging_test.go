package logging

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"github.com/Hitesh-Saha/FeastAI/config"
)

func TestNewFormatterByEnvironment(t *testing.T) {
	prod := New("debug", config.Production)
	assert.IsType(t, &logrus.JSONFormatter{}, prod.Formatter)
	assert.Equal(t, logrus.DebugLevel, prod.Level)

	dev := New("warn", config.Development)
	assert.IsType(t, &logrus.TextFormatter{}, dev.Formatter)
	assert.Equal(t, logrus.WarnLevel, dev.Level)
}

func TestNewFallsBackToInfo(t *testing.T) {
	log := New("chatty", config.Test)
	assert.Equal(t, logrus.InfoLevel, log.Level)
}
