package logger

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComponentLoggers(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")

	var buf bytes.Buffer
	InitWithWriter(&buf)

	ForCrawler("TrueID").Info().Msg("scraping collection")
	ForStore().Warn().Msg("cache file missing")
	LogError("worker", errors.New("boom"), "refresh failed after %d recipes", 3)

	out := buf.String()
	assert.Contains(t, out, "crawler=TrueID")
	assert.Contains(t, out, "scraping collection")
	assert.Contains(t, out, "component=store")
	assert.Contains(t, out, "refresh failed after 3 recipes")
	assert.Contains(t, out, "boom")
	assert.True(t, IsDebugEnabled())
}

func TestLogLevelFromEnvironment(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("MENU_ENVIRONMENT", "production")
	assert.Equal(t, "info", getLogLevel().String())

	t.Setenv("LOG_LEVEL", "warn")
	assert.Equal(t, "warn", getLogLevel().String())

	t.Setenv("LOG_LEVEL", "nonsense")
	assert.Equal(t, "info", getLogLevel().String())
}
