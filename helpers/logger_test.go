package helpers

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogger(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "error.log")

	logger := NewLogger(tmpFile)

	logger.LogError("TrueIDCrawler", errors.New("test error"))
	logger.LogError("Kapook", errors.New("second error"))

	data, err := os.ReadFile(tmpFile)
	assert.NoError(t, err)
	assert.Contains(t, string(data), "[TrueIDCrawler] test error")
	assert.Contains(t, string(data), "[Kapook] second error")

	// Info messages go to the structured logger, not the file
	logger.LogInfo("Test info message: %s", "hello")
	data, err = os.ReadFile(tmpFile)
	assert.NoError(t, err)
	assert.NotContains(t, string(data), "hello")
}

func TestLoggerWithoutFile(t *testing.T) {
	logger := NewLogger("")
	assert.NotPanics(t, func() {
		logger.LogError("Worker", errors.New("no file configured"))
	})
}
