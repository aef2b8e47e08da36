package logging

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHandler_RenamesErrorKeyAndFiltersLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newHandler(&buf, slog.LevelWarn))

	logger.Info("hidden")
	logger.Warn("API request failed", "error", errors.New("connection refused"), "endpoint", "login")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `err="connection refused"`)
	assert.Contains(t, out, "endpoint=login")
}
