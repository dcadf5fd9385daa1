package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grunnlag/internal/platform/config"
)

func TestNewWithWriter(t *testing.T) {
	t.Run("json at configured level", func(t *testing.T) {
		var buf bytes.Buffer
		log := NewWithWriter(config.LogConfig{Level: "warn", Format: "json"}, &buf)

		log.Info("hidden")
		log.Warn("shown", "sak_id", 42)

		var line map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
		assert.Equal(t, "shown", line["msg"])
		assert.Equal(t, "grunnlag", line["service"])
		assert.Equal(t, float64(42), line["sak_id"])
	})

	t.Run("unknown level falls back to info", func(t *testing.T) {
		var buf bytes.Buffer
		log := NewWithWriter(config.LogConfig{Level: "chatty", Format: "text"}, &buf)

		log.Debug("hidden")
		log.Info("shown")
		assert.NotContains(t, buf.String(), "hidden")
		assert.Contains(t, buf.String(), "msg=shown")
	})
}
