package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var entries []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &entry), "line %q", line)
		entries = append(entries, entry)
	}
	return entries
}

func TestNew(t *testing.T) {
	for _, env := range []string{"development", "production"} {
		l := New(env, "")
		require.NotNil(t, l)
		assert.NotNil(t, l.GetZerolog())
	}
}

func TestResolveLevel(t *testing.T) {
	tests := []struct {
		env, level string
		want       zerolog.Level
	}{
		{"development", "", zerolog.DebugLevel},
		{"production", "", zerolog.InfoLevel},
		{"production", "WARN", zerolog.WarnLevel},
		{"development", "error", zerolog.ErrorLevel},
		{"production", "chatty", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.env+"/"+tt.level, func(t *testing.T) {
			assert.Equal(t, tt.want, resolveLevel(tt.env, tt.level))
		})
	}
}

func TestLevelsAndFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, zerolog.DebugLevel)

	l.Debug("valuing parcel", map[string]interface{}{"location": "Brufut", "months": 12})
	l.Info("portfolio summarized", map[string]interface{}{"parcels": 3})
	l.Warn("parcel skipped", map[string]interface{}{"reason": "missing purchase date"})
	l.Error("fx refresh failed", errors.New("timeout"), map[string]interface{}{"provider": "fxrates"})

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 4)

	assert.Equal(t, "debug", entries[0]["level"])
	assert.Equal(t, "Brufut", entries[0]["location"])
	assert.Equal(t, float64(12), entries[0]["months"])
	assert.Equal(t, "info", entries[1]["level"])
	assert.Equal(t, "warn", entries[2]["level"])
	assert.Equal(t, "missing purchase date", entries[2]["reason"])
	assert.Equal(t, "error", entries[3]["level"])
	assert.Equal(t, "timeout", entries[3]["error"])
	assert.Equal(t, "fx refresh failed", entries[3]["message"])
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, zerolog.InfoLevel)

	l.Debug("hidden", nil)
	l.Info("shown", nil)

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "shown", entries[0]["message"])
}

func TestChildLoggers(t *testing.T) {
	var buf bytes.Buffer
	base := NewWithWriter(&buf, zerolog.InfoLevel)

	base.WithRequestID("req-42").
		WithComponent("fxrate").
		With(map[string]interface{}{"symbol": "GMD"}).
		Info("rate cached", nil)

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "req-42", entries[0]["request_id"])
	assert.Equal(t, "fxrate", entries[0]["component"])
	assert.Equal(t, "GMD", entries[0]["symbol"])
}

func TestNop(t *testing.T) {
	l := Nop()
	assert.NotPanics(t, func() {
		l.Info("nothing", map[string]interface{}{"a": 1})
		l.Error("nothing", errors.New("x"), nil)
	})
}
