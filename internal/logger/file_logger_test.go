package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, zerolog.WarnLevel, ParseLevel(" warn "))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel(""))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("verbose"))
}

func TestLogger_LogSignal(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriter(&buf, "info")

	l.LogSignal("BTC_USDT", "breakout", "LONG", 105, 105, 102, "close above previous high")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "signal computed", entry["message"])
	assert.Equal(t, "BTC_USDT", entry["symbol"])
	assert.Equal(t, "LONG", entry["direction"])
	assert.Equal(t, 102.0, entry["stop_loss"])
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriter(&buf, "warn")

	l.Info("hidden %d", 1)
	assert.Zero(t, buf.Len())

	l.LogError("fetch failed", errors.New("status 503"))
	assert.Contains(t, buf.String(), "status 503")
}

func TestLogger_FileSink(t *testing.T) {
	dir := t.TempDir()
	l, err := New(Options{Level: "info", LogDir: dir, Symbol: "ETHUSDT", Interval: "1h"})
	require.NoError(t, err)

	l.With("backtest").LogBacktest("ETHUSDT", "confluence", 3, 2, 1, 66.6, 1.2)
	require.NoError(t, l.Close())

	content, err := os.ReadFile(l.GetLogPath())
	require.NoError(t, err)
	assert.Contains(t, string(content), `"component":"backtest"`)
	assert.Contains(t, string(content), `"trades":3`)
}

func TestNop(t *testing.T) {
	l := Nop()
	l.Info("nothing")
	assert.NoError(t, l.Close())
}
