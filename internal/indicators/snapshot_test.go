package indicators

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultSnapshotConfig_RequiredPeriods(t *testing.T) {
	assert.Equal(t, 50, DefaultSnapshotConfig().RequiredPeriods())
}

func TestNewSnapshot(t *testing.T) {
	cfg := DefaultSnapshotConfig()

	short := NewSnapshot(generateRealisticData(30), cfg)
	assert.False(t, short.Complete())
	assert.False(t, short.EMASlow.Valid)
	assert.True(t, short.RSI.Valid)

	full := NewSnapshot(generateRealisticData(120), cfg)
	assert.True(t, full.Complete())
	assert.GreaterOrEqual(t, full.RSI.Value, 0.0)
	assert.LessOrEqual(t, full.RSI.Value, 100.0)
	assert.Greater(t, full.ATR.Value, 0.0)

	assert.False(t, NewSnapshot(nil, cfg).Complete())
}

func TestNewSnapshot_Idempotent(t *testing.T) {
	data := generateRealisticData(120)
	cfg := DefaultSnapshotConfig()

	assert.Equal(t, NewSnapshot(data, cfg), NewSnapshot(data, cfg))
}
