package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseStrategy(t *testing.T) {
	for _, raw := range []string{"default", " DEFAULT ", "base", ""} {
		st, ok := ParseStrategy(raw)
		assert.True(t, ok, raw)
		assert.Equal(t, StrategyDefault, st)
	}

	st, ok := ParseStrategy("momentum")
	assert.False(t, ok)
	assert.Equal(t, StrategyDefault, st)
}

func TestRiskDirection(t *testing.T) {
	assert.Equal(t, "Receiver", RiskDirectionReceiver.String())
	assert.Equal(t, "Payer", RiskDirectionPayer.String())
	assert.Equal(t, "None", RiskDirectionNone.String())

	assert.Equal(t, 0, RiskDirectionReceiver.Wire())
	assert.Equal(t, 1, RiskDirectionPayer.Wire())
}
