package models

import "strings"

type StrategyType string

const (
	StrategyDefault StrategyType = "default"
)

// ParseStrategy returns ok=false for names the bot does not know.
func ParseStrategy(raw string) (StrategyType, bool) {
	switch StrategyType(strings.ToLower(strings.TrimSpace(raw))) {
	case StrategyDefault, "base", "":
		return StrategyDefault, true
	default:
		return StrategyDefault, false
	}
}

// RiskDirection is the side of a rate position. Zero value means "no position"
// or, as a decision, "no trade".
type RiskDirection int

const (
	RiskDirectionNone RiskDirection = iota
	RiskDirectionReceiver
	RiskDirectionPayer
)

func (d RiskDirection) String() string {
	switch d {
	case RiskDirectionReceiver:
		return "Receiver"
	case RiskDirectionPayer:
		return "Payer"
	default:
		return "None"
	}
}

// Wire value used by the venue: 0 = receiver, 1 = payer.
func (d RiskDirection) Wire() int {
	if d == RiskDirectionPayer {
		return 1
	}
	return 0
}
