package risk

import (
	"fmt"
	"math"
)

const (
	CodeNoSize        = "NO_SIZE"
	CodeAlreadyOpen   = "ALREADY_OPEN"
	CodeTooManyTrades = "TOO_MANY_OPEN_TRADES"
	CodeTooLarge      = "POSITION_TOO_LARGE"
	CodeDailyLoss     = "DAILY_LOSS_LIMIT"
)

type Violation struct {
	Code string
	Msg  string
}

type Decision struct {
	Allowed    bool
	Violations []Violation

	Size        float64
	MaxPosition float64
}

func (d *Decision) add(code, msg string) {
	d.Violations = append(d.Violations, Violation{Code: code, Msg: msg})
	d.Allowed = false
}

// Reason is the code of the first violation, or "" when allowed.
func (d Decision) Reason() string {
	if len(d.Violations) == 0 {
		return ""
	}
	return d.Violations[0].Code
}

// Evaluate runs every entry check for a new position of size in symbol and
// collects the violations. It does not mutate the Manager.
func (m *Manager) Evaluate(symbol string, size float64) Decision {
	d := Decision{Allowed: true, Size: size, MaxPosition: m.MaxPosition()}

	if !(size > 0) || math.IsInf(size, 0) {
		d.add(CodeNoSize, fmt.Sprintf("size must be positive, got %v", size))
		return d
	}

	if m.Halted() {
		d.add(CodeDailyLoss,
			fmt.Sprintf("daily loss %.2f exceeds limit %.2f",
				m.dailyLoss, m.capital*m.params.MaxDailyLossFraction))
	}
	if _, ok := m.open[symbol]; ok {
		d.add(CodeAlreadyOpen, fmt.Sprintf("%s already has an open trade", symbol))
	}
	if !m.CanOpenTrade() {
		d.add(CodeTooManyTrades,
			fmt.Sprintf("open trades %d >= max %d", len(m.open), m.params.MaxOpenTrades))
	}
	if !m.CheckPositionSize(symbol, size) {
		d.add(CodeTooLarge,
			fmt.Sprintf("size %.2f exceeds max %.2f (%.2f%% of %.2f)",
				size, d.MaxPosition, 100*m.params.MaxPositionSizeFraction, m.capital))
	}

	return d
}
