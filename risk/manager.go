// Package risk enforces portfolio limits for a single backtest run:
// position size, open trade count, daily loss, stop loss and take profit.
package risk

import (
	"math"
	"sort"
	"time"

	"github.com/rustyeddy/backtester/market"
)

// TradeInfo describes an open trade.
type TradeInfo struct {
	EntryPrice float64
	Quantity   float64
	OpenedAt   time.Time
	Bar        int
}

// Exit is the outcome of a stop-loss / take-profit check.
type Exit int

const (
	NoExit Exit = iota
	StopLoss
	TakeProfit
)

func (e Exit) String() string {
	switch e {
	case StopLoss:
		return "stop_loss"
	case TakeProfit:
		return "take_profit"
	default:
		return "none"
	}
}

// Manager holds the risk state of one run. The check methods do not
// mutate; callers check first and then record with RegisterTrade.
//
// A Manager is not safe for concurrent use. Concurrent backtests each need
// their own Manager.
type Manager struct {
	params  Params
	initial float64

	capital   float64
	dailyLoss float64
	open      map[string]TradeInfo
}

// NewManager validates params and returns a Manager starting at capital.
func NewManager(capital float64, params Params) (*Manager, error) {
	if math.IsNaN(capital) || math.IsInf(capital, 0) || capital <= 0 {
		return nil, market.Configf("capital", "must be a positive number, got %v", capital)
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &Manager{
		params:  params,
		initial: capital,
		capital: capital,
		open:    map[string]TradeInfo{},
	}, nil
}

func (m *Manager) Params() Params       { return m.params }
func (m *Manager) Capital() float64     { return m.capital }
func (m *Manager) DailyLoss() float64   { return m.dailyLoss }
func (m *Manager) OpenTrades() int      { return len(m.open) }
func (m *Manager) MaxPosition() float64 { return m.capital * m.params.MaxPositionSizeFraction }

// Symbols returns the symbols with an open trade, sorted.
func (m *Manager) Symbols() []string {
	out := make([]string, 0, len(m.open))
	for s := range m.open {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

func (m *Manager) Trade(symbol string) (TradeInfo, bool) {
	t, ok := m.open[symbol]
	return t, ok
}

// CheckPositionSize reports whether size fits within the per-position
// limit. The symbol does not affect the result.
func (m *Manager) CheckPositionSize(symbol string, size float64) bool {
	return !(size > m.MaxPosition())
}

func (m *Manager) CanOpenTrade() bool {
	return len(m.open) < m.params.MaxOpenTrades
}

// RegisterTrade records an open trade without re-checking limits.
func (m *Manager) RegisterTrade(symbol string, t TradeInfo) {
	m.open[symbol] = t
}

// CloseTrade forgets symbol's trade. Closing an unknown symbol is a no-op.
func (m *Manager) CloseTrade(symbol string) {
	delete(m.open, symbol)
}

// CheckStopLossTakeProfit compares current against entry. Stop loss is
// checked first.
func (m *Manager) CheckStopLossTakeProfit(entry, current float64) Exit {
	change := Change(entry, current)
	switch {
	case change <= -m.params.StopLossFraction:
		return StopLoss
	case change >= m.params.TakeProfitFraction:
		return TakeProfit
	default:
		return NoExit
	}
}

// CheckDailyLoss adds loss to the daily accumulator and returns false once
// the total exceeds the daily limit. It stays false until ResetDailyLoss.
func (m *Manager) CheckDailyLoss(loss float64) bool {
	m.dailyLoss += loss
	return !m.Halted()
}

// Halted reports whether the daily loss limit has been exceeded.
func (m *Manager) Halted() bool {
	return m.dailyLoss > m.capital*m.params.MaxDailyLossFraction
}

func (m *Manager) ResetDailyLoss() {
	m.dailyLoss = 0
}

// Realize applies a realized profit or loss to capital.
func (m *Manager) Realize(pnl float64) {
	m.capital += pnl
	if m.capital < 0 && !m.params.AllowNegativeCapital {
		m.capital = 0
	}
}

// Reset returns the Manager to its starting capital with no open trades.
func (m *Manager) Reset() {
	m.capital = m.initial
	m.dailyLoss = 0
	m.open = map[string]TradeInfo{}
}
