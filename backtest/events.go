package backtest

import "time"

type EventKind string

const (
	Enter    EventKind = "enter"
	Exit     EventKind = "exit"
	Rejected EventKind = "rejected"
)

// Exit and rejection reasons that are not risk violation codes.
const (
	ReasonSignal     = "signal"
	ReasonStopLoss   = "stop_loss"
	ReasonTakeProfit = "take_profit"
)

// Event is a position transition, or an entry the risk manager refused.
// A live caller turns these into orders.
type Event struct {
	ID     string
	Kind   EventKind
	Symbol string
	Bar    int
	Time   time.Time
	Price  float64
	Size   float64
	// Net return of the round trip, set on Exit.
	Return float64
	Reason string
}

// Listener receives events as a run produces them, in bar order.
type Listener interface {
	OnEvent(Event)
}

// ListenerFunc adapts a function to Listener.
type ListenerFunc func(Event)

func (f ListenerFunc) OnEvent(e Event) { f(e) }
