package strategies

// Noop never trades. It is the baseline every other strategy should beat.
type Noop struct{}

func (Noop) Name() string { return "noop" }

func (Noop) GenerateSignals(prices []float64) []Signal {
	return holdAll(len(prices))
}
