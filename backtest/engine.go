// Package backtest replays a price series bar by bar through a strategy,
// applying costs and optional risk limits, and reports the per-bar returns
// and performance metrics.
package backtest

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/rustyeddy/backtester/market"
	"github.com/rustyeddy/backtester/metrics"
	"github.com/rustyeddy/backtester/pkg/id"
	"github.com/rustyeddy/backtester/risk"
	"github.com/rustyeddy/backtester/strategies"
)

// DefaultSeed seeds event IDs unless WithSeed is given.
const DefaultSeed = 1

type Option func(*Engine)

func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// WithListener sends every event of Run to l. Walk-forward windows do not
// notify listeners; their events are in each WindowResult.
func WithListener(l Listener) Option {
	return func(e *Engine) { e.listener = l }
}

// WithSeed sets the entropy seed for event IDs.
func WithSeed(seed int64) Option {
	return func(e *Engine) { e.seed = seed }
}

// Engine holds the inputs of a backtest. It keeps no state between runs,
// so Run and WalkForward may be called repeatedly and give identical
// results.
type Engine struct {
	series   market.Series
	strategy strategies.Strategy
	cfg      Config

	log      *zap.Logger
	listener Listener
	seed     int64
}

func New(series market.Series, strategy strategies.Strategy, cfg Config, opts ...Option) (*Engine, error) {
	if strategy == nil {
		return nil, market.Configf("strategy", "is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{
		series:   series,
		strategy: strategy,
		cfg:      cfg,
		log:      zap.NewNop(),
		seed:     DefaultSeed,
	}
	for _, o := range opts {
		o(e)
	}
	e.log = e.log.With(zap.String("strategy", strategy.Name()), zap.String("symbol", cfg.symbol()))
	return e, nil
}

func (e *Engine) Config() Config                { return e.cfg }
func (e *Engine) Series() market.Series         { return e.series }
func (e *Engine) Strategy() strategies.Strategy { return e.strategy }

// Run backtests the whole series.
func (e *Engine) Run() (Result, error) {
	res, err := e.run(e.series, e.listener)
	if err != nil {
		return Result{}, err
	}
	e.log.Info("backtest complete",
		zap.Int("bars", res.Bars),
		zap.Int("trades", res.Metrics.NumTrades),
		zap.Float64("total_return", res.Metrics.TotalReturn),
		zap.Float64("sharpe", res.Metrics.SharpeRatio),
		zap.Float64("max_drawdown", res.Metrics.MaxDrawdown),
	)
	return res, nil
}

// run is one independent pass over s with fresh position and risk state.
func (e *Engine) run(s market.Series, listener Listener) (Result, error) {
	prices := s.Closes()
	n := len(prices)

	signals := e.strategy.GenerateSignals(prices)
	if len(signals) != n {
		return Result{}, fmt.Errorf("backtest: strategy %s returned %d signals for %d bars",
			e.strategy.Name(), len(signals), n)
	}

	r := &runner{
		cfg:      e.cfg,
		symbol:   e.cfg.symbol(),
		series:   s,
		ids:      id.NewGenerator(e.seed),
		log:      e.log,
		listener: listener,
	}
	if e.cfg.Risk != nil {
		rm, err := risk.NewManager(e.cfg.Risk.Capital, e.cfg.Risk.Params)
		if err != nil {
			return Result{}, err
		}
		r.risk = rm
	}

	returns := make([]float64, 0, max(0, n-1))
	for i := 1; i < n; i++ {
		returns = append(returns, r.step(i, signals[i-1], prices[i]))
	}

	res := Result{
		Strategy: e.strategy.Name(),
		Symbol:   r.symbol,
		Signals:  signals,
		Returns:  returns,
		Events:   r.events,
		Metrics:  metrics.Compute(returns, e.cfg.Metrics),
		Position: r.pos,
		Bars:     n,
		Start:    s.Start(),
		End:      s.End(),
	}
	if r.risk != nil {
		res.StartCapital = e.cfg.Risk.Capital
		res.Capital = r.risk.Capital()
	}
	return res, nil
}

// runner carries the mutable state of a single run.
type runner struct {
	cfg      Config
	symbol   string
	series   market.Series
	risk     *risk.Manager
	ids      *id.Generator
	log      *zap.Logger
	listener Listener

	pos    Position
	events []Event
}

// step processes bar i given the previous bar's signal and returns the
// bar's realized return.
func (r *runner) step(i int, sig strategies.Signal, price float64) float64 {
	if r.risk != nil && r.cfg.DayLength > 0 && i%r.cfg.DayLength == 0 {
		r.risk.ResetDailyLoss()
	}

	ret := 0.0
	switch {
	case sig == strategies.Buy && r.pos.Flat():
		r.enter(i, price)
	case sig == strategies.Sell && r.pos.Open:
		ret = r.exit(i, price, ReasonSignal)
	}

	// A risk exit overrides Hold and Buy. After a signal exit the
	// position is already flat.
	if r.risk != nil && r.pos.Open {
		switch r.risk.CheckStopLossTakeProfit(r.pos.EntryPrice, price) {
		case risk.StopLoss:
			ret = r.exit(i, price, ReasonStopLoss)
		case risk.TakeProfit:
			ret = r.exit(i, price, ReasonTakeProfit)
		}
	}
	return ret
}

func (r *runner) enter(i int, price float64) {
	t := r.series.At(i).Time

	var size float64
	if r.risk != nil {
		size = risk.PositionSize(r.risk.Capital(), r.cfg.stake())
		d := r.risk.Evaluate(r.symbol, size)
		if !d.Allowed {
			r.log.Info("entry rejected",
				zap.Int("bar", i),
				zap.String("code", d.Reason()),
				zap.String("msg", d.Violations[0].Msg),
			)
			r.emit(Event{Kind: Rejected, Bar: i, Time: t, Price: price, Size: size, Reason: d.Reason()})
			return
		}
		r.risk.RegisterTrade(r.symbol, risk.TradeInfo{
			EntryPrice: price,
			Quantity:   risk.Quantity(size, price),
			OpenedAt:   t,
			Bar:        i,
		})
	}

	r.pos = Position{Open: true, EntryPrice: price, EntryBar: i, EntryTime: t, Size: size}
	r.log.Debug("enter long", zap.Int("bar", i), zap.Float64("price", price), zap.Float64("size", size))
	r.emit(Event{Kind: Enter, Bar: i, Time: t, Price: price, Size: size, Reason: ReasonSignal})
}

func (r *runner) exit(i int, price float64, reason string) float64 {
	net := r.pos.NetReturn(price, r.cfg.Slippage, r.cfg.Commission)
	size := r.pos.Size

	if r.risk != nil {
		r.risk.CloseTrade(r.symbol)
		pnl := size * net
		if pnl < 0 && !r.risk.CheckDailyLoss(-pnl) {
			r.log.Warn("daily loss limit reached, entries halted",
				zap.Int("bar", i),
				zap.Float64("daily_loss", r.risk.DailyLoss()),
			)
		}
		r.risk.Realize(pnl)
	}

	r.pos = Position{}
	r.log.Debug("exit long",
		zap.Int("bar", i),
		zap.Float64("price", price),
		zap.Float64("return", net),
		zap.String("reason", reason),
	)
	r.emit(Event{Kind: Exit, Bar: i, Time: r.series.At(i).Time, Price: price, Size: size, Return: net, Reason: reason})
	return net
}

func (r *runner) emit(ev Event) {
	ev.ID = r.ids.At(ev.Time)
	ev.Symbol = r.symbol
	r.events = append(r.events, ev)
	if r.listener != nil {
		r.listener.OnEvent(ev)
	}
}
