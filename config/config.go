// Package config reads the YAML file that describes a backtest: where the
// prices come from, which strategy to run, engine costs, risk limits,
// logging and report outputs.
package config

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/backtester/backtest"
	"github.com/rustyeddy/backtester/feed"
	"github.com/rustyeddy/backtester/internal/logging"
	"github.com/rustyeddy/backtester/market"
	"github.com/rustyeddy/backtester/metrics"
	"github.com/rustyeddy/backtester/risk"
	"github.com/rustyeddy/backtester/strategies"
)

// Config represents a complete backtest configuration
type Config struct {
	Data     DataConfig     `json:"data" yaml:"data"`
	Strategy StrategyConfig `json:"strategy" yaml:"strategy"`
	Backtest BacktestConfig `json:"backtest" yaml:"backtest"`
	Risk     RiskConfig     `json:"risk" yaml:"risk"`
	Logging  LoggingConfig  `json:"logging" yaml:"logging"`
	Report   ReportConfig   `json:"report" yaml:"report"`
}

// DataConfig locates the price series
type DataConfig struct {
	Kind    string `json:"kind,omitempty" yaml:"kind,omitempty" validate:"omitempty,oneof=csv parquet sqlite sqlite3"`
	Path    string `json:"path" yaml:"path"`
	Symbol  string `json:"symbol,omitempty" yaml:"symbol,omitempty"`
	Retries uint64 `json:"retries" yaml:"retries" validate:"lte=10"`
}

// StrategyConfig names a registered strategy and its parameters. Column
// names a CSV column of precomputed per-bar values, read from Predictions
// or, when that is empty, from the price file.
type StrategyConfig struct {
	Name        string            `json:"name" yaml:"name" validate:"required"`
	Params      strategies.Params `json:"params,omitempty" yaml:"params,omitempty"`
	Column      string            `json:"column,omitempty" yaml:"column,omitempty"`
	Predictions string            `json:"predictions,omitempty" yaml:"predictions,omitempty"`
}

// BacktestConfig contains engine and metrics parameters
type BacktestConfig struct {
	Slippage       float64 `json:"slippage" yaml:"slippage" validate:"gte=0,lt=1"`
	Commission     float64 `json:"commission" yaml:"commission" validate:"gte=0,lt=1"`
	WalkForward    int     `json:"walk_forward" yaml:"walk_forward" validate:"gte=0"`
	Workers        int     `json:"workers" yaml:"workers" validate:"gte=0,lte=256"`
	Stake          float64 `json:"stake" yaml:"stake" validate:"gte=0,lte=1"`
	DayLength      int     `json:"day_length" yaml:"day_length" validate:"gte=0"`
	RiskFreeRate   float64 `json:"risk_free_rate" yaml:"risk_free_rate" validate:"gte=-1,lte=1"`
	PeriodsPerYear float64 `json:"periods_per_year" yaml:"periods_per_year" validate:"gte=0"`
}

// RiskConfig contains the portfolio limits. The limits are only applied
// when Enabled is set.
type RiskConfig struct {
	Enabled                 bool    `json:"enabled" yaml:"enabled"`
	Capital                 float64 `json:"capital" yaml:"capital" validate:"gt=0"`
	MaxPositionSizeFraction float64 `json:"max_position_size_fraction" yaml:"max_position_size_fraction" validate:"gt=0,lte=1"`
	MaxOpenTrades           int     `json:"max_open_trades" yaml:"max_open_trades" validate:"gte=1"`
	MaxDailyLossFraction    float64 `json:"max_daily_loss_fraction" yaml:"max_daily_loss_fraction" validate:"gt=0,lte=1"`
	StopLossFraction        float64 `json:"stop_loss_fraction" yaml:"stop_loss_fraction" validate:"gt=0,lte=1"`
	TakeProfitFraction      float64 `json:"take_profit_fraction" yaml:"take_profit_fraction" validate:"gt=0,lte=1"`
	AllowNegativeCapital    bool    `json:"allow_negative_capital" yaml:"allow_negative_capital"`
}

type LoggingConfig struct {
	Level  string `json:"level" yaml:"level" validate:"omitempty,oneof=debug info warn error"`
	Format string `json:"format" yaml:"format" validate:"omitempty,oneof=json console"`
}

// ReportConfig names the report files. Empty paths are not written. The
// two CSV files are written together.
type ReportConfig struct {
	Dataset    string `json:"dataset,omitempty" yaml:"dataset,omitempty"`
	Org        string `json:"org,omitempty" yaml:"org,omitempty"`
	ReturnsCSV string `json:"returns_csv,omitempty" yaml:"returns_csv,omitempty" validate:"required_with=EventsCSV"`
	EventsCSV  string `json:"events_csv,omitempty" yaml:"events_csv,omitempty" validate:"required_with=ReturnsCSV"`
}

// Default returns a configuration with sensible defaults. Data.Path is
// left empty.
func Default() *Config {
	rp := risk.DefaultParams()
	return &Config{
		Data: DataConfig{
			Symbol:  backtest.DefaultSymbol,
			Retries: 3,
		},
		Strategy: StrategyConfig{
			Name: "ma_cross",
			Params: strategies.Params{
				"short_window": 10,
				"long_window":  30,
			},
		},
		Backtest: BacktestConfig{
			Workers:        1,
			PeriodsPerYear: metrics.DefaultPeriodsPerYear,
		},
		Risk: RiskConfig{
			Capital:                 10000,
			MaxPositionSizeFraction: rp.MaxPositionSizeFraction,
			MaxOpenTrades:           rp.MaxOpenTrades,
			MaxDailyLossFraction:    rp.MaxDailyLossFraction,
			StopLossFraction:        rp.StopLossFraction,
			TakeProfitFraction:      rp.TakeProfitFraction,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load reads the YAML (or JSON) file at path over the defaults, applies
// environment overrides and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()
	// yaml merges into an existing map, so drop the default parameters.
	cfg.Strategy.Params = nil
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// applyEnvOverrides checks the BACKTESTER_* environment variables and
// overrides the corresponding fields when they are set.
func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("BACKTESTER_DATA_PATH"); v != "" {
		cfg.Data.Path = v
	}
	if v := os.Getenv("BACKTESTER_DATA_KIND"); v != "" {
		cfg.Data.Kind = v
	}
	if v := os.Getenv("BACKTESTER_SYMBOL"); v != "" {
		cfg.Data.Symbol = v
	}
	if v := os.Getenv("BACKTESTER_STRATEGY"); v != "" {
		cfg.Strategy.Name = v
	}
	if v := os.Getenv("BACKTESTER_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("BACKTESTER_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv("BACKTESTER_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return market.Configf("BACKTESTER_WORKERS", "not an integer: %q", v)
		}
		cfg.Backtest.Workers = n
	}
	return nil
}

// Save writes the configuration to path, as JSON for a .json extension
// and YAML otherwise.
func (c *Config) Save(path string) error {
	var data []byte
	var err error

	if strings.EqualFold(filepath.Ext(path), ".json") {
		data, err = json.MarshalIndent(c, "", "  ")
	} else {
		data, err = yaml.Marshal(c)
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

var validate = newValidator()

// newValidator reports fields by their yaml names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks field ranges and then the engine configuration built
// from them. Failures are *market.ConfigError.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fieldError(err)
	}
	return c.EngineConfig().Validate()
}

func fieldError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]

	field := fe.Namespace()
	if i := strings.IndexByte(field, '.'); i >= 0 {
		field = field[i+1:]
	}
	rule := fe.Tag()
	if fe.Param() != "" {
		rule += " " + fe.Param()
	}
	return market.Configf(field, "must satisfy %s, got %v", rule, fe.Value())
}

// Params returns the risk limits.
func (r RiskConfig) Params() risk.Params {
	return risk.Params{
		MaxPositionSizeFraction: r.MaxPositionSizeFraction,
		MaxOpenTrades:           r.MaxOpenTrades,
		MaxDailyLossFraction:    r.MaxDailyLossFraction,
		StopLossFraction:        r.StopLossFraction,
		TakeProfitFraction:      r.TakeProfitFraction,
		AllowNegativeCapital:    r.AllowNegativeCapital,
	}
}

// EngineConfig converts the file into a backtest.Config.
func (c *Config) EngineConfig() backtest.Config {
	ec := backtest.Config{
		Symbol:      c.Data.Symbol,
		Slippage:    c.Backtest.Slippage,
		Commission:  c.Backtest.Commission,
		WalkForward: c.Backtest.WalkForward,
		Workers:     c.Backtest.Workers,
		Stake:       c.Backtest.Stake,
		DayLength:   c.Backtest.DayLength,
		Metrics: metrics.Options{
			RiskFreeRate:   c.Backtest.RiskFreeRate,
			PeriodsPerYear: c.Backtest.PeriodsPerYear,
		},
	}
	if c.Risk.Enabled {
		ec.Risk = &backtest.RiskConfig{
			Capital: c.Risk.Capital,
			Params:  c.Risk.Params(),
		}
	}
	return ec
}

// Build resolves the strategy in reg, or in the builtin registry when reg
// is nil.
func (s StrategyConfig) Build(reg *strategies.Registry) (strategies.Strategy, error) {
	if reg == nil {
		reg = strategies.Builtins()
	}
	return reg.New(s.Name, s.Params)
}

// BuildStrategy loads the configured input column into reg, or into the
// builtin registry when reg is nil, and builds the strategy from it.
func (c *Config) BuildStrategy(ctx context.Context, reg *strategies.Registry) (strategies.Strategy, error) {
	if reg == nil {
		reg = strategies.Builtins()
	}
	if c.Strategy.Column != "" {
		path := c.PredictionsPath()
		if kind := feed.KindFromPath(path); kind != feed.KindCSV {
			return nil, market.Configf("strategy.predictions", "column %q needs a CSV file, got %s", c.Strategy.Column, path)
		}
		values, err := feed.LoadColumn(ctx, path, c.Strategy.Column)
		if err != nil {
			return nil, err
		}
		reg.SetInput(strategies.PredictionInput, values)
	}
	return c.Strategy.Build(reg)
}

// PredictionsPath is the file Strategy.Column is read from.
func (c *Config) PredictionsPath() string {
	if c.Strategy.Predictions != "" {
		return c.Strategy.Predictions
	}
	return c.Data.Path
}

// Source opens the configured price series. Transient load failures are
// retried Data.Retries times.
func (c *Config) Source(log *zap.Logger) (feed.Source, error) {
	src, err := feed.Open(c.Data.Kind, c.Data.Path, c.Data.Symbol)
	if err != nil {
		return nil, err
	}
	return feed.Retry(src, c.Data.Retries, log), nil
}

// Logger builds the configured zap logger.
func (c *Config) Logger() (*zap.Logger, error) {
	return logging.New(c.Logging.Level, c.Logging.Format)
}
