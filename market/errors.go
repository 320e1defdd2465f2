package market

import (
	"errors"
	"fmt"
)

// ErrConfig matches every *ConfigError with errors.Is.
var ErrConfig = errors.New("configuration error")

// ConfigError reports an invalid parameter supplied at construction time:
// a bad window size, an out-of-range fraction, an unknown strategy name.
// It is never retried.
type ConfigError struct {
	Field string
	Msg   string
}

func (e *ConfigError) Error() string {
	if e.Field == "" {
		return "config: " + e.Msg
	}
	return fmt.Sprintf("config: %s: %s", e.Field, e.Msg)
}

func (e *ConfigError) Is(target error) bool { return target == ErrConfig }

// Configf returns a *ConfigError for field with a formatted message.
func Configf(field, format string, args ...any) error {
	return &ConfigError{Field: field, Msg: fmt.Sprintf(format, args...)}
}

// CheckFraction returns a *ConfigError unless 0 < v <= 1.
func CheckFraction(field string, v float64) error {
	if !(v > 0 && v <= 1) {
		return Configf(field, "must be in (0, 1], got %v", v)
	}
	return nil
}
