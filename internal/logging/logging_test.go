package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNew(t *testing.T) {
	t.Parallel()

	tests := []struct {
		level, format string
		want          zap.AtomicLevel
		wantErr       bool
	}{
		{"", "", zap.NewAtomicLevelAt(zap.InfoLevel), false},
		{"debug", "console", zap.NewAtomicLevelAt(zap.DebugLevel), false},
		{"warn", "json", zap.NewAtomicLevelAt(zap.WarnLevel), false},
		{"error", "json", zap.NewAtomicLevelAt(zap.ErrorLevel), false},
		{"verbose", "json", zap.AtomicLevel{}, true},
		{"info", "xml", zap.AtomicLevel{}, true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.level+"/"+tt.format, func(t *testing.T) {
			t.Parallel()
			l, err := New(tt.level, tt.format)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, l.Core().Enabled(tt.want.Level()))
			if tt.want.Level() > zap.DebugLevel {
				assert.False(t, l.Core().Enabled(tt.want.Level()-1))
			}
		})
	}
}
