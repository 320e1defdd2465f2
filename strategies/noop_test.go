package strategies

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNoop_GenerateSignals(t *testing.T) {
	got := Noop{}.GenerateSignals([]float64{1, 2, 3})
	assert.Equal(t, []Signal{Hold, Hold, Hold}, got)
	assert.Empty(t, Noop{}.GenerateSignals(nil))
}
