package neat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetActivation(t *testing.T) {
	for _, name := range []string{"sigmoid", "tanh", "relu", "clamped", "identity"} {
		fn, err := GetActivation(name)
		require.NoError(t, err, name)
		require.NotNil(t, fn, name)
	}

	_, err := GetActivation("unknown")
	assert.Error(t, err)
}

func TestSigmoidRange(t *testing.T) {
	assert.InDelta(t, 0.5, Sigmoid(0), 1e-9)
	assert.Greater(t, Sigmoid(10), 0.99)
	assert.Less(t, Sigmoid(-10), 0.01)
}

func TestStatsHelpers(t *testing.T) {
	values := []float64{2, 4, 6}

	assert.InDelta(t, 4.0, Mean(values), 1e-9)
	assert.InDelta(t, 2.0, Stdev(values), 1e-9)
	assert.InDelta(t, 6.0, MaxFloat(values), 1e-9)
	assert.InDelta(t, 2.0, MinFloat(values), 1e-9)

	assert.Zero(t, Mean(nil))
	assert.Zero(t, Stdev([]float64{3}))
}
