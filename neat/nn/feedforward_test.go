package nn_test

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillium/neat-go/neat"
	"github.com/quillium/neat-go/neat/nn"
)

func newGenome(t *testing.T, inputs, outputs int, activation string) (*neat.Genome, *neat.InnovationTracker, *rand.Rand) {
	t.Helper()
	cfg := neat.DefaultConfig()
	cfg.Genome.Activation = activation
	tracker := neat.NewInnovationTracker(inputs + outputs)
	rng := rand.New(rand.NewSource(11))
	return neat.NewGenome(1, inputs, outputs, &cfg.Genome, tracker, rng), tracker, rng
}

func TestCompileAndActivate(t *testing.T) {
	g, _, _ := newGenome(t, 2, 1, "identity")
	for _, conn := range g.Connections {
		conn.Weight = 0.5
	}

	net, err := nn.Compile(g)
	require.NoError(t, err)

	out, err := net.Activate([]float64{1, 1})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.InDelta(t, 1.0, out[0], 1e-9)
}

func TestActivateMatchesGenomeForward(t *testing.T) {
	g, tracker, rng := newGenome(t, 4, 2, "sigmoid")
	for i := 0; i < 30; i++ {
		g.Mutate(rng, tracker)
	}

	net, err := nn.Compile(g)
	require.NoError(t, err)

	inputs := []float64{0.3, -0.7, 1.0, 0.0}
	want, err := g.Forward(inputs)
	require.NoError(t, err)
	got, err := net.Activate(inputs)
	require.NoError(t, err)

	require.Len(t, got, len(want))
	for i := range want {
		assert.InDelta(t, want[i], got[i], 1e-9, "output %d diverges from the genome", i)
	}
}

func TestActivateMatchesForwardWithDisconnectedHidden(t *testing.T) {
	g, tracker, rng := newGenome(t, 1, 1, "sigmoid")
	require.True(t, g.MutateAddNode(rng, tracker))

	// The hidden node loses its only incoming connection. Both evaluators
	// must treat it as the activation over an empty sum, not a raw zero.
	g.Connections[neat.ConnectionKey{InNodeID: 0, OutNodeID: 2}].Enabled = false
	g.Connections[neat.ConnectionKey{InNodeID: 2, OutNodeID: 1}].Weight = 2.0

	net, err := nn.Compile(g)
	require.NoError(t, err)

	want, err := g.Forward([]float64{1})
	require.NoError(t, err)
	got, err := net.Activate([]float64{1})
	require.NoError(t, err)

	require.Len(t, got, 1)
	assert.InDelta(t, neat.Sigmoid(neat.Sigmoid(0)*2.0), want[0], 1e-9)
	assert.InDelta(t, want[0], got[0], 1e-9)
}

func TestActivateInputSizeMismatch(t *testing.T) {
	g, _, _ := newGenome(t, 3, 1, "sigmoid")

	net, err := nn.Compile(g)
	require.NoError(t, err)

	_, err = net.Activate([]float64{1})
	require.Error(t, err)
	assert.True(t, errors.Is(err, neat.ErrInvalidInputSize))
}

func TestCompiledNetworkIsDetached(t *testing.T) {
	g, _, _ := newGenome(t, 2, 1, "identity")
	for _, conn := range g.Connections {
		conn.Weight = 1
	}

	net, err := nn.Compile(g)
	require.NoError(t, err)

	before, err := net.Activate([]float64{1, 1})
	require.NoError(t, err)

	// Later genome mutations must not leak into the compiled network.
	for _, conn := range g.Connections {
		conn.Weight = -10
	}
	after, err := net.Activate([]float64{1, 1})
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestCompileRejectsUnknownActivation(t *testing.T) {
	g, _, _ := newGenome(t, 2, 1, "sigmoid")
	g.Config.Activation = "warp"

	_, err := nn.Compile(g)
	assert.Error(t, err)
}
