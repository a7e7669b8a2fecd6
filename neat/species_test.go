package neat

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSpecies(t *testing.T, size int) (*Species, *Config, *InnovationTracker, *rand.Rand) {
	t.Helper()
	cfg := DefaultConfig()
	tracker := NewInnovationTracker(3)
	rng := rand.New(rand.NewSource(7))

	sp := NewSpecies(1, NewGenome(1, 2, 1, &cfg.Genome, tracker, rng))
	for i := 1; i < size; i++ {
		sp.Members = append(sp.Members, NewGenome(i+1, 2, 1, &cfg.Genome, tracker, rng))
	}
	return sp, cfg, tracker, rng
}

func TestNewSpeciesFounder(t *testing.T) {
	sp, _, _, _ := newTestSpecies(t, 1)

	require.Len(t, sp.Members, 1)
	require.NotNil(t, sp.Representative)
	assert.NotSame(t, sp.Members[0], sp.Representative, "representative must be a copy")
	assert.Zero(t, sp.Stagnation)
}

func TestAddIfCompatible(t *testing.T) {
	sp, cfg, tracker, rng := newTestSpecies(t, 1)
	g := NewGenome(2, 2, 1, &cfg.Genome, tracker, rng)

	assert.True(t, sp.AddIfCompatible(g, 100))
	assert.Len(t, sp.Members, 2)

	// Threshold zero admits nothing, distance is never negative.
	far := NewGenome(3, 2, 1, &cfg.Genome, tracker, rng)
	assert.False(t, sp.AddIfCompatible(far, 0))
	assert.Len(t, sp.Members, 2)
}

func TestAdjustedFitnessSum(t *testing.T) {
	sp, _, _, _ := newTestSpecies(t, 2)
	sp.Members[0].Fitness = 4
	sp.Members[1].Fitness = 2

	// Fitness sharing divides each member by the species size.
	assert.InDelta(t, 3.0, sp.AdjustedFitnessSum(), 1e-9)
	assert.InDelta(t, 3.0, sp.MeanFitness(), 1e-9)
	assert.InDelta(t, 4.0, sp.BestFitness(), 1e-9)
}

func TestUpdateStagnation(t *testing.T) {
	sp, _, _, _ := newTestSpecies(t, 1)
	sp.Members[0].Fitness = 5

	sp.UpdateStagnation()
	assert.Zero(t, sp.Stagnation, "an improving species is not stagnant")

	sp.UpdateStagnation()
	assert.Equal(t, 1, sp.Stagnation)
	sp.UpdateStagnation()
	assert.Equal(t, 2, sp.Stagnation)

	sp.Members[0].Fitness = 9
	sp.UpdateStagnation()
	assert.Zero(t, sp.Stagnation, "a new best fitness resets the counter")
}

func TestReproduceCountAndElitism(t *testing.T) {
	sp, cfg, tracker, rng := newTestSpecies(t, 4)
	for i, g := range sp.Members {
		g.Fitness = float64(10 - i)
	}
	nextKey := keyCounter(100)

	offspring := sp.Reproduce(6, cfg, nextKey, rng, tracker)

	require.Len(t, offspring, 6)
	// The elite slot carries the best member over untouched.
	assert.Equal(t, sp.Members[0].Key, offspring[0].Key)
	assert.InDelta(t, 10.0, offspring[0].Fitness, 1e-9)
	for _, child := range offspring[1:] {
		assert.GreaterOrEqual(t, child.Key, 100)
	}
}

func TestReproduceSingleMemberClones(t *testing.T) {
	sp, cfg, tracker, rng := newTestSpecies(t, 1)
	sp.Members[0].Fitness = 3
	nextKey := keyCounter(50)

	offspring := sp.Reproduce(3, cfg, nextKey, rng, tracker)

	require.Len(t, offspring, 3)
	assert.Equal(t, sp.Members[0].Key, offspring[0].Key)
	assert.NotEqual(t, offspring[1].Key, offspring[2].Key)
}

func TestReproduceZeroCount(t *testing.T) {
	sp, cfg, tracker, rng := newTestSpecies(t, 3)
	assert.Nil(t, sp.Reproduce(0, cfg, keyCounter(10), rng, tracker))
}

func keyCounter(start int) func() int {
	next := start
	return func() int {
		key := next
		next++
		return key
	}
}
