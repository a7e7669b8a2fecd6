package neat

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())
}

func TestLoadConfigAppliesOverrides(t *testing.T) {
	content := `
[NEAT]
max_generations = 25
use_fitness_target = true
fitness_target = 90 ; stop once a genome wins this reliably

[Genome]
activation = tanh
conn_add_prob = 0.2

[Speciation]
compatibility_threshold = 2.5
`
	path := filepath.Join(t.TempDir(), "neat.ini")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 25, cfg.Neat.MaxGenerations)
	assert.True(t, cfg.Neat.UseFitnessTarget)
	assert.InDelta(t, 90.0, cfg.Neat.FitnessTarget, 1e-9)
	assert.Equal(t, "tanh", cfg.Genome.Activation)
	assert.InDelta(t, 0.2, cfg.Genome.ConnAddProb, 1e-9)
	assert.InDelta(t, 2.5, cfg.Speciation.CompatibilityThreshold, 1e-9)

	// Omitted keys keep their defaults.
	assert.InDelta(t, 0.8, cfg.Genome.WeightMutateRate, 1e-9)
	assert.Equal(t, 15, cfg.Speciation.MaxStagnation)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.ini"))
	assert.Error(t, err)
}

func TestLoadConfigRejectsInvalidValues(t *testing.T) {
	content := `
[Genome]
weight_mutate_rate = 1.5
`
	path := filepath.Join(t.TempDir(), "bad.ini")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestValidateRejectsUnknownActivation(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Genome.Activation = "warp"
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsBadInitialConnection(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Genome.InitialConnection = "sparse"
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsInvertedWeightBounds(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Genome.WeightMinValue = 5
	cfg.Genome.WeightMaxValue = -5
	assert.Error(t, cfg.Validate())
}
