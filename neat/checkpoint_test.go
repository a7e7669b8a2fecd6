package neat

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	p := newTestPopulation(t)
	require.NoError(t, p.Generate(4, 1, 8))

	// Drive two full generations so the saved state is non-trivial.
	for i := 0; i < 16; i++ {
		g, err := p.GetGenome()
		require.NoError(t, err)
		g.Fitness = float64(i % 9)
		require.NoError(t, p.NextGenome(""))
	}
	require.NoError(t, p.Save("roundtrip"))

	loaded, err := Load("roundtrip", p.Config)
	require.NoError(t, err)

	assert.Equal(t, p.Generation, loaded.Generation)
	assert.Equal(t, p.PopulationSize, loaded.PopulationSize)
	assert.Equal(t, p.NumInputs, loaded.NumInputs)
	assert.Equal(t, p.NumOutputs, loaded.NumOutputs)
	assert.Equal(t, len(p.Species), len(loaded.Species))
	assert.Equal(t, totalMembers(p), totalMembers(loaded))
	assert.Equal(t, p.NextGenomeKey, loaded.NextGenomeKey)
	assert.Equal(t, p.NextSpeciesKey, loaded.NextSpeciesKey)

	require.NotNil(t, loaded.BestGenome)
	assert.InDelta(t, p.BestGenome.Fitness, loaded.BestGenome.Fitness, 1e-9)

	// The graph itself must round-trip exactly: every connection with its
	// weight, enabled flag and marker, every node with its type and depth.
	orig := p.Species[0].Members[0]
	back := loaded.Species[0].Members[0]
	assert.Equal(t, orig.Key, back.Key)
	assert.Equal(t, orig.Nodes, back.Nodes)
	assert.Equal(t, orig.Connections, back.Connections)
	assert.Equal(t, orig.Fitness, back.Fitness)

	// Marker counters must survive so a resumed run never reissues them.
	require.NotNil(t, loaded.Innovations)
	assert.Equal(t, p.Innovations.NextInnovation, loaded.Innovations.NextInnovation)
	assert.Equal(t, p.Innovations.NextNodeID, loaded.Innovations.NextNodeID)

	// Loaded genomes must be evaluable immediately.
	g, err := loaded.GetGenome()
	require.NoError(t, err)
	require.NotNil(t, g.Config)
	out, err := g.Forward([]float64{1, 0, 1, 0})
	require.NoError(t, err)
	assert.Len(t, out, 1)
}

func TestLoadMissingFile(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Neat.SaveDirectory = t.TempDir()

	// A file that was never written is not corruption; callers distinguish
	// the two to decide between a fresh run and a hard failure.
	_, err := Load("does-not-exist", cfg)
	require.Error(t, err)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
	assert.False(t, errors.Is(err, ErrCorruptSaveData))
}

func TestLoadCorruptFile(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Neat.SaveDirectory = t.TempDir()

	path := filepath.Join(cfg.Neat.SaveDirectory, "broken.neat")
	require.NoError(t, os.WriteFile(path, []byte("not a valid save"), 0o644))

	_, err := Load("broken", cfg)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCorruptSaveData))
}

func TestGenomePayloadRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	g, _, _ := newTestGenome(t, 3, 1)
	g.Fitness = 12

	payload, err := encodeGenomePayload(g)
	require.NoError(t, err)
	require.NotEmpty(t, payload)

	decoded, err := DecodeGenomePayload(payload, &cfg.Genome)
	require.NoError(t, err)
	assert.Equal(t, g.Key, decoded.Key)
	assert.InDelta(t, g.Fitness, decoded.Fitness, 1e-9)
	assert.Equal(t, len(g.Connections), len(decoded.Connections))

	out, err := decoded.Forward([]float64{1, 0, 1})
	require.NoError(t, err)
	assert.Len(t, out, 1)
}

func TestDecodeGenomePayloadRejectsGarbage(t *testing.T) {
	cfg := DefaultConfig()
	_, err := DecodeGenomePayload([]byte("garbage"), &cfg.Genome)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCorruptSaveData))
}
