package neat

import "errors"

// Sentinel errors surfaced to the driving program. Internal conditions such as
// "no compatible species found" are resolved inside the engine (by founding a
// new species) and are never returned.
var (
	// ErrInvalidInputSize is returned by Genome.Forward when the input vector
	// length does not match the genome's input node count.
	ErrInvalidInputSize = errors.New("neat: input vector length does not match input node count")

	// ErrCorruptSaveData is returned by Load when a checkpoint file exists
	// but is malformed or truncated. A missing file is reported through the
	// wrapped os error instead, so the two cases stay distinguishable.
	ErrCorruptSaveData = errors.New("neat: corrupt or truncated save data")

	// ErrEvolutionComplete is returned by GetGenome once ShouldEvolve has
	// reported false, so a driver cannot keep scoring stale genomes.
	ErrEvolutionComplete = errors.New("neat: evolution has reached its termination condition")
)
