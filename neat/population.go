package neat

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/quillium/neat-go/neat/archive"
)

// Population owns all species and runs the generational loop. It is driven
// step-wise from the outside: the driver asks for the next genome to
// evaluate, scores it, and reports back; when the last genome of a generation
// is scored, reproduction runs synchronously inside NextGenome.
//
// A Population is not safe for concurrent use; the driver calls
// GetGenome/NextGenome strictly sequentially.
type Population struct {
	Config  *Config
	Species []*Species

	Generation     int
	CurrentSpecies int
	CurrentGenome  int
	BestGenome     *Genome

	Innovations *InnovationTracker

	NumInputs      int
	NumOutputs     int
	PopulationSize int

	NextGenomeKey  int
	NextSpeciesKey int

	rng    *rand.Rand
	logger *slog.Logger
	store  *archive.Store
}

// Info is a read-only snapshot of the evolution state.
type Info struct {
	Generation     int
	CurrentSpecies int
	CurrentGenome  int
	Fitness        float64
	SpeciesCount   int
	BestFitness    float64
}

// NewPopulation creates an engine shell from the configuration. Call Generate
// to build the first generation, or Load to resume a saved run.
func NewPopulation(cfg *Config) (*Population, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	seed := cfg.Neat.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	p := &Population{
		Config: cfg,
		rng:    rand.New(rand.NewSource(seed)),
		logger: slog.Default(),
	}
	if cfg.Neat.ArchivePath != "" {
		store, err := archive.Open(cfg.Neat.ArchivePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open run archive: %w", err)
		}
		p.store = store
	}
	return p, nil
}

// SetLogger replaces the engine's logger.
func (p *Population) SetLogger(logger *slog.Logger) {
	if logger != nil {
		p.logger = logger
	}
}

// Close releases the run archive, if one is open.
func (p *Population) Close() error {
	if p.store == nil {
		return nil
	}
	return p.store.Close()
}

// Generate builds populationSize minimal genomes (inputs and outputs only)
// and assigns them all to a single initial species.
func (p *Population) Generate(inputs, outputs, populationSize int) error {
	if inputs <= 0 || outputs <= 0 || populationSize <= 0 {
		return fmt.Errorf("neat: inputs, outputs and population size must be positive")
	}
	p.NumInputs = inputs
	p.NumOutputs = outputs
	p.PopulationSize = populationSize
	p.Innovations = NewInnovationTracker(inputs + outputs)
	p.Generation = 0
	p.CurrentSpecies = 0
	p.CurrentGenome = 0
	p.BestGenome = nil
	p.NextGenomeKey = 1
	p.NextSpeciesKey = 1

	var initial *Species
	for i := 0; i < populationSize; i++ {
		g := NewGenome(p.nextGenomeKey(), inputs, outputs, &p.Config.Genome, p.Innovations, p.rng)
		if initial == nil {
			initial = NewSpecies(p.nextSpeciesKey(), g)
		} else {
			initial.Members = append(initial.Members, g)
		}
	}
	p.Species = []*Species{initial}

	p.logger.Info("population generated",
		"inputs", inputs, "outputs", outputs, "size", populationSize)
	return nil
}

// ShouldEvolve reports whether the driver should keep requesting genomes.
// It turns false once the configured generation cap is reached or the best
// fitness meets the configured target.
func (p *Population) ShouldEvolve() bool {
	if p.Config.Neat.MaxGenerations > 0 && p.Generation >= p.Config.Neat.MaxGenerations {
		return false
	}
	if p.Config.Neat.UseFitnessTarget && p.BestGenome != nil &&
		p.BestGenome.Fitness >= p.Config.Neat.FitnessTarget {
		return false
	}
	return true
}

// GetGenome returns the genome awaiting evaluation at the current position.
// It does not advance state. After the termination condition is met it
// returns ErrEvolutionComplete rather than serving stale genomes.
func (p *Population) GetGenome() (*Genome, error) {
	if !p.ShouldEvolve() {
		return nil, ErrEvolutionComplete
	}
	return p.Species[p.CurrentSpecies].Members[p.CurrentGenome], nil
}

// NextGenome records the just-evaluated genome's fitness into the running
// best and advances the evaluation cursor. Scoring the last genome of the
// generation triggers reproduction, which re-speciates the new population,
// increments the generation counter, and persists a checkpoint under
// checkpointName (skipped when empty).
func (p *Population) NextGenome(checkpointName string) error {
	current := p.Species[p.CurrentSpecies].Members[p.CurrentGenome]
	if p.BestGenome == nil || current.Fitness > p.BestGenome.Fitness {
		p.BestGenome = current.Copy()
		p.logger.Info("new best genome",
			"key", current.Key, "fitness", current.Fitness, "generation", p.Generation)
	}

	p.CurrentGenome++
	if p.CurrentGenome < len(p.Species[p.CurrentSpecies].Members) {
		return nil
	}
	p.CurrentGenome = 0
	p.CurrentSpecies++
	if p.CurrentSpecies < len(p.Species) {
		return nil
	}
	p.CurrentSpecies = 0
	return p.reproduce(checkpointName)
}

// GetInfo returns a read-only snapshot for observability; it never mutates
// state.
func (p *Population) GetInfo() Info {
	info := Info{
		Generation:     p.Generation,
		CurrentSpecies: p.CurrentSpecies,
		CurrentGenome:  p.CurrentGenome,
		SpeciesCount:   len(p.Species),
	}
	if p.CurrentSpecies < len(p.Species) && p.CurrentGenome < len(p.Species[p.CurrentSpecies].Members) {
		info.Fitness = p.Species[p.CurrentSpecies].Members[p.CurrentGenome].Fitness
	}
	if p.BestGenome != nil {
		info.BestFitness = p.BestGenome.Fitness
	}
	return info
}

// fitnesses collects every member fitness across all species.
func (p *Population) fitnesses() []float64 {
	out := make([]float64, 0, p.PopulationSize)
	for _, sp := range p.Species {
		for _, g := range sp.Members {
			out = append(out, g.Fitness)
		}
	}
	return out
}

// reproduce runs the end-of-generation pipeline: stagnation culling,
// fitness-sharing offspring allocation, per-species reproduction, and
// re-speciation of the full new population.
func (p *Population) reproduce(checkpointName string) error {
	survivors := p.cullStagnant()
	alloc := p.allocateOffspring(survivors)

	offspring := make([]*Genome, 0, p.PopulationSize)
	for i, sp := range survivors {
		offspring = append(offspring, sp.Reproduce(alloc[i], p.Config, p.nextGenomeKey, p.rng, p.Innovations)...)
	}

	p.speciate(offspring)
	p.Generation++

	all := p.fitnesses()
	p.logger.Info("generation complete",
		"generation", p.Generation,
		"species", len(p.Species),
		"best", p.GetInfo().BestFitness,
		"mean", Mean(all),
		"innovations", p.Innovations.Peak())

	if checkpointName != "" {
		if err := p.Save(checkpointName); err != nil {
			return fmt.Errorf("failed to checkpoint generation %d: %w", p.Generation, err)
		}
		p.logger.Info("checkpoint saved", "path", p.SaveFileName(checkpointName))

		if interval := p.Config.Neat.SnapshotInterval; interval > 0 && p.Generation%interval == 0 {
			snapshot := fmt.Sprintf("%s_gen_%d", checkpointName, p.Generation)
			if err := p.Save(snapshot); err != nil {
				return fmt.Errorf("failed to snapshot generation %d: %w", p.Generation, err)
			}
		}
	}
	if p.store != nil {
		if err := p.recordGeneration(); err != nil {
			// The archive is advisory; a failed row never aborts evolution.
			p.logger.Warn("failed to archive generation", "error", err)
		}
	}
	return nil
}

// cullStagnant updates every species' stagnation counter and drops the ones
// that exceeded the configured limit. The current best species is always
// spared so the population cannot go extinct.
func (p *Population) cullStagnant() []*Species {
	bestIdx := 0
	for i, sp := range p.Species {
		sp.UpdateStagnation()
		if sp.BestFitness() > p.Species[bestIdx].BestFitness() {
			bestIdx = i
		}
	}

	survivors := make([]*Species, 0, len(p.Species))
	for i, sp := range p.Species {
		if i != bestIdx && sp.Stagnation >= p.Config.Speciation.MaxStagnation {
			p.logger.Info("species extinct",
				"species", sp.Key, "stagnation", sp.Stagnation, "members", len(sp.Members))
			continue
		}
		survivors = append(survivors, sp)
	}
	return survivors
}

// allocateOffspring divides the population slots among surviving species in
// proportion to their adjusted-fitness share, guaranteeing every survivor at
// least one slot and that the total exactly equals the population size.
func (p *Population) allocateOffspring(survivors []*Species) []int {
	adj := make([]float64, len(survivors))
	for i, sp := range survivors {
		adj[i] = sp.AdjustedFitnessSum()
	}

	// Shift-normalize so negative fitness (a lost match) still yields a
	// meaningful share.
	minAdj, maxAdj := MinFloat(adj), MaxFloat(adj)
	shares := make([]float64, len(adj))
	total := 0.0
	for i, a := range adj {
		if maxAdj > minAdj {
			shares[i] = (a - minAdj) / (maxAdj - minAdj)
		} else {
			shares[i] = 1
		}
		total += shares[i]
	}

	counts := make([]int, len(survivors))
	for i := range counts {
		counts[i] = 1
	}
	remaining := p.PopulationSize - len(survivors)

	raw := make([]float64, len(survivors))
	assigned := 0
	for i, share := range shares {
		if total > 0 {
			raw[i] = share / total * float64(remaining)
		}
		whole := int(math.Floor(raw[i]))
		counts[i] += whole
		assigned += whole
	}

	// Hand the rounding remainder to the species shortchanged the most.
	type rem struct {
		idx  int
		frac float64
	}
	rems := make([]rem, len(survivors))
	for i := range rems {
		rems[i] = rem{idx: i, frac: raw[i] - math.Floor(raw[i])}
	}
	sort.SliceStable(rems, func(i, j int) bool { return rems[i].frac > rems[j].frac })
	for k := 0; k < remaining-assigned; k++ {
		counts[rems[k%len(rems)].idx]++
	}
	return counts
}

// speciate clears all species membership and re-assigns each new genome to
// the first species whose representative it is compatible with, founding new
// species as needed. Emptied species are pruned and each survivor's first
// member becomes its representative for the next generation.
func (p *Population) speciate(genomes []*Genome) {
	for _, sp := range p.Species {
		sp.Members = nil
	}

	threshold := p.Config.Speciation.CompatibilityThreshold
	for _, g := range genomes {
		placed := false
		for _, sp := range p.Species {
			if sp.AddIfCompatible(g, threshold) {
				placed = true
				break
			}
		}
		if !placed {
			sp := NewSpecies(p.nextSpeciesKey(), g)
			p.Species = append(p.Species, sp)
			p.logger.Info("species founded", "species", sp.Key, "representative", g.Key)
		}
	}

	kept := p.Species[:0]
	for _, sp := range p.Species {
		if len(sp.Members) == 0 {
			continue
		}
		sp.Representative = sp.Members[0].Copy()
		kept = append(kept, sp)
	}
	p.Species = kept
}

// recordGeneration writes one summary row (and the champion snapshot) to the
// sqlite run archive.
func (p *Population) recordGeneration() error {
	all := p.fitnesses()
	rec := archive.GenerationRecord{
		Generation:   p.Generation,
		SpeciesCount: len(p.Species),
		BestFitness:  p.GetInfo().BestFitness,
		MeanFitness:  Mean(all),
		StdevFitness: Stdev(all),
		Innovations:  p.Innovations.Peak(),
	}
	if p.BestGenome != nil {
		payload, err := encodeGenomePayload(p.BestGenome)
		if err != nil {
			return err
		}
		rec.Champion = payload
	}
	return p.store.RecordGeneration(context.Background(), rec)
}

func (p *Population) nextGenomeKey() int {
	key := p.NextGenomeKey
	p.NextGenomeKey++
	return key
}

func (p *Population) nextSpeciesKey() int {
	key := p.NextSpeciesKey
	p.NextSpeciesKey++
	return key
}
