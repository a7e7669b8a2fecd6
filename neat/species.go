package neat

import (
	"math"
	"math/rand"
	"sort"
)

// Species is a cluster of genomes within the compatibility threshold of a
// representative. It carries the fitness-sharing bookkeeping and stagnation
// tracking used by the generational controller.
type Species struct {
	Key            int
	Representative *Genome
	Members        []*Genome

	// BestEverFitness is the best member fitness this species has scored;
	// Stagnation counts generations since it improved.
	BestEverFitness float64
	Stagnation      int
}

// NewSpecies founds a species around a genome, which becomes both its
// representative and first member. The representative is a copy so later
// mutation of the member cannot drift the cluster's anchor.
func NewSpecies(key int, founder *Genome) *Species {
	return &Species{
		Key:             key,
		Representative:  founder.Copy(),
		Members:         []*Genome{founder},
		BestEverFitness: math.Inf(-1),
	}
}

// AddIfCompatible appends the genome as a member if its compatibility
// distance to the representative is within the threshold. The representative
// is never changed by admission.
func (s *Species) AddIfCompatible(g *Genome, threshold float64) bool {
	if g.Distance(s.Representative) >= threshold {
		return false
	}
	s.Members = append(s.Members, g)
	return true
}

// BestFitness returns the best raw fitness among current members.
func (s *Species) BestFitness() float64 {
	best := math.Inf(-1)
	for _, g := range s.Members {
		if g.Fitness > best {
			best = g.Fitness
		}
	}
	return best
}

// MeanFitness returns the mean raw fitness of current members.
func (s *Species) MeanFitness() float64 {
	fitnesses := make([]float64, len(s.Members))
	for i, g := range s.Members {
		fitnesses[i] = g.Fitness
	}
	return Mean(fitnesses)
}

// AdjustedFitnessSum applies fitness sharing: each member's fitness divided
// by the species size, summed. Large species are penalized so no single
// cluster can dominate selection.
func (s *Species) AdjustedFitnessSum() float64 {
	if len(s.Members) == 0 {
		return 0
	}
	sum := 0.0
	for _, g := range s.Members {
		sum += g.Fitness / float64(len(s.Members))
	}
	return sum
}

// UpdateStagnation advances the stagnation counter, resetting it whenever
// the species' best fitness improves on its all-time best.
func (s *Species) UpdateStagnation() {
	if best := s.BestFitness(); best > s.BestEverFitness {
		s.BestEverFitness = best
		s.Stagnation = 0
		return
	}
	s.Stagnation++
}

// sortMembersByFitness orders members best-first, breaking ties by key so
// the order is stable under a seeded rng.
func (s *Species) sortMembersByFitness() {
	sort.SliceStable(s.Members, func(i, j int) bool {
		if s.Members[i].Fitness != s.Members[j].Fitness {
			return s.Members[i].Fitness > s.Members[j].Fitness
		}
		return s.Members[i].Key < s.Members[j].Key
	})
}

// Reproduce produces count offspring for the next generation: the configured
// elite fraction is carried over unmodified, and the remainder is bred by
// crossover of parents drawn from the fittest survivors, then mutated. A
// size-1 species reproduces by cloning and mutating its only member.
func (s *Species) Reproduce(count int, cfg *Config, nextKey func() int, rng *rand.Rand, tracker *InnovationTracker) []*Genome {
	if count <= 0 || len(s.Members) == 0 {
		return nil
	}
	s.sortMembersByFitness()

	elites := int(math.Round(cfg.Reproduction.EliteFraction * float64(len(s.Members))))
	if elites < 1 {
		elites = 1
	}
	if elites > count {
		elites = count
	}
	if elites > len(s.Members) {
		elites = len(s.Members)
	}

	offspring := make([]*Genome, 0, count)
	for i := 0; i < elites; i++ {
		offspring = append(offspring, s.Members[i].Copy())
	}

	survivors := int(math.Ceil(cfg.Reproduction.SurvivalThreshold * float64(len(s.Members))))
	if survivors < 2 {
		survivors = 2
	}
	if survivors > len(s.Members) {
		survivors = len(s.Members)
	}
	pool := s.Members[:survivors]

	for len(offspring) < count {
		var child *Genome
		if len(pool) < 2 {
			child = pool[0].Copy()
			child.Key = nextKey()
			child.Fitness = 0
		} else {
			p1 := pool[rng.Intn(len(pool))]
			p2 := pool[rng.Intn(len(pool))]
			child = p1.Crossover(p2, nextKey(), rng)
		}
		child.Mutate(rng, tracker)
		offspring = append(offspring, child)
	}
	return offspring
}
