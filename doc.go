// Package neatgo evolves feed-forward neural networks with the
// NeuroEvolution of Augmenting Topologies (NEAT) algorithm, driven step by
// step by an external evaluator such as a game loop.
//
// NEAT is a genetic algorithm that evolves both the connection weights and
// the topology of a network, protecting structural innovation through
// speciation so new shapes get time to optimize before competing with the
// whole population.
//
// Unlike batch NEAT libraries that take a fitness callback, this engine
// inverts control: the caller pulls genomes one at a time, scores them
// however it likes (a match of a board game, a simulation episode), and
// hands control back. Reproduction happens transparently when the last
// genome of a generation has been scored.
//
// Basic usage:
//
//	pop, err := neat.NewPopulation(neat.DefaultConfig())
//	if err != nil {
//		log.Fatal(err)
//	}
//	if err := pop.Generate(4, 1, 150); err != nil {
//		log.Fatal(err)
//	}
//
//	for pop.ShouldEvolve() {
//		genome, err := pop.GetGenome()
//		if err != nil {
//			break
//		}
//		genome.Fitness = evaluate(genome)
//		if err := pop.NextGenome("my-run"); err != nil {
//			log.Fatal(err)
//		}
//	}
//
// Evolution state is checkpointed after every generation, so a run resumed
// with neat.Load picks up exactly where it stopped.
package neatgo
