package neat

import (
	"fmt"
	"math/rand"
)

// NodeType classifies a node gene within the network graph.
type NodeType int

const (
	InputNode NodeType = iota
	HiddenNode
	OutputNode
)

// String returns a short label for the node type.
func (t NodeType) String() string {
	switch t {
	case InputNode:
		return "input"
	case HiddenNode:
		return "hidden"
	case OutputNode:
		return "output"
	}
	return "unknown"
}

// --------------------------- NodeGene ---------------------------

// NodeGene represents a node (neuron) in the neural network genome.
// Depth is the node's topological layer; it is recomputed after every
// structural mutation and after loading a checkpoint.
type NodeGene struct {
	ID    int
	Type  NodeType
	Depth int
}

// NewNodeGene creates a new NodeGene of the given type at depth zero.
func NewNodeGene(id int, nodeType NodeType) *NodeGene {
	return &NodeGene{ID: id, Type: nodeType}
}

// String returns a string representation of the NodeGene.
func (ng *NodeGene) String() string {
	return fmt.Sprintf("NodeGene(ID: %d, Type: %s, Depth: %d)", ng.ID, ng.Type, ng.Depth)
}

// Copy creates a deep copy of the NodeGene.
func (ng *NodeGene) Copy() *NodeGene {
	c := *ng
	return &c
}

// --------------------------- ConnectionGene ---------------------------

// ConnectionKey uniquely identifies a connection gene within a genome by its
// endpoint node IDs. It is a value type so it can be used directly as a map
// key and compared across genomes.
type ConnectionKey struct {
	InNodeID  int
	OutNodeID int
}

// ConnectionGene represents a directed, weighted edge between two nodes.
// Innovation is the global historical marker assigned the first time this
// exact key was created anywhere in the run; identical structural mutations
// in different genomes share the same marker.
type ConnectionGene struct {
	Key        ConnectionKey
	Weight     float64
	Enabled    bool
	Innovation int
}

// NewConnectionGene creates an enabled connection with the given weight and
// innovation marker.
func NewConnectionGene(key ConnectionKey, weight float64, innovation int) *ConnectionGene {
	return &ConnectionGene{
		Key:        key,
		Weight:     weight,
		Enabled:    true,
		Innovation: innovation,
	}
}

// String returns a string representation of the ConnectionGene.
func (cg *ConnectionGene) String() string {
	return fmt.Sprintf("ConnGene(%d->%d, Weight: %.3f, Enabled: %t, Innov: %d)",
		cg.Key.InNodeID, cg.Key.OutNodeID, cg.Weight, cg.Enabled, cg.Innovation)
}

// Copy creates a deep copy of the ConnectionGene.
func (cg *ConnectionGene) Copy() *ConnectionGene {
	c := *cg
	return &c
}

// MutateWeight perturbs or replaces the connection weight according to the
// configured rates, clamping the result to the configured range.
func (cg *ConnectionGene) MutateWeight(rng *rand.Rand, cfg *GenomeConfig) {
	if rng.Float64() >= cfg.WeightMutateRate {
		return
	}
	if rng.Float64() < cfg.WeightReplaceRate {
		cg.Weight = cfg.randomWeight(rng)
		return
	}
	cg.Weight = clamp(cg.Weight+rng.NormFloat64()*cfg.WeightMutatePower,
		cfg.WeightMinValue, cfg.WeightMaxValue)
}
