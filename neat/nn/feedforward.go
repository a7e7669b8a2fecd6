// Package nn builds runnable phenotype networks from genomes. A compiled
// network evaluates faster than Genome.Forward because the traversal order
// and incoming edges are resolved once, which matters when the same genome
// plays out a long match.
package nn

import (
	"fmt"

	"github.com/quillium/neat-go/neat"
)

// neuralNode is one non-input node prepared for activation: its resolved
// activation function and the enabled connections feeding it.
type neuralNode struct {
	ID       int
	Activate neat.ActivationType
	Incoming []neat.ConnectionGene
}

// FeedForwardNetwork is a compiled acyclic phenotype. It holds no reference
// back to the genome, so the genome may mutate after compilation without
// affecting the network.
type FeedForwardNetwork struct {
	InputIDs  []int
	OutputIDs []int
	EvalOrder []neuralNode
}

// Compile builds a runnable network from a genome. Nodes are scheduled in
// depth order so every source value is ready before its consumers run.
func Compile(g *neat.Genome) (*FeedForwardNetwork, error) {
	activate, err := neat.GetActivation(g.Config.Activation)
	if err != nil {
		return nil, fmt.Errorf("cannot compile genome %d: %w", g.Key, err)
	}

	incoming := make(map[int][]neat.ConnectionGene)
	for _, key := range g.SortedConnectionKeys() {
		conn := g.Connections[key]
		if !conn.Enabled {
			continue
		}
		incoming[key.OutNodeID] = append(incoming[key.OutNodeID], *conn.Copy())
	}

	net := &FeedForwardNetwork{
		InputIDs:  g.InputIDs(),
		OutputIDs: g.OutputIDs(),
	}
	for _, layer := range g.Layers() {
		for _, id := range layer {
			if g.Nodes[id].Type == neat.InputNode {
				continue
			}
			net.EvalOrder = append(net.EvalOrder, neuralNode{
				ID:       id,
				Activate: activate,
				Incoming: incoming[id],
			})
		}
	}
	return net, nil
}

// Activate runs one forward pass and returns the output node values in
// stable output order.
func (net *FeedForwardNetwork) Activate(inputs []float64) ([]float64, error) {
	if len(inputs) != len(net.InputIDs) {
		return nil, fmt.Errorf("%w: got %d inputs, network has %d input nodes",
			neat.ErrInvalidInputSize, len(inputs), len(net.InputIDs))
	}

	values := make(map[int]float64, len(net.InputIDs)+len(net.EvalOrder))
	for i, id := range net.InputIDs {
		values[id] = inputs[i]
	}

	for _, node := range net.EvalOrder {
		sum := 0.0
		for _, conn := range node.Incoming {
			sum += values[conn.Key.InNodeID] * conn.Weight
		}
		values[node.ID] = node.Activate(sum)
	}

	outputs := make([]float64, len(net.OutputIDs))
	for i, id := range net.OutputIDs {
		outputs[i] = values[id]
	}
	return outputs, nil
}
