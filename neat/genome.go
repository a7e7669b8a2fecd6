package neat

import (
	"fmt"
	"math/rand"
	"sort"
)

// Genome represents an individual organism: a typed node arena plus a set of
// innovation-tagged connections. Nodes and connections are owned by exactly
// one genome; crossover and elitism always work on copies.
type Genome struct {
	Key         int
	Nodes       map[int]*NodeGene
	Connections map[ConnectionKey]*ConnectionGene
	Fitness     float64

	NumInputs  int
	NumOutputs int

	// Config holds a reference to the genome parameters for mutation and
	// distance calculations. Re-linked to the live configuration after load.
	Config *GenomeConfig
}

// NewGenome creates a minimal genome: input nodes with IDs 0..inputs-1 and
// output nodes with IDs inputs..inputs+outputs-1. Initial wiring fully
// connects every input to every output; the shared tracker guarantees the
// whole initial population agrees on those innovation markers.
func NewGenome(key, inputs, outputs int, cfg *GenomeConfig, tracker *InnovationTracker, rng *rand.Rand) *Genome {
	g := &Genome{
		Key:         key,
		Nodes:       make(map[int]*NodeGene, inputs+outputs),
		Connections: make(map[ConnectionKey]*ConnectionGene, inputs*outputs),
		NumInputs:   inputs,
		NumOutputs:  outputs,
		Config:      cfg,
	}
	for i := 0; i < inputs; i++ {
		g.Nodes[i] = NewNodeGene(i, InputNode)
	}
	for i := 0; i < outputs; i++ {
		id := inputs + i
		g.Nodes[id] = NewNodeGene(id, OutputNode)
	}
	if cfg.InitialConnection != "unconnected" {
		for in := 0; in < inputs; in++ {
			for out := inputs; out < inputs+outputs; out++ {
				key := ConnectionKey{InNodeID: in, OutNodeID: out}
				g.Connections[key] = NewConnectionGene(key, cfg.randomWeight(rng), tracker.InnovationFor(key))
			}
		}
	}
	g.computeDepths()
	return g
}

// Copy creates a deep copy of the genome, including disabled connections.
func (g *Genome) Copy() *Genome {
	c := &Genome{
		Key:         g.Key,
		Nodes:       make(map[int]*NodeGene, len(g.Nodes)),
		Connections: make(map[ConnectionKey]*ConnectionGene, len(g.Connections)),
		Fitness:     g.Fitness,
		NumInputs:   g.NumInputs,
		NumOutputs:  g.NumOutputs,
		Config:      g.Config,
	}
	for id, n := range g.Nodes {
		c.Nodes[id] = n.Copy()
	}
	for key, conn := range g.Connections {
		c.Connections[key] = conn.Copy()
	}
	return c
}

// InputIDs returns the input node IDs in their fixed order.
func (g *Genome) InputIDs() []int {
	ids := make([]int, g.NumInputs)
	for i := range ids {
		ids[i] = i
	}
	return ids
}

// OutputIDs returns the output node IDs in their fixed order.
func (g *Genome) OutputIDs() []int {
	ids := make([]int, g.NumOutputs)
	for i := range ids {
		ids[i] = g.NumInputs + i
	}
	return ids
}

// SortedConnectionKeys returns the genome's connection keys in a stable
// order, so iteration under a seeded rng is reproducible.
func (g *Genome) SortedConnectionKeys() []ConnectionKey {
	keys := make([]ConnectionKey, 0, len(g.Connections))
	for k := range g.Connections {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].InNodeID != keys[j].InNodeID {
			return keys[i].InNodeID < keys[j].InNodeID
		}
		return keys[i].OutNodeID < keys[j].OutNodeID
	})
	return keys
}

// sortedNodeIDs returns the genome's node IDs in ascending order.
func (g *Genome) sortedNodeIDs() []int {
	ids := make([]int, 0, len(g.Nodes))
	for id := range g.Nodes {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// --------------------------- Evaluation ---------------------------

// computeDepths assigns every node its topological layer: inputs at depth 0,
// every other node one past its deepest enabled source. Mutations reject
// cycles before committing, so the recursion always terminates.
func (g *Genome) computeDepths() {
	incoming := make(map[int][]ConnectionKey)
	for key, conn := range g.Connections {
		if conn.Enabled {
			incoming[key.OutNodeID] = append(incoming[key.OutNodeID], key)
		}
	}

	depths := make(map[int]int, len(g.Nodes))
	var resolve func(id int) int
	resolve = func(id int) int {
		if d, ok := depths[id]; ok {
			return d
		}
		node := g.Nodes[id]
		if node != nil && node.Type == InputNode {
			depths[id] = 0
			return 0
		}
		depths[id] = 0 // provisional, stops the walk on revisit
		d := 0
		for _, key := range incoming[id] {
			if sd := resolve(key.InNodeID) + 1; sd > d {
				d = sd
			}
		}
		depths[id] = d
		return d
	}
	for id, node := range g.Nodes {
		node.Depth = resolve(id)
	}
}

// Layers groups the genome's node IDs by depth, ascending, with stable order
// inside each layer.
func (g *Genome) Layers() [][]int {
	maxDepth := 0
	for _, n := range g.Nodes {
		if n.Depth > maxDepth {
			maxDepth = n.Depth
		}
	}
	layers := make([][]int, maxDepth+1)
	for _, id := range g.sortedNodeIDs() {
		d := g.Nodes[id].Depth
		layers[d] = append(layers[d], id)
	}
	return layers
}

// Forward assigns the input vector to the input nodes in fixed order,
// evaluates all nodes in ascending depth order through enabled connections,
// and returns the output node activations in fixed order.
func (g *Genome) Forward(inputs []float64) ([]float64, error) {
	if len(inputs) != g.NumInputs {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrInvalidInputSize, len(inputs), g.NumInputs)
	}
	activate, err := GetActivation(g.Config.Activation)
	if err != nil {
		return nil, err
	}

	incoming := make(map[int][]*ConnectionGene)
	for _, conn := range g.Connections {
		if conn.Enabled {
			incoming[conn.Key.OutNodeID] = append(incoming[conn.Key.OutNodeID], conn)
		}
	}

	values := make(map[int]float64, len(g.Nodes))
	for i := 0; i < g.NumInputs; i++ {
		values[i] = inputs[i]
	}
	for _, layer := range g.Layers() {
		for _, id := range layer {
			if g.Nodes[id].Type == InputNode {
				continue
			}
			// A node with no enabled incoming connections activates over an
			// empty sum; inputs are the only nodes passed through raw.
			sum := 0.0
			for _, conn := range incoming[id] {
				sum += values[conn.Key.InNodeID] * conn.Weight
			}
			values[id] = activate(sum)
		}
	}

	outputs := make([]float64, g.NumOutputs)
	for i, id := range g.OutputIDs() {
		outputs[i] = values[id]
	}
	return outputs, nil
}

// --------------------------- Mutation ---------------------------

// Mutate applies weight, structural, and enable-flag mutations in that order.
// Structural mutations that cannot find a valid target are silent no-ops;
// the genome simply skips them this cycle.
func (g *Genome) Mutate(rng *rand.Rand, tracker *InnovationTracker) {
	g.MutateWeights(rng)
	if rng.Float64() < g.Config.ConnAddProb {
		g.MutateAddConnection(rng, tracker)
	}
	if rng.Float64() < g.Config.NodeAddProb {
		g.MutateAddNode(rng, tracker)
	}
	g.MutateToggleEnable(rng)
}

// MutateWeights perturbs or replaces each connection weight per the
// configured rates.
func (g *Genome) MutateWeights(rng *rand.Rand) {
	for _, key := range g.SortedConnectionKeys() {
		g.Connections[key].MutateWeight(rng, g.Config)
	}
}

// MutateAddConnection attempts to connect two previously unconnected nodes
// with a forward (acyclic) edge. It gives up after a bounded number of
// attempts; exhaustion is reported as false, never as an error.
func (g *Genome) MutateAddConnection(rng *rand.Rand, tracker *InnovationTracker) bool {
	ids := g.sortedNodeIDs()
	for attempt := 0; attempt < g.Config.MaxAddConnAttempts; attempt++ {
		in := ids[rng.Intn(len(ids))]
		out := ids[rng.Intn(len(ids))]
		if in == out {
			continue
		}
		if g.Nodes[in].Type == OutputNode || g.Nodes[out].Type == InputNode {
			continue
		}
		key := ConnectionKey{InNodeID: in, OutNodeID: out}
		if _, exists := g.Connections[key]; exists {
			continue
		}
		if g.createsCycle(in, out) {
			continue
		}
		g.Connections[key] = NewConnectionGene(key, g.Config.randomWeight(rng), tracker.InnovationFor(key))
		g.computeDepths()
		return true
	}
	return false
}

// MutateAddNode splits a random enabled connection: the original is disabled
// and replaced by input->new (weight 1) and new->output (original weight),
// each with its own innovation marker.
func (g *Genome) MutateAddNode(rng *rand.Rand, tracker *InnovationTracker) bool {
	enabled := make([]ConnectionKey, 0, len(g.Connections))
	for _, key := range g.SortedConnectionKeys() {
		if g.Connections[key].Enabled {
			enabled = append(enabled, key)
		}
	}
	if len(enabled) == 0 {
		return false
	}
	splitKey := enabled[rng.Intn(len(enabled))]
	split := g.Connections[splitKey]

	nodeID, _ := tracker.SplitNodeFor(splitKey)
	if _, exists := g.Nodes[nodeID]; exists {
		// This genome already holds the registered split node (the same
		// connection was split before and re-enabled). Take a fresh ID.
		nodeID = tracker.NewNodeID()
	}

	split.Enabled = false
	g.Nodes[nodeID] = NewNodeGene(nodeID, HiddenNode)

	inKey := ConnectionKey{InNodeID: splitKey.InNodeID, OutNodeID: nodeID}
	outKey := ConnectionKey{InNodeID: nodeID, OutNodeID: splitKey.OutNodeID}
	g.Connections[inKey] = NewConnectionGene(inKey, 1.0, tracker.InnovationFor(inKey))
	g.Connections[outKey] = NewConnectionGene(outKey, split.Weight, tracker.InnovationFor(outKey))
	g.computeDepths()
	return true
}

// MutateToggleEnable flips each connection's enabled flag with the configured
// probability. Disabling preserves the gene for future crossover; enabling is
// refused when it would introduce a cycle.
func (g *Genome) MutateToggleEnable(rng *rand.Rand) {
	changed := false
	for _, key := range g.SortedConnectionKeys() {
		conn := g.Connections[key]
		if rng.Float64() >= g.Config.EnabledMutateRate {
			continue
		}
		if conn.Enabled {
			conn.Enabled = false
			changed = true
		} else if !g.createsCycle(key.InNodeID, key.OutNodeID) {
			conn.Enabled = true
			changed = true
		}
	}
	if changed {
		g.computeDepths()
	}
}

// createsCycle reports whether adding (or enabling) an edge in->out would
// close a cycle through the currently enabled connections.
func (g *Genome) createsCycle(in, out int) bool {
	if in == out {
		return true
	}
	visited := map[int]bool{}
	queue := []int{out}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if current == in {
			return true
		}
		if visited[current] {
			continue
		}
		visited[current] = true
		for key, conn := range g.Connections {
			if conn.Enabled && key.InNodeID == current {
				queue = append(queue, key.OutNodeID)
			}
		}
	}
	return false
}

// --------------------------- Distance ---------------------------

// Distance returns the compatibility distance between two genomes: the count
// of disjoint and excess connections scaled by the larger genome's size, plus
// the average weight difference of matching genes. Symmetric by construction.
func (g *Genome) Distance(other *Genome) float64 {
	byInnovation := make(map[int]*ConnectionGene, len(other.Connections))
	for _, conn := range other.Connections {
		byInnovation[conn.Innovation] = conn
	}

	disjoint := 0
	matching := 0
	weightDiff := 0.0
	for _, conn := range g.Connections {
		if match, ok := byInnovation[conn.Innovation]; ok {
			matching++
			weightDiff += absFloat(conn.Weight - match.Weight)
		} else {
			disjoint++
		}
	}
	disjoint += len(other.Connections) - matching

	n := float64(len(g.Connections))
	if m := float64(len(other.Connections)); m > n {
		n = m
	}
	if n < 1 {
		n = 1
	}

	d := g.Config.CompatibilityDisjointCoefficient * float64(disjoint) / n
	if matching > 0 {
		d += g.Config.CompatibilityWeightCoefficient * weightDiff / float64(matching)
	}
	return d
}

func absFloat(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

// --------------------------- Crossover ---------------------------

// Crossover produces a child from two parents. Genes matching by innovation
// marker are inherited from a random parent; disjoint and excess genes come
// only from the fitter parent (from either, with equal chance, when fitness
// ties). A gene disabled in either parent stays disabled in the child with
// the configured probability. The child's node set is the union of nodes
// referenced by inherited connections plus all input and output nodes.
func (g *Genome) Crossover(other *Genome, childKey int, rng *rand.Rand) *Genome {
	fitter, weaker := g, other
	if other.Fitness > g.Fitness {
		fitter, weaker = other, g
	}
	tie := g.Fitness == other.Fitness

	weakerByInnovation := make(map[int]*ConnectionGene, len(weaker.Connections))
	for _, conn := range weaker.Connections {
		weakerByInnovation[conn.Innovation] = conn
	}
	fitterInnovations := make(map[int]bool, len(fitter.Connections))
	for _, conn := range fitter.Connections {
		fitterInnovations[conn.Innovation] = true
	}

	child := &Genome{
		Key:         childKey,
		Nodes:       make(map[int]*NodeGene),
		Connections: make(map[ConnectionKey]*ConnectionGene),
		NumInputs:   fitter.NumInputs,
		NumOutputs:  fitter.NumOutputs,
		Config:      fitter.Config,
	}

	// Structural nodes are always present.
	for _, parent := range []*Genome{fitter, weaker} {
		for id, node := range parent.Nodes {
			if node.Type != HiddenNode {
				if _, ok := child.Nodes[id]; !ok {
					child.Nodes[id] = node.Copy()
				}
			}
		}
	}

	inherit := make([]*ConnectionGene, 0, len(fitter.Connections))
	for _, key := range fitter.SortedConnectionKeys() {
		conn := fitter.Connections[key]
		if match, ok := weakerByInnovation[conn.Innovation]; ok {
			chosen := conn
			if rng.Float64() < 0.5 {
				chosen = match
			}
			gene := chosen.Copy()
			if !conn.Enabled || !match.Enabled {
				gene.Enabled = rng.Float64() >= g.Config.CrossoverDisableProb
			}
			inherit = append(inherit, gene)
		} else if !tie || rng.Float64() < 0.5 {
			inherit = append(inherit, conn.Copy())
		}
	}
	if tie {
		// Equal fitness: both parents' disjoint genes each get a coin flip,
		// so neither side of the tie is favored structurally.
		for _, key := range weaker.SortedConnectionKeys() {
			conn := weaker.Connections[key]
			if !fitterInnovations[conn.Innovation] && rng.Float64() < 0.5 {
				inherit = append(inherit, conn.Copy())
			}
		}
	}

	// Commit in ascending innovation order. Mixing two acyclic parents can
	// close a loop; such genes are carried disabled so history survives
	// without breaking the feedforward invariant.
	sort.Slice(inherit, func(i, j int) bool { return inherit[i].Innovation < inherit[j].Innovation })
	for _, gene := range inherit {
		if _, dup := child.Connections[gene.Key]; dup {
			continue
		}
		for _, id := range []int{gene.Key.InNodeID, gene.Key.OutNodeID} {
			if _, ok := child.Nodes[id]; !ok {
				child.Nodes[id] = g.nodeFromEitherParent(fitter, weaker, id)
			}
		}
		if gene.Enabled && child.createsCycle(gene.Key.InNodeID, gene.Key.OutNodeID) {
			gene.Enabled = false
		}
		child.Connections[gene.Key] = gene
	}

	child.computeDepths()
	return child
}

func (g *Genome) nodeFromEitherParent(fitter, weaker *Genome, id int) *NodeGene {
	if node, ok := fitter.Nodes[id]; ok {
		return node.Copy()
	}
	return weaker.Nodes[id].Copy()
}

// String returns a compact description of the genome.
func (g *Genome) String() string {
	enabled := 0
	for _, conn := range g.Connections {
		if conn.Enabled {
			enabled++
		}
	}
	return fmt.Sprintf("Genome(Key: %d, Nodes: %d, Connections: %d/%d enabled, Fitness: %.3f)",
		g.Key, len(g.Nodes), enabled, len(g.Connections), g.Fitness)
}
