package neat

// InnovationTracker assigns global historical markers to structural mutations.
// It is owned by the Population and passed by handle into mutation operations;
// it is serialized with the population so that a resumed run never reuses or
// regresses a marker.
//
// The first time any genome in the run creates a connection between a given
// pair of nodes, a fresh marker is issued; every later creation of the same
// pair (in any genome) receives the same marker, which is what lets crossover
// and compatibility align genes across differently shaped genomes.
type InnovationTracker struct {
	NextInnovation int
	Assigned       map[ConnectionKey]int

	// Split registrations: node IDs issued for add-node mutations, keyed by
	// the connection that was split. Identical splits in different genomes
	// reuse the same node ID so their genes stay aligned.
	NextNodeID int
	SplitNodes map[ConnectionKey]int
}

// NewInnovationTracker creates an empty tracker starting at marker 1.
// firstNodeID is the first ID free for hidden nodes, i.e. one past the fixed
// input and output IDs.
func NewInnovationTracker(firstNodeID int) *InnovationTracker {
	return &InnovationTracker{
		NextInnovation: 1,
		Assigned:       make(map[ConnectionKey]int),
		NextNodeID:     firstNodeID,
		SplitNodes:     make(map[ConnectionKey]int),
	}
}

// InnovationFor returns the historical marker for the given connection key,
// issuing a new one if this structural mutation has not been seen this run.
func (it *InnovationTracker) InnovationFor(key ConnectionKey) int {
	if id, ok := it.Assigned[key]; ok {
		return id
	}
	id := it.NextInnovation
	it.NextInnovation++
	it.Assigned[key] = id
	return id
}

// SplitNodeFor returns the node ID registered for splitting the given
// connection, issuing and registering a fresh ID on first use. reused reports
// whether an identical split had already been registered this run.
func (it *InnovationTracker) SplitNodeFor(key ConnectionKey) (id int, reused bool) {
	if id, ok := it.SplitNodes[key]; ok {
		return id, true
	}
	id = it.NextNodeID
	it.NextNodeID++
	it.SplitNodes[key] = id
	return id, false
}

// NewNodeID issues a fresh node ID outside the split registry. Used when a
// registered split node already exists in the mutating genome.
func (it *InnovationTracker) NewNodeID() int {
	id := it.NextNodeID
	it.NextNodeID++
	return id
}

// Peak returns the highest marker issued so far.
func (it *InnovationTracker) Peak() int {
	return it.NextInnovation - 1
}
