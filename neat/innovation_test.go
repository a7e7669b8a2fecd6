package neat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInnovationMarkersAreSequential(t *testing.T) {
	tracker := NewInnovationTracker(5)

	a := tracker.InnovationFor(ConnectionKey{InNodeID: 0, OutNodeID: 4})
	b := tracker.InnovationFor(ConnectionKey{InNodeID: 1, OutNodeID: 4})

	assert.Equal(t, 1, a)
	assert.Equal(t, 2, b)
	assert.Equal(t, 2, tracker.Peak())
}

func TestInnovationForReusesMarker(t *testing.T) {
	tracker := NewInnovationTracker(5)
	key := ConnectionKey{InNodeID: 2, OutNodeID: 4}

	first := tracker.InnovationFor(key)
	second := tracker.InnovationFor(key)

	assert.Equal(t, first, second, "the same structural mutation keeps its marker")
	assert.Equal(t, 1, tracker.Peak())
}

func TestSplitNodeForReusesNodeID(t *testing.T) {
	tracker := NewInnovationTracker(5)
	key := ConnectionKey{InNodeID: 0, OutNodeID: 4}

	id, reused := tracker.SplitNodeFor(key)
	assert.Equal(t, 5, id)
	assert.False(t, reused)

	again, reused := tracker.SplitNodeFor(key)
	assert.Equal(t, id, again)
	assert.True(t, reused)

	other, reused := tracker.SplitNodeFor(ConnectionKey{InNodeID: 1, OutNodeID: 4})
	assert.Equal(t, 6, other)
	assert.False(t, reused)
}

func TestNewNodeIDNeverCollides(t *testing.T) {
	tracker := NewInnovationTracker(3)

	split, _ := tracker.SplitNodeFor(ConnectionKey{InNodeID: 0, OutNodeID: 2})
	fresh := tracker.NewNodeID()

	assert.NotEqual(t, split, fresh)
	assert.Greater(t, fresh, split)
}
