package dagwood

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFailureControllerFailFastHaltsWithoutBlocking(t *testing.T) {
	graph := NewGraph(diamondSpecsForFailureTest())
	fc := newFailureController(FailFast, graph)

	blocked := fc.recordFailure("U")
	assert.Empty(t, blocked)
	assert.True(t, fc.shouldHalt())

	select {
	case <-fc.haltSignal():
	default:
		t.Fatal("haltSignal should be closed after FailFast failure")
	}
}

func TestFailureControllerContinueOnErrorBlocksTransitiveDependents(t *testing.T) {
	graph := NewGraph(diamondSpecsForFailureTest())
	fc := newFailureController(ContinueOnError, graph)

	blocked := fc.recordFailure("U")
	assert.ElementsMatch(t, []ProcessorID{"count", "length", "format"}, blocked)
	assert.False(t, fc.shouldHalt())

	blocker, isBlocked := fc.blockedBy("format")
	require.True(t, isBlocked)
	assert.Equal(t, ProcessorID("U"), blocker)
}

func TestFailureControllerDoesNotDoubleCountBlocked(t *testing.T) {
	graph := NewGraph(diamondSpecsForFailureTest())
	fc := newFailureController(ContinueOnError, graph)

	fc.recordFailure("U")
	second := fc.recordFailure("count")
	assert.Empty(t, second)
	assert.Equal(t, 3, fc.blockedCount())
}

func diamondSpecsForFailureTest() []ProcessorSpec {
	return []ProcessorSpec{
		{ID: "U"},
		{ID: "count", DependsOn: []ProcessorID{"U"}},
		{ID: "length", DependsOn: []ProcessorID{"U"}},
		{ID: "format", DependsOn: []ProcessorID{"count", "length"}},
	}
}
