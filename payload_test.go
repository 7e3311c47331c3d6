package dagwood

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalPayloadSnapshotIsDefensiveCopy(t *testing.T) {
	p := newCanonicalPayload([]byte("hello"))
	snap := p.snapshot()
	snap[0] = 'X'
	assert.Equal(t, "hello", string(p.snapshot()))
}

func TestCanonicalPayloadStoreReplacesData(t *testing.T) {
	p := newCanonicalPayload([]byte("hello"))
	p.store([]byte("world"))
	assert.Equal(t, "world", string(p.snapshot()))
}

func TestResultTableLoadMany(t *testing.T) {
	rt := newResultTable()
	rt.store("a", ProcessorResponse{Outcome: NextPayloadOutcome([]byte("A"))})
	rt.store("b", ProcessorResponse{Outcome: NextPayloadOutcome([]byte("B"))})

	loaded := rt.loadMany([]ProcessorID{"a", "b", "missing"})
	assert.Len(t, loaded, 2)
	assert.Equal(t, "A", string(loaded["a"].Outcome.NextPayload))
}

func TestResultTableSnapshotAll(t *testing.T) {
	rt := newResultTable()
	rt.store("a", ProcessorResponse{Outcome: NextPayloadOutcome([]byte("A"))})
	all := rt.snapshotAll()
	assert.Len(t, all, 1)
}
