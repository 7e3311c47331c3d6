package dagwood_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ciroque/the-dagwood"
)

func linearSpecs() []dagwood.ProcessorSpec {
	return []dagwood.ProcessorSpec{
		{ID: "uppercase"},
		{ID: "reverse", DependsOn: []dagwood.ProcessorID{"uppercase"}},
	}
}

func diamondSpecs() []dagwood.ProcessorSpec {
	return []dagwood.ProcessorSpec{
		{ID: "U"},
		{ID: "count", DependsOn: []dagwood.ProcessorID{"U"}},
		{ID: "length", DependsOn: []dagwood.ProcessorID{"U"}},
		{ID: "format", DependsOn: []dagwood.ProcessorID{"count", "length"}},
	}
}

func TestNewGraphLinearChain(t *testing.T) {
	require.NoError(t, dagwood.Validate(linearSpecs()))
	g := dagwood.NewGraph(linearSpecs())

	assert.True(t, g.Entries.Contains("uppercase"))
	assert.False(t, g.Entries.Contains("reverse"))
	assert.Equal(t, 0, g.Rank["uppercase"])
	assert.Equal(t, 1, g.Rank["reverse"])
	assert.Equal(t, []dagwood.ProcessorID{"reverse"}, g.Forward["uppercase"])
}

func TestGraphLevelsDiamond(t *testing.T) {
	require.NoError(t, dagwood.Validate(diamondSpecs()))
	g := dagwood.NewGraph(diamondSpecs())

	levels := g.Levels()
	require.Len(t, levels, 3)
	assert.Equal(t, []dagwood.ProcessorID{"U"}, levels[0])
	assert.ElementsMatch(t, []dagwood.ProcessorID{"count", "length"}, levels[1])
	assert.Equal(t, []dagwood.ProcessorID{"format"}, levels[2])
}

func TestTransitiveDependents(t *testing.T) {
	g := dagwood.NewGraph(diamondSpecs())
	assert.ElementsMatch(t, []dagwood.ProcessorID{"count", "length", "format"}, g.TransitiveDependents("U"))
	assert.Empty(t, g.TransitiveDependents("format"))
}
