package dagwood_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ciroque/the-dagwood"
)

func TestValidateOK(t *testing.T) {
	require.NoError(t, dagwood.Validate(diamondSpecs()))
}

func TestValidateDuplicateIDs(t *testing.T) {
	specs := []dagwood.ProcessorSpec{{ID: "a"}, {ID: "a"}}
	err := dagwood.Validate(specs)
	require.Error(t, err)

	var verr *dagwood.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []dagwood.ProcessorID{"a"}, verr.DuplicateIDs)
}

func TestValidateUnresolvedDependency(t *testing.T) {
	specs := []dagwood.ProcessorSpec{
		{ID: "a", DependsOn: []dagwood.ProcessorID{"ghost"}},
	}
	err := dagwood.Validate(specs)
	require.Error(t, err)

	var verr *dagwood.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.UnresolvedReferences, 1)
	assert.Equal(t, dagwood.ProcessorID("a"), verr.UnresolvedReferences[0].Processor)
	assert.Equal(t, dagwood.ProcessorID("ghost"), verr.UnresolvedReferences[0].Missing)
}

func TestValidateCycle(t *testing.T) {
	specs := []dagwood.ProcessorSpec{
		{ID: "a", DependsOn: []dagwood.ProcessorID{"c"}},
		{ID: "b", DependsOn: []dagwood.ProcessorID{"a"}},
		{ID: "c", DependsOn: []dagwood.ProcessorID{"b"}},
	}
	err := dagwood.Validate(specs)
	require.Error(t, err)

	var verr *dagwood.ValidationError
	require.ErrorAs(t, err, &verr)
	require.NotEmpty(t, verr.Cycle)
	assert.Contains(t, verr.Cycle, dagwood.ProcessorID("a"))
	assert.Contains(t, verr.Cycle, dagwood.ProcessorID("b"))
	assert.Contains(t, verr.Cycle, dagwood.ProcessorID("c"))
}

func TestValidateSkipsCycleCheckAfterEarlierErrors(t *testing.T) {
	specs := []dagwood.ProcessorSpec{{ID: "a"}, {ID: "a"}}
	err := dagwood.Validate(specs)

	var verr *dagwood.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Nil(t, verr.Cycle)
}
