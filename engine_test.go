package dagwood_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ciroque/the-dagwood"
)

func upperProc() dagwood.Processor {
	return dagwood.TransformFunc("uppercase", func(_ context.Context, req dagwood.ProcessorRequest) (dagwood.ProcessorResponse, error) {
		out := make([]byte, len(req.Payload))
		for i, b := range req.Payload {
			if b >= 'a' && b <= 'z' {
				b -= 'a' - 'A'
			}
			out[i] = b
		}
		return dagwood.ProcessorResponse{Outcome: dagwood.NextPayloadOutcome(out)}, nil
	})
}

func reverseProc() dagwood.Processor {
	return dagwood.TransformFunc("reverse", func(_ context.Context, req dagwood.ProcessorRequest) (dagwood.ProcessorResponse, error) {
		in := req.Payload
		out := make([]byte, len(in))
		for i, b := range in {
			out[len(in)-1-i] = b
		}
		return dagwood.ProcessorResponse{Outcome: dagwood.NextPayloadOutcome(out)}, nil
	})
}

// runScenario validates, builds the graph, and executes it under every
// scheduling strategy in turn, asserting the caller's check against each —
// the three schedulers must agree on every observable outcome (§8).
func runScenario(t *testing.T, specs []dagwood.ProcessorSpec, processors dagwood.ProcessorMap, failureStrategy dagwood.FailureStrategy, input string, check func(t *testing.T, results map[dagwood.ProcessorID]dagwood.ProcessorResponse, summary dagwood.RunSummary, err error)) {
	t.Helper()
	require.NoError(t, dagwood.Validate(specs))
	graph := dagwood.NewGraph(specs)

	for _, strategy := range []dagwood.Strategy{dagwood.StrategyWorkQueue, dagwood.StrategyLevel, dagwood.StrategyReactive} {
		t.Run(string(strategy), func(t *testing.T) {
			engine := dagwood.NewEngine(graph, processors)
			results, summary, err := engine.Execute(context.Background(), strategy, failureStrategy, dagwood.ProcessorRequest{Payload: []byte(input)})
			check(t, results, summary, err)
		})
	}
}

func TestLinearTransformChain(t *testing.T) {
	specs := []dagwood.ProcessorSpec{
		{ID: "uppercase"},
		{ID: "reverse", DependsOn: []dagwood.ProcessorID{"uppercase"}},
	}
	processors := dagwood.ProcessorMap{"uppercase": upperProc(), "reverse": reverseProc()}

	runScenario(t, specs, processors, dagwood.FailFast, "hello world", func(t *testing.T, results map[dagwood.ProcessorID]dagwood.ProcessorResponse, summary dagwood.RunSummary, err error) {
		require.NoError(t, err)
		assert.Equal(t, "HELLO WORLD", string(results["uppercase"].Outcome.NextPayload))
		assert.Equal(t, "DLROW OLLEH", string(results["reverse"].Outcome.NextPayload))
		assert.Equal(t, 2, summary.Succeeded)
	})
}

func TestDiamondWithAnalyzeBranches(t *testing.T) {
	specs := []dagwood.ProcessorSpec{
		{ID: "U"},
		{ID: "count", DependsOn: []dagwood.ProcessorID{"U"}},
		{ID: "length", DependsOn: []dagwood.ProcessorID{"U"}},
		{ID: "format", DependsOn: []dagwood.ProcessorID{"count", "length"}},
	}

	wordCount := dagwood.AnalyzeFunc("count", func(_ context.Context, req dagwood.ProcessorRequest) (dagwood.ProcessorResponse, error) {
		assert.Equal(t, "HELLO WORLD", string(req.Payload))
		return dagwood.ProcessorResponse{
			Outcome:  dagwood.NextPayloadOutcome(nil),
			Metadata: dagwood.MetadataMap{"count": {"word_count": "2"}},
		}, nil
	})
	charLength := dagwood.AnalyzeFunc("length", func(_ context.Context, req dagwood.ProcessorRequest) (dagwood.ProcessorResponse, error) {
		assert.Equal(t, "HELLO WORLD", string(req.Payload))
		return dagwood.ProcessorResponse{
			Outcome:  dagwood.NextPayloadOutcome(nil),
			Metadata: dagwood.MetadataMap{"length": {"char_count": "11"}},
		}, nil
	})
	format := dagwood.TransformFunc("format", func(_ context.Context, req dagwood.ProcessorRequest) (dagwood.ProcessorResponse, error) {
		out := "WC=" + req.Metadata["count"]["word_count"] + ";CC=" + req.Metadata["length"]["char_count"]
		return dagwood.ProcessorResponse{Outcome: dagwood.NextPayloadOutcome([]byte(out))}, nil
	})

	processors := dagwood.ProcessorMap{"U": upperProc(), "count": wordCount, "length": charLength, "format": format}

	runScenario(t, specs, processors, dagwood.FailFast, "hello world", func(t *testing.T, results map[dagwood.ProcessorID]dagwood.ProcessorResponse, summary dagwood.RunSummary, err error) {
		require.NoError(t, err)
		assert.Equal(t, "HELLO WORLD", string(results["U"].Outcome.NextPayload))
		assert.Equal(t, "WC=2;CC=11", string(results["format"].Outcome.NextPayload))
	})
}

func TestUnresolvedDependencyNeverSchedules(t *testing.T) {
	specs := []dagwood.ProcessorSpec{
		{ID: "a", DependsOn: []dagwood.ProcessorID{"ghost"}},
	}
	err := dagwood.Validate(specs)
	require.Error(t, err)

	var verr *dagwood.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.UnresolvedReferences, 1)
	assert.Equal(t, dagwood.UnresolvedDependency{Processor: "a", Missing: "ghost"}, verr.UnresolvedReferences[0])
}

func TestCycleDetectionNeverSchedules(t *testing.T) {
	specs := []dagwood.ProcessorSpec{
		{ID: "a", DependsOn: []dagwood.ProcessorID{"c"}},
		{ID: "b", DependsOn: []dagwood.ProcessorID{"a"}},
		{ID: "c", DependsOn: []dagwood.ProcessorID{"b"}},
	}
	err := dagwood.Validate(specs)
	require.Error(t, err)

	var verr *dagwood.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.ElementsMatch(t, []dagwood.ProcessorID{"a", "b", "c"}, dedupe(verr.Cycle))
}

func dedupe(ids []dagwood.ProcessorID) []dagwood.ProcessorID {
	seen := make(map[dagwood.ProcessorID]struct{})
	var out []dagwood.ProcessorID
	for _, id := range ids {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out
}

func fanOutSpecs() []dagwood.ProcessorSpec {
	return []dagwood.ProcessorSpec{
		{ID: "start"},
		{ID: "ok1", DependsOn: []dagwood.ProcessorID{"start"}},
		{ID: "fail", DependsOn: []dagwood.ProcessorID{"start"}},
		{ID: "ok2", DependsOn: []dagwood.ProcessorID{"start"}},
		{ID: "sink", DependsOn: []dagwood.ProcessorID{"ok1", "fail", "ok2"}},
	}
}

func fanOutProcessors() dagwood.ProcessorMap {
	passthrough := func(id dagwood.ProcessorID) dagwood.Processor {
		return dagwood.TransformFunc(id, func(_ context.Context, req dagwood.ProcessorRequest) (dagwood.ProcessorResponse, error) {
			return dagwood.ProcessorResponse{Outcome: dagwood.NextPayloadOutcome(req.Payload)}, nil
		})
	}
	failing := dagwood.TransformFunc("fail", func(context.Context, dagwood.ProcessorRequest) (dagwood.ProcessorResponse, error) {
		return dagwood.ProcessorResponse{Outcome: dagwood.ErrorOutcome(500, "boom")}, nil
	})
	return dagwood.ProcessorMap{
		"start": passthrough("start"),
		"ok1":   passthrough("ok1"),
		"fail":  failing,
		"ok2":   passthrough("ok2"),
		"sink":  passthrough("sink"),
	}
}

func TestFailFastFanOut(t *testing.T) {
	runScenario(t, fanOutSpecs(), fanOutProcessors(), dagwood.FailFast, "x", func(t *testing.T, results map[dagwood.ProcessorID]dagwood.ProcessorResponse, summary dagwood.RunSummary, err error) {
		require.Error(t, err)

		var failedErr *dagwood.ProcessorFailedError
		require.ErrorAs(t, err, &failedErr)
		assert.Equal(t, dagwood.ProcessorID("fail"), failedErr.ID)
		assert.Equal(t, "boom", failedErr.Detail.Message)

		_, sinkRan := results["sink"]
		if sinkRan {
			assert.False(t, results["sink"].Outcome.Successful())
		}
		assert.Contains(t, results, dagwood.ProcessorID("start"))
		assert.Contains(t, results, dagwood.ProcessorID("fail"))
	})
}

func TestContinueOnErrorIsolation(t *testing.T) {
	runScenario(t, fanOutSpecs(), fanOutProcessors(), dagwood.ContinueOnError, "x", func(t *testing.T, results map[dagwood.ProcessorID]dagwood.ProcessorResponse, summary dagwood.RunSummary, err error) {
		require.Error(t, err)

		var multiErr *dagwood.MultipleFailedError
		require.ErrorAs(t, err, &multiErr)
		require.Len(t, multiErr.Failures, 1)
		assert.Equal(t, dagwood.ProcessorID("fail"), multiErr.Failures[0].ID)

		assert.True(t, results["ok1"].Outcome.Successful())
		assert.True(t, results["ok2"].Outcome.Successful())
		assert.False(t, results["sink"].Outcome.Successful())
	})
}
