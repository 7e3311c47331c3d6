package dagwood

import (
	"context"
	"sync"

	"github.com/zoobzio/capitan"
)

// levelScheduler executes the graph one topological level at a time: every
// processor in a level runs concurrently (bounded by maxConcurrency), and
// the scheduler waits for the entire level to finish before admitting the
// next. Grounded on original_source/src/engine/level_by_level.rs's
// Kahn's-algorithm level computation — reusing Graph.Levels(), computed
// once by NewGraph, rather than recomputing levels per run. The barrier
// between levels is what makes this scheduler's canonical-payload updates
// deterministic: every Transform in level N has landed before any
// processor in level N+1 takes its payload snapshot.
type levelScheduler struct {
	engine *Engine
	graph  *Graph
}

func newLevelScheduler(engine *Engine, graph *Graph) *levelScheduler {
	return &levelScheduler{engine: engine, graph: graph}
}

func (s *levelScheduler) run(ctx context.Context, initial ProcessorRequest, payload *canonicalPayload, results *resultTable, fc *failureController) error {
	sem := make(chan struct{}, s.engine.maxConcurrency)

	for levelIndex, level := range s.graph.Levels() {
		if fc.shouldHalt() {
			break
		}

		capitan.Info(ctx, SignalSchedulerLevelStart, FieldLevel.Field(levelIndex), FieldLevelSize.Field(len(level)))

		var wg sync.WaitGroup
		for _, id := range level {
			if fc.shouldHalt() {
				break
			}

			if blocker, isBlocked := fc.blockedBy(id); isBlocked {
				s.engine.recordBlocked(id, blocker, results)
				continue
			}

			select {
			case <-ctx.Done():
				wg.Wait()
				return &InternalError{Message: "run canceled", Cause: ctx.Err()}
			case sem <- struct{}{}:
			}

			wg.Add(1)
			go func(id ProcessorID) {
				defer wg.Done()
				defer func() { <-sem }()

				if err := s.engine.invokeOne(ctx, id, initial, payload, results); err != nil {
					fc.recordFailure(id)
				}
			}(id)
		}
		wg.Wait()

		capitan.Info(ctx, SignalSchedulerLevelDone, FieldLevel.Field(levelIndex))
	}

	return nil
}
