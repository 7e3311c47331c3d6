package dagwood

import (
	"context"
	"sync"
)

// reactiveScheduler executes the graph as a notification network: every
// processor gets its own goroutine that blocks until it has heard from
// every direct predecessor, then fires and notifies its own dependents
// directly — no shared ready queue, no level barrier. Grounded on
// original_source/src/engine/reactive.rs's per-processor channel network,
// reimplemented with one buffered Go channel per node rather than per-node
// mpsc channels carrying a hand-rolled event enum.
type reactiveScheduler struct {
	engine *Engine
	graph  *Graph
}

func newReactiveScheduler(engine *Engine, graph *Graph) *reactiveScheduler {
	return &reactiveScheduler{engine: engine, graph: graph}
}

func (s *reactiveScheduler) run(ctx context.Context, initial ProcessorRequest, payload *canonicalPayload, results *resultTable, fc *failureController) error {
	n := len(s.graph.InDegree)
	if n == 0 {
		return nil
	}

	// Every node's channel is sized to its in-degree so every predecessor,
	// whether it runs, fails, or is itself blocked, can always send its
	// completion notification without waiting for the receiver to drain.
	notify := make(map[ProcessorID]chan struct{}, n)
	for id := range s.graph.InDegree {
		size := len(s.graph.Reverse[id])
		if size == 0 {
			size = 1
		}
		notify[id] = make(chan struct{}, size)
	}

	sem := make(chan struct{}, s.engine.maxConcurrency)
	var wg sync.WaitGroup

	for _, id := range s.graph.Order() {
		wg.Add(1)
		go func(id ProcessorID) {
			defer wg.Done()

			need := len(s.graph.Reverse[id])
			for i := 0; i < need; i++ {
				select {
				case <-notify[id]:
				case <-ctx.Done():
					return
				case <-fc.haltSignal():
					return
				}
			}

			select {
			case <-fc.haltSignal():
				return
			default:
			}

			if blocker, isBlocked := fc.blockedBy(id); isBlocked {
				s.engine.recordBlocked(id, blocker, results)
				s.fireDependents(id, notify)
				return
			}

			sem <- struct{}{}
			err := s.engine.invokeOne(ctx, id, initial, payload, results)
			<-sem

			if err != nil {
				fc.recordFailure(id)
			}

			s.fireDependents(id, notify)
		}(id)
	}

	wg.Wait()
	return nil
}

func (s *reactiveScheduler) fireDependents(id ProcessorID, notify map[ProcessorID]chan struct{}) {
	for _, dependent := range s.graph.Forward[id] {
		notify[dependent] <- struct{}{}
	}
}
