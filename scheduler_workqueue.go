package dagwood

import (
	"context"
	"sync"
)

// workQueueScheduler is the default, highest-throughput scheduler (§4.4):
// a processor is dispatched the instant every one of its dependencies has
// settled, bounded only by maxConcurrency, with no notion of levels.
// Grounded on original_source/src/engine/work_queue.rs's dependency-count
// ready queue, reimplemented with a buffered channel as the ready queue and
// a semaphore channel bounding concurrency — the same pattern the teacher's
// WorkerPool uses for bounded parallel execution — rather than the
// original's lock-and-poll loop.
type workQueueScheduler struct {
	engine *Engine
	graph  *Graph
}

func newWorkQueueScheduler(engine *Engine, graph *Graph) *workQueueScheduler {
	return &workQueueScheduler{engine: engine, graph: graph}
}

// run dispatches every processor in the graph exactly once: as an entry
// point, once its last unresolved dependency completes, or — if it falls
// within a failure's transitive blocked set — as a forced settlement that
// never invokes it. Every id reaches the ready channel exactly one of
// those three ways, so receiving n times (n = processor count) is always
// the correct completion signal, independent of how many actually ran.
func (s *workQueueScheduler) run(ctx context.Context, initial ProcessorRequest, payload *canonicalPayload, results *resultTable, fc *failureController) error {
	n := len(s.graph.InDegree)
	if n == 0 {
		return nil
	}

	var mu sync.Mutex
	remaining := make(map[ProcessorID]int, n)
	for id, d := range s.graph.InDegree {
		remaining[id] = d
	}

	ready := make(chan ProcessorID, n)
	for id := range s.graph.Entries {
		ready <- id
	}

	sem := make(chan struct{}, s.engine.maxConcurrency)
	var wg sync.WaitGroup
	settled := 0

dispatch:
	for settled < n {
		select {
		case <-ctx.Done():
			wg.Wait()
			return &InternalError{Message: "run canceled", Cause: ctx.Err()}

		case <-fc.haltSignal():
			break dispatch

		case id := <-ready:
			settled++

			if blocker, isBlocked := fc.blockedBy(id); isBlocked {
				s.engine.recordBlocked(id, blocker, results)
				continue
			}

			sem <- struct{}{}
			wg.Add(1)
			go func(id ProcessorID) {
				defer wg.Done()
				defer func() { <-sem }()
				s.executeOne(ctx, id, initial, payload, results, fc, &mu, remaining, ready)
			}(id)
		}
	}

	wg.Wait()
	return nil
}

// executeOne invokes a single processor and, on success, decrements every
// direct dependent's remaining-dependency count — pushing any that reach
// zero onto the ready channel. On failure it asks the failureController for
// the newly blocked set and pushes those onto ready directly, since they
// will never reach zero through the normal decrement path (the predecessor
// that would have decremented them never completes).
func (s *workQueueScheduler) executeOne(
	ctx context.Context,
	id ProcessorID,
	initial ProcessorRequest,
	payload *canonicalPayload,
	results *resultTable,
	fc *failureController,
	mu *sync.Mutex,
	remaining map[ProcessorID]int,
	ready chan<- ProcessorID,
) {
	err := s.engine.invokeOne(ctx, id, initial, payload, results)
	if err != nil {
		for _, blockedID := range fc.recordFailure(id) {
			ready <- blockedID
		}
		return
	}

	mu.Lock()
	var freed []ProcessorID
	for _, dependent := range s.graph.Forward[id] {
		remaining[dependent]--
		if remaining[dependent] == 0 {
			freed = append(freed, dependent)
		}
	}
	mu.Unlock()

	for _, dependent := range freed {
		ready <- dependent
	}
}
