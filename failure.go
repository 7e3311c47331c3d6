package dagwood

import "sync"

// failureController implements the run-level failure policy (§4.7):
// deciding, on each processor failure, whether the run should stop
// admitting new work, and which not-yet-started processors become
// permanently blocked rather than invoked.
//
// FailFast halts the run on the first failure. ContinueOnError and
// BestEffort (identical here — §9 Open Question 3) let independent
// subgraphs keep running; every transitive dependent of a failed processor
// is marked blocked and is never invoked.
type failureController struct {
	strategy FailureStrategy
	graph    *Graph

	mu       sync.Mutex
	failed   map[ProcessorID]struct{}
	order    []ProcessorID               // failed ids in the order they were recorded
	blocked  map[ProcessorID]ProcessorID // blocked id -> the failed predecessor responsible
	halted   bool
	haltCh   chan struct{}
	haltOnce sync.Once
}

func newFailureController(strategy FailureStrategy, graph *Graph) *failureController {
	return &failureController{
		strategy: strategy,
		graph:    graph,
		failed:   make(map[ProcessorID]struct{}),
		blocked:  make(map[ProcessorID]ProcessorID),
		haltCh:   make(chan struct{}),
	}
}

// recordFailure registers id as failed. Under FailFast it halts the run and
// returns nil. Under ContinueOnError/BestEffort it instead marks every
// transitive dependent of id as blocked, leaving independent subgraphs free
// to continue, and returns the set of ids newly blocked by this particular
// failure (excluding any already blocked by an earlier one) — callers that
// drive their own ready queue use this to admit those ids as settled
// without ever invoking them.
func (fc *failureController) recordFailure(id ProcessorID) []ProcessorID {
	fc.mu.Lock()
	if _, dup := fc.failed[id]; !dup {
		fc.order = append(fc.order, id)
	}
	fc.failed[id] = struct{}{}

	if fc.strategy == FailFast {
		fc.halted = true
		fc.mu.Unlock()
		fc.haltOnce.Do(func() { close(fc.haltCh) })
		return nil
	}

	var newlyBlocked []ProcessorID
	for _, dependent := range fc.graph.TransitiveDependents(id) {
		if _, already := fc.blocked[dependent]; !already {
			fc.blocked[dependent] = id
			newlyBlocked = append(newlyBlocked, dependent)
		}
	}
	fc.mu.Unlock()
	return newlyBlocked
}

// shouldHalt reports whether the run should stop admitting new work.
func (fc *failureController) shouldHalt() bool {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	return fc.halted
}

// haltSignal returns a channel that closes the instant FailFast halts the
// run — used by schedulers blocked on a channel receive to wake up
// immediately instead of waiting on work that will never arrive.
func (fc *failureController) haltSignal() <-chan struct{} {
	return fc.haltCh
}

// blockedBy reports the failed predecessor blocking id, if any.
func (fc *failureController) blockedBy(id ProcessorID) (ProcessorID, bool) {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	failedID, ok := fc.blocked[id]
	return failedID, ok
}

// hasFailed reports whether id itself has already been recorded as failed.
func (fc *failureController) hasFailed(id ProcessorID) bool {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	_, ok := fc.failed[id]
	return ok
}

// failedIDs returns every processor recorded as failed, in the order the
// failures were recorded — used to build the run's error once it finishes,
// so the first entry is the first failure.
func (fc *failureController) failedIDs() []ProcessorID {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	out := make([]ProcessorID, len(fc.order))
	copy(out, fc.order)
	return out
}

// blockedCount returns how many processors were permanently blocked over
// the course of the run, for RunSummary.
func (fc *failureController) blockedCount() int {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	return len(fc.blocked)
}
