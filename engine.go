package dagwood

import (
	"context"
	"runtime"
	"time"

	"github.com/zoobzio/capitan"
	"github.com/zoobzio/clockz"
	"github.com/zoobzio/hookz"
	"github.com/zoobzio/metricz"
	"github.com/zoobzio/tracez"
)

// Observability constants for the engine itself.
const (
	RunsTotal             = metricz.Key("dagwood.runs.total")
	RunsFailedTotal       = metricz.Key("dagwood.runs.failed.total")
	ProcessorsTotal       = metricz.Key("dagwood.processors.total")
	ProcessorsFailedTotal = metricz.Key("dagwood.processors.failed.total")

	RunSpan       = tracez.Key("dagwood.run")
	ProcessorSpan = tracez.Key("dagwood.processor")

	TagStrategy    = tracez.Tag("dagwood.strategy")
	TagFailureMode = tracez.Tag("dagwood.failure_mode")
	TagProcessorID = tracez.Tag("dagwood.processor_id")
	TagIntent      = tracez.Tag("dagwood.intent")
	TagSuccess     = tracez.Tag("dagwood.success")

	RunEventCompleted = hookz.Key("run.completed")
)

// RunEvent is emitted via hooks once a run finishes, successfully or not.
type RunEvent struct {
	Strategy  Strategy
	Succeeded bool
	Summary   RunSummary
	Timestamp time.Time
}

// RunSummary is the bookkeeping the engine accumulates over a run, grounded
// on original_source/src/engine/pipeline_metadata.rs's PipelineMetadata:
// counts that are not themselves part of any processor's own output but
// are useful for a caller auditing what a run actually did.
type RunSummary struct {
	Strategy  Strategy
	Total     int
	Succeeded int
	Failed    int
	Blocked   int
	Duration  time.Duration
}

// Engine runs a Graph of processors to completion under a chosen
// scheduling Strategy and FailureStrategy (§1, §4). Callers must run
// Validate and NewGraph first; the Engine does not re-check the invariants
// those enforce.
type Engine struct {
	processors     ProcessorMap
	graph          *Graph
	collectors     map[ProcessorID]CollectionStrategy
	maxConcurrency int
	clock          clockz.Clock

	metrics *metricz.Registry
	tracer  *tracez.Tracer
	hooks   *hookz.Hooks[RunEvent]
}

// Option configures an Engine at construction time.
type Option func(*Engine)

// WithMaxConcurrency overrides the scheduler's concurrency bound. Zero or
// negative resolves to ResolveMaxConcurrency (§5).
func WithMaxConcurrency(n int) Option {
	return func(e *Engine) { e.maxConcurrency = n }
}

// WithCollector registers a CollectionStrategy for id, consulted instead of
// the canonical-payload snapshot when building id's request (§4.4). Meant
// for processors with more than one direct predecessor; registering one for
// a zero- or single-predecessor processor is accepted but pointless, since
// the canonical snapshot already reflects the only payload that could reach
// it.
func WithCollector(id ProcessorID, strategy CollectionStrategy) Option {
	return func(e *Engine) { e.collectors[id] = strategy }
}

// WithClock overrides the engine's clock, for deterministic tests.
func WithClock(clock clockz.Clock) Option {
	return func(e *Engine) { e.clock = clock }
}

// NewEngine builds an Engine from a Graph and the ProcessorMap it
// references.
func NewEngine(graph *Graph, processors ProcessorMap, opts ...Option) *Engine {
	e := &Engine{
		processors: processors,
		graph:      graph,
		collectors: make(map[ProcessorID]CollectionStrategy),
		clock:      clockz.RealClock,
		metrics:    metricz.New(),
		tracer:     tracez.New(),
		hooks:      hookz.New[RunEvent](),
	}

	e.metrics.Counter(RunsTotal)
	e.metrics.Counter(RunsFailedTotal)
	e.metrics.Counter(ProcessorsTotal)
	e.metrics.Counter(ProcessorsFailedTotal)

	for _, opt := range opts {
		opt(e)
	}

	if e.maxConcurrency <= 0 {
		e.maxConcurrency = ResolveMaxConcurrency()
	}

	return e
}

// ResolveMaxConcurrency returns the default concurrency bound: the number
// of logical CPUs available to the process, floored at 1 (§5).
func ResolveMaxConcurrency() int {
	n := runtime.GOMAXPROCS(0)
	if n < 1 {
		return 1
	}
	return n
}

// Metrics exposes the engine's metric registry.
func (e *Engine) Metrics() *metricz.Registry { return e.metrics }

// Tracer exposes the engine's tracer.
func (e *Engine) Tracer() *tracez.Tracer { return e.tracer }

// OnRunCompleted registers a handler invoked after every run.
func (e *Engine) OnRunCompleted(handler func(context.Context, RunEvent) error) error {
	_, err := e.hooks.Hook(RunEventCompleted, handler)
	return err
}

// Execute runs every processor in the Graph to completion under strategy
// and failureStrategy, starting from initial. It returns every processor's
// recorded ProcessorResponse (including blocked placeholders, §9) plus a
// RunSummary, and a non-nil error when FailureStrategy demands one (§4.7,
// §7): a *ProcessorFailedError under FailFast, or a *MultipleFailedError
// aggregating every failure under ContinueOnError/BestEffort.
func (e *Engine) Execute(ctx context.Context, strategy Strategy, failureStrategy FailureStrategy, initial ProcessorRequest) (map[ProcessorID]ProcessorResponse, RunSummary, error) {
	start := e.clock.Now()
	e.metrics.Counter(RunsTotal).Inc()

	ctx, span := e.tracer.StartSpan(ctx, RunSpan)
	span.SetTag(TagStrategy, string(strategy))
	span.SetTag(TagFailureMode, string(failureStrategy))
	defer span.Finish()

	capitan.Info(ctx, SignalRunStarted,
		FieldStrategy.Field(string(strategy)),
		FieldFailureMode.Field(string(failureStrategy)),
		FieldTotal.Field(len(e.graph.InDegree)),
	)

	payload := newCanonicalPayload(initial.Payload)
	results := newResultTable()
	fc := newFailureController(failureStrategy, e.graph)

	switch resolveSchedulerStrategy(strategy) {
	case StrategyLevel:
		_ = newLevelScheduler(e, e.graph).run(ctx, initial, payload, results, fc)
	case StrategyReactive:
		_ = newReactiveScheduler(e, e.graph).run(ctx, initial, payload, results, fc)
	default:
		_ = newWorkQueueScheduler(e, e.graph).run(ctx, initial, payload, results, fc)
	}

	final := results.snapshotAll()
	summary := RunSummary{
		Strategy: strategy,
		Total:    len(e.graph.InDegree),
		Failed:   len(fc.failedIDs()),
		Blocked:  fc.blockedCount(),
		Duration: e.clock.Now().Sub(start),
	}
	for _, resp := range final {
		if resp.Outcome.Successful() {
			summary.Succeeded++
		}
	}

	runErr := e.buildRunError(failureStrategy, fc, final)
	if runErr != nil {
		e.metrics.Counter(RunsFailedTotal).Inc()
		capitan.Error(ctx, SignalRunHalted, FieldFailed.Field(summary.Failed), FieldBlocked.Field(summary.Blocked))
	} else {
		capitan.Info(ctx, SignalRunCompleted, FieldSucceeded.Field(summary.Succeeded), FieldTotal.Field(summary.Total))
	}

	_ = e.hooks.Emit(ctx, RunEventCompleted, RunEvent{ //nolint:errcheck
		Strategy:  strategy,
		Succeeded: runErr == nil,
		Summary:   summary,
		Timestamp: e.clock.Now(),
	})

	return final, summary, runErr
}

// buildRunError translates the failureController's final state into the
// error Execute returns: nil when nothing failed, a single
// *ProcessorFailedError under FailFast, or a *MultipleFailedError
// aggregating every recorded failure otherwise (§4.7, §7).
func (e *Engine) buildRunError(failureStrategy FailureStrategy, fc *failureController, final map[ProcessorID]ProcessorResponse) error {
	failed := fc.failedIDs()
	if len(failed) == 0 {
		return nil
	}

	build := func(id ProcessorID) *ProcessorFailedError {
		resp := final[id]
		return &ProcessorFailedError{
			ID:     id,
			Detail: resp.Outcome.Err,
			Absent: resp.Outcome.Kind == OutcomeAbsent,
		}
	}

	if failureStrategy == FailFast {
		return build(failed[0])
	}

	failures := make([]*ProcessorFailedError, len(failed))
	for i, id := range failed {
		failures[i] = build(id)
	}
	return &MultipleFailedError{Failures: failures}
}

// resolveSchedulerStrategy folds StrategyHybrid into StrategyWorkQueue
// before dispatch (§9, Open Question 2).
func resolveSchedulerStrategy(s Strategy) Strategy {
	if s == StrategyHybrid {
		return StrategyWorkQueue
	}
	return s
}

// invokeOne builds a processor's request, invokes it with panic recovery,
// records its response in the shared result table, advances the canonical
// payload on a successful Transform outcome, and returns a non-nil error
// when the invocation failed for any reason — a missing processor, a
// protocol-violating outcome, a domain error, or a panic. Every scheduler
// shares this single invocation path so observability and payload
// discipline are enforced in exactly one place.
func (e *Engine) invokeOne(ctx context.Context, id ProcessorID, initial ProcessorRequest, payload *canonicalPayload, results *resultTable) error {
	proc, ok := e.processors[id]
	if !ok {
		err := &ProcessorNotFoundError{ID: id}
		results.store(id, ProcessorResponse{Outcome: ErrorOutcome(0, err.Error())})
		return err
	}

	req := e.buildRequest(id, initial, payload, results)

	ctx, span := e.tracer.StartSpan(ctx, ProcessorSpan)
	span.SetTag(TagProcessorID, string(id))
	span.SetTag(TagIntent, proc.DeclaredIntent().String())
	defer span.Finish()

	e.metrics.Counter(ProcessorsTotal).Inc()
	capitan.Info(ctx, SignalProcessorStarted,
		FieldProcessorID.Field(string(id)),
		FieldIntent.Field(proc.DeclaredIntent().String()),
	)

	resp, err := e.invokeWithRecovery(ctx, proc, id, req)
	if err != nil {
		results.store(id, ProcessorResponse{Outcome: ErrorOutcome(0, err.Error())})
		e.metrics.Counter(ProcessorsFailedTotal).Inc()
		capitan.Error(ctx, SignalProcessorFailed, FieldProcessorID.Field(string(id)), FieldErrorMessage.Field(err.Error()))
		return err
	}

	results.store(id, resp)

	if !resp.Outcome.Successful() {
		failErr := &ProcessorFailedError{
			ID:     id,
			Detail: resp.Outcome.Err,
			Absent: resp.Outcome.Kind == OutcomeAbsent,
		}
		e.metrics.Counter(ProcessorsFailedTotal).Inc()
		capitan.Error(ctx, SignalProcessorFailed, FieldProcessorID.Field(string(id)), FieldErrorMessage.Field(failErr.Error()))
		return failErr
	}

	if proc.DeclaredIntent() == IntentTransform {
		payload.store(resp.Outcome.NextPayload)
	}

	span.SetTag(TagSuccess, "true")
	capitan.Info(ctx, SignalProcessorCompleted, FieldProcessorID.Field(string(id)))
	return nil
}

func (e *Engine) invokeWithRecovery(ctx context.Context, proc Processor, id ProcessorID, req ProcessorRequest) (resp ProcessorResponse, err error) {
	defer recoverFromPanic(&resp, &err, id)
	return proc.Process(ctx, req)
}

// recordBlocked stores a placeholder DependencyFailedError response for a
// processor the failureController has already ruled out of this run. The
// placeholder is recorded rather than leaving id absent from the result
// table so callers can always distinguish "never reached a decision" from
// "blocked by a specific failed predecessor" (§9).
func (e *Engine) recordBlocked(id, blocker ProcessorID, results *resultTable) {
	dep := &DependencyFailedError{ID: id, FailedPredecessor: blocker}
	results.store(id, ProcessorResponse{Outcome: ErrorOutcome(0, dep.Error())})
	capitan.Warn(context.Background(), SignalProcessorBlocked,
		FieldProcessorID.Field(string(id)),
		FieldBlockedBy.Field(string(blocker)),
	)
}

// buildRequest assembles the ProcessorRequest a processor invocation
// should see (§4.1, §4.3, §4.4):
//   - an entry point's payload is a copy of the initial request's payload;
//     every other processor's payload is the canonical payload snapshot,
//     the engine's primary join mechanism; a registered CollectionStrategy
//     is consulted instead only when one has
//     been explicitly configured via WithCollector for this id (§4.4: "the
//     canonical-payload protocol supersedes this... a collection step is
//     only meaningful when an executor's policy calls for combining
//     predecessor payloads directly") — there is no implicit default
//     collector, not even for a single predecessor;
//   - its metadata is the merge of the initial request's own metadata and
//     every direct predecessor's response metadata (mergeMetadata, §4.3).
func (e *Engine) buildRequest(id ProcessorID, initial ProcessorRequest, payload *canonicalPayload, results *resultTable) ProcessorRequest {
	preds := e.graph.Reverse[id]
	predResponses := results.loadMany(preds)

	var body []byte
	if e.graph.Entries.Contains(id) {
		body = append([]byte(nil), initial.Payload...)
	} else {
		body = payload.snapshot()
	}
	if strategy, ok := e.collectors[id]; ok {
		collectable := make(map[ProcessorID]CollectableResult, len(predResponses))
		for predID, r := range predResponses {
			collectable[predID] = CollectableResult{Success: r.Outcome.Successful(), Payload: r.Outcome.NextPayload}
		}
		if outcome := strategy.Collect(collectable); outcome.Successful() {
			body = outcome.NextPayload
		}
	}

	var inputMetadata Metadata
	if initial.Metadata != nil {
		inputMetadata = initial.Metadata[InputMetadataKey]
	}

	return ProcessorRequest{
		Payload:  body,
		Metadata: mergeMetadata(inputMetadata, predResponses),
	}
}
