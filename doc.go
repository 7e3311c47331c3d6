// Package dagwood provides a configurable, in-process DAG workflow engine.
//
// # Overview
//
// dagwood runs a static graph of processors — nodes with declared Transform
// or Analyze intent, wired together by dependency edges — exactly once each,
// in topological order, feeding every processor a deterministic payload plus
// metadata merged from its direct predecessors. Three interchangeable
// scheduling strategies drive the same graph: a demand-driven work queue, a
// level-synchronous cohort runner, and a mailbox-based reactive scheduler.
//
// # Core Concepts
//
// Everything a caller supplies is described by Config and bound, through
// NewGraph and Validate, into a Graph: forward adjacency from producer to
// consumer, plus derived reverse adjacency, in-degrees, and topological
// rank, computed once and reused by every scheduler.
//
// A Processor is the only thing the engine calls into:
//
//	type Processor interface {
//	    Process(context.Context, ProcessorRequest) (ProcessorResponse, error)
//	    DeclaredIntent() Intent
//	}
//
// Processors never mutate shared state directly. The engine maintains one
// canonical payload per run; only a successful Transform outcome may replace
// it, under a dedicated lock, and Analyze processors are constitutionally
// unable to affect it regardless of what they return.
//
// # Quick Start
//
//	if err := dagwood.Validate(cfg.Processors); err != nil {
//	    // duplicate ID, unresolved dependency, or cycle
//	}
//	graph := dagwood.NewGraph(cfg.Processors)
//
//	engine := dagwood.NewEngine(graph, processorMap,
//	    dagwood.WithMaxConcurrency(cfg.ExecutorOptions.MaxConcurrency),
//	)
//
//	results, _, err := engine.Execute(ctx, cfg.ResolvedStrategy(), cfg.ResolvedFailureStrategy(),
//	    dagwood.ProcessorRequest{Payload: []byte("hello world")},
//	)
//
// # Observability
//
// Every Engine carries a metricz.Registry, a tracez.Tracer, and a
// hookz.Hooks[RunEvent] instance, and emits capitan signals at processor and
// run boundaries. See signals.go for the full vocabulary.
//
// # Non-goals
//
// No persistence or recovery across process restarts, no distribution
// across hosts, no dynamic topology edits mid-run, and no fairness
// guarantees between independent branches beyond what each scheduling
// strategy implies. Concrete processor implementations, a WASM hosting
// substrate, configuration file loading, and CLI concerns live outside this
// package — see the examples/ and cmd/ directories.
package dagwood
