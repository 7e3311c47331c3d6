package dagwood

// Strategy selects which scheduler drives a run.
type Strategy string

const (
	StrategyWorkQueue Strategy = "work_queue"
	StrategyLevel     Strategy = "level"
	StrategyReactive  Strategy = "reactive"
	// StrategyHybrid is reserved. Its intent in the source material this
	// specification was distilled from is undocumented and it behaves as a
	// silent alias for StrategyWorkQueue there; this engine preserves the
	// enum value and the same fallback rather than inventing new semantics
	// for it (§9, Open Question 2).
	StrategyHybrid Strategy = "hybrid"
)

// FailureStrategy selects the run-level policy for handling processor
// failures (§4.7).
type FailureStrategy string

const (
	// FailFast stops admitting new work on the first failure; once the
	// processors already in flight finish, the run returns an error
	// identifying that first failure.
	FailFast FailureStrategy = "fail_fast"
	// ContinueOnError lets independent subgraphs continue; any processor
	// whose transitive predecessor set contains a failure is blocked.
	ContinueOnError FailureStrategy = "continue_on_error"
	// BestEffort is, in this specification, identical to ContinueOnError.
	// The distinction is reserved for future semantics (§4.7, §9 Open
	// Question 3) — e.g. attempting partial outputs from blocked
	// subgraphs — and is not implemented differently here.
	BestEffort FailureStrategy = "best_effort"
)

// DefaultFailureStrategy is used when Config.FailureStrategy is empty.
const DefaultFailureStrategy = FailFast

// ProcessorSpec is one entry in Config.Processors: the raw, still-opaque
// description of a processor and its dependency edges. Binding backend-
// specific keys into a concrete Processor is a separate factory layer's
// responsibility (§1, §6) — this core only ever consumes ID and DependsOn.
type ProcessorSpec struct {
	ID        ProcessorID    `yaml:"id"`
	Backend   string         `yaml:"backend"`
	DependsOn []ProcessorID  `yaml:"depends_on,omitempty"`
	Options   map[string]any `yaml:"-"`
}

// ExecutorOptions tunes scheduler resource usage.
type ExecutorOptions struct {
	// MaxConcurrency bounds simultaneously running processors. Zero means
	// "use the default" — the number of hardware threads, floored at 1
	// (§5, resolved by ResolveMaxConcurrency).
	MaxConcurrency int `yaml:"max_concurrency,omitempty"`
}

// Config is the already-parsed configuration schema (§6). Loading it from a
// file is out of scope for this package; Config is the bit-stable, already-
// bound in-memory shape an external loader produces.
type Config struct {
	Strategy        Strategy        `yaml:"strategy"`
	FailureStrategy FailureStrategy `yaml:"failure_strategy,omitempty"`
	ExecutorOptions ExecutorOptions `yaml:"executor_options,omitempty"`
	Processors      []ProcessorSpec `yaml:"processors"`
}

// ResolvedFailureStrategy returns c.FailureStrategy, defaulting to
// DefaultFailureStrategy when unset.
func (c Config) ResolvedFailureStrategy() FailureStrategy {
	if c.FailureStrategy == "" {
		return DefaultFailureStrategy
	}
	return c.FailureStrategy
}

// ResolvedStrategy folds StrategyHybrid into StrategyWorkQueue (§9, Open
// Question 2) and returns c.Strategy otherwise.
func (c Config) ResolvedStrategy() Strategy {
	if c.Strategy == StrategyHybrid {
		return StrategyWorkQueue
	}
	return c.Strategy
}
