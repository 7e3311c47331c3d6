package dagwood

import (
	"fmt"
	"strings"
)

// ValidationError is returned by Validate before any processor runs (§7).
// Every offender a single validation pass finds is reported together.
type ValidationError struct {
	DuplicateIDs         []ProcessorID
	UnresolvedReferences []UnresolvedDependency
	Cycle                []ProcessorID
}

// UnresolvedDependency names a depends_on edge that points nowhere.
type UnresolvedDependency struct {
	Processor ProcessorID
	Missing   ProcessorID
}

func (e *ValidationError) Error() string {
	var parts []string
	for _, id := range e.DuplicateIDs {
		parts = append(parts, fmt.Sprintf("duplicate processor id %q", id))
	}
	for _, u := range e.UnresolvedReferences {
		parts = append(parts, fmt.Sprintf("processor %q depends on unresolved id %q", u.Processor, u.Missing))
	}
	if len(e.Cycle) > 0 {
		ids := make([]string, len(e.Cycle))
		for i, id := range e.Cycle {
			ids[i] = string(id)
		}
		parts = append(parts, fmt.Sprintf("cyclic dependency: %s", strings.Join(ids, " -> ")))
	}
	return "invalid configuration: " + strings.Join(parts, "; ")
}

// HasErrors reports whether the ValidationError actually carries any
// offenders — Validate returns nil, not a populated-but-empty
// *ValidationError, so callers rarely need this, but it keeps the zero
// value meaningful for construction in the validator's own passes.
func (e *ValidationError) HasErrors() bool {
	return e != nil && (len(e.DuplicateIDs) > 0 || len(e.UnresolvedReferences) > 0 || len(e.Cycle) > 0)
}

// ProcessorNotFoundError means the graph references a ProcessorMap entry
// that does not exist — an InternalError in well-formed runs (validation is
// supposed to catch it first) but checked defensively at scheduling time.
type ProcessorNotFoundError struct {
	ID ProcessorID
}

func (e *ProcessorNotFoundError) Error() string {
	return fmt.Sprintf("processor %q not found in processor map", e.ID)
}

// ProcessorFailedError wraps a processor's own ErrorDetail, copied verbatim
// (§7: "the core does not rewrite processor error messages"), or an
// absent-outcome protocol violation.
type ProcessorFailedError struct {
	ID     ProcessorID
	Detail ErrorDetail
	Absent bool
}

func (e *ProcessorFailedError) Error() string {
	if e.Absent {
		return fmt.Sprintf("processor %q returned no outcome", e.ID)
	}
	return fmt.Sprintf("processor %q failed: %s", e.ID, e.Detail.Message)
}

func (e *ProcessorFailedError) Unwrap() error {
	if e.Absent {
		return nil
	}
	return e.Detail
}

// DependencyFailedError marks a processor that was never invoked because a
// predecessor failed or was itself blocked.
type DependencyFailedError struct {
	ID                ProcessorID
	FailedPredecessor ProcessorID
}

func (e *DependencyFailedError) Error() string {
	return fmt.Sprintf("processor %q blocked: predecessor %q failed", e.ID, e.FailedPredecessor)
}

// MultipleFailedError aggregates every ProcessorFailedError from a
// continue-on-error or best-effort run (§4.7, §7).
type MultipleFailedError struct {
	Failures []*ProcessorFailedError
}

func (e *MultipleFailedError) Error() string {
	ids := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		ids[i] = string(f.ID)
	}
	return fmt.Sprintf("%d processor(s) failed: %s", len(e.Failures), strings.Join(ids, ", "))
}

// Unwrap supports errors.Is/errors.As over every individual failure via
// Go's multi-error unwrap convention.
func (e *MultipleFailedError) Unwrap() []error {
	out := make([]error, len(e.Failures))
	for i, f := range e.Failures {
		out[i] = f
	}
	return out
}

// InternalError signals a consistency invariant violated by the engine
// itself — never expected in a validated configuration (§7, §9: mailbox
// closed unexpectedly, lock acquisition failed, topological-sort input
// inconsistent). The engine builds one for a recovered processor panic and
// then handles it as that processor's failure under the run's
// FailureStrategy; it does not short-circuit the run regardless of strategy.
type InternalError struct {
	Message string
	Cause   error
}

func (e *InternalError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("internal error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("internal error: %s", e.Message)
}

func (e *InternalError) Unwrap() error { return e.Cause }
