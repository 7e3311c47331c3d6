package dagwood

import "github.com/zoobzio/capitan"

// Signal constants for engine lifecycle events.
// Signals follow the pattern: <subject>.<event>.
const (
	SignalValidationFailed    capitan.Signal = "validation.failed"
	SignalRunStarted          capitan.Signal = "run.started"
	SignalRunCompleted        capitan.Signal = "run.completed"
	SignalRunHalted           capitan.Signal = "run.halted"
	SignalProcessorStarted    capitan.Signal = "processor.started"
	SignalProcessorCompleted  capitan.Signal = "processor.completed"
	SignalProcessorFailed     capitan.Signal = "processor.failed"
	SignalProcessorBlocked    capitan.Signal = "processor.blocked"
	SignalSchedulerLevelStart capitan.Signal = "scheduler.level-start"
	SignalSchedulerLevelDone  capitan.Signal = "scheduler.level-done"
)

// Common field keys using capitan primitive types, matching every value
// emitted alongside the signals above.
var (
	FieldProcessorID  = capitan.NewStringKey("processor_id")
	FieldIntent       = capitan.NewStringKey("intent")
	FieldStrategy     = capitan.NewStringKey("strategy")
	FieldFailureMode  = capitan.NewStringKey("failure_mode")
	FieldLevel        = capitan.NewIntKey("level")
	FieldLevelSize    = capitan.NewIntKey("level_size")
	FieldTotal        = capitan.NewIntKey("total")
	FieldSucceeded    = capitan.NewIntKey("succeeded")
	FieldFailed       = capitan.NewIntKey("failed")
	FieldBlocked      = capitan.NewIntKey("blocked")
	FieldBlockedBy    = capitan.NewStringKey("blocked_by")
	FieldDurationSecs = capitan.NewFloat64Key("duration_seconds")
	FieldErrorMessage = capitan.NewStringKey("error")
)
