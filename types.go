package dagwood

// ProcessorID uniquely identifies a processor within a single run.
type ProcessorID string

// InputMetadataKey is the reserved metadata sub-namespace holding the
// initial request's own metadata, preserved verbatim across every
// downstream request built by the metadata merger.
const InputMetadataKey ProcessorID = "input"

// Intent classifies whether a processor's successful outcome may replace
// the run's canonical payload.
type Intent uint8

const (
	// IntentTransform processors may produce a NextPayload that overwrites
	// the canonical payload.
	IntentTransform Intent = iota
	// IntentAnalyze processors must never alter the canonical payload,
	// regardless of what they return. The scheduler enforces this; it is
	// not a matter of processor discipline.
	IntentAnalyze
)

// String renders the intent for logging and error messages.
func (i Intent) String() string {
	switch i {
	case IntentTransform:
		return "transform"
	case IntentAnalyze:
		return "analyze"
	default:
		return "unknown"
	}
}

// Metadata is the flat string-to-string sub-namespace a single contributor
// owns within a ProcessorRequest or ProcessorResponse.
type Metadata map[string]string

// Clone returns an independent copy of m.
func (m Metadata) Clone() Metadata {
	if m == nil {
		return nil
	}
	out := make(Metadata, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// MetadataMap is the nested, collision-resistant structure carried by both
// ProcessorRequest and ProcessorResponse: one flat Metadata sub-namespace
// per contributing ProcessorID (or the reserved InputMetadataKey).
type MetadataMap map[ProcessorID]Metadata

// Clone returns an independent deep copy of mm.
func (mm MetadataMap) Clone() MetadataMap {
	if mm == nil {
		return nil
	}
	out := make(MetadataMap, len(mm))
	for k, v := range mm {
		out[k] = v.Clone()
	}
	return out
}

// ProcessorRequest is the input handed to a single processor invocation.
type ProcessorRequest struct {
	Payload  []byte
	Metadata MetadataMap
}

// OutcomeKind discriminates the three possible shapes of a ProcessorResponse
// outcome: a new payload, a domain error, or an absent outcome (itself a
// protocol violation, treated as a failure).
type OutcomeKind uint8

const (
	// OutcomeAbsent marks a response that declared neither a payload nor an
	// error — a protocol violation, always treated as a failure.
	OutcomeAbsent OutcomeKind = iota
	// OutcomeNextPayload marks a successful response carrying new payload
	// bytes.
	OutcomeNextPayload
	// OutcomeError marks a response that failed with a domain error.
	OutcomeError
)

// ErrorDetail is a processor's own domain error, copied verbatim into
// ProcessorFailed by the engine — the core never rewrites it.
type ErrorDetail struct {
	Code    int
	Message string
}

func (e ErrorDetail) Error() string {
	return e.Message
}

// Outcome is the tagged result of a processor invocation. Exactly one of
// NextPayload or Err is meaningful, selected by Kind; OutcomeAbsent means
// neither was set.
type Outcome struct {
	Kind        OutcomeKind
	NextPayload []byte
	Err         ErrorDetail
}

// Successful reports whether this outcome is a NextPayload outcome — the
// only outcome kind the contract (§4.1) considers successful.
func (o Outcome) Successful() bool {
	return o.Kind == OutcomeNextPayload
}

// NextPayloadOutcome builds a successful Outcome.
func NextPayloadOutcome(payload []byte) Outcome {
	return Outcome{Kind: OutcomeNextPayload, NextPayload: payload}
}

// ErrorOutcome builds a failed Outcome carrying a domain ErrorDetail.
func ErrorOutcome(code int, message string) Outcome {
	return Outcome{Kind: OutcomeError, Err: ErrorDetail{Code: code, Message: message}}
}

// ProcessorResponse is what a processor invocation produces.
type ProcessorResponse struct {
	Outcome  Outcome
	Metadata MetadataMap
}
