package dagwood

import "context"

// Processor is the only capability the engine interacts with. A processor
// is an opaque, asynchronous single-input/single-output unit: it may
// suspend on I/O or compute, must be safely callable concurrently across
// distinct processor instances, but need not be re-entrant on the same
// instance — the scheduler guarantees at-most-once invocation per run.
//
// A response is successful iff its Outcome.Kind is OutcomeNextPayload. Any
// other outcome — an explicit OutcomeError or an absent outcome — is a
// failure. Processors are expected to encode all domain errors as
// Outcome.Err; a non-nil Go error returned from Process itself is reserved
// for out-of-band failures (context cancellation, for instance). The engine
// records such an error, like a recovered panic, as that processor's
// failure: it stores an error outcome carrying the error's text and applies
// the run's FailureStrategy exactly as for a domain failure. It does not end
// the run on its own account.
type Processor interface {
	Process(context.Context, ProcessorRequest) (ProcessorResponse, error)
	DeclaredIntent() Intent
}

// namedFunc adapts a plain function into a Processor. It is the private
// building block behind TransformFunc and AnalyzeFunc, mirroring the
// teacher's internal Processor[T] adapter struct used behind every public
// adapter function (Transform, Apply, Effect, ...).
type namedFunc struct {
	id     ProcessorID
	intent Intent
	fn     func(context.Context, ProcessorRequest) (ProcessorResponse, error)
}

func (f namedFunc) Process(ctx context.Context, req ProcessorRequest) (ProcessorResponse, error) {
	return f.fn(ctx, req)
}

func (f namedFunc) DeclaredIntent() Intent { return f.intent }

// TransformFunc adapts a plain function into a Transform-intent Processor.
// Use this when a processor's successful outcome should become the run's
// new canonical payload.
//
//	upper := dagwood.TransformFunc("uppercase", func(_ context.Context, req dagwood.ProcessorRequest) (dagwood.ProcessorResponse, error) {
//	    return dagwood.ProcessorResponse{Outcome: dagwood.NextPayloadOutcome(bytes.ToUpper(req.Payload))}, nil
//	})
func TransformFunc(id ProcessorID, fn func(context.Context, ProcessorRequest) (ProcessorResponse, error)) Processor {
	return namedFunc{id: id, intent: IntentTransform, fn: fn}
}

// AnalyzeFunc adapts a plain function into an Analyze-intent Processor. The
// engine enforces that whatever payload this function returns is discarded;
// only its Metadata is ever observed downstream. The function must still
// return a NextPayload outcome on success: an absent outcome is recorded as
// a failure whatever the intent.
//
//	wordCount := dagwood.AnalyzeFunc("count", func(_ context.Context, req dagwood.ProcessorRequest) (dagwood.ProcessorResponse, error) {
//	    n := len(bytes.Fields(req.Payload))
//	    return dagwood.ProcessorResponse{
//	        Outcome:  dagwood.NextPayloadOutcome(nil),
//	        Metadata: dagwood.MetadataMap{"count": {"word_count": strconv.Itoa(n)}},
//	    }, nil
//	})
func AnalyzeFunc(id ProcessorID, fn func(context.Context, ProcessorRequest) (ProcessorResponse, error)) Processor {
	return namedFunc{id: id, intent: IntentAnalyze, fn: fn}
}
