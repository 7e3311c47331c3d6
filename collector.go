package dagwood

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// CollectableResult is a predecessor's result as seen by a collection
// strategy: whether it succeeded, and its payload if so. Grounded on
// original_source/src/backends/local/processors/collectors/mod.rs's
// CollectableResult.
type CollectableResult struct {
	Success bool
	Payload []byte
}

// ConflictResolution governs how JSONMergeStrategy resolves a key present
// in more than one predecessor's JSON payload. Grounded on
// original_source/src/config (ConflictResolution) referenced by
// json_merge.rs.
type ConflictResolution int

const (
	TakeFirst ConflictResolution = iota
	TakeLast
	MergeValues
	ErrorOnConflict
)

// CollectorVariant discriminates CollectionStrategy implementations — §9
// models collectors as a single enum with variants dispatched on, rather
// than a subclass hierarchy; in Go, that enum is this small interface plus
// one struct per variant, dispatched through the interface's Collect method.
type CollectorVariant string

const (
	CollectorFirstAvailable CollectorVariant = "first_available"
	CollectorConcatenate    CollectorVariant = "concatenate"
	CollectorJSONMerge      CollectorVariant = "json_merge"
	CollectorMetadataMerge  CollectorVariant = "metadata_merge"
	CollectorCustom         CollectorVariant = "custom"
)

// CollectionStrategy is the pre-invocation step (§9, §4.4) that combines
// multiple predecessors' payloads into the single `payload` a processor's
// contract allows. It is a secondary, pluggable mechanism: the canonical-
// payload snapshot is the engine's primary join mechanism, and a collection
// strategy only runs when a processor is explicitly configured with one.
type CollectionStrategy interface {
	Variant() CollectorVariant
	Collect(results map[ProcessorID]CollectableResult) Outcome
}

func sortedIDs(results map[ProcessorID]CollectableResult) []ProcessorID {
	ids := make([]ProcessorID, 0, len(results))
	for id := range results {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// FirstAvailableStrategy returns the first successful predecessor's
// payload, in deterministic (sorted-ID) order. The engine never applies
// this, or any other strategy, on its own — a processor with no explicit
// WithCollector registration always gets the canonical-payload snapshot
// (§4.4); FirstAvailableStrategy is simply available for callers that want
// "first successful predecessor wins" as their explicit choice. Grounded on
// collectors/first_available.rs.
type FirstAvailableStrategy struct{}

func (FirstAvailableStrategy) Variant() CollectorVariant { return CollectorFirstAvailable }

func (FirstAvailableStrategy) Collect(results map[ProcessorID]CollectableResult) Outcome {
	for _, id := range sortedIDs(results) {
		r := results[id]
		if r.Success {
			return NextPayloadOutcome(r.Payload)
		}
	}
	return ErrorOutcome(500, "no successful dependency results found")
}

// ConcatenateStrategy joins every successful predecessor's payload with
// Separator, in deterministic (sorted-ID) order. Grounded on
// collectors/concatenate.rs.
type ConcatenateStrategy struct {
	Separator string
}

func (ConcatenateStrategy) Variant() CollectorVariant { return CollectorConcatenate }

func (s ConcatenateStrategy) Collect(results map[ProcessorID]CollectableResult) Outcome {
	var parts []string
	for _, id := range sortedIDs(results) {
		r := results[id]
		if r.Success {
			parts = append(parts, string(r.Payload))
		}
	}
	if len(parts) == 0 {
		return ErrorOutcome(500, "no successful dependency results to concatenate")
	}
	return NextPayloadOutcome([]byte(strings.Join(parts, s.Separator)))
}

// JSONMergeStrategy parses every successful predecessor's payload as a JSON
// object and merges them into one, resolving key collisions per Conflict.
// Under MergeValues, colliding objects are merged key by key and, when
// MergeArrays is set, colliding arrays are concatenated; any other
// colliding pair takes the incoming value. MergeArrays has no effect under
// the other ConflictResolution values. Grounded on
// collectors/json_merge.rs.
type JSONMergeStrategy struct {
	MergeArrays bool
	Conflict    ConflictResolution
}

func (JSONMergeStrategy) Variant() CollectorVariant { return CollectorJSONMerge }

func (s JSONMergeStrategy) Collect(results map[ProcessorID]CollectableResult) Outcome {
	merged := map[string]any{}

	for _, id := range sortedIDs(results) {
		r := results[id]
		if !r.Success {
			continue
		}
		var obj map[string]any
		if err := json.Unmarshal(r.Payload, &obj); err != nil {
			continue
		}
		for key, value := range obj {
			existing, collides := merged[key]
			if !collides {
				merged[key] = value
				continue
			}
			switch s.Conflict {
			case TakeFirst:
				// Keep existing.
			case TakeLast:
				merged[key] = value
			case MergeValues:
				if resolved, ok := s.mergeValues(existing, value); ok {
					merged[key] = resolved
				} else {
					merged[key] = value
				}
			case ErrorOnConflict:
				return ErrorOutcome(500, fmt.Sprintf("json merge conflict for key %q from dependency %q", key, id))
			}
		}
	}

	if len(merged) == 0 {
		return ErrorOutcome(500, "no valid json results to merge")
	}

	out, err := json.Marshal(merged)
	if err != nil {
		return ErrorOutcome(500, fmt.Sprintf("failed to serialize merged json: %v", err))
	}
	return NextPayloadOutcome(out)
}

func (s JSONMergeStrategy) mergeValues(existing, incoming any) (any, bool) {
	if eo, ok := existing.(map[string]any); ok {
		if io, ok := incoming.(map[string]any); ok {
			out := make(map[string]any, len(eo)+len(io))
			for k, v := range eo {
				out[k] = v
			}
			for k, v := range io {
				out[k] = v
			}
			return out, true
		}
	}
	if s.MergeArrays {
		if ea, ok := existing.([]any); ok {
			if ia, ok := incoming.([]any); ok {
				return append(append([]any{}, ea...), ia...), true
			}
		}
	}
	return nil, false
}

// MetadataMergeStrategy treats one predecessor as the primary payload
// source and others as metadata sources: Collect returns only the primary
// payload, and SecondaryMetadata renders the secondary sources' payloads as
// metadata entries (under "<source>_result"). Grounded on
// collectors/metadata_merge.rs.
type MetadataMergeStrategy struct {
	Primary   ProcessorID
	Secondary []ProcessorID
}

func (MetadataMergeStrategy) Variant() CollectorVariant { return CollectorMetadataMerge }

func (s MetadataMergeStrategy) Collect(results map[ProcessorID]CollectableResult) Outcome {
	primary, ok := results[s.Primary]
	if !ok {
		return ErrorOutcome(500, fmt.Sprintf("primary source %q not found in dependency results", s.Primary))
	}
	if !primary.Success {
		return ErrorOutcome(500, fmt.Sprintf("primary source %q failed", s.Primary))
	}
	return NextPayloadOutcome(primary.Payload)
}

// SecondaryMetadata extracts the metadata sub-namespace this strategy would
// attach alongside Collect's outcome — kept as a separate accessor because
// Outcome carries only a payload. The engine's request-builder (§4.4) calls
// only Collect; it does not call SecondaryMetadata, so the secondary
// sources do not reach the downstream request's MetadataMap.
func (s MetadataMergeStrategy) SecondaryMetadata(results map[ProcessorID]CollectableResult) Metadata {
	meta := Metadata{}
	for _, source := range s.Secondary {
		if r, ok := results[source]; ok && r.Success {
			meta[string(source)+"_result"] = string(r.Payload)
		}
	}
	return meta
}

// CustomStrategy wraps a caller-supplied collection function — the escape
// hatch §9 names for strategies that don't fit the built-in variants.
type CustomStrategy struct {
	Fn func(results map[ProcessorID]CollectableResult) Outcome
}

func (CustomStrategy) Variant() CollectorVariant { return CollectorCustom }

func (s CustomStrategy) Collect(results map[ProcessorID]CollectableResult) Outcome {
	return s.Fn(results)
}
