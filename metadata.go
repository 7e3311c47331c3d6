package dagwood

// mergeMetadata composes the metadata a downstream processor's
// ProcessorRequest should see (§4.3), from:
//   - the initial request's own metadata, preserved verbatim under
//     InputMetadataKey when non-empty;
//   - every direct predecessor's response metadata, each top-level key
//     copied into the merged map.
//
// Key-collision policy: when two contributors use the same top-level key,
// the last one processed (in the order predecessors are iterated) wins.
// Because the executor populates top-level keys with contributor
// ProcessorIDs, collisions should not arise in well-formed runs; the policy
// is documented regardless (§4.3 rule 3). Predecessors are iterated in map
// order, so which contributor wins a collision is not defined.
//
// Grounded on original_source/src/engine/metadata.rs's
// merge_dependency_metadata_for_execution, preserving its exact semantics:
// base metadata goes in only if non-empty, and each top-level key of a
// predecessor's metadata is copied in separately; a colliding key's
// sub-namespace is replaced whole, not merged entry by entry.
func mergeMetadata(inputMetadata Metadata, predecessorResponses map[ProcessorID]ProcessorResponse) MetadataMap {
	merged := make(MetadataMap)

	if len(inputMetadata) > 0 {
		merged[InputMetadataKey] = inputMetadata.Clone()
	}

	for _, resp := range predecessorResponses {
		for k, v := range resp.Metadata {
			merged[k] = v.Clone()
		}
	}

	return merged
}
