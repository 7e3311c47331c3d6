package main

import (
	"fmt"

	"github.com/ciroque/the-dagwood"
	"github.com/ciroque/the-dagwood/examples/textproc"
)

// backendConstructor builds a dagwood.Processor for one ProcessorSpec. A
// constructor is free to ignore spec.Options when the backend takes no
// configuration.
type backendConstructor func(spec dagwood.ProcessorSpec) (dagwood.Processor, error)

// registry maps a ProcessorSpec's Backend string to the constructor that
// builds it, mirroring the teacher's own cmd/registry.go: a flat map from
// name to factory function rather than a plugin-discovery mechanism.
var registry = map[string]backendConstructor{
	"uppercase": func(dagwood.ProcessorSpec) (dagwood.Processor, error) {
		return textproc.Uppercase(), nil
	},
	"reverse": func(dagwood.ProcessorSpec) (dagwood.Processor, error) {
		return textproc.Reverse(), nil
	},
	"count": func(dagwood.ProcessorSpec) (dagwood.Processor, error) {
		return textproc.WordCount(), nil
	},
	"length": func(dagwood.ProcessorSpec) (dagwood.Processor, error) {
		return textproc.CharLength(), nil
	},
	"word_frequency": func(dagwood.ProcessorSpec) (dagwood.Processor, error) {
		return textproc.WordFrequency(), nil
	},
	"format": func(dagwood.ProcessorSpec) (dagwood.Processor, error) {
		return textproc.Format(), nil
	},
}

// buildProcessorMap binds every spec in cfg to a concrete dagwood.Processor
// via registry, failing fast on any backend name the registry doesn't know.
func buildProcessorMap(specs []dagwood.ProcessorSpec) (dagwood.ProcessorMap, error) {
	out := make(dagwood.ProcessorMap, len(specs))
	for _, spec := range specs {
		ctor, ok := registry[spec.Backend]
		if !ok {
			return nil, fmt.Errorf("unknown processor backend %q for id %q", spec.Backend, spec.ID)
		}
		proc, err := ctor(spec)
		if err != nil {
			return nil, fmt.Errorf("building processor %q: %w", spec.ID, err)
		}
		out[spec.ID] = proc
	}
	return out, nil
}
