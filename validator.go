package dagwood

// Validate checks a list of processor specs against the three invariants
// §3 requires before any scheduling begins: unique IDs, resolvable
// dependency references, and an acyclic graph. All offenders a single pass
// finds are reported together; the acyclicity pass is skipped when an
// earlier pass already found problems, since cycle detection requires a
// well-formed ID universe (§4.2).
//
// Grounded directly on
// original_source/src/config/validation.rs's validate_dependency_graph:
// the same three-pass structure (validate_unique_processor_ids,
// validate_dependency_references, validate_acyclic_graph /
// dfs_cycle_detection), reproduced in Go rather than translated line by
// line.
func Validate(specs []ProcessorSpec) error {
	verr := &ValidationError{}

	verr.DuplicateIDs = findDuplicateIDs(specs)
	verr.UnresolvedReferences = findUnresolvedReferences(specs)

	if len(verr.DuplicateIDs) == 0 && len(verr.UnresolvedReferences) == 0 {
		if cycle := findCycle(specs); cycle != nil {
			verr.Cycle = cycle
		}
	}

	if !verr.HasErrors() {
		return nil
	}
	return verr
}

func findDuplicateIDs(specs []ProcessorSpec) []ProcessorID {
	seen := make(map[ProcessorID]int, len(specs))
	var duplicates []ProcessorID
	for _, spec := range specs {
		seen[spec.ID]++
		if seen[spec.ID] == 2 {
			duplicates = append(duplicates, spec.ID)
		}
	}
	return duplicates
}

func findUnresolvedReferences(specs []ProcessorSpec) []UnresolvedDependency {
	known := make(map[ProcessorID]struct{}, len(specs))
	for _, spec := range specs {
		known[spec.ID] = struct{}{}
	}

	var unresolved []UnresolvedDependency
	for _, spec := range specs {
		for _, dep := range spec.DependsOn {
			if _, ok := known[dep]; !ok {
				unresolved = append(unresolved, UnresolvedDependency{Processor: spec.ID, Missing: dep})
			}
		}
	}
	return unresolved
}

// findCycle runs a DFS from every node, tracking the current recursion
// stack; encountering a node already on the stack yields the cycle path as
// the stack slice from that node, closed by repeating it at the end.
func findCycle(specs []ProcessorSpec) []ProcessorID {
	adjacency := make(map[ProcessorID][]ProcessorID, len(specs))
	for _, spec := range specs {
		if _, ok := adjacency[spec.ID]; !ok {
			adjacency[spec.ID] = nil
		}
		for _, dep := range spec.DependsOn {
			adjacency[dep] = append(adjacency[dep], spec.ID)
		}
	}

	visited := make(map[ProcessorID]bool, len(specs))
	onStack := make(map[ProcessorID]bool, len(specs))
	var stack []ProcessorID

	var visit func(ProcessorID) []ProcessorID
	visit = func(id ProcessorID) []ProcessorID {
		visited[id] = true
		onStack[id] = true
		stack = append(stack, id)

		for _, next := range adjacency[id] {
			if onStack[next] {
				start := indexOf(stack, next)
				cycle := append([]ProcessorID{}, stack[start:]...)
				return append(cycle, next)
			}
			if !visited[next] {
				if cycle := visit(next); cycle != nil {
					return cycle
				}
			}
		}

		stack = stack[:len(stack)-1]
		onStack[id] = false
		return nil
	}

	for _, spec := range specs {
		if !visited[spec.ID] {
			if cycle := visit(spec.ID); cycle != nil {
				return cycle
			}
		}
	}
	return nil
}

func indexOf(stack []ProcessorID, id ProcessorID) int {
	for i, s := range stack {
		if s == id {
			return i
		}
	}
	return 0
}
