package dagwood

// ProcessorMap owns every processor handle for the duration of a run.
// Schedulers borrow shared, concurrent references into it; it is never
// mutated once a run starts. Grounded on
// original_source/src/config/processor_map.rs's newtype-wrapper shape,
// rendered as a plain Go map type rather than a wrapped struct since Go's
// map already gives the value semantics the Rust newtype exists to impose.
type ProcessorMap map[ProcessorID]Processor

// EntryPoints is the set of ProcessorIDs with zero in-degree — the
// processors seeded with the initial request rather than a predecessor's
// response.
type EntryPoints map[ProcessorID]struct{}

// Contains reports whether id is an entry point.
func (e EntryPoints) Contains(id ProcessorID) bool {
	_, ok := e[id]
	return ok
}

// Graph is the forward-adjacency dependency graph plus every view derived
// from it once per run: reverse adjacency (predecessors), in-degree counts,
// and topological rank (longest path from any entry point). All derived
// views are computed once by NewGraph and cached — no scheduler recomputes
// them per task, which earlier designs did and which incurred O(n²)
// overhead in the level scheduler (§9).
type Graph struct {
	// Forward is the primary adjacency: producer -> ordered list of direct
	// dependents.
	Forward map[ProcessorID][]ProcessorID
	// Reverse is the derived adjacency: consumer -> its direct
	// predecessors.
	Reverse map[ProcessorID][]ProcessorID
	// InDegree is the derived predecessor count per node.
	InDegree map[ProcessorID]int
	// Rank is the derived topological rank (longest path from any entry
	// point), computed by a Kahn-style pass.
	Rank map[ProcessorID]int
	// Entries is the derived set of zero in-degree nodes.
	Entries EntryPoints
	// order is every ProcessorID that appeared in the source configuration,
	// preserved for deterministic iteration in tests and level partitioning.
	order []ProcessorID
}

// NewGraph builds a Graph from already-validated processor specs. Callers
// must run Validate first; NewGraph does not re-check the invariants
// Validate enforces (§3: unique IDs, resolvable edges, acyclicity) and will
// produce a nonsensical Graph — never a panic — if they don't hold.
func NewGraph(specs []ProcessorSpec) *Graph {
	g := &Graph{
		Forward:  make(map[ProcessorID][]ProcessorID, len(specs)),
		Reverse:  make(map[ProcessorID][]ProcessorID, len(specs)),
		InDegree: make(map[ProcessorID]int, len(specs)),
		Rank:     make(map[ProcessorID]int, len(specs)),
		Entries:  make(EntryPoints),
		order:    make([]ProcessorID, 0, len(specs)),
	}

	for _, spec := range specs {
		g.order = append(g.order, spec.ID)
		if _, ok := g.Forward[spec.ID]; !ok {
			g.Forward[spec.ID] = nil
		}
		if _, ok := g.InDegree[spec.ID]; !ok {
			g.InDegree[spec.ID] = 0
		}
	}

	for _, spec := range specs {
		for _, dep := range spec.DependsOn {
			g.Forward[dep] = append(g.Forward[dep], spec.ID)
			g.Reverse[spec.ID] = append(g.Reverse[spec.ID], dep)
			g.InDegree[spec.ID]++
		}
	}

	for id, degree := range g.InDegree {
		if degree == 0 {
			g.Entries[id] = struct{}{}
		}
	}

	g.computeRank()
	return g
}

// computeRank runs a Kahn-style pass over a scratch copy of the in-degree
// counts to assign each node the longest-path distance from any entry
// point, reusing the precomputed Reverse/Forward views rather than
// recursing.
func (g *Graph) computeRank() {
	remaining := make(map[ProcessorID]int, len(g.InDegree))
	for id, d := range g.InDegree {
		remaining[id] = d
	}

	queue := make([]ProcessorID, 0, len(g.Entries))
	for id := range g.Entries {
		g.Rank[id] = 0
		queue = append(queue, id)
	}

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, dependent := range g.Forward[id] {
			if g.Rank[dependent] < g.Rank[id]+1 {
				g.Rank[dependent] = g.Rank[id] + 1
			}
			remaining[dependent]--
			if remaining[dependent] == 0 {
				queue = append(queue, dependent)
			}
		}
	}
}

// Order returns every ProcessorID in the order their specs were declared,
// for deterministic iteration.
func (g *Graph) Order() []ProcessorID {
	out := make([]ProcessorID, len(g.order))
	copy(out, g.order)
	return out
}

// Levels partitions every node into topological levels: level N contains
// exactly the nodes whose Rank equals N. Used by the level-synchronous
// scheduler (§4.5); computed from the already-cached Rank view, never by
// re-walking the graph.
func (g *Graph) Levels() [][]ProcessorID {
	if len(g.Rank) == 0 {
		return nil
	}
	maxRank := 0
	for _, r := range g.Rank {
		if r > maxRank {
			maxRank = r
		}
	}
	levels := make([][]ProcessorID, maxRank+1)
	// Iterate in declaration order so each level's member order is
	// deterministic and matches the configuration's informational
	// ordering (§6: "order is informational; scheduling is by graph").
	for _, id := range g.order {
		r := g.Rank[id]
		levels[r] = append(levels[r], id)
	}
	return levels
}

// TransitiveDependents returns every node reachable from id by following
// Forward edges, used by the failure controller to compute transitive
// blocking (§4.7, §9).
func (g *Graph) TransitiveDependents(id ProcessorID) []ProcessorID {
	visited := make(map[ProcessorID]struct{})
	var out []ProcessorID
	var walk func(ProcessorID)
	walk = func(cur ProcessorID) {
		for _, next := range g.Forward[cur] {
			if _, seen := visited[next]; seen {
				continue
			}
			visited[next] = struct{}{}
			out = append(out, next)
			walk(next)
		}
	}
	walk(id)
	return out
}
