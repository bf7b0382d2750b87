package engine

import (
	"sort"

	"github.com/bytedance/gg/gptr"

	"github.com/kiosk404/symbiont/pkg/logger"
)

// SortResult is the outcome of a topological sort over one discovery pass.
type SortResult struct {
	// Ordered lists every resolvable plugin in dependency-respecting,
	// lexically tie-broken order. A plugin is resolvable when all of its
	// required dependencies were discovered, even if those dependencies have
	// not (yet) registered successfully.
	Ordered []string

	// Unresolved maps plugins with never-discovered required dependencies to
	// the missing names. These plugins are not silently dropped; the
	// registrar marks them Orphaned after the ordered pass.
	Unresolved map[string][]string

	// Cycle is set when one or more dependency cycles were found. Plugins on
	// a cycle, or behind one through required edges, cannot be ordered;
	// everything else still sorts and registers normally, including plugins
	// tied to the cycle only through optional edges.
	Cycle *CycleError

	// PluginMap indexes every discovered record by name.
	PluginMap map[string]*Record

	// Graph is the merged required+optional dependency graph.
	Graph Graph
}

// Sort builds the dependency graph and orders it with Kahn's algorithm.
//
// Required dependencies gate resolvability; optional dependencies participate
// in ordering when the target exists but never block sorting when it is
// missing. When several plugins are simultaneously free of unmet
// dependencies they are emitted in ascending lexical order, so identical
// inputs always produce byte-identical output.
//
// Sort returns a non-nil result alongside a CycleError: the caller can still
// register the sortable portion of the graph. Only a DuplicateError leaves
// the result nil.
func Sort(records []*Record) (*SortResult, error) {
	graph, pluginMap, err := BuildGraph(records)
	if err != nil {
		return nil, err
	}

	result := &SortResult{
		Unresolved: make(map[string][]string),
		PluginMap:  pluginMap,
		Graph:      graph,
	}

	// Partition required dependency gaps (fatal for the plugin) from
	// optional ones (noted for feature detection only).
	for _, rec := range records {
		var missing []string
		for _, dep := range rec.Depends {
			if _, ok := pluginMap[dep]; !ok {
				missing = append(missing, dep)
			}
		}
		if len(missing) > 0 {
			sort.Strings(missing)
			result.Unresolved[rec.Name] = missing
		}
		for _, dep := range rec.OptionalDepends {
			if _, ok := pluginMap[dep]; !ok {
				rec.MissingOptional = append(rec.MissingOptional, dep)
			}
		}
	}

	// Kahn's algorithm over edges whose both ends were discovered.
	indegree := make(map[string]int, len(records))
	dependents := make(map[string][]string, len(records))
	for _, rec := range records {
		indegree[rec.Name] += 0
		for dep := range graph[rec.Name] {
			if _, ok := pluginMap[dep]; !ok {
				continue
			}
			dependents[dep] = append(dependents[dep], rec.Name)
			indegree[rec.Name]++
		}
	}

	var frontier []string
	for name, degree := range indegree {
		if degree == 0 {
			frontier = append(frontier, name)
		}
	}
	sort.Strings(frontier)

	var full []string
	for len(frontier) > 0 {
		name := frontier[0]
		frontier = frontier[1:]
		full = append(full, name)

		for _, dependent := range dependents[name] {
			indegree[dependent]--
			if indegree[dependent] == 0 {
				frontier = append(frontier, dependent)
			}
		}
		sort.Strings(frontier)
	}

	// Anything Kahn could not drain sits on or behind a cycle. Only required
	// edges transmit the blockage, though: a residual plugin tied to the
	// cycle purely through optional edges is salvaged back into the order,
	// with the unready optional targets surfacing as soft-missing notes at
	// registration time.
	if len(full) != len(records) {
		emitted := make(map[string]struct{}, len(full))
		for _, name := range full {
			emitted[name] = struct{}{}
		}
		var residual []string
		for _, rec := range records {
			if _, ok := emitted[rec.Name]; !ok {
				residual = append(residual, rec.Name)
			}
		}
		sort.Strings(residual)

		members := cycleMembers(graph, residual)
		salvaged, blocked := salvage(graph, pluginMap, residual, members)
		full = append(full, salvaged...)

		result.Cycle = &CycleError{
			Cycle:   traceCycle(graph, pluginMap, blocked),
			Blocked: blocked,
		}
		logger.Warn("[Engine] dependency cycle detected: %v (%d plugins blocked)",
			result.Cycle.Cycle, len(blocked))
	}

	// Ordered excludes the unresolved bucket; those plugins never reach the
	// registration loop.
	for _, name := range full {
		if _, orphan := result.Unresolved[name]; orphan {
			continue
		}
		rec := pluginMap[name]
		rec.markStatus(StatusPending)
		rec.LoadOrderIndex = gptr.Of(len(result.Ordered))
		result.Ordered = append(result.Ordered, name)
	}

	if result.Cycle != nil {
		return result, result.Cycle
	}
	return result, nil
}

// cycleMembers narrows the residual set to the plugins actually sitting on a
// dependency cycle, by repeatedly discarding residual plugins no other
// residual plugin depends on. What survives is the union of every cycle.
func cycleMembers(graph Graph, residual []string) map[string]struct{} {
	members := make(map[string]struct{}, len(residual))
	for _, name := range residual {
		members[name] = struct{}{}
	}

	for {
		depended := make(map[string]struct{}, len(members))
		for name := range members {
			for dep := range graph[name] {
				if _, ok := members[dep]; ok {
					depended[dep] = struct{}{}
				}
			}
		}
		changed := false
		for name := range members {
			if _, ok := depended[name]; !ok {
				delete(members, name)
				changed = true
			}
		}
		if !changed {
			return members
		}
	}
}

// salvage splits the residual plugins that are not on a cycle themselves
// into an orderable tail and a blocked remainder. A required edge into the
// blocked set keeps its dependent blocked, transitively; an optional edge
// does not, it merely becomes a missing-optional note once the cycle members
// fail. The salvaged tail is emitted with the same lexical tie-break as the
// main drain.
func salvage(graph Graph, pluginMap map[string]*Record, residual []string, members map[string]struct{}) (ordered, blocked []string) {
	blockedSet := make(map[string]struct{}, len(members))
	for name := range members {
		blockedSet[name] = struct{}{}
	}

	for changed := true; changed; {
		changed = false
		for _, name := range residual {
			if _, done := blockedSet[name]; done {
				continue
			}
			for _, dep := range pluginMap[name].Depends {
				if _, ok := blockedSet[dep]; ok {
					blockedSet[name] = struct{}{}
					changed = true
					break
				}
			}
		}
	}

	remaining := make(map[string]struct{}, len(residual))
	for _, name := range residual {
		if _, ok := blockedSet[name]; !ok {
			remaining[name] = struct{}{}
		}
	}

	// The remaining plugins are cycle-free by construction, so this drain
	// always empties. Edges leaving the remaining set point at plugins that
	// either already sorted or are blocked optionals, neither of which gates
	// the salvaged order.
	indegree := make(map[string]int, len(remaining))
	dependents := make(map[string][]string, len(remaining))
	for name := range remaining {
		indegree[name] += 0
		for dep := range graph[name] {
			if _, ok := remaining[dep]; ok {
				dependents[dep] = append(dependents[dep], name)
				indegree[name]++
			}
		}
	}

	var frontier []string
	for name, degree := range indegree {
		if degree == 0 {
			frontier = append(frontier, name)
		}
	}
	sort.Strings(frontier)

	for len(frontier) > 0 {
		name := frontier[0]
		frontier = frontier[1:]
		ordered = append(ordered, name)

		for _, dependent := range dependents[name] {
			indegree[dependent]--
			if indegree[dependent] == 0 {
				frontier = append(frontier, dependent)
			}
		}
		sort.Strings(frontier)
	}

	blocked = make([]string, 0, len(blockedSet))
	for name := range blockedSet {
		blocked = append(blocked, name)
	}
	sort.Strings(blocked)
	return ordered, blocked
}

// traceCycle follows dependency edges between residual nodes until one
// repeats, producing a concrete ordered cycle path with the first plugin
// repeated at the end. Starting from the lexically smallest residual node
// and always taking the smallest residual edge keeps the path deterministic.
func traceCycle(graph Graph, pluginMap map[string]*Record, residual []string) []string {
	inResidual := make(map[string]struct{}, len(residual))
	for _, name := range residual {
		inResidual[name] = struct{}{}
	}

	next := func(name string) string {
		for _, dep := range graph.Edges(name) {
			if _, ok := pluginMap[dep]; !ok {
				continue
			}
			if _, ok := inResidual[dep]; ok {
				return dep
			}
		}
		return ""
	}

	start := residual[0]
	path := []string{start}
	seen := map[string]int{start: 0}
	for cur := start; ; {
		dep := next(cur)
		if dep == "" {
			// Should not happen: a residual node always has a residual
			// dependency. Bail out with the path collected so far.
			return append(path, path[0])
		}
		if idx, ok := seen[dep]; ok {
			return append(path[idx:], dep)
		}
		seen[dep] = len(path)
		path = append(path, dep)
		cur = dep
	}
}
