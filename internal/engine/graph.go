package engine

import (
	"sort"
)

// Graph maps each plugin name to the merged set of its required and optional
// dependency names. Every key corresponds to exactly one Record in the
// accompanying plugin map; edge targets may reference names that were never
// discovered, which signals an orphaned dependency rather than a structural
// problem with the graph.
type Graph map[string]map[string]struct{}

// Edges returns the dependency names of the given plugin in lexical order.
func (g Graph) Edges(name string) []string {
	edges := make([]string, 0, len(g[name]))
	for dep := range g[name] {
		edges = append(edges, dep)
	}
	sort.Strings(edges)
	return edges
}

// BuildGraph indexes the records by name and builds the dependency graph.
// Plugins with no dependencies map to an empty set, not a missing key.
//
// Duplicate names are a discovery-layer bug; uniqueness is assumed to be
// enforced upstream, but it is checked here and a DuplicateError aborts the
// run before any graph work begins.
func BuildGraph(records []*Record) (Graph, map[string]*Record, error) {
	pluginMap := make(map[string]*Record, len(records))
	for _, rec := range records {
		if _, exists := pluginMap[rec.Name]; exists {
			return nil, nil, &DuplicateError{Name: rec.Name}
		}
		pluginMap[rec.Name] = rec
	}

	graph := make(Graph, len(records))
	for _, rec := range records {
		edges := make(map[string]struct{}, len(rec.Depends)+len(rec.OptionalDepends))
		for _, dep := range rec.Depends {
			edges[dep] = struct{}{}
		}
		for _, dep := range rec.OptionalDepends {
			edges[dep] = struct{}{}
		}
		graph[rec.Name] = edges
	}
	return graph, pluginMap, nil
}
