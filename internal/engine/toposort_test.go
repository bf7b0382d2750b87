package engine

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSortRespectsDependencies(t *testing.T) {
	r := require.New(t)

	records := []*Record{
		NewRecord("ui", []string{"tasks", "db"}, nil, okRegistrant()),
		NewRecord("db", nil, nil, okRegistrant()),
		NewRecord("tasks", []string{"db"}, nil, okRegistrant()),
	}

	result, err := Sort(records)
	r.NoError(err)

	position := make(map[string]int, len(result.Ordered))
	for i, name := range result.Ordered {
		position[name] = i
	}
	for _, rec := range records {
		for _, dep := range rec.Depends {
			r.Less(position[dep], position[rec.Name],
				"%s must be ordered before its dependent %s", dep, rec.Name)
		}
	}

	for i, name := range result.Ordered {
		rec := result.PluginMap[name]
		r.Equal(StatusPending, rec.Status)
		r.NotNil(rec.LoadOrderIndex)
		r.Equal(i, *rec.LoadOrderIndex)
	}
}

func TestSortLexicalTieBreakIsDeterministic(t *testing.T) {
	r := require.New(t)

	build := func() []*Record {
		return []*Record{
			NewRecord("zeta", nil, nil, okRegistrant()),
			NewRecord("alpha", nil, nil, okRegistrant()),
			NewRecord("midway", nil, nil, okRegistrant()),
		}
	}

	first, err := Sort(build())
	r.NoError(err)
	r.Equal([]string{"alpha", "midway", "zeta"}, first.Ordered)

	second, err := Sort(build())
	r.NoError(err)
	r.Equal(first.Ordered, second.Ordered, "identical input sets must sort identically")
}

func TestSortDetectsCycleWithConcretePath(t *testing.T) {
	r := require.New(t)

	records := []*Record{
		NewRecord("A", []string{"B"}, nil, okRegistrant()),
		NewRecord("B", []string{"C"}, nil, okRegistrant()),
		NewRecord("C", []string{"A"}, nil, okRegistrant()),
	}

	result, err := Sort(records)
	var cycle *CycleError
	r.ErrorAs(err, &cycle)
	r.Equal([]string{"A", "B", "C", "A"}, cycle.Cycle,
		"the error must carry the concrete ordered cycle, first plugin repeated at the end")
	r.ElementsMatch([]string{"A", "B", "C"}, cycle.Blocked)
	r.NotNil(result, "a cycle still yields a result for the sortable remainder")
	r.Empty(result.Ordered)
	r.Contains(cycle.Error(), "A -> B -> C -> A")
	r.Contains(cycle.Error(), "remove or modify one dependency")
}

func TestSortCycleDoesNotBlockIndependentCluster(t *testing.T) {
	r := require.New(t)

	records := []*Record{
		NewRecord("loop-a", []string{"loop-b"}, nil, okRegistrant()),
		NewRecord("loop-b", []string{"loop-a"}, nil, okRegistrant()),
		NewRecord("db", nil, nil, okRegistrant()),
		NewRecord("tasks", []string{"db"}, nil, okRegistrant()),
	}

	result, err := Sort(records)
	var cycle *CycleError
	r.ErrorAs(err, &cycle)
	r.Equal([]string{"db", "tasks"}, result.Ordered,
		"plugins outside the cycle's reach still complete sorting")
	r.ElementsMatch([]string{"loop-a", "loop-b"}, cycle.Blocked)
}

func TestSortOptionalEdgeIntoCycleDoesNotBlock(t *testing.T) {
	r := require.New(t)

	records := []*Record{
		NewRecord("loop-a", []string{"loop-b"}, nil, okRegistrant()),
		NewRecord("loop-b", []string{"loop-a"}, nil, okRegistrant()),
		NewRecord("viewer", nil, []string{"loop-a"}, okRegistrant()),
		NewRecord("editor", []string{"viewer"}, nil, okRegistrant()),
	}

	result, err := Sort(records)
	var cycle *CycleError
	r.ErrorAs(err, &cycle)
	r.Equal([]string{"viewer", "editor"}, result.Ordered,
		"an optional edge into the cycle must not drag its dependent into the blocked set")
	r.ElementsMatch([]string{"loop-a", "loop-b"}, cycle.Blocked)
	r.Equal(StatusPending, result.PluginMap["viewer"].Status)
	r.NotNil(result.PluginMap["viewer"].LoadOrderIndex)
}

func TestSortRequiredEdgeIntoCycleStaysBlocked(t *testing.T) {
	r := require.New(t)

	records := []*Record{
		NewRecord("loop-a", []string{"loop-b"}, nil, okRegistrant()),
		NewRecord("loop-b", []string{"loop-a"}, nil, okRegistrant()),
		NewRecord("direct", []string{"loop-a"}, nil, okRegistrant()),
		NewRecord("indirect", []string{"direct"}, nil, okRegistrant()),
	}

	result, err := Sort(records)
	var cycle *CycleError
	r.ErrorAs(err, &cycle)
	r.Empty(result.Ordered)
	r.ElementsMatch([]string{"loop-a", "loop-b", "direct", "indirect"}, cycle.Blocked,
		"required edges transmit the blockage transitively")
	r.Equal([]string{"loop-a", "loop-b", "loop-a"}, cycle.Cycle)
}

func TestSortMissingRequiredDepGoesToUnresolvedBucket(t *testing.T) {
	r := require.New(t)

	records := []*Record{
		NewRecord("A", nil, nil, okRegistrant()),
		NewRecord("B", []string{"missing"}, nil, okRegistrant()),
	}

	result, err := Sort(records)
	r.NoError(err, "a missing dependency is not a sort failure")
	r.Equal([]string{"A"}, result.Ordered)
	r.Equal(map[string][]string{"B": {"missing"}}, result.Unresolved)
	r.Equal(StatusDiscovered, result.PluginMap["B"].Status)
	r.Nil(result.PluginMap["B"].LoadOrderIndex)
}

func TestSortMissingOptionalDepIsNoted(t *testing.T) {
	r := require.New(t)

	records := []*Record{
		NewRecord("A", nil, nil, okRegistrant()),
		NewRecord("B", nil, []string{"metrics"}, okRegistrant()),
	}

	result, err := Sort(records)
	r.NoError(err)
	r.Equal([]string{"A", "B"}, result.Ordered, "a missing optional target never blocks sorting")
	r.Empty(result.Unresolved)
	r.Equal([]string{"metrics"}, result.PluginMap["B"].MissingOptional)
}

func TestSortOptionalEdgeOrdersWhenPresent(t *testing.T) {
	r := require.New(t)

	// "zz-theme" sorts after "ui" lexically, so only the optional edge can
	// force it ahead in the order.
	records := []*Record{
		NewRecord("ui", nil, []string{"zz-theme"}, okRegistrant()),
		NewRecord("zz-theme", nil, nil, okRegistrant()),
	}

	result, err := Sort(records)
	r.NoError(err)
	r.Equal([]string{"zz-theme", "ui"}, result.Ordered,
		"an optional dependency participates in ordering when both ends exist")
}

func TestSortDependentOfUnresolvedPluginStillOrders(t *testing.T) {
	r := require.New(t)

	// B's own dependency set is fully discovered, so B orders even though A
	// can never register. The failure surfaces at registration time.
	records := []*Record{
		NewRecord("A", []string{"missing"}, nil, okRegistrant()),
		NewRecord("B", []string{"A"}, nil, okRegistrant()),
	}

	result, err := Sort(records)
	r.NoError(err)
	r.Equal([]string{"B"}, result.Ordered)
	r.Equal(map[string][]string{"A": {"missing"}}, result.Unresolved)
}
