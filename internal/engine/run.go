package engine

import (
	"errors"

	"github.com/kiosk404/symbiont/pkg/logger"
)

// Run executes one full resolution pass over the discovered records:
// graph build, topological sort, registration. All three phases run to
// completion before control returns; there is no cancellation mid-run.
//
// A DuplicateError aborts the pass before any registration begins. A
// dependency cycle does not: plugins outside the cycle's reach still
// register, and the cycle shows up in the report rows of the blocked
// plugins.
func Run(records []*Record) (*Report, error) {
	result, err := Sort(records)
	if err != nil {
		var dup *DuplicateError
		if errors.As(err, &dup) {
			return nil, err
		}
		// A cycle is fatal only for the plugins caught in it.
	}

	report := RegisterAll(result)
	logger.Info("[Engine] run %s complete: %d registered, %d failed, %d orphaned of %d",
		report.RunID, report.Summary.Registered, report.Summary.Failed,
		report.Summary.Orphaned, report.Summary.Total)
	return report, nil
}

// Plan resolves and orders the records without invoking a single entry
// point. Orderable plugins stay Pending in the report, annotated with the
// position they would load at; orphans and cycle-blocked plugins settle to
// the same terminal states a real run would give them.
func Plan(records []*Record) (*Report, error) {
	result, err := Sort(records)
	if err != nil {
		var dup *DuplicateError
		if errors.As(err, &dup) {
			return nil, err
		}
	}

	finalize(result)
	return NewReport(result), nil
}
