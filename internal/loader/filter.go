package loader

import (
	"github.com/kiosk404/symbiont/internal/engine"
	"github.com/kiosk404/symbiont/pkg/logger"
)

// Filter removes candidate plugins before the dependency graph is built,
// based on the allow/deny lists from configuration. The engine itself never
// reads configuration; this pre-pass is the only place enablement policy is
// applied.
//
// An empty Allow list admits every plugin; a non-empty one admits only the
// named plugins. Deny always wins over Allow.
type Filter struct {
	Allow []string
	Deny  []string
}

// Apply returns the records that survive the allow/deny policy, preserving
// discovery order. Filtered plugins are logged, not reported: as far as the
// engine is concerned they were never discovered, so a surviving plugin
// that required one of them ends up Orphaned.
func (f Filter) Apply(records []*engine.Record) []*engine.Record {
	allowed := toSet(f.Allow)
	denied := toSet(f.Deny)

	kept := make([]*engine.Record, 0, len(records))
	for _, rec := range records {
		if _, ok := denied[rec.Name]; ok {
			logger.Info("[Loader] plugin %q removed by deny list", rec.Name)
			continue
		}
		if len(allowed) > 0 {
			if _, ok := allowed[rec.Name]; !ok {
				logger.Info("[Loader] plugin %q not on the allow list, skipping", rec.Name)
				continue
			}
		}
		kept = append(kept, rec)
	}
	return kept
}

func toSet(names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, name := range names {
		set[name] = struct{}{}
	}
	return set
}
