// Package loader discovers candidate plugins and turns them into engine
// records. The engine itself never loads plugin code; everything that knows
// where plugins come from lives here.
package loader

import (
	"github.com/kiosk404/symbiont/internal/engine"
)

// Source produces plugin records for one discovery pass.
type Source interface {
	Discover() ([]*engine.Record, error)
}

// Multi chains several sources into one. Records are concatenated in source
// order; duplicate names across sources are deliberately left in place so
// the engine's graph builder can reject them as the fatal discovery bug
// they are.
type Multi []Source

func (m Multi) Discover() ([]*engine.Record, error) {
	var records []*engine.Record
	for _, src := range m {
		batch, err := src.Discover()
		if err != nil {
			return nil, err
		}
		records = append(records, batch...)
	}
	return records, nil
}
