package engine

import (
	"sort"
	"time"

	"github.com/bytedance/gg/gptr"
	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

// Report is the final registration outcome for one run, covering every
// discovered plugin. It is the sole contract with the presentation layer and
// with CI gates.
type Report struct {
	RunID       string         `json:"run_id"`
	GeneratedAt time.Time      `json:"generated_at"`
	Plugins     []PluginStatus `json:"plugins"`
	Summary     Summary        `json:"summary"`
}

// PluginStatus is the per-plugin row of the report. Rows are snapshots; the
// slices are deep-copied so later discovery passes cannot alias into a
// report already handed to a caller.
type PluginStatus struct {
	Name            string       `json:"name"`
	State           string       `json:"status"`
	LoadOrder       *int         `json:"load_order,omitempty"`
	Depends         []string     `json:"depends,omitempty"`
	OptionalDepends []string     `json:"optional_depends,omitempty"`
	MissingOptional []string     `json:"missing_optional,omitempty"`
	Error           *ErrorDetail `json:"error,omitempty"`
}

// ErrorDetail is the serializable shape of a structured engine error.
type ErrorDetail struct {
	Kind        string `json:"kind"`
	Message     string `json:"message"`
	Remediation string `json:"remediation,omitempty"`
}

// Summary aggregates the terminal states.
type Summary struct {
	Registered int `json:"registered"`
	Failed     int `json:"failed"`
	Orphaned   int `json:"orphaned"`
	Total      int `json:"total"`
}

// NewReport snapshots the record set into a report. Rows are ordered by load
// order first, then lexically for plugins that never got one, so the report
// is deterministic for identical inputs.
func NewReport(result *SortResult) *Report {
	report := &Report{
		RunID:       uuid.NewString(),
		GeneratedAt: time.Now().UTC(),
	}

	for _, name := range result.Ordered {
		report.addRow(result.PluginMap[name])
	}
	var rest []string
	for name := range result.PluginMap {
		if rec := result.PluginMap[name]; rec.LoadOrderIndex == nil {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	for _, name := range rest {
		report.addRow(result.PluginMap[name])
	}

	for _, row := range report.Plugins {
		report.Summary.Total++
		switch row.State {
		case StatusRegistered.String():
			report.Summary.Registered++
		case StatusFailed.String():
			report.Summary.Failed++
		case StatusOrphaned.String():
			report.Summary.Orphaned++
		}
	}
	return report
}

func (r *Report) addRow(rec *Record) {
	row := PluginStatus{
		Name:  rec.Name,
		State: rec.Status.String(),
	}
	_ = copier.CopyWithOption(&row.Depends, &rec.Depends, copier.Option{DeepCopy: true})
	_ = copier.CopyWithOption(&row.OptionalDepends, &rec.OptionalDepends, copier.Option{DeepCopy: true})
	_ = copier.CopyWithOption(&row.MissingOptional, &rec.MissingOptional, copier.Option{DeepCopy: true})
	if rec.LoadOrderIndex != nil {
		row.LoadOrder = gptr.Of(*rec.LoadOrderIndex)
	}
	if rec.Err != nil {
		row.Error = &ErrorDetail{
			Kind:        Kind(rec.Err),
			Message:     rec.Err.Error(),
			Remediation: Remediation(rec.Err),
		}
	}
	r.Plugins = append(r.Plugins, row)
}

// Ok reports whether the run finished with zero failed and zero orphaned
// plugins. CI gates key off this.
func (r *Report) Ok() bool {
	return r.Summary.Failed == 0 && r.Summary.Orphaned == 0
}

// Lookup returns the row for the given plugin name.
func (r *Report) Lookup(name string) (PluginStatus, bool) {
	for _, row := range r.Plugins {
		if row.Name == name {
			return row, true
		}
	}
	return PluginStatus{}, false
}

// JSON renders the report as indented JSON.
func (r *Report) JSON() ([]byte, error) {
	return sonic.MarshalIndent(r, "", "  ")
}
