package engine

import (
	"fmt"
)

// Status is the lifecycle state of a plugin within a single resolution run.
//
// The state machine is:
//
//	Discovered → Pending → {Registered | Failed | Orphaned}
//
// Registered, Failed and Orphaned are terminal; once a record reaches one of
// them no further transition happens within the run.
type Status int

const (
	// StatusDiscovered is the initial state, assigned when the record enters
	// the graph builder.
	StatusDiscovered Status = iota
	// StatusPending means the sorter placed the plugin in the load order and
	// it is awaiting its registration turn.
	StatusPending
	// StatusRegistered means the register entry point ran without error and
	// every required dependency was registered first.
	StatusRegistered
	// StatusFailed means the register entry point raised, or a required
	// dependency did not reach StatusRegistered.
	StatusFailed
	// StatusOrphaned means the plugin's required dependency graph could not
	// be resolved at all (a dependency name was never discovered). No
	// registration attempt was made.
	StatusOrphaned
)

var statusNames = map[Status]string{
	StatusDiscovered: "Discovered",
	StatusPending:    "Pending",
	StatusRegistered: "Registered",
	StatusFailed:     "Failed",
	StatusOrphaned:   "Orphaned",
}

// String returns the human-readable name of the status.
func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// Terminal reports whether the status is a final state for the run.
func (s Status) Terminal() bool {
	return s == StatusRegistered || s == StatusFailed || s == StatusOrphaned
}

// Registrant is the opaque register entry point of a plugin. The engine never
// loads plugin code itself; the loader hands it an already-resolved callable.
type Registrant interface {
	Register() error
}

// RegistrantFunc adapts a plain function to the Registrant interface.
type RegistrantFunc func() error

func (f RegistrantFunc) Register() error { return f() }

// Record describes one discovered plugin and its evolving status. Name,
// Depends, OptionalDepends and Registrant are fixed at discovery time; the
// sorter fills LoadOrderIndex and the registrar finalizes Status and Err.
type Record struct {
	// Name is the unique, case-sensitive identifier of the plugin. It is the
	// key in every map the engine produces.
	Name string

	// Depends lists the plugins this one requires. A missing or failed entry
	// blocks registration.
	Depends []string

	// OptionalDepends lists plugins this one can use but does not require.
	// Disjoint from Depends; a missing entry only degrades functionality.
	OptionalDepends []string

	// Registrant is invoked exactly once during registration. A nil
	// Registrant is a contract violation.
	Registrant Registrant

	// Status tracks the record through the run's state machine.
	Status Status

	// Err holds the structured failure when Status is Failed or Orphaned.
	Err error

	// LoadOrderIndex is the position assigned by the sorter, nil until
	// sorting completes. Kept for deterministic replay and diagnostics.
	LoadOrderIndex *int

	// MissingOptional collects optional dependency names that were not
	// registered by the time this plugin's turn came. Informational only;
	// the plugin is expected to degrade gracefully without them.
	MissingOptional []string
}

// NewRecord builds a Record in the Discovered state.
func NewRecord(name string, depends, optionalDepends []string, registrant Registrant) *Record {
	return &Record{
		Name:            name,
		Depends:         depends,
		OptionalDepends: optionalDepends,
		Registrant:      registrant,
		Status:          StatusDiscovered,
	}
}

// markStatus transitions the record, refusing to leave a terminal state.
func (r *Record) markStatus(next Status) {
	if r.Status.Terminal() {
		return
	}
	r.Status = next
}

// markFailed moves the record to Failed and attaches the error, unless the
// record already reached a terminal state.
func (r *Record) markFailed(err error) {
	if r.Status.Terminal() {
		return
	}
	r.Status = StatusFailed
	r.Err = err
}

// markOrphaned moves the record to Orphaned and attaches the error.
func (r *Record) markOrphaned(err error) {
	if r.Status.Terminal() {
		return
	}
	r.Status = StatusOrphaned
	r.Err = err
}
