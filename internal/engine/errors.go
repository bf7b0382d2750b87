package engine

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds, stable machine identifiers surfaced in the JSON report.
const (
	KindDuplicatePlugin    = "DuplicatePlugin"
	KindCircularDependency = "CircularDependency"
	KindMissingDependency  = "MissingDependency"
	KindContractViolation  = "ContractViolation"
	KindRegisterFailed     = "RegisterFailed"
)

// DuplicateError reports two discovered plugins sharing a name. It is the
// only error that aborts a run outright: nothing downstream can work without
// a consistent name space.
type DuplicateError struct {
	Name string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("plugin %q discovered more than once; plugin names must be unique", e.Name)
}

// Remediation returns the actionable follow-up for the operator.
func (e *DuplicateError) Remediation() string {
	return fmt.Sprintf("check for copied plugin directories or two manifests both declaring name %q", e.Name)
}

// CycleError carries one concrete dependency cycle found by the sorter.
// Cycle is ordered along the dependency direction with the first plugin
// repeated at the end, e.g. ["alpha", "beta", "gamma", "alpha"].
// Blocked additionally lists every plugin the cycle prevents from sorting,
// including plugins downstream of the cycle that are not themselves on it.
type CycleError struct {
	Cycle   []string
	Blocked []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("circular dependency: %s; remove or modify one dependency in the cycle, for example drop the dependency on %q declared by plugin %q",
		strings.Join(e.Cycle, " -> "), e.Cycle[1], e.Cycle[0])
}

func (e *CycleError) Remediation() string {
	return fmt.Sprintf("break the cycle by removing one of its edges, e.g. stop %q from depending on %q", e.Cycle[0], e.Cycle[1])
}

// OnCycle reports whether the given plugin is part of the concrete cycle path.
func (e *CycleError) OnCycle(name string) bool {
	for _, n := range e.Cycle {
		if n == name {
			return true
		}
	}
	return false
}

// MissingDepError reports dependency names a plugin needs but which are not
// available. FailSoft distinguishes the two severities: false for required
// gaps (the plugin fails or is orphaned), true for optional gaps (recorded so
// the plugin can feature-detect, never blocking).
type MissingDepError struct {
	Plugin   string
	Missing  []string
	FailSoft bool
}

func (e *MissingDepError) Error() string {
	kind := "required"
	if e.FailSoft {
		kind = "optional"
	}
	return fmt.Sprintf("plugin %q is missing %s dependencies: %s", e.Plugin, kind, strings.Join(e.Missing, ", "))
}

func (e *MissingDepError) Remediation() string {
	return fmt.Sprintf("install the missing plugins (%s), check they are present in the plugin directory, verify their manifest metadata, and confirm they are not disabled by the allow/deny configuration",
		strings.Join(e.Missing, ", "))
}

// ContractError reports a plugin whose register callable or metadata does not
// meet the structural contract: nil registrant, empty name, malformed
// manifest. Always fail-hard.
type ContractError struct {
	Plugin string
	Reason string
}

func (e *ContractError) Error() string {
	return fmt.Sprintf("plugin %q violates the plugin contract: %s", e.Plugin, e.Reason)
}

func (e *ContractError) Remediation() string {
	return "fix the plugin's manifest or registration entry point so it matches the plugin contract"
}

// RegisterError wraps any other failure raised while invoking the register
// entry point, including recovered panics. Always fail-hard.
type RegisterError struct {
	Plugin string
	Err    error
}

func (e *RegisterError) Error() string {
	return fmt.Sprintf("plugin %q failed to register: %v", e.Plugin, e.Err)
}

func (e *RegisterError) Unwrap() error { return e.Err }

func (e *RegisterError) Remediation() string {
	return "inspect the plugin's registration error and fix the plugin before retrying"
}

// Kind maps an engine error to its stable kind identifier. Unknown errors
// map to RegisterFailed, the catch-all failure category.
func Kind(err error) string {
	var (
		dup      *DuplicateError
		cycle    *CycleError
		missing  *MissingDepError
		contract *ContractError
	)
	switch {
	case errors.As(err, &dup):
		return KindDuplicatePlugin
	case errors.As(err, &cycle):
		return KindCircularDependency
	case errors.As(err, &missing):
		return KindMissingDependency
	case errors.As(err, &contract):
		return KindContractViolation
	default:
		return KindRegisterFailed
	}
}

// Remediation extracts the remediation text from an engine error, if the
// error carries one.
func Remediation(err error) string {
	var r interface{ Remediation() string }
	if errors.As(err, &r) {
		return r.Remediation()
	}
	return ""
}
