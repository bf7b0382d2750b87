package engine

import (
	"errors"
	"fmt"
	"sort"

	"github.com/kiosk404/symbiont/pkg/logger"
)

// RegisterAll walks the sorted order and drives every plugin through
// registration, then finalizes the unresolved and cycle-blocked buckets.
//
// The pass is strictly sequential: registration order is a correctness
// critical total order, and the engine assumes it is the sole mutator of the
// record set for the duration of one run. Failures are isolated; one
// plugin's failure never aborts the pass. The returned report always covers
// every discovered plugin.
func RegisterAll(result *SortResult) *Report {
	for _, name := range result.Ordered {
		rec := result.PluginMap[name]

		// Required dependencies must all have registered. A dependency that
		// failed, orphaned or was never reached fails this plugin too,
		// without invoking its entry point: failure propagates transitively
		// and is never retried.
		if unmet := notRegistered(rec.Depends, result.PluginMap); len(unmet) > 0 {
			err := &MissingDepError{Plugin: name, Missing: unmet, FailSoft: false}
			rec.markFailed(err)
			logger.Warn("[Engine] %v", err)
			continue
		}

		// Optional dependencies that did not register are noted so the
		// plugin can degrade gracefully, but they never block.
		if soft := notRegistered(rec.OptionalDepends, result.PluginMap); len(soft) > 0 {
			rec.MissingOptional = mergeNames(rec.MissingOptional, soft)
			logger.Info("[Engine] %v", &MissingDepError{Plugin: name, Missing: soft, FailSoft: true})
		}

		if err := invoke(rec); err != nil {
			rec.markFailed(err)
			logger.Warn("[Engine] %v", err)
			continue
		}
		rec.markStatus(StatusRegistered)
		logger.Info("[Engine] registered plugin %q", name)
	}

	finalize(result)
	return NewReport(result)
}

// finalize settles the plugins that never reached the registration loop.
// Plugins whose required dependencies were never discovered are orphaned: no
// registration attempt was ever made for them. Cycle-blocked plugins could
// not be ordered at all; members of the concrete cycle carry the cycle
// error, while plugins merely downstream of it fail on their unready
// dependencies.
func finalize(result *SortResult) {
	for _, name := range sortedKeys(result.Unresolved) {
		rec := result.PluginMap[name]
		rec.markOrphaned(&MissingDepError{
			Plugin:   name,
			Missing:  result.Unresolved[name],
			FailSoft: false,
		})
	}

	if result.Cycle != nil {
		for _, name := range result.Cycle.Blocked {
			rec := result.PluginMap[name]
			if result.Cycle.OnCycle(name) {
				rec.markFailed(result.Cycle)
				continue
			}
			rec.markFailed(&MissingDepError{
				Plugin:   name,
				Missing:  notRegistered(rec.Depends, result.PluginMap),
				FailSoft: false,
			})
		}
	}
}

// invoke runs the plugin's register entry point, converting structural
// problems to ContractError and everything else (returned errors and
// recovered panics alike) to RegisterError.
func invoke(rec *Record) (err error) {
	if rec.Registrant == nil {
		return &ContractError{Plugin: rec.Name, Reason: "register entry point is missing"}
	}

	defer func() {
		if r := recover(); r != nil {
			err = &RegisterError{Plugin: rec.Name, Err: fmt.Errorf("panic during registration: %v", r)}
		}
	}()

	if err := rec.Registrant.Register(); err != nil {
		var contract *ContractError
		if errors.As(err, &contract) {
			return err
		}
		return &RegisterError{Plugin: rec.Name, Err: err}
	}
	return nil
}

// notRegistered returns the subset of deps whose record is not Registered,
// in lexical order. Names absent from the plugin map count as not registered.
func notRegistered(deps []string, pluginMap map[string]*Record) []string {
	var unmet []string
	for _, dep := range deps {
		rec, ok := pluginMap[dep]
		if !ok || rec.Status != StatusRegistered {
			unmet = append(unmet, dep)
		}
	}
	sort.Strings(unmet)
	return unmet
}

func mergeNames(existing, extra []string) []string {
	seen := make(map[string]struct{}, len(existing))
	for _, name := range existing {
		seen[name] = struct{}{}
	}
	for _, name := range extra {
		if _, ok := seen[name]; !ok {
			existing = append(existing, name)
		}
	}
	sort.Strings(existing)
	return existing
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
