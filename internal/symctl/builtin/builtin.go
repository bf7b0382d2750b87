// Package builtin declares the plugins compiled into symctl itself.
// Manifest-discovered plugins find their entry points here as well, paired
// by name.
package builtin

import (
	"runtime"

	hoststat "github.com/likexian/host-stat-go"

	"github.com/kiosk404/symbiont/internal/engine"
	"github.com/kiosk404/symbiont/internal/loader"
	"github.com/kiosk404/symbiont/pkg/logger"
)

var registry = loader.NewInTree()

func init() {
	registry.MustRegister(loader.Entry{
		Name:        "hostinfo",
		Description: "Collects host OS and memory information at startup.",
		Factory: func() engine.Registrant {
			return engine.RegistrantFunc(registerHostInfo)
		},
	})
	registry.MustRegister(loader.Entry{
		Name:            "diagnostics",
		Description:     "Logs Go runtime diagnostics at startup.",
		OptionalDepends: []string{"hostinfo"},
		Factory: func() engine.Registrant {
			return engine.RegistrantFunc(registerDiagnostics)
		},
	})
}

// Registry returns the in-tree registry shared by every symctl command.
func Registry() *loader.InTree {
	return registry
}

func registerHostInfo() error {
	info, err := hoststat.GetHostInfo()
	if err != nil {
		return err
	}
	mem, err := hoststat.GetMemStat()
	if err != nil {
		return err
	}
	logger.InfoX("hostinfo", "host %s, release %s %s, mem %dM total / %dM free",
		info.HostName, info.Release, info.OSBit, mem.MemTotal, mem.MemFree)
	return nil
}

func registerDiagnostics() error {
	logger.InfoX("diagnostics", "go %s, %d cpus, GOMAXPROCS %d",
		runtime.Version(), runtime.NumCPU(), runtime.GOMAXPROCS(0))
	return nil
}
