package options

import (
	"fmt"

	"github.com/spf13/pflag"
)

// PluginsOptions holds the top-level configuration for the plugin host.
// Aligned with the plugin system configuration file.
type PluginsOptions struct {
	// Enabled controls whether the plugin system is enabled. (default: true)
	Enabled bool `json:"enabled" mapstructure:"enabled"`
	// Dir is the directory scanned for plugin manifests.
	Dir string `json:"dir" mapstructure:"dir"`
	// Allow lists plugins that are explicitly allowed to be loaded.
	// Empty means every discovered plugin is allowed.
	Allow []string `json:"allow" mapstructure:"allow"`
	// Deny lists plugins that are explicitly denied to be loaded.
	// Deny wins over Allow.
	Deny []string `json:"deny" mapstructure:"deny"`
	// Strict makes the register command exit non-zero when any plugin
	// ends up Failed or Orphaned. Intended for CI gates.
	Strict bool `json:"strict" mapstructure:"strict"`
}

// NewPluginsOptions returns a new instance of PluginsOptions.
func NewPluginsOptions() *PluginsOptions {
	return &PluginsOptions{
		Enabled: true,
		Dir:     "plugins",
		Allow:   []string{},
		Deny:    []string{},
	}
}

// Validate checks PluginsOptions fields.
func (o *PluginsOptions) Validate() []error {
	var errs []error

	for _, list := range [][]string{o.Allow, o.Deny} {
		for _, name := range list {
			if !validPluginName(name) {
				errs = append(errs, fmt.Errorf("invalid plugin name %q in allow/deny list", name))
			}
		}
	}

	return errs
}

// validPluginName reports whether the name is DNS-compatible.
func validPluginName(name string) bool {
	if name == "" {
		return false
	}
	for _, c := range name {
		if !((c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '-' || c == '_') {
			return false
		}
	}
	return true
}

// AddFlags adds flags for the plugins options.
func (o *PluginsOptions) AddFlags(fs *pflag.FlagSet) {
	fs.BoolVar(&o.Enabled, "plugins.enabled", o.Enabled, "Enable the plugin system.")
	fs.StringVar(&o.Dir, "plugins.dir", o.Dir, "Directory scanned for plugin manifests.")
	fs.StringSliceVar(&o.Allow, "plugins.allow", o.Allow, "Plugins explicitly allowed to load; empty allows all.")
	fs.StringSliceVar(&o.Deny, "plugins.deny", o.Deny, "Plugins explicitly denied from loading; wins over allow.")
	fs.BoolVar(&o.Strict, "plugins.strict", o.Strict, "Exit non-zero when any plugin fails or is orphaned.")
}
