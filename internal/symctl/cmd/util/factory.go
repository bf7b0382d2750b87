package util

import (
	"fmt"
	"os"

	"github.com/spf13/viper"

	"github.com/kiosk404/symbiont/internal/engine"
	"github.com/kiosk404/symbiont/internal/loader"
	"github.com/kiosk404/symbiont/internal/pkg/options"
	"github.com/kiosk404/symbiont/internal/symctl/builtin"
	"github.com/kiosk404/symbiont/pkg/logger"
)

// Factory carries the resolved configuration and the discovery sources all
// symctl subcommands share. Complete runs once, from the root command's
// PersistentPreRunE, after flags are parsed.
type Factory struct {
	ConfigFile string
	Debug      bool

	Plugins *options.PluginsOptions
	Serve   *options.ServeOptions

	Builtins *loader.InTree
}

func NewFactory() *Factory {
	return &Factory{
		Plugins:  options.NewPluginsOptions(),
		Serve:    options.NewServeOptions(),
		Builtins: builtin.Registry(),
	}
}

// Complete merges the config file, environment and flag values into the
// option structs, then validates them. Flag values win because viper binds
// the flag set last.
func (f *Factory) Complete() error {
	if f.ConfigFile != "" {
		viper.SetConfigFile(f.ConfigFile)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %s: %w", f.ConfigFile, err)
		}
	} else {
		viper.SetConfigName("symbiont")
		viper.AddConfigPath(".")
		// No config file around is fine, everything has a default.
		_ = viper.ReadInConfig()
	}
	viper.SetEnvPrefix("SYMBIONT")
	viper.AutomaticEnv()

	if err := viper.UnmarshalKey("plugins", f.Plugins); err != nil {
		return fmt.Errorf("decode plugins config: %w", err)
	}
	if err := viper.UnmarshalKey("serve", f.Serve); err != nil {
		return fmt.Errorf("decode serve config: %w", err)
	}

	var errs []error
	errs = append(errs, f.Plugins.Validate()...)
	errs = append(errs, f.Serve.Validate()...)
	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %v", errs)
	}

	logger.SetDebug(f.Debug)
	return nil
}

// Discover collects candidate plugins from the in-tree registry and the
// manifest directory, then applies the allow/deny policy. A missing manifest
// directory is not an error; manifests are optional.
func (f *Factory) Discover() ([]*engine.Record, error) {
	if !f.Plugins.Enabled {
		logger.Info("[symctl] plugin system disabled, nothing to discover")
		return nil, nil
	}

	sources := loader.Multi{f.Builtins}
	if info, err := os.Stat(f.Plugins.Dir); err == nil && info.IsDir() {
		sources = append(sources, &loader.ManifestDir{Dir: f.Plugins.Dir, Factories: f.Builtins})
	}

	records, err := sources.Discover()
	if err != nil {
		return nil, err
	}

	filter := loader.Filter{Allow: f.Plugins.Allow, Deny: f.Plugins.Deny}
	return filter.Apply(records), nil
}
