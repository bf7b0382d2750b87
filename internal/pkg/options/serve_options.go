package options

import (
	"fmt"
	"net"

	"github.com/spf13/pflag"
)

// ServeOptions configures the HTTP status endpoint.
type ServeOptions struct {
	// BindAddress is the host:port the status server listens on.
	BindAddress string `json:"bind-address" mapstructure:"bind-address"`
	// EnablePprof mounts the pprof handlers on the status server.
	EnablePprof bool `json:"enable-pprof" mapstructure:"enable-pprof"`
}

// NewServeOptions returns a new instance of ServeOptions.
func NewServeOptions() *ServeOptions {
	return &ServeOptions{
		BindAddress: "127.0.0.1:8780",
	}
}

// Validate checks ServeOptions fields.
func (o *ServeOptions) Validate() []error {
	var errs []error

	if _, _, err := net.SplitHostPort(o.BindAddress); err != nil {
		errs = append(errs, fmt.Errorf("invalid bind address %q: %w", o.BindAddress, err))
	}

	return errs
}

// AddFlags adds flags for the serve options.
func (o *ServeOptions) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.BindAddress, "serve.bind-address", o.BindAddress, "Address the status server listens on.")
	fs.BoolVar(&o.EnablePprof, "serve.enable-pprof", o.EnablePprof, "Mount pprof handlers on the status server.")
}
