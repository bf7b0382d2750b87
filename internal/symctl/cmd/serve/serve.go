package serve

import (
	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/kiosk404/symbiont/internal/engine"
	"github.com/kiosk404/symbiont/internal/server"
	cmdutil "github.com/kiosk404/symbiont/internal/symctl/cmd/util"
	"github.com/kiosk404/symbiont/pkg/logger"
)

var serveExample = heredoc.Doc(`
		# Register plugins, then expose the report over HTTP
		symctl serve

		# Listen on all interfaces with pprof mounted
		symctl serve --serve.bind-address=0.0.0.0:8780 --serve.enable-pprof
`)

// Serve is an options struct to support the 'serve' sub command.
type Serve struct {
	Factory *cmdutil.Factory
}

// NewCmdServe returns new initialized instance of the 'serve' sub command.
func NewCmdServe(f *cmdutil.Factory) *cobra.Command {
	o := &Serve{Factory: f}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run a registration pass and serve the report over HTTP",
		Long: heredoc.Doc(`
			Run one full registration pass, then keep the process alive
			serving the resulting report. The health endpoint reports
			unhealthy while any plugin is failed or orphaned, so the
			process works as a readiness probe for the plugins it hosts.
		`),
		Example: serveExample,
		Run: func(cmd *cobra.Command, args []string) {
			cmdutil.CheckErr(o.Run(args))
		},
	}

	return cmd
}

// Run registers the plugins and blocks serving the report.
func (o *Serve) Run(args []string) error {
	records, err := o.Factory.Discover()
	if err != nil {
		return err
	}

	report, err := engine.Run(records)
	if err != nil {
		return err
	}

	logger.Info("[symctl] serving plugin report on %s", o.Factory.Serve.BindAddress)
	return server.New(o.Factory.Serve, report).Run()
}
