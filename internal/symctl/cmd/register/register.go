package register

import (
	"fmt"
	"io"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/kiosk404/symbiont/internal/engine"
	"github.com/kiosk404/symbiont/internal/render"
	cmdutil "github.com/kiosk404/symbiont/internal/symctl/cmd/util"
)

var registerExample = heredoc.Doc(`
		# Register every discovered plugin and print the result table
		symctl register

		# Same, but scan a different manifest directory
		symctl register --plugins.dir=/etc/symbiont/plugins

		# Fail the invocation when any plugin does not register (CI gate)
		symctl register --plugins.strict

		# Machine-readable output
		symctl register --output=json
`)

// Register is an options struct to support the 'register' sub command.
type Register struct {
	Output  string
	Factory *cmdutil.Factory
	Out     io.Writer
}

func NewRegisterOptions(f *cmdutil.Factory, out io.Writer) *Register {
	return &Register{
		Output:  render.FormatTable,
		Factory: f,
		Out:     out,
	}
}

// NewCmdRegister returns new initialized instance of the 'register' sub command.
func NewCmdRegister(f *cmdutil.Factory, out io.Writer) *cobra.Command {
	o := NewRegisterOptions(f, out)

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Resolve plugin dependencies and register every runnable plugin",
		Long: heredoc.Doc(`
			Discover plugins, order them so every plugin loads after its
			dependencies, and invoke each register entry point once.

			A plugin whose required dependency failed is skipped rather than
			invoked; a plugin whose required dependency was never discovered
			is reported as orphaned. Neither aborts the rest of the run.
		`),
		Example: registerExample,
		Run: func(cmd *cobra.Command, args []string) {
			cmdutil.CheckErr(o.Run(args))
		},
	}

	cmd.Flags().StringVarP(&o.Output, "output", "o", o.Output, "Output format: table, tree or json.")

	return cmd
}

// Run executes one full registration pass.
func (o *Register) Run(args []string) error {
	records, err := o.Factory.Discover()
	if err != nil {
		return err
	}

	report, err := engine.Run(records)
	if err != nil {
		return err
	}

	if err := render.Render(o.Out, report, o.Output); err != nil {
		return err
	}

	if o.Factory.Plugins.Strict && !report.Ok() {
		return fmt.Errorf("%d of %d plugins did not register",
			report.Summary.Failed+report.Summary.Orphaned, report.Summary.Total)
	}
	return nil
}
