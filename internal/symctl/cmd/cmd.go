package cmd

import (
	"io"
	"os"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	cmdgraph "github.com/kiosk404/symbiont/internal/symctl/cmd/graph"
	cmdregister "github.com/kiosk404/symbiont/internal/symctl/cmd/register"
	cmdserve "github.com/kiosk404/symbiont/internal/symctl/cmd/serve"
	cmdutil "github.com/kiosk404/symbiont/internal/symctl/cmd/util"
)

// NewDefaultSymctlCommand creates the `symctl` command with default arguments.
func NewDefaultSymctlCommand() *cobra.Command {
	return NewSymctlCommand(os.Stdin, os.Stdout, os.Stderr)
}

func NewSymctlCommand(in io.Reader, out, errOut io.Writer) *cobra.Command {
	f := cmdutil.NewFactory()

	// Parent command to which all subcommands are added.
	cmds := &cobra.Command{
		Use:   "symctl",
		Short: "symctl resolves, orders and registers symbiont plugins",
		Long: Banner() + heredoc.Doc(`
			symctl is the CLI for the symbiont plugin host.

			It discovers plugins from the built-in registry and from manifest
			files on disk, orders them so every plugin loads after the plugins
			it depends on, and registers each one exactly once. A failing
			plugin takes down its dependents, never the rest of the run.
		`),
		SilenceUsage: true,
		Run:          runHelp,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return f.Complete()
		},
	}

	flags := cmds.PersistentFlags()
	flags.StringVar(&f.ConfigFile, "config", "", "Path to the symbiont configuration file.")
	flags.BoolVar(&f.Debug, "debug", false, "Enable debug logging.")
	f.Plugins.AddFlags(flags)
	f.Serve.AddFlags(flags)
	_ = viper.BindPFlags(flags)

	cmds.AddCommand(cmdregister.NewCmdRegister(f, out))
	cmds.AddCommand(cmdgraph.NewCmdGraph(f, out))
	cmds.AddCommand(cmdserve.NewCmdServe(f))

	return cmds
}

func runHelp(cmd *cobra.Command, args []string) {
	_ = cmd.Help()
}
