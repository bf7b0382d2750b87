package graph

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/kiosk404/symbiont/internal/engine"
	"github.com/kiosk404/symbiont/internal/render"
	cmdutil "github.com/kiosk404/symbiont/internal/symctl/cmd/util"
	"github.com/kiosk404/symbiont/pkg/logger"
)

var graphExample = heredoc.Doc(`
		# Show the resolved load order without registering anything
		symctl graph

		# Show the dependency tree instead of the flat table
		symctl graph --output=tree

		# Keep re-resolving as manifests change on disk
		symctl graph --watch
`)

// Graph is an options struct to support the 'graph' sub command.
type Graph struct {
	Output  string
	Watch   bool
	Factory *cmdutil.Factory
	Out     io.Writer
}

func NewGraphOptions(f *cmdutil.Factory, out io.Writer) *Graph {
	return &Graph{
		Output:  render.FormatTable,
		Factory: f,
		Out:     out,
	}
}

// NewCmdGraph returns new initialized instance of the 'graph' sub command.
func NewCmdGraph(f *cmdutil.Factory, out io.Writer) *cobra.Command {
	o := NewGraphOptions(f, out)

	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Resolve and order plugins without registering them",
		Long: heredoc.Doc(`
			Run the discovery and ordering phases only. No register entry
			point is invoked; the report shows the position each plugin
			would load at, plus any orphans or dependency cycles.

			With --watch the manifest directory is monitored and the graph
			is re-resolved whenever a manifest changes.
		`),
		Example: graphExample,
		Run: func(cmd *cobra.Command, args []string) {
			cmdutil.CheckErr(o.Run(args))
		},
	}

	cmd.Flags().StringVarP(&o.Output, "output", "o", o.Output, "Output format: table, tree or json.")
	cmd.Flags().BoolVarP(&o.Watch, "watch", "w", o.Watch, "Re-resolve when the manifest directory changes.")

	return cmd
}

// Run resolves once, then optionally keeps watching the manifest directory.
func (o *Graph) Run(args []string) error {
	if err := o.resolve(); err != nil {
		return err
	}
	if !o.Watch {
		return nil
	}
	return o.watch()
}

func (o *Graph) resolve() error {
	records, err := o.Factory.Discover()
	if err != nil {
		return err
	}

	report, err := engine.Plan(records)
	if err != nil {
		return err
	}

	return render.Render(o.Out, report, o.Output)
}

func (o *Graph) watch() error {
	dir := o.Factory.Plugins.Dir
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return fmt.Errorf("cannot watch %s: not a directory", dir)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return err
	}
	logger.Info("[symctl] watching %s for manifest changes", dir)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			logger.Debug("[symctl] manifest change: %s", event)
			fmt.Fprintln(o.Out)
			if err := o.resolve(); err != nil {
				logger.Error("[symctl] re-resolve failed: %v", err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error("[symctl] watch error: %v", err)
		case <-stop:
			logger.Info("[symctl] stopping watch")
			return nil
		}
	}
}
