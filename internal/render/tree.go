package render

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss/tree"

	"github.com/kiosk404/symbiont/internal/engine"
)

// renderTree writes the dependency tree: one top-level node per plugin in
// report order, with its dependency closure nested underneath. Plugins seen
// higher up the current branch are not expanded again, which also keeps
// cyclic graphs printable.
func renderTree(w io.Writer, report *engine.Report) error {
	byName := make(map[string]engine.PluginStatus, len(report.Plugins))
	for _, row := range report.Plugins {
		byName[row.Name] = row
	}

	root := tree.Root("plugins")
	for _, row := range report.Plugins {
		root.Child(pluginNode(row, byName, map[string]bool{row.Name: true}))
	}

	if _, err := fmt.Fprintln(w, root); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\n%d registered, %d failed, %d orphaned (%d total)\n",
		report.Summary.Registered, report.Summary.Failed,
		report.Summary.Orphaned, report.Summary.Total)
	return err
}

func pluginNode(row engine.PluginStatus, byName map[string]engine.PluginStatus, branch map[string]bool) *tree.Tree {
	node := tree.Root(fmt.Sprintf("%s [%s]", row.Name, statusString(row.State)))
	for _, dep := range row.Depends {
		node.Child(depNode(dep, "", byName, branch))
	}
	for _, dep := range row.OptionalDepends {
		node.Child(depNode(dep, " (optional)", byName, branch))
	}
	return node
}

func depNode(dep, suffix string, byName map[string]engine.PluginStatus, branch map[string]bool) any {
	row, known := byName[dep]
	if !known {
		return fmt.Sprintf("%s [%s]%s", dep, statusString("missing"), suffix)
	}
	if branch[dep] {
		return fmt.Sprintf("%s [%s]%s ...", dep, statusString(row.State), suffix)
	}

	branch[dep] = true
	defer delete(branch, dep)

	node := tree.Root(fmt.Sprintf("%s [%s]%s", dep, statusString(row.State), suffix))
	for _, sub := range row.Depends {
		node.Child(depNode(sub, "", byName, branch))
	}
	for _, sub := range row.OptionalDepends {
		node.Child(depNode(sub, " (optional)", byName, branch))
	}
	return node
}
