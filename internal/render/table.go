package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/gosuri/uitable"

	"github.com/kiosk404/symbiont/internal/engine"
)

// renderTable writes the per-plugin rows and the summary line.
func renderTable(w io.Writer, report *engine.Report) error {
	table := uitable.New()
	table.MaxColWidth = 60
	table.Wrap = true

	table.AddRow("NAME", "STATUS", "ORDER", "DEPENDS", "ERROR")
	for _, row := range report.Plugins {
		order := "-"
		if row.LoadOrder != nil {
			order = strconv.Itoa(*row.LoadOrder)
		}
		table.AddRow(row.Name, statusString(row.State), order,
			dependsCell(row), errorCell(row))
	}

	if _, err := fmt.Fprintln(w, table); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\n%d registered, %d failed, %d orphaned (%d total)\n",
		report.Summary.Registered, report.Summary.Failed,
		report.Summary.Orphaned, report.Summary.Total)
	return err
}

func dependsCell(row engine.PluginStatus) string {
	parts := make([]string, 0, len(row.Depends)+len(row.OptionalDepends))
	parts = append(parts, row.Depends...)
	for _, dep := range row.OptionalDepends {
		parts = append(parts, dep+"?")
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, ", ")
}

func errorCell(row engine.PluginStatus) string {
	if row.Error == nil {
		if len(row.MissingOptional) > 0 {
			return "missing optional: " + strings.Join(row.MissingOptional, ", ")
		}
		return ""
	}
	text := row.Error.Message
	if row.Error.Remediation != "" {
		text += "\n" + row.Error.Remediation
	}
	return wrap(text)
}
