// Package render turns a registration report into human or machine output.
// It is purely a consumer of the engine's report; nothing here feeds back
// into resolution.
package render

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mitchellh/go-wordwrap"
	"github.com/moby/term"

	"github.com/kiosk404/symbiont/internal/engine"
)

// Known output formats.
const (
	FormatTable = "table"
	FormatTree  = "tree"
	FormatJSON  = "json"
)

// Render writes the report to w in the requested format.
func Render(w io.Writer, report *engine.Report, format string) error {
	switch format {
	case FormatTable:
		return renderTable(w, report)
	case FormatTree:
		return renderTree(w, report)
	case FormatJSON:
		data, err := report.JSON()
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	default:
		return fmt.Errorf("unknown output format %q (want %s, %s or %s)",
			format, FormatTable, FormatTree, FormatJSON)
	}
}

// statusString colors a status name for terminal output.
func statusString(state string) string {
	switch state {
	case engine.StatusRegistered.String():
		return color.GreenString(state)
	case engine.StatusFailed.String():
		return color.RedString(state)
	case engine.StatusOrphaned.String():
		return color.YellowString(state)
	default:
		return color.CyanString(state)
	}
}

// terminalWidth returns the width of the attached terminal, or 80 when
// output is not a terminal.
func terminalWidth() uint {
	ws, err := term.GetWinsize(os.Stdout.Fd())
	if err != nil || ws == nil || ws.Width == 0 {
		return 80
	}
	return uint(ws.Width)
}

// wrap reflows remediation and error text to the terminal width.
func wrap(text string) string {
	return wordwrap.WrapString(text, terminalWidth())
}
