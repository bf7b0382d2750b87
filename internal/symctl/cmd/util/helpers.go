package util

import (
	"fmt"
	"os"

	"github.com/kiosk404/symbiont/internal/engine"
)

// DefaultErrorExitCode is the exit code used when a command fails.
const DefaultErrorExitCode = 1

// CheckErr prints the error with its remediation hint, if the engine has
// one, and exits. Meant to wrap the Run func of a cobra command.
func CheckErr(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	if hint := engine.Remediation(err); hint != "" {
		fmt.Fprintf(os.Stderr, "Hint: %s\n", hint)
	}
	os.Exit(DefaultErrorExitCode)
}
