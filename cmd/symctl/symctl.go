package main

import (
	"os"

	_ "go.uber.org/automaxprocs"

	"github.com/kiosk404/symbiont/internal/symctl/cmd"
)

func main() {
	command := cmd.NewDefaultSymctlCommand()
	if err := command.Execute(); err != nil {
		os.Exit(1)
	}
}
