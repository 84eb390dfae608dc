package main

import (
	"os"

	"github.com/spherical/pdf-assistant/cmd/pdf-assistant/commands"
)

var version = "0.1.0"

func main() {
	commands.SetVersion(version)
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
