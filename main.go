package main

import (
	"os"

	"github.com/temirov/repoverify/cmd/cli"
)

// main executes the repoverify command-line application.
func main() {
	os.Exit(cli.Run(os.Args[1:], os.Stdout, os.Stderr))
}
