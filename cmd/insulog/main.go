// Command insulog runs the meal and insulin tracking API.
//
// main stays minimal: all wiring lives in internal/server and all command
// definitions in internal/cli.
//
//	insulog serve                      # start the HTTP API
//	insulog estimate --carbs 60 --sensitivity 10
package main

import (
	"os"

	"github.com/sakif/insulog/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		// cobra has already printed the error.
		os.Exit(1)
	}
}
