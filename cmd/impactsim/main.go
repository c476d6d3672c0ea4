// Command impactsim estimates meteor impact effects from the command line.
// It exposes the same estimator the assessment pipeline uses, plus a
// calibration run against well-studied historical events and a MOID
// classifier.
package main

import (
	"fmt"
	"os"
)

// Version is set via -ldflags at build time.
var Version = "dev"

func main() {
	app := newCLIApp(os.Stdout)
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
