// Package main is the xrsim command. It runs a scene config against a simulated XR runtime.
package main

import (
	"fmt"
	"os"

	"go.hmdkit.dev/xrcore/cli"
)

func main() {
	app := cli.NewApp(os.Stdout, os.Stderr)
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
