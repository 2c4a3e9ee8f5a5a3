// Package cli contains the xrsim command line application.
package cli

import (
	"fmt"
	"io"

	"github.com/urfave/cli/v2"
)

const (
	configFlag = "config"
	framesFlag = "frames"
	rateFlag   = "rate"
	debugFlag  = "debug"
	watchFlag  = "watch"
)

var configFileFlag = &cli.StringFlag{
	Name:     configFlag,
	Aliases:  []string{"c"},
	Usage:    "load the scene from `FILE`",
	Required: true,
}

var xrsim = &cli.App{
	Name:            "xrsim",
	Usage:           "run an XR scene against a simulated runtime",
	HideHelpCommand: true,
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:    debugFlag,
			Aliases: []string{"vvv"},
			Usage:   "enable debug logging and debug boxes",
		},
	},
	Commands: []*cli.Command{
		{
			Name:      "run",
			Usage:     "run the scene until the simulation ends or the process is interrupted",
			UsageText: "xrsim run --config <file> [--frames <count>] [--rate <hz>]",
			Flags: []cli.Flag{
				configFileFlag,
				&cli.Uint64Flag{
					Name:  framesFlag,
					Usage: "stop after `COUNT` frames, overriding the config; 0 keeps the configured count",
				},
				&cli.Float64Flag{
					Name:  rateFlag,
					Usage: "frame rate in `HZ`, overriding the config",
				},
			},
			Action: RunAction,
		},
		{
			Name:      "validate",
			Usage:     "check a config and print the scene it describes",
			UsageText: "xrsim validate --config <file> [--watch]",
			Flags: []cli.Flag{
				configFileFlag,
				&cli.BoolFlag{
					Name:  watchFlag,
					Usage: "keep validating the config every time it is saved",
				},
			},
			Action: ValidateAction,
		},
		{
			Name:   "schema",
			Usage:  "print the JSON schema of config files",
			Action: SchemaAction,
		},
	},
}

// NewApp returns the xrsim application writing to out and errOut.
func NewApp(out, errOut io.Writer) *cli.App {
	xrsim.Writer = out
	xrsim.ErrWriter = errOut
	return xrsim
}

func printf(w io.Writer, format string, a ...interface{}) {
	fmt.Fprintf(w, format+"\n", a...)
}
