// Package cli contains the localplanner command line tool.
package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"go.viam.com/localplanner/config"
	"go.viam.com/localplanner/logging"
)

const (
	flagDebug    = "debug"
	flagLogFile  = "log-file"
	flagConfig   = "config"
	flagScenario = "scenario"
	flagRealtime = "realtime"
	flagWatch    = "watch"
	flagTable    = "table"
	flagPlot     = "plot"
	flagLinear   = "linear"
	flagAngular  = "angular"

	logFileMaxSizeMB = 64
)

var configFlag = &cli.StringFlag{
	Name:    flagConfig,
	Aliases: []string{"c"},
	Usage:   "load planner configuration from `FILE` instead of the scenario",
}

var app = &cli.App{
	Name:            "localplanner",
	Usage:           "simulate and inspect the car-like local planner",
	HideHelpCommand: true,
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:    flagDebug,
			Aliases: []string{"vvv"},
			Usage:   "enable debug logging",
		},
		&cli.StringFlag{
			Name:  flagLogFile,
			Usage: "write logs to `FILE` instead of stdout",
		},
	},
	Commands: []*cli.Command{
		{
			Name:      "run",
			Usage:     "drive one or more scenarios to their goal with a simulated base",
			ArgsUsage: "<scenario.json> [scenario.json...]",
			Flags: []cli.Flag{
				configFlag,
				&cli.BoolFlag{
					Name:  flagRealtime,
					Usage: "run the control loop on the wall clock",
				},
				&cli.BoolFlag{
					Name:  flagWatch,
					Usage: "apply edits to the --config file while driving, requires --realtime",
				},
				&cli.BoolFlag{
					Name:  flagTable,
					Usage: "print every control cycle",
				},
				&cli.StringFlag{
					Name:  flagPlot,
					Usage: "save a plot of the run to `FILE` (png, svg or pdf)",
				},
			},
			Action: RunAction,
		},
		{
			Name:  "check",
			Usage: "check whether a velocity command is feasible from a scenario's start",
			Flags: []cli.Flag{
				configFlag,
				&cli.StringFlag{
					Name:     flagScenario,
					Aliases:  []string{"s"},
					Required: true,
					Usage:    "scenario `FILE`",
				},
				&cli.Float64Flag{
					Name:  flagLinear,
					Usage: "linear velocity in m/s",
				},
				&cli.Float64Flag{
					Name:  flagAngular,
					Usage: "angular velocity in rad/s",
				},
			},
			Action: CheckAction,
		},
		{
			Name:   "schema",
			Usage:  "print the JSON schema of the configuration file",
			Action: SchemaAction,
		},
	},
}

// NewApp returns a new app with the CLI API, Writer set to out, and ErrWriter
// set to errOut.
func NewApp(out, errOut io.Writer) *cli.App {
	app.Writer = out
	app.ErrWriter = errOut
	return app
}

// SchemaAction prints the configuration schema.
func SchemaAction(c *cli.Context) error {
	out, err := json.MarshalIndent(config.Schema(), "", "  ")
	if err != nil {
		return err
	}
	printf(c.App.Writer, "%s", out)
	return nil
}

func newLogger(c *cli.Context) logging.Logger {
	var logger logging.Logger
	switch {
	case c.String(flagLogFile) != "":
		logger = logging.NewFileLogger("localplanner", c.String(flagLogFile), logFileMaxSizeMB)
	case c.Bool(flagDebug):
		logger = logging.NewDebugLogger("localplanner")
	default:
		return logging.NewBlankLogger("localplanner")
	}
	if !c.Bool(flagDebug) {
		logger.SetLevel(logging.INFO)
	}
	return logger
}

// printf prints a message with no decoration.
func printf(w io.Writer, format string, a ...interface{}) {
	//nolint:errcheck
	fmt.Fprintf(w, format+"\n", a...)
}

func successf(w io.Writer, format string, a ...interface{}) {
	//nolint:errcheck
	color.New(color.FgGreen).Fprintf(w, format+"\n", a...)
}

func failuref(w io.Writer, format string, a ...interface{}) {
	//nolint:errcheck
	color.New(color.FgRed).Fprintf(w, format+"\n", a...)
}
