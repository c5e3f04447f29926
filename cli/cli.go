package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/railbridge/railbridge/config"
)

const AppName = "railbridge"

// DefaultRunName is used when neither the flag nor the configuration
// overrides the run name.
const DefaultRunName = "Automated Run (Real-Time)"

type App struct {
	logger zerolog.Logger
	cli    *cli.App
}

func New() *App {

	// Set default log level to info
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	logger :=
		log.Output(zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339Nano,
		})

	app := &App{
		logger: logger,
		cli: &cli.App{
			Name:  AppName,
			Usage: "Mirror go test results into TestRail",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "config",
					Usage: "Path to TestRail YAML config",
					Value: config.DefaultPath,
				},
				&cli.BoolFlag{
					Name:  "dry-run",
					Usage: "Dry run mode: no API calls",
				},
				&cli.BoolFlag{
					Name:  "log-mapping",
					Usage: "Print the test-to-case-ID mapping",
				},
				&cli.StringFlag{
					Name:  "run-name",
					Usage: "Override the TestRail run name",
				},
				&cli.BoolFlag{
					Name:  "verbose",
					Usage: "Enable verbose (debug) logging",
				},
			},
			Before: func(ctx *cli.Context) error {
				if ctx.Bool("verbose") {
					zerolog.SetGlobalLevel(zerolog.DebugLevel)
				}
				return nil
			},
		},
	}
	app.cli.Commands = append(app.cli.Commands, &cli.Command{
		Name:      "run",
		Usage:     "Run Go tests and mirror results into TestRail",
		ArgsUsage: "[packages...]",
		Action:    app.run,
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:  "test-arg",
				Usage: "Extra argument passed through to go test (repeatable)",
			},
		},
	})
	app.cli.Commands = append(app.cli.Commands, &cli.Command{
		Name:      "mapping",
		Usage:     "Show which tests map to which TestRail cases",
		ArgsUsage: "[packages...]",
		Action:    app.mapping,
	})
	app.cli.Commands = append(app.cli.Commands, &cli.Command{
		Name:   "list",
		Usage:  "List previously mirrored sessions",
		Action: app.list,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"n"},
				Usage:   "Limit number of results (default: 20)",
				Value:   20,
			},
		},
	})
	return app
}

func (a *App) Run(args []string) error {
	return a.cli.Run(args)
}

// SetVersion sets the version information for the CLI application
func (a *App) SetVersion(version, commit, date string) {
	a.cli.Version = version
	if commit != "none" && commit != "" {
		a.cli.Version = fmt.Sprintf("%s (commit: %s, built: %s)", version, commit[:8], date)
	}
}

// runName picks the run name: flag override first, then the default.
func runName(ctx *cli.Context) string {
	if name := ctx.String("run-name"); name != "" {
		return name
	}
	return DefaultRunName
}

// packagesArg returns the package patterns given on the command line,
// defaulting to all packages below the current directory.
func packagesArg(ctx *cli.Context) []string {
	packages := ctx.Args().Slice()
	if len(packages) == 0 {
		return []string{"./..."}
	}
	return packages
}
