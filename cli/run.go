package cli

// This file contains the run command: discover tests, build the case
// mapping, open a TestRail run and mirror results as tests complete.

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/railbridge/railbridge/config"
	"github.com/railbridge/railbridge/gotest"
	"github.com/railbridge/railbridge/history"
	"github.com/railbridge/railbridge/model"
	"github.com/railbridge/railbridge/report"
	"github.com/railbridge/railbridge/testrail"
)

func (a *App) run(ctx *cli.Context) error {
	startTime := time.Now()
	dryRun := ctx.Bool("dry-run")
	packages := packagesArg(ctx)

	cfg, err := a.loadConfig(ctx, dryRun)
	if err != nil {
		return err
	}

	runner := gotest.NewRunner(a.logger)
	mapping, err := a.collect(ctx, runner, cfg, packages)
	if err != nil {
		return err
	}
	if ctx.Bool("log-mapping") {
		a.printMapping(mapping)
	}

	session := &report.Session{
		Mapping: mapping,
		RunName: runName(ctx),
		DryRun:  dryRun,
		Logger:  a.logger,
	}
	if !dryRun {
		session.Sink = testrail.NewClient(cfg.ClientConfig(), a.logger)
	}

	if err := session.Start(ctx.Context); err != nil {
		return fmt.Errorf("starting TestRail session: %w", err)
	}

	var counts model.Counts
	exitCode, err := runner.Run(ctx.Context, packages, ctx.StringSlice("test-arg"), func(ev gotest.Event) error {
		session.Report(ctx.Context, ev)
		if ev.Terminal() && len(mapping.CaseIDs(ev.Identifier())) > 0 {
			switch report.StatusForAction(ev.Action) {
			case testrail.StatusPassed:
				counts.Passed++
			case testrail.StatusFailed:
				counts.Failed++
			default:
				counts.Blocked++
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	a.saveHistory(model.Session{
		ID:          newSessionID(),
		Timestamp:   startTime,
		Duration:    time.Since(startTime),
		Packages:    packages,
		RunID:       session.Run().ID,
		RunName:     runName(ctx),
		DryRun:      dryRun,
		MappedTests: mapping.Len(),
		Results:     counts,
		ExitCode:    exitCode,
	})

	if exitCode != 0 {
		return cli.Exit(fmt.Sprintf("tests failed with exit code %d", exitCode), exitCode)
	}
	return nil
}

// loadConfig loads the YAML configuration. In dry-run mode credentials
// are not required since no client is constructed; otherwise missing
// credentials abort before anything else runs.
func (a *App) loadConfig(ctx *cli.Context, dryRun bool) (*config.Config, error) {
	path := ctx.String("config")
	if dryRun {
		return config.LoadDryRun(path)
	}
	return config.Load(path)
}

// collect discovers the tests in the given packages and builds the
// case mapping from the configured declarations.
func (a *App) collect(ctx *cli.Context, runner *gotest.Runner, cfg *config.Config, packages []string) (*report.Mapping, error) {
	ids, err := runner.List(ctx.Context, packages)
	if err != nil {
		return nil, err
	}

	tests := report.ResolveAll(ids, cfg.DeclaredCases())
	mapping := report.BuildMapping(a.logger, tests)
	a.logger.Info().
		Int("tests", len(ids)).
		Int("mapped", mapping.Len()).
		Msg("Collected tests")
	return mapping, nil
}

func (a *App) saveHistory(session model.Session) {
	root, err := history.Root()
	if err != nil {
		a.logger.Warn().Err(err).Msg("Skipping session history")
		return
	}
	path, err := history.Save(root, session)
	if err != nil {
		a.logger.Warn().Err(err).Msg("Failed to save session history")
		return
	}
	a.logger.Debug().Str("path", path).Msg("Saved session history")
}

func newSessionID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b)
}
