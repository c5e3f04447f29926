package cli

// This file contains the mapping command and the table renderer shared
// with the run command's --log-mapping flag.

import (
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/urfave/cli/v2"

	"github.com/railbridge/railbridge/gotest"
	"github.com/railbridge/railbridge/report"
)

func (a *App) mapping(ctx *cli.Context) error {
	// Credentials are not needed to inspect the mapping.
	cfg, err := a.loadConfig(ctx, true)
	if err != nil {
		return err
	}

	runner := gotest.NewRunner(a.logger)
	mapping, err := a.collect(ctx, runner, cfg, packagesArg(ctx))
	if err != nil {
		return err
	}

	a.printMapping(mapping)
	return nil
}

func (a *App) printMapping(m *report.Mapping) {
	if m.Len() == 0 {
		a.logger.Info().Msg("No tests map to TestRail cases")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle("Case Mapping")
	t.AppendHeader(table.Row{"Test", "Case IDs"})
	for _, id := range m.Tests() {
		t.AppendRow(table.Row{id, strings.Join(m.CaseIDs(id), ", ")})
	}
	t.Render()

	shared := m.SharedCases()
	if len(shared) == 0 {
		return
	}

	rt := table.NewWriter()
	rt.SetOutputMirror(os.Stdout)
	rt.SetTitle("Cases Shared by Multiple Tests")
	rt.AppendHeader(table.Row{"Case ID", "Tests"})
	for _, cid := range shared {
		rt.AppendRow(table.Row{cid, strings.Join(m.TestsForCase(cid), "\n")})
	}
	rt.Render()
}
