package cli

// This file contains the list command for displaying previously
// mirrored sessions.

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/railbridge/railbridge/history"
)

func (a *App) list(ctx *cli.Context) error {
	limit := ctx.Int("limit")

	root, err := history.Root()
	if err != nil {
		return err
	}

	entries, err := history.LoadEntries(a.logger, root)
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}

	if len(entries) == 0 {
		fmt.Println("No mirrored sessions found")
		return nil
	}

	// Sort by timestamp (newest first)
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Session.Timestamp.After(entries[j].Session.Timestamp)
	})

	display := entries
	if limit > 0 && limit < len(display) {
		display = display[:limit]
	}

	fmt.Printf("\n=== Sessions (%d total) ===\n\n", len(entries))

	for _, entry := range display {
		s := entry.Session
		timestamp := s.Timestamp.Format("2006-01-02 15:04:05")
		duration := s.Duration.Round(time.Millisecond)

		status := "✓"
		if s.ExitCode != 0 {
			status = "✗"
		}

		run := fmt.Sprintf("run %d", s.RunID)
		if s.DryRun {
			run = "dry-run"
		}

		fmt.Printf("%s %s  %s  %-8s  passed=%d failed=%d blocked=%d  %s  %s\n",
			status, timestamp, s.ID[:8], run,
			s.Results.Passed, s.Results.Failed, s.Results.Blocked,
			duration, strings.Join(s.Packages, " "))
	}

	return nil
}
