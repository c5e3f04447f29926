package report

// This file contains the session context that carries the run handle
// through one test session, and the per-test reporting logic.

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/railbridge/railbridge/gotest"
	"github.com/railbridge/railbridge/testrail"
)

// ResultSink is the slice of the TestRail client the mapper needs.
type ResultSink interface {
	CreateRun(ctx context.Context, name string) (testrail.Run, error)
	AddCasesToRun(ctx context.Context, run testrail.Run, caseIDs []string) error
	PostResult(ctx context.Context, run testrail.Run, caseID string, status testrail.Status, comment string) error
}

// StatusForAction translates a test outcome into a TestRail status.
// It is total: passed maps to 1, failed to 5 and every other outcome
// (skipped tests included) to blocked. Skips are deliberately not given
// their own status; TestRail's blocked state is the closest fit.
func StatusForAction(action gotest.Action) testrail.Status {
	switch action {
	case gotest.ActionPass:
		return testrail.StatusPassed
	case gotest.ActionFail:
		return testrail.StatusFailed
	default:
		return testrail.StatusBlocked
	}
}

// Session ties one test session to one TestRail run. The run handle is
// set exactly once by Start; the mapping is read-only. In dry-run mode
// Sink stays nil and every network-affecting operation is replaced by a
// log line describing what would have happened.
type Session struct {
	Sink    ResultSink
	Mapping *Mapping
	RunName string
	DryRun  bool
	Logger  zerolog.Logger

	run testrail.Run
}

// Run returns the run handle created by Start. It is the zero handle
// before Start and in dry-run mode.
func (s *Session) Run() testrail.Run {
	return s.run
}

// Start creates the TestRail run and attaches every mapped case to it.
// A failure here aborts the session: no meaningful session can proceed
// without a run.
func (s *Session) Start(ctx context.Context) error {
	caseIDs := s.Mapping.Cases()

	if s.DryRun {
		s.Logger.Info().
			Str("run_name", s.RunName).
			Int("cases", len(caseIDs)).
			Msg("[DRY-RUN] Would create TestRail run and add all mapped cases")
		return nil
	}

	run, err := s.Sink.CreateRun(ctx, s.RunName)
	if err != nil {
		return err
	}
	s.run = run
	s.Logger.Info().Int("run_id", run.ID).Str("run_name", s.RunName).Msg("Created TestRail run")

	return s.Sink.AddCasesToRun(ctx, run, caseIDs)
}

// Report posts the outcome of one completed test. Non-terminal events
// and unmapped tests produce no calls. Posting failures are logged and
// isolated per case ID, so one case's failure never blocks its
// siblings and never fails the session.
func (s *Session) Report(ctx context.Context, ev gotest.Event) {
	if !ev.Terminal() {
		return
	}

	testID := ev.Identifier()
	caseIDs := s.Mapping.CaseIDs(testID)
	if len(caseIDs) == 0 {
		return
	}

	status := StatusForAction(ev.Action)
	for _, cid := range caseIDs {
		if s.DryRun {
			s.Logger.Info().
				Str("test", testID).
				Str("case_id", cid).
				Stringer("status", status).
				Msg("[DRY-RUN] Would report result")
			continue
		}
		if err := s.Sink.PostResult(ctx, s.run, cid, status, testID); err != nil {
			s.Logger.Error().
				Err(err).
				Str("test", testID).
				Str("case_id", cid).
				Msg("Failed to report result")
		}
	}
}
