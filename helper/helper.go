// Package helper exposes TestRail actions for use from inside tests:
// comments, attachments and direct pass/fail marking. Every failure is
// logged and swallowed so a broken TestRail call never fails the test
// that made it.
package helper

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/railbridge/railbridge/testrail"
)

// CaseClient is the slice of the TestRail client the helpers need.
type CaseClient interface {
	PostResult(ctx context.Context, run testrail.Run, caseID string, status testrail.Status, comment string) error
	AddComment(ctx context.Context, caseID, text string) error
	AttachFile(ctx context.Context, caseID, path string) error
}

// Helper performs best-effort TestRail actions against a run.
type Helper struct {
	Client CaseClient
	Run    testrail.Run
	Logger zerolog.Logger
}

// Comment adds a comment to a case.
func (h *Helper) Comment(ctx context.Context, caseID, text string) {
	if err := h.Client.AddComment(ctx, caseID, text); err != nil {
		h.Logger.Error().Err(err).Str("case_id", caseID).Msg("Failed to add comment to case")
	}
}

// Attach uploads a file to a case.
func (h *Helper) Attach(ctx context.Context, caseID, path string) {
	if err := h.Client.AttachFile(ctx, caseID, path); err != nil {
		h.Logger.Error().Err(err).Str("case_id", caseID).Str("path", path).Msg("Failed to attach file to case")
	}
}

// PassCase marks a case as passed.
func (h *Helper) PassCase(ctx context.Context, caseID string) {
	h.mark(ctx, caseID, testrail.StatusPassed)
}

// FailCase marks a case as failed.
func (h *Helper) FailCase(ctx context.Context, caseID string) {
	h.mark(ctx, caseID, testrail.StatusFailed)
}

func (h *Helper) mark(ctx context.Context, caseID string, status testrail.Status) {
	if err := h.Client.PostResult(ctx, h.Run, caseID, status, ""); err != nil {
		h.Logger.Error().Err(err).Str("case_id", caseID).Stringer("status", status).Msg("Failed to mark case")
	}
}
