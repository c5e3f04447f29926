package report

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/railbridge/railbridge/gotest"
	"github.com/railbridge/railbridge/testrail"
)

type postedResult struct {
	run     testrail.Run
	caseID  string
	status  testrail.Status
	comment string
}

type fakeSink struct {
	createNames []string
	createErr   error
	addedCases  [][]string
	results     []postedResult
	postErrFor  map[string]error
}

func (f *fakeSink) CreateRun(_ context.Context, name string) (testrail.Run, error) {
	f.createNames = append(f.createNames, name)
	if f.createErr != nil {
		return testrail.Run{}, f.createErr
	}
	return testrail.Run{ID: 42}, nil
}

func (f *fakeSink) AddCasesToRun(_ context.Context, _ testrail.Run, caseIDs []string) error {
	f.addedCases = append(f.addedCases, caseIDs)
	return nil
}

func (f *fakeSink) PostResult(_ context.Context, run testrail.Run, caseID string, status testrail.Status, comment string) error {
	f.results = append(f.results, postedResult{run: run, caseID: caseID, status: status, comment: comment})
	return f.postErrFor[caseID]
}

func testMapping(t *testing.T) *Mapping {
	t.Helper()
	return BuildMapping(zerolog.Nop(), []Test{
		{ID: "shop.TestOne", CaseIDs: []string{"C1"}},
		{ID: "shop.TestTwo", CaseIDs: []string{"C2", "C3"}},
	})
}

func TestStatusForAction(t *testing.T) {
	tests := []struct {
		action gotest.Action
		want   testrail.Status
	}{
		{gotest.ActionPass, testrail.StatusPassed},
		{gotest.ActionFail, testrail.StatusFailed},
		{gotest.ActionSkip, testrail.StatusBlocked},
		{gotest.ActionRun, testrail.StatusBlocked},
		{gotest.ActionOutput, testrail.StatusBlocked},
		{gotest.Action("somethingelse"), testrail.StatusBlocked},
	}

	for _, tt := range tests {
		t.Run(string(tt.action), func(t *testing.T) {
			require.Equal(t, tt.want, StatusForAction(tt.action))
		})
	}
}

func TestSessionStart(t *testing.T) {
	sink := &fakeSink{}
	s := &Session{
		Sink:    sink,
		Mapping: testMapping(t),
		RunName: "Nightly Run",
		Logger:  zerolog.Nop(),
	}

	require.NoError(t, s.Start(context.Background()))
	require.Equal(t, []string{"Nightly Run"}, sink.createNames)
	require.Equal(t, [][]string{{"C1", "C2", "C3"}}, sink.addedCases)
	require.Equal(t, testrail.Run{ID: 42}, s.Run())
}

func TestSessionStartCreateRunFails(t *testing.T) {
	wantErr := errors.New("testrail down")
	sink := &fakeSink{createErr: wantErr}
	s := &Session{
		Sink:    sink,
		Mapping: testMapping(t),
		RunName: "Nightly Run",
		Logger:  zerolog.Nop(),
	}

	// Run-creation failure aborts the session before cases are added.
	require.ErrorIs(t, s.Start(context.Background()), wantErr)
	require.Empty(t, sink.addedCases)
	require.False(t, s.Run().Started())
}

func TestSessionStartDryRun(t *testing.T) {
	var buf bytes.Buffer
	s := &Session{
		// No sink: dry-run must never touch a client.
		Mapping: BuildMapping(zerolog.Nop(), []Test{{ID: "shop.TestOne", CaseIDs: []string{"C1"}}}),
		RunName: "Nightly Run",
		DryRun:  true,
		Logger:  zerolog.New(&buf),
	}

	require.NoError(t, s.Start(context.Background()))
	require.False(t, s.Run().Started())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)
	require.Contains(t, lines[0], "DRY-RUN")
}

func TestSessionReportFailedTest(t *testing.T) {
	sink := &fakeSink{}
	s := &Session{Sink: sink, Mapping: testMapping(t), Logger: zerolog.Nop(), run: testrail.Run{ID: 42}}

	s.Report(context.Background(), gotest.Event{Action: gotest.ActionFail, Package: "shop", Test: "TestTwo"})

	require.Len(t, sink.results, 2)
	for i, cid := range []string{"C2", "C3"} {
		require.Equal(t, cid, sink.results[i].caseID)
		require.Equal(t, testrail.StatusFailed, sink.results[i].status)
		require.Equal(t, "shop.TestTwo", sink.results[i].comment)
		require.Equal(t, testrail.Run{ID: 42}, sink.results[i].run)
	}
}

func TestSessionReportUnmappedTest(t *testing.T) {
	sink := &fakeSink{}
	s := &Session{Sink: sink, Mapping: testMapping(t), Logger: zerolog.Nop(), run: testrail.Run{ID: 42}}

	s.Report(context.Background(), gotest.Event{Action: gotest.ActionPass, Package: "shop", Test: "TestOther"})
	require.Empty(t, sink.results)
}

func TestSessionReportNonTerminalEvent(t *testing.T) {
	sink := &fakeSink{}
	s := &Session{Sink: sink, Mapping: testMapping(t), Logger: zerolog.Nop(), run: testrail.Run{ID: 42}}

	for _, action := range []gotest.Action{gotest.ActionRun, gotest.ActionOutput, gotest.ActionPause, gotest.ActionCont} {
		s.Report(context.Background(), gotest.Event{Action: action, Package: "shop", Test: "TestOne"})
	}
	// Package-level events never report either.
	s.Report(context.Background(), gotest.Event{Action: gotest.ActionFail})

	require.Empty(t, sink.results)
}

func TestSessionReportIsolatesCaseFailures(t *testing.T) {
	var buf bytes.Buffer
	sink := &fakeSink{postErrFor: map[string]error{"C2": errors.New("boom")}}
	s := &Session{Sink: sink, Mapping: testMapping(t), Logger: zerolog.New(&buf), run: testrail.Run{ID: 42}}

	s.Report(context.Background(), gotest.Event{Action: gotest.ActionPass, Package: "shop", Test: "TestTwo"})

	// C2 failed but C3 was still posted.
	require.Len(t, sink.results, 2)
	require.Equal(t, "C3", sink.results[1].caseID)
	require.Contains(t, buf.String(), "Failed to report result")
}

func TestSessionReportSubtestDeclaration(t *testing.T) {
	// A declaration keyed to a subtest must be matched by that
	// subtest's own terminal event, even though discovery only ever
	// lists the parent test.
	sink := &fakeSink{}
	mapping := BuildMapping(zerolog.Nop(), ResolveAll(
		[]string{"shop.TestSearch"},
		map[string][]string{"shop.TestSearch/ranked": {"C2"}},
	))
	s := &Session{Sink: sink, Mapping: mapping, Logger: zerolog.Nop(), run: testrail.Run{ID: 42}}

	s.Report(context.Background(), gotest.Event{Action: gotest.ActionFail, Package: "shop", Test: "TestSearch/ranked"})
	// The parent's terminal event carries no declaration of its own
	// and must not repeat the subtest's result.
	s.Report(context.Background(), gotest.Event{Action: gotest.ActionFail, Package: "shop", Test: "TestSearch"})

	require.Len(t, sink.results, 1)
	require.Equal(t, "C2", sink.results[0].caseID)
	require.Equal(t, testrail.StatusFailed, sink.results[0].status)
	require.Equal(t, "shop.TestSearch/ranked", sink.results[0].comment)
}

func TestSessionReportDryRun(t *testing.T) {
	var buf bytes.Buffer
	s := &Session{
		Mapping: testMapping(t),
		DryRun:  true,
		Logger:  zerolog.New(&buf),
	}

	s.Report(context.Background(), gotest.Event{Action: gotest.ActionFail, Package: "shop", Test: "TestTwo"})

	require.Equal(t, 2, strings.Count(buf.String(), "[DRY-RUN] Would report result"))
}
