package model

import "time"

// Counts aggregates the reported statuses of one session.
type Counts struct {
	Passed  int `json:"passed"`
	Failed  int `json:"failed"`
	Blocked int `json:"blocked"`
}

// Total returns the number of results counted.
func (c Counts) Total() int {
	return c.Passed + c.Failed + c.Blocked
}

// Session is the local record of one mirroring session.
type Session struct {
	// Unique ID for this session (16 random bytes, hex encoded)
	ID string `json:"id"`
	// Timestamp when the session started
	Timestamp time.Time `json:"timestamp"`
	// Duration of the whole session including reporting
	Duration time.Duration `json:"duration"`
	// Packages under test, as given on the command line
	Packages []string `json:"packages,omitempty"`
	// TestRail run ID (absent in dry-run mode)
	RunID int `json:"run_id,omitempty"`
	// Name of the TestRail run
	RunName string `json:"run_name,omitempty"`
	// Whether the session ran in dry-run mode
	DryRun bool `json:"dry_run,omitempty"`
	// Number of tests with mapped case IDs
	MappedTests int `json:"mapped_tests"`
	// Reported result counts by status
	Results Counts `json:"results"`
	// Exit code of the go test invocation
	ExitCode int `json:"exit_code"`
}
