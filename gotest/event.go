package gotest

import "time"

// Action is the action field of a test2json event.
type Action string

const (
	ActionStart  Action = "start"
	ActionRun    Action = "run"
	ActionPause  Action = "pause"
	ActionCont   Action = "cont"
	ActionPass   Action = "pass"
	ActionBench  Action = "bench"
	ActionFail   Action = "fail"
	ActionOutput Action = "output"
	ActionSkip   Action = "skip"
)

// Event is one record of the `go test -json` stream, as produced by
// cmd/test2json.
type Event struct {
	Time    time.Time `json:"Time"`
	Action  Action    `json:"Action"`
	Package string    `json:"Package"`
	Test    string    `json:"Test,omitempty"`
	Elapsed float64   `json:"Elapsed,omitempty"`
	Output  string    `json:"Output,omitempty"`
}

// Terminal reports whether the event is the final outcome of a single
// test. Package-level events and intermediate actions (run, pause,
// cont, output) are not terminal; they must never trigger a result
// posting.
func (e Event) Terminal() bool {
	if e.Test == "" {
		return false
	}
	switch e.Action {
	case ActionPass, ActionFail, ActionSkip:
		return true
	default:
		return false
	}
}

// Identifier returns the unique test identifier used throughout the
// mapping: "<package>.<TestName>", or just the package for
// package-level events.
func (e Event) Identifier() string {
	if e.Test == "" {
		return e.Package
	}
	return e.Package + "." + e.Test
}
