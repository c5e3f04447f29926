package testrail

// Status is a TestRail result status code. The numeric values are fixed
// by the TestRail API contract and must not be remapped.
type Status int

const (
	StatusPassed  Status = 1
	StatusBlocked Status = 2
	StatusFailed  Status = 5
)

func (s Status) String() string {
	switch s {
	case StatusPassed:
		return "passed"
	case StatusBlocked:
		return "blocked"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}
