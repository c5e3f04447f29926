package testrail

import (
	"errors"
	"fmt"
)

// ErrRunNotStarted is returned when an operation requiring a run handle
// is called before CreateRun has produced one. This is a sequencing bug
// in the caller and is never retried.
var ErrRunNotStarted = errors.New("testrail: run not started, create a run first")

// HTTPError is returned when a TestRail API call completes with a
// non-2xx response after all retries are exhausted.
type HTTPError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("testrail: %s failed with status %d: %s", e.Op, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("testrail: %s failed with status %d", e.Op, e.StatusCode)
}

// AttachmentError is returned when a file upload is rejected by TestRail.
// It is distinct from HTTPError so that fixture-style helpers can swallow
// attachment failures without masking real API errors.
type AttachmentError struct {
	CaseID     string
	Path       string
	StatusCode int
	Body       string
}

func (e *AttachmentError) Error() string {
	return fmt.Sprintf("testrail: attaching %s to case %s failed with status %d: %s",
		e.Path, e.CaseID, e.StatusCode, e.Body)
}
