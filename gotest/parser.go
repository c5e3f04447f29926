package gotest

// This file contains the streaming parser for `go test -json` output.

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Output lines can get long when tests dump large diffs.
const maxLineSize = 1024 * 1024

// ParseStream decodes a `go test -json` stream line by line, invoking
// fn for every event. Lines that are not JSON records (build noise,
// vet output) are skipped rather than treated as errors. A non-nil
// error from fn stops decoding; the rest of the stream is drained so a
// producer writing into a pipe never blocks, and the error is returned.
func ParseStream(r io.Reader, fn func(Event) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 || line[0] != '{' {
			continue
		}

		var ev Event
		if err := json.Unmarshal(line, &ev); err != nil {
			continue
		}
		if err := fn(ev); err != nil {
			io.Copy(io.Discard, r)
			return err
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading test output: %w", err)
	}
	return nil
}

// testNamePrefixes are the declaration prefixes `go test -list` emits.
var testNamePrefixes = []string{"Test", "Benchmark", "Example", "Fuzz"}

// isTestName reports whether a -list output line names a test function.
func isTestName(line string) bool {
	if line == "" || strings.ContainsAny(line, " \t") {
		return false
	}
	for _, prefix := range testNamePrefixes {
		if strings.HasPrefix(line, prefix) {
			return true
		}
	}
	return false
}
