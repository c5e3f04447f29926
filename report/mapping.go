package report

// This file contains the case mapping built at collection time. The
// mapping is constructed once, before any test executes, and is
// read-only afterwards.

import (
	"sort"
	"strings"

	"github.com/rs/zerolog"
)

// Test is one discovered test together with the case IDs declared for
// it. An empty CaseIDs slice means the test is unmapped, which is the
// common case and not an error.
type Test struct {
	ID      string
	CaseIDs []string
}

// Mapping holds the forward (test -> case IDs) and reverse
// (case ID -> tests) associations for one session.
type Mapping struct {
	order   []string
	forward map[string][]string

	reverseOrder []string
	reverse      map[string][]string
}

// BuildMapping produces forward and reverse mappings in one pass over
// the discovered tests. Tests without case IDs are left out. A case ID
// referenced by more than one test is retained in the reverse mapping
// and reported as a warning, never an error.
func BuildMapping(logger zerolog.Logger, tests []Test) *Mapping {
	m := &Mapping{
		forward: make(map[string][]string),
		reverse: make(map[string][]string),
	}

	for _, t := range tests {
		if len(t.CaseIDs) == 0 {
			continue
		}
		m.order = append(m.order, t.ID)
		m.forward[t.ID] = t.CaseIDs

		for _, cid := range t.CaseIDs {
			if _, seen := m.reverse[cid]; !seen {
				m.reverseOrder = append(m.reverseOrder, cid)
			}
			m.reverse[cid] = append(m.reverse[cid], t.ID)
		}
	}

	for _, cid := range m.reverseOrder {
		if tests := m.reverse[cid]; len(tests) > 1 {
			logger.Warn().
				Str("case_id", cid).
				Strs("tests", tests).
				Msg("Case ID mapped to multiple tests")
		}
	}

	return m
}

// CaseIDs returns the case IDs declared for a test, in declaration
// order, or nil when the test is unmapped.
func (m *Mapping) CaseIDs(testID string) []string {
	return m.forward[testID]
}

// Tests returns the mapped test identifiers in discovery order.
func (m *Mapping) Tests() []string {
	return m.order
}

// TestsForCase returns the tests referencing a case ID, in the order
// those tests were processed.
func (m *Mapping) TestsForCase(caseID string) []string {
	return m.reverse[caseID]
}

// Cases returns all referenced case IDs in first-seen order, without
// duplicates.
func (m *Mapping) Cases() []string {
	return m.reverseOrder
}

// SharedCases returns the case IDs referenced by more than one test.
func (m *Mapping) SharedCases() []string {
	var shared []string
	for _, cid := range m.reverseOrder {
		if len(m.reverse[cid]) > 1 {
			shared = append(shared, cid)
		}
	}
	return shared
}

// Len returns the number of mapped tests.
func (m *Mapping) Len() int {
	return len(m.order)
}

// ResolveCases finds the nearest applicable case declaration for a test
// identifier: the exact identifier first, then each parent subtest
// (trimming "/name" suffixes off the test name, never the package
// path), then the bare package. Returns nil when nothing applies.
func ResolveCases(id string, declared map[string][]string) []string {
	if ids, ok := declared[id]; ok {
		return ids
	}

	pkg, test := splitIdentifier(id)
	if test == "" {
		return nil
	}
	for {
		idx := strings.LastIndex(test, "/")
		if idx < 0 {
			break
		}
		test = test[:idx]
		if ids, ok := declared[pkg+"."+test]; ok {
			return ids
		}
	}
	if ids, ok := declared[pkg]; ok {
		return ids
	}
	return nil
}

// ResolveAll resolves the declarations for every discovered test. It
// also adds an entry for each declaration keyed to a subtest of a
// discovered test: subtests only surface in the event stream, never in
// discovery, so without their own entry such declarations would never
// match anything. Subtest entries follow their parent and are sorted
// for a stable mapping order.
func ResolveAll(ids []string, declared map[string][]string) []Test {
	var subKeys []string
	for key := range declared {
		if _, test := splitIdentifier(key); strings.Contains(test, "/") {
			subKeys = append(subKeys, key)
		}
	}
	sort.Strings(subKeys)

	tests := make([]Test, 0, len(ids))
	for _, id := range ids {
		tests = append(tests, Test{ID: id, CaseIDs: ResolveCases(id, declared)})
		for _, key := range subKeys {
			if strings.HasPrefix(key, id+"/") {
				tests = append(tests, Test{ID: key, CaseIDs: declared[key]})
			}
		}
	}
	return tests
}

// testFuncPrefixes match the naming rules enforced by the go tool.
var testFuncPrefixes = []string{"Test", "Benchmark", "Example", "Fuzz"}

// splitIdentifier separates "<package>.<TestName>" at the dot preceding
// the test function name. Import paths contain dots and slashes of
// their own, so the split point is the first dot followed by a test
// function prefix rather than the last dot or slash. An identifier with
// no test part (a bare package key) returns an empty test.
func splitIdentifier(id string) (pkg, test string) {
	for i := 0; i < len(id); i++ {
		if id[i] != '.' {
			continue
		}
		rest := id[i+1:]
		for _, prefix := range testFuncPrefixes {
			if strings.HasPrefix(rest, prefix) {
				return id[:i], rest
			}
		}
	}
	return id, ""
}
