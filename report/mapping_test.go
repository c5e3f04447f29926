package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestBuildMapping(t *testing.T) {
	tests := []Test{
		{ID: "shop.TestCheckout", CaseIDs: []string{"C1"}},
		{ID: "shop.TestSearch", CaseIDs: []string{"C2", "C3"}},
		{ID: "shop.TestUnmapped"},
		{ID: "shop.TestLegacy", CaseIDs: []string{"C3"}},
	}

	m := BuildMapping(zerolog.Nop(), tests)

	require.Equal(t, 3, m.Len())
	require.Equal(t, []string{"shop.TestCheckout", "shop.TestSearch", "shop.TestLegacy"}, m.Tests())

	// Unmapped tests stay unmapped.
	require.Empty(t, m.CaseIDs("shop.TestUnmapped"))
	require.Empty(t, m.CaseIDs("shop.TestNeverSeen"))

	// Order of declaration is preserved.
	require.Equal(t, []string{"C2", "C3"}, m.CaseIDs("shop.TestSearch"))

	// The reverse mapping retains duplicates in processing order.
	require.Equal(t, []string{"shop.TestSearch", "shop.TestLegacy"}, m.TestsForCase("C3"))
	require.Equal(t, []string{"shop.TestCheckout"}, m.TestsForCase("C1"))

	require.Equal(t, []string{"C1", "C2", "C3"}, m.Cases())
	require.Equal(t, []string{"C3"}, m.SharedCases())
}

func TestBuildMappingSharedCaseDiagnostic(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	BuildMapping(logger, []Test{
		{ID: "t1", CaseIDs: []string{"C1"}},
		{ID: "t2", CaseIDs: []string{"C1"}},
		{ID: "t3", CaseIDs: []string{"C2"}},
	})

	out := buf.String()
	require.Equal(t, 1, strings.Count(out, "multiple tests"))
	require.Contains(t, out, `"case_id":"C1"`)
	require.NotContains(t, out, `"case_id":"C2"`)
}

func TestBuildMappingNoDiagnosticWithoutSharing(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	BuildMapping(logger, []Test{
		{ID: "t1", CaseIDs: []string{"C1"}},
		{ID: "t2", CaseIDs: []string{"C2"}},
	})

	require.Empty(t, buf.String())
}

func TestResolveCases(t *testing.T) {
	declared := map[string][]string{
		"github.com/acme/shop.TestCheckout":      {"C1"},
		"github.com/acme/shop.TestSearch/ranked": {"C2"},
		"github.com/acme/cart":                   {"C9"},
		"github.com/acme":                        {"C8"},
		"gopkg.in/check.v1":                      {"C7"},
	}

	tests := []struct {
		name string
		id   string
		want []string
	}{
		{
			name: "exact match",
			id:   "github.com/acme/shop.TestCheckout",
			want: []string{"C1"},
		},
		{
			name: "subtest inherits parent declaration",
			id:   "github.com/acme/shop.TestCheckout/guest/expired_card",
			want: []string{"C1"},
		},
		{
			name: "exact subtest declaration wins",
			id:   "github.com/acme/shop.TestSearch/ranked",
			want: []string{"C2"},
		},
		{
			name: "package-level fallback",
			id:   "github.com/acme/cart.TestAddItem",
			want: []string{"C9"},
		},
		{
			// "github.com/acme" is declared, but it is not the package
			// of this test, only a path prefix of it.
			name: "nothing applicable",
			id:   "github.com/acme/shop.TestUnrelated",
			want: nil,
		},
		{
			name: "path prefix never bleeds across packages",
			id:   "github.com/acme/billing.TestInvoice/rounding",
			want: nil,
		},
		{
			name: "dotted package path",
			id:   "gopkg.in/check.v1.TestBootstrap",
			want: []string{"C7"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, ResolveCases(tt.id, declared))
		})
	}
}

func TestResolveAll(t *testing.T) {
	declared := map[string][]string{
		"github.com/acme/shop.TestCheckout":       {"C1"},
		"github.com/acme/shop.TestSearch/ranked":  {"C2"},
		"github.com/acme/shop.TestSearch/boosted": {"C3"},
		"github.com/acme/shop.TestGone/old":       {"C4"},
	}
	ids := []string{
		"github.com/acme/shop.TestCheckout",
		"github.com/acme/shop.TestSearch",
	}

	tests := ResolveAll(ids, declared)

	// Subtest declarations become entries of their own, right after
	// their parent and in a stable order; declarations keyed to a
	// subtest of an undiscovered test are dropped.
	require.Equal(t, []Test{
		{ID: "github.com/acme/shop.TestCheckout", CaseIDs: []string{"C1"}},
		{ID: "github.com/acme/shop.TestSearch"},
		{ID: "github.com/acme/shop.TestSearch/boosted", CaseIDs: []string{"C3"}},
		{ID: "github.com/acme/shop.TestSearch/ranked", CaseIDs: []string{"C2"}},
	}, tests)
}
