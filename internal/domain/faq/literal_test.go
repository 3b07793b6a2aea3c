package faq

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const sampleDocument = "What are the office hours?\n" +
	"We are open 9am to 6pm, Monday to Friday.\n" +
	"How do I request PTO?\n" +
	"Submit a request in the HR portal at least two weeks ahead.\n" +
	"Where is the parking?\n" +
	"   \n" +
	"Who do I call for IT help?"

func TestResolveLiteral(t *testing.T) {
	tests := []struct {
		name  string
		query string
		doc   string
		want  string
	}{
		{name: "returns next line", query: "office hours", doc: sampleDocument, want: "We are open 9am to 6pm, Monday to Friday."},
		{name: "case insensitive", query: "REQUEST PTO", doc: sampleDocument, want: "Submit a request in the HR portal at least two weeks ahead."},
		{name: "no match", query: "dress code", doc: sampleDocument, want: NotFoundAnswer},
		{name: "blank answer line", query: "parking", doc: sampleDocument, want: NotFoundAnswer},
		{name: "match on last line", query: "IT help", doc: sampleDocument, want: NotFoundAnswer},
		{name: "empty document", query: "hours", doc: "", want: NotFoundAnswer},
		{
			name:  "first match wins",
			query: "token",
			doc:   "Q1 contains token\nA1\nQ2 also contains token\nA2",
			want:  "A1",
		},
		{
			name:  "substring without word boundary",
			query: "cat",
			doc:   "Can I bring my dog? (no category)\nOnly on Fridays.\nCan I bring my cat?\nNo.",
			want:  "Only on Fridays.",
		},
		{
			name:  "answer line is returned untrimmed",
			query: "wifi",
			doc:   "Wifi password?\n  ask reception \r\n",
			want:  "  ask reception \r",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, ResolveLiteral(tc.query, tc.doc))
		})
	}
}

func TestResolveLiteralCaseFoldsQuery(t *testing.T) {
	require.Equal(t, ResolveLiteral("hours", sampleDocument), ResolveLiteral("HOURS", sampleDocument))
}

func TestResolveLiteralReturnsDocumentLineOrSentinel(t *testing.T) {
	lines := strings.Split(sampleDocument, "\n")
	queries := []string{"", "a", "?", "who", "zzz", "WHERE", "\n", "9am"}
	for _, q := range queries {
		got := ResolveLiteral(q, sampleDocument)
		if got == NotFoundAnswer {
			continue
		}
		require.Contains(t, lines, got, "query %q", q)
	}
}

func TestResolveLiteralIsDeterministic(t *testing.T) {
	first := ResolveLiteral("pto", sampleDocument)
	second := ResolveLiteral("pto", sampleDocument)
	require.Equal(t, first, second)
}
