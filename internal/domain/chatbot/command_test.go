package chatbot

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		in   string
		want Command
	}{
		{in: "!faq office hours", want: Command{Name: "!faq", Argument: "office hours"}},
		{in: "!faq-literal   parking  ", want: Command{Name: "!faq-literal", Argument: "parking"}},
		{in: "  !ask\thello there", want: Command{Name: "!ask", Argument: "hello there"}},
		{in: "!faqtop", want: Command{Name: "!faqtop"}},
		{in: "!faq\n", want: Command{Name: "!faq"}},
		{in: "", want: Command{}},
		{in: "hello bot", want: Command{Name: "hello", Argument: "bot"}},
	}
	for _, tc := range tests {
		require.Equal(t, tc.want, ParseCommand(tc.in), "input %q", tc.in)
	}
}
