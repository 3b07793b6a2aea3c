package chatbot

import (
	"strings"
	"unicode"
)

// Command is the first token of a message and the trimmed remainder.
type Command struct {
	Name     string
	Argument string
}

// ParseCommand splits content at the first run of whitespace. The command
// token is matched exactly, so "!faq-literal" never reads as "!faq".
func ParseCommand(content string) Command {
	content = strings.TrimLeftFunc(content, unicode.IsSpace)
	idx := strings.IndexFunc(content, unicode.IsSpace)
	if idx < 0 {
		return Command{Name: content}
	}
	return Command{
		Name:     content[:idx],
		Argument: strings.TrimSpace(content[idx:]),
	}
}
