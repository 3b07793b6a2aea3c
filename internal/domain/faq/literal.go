package faq

import "strings"

// ResolveLiteral returns the line after the first line that contains query,
// compared case-insensitively. Lines are taken as-is, without trimming.
// The result is always either a line of document or NotFoundAnswer.
func ResolveLiteral(query, document string) string {
	needle := strings.ToLower(query)
	lines := strings.Split(document, "\n")
	for i, line := range lines {
		if !strings.Contains(strings.ToLower(line), needle) {
			continue
		}
		if i+1 >= len(lines) {
			return NotFoundAnswer
		}
		answer := lines[i+1]
		if strings.TrimSpace(answer) == "" {
			return NotFoundAnswer
		}
		return answer
	}
	return NotFoundAnswer
}
