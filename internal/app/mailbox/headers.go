package mailbox

import (
	"strings"
)

// ExtractRawHeader returns the named header from a raw RFC 822 header block,
// including any folded continuation lines (lines starting with whitespace).
// Matching is case-insensitive and anchored at the start of a line. The
// second return value is false when the header is absent.
func ExtractRawHeader(raw, name string) (string, bool) {
	lines := strings.Split(raw, "\n")
	prefix := strings.ToLower(name) + ":"

	for i, line := range lines {
		if !strings.HasPrefix(strings.ToLower(line), prefix) {
			continue
		}

		value := []string{strings.TrimRight(line, "\r")}
		for _, next := range lines[i+1:] {
			if !strings.HasPrefix(next, " ") && !strings.HasPrefix(next, "\t") {
				break
			}
			value = append(value, strings.TrimRight(next, "\r"))
		}
		return strings.Join(value, "\n"), true
	}

	return "", false
}
