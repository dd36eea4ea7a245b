package mailbox

import "strings"

// splitFolderPath breaks a caller-supplied folder path into its segments.
// Both slash conventions are accepted, consecutive separators collapse and
// leading/trailing separators are stripped, so no segment is ever empty.
func splitFolderPath(path string) []string {
	return strings.FieldsFunc(path, func(r rune) bool {
		return r == '/' || r == '\\'
	})
}

// joinFolderPath rejoins segments with the server's hierarchy delimiter.
func joinFolderPath(segments []string, delim rune) string {
	return strings.Join(segments, string(delim))
}
