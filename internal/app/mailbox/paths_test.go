package mailbox

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitFolderPath(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		expected []string
	}{
		{
			name:     "forward_slashes",
			path:     "Archive/2024/Invoices",
			expected: []string{"Archive", "2024", "Invoices"},
		},
		{
			name:     "backslashes",
			path:     `Archive\2024\Invoices`,
			expected: []string{"Archive", "2024", "Invoices"},
		},
		{
			name:     "leading_trailing_and_duplicate_separators",
			path:     "/Archive//2024/",
			expected: []string{"Archive", "2024"},
		},
		{
			name:     "mixed_conventions",
			path:     `Archive\2024/Invoices`,
			expected: []string{"Archive", "2024", "Invoices"},
		},
		{
			name:     "single_segment",
			path:     "INBOX",
			expected: []string{"INBOX"},
		},
		{
			name:     "only_separators",
			path:     "///",
			expected: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, splitFolderPath(tt.path))
		})
	}
}

func TestNormalizedPathsAreEquivalent(t *testing.T) {
	// "/A//B/" and "A/B" must normalize to the identical target.
	left := joinFolderPath(splitFolderPath("/A//B/"), '.')
	right := joinFolderPath(splitFolderPath("A/B"), '.')

	assert.Equal(t, "A.B", left)
	assert.Equal(t, left, right)
}
