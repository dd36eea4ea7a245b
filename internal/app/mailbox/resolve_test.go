package mailbox

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeMessageID(t *testing.T) {
	tests := []struct {
		name     string
		id       string
		expected string
	}{
		{
			name:     "bracketed",
			id:       "<msg-42@example.net>",
			expected: "msg-42@example.net",
		},
		{
			name:     "bare",
			id:       "msg-42@example.net",
			expected: "msg-42@example.net",
		},
		{
			name:     "surrounding_whitespace",
			id:       "  <msg-42@example.net> ",
			expected: "msg-42@example.net",
		},
		{
			name:     "only_leading_bracket",
			id:       "<msg-42@example.net",
			expected: "msg-42@example.net",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, normalizeMessageID(tt.id))
		})
	}
}

func TestResolveSeqNumPassthrough(t *testing.T) {
	// A numeric identifier resolves to itself without any search round-trip;
	// the nil engine proves no command is issued.
	seq, err := resolveSeqNum(nil, BySeqNum(42))
	assert.NoError(t, err)
	assert.Equal(t, uint32(42), seq)
}

func TestMessageIdentifierString(t *testing.T) {
	assert.Equal(t, "seq:7", BySeqNum(7).String())
	assert.Equal(t, "message-id:<a@b>", ByMessageID("<a@b>").String())
}
