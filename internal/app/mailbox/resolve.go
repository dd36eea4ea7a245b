package mailbox

import (
	"fmt"
	"strings"

	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"
)

// MessageIdentifier names one message either by its globally unique
// Message-ID header token or by an already-known sequence number.
// Sequence numbers pass through resolution unchanged; Message-IDs are
// resolved with a header search against the selected mailbox.
type MessageIdentifier struct {
	seqNum    uint32
	messageID string
}

// BySeqNum identifies a message by its session-scoped sequence number.
func BySeqNum(n uint32) MessageIdentifier {
	return MessageIdentifier{seqNum: n}
}

// ByMessageID identifies a message by its Message-ID header value,
// with or without the enclosing angle brackets.
func ByMessageID(id string) MessageIdentifier {
	return MessageIdentifier{messageID: id}
}

func (id MessageIdentifier) String() string {
	if id.seqNum != 0 {
		return fmt.Sprintf("seq:%d", id.seqNum)
	}
	return "message-id:" + id.messageID
}

// normalizeMessageID strips one pair of enclosing angle brackets, tolerating
// identifiers supplied in either convention.
func normalizeMessageID(id string) string {
	id = strings.TrimSpace(id)
	id = strings.TrimPrefix(id, "<")
	id = strings.TrimSuffix(id, ">")
	return id
}

// resolveSeqNum maps an identifier to a sequence number in the currently
// selected mailbox. Returns 0 with a nil error when nothing matches; absence
// is a normal outcome here, not a failure. When duplicate Message-IDs exist
// the first result in the server's returned order wins, a deterministic
// policy rather than a recency guarantee.
func resolveSeqNum(engine *imapclient.Client, id MessageIdentifier) (uint32, error) {
	if id.seqNum != 0 {
		return id.seqNum, nil
	}

	criteria := &imap.SearchCriteria{
		Header: []imap.SearchCriteriaHeaderField{{
			Key:   "Message-Id",
			Value: normalizeMessageID(id.messageID),
		}},
	}

	data, err := engine.Search(criteria, nil).Wait()
	if err != nil {
		return 0, fmt.Errorf("search by Message-Id: %w", err)
	}

	nums := data.AllSeqNums()
	if len(nums) == 0 {
		return 0, nil
	}
	return nums[0], nil
}
