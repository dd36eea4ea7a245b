package mailbox

import (
	"time"

	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"
)

type Address struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email"`
}

// MessageSummary is the caller-facing view of one message. SeqNum is scoped
// to the current session's mailbox numbering and is not stable across
// reconnects. Optional fields are filled only by the operations that fetch
// them; summaries are built fresh per call and never cached.
type MessageSummary struct {
	SeqNum    uint32    `json:"seq_num"`
	Subject   string    `json:"subject,omitempty"`
	From      []Address `json:"from,omitempty"`
	To        []Address `json:"to,omitempty"`
	Date      time.Time `json:"date,omitempty"`
	MessageID string    `json:"message_id,omitempty"`
	Flags     []string  `json:"flags,omitempty"`

	// DeliveryID is a best-effort reconstruction from the Received chain,
	// present only when the provider markers were found. See deliveryid.go.
	DeliveryID string `json:"delivery_id,omitempty"`

	BodyStructure imap.BodyStructure `json:"-"`
	Source        []byte             `json:"source,omitempty"`
}

func summaryFromBuffer(buf *imapclient.FetchMessageBuffer) *MessageSummary {
	summary := &MessageSummary{
		SeqNum: buf.SeqNum,
	}

	if env := buf.Envelope; env != nil {
		summary.Subject = env.Subject
		summary.Date = env.Date
		summary.MessageID = env.MessageID
		summary.From = convertAddresses(env.From)
		summary.To = convertAddresses(env.To)
	}

	for _, flag := range buf.Flags {
		summary.Flags = append(summary.Flags, string(flag))
	}

	return summary
}

func convertAddresses(addrs []imap.Address) []Address {
	if len(addrs) == 0 {
		return nil
	}

	result := make([]Address, 0, len(addrs))
	for _, addr := range addrs {
		result = append(result, Address{
			Name:  addr.Name,
			Email: addr.Addr(),
		})
	}
	return result
}
