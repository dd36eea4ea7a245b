package mailbox

import (
	"bytes"
	"fmt"

	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"
	gomessage "github.com/emersion/go-message"
)

const defaultListLimit = 10

// FindByMessageID locates a message by its Message-ID header and returns the
// full summary: flags, envelope, body structure and raw source. Returns
// (nil, nil) when no message carries that identifier.
func (c *Client) FindByMessageID(folder, messageID string) (*MessageSummary, error) {
	var summary *MessageSummary
	err := c.withSelected(folder, func(engine *imapclient.Client, _ *imap.SelectData) error {
		seq, err := resolveSeqNum(engine, ByMessageID(messageID))
		if err != nil || seq == 0 {
			return err
		}

		section := &imap.FetchItemBodySection{Peek: true}
		options := &imap.FetchOptions{
			Envelope:      true,
			Flags:         true,
			BodyStructure: &imap.FetchItemBodyStructure{},
			BodySection:   []*imap.FetchItemBodySection{section},
		}

		bufs, err := engine.Fetch(imap.SeqSetNum(seq), options).Collect()
		if err != nil {
			return fmt.Errorf("fetch message %d: %w", seq, err)
		}
		if len(bufs) == 0 {
			return nil
		}

		summary = summaryFromBuffer(bufs[0])
		summary.BodyStructure = bufs[0].BodyStructure
		summary.Source = bufs[0].FindBodySection(section)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return summary, nil
}

// Move transfers one message from srcFolder to dstFolder. The identifier may
// be a sequence number or a Message-ID; logical identifiers are resolved
// internally, the single contract kept for consistency with every other
// operation. Returns (false, nil) when the identifier resolves to nothing;
// any failure past resolution propagates as an error.
func (c *Client) Move(srcFolder, dstFolder string, id MessageIdentifier) (bool, error) {
	moved := false
	err := c.withSelected(srcFolder, func(engine *imapclient.Client, _ *imap.SelectData) error {
		seq, err := resolveSeqNum(engine, id)
		if err != nil {
			return err
		}
		if seq == 0 {
			return nil
		}

		if _, err := engine.Move(imap.SeqSetNum(seq), dstFolder).Wait(); err != nil {
			return fmt.Errorf("move %s to %q: %w", id, dstFolder, err)
		}
		moved = true
		return nil
	})
	return moved, err
}

// ListMessages returns up to limit of the newest messages in the folder,
// newest first. A non-positive limit falls back to the default of 10.
func (c *Client) ListMessages(folder string, limit int) ([]*MessageSummary, error) {
	return c.listWindow(folder, limit, false)
}

// ListMessagesWithDeliveryID is ListMessages plus the delivery-id heuristic:
// each summary additionally carries the id recovered from its Received
// header chain, when present.
func (c *Client) ListMessagesWithDeliveryID(folder string, limit int) ([]*MessageSummary, error) {
	return c.listWindow(folder, limit, true)
}

func (c *Client) listWindow(folder string, limit int, withDeliveryID bool) ([]*MessageSummary, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	summaries := []*MessageSummary{}
	err := c.withSelected(folder, func(engine *imapclient.Client, box *imap.SelectData) error {
		start, stop, ok := seqWindow(box.NumMessages, limit)
		if !ok {
			return nil
		}

		var seqSet imap.SeqSet
		seqSet.AddRange(start, stop)

		options := &imap.FetchOptions{Envelope: true, Flags: true}
		var receivedSection *imap.FetchItemBodySection
		if withDeliveryID {
			receivedSection = receivedHeaderSection()
			options.BodySection = []*imap.FetchItemBodySection{receivedSection}
		}

		bufs, err := engine.Fetch(seqSet, options).Collect()
		if err != nil {
			return fmt.Errorf("fetch window [%d:%d]: %w", start, stop, err)
		}

		for _, buf := range bufs {
			summary := summaryFromBuffer(buf)
			if withDeliveryID {
				summary.DeliveryID = ExtractDeliveryID(string(buf.FindBodySection(receivedSection)))
			}
			summaries = append(summaries, summary)
		}

		// The fetch arrives in ascending sequence order; callers get newest first.
		for i, j := 0, len(summaries)-1; i < j; i, j = i+1, j-1 {
			summaries[i], summaries[j] = summaries[j], summaries[i]
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return summaries, nil
}

// seqWindow computes the 1-based fetch window covering the newest limit
// messages. ok is false for an empty mailbox.
func seqWindow(total uint32, limit int) (start, stop uint32, ok bool) {
	if total == 0 {
		return 0, 0, false
	}
	// Clamp before converting so a limit beyond uint32 range cannot wrap.
	window := uint32(min(int64(limit), int64(total)))
	start = 1
	if window < total {
		start = total - window + 1
	}
	return start, total, true
}

// SearchByDeliveryID scans the folder newest to oldest for the message whose
// recovered delivery id equals target, stopping at the first hit. No
// server-side index exists for the derived id, so this is one fetch per
// message by design. Returns (nil, nil) after exhausting the mailbox.
func (c *Client) SearchByDeliveryID(folder, target string) (*MessageSummary, error) {
	var match *MessageSummary
	err := c.withSelected(folder, func(engine *imapclient.Client, box *imap.SelectData) error {
		section := receivedHeaderSection()
		options := &imap.FetchOptions{
			Envelope:    true,
			Flags:       true,
			BodySection: []*imap.FetchItemBodySection{section},
		}

		for seq := box.NumMessages; seq >= 1; seq-- {
			bufs, err := engine.Fetch(imap.SeqSetNum(seq), options).Collect()
			if err != nil {
				return fmt.Errorf("fetch message %d: %w", seq, err)
			}
			if len(bufs) == 0 {
				continue
			}

			id := ExtractDeliveryID(string(bufs[0].FindBodySection(section)))
			if id != "" && id == target {
				match = summaryFromBuffer(bufs[0])
				match.DeliveryID = id
				return nil
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return match, nil
}

// MessageHeaders returns the message's parsed header collection as a plain
// key to value mapping. Duplicate header names collapse, the last field in
// the parser's iteration order wins. Returns (nil, nil) when the identifier
// resolves to nothing.
func (c *Client) MessageHeaders(folder string, id MessageIdentifier) (map[string]string, error) {
	var headers map[string]string
	err := c.withSelected(folder, func(engine *imapclient.Client, _ *imap.SelectData) error {
		raw, err := fetchHeaderBlock(engine, id)
		if err != nil || raw == nil {
			return err
		}

		header, err := parseHeaderBlock(raw)
		if err != nil {
			return err
		}

		headers = make(map[string]string)
		fields := header.Fields()
		for fields.Next() {
			headers[fields.Key()] = fields.Value()
		}
		return nil
	})
	return headers, err
}

// MessageHeader returns the value of one named header from the parsed
// collection. The boolean is false when the message or the header is absent.
// Key lookup follows the header parser's canonical, case-insensitive rules.
func (c *Client) MessageHeader(folder string, id MessageIdentifier, name string) (string, bool, error) {
	var value string
	var found bool
	err := c.withSelected(folder, func(engine *imapclient.Client, _ *imap.SelectData) error {
		raw, err := fetchHeaderBlock(engine, id)
		if err != nil || raw == nil {
			return err
		}

		header, err := parseHeaderBlock(raw)
		if err != nil {
			return err
		}

		found = header.Has(name)
		value = header.Get(name)
		return nil
	})
	return value, found, err
}

// RawMessageHeaders returns the undecoded header block as UTF-8 text.
// The boolean is false when the identifier resolves to nothing.
func (c *Client) RawMessageHeaders(folder string, id MessageIdentifier) (string, bool, error) {
	var raw []byte
	err := c.withSelected(folder, func(engine *imapclient.Client, _ *imap.SelectData) error {
		block, err := fetchHeaderBlock(engine, id)
		raw = block
		return err
	})
	if err != nil {
		return "", false, err
	}
	return string(raw), raw != nil, nil
}

// RawMessageHeader extracts one named header, folding-aware and
// case-insensitive, from the raw header block. The boolean is false when
// the message or the header is absent.
func (c *Client) RawMessageHeader(folder string, id MessageIdentifier, name string) (string, bool, error) {
	raw, ok, err := c.RawMessageHeaders(folder, id)
	if err != nil || !ok {
		return "", false, err
	}
	value, found := ExtractRawHeader(raw, name)
	return value, found, nil
}

// fetchHeaderBlock resolves the identifier and fetches the full header
// section. Returns (nil, nil) when the identifier resolves to nothing.
func fetchHeaderBlock(engine *imapclient.Client, id MessageIdentifier) ([]byte, error) {
	seq, err := resolveSeqNum(engine, id)
	if err != nil || seq == 0 {
		return nil, err
	}

	section := &imap.FetchItemBodySection{Specifier: imap.PartSpecifierHeader, Peek: true}
	options := &imap.FetchOptions{BodySection: []*imap.FetchItemBodySection{section}}

	bufs, err := engine.Fetch(imap.SeqSetNum(seq), options).Collect()
	if err != nil {
		return nil, fmt.Errorf("fetch header block for message %d: %w", seq, err)
	}
	if len(bufs) == 0 {
		return nil, nil
	}
	return bufs[0].FindBodySection(section), nil
}

func parseHeaderBlock(raw []byte) (gomessage.Header, error) {
	entity, err := gomessage.Read(bytes.NewReader(raw))
	if err != nil && !gomessage.IsUnknownCharset(err) {
		return gomessage.Header{}, fmt.Errorf("parse header block: %w", err)
	}
	return entity.Header, nil
}

func receivedHeaderSection() *imap.FetchItemBodySection {
	return &imap.FetchItemBodySection{
		Specifier:    imap.PartSpecifierHeader,
		HeaderFields: []string{"Received"},
		Peek:         true,
	}
}
