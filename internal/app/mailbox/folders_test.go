package mailbox

import (
	"testing"

	"github.com/emersion/go-imap/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hickar/mailboxer/internal/app/config"
)

func TestBuildFolderTree(t *testing.T) {
	list := []*imap.ListData{
		{Mailbox: "INBOX", Delim: '/'},
		{Mailbox: "Archive/2024/Invoices", Delim: '/'},
		{Mailbox: "Archive", Delim: '/', Attrs: []imap.MailboxAttr{imap.MailboxAttrNoSelect}},
		{Mailbox: "Sent", Delim: '/', Attrs: []imap.MailboxAttr{imap.MailboxAttrSent}},
	}

	roots := buildFolderTree(list, '/')
	require.Len(t, roots, 3)

	// Roots are sorted by path.
	assert.Equal(t, "Archive", roots[0].Path)
	assert.Equal(t, "INBOX", roots[1].Path)
	assert.Equal(t, "Sent", roots[2].Path)

	archive := roots[0]
	assert.False(t, archive.Selectable, "\\Noselect folder must not be selectable")
	require.Len(t, archive.Children, 1)

	year := archive.Children[0]
	assert.Equal(t, "2024", year.Name)
	assert.Equal(t, "Archive/2024", year.Path)
	assert.False(t, year.Selectable, "synthesized intermediate node defaults to non-selectable")
	require.Len(t, year.Children, 1)

	leaf := year.Children[0]
	assert.Equal(t, "Invoices", leaf.Name)
	assert.Equal(t, "Archive/2024/Invoices", leaf.Path)
	assert.True(t, leaf.Selectable)

	assert.True(t, roots[1].Selectable)
	assert.Contains(t, roots[2].Attributes, string(imap.MailboxAttrSent))
}

func TestBuildFolderTreeNilDelim(t *testing.T) {
	list := []*imap.ListData{
		{Mailbox: "Archive/2024"},
	}

	// Without a delimiter the listed name stays one flat node.
	roots := buildFolderTree(list, 0)
	require.Len(t, roots, 1)
	assert.Equal(t, "Archive/2024", roots[0].Name)
	assert.Empty(t, roots[0].Children)
}

func TestExistenceZeroValueIsIndeterminate(t *testing.T) {
	// An unprobed state must never read as present.
	var state existence
	assert.Equal(t, existenceIndeterminate, state)
	assert.NotEqual(t, existencePresent, state)
}

func TestFolderExistsUnreachableServer(t *testing.T) {
	dialer := &countingDialer{}
	client := NewClient(config.ClientConfig{Host: "imap.example.net", Login: "alice"}, dialer, testLogger())

	assert.False(t, client.FolderExists("Archive/2024"), "a session failure must report non-existence")
	assert.Equal(t, 1, dialer.calls)
}

func TestEnsureFolderUnreachableServer(t *testing.T) {
	dialer := &countingDialer{}
	client := NewClient(config.ClientConfig{Host: "imap.example.net", Login: "alice"}, dialer, testLogger())

	assert.False(t, client.EnsureFolder("Archive/2024"))
}
