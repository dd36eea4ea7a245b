package mailbox

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hickar/mailboxer/internal/app/config"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRegistryReturnsSameInstanceForSameIdentity(t *testing.T) {
	registry := NewRegistry(NetDialer{}, testLogger())

	first := registry.GetOrCreate(config.ClientConfig{Host: "imap.example.net", Login: "alice"})
	second := registry.GetOrCreate(config.ClientConfig{Host: "imap.example.net", Login: "alice", Password: "changed"})

	assert.Same(t, first, second, "identity is (host, port, login); password differences must not split the cache")
	assert.Equal(t, 1, registry.Len())
}

func TestRegistryDistinguishesIdentities(t *testing.T) {
	registry := NewRegistry(NetDialer{}, testLogger())
	base := config.ClientConfig{Host: "imap.example.net", Port: 993, Login: "alice"}

	variants := []config.ClientConfig{
		{Host: "imap.other.net", Port: 993, Login: "alice"},
		{Host: "imap.example.net", Port: 1993, Login: "alice"},
		{Host: "imap.example.net", Port: 993, Login: "bob"},
	}

	client := registry.GetOrCreate(base)
	for _, variant := range variants {
		assert.NotSame(t, client, registry.GetOrCreate(variant))
	}
	assert.Equal(t, 4, registry.Len())
}

func TestRegistryDefaultPortSharesIdentity(t *testing.T) {
	registry := NewRegistry(NetDialer{}, testLogger())

	implicit := registry.GetOrCreate(config.ClientConfig{Host: "imap.example.net", Login: "alice"})
	explicit := registry.GetOrCreate(config.ClientConfig{Host: "imap.example.net", Port: 993, Login: "alice"})

	assert.Same(t, implicit, explicit)
}

func TestRegistryCloseAll(t *testing.T) {
	registry := NewRegistry(NetDialer{}, testLogger())
	cfg := config.ClientConfig{Host: "imap.example.net", Login: "alice"}

	before := registry.GetOrCreate(cfg)
	registry.CloseAll()
	require.Equal(t, 0, registry.Len())

	after := registry.GetOrCreate(cfg)
	assert.NotSame(t, before, after, "a cleared identity must yield a brand-new client")
	assert.False(t, after.Connected())
}
