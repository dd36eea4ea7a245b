package mailbox

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMailboxLockReleasedAfterSuccess(t *testing.T) {
	var locks mailboxLocks

	err := locks.with("INBOX", func() error { return nil })
	require.NoError(t, err)

	assertUnlocked(t, &locks, "INBOX")
}

func TestMailboxLockReleasedAfterError(t *testing.T) {
	var locks mailboxLocks
	failure := errors.New("command failed")

	err := locks.with("INBOX", func() error { return failure })
	assert.ErrorIs(t, err, failure)

	assertUnlocked(t, &locks, "INBOX")
}

func TestMailboxLockReleasedAfterPanic(t *testing.T) {
	var locks mailboxLocks

	assert.Panics(t, func() {
		_ = locks.with("INBOX", func() error { panic("boom") })
	})

	assertUnlocked(t, &locks, "INBOX")
}

func TestMailboxLockHeldDuringBody(t *testing.T) {
	var locks mailboxLocks

	err := locks.with("INBOX", func() error {
		assert.False(t, locks.get("INBOX").TryLock(), "lock must be held for the whole body")
		return nil
	})
	require.NoError(t, err)
}

func TestLocksArePerMailbox(t *testing.T) {
	var locks mailboxLocks

	err := locks.with("INBOX", func() error {
		// A different mailbox must not serialize against this one.
		other := locks.get("Archive")
		require.True(t, other.TryLock())
		other.Unlock()
		return nil
	})
	require.NoError(t, err)
}

func assertUnlocked(t *testing.T, locks *mailboxLocks, folder string) {
	t.Helper()
	mu := locks.get(folder)
	require.True(t, mu.TryLock(), "lock must be released on exit")
	mu.Unlock()
}
