package mailbox

import "sync"

// mailboxLocks hands out one advisory mutex per mailbox name. IMAP imposes
// ordering constraints on commands against a selected mailbox, so operations
// touching the same mailbox serialize here while cross-mailbox operations on
// the same session may interleave freely.
type mailboxLocks struct {
	mus sync.Map // map[string]*sync.Mutex
}

// with runs fn while holding the mailbox lock. The deferred unlock runs on
// every exit path, so a failed or panicking body releases exactly once.
func (l *mailboxLocks) with(folder string, fn func() error) error {
	mu := l.get(folder)
	mu.Lock()
	defer mu.Unlock()
	return fn()
}

func (l *mailboxLocks) get(folder string) *sync.Mutex {
	if mu, ok := l.mus.Load(folder); ok {
		return mu.(*sync.Mutex)
	}
	mu, _ := l.mus.LoadOrStore(folder, &sync.Mutex{})
	return mu.(*sync.Mutex)
}
