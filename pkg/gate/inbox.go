package gate

import (
	"sync"

	"github.com/aretw0/assist/pkg/domain"
)

// Inbox holds at most one deferred intent for the lifetime of the process.
// It is deliberately not persisted: an intent survives a redirect, not a restart.
type Inbox struct {
	mu     sync.Mutex
	intent *domain.DeferredIntent
}

// NewInbox returns an empty inbox.
func NewInbox() *Inbox {
	return &Inbox{}
}

// Put replaces the parked intent.
func (b *Inbox) Put(intent domain.DeferredIntent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.intent = &intent
}

// Take returns the parked intent and empties the inbox.
func (b *Inbox) Take() (domain.DeferredIntent, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.intent == nil {
		return domain.DeferredIntent{}, false
	}
	out := *b.intent
	b.intent = nil
	return out, true
}

// Peek returns the parked intent without consuming it.
func (b *Inbox) Peek() (domain.DeferredIntent, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.intent == nil {
		return domain.DeferredIntent{}, false
	}
	return *b.intent, true
}
