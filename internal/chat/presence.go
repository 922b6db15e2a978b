// internal/chat/presence.go

package chat

import (
	"sync"
	"time"
)

// PresenceState is the best-effort online state of one counterpart.
type PresenceState int

const (
	PresenceUnknown PresenceState = iota
	PresenceOffline
	PresenceOnline
)

func (s PresenceState) String() string {
	switch s {
	case PresenceOnline:
		return "online"
	case PresenceOffline:
		return "offline"
	default:
		return "unknown"
	}
}

// PresenceTracker maintains per-counterpart online state and the single
// typing flag scoped to the active conversation's counterpart. State is
// driven by inbound events only and is not persisted.
type PresenceTracker struct {
	mu      sync.Mutex
	entries map[string]PresenceState

	typing       bool
	typingExpiry time.Duration
	typingTimer  *time.Timer
}

// NewPresenceTracker creates a tracker. typingExpiry is the local
// expiry applied on top of the sender's stop event, so a missed stop
// cannot leave the flag stuck.
func NewPresenceTracker(typingExpiry time.Duration) *PresenceTracker {
	return &PresenceTracker{
		entries:      make(map[string]PresenceState),
		typingExpiry: typingExpiry,
	}
}

// SetOnline records a presence change for a user.
func (p *PresenceTracker) SetOnline(userID string, online bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if online {
		p.entries[userID] = PresenceOnline
	} else {
		p.entries[userID] = PresenceOffline
	}
}

// Status returns the recorded state for a user.
func (p *PresenceTracker) Status(userID string) PresenceState {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.entries[userID]
}

// SetTyping updates the active conversation's typing flag. A true value
// arms the local expiry timer; every refresh rearms it.
func (p *PresenceTracker) SetTyping(isTyping bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.typing = isTyping

	if p.typingTimer != nil {
		p.typingTimer.Stop()
		p.typingTimer = nil
	}

	if isTyping && p.typingExpiry > 0 {
		p.typingTimer = time.AfterFunc(p.typingExpiry, p.expireTyping)
	}
}

func (p *PresenceTracker) expireTyping() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.typing = false
	p.typingTimer = nil
}

// Typing returns the active conversation's typing flag.
func (p *PresenceTracker) Typing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.typing
}

// ClearTyping drops the flag, used when the active conversation changes.
func (p *PresenceTracker) ClearTyping() {
	p.SetTyping(false)
}
