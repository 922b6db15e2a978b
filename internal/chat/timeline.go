// internal/chat/timeline.go

package chat

import (
	"sync"
	"time"
)

// reconcileWindow bounds how far apart an optimistic entry and the
// server's echo of the same send may be timestamped and still be
// treated as one message.
const reconcileWindow = 30 * time.Second

// Timeline is the ordered view of one conversation's messages: REST
// history, live broadcasts, and locally echoed pending sends merged in.
// Entries are append-only in arrival order; after insertion only the
// seen flag ever changes.
type Timeline struct {
	mu             sync.Mutex
	conversationID string
	messages       []*Message
}

func NewTimeline() *Timeline {
	return &Timeline{}
}

// Reset clears the timeline and rebinds it to a conversation.
func (t *Timeline) Reset(conversationID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.conversationID = conversationID
	t.messages = nil
}

// ConversationID returns the conversation the timeline is bound to.
func (t *Timeline) ConversationID() string {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.conversationID
}

// Populate loads the fetched history into an empty timeline.
func (t *Timeline) Populate(history []*Message) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.messages = append(t.messages[:0], history...)
}

// Append inserts an authoritative message broadcast. It reports whether
// the timeline changed. The insert is idempotent: a message whose
// server id is already present is ignored, and a broadcast matching a
// pending optimistic entry replaces that entry in place instead of
// duplicating it.
func (t *Timeline) Append(msg *Message) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if msg.ConversationID != t.conversationID {
		return false
	}

	for _, existing := range t.messages {
		if !existing.Pending && existing.ID == msg.ID {
			return false
		}
	}

	if pending := t.findPending(msg); pending != nil {
		pending.ID = msg.ID
		pending.CreatedAt = msg.CreatedAt
		pending.Seen = msg.Seen
		pending.SeenAt = msg.SeenAt
		pending.Pending = false
		return true
	}

	t.messages = append(t.messages, msg)
	return true
}

// findPending locates an optimistic entry matching the authoritative
// broadcast by content fingerprint: same sender, same body, same
// attachment count, timestamped within the reconcile window.
func (t *Timeline) findPending(msg *Message) *Message {
	for _, existing := range t.messages {
		if !existing.Pending {
			continue
		}
		if existing.SenderID != msg.SenderID || existing.Body != msg.Body {
			continue
		}
		if len(existing.Attachments) != len(msg.Attachments) {
			continue
		}
		delta := msg.CreatedAt.Sub(existing.CreatedAt)
		if delta < 0 {
			delta = -delta
		}
		if delta <= reconcileWindow {
			return existing
		}
	}
	return nil
}

// AppendPending inserts a locally echoed message awaiting the server
// broadcast.
func (t *Timeline) AppendPending(msg *Message) {
	t.mu.Lock()
	defer t.mu.Unlock()

	msg.Pending = true
	t.messages = append(t.messages, msg)
}

// MarkSeen applies a bulk read receipt: every message authored by
// senderID that is present right now becomes seen. Messages appended
// later stay unseen until the next receipt.
func (t *Timeline) MarkSeen(senderID string, seenAt time.Time) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	marked := 0
	for _, msg := range t.messages {
		if msg.SenderID != senderID || msg.Seen {
			continue
		}
		msg.Seen = true
		at := seenAt
		msg.SeenAt = &at
		marked++
	}
	return marked
}

// Messages returns a snapshot of the timeline in display order.
func (t *Timeline) Messages() []*Message {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]*Message, len(t.messages))
	copy(out, t.messages)
	return out
}

// Len returns the number of entries.
func (t *Timeline) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return len(t.messages)
}
