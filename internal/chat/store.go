// internal/chat/store.go

package chat

import (
	"sync"
)

// Store holds the vendor's conversation list, loaded once per session,
// and tracks which conversation is active.
type Store struct {
	mu               sync.Mutex
	conversations    []*Conversation
	active           *Conversation
	pendingRestoreID string
}

func NewStore() *Store {
	return &Store{}
}

// SetPendingRestore records a conversation id to re-select after the
// list loads, e.g. when the user arrives from a different screen.
func (s *Store) SetPendingRestore(conversationID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pendingRestoreID = conversationID
}

// Load installs the fetched conversation list and picks the active
// conversation: the pending-restore id when present in the list,
// otherwise the first conversation, otherwise none.
func (s *Store) Load(conversations []*Conversation) *Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.conversations = conversations
	s.active = nil

	if s.pendingRestoreID != "" {
		for _, c := range conversations {
			if c.ID == s.pendingRestoreID {
				s.active = c
				break
			}
		}
		s.pendingRestoreID = ""
	}

	if s.active == nil && len(conversations) > 0 {
		s.active = conversations[0]
	}

	return s.active
}

// Select makes a conversation active.
func (s *Store) Select(c *Conversation) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.active = c
}

// Active returns the active conversation, or nil.
func (s *Store) Active() *Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.active
}

// Get returns the conversation with the given id, or nil.
func (s *Store) Get(conversationID string) *Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range s.conversations {
		if c.ID == conversationID {
			return c
		}
	}
	return nil
}

// All returns a snapshot of the conversation list.
func (s *Store) All() []*Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*Conversation, len(s.conversations))
	copy(out, s.conversations)
	return out
}

// RefreshSummary updates a conversation's listing summary after an
// inbound message: preview text and, for inactive conversations, the
// unread counter.
func (s *Store) RefreshSummary(conversationID, preview string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range s.conversations {
		if c.ID != conversationID {
			continue
		}
		c.LastMessagePreview = preview
		if s.active == nil || s.active.ID != conversationID {
			c.UnreadCount++
		}
		return
	}
}

// ResetUnread clears the unread counter, used when a conversation
// becomes active.
func (s *Store) ResetUnread(conversationID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range s.conversations {
		if c.ID == conversationID {
			c.UnreadCount = 0
			return
		}
	}
}
