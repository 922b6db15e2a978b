package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func conv(id string) *Conversation {
	return &Conversation{
		ID:       id,
		Vendor:   Participant{ID: "vendor-1", DisplayName: "Acme Supplies"},
		Customer: Participant{ID: "cust-" + id, DisplayName: "Customer " + id},
	}
}

func TestStoreLoadSelectsFirstConversation(t *testing.T) {
	s := NewStore()

	active := s.Load([]*Conversation{conv("a"), conv("b")})
	require.NotNil(t, active)
	assert.Equal(t, "a", active.ID)
	assert.Equal(t, active, s.Active())
}

func TestStoreLoadHonorsPendingRestore(t *testing.T) {
	s := NewStore()
	s.SetPendingRestore("b")

	active := s.Load([]*Conversation{conv("a"), conv("b")})
	require.NotNil(t, active)
	assert.Equal(t, "b", active.ID)
}

func TestStoreLoadIgnoresUnknownRestoreID(t *testing.T) {
	s := NewStore()
	s.SetPendingRestore("missing")

	active := s.Load([]*Conversation{conv("a")})
	require.NotNil(t, active)
	assert.Equal(t, "a", active.ID)
}

func TestStoreLoadEmptyList(t *testing.T) {
	s := NewStore()

	assert.Nil(t, s.Load(nil))
	assert.Nil(t, s.Active())
}

func TestStoreRefreshSummary(t *testing.T) {
	s := NewStore()
	s.Load([]*Conversation{conv("a"), conv("b")})

	// Inbound message for the inactive conversation bumps its unread
	// counter; the active one only refreshes its preview.
	s.RefreshSummary("b", "new order question")
	s.RefreshSummary("a", "thanks!")

	b := s.Get("b")
	require.NotNil(t, b)
	assert.Equal(t, "new order question", b.LastMessagePreview)
	assert.Equal(t, 1, b.UnreadCount)

	a := s.Get("a")
	require.NotNil(t, a)
	assert.Equal(t, "thanks!", a.LastMessagePreview)
	assert.Equal(t, 0, a.UnreadCount)

	s.ResetUnread("b")
	assert.Equal(t, 0, s.Get("b").UnreadCount)
}
