package chat

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serverMessage(id, convID, senderID, body string) *Message {
	return &Message{
		ID:             id,
		ConversationID: convID,
		SenderID:       senderID,
		SenderRole:     RoleCustomer,
		Body:           body,
		Kind:           KindText,
		CreatedAt:      time.Now(),
	}
}

func TestTimelineAppendIsIdempotent(t *testing.T) {
	tl := NewTimeline()
	tl.Reset("conv-1")

	msg := serverMessage("m1", "conv-1", "cust-1", "hello")

	assert.True(t, tl.Append(msg))
	assert.False(t, tl.Append(msg), "second delivery of the same id must be dropped")
	assert.False(t, tl.Append(serverMessage("m1", "conv-1", "cust-1", "hello")))

	assert.Equal(t, 1, tl.Len())
}

func TestTimelineAppendIgnoresOtherConversations(t *testing.T) {
	tl := NewTimeline()
	tl.Reset("conv-1")

	assert.False(t, tl.Append(serverMessage("m1", "conv-2", "cust-1", "hi")))
	assert.Equal(t, 0, tl.Len())
}

func TestTimelineReconcilesOptimisticEcho(t *testing.T) {
	tl := NewTimeline()
	tl.Reset("conv-1")

	now := time.Now()
	pending := &Message{
		ID:             strconv.FormatInt(now.UnixMilli(), 10),
		ConversationID: "conv-1",
		SenderID:       "vendor-1",
		SenderRole:     RoleVendor,
		Body:           "hello",
		Kind:           KindText,
		CreatedAt:      now,
	}
	tl.AppendPending(pending)
	require.Equal(t, 1, tl.Len())

	// The server echoes the vendor's own send back with its
	// authoritative id.
	echo := &Message{
		ID:             "srv-42",
		ConversationID: "conv-1",
		SenderID:       "vendor-1",
		SenderRole:     RoleVendor,
		Body:           "hello",
		Kind:           KindText,
		CreatedAt:      now.Add(200 * time.Millisecond),
	}
	assert.True(t, tl.Append(echo))

	require.Equal(t, 1, tl.Len(), "echo must merge into the pending entry, not duplicate it")
	got := tl.Messages()[0]
	assert.Equal(t, "srv-42", got.ID)
	assert.False(t, got.Pending)
}

func TestTimelineDoesNotReconcileDifferentContent(t *testing.T) {
	tl := NewTimeline()
	tl.Reset("conv-1")

	now := time.Now()
	tl.AppendPending(&Message{
		ID:             "tmp-1",
		ConversationID: "conv-1",
		SenderID:       "vendor-1",
		Body:           "first",
		CreatedAt:      now,
	})

	other := serverMessage("srv-1", "conv-1", "vendor-1", "second")
	assert.True(t, tl.Append(other))
	assert.Equal(t, 2, tl.Len())
}

func TestTimelineSeenIsBulkAndMonotonic(t *testing.T) {
	tl := NewTimeline()
	tl.Reset("conv-1")

	tl.Populate([]*Message{
		serverMessage("m1", "conv-1", "vendor-1", "one"),
		serverMessage("m2", "conv-1", "cust-1", "two"),
		serverMessage("m3", "conv-1", "vendor-1", "three"),
	})

	seenAt := time.Now()
	marked := tl.MarkSeen("vendor-1", seenAt)
	assert.Equal(t, 2, marked)

	for _, msg := range tl.Messages() {
		if msg.SenderID == "vendor-1" {
			assert.True(t, msg.Seen)
			require.NotNil(t, msg.SeenAt)
			assert.True(t, msg.SeenAt.Equal(seenAt))
		} else {
			assert.False(t, msg.Seen, "counterpart messages are not touched")
		}
	}

	// A message appended after the receipt stays unseen until the next
	// receipt arrives.
	tl.Append(serverMessage("m4", "conv-1", "vendor-1", "four"))
	for _, msg := range tl.Messages() {
		if msg.ID == "m4" {
			assert.False(t, msg.Seen)
		}
	}

	assert.Equal(t, 1, tl.MarkSeen("vendor-1", time.Now()))
}

func TestTimelineResetClears(t *testing.T) {
	tl := NewTimeline()
	tl.Reset("conv-1")
	tl.Populate([]*Message{serverMessage("m1", "conv-1", "cust-1", "hi")})

	tl.Reset("conv-2")
	assert.Equal(t, 0, tl.Len())
	assert.Equal(t, "conv-2", tl.ConversationID())
}
