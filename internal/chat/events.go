// internal/chat/events.go
// Realtime event names and payloads. The names are the wire contract
// with the marketplace backend.

package chat

import (
	"time"
)

// Outbound events
const (
	EventJoinConversation    = "joinConversation"
	EventStartTyping         = "startTyping"
	EventStopTyping          = "stopTyping"
	EventSendMessage         = "sendMessage"
	EventSendMessageWithFile = "sendMessageWithFile"
	EventMessageSeen         = "messageSeen"
	EventCheckOnline         = "checkOnline"
)

// Inbound events
const (
	EventReceiveMessage = "receiveMessage"
	EventUserTyping     = "userTyping"
	EventMessagesSeen   = "messagesSeen"
	EventUserOnline     = "userOnline"
	EventUserOffline    = "userOffline"
)

// JoinPayload subscribes the connection to a conversation room.
type JoinPayload struct {
	ConversationID string `json:"conversationId" validate:"required"`
}

// TypingPayload is the typing heartbeat, sent for both startTyping and
// stopTyping.
type TypingPayload struct {
	ConversationID string `json:"conversationId" validate:"required"`
	SenderID       string `json:"senderId" validate:"required"`
	SenderType     Role   `json:"senderType" validate:"required,oneof=vendor customer"`
}

// SendMessagePayload is a plain text send.
type SendMessagePayload struct {
	ConversationID string `json:"conversationId" validate:"required"`
	SenderID       string `json:"senderId" validate:"required"`
	SenderType     Role   `json:"senderType" validate:"required,oneof=vendor customer"`
	Message        string `json:"message" validate:"required"`
}

// SendMessageWithFilePayload is a send carrying at least one attachment.
type SendMessageWithFilePayload struct {
	ConversationID string       `json:"conversationId" validate:"required"`
	SenderID       string       `json:"senderId" validate:"required"`
	SenderType     Role         `json:"senderType" validate:"required,oneof=vendor customer"`
	Message        string       `json:"message"`
	Attachments    []Attachment `json:"attachments" validate:"required,min=1"`
}

// MessageSeenPayload is the bulk read receipt for a conversation.
type MessageSeenPayload struct {
	ConversationID string `json:"conversationId" validate:"required"`
	ViewerID       string `json:"viewerId" validate:"required"`
	ViewerType     Role   `json:"viewerType" validate:"required,oneof=vendor customer"`
}

// CheckOnlinePayload is a one-shot presence query answered via ack.
type CheckOnlinePayload struct {
	UserID string `json:"userId" validate:"required"`
}

// CheckOnlineReply is the ack payload of a checkOnline query.
type CheckOnlineReply struct {
	UserID string `json:"userId"`
	Online bool   `json:"online"`
}

// UserTypingPayload reports the counterpart's typing state.
type UserTypingPayload struct {
	ConversationID string `json:"conversationId"`
	UserType       Role   `json:"userType"`
	IsTyping       bool   `json:"isTyping"`
}

// MessagesSeenPayload reports that the counterpart marked this vendor's
// messages as seen.
type MessagesSeenPayload struct {
	ConversationID string    `json:"conversationId"`
	SeenAt         time.Time `json:"seenAt"`
}

// PresencePayload reports a presence change for one user.
type PresencePayload struct {
	UserID string `json:"userId"`
}
