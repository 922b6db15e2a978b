// internal/chat/models.go

package chat

import (
	"time"
)

// Role identifies which side of a conversation a participant is on.
type Role string

const (
	RoleVendor   Role = "vendor"
	RoleCustomer Role = "customer"
)

// MessageKind classifies a message by its content.
type MessageKind string

const (
	KindText  MessageKind = "text"
	KindFile  MessageKind = "file"
	KindMixed MessageKind = "mixed"
)

// AttachmentKind is the coarse media classification derived from the
// file's MIME top-level type.
type AttachmentKind string

const (
	AttachmentImage    AttachmentKind = "image"
	AttachmentAudio    AttachmentKind = "audio"
	AttachmentVideo    AttachmentKind = "video"
	AttachmentDocument AttachmentKind = "document"
)

// Participant is one party of a conversation.
type Participant struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url,omitempty"`
}

// Conversation is a persistent thread between the vendor and one
// counterpart customer. Fetched from the backend at session start and
// never mutated locally except for the summary fields.
type Conversation struct {
	ID                 string      `json:"id"`
	Vendor             Participant `json:"vendor"`
	Customer           Participant `json:"customer"`
	LastMessagePreview string      `json:"last_message_preview,omitempty"`
	UnreadCount        int         `json:"unread_count,omitempty"`
	CreatedAt          time.Time   `json:"created_at"`
}

// Attachment is an uploaded file attached to a message. Created only
// after a successful upload and immutable thereafter.
type Attachment struct {
	URL      string         `json:"url"`
	Kind     AttachmentKind `json:"kind"`
	FileName string         `json:"file_name"`
	Size     int64          `json:"size"`
	MIMEType string         `json:"mime_type"`
}

// Message is one entry of a conversation timeline. The ID is either
// server-assigned or, for optimistic entries awaiting the server echo,
// a locally generated temporary id.
type Message struct {
	ID             string       `json:"id"`
	ConversationID string       `json:"conversation_id"`
	SenderID       string       `json:"sender_id"`
	SenderRole     Role         `json:"sender_type"`
	Body           string       `json:"message,omitempty"`
	Attachments    []Attachment `json:"attachments,omitempty"`
	Kind           MessageKind  `json:"kind"`
	CreatedAt      time.Time    `json:"created_at"`
	Seen           bool         `json:"seen"`
	SeenAt         *time.Time   `json:"seen_at,omitempty"`

	// Pending marks a locally echoed message that has not yet been
	// confirmed by the server broadcast.
	Pending bool `json:"-"`
}

// DeriveKind returns the message kind for the given content.
func DeriveKind(body string, attachments []Attachment) MessageKind {
	switch {
	case len(attachments) > 0 && body != "":
		return KindMixed
	case len(attachments) > 0:
		return KindFile
	default:
		return KindText
	}
}

// Counterpart returns the participant on the other side of the
// conversation from the given user.
func (c *Conversation) Counterpart(userID string) Participant {
	if c.Vendor.ID == userID {
		return c.Customer
	}
	return c.Vendor
}
