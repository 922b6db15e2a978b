// internal/chat/session.go

package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/sellora/vendorchat/internal/common/utils"
	"github.com/sellora/vendorchat/internal/transport"
	"github.com/sellora/vendorchat/internal/uploader"
)

var (
	ErrNoActiveConversation = errors.New("no active conversation")
	ErrConversationUnknown  = errors.New("conversation not in the loaded list")
)

// presenceCheckTimeout bounds each one-shot checkOnline query issued
// while seeding presence after the conversation list loads.
const presenceCheckTimeout = 5 * time.Second

// Backend is the slice of the marketplace REST API the chat core
// consumes. The backend itself is an opaque service.
type Backend interface {
	Conversations(ctx context.Context, vendorID string) ([]*Conversation, error)
	Messages(ctx context.Context, conversationID string) ([]*Message, error)
}

// PresenceChecker is the optional REST fallback for the one-shot
// presence query, used when the realtime ack fails.
type PresenceChecker interface {
	OnlineStatus(ctx context.Context, userID string) (bool, error)
}

// Notifier surfaces transient user-visible warnings. Failures are
// handled where they occur; nothing propagates to an error boundary.
type Notifier interface {
	Warn(message string)
}

type logNotifier struct{}

func (logNotifier) Warn(message string) {
	log.Printf("chat: warning: %s", message)
}

// Options configures a Session.
type Options struct {
	VendorID string
	Conn     transport.Conn
	Backend  Backend
	Uploader uploader.Service

	// Optional
	Notifier          Notifier
	Progress          uploader.ProgressFunc
	MaxAttachments    int           // defaults to 5
	MaxAttachmentSize int64         // defaults to 10 MB
	TypingIdle        time.Duration // defaults to 2 s
	TypingExpiry      time.Duration // defaults to 6 s
}

// subscription is one attached transport handler.
type subscription struct {
	event string
	id    int
}

// Session ties the conversation store, the active timeline, the
// presence tracker, and the composer to one shared transport
// connection. All state is serialized behind one mutex; transport
// callbacks, timers, and caller goroutines take turns.
type Session struct {
	vendorID string
	conn     transport.Conn
	backend  Backend
	notifier Notifier

	store    *Store
	timeline *Timeline
	presence *PresenceTracker
	composer *Composer

	mu               sync.Mutex
	conversationSubs []subscription
	globalSubs       []subscription
	closed           bool
}

// NewSession wires a session from its collaborators. The connection is
// injected, not global: the embedding application opens it at session
// start and closes it at session end.
func NewSession(opts Options) (*Session, error) {
	if opts.VendorID == "" {
		return nil, fmt.Errorf("vendor id is required")
	}
	if opts.Conn == nil {
		return nil, fmt.Errorf("transport connection is required")
	}
	if opts.Backend == nil {
		return nil, fmt.Errorf("backend client is required")
	}
	if opts.Uploader == nil {
		return nil, fmt.Errorf("uploader is required")
	}
	if opts.Notifier == nil {
		opts.Notifier = logNotifier{}
	}
	if opts.MaxAttachments <= 0 {
		opts.MaxAttachments = 5
	}
	if opts.MaxAttachmentSize <= 0 {
		opts.MaxAttachmentSize = 10 * 1024 * 1024
	}
	if opts.TypingIdle <= 0 {
		opts.TypingIdle = 2 * time.Second
	}
	if opts.TypingExpiry <= 0 {
		opts.TypingExpiry = 6 * time.Second
	}

	s := &Session{
		vendorID: opts.VendorID,
		conn:     opts.Conn,
		backend:  opts.Backend,
		notifier: opts.Notifier,
		store:    NewStore(),
		timeline: NewTimeline(),
		presence: NewPresenceTracker(opts.TypingExpiry),
	}

	s.composer = newComposer(s, opts.Uploader, composerOptions{
		maxFiles:    opts.MaxAttachments,
		maxFileSize: opts.MaxAttachmentSize,
		typingIdle:  opts.TypingIdle,
		progress:    opts.Progress,
	})

	s.conn.NotifyState(s.onConnState)

	return s, nil
}

// Store exposes the conversation store.
func (s *Session) Store() *Store { return s.store }

// Timeline exposes the active conversation's timeline.
func (s *Session) Timeline() *Timeline { return s.timeline }

// Presence exposes the presence and typing tracker.
func (s *Session) Presence() *PresenceTracker { return s.presence }

// Composer exposes the outgoing-message composer.
func (s *Session) Composer() *Composer { return s.composer }

// VendorID returns the vendor this session belongs to.
func (s *Session) VendorID() string { return s.vendorID }

// Start loads the vendor's conversation list, seeds counterpart
// presence, and activates the restored or first conversation.
func (s *Session) Start(ctx context.Context) error {
	s.attachGlobalHandlers()

	conversations, err := s.backend.Conversations(ctx, s.vendorID)
	if err != nil {
		return fmt.Errorf("failed to load conversations: %w", err)
	}
	conversationsLoaded.Set(float64(len(conversations)))

	active := s.store.Load(conversations)

	// Point-in-time presence check for every counterpart.
	go s.seedPresence(conversations)

	if active == nil {
		log.Printf("chat: no conversations for vendor %s", s.vendorID)
		return nil
	}

	return s.activate(ctx, active)
}

// Select makes another conversation active.
func (s *Session) Select(ctx context.Context, conversationID string) error {
	c := s.store.Get(conversationID)
	if c == nil {
		return ErrConversationUnknown
	}
	return s.activate(ctx, c)
}

// activate runs the conversation-switch sequence: detach the previous
// conversation's handlers, clear the typing flag, reset and reload the
// timeline, join the room, and signal seen for the counterpart's
// history.
func (s *Session) activate(ctx context.Context, c *Conversation) error {
	s.detachConversationHandlers()
	s.presence.ClearTyping()
	counterpartTyping.Set(0)

	s.store.Select(c)
	s.store.ResetUnread(c.ID)
	s.timeline.Reset(c.ID)

	s.emit(EventJoinConversation, JoinPayload{ConversationID: c.ID})

	history, err := s.backend.Messages(ctx, c.ID)
	if err != nil {
		// Leave the timeline empty; no retry.
		log.Printf("chat: failed to load history for conversation %s: %v", c.ID, err)
	} else {
		s.timeline.Populate(history)
		s.emit(EventMessageSeen, MessageSeenPayload{
			ConversationID: c.ID,
			ViewerID:       s.vendorID,
			ViewerType:     RoleVendor,
		})
	}

	s.attachConversationHandlers()
	return nil
}

func (s *Session) attachGlobalHandlers() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.globalSubs) > 0 {
		return
	}
	s.globalSubs = []subscription{
		{EventUserOnline, s.conn.On(EventUserOnline, s.onUserOnline)},
		{EventUserOffline, s.conn.On(EventUserOffline, s.onUserOffline)},
	}
}

// attachConversationHandlers subscribes the handlers scoped to the
// active conversation. They are detached on every switch so a previous
// conversation's events cannot leak into the new one.
func (s *Session) attachConversationHandlers() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.conversationSubs = []subscription{
		{EventReceiveMessage, s.conn.On(EventReceiveMessage, s.onReceiveMessage)},
		{EventUserTyping, s.conn.On(EventUserTyping, s.onUserTyping)},
		{EventMessagesSeen, s.conn.On(EventMessagesSeen, s.onMessagesSeen)},
	}
}

func (s *Session) detachConversationHandlers() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, sub := range s.conversationSubs {
		s.conn.Off(sub.event, sub.id)
	}
	s.conversationSubs = nil
}

// seedPresence issues one checkOnline query per counterpart after the
// conversation list loads.
func (s *Session) seedPresence(conversations []*Conversation) {
	for _, c := range conversations {
		counterpart := c.Counterpart(s.vendorID)

		ctx, cancel := context.WithTimeout(context.Background(), presenceCheckTimeout)
		data, err := s.conn.EmitWithAck(ctx, EventCheckOnline, CheckOnlinePayload{UserID: counterpart.ID})
		cancel()
		if err != nil {
			s.checkPresenceREST(counterpart.ID)
			continue
		}

		var reply CheckOnlineReply
		if err := json.Unmarshal(data, &reply); err != nil {
			log.Printf("chat: bad presence reply for %s: %v", counterpart.ID, err)
			continue
		}
		s.presence.SetOnline(counterpart.ID, reply.Online)
	}
}

// checkPresenceREST falls back to the backend's one-shot presence
// endpoint when the realtime query did not answer.
func (s *Session) checkPresenceREST(userID string) {
	pc, ok := s.backend.(PresenceChecker)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), presenceCheckTimeout)
	defer cancel()

	online, err := pc.OnlineStatus(ctx, userID)
	if err != nil {
		log.Printf("chat: presence check for %s failed: %v", userID, err)
		return
	}
	s.presence.SetOnline(userID, online)
}

// Inbound event handlers. They run on the transport's read goroutine,
// in socket-delivery order.

func (s *Session) onReceiveMessage(data json.RawMessage) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		log.Printf("chat: error unmarshaling message: %v", err)
		return
	}

	messagesReceivedTotal.Inc()

	preview := msg.Body
	if preview == "" && len(msg.Attachments) > 0 {
		preview = "[attachment]"
	}
	s.store.RefreshSummary(msg.ConversationID, preview)

	active := s.store.Active()
	if active == nil || active.ID != msg.ConversationID {
		return
	}

	if !s.timeline.Append(&msg) {
		duplicateBroadcastsTotal.Inc()
	}
}

func (s *Session) onUserTyping(data json.RawMessage) {
	var payload UserTypingPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		log.Printf("chat: error unmarshaling typing event: %v", err)
		return
	}

	active := s.store.Active()
	if active == nil || active.ID != payload.ConversationID {
		return
	}
	if payload.UserType == RoleVendor {
		// Our own heartbeat echoed back.
		return
	}

	s.presence.SetTyping(payload.IsTyping)
	if payload.IsTyping {
		counterpartTyping.Set(1)
	} else {
		counterpartTyping.Set(0)
	}
}

func (s *Session) onMessagesSeen(data json.RawMessage) {
	var payload MessagesSeenPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		log.Printf("chat: error unmarshaling seen event: %v", err)
		return
	}

	active := s.store.Active()
	if active == nil || active.ID != payload.ConversationID {
		return
	}

	seenAt := payload.SeenAt
	if seenAt.IsZero() {
		seenAt = time.Now()
	}
	s.timeline.MarkSeen(s.vendorID, seenAt)
}

func (s *Session) onUserOnline(data json.RawMessage) {
	var payload PresencePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return
	}
	s.presence.SetOnline(payload.UserID, true)
}

func (s *Session) onUserOffline(data json.RawMessage) {
	var payload PresencePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return
	}
	s.presence.SetOnline(payload.UserID, false)
}

func (s *Session) onConnState(state transport.State) {
	log.Printf("chat: connection %s", state)

	switch state {
	case transport.StateReconnecting:
		reconnectsTotal.Inc()
	case transport.StateClosed:
		s.mu.Lock()
		closed := s.closed
		s.mu.Unlock()
		if !closed {
			s.notifier.Warn("realtime connection lost; messages will not be delivered")
		}
	}
}

// emit validates and sends one event, logging failures where they
// occur. The optimistic UI is never rolled back on emit failure.
func (s *Session) emit(event string, payload interface{}) {
	if err := utils.ValidateStruct(payload); err != nil {
		log.Printf("chat: invalid %s payload: %v", event, err)
		return
	}
	if err := s.conn.Emit(event, payload); err != nil {
		log.Printf("chat: failed to emit %s: %v", event, err)
	}
}

// emitTyping sends the typing heartbeat for the active conversation.
func (s *Session) emitTyping(start bool) {
	active := s.store.Active()
	if active == nil {
		return
	}

	event := EventStopTyping
	if start {
		event = EventStartTyping
	}
	s.emit(event, TypingPayload{
		ConversationID: active.ID,
		SenderID:       s.vendorID,
		SenderType:     RoleVendor,
	})
}

// Close detaches handlers and stops timers. The transport connection
// itself belongs to the caller.
func (s *Session) Close() {
	s.mu.Lock()
	s.closed = true
	globalSubs := s.globalSubs
	s.globalSubs = nil
	s.mu.Unlock()

	s.detachConversationHandlers()
	for _, sub := range globalSubs {
		s.conn.Off(sub.event, sub.id)
	}

	s.composer.stop()
	s.presence.ClearTyping()
}
