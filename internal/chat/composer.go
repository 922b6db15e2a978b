// internal/chat/composer.go

package chat

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sellora/vendorchat/internal/uploader"
)

var (
	ErrNothingToSend        = errors.New("nothing to send")
	ErrConversationSwitched = errors.New("active conversation changed during send")
)

type composerOptions struct {
	maxFiles    int
	maxFileSize int64
	typingIdle  time.Duration
	progress    uploader.ProgressFunc
}

// Composer assembles the outgoing message: text input, staged files,
// the typing heartbeat, and the upload-then-send sequence.
type Composer struct {
	session  *Session
	uploader uploader.Service
	opts     composerOptions

	mu        sync.Mutex
	input     string
	staged    []uploader.File
	idleTimer *time.Timer
}

func newComposer(session *Session, svc uploader.Service, opts composerOptions) *Composer {
	return &Composer{
		session:  session,
		uploader: svc,
		opts:     opts,
	}
}

// SetInput records the input text. Every call counts as a keystroke:
// it emits the typing-start heartbeat and rearms the idle timer that
// eventually emits typing-stop.
func (c *Composer) SetInput(text string) {
	c.mu.Lock()
	c.input = text
	c.rearmIdleTimerLocked()
	c.mu.Unlock()

	c.session.emitTyping(true)
}

// Input returns the current input text.
func (c *Composer) Input() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.input
}

// StageFiles adds user-selected files to the staging area. Files over
// the size limit are rejected individually with a warning; the batch is
// capped at the per-send maximum.
func (c *Composer) StageFiles(files ...uploader.File) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, f := range files {
		if c.opts.maxFileSize > 0 && f.Size > c.opts.maxFileSize {
			c.session.notifier.Warn(fmt.Sprintf("%s exceeds the %d MB limit and was not attached",
				f.Name, c.opts.maxFileSize/(1024*1024)))
			continue
		}
		if len(c.staged) >= c.opts.maxFiles {
			c.session.notifier.Warn(fmt.Sprintf("at most %d files per message", c.opts.maxFiles))
			break
		}
		c.staged = append(c.staged, f)
	}
}

// Staged returns the staged files.
func (c *Composer) Staged() []uploader.File {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]uploader.File, len(c.staged))
	copy(out, c.staged)
	return out
}

// ClearStaged drops the staging area.
func (c *Composer) ClearStaged() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.staged = nil
}

// Send runs the send sequence: typing-stop, capture and clear the
// input, upload staged files one by one, echo the message locally, then
// emit the outbound event. The local echo happens before any server
// response so the UI feels instantaneous; the server's broadcast later
// reconciles with it in the timeline.
func (c *Composer) Send(ctx context.Context) (*Message, error) {
	active := c.session.store.Active()

	c.mu.Lock()
	text := strings.TrimSpace(c.input)
	if text == "" && len(c.staged) == 0 {
		c.mu.Unlock()
		return nil, ErrNothingToSend
	}
	if active == nil {
		c.mu.Unlock()
		return nil, ErrNoActiveConversation
	}

	c.stopIdleTimerLocked()
	c.input = ""
	files := c.staged
	c.staged = nil
	c.mu.Unlock()

	c.session.emitTyping(false)

	var attachments []Attachment
	if len(files) > 0 {
		results := uploader.UploadBatch(ctx, c.uploader, files, c.opts.progress,
			func(fileName string, err error) {
				uploadFailuresTotal.Inc()
				c.session.notifier.Warn(fmt.Sprintf("%s: %v", fileName, err))
			})
		for _, r := range results {
			uploadBytesTotal.Add(float64(r.Size))
			attachments = append(attachments, Attachment{
				URL:      r.URL,
				Kind:     AttachmentKind(r.Kind),
				FileName: r.FileName,
				Size:     r.Size,
				MIMEType: r.MIMEType,
			})
		}
	}

	// A message needs a body or at least one attachment. If every
	// upload failed and there is no text, the send stops here.
	if text == "" && len(attachments) == 0 {
		return nil, ErrNothingToSend
	}

	// The user may have switched conversations while the uploads ran.
	// A stale send must not land in the new conversation's timeline.
	if current := c.session.store.Active(); current == nil || current.ID != active.ID {
		return nil, ErrConversationSwitched
	}

	now := time.Now()
	msg := &Message{
		ID:             strconv.FormatInt(now.UnixMilli(), 10),
		ConversationID: active.ID,
		SenderID:       c.session.vendorID,
		SenderRole:     RoleVendor,
		Body:           text,
		Attachments:    attachments,
		Kind:           DeriveKind(text, attachments),
		CreatedAt:      now,
	}
	c.session.timeline.AppendPending(msg)
	messagesSentTotal.WithLabelValues(string(msg.Kind)).Inc()

	if len(attachments) > 0 {
		c.session.emit(EventSendMessageWithFile, SendMessageWithFilePayload{
			ConversationID: active.ID,
			SenderID:       c.session.vendorID,
			SenderType:     RoleVendor,
			Message:        text,
			Attachments:    attachments,
		})
	} else {
		c.session.emit(EventSendMessage, SendMessagePayload{
			ConversationID: active.ID,
			SenderID:       c.session.vendorID,
			SenderType:     RoleVendor,
			Message:        text,
		})
	}

	return msg, nil
}

func (c *Composer) rearmIdleTimerLocked() {
	if c.idleTimer != nil {
		c.idleTimer.Stop()
	}
	c.idleTimer = time.AfterFunc(c.opts.typingIdle, func() {
		c.session.emitTyping(false)
	})
}

func (c *Composer) stopIdleTimerLocked() {
	if c.idleTimer != nil {
		c.idleTimer.Stop()
		c.idleTimer = nil
	}
}

func (c *Composer) stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopIdleTimerLocked()
}
