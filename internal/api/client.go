// internal/api/client.go
// REST client for the marketplace backend. The backend is an opaque
// service; this client only knows the three calls the chat core needs.

package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sellora/vendorchat/internal/auth"
	"github.com/sellora/vendorchat/internal/chat"
)

// Client talks to the marketplace REST API on behalf of one vendor
// session.
type Client struct {
	baseURL string
	session *auth.Session
	http    *http.Client
}

func NewClient(baseURL string, session *auth.Session, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		session: session,
		http:    &http.Client{Timeout: timeout},
	}
}

// envelope is the backend's standard response wrapper.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// Conversations fetches the vendor's conversation list.
func (c *Client) Conversations(ctx context.Context, vendorID string) ([]*chat.Conversation, error) {
	path := fmt.Sprintf("/api/v1/chat/conversations?vendorId=%s", url.QueryEscape(vendorID))

	var conversations []*chat.Conversation
	if err := c.get(ctx, path, &conversations); err != nil {
		return nil, fmt.Errorf("failed to fetch conversations: %w", err)
	}
	return conversations, nil
}

// Messages fetches the full ordered history of one conversation.
func (c *Client) Messages(ctx context.Context, conversationID string) ([]*chat.Message, error) {
	path := fmt.Sprintf("/api/v1/chat/conversations/%s/messages", url.PathEscape(conversationID))

	var messages []*chat.Message
	if err := c.get(ctx, path, &messages); err != nil {
		return nil, fmt.Errorf("failed to fetch messages: %w", err)
	}
	return messages, nil
}

// OnlineStatus is the one-shot presence check, used when the realtime
// query is unavailable.
func (c *Client) OnlineStatus(ctx context.Context, userID string) (bool, error) {
	path := fmt.Sprintf("/api/v1/chat/online-status?userId=%s", url.QueryEscape(userID))

	var reply struct {
		Online bool `json:"online"`
	}
	if err := c.get(ctx, path, &reply); err != nil {
		return false, fmt.Errorf("failed to check online status: %w", err)
	}
	return reply.Online, nil
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header = c.session.Header()
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("backend returned status %d", resp.StatusCode)
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	if !env.Success {
		return fmt.Errorf("backend error: %s", env.Error)
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("failed to decode response data: %w", err)
		}
	}
	return nil
}
