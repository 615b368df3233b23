package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/glancehq/assistant-platform/internal/model"
	"github.com/glancehq/assistant-platform/pkg/logger"
)

// MailClient talks to the mail service. The base URL comes from the
// request session, so the client itself holds no per-user state.
type MailClient struct {
	httpClient
}

// NewMailClient creates a mail client.
func NewMailClient(log *logger.Logger) *MailClient {
	return &MailClient{httpClient: newHTTPClient(log)}
}

// Message is one mail message as the service returns it.
type Message struct {
	ID      string       `json:"id"`
	From    string       `json:"from"`
	To      []string     `json:"to"`
	Subject string       `json:"subject"`
	Snippet string       `json:"snippet"`
	Body    string       `json:"body,omitempty"`
	Date    string       `json:"date"`
	State   MessageState `json:"state"`
}

// Flags decodes the state bitset into named booleans for LLM consumption.
func (m Message) Flags() map[string]bool {
	return map[string]bool{
		"unread":        m.State.Unread(),
		"starred":       m.State.Starred(),
		"draft":         m.State.Draft(),
		"hasAttachment": m.State.HasAttachment(),
		"tracked":       m.State.Tracked(),
	}
}

type messagesResponse struct {
	Messages []Message `json:"messages"`
	Total    int       `json:"total"`
}

// FetchMessagesParams filters a message listing.
type FetchMessagesParams struct {
	UnreadOnly bool
	FilterDate string // YYYY-MM-DD
	Limit      int
}

func (c *MailClient) base(ctx context.Context) (string, error) {
	session, ok := model.SessionFromContext(ctx)
	if !ok {
		return "", ErrNoSession
	}
	if session.BaseURL == "" {
		return "", fmt.Errorf("session carries no mail base URL")
	}
	return session.BaseURL, nil
}

// FetchMessages lists inbox messages.
func (c *MailClient) FetchMessages(ctx context.Context, params FetchMessagesParams) ([]Message, error) {
	base, err := c.base(ctx)
	if err != nil {
		return nil, err
	}

	q := url.Values{}
	if params.UnreadOnly {
		q.Set("unreadOnly", "true")
	}
	if params.FilterDate != "" {
		q.Set("date", params.FilterDate)
	}
	if params.Limit > 0 {
		q.Set("limit", strconv.Itoa(params.Limit))
	}

	endpoint := joinURL(base, "/api/mail/messages")
	if len(q) > 0 {
		endpoint += "?" + q.Encode()
	}

	var resp messagesResponse
	if err := c.doJSON(ctx, http.MethodGet, endpoint, nil, &resp, requestOptions{}); err != nil {
		return nil, fmt.Errorf("failed to fetch messages: %w", err)
	}
	return resp.Messages, nil
}

// SearchMessages runs a full-text search over the mailbox.
func (c *MailClient) SearchMessages(ctx context.Context, query string, limit int) ([]Message, error) {
	base, err := c.base(ctx)
	if err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("q", query)
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}

	endpoint := joinURL(base, "/api/mail/search") + "?" + q.Encode()

	var resp messagesResponse
	if err := c.doJSON(ctx, http.MethodGet, endpoint, nil, &resp, requestOptions{}); err != nil {
		return nil, fmt.Errorf("failed to search messages: %w", err)
	}
	return resp.Messages, nil
}

// GetMessage fetches one message with its full body.
func (c *MailClient) GetMessage(ctx context.Context, id string) (*Message, error) {
	base, err := c.base(ctx)
	if err != nil {
		return nil, err
	}

	endpoint := joinURL(base, "/api/mail/messages/"+url.PathEscape(id))

	var msg Message
	if err := c.doJSON(ctx, http.MethodGet, endpoint, nil, &msg, requestOptions{}); err != nil {
		return nil, fmt.Errorf("failed to get message %s: %w", id, err)
	}
	return &msg, nil
}

// SendMessageParams describes an outgoing message.
type SendMessageParams struct {
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Body    string   `json:"body"`
	ReplyTo string   `json:"replyTo,omitempty"` // message id being replied to
}

// SendMessage sends mail.
func (c *MailClient) SendMessage(ctx context.Context, params SendMessageParams) (string, error) {
	base, err := c.base(ctx)
	if err != nil {
		return "", err
	}

	endpoint := joinURL(base, "/api/mail/messages/send")

	var resp struct {
		ID string `json:"id"`
	}
	if err := c.doJSON(ctx, http.MethodPost, endpoint, params, &resp, requestOptions{}); err != nil {
		return "", fmt.Errorf("failed to send message: %w", err)
	}
	return resp.ID, nil
}

// UnreadCount reports the unread total. Feeds the user-context activity
// snapshot; callers tolerate failure.
func (c *MailClient) UnreadCount(ctx context.Context) (int, error) {
	base, err := c.base(ctx)
	if err != nil {
		return 0, err
	}

	endpoint := joinURL(base, "/api/mail/messages/unread/count")

	var resp struct {
		Count int `json:"count"`
	}
	if err := c.doJSON(ctx, http.MethodGet, endpoint, nil, &resp, requestOptions{}); err != nil {
		return 0, err
	}
	return resp.Count, nil
}
