package messenger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/pharmatch/chatbot/internal/metrics"
)

// Sender delivers messages to the chat platform. Reply consumes a
// single-use reply token tied to one inbound event; Push addresses an
// arbitrary platform user and is used for administrative sends.
type Sender interface {
	Reply(ctx context.Context, replyToken string, messages ...Message) error
	Push(ctx context.Context, to string, messages ...Message) error
}

// Client sends messages through the platform's messaging API.
type Client struct {
	baseURL      string
	channelToken string
	httpClient   *http.Client
}

type replyRequest struct {
	ReplyToken string    `json:"replyToken"`
	Messages   []Message `json:"messages"`
}

type pushRequest struct {
	To       string    `json:"to"`
	Messages []Message `json:"messages"`
}

func New(baseURL, channelToken string, timeout time.Duration) *Client {
	return &Client{
		baseURL:      baseURL,
		channelToken: channelToken,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Reply sends messages in response to one inbound event. The reply token
// is single-use; a second call with the same token fails at the platform.
func (c *Client) Reply(ctx context.Context, replyToken string, messages ...Message) error {
	err := c.send(ctx, "/v2/bot/message/reply", replyRequest{
		ReplyToken: replyToken,
		Messages:   messages,
	})
	if err != nil {
		metrics.RepliesTotal.WithLabelValues("error").Inc()
		return err
	}
	metrics.RepliesTotal.WithLabelValues("ok").Inc()
	return nil
}

// Push sends messages to a platform user outside of any reply context.
func (c *Client) Push(ctx context.Context, to string, messages ...Message) error {
	return c.send(ctx, "/v2/bot/message/push", pushRequest{
		To:       to,
		Messages: messages,
	})
}

func (c *Client) send(ctx context.Context, path string, payload interface{}) error {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal message payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("create message request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.channelToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("messaging API returned status %d", resp.StatusCode)
	}

	return nil
}
