package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const defaultResendBaseURL = "https://api.resend.com"

// Message is one transactional email
type Message struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

// Sender delivers transactional email
type Sender interface {
	Send(ctx context.Context, msg *Message) error
}

// ResendClient sends email through the Resend REST API
type ResendClient struct {
	logger  *zap.Logger
	apiKey  string
	baseURL string
	client  *http.Client
}

var _ Sender = (*ResendClient)(nil)

// ResendOption configures a ResendClient
type ResendOption func(*ResendClient)

// WithBaseURL overrides the API base URL
func WithBaseURL(url string) ResendOption {
	return func(c *ResendClient) {
		c.baseURL = url
	}
}

// WithHTTPClient overrides the HTTP client
func WithHTTPClient(client *http.Client) ResendOption {
	return func(c *ResendClient) {
		c.client = client
	}
}

// NewResendClient creates a Resend API client
func NewResendClient(logger *zap.Logger, apiKey string, opts ...ResendOption) *ResendClient {
	c := &ResendClient{
		logger:  logger.Named("notify.resend"),
		apiKey:  apiKey,
		baseURL: defaultResendBaseURL,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Send implements Sender.Send
func (c *ResendClient) Send(ctx context.Context, msg *Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/emails", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		c.logger.Warn("resend rejected email",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", payload))
		return fmt.Errorf("resend returned status %d", resp.StatusCode)
	}
	return nil
}
