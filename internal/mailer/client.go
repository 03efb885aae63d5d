package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Client sends emails through an external mail relay. Delivery is fire and
// forget: callers log failures and never propagate them.
type Client struct {
	client  *http.Client
	baseURL string
}

// New creates new Client instance. An empty baseURL disables sending.
func New(baseURL string) *Client {
	return &Client{
		client: &http.Client{
			Timeout: 5 * time.Second,
		},
		baseURL: baseURL,
	}
}

type sendRequest struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Send posts one email to the relay
// POST /api/send
func (c *Client) Send(ctx context.Context, to, subject, body string) error {
	if c.baseURL == "" {
		return nil
	}

	url, err := url.JoinPath(c.baseURL, "api", "send")
	if err != nil {
		return err
	}

	data, err := json.Marshal(sendRequest{To: to, Subject: subject, Body: body})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if resp != nil {
		defer resp.Body.Close()
	}
	if err != nil {
		return err
	}

	if resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("mail relay returned status %d", resp.StatusCode)
	}

	return nil
}
