// Package platform talks to the social platform's HTTP API: keyword search
// for the firehose collector, and like/reply actions for the responder.
package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"mediamail/internal/firehose"
)

type Client struct {
	baseURL string
	client  *http.Client
	token   string
}

func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
		token:   token,
	}
}

// Search fetches recent posts matching a tracked keyword.
// API: GET /api/statuses/search.json?track={track}
func (c *Client) Search(ctx context.Context, track string) ([]firehose.RawMessage, error) {
	endpoint := fmt.Sprintf("%s/api/statuses/search.json", c.baseURL)
	q := url.Values{"track": {track}}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	c.authorize(req)
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("platform: status %d", resp.StatusCode)
	}
	var raw []firehose.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// Like marks a post as liked.
// API: POST /api/statuses/{id}/like
func (c *Client) Like(ctx context.Context, id string) error {
	endpoint := fmt.Sprintf("%s/api/statuses/%s/like", c.baseURL, url.PathEscape(id))
	return c.post(ctx, endpoint, nil)
}

// Reply posts a textual reply to a post.
// API: POST /api/statuses/{id}/reply
func (c *Client) Reply(ctx context.Context, id, text string) error {
	endpoint := fmt.Sprintf("%s/api/statuses/%s/reply", c.baseURL, url.PathEscape(id))
	body, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return err
	}
	return c.post(ctx, endpoint, body)
}

func (c *Client) post(ctx context.Context, endpoint string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.authorize(req)
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("platform: status %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) authorize(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}
