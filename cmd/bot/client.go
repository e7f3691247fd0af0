package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/wricardo/hangmen/game/engine"
)

// APIError is a non-200 response from the game server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}

// Client talks to the Hangmen polling API.
type Client struct {
	baseURL string
	client  *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *Client) post(ctx context.Context, path string, body interface{}) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: read response: %w", path, err)
	}

	if resp.StatusCode != http.StatusOK {
		var e struct {
			Error string `json:"error"`
		}
		msg := strings.TrimSpace(string(data))
		if json.Unmarshal(data, &e) == nil && e.Error != "" {
			msg = e.Error
		}
		return nil, &APIError{Status: resp.StatusCode, Message: msg}
	}
	return data, nil
}

// NewSession creates a session and returns its id. An empty rules name uses
// the server default.
func (c *Client) NewSession(ctx context.Context, rules string) (string, error) {
	var body interface{}
	if rules != "" {
		body = map[string]string{"rules": rules}
	}
	data, err := c.post(ctx, "/new-session", body)
	return string(data), err
}

func (c *Client) Join(ctx context.Context, sid, name string) (string, error) {
	data, err := c.post(ctx, "/join-session", map[string]string{"sid": sid, "name": name})
	return string(data), err
}

func (c *Client) State(ctx context.Context, sid string) (*engine.SessionState, error) {
	data, err := c.post(ctx, "/get-state", map[string]string{"sid": sid})
	if err != nil {
		return nil, err
	}
	var state engine.SessionState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("parse state: %w", err)
	}
	return &state, nil
}

func (c *Client) SetWord(ctx context.Context, sid, pid, word string) error {
	_, err := c.post(ctx, "/set-word", map[string]string{"sid": sid, "pid": pid, "word": word})
	return err
}

func (c *Client) GuessLetter(ctx context.Context, sid, letter string) error {
	_, err := c.post(ctx, "/guess-letter", map[string]string{"sid": sid, "letter": letter})
	return err
}

func (c *Client) Exit(ctx context.Context, sid, pid string) error {
	_, err := c.post(ctx, "/exit-session", map[string]string{"sid": sid, "pid": pid})
	return err
}
