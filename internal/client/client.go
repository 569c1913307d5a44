// Package client talks to a running relay. It is used by the interactive
// counselor CLI.
package client

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// DefaultBaseURL is where a locally started relay listens.
const DefaultBaseURL = "http://localhost:8000"

// Client calls the relay's HTTP endpoints.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithToken sends token as a bearer credential on guarded endpoints.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// New creates a client for the relay at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		// No overall timeout: a therapy session streams for as long as the
		// relay allows. Callers bound it with a context.
		http: &http.Client{Transport: &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			ResponseHeaderTimeout: 60 * time.Second,
		}},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Health is the /health payload.
type Health struct {
	Status             string `json:"status"`
	UpstreamConfigured bool   `json:"upstream_configured"`
}

// StatusError is returned when the relay answers with a non-success status.
type StatusError struct {
	StatusCode int
	Detail     string
}

func (e *StatusError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("relay returned %d", e.StatusCode)
	}
	return fmt.Sprintf("relay returned %d: %s", e.StatusCode, e.Detail)
}

// Health fetches the relay health.
func (c *Client) Health(ctx context.Context) (*Health, error) {
	var h Health
	if err := c.getJSON(ctx, "/health", &h); err != nil {
		return nil, err
	}
	return &h, nil
}

// Debug fetches the relay configuration snapshot as a generic document.
func (c *Client) Debug(ctx context.Context) (map[string]any, error) {
	var out map[string]any
	if err := c.getJSON(ctx, "/debug", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Chat sends code to the relay and copies the streamed reply to w as it
// arrives. The complete reply is returned as well.
func (c *Client) Chat(ctx context.Context, code string, w io.Writer) (string, error) {
	body, err := json.Marshal(map[string]string{"message": code})
	if err != nil {
		return "", errors.Wrap(err, "encoding chat request")
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/chat", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "calling relay")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", statusError(resp)
	}

	var reply strings.Builder
	reader := bufio.NewReader(resp.Body)
	buf := make([]byte, 4096)
	for {
		n, readErr := reader.Read(buf)
		if n > 0 {
			reply.Write(buf[:n])
			if w != nil {
				if _, err := w.Write(buf[:n]); err != nil {
					return reply.String(), errors.Wrap(err, "writing reply")
				}
			}
		}
		if readErr == io.EOF {
			return reply.String(), nil
		}
		if readErr != nil {
			return reply.String(), errors.Wrap(readErr, "reading reply")
		}
	}
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrapf(err, "calling relay %s", path)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return statusError(resp)
	}
	return errors.Wrapf(json.NewDecoder(resp.Body).Decode(out), "decoding %s", path)
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, errors.Wrap(err, "building request")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

func statusError(resp *http.Response) error {
	var payload struct {
		Detail string `json:"detail"`
	}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err := json.Unmarshal(data, &payload); err != nil {
		payload.Detail = strings.TrimSpace(string(data))
	}
	return &StatusError{StatusCode: resp.StatusCode, Detail: payload.Detail}
}
