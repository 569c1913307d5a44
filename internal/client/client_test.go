package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRelay(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"status": "healthy", "upstream_configured": true})
	})
	mux.HandleFunc("/debug", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"server": map[string]any{"port": "8000"}})
	})
	mux.HandleFunc("/chat", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "Bearer expired" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"detail":"Token expired"}`))
			return
		}
		var body struct {
			Message string `json:"message"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || strings.TrimSpace(body.Message) == "" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"detail":"Please provide a code snippet for therapy."}`))
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		flusher := w.(http.Flusher)
		for _, chunk := range []string{"I hear ", "your ", "code."} {
			w.Write([]byte(chunk))
			flusher.Flush()
		}
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestHealthAndDebug(t *testing.T) {
	c := New(newRelay(t).URL + "/")
	ctx := context.Background()

	h, err := c.Health(ctx)
	require.NoError(t, err)
	assert.Equal(t, "healthy", h.Status)
	assert.True(t, h.UpstreamConfigured)

	d, err := c.Debug(ctx)
	require.NoError(t, err)
	assert.Contains(t, d, "server")
}

func TestChatStreamsToWriter(t *testing.T) {
	c := New(newRelay(t).URL)
	var out strings.Builder

	reply, err := c.Chat(context.Background(), "def f(): pass", &out)

	require.NoError(t, err)
	assert.Equal(t, "I hear your code.", reply)
	assert.Equal(t, reply, out.String())
}

func TestChatStatusErrors(t *testing.T) {
	srv := newRelay(t)

	tests := []struct {
		name       string
		client     *Client
		code       string
		wantStatus int
		wantDetail string
	}{
		{name: "blank", client: New(srv.URL), code: "  ", wantStatus: http.StatusBadRequest, wantDetail: "Please provide a code snippet for therapy."},
		{name: "expired token", client: New(srv.URL, WithToken("expired")), code: "x", wantStatus: http.StatusUnauthorized, wantDetail: "Token expired"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.client.Chat(context.Background(), tt.code, nil)

			var statusErr *StatusError
			require.ErrorAs(t, err, &statusErr)
			assert.Equal(t, tt.wantStatus, statusErr.StatusCode)
			assert.Equal(t, tt.wantDetail, statusErr.Detail)
		})
	}
}

func TestChatUnreachable(t *testing.T) {
	c := New("http://127.0.0.1:1")
	c.http.Timeout = time.Second
	_, err := c.Chat(context.Background(), "x", nil)
	assert.Error(t, err)
}

func TestHistory(t *testing.T) {
	h := NewHistory()
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	h.now = func() time.Time { return fixed }

	h.Add("a := 1", "fine")
	h.Add("b := 2", "also fine")

	entries := h.List()
	require.Len(t, entries, 2)
	assert.Equal(t, "a := 1", entries[0].Code)
	assert.Equal(t, fixed, entries[1].Timestamp)

	entries[0].Code = "mutated"
	assert.Equal(t, "a := 1", h.List()[0].Code)

	assert.Equal(t, 2, h.Clear())
	assert.Empty(t, h.List())
}
