package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"testing/iotest"

	"codecounselor/internal/client"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type relayRecorder struct {
	mu       sync.Mutex
	messages []string
}

func (rr *relayRecorder) sent() []string {
	rr.mu.Lock()
	defer rr.mu.Unlock()
	return append([]string(nil), rr.messages...)
}

func newRelay(t *testing.T) (*httptest.Server, *relayRecorder) {
	t.Helper()
	rr := &relayRecorder{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/health":
			w.Write([]byte(`{"status":"healthy","upstream_configured":true}`))
		case "/chat":
			var body struct {
				Message string `json:"message"`
			}
			json.NewDecoder(r.Body).Decode(&body)
			rr.mu.Lock()
			rr.messages = append(rr.messages, body.Message)
			rr.mu.Unlock()
			w.Write([]byte("There, there."))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, rr
}

func newREPL(url string, in io.Reader, out io.Writer) *repl {
	return &repl{
		client:  client.New(url),
		history: client.NewHistory(),
		in:      bufio.NewReader(in),
		out:     out,
	}
}

func TestREPL(t *testing.T) {
	srv, rr := newRelay(t)
	input := strings.Join([]string{
		":health",
		"func main() {",
		"}",
		".",
		":example",
		":history",
		":clear",
		":quit",
	}, "\n")
	var out strings.Builder

	newREPL(srv.URL, strings.NewReader(input), &out).run(context.Background())

	text := out.String()
	assert.Contains(t, text, "Status: healthy, upstream configured: true")
	assert.Contains(t, text, "There, there.")
	assert.Contains(t, text, "code:  func main() { …")
	assert.Contains(t, text, "code:  # Paste your troubled code here... …")
	assert.Contains(t, text, "Forgot 2 session(s).")
	assert.Contains(t, text, "Session over.")
	assert.Equal(t, []string{"func main() {\n}", exampleSnippet}, rr.sent())
}

func TestSnippetEndsAtEOF(t *testing.T) {
	r := &repl{in: bufio.NewReader(strings.NewReader("x := 1\r\ny := 2"))}
	code, eof, err := r.readSnippet()
	require.NoError(t, err)
	assert.True(t, eof)
	assert.Equal(t, "x := 1\ny := 2", code)
}

func TestSnippetKeepsLongLines(t *testing.T) {
	srv, rr := newRelay(t)
	long := strings.Repeat("x", 70<<10)
	input := "a := 1\n" + long + "\nb := 2\n.\n:quit\n"
	var out strings.Builder

	newREPL(srv.URL, strings.NewReader(input), &out).run(context.Background())

	sent := rr.sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "a := 1\n"+long+"\nb := 2", sent[0])
}

func TestReadErrorIsReportedNotSent(t *testing.T) {
	srv, rr := newRelay(t)
	in := io.MultiReader(strings.NewReader("a := 1\n"), iotest.ErrReader(errors.New("stdin closed badly")))
	var out strings.Builder

	newREPL(srv.URL, in, &out).run(context.Background())

	assert.Contains(t, out.String(), "Could not read input: stdin closed badly")
	assert.Empty(t, rr.sent())
}
