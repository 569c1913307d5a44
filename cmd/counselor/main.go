// Command counselor is an interactive client for a running CodeCounselor
// relay. Paste a snippet, finish it with a line containing only ".", and the
// reply is streamed back as it is written.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"codecounselor/internal/client"
	"codecounselor/pkg/utils"
)

const banner = `🛋️  Welcome to CodeCounselor - Your AI Code Therapist
Paste your code and end it with a line containing only "." (or Ctrl-D).
Commands: :health  :debug  :example  :history  :clear  :quit`

// exampleSnippet is sent by :example for a first session.
const exampleSnippet = `# Paste your troubled code here...
def my_problematic_function():
    # This function doesn't work as expected
    pass
`

func main() {
	url := flag.String("url", utils.GetEnvWithDefault("COUNSELOR_URL", client.DefaultBaseURL), "Relay base URL")
	file := flag.String("file", "", "Send the contents of this file for therapy and exit")
	token := flag.String("token", os.Getenv("COUNSELOR_TOKEN"), "Bearer token for a relay with auth enabled")
	flag.Parse()

	var opts []client.Option
	if *token != "" {
		opts = append(opts, client.WithToken(*token))
	}
	c := client.New(*url, opts...)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *file != "" {
		code, err := os.ReadFile(*file)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading %s: %v\n", *file, err)
			os.Exit(1)
		}
		if _, err := c.Chat(ctx, string(code), os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "\nError: %v\n", err)
			os.Exit(1)
		}
		fmt.Println()
		return
	}

	fmt.Println(banner)
	r := &repl{client: c, history: client.NewHistory(), in: bufio.NewReader(os.Stdin), out: os.Stdout}
	r.run(ctx)
}

type repl struct {
	client  *client.Client
	history *client.History
	in      *bufio.Reader
	out     io.Writer
}

func (r *repl) run(ctx context.Context) {
	for {
		fmt.Fprint(r.out, "\n🧑‍💻 > ")
		code, eof, err := r.readSnippet()
		if err != nil {
			fmt.Fprintf(r.out, "\n❌ Could not read input: %v\n", err)
			return
		}

		switch strings.TrimSpace(code) {
		case "":
			if eof {
				fmt.Fprintln(r.out, "\n👋 Session over. Be kind to your code.")
				return
			}
			continue
		case ":quit", ":q", ":exit":
			fmt.Fprintln(r.out, "👋 Session over. Be kind to your code.")
			return
		case ":health":
			r.health(ctx)
		case ":debug":
			r.debug(ctx)
		case ":history":
			r.showHistory()
		case ":example":
			fmt.Fprint(r.out, exampleSnippet)
			r.chat(ctx, exampleSnippet)
		case ":clear":
			fmt.Fprintf(r.out, "🧹 Forgot %d session(s).\n", r.history.Clear())
		default:
			r.chat(ctx, code)
		}

		if eof || ctx.Err() != nil {
			return
		}
	}
}

// readSnippet collects lines until a lone "." or EOF. A command on the first
// line is returned immediately. Lines may be arbitrarily long.
func (r *repl) readSnippet() (string, bool, error) {
	var lines []string
	for {
		line, err := r.in.ReadString('\n')
		if err != nil && err != io.EOF {
			return "", false, err
		}
		eof := err == io.EOF
		if eof && line == "" {
			return strings.Join(lines, "\n"), true, nil
		}

		line = strings.TrimRight(line, "\r\n")
		if len(lines) == 0 && strings.HasPrefix(strings.TrimSpace(line), ":") {
			return line, eof, nil
		}
		if strings.TrimSpace(line) == "." {
			return strings.Join(lines, "\n"), eof, nil
		}
		lines = append(lines, line)
		if eof {
			return strings.Join(lines, "\n"), true, nil
		}
	}
}

func (r *repl) chat(ctx context.Context, code string) {
	fmt.Fprintln(r.out, "\n🩺 Dr. CodeBot:")
	reply, err := r.client.Chat(ctx, code, r.out)
	fmt.Fprintln(r.out)
	if err != nil {
		fmt.Fprintf(r.out, "❌ %v\n", err)
		return
	}
	r.history.Add(code, reply)
}

func (r *repl) health(ctx context.Context) {
	h, err := r.client.Health(ctx)
	if err != nil {
		fmt.Fprintf(r.out, "❌ %v\n", err)
		return
	}
	fmt.Fprintf(r.out, "Status: %s, upstream configured: %v\n", h.Status, h.UpstreamConfigured)
}

func (r *repl) debug(ctx context.Context) {
	d, err := r.client.Debug(ctx)
	if err != nil {
		fmt.Fprintf(r.out, "❌ %v\n", err)
		return
	}
	out, _ := json.MarshalIndent(d, "", "  ")
	fmt.Fprintln(r.out, string(out))
}

func (r *repl) showHistory() {
	entries := r.history.List()
	if len(entries) == 0 {
		fmt.Fprintln(r.out, "No sessions yet.")
		return
	}
	for i, e := range entries {
		fmt.Fprintf(r.out, "#%d %s\n", i+1, e.Timestamp.Format("15:04:05"))
		fmt.Fprintf(r.out, "  code:  %s\n", firstLine(e.Code))
		fmt.Fprintf(r.out, "  reply: %s\n", firstLine(e.Response))
	}
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i] + " …"
	}
	return s
}
