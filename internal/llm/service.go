package llm

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"codecounselor/internal/config"
	"codecounselor/internal/metrics"
	"codecounselor/internal/prompt"

	"github.com/apex/log"
)

const (
	// SystemInstruction is sent ahead of every therapy prompt.
	SystemInstruction = "You are a compassionate code therapist."
	// Temperature used for therapy sessions.
	Temperature float32 = 0.8
	// MaxTokens caps the length of a therapy session.
	MaxTokens = 1000

	// ProbePrompt is sent by Probe.
	ProbePrompt = "Say 'Hello from Dr. CodeBot!' in exactly those words."
	// ProbeMaxTokens caps the probe answer.
	ProbeMaxTokens = 20

	// EmptyResponseMessage is emitted when the upstream stream carried no text.
	EmptyResponseMessage = "🤔 Dr. CodeBot received your code but the response seems to be empty. This might be a configuration issue."
)

// Service relays therapy sessions between clients and the completion provider.
type Service struct {
	completer Completer
	template  *prompt.Template
	settings  Settings
	timeout   time.Duration
}

// NewService creates a new relay service. completer must not be nil.
func NewService(completer Completer, template *prompt.Template, settings Settings) *Service {
	return &Service{
		completer: completer,
		template:  template,
		settings:  settings,
		timeout:   config.UpstreamTimeout,
	}
}

// WithTimeout returns a copy of s using d as the upstream bound.
func (s *Service) WithTimeout(d time.Duration) *Service {
	cp := *s
	cp.timeout = d
	return &cp
}

// Settings returns the non-secret upstream configuration.
func (s *Service) Settings() Settings {
	return s.settings
}

func (s *Service) therapyRequest(code string) ChatRequest {
	return ChatRequest{
		Messages: []Message{
			{Role: RoleSystem, Content: SystemInstruction},
			{Role: RoleUser, Content: s.template.Render(code)},
		},
		Temperature: Temperature,
		MaxTokens:   MaxTokens,
	}
}

// Stream starts a therapy session for code and returns the text to forward,
// in upstream order. Upstream failures are rendered into the stream as
// diagnostic lines. The channel is closed when the session ends or ctx is
// cancelled; a cancelled ctx stops production without further output.
func (s *Service) Stream(ctx context.Context, code string) <-chan string {
	out := make(chan string)
	metrics.StreamsStarted.Inc()

	go func() {
		defer close(out)
		s.relay(ctx, code, func(text string) bool {
			select {
			case out <- text:
				return true
			case <-ctx.Done():
				return false
			}
		})
	}()

	return out
}

func (s *Service) relay(ctx context.Context, code string, emit func(string) bool) {
	start := time.Now()
	upstreamCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	stream, err := s.completer.OpenStream(upstreamCtx, s.therapyRequest(code))
	if err != nil {
		s.fail(ctx, err, emit)
		return
	}
	defer stream.Close()

	chunks := 0
	for {
		text, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			s.fail(ctx, err, emit)
			return
		}
		if text == "" {
			continue
		}
		chunks++
		metrics.ChunksForwarded.Inc()
		if !emit(text) {
			s.abandon(chunks)
			return
		}
	}

	if chunks == 0 {
		log.Warn("No chunks received from Azure OpenAI")
		metrics.EmptyResponses.Inc()
		if !emit(EmptyResponseMessage) {
			s.abandon(chunks)
		}
		return
	}

	log.WithFields(log.Fields{
		"chunks":   chunks,
		"duration": time.Since(start).String(),
	}).Info("chat.stream.complete")
}

func (s *Service) fail(ctx context.Context, err error, emit func(string) bool) {
	if ctx.Err() != nil {
		// The client is gone; nobody is left to read a diagnostic.
		s.abandon(0)
		return
	}

	d := Classify(err)
	log.WithFields(log.Fields{
		"error_type": d.ErrorType,
		"category":   string(d.Category),
		"diagnosis":  strings.TrimSpace(d.Heading(s.settings)),
	}).WithError(err).Error("Error generating response")
	metrics.UpstreamErrors.WithLabelValues(string(d.Category)).Inc()

	for _, line := range d.Lines(s.settings) {
		if !emit(line) {
			return
		}
	}
}

func (s *Service) abandon(chunks int) {
	metrics.ClientDisconnects.Inc()
	log.WithField("chunks", chunks).Info("chat.stream.client_gone")
}

// Probe performs one non-streaming completion to check the upstream.
func (s *Service) Probe(ctx context.Context) (*Completion, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	log.Info("Testing simple (non-streaming) request to Azure OpenAI")
	return s.completer.Complete(ctx, ChatRequest{
		Messages:  []Message{{Role: RoleUser, Content: ProbePrompt}},
		MaxTokens: ProbeMaxTokens,
	})
}
