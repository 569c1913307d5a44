package llm

import (
	"context"
	"io"
	"sync"
)

// fakeStream replays chunks and then returns err, or io.EOF when err is nil.
type fakeStream struct {
	mu     sync.Mutex
	chunks []string
	err    error
	next   int
	closed bool
}

func (f *fakeStream) Recv() (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.next < len(f.chunks) {
		c := f.chunks[f.next]
		f.next++
		return c, nil
	}
	if f.err != nil {
		return "", f.err
	}
	return "", io.EOF
}

func (f *fakeStream) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeStream) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

// endlessStream yields the same chunk until its context is done.
type endlessStream struct {
	ctx    context.Context
	mu     sync.Mutex
	closed bool
}

func (e *endlessStream) Recv() (string, error) {
	if err := e.ctx.Err(); err != nil {
		return "", err
	}
	return "tick ", nil
}

func (e *endlessStream) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	return nil
}

func (e *endlessStream) isClosed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.closed
}

// stalledStream blocks until its context is done.
type stalledStream struct {
	ctx context.Context
}

func (s *stalledStream) Recv() (string, error) {
	<-s.ctx.Done()
	return "", s.ctx.Err()
}

func (s *stalledStream) Close() error { return nil }

type fakeCompleter struct {
	mu          sync.Mutex
	open        func(ctx context.Context) (ChatStream, error)
	completion  *Completion
	completeErr error
	requests    []ChatRequest
}

func (f *fakeCompleter) OpenStream(ctx context.Context, req ChatRequest) (ChatStream, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()
	return f.open(ctx)
}

func (f *fakeCompleter) Complete(_ context.Context, req ChatRequest) (*Completion, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()
	return f.completion, f.completeErr
}

func (f *fakeCompleter) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func streaming(s ChatStream) *fakeCompleter {
	return &fakeCompleter{open: func(context.Context) (ChatStream, error) { return s, nil }}
}

func failing(err error) *fakeCompleter {
	return &fakeCompleter{open: func(context.Context) (ChatStream, error) { return nil, err }}
}
