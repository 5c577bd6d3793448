package translation

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
)

type stubBackend struct {
	id        BackendID
	translate func(text string) (string, error)
	unsafe    bool

	mu     sync.Mutex
	inputs []string
	opts   []TranslateOptions
	calls  atomic.Int32
}

func (b *stubBackend) Translate(_ context.Context, text string, opts TranslateOptions) (string, error) {
	b.calls.Add(1)
	b.mu.Lock()
	b.inputs = append(b.inputs, text)
	b.opts = append(b.opts, opts)
	b.mu.Unlock()

	if b.translate != nil {
		return b.translate(text)
	}
	return fmt.Sprintf("[%s] %s", b.id, text), nil
}

func (b *stubBackend) ConcurrencySafe() bool {
	return !b.unsafe
}

func (b *stubBackend) receivedInputs() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.inputs...)
}

// stubLoader hands out one stubBackend per BackendID and counts acquisitions.
type stubLoader struct {
	mu       sync.Mutex
	backends map[BackendID]*stubBackend
	failures map[BackendID]int // remaining failures per id
	gate     chan struct{}     // when set, Acquire blocks until closed

	acquisitions atomic.Int32
	order        []BackendID
}

func newStubLoader() *stubLoader {
	return &stubLoader{
		backends: map[BackendID]*stubBackend{},
		failures: map[BackendID]int{},
	}
}

func (l *stubLoader) backend(id BackendID) *stubBackend {
	l.mu.Lock()
	defer l.mu.Unlock()
	backend, ok := l.backends[id]
	if !ok {
		backend = &stubBackend{id: id}
		l.backends[id] = backend
	}
	return backend
}

func (l *stubLoader) Acquire(ctx context.Context, spec BackendSpec) (Backend, error) {
	l.acquisitions.Add(1)
	if l.gate != nil {
		select {
		case <-l.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	l.mu.Lock()
	l.order = append(l.order, spec.ID)
	if remaining := l.failures[spec.ID]; remaining > 0 {
		l.failures[spec.ID] = remaining - 1
		l.mu.Unlock()
		return nil, fmt.Errorf("out of memory loading %s", spec.Model)
	}
	l.mu.Unlock()

	return l.backend(spec.ID), nil
}

var (
	elEn = BackendID{Source: "el", Target: "en"}
	enEl = BackendID{Source: "en", Target: "el"}
	zhEn = BackendID{Source: "zh", Target: "en"}
	enZh = BackendID{Source: "en", Target: "zh"}
)
