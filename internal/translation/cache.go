package translation

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"
	"golang.org/x/sync/singleflight"

	"horse.fit/mtroute/internal/globaltime"
	"horse.fit/mtroute/internal/logging"
)

// BackendCache acquires each backend at most once per process and hands the
// same handle to every caller afterwards. Failed acquisitions are not cached.
type BackendCache struct {
	loader Loader
	routes *Registry
	logger zerolog.Logger

	mu      sync.RWMutex
	handles map[BackendID]Backend
	group   singleflight.Group
}

func NewBackendCache(loader Loader, routes *Registry, logger zerolog.Logger) *BackendCache {
	return &BackendCache{
		loader:  loader,
		routes:  routes,
		logger:  logging.Component(logger, "backend_cache"),
		handles: make(map[BackendID]Backend),
	}
}

// GetOrAcquire returns the handle for id, acquiring it on first use.
//
// Concurrent first calls for the same id share one acquisition. Calls for
// different ids never wait on each other. ctx bounds how long this caller
// waits; the shared acquisition itself keeps running for the other waiters
// and is bounded by the loader's own timeouts.
func (c *BackendCache) GetOrAcquire(ctx context.Context, id BackendID) (Backend, error) {
	if c == nil || c.loader == nil {
		return nil, &BackendError{Kind: ErrBackendLoad, Backend: id, Err: fmt.Errorf("backend cache is not initialized")}
	}
	if handle, ok := c.lookup(id); ok {
		return handle, nil
	}

	model, ok := c.routes.Model(id)
	if !ok {
		return nil, &BackendError{Kind: ErrBackendLoad, Backend: id, Err: fmt.Errorf("no backend registered for %s", id)}
	}

	acquireCtx := context.WithoutCancel(ctx)
	results := c.group.DoChan(id.String(), func() (any, error) {
		if handle, ok := c.lookup(id); ok {
			return handle, nil
		}
		return c.acquire(acquireCtx, BackendSpec{ID: id, Model: model})
	})

	select {
	case <-ctx.Done():
		return nil, &BackendError{Kind: ErrBackendLoad, Backend: id, Model: model, Err: ctx.Err()}
	case res := <-results:
		if res.Err != nil {
			return nil, &BackendError{Kind: ErrBackendLoad, Backend: id, Model: model, Err: res.Err}
		}
		return res.Val.(Backend), nil
	}
}

// Loaded lists the ids of every acquired backend.
func (c *BackendCache) Loaded() []string {
	if c == nil {
		return nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	labels := make([]string, 0, len(c.handles))
	for id := range c.handles {
		labels = append(labels, id.String())
	}
	sort.Strings(labels)
	return labels
}

func (c *BackendCache) lookup(id BackendID) (Backend, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	handle, ok := c.handles[id]
	return handle, ok
}

func (c *BackendCache) acquire(ctx context.Context, spec BackendSpec) (Backend, error) {
	started := globaltime.Now()
	handle, err := c.loader.Acquire(ctx, spec)
	if err == nil && handle == nil {
		err = fmt.Errorf("loader returned no backend")
	}
	if err != nil {
		c.logger.Warn().
			Err(err).
			Str("backend", spec.ID.String()).
			Str("model", spec.Model).
			Dur("elapsed", globaltime.Since(started)).
			Msg("backend acquisition failed")
		return nil, err
	}

	serialized := false
	if reporter, ok := handle.(ConcurrencyReporter); ok && !reporter.ConcurrencySafe() {
		handle = &serialBackend{Backend: handle, sem: semaphore.NewWeighted(1)}
		serialized = true
	}

	c.mu.Lock()
	c.handles[spec.ID] = handle
	c.mu.Unlock()

	c.logger.Info().
		Str("backend", spec.ID.String()).
		Str("model", spec.Model).
		Bool("serialized", serialized).
		Dur("elapsed", globaltime.Since(started)).
		Msg("backend acquired")
	return handle, nil
}

// serialBackend admits one Translate call at a time for a backend that is
// not safe for concurrent invocation.
type serialBackend struct {
	Backend
	sem *semaphore.Weighted
}

func (b *serialBackend) Translate(ctx context.Context, text string, opts TranslateOptions) (string, error) {
	if err := b.sem.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer b.sem.Release(1)
	return b.Backend.Translate(ctx, text, opts)
}

func (b *serialBackend) ConcurrencySafe() bool {
	return true
}
