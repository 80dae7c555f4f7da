package loader

import (
	"context"
	"errors"
	"sync"
	"time"

	"agrimarket/apperrors"
	"agrimarket/logger"
)

// ErrClosed is returned for fetches that settle after their pipeline closed.
var ErrClosed = errors.New("pipeline closed")

// Snapshot is a copy of a pipeline's state at one instant.
type Snapshot[T any] struct {
	Data     T
	Err      error
	Loading  bool
	LoadedAt time.Time
}

// Pipeline holds the state of one independently loaded resource. A failed
// fetch keeps the previous data and only fills the error slot. Concurrent
// fetches race and the last one to settle wins.
type Pipeline[T any] struct {
	name string
	log  *logger.Entry

	mu       sync.Mutex
	data     T
	err      error
	inFlight int
	loadedAt time.Time
	closed   bool
}

func NewPipeline[T any](name string, initial T, log *logger.Log) *Pipeline[T] {
	return &Pipeline[T]{
		name: name,
		data: initial,
		log:  log.WithComponent("loader").WithField("pipeline", name),
	}
}

func (p *Pipeline[T]) Name() string {
	return p.name
}

// Run fetches and stores the result. The returned error is the fetch error
// wrapped as a FetchFailure, or ErrClosed / the context error when the
// result was discarded.
func (p *Pipeline[T]) Run(ctx context.Context, fetch func(context.Context) (T, error)) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrClosed
	}
	p.inFlight++
	p.mu.Unlock()

	start := time.Now()
	data, err := fetch(ctx)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.inFlight--

	if p.closed {
		p.log.Debug("discarding result for closed pipeline")
		return ErrClosed
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		p.log.Debug("discarding result for cancelled fetch")
		return ctxErr
	}
	if err != nil {
		p.err = apperrors.FetchFailure(err, p.name)
		p.log.WithError(err).Warn("⚠️ fetch failed, keeping previous data")
		return p.err
	}

	p.data = data
	p.err = nil
	p.loadedAt = time.Now()
	p.log.WithField("duration_ms", time.Since(start).Milliseconds()).Debug("pipeline loaded")
	return nil
}

func (p *Pipeline[T]) Snapshot() Snapshot[T] {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Snapshot[T]{Data: p.data, Err: p.err, Loading: p.inFlight > 0, LoadedAt: p.loadedAt}
}

// Update rewrites the held data in place of a refetch, for changes the
// caller already knows about.
func (p *Pipeline[T]) Update(fn func(T) T) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.data = fn(p.data)
}

// Close makes every later arrival a no-op.
func (p *Pipeline[T]) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
}
