package enrich

import (
	"context"
	"sync"
)

// Pending is a disposable future. Its result is read through Result or
// Wait and is never written anywhere else. Discard cancels the work and
// drops whatever it produces.
type Pending[T any] struct {
	done   chan struct{}
	cancel context.CancelFunc

	mu        sync.Mutex
	result    T
	discarded bool
}

// Start runs fn in a goroutine with a cancellable child of ctx.
func Start[T any](ctx context.Context, fn func(context.Context) T) *Pending[T] {
	ctx, cancel := context.WithCancel(ctx)
	p := &Pending[T]{done: make(chan struct{}), cancel: cancel}
	go func() {
		defer close(p.done)
		defer cancel()
		r := fn(ctx)
		p.mu.Lock()
		if !p.discarded {
			p.result = r
		}
		p.mu.Unlock()
	}()
	return p
}

// Done is closed when the work has finished.
func (p *Pending[T]) Done() <-chan struct{} {
	return p.done
}

// Result returns the value without blocking. ok is false while the work is
// still running or after Discard.
func (p *Pending[T]) Result() (v T, ok bool) {
	select {
	case <-p.done:
	default:
		return v, false
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.discarded {
		return v, false
	}
	return p.result, true
}

// Wait blocks until the work finishes or ctx ends.
func (p *Pending[T]) Wait(ctx context.Context) (v T, ok bool) {
	select {
	case <-p.done:
		return p.Result()
	case <-ctx.Done():
		return v, false
	}
}

// Discard cancels the work and forgets its result. It is safe to call more
// than once.
func (p *Pending[T]) Discard() {
	p.mu.Lock()
	p.discarded = true
	var zero T
	p.result = zero
	p.mu.Unlock()
	p.cancel()
}
