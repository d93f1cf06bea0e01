// Package loop provides the cooperative single-threaded executor every piece of
// chat state runs on. Work posted from other goroutines (network completions,
// timer fires) is queued and executed one task at a time on the loop goroutine.
package loop

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
)

// Loop schedules work onto the single state-owning goroutine.
type Loop interface {
	// Post queues fn to run on the loop. Safe to call from any goroutine.
	Post(fn func())
	// AfterFunc runs fn on the loop once d has elapsed.
	AfterFunc(d time.Duration, fn func()) Timer
}

// Timer is a pending AfterFunc callback.
type Timer interface {
	// Stop prevents the callback from running. It returns false if the
	// callback already ran or was already stopped.
	Stop() bool
}

// Runner is the production Loop backed by an unbounded FIFO queue.
type Runner struct {
	mu      sync.Mutex
	queue   []func()
	wake    chan struct{}
	stopped bool
}

// New creates a Runner. Call Run to start executing tasks.
func New() *Runner {
	return &Runner{wake: make(chan struct{}, 1)}
}

// Post implements Loop. Tasks posted after Run returned are dropped.
func (r *Runner) Post(fn func()) {
	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return
	}
	r.queue = append(r.queue, fn)
	r.mu.Unlock()

	select {
	case r.wake <- struct{}{}:
	default:
	}
}

// AfterFunc implements Loop.
func (r *Runner) AfterFunc(d time.Duration, fn func()) Timer {
	t := &runnerTimer{}
	t.timer = time.AfterFunc(d, func() {
		r.Post(func() {
			if t.fired.CompareAndSwap(false, true) {
				fn()
			}
		})
	})
	return t
}

// Run executes queued tasks until ctx is cancelled. A panicking task is logged
// and does not stop the loop.
func (r *Runner) Run(ctx context.Context) error {
	defer func() {
		r.mu.Lock()
		r.stopped = true
		r.queue = nil
		r.mu.Unlock()
	}()

	for {
		for {
			fn, ok := r.next()
			if !ok {
				break
			}
			r.exec(fn)
			if ctx.Err() != nil {
				return ctx.Err()
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-r.wake:
		}
	}
}

func (r *Runner) next() (func(), bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.queue) == 0 {
		return nil, false
	}
	fn := r.queue[0]
	r.queue[0] = nil
	r.queue = r.queue[1:]
	return fn, true
}

func (r *Runner) exec(fn func()) {
	defer func() {
		if p := recover(); p != nil {
			log.Error().Interface("panic", p).Msg("loop task panicked")
		}
	}()
	fn()
}

type runnerTimer struct {
	timer *time.Timer
	fired atomic.Bool
}

func (t *runnerTimer) Stop() bool {
	t.timer.Stop()
	return t.fired.CompareAndSwap(false, true)
}
