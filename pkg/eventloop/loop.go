package eventloop

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Loop runs queued tasks one at a time on a single goroutine, the way a
// browser delivers UI events and timer callbacks. Everything that touches the
// element tree goes through the loop so no further locking is needed.
type Loop struct {
	log *slog.Logger

	mu     sync.Mutex
	queue  []func()
	closed bool

	wake chan struct{}
	done chan struct{}
	once sync.Once
}

// Option configures a Loop.
type Option func(*Loop)

// WithLogger sets the logger used to report recovered task panics.
func WithLogger(log *slog.Logger) Option {
	return func(l *Loop) {
		if log != nil {
			l.log = log
		}
	}
}

// New constructs a Loop. Call Run to start processing tasks.
func New(options ...Option) *Loop {
	l := &Loop{
		log:  slog.Default(),
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
	for _, opt := range options {
		if opt != nil {
			opt(l)
		}
	}
	return l
}

// Run processes tasks until ctx is cancelled or Close is called. Tasks still
// queued at that point are dropped.
func (l *Loop) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			l.Close()
			return ctx.Err()
		case <-l.done:
			return nil
		case <-l.wake:
			for {
				task, ok := l.next()
				if !ok {
					break
				}
				l.execute(task)
			}
		}
	}
}

// Post queues fn. It returns ErrClosed once the loop has stopped.
func (l *Loop) Post(fn func()) error {
	if fn == nil {
		return nil
	}
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return ErrClosed
	}
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
	return nil
}

// Do queues fn and waits for it to finish.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	if err := l.Post(func() {
		defer close(finished)
		fn()
	}); err != nil {
		return err
	}
	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-l.done:
		return ErrClosed
	}
}

// AfterFunc queues fn on the loop once d has elapsed. The timer is stopped
// when ctx is cancelled, and fn never runs after Stop returns.
func (l *Loop) AfterFunc(ctx context.Context, d time.Duration, fn func()) Timer {
	t := &loopTimer{}
	t.timer = time.AfterFunc(d, func() {
		_ = l.Post(func() {
			if t.stopped.Load() || ctx.Err() != nil {
				return
			}
			t.fired.Store(true)
			fn()
		})
	})
	release := context.AfterFunc(ctx, func() { t.Stop() })
	t.mu.Lock()
	t.release = release
	t.mu.Unlock()
	return t
}

// Close stops the loop. It is safe to call more than once.
func (l *Loop) Close() {
	l.once.Do(func() {
		l.mu.Lock()
		l.closed = true
		l.queue = nil
		l.mu.Unlock()
		close(l.done)
	})
}

// Done is closed when the loop stops.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

func (l *Loop) next() (func(), bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.queue) == 0 {
		return nil, false
	}
	task := l.queue[0]
	l.queue[0] = nil
	l.queue = l.queue[1:]
	return task, true
}

func (l *Loop) execute(task func()) {
	defer func() {
		if r := recover(); r != nil {
			l.log.Error("eventloop: task panicked", slog.String("panic", fmt.Sprint(r)))
		}
	}()
	task()
}

// Timer is a pending deferred callback.
type Timer interface {
	// Stop prevents the callback from running. It reports false when the
	// callback already ran or the timer was already stopped.
	Stop() bool
}

type loopTimer struct {
	timer *time.Timer

	mu      sync.Mutex
	release func() bool

	stopped atomic.Bool
	fired   atomic.Bool
}

func (t *loopTimer) Stop() bool {
	if t.fired.Load() {
		return false
	}
	if !t.stopped.CompareAndSwap(false, true) {
		return false
	}
	t.timer.Stop()
	t.mu.Lock()
	release := t.release
	t.mu.Unlock()
	if release != nil {
		release()
	}
	return true
}
