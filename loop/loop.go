// Package loop serializes work on a single goroutine. Everything touching
// observers, marshallers and documents while a viewport changes runs as a loop
// task.
package loop

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// ErrClosed is returned by Post once Run has exited.
var ErrClosed = errors.New("loop is closed")

const defaultQueue = 64

// Loop runs posted tasks strictly in order. Tasks deferred while a task is
// running execute right after it, before the next posted one.
type Loop struct {
	tasks chan func()
	done  chan struct{}
	once  sync.Once
	log   *zap.Logger

	running  atomic.Bool
	deferred []func() // loop goroutine only
	executed atomic.Int64
}

func New(log *zap.Logger) *Loop {
	if log == nil {
		log = zap.NewNop()
	}
	return &Loop{
		tasks: make(chan func(), defaultQueue),
		done:  make(chan struct{}),
		log:   log.Named("loop"),
	}
}

// Post queues fn. It is safe for concurrent use and blocks when the queue is
// full.
func (l *Loop) Post(fn func()) error {
	if fn == nil {
		return nil
	}
	select {
	case <-l.done:
		return ErrClosed
	default:
	}
	select {
	case l.tasks <- fn:
		return nil
	case <-l.done:
		return ErrClosed
	}
}

// Defer schedules fn to run after the current task. It must only be called
// from within a task.
func (l *Loop) Defer(fn func()) {
	if fn != nil {
		l.deferred = append(l.deferred, fn)
	}
}

// Executed returns number of tasks run so far, deferred ones included.
func (l *Loop) Executed() int64 {
	return l.executed.Load()
}

// Run executes tasks until ctx is cancelled. Tasks already queued when ctx
// is cancelled are dropped.
func (l *Loop) Run(ctx context.Context) error {
	if !l.running.CompareAndSwap(false, true) {
		return errors.New("loop is already running")
	}
	defer l.once.Do(func() { close(l.done) })

	l.log.Debug("Loop started")
	for {
		select {
		case <-ctx.Done():
			l.log.Debug("Loop stopped", zap.Int64("executed", l.executed.Load()), zap.Int("dropped", len(l.tasks)))
			return ctx.Err()
		case fn := <-l.tasks:
			l.exec(fn)
		}
	}
}

func (l *Loop) exec(fn func()) {
	l.run(fn)
	// deferred tasks may defer more
	for len(l.deferred) > 0 {
		next := l.deferred[0]
		l.deferred = l.deferred[1:]
		l.run(next)
	}
	l.deferred = nil
}

func (l *Loop) run(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.log.Error("Task panicked", zap.Any("panic", r), zap.Stack("stack"))
		}
	}()
	l.executed.Add(1)
	fn()
}
