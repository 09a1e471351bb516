package httpd

import (
	"context"
	"errors"
	"sync"

	"heatmon/pkg/crash"
)

// ErrStopped is returned by Do once the loop has been stopped
var ErrStopped = errors.New("httpd: device loop stopped")

// Loop is the single goroutine on which all renderer invocations, scan
// completions and settings merges run. Work is queued in order; Post never
// blocks, so tasks running on the loop may post follow-up work.
type Loop struct {
	mu      sync.Mutex
	queue   []func()
	wake    chan struct{}
	stop    chan struct{}
	stopped chan struct{}
	once    sync.Once
}

// NewLoop creates a loop; call Start to run it
func NewLoop() *Loop {
	return &Loop{
		wake:    make(chan struct{}, 1),
		stop:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
}

// Start runs the loop in its own goroutine
func (l *Loop) Start() {
	crash.SafeGo("device-loop", l.run)
}

func (l *Loop) run() {
	defer close(l.stopped)
	for {
		select {
		case <-l.stop:
			return
		case <-l.wake:
		}

		for {
			l.mu.Lock()
			if len(l.queue) == 0 {
				l.mu.Unlock()
				break
			}
			task := l.queue[0]
			l.queue[0] = nil
			l.queue = l.queue[1:]
			l.mu.Unlock()

			task()

			select {
			case <-l.stop:
				return
			default:
			}
		}
	}
}

// Post queues f without waiting
func (l *Loop) Post(f func()) {
	l.mu.Lock()
	l.queue = append(l.queue, f)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Do runs f on the loop and waits for it. When ctx ends first, f still runs
// later but Do returns ctx.Err().
func (l *Loop) Do(ctx context.Context, f func()) error {
	select {
	case <-l.stopped:
		return ErrStopped
	default:
	}

	done := make(chan struct{})
	l.Post(func() {
		defer close(done)
		f()
	})

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-l.stopped:
		select {
		case <-done:
			return nil
		default:
			return ErrStopped
		}
	}
}

// Stop ends the loop after the running task; queued work is dropped
func (l *Loop) Stop() {
	l.once.Do(func() { close(l.stop) })
}

// Stopped is closed when the loop goroutine has returned
func (l *Loop) Stopped() <-chan struct{} {
	return l.stopped
}
