// SPDX-License-Identifier: EPL-2.0

// Package eventloop provides the single-threaded execution model the sound
// engine runs on. All engine state is touched from one goroutine; work
// produced elsewhere (decoders, the audio thread, timers) is posted onto it.
package eventloop

import (
	"errors"
	"sync"
	"time"
)

var ErrClosed = errors.New("event loop closed")

// Timer is a cancellable pending callback.
type Timer interface {
	// Stop prevents the callback from being posted. It reports false when the
	// callback has already been posted or the timer was stopped before.
	Stop() bool
}

// Scheduler is what engine objects need from a loop.
type Scheduler interface {
	// Post queues fn to run on the loop goroutine. Safe from any goroutine.
	Post(fn func())
	// AfterFunc posts fn to the loop after d of wall-clock time.
	AfterFunc(d time.Duration, fn func()) Timer
	// Now is the loop's wall clock.
	Now() time.Time
}

// Loop serializes posted functions onto a single goroutine. The queue is
// unbounded so posting from inside a callback never blocks.
type Loop struct {
	mtx     sync.Mutex
	queue   []func()
	wake    chan struct{}
	done    chan struct{}
	wg      sync.WaitGroup
	started bool
	closed  bool
}

func New() *Loop {
	return &Loop{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
}

// Start begins the worker goroutine. Safe to call multiple times.
func (l *Loop) Start() {
	l.mtx.Lock()
	defer l.mtx.Unlock()

	if l.started || l.closed {
		return
	}
	l.started = true

	l.wg.Add(1)
	go l.run()
}

func (l *Loop) run() {
	defer l.wg.Done()

	for {
		select {
		case <-l.wake:
			l.drain()
		case <-l.done:
			// best-effort: work already queued still runs
			l.drain()
			return
		}
	}
}

func (l *Loop) drain() {
	for {
		l.mtx.Lock()
		batch := l.queue
		l.queue = nil
		l.mtx.Unlock()

		if len(batch) == 0 {
			return
		}
		for _, fn := range batch {
			fn()
		}
	}
}

// Close stops the worker after it finishes the queued work. Posts after
// Close are dropped.
func (l *Loop) Close() {
	l.mtx.Lock()
	if l.closed {
		l.mtx.Unlock()
		return
	}
	l.closed = true
	started := l.started
	l.mtx.Unlock()

	close(l.done)
	if started {
		l.wg.Wait()
	}
}

func (l *Loop) Post(fn func()) {
	l.mtx.Lock()
	if l.closed {
		l.mtx.Unlock()
		return
	}
	l.queue = append(l.queue, fn)
	l.mtx.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Do runs fn on the loop and waits for it. It must not be called from the
// loop goroutine itself.
func (l *Loop) Do(fn func()) error {
	l.mtx.Lock()
	closed := l.closed
	l.mtx.Unlock()
	if closed {
		return ErrClosed
	}

	ran := make(chan struct{})
	l.Post(func() {
		defer close(ran)
		fn()
	})

	select {
	case <-ran:
		return nil
	case <-l.done:
		// Close drains the queue, so fn may still have run
		select {
		case <-ran:
			return nil
		default:
			return ErrClosed
		}
	}
}

func (l *Loop) AfterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, func() { l.Post(fn) })
}

func (l *Loop) Now() time.Time { return time.Now() }
