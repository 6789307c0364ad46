// SPDX-License-Identifier: EPL-2.0

package eventloop

import (
	"slices"
	"sync"
	"time"
)

// Manual is a Scheduler driven explicitly by the caller. Its clock only
// moves on Advance, which makes timer-driven behavior deterministic in
// tests. Post is safe from any goroutine; the Run/Advance methods must be
// called from a single goroutine.
type Manual struct {
	mtx    sync.Mutex
	now    time.Time
	queue  []func()
	timers []*manualTimer
	seq    uint64
	notify chan struct{}
}

type manualTimer struct {
	m       *Manual
	due     time.Time
	seq     uint64
	fn      func()
	stopped bool
	fired   bool
}

func NewManual(start time.Time) *Manual {
	return &Manual{
		now:    start,
		notify: make(chan struct{}, 1),
	}
}

func (m *Manual) Now() time.Time {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	return m.now
}

func (m *Manual) Post(fn func()) {
	m.mtx.Lock()
	m.queue = append(m.queue, fn)
	m.mtx.Unlock()

	select {
	case m.notify <- struct{}{}:
	default:
	}
}

func (m *Manual) AfterFunc(d time.Duration, fn func()) Timer {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	m.seq++
	t := &manualTimer{m: m, due: m.now.Add(d), seq: m.seq, fn: fn}
	m.timers = append(m.timers, t)
	return t
}

func (t *manualTimer) Stop() bool {
	t.m.mtx.Lock()
	defer t.m.mtx.Unlock()

	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	t.m.timers = slices.DeleteFunc(t.m.timers, func(o *manualTimer) bool { return o == t })
	return true
}

// RunPending runs posted work until the queue is empty, including work
// posted by the functions it runs. It returns the number of functions run.
func (m *Manual) RunPending() int {
	ran := 0
	for {
		m.mtx.Lock()
		batch := m.queue
		m.queue = nil
		m.mtx.Unlock()

		if len(batch) == 0 {
			return ran
		}
		for _, fn := range batch {
			fn()
			ran++
		}
	}
}

// Pending is the number of timers still armed.
func (m *Manual) Pending() int {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	return len(m.timers)
}

// Advance moves the clock forward by d, firing due timers in order. Each
// timer callback runs with the clock set to its due time, followed by any
// work it posted.
func (m *Manual) Advance(d time.Duration) {
	m.RunPending()

	m.mtx.Lock()
	target := m.now.Add(d)
	m.mtx.Unlock()

	for {
		m.mtx.Lock()
		next := m.nextDue(target)
		if next == nil {
			m.now = target
			m.mtx.Unlock()
			break
		}
		m.timers = slices.DeleteFunc(m.timers, func(o *manualTimer) bool { return o == next })
		next.fired = true
		if next.due.After(m.now) {
			m.now = next.due
		}
		m.mtx.Unlock()

		next.fn()
		m.RunPending()
	}

	m.RunPending()
}

func (m *Manual) nextDue(limit time.Time) *manualTimer {
	var next *manualTimer
	for _, t := range m.timers {
		if t.due.After(limit) {
			continue
		}
		if next == nil || t.due.Before(next.due) || (t.due.Equal(next.due) && t.seq < next.seq) {
			next = t
		}
	}
	return next
}

// WaitAndRun blocks until work is posted or timeout elapses, then runs
// everything pending. It reports whether anything ran.
func (m *Manual) WaitAndRun(timeout time.Duration) bool {
	if m.RunPending() > 0 {
		return true
	}

	select {
	case <-m.notify:
	case <-time.After(timeout):
	}

	return m.RunPending() > 0
}
