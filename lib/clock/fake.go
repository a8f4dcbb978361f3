// Copyright 2026 The Hangar Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import (
	"sync"
	"time"
)

// FakeClock is a Clock whose time only moves when a test calls
// Advance or Set. Waiters registered through After and NewTicker fire
// synchronously inside Advance, in deadline order, so tests observe a
// deterministic delivery sequence.
type FakeClock struct {
	mu      sync.Mutex
	now     time.Time
	waiters []*fakeWaiter
}

// fakeWaiter is a pending After channel or ticker registration.
type fakeWaiter struct {
	deadline time.Time
	interval time.Duration // zero for one-shot After waiters
	ch       chan time.Time
	stopped  bool
}

// NewFake returns a FakeClock starting at a fixed, arbitrary epoch.
// The starting instant is deliberately not the zero time so that
// tests subtracting durations do not underflow into negative years.
func NewFake() *FakeClock {
	return &FakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
}

// Now returns the fake's current time.
func (f *FakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

// Set jumps the clock to instant t without firing waiters scheduled
// before it. Use Advance to fire waiters.
func (f *FakeClock) Set(t time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = t
}

// After registers a one-shot waiter due after d.
func (f *FakeClock) After(d time.Duration) <-chan time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()

	ch := make(chan time.Time, 1)
	if d <= 0 {
		ch <- f.now
		return ch
	}
	f.waiters = append(f.waiters, &fakeWaiter{deadline: f.now.Add(d), ch: ch})
	return ch
}

// NewTicker registers a repeating waiter with period d.
func (f *FakeClock) NewTicker(d time.Duration) *Ticker {
	if d <= 0 {
		panic("clock: non-positive ticker interval")
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	waiter := &fakeWaiter{deadline: f.now.Add(d), interval: d, ch: make(chan time.Time, 1)}
	f.waiters = append(f.waiters, waiter)
	return &Ticker{
		C: waiter.ch,
		stopFunc: func() {
			f.mu.Lock()
			defer f.mu.Unlock()
			waiter.stopped = true
		},
	}
}

// Sleep advances the clock by d. The fake never blocks: a goroutine
// sleeping on fake time would otherwise deadlock the test driving it.
func (f *FakeClock) Sleep(d time.Duration) {
	f.Advance(d)
}

// Waiters reports the number of live registrations. A test driving a
// timer loop polls this before advancing: an Advance issued before
// the loop has re-armed would move time past a deadline nobody is
// waiting on.
func (f *FakeClock) Waiters() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, w := range f.waiters {
		if !w.stopped {
			count++
		}
	}
	return count
}

// Advance moves the clock forward by d, delivering to every waiter
// whose deadline is reached, in deadline order. Ticker waiters are
// rescheduled; their ticks are dropped if the buffer is full, same as
// time.Ticker.
func (f *FakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()

	target := f.now.Add(d)
	for {
		next := f.earliestLocked(target)
		if next == nil {
			break
		}
		f.now = next.deadline
		select {
		case next.ch <- f.now:
		default:
		}
		if next.interval > 0 {
			next.deadline = next.deadline.Add(next.interval)
		} else {
			next.stopped = true
		}
	}
	f.now = target
	f.compactLocked()
}

// earliestLocked returns the live waiter with the earliest deadline
// at or before limit, or nil if none is due.
func (f *FakeClock) earliestLocked(limit time.Time) *fakeWaiter {
	var earliest *fakeWaiter
	for _, w := range f.waiters {
		if w.stopped || w.deadline.After(limit) {
			continue
		}
		if earliest == nil || w.deadline.Before(earliest.deadline) {
			earliest = w
		}
	}
	return earliest
}

// compactLocked drops stopped waiters so long-running tests do not
// accumulate dead registrations.
func (f *FakeClock) compactLocked() {
	live := f.waiters[:0]
	for _, w := range f.waiters {
		if !w.stopped {
			live = append(live, w)
		}
	}
	f.waiters = live
}
