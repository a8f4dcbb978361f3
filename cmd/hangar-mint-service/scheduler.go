// Copyright 2026 The Hangar Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/hangar-foundation/hangar/lib/clock"
	"github.com/hangar-foundation/hangar/lib/config"
	"github.com/hangar-foundation/hangar/lib/cron"
	"github.com/hangar-foundation/hangar/lib/redemption"
	"github.com/hangar-foundation/hangar/lib/ref"
)

// window is one parsed sale window. A nil leg means the window only
// opens or only closes; such windows express recurring edges and
// carry no opinion about the state between them.
type window struct {
	flow      redemption.Flow
	open      *cron.Schedule
	close     *cron.Schedule
	openExpr  string
	closeExpr string
}

// parseWindows parses every window expression up front so a bad
// configuration fails at startup, not at the first boundary.
func parseWindows(configs []config.WindowConfig) ([]window, error) {
	windows := make([]window, 0, len(configs))
	for i, wc := range configs {
		flow := redemption.Flow(wc.Flow)
		if !flow.Valid() {
			return nil, fmt.Errorf("windows[%d]: unknown flow %q", i, wc.Flow)
		}
		w := window{flow: flow, openExpr: wc.Open, closeExpr: wc.Close}
		if wc.Open != "" {
			schedule, err := cron.Parse(wc.Open)
			if err != nil {
				return nil, fmt.Errorf("windows[%d].open: %w", i, err)
			}
			w.open = &schedule
		}
		if wc.Close != "" {
			schedule, err := cron.Parse(wc.Close)
			if err != nil {
				return nil, fmt.Errorf("windows[%d].close: %w", i, err)
			}
			w.close = &schedule
		}
		windows = append(windows, w)
	}
	return windows, nil
}

// desiredAt reports the state a two-legged window implies at instant
// t: open when the most recent opening is more recent than the most
// recent close. Prev is inclusive of t, so a boundary firing exactly
// at t has already taken effect. One-legged windows, and windows
// where neither leg has an occurrence within the search bound, report
// no opinion.
func (w window) desiredAt(t time.Time) (active, ok bool) {
	if w.open == nil || w.close == nil {
		return false, false
	}
	prevOpen, errOpen := w.open.Prev(t)
	prevClose, errClose := w.close.Prev(t)
	switch {
	case errOpen != nil && errClose != nil:
		return false, false
	case errOpen != nil:
		return false, true
	case errClose != nil:
		return true, true
	}
	return prevOpen.After(prevClose), true
}

// flowEvent is one boundary firing: switch flow to active at instant
// at.
type flowEvent struct {
	at     time.Time
	flow   redemption.Flow
	active bool
}

// scheduler drives flow switches from the configured sale windows.
// It acts as the bootstrap admin; a deployment that revokes that
// party's grants has deliberately disabled window automation.
type scheduler struct {
	store   *redemption.Store
	actor   ref.Party
	windows []window
	clock   clock.Clock
	logger  *slog.Logger
}

// run fires boundaries until the context ends. Startup reconciles
// two-legged windows to the state their schedule implies, so a
// restart mid-window reopens the flow. A wakeup that arrives late
// still applies its boundary: the next arm period comes out negative
// or zero and fires immediately, so missed boundaries replay in
// order until the schedule catches up with the clock.
func (s *scheduler) run(ctx context.Context) {
	if err := s.reconcile(ctx); err != nil {
		s.logger.Error("window recovery failed", "error", err)
	}

	for {
		events := s.nextEvents(s.clock.Now())
		if len(events) == 0 {
			s.logger.Warn("no upcoming window boundaries, scheduler idle")
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-s.clock.After(events[0].at.Sub(s.clock.Now())):
			for _, event := range events {
				s.apply(ctx, event)
			}
		}
	}
}

// reconcile switches each two-legged window's flow to the state its
// schedule implies right now. Only flows whose current flag disagrees
// are written, keeping restart noise out of the audit log.
func (s *scheduler) reconcile(ctx context.Context) error {
	status, err := s.store.Status(ctx)
	if err != nil {
		return fmt.Errorf("reading flow state: %w", err)
	}
	now := s.clock.Now()
	for _, w := range s.windows {
		desired, ok := w.desiredAt(now)
		if !ok || status.Flows[w.flow] == desired {
			continue
		}
		s.apply(ctx, flowEvent{at: now, flow: w.flow, active: desired})
	}
	return nil
}

// nextEvents returns every window boundary at the earliest instant
// strictly after now. When one instant both opens and closes a flow,
// the close applies last, so a misconfigured overlap fails closed.
func (s *scheduler) nextEvents(now time.Time) []flowEvent {
	var earliest time.Time
	var events []flowEvent

	consider := func(schedule *cron.Schedule, flow redemption.Flow, active bool) {
		if schedule == nil {
			return
		}
		at, err := schedule.Next(now)
		if err != nil {
			return
		}
		switch {
		case events == nil || at.Before(earliest):
			earliest = at
			events = []flowEvent{{at: at, flow: flow, active: active}}
		case at.Equal(earliest):
			events = append(events, flowEvent{at: at, flow: flow, active: active})
		}
	}

	for _, w := range s.windows {
		consider(w.open, w.flow, true)
		consider(w.close, w.flow, false)
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].active && !events[j].active
	})
	return events
}

// apply fires one boundary. Failures are logged and skipped; the
// schedule keeps running, and the boundary's effect arrives with the
// next successful toggle of the same flow.
func (s *scheduler) apply(ctx context.Context, event flowEvent) {
	if err := s.store.SetFlowActive(ctx, s.actor, event.flow, event.active); err != nil {
		s.logger.Error("window toggle failed",
			"flow", event.flow,
			"active", event.active,
			"error", err,
		)
	}
}
