// Copyright 2026 The Hangar Authors
// SPDX-License-Identifier: Apache-2.0

package redemption

import (
	"context"
	"fmt"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/hangar-foundation/hangar/lib/ref"
)

// Flow names one user-facing workflow. Every flow has an independent
// on/off switch; all start off.
type Flow string

const (
	FlowClaim     Flow = "claim"
	FlowPilot     Flow = "pilot"
	FlowRacecraft Flow = "racecraft"
	FlowInventory Flow = "inventory"
	FlowReward    Flow = "reward"
)

// Flows returns every flow in a stable order.
func Flows() []Flow {
	return []Flow{FlowClaim, FlowPilot, FlowRacecraft, FlowInventory, FlowReward}
}

// Valid reports whether f is a known flow.
func (f Flow) Valid() bool {
	for _, flow := range Flows() {
		if f == flow {
			return true
		}
	}
	return false
}

// flowActive reads a flow's switch. Flows without a row are off.
func flowActive(conn *sqlite.Conn, flow Flow) (bool, error) {
	active := false
	err := sqlitex.Execute(conn, `
		SELECT active FROM flow_flags WHERE flow = ?
	`, &sqlitex.ExecOptions{
		Args: []any{string(flow)},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			active = stmt.ColumnInt64(0) != 0
			return nil
		},
	})
	if err != nil {
		return false, fmt.Errorf("reading flow flag: %w", err)
	}
	return active, nil
}

func requireActive(conn *sqlite.Conn, flow Flow) error {
	active, err := flowActive(conn, flow)
	if err != nil {
		return err
	}
	if !active {
		return fmt.Errorf("%w: %s", ErrFlowInactive, flow)
	}
	return nil
}

func setFlow(conn *sqlite.Conn, flow Flow, active bool) error {
	value := 0
	if active {
		value = 1
	}
	err := sqlitex.Execute(conn, `
		INSERT INTO flow_flags (flow, active) VALUES (?, ?)
		ON CONFLICT (flow) DO UPDATE SET active = excluded.active
	`, &sqlitex.ExecOptions{
		Args: []any{string(flow), value},
	})
	if err != nil {
		return fmt.Errorf("writing flow flag: %w", err)
	}
	return nil
}

// SetFlowActive switches one flow on or off.
func (s *Store) SetFlowActive(ctx context.Context, actor ref.Party, flow Flow, active bool) error {
	if !flow.Valid() {
		return fmt.Errorf("unknown flow %q", flow)
	}
	err := s.writeTx(ctx, func(conn *sqlite.Conn) error {
		if err := s.requireRole(conn, actor, "flow/set"); err != nil {
			return err
		}
		if err := setFlow(conn, flow, active); err != nil {
			return err
		}
		return s.appendAudit(conn, actor, "flow-set", map[string]any{
			"flow":   string(flow),
			"active": active,
		})
	})
	if err != nil {
		return err
	}
	s.logger.Info("flow switched", "flow", flow, "active", active, "actor", actor)
	return nil
}

// EmergencyStop switches every flow off in one transaction. There is
// no matching bulk start: flows come back one at a time, once the
// operator understands what went wrong.
func (s *Store) EmergencyStop(ctx context.Context, actor ref.Party) error {
	err := s.writeTx(ctx, func(conn *sqlite.Conn) error {
		if err := s.requireRole(conn, actor, "flow/stop"); err != nil {
			return err
		}
		for _, flow := range Flows() {
			if err := setFlow(conn, flow, false); err != nil {
				return err
			}
		}
		return s.appendAudit(conn, actor, "emergency-stop", map[string]any{})
	})
	if err != nil {
		return err
	}
	s.logger.Warn("emergency stop", "actor", actor)
	return nil
}
