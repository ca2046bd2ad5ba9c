// SPDX-License-Identifier: Apache-2.0

package manager

import (
	"context"
	"fmt"
	"strings"
)

// ApplyResult records one applied artifact, in the order it was applied.
type ApplyResult struct {
	App  string
	Name string
}

// ApplyMigrations applies every pending migration for appFilter (or every
// app, if empty) in topological order, streaming one artifact at a time. On
// the k-th artifact's failure, artifacts [0..k-1] remain applied (their
// ledger rows exist) and the error identifies the k-th; the caller must not
// retry blindly.
func (m *Manager) ApplyMigrations(ctx context.Context, appFilter string) ([]ApplyResult, error) {
	if err := ensureLedger(ctx, m.DB, m.Emitter); err != nil {
		return nil, err
	}

	ordered, err := m.Discover(appFilter)
	if err != nil {
		return nil, err
	}
	applied, err := appliedSet(ctx, m.DB)
	if err != nil {
		return nil, err
	}

	appliedArtifacts := make([]*Discovered, 0, len(ordered))
	for _, d := range ordered {
		if applied[AppliedKey{App: d.App, Name: d.Name}] {
			appliedArtifacts = append(appliedArtifacts, d)
		}
	}
	pending := Pending(ordered, applied)

	s, err := replayState(appliedArtifacts)
	if err != nil {
		return nil, err
	}

	var results []ApplyResult
	for _, d := range pending {
		for _, op := range d.Artifact.Operations {
			select {
			case <-ctx.Done():
				return results, ctx.Err()
			default:
			}

			sql, err := op.ForwardSQL(s, m.Emitter)
			if err != nil {
				return results, fmt.Errorf("generating forward SQL for %s/%s: %w", d.App, d.Name, err)
			}
			if err := m.DB.ExecuteScript(ctx, sql); err != nil {
				return results, ExecutionError{SQL: sql, Err: err}
			}
			if err := s.Apply(op); err != nil {
				return results, fmt.Errorf("applying %s/%s to state: %w", d.App, d.Name, err)
			}
			s.Snapshot(d.Name)
		}

		if err := insertLedgerRow(ctx, m.DB, d.App, d.Name); err != nil {
			return results, err
		}
		results = append(results, ApplyResult{App: d.App, Name: d.Name})
	}
	return results, nil
}

// RevertMigration reverts a single artifact: the named one, or (name=="")
// the latest applied artifact for app. It replays the applied chain up to
// and including the target, runs BackwardSQL for each of its operations in
// reverse, then deletes its ledger row.
func (m *Manager) RevertMigration(ctx context.Context, app, name string) error {
	if err := ensureLedger(ctx, m.DB, m.Emitter); err != nil {
		return err
	}

	ordered, err := m.Discover(app)
	if err != nil {
		return err
	}
	applied, err := appliedSet(ctx, m.DB)
	if err != nil {
		return err
	}

	var appliedArtifacts []*Discovered
	for _, d := range ordered {
		if applied[AppliedKey{App: d.App, Name: d.Name}] {
			appliedArtifacts = append(appliedArtifacts, d)
		}
	}
	if len(appliedArtifacts) == 0 {
		return fmt.Errorf("no applied migrations for app %q", app)
	}

	targetIdx := len(appliedArtifacts) - 1
	if name != "" {
		targetIdx = -1
		for i, d := range appliedArtifacts {
			if d.Name == name {
				targetIdx = i
				break
			}
		}
		if targetIdx == -1 {
			return fmt.Errorf("migration %q is not applied for app %q", name, app)
		}
	}
	target := appliedArtifacts[targetIdx]

	s, err := replayState(appliedArtifacts[:targetIdx+1])
	if err != nil {
		return err
	}

	ops := target.Artifact.Operations
	for i := len(ops) - 1; i >= 0; i-- {
		op := ops[i]
		sql, err := op.BackwardSQL(s, m.Emitter)
		if err != nil {
			return fmt.Errorf("generating backward SQL for %s/%s: %w", target.App, target.Name, err)
		}
		if err := m.DB.ExecuteScript(ctx, sql); err != nil {
			return ExecutionError{SQL: sql, Err: err}
		}
		s.Rewind()
	}

	return deleteLedgerRow(ctx, m.DB, target.App, target.Name)
}

// GetPendingMigrationsSQL renders the forward SQL every pending migration
// would execute, without touching the database. Ledger reads fall back to
// an empty applied-set if the table does not exist yet, so a dry run never
// creates it.
func (m *Manager) GetPendingMigrationsSQL(ctx context.Context, appFilter string) (string, error) {
	ordered, err := m.Discover(appFilter)
	if err != nil {
		return "", err
	}
	applied, err := appliedSet(ctx, m.DB)
	if err != nil {
		return "", err
	}

	appliedArtifacts := make([]*Discovered, 0, len(ordered))
	for _, d := range ordered {
		if applied[AppliedKey{App: d.App, Name: d.Name}] {
			appliedArtifacts = append(appliedArtifacts, d)
		}
	}
	pending := Pending(ordered, applied)

	s, err := replayState(appliedArtifacts)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for _, d := range pending {
		fmt.Fprintf(&b, "-- Migration: %s -> %s\n", d.App, d.Name)
		stmts := make([]string, 0, len(d.Artifact.Operations))
		for _, op := range d.Artifact.Operations {
			sql, err := op.ForwardSQL(s, m.Emitter)
			if err != nil {
				return "", fmt.Errorf("generating forward SQL for %s/%s: %w", d.App, d.Name, err)
			}
			stmts = append(stmts, sql)
			if err := s.Apply(op); err != nil {
				return "", fmt.Errorf("applying %s/%s to state: %w", d.App, d.Name, err)
			}
			s.Snapshot(d.Name)
		}
		b.WriteString(strings.Join(stmts, ";\n"))
		b.WriteString("\n")
	}
	return b.String(), nil
}
