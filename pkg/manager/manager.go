// SPDX-License-Identifier: Apache-2.0

package manager

import (
	"context"
	"fmt"

	"github.com/relmigrate/relmigrate/pkg/db"
	"github.com/relmigrate/relmigrate/pkg/dialect"
	"github.com/relmigrate/relmigrate/pkg/state"
)

// Manager is the Migration Manager: it discovers migration artifacts on
// disk, orders them, tracks which are applied in the database ledger, and
// applies or reverts them.
type Manager struct {
	Root     string // migrations root, one subdirectory per app
	RepoRoot string // repository root containing go.mod, for codegen.ModulePath
	DB       db.DB
	Emitter  dialect.Emitter
}

// New returns a Manager rooted at a migrations directory (one subdirectory
// per app), talking to conn through emitter's dialect.
func New(root, repoRoot string, conn db.DB, emitter dialect.Emitter) *Manager {
	return &Manager{Root: root, RepoRoot: repoRoot, DB: conn, Emitter: emitter}
}

// Discover scans m.Root and returns the ordered (topologically sorted)
// artifact list across every app, restricted to appFilter when non-empty.
func (m *Manager) Discover(appFilter string) ([]*Discovered, error) {
	all, err := Discover(m.Root)
	if err != nil {
		return nil, err
	}
	if appFilter != "" {
		filtered := make([]*Discovered, 0, len(all))
		for _, d := range all {
			if d.App == appFilter {
				filtered = append(filtered, d)
			}
		}
		all = filtered
	}
	return topoOrder(all)
}

// Applied reports which of the discovered artifacts already have a ledger
// row, and the raw applied-set for membership checks.
func (m *Manager) Applied(ctx context.Context) (map[AppliedKey]bool, error) {
	return appliedSet(ctx, m.DB)
}

// Pending returns the subset of ordered (already topo-sorted) that have no
// ledger row yet, preserving topo order.
func Pending(ordered []*Discovered, applied map[AppliedKey]bool) []*Discovered {
	var pending []*Discovered
	for _, d := range ordered {
		if !applied[AppliedKey{App: d.App, Name: d.Name}] {
			pending = append(pending, d)
		}
	}
	return pending
}

// replayState rebuilds a *state.State by replaying every artifact in
// artifacts, in order, snapshotting after each operation (state.go's
// BuildFromMigrations), giving BackwardSQL/ForwardSQL the same Prev()
// history they would have had when the chain was originally applied.
func replayState(artifacts []*Discovered) (*state.State, error) {
	likes := make([]state.MigrationLike, len(artifacts))
	for i, d := range artifacts {
		likes[i] = d.Artifact
	}
	s, err := state.BuildFromMigrations(likes)
	if err != nil {
		return nil, fmt.Errorf("replaying migration history: %w", err)
	}
	return s, nil
}
