// SPDX-License-Identifier: Apache-2.0

package state

import "fmt"

// snapshot is one frozen copy of the universe, taken after an operation was
// applied. Each snapshot is a full deep copy (Universe.Clone); snapshots
// share no structure with each other or with the live universe.
type snapshot struct {
	label   string
	version Universe
}

// State is the in-memory, versioned model universe: it is built by
// replaying every applied migration operation in order, snapshotting after
// each one, so that backward SQL generation can recover the shape of the
// universe immediately prior to an operation via Prev.
type State struct {
	current   Universe
	snapshots []snapshot
}

// New returns an empty State.
func New() *State {
	return &State{current: NewUniverse()}
}

// Current returns the live universe. Callers must not mutate the returned
// map directly; use Apply.
func (s *State) Current() Universe {
	return s.current
}

// GetModels returns the models declared for app, or an empty map if the app
// is unknown.
func (s *State) GetModels(app string) map[string]*ModelEntry {
	if models, ok := s.current[app]; ok {
		return models
	}
	return map[string]*ModelEntry{}
}

// GetModel returns the entry for "app.Model", or nil.
func (s *State) GetModel(ref string) *ModelEntry {
	return s.current.Model(ref)
}

// GetTableName returns the table name for "app.Model", or "" if it does not
// exist.
func (s *State) GetTableName(ref string) string {
	m := s.current.Model(ref)
	if m == nil {
		return ""
	}
	return m.Table
}

// GetColumnName returns the concrete column name for a field on "app.Model".
func (s *State) GetColumnName(ref, field string) string {
	m := s.current.Model(ref)
	if m == nil {
		return ""
	}
	return m.ColumnName(field)
}

// GetField returns the field descriptor for a field on "app.Model", or nil.
func (s *State) GetField(ref, field string) *Field {
	m := s.current.Model(ref)
	if m == nil {
		return nil
	}
	return m.Fields[field]
}

// Snapshot appends a frozen copy of the current universe under label. The
// Prev accessor recovers the entry immediately preceding the most recent
// one.
func (s *State) Snapshot(label string) {
	s.snapshots = append(s.snapshots, snapshot{label: label, version: s.current.Clone()})
}

// Prev returns the universe as it stood immediately before the latest
// snapshot, i.e. the pre-change shape an operation's BackwardSQL needs to
// reconstruct a dropped model/field. Returns an empty Universe if fewer than
// two snapshots have been taken.
func (s *State) Prev() Universe {
	if len(s.snapshots) < 2 {
		return NewUniverse()
	}
	return s.snapshots[len(s.snapshots)-2].version
}

// PrevModel is a convenience wrapper returning Prev().Model(ref).
func (s *State) PrevModel(ref string) *ModelEntry {
	return s.Prev().Model(ref)
}

// Rewind pops the most recent snapshot and restores Current() to the
// snapshot immediately preceding it, mirroring in reverse what Apply+Snapshot
// did when the operation now being reverted was originally applied. Used by
// the manager's revert orchestration to keep Prev() valid while undoing an
// artifact's operations one at a time, in reverse order.
func (s *State) Rewind() {
	if len(s.snapshots) == 0 {
		return
	}
	s.snapshots = s.snapshots[:len(s.snapshots)-1]
	if len(s.snapshots) > 0 {
		s.current = s.snapshots[len(s.snapshots)-1].version.Clone()
	} else {
		s.current = NewUniverse()
	}
}

// Applier is satisfied by every operation in pkg/migrations; it is declared
// here (rather than imported) to avoid a state<->migrations import cycle,
// since migrations.Operation.ApplyToState(state *State) necessarily depends
// on *State.
type Applier interface {
	ApplyToState(s *State) error
}

// Apply mutates the state by applying a single operation's state-side
// effect.
func (s *State) Apply(op Applier) error {
	if err := op.ApplyToState(s); err != nil {
		return fmt.Errorf("applying operation to state: %w", err)
	}
	return nil
}

// BuildFromMigrations replays, in order, the operations of every artifact in
// migrations, snapshotting the state after each operation. It returns the
// resulting State.
func BuildFromMigrations(artifacts []MigrationLike) (*State, error) {
	s := New()
	s.Snapshot("initial")
	for _, artifact := range artifacts {
		for _, op := range artifact.StateOperations() {
			if err := s.Apply(op); err != nil {
				return nil, fmt.Errorf("replaying migration %q: %w", artifact.ArtifactName(), err)
			}
			s.Snapshot(artifact.ArtifactName())
		}
	}
	return s, nil
}

// MigrationLike is the narrow view of a migrations.Artifact that
// BuildFromMigrations needs; declared here to avoid the same import-cycle
// concern as Applier.
type MigrationLike interface {
	ArtifactName() string
	StateOperations() []Applier
}
