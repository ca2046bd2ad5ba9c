// SPDX-License-Identifier: Apache-2.0

package migrations

import (
	"github.com/relmigrate/relmigrate/pkg/state"
)

// Dependency is one cross-artifact edge: the artifact this belongs to
// cannot apply before (App, Name) has.
type Dependency struct {
	App  string
	Name string
}

// Artifact is the named, persisted unit a migration file declares: a
// fully-qualified name, an app, an ordered dependency list, and an ordered
// operation list. It satisfies state.MigrationLike so
// state.BuildFromMigrations can replay it without pkg/state importing
// pkg/migrations.
type Artifact struct {
	Name         string
	App          string
	Dependencies []Dependency
	Operations   []Operation
}

var _ state.MigrationLike = (*Artifact)(nil)

// ArtifactName returns the fully-qualified "<timestamp>_<slug>" name.
func (a *Artifact) ArtifactName() string {
	return a.Name
}

// StateOperations adapts Operations to the narrow state.Applier view, since
// Operation's ApplyToState method already satisfies that interface
// structurally.
func (a *Artifact) StateOperations() []state.Applier {
	ops := make([]state.Applier, len(a.Operations))
	for i, op := range a.Operations {
		ops[i] = op
	}
	return ops
}
