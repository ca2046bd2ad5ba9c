// SPDX-License-Identifier: Apache-2.0

package migrations

import (
	"fmt"

	"github.com/relmigrate/relmigrate/pkg/dialect"
	"github.com/relmigrate/relmigrate/pkg/state"
)

var _ Operation = (*OpDropIndex)(nil)

// OpDropIndex removes an index by its resolved name. Backward is AddIndex,
// reconstructed from state.Prev().
type OpDropIndex struct {
	Model     string
	IndexName string
}

func (o *OpDropIndex) ApplyToState(s *state.State) error {
	m := s.GetModel(o.Model)
	if m == nil {
		return OperationError{Op: "DropIndex", Model: o.Model, Reason: "model does not exist"}
	}
	kept := make([]state.Index, 0, len(m.Indexes))
	for _, ix := range m.Indexes {
		if ix.ResolvedName(m.Table) != o.IndexName {
			kept = append(kept, ix)
		}
	}
	m.Indexes = kept
	return nil
}

func (o *OpDropIndex) ForwardSQL(s *state.State, emitter dialect.Emitter) (string, error) {
	return emitter.DropIndex(o.IndexName), nil
}

func (o *OpDropIndex) BackwardSQL(s *state.State, emitter dialect.Emitter) (string, error) {
	prev := s.PrevModel(o.Model)
	if prev == nil {
		return "", OperationError{Op: "DropIndex", Model: o.Model, Reason: "no prior snapshot to reconstruct from"}
	}
	ix, ok := prev.IndexByName(o.IndexName)
	if !ok {
		return "", OperationError{Op: "DropIndex", Model: o.Model, Reason: fmt.Sprintf("index %q not present in prior snapshot", o.IndexName)}
	}
	return emitter.AddIndex(prev.Table, o.IndexName, ix.Fields, ix.Unique), nil
}

func (o *OpDropIndex) Serialize() string {
	return fmt.Sprintf("&migrations.OpDropIndex{\n\tModel: %s,\n\tIndexName: %s,\n}", quote(o.Model), quote(o.IndexName))
}

func (o *OpDropIndex) RequiredImports() []string {
	return baseImports()
}
