// SPDX-License-Identifier: Apache-2.0

package migrations

import (
	"fmt"

	"github.com/relmigrate/relmigrate/pkg/dialect"
	"github.com/relmigrate/relmigrate/pkg/state"
)

var _ Operation = (*OpRenameModel)(nil)

// OpRenameModel updates a model's table name and/or its model-name key in
// the state; at least one of the two must be set. Renaming only the
// model-name key leaves SQL empty, the same no-op-at-the-DB rule
// RenameField applies.
type OpRenameModel struct {
	Model        string
	NewTableName string
	NewModelName string
}

func (o *OpRenameModel) validate() error {
	if o.NewTableName == "" && o.NewModelName == "" {
		return OperationError{Op: "RenameModel", Model: o.Model, Reason: "neither new table name nor new model name specified"}
	}
	return nil
}

func (o *OpRenameModel) newRef() string {
	if o.NewModelName == "" {
		return o.Model
	}
	app, _ := state.SplitRef(o.Model)
	return app + "." + o.NewModelName
}

func (o *OpRenameModel) ApplyToState(s *state.State) error {
	if err := o.validate(); err != nil {
		return err
	}
	if o.NewModelName != "" {
		s.Current().RenameModelKey(o.Model, o.NewModelName)
	}
	if o.NewTableName != "" {
		m := s.GetModel(o.newRef())
		if m == nil {
			return OperationError{Op: "RenameModel", Model: o.Model, Reason: "model does not exist"}
		}
		m.Table = o.NewTableName
	}
	return nil
}

func (o *OpRenameModel) ForwardSQL(s *state.State, emitter dialect.Emitter) (string, error) {
	if err := o.validate(); err != nil {
		return "", err
	}
	if o.NewTableName == "" {
		return "", nil
	}
	m := s.GetModel(o.Model)
	if m == nil {
		return "", OperationError{Op: "RenameModel", Model: o.Model, Reason: "model does not exist"}
	}
	return emitter.RenameTable(m.Table, o.NewTableName), nil
}

func (o *OpRenameModel) BackwardSQL(s *state.State, emitter dialect.Emitter) (string, error) {
	if o.NewTableName == "" {
		return "", nil
	}
	prev := s.PrevModel(o.Model)
	if prev == nil {
		return "", OperationError{Op: "RenameModel", Model: o.Model, Reason: "no prior snapshot to reconstruct from"}
	}
	return emitter.RenameTable(o.NewTableName, prev.Table), nil
}

func (o *OpRenameModel) Serialize() string {
	var extra string
	if o.NewTableName != "" {
		extra += fmt.Sprintf("\n\tNewTableName: %s,", quote(o.NewTableName))
	}
	if o.NewModelName != "" {
		extra += fmt.Sprintf("\n\tNewModelName: %s,", quote(o.NewModelName))
	}
	return fmt.Sprintf("&migrations.OpRenameModel{\n\tModel: %s,%s\n}", quote(o.Model), extra)
}

func (o *OpRenameModel) RequiredImports() []string {
	return baseImports()
}
