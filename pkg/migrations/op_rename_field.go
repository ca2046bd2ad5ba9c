// SPDX-License-Identifier: Apache-2.0

package migrations

import (
	"fmt"

	"github.com/relmigrate/relmigrate/pkg/dialect"
	"github.com/relmigrate/relmigrate/pkg/state"
)

var _ Operation = (*OpRenameField)(nil)

// OpRenameField updates a field's name and/or its concrete column name; at
// least one of the two must be set. Updating only the field name leaves SQL
// empty, a no-op at the DB layer.
type OpRenameField struct {
	Model         string
	FieldName     string
	NewFieldName  string
	NewColumnName string
}

func (o *OpRenameField) validate() error {
	if o.NewFieldName == "" && o.NewColumnName == "" {
		return OperationError{Op: "RenameField", Model: o.Model, Field: o.FieldName, Reason: "neither new field name nor new column name specified"}
	}
	return nil
}

func (o *OpRenameField) ApplyToState(s *state.State) error {
	if err := o.validate(); err != nil {
		return err
	}
	m := s.GetModel(o.Model)
	if m == nil {
		return OperationError{Op: "RenameField", Model: o.Model, Field: o.FieldName, Reason: "model does not exist"}
	}
	f, ok := m.Fields[o.FieldName]
	if !ok {
		return OperationError{Op: "RenameField", Model: o.Model, Field: o.FieldName, Reason: "field does not exist"}
	}
	if o.NewColumnName != "" {
		f.SourceColumnOverride = o.NewColumnName
	}
	newName := o.FieldName
	if o.NewFieldName != "" {
		newName = o.NewFieldName
		delete(m.Fields, o.FieldName)
		m.RenameField(o.FieldName, newName)
	}
	m.Fields[newName] = f
	return nil
}

func (o *OpRenameField) ForwardSQL(s *state.State, emitter dialect.Emitter) (string, error) {
	if err := o.validate(); err != nil {
		return "", err
	}
	if o.NewColumnName == "" {
		return "", nil
	}
	m := s.GetModel(o.Model)
	if m == nil {
		return "", OperationError{Op: "RenameField", Model: o.Model, Field: o.FieldName, Reason: "model does not exist"}
	}
	oldCol := m.ColumnName(o.FieldName)
	return emitter.RenameColumn(m.Table, oldCol, o.NewColumnName), nil
}

func (o *OpRenameField) BackwardSQL(s *state.State, emitter dialect.Emitter) (string, error) {
	if o.NewColumnName == "" {
		return "", nil
	}
	prev := s.PrevModel(o.Model)
	if prev == nil {
		return "", OperationError{Op: "RenameField", Model: o.Model, Field: o.FieldName, Reason: "no prior snapshot to reconstruct from"}
	}
	oldCol := prev.ColumnName(o.FieldName)
	return emitter.RenameColumn(prev.Table, o.NewColumnName, oldCol), nil
}

func (o *OpRenameField) Serialize() string {
	var extra string
	if o.NewFieldName != "" {
		extra += fmt.Sprintf("\n\tNewFieldName: %s,", quote(o.NewFieldName))
	}
	if o.NewColumnName != "" {
		extra += fmt.Sprintf("\n\tNewColumnName: %s,", quote(o.NewColumnName))
	}
	return fmt.Sprintf("&migrations.OpRenameField{\n\tModel: %s,\n\tFieldName: %s,%s\n}",
		quote(o.Model), quote(o.FieldName), extra)
}

func (o *OpRenameField) RequiredImports() []string {
	return baseImports()
}
