// SPDX-License-Identifier: Apache-2.0

package migrations

import (
	"fmt"

	"github.com/relmigrate/relmigrate/pkg/dialect"
	"github.com/relmigrate/relmigrate/pkg/state"
)

var _ Operation = (*OpDropField)(nil)

// OpDropField removes a field. Backward is AddField, using state.Prev() to
// recover the field descriptor. Fails with OperationError when no such
// field exists.
type OpDropField struct {
	Model     string
	FieldName string
}

func (o *OpDropField) ApplyToState(s *state.State) error {
	m := s.GetModel(o.Model)
	if m == nil {
		return OperationError{Op: "DropField", Model: o.Model, Field: o.FieldName, Reason: "model does not exist"}
	}
	if _, ok := m.Fields[o.FieldName]; !ok {
		return OperationError{Op: "DropField", Model: o.Model, Field: o.FieldName, Reason: "field does not exist"}
	}
	m.DeleteField(o.FieldName)
	return nil
}

func (o *OpDropField) ForwardSQL(s *state.State, emitter dialect.Emitter) (string, error) {
	m := s.GetModel(o.Model)
	if m == nil {
		return "", OperationError{Op: "DropField", Model: o.Model, Field: o.FieldName, Reason: "model does not exist"}
	}
	f, ok := m.Fields[o.FieldName]
	if !ok {
		return "", OperationError{Op: "DropField", Model: o.Model, Field: o.FieldName, Reason: "field does not exist"}
	}
	if f.Kind == state.KindManyToMany {
		return "", nil
	}
	return emitter.DropColumn(m.Table, m.ColumnName(o.FieldName)), nil
}

func (o *OpDropField) BackwardSQL(s *state.State, emitter dialect.Emitter) (string, error) {
	prev := s.PrevModel(o.Model)
	if prev == nil {
		return "", OperationError{Op: "DropField", Model: o.Model, Field: o.FieldName, Reason: "no prior snapshot to reconstruct from"}
	}
	f, ok := prev.Fields[o.FieldName]
	if !ok {
		return "", OperationError{Op: "DropField", Model: o.Model, Field: o.FieldName, Reason: "field not present in prior snapshot"}
	}
	if f.Kind == state.KindManyToMany {
		return "", nil
	}
	col, fk := emitter.ColumnDef(o.FieldName, f)
	return emitter.AddColumn(prev.Table, col, fk), nil
}

func (o *OpDropField) Serialize() string {
	return fmt.Sprintf("&migrations.OpDropField{\n\tModel: %s,\n\tFieldName: %s,\n}", quote(o.Model), quote(o.FieldName))
}

func (o *OpDropField) RequiredImports() []string {
	return baseImports()
}
