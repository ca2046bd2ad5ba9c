// SPDX-License-Identifier: Apache-2.0

package migrations

import (
	"fmt"

	"github.com/relmigrate/relmigrate/pkg/dialect"
	"github.com/relmigrate/relmigrate/pkg/state"
)

var _ Operation = (*OpAlterField)(nil)

// OpAlterField replaces the stored descriptor for a field. Backward uses
// state.Prev() to restore the prior descriptor.
type OpAlterField struct {
	Model     string
	FieldName string
	Field     *state.Field
}

func (o *OpAlterField) ApplyToState(s *state.State) error {
	m := s.GetModel(o.Model)
	if m == nil {
		return OperationError{Op: "AlterField", Model: o.Model, Field: o.FieldName, Reason: "model does not exist"}
	}
	if _, ok := m.Fields[o.FieldName]; !ok {
		return OperationError{Op: "AlterField", Model: o.Model, Field: o.FieldName, Reason: "field does not exist"}
	}
	m.SetField(o.FieldName, o.Field.Clone())
	return nil
}

func (o *OpAlterField) ForwardSQL(s *state.State, emitter dialect.Emitter) (string, error) {
	m := s.GetModel(o.Model)
	if m == nil {
		return "", OperationError{Op: "AlterField", Model: o.Model, Field: o.FieldName, Reason: "model does not exist"}
	}
	prevField, ok := m.Fields[o.FieldName]
	if !ok {
		return "", OperationError{Op: "AlterField", Model: o.Model, Field: o.FieldName, Reason: "field does not exist"}
	}
	return alterColumnSQL(emitter, m, o.FieldName, prevField, o.Field)
}

func (o *OpAlterField) BackwardSQL(s *state.State, emitter dialect.Emitter) (string, error) {
	prev := s.PrevModel(o.Model)
	if prev == nil {
		return "", OperationError{Op: "AlterField", Model: o.Model, Field: o.FieldName, Reason: "no prior snapshot to reconstruct from"}
	}
	prevField, ok := prev.Fields[o.FieldName]
	if !ok {
		return "", OperationError{Op: "AlterField", Model: o.Model, Field: o.FieldName, Reason: "field not present in prior snapshot"}
	}
	// s.Current() holds the post-alter shape (o.Field); reverting walks
	// from that shape back to prevField.
	return alterColumnSQL(emitter, prev, o.FieldName, o.Field, prevField)
}

// alterColumnSQL builds the emitter's full-model column/FK context and
// delegates to Emitter.AlterColumn for the (from, to) pair.
func alterColumnSQL(emitter dialect.Emitter, m *state.ModelEntry, fieldName string, from, to *state.Field) (string, error) {
	allColumns, allFKs := fieldsToColumns(emitter, m.Fields, m.Order)
	fromCol, fromFK := emitter.ColumnDef(fieldName, from)
	toCol, toFK := emitter.ColumnDef(fieldName, to)
	return emitter.AlterColumn(m.Table, fromCol.Name, fromCol, toCol, fromFK, toFK, allColumns, allFKs), nil
}

func (o *OpAlterField) Serialize() string {
	return fmt.Sprintf("&migrations.OpAlterField{\n\tModel: %s,\n\tFieldName: %s,\n\tField: %s,\n}",
		quote(o.Model), quote(o.FieldName), renderField(o.Field))
}

func (o *OpAlterField) RequiredImports() []string {
	imports := baseImports()
	if o.Field.Default.Kind == state.DefaultLiteral {
		imports = append(imports, "github.com/oapi-codegen/nullable")
	}
	return imports
}
