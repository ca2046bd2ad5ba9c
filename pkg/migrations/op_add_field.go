// SPDX-License-Identifier: Apache-2.0

package migrations

import (
	"fmt"

	"github.com/relmigrate/relmigrate/pkg/dialect"
	"github.com/relmigrate/relmigrate/pkg/state"
)

var _ Operation = (*OpAddField)(nil)

// OpAddField adds a field to an existing model. Backward is DropField.
type OpAddField struct {
	Model     string
	FieldName string
	Field     *state.Field
}

func (o *OpAddField) ApplyToState(s *state.State) error {
	m := s.GetModel(o.Model)
	if m == nil {
		return OperationError{Op: "AddField", Model: o.Model, Field: o.FieldName, Reason: "model does not exist"}
	}
	m.SetField(o.FieldName, o.Field.Clone())
	return nil
}

func (o *OpAddField) ForwardSQL(s *state.State, emitter dialect.Emitter) (string, error) {
	if o.Field.Kind == state.KindManyToMany {
		return "", nil
	}
	m := s.GetModel(o.Model)
	if m == nil {
		return "", OperationError{Op: "AddField", Model: o.Model, Field: o.FieldName, Reason: "model does not exist"}
	}
	col, fk := emitter.ColumnDef(o.FieldName, o.Field)
	return emitter.AddColumn(m.Table, col, fk), nil
}

func (o *OpAddField) BackwardSQL(s *state.State, emitter dialect.Emitter) (string, error) {
	if o.Field.Kind == state.KindManyToMany {
		return "", nil
	}
	m := s.GetModel(o.Model)
	if m == nil {
		return "", OperationError{Op: "AddField", Model: o.Model, Field: o.FieldName, Reason: "model does not exist"}
	}
	return emitter.DropColumn(m.Table, m.ColumnName(o.FieldName)), nil
}

func (o *OpAddField) Serialize() string {
	return fmt.Sprintf("&migrations.OpAddField{\n\tModel: %s,\n\tFieldName: %s,\n\tField: %s,\n}",
		quote(o.Model), quote(o.FieldName), renderField(o.Field))
}

func (o *OpAddField) RequiredImports() []string {
	imports := baseImports()
	if o.Field.Default.Kind == state.DefaultLiteral {
		imports = append(imports, "github.com/oapi-codegen/nullable")
	}
	return imports
}
