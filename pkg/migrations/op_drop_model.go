// SPDX-License-Identifier: Apache-2.0

package migrations

import (
	"fmt"

	"github.com/relmigrate/relmigrate/pkg/dialect"
	"github.com/relmigrate/relmigrate/pkg/state"
)

var _ Operation = (*OpDropModel)(nil)

// OpDropModel removes a model. Backward is CreateModel, reconstructed from
// state.Prev().
type OpDropModel struct {
	Model string
}

func (o *OpDropModel) ApplyToState(s *state.State) error {
	s.Current().DeleteModel(o.Model)
	return nil
}

func (o *OpDropModel) ForwardSQL(s *state.State, emitter dialect.Emitter) (string, error) {
	m := s.GetModel(o.Model)
	if m == nil {
		return "", OperationError{Op: "DropModel", Model: o.Model, Reason: "model does not exist"}
	}
	return emitter.DropTable(m.Table), nil
}

func (o *OpDropModel) BackwardSQL(s *state.State, emitter dialect.Emitter) (string, error) {
	prev := s.PrevModel(o.Model)
	if prev == nil {
		return "", OperationError{Op: "DropModel", Model: o.Model, Reason: "no prior snapshot to reconstruct from"}
	}
	columns, fks := fieldsToColumns(emitter, prev.Fields, prev.Order)
	return emitter.CreateTable(prev.Table, columns, fks), nil
}

func (o *OpDropModel) Serialize() string {
	return fmt.Sprintf("&migrations.OpDropModel{\n\tModel: %s,\n}", quote(o.Model))
}

func (o *OpDropModel) RequiredImports() []string {
	return baseImports()
}
