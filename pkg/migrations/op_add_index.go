// SPDX-License-Identifier: Apache-2.0

package migrations

import (
	"fmt"
	"strings"

	"github.com/relmigrate/relmigrate/pkg/dialect"
	"github.com/relmigrate/relmigrate/pkg/state"
)

var _ Operation = (*OpAddIndex)(nil)

// OpAddIndex appends an index to a model. Default name is derived from
// state.Index.DefaultName when Index.Name is unset.
type OpAddIndex struct {
	Model string
	Index state.Index
}

func (o *OpAddIndex) ApplyToState(s *state.State) error {
	m := s.GetModel(o.Model)
	if m == nil {
		return OperationError{Op: "AddIndex", Model: o.Model, Reason: "model does not exist"}
	}
	m.Indexes = append(m.Indexes, o.Index)
	return nil
}

func (o *OpAddIndex) ForwardSQL(s *state.State, emitter dialect.Emitter) (string, error) {
	m := s.GetModel(o.Model)
	if m == nil {
		return "", OperationError{Op: "AddIndex", Model: o.Model, Reason: "model does not exist"}
	}
	return emitter.AddIndex(m.Table, o.Index.ResolvedName(m.Table), o.Index.Fields, o.Index.Unique), nil
}

func (o *OpAddIndex) BackwardSQL(s *state.State, emitter dialect.Emitter) (string, error) {
	m := s.GetModel(o.Model)
	if m == nil {
		return "", OperationError{Op: "AddIndex", Model: o.Model, Reason: "model does not exist"}
	}
	return emitter.DropIndex(o.Index.ResolvedName(m.Table)), nil
}

func (o *OpAddIndex) Serialize() string {
	fields := make([]string, len(o.Index.Fields))
	for i, f := range o.Index.Fields {
		fields[i] = quote(f)
	}
	nameField := ""
	if o.Index.Name != "" {
		nameField = fmt.Sprintf("Name: %s, ", quote(o.Index.Name))
	}
	return fmt.Sprintf("&migrations.OpAddIndex{\n\tModel: %s,\n\tIndex: state.Index{%sFields: []string{%s}, Unique: %t},\n}",
		quote(o.Model), nameField, strings.Join(fields, ", "), o.Index.Unique)
}

func (o *OpAddIndex) RequiredImports() []string {
	return baseImports()
}
