// SPDX-License-Identifier: Apache-2.0

package migrations

import (
	"fmt"
	"sort"
	"strings"

	"github.com/relmigrate/relmigrate/internal/slugify"
	"github.com/relmigrate/relmigrate/pkg/dialect"
	"github.com/relmigrate/relmigrate/pkg/state"
)

var _ Operation = (*OpCreateModel)(nil)

// OpCreateModel creates a new model with its full field set. Backward is
// DropModel.
type OpCreateModel struct {
	Model  string
	Table  string // defaults to slugify.Snake(model name) when empty
	Fields map[string]*state.Field
	Order  []string // field names in declaration order; alphabetical is used unless it has one name per field
}

func (o *OpCreateModel) resolvedTable() string {
	if o.Table != "" {
		return o.Table
	}
	_, model := state.SplitRef(o.Model)
	return slugify.Snake(model)
}

func (o *OpCreateModel) ApplyToState(s *state.State) error {
	entry := state.NewModelEntry(o.resolvedTable())
	for _, name := range o.orderedNames() {
		entry.SetField(name, o.Fields[name].Clone())
	}
	s.Current().SetModel(o.Model, entry)
	return nil
}

func (o *OpCreateModel) ForwardSQL(s *state.State, emitter dialect.Emitter) (string, error) {
	columns, fks := fieldsToColumns(emitter, o.Fields, o.orderedNames())
	return emitter.CreateTable(o.resolvedTable(), columns, fks), nil
}

// orderedNames returns Order when it names every field, falling back to
// alphabetical for operations built without declaration-order information.
func (o *OpCreateModel) orderedNames() []string {
	if len(o.Order) == len(o.Fields) {
		return o.Order
	}
	names := make([]string, 0, len(o.Fields))
	for name := range o.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (o *OpCreateModel) BackwardSQL(s *state.State, emitter dialect.Emitter) (string, error) {
	return emitter.DropTable(o.resolvedTable()), nil
}

func (o *OpCreateModel) Serialize() string {
	names := o.orderedNames()

	var fields strings.Builder
	for _, name := range names {
		fmt.Fprintf(&fields, "\n\t\t%s: %s,", quote(name), renderField(o.Fields[name]))
	}

	var order strings.Builder
	for _, name := range names {
		fmt.Fprintf(&order, "%s, ", quote(name))
	}

	tableField := ""
	if o.Table != "" {
		tableField = fmt.Sprintf("\n\tTable: %s,", quote(o.Table))
	}

	return fmt.Sprintf("&migrations.OpCreateModel{\n\tModel: %s,%s\n\tFields: map[string]*state.Field{%s\n\t},\n\tOrder: []string{%s},\n}",
		quote(o.Model), tableField, fields.String(), order.String())
}

func (o *OpCreateModel) RequiredImports() []string {
	imports := baseImports()
	if needsNullableImport(o.Fields) {
		imports = append(imports, "github.com/oapi-codegen/nullable")
	}
	return imports
}
