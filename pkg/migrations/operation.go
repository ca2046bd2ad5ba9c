// SPDX-License-Identifier: Apache-2.0

// Package migrations implements the closed operation algebra: a tagged set
// of schema-change operations, each of which knows how to mutate a
// state.State, emit forward/backward SQL through a dialect.Emitter, and
// round-trip to a textual artifact form.
package migrations

import (
	"sort"

	"github.com/relmigrate/relmigrate/pkg/dialect"
	"github.com/relmigrate/relmigrate/pkg/state"
)

// Operation is satisfied by every member of the closed set: CreateModel,
// DropModel, RenameModel, AddField, DropField, AlterField, RenameField,
// AddIndex, DropIndex and RunSQL.
type Operation interface {
	// ApplyToState mutates state's current universe to reflect this
	// operation, independent of any SQL side effect.
	ApplyToState(s *state.State) error

	// ForwardSQL renders the SQL needed to apply this operation. Called
	// with state still reflecting the pre-operation universe.
	ForwardSQL(s *state.State, emitter dialect.Emitter) (string, error)

	// BackwardSQL renders the SQL needed to revert this operation, using
	// state.Prev() to recover the pre-change shape. Called with state
	// still reflecting the post-operation universe (i.e. before Rewind).
	BackwardSQL(s *state.State, emitter dialect.Emitter) (string, error)

	// Serialize renders the operation as a Go composite literal that
	// round-trips through Parse.
	Serialize() string

	// RequiredImports lists the import paths the Serialize() text refers
	// to, so the code generator can render a minimal, exhaustive import
	// block.
	RequiredImports() []string
}

// baseImports are listed for every operation: the migrations package itself
// (for the Op* type) and state. The drop, rename and RunSQL literals do not
// mention state; for them the state import is unused.
func baseImports() []string {
	return []string{
		"github.com/relmigrate/relmigrate/pkg/migrations",
		"github.com/relmigrate/relmigrate/pkg/state",
	}
}

// fieldsToColumns renders a model's fields, in the given declaration order,
// into the Column/ForeignKeyDef intermediate representation a
// dialect.Emitter consumes for CreateTable. order should list every key of
// fields; any name in fields but missing from order is appended
// alphabetically after it, so a caller with no order information still gets
// a deterministic (if not declaration-faithful) result. ManyToMany fields
// are skipped: a M2M relation is represented by its through-table, never by
// a column on either side's own table.
func fieldsToColumns(emitter dialect.Emitter, fields map[string]*state.Field, order []string) ([]dialect.Column, []dialect.ForeignKeyDef) {
	seen := make(map[string]bool, len(order))
	names := make([]string, 0, len(fields))
	for _, name := range order {
		if _, ok := fields[name]; !ok {
			continue
		}
		names = append(names, name)
		seen[name] = true
	}
	var rest []string
	for name := range fields {
		if !seen[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	names = append(names, rest...)

	columns := make([]dialect.Column, 0, len(names))
	var fks []dialect.ForeignKeyDef
	for _, name := range names {
		f := fields[name]
		if f.Kind == state.KindManyToMany {
			continue
		}
		col, fk := emitter.ColumnDef(name, f)
		columns = append(columns, col)
		if fk != nil {
			fks = append(fks, *fk)
		}
	}
	return columns, fks
}

// needsNullableImport reports whether any field in fields carries a literal
// default, which is the only case renderField emits a call into the
// oapi-codegen/nullable package.
func needsNullableImport(fields map[string]*state.Field) bool {
	for _, f := range fields {
		if f.Default.Kind == state.DefaultLiteral {
			return true
		}
	}
	return false
}
