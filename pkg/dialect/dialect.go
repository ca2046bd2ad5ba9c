// SPDX-License-Identifier: Apache-2.0

// Package dialect translates a typed schema operation and the current model
// state into dialect-specific SQL text. Every Emitter method is a pure
// function of its arguments: two calls with identical inputs produce
// byte-identical output, which is what lets the differ and the manager's
// dry-run SQL dump be deterministic and testable by direct string
// comparison.
package dialect

import (
	"fmt"

	"github.com/relmigrate/relmigrate/pkg/state"
)

// Column is the emitter-facing intermediate representation of a field,
// produced by Emitter.ColumnDef from a state.Field. It is deliberately
// dialect-agnostic on the Go side; only the emitter that produced it knows
// how SQLType and Default render as SQL text for its dialect.
type Column struct {
	Name       string
	SQLType    string
	Nullable   bool
	Unique     bool
	PrimaryKey bool
	Default    *string // pre-rendered SQL literal/expression, nil if absent
}

// ForeignKeyDef is the emitter-facing representation of a ForeignKey field's
// referential payload.
type ForeignKeyDef struct {
	Column       string
	TargetTable  string
	TargetColumn string
	OnDelete     string
}

// Emitter is the per-dialect SQL surface a schema operation needs. Every
// method is pure and deterministic.
type Emitter interface {
	// Name is the dialect's capability tag, e.g. "sqlite" or "postgres".
	Name() string

	// ColumnDef converts a field descriptor into this dialect's column
	// intermediate representation and, for ForeignKey fields, the
	// associated foreign key definition.
	ColumnDef(fieldName string, f *state.Field) (Column, *ForeignKeyDef)

	// CreateTable renders a single CREATE TABLE statement.
	CreateTable(table string, columns []Column, foreignKeys []ForeignKeyDef) string

	// DropTable renders DROP TABLE <table>.
	DropTable(table string) string

	// RenameTable renders ALTER TABLE <old> RENAME TO <new>.
	RenameTable(oldName, newName string) string

	// AddColumn renders ALTER TABLE ... ADD COLUMN ..., including an inline
	// or out-of-line foreign key clause when fk is non-nil.
	AddColumn(table string, col Column, fk *ForeignKeyDef) string

	// DropColumn renders ALTER TABLE ... DROP COLUMN <col>.
	DropColumn(table, col string) string

	// AlterColumn renders the dialect-specific sequence needed to change a
	// column from prev to next. Postgres emits one statement for each aspect
	// of (prev, next) that differs, joined by ";\n"; sqlite always emits
	// its fixed table-rewrite sequence regardless of which fields differ.
	AlterColumn(table, col string, prev, next Column, prevFK, nextFK *ForeignKeyDef, allColumns []Column, allFKs []ForeignKeyDef) string

	// RenameColumn renders ALTER TABLE ... RENAME COLUMN ... TO ... .
	RenameColumn(table, oldName, newName string) string

	// AddIndex renders CREATE [UNIQUE] INDEX <name> ON <table> (<cols>).
	AddIndex(table, indexName string, columns []string, unique bool) string

	// DropIndex renders DROP INDEX <name>.
	DropIndex(name string) string

	// LedgerCreateTable renders the DDL that creates the
	// tortoise_migrations ledger table, using the dialect-appropriate
	// primary-key autoincrement syntax.
	LedgerCreateTable(table string) string
}

// Registry maps dialect names to their Emitter, so additional dialects can
// register without changing the interface.
type Registry map[string]Emitter

// NewRegistry returns a Registry pre-populated with the two built-in
// dialects: sqlite and postgres.
func NewRegistry() Registry {
	return Registry{
		"sqlite":   &SQLite{},
		"postgres": &Postgres{},
	}
}

// Get looks up a dialect by name.
func (r Registry) Get(name string) (Emitter, error) {
	e, ok := r[name]
	if !ok {
		return nil, fmt.Errorf("unknown dialect %q", name)
	}
	return e, nil
}

// Register adds or overrides a dialect in the registry.
func (r Registry) Register(e Emitter) {
	r[e.Name()] = e
}
