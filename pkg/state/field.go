// SPDX-License-Identifier: Apache-2.0

// Package state holds the versioned, in-memory representation of the model
// universe: the set of apps, models, fields and indexes as they stood after
// each applied migration operation. It never talks to a database; the prior
// state is derived purely from the migration chain, never from introspecting
// a live schema.
package state

import (
	"fmt"

	"github.com/oapi-codegen/nullable"
)

// Kind is the closed set of field-type tags a Field may carry.
type Kind string

const (
	KindInt        Kind = "int"
	KindBigInt     Kind = "bigint"
	KindChar       Kind = "char"
	KindText       Kind = "text"
	KindBool       Kind = "bool"
	KindFloat      Kind = "float"
	KindDecimal    Kind = "decimal"
	KindDatetime   Kind = "datetime"
	KindDate       Kind = "date"
	KindJSON       Kind = "json"
	KindIntEnum    Kind = "int_enum"
	KindCharEnum   Kind = "char_enum"
	KindForeignKey Kind = "fk"
	KindManyToMany Kind = "m2m"
)

// OnDelete is the closed set of referential actions a ForeignKey field may
// declare for its target row's deletion.
type OnDelete string

const (
	OnDeleteCascade  OnDelete = "CASCADE"
	OnDeleteSetNull  OnDelete = "SET NULL"
	OnDeleteRestrict OnDelete = "RESTRICT"
	OnDeleteNoAction OnDelete = "NO ACTION"
)

// DefaultKind distinguishes a concrete stored literal from the two
// ORM-callable markers. The core never invokes a callable: it only ever
// round-trips the marker so the dialect emitter can render CURRENT_TIMESTAMP
// for auto_now/auto_now_add and otherwise treats a callable default as
// "no SQL-level default".
type DefaultKind string

const (
	DefaultNone         DefaultKind = ""
	DefaultLiteral      DefaultKind = "literal"
	DefaultAutoNow      DefaultKind = "auto_now"
	DefaultAutoNowAdd   DefaultKind = "auto_now_add"
	DefaultCallableNone DefaultKind = "callable"
)

// Default models a field's default-value modifier. Kind selects which of the
// four forms applies, or DefaultNone for "no default at all"; Literal carries
// the value only when Kind == DefaultLiteral. Within a literal default the
// nullable.Nullable wrapper distinguishes an explicit SQL NULL default
// (Literal holds null) from a concrete value such as the empty string.
type Default struct {
	Kind    DefaultKind
	Literal nullable.Nullable[string]
}

// IsSet reports whether any default modifier, of any kind, was declared.
func (d Default) IsSet() bool {
	return d.Kind != DefaultNone
}

// ForeignKeyRef describes the relational-kind-specific payload of a
// ForeignKey field.
type ForeignKeyRef struct {
	TargetModel string // "app.Model"
	ToColumn    string // defaults to the target's primary key column when empty
	OnDelete    OnDelete
}

// ManyToManyRef describes the relational-kind-specific payload of a
// ManyToMany field.
type ManyToManyRef struct {
	TargetModel string // "app.Model"
	Through     string // junction table name
}

// Field is a field descriptor: a closed kind tag plus modifiers. Only the
// members relevant to Kind are meaningful; others are zero.
type Field struct {
	Kind Kind

	// Char/CharEnum
	MaxLen int

	// Decimal
	Digits int
	Places int

	// Relational
	ForeignKey  *ForeignKeyRef
	ManyToMany  *ManyToManyRef
	EnumValues  []string // IntEnum/CharEnum

	// Modifiers
	Nullable   bool
	Unique     bool
	PrimaryKey bool
	Default    Default

	// SourceColumnOverride, when non-empty, is the concrete column name;
	// otherwise it is derived from the field name (and, for ForeignKey,
	// suffixed "_id").
	SourceColumnOverride string
}

// ColumnName derives the concrete database column name for this field given
// its field name: an explicit override wins; otherwise a ForeignKey field
// gets "<field_name>_id"; everything else uses the field name verbatim.
func (f *Field) ColumnName(fieldName string) string {
	if f.SourceColumnOverride != "" {
		return f.SourceColumnOverride
	}
	if f.Kind == KindForeignKey {
		return fieldName + "_id"
	}
	return fieldName
}

// Equal reports whether two field descriptors are structurally identical.
// Used by the differ to detect AlterField candidates and by serialize
// round-trip tests.
func (f *Field) Equal(o *Field) bool {
	if f == nil || o == nil {
		return f == o
	}
	if f.Kind != o.Kind || f.MaxLen != o.MaxLen || f.Digits != o.Digits || f.Places != o.Places {
		return false
	}
	if f.Nullable != o.Nullable || f.Unique != o.Unique || f.PrimaryKey != o.PrimaryKey {
		return false
	}
	if f.SourceColumnOverride != o.SourceColumnOverride {
		return false
	}
	if !equalStrings(f.EnumValues, o.EnumValues) {
		return false
	}
	if !equalDefault(f.Default, o.Default) {
		return false
	}
	if (f.ForeignKey == nil) != (o.ForeignKey == nil) {
		return false
	}
	if f.ForeignKey != nil && *f.ForeignKey != *o.ForeignKey {
		return false
	}
	if (f.ManyToMany == nil) != (o.ManyToMany == nil) {
		return false
	}
	if f.ManyToMany != nil && *f.ManyToMany != *o.ManyToMany {
		return false
	}
	return true
}

func equalDefault(a, b Default) bool {
	if a.Kind != b.Kind {
		return false
	}
	if a.Kind != DefaultLiteral {
		return true
	}
	av, aok := a.Literal.Get()
	bv, bok := b.Literal.Get()
	return aok == bok && av == bv
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of the field descriptor, used when snapshotting
// state.
func (f *Field) Clone() *Field {
	if f == nil {
		return nil
	}
	cp := *f
	if f.ForeignKey != nil {
		fk := *f.ForeignKey
		cp.ForeignKey = &fk
	}
	if f.ManyToMany != nil {
		m2m := *f.ManyToMany
		cp.ManyToMany = &m2m
	}
	if f.EnumValues != nil {
		cp.EnumValues = append([]string(nil), f.EnumValues...)
	}
	return &cp
}

// Validate checks a field descriptor is internally consistent (the kind-
// specific payload is present when required). It does not check
// cross-model invariants (FK targets existing) — that is the differ/state's
// job since it requires the surrounding universe.
func (f *Field) Validate() error {
	switch f.Kind {
	case KindForeignKey:
		if f.ForeignKey == nil {
			return fmt.Errorf("field of kind %q requires a ForeignKey payload", f.Kind)
		}
	case KindManyToMany:
		if f.ManyToMany == nil {
			return fmt.Errorf("field of kind %q requires a ManyToMany payload", f.Kind)
		}
	case KindChar, KindCharEnum:
		if f.MaxLen <= 0 {
			return fmt.Errorf("field of kind %q requires a positive max length", f.Kind)
		}
	case KindDecimal:
		if f.Digits <= 0 || f.Places < 0 || f.Places > f.Digits {
			return fmt.Errorf("field of kind %q has invalid digits/places", f.Kind)
		}
	}
	return nil
}
