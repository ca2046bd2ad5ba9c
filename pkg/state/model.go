// SPDX-License-Identifier: Apache-2.0

package state

import (
	"fmt"
	"sort"

	"github.com/relmigrate/relmigrate/internal/slugify"
)

// Index is a named (or implicitly named) index over one or more fields.
type Index struct {
	Name   string
	Fields []string
	Unique bool
}

// DefaultName derives the deterministic index name for a model's table when
// the index was not explicitly named: "idx_<table>_<first_field>_<6-hex-hash-of-field-list>".
func (ix Index) DefaultName(table string) string {
	if len(ix.Fields) == 0 {
		return fmt.Sprintf("idx_%s_%s", table, slugify.ShortHash(6, table))
	}
	return fmt.Sprintf("idx_%s_%s_%s", table, ix.Fields[0], slugify.ShortHash(6, ix.Fields...))
}

// ResolvedName returns ix.Name if set, otherwise DefaultName(table).
func (ix Index) ResolvedName(table string) string {
	if ix.Name != "" {
		return ix.Name
	}
	return ix.DefaultName(table)
}

// ModelEntry is a table name, its fields keyed by field name, the
// declaration order those fields were added in, and the model's declared
// indexes.
type ModelEntry struct {
	Table   string
	Fields  map[string]*Field
	Order   []string // field names in declaration order; column emission follows this, not map order
	Indexes []Index
}

// NewModelEntry returns an empty model entry for the given table.
func NewModelEntry(table string) *ModelEntry {
	return &ModelEntry{Table: table, Fields: make(map[string]*Field)}
}

// SetField inserts or replaces a field, appending name to Order the first
// time it is seen so column emission follows declaration order rather than
// map order.
func (m *ModelEntry) SetField(name string, f *Field) {
	if _, exists := m.Fields[name]; !exists {
		m.Order = append(m.Order, name)
	}
	m.Fields[name] = f
}

// DeleteField removes a field and its entry in Order.
func (m *ModelEntry) DeleteField(name string) {
	if _, exists := m.Fields[name]; !exists {
		return
	}
	delete(m.Fields, name)
	for i, n := range m.Order {
		if n == name {
			m.Order = append(m.Order[:i], m.Order[i+1:]...)
			break
		}
	}
}

// RenameField updates Order in place when a field's key changes, preserving
// its declaration position. It does not touch m.Fields; callers move the
// map entry themselves.
func (m *ModelEntry) RenameField(oldName, newName string) {
	for i, n := range m.Order {
		if n == oldName {
			m.Order[i] = newName
			return
		}
	}
}

// Clone returns a deep copy of the model entry.
func (m *ModelEntry) Clone() *ModelEntry {
	if m == nil {
		return nil
	}
	cp := &ModelEntry{
		Table:   m.Table,
		Fields:  make(map[string]*Field, len(m.Fields)),
		Order:   append([]string(nil), m.Order...),
		Indexes: append([]Index(nil), m.Indexes...),
	}
	for name, f := range m.Fields {
		cp.Fields[name] = f.Clone()
	}
	return cp
}

// ColumnName returns the concrete column name for fieldName, or "" if the
// field does not exist.
func (m *ModelEntry) ColumnName(fieldName string) string {
	f, ok := m.Fields[fieldName]
	if !ok {
		return ""
	}
	return f.ColumnName(fieldName)
}

// FieldByColumn computes the inverse of ColumnName on demand rather than
// maintaining a second index.
func (m *ModelEntry) FieldByColumn(column string) (string, *Field) {
	for name, f := range m.Fields {
		if f.ColumnName(name) == column {
			return name, f
		}
	}
	return "", nil
}

// FieldNames returns the model's field names in declaration order when
// Order is populated, falling back to alphabetical for entries built
// without it (e.g. constructed directly from a bare Fields map). This is
// the stable iteration order the differ and code generator rely on, and the
// order CreateTable/AddColumn emit columns in.
func (m *ModelEntry) FieldNames() []string {
	if len(m.Order) == len(m.Fields) {
		return append([]string(nil), m.Order...)
	}
	names := make([]string, 0, len(m.Fields))
	for name := range m.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IndexByName returns the index with the given resolved name, or (Index{},
// false) if none matches.
func (m *ModelEntry) IndexByName(name string) (Index, bool) {
	for _, ix := range m.Indexes {
		if ix.ResolvedName(m.Table) == name {
			return ix, true
		}
	}
	return Index{}, false
}

// Universe is the full model set: app -> model name -> model entry. It is
// the shape both the applied-migration-derived State and a target schema
// from the model registry share, so the differ can compare them directly.
type Universe map[string]map[string]*ModelEntry

// NewUniverse returns an empty universe.
func NewUniverse() Universe {
	return make(Universe)
}

// Clone returns a deep copy of the universe.
func (u Universe) Clone() Universe {
	cp := make(Universe, len(u))
	for app, models := range u {
		cpModels := make(map[string]*ModelEntry, len(models))
		for name, m := range models {
			cpModels[name] = m.Clone()
		}
		cp[app] = cpModels
	}
	return cp
}

// Apps returns the app names present in the universe, sorted.
func (u Universe) Apps() []string {
	apps := make([]string, 0, len(u))
	for app := range u {
		apps = append(apps, app)
	}
	sort.Strings(apps)
	return apps
}

// Model returns the entry for "app.Model", or nil if it does not exist.
func (u Universe) Model(ref string) *ModelEntry {
	app, model := splitRef(ref)
	models, ok := u[app]
	if !ok {
		return nil
	}
	return models[model]
}

// SetModel inserts or replaces the entry for "app.Model".
func (u Universe) SetModel(ref string, entry *ModelEntry) {
	app, model := splitRef(ref)
	if u[app] == nil {
		u[app] = make(map[string]*ModelEntry)
	}
	u[app][model] = entry
}

// DeleteModel removes "app.Model" from the universe.
func (u Universe) DeleteModel(ref string) {
	app, model := splitRef(ref)
	if models, ok := u[app]; ok {
		delete(models, model)
	}
}

// ModelRefs returns every "app.Model" reference in the universe, sorted.
func (u Universe) ModelRefs() []string {
	var refs []string
	for app, models := range u {
		for name := range models {
			refs = append(refs, app+"."+name)
		}
	}
	sort.Strings(refs)
	return refs
}

// SplitRef splits a "app.Model" reference into its app and model-name
// components. Exported so pkg/migrations can derive a renamed ref without
// pkg/state exposing its map layout.
func SplitRef(ref string) (app, model string) {
	return splitRef(ref)
}

// RenameModelKey moves ref's entry to newModelName within the same app,
// leaving the table name untouched. Used by the RenameModel operation when
// only the model-name component changes.
func (u Universe) RenameModelKey(ref, newModelName string) {
	app, model := splitRef(ref)
	models, ok := u[app]
	if !ok {
		return
	}
	entry, ok := models[model]
	if !ok {
		return
	}
	delete(models, model)
	models[newModelName] = entry
}

func splitRef(ref string) (app, model string) {
	for i := 0; i < len(ref); i++ {
		if ref[i] == '.' {
			return ref[:i], ref[i+1:]
		}
	}
	return "", ref
}
