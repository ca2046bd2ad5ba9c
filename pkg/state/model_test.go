// SPDX-License-Identifier: Apache-2.0

package state

import (
	"reflect"
	"testing"
)

func TestModelEntry_SetFieldPreservesDeclarationOrder(t *testing.T) {
	m := NewModelEntry("users")
	m.SetField("id", &Field{Kind: KindInt, PrimaryKey: true})
	m.SetField("name", &Field{Kind: KindChar, MaxLen: 255})
	m.SetField("email", &Field{Kind: KindChar, MaxLen: 255})

	want := []string{"id", "name", "email"}
	if got := m.FieldNames(); !reflect.DeepEqual(got, want) {
		t.Fatalf("FieldNames = %v, want %v", got, want)
	}

	// Re-setting an existing field must not move it in Order.
	m.SetField("name", &Field{Kind: KindChar, MaxLen: 300})
	if got := m.FieldNames(); !reflect.DeepEqual(got, want) {
		t.Fatalf("FieldNames after re-set = %v, want %v", got, want)
	}
}

func TestModelEntry_DeleteFieldUpdatesOrder(t *testing.T) {
	m := NewModelEntry("users")
	m.SetField("id", &Field{Kind: KindInt, PrimaryKey: true})
	m.SetField("name", &Field{Kind: KindChar, MaxLen: 255})
	m.SetField("email", &Field{Kind: KindChar, MaxLen: 255})

	m.DeleteField("name")

	want := []string{"id", "email"}
	if got := m.FieldNames(); !reflect.DeepEqual(got, want) {
		t.Fatalf("FieldNames after delete = %v, want %v", got, want)
	}
}

func TestModelEntry_RenameFieldKeepsPosition(t *testing.T) {
	m := NewModelEntry("users")
	m.SetField("id", &Field{Kind: KindInt, PrimaryKey: true})
	m.SetField("nm", &Field{Kind: KindChar, MaxLen: 255})
	m.SetField("email", &Field{Kind: KindChar, MaxLen: 255})

	f := m.Fields["nm"]
	delete(m.Fields, "nm")
	m.RenameField("nm", "name")
	m.Fields["name"] = f

	want := []string{"id", "name", "email"}
	if got := m.FieldNames(); !reflect.DeepEqual(got, want) {
		t.Fatalf("FieldNames after rename = %v, want %v", got, want)
	}
}

func TestModelEntry_FieldNamesFallsBackWithoutOrder(t *testing.T) {
	m := &ModelEntry{Table: "users", Fields: map[string]*Field{
		"zebra": {Kind: KindText},
		"apple": {Kind: KindText},
	}}
	want := []string{"apple", "zebra"}
	if got := m.FieldNames(); !reflect.DeepEqual(got, want) {
		t.Fatalf("FieldNames fallback = %v, want %v", got, want)
	}
}

func TestModelEntry_CloneCopiesOrder(t *testing.T) {
	m := NewModelEntry("users")
	m.SetField("b", &Field{Kind: KindText})
	m.SetField("a", &Field{Kind: KindText})

	cp := m.Clone()
	if !reflect.DeepEqual(cp.Order, m.Order) {
		t.Fatalf("Clone().Order = %v, want %v", cp.Order, m.Order)
	}
	cp.Order[0] = "mutated"
	if m.Order[0] == "mutated" {
		t.Fatalf("Clone should not share the Order backing array")
	}
}
