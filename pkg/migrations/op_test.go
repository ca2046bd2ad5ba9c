// SPDX-License-Identifier: Apache-2.0

package migrations

import (
	"strings"
	"testing"

	"github.com/relmigrate/relmigrate/pkg/dialect"
	"github.com/relmigrate/relmigrate/pkg/state"
)

func TestOpCreateModel_ApplyAndSQL(t *testing.T) {
	op := &OpCreateModel{
		Model: "blog.Post",
		Fields: map[string]*state.Field{
			"id":    {Kind: state.KindInt, PrimaryKey: true},
			"title": {Kind: state.KindChar, MaxLen: 200},
		},
	}

	s := state.New()
	s.Snapshot("initial")
	if err := s.Apply(op); err != nil {
		t.Fatalf("ApplyToState: %v", err)
	}
	s.Snapshot("0001_initial")

	if got := s.GetTableName("blog.Post"); got != "post" {
		t.Fatalf("GetTableName = %q, want post", got)
	}

	emitter := &dialect.SQLite{}
	forward, err := op.ForwardSQL(s, emitter)
	if err != nil {
		t.Fatalf("ForwardSQL: %v", err)
	}
	if !strings.Contains(forward, "CREATE TABLE") || !strings.Contains(forward, `"post"`) {
		t.Fatalf("ForwardSQL = %q, missing CREATE TABLE post", forward)
	}

	backward, err := op.BackwardSQL(s, emitter)
	if err != nil {
		t.Fatalf("BackwardSQL: %v", err)
	}
	if !strings.Contains(backward, "DROP TABLE") || !strings.Contains(backward, `"post"`) {
		t.Fatalf("BackwardSQL = %q, missing DROP TABLE post", backward)
	}
}

func TestOpCreateModel_ForwardSQL_ExactText(t *testing.T) {
	op := &OpCreateModel{
		Model: "app.User",
		Table: "users",
		Fields: map[string]*state.Field{
			"id":         {Kind: state.KindInt, PrimaryKey: true},
			"name":       {Kind: state.KindChar, MaxLen: 255},
			"email":      {Kind: state.KindChar, MaxLen: 255, Unique: true},
			"created_at": {Kind: state.KindDatetime, Default: state.Default{Kind: state.DefaultAutoNowAdd}},
		},
		Order: []string{"id", "name", "email", "created_at"},
	}

	s := state.New()
	s.Snapshot("initial")
	if err := s.Apply(op); err != nil {
		t.Fatalf("ApplyToState: %v", err)
	}
	s.Snapshot("0001_initial")

	forward, err := op.ForwardSQL(s, &dialect.SQLite{})
	if err != nil {
		t.Fatalf("ForwardSQL: %v", err)
	}
	want := `CREATE TABLE "users" (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name VARCHAR(255) NOT NULL,
    email VARCHAR(255) NOT NULL UNIQUE,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);`
	if forward != want {
		t.Fatalf("ForwardSQL =\n%s\nwant\n%s", forward, want)
	}
}

func TestOpAddField_RequiresExistingModel(t *testing.T) {
	op := &OpAddField{
		Model:     "blog.Post",
		FieldName: "summary",
		Field:     &state.Field{Kind: state.KindText},
	}

	s := state.New()
	s.Snapshot("initial")
	if err := s.Apply(op); err == nil {
		t.Fatalf("expected ApplyToState to fail when blog.Post does not exist")
	}
}

func TestOpAddField_AppliesAndEmitsAddColumn(t *testing.T) {
	create := &OpCreateModel{
		Model:  "blog.Post",
		Fields: map[string]*state.Field{"id": {Kind: state.KindInt, PrimaryKey: true}},
	}
	add := &OpAddField{
		Model:     "blog.Post",
		FieldName: "summary",
		Field:     &state.Field{Kind: state.KindText},
	}

	s := state.New()
	s.Snapshot("initial")
	if err := s.Apply(create); err != nil {
		t.Fatalf("create ApplyToState: %v", err)
	}
	s.Snapshot("0001_initial")
	if err := s.Apply(add); err != nil {
		t.Fatalf("add ApplyToState: %v", err)
	}
	s.Snapshot("0002_add_summary")

	if s.GetField("blog.Post", "summary") == nil {
		t.Fatalf("expected summary field to be present after AddField")
	}

	emitter := &dialect.SQLite{}
	forward, err := add.ForwardSQL(s, emitter)
	if err != nil {
		t.Fatalf("ForwardSQL: %v", err)
	}
	if !strings.Contains(forward, "ALTER TABLE") || !strings.Contains(forward, "summary") {
		t.Fatalf("ForwardSQL = %q, expected ALTER TABLE adding summary", forward)
	}
}
