// SPDX-License-Identifier: Apache-2.0

package state

import "testing"

// addModelOp is a minimal Applier standing in for a real migrations
// operation, exercising Apply/Snapshot/Prev/Rewind without pulling in
// pkg/migrations here (that package already exercises the real thing via
// its own ApplyToState implementations).
type addModelOp struct {
	app, name, table string
}

func (o addModelOp) ApplyToState(s *State) error {
	models := s.current[o.app]
	if models == nil {
		models = map[string]*ModelEntry{}
		s.current[o.app] = models
	}
	models[o.name] = &ModelEntry{Table: o.table, Fields: map[string]*Field{}}
	return nil
}

func TestState_SnapshotPrevRewind(t *testing.T) {
	s := New()
	s.Snapshot("initial")

	if err := s.Apply(addModelOp{"blog", "Post", "blog_post"}); err != nil {
		t.Fatalf("apply: %v", err)
	}
	s.Snapshot("0001_initial")

	if got := s.GetTableName("blog.Post"); got != "blog_post" {
		t.Fatalf("GetTableName = %q, want blog_post", got)
	}
	if s.Prev().Model("blog.Post") != nil {
		t.Fatalf("Prev() should not yet contain blog.Post")
	}

	if err := s.Apply(addModelOp{"blog", "Comment", "blog_comment"}); err != nil {
		t.Fatalf("apply: %v", err)
	}
	s.Snapshot("0002_add_comment")

	if s.Prev().Model("blog.Post") == nil {
		t.Fatalf("Prev() should contain blog.Post once Comment is the latest snapshot")
	}
	if s.Prev().Model("blog.Comment") != nil {
		t.Fatalf("Prev() should not yet contain blog.Comment")
	}

	s.Rewind()
	if s.GetModel("blog.Comment") != nil {
		t.Fatalf("Rewind should have undone the Comment model")
	}
	if s.GetTableName("blog.Post") != "blog_post" {
		t.Fatalf("Rewind should not affect the Post model")
	}
}

type fakeArtifact struct {
	name string
	ops  []Applier
}

func (a fakeArtifact) ArtifactName() string    { return a.name }
func (a fakeArtifact) StateOperations() []Applier { return a.ops }

func TestBuildFromMigrations_ReplaysInOrder(t *testing.T) {
	artifacts := []MigrationLike{
		fakeArtifact{name: "0001_initial", ops: []Applier{addModelOp{"blog", "Post", "blog_post"}}},
		fakeArtifact{name: "0002_add_comment", ops: []Applier{addModelOp{"blog", "Comment", "blog_comment"}}},
	}

	s, err := BuildFromMigrations(artifacts)
	if err != nil {
		t.Fatalf("BuildFromMigrations: %v", err)
	}
	if s.GetModel("blog.Post") == nil || s.GetModel("blog.Comment") == nil {
		t.Fatalf("expected both models present after replay")
	}
}
