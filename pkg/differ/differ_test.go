// SPDX-License-Identifier: Apache-2.0

package differ

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relmigrate/relmigrate/pkg/migrations"
	"github.com/relmigrate/relmigrate/pkg/state"
)

func intField() *state.Field { return &state.Field{Kind: state.KindInt, PrimaryKey: true} }

func charField(n int) *state.Field { return &state.Field{Kind: state.KindChar, MaxLen: n} }

func fkField(target string, nullable bool) *state.Field {
	return &state.Field{Kind: state.KindForeignKey, Nullable: nullable, ForeignKey: &state.ForeignKeyRef{TargetModel: target}}
}

func emptyPriorState() *state.State {
	s := state.New()
	s.Snapshot("initial")
	return s
}

// Fresh app, single model.
func TestDiff_FreshModel(t *testing.T) {
	target := state.NewUniverse()
	target.SetModel("blog.User", &state.ModelEntry{
		Table: "users",
		Fields: map[string]*state.Field{
			"id":         intField(),
			"name":       charField(255),
			"email":      {Kind: state.KindChar, MaxLen: 255, Unique: true},
			"created_at": {Kind: state.KindDatetime, Default: state.Default{Kind: state.DefaultAutoNowAdd}},
		},
	})

	ops, _, err := Diff(emptyPriorState(), target)
	require.NoError(t, err)
	require.Len(t, ops, 1)
	create, ok := ops[0].(*migrations.OpCreateModel)
	require.True(t, ok)
	assert.Equal(t, "blog.User", create.Model)
	assert.Len(t, create.Fields, 4)
}

// Cycle via nullable FK resolves as CreateModel(A), CreateModel(B, [a]),
// AddField(A, b).
func TestDiff_NullableCycle(t *testing.T) {
	target := state.NewUniverse()
	target.SetModel("app.A", &state.ModelEntry{Table: "a", Fields: map[string]*state.Field{
		"id": intField(),
		"b":  fkField("app.B", true),
	}})
	target.SetModel("app.B", &state.ModelEntry{Table: "b", Fields: map[string]*state.Field{
		"id": intField(),
		"a":  fkField("app.A", true),
	}})

	ops, _, err := Diff(emptyPriorState(), target)
	require.NoError(t, err)
	require.Len(t, ops, 3)

	createA, ok := ops[0].(*migrations.OpCreateModel)
	require.True(t, ok)
	assert.Equal(t, "app.A", createA.Model)
	assert.Len(t, createA.Fields, 1, "field b must be deferred out of CreateModel(A)")
	assert.Contains(t, createA.Fields, "id")

	createB, ok := ops[1].(*migrations.OpCreateModel)
	require.True(t, ok)
	assert.Equal(t, "app.B", createB.Model)
	assert.Len(t, createB.Fields, 2)
	assert.Contains(t, createB.Fields, "a")

	addB, ok := ops[2].(*migrations.OpAddField)
	require.True(t, ok)
	assert.Equal(t, "app.A", addB.Model)
	assert.Equal(t, "b", addB.FieldName)
}

// Cycle via non-nullable FK is unresolvable.
func TestDiff_NonNullableCycle(t *testing.T) {
	target := state.NewUniverse()
	target.SetModel("app.A", &state.ModelEntry{Table: "a", Fields: map[string]*state.Field{
		"id": intField(),
		"b":  fkField("app.B", false),
	}})
	target.SetModel("app.B", &state.ModelEntry{Table: "b", Fields: map[string]*state.Field{
		"id": intField(),
		"a":  fkField("app.A", false),
	}})

	_, _, err := Diff(emptyPriorState(), target)
	require.Error(t, err)
	var cycleErr CycleError
	require.ErrorAs(t, err, &cycleErr)
	assert.ElementsMatch(t, []string{"app.A", "app.B"}, cycleErr.Models)
}

// Field-level change chain.
func TestDiff_FieldChangeChain(t *testing.T) {
	prior := state.New()
	prior.Current().SetModel("blog.Blog", &state.ModelEntry{Table: "blogs", Fields: map[string]*state.Field{
		"id":   intField(),
		"slug": charField(255),
	}})
	prior.Snapshot("initial")

	target := state.NewUniverse()
	target.SetModel("blog.Blog", &state.ModelEntry{Table: "blogs", Fields: map[string]*state.Field{
		"id":      intField(),
		"slug":    {Kind: state.KindChar, MaxLen: 255, Unique: true},
		"summary": {Kind: state.KindChar, MaxLen: 255, Nullable: true},
	}})
	target.SetModel("blog.Comment", &state.ModelEntry{Table: "comments", Fields: map[string]*state.Field{
		"id":   intField(),
		"blog": fkField("blog.Blog", false),
	}})

	ops, _, err := Diff(prior, target)
	require.NoError(t, err)
	require.Len(t, ops, 3)

	create, ok := ops[0].(*migrations.OpCreateModel)
	require.True(t, ok)
	assert.Equal(t, "blog.Comment", create.Model)

	addSummary, ok := ops[1].(*migrations.OpAddField)
	require.True(t, ok)
	assert.Equal(t, "blog.Blog", addSummary.Model)
	assert.Equal(t, "summary", addSummary.FieldName)

	alterSlug, ok := ops[2].(*migrations.OpAlterField)
	require.True(t, ok)
	assert.Equal(t, "blog.Blog", alterSlug.Model)
	assert.Equal(t, "slug", alterSlug.FieldName)
}

// Diff stability: applying a diff's operations leaves zero further diffs
// against the same target.
func TestDiff_StabilityAfterApply(t *testing.T) {
	target := state.NewUniverse()
	target.SetModel("app.A", &state.ModelEntry{Table: "a", Fields: map[string]*state.Field{
		"id": intField(),
		"b":  fkField("app.B", true),
	}})
	target.SetModel("app.B", &state.ModelEntry{Table: "b", Fields: map[string]*state.Field{
		"id": intField(),
		"a":  fkField("app.A", true),
	}})

	s := emptyPriorState()
	ops, _, err := Diff(s, target)
	require.NoError(t, err)

	for _, op := range ops {
		require.NoError(t, s.Apply(op))
		s.Snapshot("diff")
	}

	ops2, _, err := Diff(s, target)
	require.NoError(t, err)
	assert.Empty(t, ops2)
}

func TestDiff_RemovedModel(t *testing.T) {
	prior := state.New()
	prior.Current().SetModel("app.Old", &state.ModelEntry{Table: "olds", Fields: map[string]*state.Field{
		"id": intField(),
	}})
	prior.Snapshot("initial")

	ops, _, err := Diff(prior, state.NewUniverse())
	require.NoError(t, err)
	require.Len(t, ops, 1)
	drop, ok := ops[0].(*migrations.OpDropModel)
	require.True(t, ok)
	assert.Equal(t, "app.Old", drop.Model)
}

func TestDiff_IndexChanges(t *testing.T) {
	prior := state.New()
	prior.Current().SetModel("app.M", &state.ModelEntry{
		Table: "ms",
		Fields: map[string]*state.Field{
			"id":   intField(),
			"name": charField(255),
		},
		Indexes: []state.Index{{Name: "idx_old", Fields: []string{"name"}}},
	})
	prior.Snapshot("initial")

	target := state.NewUniverse()
	target.SetModel("app.M", &state.ModelEntry{
		Table: "ms",
		Fields: map[string]*state.Field{
			"id":   intField(),
			"name": charField(255),
		},
		Indexes: []state.Index{{Name: "idx_new", Fields: []string{"name"}, Unique: true}},
	})

	ops, _, err := Diff(prior, target)
	require.NoError(t, err)
	require.Len(t, ops, 2)
	drop, ok := ops[0].(*migrations.OpDropIndex)
	require.True(t, ok)
	assert.Equal(t, "idx_old", drop.IndexName)
	add, ok := ops[1].(*migrations.OpAddIndex)
	require.True(t, ok)
	assert.Equal(t, "idx_new", add.Index.Name)
}

func TestDiff_CrossAppDependency(t *testing.T) {
	target := state.NewUniverse()
	target.SetModel("accounts.User", &state.ModelEntry{Table: "users", Fields: map[string]*state.Field{
		"id": intField(),
	}})
	target.SetModel("billing.Invoice", &state.ModelEntry{Table: "invoices", Fields: map[string]*state.Field{
		"id":   intField(),
		"user": fkField("accounts.User", false),
	}})

	_, appDeps, err := Diff(emptyPriorState(), target)
	require.NoError(t, err)
	assert.Equal(t, []string{"accounts"}, appDeps["billing"])
}
