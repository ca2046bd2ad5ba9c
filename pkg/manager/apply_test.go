// SPDX-License-Identifier: Apache-2.0

package manager

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relmigrate/relmigrate/pkg/migrations"
	"github.com/relmigrate/relmigrate/pkg/state"
)

func userCreateModel() *migrations.OpCreateModel {
	return &migrations.OpCreateModel{
		Model: "blog.User",
		Table: "users",
		Fields: map[string]*state.Field{
			"id":   {Kind: state.KindInt, PrimaryKey: true},
			"name": {Kind: state.KindChar, MaxLen: 255},
		},
	}
}

func emailAddField() *migrations.OpAddField {
	return &migrations.OpAddField{
		Model:     "blog.User",
		FieldName: "email",
		Field:     &state.Field{Kind: state.KindChar, MaxLen: 255, Nullable: true},
	}
}

func writeSimpleMigrations(t *testing.T, root string) {
	t.Helper()
	m1 := &migrations.Artifact{Name: "0001_initial", App: "blog", Operations: []migrations.Operation{userCreateModel()}}
	m2 := &migrations.Artifact{
		Name:         "0002_add_email",
		App:          "blog",
		Dependencies: []migrations.Dependency{{App: "blog", Name: "0001_initial"}},
		Operations:   []migrations.Operation{emailAddField()},
	}
	writeMigration(t, root, m1)
	writeMigration(t, root, m2)
}

func TestApplyMigrations_AppliesPendingInOrder(t *testing.T) {
	root := t.TempDir()
	writeSimpleMigrations(t, root)

	mgr := New(root, root, newTestDB(t), newTestEmitter())
	ctx := context.Background()

	results, err := mgr.ApplyMigrations(ctx, "")
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "0001_initial", results[0].Name)
	assert.Equal(t, "0002_add_email", results[1].Name)

	applied, err := mgr.Applied(ctx)
	require.NoError(t, err)
	assert.True(t, applied[AppliedKey{App: "blog", Name: "0001_initial"}])
	assert.True(t, applied[AppliedKey{App: "blog", Name: "0002_add_email"}])

	// Re-running applies nothing further: the ledger prefix already covers
	// the full discovered graph.
	results, err = mgr.ApplyMigrations(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestApplyMigrations_LedgerRecoveryAfterPartialApply(t *testing.T) {
	// m1, m2 already applied; a fresh Manager instance against the same
	// database discovers only the remaining migration as pending.
	root := t.TempDir()
	conn := newTestDB(t)
	emitter := newTestEmitter()
	ctx := context.Background()

	m1 := &migrations.Artifact{Name: "0001_initial", App: "blog", Operations: []migrations.Operation{userCreateModel()}}
	m2 := &migrations.Artifact{
		Name:         "0002_add_email",
		App:          "blog",
		Dependencies: []migrations.Dependency{{App: "blog", Name: "0001_initial"}},
		Operations:   []migrations.Operation{emailAddField()},
	}
	writeMigration(t, root, m1)
	writeMigration(t, root, m2)

	mgr := New(root, root, conn, emitter)
	_, err := mgr.ApplyMigrations(ctx, "")
	require.NoError(t, err)

	m3 := &migrations.Artifact{
		Name:         "0003_add_bio",
		App:          "blog",
		Dependencies: []migrations.Dependency{{App: "blog", Name: "0002_add_email"}},
		Operations: []migrations.Operation{
			&migrations.OpAddField{Model: "blog.User", FieldName: "bio", Field: &state.Field{Kind: state.KindText, Nullable: true}},
		},
	}
	writeMigration(t, root, m3)

	// Simulate restart with a fresh Manager value over the same connection.
	restarted := New(root, root, conn, emitter)
	results, err := restarted.ApplyMigrations(ctx, "")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "0003_add_bio", results[0].Name)
}

func TestRevertMigration_SingleArtifactRoundTrip(t *testing.T) {
	// Revert m2 only, leaving m1 applied.
	root := t.TempDir()
	writeSimpleMigrations(t, root)

	mgr := New(root, root, newTestDB(t), newTestEmitter())
	ctx := context.Background()

	_, err := mgr.ApplyMigrations(ctx, "")
	require.NoError(t, err)

	err = mgr.RevertMigration(ctx, "blog", "0002_add_email")
	require.NoError(t, err)

	applied, err := mgr.Applied(ctx)
	require.NoError(t, err)
	assert.True(t, applied[AppliedKey{App: "blog", Name: "0001_initial"}])
	assert.False(t, applied[AppliedKey{App: "blog", Name: "0002_add_email"}])
}

func TestGetPendingMigrationsSQL_DoesNotTouchDatabase(t *testing.T) {
	root := t.TempDir()
	writeSimpleMigrations(t, root)

	mgr := New(root, root, newTestDB(t), newTestEmitter())
	ctx := context.Background()

	sql, err := mgr.GetPendingMigrationsSQL(ctx, "")
	require.NoError(t, err)
	assert.Contains(t, sql, "-- Migration: blog -> 0001_initial")
	assert.Contains(t, sql, "-- Migration: blog -> 0002_add_email")
	assert.Contains(t, sql, "CREATE TABLE")

	// The ledger table must not have been created by a read-only dry run.
	_, err = mgr.Applied(ctx)
	require.NoError(t, err)
	applied, err := mgr.Applied(ctx)
	require.NoError(t, err)
	assert.Empty(t, applied)
}
