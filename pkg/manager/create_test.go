// SPDX-License-Identifier: Apache-2.0

package manager

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relmigrate/relmigrate/pkg/migrations"
	"github.com/relmigrate/relmigrate/pkg/state"
)

func writeGoMod(t *testing.T, root string) {
	t.Helper()
	content := "module github.com/example/blogapp\n\ngo 1.22\n"
	require.NoError(t, os.WriteFile(filepath.Join(root, "go.mod"), []byte(content), 0o644))
}

func TestCreateMigration_FreshModelWritesFile(t *testing.T) {
	root := t.TempDir()
	writeGoMod(t, root)
	migrationsRoot := filepath.Join(root, "migrations")
	require.NoError(t, os.MkdirAll(migrationsRoot, 0o755))

	mgr := New(migrationsRoot, root, newTestDB(t), newTestEmitter())

	target := state.NewUniverse()
	target.SetModel("blog.User", &state.ModelEntry{
		Table: "users",
		Fields: map[string]*state.Field{
			"id":   {Kind: state.KindInt, PrimaryKey: true},
			"name": {Kind: state.KindChar, MaxLen: 255},
		},
	})

	d, err := mgr.CreateMigration(context.Background(), "blog", target, CreateOptions{}, "create User")
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Contains(t, d.Name, "_user")
	require.Len(t, d.Artifact.Operations, 1)

	_, err = os.Stat(d.Path)
	require.NoError(t, err)

	found, err := Discover(migrationsRoot)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, d.Name, found[0].Name)
}

func TestCreateMigration_NoChangesReturnsNil(t *testing.T) {
	root := t.TempDir()
	writeGoMod(t, root)
	migrationsRoot := filepath.Join(root, "migrations")
	require.NoError(t, os.MkdirAll(migrationsRoot, 0o755))

	existing := &migrations.Artifact{
		Name: "0001_initial",
		App:  "blog",
		Operations: []migrations.Operation{
			&migrations.OpCreateModel{
				Model: "blog.User",
				Table: "users",
				Fields: map[string]*state.Field{
					"id": {Kind: state.KindInt, PrimaryKey: true},
				},
			},
		},
	}
	writeMigration(t, migrationsRoot, existing)

	mgr := New(migrationsRoot, root, newTestDB(t), newTestEmitter())

	target := state.NewUniverse()
	target.SetModel("blog.User", &state.ModelEntry{
		Table:  "users",
		Fields: map[string]*state.Field{"id": {Kind: state.KindInt, PrimaryKey: true}},
	})

	d, err := mgr.CreateMigration(context.Background(), "blog", target, CreateOptions{}, "no-op")
	require.NoError(t, err)
	assert.Nil(t, d)
}
