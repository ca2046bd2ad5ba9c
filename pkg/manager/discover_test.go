// SPDX-License-Identifier: Apache-2.0

package manager

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relmigrate/relmigrate/pkg/codegen"
	"github.com/relmigrate/relmigrate/pkg/migrations"
	"github.com/relmigrate/relmigrate/pkg/state"
)

func writeMigration(t *testing.T, root string, a *migrations.Artifact) string {
	t.Helper()
	src, err := codegen.Render("github.com/example/blogapp", a, "test fixture")
	require.NoError(t, err)
	dir := filepath.Join(root, a.App)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	path := filepath.Join(dir, a.Name+".go")
	require.NoError(t, os.WriteFile(path, src, 0o644))
	return path
}

func TestDiscover_SkipsMarkerAndHiddenFiles(t *testing.T) {
	root := t.TempDir()
	a := &migrations.Artifact{
		Name: "0001_initial",
		App:  "blog",
		Operations: []migrations.Operation{
			&migrations.OpCreateModel{
				Model:  "blog.User",
				Fields: map[string]*state.Field{"id": {Kind: state.KindInt, PrimaryKey: true}},
			},
		},
	}
	writeMigration(t, root, a)

	require.NoError(t, os.WriteFile(filepath.Join(root, "blog", "doc.go"), []byte("package blog\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "blog", "_scratch.go"), []byte("package blog\nvar x = 1\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "blog", ".hidden.go"), []byte("package blog\n"), 0o644))

	found, err := Discover(root)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "blog", found[0].App)
	assert.Equal(t, "0001_initial", found[0].Name)
	require.Len(t, found[0].Artifact.Operations, 1)
}
