// SPDX-License-Identifier: Apache-2.0

package codegen

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relmigrate/relmigrate/pkg/migrations"
	"github.com/relmigrate/relmigrate/pkg/state"
)

func TestRender_RoundTripsThroughParseArtifactSource(t *testing.T) {
	artifact := &migrations.Artifact{
		Name: "20260101000000_create_user",
		App:  "accounts",
		Dependencies: []migrations.Dependency{
			{App: "billing", Name: "20251231000000_initial"},
		},
		Operations: []migrations.Operation{
			&migrations.OpCreateModel{
				Model: "accounts.User",
				Fields: map[string]*state.Field{
					"id":   {Kind: state.KindInt, PrimaryKey: true},
					"name": {Kind: state.KindChar, MaxLen: 255},
				},
			},
		},
	}

	out, err := Render("github.com/relmigrate/relmigrate", artifact, "create User")
	require.NoError(t, err)

	src := string(out)
	assert.True(t, strings.HasPrefix(src, "// Code generated by relmigrate. DO NOT EDIT."))
	assert.Contains(t, src, "package accounts")
	assert.Contains(t, src, "type CreateUserMigration struct")
	assert.Contains(t, src, "migrations.Register(&migrationArtifact)")

	parsed, err := migrations.ParseArtifactSource(out)
	require.NoError(t, err)
	assert.Equal(t, artifact.Name, parsed.Name)
	assert.Equal(t, artifact.App, parsed.App)
	require.Len(t, parsed.Dependencies, 1)
	assert.Equal(t, artifact.Dependencies[0], parsed.Dependencies[0])
	require.Len(t, parsed.Operations, 1)
	create, ok := parsed.Operations[0].(*migrations.OpCreateModel)
	require.True(t, ok)
	assert.Equal(t, "accounts.User", create.Model)
	assert.Len(t, create.Fields, 2)
}

func TestMigrationClassName(t *testing.T) {
	assert.Equal(t, "CreateUserMigration", migrationClassName("20260101000000_create_user"))
	assert.Equal(t, "AutoMigration", migrationClassName("20260101000000_auto"))
}
