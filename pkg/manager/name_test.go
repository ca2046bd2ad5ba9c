// SPDX-License-Identifier: Apache-2.0

package manager

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/relmigrate/relmigrate/pkg/migrations"
	"github.com/relmigrate/relmigrate/pkg/state"
)

func TestGenerateName_SingleModelSingleField(t *testing.T) {
	ops := []migrations.Operation{
		&migrations.OpAddField{Model: "blog.Blog", FieldName: "summary", Field: &state.Field{Kind: state.KindText}},
	}
	assert.Equal(t, "blog_summary", generateName(ops))
}

func TestGenerateName_SingleModelNoSingleField(t *testing.T) {
	ops := []migrations.Operation{
		&migrations.OpCreateModel{Model: "blog.Comment", Fields: map[string]*state.Field{}},
	}
	assert.Equal(t, "comment", generateName(ops))
}

func TestGenerateName_MultipleModels(t *testing.T) {
	ops := []migrations.Operation{
		&migrations.OpCreateModel{Model: "blog.Comment", Fields: map[string]*state.Field{}},
		&migrations.OpAddField{Model: "blog.Blog", FieldName: "summary", Field: &state.Field{Kind: state.KindText}},
	}
	assert.Equal(t, "auto", generateName(ops))
}

func TestGenerateName_RunSQLForcesAuto(t *testing.T) {
	ops := []migrations.Operation{
		&migrations.OpRunSQL{ForwardText: "SELECT 1"},
	}
	assert.Equal(t, "auto", generateName(ops))
}
