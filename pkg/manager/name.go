// SPDX-License-Identifier: Apache-2.0

package manager

import (
	"github.com/relmigrate/relmigrate/internal/slugify"
	"github.com/relmigrate/relmigrate/pkg/migrations"
	"github.com/relmigrate/relmigrate/pkg/state"
)

// generateName derives a migration slug from its operation list: if every
// operation targets a single model M, the slug is snake(M), with
// "_<field_name>" appended iff exactly one operation touches exactly one
// field; otherwise the slug is "auto".
func generateName(ops []migrations.Operation) string {
	models := map[string]struct{}{}
	fieldTouches := 0
	var soleField string

	for _, op := range ops {
		ref, field, ok := opTarget(op)
		if !ok {
			return "auto"
		}
		models[ref] = struct{}{}
		if field != "" {
			fieldTouches++
			soleField = field
		}
	}

	if len(models) != 1 {
		return "auto"
	}
	var ref string
	for r := range models {
		ref = r
	}
	_, modelName := state.SplitRef(ref)
	slug := slugify.Snake(modelName)
	if fieldTouches == 1 {
		slug += "_" + soleField
	}
	return slug
}

// opTarget reports the single model ref an operation targets and, when it
// targets exactly one field, that field's name. ok is false for operations
// with no single-model target (RunSQL).
func opTarget(op migrations.Operation) (ref, field string, ok bool) {
	switch o := op.(type) {
	case *migrations.OpCreateModel:
		return o.Model, "", true
	case *migrations.OpDropModel:
		return o.Model, "", true
	case *migrations.OpRenameModel:
		return o.Model, "", true
	case *migrations.OpAddField:
		return o.Model, o.FieldName, true
	case *migrations.OpDropField:
		return o.Model, o.FieldName, true
	case *migrations.OpAlterField:
		return o.Model, o.FieldName, true
	case *migrations.OpRenameField:
		return o.Model, o.FieldName, true
	case *migrations.OpAddIndex:
		return o.Model, "", true
	case *migrations.OpDropIndex:
		return o.Model, "", true
	default:
		return "", "", false
	}
}
