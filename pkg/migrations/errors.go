// SPDX-License-Identifier: Apache-2.0

package migrations

import "fmt"

// OperationError covers the malformed-operation conditions: a missing field
// on DropField/AlterField/RenameField, or a RenameModel/RenameField with
// neither target specified.
type OperationError struct {
	Op     string
	Model  string
	Field  string
	Reason string
}

func (e OperationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s %s.%s: %s", e.Op, e.Model, e.Field, e.Reason)
	}
	return fmt.Sprintf("%s %s: %s", e.Op, e.Model, e.Reason)
}

// SchemaError covers a field type unsupported by the target dialect.
type SchemaError struct {
	Kind    string
	Dialect string
}

func (e SchemaError) Error() string {
	return fmt.Sprintf("field kind %q is unsupported by dialect %q", e.Kind, e.Dialect)
}
