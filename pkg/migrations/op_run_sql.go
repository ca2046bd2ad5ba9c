// SPDX-License-Identifier: Apache-2.0

package migrations

import (
	"fmt"

	pg_query "github.com/xataio/pg_query_go/v6"

	"github.com/relmigrate/relmigrate/pkg/dialect"
	"github.com/relmigrate/relmigrate/pkg/state"
)

var _ Operation = (*OpRunSQL)(nil)

// OpRunSQL is the free-form escape hatch. ApplyToState is a no-op; if
// BackwardText is empty, BackwardSQL returns the empty string.
type OpRunSQL struct {
	ForwardText  string
	BackwardText string
}

func (o *OpRunSQL) ApplyToState(s *state.State) error {
	return nil
}

// Validate checks ForwardText and, if present, BackwardText parse as valid
// SQL under the postgres dialect, via libpg_query bindings. Sqlite has no
// comparable standalone parser in the pack, so validation is postgres-only;
// callers applying RunSQL under sqlite rely on the database itself to reject
// malformed text at execution time.
func (o *OpRunSQL) Validate(emitter dialect.Emitter) error {
	if emitter.Name() != "postgres" {
		return nil
	}
	if _, err := pg_query.Parse(o.ForwardText); err != nil {
		return fmt.Errorf("RunSQL forward text is not valid postgres SQL: %w", err)
	}
	if o.BackwardText != "" {
		if _, err := pg_query.Parse(o.BackwardText); err != nil {
			return fmt.Errorf("RunSQL backward text is not valid postgres SQL: %w", err)
		}
	}
	return nil
}

func (o *OpRunSQL) ForwardSQL(s *state.State, emitter dialect.Emitter) (string, error) {
	return o.ForwardText, nil
}

func (o *OpRunSQL) BackwardSQL(s *state.State, emitter dialect.Emitter) (string, error) {
	return o.BackwardText, nil
}

func (o *OpRunSQL) Serialize() string {
	if o.BackwardText == "" {
		return fmt.Sprintf("&migrations.OpRunSQL{\n\tForwardText: %s,\n}", quote(o.ForwardText))
	}
	return fmt.Sprintf("&migrations.OpRunSQL{\n\tForwardText: %s,\n\tBackwardText: %s,\n}", quote(o.ForwardText), quote(o.BackwardText))
}

func (o *OpRunSQL) RequiredImports() []string {
	return baseImports()
}
