// SPDX-License-Identifier: Apache-2.0

package manager

import (
	"context"
	"fmt"
	"strings"

	"github.com/relmigrate/relmigrate/pkg/db"
	"github.com/relmigrate/relmigrate/pkg/dialect"
)

const ledgerTable = "tortoise_migrations"

// AppliedKey is the applied-set identity for one ledger row: the (app,
// name) pair.
type AppliedKey struct {
	App  string
	Name string
}

// ensureLedger creates the tortoise_migrations table if absent, using
// dialect-appropriate DDL.
func ensureLedger(ctx context.Context, conn db.DB, emitter dialect.Emitter) error {
	if err := conn.ExecuteScript(ctx, emitter.LedgerCreateTable(ledgerTable)); err != nil {
		return LedgerError{Reason: fmt.Sprintf("creating ledger table: %v", err)}
	}
	return nil
}

// appliedSet reads every (app, name) row from the ledger. If the ledger
// table does not exist yet, it returns an empty set rather than creating
// one, so a dry-run SQL dump never touches the database.
func appliedSet(ctx context.Context, conn db.DB) (map[AppliedKey]bool, error) {
	rows, err := conn.ExecuteQuery(ctx, fmt.Sprintf("SELECT app, name FROM %s", ledgerTable))
	if err != nil {
		if ledgerMissing(err) {
			return map[AppliedKey]bool{}, nil
		}
		return nil, LedgerError{Reason: fmt.Sprintf("reading ledger: %v", err)}
	}
	defer rows.Close()

	applied := make(map[AppliedKey]bool)
	for rows.Next() {
		var k AppliedKey
		if err := rows.Scan(&k.App, &k.Name); err != nil {
			return nil, LedgerError{Reason: fmt.Sprintf("scanning ledger row: %v", err)}
		}
		applied[k] = true
	}
	return applied, rows.Err()
}

// insertLedgerRow records app/name as applied. ensureLedger must have run
// first in the same call so a missing table surfaces as an ExecutionError,
// not a silent no-op.
func insertLedgerRow(ctx context.Context, conn db.DB, app, name string) error {
	stmt := fmt.Sprintf(
		"INSERT INTO %s (app, name, applied_at) VALUES (%s, %s, CURRENT_TIMESTAMP)",
		ledgerTable, sqlLiteral(app), sqlLiteral(name),
	)
	if err := conn.ExecuteScript(ctx, stmt); err != nil {
		if isDuplicateLedgerRow(err) {
			return LedgerError{Reason: fmt.Sprintf("duplicate ledger row for %s/%s", app, name)}
		}
		return ExecutionError{SQL: stmt, Err: err}
	}
	return nil
}

// deleteLedgerRow removes the (app, name) row on revert.
func deleteLedgerRow(ctx context.Context, conn db.DB, app, name string) error {
	stmt := fmt.Sprintf("DELETE FROM %s WHERE app = %s AND name = %s", ledgerTable, sqlLiteral(app), sqlLiteral(name))
	if err := conn.ExecuteScript(ctx, stmt); err != nil {
		return ExecutionError{SQL: stmt, Err: err}
	}
	return nil
}

// sqlLiteral renders s as a single-quoted SQL string literal, escaping
// embedded quotes by doubling them (the one escaping rule both sqlite and
// postgres share). The ledger only ever embeds our own discovered app/name
// identifiers, never external user input.
func sqlLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func ledgerMissing(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "no such table") || strings.Contains(msg, "does not exist") || strings.Contains(msg, "undefined table")
}

func isDuplicateLedgerRow(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate")
}
