// SPDX-License-Identifier: Apache-2.0

package manager

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/stretchr/testify/require"

	"github.com/relmigrate/relmigrate/pkg/db"
	"github.com/relmigrate/relmigrate/pkg/dialect"
)

func newTestDB(t *testing.T) db.DB {
	t.Helper()
	conn, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return db.NewRDB(conn, "sqlite")
}

func newTestEmitter() dialect.Emitter {
	return &dialect.SQLite{}
}
