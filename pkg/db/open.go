// SPDX-License-Identifier: Apache-2.0

package db

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Open dials a connection for dialect ("sqlite" or "postgres") against dsn
// and wraps it in an RDB.
func Open(dialect, dsn string) (*RDB, error) {
	driver, err := driverName(dialect)
	if err != nil {
		return nil, err
	}
	conn, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening %s connection: %w", dialect, err)
	}
	return NewRDB(conn, dialect), nil
}

func driverName(dialect string) (string, error) {
	switch dialect {
	case "sqlite":
		return "sqlite", nil
	case "postgres":
		return "postgres", nil
	default:
		return "", fmt.Errorf("unknown dialect %q", dialect)
	}
}
