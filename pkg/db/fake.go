// SPDX-License-Identifier: Apache-2.0

package db

import (
	"context"
	"database/sql"
)

// FakeDB is a no-op DB used by tests that exercise SQL generation without a
// live connection.
type FakeDB struct {
	DialectName string
	Scripts     []string
}

func (f *FakeDB) ExecuteScript(ctx context.Context, script string) error {
	f.Scripts = append(f.Scripts, script)
	return nil
}

func (f *FakeDB) ExecuteQuery(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	return nil, nil
}

func (f *FakeDB) Dialect() string { return f.DialectName }

func (f *FakeDB) Close() error { return nil }
