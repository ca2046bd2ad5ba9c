// SPDX-License-Identifier: Apache-2.0

// Package db defines the narrow database surface the migration manager
// consumes: ExecuteScript and ExecuteQuery, plus a dialect capability tag,
// and an RDB wrapper that retries on the lock-contention conditions of both
// supported dialects.
package db

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/cloudflare/backoff"
	"github.com/lib/pq"
)

const (
	postgresLockNotAvailable pq.ErrorCode = "55P03"
	maxBackoffDuration                    = 1 * time.Minute
	backoffInterval                       = 1 * time.Second
)

// DB is the driver surface the manager consumes, independent of dialect.
type DB interface {
	// ExecuteScript runs a (possibly multi-statement) SQL script.
	ExecuteScript(ctx context.Context, script string) error
	// ExecuteQuery runs a query and returns its rows.
	ExecuteQuery(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	// Dialect reports this connection's capability tag ("sqlite" or
	// "postgres"), matching a dialect.Emitter.Name().
	Dialect() string
	Close() error
}

// RDB wraps a *sql.DB, retrying ExecuteScript/ExecuteQuery with exponential
// backoff (plus jitter) on lock-contention errors: postgres's 55P03
// (lock_not_available) and sqlite's SQLITE_BUSY / "database is locked".
type RDB struct {
	SQL     *sql.DB
	dialect string
}

// NewRDB wraps conn for dialect ("sqlite" or "postgres").
func NewRDB(conn *sql.DB, dialect string) *RDB {
	return &RDB{SQL: conn, dialect: dialect}
}

func (db *RDB) Dialect() string { return db.dialect }

func (db *RDB) ExecuteScript(ctx context.Context, script string) error {
	b := backoff.New(maxBackoffDuration, backoffInterval)
	for {
		_, err := db.SQL.ExecContext(ctx, script)
		if err == nil {
			return nil
		}
		if db.isLockContention(err) {
			if sleepErr := sleepCtx(ctx, b.Duration()); sleepErr != nil {
				return sleepErr
			}
			continue
		}
		return err
	}
}

func (db *RDB) ExecuteQuery(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	b := backoff.New(maxBackoffDuration, backoffInterval)
	for {
		rows, err := db.SQL.QueryContext(ctx, query, args...)
		if err == nil {
			return rows, nil
		}
		if db.isLockContention(err) {
			if sleepErr := sleepCtx(ctx, b.Duration()); sleepErr != nil {
				return nil, sleepErr
			}
			continue
		}
		return nil, err
	}
}

func (db *RDB) Close() error { return db.SQL.Close() }

func (db *RDB) isLockContention(err error) bool {
	if db.dialect == "postgres" {
		pqErr := &pq.Error{}
		return errors.As(err, &pqErr) && pqErr.Code == postgresLockNotAvailable
	}
	// modernc.org/sqlite reports busy conditions as plain error text rather
	// than a typed sentinel; matching the message is the only portable way
	// to distinguish "retry me" from a genuine statement error.
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "sqlite_busy") || strings.Contains(msg, "database is locked")
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
