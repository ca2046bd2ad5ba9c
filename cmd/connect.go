// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/relmigrate/relmigrate/pkg/config"
	"github.com/relmigrate/relmigrate/pkg/db"
	"github.com/relmigrate/relmigrate/pkg/dialect"
)

// connect opens the named connection from cfg and returns both the db.DB
// handle and its matching dialect.Emitter, inferring the dialect from the
// DSN scheme the same way pgroll always assumes postgres (it has only one
// dialect); this tool supports two, so the DSN prefix disambiguates them.
func connect(cfg *config.Config, connName string) (db.DB, dialect.Emitter, error) {
	dsn, ok := cfg.Connections[connName]
	if !ok {
		return nil, nil, config.ConfigError{Reason: fmt.Sprintf("connection %q not declared in configuration", connName)}
	}

	name := dialectName(dsn)
	registry := dialect.NewRegistry()
	emitter, err := registry.Get(name)
	if err != nil {
		return nil, nil, err
	}

	driver := "postgres"
	if name == "sqlite" {
		driver = "sqlite"
	}
	sqlDB, err := sql.Open(driver, strings.TrimPrefix(dsn, "sqlite://"))
	if err != nil {
		return nil, nil, fmt.Errorf("opening %s connection: %w", name, err)
	}
	return db.NewRDB(sqlDB, name), emitter, nil
}

func dialectName(dsn string) string {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return "postgres"
	}
	return "sqlite"
}

// defaultConnection picks the sole declared connection when cfg names only
// one, the same single-connection convenience already applied to app
// selection.
func defaultConnection(cfg *config.Config) (string, error) {
	if len(cfg.Connections) == 1 {
		for name := range cfg.Connections {
			return name, nil
		}
	}
	if dsn, ok := cfg.Connections["default"]; ok && dsn != "" {
		return "default", nil
	}
	return "", config.ConfigError{Reason: "configuration declares multiple connections; none named \"default\""}
}
