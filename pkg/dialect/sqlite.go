// SPDX-License-Identifier: Apache-2.0

package dialect

import (
	"fmt"
	"strings"

	"github.com/relmigrate/relmigrate/pkg/state"
)

// SQLite emits SQL for the sqlite3 dialect.
type SQLite struct{}

var _ Emitter = (*SQLite)(nil)

func (d *SQLite) Name() string { return "sqlite" }

func (d *SQLite) baseType(f *state.Field) string {
	switch f.Kind {
	case state.KindInt, state.KindIntEnum:
		return "INTEGER"
	case state.KindBigInt:
		return "BIGINT"
	case state.KindChar, state.KindCharEnum:
		return fmt.Sprintf("VARCHAR(%d)", f.MaxLen)
	case state.KindText:
		return "TEXT"
	case state.KindBool:
		return "BOOLEAN"
	case state.KindFloat:
		return "REAL"
	case state.KindDecimal:
		return fmt.Sprintf("DECIMAL(%d,%d)", f.Digits, f.Places)
	case state.KindDatetime:
		return "TIMESTAMP"
	case state.KindDate:
		return "DATE"
	case state.KindJSON:
		return "JSON"
	case state.KindForeignKey:
		return "INT"
	default:
		return "TEXT"
	}
}

func (d *SQLite) defaultLiteral(f *state.Field) *string {
	if !f.Default.IsSet() {
		return nil
	}
	switch f.Default.Kind {
	case state.DefaultAutoNow, state.DefaultAutoNowAdd:
		v := "CURRENT_TIMESTAMP"
		return &v
	case state.DefaultCallableNone:
		return nil
	case state.DefaultLiteral:
		raw, ok := f.Default.Literal.Get()
		if !ok {
			v := "NULL"
			return &v
		}
		v := formatLiteral(f.Kind, raw, "1", "0")
		return &v
	default:
		return nil
	}
}

func (d *SQLite) ColumnDef(fieldName string, f *state.Field) (Column, *ForeignKeyDef) {
	col := Column{
		Name:       f.ColumnName(fieldName),
		SQLType:    d.baseType(f),
		Nullable:   f.Nullable,
		Unique:     f.Unique,
		PrimaryKey: f.PrimaryKey,
		Default:    d.defaultLiteral(f),
	}
	var fk *ForeignKeyDef
	if f.Kind == state.KindForeignKey && f.ForeignKey != nil {
		fk = &ForeignKeyDef{
			Column:       col.Name,
			TargetTable:  f.ForeignKey.TargetModel,
			TargetColumn: f.ForeignKey.ToColumn,
			OnDelete:     string(f.ForeignKey.OnDelete),
		}
	}
	return col, fk
}

func (d *SQLite) columnSQL(col Column, fk *ForeignKeyDef) string {
	var b strings.Builder
	b.WriteString(col.Name)
	b.WriteByte(' ')

	if col.PrimaryKey && col.SQLType == "INTEGER" {
		b.WriteString("INTEGER PRIMARY KEY AUTOINCREMENT")
	} else {
		b.WriteString(col.SQLType)
		if col.PrimaryKey {
			b.WriteString(" PRIMARY KEY")
		}
	}

	if !col.Nullable && !col.PrimaryKey {
		b.WriteString(" NOT NULL")
	}
	if col.Unique && !col.PrimaryKey {
		b.WriteString(" UNIQUE")
	}
	if col.Default != nil {
		b.WriteString(" DEFAULT ")
		b.WriteString(*col.Default)
	}
	if fk != nil {
		b.WriteString(fmt.Sprintf(" REFERENCES %s(%s)", quoteIdentSQLite(fk.TargetTable), fk.TargetColumn))
		if fk.OnDelete != "" {
			b.WriteString(" ON DELETE ")
			b.WriteString(fk.OnDelete)
		}
	}
	return b.String()
}

func (d *SQLite) CreateTable(table string, columns []Column, foreignKeys []ForeignKeyDef) string {
	fkByCol := indexFKs(foreignKeys)
	defs := make([]string, 0, len(columns))
	for _, col := range columns {
		defs = append(defs, d.columnSQL(col, fkByCol[col.Name]))
	}
	return fmt.Sprintf("CREATE TABLE %s (\n    %s\n);", quoteIdentSQLite(table), strings.Join(defs, ",\n    "))
}

func (d *SQLite) DropTable(table string) string {
	return fmt.Sprintf("DROP TABLE %s", quoteIdentSQLite(table))
}

func (d *SQLite) RenameTable(oldName, newName string) string {
	return fmt.Sprintf("ALTER TABLE %s RENAME TO %s", quoteIdentSQLite(oldName), quoteIdentSQLite(newName))
}

func (d *SQLite) AddColumn(table string, col Column, fk *ForeignKeyDef) string {
	return fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s", quoteIdentSQLite(table), d.columnSQL(col, fk))
}

func (d *SQLite) DropColumn(table, col string) string {
	return fmt.Sprintf("ALTER TABLE %s DROP COLUMN %s", quoteIdentSQLite(table), col)
}

// AlterColumn always emits sqlite's table-rewrite sequence verbatim,
// regardless of which part of (prev, next) actually differs: sqlite has no
// ALTER COLUMN statement capable of changing type, nullability or
// constraints in place.
func (d *SQLite) AlterColumn(table, col string, prev, next Column, prevFK, nextFK *ForeignKeyDef, allColumns []Column, allFKs []ForeignKeyDef) string {
	fkByCol := indexFKs(allFKs)
	fkByCol[next.Name] = nextFK

	newCols := make([]Column, len(allColumns))
	copy(newCols, allColumns)
	for i, c := range newCols {
		if c.Name == col {
			newCols[i] = next
		}
	}

	defs := make([]string, 0, len(newCols))
	names := make([]string, 0, len(newCols))
	origNames := make([]string, 0, len(newCols))
	for i, c := range newCols {
		defs = append(defs, d.columnSQL(c, fkByCol[c.Name]))
		names = append(names, c.Name)
		origNames = append(origNames, allColumns[i].Name)
	}

	newTable := "__new__" + table
	return fmt.Sprintf(
		"BEGIN TRANSACTION;\nCREATE TABLE %s (\n    %s\n);\nINSERT INTO %s (%s) SELECT %s FROM %s;\nDROP TABLE %s;\nALTER TABLE %s RENAME TO %s;\nCOMMIT;",
		quoteIdentSQLite(newTable), strings.Join(defs, ",\n    "),
		quoteIdentSQLite(newTable), strings.Join(names, ", "), strings.Join(origNames, ", "), quoteIdentSQLite(table),
		quoteIdentSQLite(table),
		quoteIdentSQLite(newTable), quoteIdentSQLite(table),
	)
}

func (d *SQLite) RenameColumn(table, oldName, newName string) string {
	return fmt.Sprintf("ALTER TABLE %s RENAME COLUMN %s TO %s", quoteIdentSQLite(table), oldName, newName)
}

func (d *SQLite) AddIndex(table, indexName string, columns []string, unique bool) string {
	uniqueKw := ""
	if unique {
		uniqueKw = "UNIQUE "
	}
	return fmt.Sprintf("CREATE %sINDEX %s ON %s (%s)", uniqueKw, quoteIdentSQLite(indexName), quoteIdentSQLite(table), strings.Join(columns, ", "))
}

func (d *SQLite) DropIndex(name string) string {
	return fmt.Sprintf("DROP INDEX %s", quoteIdentSQLite(name))
}

func (d *SQLite) LedgerCreateTable(table string) string {
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    app VARCHAR(100) NOT NULL,
    name VARCHAR(255) NOT NULL,
    applied_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
)`, quoteIdentSQLite(table))
}

func indexFKs(fks []ForeignKeyDef) map[string]*ForeignKeyDef {
	m := make(map[string]*ForeignKeyDef, len(fks))
	cp := make([]ForeignKeyDef, len(fks))
	copy(cp, fks)
	for i := range cp {
		m[cp[i].Column] = &cp[i]
	}
	return m
}

// formatLiteral renders a raw default string for SQL according to the
// field's kind: quoted for text-like kinds, the dialect's boolean literal
// for Bool, verbatim otherwise (numeric kinds).
func formatLiteral(kind state.Kind, raw, boolTrue, boolFalse string) string {
	switch kind {
	case state.KindChar, state.KindText, state.KindCharEnum, state.KindDate, state.KindDatetime, state.KindJSON:
		return quoteStringLiteral(raw)
	case state.KindBool:
		if isTruthy(raw) {
			return boolTrue
		}
		return boolFalse
	default:
		return raw
	}
}

func isTruthy(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "1", "t", "yes":
		return true
	default:
		return false
	}
}
