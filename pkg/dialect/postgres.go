// SPDX-License-Identifier: Apache-2.0

package dialect

import (
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/relmigrate/relmigrate/pkg/state"
)

// Postgres emits SQL for the postgres dialect.
type Postgres struct{}

var _ Emitter = (*Postgres)(nil)

func (d *Postgres) Name() string { return "postgres" }

func (d *Postgres) baseType(f *state.Field) string {
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
		return "DOUBLE PRECISION"
	case state.KindDecimal:
		return fmt.Sprintf("NUMERIC(%d,%d)", f.Digits, f.Places)
	case state.KindDatetime:
		return "TIMESTAMP"
	case state.KindDate:
		return "DATE"
	case state.KindJSON:
		return "JSONB"
	case state.KindForeignKey:
		return "INT"
	default:
		return "TEXT"
	}
}

func (d *Postgres) defaultLiteral(f *state.Field) *string {
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
		v := formatLiteral(f.Kind, raw, "TRUE", "FALSE")
		return &v
	default:
		return nil
	}
}

func (d *Postgres) ColumnDef(fieldName string, f *state.Field) (Column, *ForeignKeyDef) {
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

func (d *Postgres) columnSQL(col Column) string {
	var b strings.Builder
	b.WriteString(col.Name)
	b.WriteByte(' ')

	if col.PrimaryKey && col.SQLType == "INTEGER" {
		b.WriteString("SERIAL PRIMARY KEY")
	} else if col.PrimaryKey && col.SQLType == "BIGINT" {
		b.WriteString("BIGSERIAL PRIMARY KEY")
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
	return b.String()
}

func fkConstraintName(table, col string) string {
	return fmt.Sprintf("fk_%s_%s", table, col)
}

func (d *Postgres) CreateTable(table string, columns []Column, foreignKeys []ForeignKeyDef) string {
	defs := make([]string, 0, len(columns)+len(foreignKeys))
	for _, col := range columns {
		defs = append(defs, "    "+d.columnSQL(col))
	}
	for _, fk := range foreignKeys {
		defs = append(defs, fmt.Sprintf("    FOREIGN KEY (%s) REFERENCES %s(%s)%s",
			fk.Column, pq.QuoteIdentifier(fk.TargetTable), fk.TargetColumn,
			onDeleteClause(fk.OnDelete)))
	}
	return fmt.Sprintf("CREATE TABLE %s (\n%s\n);", pq.QuoteIdentifier(table), strings.Join(defs, ",\n"))
}

func onDeleteClause(onDelete string) string {
	if onDelete == "" {
		return ""
	}
	return " ON DELETE " + onDelete
}

func (d *Postgres) DropTable(table string) string {
	return fmt.Sprintf("DROP TABLE %s", pq.QuoteIdentifier(table))
}

func (d *Postgres) RenameTable(oldName, newName string) string {
	return fmt.Sprintf("ALTER TABLE %s RENAME TO %s", pq.QuoteIdentifier(oldName), pq.QuoteIdentifier(newName))
}

func (d *Postgres) AddColumn(table string, col Column, fk *ForeignKeyDef) string {
	stmt := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s", pq.QuoteIdentifier(table), d.columnSQL(col))
	if fk != nil {
		stmt += fmt.Sprintf(";\nALTER TABLE %s ADD CONSTRAINT %s FOREIGN KEY (%s) REFERENCES %s(%s)%s",
			pq.QuoteIdentifier(table), fkConstraintName(table, fk.Column),
			fk.Column, pq.QuoteIdentifier(fk.TargetTable), fk.TargetColumn,
			onDeleteClause(fk.OnDelete))
	}
	return stmt
}

func (d *Postgres) DropColumn(table, col string) string {
	return fmt.Sprintf("ALTER TABLE %s DROP COLUMN %s", pq.QuoteIdentifier(table), col)
}

func (d *Postgres) AlterColumn(table, col string, prev, next Column, prevFK, nextFK *ForeignKeyDef, allColumns []Column, allFKs []ForeignKeyDef) string {
	var stmts []string
	qcol := col
	qtable := pq.QuoteIdentifier(table)

	if prev.SQLType != next.SQLType {
		stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s TYPE %s", qtable, qcol, next.SQLType))
	}

	if prev.Default == nil && next.Default != nil {
		stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s SET DEFAULT %s", qtable, qcol, *next.Default))
	} else if prev.Default != nil && next.Default == nil {
		stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s DROP DEFAULT", qtable, qcol))
	} else if prev.Default != nil && next.Default != nil && *prev.Default != *next.Default {
		stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s SET DEFAULT %s", qtable, qcol, *next.Default))
	}

	if prev.Nullable && !next.Nullable {
		stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s SET NOT NULL", qtable, qcol))
	} else if !prev.Nullable && next.Nullable {
		stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s DROP NOT NULL", qtable, qcol))
	}

	if !prev.Unique && next.Unique {
		stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s ADD CONSTRAINT %s UNIQUE (%s)", qtable, col+"_unique", qcol))
	} else if prev.Unique && !next.Unique {
		stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s DROP CONSTRAINT %s", qtable, col+"_unique"))
	}

	if prevFK == nil && nextFK != nil {
		stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s ADD CONSTRAINT %s FOREIGN KEY (%s) REFERENCES %s(%s)%s",
			qtable, fkConstraintName(table, col), qcol, pq.QuoteIdentifier(nextFK.TargetTable), nextFK.TargetColumn, onDeleteClause(nextFK.OnDelete)))
	} else if prevFK != nil && nextFK == nil {
		stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s DROP CONSTRAINT %s", qtable, fkConstraintName(table, col)))
	}

	return strings.Join(stmts, ";\n")
}

func (d *Postgres) RenameColumn(table, oldName, newName string) string {
	return fmt.Sprintf("ALTER TABLE %s RENAME COLUMN %s TO %s", pq.QuoteIdentifier(table), oldName, newName)
}

func (d *Postgres) AddIndex(table, indexName string, columns []string, unique bool) string {
	uniqueKw := ""
	if unique {
		uniqueKw = "UNIQUE "
	}
	return fmt.Sprintf("CREATE %sINDEX %s ON %s (%s)", uniqueKw, pq.QuoteIdentifier(indexName), pq.QuoteIdentifier(table), strings.Join(columns, ", "))
}

func (d *Postgres) DropIndex(name string) string {
	return fmt.Sprintf("DROP INDEX %s", pq.QuoteIdentifier(name))
}

func (d *Postgres) LedgerCreateTable(table string) string {
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
    id SERIAL PRIMARY KEY,
    app VARCHAR(100) NOT NULL,
    name VARCHAR(255) NOT NULL,
    applied_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
)`, pq.QuoteIdentifier(table))
}
