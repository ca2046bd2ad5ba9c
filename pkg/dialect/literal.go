// SPDX-License-Identifier: Apache-2.0

package dialect

import "strings"

// quoteStringLiteral single-quotes s for SQL, doubling embedded single
// quotes per the standard SQL escaping convention both sqlite and postgres
// follow.
func quoteStringLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// quoteIdentSQLite quotes an identifier the sqlite way (double quotes,
// doubling embedded quotes).
func quoteIdentSQLite(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
