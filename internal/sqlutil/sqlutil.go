// Package sqlutil provides SQL rendering helpers shared by the join planner
// and the batch loader.
package sqlutil

import "strings"

// QuoteIdentifier quotes a SQL identifier (table name, column name, etc.)
// with backticks and escapes any backticks within the identifier.
func QuoteIdentifier(name string) string {
	escaped := strings.ReplaceAll(name, "`", "``")
	return "`" + escaped + "`"
}

// QuoteString quotes a SQL string literal with single quotes and escapes
// any single quotes within the string by doubling them.
func QuoteString(s string) string {
	escaped := strings.ReplaceAll(s, "'", "''")
	return "'" + escaped + "'"
}

// Qualify renders an alias-qualified column reference. Aliases and columns
// come from the relationship schema, not user input, so they stay unquoted
// to keep rendered join conditions readable in logs and EXPLAIN output.
func Qualify(alias, column string) string {
	return alias + "." + column
}
