package loader

import (
	"fmt"
	"strings"

	"relgraph/internal/sqlutil"

	sq "github.com/Masterminds/squirrel"
)

// batchParentAlias is the synthetic column carrying the parent key through
// window-limited batch queries.
const batchParentAlias = "__parent_key"

// sqlQuery is one parameterized statement ready for execution.
type sqlQuery struct {
	SQL  string
	Args []any
}

// planSelectIn builds SELECT <columns> FROM <table> WHERE <keyColumn> IN (values).
func planSelectIn(table string, columns []string, keyColumn string, values []any) (sqlQuery, error) {
	if len(values) == 0 {
		return sqlQuery{}, nil
	}
	builder := sq.Select(quotedColumnNames(columns)...).
		From(sqlutil.QuoteIdentifier(table)).
		Where(sq.Eq{sqlutil.QuoteIdentifier(keyColumn): values})

	query, args, err := builder.PlaceholderFormat(sq.Question).ToSql()
	if err != nil {
		return sqlQuery{}, err
	}
	return sqlQuery{SQL: query, Args: args}, nil
}

// planSelectInWithDiscriminator adds the polymorphic type constraint used by
// reverse ("via") loads: WHERE typeColumn = typeValue AND keyColumn IN (values).
func planSelectInWithDiscriminator(table string, columns []string, typeColumn, typeValue, keyColumn string, values []any) (sqlQuery, error) {
	if len(values) == 0 {
		return sqlQuery{}, nil
	}
	builder := sq.Select(quotedColumnNames(columns)...).
		From(sqlutil.QuoteIdentifier(table)).
		Where(sq.Eq{sqlutil.QuoteIdentifier(typeColumn): typeValue}).
		Where(sq.Eq{sqlutil.QuoteIdentifier(keyColumn): values})

	query, args, err := builder.PlaceholderFormat(sq.Question).ToSql()
	if err != nil {
		return sqlQuery{}, err
	}
	return sqlQuery{SQL: query, Args: args}, nil
}

// planWindowLimited emits the ROW_NUMBER() pattern limiting results per
// parent key in a single batched statement. The key column is echoed as
// batchParentAlias so results can be regrouped without re-reading the key.
func planWindowLimited(table string, columns []string, keyColumn string, values []any, limit int, orderColumn string) (sqlQuery, error) {
	if len(values) == 0 {
		return sqlQuery{}, nil
	}
	if limit <= 0 {
		return sqlQuery{}, fmt.Errorf("per-parent limit must be positive")
	}

	quotedKey := sqlutil.QuoteIdentifier(keyColumn)
	columnList := strings.Join(quotedColumnNames(columns), ", ")
	placeholders := sq.Placeholders(len(values))

	query := fmt.Sprintf(
		"SELECT %s, %s FROM (SELECT %s, %s AS %s, ROW_NUMBER() OVER (PARTITION BY %s ORDER BY %s) AS __rn FROM %s WHERE %s IN (%s)) AS __batch WHERE __rn <= ? ORDER BY %s, __rn",
		columnList, batchParentAlias,
		columnList, quotedKey, batchParentAlias,
		quotedKey, sqlutil.QuoteIdentifier(orderColumn),
		sqlutil.QuoteIdentifier(table),
		quotedKey, placeholders,
		batchParentAlias,
	)

	args := append([]any{}, values...)
	args = append(args, limit)
	return sqlQuery{SQL: query, Args: args}, nil
}

func quotedColumnNames(columns []string) []string {
	quoted := make([]string, len(columns))
	for i, col := range columns {
		quoted[i] = sqlutil.QuoteIdentifier(col)
	}
	return quoted
}
