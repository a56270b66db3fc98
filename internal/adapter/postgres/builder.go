package postgres

import (
	"fmt"

	sq "github.com/Masterminds/squirrel"
)

// Builder returns a squirrel statement builder using $n placeholders.
func Builder() sq.StatementBuilderType {
	return sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
}

// Build renders a squirrel query, prefixing any error with what.
func Build(what string, b sq.Sqlizer) (string, []any, error) {
	sql, args, err := b.ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("build %s query: %w", what, err)
	}
	return sql, args, nil
}
