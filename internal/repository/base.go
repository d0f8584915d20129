package repository

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk/internal/persistence"
)

// psql builds PostgreSQL statements with $n placeholders.
var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

type base struct {
	db persistence.Querier
}

// q returns the transaction bound to ctx, if any.
func (b base) q(ctx context.Context) persistence.Querier {
	return persistence.QuerierFromCtx(ctx, b.db)
}

// getOne scans a single row into T. A missing row is reported as pgx.ErrNoRows.
func getOne[T any](ctx context.Context, q persistence.Querier, stmt squirrel.Sqlizer) (*T, error) {
	sql, args, err := stmt.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	var dst T
	if err := pgxscan.Get(ctx, q, &dst, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, pgx.ErrNoRows
		}
		return nil, err
	}
	return &dst, nil
}

// selectAll scans every row into a slice; an empty result is a non-nil empty slice.
func selectAll[T any](ctx context.Context, q persistence.Querier, stmt squirrel.Sqlizer) ([]T, error) {
	sql, args, err := stmt.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	dst := make([]T, 0)
	if err := pgxscan.Select(ctx, q, &dst, sql, args...); err != nil {
		return nil, err
	}
	return dst, nil
}

// insertReturning runs stmt and scans its RETURNING columns into dest.
func insertReturning(ctx context.Context, q persistence.Querier, stmt squirrel.Sqlizer, dest ...any) error {
	sql, args, err := stmt.ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}
	return q.QueryRow(ctx, sql, args...).Scan(dest...)
}

// execAffecting runs stmt and reports pgx.ErrNoRows when nothing matched.
func execAffecting(ctx context.Context, q persistence.Querier, stmt squirrel.Sqlizer) error {
	sql, args, err := stmt.ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}
	tag, err := q.Exec(ctx, sql, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scalar[T any](ctx context.Context, q persistence.Querier, stmt squirrel.Sqlizer) (T, error) {
	var out T
	sql, args, err := stmt.ToSql()
	if err != nil {
		return out, fmt.Errorf("build query: %w", err)
	}
	err = q.QueryRow(ctx, sql, args...).Scan(&out)
	return out, err
}

// nameExists checks for a case-insensitive name collision, ignoring excludeID.
func nameExists(ctx context.Context, q persistence.Querier, table, name string, excludeID int64, scope squirrel.Sqlizer) (bool, error) {
	sub := psql.Select("1").From(table).
		Where("LOWER(name) = LOWER(?)", name).
		Where(squirrel.NotEq{"id": excludeID})
	if scope != nil {
		sub = sub.Where(scope)
	}
	return scalar[bool](ctx, q, sub.Prefix("SELECT EXISTS (").Suffix(")"))
}
