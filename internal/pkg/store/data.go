package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/paulexconde/complyform/pkg/fault"
)

// Postgres error class for connection exceptions.
const pgConnectionException = "08"

type dataStore[T any] struct {
	db        *sqlx.DB
	tablename string
}

func NewDataStore[T any](db *sqlx.DB, tablename string) Datastorer[T] {
	return &dataStore[T]{
		db:        db,
		tablename: tablename,
	}
}

func (s *dataStore[T]) Base() *sqlx.DB {
	return s.db
}

func (s *dataStore[T]) Table() string {
	return s.tablename
}

func (s *dataStore[T]) QueryRow(ctx context.Context, query string, args ...any) (any, error) {
	row := s.db.QueryRowContext(ctx, query, args...)

	var result any

	err := row.Scan(&result)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fault.ErrNotFound
		}
		return nil, translate(err)
	}

	return result, nil
}

func (s *dataStore[T]) Get(ctx context.Context, query string, args ...any) (*T, error) {
	var result T

	if err := s.db.GetContext(ctx, &result, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fault.ErrNotFound
		}
		return nil, translate(err)
	}

	return &result, nil
}

func (s *dataStore[T]) Select(ctx context.Context, query string, args ...any) ([]T, error) {
	var results []T

	if err := s.db.SelectContext(ctx, &results, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return []T{}, nil
		}
		return nil, translate(err)
	}

	return results, nil
}

// translate tags driver errors so callers can tell a lost connection, which
// is worth retrying, from a bad query.
func translate(err error) error {
	var pgErr *pq.Error
	if errors.As(err, &pgErr) && pgErr.Code.Class() == pgConnectionException {
		return fault.NewInternalError("database connection lost", err)
	}
	return err
}
