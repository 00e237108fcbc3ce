package store

import (
	"context"
	"reflect"

	"github.com/jmoiron/sqlx"
)

// Read access to one table. The engine only ever reads what the
// questionnaire application stored.
type Datastorer[T any] interface {
	QueryRow(ctx context.Context, query string, args ...any) (any, error)
	Get(ctx context.Context, query string, args ...any) (*T, error)
	Select(ctx context.Context, query string, args ...any) ([]T, error)
	// The table name queries should target.
	Table() string

	// useful for complex operations wherein store interface does not supported.
	Base() *sqlx.DB
}

// Columns lists the `db` tags of T, in field order.
func Columns[T any]() []string {
	var zero T
	return getStructFieldNamesFromInstance(zero)
}

func getStructFieldNamesFromInstance(instance any) []string {
	typ := reflect.TypeOf(instance)
	if typ == nil {
		return nil
	}
	if typ.Kind() == reflect.Ptr { // Handle pointer types
		typ = typ.Elem()
	}
	if typ.Kind() != reflect.Struct {
		return nil
	}

	var fields []string

	for i := range typ.NumField() {
		field := typ.Field(i)
		dbTag := field.Tag.Get("db")

		if dbTag != "" && dbTag != "-" {
			fields = append(fields, dbTag)
		}
	}

	return fields
}
