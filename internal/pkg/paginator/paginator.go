package paginator

import (
	"context"
	"fmt"

	"github.com/paulexconde/complyform/internal/pkg/store"
)

type Page[T any] struct {
	Items       []T  `json:"items"`
	CurrentPage int  `json:"currentPage"`
	TotalPages  int  `json:"totalPages"`
	NextPage    *int `json:"nextPage"`
	TotalItems  int  `json:"totalItems"`
}

type Paginator[T any] interface {
	// Pagination based from custom query.
	PaginateQuery(ctx context.Context, query string, args []any, page, limit int) (*Page[T], error)
	// Walks every page in order until fn returns an error or the pages run out.
	Each(ctx context.Context, query string, args []any, limit int, fn func(items []T) error) error
}

type paginatorImpl[T any] struct {
	datastore store.Datastorer[T]
}

func NewPaginator[T any](ds store.Datastorer[T]) Paginator[T] {
	return &paginatorImpl[T]{datastore: ds}
}

func (p *paginatorImpl[T]) PaginateQuery(ctx context.Context, query string, args []any, page, limit int) (*Page[T], error) {
	page, limit = normalize(page, limit)

	offset := (page - 1) * limit

	// Count total rows using a subquery
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM (%s) AS total_count", query)
	totalItemsRaw, err := p.datastore.QueryRow(ctx, countQuery, args...)
	if err != nil {
		return nil, err
	}

	totalItems, err := toInt(totalItemsRaw)
	if err != nil {
		return nil, err
	}

	totalPages := (totalItems + limit - 1) / limit

	// the caller's args stay untouched
	pageArgs := append(append(make([]any, 0, len(args)+2), args...), limit, offset)
	paginatedQuery := fmt.Sprintf("%s LIMIT $%d OFFSET $%d", query, len(args)+1, len(args)+2)

	items, err := p.datastore.Select(ctx, paginatedQuery, pageArgs...)
	if err != nil {
		return nil, err
	}

	var nextPage *int
	if page < totalPages {
		n := page + 1
		nextPage = &n
	}

	return &Page[T]{
		Items:       items,
		CurrentPage: page,
		TotalPages:  totalPages,
		NextPage:    nextPage,
		TotalItems:  totalItems,
	}, nil
}

func (p *paginatorImpl[T]) Each(ctx context.Context, query string, args []any, limit int, fn func(items []T) error) error {
	page := 1
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		result, err := p.PaginateQuery(ctx, query, args, page, limit)
		if err != nil {
			return err
		}

		if len(result.Items) > 0 {
			if err := fn(result.Items); err != nil {
				return err
			}
		}

		if result.NextPage == nil {
			return nil
		}
		page = *result.NextPage
	}
}

func normalize(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	return page, limit
}

func toInt(raw any) (int, error) {
	switch v := raw.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case int32:
		return int(v), nil
	default:
		return 0, fmt.Errorf("expected int for total count, got %T", raw)
	}
}
