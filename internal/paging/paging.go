// Package paging drains paginated record sources into memory. Backends
// hand out fixed-size pages; the drain walks them sequentially until a
// short page signals the end of data or the page cap is hit.
package paging

import "context"

const (
	DefaultPageSize = 100
	DefaultMaxPages = 20
)

// FetchFunc returns one page of records, 1-indexed. Implementations bind
// the customer, date window and filters; the drain only owns page
// progression.
type FetchFunc[T any] func(ctx context.Context, page, pageSize int) ([]T, error)

// Options bounds a drain. Zero values fall back to the defaults.
type Options struct {
	PageSize int
	MaxPages int
}

// Result carries the drained records plus how the drain ended.
type Result[T any] struct {
	Items []T
	Pages int
	// Capped is set when the drain stopped at MaxPages while the last
	// page was still full, so more data may remain upstream.
	Capped bool
}

// Drain pulls pages sequentially starting at 1, accumulating records in
// fetch order. A page shorter than the page size ends the drain normally.
// Reaching MaxPages with a full final page stops the drain and sets
// Capped. Any fetch error aborts the drain and discards everything
// accumulated so far, so callers never see a half-drained result.
func Drain[T any](ctx context.Context, fetch FetchFunc[T], opts Options) (Result[T], error) {
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	maxPages := opts.MaxPages
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}

	var res Result[T]
	for page := 1; page <= maxPages; page++ {
		if err := ctx.Err(); err != nil {
			return Result[T]{}, err
		}
		items, err := fetch(ctx, page, pageSize)
		if err != nil {
			return Result[T]{}, err
		}
		res.Pages = page
		res.Items = append(res.Items, items...)
		if len(items) < pageSize {
			return res, nil
		}
	}
	res.Capped = true
	return res, nil
}
