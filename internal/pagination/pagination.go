// Package pagination turns a countable, windowable query into a page of
// results plus navigation metadata.
package pagination

import (
	"context"
	"math"
	"net/url"
	"strconv"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// Params is a requested page. Page is 1-based.
type Params struct {
	Page  int
	Limit int
}

// ParseParams reads page and limit from the query string. Missing, non-numeric
// or non-positive values fall back to the defaults; limit is capped at MaxLimit.
func ParseParams(values url.Values) Params {
	p := Params{
		Page:  atoiOr(values.Get("page"), DefaultPage),
		Limit: atoiOr(values.Get("limit"), DefaultLimit),
	}
	return p.Normalize()
}

func atoiOr(raw string, def int) int {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}

// Normalize applies the same defaults and caps as ParseParams. Page is capped
// so that Page*Limit still fits in an int.
func (p Params) Normalize() Params {
	if p.Page < 1 {
		p.Page = DefaultPage
	}
	if p.Limit < 1 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	if maxPage := math.MaxInt / p.Limit; p.Page > maxPage {
		p.Page = maxPage
	}
	return p
}

// Offset is the zero-based index of the first item on the page.
func (p Params) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Meta describes where a page sits in the full result set.
type Meta struct {
	CurrentPage  int  `json:"currentPage"`
	TotalPages   int  `json:"totalPages"`
	TotalItems   int  `json:"totalItems"`
	Limit        int  `json:"limit"`
	PreviousPage *int `json:"previousPage,omitempty"`
	NextPage     *int `json:"nextPage,omitempty"`
}

// Page is a window of items with its metadata.
type Page[T any] struct {
	Data       []T  `json:"data"`
	Pagination Meta `json:"pagination"`
}

// Source is a query descriptor: something that can be counted and read in windows.
type Source[T any] interface {
	Count(ctx context.Context) (int, error)
	Fetch(ctx context.Context, offset, limit int) ([]T, error)
}

// Paginate counts the source and fetches the requested window. The two reads are
// not taken from a shared snapshot.
func Paginate[T any](ctx context.Context, src Source[T], p Params) (Page[T], error) {
	p = p.Normalize()

	total, err := src.Count(ctx)
	if err != nil {
		return Page[T]{}, err
	}

	items, err := src.Fetch(ctx, p.Offset(), p.Limit)
	if err != nil {
		return Page[T]{}, err
	}
	if items == nil {
		items = []T{}
	}

	return Page[T]{Data: items, Pagination: NewMeta(p, total)}, nil
}

// NewMeta computes navigation metadata for a page over total items.
func NewMeta(p Params, total int) Meta {
	p = p.Normalize()
	m := Meta{
		CurrentPage: p.Page,
		TotalPages:  (total + p.Limit - 1) / p.Limit,
		TotalItems:  total,
		Limit:       p.Limit,
	}
	start := p.Offset()
	if start > 0 {
		prev := p.Page - 1
		m.PreviousPage = &prev
	}
	if start+p.Limit < total {
		next := p.Page + 1
		m.NextPage = &next
	}
	return m
}

// FromSlice adapts an already materialized result set into a Source.
func FromSlice[T any](items []T) Source[T] {
	return sliceSource[T](items)
}

type sliceSource[T any] []T

func (s sliceSource[T]) Count(context.Context) (int, error) {
	return len(s), nil
}

func (s sliceSource[T]) Fetch(_ context.Context, offset, limit int) ([]T, error) {
	if offset < 0 || limit < 1 || offset >= len(s) {
		return []T{}, nil
	}
	end := offset + limit
	if end > len(s) || end < offset {
		end = len(s)
	}
	out := make([]T, end-offset)
	copy(out, s[offset:end])
	return out, nil
}
