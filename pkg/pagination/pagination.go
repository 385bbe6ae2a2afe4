package pagination

import (
	"math"
	"net/url"
	"strconv"
)

// PageRequest selects one 1-based page.
type PageRequest struct {
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
}

// Normalize clamps the request into the bounds of cfg.
func (r *PageRequest) Normalize(cfg Config) {
	if r.Page < 1 {
		r.Page = 1
	}
	if r.PageSize < 1 {
		r.PageSize = cfg.DefaultPageSize
	}
	if r.PageSize > cfg.MaxPageSize {
		r.PageSize = cfg.MaxPageSize
	}
	if r.PageSize > 0 && r.Page > math.MaxInt/r.PageSize {
		r.Page = math.MaxInt / r.PageSize
	}
}

// Offset returns the number of items before the requested page.
// It never goes negative and saturates at math.MaxInt.
func (r PageRequest) Offset() int {
	if r.Page < 1 || r.PageSize < 1 {
		return 0
	}
	if r.Page-1 > math.MaxInt/r.PageSize {
		return math.MaxInt
	}
	return (r.Page - 1) * r.PageSize
}

// PageRequestFromQuery reads page and page_size from values and normalizes them.
// Unparseable values fall back to the defaults.
func PageRequestFromQuery(values url.Values, cfg Config) PageRequest {
	page, _ := strconv.Atoi(values.Get("page"))
	pageSize, _ := strconv.Atoi(values.Get("page_size"))

	req := PageRequest{Page: page, PageSize: pageSize}
	req.Normalize(cfg)
	return req
}

// PageResult is one page of items plus the totals needed to walk the rest.
type PageResult[T any] struct {
	Data       []T `json:"data"`
	Total      int `json:"total"`
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalPages int `json:"total_pages"`
}

// NewPageResult creates a PageResult, computing TotalPages from total.
// A nil data slice is reported as empty.
func NewPageResult[T any](data []T, total int, req PageRequest) PageResult[T] {
	totalPages := 1
	if req.PageSize > 0 && total > 0 {
		totalPages = (total + req.PageSize - 1) / req.PageSize
	}

	if data == nil {
		data = []T{}
	}

	return PageResult[T]{
		Data:       data,
		Total:      total,
		Page:       req.Page,
		PageSize:   req.PageSize,
		TotalPages: totalPages,
	}
}

// Slice pages through items already held in memory.
func Slice[T any](items []T, req PageRequest) PageResult[T] {
	start := min(req.Offset(), len(items))
	end := start + max(min(req.PageSize, len(items)-start), 0)
	return NewPageResult(items[start:end:end], len(items), req)
}
