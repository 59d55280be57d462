package helpers

import (
	"net/http"
	"strconv"
	"strings"

	"eventsapi/internal/domain"
)

// Pagination query parameter defaults and limits.
const (
	DefaultPage     = 1
	DefaultPageSize = domain.DefaultPageSize
	MaxPageSize     = domain.MaxPageSize
)

// WantsPagination reports whether the request asked for a page via page or page_size.
func WantsPagination(r *http.Request) bool {
	q := r.URL.Query()
	return q.Has("page") || q.Has("page_size")
}

// ParsePagination reads page, page_size and sort from the request query string,
// clamps them to valid ranges, and returns domain.PaginationParams.
// Invalid or missing values fall back to defaults.
func ParsePagination(r *http.Request) domain.PaginationParams {
	page := DefaultPage
	if s := r.URL.Query().Get("page"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v >= 1 {
			page = v
		}
	}
	pageSize := DefaultPageSize
	if s := r.URL.Query().Get("page_size"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v >= 1 {
			pageSize = v
			if pageSize > MaxPageSize {
				pageSize = MaxPageSize
			}
		}
	}
	return domain.PaginationParams{Page: page, PageSize: pageSize, Sort: parseSort(r.URL.Query().Get("sort"))}
}

// parseSort accepts "field" or "field,asc|desc". Unknown fields or directions yield the default order.
func parseSort(raw string) domain.SortOrder {
	def := domain.SortOrder{Field: domain.SortByID}
	field, dir, _ := strings.Cut(strings.TrimSpace(raw), ",")
	field = strings.ToLower(strings.TrimSpace(field))
	if !domain.IsSortableField(field) {
		return def
	}
	switch strings.ToLower(strings.TrimSpace(dir)) {
	case "", "asc":
		return domain.SortOrder{Field: field}
	case "desc":
		return domain.SortOrder{Field: field, Desc: true}
	}
	return def
}

// PaginationMeta is the pagination metadata included in paginated list responses.
// swagger:model PaginationMeta
type PaginationMeta struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// NewPaginationMeta builds PaginationMeta from the current page, page size, and total count.
// TotalPages is computed as ceiling(total / pageSize); if pageSize is 0, TotalPages is 0.
func NewPaginationMeta(page, pageSize, total int) PaginationMeta {
	return PaginationMeta{
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: domain.Page[struct{}]{Total: total, PageSize: pageSize}.TotalPages(),
	}
}
