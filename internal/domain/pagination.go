package domain

// Sortable event columns.
const (
	SortByID       = "id"
	SortByTitle    = "title"
	SortByDateTime = "datetime"
	SortByLocation = "location"
)

// SortOrder is a single ORDER BY term.
type SortOrder struct {
	Field string
	Desc  bool
}

// IsSortableField reports whether field can be used in a SortOrder.
func IsSortableField(field string) bool {
	switch field {
	case SortByID, SortByTitle, SortByDateTime, SortByLocation:
		return true
	}
	return false
}

// Page size bounds applied by Normalize.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// PaginationParams holds offset-based pagination parameters for list queries.
type PaginationParams struct {
	Page     int
	PageSize int
	Sort     SortOrder
}

// Offset returns the row offset for the current page (0-based).
// Formula: (Page - 1) * PageSize.
func (p PaginationParams) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.PageSize
}

// Normalize returns p with Page >= 1, PageSize within 1..MaxPageSize (DefaultPageSize
// when unset) and an unknown sort field replaced by id.
func (p PaginationParams) Normalize() PaginationParams {
	if p.Page < 1 {
		p.Page = 1
	}
	switch {
	case p.PageSize < 1:
		p.PageSize = DefaultPageSize
	case p.PageSize > MaxPageSize:
		p.PageSize = MaxPageSize
	}
	if !IsSortableField(p.Sort.Field) {
		p.Sort = SortOrder{Field: SortByID}
	}
	return p
}

// Page is one slice of a larger result set plus the total number of matching items.
type Page[T any] struct {
	Items    []T
	Total    int
	Page     int
	PageSize int
}

// TotalPages is ceiling(Total / PageSize); 0 when PageSize is 0.
func (p Page[T]) TotalPages() int {
	if p.PageSize <= 0 {
		return 0
	}
	return (p.Total + p.PageSize - 1) / p.PageSize
}
