package helpers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"eventsapi/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePagination(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  domain.PaginationParams
	}{
		{"defaults", "", domain.PaginationParams{Page: 1, PageSize: 20, Sort: domain.SortOrder{Field: "id"}}},
		{"explicit", "page=3&page_size=5", domain.PaginationParams{Page: 3, PageSize: 5, Sort: domain.SortOrder{Field: "id"}}},
		{"clamped size", "page_size=1000", domain.PaginationParams{Page: 1, PageSize: MaxPageSize, Sort: domain.SortOrder{Field: "id"}}},
		{"invalid values", "page=-1&page_size=abc", domain.PaginationParams{Page: 1, PageSize: 20, Sort: domain.SortOrder{Field: "id"}}},
		{"sort asc", "sort=title", domain.PaginationParams{Page: 1, PageSize: 20, Sort: domain.SortOrder{Field: "title"}}},
		{"sort desc", "sort=datetime,desc", domain.PaginationParams{Page: 1, PageSize: 20, Sort: domain.SortOrder{Field: "datetime", Desc: true}}},
		{"unknown sort field", "sort=deleted,desc", domain.PaginationParams{Page: 1, PageSize: 20, Sort: domain.SortOrder{Field: "id"}}},
		{"unknown direction", "sort=title,sideways", domain.PaginationParams{Page: 1, PageSize: 20, Sort: domain.SortOrder{Field: "id"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "http://test/events?"+tt.query, nil)
			assert.Equal(t, tt.want, ParsePagination(r))
		})
	}
}

func TestWantsPagination(t *testing.T) {
	assert.False(t, WantsPagination(httptest.NewRequest(http.MethodGet, "http://test/events", nil)))
	assert.True(t, WantsPagination(httptest.NewRequest(http.MethodGet, "http://test/events?page=1", nil)))
	assert.True(t, WantsPagination(httptest.NewRequest(http.MethodGet, "http://test/events?page_size=10", nil)))
}

func TestNewPaginationMeta(t *testing.T) {
	assert.Equal(t, PaginationMeta{Page: 2, PageSize: 10, Total: 25, TotalPages: 3}, NewPaginationMeta(2, 10, 25))
	assert.Equal(t, 0, NewPaginationMeta(1, 0, 25).TotalPages)
}

func TestWriteJSONFieldErrors(t *testing.T) {
	fixed := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	now = func() time.Time { return fixed }
	t.Cleanup(func() { now = time.Now })

	rr := httptest.NewRecorder()
	WriteJSONFieldErrors(rr, http.StatusBadRequest, MsgValidationFailed, domain.FieldErrors{"title": "title is required"})

	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	var body ErrorResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
	assert.Equal(t, ErrorResponse{
		Message:   MsgValidationFailed,
		Status:    http.StatusBadRequest,
		Timestamp: fixed,
		Errors:    domain.FieldErrors{"title": "title is required"},
	}, body)
}

func TestWriteJSONError_OmitsEmptyErrors(t *testing.T) {
	rr := httptest.NewRecorder()
	WriteJSONError(rr, http.StatusNotFound, MsgEventNotFound)

	require.Equal(t, http.StatusNotFound, rr.Code)
	assert.NotContains(t, rr.Body.String(), `"errors"`)
	assert.Contains(t, rr.Body.String(), `"status":404`)
}

type validatedBody struct {
	Name string `json:"name"`
}

func (b validatedBody) Validate() domain.FieldErrors {
	if b.Name == "" {
		return domain.FieldErrors{"name": "name is required"}
	}
	return nil
}

func TestDecodeAndValidate(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantOK     bool
		wantFields bool
	}{
		{"valid", `{"name":"x"}`, true, false},
		{"malformed", `{"name":`, false, false},
		{"unknown field", `{"name":"x","extra":1}`, false, false},
		{"validation failure", `{"name":""}`, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodPost, "http://test/x", strings.NewReader(tt.body))
			var dest validatedBody
			ok := DecodeAndValidate(rr, r, &dest)
			require.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				return
			}
			require.Equal(t, http.StatusBadRequest, rr.Code)
			var body ErrorResponse
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
			if tt.wantFields {
				assert.Equal(t, MsgValidationFailed, body.Message)
				assert.Equal(t, "name is required", body.Errors["name"])
			} else {
				assert.Empty(t, body.Errors)
			}
		})
	}
}
