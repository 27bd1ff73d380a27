package pagination

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/JaimeStill/auditmarks/pkg/query"
)

// SortFields decodes from a comma-separated string ("Symbol,-CreatedAt"),
// an array of such terms, or an array of query.SortField objects.
type SortFields []query.SortField

func (s *SortFields) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		*s = query.ParseSortFields(str)
		return nil
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("sort: expected string or array: %w", err)
	}

	fields := make(SortFields, 0, len(raw))
	for _, item := range raw {
		var term string
		if err := json.Unmarshal(item, &term); err == nil {
			fields = append(fields, query.ParseSortFields(term)...)
			continue
		}
		var f query.SortField
		if err := json.Unmarshal(item, &f); err != nil {
			return fmt.Errorf("sort: %w", err)
		}
		fields = append(fields, f)
	}
	*s = fields
	return nil
}

// PageRequest is a client request for one page of a searchable, sortable list.
type PageRequest struct {
	Page     int        `json:"page"`
	PageSize int        `json:"page_size"`
	Search   *string    `json:"search,omitempty"`
	Sort     SortFields `json:"sort,omitempty"`
}

// Normalize clamps Page to at least 1 and PageSize into [1, cfg.MaxPageSize],
// substituting cfg.DefaultPageSize for an unset size.
func (r *PageRequest) Normalize(cfg Config) {
	r.Page = max(r.Page, 1)
	if r.PageSize < 1 {
		r.PageSize = cfg.DefaultPageSize
	}
	r.PageSize = min(r.PageSize, cfg.MaxPageSize)
}

// Offset is the number of rows preceding the requested page.
func (r *PageRequest) Offset() int {
	return (r.Page - 1) * r.PageSize
}

// PageRequestFromQuery reads page, page_size, search and sort from query
// values. Repeated sort parameters are concatenated; a blank search is unset.
func PageRequestFromQuery(values url.Values, cfg Config) PageRequest {
	req := PageRequest{
		Sort: query.ParseSortFields(strings.Join(values["sort"], ",")),
	}
	req.Page, _ = strconv.Atoi(values.Get("page"))
	req.PageSize, _ = strconv.Atoi(values.Get("page_size"))

	if s := strings.TrimSpace(values.Get("search")); s != "" {
		req.Search = &s
	}

	req.Normalize(cfg)
	return req
}

// PageResult is one page of T plus the totals a client needs to page further.
type PageResult[T any] struct {
	Data       []T `json:"data"`
	Total      int `json:"total"`
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalPages int `json:"total_pages"`
}

// NewPageResult wraps data as page of a total-row listing. TotalPages is at
// least 1 and Data is never nil, so empty listings encode as [].
func NewPageResult[T any](data []T, total, page, pageSize int) PageResult[T] {
	if data == nil {
		data = []T{}
	}

	pages := 1
	if pageSize > 0 && total > 0 {
		pages = (total + pageSize - 1) / pageSize
	}

	return PageResult[T]{
		Data:       data,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: pages,
	}
}
