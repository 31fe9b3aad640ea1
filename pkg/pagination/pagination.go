package pagination

import (
	"math"
	"net/url"
	"strconv"
)

// MaxOffset bounds Page*PerPage so the row offset never overflows.
const MaxOffset = math.MaxInt32

// PageRequest selects a zero-based page of PerPage rows.
type PageRequest struct {
	Page    int     `json:"page"`
	PerPage int     `json:"per_page"`
	Search  *string `json:"search,omitempty"`
}

// Normalize clamps the request to the configured bounds.
func (r *PageRequest) Normalize(cfg Config) {
	if r.Page < 0 {
		r.Page = 0
	}
	if r.PerPage < 1 {
		r.PerPage = cfg.DefaultPerPage
	}
	if r.PerPage > cfg.MaxPerPage {
		r.PerPage = cfg.MaxPerPage
	}
	if r.Page > MaxOffset/r.PerPage {
		r.Page = MaxOffset / r.PerPage
	}
}

// Offset returns the number of rows to skip.
func (r *PageRequest) Offset() int {
	return r.Page * r.PerPage
}

// PageRequestFromQuery parses page, per_page and search from URL query values.
func PageRequestFromQuery(values url.Values, cfg Config) PageRequest {
	page, _ := strconv.Atoi(values.Get("page"))
	perPage, _ := strconv.Atoi(values.Get("per_page"))

	var search *string
	if s := values.Get("search"); s != "" {
		search = &s
	}

	req := PageRequest{
		Page:    page,
		PerPage: perPage,
		Search:  search,
	}

	req.Normalize(cfg)
	return req
}

// PageResult is the envelope returned by list endpoints.
type PageResult[T any] struct {
	Data       []T `json:"data"`
	Total      int `json:"total"`
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	TotalPages int `json:"total_pages"`
}

// NewPageResult builds a PageResult. An empty result still reports one page.
func NewPageResult[T any](data []T, total, page, perPage int) PageResult[T] {
	totalPages := 1
	if perPage > 0 && total > 0 {
		totalPages = (total + perPage - 1) / perPage
	}

	if data == nil {
		data = []T{}
	}

	return PageResult[T]{
		Data:       data,
		Total:      total,
		Page:       page,
		PerPage:    perPage,
		TotalPages: totalPages,
	}
}
