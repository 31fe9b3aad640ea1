package pagination_test

import (
	"math"
	"net/url"
	"testing"

	"github.com/JaimeStill/folio/pkg/pagination"
)

func testConfig() pagination.Config {
	return pagination.Config{DefaultPerPage: 25, MaxPerPage: 100}
}

func TestPageRequestFromQuery(t *testing.T) {
	tests := []struct {
		name        string
		query       string
		wantPage    int
		wantPerPage int
		wantSearch  string
		wantOffset  int
	}{
		{"defaults", "", 0, 25, "", 0},
		{"explicit", "page=1&per_page=2", 1, 2, "", 2},
		{"negative page", "page=-3", 0, 25, "", 0},
		{"per page capped", "per_page=500", 0, 100, "", 0},
		{"zero per page uses default", "per_page=0", 0, 25, "", 0},
		{"invalid numbers", "page=x&per_page=y", 0, 25, "", 0},
		{"search", "search=rock", 0, 25, "rock", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values, _ := url.ParseQuery(tt.query)
			req := pagination.PageRequestFromQuery(values, testConfig())

			if req.Page != tt.wantPage {
				t.Errorf("page: got %d, want %d", req.Page, tt.wantPage)
			}
			if req.PerPage != tt.wantPerPage {
				t.Errorf("per_page: got %d, want %d", req.PerPage, tt.wantPerPage)
			}
			if req.Offset() != tt.wantOffset {
				t.Errorf("offset: got %d, want %d", req.Offset(), tt.wantOffset)
			}
			gotSearch := ""
			if req.Search != nil {
				gotSearch = *req.Search
			}
			if gotSearch != tt.wantSearch {
				t.Errorf("search: got %q, want %q", gotSearch, tt.wantSearch)
			}
		})
	}
}

func TestNormalizeClampsHugePage(t *testing.T) {
	tests := []struct {
		name     string
		page     int
		perPage  int
		wantPage int
	}{
		{"max int page", math.MaxInt, 100, pagination.MaxOffset / 100},
		{"overflowing product", math.MaxInt/100 + 1, 100, pagination.MaxOffset / 100},
		{"at bound", pagination.MaxOffset / 25, 25, pagination.MaxOffset / 25},
		{"ordinary page", 4, 25, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := pagination.PageRequest{Page: tt.page, PerPage: tt.perPage}
			req.Normalize(testConfig())

			if req.Page != tt.wantPage {
				t.Errorf("page: got %d, want %d", req.Page, tt.wantPage)
			}
			if off := req.Offset(); off < 0 || off > pagination.MaxOffset {
				t.Errorf("offset: got %d, want within [0, %d]", off, pagination.MaxOffset)
			}
		})
	}
}

func TestPageRequestFromQueryHugePage(t *testing.T) {
	values, _ := url.ParseQuery("page=9223372036854775807&per_page=100")
	req := pagination.PageRequestFromQuery(values, testConfig())

	if off := req.Offset(); off < 0 || off > pagination.MaxOffset {
		t.Errorf("offset: got %d, want within [0, %d]", off, pagination.MaxOffset)
	}
}

func TestNewPageResult(t *testing.T) {
	tests := []struct {
		name           string
		total          int
		perPage        int
		wantTotalPages int
	}{
		{"empty", 0, 25, 1},
		{"exact", 50, 25, 2},
		{"remainder", 51, 25, 3},
		{"single", 1, 25, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := pagination.NewPageResult[string](nil, tt.total, 0, tt.perPage)
			if r.TotalPages != tt.wantTotalPages {
				t.Errorf("total_pages: got %d, want %d", r.TotalPages, tt.wantTotalPages)
			}
			if r.Data == nil {
				t.Error("data should be empty slice, not nil")
			}
		})
	}
}

func TestConfigFinalize(t *testing.T) {
	t.Setenv("TEST_PER_PAGE", "10")

	cfg := pagination.Config{}
	if err := cfg.Finalize(&pagination.ConfigEnv{DefaultPerPage: "TEST_PER_PAGE"}); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if cfg.DefaultPerPage != 10 || cfg.MaxPerPage != 100 {
		t.Errorf("got default %d max %d, want 10 and 100", cfg.DefaultPerPage, cfg.MaxPerPage)
	}

	bad := pagination.Config{DefaultPerPage: 200, MaxPerPage: 100}
	if err := bad.Finalize(nil); err == nil {
		t.Error("expected error when default exceeds max")
	}
}
