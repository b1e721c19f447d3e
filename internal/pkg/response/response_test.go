package response_test

import (
	"net/http/httptest"
	"testing"

	"github.com/covergen/covergen-api/internal/pkg/response"
)

func TestPagination(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantLimit  int
		wantOffset int
	}{
		{"defaults when absent", "", 20, 0},
		{"passes valid values", "limit=50&offset=40", 50, 40},
		{"clamps zero limit", "limit=0", 20, 0},
		{"clamps negative limit", "limit=-5", 20, 0},
		{"clamps oversized limit", "limit=500", 20, 0},
		{"clamps negative offset", "offset=-10", 20, 0},
		{"ignores garbage", "limit=abc&offset=xyz", 20, 0},
		{"max limit allowed", "limit=100", 100, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/?"+tt.query, nil)
			limit, offset := response.Pagination(r)
			if limit != tt.wantLimit || offset != tt.wantOffset {
				t.Fatalf("got limit=%d offset=%d, want limit=%d offset=%d",
					limit, offset, tt.wantLimit, tt.wantOffset)
			}
		})
	}
}
