package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pressindex/pressindex/internal/search"
	pkgerrors "github.com/pressindex/pressindex/pkg/errors"
)

// fakeSearcher records the last call and returns canned results.
type fakeSearcher struct {
	results   []search.Result
	err       error
	lastQuery string
	lastTopK  int
}

func (f *fakeSearcher) Search(query string, topK int) ([]search.Result, error) {
	f.lastQuery = query
	f.lastTopK = topK
	return f.results, f.err
}

func doSearch(t *testing.T, h *Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	h.Search(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var body T
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding response body %q: %v", rec.Body.String(), err)
	}
	return body
}

func TestSearchHandler(t *testing.T) {
	searcher := &fakeSearcher{results: []search.Result{
		{ID: 3, Score: 0.91, Title: "Top story", Snippet: "A snippet."},
		{ID: 8, Score: 0.42, Title: "Second story"},
	}}
	h := New(searcher, nil, nil, 10, 100)

	rec := doSearch(t, h, "/api/v1/search?q=economy")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); got != "application/json" {
		t.Errorf("Content-Type = %q", got)
	}
	body := decodeBody[SearchResponse](t, rec)
	if body.Query != "economy" || body.Count != 2 || len(body.Results) != 2 {
		t.Errorf("body = %+v", body)
	}
	if body.Results[0].ID != 3 || body.Results[0].Title != "Top story" {
		t.Errorf("first result = %+v", body.Results[0])
	}
	if searcher.lastTopK != 10 {
		t.Errorf("default limit = %d, want 10", searcher.lastTopK)
	}
}

func TestSearchHandlerMissingQuery(t *testing.T) {
	h := New(&fakeSearcher{}, nil, nil, 10, 100)
	rec := doSearch(t, h, "/api/v1/search")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestSearchHandlerLimit(t *testing.T) {
	cases := []struct {
		name       string
		limit      string
		wantStatus int
		wantTopK   int
	}{
		{name: "explicit limit", limit: "5", wantStatus: 200, wantTopK: 5},
		{name: "clamped to max", limit: "9999", wantStatus: 200, wantTopK: 100},
		{name: "not a number", limit: "abc", wantStatus: 400},
		{name: "zero", limit: "0", wantStatus: 400},
		{name: "negative", limit: "-3", wantStatus: 400},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			searcher := &fakeSearcher{results: []search.Result{}}
			h := New(searcher, nil, nil, 10, 100)
			rec := doSearch(t, h, "/api/v1/search?q=x&limit="+tc.limit)
			if rec.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tc.wantStatus)
			}
			if tc.wantStatus == http.StatusOK && searcher.lastTopK != tc.wantTopK {
				t.Errorf("topK = %d, want %d", searcher.lastTopK, tc.wantTopK)
			}
		})
	}
}

func TestSearchHandlerNotReady(t *testing.T) {
	h := New(&fakeSearcher{err: pkgerrors.ErrNotReady}, nil, nil, 10, 100)
	rec := doSearch(t, h, "/api/v1/search?q=economy")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
	body := decodeBody[map[string]string](t, rec)
	if body["error"] == "" {
		t.Error("error body missing message")
	}
}

func TestSearchHandlerInternalError(t *testing.T) {
	h := New(&fakeSearcher{err: pkgerrors.ErrInternal}, nil, nil, 10, 100)
	rec := doSearch(t, h, "/api/v1/search?q=economy")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
}

func TestCacheEndpointsWithoutCache(t *testing.T) {
	h := New(&fakeSearcher{}, nil, nil, 10, 100)

	rec := httptest.NewRecorder()
	h.CacheStats(rec, httptest.NewRequest(http.MethodGet, "/api/v1/cache/stats", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("CacheStats status = %d, want 200", rec.Code)
	}
	stats := decodeBody[map[string]string](t, rec)
	if stats["status"] != "disabled" {
		t.Errorf("CacheStats body = %v", stats)
	}

	rec = httptest.NewRecorder()
	h.CacheInvalidate(rec, httptest.NewRequest(http.MethodPost, "/api/v1/cache/invalidate", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("CacheInvalidate status = %d, want 503", rec.Code)
	}
}
