package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/partscout/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeSearcher records the last request and returns canned results.
type fakeSearcher struct {
	resp    *models.SearchResponse
	err     error
	lastReq models.SearchRequest
	lastSrc models.Source
}

func (f *fakeSearcher) Search(_ context.Context, req models.SearchRequest) (*models.SearchResponse, error) {
	f.lastReq = req
	return f.resp, f.err
}

func (f *fakeSearcher) SearchSource(_ context.Context, req models.SearchRequest, src models.Source) (*models.SearchResponse, error) {
	f.lastReq = req
	f.lastSrc = src
	return f.resp, f.err
}

func (f *fakeSearcher) Sources() []models.Source {
	return []models.Source{models.SourceBing, models.SourceAmazon}
}

func okResponse() *models.SearchResponse {
	return &models.SearchResponse{
		Success: true,
		Count:   1,
		Results: []models.ProductListing{{
			Title:    "Intel Core i5-12400F",
			Price:    models.PriceOf(12999),
			Link:     "https://www.amazon.in/dp/B09",
			Source:   models.SourceAmazon,
			Site:     "Amazon",
			Category: "CPU",
		}},
	}
}

func serve(h gin.HandlerFunc, method, path, target string) *httptest.ResponseRecorder {
	r := gin.New()
	r.Handle(method, path, h)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, target, nil)
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON body %q: %v", w.Body.String(), err)
	}
	return body
}

func TestSearch_StatusMapping(t *testing.T) {
	tests := []struct {
		name     string
		resp     *models.SearchResponse
		err      error
		target   string
		status   int
		code     string
		hasQuery bool
		details  bool
	}{
		{"ok", okResponse(), nil, "/api/search?query=intel+i5", http.StatusOK, "", false, false},
		{"short query", nil, models.NewSearchError(models.ErrCodeQueryTooShort, "query must be at least 2 characters long", nil), "/api/search?query=a", http.StatusBadRequest, models.ErrCodeQueryTooShort, false, false},
		{"no results", nil, models.NewSearchError(models.ErrCodeNoResults, "no products found", nil), "/api/search?query=xyzzy&seller=amazon", http.StatusNotFound, models.ErrCodeNoResults, true, false},
		{"orchestration", nil, models.NewSearchError(models.ErrCodeOrchestration, "failed to release rendering session", errors.New("kill failed")), "/api/search?query=ssd", http.StatusInternalServerError, models.ErrCodeOrchestration, false, true},
		{"untyped error", nil, errors.New("boom"), "/api/search?query=ssd", http.StatusInternalServerError, models.ErrCodeInternal, false, true},
		{"bad limit", nil, nil, "/api/search?query=ssd&limit=abc", http.StatusBadRequest, models.ErrCodeInvalidInput, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &fakeSearcher{resp: tt.resp, err: tt.err}
			w := serve(Search(s), http.MethodGet, "/api/search", tt.target)

			if w.Code != tt.status {
				t.Fatalf("status = %d, want %d (body %s)", w.Code, tt.status, w.Body.String())
			}
			body := decode(t, w)
			if tt.status == http.StatusOK {
				if body["success"] != true || body["count"].(float64) != 1 {
					t.Errorf("body = %v", body)
				}
				return
			}
			if body["success"] != false {
				t.Error("expected success=false")
			}
			if body["code"] != tt.code {
				t.Errorf("code = %v, want %s", body["code"], tt.code)
			}
			if _, ok := body["query"]; ok != tt.hasQuery {
				t.Errorf("query echoed = %v, want %v", ok, tt.hasQuery)
			}
			if _, ok := body["details"]; ok != tt.details {
				t.Errorf("details present = %v, want %v", ok, tt.details)
			}
		})
	}
}

func TestSearch_NotFoundEchoesRequest(t *testing.T) {
	s := &fakeSearcher{err: models.NewSearchError(models.ErrCodeNoResults, "no products found", nil)}
	w := serve(Search(s), http.MethodGet, "/api/search", "/api/search?query=xyzzy+nonexistent")

	body := decode(t, w)
	if body["query"] != "xyzzy nonexistent" {
		t.Errorf("query = %v", body["query"])
	}
	if body["seller"] != "all" {
		t.Errorf("seller = %v, want all", body["seller"])
	}
}

func TestSearch_BindsParameters(t *testing.T) {
	s := &fakeSearcher{resp: okResponse()}
	serve(Search(s), http.MethodGet, "/api/search", "/api/search?query=rtx+4060&seller=flipkart&limit=7")

	if s.lastReq.Query != "rtx 4060" || s.lastReq.Seller != "flipkart" || s.lastReq.Limit != 7 {
		t.Errorf("request = %+v", s.lastReq)
	}
}

func TestSearch_PriceUnavailable(t *testing.T) {
	resp := okResponse()
	resp.Results[0].Price = models.PriceUnavailable
	w := serve(Search(&fakeSearcher{resp: resp}), http.MethodGet, "/api/search", "/api/search?query=cpu")

	body := decode(t, w)
	first := body["results"].([]any)[0].(map[string]any)
	if first["price"] != "unavailable" {
		t.Errorf("price = %v, want \"unavailable\"", first["price"])
	}
}

func TestBingSearch(t *testing.T) {
	s := &fakeSearcher{resp: okResponse()}
	w := serve(BingSearch(s), http.MethodGet, "/api/bing-search", "/api/bing-search?query=ssd&seller=amazon&limit=3")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if s.lastSrc != models.SourceBing {
		t.Errorf("source = %s, want bing", s.lastSrc)
	}
	if s.lastReq.Limit != 3 {
		t.Errorf("limit = %d", s.lastReq.Limit)
	}
}

type fixedCounter int

func (f fixedCounter) Active() int { return int(f) }

func TestHealth(t *testing.T) {
	h := Health(&fakeSearcher{}, fixedCounter(1), time.Now().Add(-time.Minute))
	w := serve(h, http.MethodGet, "/api/health", "/api/health")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp models.HealthResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Status != "healthy" || resp.ActiveSessions != 1 || len(resp.Sources) != 2 {
		t.Errorf("resp = %+v", resp)
	}
}
