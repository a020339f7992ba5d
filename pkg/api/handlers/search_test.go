package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/scoutindex/scoutindex/pkg/engine"
)

func seededEngine(t *testing.T) *engine.Engine {
	t.Helper()
	eng := testEngine(t, true)
	if _, err := eng.AddDocument(engine.Document{
		DocID:   1,
		Name:    "Lionel Messi",
		Content: "Messi is a striker who has scored many goals for Barcelona.",
	}); err != nil {
		t.Fatalf("AddDocument() error: %v", err)
	}
	return eng
}

func TestSearchHandler_GetQueryString(t *testing.T) {
	eng := seededEngine(t)
	handler := NewSearchHandler(eng)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/search?q=Messi", nil)
	w := httptest.NewRecorder()
	handler.Search(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Search() status = %v, want %v, body=%s", w.Code, http.StatusOK, w.Body.String())
	}
}

func TestSearchHandler_GetMissingQueryIsBadRequest(t *testing.T) {
	eng := seededEngine(t)
	handler := NewSearchHandler(eng)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/search", nil)
	w := httptest.NewRecorder()
	handler.Search(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("Search() status = %v, want %v", w.Code, http.StatusBadRequest)
	}
}

func TestSearchHandler_PostJSONBody(t *testing.T) {
	eng := seededEngine(t)
	handler := NewSearchHandler(eng)

	body := strings.NewReader(`{"query": "Messi", "top_k": 5}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/search", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	handler.Search(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Search() status = %v, want %v, body=%s", w.Code, http.StatusOK, w.Body.String())
	}
}

func TestSearchHandler_PostMissingQueryIsBadRequest(t *testing.T) {
	eng := seededEngine(t)
	handler := NewSearchHandler(eng)

	body := strings.NewReader(`{"top_k": 5}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/search", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	handler.Search(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("Search() status = %v, want %v", w.Code, http.StatusBadRequest)
	}
}
