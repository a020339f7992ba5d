package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestDocumentHandler_AddDocument(t *testing.T) {
	eng := testEngine(t, true)
	handler := NewDocumentHandler(eng)

	body := strings.NewReader(`{"player_id": 1, "player_name": "Lionel Messi", "detailed_content": "Striker from Rosario."}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	handler.AddDocument(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("AddDocument() status = %v, want %v, body=%s", w.Code, http.StatusCreated, w.Body.String())
	}
}

func TestDocumentHandler_MissingFieldIsBadRequest(t *testing.T) {
	eng := testEngine(t, true)
	handler := NewDocumentHandler(eng)

	body := strings.NewReader(`{"detailed_content": "No name or id."}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	handler.AddDocument(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("AddDocument() status = %v, want %v", w.Code, http.StatusBadRequest)
	}
}

func TestDocumentHandler_DuplicateIsConflict(t *testing.T) {
	eng := testEngine(t, true)
	handler := NewDocumentHandler(eng)

	payload := `{"player_id": 1, "player_name": "Lionel Messi", "detailed_content": "Striker from Rosario."}`

	first := httptest.NewRequest(http.MethodPost, "/api/v1/documents", strings.NewReader(payload))
	first.Header.Set("Content-Type", "application/json")
	w1 := httptest.NewRecorder()
	handler.AddDocument(w1, first)
	if w1.Code != http.StatusCreated {
		t.Fatalf("first AddDocument() status = %v, want %v", w1.Code, http.StatusCreated)
	}

	second := httptest.NewRequest(http.MethodPost, "/api/v1/documents", strings.NewReader(payload))
	second.Header.Set("Content-Type", "application/json")
	w2 := httptest.NewRecorder()
	handler.AddDocument(w2, second)
	if w2.Code != http.StatusConflict {
		t.Fatalf("duplicate AddDocument() status = %v, want %v", w2.Code, http.StatusConflict)
	}
}

func TestDocumentHandler_InvalidJSONIsBadRequest(t *testing.T) {
	eng := testEngine(t, true)
	handler := NewDocumentHandler(eng)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents", strings.NewReader(`not json`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	handler.AddDocument(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("AddDocument() status = %v, want %v", w.Code, http.StatusBadRequest)
	}
}
