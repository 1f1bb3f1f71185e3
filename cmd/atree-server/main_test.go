package main

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kaleidodag/atree"
)

func newTestServer(t *testing.T) *server {
	t.Helper()
	defs := []atree.AttrDef{
		{Name: "exchange_id", Type: atree.Int},
		{Name: "private", Type: atree.Bool},
	}
	s, err := newServer(defs, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("newServer: %v", err)
	}
	return s
}

func postJSON(t *testing.T, h http.HandlerFunc, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(raw))
	w := httptest.NewRecorder()
	h(w, req)
	return w
}

func TestHandleDeclareReplacesSchema(t *testing.T) {
	s := newTestServer(t)

	w := postJSON(t, s.handleDeclare, map[string]any{
		"attributes": []map[string]any{
			{"name": "region", "type": "string"},
		},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("declare status = %d, body = %s", w.Code, w.Body.String())
	}

	w = postJSON(t, s.handleInsert, map[string]any{"id": 1, "expr": `region = "eu"`})
	if w.Code != http.StatusOK {
		t.Fatalf("insert after declare status = %d, body = %s", w.Code, w.Body.String())
	}
}

func TestHandleDeclareRefusedAfterInsert(t *testing.T) {
	s := newTestServer(t)
	postJSON(t, s.handleInsert, map[string]any{"id": 1, "expr": "private"})

	w := postJSON(t, s.handleDeclare, map[string]any{
		"attributes": []map[string]any{
			{"name": "region", "type": "string"},
		},
	})
	if w.Code != http.StatusConflict {
		t.Errorf("status = %d, want %d", w.Code, http.StatusConflict)
	}
}

func TestHandleInsertAndSearch(t *testing.T) {
	s := newTestServer(t)

	w := postJSON(t, s.handleInsert, map[string]any{"id": 1, "expr": "exchange_id = 1 AND private"})
	if w.Code != http.StatusOK {
		t.Fatalf("insert status = %d, body = %s", w.Code, w.Body.String())
	}

	w = postJSON(t, s.handleSearch, map[string]any{
		"ints":  map[string]int64{"exchange_id": 1},
		"bools": map[string]bool{"private": true},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("search status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp struct {
		Matched []uint64 `json:"matched"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Matched) != 1 || resp.Matched[0] != 1 {
		t.Errorf("matched = %v, want [1]", resp.Matched)
	}
}

func TestHandleInsertRejectsUnknownAttribute(t *testing.T) {
	s := newTestServer(t)

	w := postJSON(t, s.handleInsert, map[string]any{"id": 1, "expr": "nope = 1"})
	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnprocessableEntity)
	}
}

func TestHandleDeleteThenSearchNoLongerMatches(t *testing.T) {
	s := newTestServer(t)

	postJSON(t, s.handleInsert, map[string]any{"id": 7, "expr": "exchange_id = 2"})
	postJSON(t, s.handleDelete, map[string]any{"id": 7})

	w := postJSON(t, s.handleSearch, map[string]any{"ints": map[string]int64{"exchange_id": 2}})
	var resp struct {
		Matched []uint64 `json:"matched"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Matched) != 0 {
		t.Errorf("matched = %v, want none after delete", resp.Matched)
	}
}

func TestHandleRenderReturnsDOT(t *testing.T) {
	s := newTestServer(t)
	postJSON(t, s.handleInsert, map[string]any{"id": 1, "expr": "private"})

	req := httptest.NewRequest(http.MethodGet, "/render", nil)
	w := httptest.NewRecorder()
	s.handleRender(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if got := w.Header().Get("Content-Type"); got != "text/vnd.graphviz" {
		t.Errorf("Content-Type = %q", got)
	}
	if !bytes.Contains(w.Body.Bytes(), []byte("digraph")) {
		t.Errorf("body does not look like DOT: %s", w.Body.String())
	}
}

func TestCorsMiddlewareAllowsConfiguredOrigin(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := corsMiddleware(mux)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", allowedOrigins[0])
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != allowedOrigins[0] {
		t.Errorf("Access-Control-Allow-Origin = %q, want %q", got, allowedOrigins[0])
	}
}

func TestCorsMiddlewareOptionsIsNoContent(t *testing.T) {
	mux := http.NewServeMux()
	handler := corsMiddleware(mux)

	req := httptest.NewRequest(http.MethodOptions, "/ping", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNoContent)
	}
}
