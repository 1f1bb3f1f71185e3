// Command atree-server is a small JSON API (C9) exposing declare,
// insert, delete, search, and render over a single in-process A-Tree, for
// integration testing and demos.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"

	"github.com/google/uuid"
	"github.com/samber/oops"

	"github.com/kaleidodag/atree"
)

var allowedOrigins = []string{
	"http://localhost:5173",
}

// server serializes every engine call behind a single mutex, the
// externally-applied lock spec §5 prescribes for concurrent callers —
// the tree itself assumes exclusive single-writer, single-reader access.
type server struct {
	mu     sync.Mutex
	tree   *atree.Tree
	exprs  map[uint64]string
	logger *slog.Logger
}

func newServer(defs []atree.AttrDef, logger *slog.Logger) (*server, error) {
	tree, err := atree.New(defs)
	if err != nil {
		return nil, err
	}
	return &server{tree: tree, exprs: make(map[uint64]string), logger: logger}, nil
}

// handleDeclare replaces the live schema with a freshly declared one, the
// same attribute list shape the CLI reads from its --schema YAML file, but
// posted as a JSON body. Refused once any subscription has been inserted, mirroring
// the registry's own freeze-after-first-insert rule.
func (s *server) handleDeclare(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Attributes []struct {
			Name  string `json:"name"`
			Type  string `json:"type"`
			Scale uint32 `json:"scale"`
		} `json:"attributes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	defs := make([]atree.AttrDef, 0, len(body.Attributes))
	for _, a := range body.Attributes {
		typ, ok := schemaTypeNames[a.Type]
		if !ok {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("attribute %q has unknown type %q", a.Name, a.Type))
			return
		}
		defs = append(defs, atree.AttrDef{Name: a.Name, Type: typ, Scale: a.Scale})
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tree.Len() > 0 {
		writeError(w, http.StatusConflict, "cannot redeclare schema: subscriptions already installed")
		return
	}
	tree, err := atree.New(defs)
	if err != nil {
		s.handleError(w, r, http.StatusUnprocessableEntity, "declare", err)
		return
	}
	s.tree = tree
	s.exprs = make(map[uint64]string)
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func corsMiddleware(next http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = struct{}{}
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if _, ok := allowed[origin]; ok {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requestIDMiddleware tags every request with a uuid and logs it once, as
// it enters, the way C9's ambient logging is specified (SPEC_FULL §7).
func (s *server) requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := uuid.NewString()
		s.logger.Info("request", "id", reqID, "method", r.Method, "path", r.URL.Path)
		next.ServeHTTP(w, r)
	})
}

func (s *server) handleError(w http.ResponseWriter, r *http.Request, status int, op string, err error) {
	wrapped := oops.Code(op).With("path", r.URL.Path).Wrap(err)
	s.logger.Error("request failed", "op", op, "error", wrapped)
	writeError(w, status, err.Error())
}

func (s *server) handleInsert(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ID   uint64 `json:"id"`
		Expr string `json:"expr"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.tree.Insert(body.ID, body.Expr); err != nil {
		s.handleError(w, r, http.StatusUnprocessableEntity, "insert", err)
		return
	}
	s.exprs[body.ID] = body.Expr
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *server) handleDelete(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ID uint64 `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.tree.Delete(body.ID)
	delete(s.exprs, body.ID)
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Bools   map[string]bool    `json:"bools"`
		Ints    map[string]int64   `json:"ints"`
		Strs    map[string]string  `json:"strs"`
		StrSets map[string][]string `json:"str_sets"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ev := s.tree.MakeEvent()
	for name, v := range body.Bools {
		if err := ev.WithBool(name, v); err != nil {
			s.handleError(w, r, http.StatusUnprocessableEntity, "search", err)
			return
		}
	}
	for name, v := range body.Ints {
		if err := ev.WithInt(name, v); err != nil {
			s.handleError(w, r, http.StatusUnprocessableEntity, "search", err)
			return
		}
	}
	for name, v := range body.Strs {
		if err := ev.WithStr(name, v); err != nil {
			s.handleError(w, r, http.StatusUnprocessableEntity, "search", err)
			return
		}
	}
	for name, items := range body.StrSets {
		if err := ev.WithStrSet(name, items...); err != nil {
			s.handleError(w, r, http.StatusUnprocessableEntity, "search", err)
			return
		}
	}

	matched := s.tree.Search(ev)
	writeJSON(w, http.StatusOK, map[string]any{"matched": matched})
}

func (s *server) handleRender(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w.Header().Set("Content-Type", "text/vnd.graphviz")
	w.Write([]byte(s.tree.ToGraphviz()))
}

func main() {
	port := flag.Int("port", 8080, "port to listen on")
	schemaPath := flag.String("schema", "", "attribute schema YAML file (required)")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))

	if *schemaPath == "" {
		logger.Error("missing required flag --schema")
		os.Exit(1)
	}
	defs, err := loadSchema(*schemaPath)
	if err != nil {
		logger.Error("loading schema", "error", err)
		os.Exit(1)
	}

	srv, err := newServer(defs, logger)
	if err != nil {
		logger.Error("creating tree", "error", err)
		os.Exit(1)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/declare", srv.handleDeclare)
	mux.HandleFunc("/insert", srv.handleInsert)
	mux.HandleFunc("/delete", srv.handleDelete)
	mux.HandleFunc("/search", srv.handleSearch)
	mux.HandleFunc("/render", srv.handleRender)

	addr := fmt.Sprintf(":%d", *port)
	logger.Info("atree-server listening", "addr", addr)
	handler := srv.requestIDMiddleware(corsMiddleware(mux))
	if err := http.ListenAndServe(addr, handler); err != nil {
		logger.Error("server error", "error", err)
	}
}
