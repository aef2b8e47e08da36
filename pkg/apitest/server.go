// Package apitest provides an in-process stand-in for the remote assistance API.
//
// Routes are derived from the embedded OpenAPI document; every operation enforces the
// required request properties it declares before the canned behaviour runs.
package apitest

import (
	"context"
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/aretw0/assist/api"
	"github.com/aretw0/assist/pkg/domain"
	"github.com/go-chi/chi/v5"
)

// FileInfo describes an uploaded multipart file as received.
type FileInfo struct {
	Name        string
	ContentType string
	Size        int64
}

// Received is one request recorded by the server.
type Received struct {
	Operation string
	RequestID string
	Fields    map[string]string
	Files     map[string]FileInfo
}

type failure struct {
	status int
	body   string
}

type account struct {
	password string
	user     domain.User
}

// Server is a stateful fake of the remote API.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	seq      int
	accounts map[string]account
	ngos     []domain.NGO
	received []Received
	failures map[string]failure
}

// New starts a server. Close it when done.
func New() (*Server, error) {
	doc, err := api.Load(context.Background())
	if err != nil {
		return nil, err
	}
	ops, err := api.Operations(doc)
	if err != nil {
		return nil, err
	}

	s := &Server{
		accounts: make(map[string]account),
		failures: make(map[string]failure),
	}
	handlers := map[string]func(http.ResponseWriter, Received){
		"register":                s.register,
		"login":                   s.login,
		"uploadJobCreatorProfile": s.uploadCreator,
		"createNgo":               s.createNGO,
		"getAllNgos":              s.listNGOs,
		"createRequest":           s.createRequest,
	}

	r := chi.NewRouter()
	for _, op := range ops {
		h, ok := handlers[op.ID]
		if !ok {
			return nil, fmt.Errorf("apitest: no handler for operation %q", op.ID)
		}
		r.Method(op.Method, op.Path, s.operation(op, h))
	}
	s.Server = httptest.NewServer(r)
	return s, nil
}

// Fail makes every following call to the operation answer with status and a raw body.
// An empty body produces an unparseable response.
func (s *Server) Fail(operation string, status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[operation] = failure{status: status, body: body}
}

// Recover clears a forced failure.
func (s *Server) Recover(operation string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.failures, operation)
}

// AddUser registers an account directly and returns its id.
func (s *Server) AddUser(u domain.User, password string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	u.ID = s.nextID("user")
	s.accounts[strings.ToLower(u.Email)] = account{password: password, user: u}
	return u.ID
}

// AddNGO seeds a program card.
func (s *Server) AddNGO(n domain.NGO) domain.NGO {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n.ID == "" {
		n.ID = s.nextID("ngo")
	}
	s.ngos = append(s.ngos, n)
	return n
}

// Received returns the recorded requests of an operation, oldest first.
func (s *Server) Received(operation string) []Received {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Received
	for _, r := range s.received {
		if r.Operation == operation {
			out = append(out, r)
		}
	}
	return out
}

func (s *Server) operation(op api.Operation, h func(http.ResponseWriter, Received)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec, err := parse(op, r)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{"message": err.Error()})
			return
		}

		s.mu.Lock()
		s.received = append(s.received, rec)
		f, failing := s.failures[op.ID]
		s.mu.Unlock()

		if failing {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(f.status)
			_, _ = w.Write([]byte(f.body))
			return
		}

		for _, field := range op.Required {
			_, isText := rec.Fields[field]
			_, isFile := rec.Files[field]
			if !isText && !isFile {
				writeJSON(w, http.StatusBadRequest, map[string]any{"message": field + " is required"})
				return
			}
		}
		h(w, rec)
	}
}

func parse(op api.Operation, r *http.Request) (Received, error) {
	rec := Received{
		Operation: op.ID,
		RequestID: r.Header.Get("X-Request-ID"),
		Fields:    map[string]string{},
		Files:     map[string]FileInfo{},
	}
	if op.ContentType == "" {
		return rec, nil
	}
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mt != op.ContentType {
		return rec, fmt.Errorf("expected %s body", op.ContentType)
	}

	switch mt {
	case "application/json":
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			return rec, fmt.Errorf("invalid JSON body")
		}
		for k, v := range body {
			rec.Fields[k] = fmt.Sprint(v)
		}
	case "multipart/form-data":
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			return rec, fmt.Errorf("invalid multipart body")
		}
		for k, v := range r.MultipartForm.Value {
			if len(v) > 0 {
				rec.Fields[k] = v[0]
			}
		}
		for k, fhs := range r.MultipartForm.File {
			if len(fhs) > 0 {
				rec.Files[k] = FileInfo{Name: fhs[0].Filename, ContentType: fhs[0].Header.Get("Content-Type"), Size: fhs[0].Size}
			}
		}
	}
	return rec, nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// nextID must be called with mu held.
func (s *Server) nextID(prefix string) string {
	s.seq++
	return fmt.Sprintf("%s-%d", prefix, s.seq)
}
