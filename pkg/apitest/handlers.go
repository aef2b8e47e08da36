package apitest

import (
	"net/http"
	"strings"

	"github.com/aretw0/assist/pkg/domain"
)

func (s *Server) register(w http.ResponseWriter, r Received) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.ToLower(r.Fields["email"])
	if _, exists := s.accounts[key]; exists {
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": "Email already exists"})
		return
	}
	u := domain.User{
		ID:        s.nextID("user"),
		FirstName: r.Fields["firstName"],
		LastName:  r.Fields["lastName"],
		Email:     r.Fields["email"],
		Role:      r.Fields["role"],
	}
	s.accounts[key] = account{password: r.Fields["password"], user: u}
	writeJSON(w, http.StatusCreated, map[string]any{"message": "User registered successfully", "data": u})
}

func (s *Server) login(w http.ResponseWriter, r Received) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.accounts[strings.ToLower(r.Fields["email"])]
	if !ok || acc.password != r.Fields["password"] {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"message": "Invalid email or password"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Login successful",
		"data": map[string]any{
			"token": "token-" + acc.user.ID,
			"user":  acc.user,
		},
	})
}

func (s *Server) uploadCreator(w http.ResponseWriter, r Received) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.ToLower(r.Fields["email"])
	if _, exists := s.accounts[key]; exists {
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": "Email already exists"})
		return
	}
	u := domain.User{
		ID:        s.nextID("user"),
		FirstName: r.Fields["firstName"],
		LastName:  r.Fields["lastName"],
		Email:     r.Fields["email"],
		Role:      domain.RoleHelpCreator,
	}
	s.accounts[key] = account{password: r.Fields["password"], user: u}
	writeJSON(w, http.StatusCreated, map[string]any{"message": "Profile created", "data": u})
}

func (s *Server) createNGO(w http.ResponseWriter, r Received) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := domain.NGO{
		ID:          s.nextID("ngo"),
		Title:       r.Fields["title"],
		Description: r.Fields["description"],
		Image:       s.URL + "/uploads/" + r.Files["image"].Name,
		CreatedBy:   r.Fields["createdBy"],
	}
	s.ngos = append(s.ngos, n)
	writeJSON(w, http.StatusCreated, map[string]any{"message": "NGO created", "data": n})
}

func (s *Server) listNGOs(w http.ResponseWriter, _ Received) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := append([]domain.NGO{}, s.ngos...)
	writeJSON(w, http.StatusOK, map[string]any{"data": map[string]any{"Ngo": list}})
}

func (s *Server) createRequest(w http.ResponseWriter, r Received) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data := map[string]any{
		"_id":             s.nextID("request"),
		"needDescription": r.Fields["needDescription"],
		"helpType":        r.Fields["helpType"],
		"location":        r.Fields["location"],
		"userId":          r.Fields["userId"],
	}
	if doc, ok := r.Files["documents"]; ok {
		data["documents"] = doc.Name
	}
	writeJSON(w, http.StatusCreated, map[string]any{"message": "Request submitted", "data": data})
}
