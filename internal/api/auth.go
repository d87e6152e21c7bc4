package api

import (
	"net/http"

	"github.com/izzsandya6-dev/gemini-ai-health/internal/service"
)

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var in service.RegisterInput
	if err := decodeBody(r, &in); err != nil {
		badRequest(w, "Invalid request body")
		return
	}
	user, err := s.Auth.Register(in)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	user.Password = ""
	success(w, http.StatusCreated, "User registered; verify the account before signing in", user)
}

func (s *Server) verify(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := decodeBody(r, &req); err != nil || req.Email == "" {
		badRequest(w, "Email is required")
		return
	}
	if err := s.Auth.Verify(req.Email); err != nil {
		s.fail(w, r, err)
		return
	}
	success(w, http.StatusOK, "Account verified", nil)
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, "Invalid request body")
		return
	}
	user, err := s.Auth.Login(req.Email, req.Password)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	user.Password = ""
	success(w, http.StatusOK, "Signed in", user)
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	if err := s.Auth.Logout(); err != nil {
		s.fail(w, r, err)
		return
	}
	success(w, http.StatusOK, "Signed out", nil)
}

func (s *Server) authStatus(w http.ResponseWriter, r *http.Request) {
	ok, err := s.Profiles.Authenticated()
	if err != nil {
		s.fail(w, r, err)
		return
	}
	success(w, http.StatusOK, "", map[string]bool{"authenticated": ok})
}
