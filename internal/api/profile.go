package api

import (
	"io"
	"net/http"
	"sort"

	"github.com/gorilla/mux"

	"github.com/izzsandya6-dev/gemini-ai-health/internal/model"
	"github.com/izzsandya6-dev/gemini-ai-health/internal/service"
)

const maxProfileBytes = 1 << 20

func (s *Server) getProfile(w http.ResponseWriter, r *http.Request) {
	p, err := s.Profiles.Load()
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if p == nil {
		failure(w, http.StatusNotFound, "No profile stored", nil)
		return
	}
	success(w, http.StatusOK, "", p)
}

// replaceProfile accepts any stored profile shape, including older ones.
func (s *Server) replaceProfile(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxProfileBytes))
	if err != nil {
		badRequest(w, "Invalid request body")
		return
	}
	p, err := service.NormalizeProfile(body)
	if err != nil {
		failure(w, http.StatusBadRequest, "Invalid profile", err.Error())
		return
	}
	if err := s.Profiles.Replace(*p, service.AuthUnchanged); err != nil {
		s.fail(w, r, err)
		return
	}
	success(w, http.StatusOK, "Profile saved", p)
}

// patchProfile applies {"field": "value"} pairs in one write. Fields use the
// same names as `profile set`.
func (s *Server) patchProfile(w http.ResponseWriter, r *http.Request) {
	var req map[string]string
	if err := decodeBody(r, &req); err != nil || len(req) == 0 {
		badRequest(w, "Expected a JSON object of field updates")
		return
	}
	fields := make([]string, 0, len(req))
	for f := range req {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	updates := make([]service.FieldUpdate, 0, len(fields))
	for _, f := range fields {
		u, err := service.ParseFieldUpdate(f, req[f])
		if err != nil {
			badRequest(w, err.Error())
			return
		}
		updates = append(updates, u)
	}
	s.applyUpdates(w, r, updates...)
}

type hydrationRequest struct {
	AmountML int `json:"amount_ml"`
}

func (s *Server) addHydration(w http.ResponseWriter, r *http.Request) {
	var req hydrationRequest
	if r.ContentLength != 0 {
		if err := decodeBody(r, &req); err != nil {
			badRequest(w, "Invalid request body")
			return
		}
	}
	if req.AmountML == 0 {
		req.AmountML = service.DefaultHydrationStep
	}
	s.applyUpdates(w, r, service.AddHydration(req.AmountML))
}

func (s *Server) addContact(w http.ResponseWriter, r *http.Request) {
	var c model.EmergencyContact
	if err := decodeBody(r, &c); err != nil {
		badRequest(w, "Invalid request body")
		return
	}
	s.applyUpdates(w, r, service.AddEmergencyContact(c))
}

func (s *Server) removeContact(w http.ResponseWriter, r *http.Request) {
	s.applyUpdates(w, r, service.RemoveEmergencyContact(mux.Vars(r)["id"]))
}

func (s *Server) applyUpdates(w http.ResponseWriter, r *http.Request, updates ...service.FieldUpdate) {
	p, err := s.Profiles.UpdateFields(updates...)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if p == nil {
		failure(w, http.StatusNotFound, "No profile stored", nil)
		return
	}
	success(w, http.StatusOK, "Profile updated", p)
}
