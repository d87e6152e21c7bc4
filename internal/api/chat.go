package api

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"
)

type consultRequest struct {
	SessionID string `json:"session_id"`
	Query     string `json:"query"`
}

func (s *Server) listSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.Chat.ListSessions()
	if err != nil {
		s.fail(w, r, err)
		return
	}
	success(w, http.StatusOK, "", sessions)
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	session, err := s.Chat.Session(mux.Vars(r)["id"])
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if session == nil {
		failure(w, http.StatusNotFound, "Session not found", nil)
		return
	}
	success(w, http.StatusOK, "", session)
}

func (s *Server) clearSessions(w http.ResponseWriter, r *http.Request) {
	if err := s.Chat.ClearAll(); err != nil {
		s.fail(w, r, err)
		return
	}
	success(w, http.StatusOK, "Chat history cleared", nil)
}

func (s *Server) consult(w http.ResponseWriter, r *http.Request) {
	var req consultRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		badRequest(w, "Query is required")
		return
	}
	res, err := s.Flows.Consult(r.Context(), req.SessionID, req.Query)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	success(w, http.StatusOK, "", res)
}
