package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/izzsandya6-dev/gemini-ai-health/internal/model"
	"github.com/izzsandya6-dev/gemini-ai-health/internal/service"
)

const maxImageBytes = 10 << 20

func (s *Server) listHistory(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	records, err := s.History.Filter(service.HistoryFilter{
		Query:    q.Get("q"),
		FromDate: q.Get("from"),
		ToDate:   q.Get("to"),
	})
	if errors.Is(err, service.ErrCorruptStorage) {
		s.fail(w, r, err)
		return
	}
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	success(w, http.StatusOK, "", records)
}

func (s *Server) addHistory(w http.ResponseWriter, r *http.Request) {
	var rec model.FoodAnalysis
	if err := decodeBody(r, &rec); err != nil {
		badRequest(w, "Invalid request body")
		return
	}
	if err := service.NewValidator().Validate(rec); err != nil {
		s.fail(w, r, err)
		return
	}
	saved, err := s.History.Append(rec)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	success(w, http.StatusCreated, "Food analysis recorded", saved)
}

func (s *Server) deleteHistory(w http.ResponseWriter, r *http.Request) {
	ts, err := strconv.ParseInt(mux.Vars(r)["timestamp"], 10, 64)
	if err != nil {
		badRequest(w, "Invalid timestamp")
		return
	}
	if err := s.History.DeleteByTimestamp(ts); err != nil {
		s.fail(w, r, err)
		return
	}
	success(w, http.StatusOK, "Food analysis deleted", nil)
}

func (s *Server) clearHistory(w http.ResponseWriter, r *http.Request) {
	if err := s.History.ClearAll(); err != nil {
		s.fail(w, r, err)
		return
	}
	success(w, http.StatusOK, "Food history cleared", nil)
}

// analyzeFood takes the raw image as the request body.
func (s *Server) analyzeFood(w http.ResponseWriter, r *http.Request) {
	image, err := io.ReadAll(io.LimitReader(r.Body, maxImageBytes))
	if err != nil {
		badRequest(w, "Invalid request body")
		return
	}
	if len(image) == 0 {
		badRequest(w, "Image is required")
		return
	}
	rec, err := s.Flows.AnalyzeAndRecord(r.Context(), image, r.Header.Get("Content-Type"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	success(w, http.StatusCreated, "Food analysis recorded", rec)
}
