package api

import (
	"net/http"
	"time"

	"github.com/izzsandya6-dev/gemini-ai-health/internal/service"
)

func (s *Server) today(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	date := s.Now()
	if v := q.Get("date"); v != "" {
		parsed, err := time.ParseInLocation("2006-01-02", v, time.Local)
		if err != nil {
			badRequest(w, "Invalid date (expected YYYY-MM-DD)")
			return
		}
		date = parsed
	}
	window := s.Window
	if v := q.Get("window"); v != "" {
		parsed, err := service.ParseCaloriesWindow(v)
		if err != nil {
			badRequest(w, err.Error())
			return
		}
		window = parsed
	}
	status, err := service.TodaySummary(s.Profiles, s.History, date, window)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	success(w, http.StatusOK, "", status)
}

func (s *Server) export(w http.ResponseWriter, r *http.Request) {
	data, err := service.ExportDataSnapshot(s.Store, s.Now())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, data)
}
