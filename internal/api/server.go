// Package api serves the local stores as a JSON API for a browser front-end
// running on the same machine.
package api

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"

	"github.com/izzsandya6-dev/gemini-ai-health/internal/service"
	"github.com/izzsandya6-dev/gemini-ai-health/internal/store"
)

type Deps struct {
	Store    store.Store
	Profiles *service.ProfileRepository
	History  *service.HistoryRepository
	Chat     *service.ChatRepository
	Auth     *service.AuthService
	Flows    *service.Flows
	Window   service.CaloriesWindow
	Log      *logrus.Logger
	Now      func() time.Time
}

type Server struct {
	Deps
	log *logrus.Logger
}

func NewServer(d Deps) *Server {
	log := d.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Flows == nil {
		d.Flows = &service.Flows{Profiles: d.Profiles, History: d.History, Chat: d.Chat, Log: log}
	}
	return &Server{Deps: d, log: log}
}

func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	api := r.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/health", s.health).Methods(http.MethodGet)

	api.HandleFunc("/profile", s.getProfile).Methods(http.MethodGet)
	api.HandleFunc("/profile", s.replaceProfile).Methods(http.MethodPut)
	api.HandleFunc("/profile", s.patchProfile).Methods(http.MethodPatch)
	api.HandleFunc("/profile/hydration", s.addHydration).Methods(http.MethodPost)
	api.HandleFunc("/profile/contacts", s.addContact).Methods(http.MethodPost)
	api.HandleFunc("/profile/contacts/{id}", s.removeContact).Methods(http.MethodDelete)

	api.HandleFunc("/auth/register", s.register).Methods(http.MethodPost)
	api.HandleFunc("/auth/verify", s.verify).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", s.login).Methods(http.MethodPost)
	api.HandleFunc("/auth/logout", s.logout).Methods(http.MethodPost)
	api.HandleFunc("/auth/status", s.authStatus).Methods(http.MethodGet)

	api.HandleFunc("/history", s.listHistory).Methods(http.MethodGet)
	api.HandleFunc("/history", s.addHistory).Methods(http.MethodPost)
	api.HandleFunc("/history", s.clearHistory).Methods(http.MethodDelete)
	api.HandleFunc("/history/{timestamp:[0-9]+}", s.deleteHistory).Methods(http.MethodDelete)
	api.HandleFunc("/food/analyze", s.analyzeFood).Methods(http.MethodPost)

	api.HandleFunc("/chat/sessions", s.listSessions).Methods(http.MethodGet)
	api.HandleFunc("/chat/sessions", s.clearSessions).Methods(http.MethodDelete)
	api.HandleFunc("/chat/sessions/{id}", s.getSession).Methods(http.MethodGet)
	api.HandleFunc("/chat/consult", s.consult).Methods(http.MethodPost)

	api.HandleFunc("/survey/questions", s.surveyQuestions).Methods(http.MethodGet)
	api.HandleFunc("/survey", s.submitSurvey).Methods(http.MethodPost)

	api.HandleFunc("/today", s.today).Methods(http.MethodGet)
	api.HandleFunc("/export", s.export).Methods(http.MethodGet)

	return r
}

// Handler wraps the router with request logging and CORS for the given
// browser origins.
func (s *Server) Handler(allowedOrigins []string) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowedHeaders: []string{"Content-Type"},
	})
	return c.Handler(s.logRequests(s.Router()))
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rw *statusRecorder) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.log.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   rec.status,
			"duration": time.Since(start),
		}).Info("Request handled")
	})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	success(w, http.StatusOK, "OK", map[string]string{"status": "healthy"})
}
