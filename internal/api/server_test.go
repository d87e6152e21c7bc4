package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/izzsandya6-dev/gemini-ai-health/internal/api"
	"github.com/izzsandya6-dev/gemini-ai-health/internal/model"
	"github.com/izzsandya6-dev/gemini-ai-health/internal/service"
	"github.com/izzsandya6-dev/gemini-ai-health/internal/store"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   json.RawMessage `json:"error"`
}

type stubAnalyzer struct{ err error }

func (a stubAnalyzer) AnalyzeFood(_ context.Context, _ []byte, _ string) (model.FoodAnalysis, error) {
	if a.err != nil {
		return model.FoodAnalysis{}, a.err
	}
	return model.FoodAnalysis{Name: "Sate Ayam", Nutrients: model.Nutrients{Calories: 480}, HealthScore: 65}, nil
}

type testServer struct {
	store   store.Store
	handler http.Handler
	flows   *service.Flows
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)
	s := store.NewMemoryStore()
	profiles := service.NewProfileRepository(s, nil, log)
	history := service.NewHistoryRepository(s, log)
	chat := service.NewChatRepository(s, log)
	flows := &service.Flows{Profiles: profiles, History: history, Chat: chat, Log: log}
	srv := api.NewServer(api.Deps{
		Store:    s,
		Profiles: profiles,
		History:  history,
		Chat:     chat,
		Auth:     service.NewAuthService(s, profiles, nil, log),
		Flows:    flows,
		Window:   service.WindowAll,
		Log:      log,
		Now:      func() time.Time { return time.Date(2026, 3, 2, 9, 0, 0, 0, time.Local) },
	})
	return &testServer{store: s, handler: srv.Handler([]string{"http://localhost:5173"}), flows: flows}
}

func (ts *testServer) do(t *testing.T, method, path string, body any) (int, envelope) {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case []byte:
		reader = bytes.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), "body: %s", rec.Body.String())
	return rec.Code, env
}

func TestHealth(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)

	code, env := ts.do(t, http.MethodGet, "/api/v1/health", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, env.Success)
}

func TestProfileLifecycle(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)

	code, _ := ts.do(t, http.MethodGet, "/api/v1/profile", nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = ts.do(t, http.MethodPost, "/api/v1/profile/hydration", nil)
	assert.Equal(t, http.StatusNotFound, code, "updates without a profile report not found")

	legacy := []byte(`{"name":"Rina","gender":"Wanita","weight":52,"height":158,"age":24,"sleepLast_night":6}`)
	code, env := ts.do(t, http.MethodPut, "/api/v1/profile", legacy)
	require.Equal(t, http.StatusOK, code, string(env.Error))

	code, env = ts.do(t, http.MethodPatch, "/api/v1/profile", map[string]string{"moodRating": "4", "formula.focus": "5"})
	require.Equal(t, http.StatusOK, code, string(env.Error))

	code, env = ts.do(t, http.MethodPost, "/api/v1/profile/hydration", map[string]int{"amount_ml": 300})
	require.Equal(t, http.StatusOK, code)
	var p model.Profile
	require.NoError(t, json.Unmarshal(env.Data, &p))
	assert.Equal(t, model.GenderFemale, p.Gender)
	assert.Equal(t, 6.0, p.SleepLastNight)
	assert.Equal(t, 300, p.HydrationToday)
	assert.Equal(t, 5, p.Formula.Focus)
	require.NotNil(t, p.MoodRating)
	assert.Equal(t, 4, *p.MoodRating)

	code, env = ts.do(t, http.MethodPatch, "/api/v1/profile", map[string]string{"moodRating": "9"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Validation failed", env.Message)

	code, _ = ts.do(t, http.MethodPatch, "/api/v1/profile", map[string]string{"password": "x"})
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestAuthFlow(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)

	reg := map[string]any{"name": "Dewi", "email": "dewi@example.com", "password": "rahasia1", "age": 28, "weight": 55, "height": 160, "gender": "female"}
	code, env := ts.do(t, http.MethodPost, "/api/v1/auth/register", reg)
	require.Equal(t, http.StatusCreated, code, string(env.Error))
	assert.NotContains(t, string(env.Data), "rahasia1")

	code, _ = ts.do(t, http.MethodPost, "/api/v1/auth/register", reg)
	assert.Equal(t, http.StatusConflict, code)

	login := map[string]string{"email": "dewi@example.com", "password": "rahasia1"}
	code, _ = ts.do(t, http.MethodPost, "/api/v1/auth/login", login)
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = ts.do(t, http.MethodPost, "/api/v1/auth/verify", map[string]string{"email": "dewi@example.com"})
	require.Equal(t, http.StatusOK, code)

	code, _ = ts.do(t, http.MethodPost, "/api/v1/auth/login", map[string]string{"email": "dewi@example.com", "password": "salah"})
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = ts.do(t, http.MethodPost, "/api/v1/auth/login", login)
	require.Equal(t, http.StatusOK, code)
	_, env = ts.do(t, http.MethodGet, "/api/v1/auth/status", nil)
	assert.JSONEq(t, `{"authenticated":true}`, string(env.Data))

	code, _ = ts.do(t, http.MethodPost, "/api/v1/auth/logout", nil)
	require.Equal(t, http.StatusOK, code)
	_, env = ts.do(t, http.MethodGet, "/api/v1/auth/status", nil)
	assert.JSONEq(t, `{"authenticated":false}`, string(env.Data))
}

func TestHistoryEndpoints(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)

	rec := map[string]any{"name": "Soto Ayam", "description": "kuah bening", "nutrients": map[string]float64{"calories": 350}, "timestamp": 1000}
	code, _ := ts.do(t, http.MethodPost, "/api/v1/history", rec)
	require.Equal(t, http.StatusCreated, code)

	code, _ = ts.do(t, http.MethodPost, "/api/v1/history", map[string]any{"name": "Bad", "healthScore": 150})
	assert.Equal(t, http.StatusBadRequest, code)

	_, env := ts.do(t, http.MethodGet, "/api/v1/history?q=soto", nil)
	var records []model.FoodAnalysis
	require.NoError(t, json.Unmarshal(env.Data, &records))
	require.Len(t, records, 1)
	assert.Equal(t, int64(1000), records[0].Timestamp)

	code, _ = ts.do(t, http.MethodGet, "/api/v1/history?from=2026-03-05&to=2026-03-01", nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = ts.do(t, http.MethodDelete, "/api/v1/history/1000", nil)
	require.Equal(t, http.StatusOK, code)
	_, env = ts.do(t, http.MethodGet, "/api/v1/history", nil)
	assert.JSONEq(t, `[]`, string(env.Data))
}

func TestAnalyzeFood(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)

	code, _ := ts.do(t, http.MethodPost, "/api/v1/food/analyze", []byte("jpeg-bytes"))
	assert.Equal(t, http.StatusServiceUnavailable, code)

	ts.flows.Analyzer = stubAnalyzer{err: errors.New("quota")}
	code, _ = ts.do(t, http.MethodPost, "/api/v1/food/analyze", []byte("jpeg-bytes"))
	assert.Equal(t, http.StatusInternalServerError, code)
	_, ok, err := ts.store.Get(store.KeyFoodHistory)
	require.NoError(t, err)
	assert.False(t, ok, "failed analysis must not write")

	ts.flows.Analyzer = stubAnalyzer{}
	code, env := ts.do(t, http.MethodPost, "/api/v1/food/analyze", []byte("jpeg-bytes"))
	require.Equal(t, http.StatusCreated, code)
	var rec model.FoodAnalysis
	require.NoError(t, json.Unmarshal(env.Data, &rec))
	assert.Equal(t, "Sate Ayam", rec.Name)
	assert.NotZero(t, rec.Timestamp)
}

func TestSurveyAndToday(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)
	code, _ := ts.do(t, http.MethodPut, "/api/v1/profile", []byte(`{"name":"Sari","weight":70,"height":175,"age":30,"gender":"male","language":"en"}`))
	require.Equal(t, http.StatusOK, code)

	_, env := ts.do(t, http.MethodGet, "/api/v1/survey/questions?lang=en", nil)
	var questions []service.SurveyQuestion
	require.NoError(t, json.Unmarshal(env.Data, &questions))
	require.Len(t, questions, 10)

	answers := make([]map[string]any, 0, len(questions))
	for _, q := range questions {
		answers = append(answers, map[string]any{"question_id": q.ID, "option": 1})
	}
	code, env = ts.do(t, http.MethodPost, "/api/v1/survey", map[string]any{"lang": "en", "answers": answers})
	require.Equal(t, http.StatusOK, code, string(env.Error))
	var res service.SurveyResult
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Equal(t, 20, res.BioWellnessIndex)
	assert.True(t, res.AdviceFallback)
	assert.Equal(t, service.FallbackSurveyAdvice(model.LanguageEN), res.Advice)

	code, _ = ts.do(t, http.MethodPost, "/api/v1/survey", map[string]any{"answers": []map[string]any{{"question_id": "water", "option": 7}}})
	assert.Equal(t, http.StatusBadRequest, code)

	dup := []map[string]any{{"question_id": "water", "option": 3}, {"question_id": "water", "option": 3}}
	code, env = ts.do(t, http.MethodPost, "/api/v1/survey", map[string]any{"lang": "en", "answers": dup})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Validation failed", env.Message)

	code, env = ts.do(t, http.MethodGet, "/api/v1/today?date=2026-03-02", nil)
	require.Equal(t, http.StatusOK, code)
	var status service.TodayStatus
	require.NoError(t, json.Unmarshal(env.Data, &status))
	assert.Equal(t, 1649, status.TargetCalories)
	assert.Equal(t, 500, status.HydrationToday)
	assert.Equal(t, model.ImmunityVulnerable, status.ImmunityStatus)

	code, _ = ts.do(t, http.MethodGet, "/api/v1/today?window=week", nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestChatEndpoints(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)

	code, _ := ts.do(t, http.MethodPost, "/api/v1/chat/consult", map[string]string{"query": "Saya pusing"})
	assert.Equal(t, http.StatusServiceUnavailable, code)

	code, _ = ts.do(t, http.MethodGet, "/api/v1/chat/sessions/missing", nil)
	assert.Equal(t, http.StatusNotFound, code)

	_, env := ts.do(t, http.MethodGet, "/api/v1/chat/sessions", nil)
	assert.JSONEq(t, `[]`, string(env.Data))
}

func TestCorruptStorageIsReported(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)
	require.NoError(t, ts.store.Set(store.KeyProfile, []byte(`{"gender":"robot"}`)))

	code, env := ts.do(t, http.MethodGet, "/api/v1/profile", nil)
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Contains(t, env.Message, "doctor")
}

func TestExportEndpoint(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/export", nil)
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	data, err := service.ParseExport(rec.Body.Bytes())
	require.NoError(t, err)
	assert.Nil(t, data.Profile)
	assert.Empty(t, data.FoodHistory)
}

func TestCORSPreflight(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/profile", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPatch)
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	req.Header.Set("Origin", "http://evil.test")
	rec = httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
