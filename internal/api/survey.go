package api

import (
	"net/http"

	"github.com/izzsandya6-dev/gemini-ai-health/internal/model"
	"github.com/izzsandya6-dev/gemini-ai-health/internal/service"
)

type surveyRequest struct {
	Language string         `json:"lang"`
	Answers  []surveyChoice `json:"answers"`
}

type surveyChoice struct {
	QuestionID string `json:"question_id"`
	Option     int    `json:"option"`
}

func languageParam(s string) model.Language {
	if lang, ok := model.ParseLanguage(s); ok {
		return lang
	}
	return model.LanguageID
}

func (s *Server) surveyQuestions(w http.ResponseWriter, r *http.Request) {
	success(w, http.StatusOK, "", service.SurveyQuestions(languageParam(r.URL.Query().Get("lang"))))
}

func (s *Server) submitSurvey(w http.ResponseWriter, r *http.Request) {
	var req surveyRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, "Invalid request body")
		return
	}
	lang := languageParam(req.Language)
	answers := make([]model.SurveyAnswer, 0, len(req.Answers))
	for _, c := range req.Answers {
		a, err := service.SurveyAnswerFor(lang, c.QuestionID, c.Option)
		if err != nil {
			badRequest(w, err.Error())
			return
		}
		answers = append(answers, a)
	}
	res, err := s.Flows.CompleteSurvey(r.Context(), answers)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	success(w, http.StatusOK, "", res)
}
