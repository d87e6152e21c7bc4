package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/izzsandya6-dev/gemini-ai-health/internal/model"
)

// FoodAnalyzer turns a meal photo into a nutrition estimate.
type FoodAnalyzer interface {
	AnalyzeFood(ctx context.Context, image []byte, mime string) (model.FoodAnalysis, error)
}

// HealthAdvisor answers a consultation question given the transcript so far.
type HealthAdvisor interface {
	Advise(ctx context.Context, history []model.ChatMessage, query string) (string, error)
}

// SurveyAdvisor writes advice from survey answers grouped by category.
type SurveyAdvisor interface {
	SurveyAdvice(ctx context.Context, summary map[model.SurveyCategory][]model.RawValue, lang model.Language) (string, error)
}

var ErrNoCollaborator = errors.New("no AI collaborator configured")

// Flows ties the AI collaborators to the repositories. A collaborator error
// is returned before anything is written.
type Flows struct {
	Profiles *ProfileRepository
	History  *HistoryRepository
	Chat     *ChatRepository

	Analyzer FoodAnalyzer
	Advisor  HealthAdvisor
	Survey   SurveyAdvisor

	Log *logrus.Logger
}

func (f *Flows) logger() *logrus.Logger {
	if f.Log == nil {
		return logrus.StandardLogger()
	}
	return f.Log
}

// AnalyzeAndRecord analyzes a photo and appends the result to the history.
func (f *Flows) AnalyzeAndRecord(ctx context.Context, image []byte, mime string) (model.FoodAnalysis, error) {
	if f.Analyzer == nil {
		return model.FoodAnalysis{}, fmt.Errorf("analyze food: %w", ErrNoCollaborator)
	}
	if len(image) == 0 {
		return model.FoodAnalysis{}, fmt.Errorf("analyze food: image is empty")
	}
	result, err := f.Analyzer.AnalyzeFood(ctx, image, mime)
	if err != nil {
		return model.FoodAnalysis{}, fmt.Errorf("analyze food: %w", err)
	}
	result.Timestamp = 0
	return f.History.Append(result)
}

type ConsultResult struct {
	Reply   string             `json:"reply"`
	Session *model.ChatSession `json:"session,omitempty"`
}

// Consult asks the advisor about query in the context of the active session
// and records the exchange. Session is nil when activeID names no stored
// session.
func (f *Flows) Consult(ctx context.Context, activeID, query string) (ConsultResult, error) {
	if f.Advisor == nil {
		return ConsultResult{}, fmt.Errorf("consult: %w", ErrNoCollaborator)
	}
	lang := model.LanguageID
	if p, err := f.Profiles.Load(); err != nil {
		return ConsultResult{}, err
	} else if p != nil {
		lang = p.Language
	}
	history, err := f.Chat.Conversation(activeID, lang)
	if err != nil {
		return ConsultResult{}, err
	}
	reply, err := f.Advisor.Advise(ctx, history, query)
	if err != nil {
		return ConsultResult{}, fmt.Errorf("consult: %w", err)
	}
	session, err := f.Chat.AppendToActive(activeID, query, reply)
	if err != nil {
		return ConsultResult{}, err
	}
	return ConsultResult{Reply: reply, Session: session}, nil
}

type SurveyResult struct {
	BioWellnessIndex int            `json:"bio_wellness_index"`
	Advice           string         `json:"advice"`
	AdviceFallback   bool           `json:"advice_fallback"`
	Profile          *model.Profile `json:"profile,omitempty"`
}

// CompleteSurvey scores a finished survey, applies what it says about the
// user to the stored profile in one write, and fetches advice. Advisor
// failures fall back to fixed advice text.
func (f *Flows) CompleteSurvey(ctx context.Context, answers []model.SurveyAnswer) (SurveyResult, error) {
	index, err := BioWellnessIndex(answers)
	if err != nil {
		return SurveyResult{}, &ValidationError{Fields: map[string]string{"answers": err.Error()}}
	}
	delta, err := ReduceSurvey(answers)
	if err != nil {
		return SurveyResult{}, &ValidationError{Fields: map[string]string{"answers": err.Error()}}
	}
	updated, err := f.Profiles.UpdateFields(delta.Updates()...)
	if err != nil {
		return SurveyResult{}, fmt.Errorf("apply survey: %w", err)
	}
	lang := model.LanguageID
	if updated != nil {
		lang = updated.Language
	}

	result := SurveyResult{BioWellnessIndex: index, Profile: updated}
	if f.Survey == nil {
		result.Advice, result.AdviceFallback = FallbackSurveyAdvice(lang), true
		return result, nil
	}
	advice, err := f.Survey.SurveyAdvice(ctx, SummarizeSurvey(answers), lang)
	if err != nil {
		f.logger().Warnf("Failed to get survey advice: %+v", err)
		result.Advice, result.AdviceFallback = FallbackSurveyAdvice(lang), true
		return result, nil
	}
	result.Advice = advice
	return result, nil
}
