package service

import (
	"fmt"
	"math"

	"github.com/izzsandya6-dev/gemini-ai-health/internal/model"
)

type SurveyOption struct {
	Label string         `json:"label"`
	Value int            `json:"value"`
	Raw   model.RawValue `json:"raw"`
}

type SurveyQuestion struct {
	ID       string               `json:"id"`
	Text     string               `json:"text"`
	Category model.SurveyCategory `json:"category"`
	Options  []SurveyOption       `json:"options"`
}

func opt(label string, value int, raw model.RawValue) SurveyOption {
	return SurveyOption{Label: label, Value: value, Raw: raw}
}

var (
	numRaw  = model.NumericRaw
	textRaw = model.TextRaw
)

var surveyCatalog = map[model.Language][]SurveyQuestion{
	model.LanguageEN: {
		{ID: "water", Text: "Water intake today?", Category: model.CategoryMetabolic, Options: []SurveyOption{opt("Low", 1, numRaw(500)), opt("Average", 3, numRaw(1500)), opt("Hydrated", 5, numRaw(2500))}},
		{ID: "sleep", Text: "Sleep duration last night?", Category: model.CategoryRecovery, Options: []SurveyOption{opt("< 5h", 1, numRaw(4)), opt("5-7h", 3, numRaw(6)), opt("> 7h", 5, numRaw(8))}},
		{ID: "immune", Text: "Current immune feeling?", Category: model.CategoryImmunity, Options: []SurveyOption{opt("Weak", 1, textRaw("Rentan")), opt("Stable", 3, textRaw("Stabil")), opt("Strong", 5, textRaw("Kuat"))}},
		{ID: "stress", Text: "Stress level right now?", Category: model.CategoryStress, Options: []SurveyOption{opt("High", 1, numRaw(85)), opt("Normal", 3, numRaw(45)), opt("Calm", 5, numRaw(15))}},
		{ID: "activity", Text: "Physical activity level today?", Category: model.CategoryMetabolic, Options: []SurveyOption{opt("Sedentary", 1, textRaw("none")), opt("Moderate", 3, textRaw("walk")), opt("Intense", 5, textRaw("workout"))}},
		{ID: "veggies", Text: "Vegetable and fruit intake?", Category: model.CategoryImmunity, Options: []SurveyOption{opt("None", 1, textRaw("none")), opt("Some", 3, textRaw("portion")), opt("Plenty", 5, textRaw("optimal"))}},
		{ID: "junk", Text: "Sugar or junk food consumption?", Category: model.CategoryMetabolic, Options: []SurveyOption{opt("High", 1, textRaw("high")), opt("Moderate", 3, textRaw("some")), opt("Clean", 5, textRaw("none"))}},
		{ID: "digestion", Text: "Digestive comfort?", Category: model.CategoryMetabolic, Options: []SurveyOption{opt("Bloated", 1, textRaw("bad")), opt("Normal", 5, textRaw("good"))}},
		{ID: "screen", Text: "Screen time today?", Category: model.CategoryLifestyle, Options: []SurveyOption{opt("Intense (>8h)", 1, textRaw("very high")), opt("Normal", 3, textRaw("high")), opt("Low", 5, textRaw("low"))}},
		{ID: "energy", Text: "Current energy level?", Category: model.CategoryRecovery, Options: []SurveyOption{opt("Drained", 1, textRaw("tired")), opt("Focused", 5, textRaw("energetic"))}},
	},
	model.LanguageID: {
		{ID: "water", Text: "Asupan air minum hari ini?", Category: model.CategoryMetabolic, Options: []SurveyOption{opt("Kurang", 1, numRaw(500)), opt("Cukup", 3, numRaw(1500)), opt("Banyak", 5, numRaw(2500))}},
		{ID: "sleep", Text: "Lama tidur Anda semalam?", Category: model.CategoryRecovery, Options: []SurveyOption{opt("< 5 jam", 1, numRaw(4)), opt("5-7 jam", 3, numRaw(6)), opt("> 7 jam", 5, numRaw(8))}},
		{ID: "immune", Text: "Bagaimana perasaan imun Anda?", Category: model.CategoryImmunity, Options: []SurveyOption{opt("Lemas/Sakit", 1, textRaw("Rentan")), opt("Biasa saja", 3, textRaw("Stabil")), opt("Sangat Fit", 5, textRaw("Kuat"))}},
		{ID: "stress", Text: "Tingkat stres saat ini?", Category: model.CategoryStress, Options: []SurveyOption{opt("Tinggi", 1, numRaw(85)), opt("Normal", 3, numRaw(45)), opt("Tenang", 5, numRaw(15))}},
		{ID: "activity", Text: "Tingkat aktivitas fisik hari ini?", Category: model.CategoryMetabolic, Options: []SurveyOption{opt("Diam saja", 1, textRaw("sedenter")), opt("Jalan santai", 3, textRaw("moderat")), opt("Olahraga berat", 5, textRaw("aktif"))}},
		{ID: "veggies", Text: "Porsi sayur dan buah hari ini?", Category: model.CategoryImmunity, Options: []SurveyOption{opt("Tidak ada", 1, textRaw("kosong")), opt("1-2 porsi", 3, textRaw("sedikit")), opt("Banyak", 5, textRaw("cukup"))}},
		{ID: "junk", Text: "Konsumsi gula atau junk food?", Category: model.CategoryMetabolic, Options: []SurveyOption{opt("Banyak", 1, textRaw("tinggi")), opt("Sedikit", 3, textRaw("sedang")), opt("Tidak ada", 5, textRaw("bersih"))}},
		{ID: "digestion", Text: "Kenyamanan pencernaan?", Category: model.CategoryMetabolic, Options: []SurveyOption{opt("Kembung/Bermasalah", 1, textRaw("buruk")), opt("Nyaman", 5, textRaw("baik"))}},
		{ID: "screen", Text: "Lama menatap layar (HP/Laptop)?", Category: model.CategoryLifestyle, Options: []SurveyOption{opt("> 8 jam", 1, textRaw("sangat tinggi")), opt("4-8 jam", 3, textRaw("tinggi")), opt("Sebentar", 5, textRaw("rendah"))}},
		{ID: "energy", Text: "Tingkat energi saat ini?", Category: model.CategoryRecovery, Options: []SurveyOption{opt("Sangat Lelah", 1, textRaw("lemah")), opt("Bertenaga", 5, textRaw("fokus"))}},
	},
}

var fallbackAdvice = map[model.Language]string{
	model.LanguageEN: "Focus on hydration and consistent sleep. Your biometrics have been updated.",
	model.LanguageID: "Fokus pada hidrasi dan tidur yang konsisten. Data biometrik Anda telah diperbarui.",
}

// SurveyQuestions returns the check-in questions in lang, in asking order.
func SurveyQuestions(lang model.Language) []SurveyQuestion {
	qs, ok := surveyCatalog[lang]
	if !ok {
		qs = surveyCatalog[model.LanguageID]
	}
	out := make([]SurveyQuestion, len(qs))
	copy(out, qs)
	return out
}

// SurveyAnswerFor builds the answer for picking option (1-based) of question
// id.
func SurveyAnswerFor(lang model.Language, id string, option int) (model.SurveyAnswer, error) {
	for _, q := range SurveyQuestions(lang) {
		if q.ID != id {
			continue
		}
		if option < 1 || option > len(q.Options) {
			return model.SurveyAnswer{}, fmt.Errorf("question %q has options 1-%d, got %d", id, len(q.Options), option)
		}
		o := q.Options[option-1]
		return model.SurveyAnswer{QuestionID: q.ID, Category: q.Category, Value: o.Value, Raw: o.Raw}, nil
	}
	return model.SurveyAnswer{}, fmt.Errorf("unknown survey question %q", id)
}

// FallbackSurveyAdvice is shown when no advisor reply is available.
func FallbackSurveyAdvice(lang model.Language) string {
	return localized(fallbackAdvice, lang)
}

// ProfileDelta holds the profile members a survey sets. Nil members are
// left alone.
type ProfileDelta struct {
	HydrationToday *int
	SleepLastNight *float64
	ImmunityStatus *model.ImmunityStatus
	StressScore    *int
}

func (d ProfileDelta) Updates() []FieldUpdate {
	out := make([]FieldUpdate, 0, 4)
	if d.HydrationToday != nil {
		out = append(out, SetHydrationToday(*d.HydrationToday))
	}
	if d.SleepLastNight != nil {
		out = append(out, SetSleepLastNight(*d.SleepLastNight))
	}
	if d.ImmunityStatus != nil {
		out = append(out, SetImmunityStatus(*d.ImmunityStatus))
	}
	if d.StressScore != nil {
		stress := *d.StressScore
		out = append(out, SetStressScore(&stress))
	}
	return out
}

// ReduceSurvey folds answers into the profile members they drive. Later
// answers to the same question win. Questions that drive nothing are
// skipped.
func ReduceSurvey(answers []model.SurveyAnswer) (ProfileDelta, error) {
	var d ProfileDelta
	for _, a := range answers {
		switch a.QuestionID {
		case "water":
			v, err := numericRaw(a)
			if err != nil {
				return ProfileDelta{}, err
			}
			ml := int(math.Round(v))
			d.HydrationToday = &ml
		case "sleep":
			v, err := numericRaw(a)
			if err != nil {
				return ProfileDelta{}, err
			}
			d.SleepLastNight = &v
		case "stress":
			v, err := numericRaw(a)
			if err != nil {
				return ProfileDelta{}, err
			}
			score := int(math.Round(v))
			d.StressScore = &score
		case "immune":
			s, ok := a.Raw.Text()
			if !ok {
				return ProfileDelta{}, fmt.Errorf("answer %q needs a text value", a.QuestionID)
			}
			status, ok := model.ParseImmunityStatus(s)
			if !ok {
				return ProfileDelta{}, fmt.Errorf("answer %q: unknown immunity status %q", a.QuestionID, s)
			}
			d.ImmunityStatus = &status
		}
	}
	return d, nil
}

func numericRaw(a model.SurveyAnswer) (float64, error) {
	v, ok := a.Raw.Number()
	if !ok {
		return 0, fmt.Errorf("answer %q needs a numeric value", a.QuestionID)
	}
	return v, nil
}

// SummarizeSurvey groups raw answers by category, in answer order.
func SummarizeSurvey(answers []model.SurveyAnswer) map[model.SurveyCategory][]model.RawValue {
	out := make(map[model.SurveyCategory][]model.RawValue)
	for _, a := range answers {
		out[a.Category] = append(out[a.Category], a.Raw)
	}
	return out
}
