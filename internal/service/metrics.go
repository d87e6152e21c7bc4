package service

import (
	"fmt"
	"math"
	"time"

	"github.com/izzsandya6-dev/gemini-ai-health/internal/model"
)

// TargetCalories is the Mifflin-St Jeor resting estimate rounded half up.
func TargetCalories(weightKg, heightCm float64, age int, gender model.Gender) int {
	offset := -161.0
	if gender == model.GenderMale {
		offset = 5
	}
	v := 10*weightKg + 6.25*heightCm - 5*float64(age) + offset
	return int(math.Floor(v + 0.5))
}

// CaloriesConsumedToday sums calories over every given record, whatever
// its date. Use CaloriesConsumedOn for a single day.
func CaloriesConsumedToday(records []model.FoodAnalysis) float64 {
	var total float64
	for _, r := range records {
		total += r.Nutrients.Calories
	}
	return total
}

// CaloriesConsumedOn sums calories of records timestamped on day's local
// date.
func CaloriesConsumedOn(records []model.FoodAnalysis, day time.Time) float64 {
	start, end := dayBoundsMillis(day)
	var total float64
	for _, r := range records {
		if r.Timestamp >= start && r.Timestamp <= end {
			total += r.Nutrients.Calories
		}
	}
	return total
}

// SurveyQuestionCount is the size of every survey catalog and the fixed
// denominator of BioWellnessIndex.
const SurveyQuestionCount = 10

// BioWellnessIndex is the survey score as a percentage of the maximum over
// the full catalog. Unanswered questions score nothing.
func BioWellnessIndex(answers []model.SurveyAnswer) (int, error) {
	if len(answers) == 0 {
		return 0, fmt.Errorf("survey has no answers")
	}
	if len(answers) > SurveyQuestionCount {
		return 0, fmt.Errorf("survey has %d answers, expected at most %d", len(answers), SurveyQuestionCount)
	}
	seen := make(map[string]bool, len(answers))
	total := 0
	for _, a := range answers {
		if a.Value < 1 || a.Value > 5 {
			return 0, fmt.Errorf("answer %q has value %d, expected 1-5", a.QuestionID, a.Value)
		}
		if a.QuestionID != "" && seen[a.QuestionID] {
			return 0, fmt.Errorf("question %q answered twice", a.QuestionID)
		}
		seen[a.QuestionID] = true
		total += a.Value
	}
	score := 100 * float64(total) / float64(SurveyQuestionCount*5)
	return int(math.Floor(score + 0.5)), nil
}

// CalorieProgress is consumed as a percentage of target, capped at 100.
func CalorieProgress(consumed float64, target int) float64 {
	if target <= 0 {
		return 0
	}
	return math.Min(consumed/float64(target)*100, 100)
}
