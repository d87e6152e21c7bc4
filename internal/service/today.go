package service

import (
	"fmt"
	"math"
	"time"

	"github.com/izzsandya6-dev/gemini-ai-health/internal/model"
)

// CaloriesWindow selects which history records count as consumed today.
type CaloriesWindow string

const (
	// WindowAll counts every record, as the web dashboard always has.
	WindowAll CaloriesWindow = "all"
	WindowDay CaloriesWindow = "day"
)

func ParseCaloriesWindow(s string) (CaloriesWindow, error) {
	switch CaloriesWindow(s) {
	case "", WindowAll:
		return WindowAll, nil
	case WindowDay:
		return WindowDay, nil
	}
	return "", fmt.Errorf("invalid calories window %q (expected all|day)", s)
}

type MoodStatus string

const (
	MoodNone    MoodStatus = "none"
	MoodFatigue MoodStatus = "fatigue"
	MoodStable  MoodStatus = "stable"
	MoodPeak    MoodStatus = "peak"
)

func MoodStatusFor(rating *int) MoodStatus {
	switch {
	case rating == nil || *rating == 0:
		return MoodNone
	case *rating <= 2:
		return MoodFatigue
	case *rating == 3:
		return MoodStable
	default:
		return MoodPeak
	}
}

type TodayStatus struct {
	Date                 string               `json:"date"`
	HasProfile           bool                 `json:"has_profile"`
	CaloriesWindow       CaloriesWindow       `json:"calories_window"`
	TargetCalories       int                  `json:"target_calories,omitempty"`
	ConsumedCalories     float64              `json:"consumed_calories"`
	CalorieProgressPct   float64              `json:"calorie_progress_pct"`
	HydrationToday       int                  `json:"hydration_today_ml,omitempty"`
	HydrationGoal        int                  `json:"hydration_goal_ml,omitempty"`
	HydrationProgressPct float64              `json:"hydration_progress_pct"`
	SleepLastNight       float64              `json:"sleep_last_night_h,omitempty"`
	SleepGoal            float64              `json:"sleep_goal_h,omitempty"`
	MoodRating           *int                 `json:"mood_rating,omitempty"`
	Mood                 MoodStatus           `json:"mood"`
	StressScore          *int                 `json:"stress_score,omitempty"`
	ImmunityStatus       model.ImmunityStatus `json:"immunity_status,omitempty"`
}

// TodaySummary builds the dashboard for date from the stored profile and
// food history. Without a profile only consumption is reported.
func TodaySummary(profiles *ProfileRepository, history *HistoryRepository, date time.Time, window CaloriesWindow) (*TodayStatus, error) {
	records, err := history.ListAll()
	if err != nil {
		return nil, err
	}
	status := &TodayStatus{
		Date:           beginningOfDay(date).Format(dateLayout),
		CaloriesWindow: window,
		Mood:           MoodNone,
	}
	if window == WindowDay {
		status.ConsumedCalories = CaloriesConsumedOn(records, date)
	} else {
		status.CaloriesWindow = WindowAll
		status.ConsumedCalories = CaloriesConsumedToday(records)
	}

	p, err := profiles.Load()
	if err != nil {
		return nil, err
	}
	if p == nil {
		return status, nil
	}
	status.HasProfile = true
	status.TargetCalories = TargetCalories(p.Weight, p.Height, p.Age, p.Gender)
	status.CalorieProgressPct = roundTenth(CalorieProgress(status.ConsumedCalories, status.TargetCalories))
	status.HydrationToday = p.HydrationToday
	status.HydrationGoal = p.HydrationGoal
	if p.HydrationGoal > 0 {
		status.HydrationProgressPct = roundTenth(math.Min(float64(p.HydrationToday)/float64(p.HydrationGoal)*100, 100))
	}
	status.SleepLastNight = p.SleepLastNight
	status.SleepGoal = p.SleepGoal
	status.MoodRating = p.MoodRating
	status.Mood = MoodStatusFor(p.MoodRating)
	status.StressScore = p.StressScore
	status.ImmunityStatus = p.ImmunityStatus
	return status, nil
}

func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}
