package service

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/izzsandya6-dev/gemini-ai-health/internal/model"
)

// DefaultHydrationStep is the quick-add amount in millilitres.
const DefaultHydrationStep = 250

// FieldUpdate is one typed change to a stored profile. Values are built only
// by the constructors in this file.
type FieldUpdate struct {
	field string
	apply func(p *model.Profile) error
}

func (u FieldUpdate) Field() string {
	return u.field
}

func update(field string, fn func(p *model.Profile) error) FieldUpdate {
	return FieldUpdate{field: field, apply: fn}
}

func SetName(v string) FieldUpdate {
	return update("name", func(p *model.Profile) error {
		p.Name = strings.TrimSpace(v)
		return nil
	})
}

func SetEmail(v string) FieldUpdate {
	return update("email", func(p *model.Profile) error {
		p.Email = strings.TrimSpace(v)
		return nil
	})
}

func SetLanguage(v model.Language) FieldUpdate {
	return update("language", func(p *model.Profile) error {
		p.Language = v
		return nil
	})
}

func SetGoal(v string) FieldUpdate {
	return update("goal", func(p *model.Profile) error {
		p.Goal = strings.TrimSpace(v)
		return nil
	})
}

// SetTargetWeight with nil clears the target.
func SetTargetWeight(v *float64) FieldUpdate {
	return update("targetWeight", func(p *model.Profile) error {
		p.TargetWeight = v
		return nil
	})
}

func SetDietPreference(v string) FieldUpdate {
	return update("dietPreference", func(p *model.Profile) error {
		p.DietPreference = strings.TrimSpace(v)
		return nil
	})
}

func SetDietProtocol(v model.DietProtocol) FieldUpdate {
	return update("dietProtocol", func(p *model.Profile) error {
		p.DietProtocol = v
		return nil
	})
}

func SetWeight(v float64) FieldUpdate {
	return update("weight", func(p *model.Profile) error {
		p.Weight = v
		return nil
	})
}

func SetHeight(v float64) FieldUpdate {
	return update("height", func(p *model.Profile) error {
		p.Height = v
		return nil
	})
}

func SetAge(v int) FieldUpdate {
	return update("age", func(p *model.Profile) error {
		p.Age = v
		return nil
	})
}

func SetGender(v model.Gender) FieldUpdate {
	return update("gender", func(p *model.Profile) error {
		p.Gender = v
		return nil
	})
}

func SetActivityLevel(v model.ActivityLevel) FieldUpdate {
	return update("activityLevel", func(p *model.Profile) error {
		p.ActivityLevel = v
		return nil
	})
}

func SetFocusArea(v model.FocusArea) FieldUpdate {
	return update("focusArea", func(p *model.Profile) error {
		p.FocusArea = v
		return nil
	})
}

func SetFormula(v model.SmartFormula) FieldUpdate {
	return update("formula", func(p *model.Profile) error {
		p.Formula = v
		return nil
	})
}

// SetMoodRating with nil clears the rating.
func SetMoodRating(v *int) FieldUpdate {
	return update("moodRating", func(p *model.Profile) error {
		p.MoodRating = v
		return nil
	})
}

// SetStressScore with nil clears the score.
func SetStressScore(v *int) FieldUpdate {
	return update("stressScore", func(p *model.Profile) error {
		p.StressScore = v
		return nil
	})
}

func SetHydrationToday(ml int) FieldUpdate {
	return update("hydrationToday", func(p *model.Profile) error {
		p.HydrationToday = ml
		return nil
	})
}

func SetHydrationGoal(ml int) FieldUpdate {
	return update("hydrationGoal", func(p *model.Profile) error {
		p.HydrationGoal = ml
		return nil
	})
}

func SetSleepLastNight(hours float64) FieldUpdate {
	return update("sleepLastNight", func(p *model.Profile) error {
		p.SleepLastNight = hours
		return nil
	})
}

func SetSleepGoal(hours float64) FieldUpdate {
	return update("sleepGoal", func(p *model.Profile) error {
		p.SleepGoal = hours
		return nil
	})
}

func SetImmunityStatus(v model.ImmunityStatus) FieldUpdate {
	return update("immunityStatus", func(p *model.Profile) error {
		p.ImmunityStatus = v
		return nil
	})
}

func SetWellnessPrefs(v model.WellnessPrefs) FieldUpdate {
	return update("wellnessPrefs", func(p *model.Profile) error {
		p.WellnessPrefs = v
		return nil
	})
}

func SetVerified(v bool) FieldUpdate {
	return update("isVerified", func(p *model.Profile) error {
		p.IsVerified = v
		return nil
	})
}

// AddHydration adds ml to today's intake.
func AddHydration(ml int) FieldUpdate {
	return update("hydrationToday", func(p *model.Profile) error {
		if err := validateNonNegativeInt("hydration amount", ml); err != nil {
			return err
		}
		p.HydrationToday += ml
		return nil
	})
}

func AddAllergy(v string) FieldUpdate {
	return update("allergies", func(p *model.Profile) error {
		out, err := addToSet(p.Allergies, v)
		p.Allergies = out
		return err
	})
}

func RemoveAllergy(v string) FieldUpdate {
	return update("allergies", func(p *model.Profile) error {
		p.Allergies = removeFromSet(p.Allergies, v)
		return nil
	})
}

func AddMedicalCondition(v string) FieldUpdate {
	return update("medicalConditions", func(p *model.Profile) error {
		out, err := addToSet(p.MedicalConditions, v)
		p.MedicalConditions = out
		return err
	})
}

func RemoveMedicalCondition(v string) FieldUpdate {
	return update("medicalConditions", func(p *model.Profile) error {
		p.MedicalConditions = removeFromSet(p.MedicalConditions, v)
		return nil
	})
}

func AddDevice(v string) FieldUpdate {
	return update("connectedDevices", func(p *model.Profile) error {
		out, err := addToSet(p.ConnectedDevices, v)
		p.ConnectedDevices = out
		return err
	})
}

func RemoveDevice(v string) FieldUpdate {
	return update("connectedDevices", func(p *model.Profile) error {
		p.ConnectedDevices = removeFromSet(p.ConnectedDevices, v)
		return nil
	})
}

// AddEmergencyContact appends c. An empty ID is replaced by a generated one.
func AddEmergencyContact(c model.EmergencyContact) FieldUpdate {
	return update("emergencyContacts", func(p *model.Profile) error {
		c.Name = strings.TrimSpace(c.Name)
		c.Relation = strings.TrimSpace(c.Relation)
		c.Phone = strings.TrimSpace(c.Phone)
		if c.Name == "" || c.Phone == "" {
			return fmt.Errorf("contact name and phone are required")
		}
		if c.ID == "" {
			c.ID = uuid.NewString()
		}
		for _, existing := range p.EmergencyContacts {
			if existing.ID == c.ID {
				return fmt.Errorf("contact %q already exists", c.ID)
			}
		}
		p.EmergencyContacts = append(p.EmergencyContacts, c)
		return nil
	})
}

// RemoveEmergencyContact is a no-op for an unknown id.
func RemoveEmergencyContact(id string) FieldUpdate {
	return update("emergencyContacts", func(p *model.Profile) error {
		out := make([]model.EmergencyContact, 0, len(p.EmergencyContacts))
		for _, c := range p.EmergencyContacts {
			if c.ID != id {
				out = append(out, c)
			}
		}
		p.EmergencyContacts = out
		return nil
	})
}

// LogWeight records a weigh-in and makes it the current weight.
func LogWeight(at time.Time, kg float64) FieldUpdate {
	return update("weightHistory", func(p *model.Profile) error {
		if kg <= 0 {
			return fmt.Errorf("weight must be > 0")
		}
		p.WeightHistory = append(p.WeightHistory, model.WeightRecord{Date: model.Millis(at), Weight: kg})
		p.Weight = kg
		return nil
	})
}

func LogActivity(at time.Time, kind string, minutes int) FieldUpdate {
	return update("activityLog", func(p *model.Profile) error {
		kind = strings.TrimSpace(kind)
		if kind == "" {
			return fmt.Errorf("activity type is required")
		}
		if err := validateNonNegativeInt("duration", minutes); err != nil {
			return err
		}
		p.ActivityLog = append(p.ActivityLog, model.ActivityRecord{Date: model.Millis(at), Type: kind, Duration: minutes})
		return nil
	})
}

func addToSet(list []string, v string) ([]string, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return list, fmt.Errorf("value is required")
	}
	for _, existing := range list {
		if normalizeName(existing) == normalizeName(v) {
			return list, nil
		}
	}
	return append(list, v), nil
}

func removeFromSet(list []string, v string) []string {
	out := make([]string, 0, len(list))
	for _, existing := range list {
		if normalizeName(existing) != normalizeName(v) {
			out = append(out, existing)
		}
	}
	return out
}

// ParseFieldUpdate maps a stored field name and a textual value to a typed
// update. Optional fields accept "" or "null" to clear them; nested members
// use dotted names such as "formula.focus" or "wellnessPrefs.hydration".
func ParseFieldUpdate(field, value string) (FieldUpdate, error) {
	field = strings.TrimSpace(field)
	value = strings.TrimSpace(value)
	switch field {
	case "name":
		return SetName(value), nil
	case "email":
		return SetEmail(value), nil
	case "goal":
		return SetGoal(value), nil
	case "dietPreference":
		return SetDietPreference(value), nil
	case "language":
		v, ok := model.ParseLanguage(value)
		if !ok {
			return FieldUpdate{}, fmt.Errorf("invalid language %q (expected id|en)", value)
		}
		return SetLanguage(v), nil
	case "gender":
		v, ok := model.ParseGender(value)
		if !ok {
			return FieldUpdate{}, fmt.Errorf("invalid gender %q (expected male|female)", value)
		}
		return SetGender(v), nil
	case "activityLevel":
		v, ok := model.ParseActivityLevel(value)
		if !ok {
			return FieldUpdate{}, fmt.Errorf("invalid activity level %q", value)
		}
		return SetActivityLevel(v), nil
	case "dietProtocol":
		v, ok := model.ParseDietProtocol(value)
		if !ok {
			return FieldUpdate{}, fmt.Errorf("invalid diet protocol %q", value)
		}
		return SetDietProtocol(v), nil
	case "focusArea":
		v, ok := model.ParseFocusArea(value)
		if !ok {
			return FieldUpdate{}, fmt.Errorf("invalid focus area %q", value)
		}
		return SetFocusArea(v), nil
	case "immunityStatus":
		v, ok := model.ParseImmunityStatus(value)
		if !ok {
			return FieldUpdate{}, fmt.Errorf("invalid immunity status %q", value)
		}
		return SetImmunityStatus(v), nil
	case "weight":
		v, err := parseFloatField(field, value)
		return SetWeight(v), err
	case "height":
		v, err := parseFloatField(field, value)
		return SetHeight(v), err
	case "sleepLastNight":
		v, err := parseFloatField(field, value)
		return SetSleepLastNight(v), err
	case "sleepGoal":
		v, err := parseFloatField(field, value)
		return SetSleepGoal(v), err
	case "age":
		v, err := parseIntField(field, value)
		return SetAge(v), err
	case "hydrationToday":
		v, err := parseIntField(field, value)
		return SetHydrationToday(v), err
	case "hydrationGoal":
		v, err := parseIntField(field, value)
		return SetHydrationGoal(v), err
	case "targetWeight":
		if isClearValue(value) {
			return SetTargetWeight(nil), nil
		}
		v, err := parseFloatField(field, value)
		return SetTargetWeight(&v), err
	case "moodRating":
		if isClearValue(value) {
			return SetMoodRating(nil), nil
		}
		v, err := parseIntField(field, value)
		return SetMoodRating(&v), err
	case "stressScore":
		if isClearValue(value) {
			return SetStressScore(nil), nil
		}
		v, err := parseIntField(field, value)
		return SetStressScore(&v), err
	}

	if name, ok := strings.CutPrefix(field, "formula."); ok {
		v, err := parseIntField(field, value)
		if err != nil {
			return FieldUpdate{}, err
		}
		return formulaSlider(name, v)
	}
	if name, ok := strings.CutPrefix(field, "wellnessPrefs."); ok {
		v, err := strconv.ParseBool(value)
		if err != nil {
			return FieldUpdate{}, fmt.Errorf("invalid %s %q (expected true|false)", field, value)
		}
		return wellnessPref(name, v)
	}
	return FieldUpdate{}, fmt.Errorf("unknown or read-only profile field %q", field)
}

func formulaSlider(name string, v int) (FieldUpdate, error) {
	var target func(f *model.SmartFormula) *int
	switch name {
	case "metabolism":
		target = func(f *model.SmartFormula) *int { return &f.Metabolism }
	case "recovery":
		target = func(f *model.SmartFormula) *int { return &f.Recovery }
	case "focus":
		target = func(f *model.SmartFormula) *int { return &f.Focus }
	case "longevity":
		target = func(f *model.SmartFormula) *int { return &f.Longevity }
	default:
		return FieldUpdate{}, fmt.Errorf("unknown formula slider %q", name)
	}
	return update("formula."+name, func(p *model.Profile) error {
		*target(&p.Formula) = v
		return nil
	}), nil
}

func wellnessPref(name string, v bool) (FieldUpdate, error) {
	var target func(w *model.WellnessPrefs) *bool
	switch name {
	case "meditation":
		target = func(w *model.WellnessPrefs) *bool { return &w.Meditation }
	case "exercise":
		target = func(w *model.WellnessPrefs) *bool { return &w.Exercise }
	case "deepSleep":
		target = func(w *model.WellnessPrefs) *bool { return &w.DeepSleep }
	case "hydration":
		target = func(w *model.WellnessPrefs) *bool { return &w.Hydration }
	default:
		return FieldUpdate{}, fmt.Errorf("unknown wellness preference %q", name)
	}
	return update("wellnessPrefs."+name, func(p *model.Profile) error {
		*target(&p.WellnessPrefs) = v
		return nil
	}), nil
}

func isClearValue(v string) bool {
	return v == "" || strings.EqualFold(v, "null")
}

func parseFloatField(field, value string) (float64, error) {
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: expected a number", field, value)
	}
	return v, nil
}

func parseIntField(field, value string) (int, error) {
	v, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: expected an integer", field, value)
	}
	return v, nil
}

var nationalContacts = map[model.Language][]model.EmergencyContact{
	model.LanguageEN: {
		{Name: "Ambulance", Relation: "National", Phone: "911"},
		{Name: "Police", Relation: "National", Phone: "911"},
		{Name: "Fire Department", Relation: "National", Phone: "911"},
	},
	model.LanguageID: {
		{Name: "Ambulans", Relation: "Nasional", Phone: "118"},
		{Name: "Polisi", Relation: "Nasional", Phone: "110"},
		{Name: "Basarnas", Relation: "Nasional", Phone: "115"},
	},
}

// NationalContacts lists the public emergency numbers shown next to the
// user's own contacts. They are never stored.
func NationalContacts(lang model.Language) []model.EmergencyContact {
	list, ok := nationalContacts[lang]
	if !ok {
		list = nationalContacts[model.LanguageID]
	}
	out := make([]model.EmergencyContact, len(list))
	copy(out, list)
	return out
}
