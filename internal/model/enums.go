package model

import "strings"

type Language string

const (
	LanguageID Language = "id"
	LanguageEN Language = "en"
)

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

type ActivityLevel string

const (
	ActivitySedentary ActivityLevel = "sedentary"
	ActivityLight     ActivityLevel = "light"
	ActivityModerate  ActivityLevel = "moderate"
	ActivityActive    ActivityLevel = "active"
	ActivityAthletic  ActivityLevel = "athletic"
)

type DietProtocol string

const (
	DietStandard            DietProtocol = "Standard"
	DietPaleo               DietProtocol = "Paleo"
	DietKeto                DietProtocol = "Keto"
	DietMediterranean       DietProtocol = "Mediterranean"
	DietIntermittentFasting DietProtocol = "Intermittent Fasting"
	DietLowSodium           DietProtocol = "Low Sodium"
)

type FocusArea string

const (
	FocusEnergy       FocusArea = "energy"
	FocusMuscle       FocusArea = "muscle"
	FocusDigestion    FocusArea = "digestion"
	FocusImmunity     FocusArea = "immunity"
	FocusMentalHealth FocusArea = "mental-health"
)

type ImmunityStatus string

const (
	ImmunityStrong     ImmunityStatus = "strong"
	ImmunityStable     ImmunityStatus = "stable"
	ImmunityDeclining  ImmunityStatus = "declining"
	ImmunityVulnerable ImmunityStatus = "vulnerable"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type SurveyCategory string

const (
	CategoryMetabolic SurveyCategory = "metabolic"
	CategoryRecovery  SurveyCategory = "recovery"
	CategoryImmunity  SurveyCategory = "immunity"
	CategoryLifestyle SurveyCategory = "lifestyle"
	CategoryStress    SurveyCategory = "stress"
)

// Legacy tags written by the first web client, keyed by lower-cased value.
var (
	legacyGenders = map[string]Gender{
		"pria":   GenderMale,
		"wanita": GenderFemale,
	}
	legacyActivityLevels = map[string]ActivityLevel{
		"sedenter": ActivitySedentary,
		"ringan":   ActivityLight,
		"moderat":  ActivityModerate,
		"aktif":    ActivityActive,
		"atletis":  ActivityAthletic,
	}
	legacyFocusAreas = map[string]FocusArea{
		"energi":           FocusEnergy,
		"otot":             FocusMuscle,
		"pencernaan":       FocusDigestion,
		"imunitas":         FocusImmunity,
		"kesehatan mental": FocusMentalHealth,
	}
	legacyImmunity = map[string]ImmunityStatus{
		"kuat":    ImmunityStrong,
		"stabil":  ImmunityStable,
		"menurun": ImmunityDeclining,
		"rentan":  ImmunityVulnerable,
	}
	legacyCategories = map[string]SurveyCategory{
		"metabolik":  CategoryMetabolic,
		"pemulihan":  CategoryRecovery,
		"imunitas":   CategoryImmunity,
		"gaya-hidup": CategoryLifestyle,
		"stres":      CategoryStress,
	}
)

func ParseLanguage(s string) (Language, bool) {
	switch Language(strings.ToLower(strings.TrimSpace(s))) {
	case LanguageID:
		return LanguageID, true
	case LanguageEN:
		return LanguageEN, true
	}
	return "", false
}

func ParseGender(s string) (Gender, bool) {
	key := strings.ToLower(strings.TrimSpace(s))
	switch Gender(key) {
	case GenderMale, GenderFemale:
		return Gender(key), true
	}
	g, ok := legacyGenders[key]
	return g, ok
}

func ParseActivityLevel(s string) (ActivityLevel, bool) {
	key := strings.ToLower(strings.TrimSpace(s))
	switch ActivityLevel(key) {
	case ActivitySedentary, ActivityLight, ActivityModerate, ActivityActive, ActivityAthletic:
		return ActivityLevel(key), true
	}
	a, ok := legacyActivityLevels[key]
	return a, ok
}

func ParseDietProtocol(s string) (DietProtocol, bool) {
	key := strings.ToLower(strings.TrimSpace(s))
	for _, p := range DietProtocols() {
		if strings.ToLower(string(p)) == key {
			return p, true
		}
	}
	return "", false
}

func DietProtocols() []DietProtocol {
	return []DietProtocol{DietStandard, DietPaleo, DietKeto, DietMediterranean, DietIntermittentFasting, DietLowSodium}
}

func ParseFocusArea(s string) (FocusArea, bool) {
	key := strings.ToLower(strings.TrimSpace(s))
	switch FocusArea(key) {
	case FocusEnergy, FocusMuscle, FocusDigestion, FocusImmunity, FocusMentalHealth:
		return FocusArea(key), true
	}
	f, ok := legacyFocusAreas[key]
	return f, ok
}

func ParseImmunityStatus(s string) (ImmunityStatus, bool) {
	key := strings.ToLower(strings.TrimSpace(s))
	switch ImmunityStatus(key) {
	case ImmunityStrong, ImmunityStable, ImmunityDeclining, ImmunityVulnerable:
		return ImmunityStatus(key), true
	}
	i, ok := legacyImmunity[key]
	return i, ok
}

// ParseRole accepts "model", the role name used by the AI service, as assistant.
func ParseRole(s string) (Role, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "user":
		return RoleUser, true
	case "assistant", "model":
		return RoleAssistant, true
	}
	return "", false
}

func ParseSurveyCategory(s string) (SurveyCategory, bool) {
	key := strings.ToLower(strings.TrimSpace(s))
	switch SurveyCategory(key) {
	case CategoryMetabolic, CategoryRecovery, CategoryImmunity, CategoryLifestyle, CategoryStress:
		return SurveyCategory(key), true
	}
	c, ok := legacyCategories[key]
	return c, ok
}
