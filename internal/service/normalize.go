package service

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/izzsandya6-dev/gemini-ai-health/internal/model"
	"github.com/izzsandya6-dev/gemini-ai-health/internal/store"
)

// Defaults substituted for members missing from a stored record. Object
// defaults are merged member by member, so a partially written formula keeps
// the sliders it has.
var profileDefaults = map[string]string{
	"name":              `""`,
	"email":             `""`,
	"password":          `""`,
	"isVerified":        `false`,
	"language":          `"id"`,
	"goal":              `"Meningkatkan Stamina"`,
	"weightHistory":     `[]`,
	"activityLog":       `[]`,
	"dietPreference":    `"Semua (Normal)"`,
	"dietProtocol":      `"Standard"`,
	"allergies":         `[]`,
	"medicalConditions": `[]`,
	"weight":            `0`,
	"height":            `0`,
	"age":               `0`,
	"gender":            `"male"`,
	"activityLevel":     `"moderate"`,
	"focusArea":         `"energy"`,
	"formula":           `{"metabolism":3,"recovery":3,"focus":3,"longevity":3}`,
	"hydrationToday":    `0`,
	"hydrationGoal":     `2000`,
	"sleepLastNight":    `0`,
	"sleepGoal":         `8`,
	"immunityStatus":    `"stable"`,
	"emergencyContacts": `[]`,
	"connectedDevices":  `[]`,
	"wellnessPrefs":     `{"meditation":true,"exercise":true,"deepSleep":true,"hydration":true}`,
}

var profileOptional = []string{"targetWeight", "moodRating", "stressScore", "schemaVersion"}

// Members renamed since the first schema: old name -> current name.
var profileRenames = map[string]string{
	"sleepLast_night": "sleepLastNight",
}

var foodDefaults = map[string]string{
	"name":           `""`,
	"description":    `""`,
	"nutrients":      `{"calories":0,"protein":0,"carbs":0,"fat":0}`,
	"healthScore":    `0`,
	"recommendation": `""`,
	"timestamp":      `0`,
}

var chatDefaults = map[string]string{
	"id":        `""`,
	"title":     `""`,
	"messages":  `[]`,
	"timestamp": `0`,
}

var messageDefaults = map[string]string{
	"text": `""`,
}

type (
	plainProfile      model.Profile
	plainFoodAnalysis model.FoodAnalysis
	plainChatSession  model.ChatSession
)

// DefaultProfile is the profile a new registration starts from.
func DefaultProfile() *model.Profile {
	p, err := NormalizeProfile(nil)
	if err != nil {
		panic(fmt.Sprintf("default profile table is invalid: %v", err))
	}
	return p
}

// NormalizeProfile reads a stored profile, upgrading older shapes and filling
// missing members from the defaults table. Empty input yields the default
// profile; callers that must distinguish "no profile" check presence first.
func NormalizeProfile(raw []byte) (*model.Profile, error) {
	return normalizeProfileAt(store.KeyProfile, raw)
}

// NormalizeProfiles reads the registered-user list.
func NormalizeProfiles(raw []byte) ([]model.Profile, error) {
	items, err := decodeList(store.KeyRegisteredUsers, raw)
	if err != nil {
		return nil, err
	}
	out := make([]model.Profile, 0, len(items))
	for i, item := range items {
		p, err := normalizeProfileAt(fmt.Sprintf("%s[%d]", store.KeyRegisteredUsers, i), item)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, nil
}

func normalizeProfileAt(key string, raw []byte) (*model.Profile, error) {
	members := map[string]json.RawMessage{}
	if !isAbsent(raw) {
		var err error
		members, err = decodeObject(key, raw)
		if err != nil {
			return nil, err
		}
	}
	for oldName, newName := range profileRenames {
		v, ok := members[oldName]
		if !ok {
			continue
		}
		if cur, exists := members[newName]; !exists || isAbsent(cur) {
			members[newName] = v
		}
		delete(members, oldName)
	}
	if err := fillDefaults(members, profileDefaults); err != nil {
		return nil, corrupt(key, err)
	}

	known, extra := splitMembers(members, profileDefaults, profileOptional...)
	var p plainProfile
	if err := decodeMembers(known, &p); err != nil {
		return nil, corrupt(key, err)
	}
	out := model.Profile(p)
	if err := canonicalizeProfile(&out); err != nil {
		return nil, corrupt(key, err)
	}
	out.SchemaVersion = model.ProfileSchemaVersion
	out.Extra = extra
	return &out, nil
}

func canonicalizeProfile(p *model.Profile) error {
	lang, ok := model.ParseLanguage(string(p.Language))
	if !ok {
		return fmt.Errorf("unknown language %q", p.Language)
	}
	p.Language = lang
	gender, ok := model.ParseGender(string(p.Gender))
	if !ok {
		return fmt.Errorf("unknown gender %q", p.Gender)
	}
	p.Gender = gender
	level, ok := model.ParseActivityLevel(string(p.ActivityLevel))
	if !ok {
		return fmt.Errorf("unknown activity level %q", p.ActivityLevel)
	}
	p.ActivityLevel = level
	protocol, ok := model.ParseDietProtocol(string(p.DietProtocol))
	if !ok {
		return fmt.Errorf("unknown diet protocol %q", p.DietProtocol)
	}
	p.DietProtocol = protocol
	focus, ok := model.ParseFocusArea(string(p.FocusArea))
	if !ok {
		return fmt.Errorf("unknown focus area %q", p.FocusArea)
	}
	p.FocusArea = focus
	immunity, ok := model.ParseImmunityStatus(string(p.ImmunityStatus))
	if !ok {
		return fmt.Errorf("unknown immunity status %q", p.ImmunityStatus)
	}
	p.ImmunityStatus = immunity
	return nil
}

// NormalizeFoodHistory reads the food-analysis log in stored order.
func NormalizeFoodHistory(raw []byte) ([]model.FoodAnalysis, error) {
	items, err := decodeList(store.KeyFoodHistory, raw)
	if err != nil {
		return nil, err
	}
	out := make([]model.FoodAnalysis, 0, len(items))
	for i, item := range items {
		key := fmt.Sprintf("%s[%d]", store.KeyFoodHistory, i)
		members, err := decodeObject(key, item)
		if err != nil {
			return nil, err
		}
		if err := fillDefaults(members, foodDefaults); err != nil {
			return nil, corrupt(key, err)
		}
		known, extra := splitMembers(members, foodDefaults)
		var rec plainFoodAnalysis
		if err := decodeMembers(known, &rec); err != nil {
			return nil, corrupt(key, err)
		}
		f := model.FoodAnalysis(rec)
		f.Extra = extra
		out = append(out, f)
	}
	return out, nil
}

// NormalizeChatSessions reads the chat-session log in stored order.
func NormalizeChatSessions(raw []byte) ([]model.ChatSession, error) {
	items, err := decodeList(store.KeyChatSessions, raw)
	if err != nil {
		return nil, err
	}
	out := make([]model.ChatSession, 0, len(items))
	for i, item := range items {
		key := fmt.Sprintf("%s[%d]", store.KeyChatSessions, i)
		members, err := decodeObject(key, item)
		if err != nil {
			return nil, err
		}
		if err := fillDefaults(members, chatDefaults); err != nil {
			return nil, corrupt(key, err)
		}
		messages, err := normalizeMessages(key, members["messages"])
		if err != nil {
			return nil, err
		}
		delete(members, "messages")
		known, extra := splitMembers(members, chatDefaults)
		var s plainChatSession
		if err := decodeMembers(known, &s); err != nil {
			return nil, corrupt(key, err)
		}
		session := model.ChatSession(s)
		session.Messages = messages
		session.Extra = extra
		out = append(out, session)
	}
	return out, nil
}

func normalizeMessages(key string, raw json.RawMessage) ([]model.ChatMessage, error) {
	items, err := decodeList(key+".messages", raw)
	if err != nil {
		return nil, err
	}
	out := make([]model.ChatMessage, 0, len(items))
	for i, item := range items {
		mkey := fmt.Sprintf("%s.messages[%d]", key, i)
		members, err := decodeObject(mkey, item)
		if err != nil {
			return nil, err
		}
		if err := fillDefaults(members, messageDefaults); err != nil {
			return nil, corrupt(mkey, err)
		}
		var m model.ChatMessage
		if err := decodeMembers(members, &m); err != nil {
			return nil, corrupt(mkey, err)
		}
		role, ok := model.ParseRole(string(m.Role))
		if !ok {
			return nil, corrupt(mkey, fmt.Errorf("unknown role %q", m.Role))
		}
		m.Role = role
		out = append(out, m)
	}
	return out, nil
}

func isAbsent(raw []byte) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

func decodeObject(key string, raw []byte) (map[string]json.RawMessage, error) {
	if isAbsent(raw) {
		return nil, corrupt(key, fmt.Errorf("expected an object, got null"))
	}
	members := map[string]json.RawMessage{}
	if err := json.Unmarshal(raw, &members); err != nil {
		return nil, corrupt(key, err)
	}
	return members, nil
}

// decodeList treats a missing or null list as empty.
func decodeList(key string, raw []byte) ([]json.RawMessage, error) {
	if isAbsent(raw) {
		return nil, nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, corrupt(key, err)
	}
	return items, nil
}

// fillDefaults sets every member of defaults that is missing or null, and
// recurses into object-valued defaults.
func fillDefaults(members map[string]json.RawMessage, defaults map[string]string) error {
	for name, def := range defaults {
		cur, ok := members[name]
		if !ok || isAbsent(cur) {
			members[name] = json.RawMessage(def)
			continue
		}
		if !isObjectLiteral(def) || !isObjectLiteral(string(cur)) {
			continue
		}
		var (
			curMembers = map[string]json.RawMessage{}
			defMembers = map[string]json.RawMessage{}
		)
		if err := json.Unmarshal(cur, &curMembers); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		if err := json.Unmarshal([]byte(def), &defMembers); err != nil {
			return fmt.Errorf("default %s: %w", name, err)
		}
		changed := false
		for sub, subDef := range defMembers {
			if v, ok := curMembers[sub]; !ok || isAbsent(v) {
				curMembers[sub] = subDef
				changed = true
			}
		}
		if !changed {
			continue
		}
		merged, err := json.Marshal(curMembers)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		members[name] = merged
	}
	return nil
}

func isObjectLiteral(s string) bool {
	trimmed := bytes.TrimSpace([]byte(s))
	return len(trimmed) > 0 && trimmed[0] == '{'
}

func splitMembers(members map[string]json.RawMessage, defaults map[string]string, optional ...string) (known, extra map[string]json.RawMessage) {
	known = make(map[string]json.RawMessage, len(defaults)+len(optional))
	for name, v := range members {
		_, isDefault := defaults[name]
		if isDefault || contains(optional, name) {
			known[name] = v
			continue
		}
		if extra == nil {
			extra = map[string]json.RawMessage{}
		}
		extra[name] = v
	}
	return known, extra
}

func decodeMembers(members map[string]json.RawMessage, out any) error {
	b, err := json.Marshal(members)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, out)
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
