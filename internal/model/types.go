package model

import (
	"encoding/json"
	"reflect"
	"strings"
	"time"
)

// ProfileSchemaVersion is the current shape written by this module.
const ProfileSchemaVersion = 2

type SmartFormula struct {
	Metabolism int `json:"metabolism" validate:"min=1,max=5"`
	Recovery   int `json:"recovery" validate:"min=1,max=5"`
	Focus      int `json:"focus" validate:"min=1,max=5"`
	Longevity  int `json:"longevity" validate:"min=1,max=5"`

	Extra map[string]json.RawMessage `json:"-"`
}

func (v SmartFormula) MarshalJSON() ([]byte, error) {
	type plain SmartFormula
	return marshalWithExtra(plain(v), v.Extra)
}

func (v *SmartFormula) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	type plain SmartFormula
	var out plain
	extra, err := unmarshalWithExtra(b, &out)
	if err != nil {
		return err
	}
	*v = SmartFormula(out)
	v.Extra = extra
	return nil
}

type WellnessPrefs struct {
	Meditation bool `json:"meditation"`
	Exercise   bool `json:"exercise"`
	DeepSleep  bool `json:"deepSleep"`
	Hydration  bool `json:"hydration"`

	Extra map[string]json.RawMessage `json:"-"`
}

func (v WellnessPrefs) MarshalJSON() ([]byte, error) {
	type plain WellnessPrefs
	return marshalWithExtra(plain(v), v.Extra)
}

func (v *WellnessPrefs) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	type plain WellnessPrefs
	var out plain
	extra, err := unmarshalWithExtra(b, &out)
	if err != nil {
		return err
	}
	*v = WellnessPrefs(out)
	v.Extra = extra
	return nil
}

type WeightRecord struct {
	Date   int64   `json:"date"`
	Weight float64 `json:"weight" validate:"gt=0"`

	Extra map[string]json.RawMessage `json:"-"`
}

func (v WeightRecord) MarshalJSON() ([]byte, error) {
	type plain WeightRecord
	return marshalWithExtra(plain(v), v.Extra)
}

func (v *WeightRecord) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	type plain WeightRecord
	var out plain
	extra, err := unmarshalWithExtra(b, &out)
	if err != nil {
		return err
	}
	*v = WeightRecord(out)
	v.Extra = extra
	return nil
}

type ActivityRecord struct {
	Date     int64  `json:"date"`
	Type     string `json:"type" validate:"required"`
	Duration int    `json:"duration" validate:"gte=0"`

	Extra map[string]json.RawMessage `json:"-"`
}

func (v ActivityRecord) MarshalJSON() ([]byte, error) {
	type plain ActivityRecord
	return marshalWithExtra(plain(v), v.Extra)
}

func (v *ActivityRecord) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	type plain ActivityRecord
	var out plain
	extra, err := unmarshalWithExtra(b, &out)
	if err != nil {
		return err
	}
	*v = ActivityRecord(out)
	v.Extra = extra
	return nil
}

type EmergencyContact struct {
	ID       string `json:"id"`
	Name     string `json:"name" validate:"required"`
	Relation string `json:"relation"`
	Phone    string `json:"phone" validate:"required"`

	Extra map[string]json.RawMessage `json:"-"`
}

func (v EmergencyContact) MarshalJSON() ([]byte, error) {
	type plain EmergencyContact
	return marshalWithExtra(plain(v), v.Extra)
}

func (v *EmergencyContact) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	type plain EmergencyContact
	var out plain
	extra, err := unmarshalWithExtra(b, &out)
	if err != nil {
		return err
	}
	*v = EmergencyContact(out)
	v.Extra = extra
	return nil
}

type Profile struct {
	Name              string             `json:"name" validate:"max=120"`
	Email             string             `json:"email" validate:"omitempty,email"`
	Password          string             `json:"password"`
	IsVerified        bool               `json:"isVerified"`
	Language          Language           `json:"language" validate:"oneof=id en"`
	Goal              string             `json:"goal"`
	TargetWeight      *float64           `json:"targetWeight,omitempty" validate:"omitnil,gt=0"`
	WeightHistory     []WeightRecord     `json:"weightHistory" validate:"dive"`
	ActivityLog       []ActivityRecord   `json:"activityLog" validate:"dive"`
	DietPreference    string             `json:"dietPreference"`
	DietProtocol      DietProtocol       `json:"dietProtocol" validate:"oneof=Standard Paleo Keto Mediterranean 'Intermittent Fasting' 'Low Sodium'"`
	Allergies         []string           `json:"allergies"`
	MedicalConditions []string           `json:"medicalConditions"`
	Weight            float64            `json:"weight" validate:"gte=0,lte=500"`
	Height            float64            `json:"height" validate:"gte=0,lte=300"`
	Age               int                `json:"age" validate:"gte=0,lte=150"`
	Gender            Gender             `json:"gender" validate:"oneof=male female"`
	ActivityLevel     ActivityLevel      `json:"activityLevel" validate:"oneof=sedentary light moderate active athletic"`
	FocusArea         FocusArea          `json:"focusArea" validate:"oneof=energy muscle digestion immunity mental-health"`
	Formula           SmartFormula       `json:"formula"`
	MoodRating        *int               `json:"moodRating,omitempty" validate:"omitnil,min=1,max=5"`
	StressScore       *int               `json:"stressScore,omitempty" validate:"omitnil,min=0,max=100"`
	HydrationToday    int                `json:"hydrationToday" validate:"gte=0"`
	HydrationGoal     int                `json:"hydrationGoal" validate:"gte=0"`
	SleepLastNight    float64            `json:"sleepLastNight" validate:"gte=0,lte=24"`
	SleepGoal         float64            `json:"sleepGoal" validate:"gte=0,lte=24"`
	ImmunityStatus    ImmunityStatus     `json:"immunityStatus" validate:"oneof=strong stable declining vulnerable"`
	EmergencyContacts []EmergencyContact `json:"emergencyContacts" validate:"dive"`
	ConnectedDevices  []string           `json:"connectedDevices"`
	WellnessPrefs     WellnessPrefs      `json:"wellnessPrefs"`
	SchemaVersion     int                `json:"schemaVersion"`

	// Extra holds members this version does not know about.
	Extra map[string]json.RawMessage `json:"-"`
}

func (p Profile) MarshalJSON() ([]byte, error) {
	type plain Profile
	return marshalWithExtra(plain(p), p.Extra)
}

type Nutrients struct {
	Calories float64  `json:"calories" validate:"gte=0"`
	Protein  float64  `json:"protein" validate:"gte=0"`
	Carbs    float64  `json:"carbs" validate:"gte=0"`
	Fat      float64  `json:"fat" validate:"gte=0"`
	Fiber    *float64 `json:"fiber,omitempty" validate:"omitnil,gte=0"`
	Vitamins []string `json:"vitamins,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

func (v Nutrients) MarshalJSON() ([]byte, error) {
	type plain Nutrients
	return marshalWithExtra(plain(v), v.Extra)
}

func (v *Nutrients) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	type plain Nutrients
	var out plain
	extra, err := unmarshalWithExtra(b, &out)
	if err != nil {
		return err
	}
	*v = Nutrients(out)
	v.Extra = extra
	return nil
}

// FoodAnalysis is one persisted food-analysis result. Timestamp is the
// record identity inside the history log.
type FoodAnalysis struct {
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	Nutrients      Nutrients `json:"nutrients"`
	HealthScore    float64   `json:"healthScore" validate:"gte=0,lte=100"`
	Recommendation string    `json:"recommendation"`
	Timestamp      int64     `json:"timestamp"`

	Extra map[string]json.RawMessage `json:"-"`
}

func (f FoodAnalysis) MarshalJSON() ([]byte, error) {
	type plain FoodAnalysis
	return marshalWithExtra(plain(f), f.Extra)
}

func (f FoodAnalysis) Time() time.Time {
	return FromMillis(f.Timestamp)
}

type ChatMessage struct {
	Role Role   `json:"role"`
	Text string `json:"text"`

	Extra map[string]json.RawMessage `json:"-"`
}

func (v ChatMessage) MarshalJSON() ([]byte, error) {
	type plain ChatMessage
	return marshalWithExtra(plain(v), v.Extra)
}

func (v *ChatMessage) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	type plain ChatMessage
	var out plain
	extra, err := unmarshalWithExtra(b, &out)
	if err != nil {
		return err
	}
	*v = ChatMessage(out)
	v.Extra = extra
	return nil
}

type ChatSession struct {
	ID        string        `json:"id"`
	Title     string        `json:"title"`
	Messages  []ChatMessage `json:"messages"`
	Timestamp int64         `json:"timestamp"`

	Extra map[string]json.RawMessage `json:"-"`
}

func (s ChatSession) MarshalJSON() ([]byte, error) {
	type plain ChatSession
	return marshalWithExtra(plain(s), s.Extra)
}

func (s ChatSession) Time() time.Time {
	return FromMillis(s.Timestamp)
}

func Millis(t time.Time) int64 {
	return t.UnixMilli()
}

func FromMillis(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms)
}

// unmarshalWithExtra decodes b into v, a pointer to a struct without custom
// decoding, and returns the members v has no field for.
func unmarshalWithExtra(b []byte, v any) (map[string]json.RawMessage, error) {
	if err := json.Unmarshal(b, v); err != nil {
		return nil, err
	}
	members := map[string]json.RawMessage{}
	if err := json.Unmarshal(b, &members); err != nil {
		return nil, err
	}
	known := fieldNames(reflect.TypeOf(v).Elem())
	var extra map[string]json.RawMessage
	for k, raw := range members {
		if known[strings.ToLower(k)] {
			continue
		}
		if extra == nil {
			extra = map[string]json.RawMessage{}
		}
		extra[k] = raw
	}
	return extra, nil
}

// fieldNames lists the lower-cased JSON member names of struct type t,
// matching the case-insensitive lookup encoding/json decodes with.
func fieldNames(t reflect.Type) map[string]bool {
	names := make(map[string]bool, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		tag := f.Tag.Get("json")
		if tag == "-" || !f.IsExported() {
			continue
		}
		name, _, _ := strings.Cut(tag, ",")
		if name == "" {
			name = f.Name
		}
		names[strings.ToLower(name)] = true
	}
	return names
}

// marshalWithExtra emits v's members merged with extra, keys sorted, so the
// same value always serializes to the same bytes. Known members win.
func marshalWithExtra(v any, extra map[string]json.RawMessage) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	members := map[string]json.RawMessage{}
	if err := json.Unmarshal(b, &members); err != nil {
		return nil, err
	}
	for k, raw := range extra {
		if _, known := members[k]; known {
			continue
		}
		members[k] = raw
	}
	return json.Marshal(members)
}
