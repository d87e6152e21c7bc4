package service_test

import (
	"errors"
	"testing"
	"time"

	"github.com/izzsandya6-dev/gemini-ai-health/internal/model"
	"github.com/izzsandya6-dev/gemini-ai-health/internal/service"
	"github.com/izzsandya6-dev/gemini-ai-health/internal/store"
)

func TestUpdateFieldWithoutProfileIsNoOp(t *testing.T) {
	t.Parallel()
	s := store.NewMemoryStore()
	repo := service.NewProfileRepository(s, nil, quietLogger())

	p, err := repo.UpdateField(service.SetHydrationToday(500))
	if err != nil {
		t.Fatalf("update field: %v", err)
	}
	if p != nil {
		t.Fatalf("expected nil profile, got %+v", p)
	}
	if _, ok, _ := s.Get(store.KeyProfile); ok {
		t.Fatalf("expected no profile to be written")
	}
	loaded, err := repo.Load()
	if err != nil || loaded != nil {
		t.Fatalf("expected absent profile, got %+v, %v", loaded, err)
	}
}

func TestUpdateFieldsAppliesInOneWrite(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	repo := seedProfile(t, s)
	before, _, err := s.Stat(store.KeyProfile)
	if err != nil {
		t.Fatalf("stat profile: %v", err)
	}

	p, err := repo.UpdateFields(
		service.AddHydration(service.DefaultHydrationStep),
		service.AddHydration(service.DefaultHydrationStep),
		service.SetImmunityStatus(model.ImmunityDeclining),
		service.SetStressScore(intPtr(40)),
	)
	if err != nil {
		t.Fatalf("update fields: %v", err)
	}
	if p.HydrationToday != 500 || p.ImmunityStatus != model.ImmunityDeclining || *p.StressScore != 40 {
		t.Fatalf("unexpected updated profile: %+v", p)
	}
	after, _, err := s.Stat(store.KeyProfile)
	if err != nil {
		t.Fatalf("stat profile: %v", err)
	}
	if after.Revision != before.Revision+1 {
		t.Fatalf("expected one write, revision went %d -> %d", before.Revision, after.Revision)
	}

	loaded, err := repo.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.HydrationToday != 500 || loaded.Name != "Sari" {
		t.Fatalf("expected update persisted with other members intact, got %+v", loaded)
	}
}

func TestUpdateFieldRejectsOutOfRangeValues(t *testing.T) {
	t.Parallel()
	s := store.NewMemoryStore()
	repo := seedProfile(t, s)

	_, err := repo.UpdateField(service.SetMoodRating(intPtr(9)))
	var verr *service.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	p, err := repo.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if p.MoodRating != nil {
		t.Fatalf("rejected update must not be stored, got mood %d", *p.MoodRating)
	}
}

func TestReplaceControlsAuthFlag(t *testing.T) {
	t.Parallel()
	s := store.NewMemoryStore()
	repo := service.NewProfileRepository(s, nil, quietLogger())

	if err := repo.Replace(*service.DefaultProfile(), service.AuthSignedIn); err != nil {
		t.Fatalf("replace: %v", err)
	}
	ok, err := repo.Authenticated()
	if err != nil || !ok {
		t.Fatalf("expected signed in, got %v, %v", ok, err)
	}
	if err := repo.SignOut(); err != nil {
		t.Fatalf("sign out: %v", err)
	}
	if ok, _ := repo.Authenticated(); ok {
		t.Fatalf("expected signed out")
	}
	if p, _ := repo.Load(); p == nil {
		t.Fatalf("sign out must keep the profile")
	}
}

func TestCollectionUpdates(t *testing.T) {
	t.Parallel()
	s := store.NewMemoryStore()
	repo := seedProfile(t, s)
	at := time.Date(2026, 3, 1, 7, 0, 0, 0, time.Local)

	p, err := repo.UpdateFields(
		service.AddAllergy("Kacang"),
		service.AddAllergy("kacang"),
		service.AddAllergy("Susu"),
		service.AddDevice("Mi Band"),
		service.AddMedicalCondition("Asma"),
		service.AddEmergencyContact(model.EmergencyContact{Name: "Ibu", Relation: "Keluarga", Phone: "0812"}),
		service.LogWeight(at, 68.5),
		service.LogActivity(at, "lari", 30),
	)
	if err != nil {
		t.Fatalf("update collections: %v", err)
	}
	if len(p.Allergies) != 2 || p.Allergies[0] != "Kacang" || p.Allergies[1] != "Susu" {
		t.Fatalf("expected set semantics with insertion order, got %v", p.Allergies)
	}
	if len(p.EmergencyContacts) != 1 || p.EmergencyContacts[0].ID == "" {
		t.Fatalf("expected contact with generated id, got %+v", p.EmergencyContacts)
	}
	if p.Weight != 68.5 || len(p.WeightHistory) != 1 || p.WeightHistory[0].Date != model.Millis(at) {
		t.Fatalf("unexpected weight log: weight=%v history=%+v", p.Weight, p.WeightHistory)
	}
	if len(p.ActivityLog) != 1 || p.ActivityLog[0].Duration != 30 {
		t.Fatalf("unexpected activity log: %+v", p.ActivityLog)
	}

	id := p.EmergencyContacts[0].ID
	p, err = repo.UpdateFields(
		service.RemoveAllergy("KACANG"),
		service.RemoveDevice("Mi Band"),
		service.RemoveMedicalCondition("Asma"),
		service.RemoveEmergencyContact(id),
		service.RemoveEmergencyContact("missing"),
	)
	if err != nil {
		t.Fatalf("remove collections: %v", err)
	}
	if len(p.Allergies) != 1 || len(p.ConnectedDevices) != 0 || len(p.MedicalConditions) != 0 || len(p.EmergencyContacts) != 0 {
		t.Fatalf("unexpected collections after removal: %+v", p)
	}
}

func TestParseFieldUpdate(t *testing.T) {
	t.Parallel()
	s := store.NewMemoryStore()
	repo := seedProfile(t, s)

	updates := make([]service.FieldUpdate, 0)
	for _, kv := range [][2]string{
		{"gender", "Wanita"},
		{"activityLevel", "athletic"},
		{"dietProtocol", "intermittent fasting"},
		{"formula.focus", "5"},
		{"wellnessPrefs.meditation", "false"},
		{"moodRating", "4"},
		{"targetWeight", "65"},
		{"sleepLastNight", "7.5"},
	} {
		u, err := service.ParseFieldUpdate(kv[0], kv[1])
		if err != nil {
			t.Fatalf("parse %s=%s: %v", kv[0], kv[1], err)
		}
		updates = append(updates, u)
	}
	p, err := repo.UpdateFields(updates...)
	if err != nil {
		t.Fatalf("apply parsed updates: %v", err)
	}
	if p.Gender != model.GenderFemale || p.ActivityLevel != model.ActivityAthletic || p.DietProtocol != model.DietIntermittentFasting {
		t.Fatalf("unexpected enums: %+v", p)
	}
	if p.Formula.Focus != 5 || p.WellnessPrefs.Meditation || *p.MoodRating != 4 || *p.TargetWeight != 65 || p.SleepLastNight != 7.5 {
		t.Fatalf("unexpected parsed values: %+v", p)
	}

	unset, err := service.ParseFieldUpdate("moodRating", "null")
	if err != nil {
		t.Fatalf("parse clear: %v", err)
	}
	p, err = repo.UpdateField(unset)
	if err != nil || p.MoodRating != nil {
		t.Fatalf("expected mood cleared, got %+v, %v", p, err)
	}

	for _, kv := range [][2]string{{"password", "x"}, {"gender", "robot"}, {"age", "old"}, {"formula.speed", "3"}} {
		if _, err := service.ParseFieldUpdate(kv[0], kv[1]); err == nil {
			t.Fatalf("expected %s=%s to be rejected", kv[0], kv[1])
		}
	}
}
