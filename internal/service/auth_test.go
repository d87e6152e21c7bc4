package service_test

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/izzsandya6-dev/gemini-ai-health/internal/model"
	"github.com/izzsandya6-dev/gemini-ai-health/internal/service"
	"github.com/izzsandya6-dev/gemini-ai-health/internal/store"
)

func newAuth(s store.Store) (*service.AuthService, *service.ProfileRepository) {
	profiles := service.NewProfileRepository(s, nil, quietLogger())
	return service.NewAuthService(s, profiles, nil, quietLogger()), profiles
}

func registerInput() service.RegisterInput {
	return service.RegisterInput{
		Name:     "Dewi",
		Email:    "Dewi@Example.com",
		Password: "rahasia1",
		Age:      28,
		Weight:   55,
		Height:   160,
		Gender:   model.GenderFemale,
		Language: model.LanguageEN,
	}
}

func TestRegisterVerifyLogin(t *testing.T) {
	t.Parallel()
	s := store.NewMemoryStore()
	auth, profiles := newAuth(s)

	p, err := auth.Register(registerInput())
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if p.IsVerified || p.Password == "rahasia1" || p.Email != "dewi@example.com" {
		t.Fatalf("expected unverified user with hashed password, got %+v", p)
	}
	if _, err := auth.Register(registerInput()); !errors.Is(err, service.ErrEmailRegistered) {
		t.Fatalf("expected duplicate email error, got %v", err)
	}

	if _, err := auth.Login("dewi@example.com", "rahasia1"); !errors.Is(err, service.ErrNotVerified) {
		t.Fatalf("expected not verified, got %v", err)
	}
	if ok, _ := profiles.Authenticated(); ok {
		t.Fatalf("unverified login must not sign in")
	}

	if err := auth.Verify("DEWI@example.com"); err != nil {
		t.Fatalf("verify: %v", err)
	}
	if err := auth.Verify("nobody@example.com"); !errors.Is(err, service.ErrUserNotFound) {
		t.Fatalf("expected user not found, got %v", err)
	}
	if _, err := auth.Login("dewi@example.com", "salah"); !errors.Is(err, service.ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}

	user, err := auth.Login("dewi@example.com", "rahasia1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if user.Name != "Dewi" || user.Language != model.LanguageEN {
		t.Fatalf("unexpected user: %+v", user)
	}
	active, err := profiles.Load()
	if err != nil || active == nil || active.Email != "dewi@example.com" {
		t.Fatalf("expected active profile to be the user, got %+v, %v", active, err)
	}
	if ok, _ := profiles.Authenticated(); !ok {
		t.Fatalf("expected signed in after login")
	}

	if err := auth.Logout(); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if ok, _ := profiles.Authenticated(); ok {
		t.Fatalf("expected signed out")
	}
}

func TestRegisterValidatesInput(t *testing.T) {
	t.Parallel()
	auth, _ := newAuth(store.NewMemoryStore())

	in := registerInput()
	in.Email = "not-an-email"
	in.Weight = 0
	_, err := auth.Register(in)
	var verr *service.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(verr.Fields) != 2 {
		t.Fatalf("expected email and weight errors, got %v", verr.Fields)
	}
}

func TestLoginUpgradesPlaintextPassword(t *testing.T) {
	t.Parallel()
	s := store.NewMemoryStore()
	legacy := `[{"name":"Andi","email":"andi@example.com","password":"sandi123","isVerified":true,"gender":"Pria","weight":70,"height":170,"age":35}]`
	if err := s.Set(store.KeyRegisteredUsers, []byte(legacy)); err != nil {
		t.Fatalf("seed users: %v", err)
	}
	auth, _ := newAuth(s)

	if _, err := auth.Login("andi@example.com", "sandi123"); err != nil {
		t.Fatalf("login with legacy password: %v", err)
	}
	raw, _, _ := s.Get(store.KeyRegisteredUsers)
	if strings.Contains(string(raw), "sandi123") {
		t.Fatalf("plaintext password should be replaced: %s", raw)
	}
	var users []map[string]json.RawMessage
	if err := json.Unmarshal(raw, &users); err != nil {
		t.Fatalf("decode users: %v", err)
	}
	if string(users[0]["gender"]) != `"male"` {
		t.Fatalf("expected legacy gender upgraded, got %s", users[0]["gender"])
	}

	if _, err := auth.Login("andi@example.com", "sandi123"); err != nil {
		t.Fatalf("login with hashed password: %v", err)
	}
	if _, err := auth.Login("andi@example.com", "wrong"); !errors.Is(err, service.ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
}
