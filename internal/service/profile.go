package service

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/izzsandya6-dev/gemini-ai-health/internal/model"
	"github.com/izzsandya6-dev/gemini-ai-health/internal/store"
)

// AuthChange says what Replace does to the signed-in flag.
type AuthChange int

const (
	AuthUnchanged AuthChange = iota
	AuthSignedIn
	AuthSignedOut
)

const authenticatedValue = "true"

type ProfileRepository struct {
	store     store.Store
	validator *Validator
	log       *logrus.Logger
}

func NewProfileRepository(s store.Store, v *Validator, log *logrus.Logger) *ProfileRepository {
	if v == nil {
		v = NewValidator()
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &ProfileRepository{store: s, validator: v, log: log}
}

// Load returns the stored profile, or nil when none has been saved.
func (r *ProfileRepository) Load() (*model.Profile, error) {
	raw, ok, err := r.store.Get(store.KeyProfile)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	if !ok || isAbsent(raw) {
		return nil, nil
	}
	return NormalizeProfile(raw)
}

// Replace validates p and stores it as the whole profile.
func (r *ProfileRepository) Replace(p model.Profile, auth AuthChange) error {
	if err := r.validator.Validate(p); err != nil {
		return err
	}
	b, err := encodeProfile(&p)
	if err != nil {
		return err
	}
	if err := r.store.Set(store.KeyProfile, b); err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	if err := r.setAuth(auth); err != nil {
		return err
	}
	r.log.WithField("auth", auth).Debug("Profile replaced")
	return nil
}

// SignOut clears the signed-in flag and leaves the profile in place.
func (r *ProfileRepository) SignOut() error {
	return r.setAuth(AuthSignedOut)
}

func (r *ProfileRepository) Authenticated() (bool, error) {
	raw, ok, err := r.store.Get(store.KeyAuthenticated)
	if err != nil {
		return false, fmt.Errorf("read auth flag: %w", err)
	}
	return ok && string(raw) == authenticatedValue, nil
}

func (r *ProfileRepository) setAuth(auth AuthChange) error {
	switch auth {
	case AuthSignedIn:
		if err := r.store.Set(store.KeyAuthenticated, []byte(authenticatedValue)); err != nil {
			return fmt.Errorf("set auth flag: %w", err)
		}
	case AuthSignedOut:
		if err := r.store.Delete(store.KeyAuthenticated); err != nil {
			return fmt.Errorf("clear auth flag: %w", err)
		}
	}
	return nil
}

// UpdateField applies one typed update. With no stored profile it returns
// nil and writes nothing.
func (r *ProfileRepository) UpdateField(u FieldUpdate) (*model.Profile, error) {
	return r.UpdateFields(u)
}

// UpdateFields applies the updates in order as a single write.
func (r *ProfileRepository) UpdateFields(us ...FieldUpdate) (*model.Profile, error) {
	var updated *model.Profile
	err := r.store.Update(store.KeyProfile, func(current []byte, ok bool) ([]byte, bool, error) {
		updated = nil
		if !ok || isAbsent(current) {
			return nil, false, nil
		}
		p, err := NormalizeProfile(current)
		if err != nil {
			return nil, false, err
		}
		for _, u := range us {
			if u.apply == nil {
				return nil, false, fmt.Errorf("update profile: empty field update")
			}
			if err := u.apply(p); err != nil {
				return nil, false, fmt.Errorf("update %s: %w", u.field, err)
			}
		}
		if err := r.validator.Validate(*p); err != nil {
			return nil, false, err
		}
		next, err := encodeProfile(p)
		if err != nil {
			return nil, false, err
		}
		updated = p
		return next, true, nil
	})
	if err != nil {
		return nil, err
	}
	if updated != nil {
		r.log.WithField("fields", fieldNames(us)).Debug("Profile updated")
	}
	return updated, nil
}

func fieldNames(us []FieldUpdate) []string {
	out := make([]string, 0, len(us))
	for _, u := range us {
		out = append(out, u.field)
	}
	return out
}
