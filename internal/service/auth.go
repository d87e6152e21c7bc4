package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/izzsandya6-dev/gemini-ai-health/internal/model"
	"github.com/izzsandya6-dev/gemini-ai-health/internal/store"
)

type RegisterInput struct {
	Name     string         `json:"name" validate:"required,max=120"`
	Email    string         `json:"email" validate:"required,email"`
	Password string         `json:"password" validate:"required,min=6"`
	Age      int            `json:"age" validate:"required,gt=0,lte=150"`
	Weight   float64        `json:"weight" validate:"required,gt=0,lte=500"`
	Height   float64        `json:"height" validate:"required,gt=0,lte=300"`
	Gender   model.Gender   `json:"gender" validate:"omitempty,oneof=male female"`
	Language model.Language `json:"language" validate:"omitempty,oneof=id en"`
	Goal     string         `json:"goal"`
}

// AuthService keeps the registered-user list and signs users in through the
// profile repository.
type AuthService struct {
	store     store.Store
	profiles  *ProfileRepository
	validator *Validator
	log       *logrus.Logger
}

func NewAuthService(s store.Store, profiles *ProfileRepository, v *Validator, log *logrus.Logger) *AuthService {
	if v == nil {
		v = NewValidator()
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &AuthService{store: s, profiles: profiles, validator: v, log: log}
}

// Register adds an unverified user. The returned profile carries the
// password hash.
func (s *AuthService) Register(in RegisterInput) (*model.Profile, error) {
	in.Email = normalizeEmail(in.Email)
	in.Name = strings.TrimSpace(in.Name)
	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	p := DefaultProfile()
	p.Name = in.Name
	p.Email = in.Email
	p.Password = string(hashed)
	p.IsVerified = false
	p.Age = in.Age
	p.Weight = in.Weight
	p.Height = in.Height
	if in.Gender != "" {
		p.Gender = in.Gender
	}
	if in.Language != "" {
		p.Language = in.Language
	}
	if goal := strings.TrimSpace(in.Goal); goal != "" {
		p.Goal = goal
	}

	err = s.store.Update(store.KeyRegisteredUsers, func(current []byte, _ bool) ([]byte, bool, error) {
		users, err := NormalizeProfiles(current)
		if err != nil {
			return nil, false, err
		}
		if findUser(users, in.Email) >= 0 {
			return nil, false, ErrEmailRegistered
		}
		next, err := encodeProfiles(append(users, *p))
		return next, err == nil, err
	})
	if err != nil {
		return nil, fmt.Errorf("register %s: %w", in.Email, err)
	}
	s.log.WithField("email", in.Email).Info("User registered")
	return p, nil
}

// Verify marks the user with email as verified.
func (s *AuthService) Verify(email string) error {
	email = normalizeEmail(email)
	err := s.store.Update(store.KeyRegisteredUsers, func(current []byte, _ bool) ([]byte, bool, error) {
		users, err := NormalizeProfiles(current)
		if err != nil {
			return nil, false, err
		}
		i := findUser(users, email)
		if i < 0 {
			return nil, false, ErrUserNotFound
		}
		if users[i].IsVerified {
			return nil, false, nil
		}
		users[i].IsVerified = true
		next, err := encodeProfiles(users)
		return next, err == nil, err
	})
	if err != nil {
		return fmt.Errorf("verify %s: %w", email, err)
	}
	return nil
}

// Login checks the credentials, makes the user's record the active profile
// and sets the signed-in flag. A password stored in plain text is accepted
// once and replaced by its hash.
func (s *AuthService) Login(email, password string) (*model.Profile, error) {
	email = normalizeEmail(email)
	var user *model.Profile
	err := s.store.Update(store.KeyRegisteredUsers, func(current []byte, _ bool) ([]byte, bool, error) {
		user = nil
		users, err := NormalizeProfiles(current)
		if err != nil {
			return nil, false, err
		}
		i := findUser(users, email)
		if i < 0 {
			return nil, false, ErrInvalidCredentials
		}
		upgraded, err := checkPassword(&users[i], password)
		if err != nil {
			return nil, false, err
		}
		u := users[i]
		user = &u
		if !upgraded {
			return nil, false, nil
		}
		next, err := encodeProfiles(users)
		return next, err == nil, err
	})
	if err != nil {
		return nil, fmt.Errorf("login %s: %w", email, err)
	}
	if !user.IsVerified {
		return nil, fmt.Errorf("login %s: %w", email, ErrNotVerified)
	}
	if err := s.profiles.Replace(*user, AuthSignedIn); err != nil {
		return nil, fmt.Errorf("login %s: %w", email, err)
	}
	s.log.WithField("email", email).Info("User signed in")
	return user, nil
}

func (s *AuthService) Logout() error {
	if err := s.profiles.SignOut(); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

// Users lists registered users with their password hashes.
func (s *AuthService) Users() ([]model.Profile, error) {
	raw, _, err := s.store.Get(store.KeyRegisteredUsers)
	if err != nil {
		return nil, fmt.Errorf("load registered users: %w", err)
	}
	return NormalizeProfiles(raw)
}

// checkPassword reports whether u's stored password was plain text and has
// been replaced by a hash.
func checkPassword(u *model.Profile, password string) (bool, error) {
	if isBcryptHash(u.Password) {
		if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
			if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
				return false, ErrInvalidCredentials
			}
			return false, fmt.Errorf("compare password: %w", err)
		}
		return false, nil
	}
	if u.Password == "" || u.Password != password {
		return false, ErrInvalidCredentials
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return false, fmt.Errorf("hash password: %w", err)
	}
	u.Password = string(hashed)
	return true, nil
}

func isBcryptHash(s string) bool {
	_, err := bcrypt.Cost([]byte(s))
	return err == nil
}

func findUser(users []model.Profile, email string) int {
	for i, u := range users {
		if normalizeEmail(u.Email) == email {
			return i
		}
	}
	return -1
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
