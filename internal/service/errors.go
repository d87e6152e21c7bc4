package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrCorruptStorage matches any *CorruptError.
var ErrCorruptStorage = errors.New("corrupt stored value")

var (
	ErrEmailRegistered    = errors.New("email is already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNotVerified        = errors.New("account is not verified")
	ErrUserNotFound       = errors.New("user not found")
)

// CorruptError reports a stored value that exists but cannot be read as the
// expected shape. Callers treat the value as absent; nothing is guessed.
type CorruptError struct {
	Key string
	Err error
}

func (e *CorruptError) Error() string {
	return fmt.Sprintf("stored %s is corrupt: %v", e.Key, e.Err)
}

func (e *CorruptError) Unwrap() error {
	return e.Err
}

func (e *CorruptError) Is(target error) bool {
	return target == ErrCorruptStorage
}

func corrupt(key string, err error) error {
	return &CorruptError{Key: key, Err: err}
}

// ValidationError carries one message per offending field.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	msgs := make([]string, 0, len(keys))
	for _, k := range keys {
		msgs = append(msgs, e.Fields[k])
	}
	return "invalid input: " + strings.Join(msgs, "; ")
}
