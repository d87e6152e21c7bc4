package service

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/izzsandya6-dev/gemini-ai-health/internal/model"
	"github.com/izzsandya6-dev/gemini-ai-health/internal/store"
)

const exportFormatVersion = 1

// ExportData is every stored key in one document. Keys are named as they
// are stored so a browser export can be imported unchanged.
type ExportData struct {
	Version         int                  `json:"version"`
	ExportedAt      string               `json:"exported_at"`
	Profile         *model.Profile       `json:"profile,omitempty"`
	FoodHistory     []model.FoodAnalysis `json:"foodHistory"`
	ChatSessions    []model.ChatSession  `json:"chatSessions"`
	RegisteredUsers []model.Profile      `json:"registeredUsers"`
	Authenticated   bool                 `json:"authenticated"`
}

type exportEnvelope struct {
	Version         int             `json:"version"`
	ExportedAt      string          `json:"exported_at"`
	Profile         json.RawMessage `json:"profile"`
	FoodHistory     json.RawMessage `json:"foodHistory"`
	ChatSessions    json.RawMessage `json:"chatSessions"`
	RegisteredUsers json.RawMessage `json:"registeredUsers"`
	Authenticated   json.RawMessage `json:"authenticated"`
}

// ParseExport reads an export document, upgrading older record shapes the
// same way stored values are.
func ParseExport(b []byte) (*ExportData, error) {
	var env exportEnvelope
	if err := json.Unmarshal(b, &env); err != nil {
		return nil, fmt.Errorf("parse export: %w", err)
	}
	if env.Version > exportFormatVersion {
		return nil, fmt.Errorf("export version %d is newer than supported version %d", env.Version, exportFormatVersion)
	}
	data := &ExportData{Version: env.Version, ExportedAt: env.ExportedAt}
	var err error
	if !isAbsent(env.Profile) {
		if data.Profile, err = NormalizeProfile(env.Profile); err != nil {
			return nil, fmt.Errorf("parse export: %w", err)
		}
	}
	if data.FoodHistory, err = NormalizeFoodHistory(env.FoodHistory); err != nil {
		return nil, fmt.Errorf("parse export: %w", err)
	}
	if data.ChatSessions, err = NormalizeChatSessions(env.ChatSessions); err != nil {
		return nil, fmt.Errorf("parse export: %w", err)
	}
	if data.RegisteredUsers, err = NormalizeProfiles(env.RegisteredUsers); err != nil {
		return nil, fmt.Errorf("parse export: %w", err)
	}
	if !isAbsent(env.Authenticated) {
		// Older exports stored the flag as the string "true".
		var flag any
		if err := json.Unmarshal(env.Authenticated, &flag); err != nil {
			return nil, fmt.Errorf("parse export authenticated flag: %w", err)
		}
		data.Authenticated = flag == true || flag == authenticatedValue
	}
	return data, nil
}

func ExportDataSnapshot(s store.Store, now time.Time) (*ExportData, error) {
	data := &ExportData{Version: exportFormatVersion, ExportedAt: now.UTC().Format(time.RFC3339)}
	raw, ok, err := s.Get(store.KeyProfile)
	if err != nil {
		return nil, fmt.Errorf("export profile: %w", err)
	}
	if ok && !isAbsent(raw) {
		if data.Profile, err = NormalizeProfile(raw); err != nil {
			return nil, err
		}
	}
	if raw, _, err = s.Get(store.KeyFoodHistory); err != nil {
		return nil, fmt.Errorf("export food history: %w", err)
	}
	if data.FoodHistory, err = NormalizeFoodHistory(raw); err != nil {
		return nil, err
	}
	if raw, _, err = s.Get(store.KeyChatSessions); err != nil {
		return nil, fmt.Errorf("export chat sessions: %w", err)
	}
	if data.ChatSessions, err = NormalizeChatSessions(raw); err != nil {
		return nil, err
	}
	if raw, _, err = s.Get(store.KeyRegisteredUsers); err != nil {
		return nil, fmt.Errorf("export registered users: %w", err)
	}
	if data.RegisteredUsers, err = NormalizeProfiles(raw); err != nil {
		return nil, err
	}
	if raw, ok, err = s.Get(store.KeyAuthenticated); err != nil {
		return nil, fmt.Errorf("export auth flag: %w", err)
	}
	data.Authenticated = ok && string(raw) == authenticatedValue
	return data, nil
}

type ImportMode string

const (
	// ImportModeReplace overwrites every key with the document's contents.
	ImportModeReplace ImportMode = "replace"
	// ImportModeMerge adds records the store lacks: history by timestamp,
	// sessions by id, users by email. Stored records win.
	ImportModeMerge ImportMode = "merge"
)

func ParseImportMode(s string) (ImportMode, error) {
	switch ImportMode(s) {
	case "", ImportModeMerge:
		return ImportModeMerge, nil
	case ImportModeReplace:
		return ImportModeReplace, nil
	}
	return "", fmt.Errorf("invalid import mode %q (expected replace|merge)", s)
}

type ImportOptions struct {
	Mode   ImportMode
	DryRun bool
}

type ImportReport struct {
	Mode           ImportMode `json:"mode"`
	ProfileWritten bool       `json:"profile_written"`
	FoodAdded      int        `json:"food_added"`
	FoodSkipped    int        `json:"food_skipped"`
	ChatsAdded     int        `json:"chats_added"`
	ChatsSkipped   int        `json:"chats_skipped"`
	UsersAdded     int        `json:"users_added"`
	UsersSkipped   int        `json:"users_skipped"`
	DryRun         bool       `json:"dry_run,omitempty"`
}

// ImportDataSnapshot writes data into s. Keys are written one at a time;
// a failure part way leaves earlier keys imported.
func ImportDataSnapshot(s store.Store, data *ExportData, opts ImportOptions) (ImportReport, error) {
	mode := opts.Mode
	if mode == "" {
		mode = ImportModeMerge
	}
	report := ImportReport{Mode: mode, DryRun: opts.DryRun}
	if data.Profile != nil {
		if err := NewValidator().Validate(*data.Profile); err != nil {
			return report, fmt.Errorf("import profile: %w", err)
		}
	}

	if err := importProfile(s, data, mode, opts.DryRun, &report); err != nil {
		return report, err
	}
	if err := updateList(s, store.KeyFoodHistory, opts.DryRun, func(current []byte) ([]byte, error) {
		existing, err := NormalizeFoodHistory(current)
		if err != nil {
			return nil, err
		}
		merged := mergeFood(existing, data.FoodHistory, mode, &report)
		return encodeList(merged)
	}); err != nil {
		return report, fmt.Errorf("import food history: %w", err)
	}
	if err := updateList(s, store.KeyChatSessions, opts.DryRun, func(current []byte) ([]byte, error) {
		existing, err := NormalizeChatSessions(current)
		if err != nil {
			return nil, err
		}
		merged := mergeSessions(existing, data.ChatSessions, mode, &report)
		return encodeList(merged)
	}); err != nil {
		return report, fmt.Errorf("import chat sessions: %w", err)
	}
	if err := updateList(s, store.KeyRegisteredUsers, opts.DryRun, func(current []byte) ([]byte, error) {
		existing, err := NormalizeProfiles(current)
		if err != nil {
			return nil, err
		}
		merged := mergeUsers(existing, data.RegisteredUsers, mode, &report)
		return encodeProfiles(merged)
	}); err != nil {
		return report, fmt.Errorf("import registered users: %w", err)
	}

	if mode == ImportModeReplace && !opts.DryRun {
		var err error
		if data.Authenticated {
			err = s.Set(store.KeyAuthenticated, []byte(authenticatedValue))
		} else {
			err = s.Delete(store.KeyAuthenticated)
		}
		if err != nil {
			return report, fmt.Errorf("import auth flag: %w", err)
		}
	}
	return report, nil
}

func importProfile(s store.Store, data *ExportData, mode ImportMode, dryRun bool, report *ImportReport) error {
	return s.Update(store.KeyProfile, func(current []byte, ok bool) ([]byte, bool, error) {
		report.ProfileWritten = false
		present := ok && !isAbsent(current)
		switch {
		case data.Profile == nil && mode == ImportModeReplace && present:
			// Replacing with a document that has no profile removes ours.
			report.ProfileWritten = true
			return []byte("null"), !dryRun, nil
		case data.Profile == nil:
			return nil, false, nil
		case mode == ImportModeMerge && present:
			return nil, false, nil
		}
		b, err := encodeProfile(data.Profile)
		if err != nil {
			return nil, false, err
		}
		report.ProfileWritten = true
		return b, !dryRun, nil
	})
}

func updateList(s store.Store, key string, dryRun bool, build func(current []byte) ([]byte, error)) error {
	return s.Update(key, func(current []byte, _ bool) ([]byte, bool, error) {
		next, err := build(current)
		if err != nil {
			return nil, false, err
		}
		return next, !dryRun, nil
	})
}

func mergeFood(existing, incoming []model.FoodAnalysis, mode ImportMode, report *ImportReport) []model.FoodAnalysis {
	report.FoodAdded, report.FoodSkipped = 0, 0
	if mode == ImportModeReplace {
		report.FoodAdded = len(incoming)
		return incoming
	}
	seen := make(map[int64]bool, len(existing))
	for _, r := range existing {
		seen[r.Timestamp] = true
	}
	out := append([]model.FoodAnalysis(nil), existing...)
	for _, r := range incoming {
		// A zero timestamp means the record never got one; it identifies nothing.
		if r.Timestamp != 0 && seen[r.Timestamp] {
			report.FoodSkipped++
			continue
		}
		seen[r.Timestamp] = true
		out = append(out, r)
		report.FoodAdded++
	}
	return out
}

func mergeSessions(existing, incoming []model.ChatSession, mode ImportMode, report *ImportReport) []model.ChatSession {
	report.ChatsAdded, report.ChatsSkipped = 0, 0
	if mode == ImportModeReplace {
		report.ChatsAdded = len(incoming)
		return incoming
	}
	seen := make(map[string]bool, len(existing))
	for _, s := range existing {
		seen[s.ID] = true
	}
	out := append([]model.ChatSession(nil), existing...)
	added := false
	for _, s := range incoming {
		if s.ID != "" && seen[s.ID] {
			report.ChatsSkipped++
			continue
		}
		seen[s.ID] = true
		out = append(out, s)
		report.ChatsAdded++
		added = true
	}
	if added {
		// Keep the list newest first once foreign sessions are mixed in.
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Timestamp > out[j].Timestamp
		})
	}
	return out
}

func mergeUsers(existing, incoming []model.Profile, mode ImportMode, report *ImportReport) []model.Profile {
	report.UsersAdded, report.UsersSkipped = 0, 0
	if mode == ImportModeReplace {
		report.UsersAdded = len(incoming)
		return incoming
	}
	out := append([]model.Profile(nil), existing...)
	for _, u := range incoming {
		if findUser(out, normalizeEmail(u.Email)) >= 0 {
			report.UsersSkipped++
			continue
		}
		out = append(out, u)
		report.UsersAdded++
	}
	return out
}
