package service

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/izzsandya6-dev/gemini-ai-health/internal/db"
	"github.com/izzsandya6-dev/gemini-ai-health/internal/store"
)

type BackupInfo struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	CreatedAt time.Time `json:"created_at"`
	SizeBytes int64     `json:"size_bytes"`
}

// CreateBackup writes a consistent snapshot of the open database to outPath
// with a .sha256 file next to it.
func CreateBackup(sqldb *sql.DB, outPath string) (BackupInfo, error) {
	if strings.TrimSpace(outPath) == "" {
		return BackupInfo{}, fmt.Errorf("backup output path is required")
	}
	if _, err := os.Stat(outPath); err == nil {
		return BackupInfo{}, fmt.Errorf("backup %s already exists", outPath)
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return BackupInfo{}, fmt.Errorf("create backup directory: %w", err)
	}
	if _, err := sqldb.Exec(`VACUUM INTO ?`, outPath); err != nil {
		return BackupInfo{}, fmt.Errorf("snapshot database: %w", err)
	}
	checksum, err := fileSHA256(outPath)
	if err != nil {
		return BackupInfo{}, err
	}
	if err := os.WriteFile(outPath+".sha256", []byte(checksum+"\n"), 0o644); err != nil {
		return BackupInfo{}, fmt.Errorf("write checksum file: %w", err)
	}
	st, err := os.Stat(outPath)
	if err != nil {
		return BackupInfo{}, fmt.Errorf("stat backup: %w", err)
	}
	return BackupInfo{Path: outPath, Checksum: checksum, CreatedAt: st.ModTime(), SizeBytes: st.Size()}, nil
}

// RestoreBackup replaces dbPath with backupPath after checking its checksum
// and that it is a database this build can migrate.
func RestoreBackup(backupPath, dbPath string, force bool) error {
	if strings.TrimSpace(backupPath) == "" || strings.TrimSpace(dbPath) == "" {
		return fmt.Errorf("backup path and db path are required")
	}
	if !force {
		if _, err := os.Stat(dbPath); err == nil {
			return fmt.Errorf("target db already exists; use --force to overwrite")
		}
	}
	if expected, err := os.ReadFile(backupPath + ".sha256"); err == nil {
		actual, err := fileSHA256(backupPath)
		if err != nil {
			return err
		}
		if strings.TrimSpace(string(expected)) != actual {
			return fmt.Errorf("backup checksum mismatch")
		}
	}
	if err := checkBackupSchema(backupPath); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return fmt.Errorf("create db directory: %w", err)
	}
	tmp := dbPath + ".restore"
	if err := copyFile(backupPath, tmp); err != nil {
		return err
	}
	if err := os.Rename(tmp, dbPath); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace database: %w", err)
	}
	return nil
}

func checkBackupSchema(path string) error {
	sqldb, err := db.Open(path)
	if err != nil {
		return fmt.Errorf("open backup: %w", err)
	}
	defer sqldb.Close()
	version, err := db.AppliedVersion(sqldb)
	if err != nil {
		return fmt.Errorf("inspect backup: %w", err)
	}
	if version == 0 {
		return fmt.Errorf("backup %s is not a healthguard database", path)
	}
	if version > db.CurrentVersion() {
		return fmt.Errorf("backup schema version %d is newer than supported version %d", version, db.CurrentVersion())
	}
	return nil
}

// ListBackups returns the .db files in dir, newest first.
func ListBackups(dir string) ([]BackupInfo, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read backup dir: %w", err)
	}
	out := make([]BackupInfo, 0)
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".db") {
			continue
		}
		full := filepath.Join(dir, f.Name())
		st, err := os.Stat(full)
		if err != nil {
			continue
		}
		checksum := ""
		if b, err := os.ReadFile(full + ".sha256"); err == nil {
			checksum = strings.TrimSpace(string(b))
		}
		out = append(out, BackupInfo{Path: full, Checksum: checksum, CreatedAt: st.ModTime(), SizeBytes: st.Size()})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

type KeyReport struct {
	Key       string `json:"key"`
	Present   bool   `json:"present"`
	Records   int    `json:"records,omitempty"`
	Revision  int64  `json:"revision,omitempty"`
	SizeBytes int    `json:"size_bytes,omitempty"`
	Error     string `json:"error,omitempty"`
	Fixed     bool   `json:"fixed,omitempty"`
}

type DoctorReport struct {
	Keys                []KeyReport `json:"keys"`
	CorruptKeys         int         `json:"corrupt_keys"`
	DuplicateTimestamps int         `json:"duplicate_timestamps"`
	DuplicateSessionIDs int         `json:"duplicate_session_ids"`
	FixedKeys           int         `json:"fixed_keys,omitempty"`
}

// Healthy reports whether nothing needs attention.
func (r DoctorReport) Healthy() bool {
	return r.CorruptKeys-r.FixedKeys == 0 && r.DuplicateTimestamps == 0 && r.DuplicateSessionIDs == 0
}

// Logs that fix may reset to empty. The profile and user list are never
// guessed.
var resettableKeys = map[string]bool{
	store.KeyFoodHistory:  true,
	store.KeyChatSessions: true,
}

// RunDoctor reads every key through the normalizer and reports what cannot
// be read. With fix, unreadable history and chat logs are reset to empty.
func RunDoctor(s store.Store, fix bool, log *logrus.Logger) (DoctorReport, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	report := DoctorReport{Keys: make([]KeyReport, 0, len(store.Keys()))}
	statter, _ := s.(store.Statter)
	for _, key := range store.Keys() {
		raw, ok, err := s.Get(key)
		if err != nil {
			return report, fmt.Errorf("doctor read %s: %w", key, err)
		}
		kr := KeyReport{Key: key, Present: ok}
		if statter != nil && ok {
			if info, found, err := statter.Stat(key); err == nil && found {
				kr.Revision, kr.SizeBytes = info.Revision, info.SizeBytes
			}
		}
		if ok {
			n, err := inspectKey(key, raw, &report)
			kr.Records = n
			if err != nil {
				kr.Error = err.Error()
				report.CorruptKeys++
				if fix && resettableKeys[key] {
					if err := s.Set(key, []byte("[]")); err != nil {
						return report, fmt.Errorf("doctor reset %s: %w", key, err)
					}
					log.WithField("key", key).Warn("Reset unreadable log to empty")
					kr.Fixed = true
					report.FixedKeys++
				}
			}
		}
		report.Keys = append(report.Keys, kr)
	}
	return report, nil
}

func inspectKey(key string, raw []byte, report *DoctorReport) (int, error) {
	switch key {
	case store.KeyProfile:
		if isAbsent(raw) {
			return 0, nil
		}
		_, err := NormalizeProfile(raw)
		return 1, err
	case store.KeyRegisteredUsers:
		users, err := NormalizeProfiles(raw)
		return len(users), err
	case store.KeyFoodHistory:
		records, err := NormalizeFoodHistory(raw)
		if err != nil {
			return 0, err
		}
		seen := make(map[int64]int, len(records))
		for _, r := range records {
			seen[r.Timestamp]++
		}
		dups := 0
		for _, n := range seen {
			dups += n - 1
		}
		report.DuplicateTimestamps += dups
		return len(records), nil
	case store.KeyChatSessions:
		sessions, err := NormalizeChatSessions(raw)
		if err != nil {
			return 0, err
		}
		seen := make(map[string]int, len(sessions))
		for _, s := range sessions {
			seen[s.ID]++
		}
		dups := 0
		for _, n := range seen {
			dups += n - 1
		}
		report.DuplicateSessionIDs += dups
		return len(sessions), nil
	case store.KeyAuthenticated:
		if v := string(raw); v != authenticatedValue {
			return 0, corrupt(key, fmt.Errorf("unexpected flag value %q", v))
		}
		return 1, nil
	}
	return 0, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open source file: %w", err)
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create destination file: %w", err)
	}
	defer out.Close()
	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("copy file: %w", err)
	}
	if err := out.Sync(); err != nil {
		return fmt.Errorf("sync destination file: %w", err)
	}
	return nil
}

func fileSHA256(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open file for checksum: %w", err)
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash file: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
