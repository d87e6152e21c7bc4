package service_test

import (
	"database/sql"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/izzsandya6-dev/gemini-ai-health/internal/db"
	"github.com/izzsandya6-dev/gemini-ai-health/internal/model"
	"github.com/izzsandya6-dev/gemini-ai-health/internal/service"
	"github.com/izzsandya6-dev/gemini-ai-health/internal/store"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "healthguard.db")
	sqldb, err := db.Open(path)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.ApplyMigrations(sqldb); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	t.Cleanup(func() { _ = sqldb.Close() })
	return sqldb
}

func newTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()
	return store.NewSQLiteStore(newTestDB(t))
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// fixedClock returns successive instants one second apart, starting at start.
func fixedClock(start time.Time) func() time.Time {
	next := start
	return func() time.Time {
		t := next
		next = next.Add(time.Second)
		return t
	}
}

func seedProfile(t *testing.T, s store.Store) *service.ProfileRepository {
	t.Helper()
	repo := service.NewProfileRepository(s, nil, quietLogger())
	p := service.DefaultProfile()
	p.Name = "Sari"
	p.Email = "sari@example.com"
	p.Weight = 70
	p.Height = 175
	p.Age = 30
	p.Gender = model.GenderMale
	if err := repo.Replace(*p, service.AuthUnchanged); err != nil {
		t.Fatalf("seed profile: %v", err)
	}
	return repo
}

func intPtr(v int) *int {
	return &v
}
