package healthguard

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/izzsandya6-dev/gemini-ai-health/internal/app"
	"github.com/izzsandya6-dev/gemini-ai-health/internal/config"
	"github.com/izzsandya6-dev/gemini-ai-health/internal/db"
	"github.com/izzsandya6-dev/gemini-ai-health/internal/model"
	"github.com/izzsandya6-dev/gemini-ai-health/internal/service"
	"github.com/izzsandya6-dev/gemini-ai-health/internal/store"
)

// services is everything a command needs, opened against the configured
// backend. sqldb is nil unless the backend is SQLite.
type services struct {
	cfg    *config.Config
	log    *logrus.Logger
	store  store.Store
	sqldb  *sql.DB
	dbPath string

	profiles *service.ProfileRepository
	history  *service.HistoryRepository
	chat     *service.ChatRepository
	auth     *service.AuthService
}

func (s *services) flows() *service.Flows {
	return &service.Flows{Profiles: s.profiles, History: s.history, Chat: s.chat, Log: s.log}
}

func (s *services) window() service.CaloriesWindow {
	w, err := service.ParseCaloriesWindow(s.cfg.Metrics.CaloriesWindow)
	if err != nil {
		return service.WindowAll
	}
	return w
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if dbPath != "" {
		cfg.Store.Backend = config.BackendSQLite
		cfg.Store.Path = dbPath
	}
	return cfg, nil
}

func resolveDBPath(cfg *config.Config) (string, error) {
	if cfg.Store.Path != "" {
		return cfg.Store.Path, nil
	}
	return app.DefaultDBPath()
}

func withServices(run func(*services) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log, err := app.NewLogger(cfg.Log)
	if err != nil {
		return err
	}
	svc := &services{cfg: cfg, log: log}

	switch cfg.Store.Backend {
	case config.BackendRedis:
		client, err := store.OpenRedis(store.RedisOptions{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err != nil {
			return err
		}
		defer client.Close()
		svc.store = store.NewRedisStore(client, cfg.Redis.Prefix)
	case config.BackendMemory:
		svc.store = store.NewMemoryStore()
	default:
		path, err := resolveDBPath(cfg)
		if err != nil {
			return err
		}
		if err := app.EnsureDBDir(path); err != nil {
			return err
		}
		sqldb, err := db.Open(path)
		if err != nil {
			return err
		}
		defer sqldb.Close()
		if err := db.ApplyMigrations(sqldb); err != nil {
			return err
		}
		svc.sqldb, svc.dbPath = sqldb, path
		svc.store = store.NewSQLiteStore(sqldb)
	}

	svc.profiles = service.NewProfileRepository(svc.store, nil, log)
	svc.history = service.NewHistoryRepository(svc.store, log)
	svc.chat = service.NewChatRepository(svc.store, log)
	svc.auth = service.NewAuthService(svc.store, svc.profiles, nil, log)
	return run(svc)
}

// requireProfile turns the silent no-op of an update without a profile into
// a message for the user.
func requireProfile(p *model.Profile) error {
	if p == nil {
		return fmt.Errorf("no profile stored; run `healthguard profile create` or `healthguard auth login` first")
	}
	return nil
}

func printJSON(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	fmt.Fprintln(w, string(b))
	return nil
}

func parseInt64Arg(name, value string) (int64, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", name, value)
	}
	if v <= 0 {
		return 0, fmt.Errorf("%s must be > 0", name)
	}
	return v, nil
}

func parseDateTimeOrNow(date, timeStr string) (time.Time, error) {
	date = strings.TrimSpace(date)
	timeStr = strings.TrimSpace(timeStr)
	if date == "" && timeStr == "" {
		return time.Now(), nil
	}
	if date == "" {
		return time.Time{}, fmt.Errorf("--date is required when --time is set")
	}
	if timeStr == "" {
		t, err := time.ParseInLocation("2006-01-02", date, time.Local)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid --date %q (expected YYYY-MM-DD)", date)
		}
		return t, nil
	}
	t, err := time.ParseInLocation("2006-01-02 15:04", date+" "+timeStr, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --date/--time (expected YYYY-MM-DD and HH:MM)")
	}
	return t, nil
}

func formatMillis(ms int64) string {
	if ms == 0 {
		return "-"
	}
	return time.UnixMilli(ms).Local().Format("2006-01-02 15:04")
}

func optionalFloat(v float64) *float64 {
	if v <= 0 {
		return nil
	}
	return &v
}
