package app

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	appDirName    = "healthguard"
	dbFileName    = "healthguard.db"
	backupDirName = "backups"
)

func DefaultDBPath() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(base, appDirName, dbFileName), nil
}

// DefaultBackupDir keeps backups next to the database they were taken from.
func DefaultBackupDir(dbPath string) string {
	return filepath.Join(filepath.Dir(dbPath), backupDirName)
}

func EnsureDBDir(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create db directory: %w", err)
	}
	return nil
}
