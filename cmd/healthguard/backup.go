package healthguard

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/izzsandya6-dev/gemini-ai-health/internal/app"
	"github.com/izzsandya6-dev/gemini-ai-health/internal/config"
	"github.com/izzsandya6-dev/gemini-ai-health/internal/service"
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Manage database backups (SQLite backend)",
}

var (
	backupOut    string
	backupDir    string
	restoreFile  string
	restoreForce bool
)

var backupCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create database backup",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withServices(func(svc *services) error {
			if svc.sqldb == nil {
				return fmt.Errorf("backup needs the sqlite backend (store.backend is %s)", svc.cfg.Store.Backend)
			}
			out := backupOut
			if out == "" {
				dir := backupDir
				if dir == "" {
					dir = app.DefaultBackupDir(svc.dbPath)
				}
				out = filepath.Join(dir, fmt.Sprintf("healthguard-%s.db", time.Now().Format("20060102-150405")))
			}
			info, err := service.CreateBackup(svc.sqldb, out)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created backup: %s\n", info.Path)
			fmt.Fprintf(cmd.OutOrStdout(), "Checksum: %s\n", info.Checksum)
			return nil
		})
	},
}

var backupListCmd = &cobra.Command{
	Use:   "list",
	Short: "List backups",
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := backupDir
		if dir == "" {
			path, err := sqlitePath()
			if err != nil {
				return err
			}
			dir = app.DefaultBackupDir(path)
		}
		items, err := service.ListBackups(dir)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "FILE\tSIZE\tCREATED\tCHECKSUM")
		for _, it := range items {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d\t%s\t%s\n", it.Path, it.SizeBytes, it.CreatedAt.Format(time.RFC3339), it.Checksum)
		}
		return nil
	},
}

var backupRestoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Restore database from backup",
	RunE: func(cmd *cobra.Command, args []string) error {
		if restoreFile == "" {
			return fmt.Errorf("--file is required")
		}
		path, err := sqlitePath()
		if err != nil {
			return err
		}
		if err := service.RestoreBackup(restoreFile, path, restoreForce); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Restored backup from %s\n", restoreFile)
		return nil
	},
}

// sqlitePath resolves the database file without opening it.
func sqlitePath() (string, error) {
	cfg, err := loadConfig()
	if err != nil {
		return "", err
	}
	if cfg.Store.Backend != config.BackendSQLite {
		return "", fmt.Errorf("backups need the sqlite backend (store.backend is %s)", cfg.Store.Backend)
	}
	return resolveDBPath(cfg)
}

func init() {
	rootCmd.AddCommand(backupCmd)
	backupCmd.AddCommand(backupCreateCmd, backupListCmd, backupRestoreCmd)

	backupCreateCmd.Flags().StringVar(&backupOut, "out", "", "Backup output file path")
	backupCreateCmd.Flags().StringVar(&backupDir, "dir", "", "Backup directory (used when --out is empty)")
	backupListCmd.Flags().StringVar(&backupDir, "dir", "", "Backup directory (default: alongside DB under backups/)")
	backupRestoreCmd.Flags().StringVar(&restoreFile, "file", "", "Backup .db file path")
	backupRestoreCmd.Flags().BoolVar(&restoreForce, "force", false, "Overwrite existing DB if present")
}
