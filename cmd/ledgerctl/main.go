package main

import (
	"fmt"
	"os"
	_ "time/tzdata"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"hr-ledger/config"
	"hr-ledger/internal/repository"
	"hr-ledger/internal/service"
	"hr-ledger/pkg/clock"
	"hr-ledger/pkg/database"
	"hr-ledger/pkg/jwt"
	applogger "hr-ledger/pkg/logger"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var configPath string

var rootCmd = &cobra.Command{
	Use:           "ledgerctl",
	Short:         "Administration tool for the commute ledger",
	SilenceUsage:  true,
	SilenceErrors: false,
}

// app the dependencies one command needs. The caller must defer Close.
type app struct {
	cfg    *config.Config
	logger *zap.Logger
	db     *gorm.DB
	svc    *service.Service
}

// newApp loads the config and connects to the database.
// Migrations are not applied here; see `ledgerctl migrate`.
func newApp() (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	loc, err := cfg.App.Location()
	if err != nil {
		return nil, fmt.Errorf("load timezone: %w", err)
	}

	logger, err := applogger.NewLogger(&cfg.Log, loc)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	repo := repository.NewRepository(db)
	svc := service.NewService(cfg, repo, clock.New(loc), jwt.NewManager(&cfg.Auth), nil, logger)

	return &app{cfg: cfg, logger: logger, db: db, svc: svc}, nil
}

func (a *app) Close() {
	if sqlDB, err := a.db.DB(); err == nil {
		sqlDB.Close()
	}
	a.logger.Sync()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default ./config/config.yaml)")

	rootCmd.AddCommand(migrateCmd)
	migrateCmd.AddCommand(migrateUpCmd)
	migrateCmd.AddCommand(migrateDownCmd)
	migrateDownCmd.Flags().IntP("steps", "n", 1, "Number of migrations to revert")

	rootCmd.AddCommand(backupCmd)
	backupCmd.AddCommand(backupExportCmd)
	backupExportCmd.Flags().Bool("encrypt", false, "Encrypt the archive to archive.age_recipient")
	backupExportCmd.Flags().StringP("output", "o", "", "Write to this local file instead of the archive store")
	backupCmd.AddCommand(backupRestoreCmd)
	backupRestoreCmd.Flags().StringP("file", "f", "", "Restore from this local file instead of the archive store")
	backupRestoreCmd.Flags().Bool("yes", false, "Skip the confirmation prompt")
	backupCmd.AddCommand(backupListCmd)

	rootCmd.AddCommand(userCmd)
	userCmd.AddCommand(userCreateCmd)
	userCreateCmd.Flags().StringP("username", "u", "", "Login name")
	userCreateCmd.Flags().String("full-name", "", "Display name, recorded as editor in audit rows")
	userCreateCmd.Flags().StringP("role", "r", "guard", "admin, guard or viewer")
	userCreateCmd.Flags().String("password", "", "Password (prompted when omitted)")
	_ = userCreateCmd.MarkFlagRequired("username")
	_ = userCreateCmd.MarkFlagRequired("full-name")
}
