package service

import (
	"go.uber.org/zap"

	"hr-ledger/config"
	"hr-ledger/internal/repository"
	"hr-ledger/pkg/clock"
	"hr-ledger/pkg/jwt"
	"hr-ledger/pkg/redis"
)

// Service aggregate of every service
type Service struct {
	Auth    AuthService
	Commute CommuteService
	Hourly  HourlyService
	Audit   AuditService
	Backup  BackupService
	Export  ExportService
}

// NewService wires the services on one repository aggregate and clock
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	clk *clock.Civil,
	jwtMgr *jwt.Manager,
	rdb *redis.Client,
	logger *zap.Logger,
) *Service {
	audit := NewAuditService(repo, clk, logger)
	commute := NewCommuteService(repo, audit, clk, logger)
	return &Service{
		Auth:    NewAuthService(cfg, repo, jwtMgr, rdb, logger),
		Commute: commute,
		Hourly:  NewHourlyService(repo, clk, logger),
		Audit:   audit,
		Backup:  NewBackupService(repo, cfg.Backup.InsertBatchSize, logger),
		Export:  NewExportService(commute, clk, logger),
	}
}
