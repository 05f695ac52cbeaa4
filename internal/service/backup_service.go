package service

import (
	"context"
	"database/sql"

	"go.uber.org/zap"

	"hr-ledger/internal/backup"
	"hr-ledger/internal/dto"
	"hr-ledger/internal/repository"
	pkgerrors "hr-ledger/pkg/errors"
)

var ErrSnapshotRequired = pkgerrors.Validation("backup body is required")

// BackupService whole-dataset snapshot and restore
type BackupService interface {
	// Export reads every snapshot table inside one consistent read-only transaction
	Export(ctx context.Context) (*backup.Snapshot, error)
	// Restore replaces the dataset with snap atomically
	Restore(ctx context.Context, snap *backup.Snapshot) (*dto.RestoreResponse, error)
	// RestoreJSON validates raw before touching the store, then restores
	RestoreJSON(ctx context.Context, raw []byte) (*dto.RestoreResponse, error)
}

type backupService struct {
	repo      *repository.Repository
	batchSize int
	logger    *zap.Logger
}

// NewBackupService creates a BackupService
func NewBackupService(repo *repository.Repository, batchSize int, logger *zap.Logger) BackupService {
	if batchSize <= 0 {
		batchSize = 500
	}
	return &backupService{repo: repo, batchSize: batchSize, logger: logger}
}

// ────────────────────── Export ──────────────────────

func (s *backupService) Export(ctx context.Context) (*backup.Snapshot, error) {
	snap := backup.NewSnapshot()

	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		for _, t := range backup.Tables() {
			rows, err := tx.Backup.ReadTable(ctx, t.Name, t.ColumnNames())
			if err != nil {
				return pkgerrors.Storage("read table "+t.Name+" failed", err)
			}
			out := make([]backup.Row, 0, len(rows))
			for _, r := range rows {
				out = append(out, backup.NormalizeRow(t, r))
			}
			snap.Set(t.Name, out)
		}
		return nil
	}, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		s.logger.Error("export snapshot failed", zap.Error(err))
		return nil, err
	}

	s.logger.Info("snapshot exported", zap.Int("rows", snap.RowCount()))
	return snap, nil
}

// ────────────────────── Restore ──────────────────────

func (s *backupService) RestoreJSON(ctx context.Context, raw []byte) (*dto.RestoreResponse, error) {
	if len(raw) == 0 {
		return nil, ErrSnapshotRequired
	}
	snap, err := backup.ParseSnapshot(raw)
	if err != nil {
		return nil, err
	}
	return s.Restore(ctx, snap)
}

func (s *backupService) Restore(ctx context.Context, snap *backup.Snapshot) (*dto.RestoreResponse, error) {
	if snap == nil {
		return nil, ErrSnapshotRequired
	}
	snap, err := backup.Validate(snap)
	if err != nil {
		return nil, err
	}
	tables := backup.Tables()

	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		// TRUNCATE takes ACCESS EXCLUSIVE locks held until commit
		if err := tx.Backup.TruncateTables(ctx, backup.TableNames()); err != nil {
			return err
		}
		for _, t := range tables {
			rows := snap.Rows(t.Name)
			if len(rows) == 0 {
				continue
			}
			if err := tx.Backup.InsertRows(ctx, t.Name, rows, s.batchSize); err != nil {
				return pkgerrors.Storage("insert into "+t.Name+" failed", err)
			}
		}
		for _, t := range tables {
			if err := tx.Backup.ResetIdentity(ctx, t.Name); err != nil {
				return pkgerrors.Storage("reset sequence of "+t.Name+" failed", err)
			}
		}
		return nil
	})
	if err != nil {
		s.logger.Error("restore failed, rolled back", zap.Error(err))
		return nil, pkgerrors.Storage("restore failed, no changes were applied", err)
	}

	resp := &dto.RestoreResponse{Tables: len(tables), Rows: snap.RowCount()}
	s.logger.Info("snapshot restored", zap.Int("tables", resp.Tables), zap.Int("rows", resp.Rows))
	return resp, nil
}
