package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"hr-ledger/internal/dto"
	"hr-ledger/internal/model"
	"hr-ledger/internal/repository"
	"hr-ledger/pkg/clock"
	pkgerrors "hr-ledger/pkg/errors"
)

// FieldChange one changed field of a commute record; nil means NULL
type FieldChange struct {
	Field    string
	OldValue *string
	NewValue *string
}

// AuditService append-only edit trail of commute records
type AuditService interface {
	// Diff compares the audited fields of two versions of a record
	Diff(before, after *model.CommuteLog) []FieldChange
	// Record appends one edit log row per change through txRepo,
	// so the rows commit or roll back with the caller's update.
	Record(ctx context.Context, txRepo *repository.Repository, log *model.CommuteLog, editorName string, changes []FieldChange) error
	ListByCommuteLog(ctx context.Context, commuteLogID int64) ([]dto.CommuteEditLogResponse, error)
}

type auditService struct {
	repo   *repository.Repository
	clock  *clock.Civil
	logger *zap.Logger
}

// NewAuditService creates an AuditService
func NewAuditService(repo *repository.Repository, clk *clock.Civil, logger *zap.Logger) AuditService {
	return &auditService{repo: repo, clock: clk, logger: logger}
}

// ────────────────────── Diff ──────────────────────

func (s *auditService) Diff(before, after *model.CommuteLog) []FieldChange {
	var changes []FieldChange

	if !before.EntryTime.Equal(after.EntryTime) {
		changes = append(changes, FieldChange{
			Field:    model.FieldEntryTime,
			OldValue: s.formatPtr(&before.EntryTime),
			NewValue: s.formatPtr(&after.EntryTime),
		})
	}
	if !sameInstant(before.ExitTime, after.ExitTime) {
		changes = append(changes, FieldChange{
			Field:    model.FieldExitTime,
			OldValue: s.formatPtr(before.ExitTime),
			NewValue: s.formatPtr(after.ExitTime),
		})
	}

	return changes
}

// ────────────────────── Record ──────────────────────

func (s *auditService) Record(ctx context.Context, txRepo *repository.Repository, log *model.CommuteLog, editorName string, changes []FieldChange) error {
	if len(changes) == 0 {
		return nil
	}

	now := s.clock.Now()
	rows := make([]model.CommuteEditLog, 0, len(changes))
	for _, c := range changes {
		rows = append(rows, model.CommuteEditLog{
			CommuteLogID:  log.ID,
			PersonnelCode: log.PersonnelCode,
			EditorName:    editorName,
			EditTimestamp: now,
			FieldName:     c.Field,
			OldValue:      c.OldValue,
			NewValue:      c.NewValue,
		})
	}

	if err := txRepo.EditLog.BatchCreate(ctx, rows); err != nil {
		s.logger.Error("append edit log failed", zap.Int64("commute_log_id", log.ID), zap.Error(err))
		return pkgerrors.Storage("append edit log failed", err)
	}
	return nil
}

// ────────────────────── ListByCommuteLog ──────────────────────

func (s *auditService) ListByCommuteLog(ctx context.Context, commuteLogID int64) ([]dto.CommuteEditLogResponse, error) {
	logs, err := s.repo.EditLog.ListByCommuteLog(ctx, commuteLogID)
	if err != nil {
		s.logger.Error("list edit logs failed", zap.Int64("commute_log_id", commuteLogID), zap.Error(err))
		return nil, pkgerrors.Storage("list edit logs failed", err)
	}

	result := make([]dto.CommuteEditLogResponse, 0, len(logs))
	for _, l := range logs {
		result = append(result, dto.CommuteEditLogResponse{
			ID:            l.ID,
			CommuteLogID:  l.CommuteLogID,
			PersonnelCode: l.PersonnelCode,
			EditorName:    l.EditorName,
			EditTimestamp: s.clock.Format(l.EditTimestamp),
			FieldName:     l.FieldName,
			OldValue:      l.OldValue,
			NewValue:      l.NewValue,
		})
	}
	return result, nil
}

// ── helpers ──

func (s *auditService) formatPtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	v := s.clock.Format(*t)
	return &v
}

func sameInstant(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}
