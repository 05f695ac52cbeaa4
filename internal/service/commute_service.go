package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"hr-ledger/internal/dto"
	"hr-ledger/internal/model"
	"hr-ledger/internal/repository"
	"hr-ledger/pkg/clock"
	pkgerrors "hr-ledger/pkg/errors"
)

// ── commute ledger errors ──

var (
	ErrOpenEntryExists    = pkgerrors.Conflict("personnel already has an open entry for this day")
	ErrOpenEntryNotFound  = pkgerrors.NotFound("no open entry found for this personnel")
	ErrCommuteLogNotFound = pkgerrors.NotFound("commute record not found")

	ErrPersonnelCodeRequired = pkgerrors.Validation("personnel_code is required")
	ErrGuardNameRequired     = pkgerrors.Validation("guard_name is required")
	ErrExitBeforeEntry       = pkgerrors.Validation("exit_time must not be before entry_time")
	ErrDateRangeInvalid      = pkgerrors.Validation("end_date must not be before start_date")
	ErrDateRequired          = pkgerrors.Validation("date or start_date and end_date are required")
)

// CommuteService main and short-leave commute ledger
type CommuteService interface {
	LogEntry(ctx context.Context, req *dto.CommuteActionRequest) (*dto.CommuteLogResponse, error)
	LogExit(ctx context.Context, req *dto.CommuteActionRequest) (*dto.CommuteLogResponse, error)
	LogShortLeave(ctx context.Context, req *dto.ShortLeaveRequest) (*dto.CommuteLogResponse, error)
	EditRecord(ctx context.Context, id int64, req *dto.UpdateCommuteRequest, editorName string) (*dto.CommuteLogResponse, error)
	DeleteRecord(ctx context.Context, id int64) error
	GetRecord(ctx context.Context, id int64) (*dto.CommuteLogResponse, error)
	QueryByDay(ctx context.Context, date string, filter repository.CommuteLogFilter) ([]dto.CommuteLogResponse, error)
	QueryRange(ctx context.Context, startDate, endDate string, filter repository.CommuteLogFilter) ([]dto.CommuteLogResponse, error)
}

type commuteService struct {
	repo   *repository.Repository
	audit  AuditService
	clock  *clock.Civil
	logger *zap.Logger
}

// NewCommuteService creates a CommuteService
func NewCommuteService(repo *repository.Repository, audit AuditService, clk *clock.Civil, logger *zap.Logger) CommuteService {
	return &commuteService{repo: repo, audit: audit, clock: clk, logger: logger}
}

func commuteLockKey(code string) string { return "commute:" + code }

// ────────────────────── LogEntry ──────────────────────

func (s *commuteService) LogEntry(ctx context.Context, req *dto.CommuteActionRequest) (*dto.CommuteLogResponse, error) {
	code := strings.TrimSpace(req.PersonnelCode)
	guard := strings.TrimSpace(req.GuardName)
	if code == "" {
		return nil, ErrPersonnelCodeRequired
	}
	if guard == "" {
		return nil, ErrGuardNameRequired
	}
	at, err := s.effectiveInstant(req.Timestamp)
	if err != nil {
		return nil, err
	}

	log := &model.CommuteLog{
		PersonnelCode: code,
		GuardName:     guard,
		EntryTime:     at,
		LogType:       model.LogTypeMain,
	}
	start, end := s.clock.DayBounds(at)

	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if err := tx.Locker.LockKey(ctx, commuteLockKey(code)); err != nil {
			return pkgerrors.Storage("lock personnel failed", err)
		}

		_, err := tx.CommuteLog.FindOpenMain(ctx, code, start, end)
		if err == nil {
			return ErrOpenEntryExists
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Storage("look up open entry failed", err)
		}

		if err := tx.CommuteLog.Create(ctx, log); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrOpenEntryExists
			}
			return pkgerrors.Storage("create entry failed", err)
		}
		return nil
	})
	if err != nil {
		s.logFailure("log entry failed", code, err)
		return nil, err
	}

	s.logger.Info("entry logged",
		zap.String("personnel_code", code),
		zap.Int64("id", log.ID),
		zap.Time("entry_time", log.EntryTime),
	)
	return s.toCommuteLogResponse(log), nil
}

// ────────────────────── LogExit ──────────────────────

func (s *commuteService) LogExit(ctx context.Context, req *dto.CommuteActionRequest) (*dto.CommuteLogResponse, error) {
	code := strings.TrimSpace(req.PersonnelCode)
	if code == "" {
		return nil, ErrPersonnelCodeRequired
	}
	at, err := s.effectiveInstant(req.Timestamp)
	if err != nil {
		return nil, err
	}

	var closed *model.CommuteLog
	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if err := tx.Locker.LockKey(ctx, commuteLockKey(code)); err != nil {
			return pkgerrors.Storage("lock personnel failed", err)
		}

		open, err := s.findOpenForExit(ctx, tx, code, at)
		if err != nil {
			return err
		}

		n, err := tx.CommuteLog.CloseOpen(ctx, open.ID, at)
		if err != nil {
			return pkgerrors.Storage("close entry failed", err)
		}
		if n == 0 {
			return ErrOpenEntryNotFound
		}

		// reload for the store-assigned updated_at
		closed, err = tx.CommuteLog.GetByID(ctx, open.ID)
		if err != nil {
			return pkgerrors.Storage("load closed entry failed", err)
		}
		return nil
	})
	if err != nil {
		s.logFailure("log exit failed", code, err)
		return nil, err
	}

	s.logger.Info("exit logged",
		zap.String("personnel_code", code),
		zap.Int64("id", closed.ID),
		zap.Time("exit_time", at),
	)
	return s.toCommuteLogResponse(closed), nil
}

// findOpenForExit open main record on at's civil day.
// A shift that crossed midnight is matched on the previous civil day
// when the current day has no open record; older records never match.
func (s *commuteService) findOpenForExit(ctx context.Context, tx *repository.Repository, code string, at time.Time) (*model.CommuteLog, error) {
	start, end := s.clock.DayBounds(at)

	open, err := tx.CommuteLog.FindOpenMain(ctx, code, start, end)
	if err == nil {
		return open, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Storage("look up open entry failed", err)
	}

	prevStart, _ := s.clock.DayBounds(start.Add(-time.Nanosecond))
	open, err = tx.CommuteLog.FindOpenMain(ctx, code, prevStart, start)
	if err == nil {
		return open, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOpenEntryNotFound
	}
	return nil, pkgerrors.Storage("look up open entry failed", err)
}

// ────────────────────── LogShortLeave ──────────────────────

func (s *commuteService) LogShortLeave(ctx context.Context, req *dto.ShortLeaveRequest) (*dto.CommuteLogResponse, error) {
	code := strings.TrimSpace(req.PersonnelCode)
	guard := strings.TrimSpace(req.GuardName)
	if code == "" {
		return nil, ErrPersonnelCodeRequired
	}
	if guard == "" {
		return nil, ErrGuardNameRequired
	}
	exitTime, err := s.parseInstant("exit_time", req.ExitTime)
	if err != nil {
		return nil, err
	}
	returnTime, err := s.parseInstant("return_time", req.ReturnTime)
	if err != nil {
		return nil, err
	}

	// short leaves store the return in the entry slot
	log := &model.CommuteLog{
		PersonnelCode: code,
		GuardName:     guard,
		EntryTime:     returnTime,
		ExitTime:      &exitTime,
		LogType:       model.LogTypeShortLeave,
	}
	if err := s.repo.CommuteLog.Create(ctx, log); err != nil {
		s.logger.Error("create short leave failed", zap.String("personnel_code", code), zap.Error(err))
		return nil, pkgerrors.Storage("create short leave failed", err)
	}

	return s.toCommuteLogResponse(log), nil
}

// ────────────────────── EditRecord ──────────────────────

func (s *commuteService) EditRecord(ctx context.Context, id int64, req *dto.UpdateCommuteRequest, editorName string) (*dto.CommuteLogResponse, error) {
	entryTime, err := s.parseInstant("entry_time", req.EntryTime)
	if err != nil {
		return nil, err
	}
	var exitTime *time.Time
	if req.ExitTime != nil && strings.TrimSpace(*req.ExitTime) != "" {
		t, err := s.parseInstant("exit_time", *req.ExitTime)
		if err != nil {
			return nil, err
		}
		exitTime = &t
	}

	var updated *model.CommuteLog
	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		before, err := tx.CommuteLog.GetByIDForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCommuteLogNotFound
			}
			return pkgerrors.Storage("load commute record failed", err)
		}

		after := *before
		after.EntryTime = entryTime
		after.ExitTime = exitTime
		if after.LogType == model.LogTypeMain && exitTime != nil && exitTime.Before(entryTime) {
			return ErrExitBeforeEntry
		}

		changes := s.audit.Diff(before, &after)
		if len(changes) == 0 {
			updated = before
			return nil
		}
		if err := s.audit.Record(ctx, tx, before, editorName, changes); err != nil {
			return err
		}

		if err := tx.CommuteLog.UpdateTimes(ctx, id, entryTime, exitTime); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrOpenEntryExists
			}
			return pkgerrors.Storage("update commute record failed", err)
		}
		updated = &after
		return nil
	})
	if err != nil {
		s.logFailure("edit commute record failed", "", err, zap.Int64("id", id))
		return nil, err
	}

	s.logger.Info("commute record edited", zap.Int64("id", id), zap.String("editor", editorName))
	return s.toCommuteLogResponse(updated), nil
}

// ────────────────────── DeleteRecord ──────────────────────

func (s *commuteService) DeleteRecord(ctx context.Context, id int64) error {
	n, err := s.repo.CommuteLog.Delete(ctx, id)
	if err != nil {
		s.logger.Error("delete commute record failed", zap.Int64("id", id), zap.Error(err))
		return pkgerrors.Storage("delete commute record failed", err)
	}
	if n == 0 {
		return ErrCommuteLogNotFound
	}
	return nil
}

// ────────────────────── GetRecord ──────────────────────

func (s *commuteService) GetRecord(ctx context.Context, id int64) (*dto.CommuteLogResponse, error) {
	log, err := s.repo.CommuteLog.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommuteLogNotFound
		}
		s.logger.Error("load commute record failed", zap.Int64("id", id), zap.Error(err))
		return nil, pkgerrors.Storage("load commute record failed", err)
	}
	return s.toCommuteLogResponse(log), nil
}

// ────────────────────── Query ──────────────────────

func (s *commuteService) QueryByDay(ctx context.Context, date string, filter repository.CommuteLogFilter) ([]dto.CommuteLogResponse, error) {
	day, err := s.clock.ParseDate(date)
	if err != nil {
		return nil, pkgerrors.Validation(err.Error())
	}
	start, end := s.clock.DayBounds(day)
	return s.listBetween(ctx, start, end, filter)
}

func (s *commuteService) QueryRange(ctx context.Context, startDate, endDate string, filter repository.CommuteLogFilter) ([]dto.CommuteLogResponse, error) {
	first, err := s.clock.ParseDate(startDate)
	if err != nil {
		return nil, pkgerrors.Validation(err.Error())
	}
	last, err := s.clock.ParseDate(endDate)
	if err != nil {
		return nil, pkgerrors.Validation(err.Error())
	}
	if last.Before(first) {
		return nil, ErrDateRangeInvalid
	}
	start, end := s.clock.RangeBounds(first, last)
	return s.listBetween(ctx, start, end, filter)
}

func (s *commuteService) listBetween(ctx context.Context, start, end time.Time, filter repository.CommuteLogFilter) ([]dto.CommuteLogResponse, error) {
	filter.PersonnelCode = strings.TrimSpace(filter.PersonnelCode)
	filter.Department = strings.TrimSpace(filter.Department)

	views, err := s.repo.CommuteLog.ListBetween(ctx, start, end, filter)
	if err != nil {
		s.logger.Error("query commute records failed", zap.Time("from", start), zap.Time("to", end), zap.Error(err))
		return nil, pkgerrors.Storage("query commute records failed", err)
	}

	result := make([]dto.CommuteLogResponse, 0, len(views))
	for i := range views {
		resp := s.toCommuteLogResponse(&views[i].CommuteLog)
		resp.FirstName = views[i].FirstName
		resp.LastName = views[i].LastName
		resp.Department = views[i].Department
		result = append(result, *resp)
	}
	return result, nil
}

// ── helpers ──

func (s *commuteService) effectiveInstant(ts *string) (time.Time, error) {
	if ts == nil || strings.TrimSpace(*ts) == "" {
		return s.clock.Now(), nil
	}
	return s.parseInstant("timestamp", *ts)
}

func (s *commuteService) parseInstant(field, value string) (time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return time.Time{}, pkgerrors.Validationf("%s is required", field)
	}
	t, err := s.clock.ParseInstant(value)
	if err != nil {
		return time.Time{}, pkgerrors.Validationf("%s: %v", field, err)
	}
	return t, nil
}

// logFailure logs storage failures; expected ledger outcomes stay quiet
func (s *commuteService) logFailure(msg, code string, err error, fields ...zap.Field) {
	if pkgerrors.KindOf(err) != pkgerrors.KindStorage {
		return
	}
	if code != "" {
		fields = append(fields, zap.String("personnel_code", code))
	}
	s.logger.Error(msg, append(fields, zap.Error(err))...)
}

func (s *commuteService) toCommuteLogResponse(l *model.CommuteLog) *dto.CommuteLogResponse {
	resp := &dto.CommuteLogResponse{
		ID:            l.ID,
		PersonnelCode: l.PersonnelCode,
		GuardName:     l.GuardName,
		EntryTime:     s.clock.Format(l.EntryTime),
		LogType:       l.LogType,
		CreatedAt:     s.clock.Format(l.CreatedAt),
		UpdatedAt:     s.clock.Format(l.UpdatedAt),
	}
	if l.ExitTime != nil {
		v := s.clock.Format(*l.ExitTime)
		resp.ExitTime = &v
	}
	if l.LogType == model.LogTypeShortLeave {
		v := resp.EntryTime
		resp.ReturnTime = &v
	}
	return resp
}
