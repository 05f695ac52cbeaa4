package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"hr-ledger/internal/dto"
	"hr-ledger/internal/model"
	"hr-ledger/internal/repository"
	"hr-ledger/pkg/clock"
	pkgerrors "hr-ledger/pkg/errors"
)

// ── hourly ledger errors ──

var (
	ErrActiveTripExists   = pkgerrors.Conflict("personnel already has an active hourly exit")
	ErrActiveTripNotFound = pkgerrors.NotFound("hourly exit not found or already returned")
	ErrHourlyLogNotFound  = pkgerrors.NotFound("hourly record not found")
	ErrFullNameRequired   = pkgerrors.Validation("full_name is required")
)

// HourlyService hourly out-and-back ledger
type HourlyService interface {
	LogOut(ctx context.Context, req *dto.HourlyOutRequest) (*dto.HourlyLogResponse, error)
	LogReturn(ctx context.Context, id int64) (*dto.HourlyLogResponse, error)
	QueryActive(ctx context.Context) ([]dto.HourlyLogResponse, error)
	QueryByDay(ctx context.Context, date string) ([]dto.HourlyLogResponse, error)
	Delete(ctx context.Context, id int64) error
}

type hourlyService struct {
	repo   *repository.Repository
	clock  *clock.Civil
	logger *zap.Logger
}

// NewHourlyService creates a HourlyService
func NewHourlyService(repo *repository.Repository, clk *clock.Civil, logger *zap.Logger) HourlyService {
	return &hourlyService{repo: repo, clock: clk, logger: logger}
}

// ────────────────────── LogOut ──────────────────────

func (s *hourlyService) LogOut(ctx context.Context, req *dto.HourlyOutRequest) (*dto.HourlyLogResponse, error) {
	code := strings.TrimSpace(req.PersonnelCode)
	switch {
	case code == "":
		return nil, ErrPersonnelCodeRequired
	case strings.TrimSpace(req.FullName) == "":
		return nil, ErrFullNameRequired
	case strings.TrimSpace(req.GuardName) == "":
		return nil, ErrGuardNameRequired
	}

	log := &model.HourlyCommuteLog{
		PersonnelCode: code,
		FullName:      strings.TrimSpace(req.FullName),
		GuardName:     strings.TrimSpace(req.GuardName),
		ExitTime:      s.clock.Now(),
		Reason:        req.Reason,
	}

	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if err := tx.Locker.LockKey(ctx, "hourly:"+code); err != nil {
			return pkgerrors.Storage("lock personnel failed", err)
		}

		_, err := tx.HourlyLog.FindActive(ctx, code)
		if err == nil {
			return ErrActiveTripExists
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Storage("look up active exit failed", err)
		}

		if err := tx.HourlyLog.Create(ctx, log); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrActiveTripExists
			}
			return pkgerrors.Storage("create hourly exit failed", err)
		}
		return nil
	})
	if err != nil {
		if pkgerrors.KindOf(err) == pkgerrors.KindStorage {
			s.logger.Error("hourly log out failed", zap.String("personnel_code", code), zap.Error(err))
		}
		return nil, err
	}

	s.logger.Info("hourly exit logged", zap.String("personnel_code", code), zap.Int64("id", log.ID))
	return s.toHourlyLogResponse(log), nil
}

// ────────────────────── LogReturn ──────────────────────

func (s *hourlyService) LogReturn(ctx context.Context, id int64) (*dto.HourlyLogResponse, error) {
	n, err := s.repo.HourlyLog.MarkReturned(ctx, id, s.clock.Now())
	if err != nil {
		s.logger.Error("mark returned failed", zap.Int64("id", id), zap.Error(err))
		return nil, pkgerrors.Storage("mark returned failed", err)
	}
	if n == 0 {
		return nil, ErrActiveTripNotFound
	}

	log, err := s.repo.HourlyLog.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrHourlyLogNotFound
		}
		return nil, pkgerrors.Storage("load hourly record failed", err)
	}
	return s.toHourlyLogResponse(log), nil
}

// ────────────────────── Query ──────────────────────

func (s *hourlyService) QueryActive(ctx context.Context) ([]dto.HourlyLogResponse, error) {
	logs, err := s.repo.HourlyLog.ListActive(ctx)
	if err != nil {
		s.logger.Error("list active exits failed", zap.Error(err))
		return nil, pkgerrors.Storage("list active exits failed", err)
	}
	return s.toHourlyLogResponses(logs), nil
}

func (s *hourlyService) QueryByDay(ctx context.Context, date string) ([]dto.HourlyLogResponse, error) {
	day, err := s.clock.ParseDate(date)
	if err != nil {
		return nil, pkgerrors.Validation(err.Error())
	}
	start, end := s.clock.DayBounds(day)

	logs, err := s.repo.HourlyLog.ListReturnedBetween(ctx, start, end)
	if err != nil {
		s.logger.Error("list hourly records failed", zap.String("date", date), zap.Error(err))
		return nil, pkgerrors.Storage("list hourly records failed", err)
	}
	return s.toHourlyLogResponses(logs), nil
}

// ────────────────────── Delete ──────────────────────

func (s *hourlyService) Delete(ctx context.Context, id int64) error {
	n, err := s.repo.HourlyLog.Delete(ctx, id)
	if err != nil {
		s.logger.Error("delete hourly record failed", zap.Int64("id", id), zap.Error(err))
		return pkgerrors.Storage("delete hourly record failed", err)
	}
	if n == 0 {
		return ErrHourlyLogNotFound
	}
	return nil
}

// ── helpers ──

func (s *hourlyService) toHourlyLogResponses(logs []model.HourlyCommuteLog) []dto.HourlyLogResponse {
	result := make([]dto.HourlyLogResponse, 0, len(logs))
	for i := range logs {
		result = append(result, *s.toHourlyLogResponse(&logs[i]))
	}
	return result
}

func (s *hourlyService) toHourlyLogResponse(l *model.HourlyCommuteLog) *dto.HourlyLogResponse {
	resp := &dto.HourlyLogResponse{
		ID:            l.ID,
		PersonnelCode: l.PersonnelCode,
		FullName:      l.FullName,
		GuardName:     l.GuardName,
		ExitTime:      s.clock.Format(l.ExitTime),
		Reason:        l.Reason,
		Active:        l.IsActive(),
	}
	if l.ReturnTime != nil {
		v := s.clock.Format(*l.ReturnTime)
		resp.ReturnTime = &v
	}
	return resp
}
