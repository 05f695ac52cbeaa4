package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"hr-ledger/internal/model"
)

// HourlyCommuteLogRepository hourly_commute_logs data access
type HourlyCommuteLogRepository interface {
	Create(ctx context.Context, log *model.HourlyCommuteLog) error
	GetByID(ctx context.Context, id int64) (*model.HourlyCommuteLog, error)
	// FindActive the person's trip without return_time, on any day
	FindActive(ctx context.Context, personnelCode string) (*model.HourlyCommuteLog, error)
	// MarkReturned sets return_time only while it is still null; returns rows affected
	MarkReturned(ctx context.Context, id int64, at time.Time) (int64, error)
	ListActive(ctx context.Context) ([]model.HourlyCommuteLog, error)
	// ListReturnedBetween finished trips with exit_time in [from, to)
	ListReturnedBetween(ctx context.Context, from, to time.Time) ([]model.HourlyCommuteLog, error)
	Delete(ctx context.Context, id int64) (int64, error)
}

type hourlyCommuteLogRepo struct {
	db *gorm.DB
}

// NewHourlyCommuteLogRepo creates a HourlyCommuteLogRepository
func NewHourlyCommuteLogRepo(db *gorm.DB) HourlyCommuteLogRepository {
	return &hourlyCommuteLogRepo{db: db}
}

func (r *hourlyCommuteLogRepo) Create(ctx context.Context, log *model.HourlyCommuteLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

func (r *hourlyCommuteLogRepo) GetByID(ctx context.Context, id int64) (*model.HourlyCommuteLog, error) {
	var log model.HourlyCommuteLog
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&log).Error
	if err != nil {
		return nil, err
	}
	return &log, nil
}

func (r *hourlyCommuteLogRepo) FindActive(ctx context.Context, personnelCode string) (*model.HourlyCommuteLog, error) {
	var log model.HourlyCommuteLog
	err := r.db.WithContext(ctx).
		Where("personnel_code = ? AND return_time IS NULL", personnelCode).
		First(&log).Error
	if err != nil {
		return nil, err
	}
	return &log, nil
}

func (r *hourlyCommuteLogRepo) MarkReturned(ctx context.Context, id int64, at time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&model.HourlyCommuteLog{}).
		Where("id = ? AND return_time IS NULL", id).
		Updates(map[string]interface{}{
			"return_time": at,
			"updated_at":  gorm.Expr("NOW()"),
		})
	return result.RowsAffected, result.Error
}

func (r *hourlyCommuteLogRepo) ListActive(ctx context.Context) ([]model.HourlyCommuteLog, error) {
	var logs []model.HourlyCommuteLog
	err := r.db.WithContext(ctx).
		Where("return_time IS NULL").
		Order("exit_time DESC").
		Find(&logs).Error
	return logs, err
}

func (r *hourlyCommuteLogRepo) ListReturnedBetween(ctx context.Context, from, to time.Time) ([]model.HourlyCommuteLog, error) {
	var logs []model.HourlyCommuteLog
	err := r.db.WithContext(ctx).
		Where("return_time IS NOT NULL").
		Where("exit_time >= ? AND exit_time < ?", from, to).
		Order("exit_time DESC").
		Find(&logs).Error
	return logs, err
}

func (r *hourlyCommuteLogRepo) Delete(ctx context.Context, id int64) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&model.HourlyCommuteLog{})
	return result.RowsAffected, result.Error
}
