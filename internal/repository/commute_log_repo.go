package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"hr-ledger/internal/model"
)

// CommuteLogFilter optional filters of ledger queries
type CommuteLogFilter struct {
	PersonnelCode string
	Department    string
}

// CommuteLogRepository commute_logs data access
type CommuteLogRepository interface {
	Create(ctx context.Context, log *model.CommuteLog) error
	GetByID(ctx context.Context, id int64) (*model.CommuteLog, error)
	// GetByIDForUpdate row-locks the record; call inside Transaction
	GetByIDForUpdate(ctx context.Context, id int64) (*model.CommuteLog, error)
	// FindOpenMain latest main record without exit whose entry_time is in [from, to)
	FindOpenMain(ctx context.Context, personnelCode string, from, to time.Time) (*model.CommuteLog, error)
	// CloseOpen sets exit_time only while it is still null; returns rows affected
	CloseOpen(ctx context.Context, id int64, exitTime time.Time) (int64, error)
	UpdateTimes(ctx context.Context, id int64, entryTime time.Time, exitTime *time.Time) error
	Delete(ctx context.Context, id int64) (int64, error)
	// ListBetween records with entry_time in [from, to), joined with personnel, newest first
	ListBetween(ctx context.Context, from, to time.Time, filter CommuteLogFilter) ([]model.CommuteLogView, error)
}

type commuteLogRepo struct {
	db *gorm.DB
}

// NewCommuteLogRepo creates a CommuteLogRepository
func NewCommuteLogRepo(db *gorm.DB) CommuteLogRepository {
	return &commuteLogRepo{db: db}
}

func (r *commuteLogRepo) Create(ctx context.Context, log *model.CommuteLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

func (r *commuteLogRepo) GetByID(ctx context.Context, id int64) (*model.CommuteLog, error) {
	var log model.CommuteLog
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&log).Error
	if err != nil {
		return nil, err
	}
	return &log, nil
}

func (r *commuteLogRepo) GetByIDForUpdate(ctx context.Context, id int64) (*model.CommuteLog, error) {
	var log model.CommuteLog
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&log).Error
	if err != nil {
		return nil, err
	}
	return &log, nil
}

func (r *commuteLogRepo) FindOpenMain(ctx context.Context, personnelCode string, from, to time.Time) (*model.CommuteLog, error) {
	var log model.CommuteLog
	err := r.db.WithContext(ctx).
		Where("personnel_code = ? AND log_type = ? AND exit_time IS NULL", personnelCode, model.LogTypeMain).
		Where("entry_time >= ? AND entry_time < ?", from, to).
		Order("entry_time DESC").
		First(&log).Error
	if err != nil {
		return nil, err
	}
	return &log, nil
}

func (r *commuteLogRepo) CloseOpen(ctx context.Context, id int64, exitTime time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&model.CommuteLog{}).
		Where("id = ? AND exit_time IS NULL", id).
		Updates(map[string]interface{}{
			"exit_time":  exitTime,
			"updated_at": gorm.Expr("NOW()"),
		})
	return result.RowsAffected, result.Error
}

func (r *commuteLogRepo) UpdateTimes(ctx context.Context, id int64, entryTime time.Time, exitTime *time.Time) error {
	return r.db.WithContext(ctx).
		Model(&model.CommuteLog{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"entry_time": entryTime,
			"exit_time":  exitTime,
			"updated_at": gorm.Expr("NOW()"),
		}).Error
}

func (r *commuteLogRepo) Delete(ctx context.Context, id int64) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&model.CommuteLog{})
	return result.RowsAffected, result.Error
}

func (r *commuteLogRepo) ListBetween(ctx context.Context, from, to time.Time, filter CommuteLogFilter) ([]model.CommuteLogView, error) {
	var logs []model.CommuteLogView

	db := r.db.WithContext(ctx).
		Table("commute_logs").
		Select("commute_logs.*, personnel.first_name, personnel.last_name, personnel.department").
		Joins("LEFT JOIN personnel ON personnel.personnel_code = commute_logs.personnel_code").
		Where("commute_logs.entry_time >= ? AND commute_logs.entry_time < ?", from, to)

	if filter.PersonnelCode != "" {
		db = db.Where("commute_logs.personnel_code = ?", filter.PersonnelCode)
	}
	if filter.Department != "" {
		db = db.Where("personnel.department = ?", filter.Department)
	}

	err := db.Order("commute_logs.entry_time DESC").
		Scan(&logs).Error
	return logs, err
}
