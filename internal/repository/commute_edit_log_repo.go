package repository

import (
	"context"

	"gorm.io/gorm"

	"hr-ledger/internal/model"
)

// CommuteEditLogRepository commute_edit_logs data access (append-only)
type CommuteEditLogRepository interface {
	BatchCreate(ctx context.Context, logs []model.CommuteEditLog) error
	ListByCommuteLog(ctx context.Context, commuteLogID int64) ([]model.CommuteEditLog, error)
}

type commuteEditLogRepo struct {
	db *gorm.DB
}

// NewCommuteEditLogRepo creates a CommuteEditLogRepository
func NewCommuteEditLogRepo(db *gorm.DB) CommuteEditLogRepository {
	return &commuteEditLogRepo{db: db}
}

func (r *commuteEditLogRepo) BatchCreate(ctx context.Context, logs []model.CommuteEditLog) error {
	if len(logs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&logs).Error
}

func (r *commuteEditLogRepo) ListByCommuteLog(ctx context.Context, commuteLogID int64) ([]model.CommuteEditLog, error) {
	var logs []model.CommuteEditLog
	err := r.db.WithContext(ctx).
		Where("commute_log_id = ?", commuteLogID).
		Order("edit_timestamp DESC, id DESC").
		Find(&logs).Error
	return logs, err
}
