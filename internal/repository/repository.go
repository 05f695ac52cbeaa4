package repository

import (
	"context"
	"database/sql"

	"gorm.io/gorm"
)

// Repository aggregate of every repository
type Repository struct {
	CommuteLog CommuteLogRepository
	HourlyLog  HourlyCommuteLogRepository
	EditLog    CommuteEditLogRepository
	User       UserRepository
	Backup     BackupRepository
	Locker     LockRepository

	db *gorm.DB
}

// NewRepository builds the aggregate on one connection pool
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		CommuteLog: NewCommuteLogRepo(db),
		HourlyLog:  NewHourlyCommuteLogRepo(db),
		EditLog:    NewCommuteEditLogRepo(db),
		User:       NewUserRepo(db),
		Backup:     NewBackupRepo(db),
		Locker:     NewLockRepo(db),
		db:         db,
	}
}

// WithTx returns an aggregate whose repositories all run on tx
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return NewRepository(tx)
}

// Transaction runs fn inside one database transaction.
// fn receives the transactional aggregate; returning an error rolls back.
// Without an underlying connection (unit tests with mock repositories) fn runs on r directly.
func (r *Repository) Transaction(ctx context.Context, fn func(txRepo *Repository) error, opts ...*sql.TxOptions) error {
	if r.db == nil {
		return fn(r)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(r.WithTx(tx))
	}, opts...)
}

// ── advisory locks ──

// LockRepository transaction-scoped advisory locks
type LockRepository interface {
	// LockKey blocks until the lock for key is held; released at commit/rollback.
	// Only meaningful inside Transaction.
	LockKey(ctx context.Context, key string) error
}

type lockRepo struct {
	db *gorm.DB
}

// NewLockRepo creates a LockRepository
func NewLockRepo(db *gorm.DB) LockRepository {
	return &lockRepo{db: db}
}

func (r *lockRepo) LockKey(ctx context.Context, key string) error {
	return r.db.WithContext(ctx).Exec("SELECT pg_advisory_xact_lock(hashtext(?))", key).Error
}
