package repository

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// BackupRepository whole-table access for snapshot and restore.
// Table and column names come from the backup table registry, never from input.
type BackupRepository interface {
	ReadTable(ctx context.Context, table string, columns []string) ([]map[string]interface{}, error)
	// TruncateTables empties all tables in one statement, cascading and restarting identities
	TruncateTables(ctx context.Context, tables []string) error
	InsertRows(ctx context.Context, table string, rows []map[string]interface{}, batchSize int) error
	// ResetIdentity moves the id sequence past the largest restored id
	ResetIdentity(ctx context.Context, table string) error
}

type backupRepo struct {
	db *gorm.DB
}

// NewBackupRepo creates a BackupRepository
func NewBackupRepo(db *gorm.DB) BackupRepository {
	return &backupRepo{db: db}
}

func (r *backupRepo) ReadTable(ctx context.Context, table string, columns []string) ([]map[string]interface{}, error) {
	rows := make([]map[string]interface{}, 0)
	err := r.db.WithContext(ctx).
		Table(table).
		Select(columns).
		Order("id ASC").
		Find(&rows).Error
	return rows, err
}

func (r *backupRepo) TruncateTables(ctx context.Context, tables []string) error {
	if len(tables) == 0 {
		return nil
	}
	quoted := make([]string, len(tables))
	for i, t := range tables {
		quoted[i] = quoteIdent(t)
	}
	stmt := fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", strings.Join(quoted, ", "))
	return r.db.WithContext(ctx).Exec(stmt).Error
}

func (r *backupRepo) InsertRows(ctx context.Context, table string, rows []map[string]interface{}, batchSize int) error {
	if len(rows) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Table(table).
		CreateInBatches(rows, batchSize).Error
}

func (r *backupRepo) ResetIdentity(ctx context.Context, table string) error {
	stmt := fmt.Sprintf(
		"SELECT setval(pg_get_serial_sequence(?, 'id'), COALESCE((SELECT MAX(id) FROM %s), 0) + 1, false)",
		quoteIdent(table),
	)
	return r.db.WithContext(ctx).Exec(stmt, table).Error
}

// quoteIdent quotes a PostgreSQL identifier
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
