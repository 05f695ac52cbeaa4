package model

import "time"

// Edited commute log fields
const (
	FieldEntryTime = "entry_time"
	FieldExitTime  = "exit_time"
)

// CommuteEditLog one changed field of one edit, table commute_edit_logs (append-only)
type CommuteEditLog struct {
	ID            int64     `gorm:"primaryKey"                 json:"id"`
	CommuteLogID  int64     `gorm:"not null;index"             json:"commute_log_id"`
	PersonnelCode string    `gorm:"type:varchar(32);not null"  json:"personnel_code"`
	EditorName    string    `gorm:"type:varchar(100);not null" json:"editor_name"`
	EditTimestamp time.Time `gorm:"type:timestamptz;not null"  json:"edit_timestamp"`
	FieldName     string    `gorm:"type:varchar(50);not null"  json:"field_name"`
	OldValue      *string   `gorm:"type:text"                  json:"old_value,omitempty"`
	NewValue      *string   `gorm:"type:text"                  json:"new_value,omitempty"`
}

func (CommuteEditLog) TableName() string { return "commute_edit_logs" }
