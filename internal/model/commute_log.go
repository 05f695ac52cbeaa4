package model

import "time"

// Commute log types
const (
	LogTypeMain       = "main"
	LogTypeShortLeave = "short_leave"
)

// CommuteLog gate entry/exit record, table commute_logs
//
// For LogTypeShortLeave rows EntryTime holds the return instant and
// ExitTime the departure; both are set at creation.
type CommuteLog struct {
	ID            int64      `gorm:"primaryKey"                                json:"id"`
	PersonnelCode string     `gorm:"type:varchar(32);not null"                 json:"personnel_code"`
	GuardName     string     `gorm:"type:varchar(100);not null"                json:"guard_name"`
	EntryTime     time.Time  `gorm:"type:timestamptz;not null"                 json:"entry_time"`
	ExitTime      *time.Time `gorm:"type:timestamptz"                          json:"exit_time,omitempty"`
	LogType       string     `gorm:"type:varchar(20);not null;default:'main'"  json:"log_type"`
	Timestamps
}

func (CommuteLog) TableName() string { return "commute_logs" }

// IsOpen main record still waiting for its exit
func (l *CommuteLog) IsOpen() bool {
	return l.LogType == LogTypeMain && l.ExitTime == nil
}

// CommuteLogView commute record joined with personnel metadata
type CommuteLogView struct {
	CommuteLog
	FirstName  *string `json:"first_name,omitempty"`
	LastName   *string `json:"last_name,omitempty"`
	Department *string `json:"department,omitempty"`
}
