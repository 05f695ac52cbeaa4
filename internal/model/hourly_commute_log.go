package model

import "time"

// HourlyCommuteLog short out-and-back trip, table hourly_commute_logs
type HourlyCommuteLog struct {
	ID            int64      `gorm:"primaryKey"                 json:"id"`
	PersonnelCode string     `gorm:"type:varchar(32);not null"  json:"personnel_code"`
	FullName      string     `gorm:"type:varchar(200);not null" json:"full_name"`
	GuardName     string     `gorm:"type:varchar(100);not null" json:"guard_name"`
	ExitTime      time.Time  `gorm:"type:timestamptz;not null"  json:"exit_time"`
	ReturnTime    *time.Time `gorm:"type:timestamptz"           json:"return_time,omitempty"`
	Reason        *string    `gorm:"type:text"                  json:"reason,omitempty"`
	Timestamps
}

func (HourlyCommuteLog) TableName() string { return "hourly_commute_logs" }

// IsActive person has not come back yet
func (l *HourlyCommuteLog) IsActive() bool {
	return l.ReturnTime == nil
}
