package dto

// ── commute ledger DTO ──

// CommuteActionRequest gate event for the main ledger
type CommuteActionRequest struct {
	PersonnelCode string  `json:"personnel_code" binding:"required,max=32"`
	GuardName     string  `json:"guard_name"     binding:"max=100"`
	Action        string  `json:"action"         binding:"required,oneof=entry exit"`
	Timestamp     *string `json:"timestamp"` // RFC3339; defaults to now
}

// ShortLeaveRequest completed short leave
type ShortLeaveRequest struct {
	PersonnelCode string `json:"personnel_code" binding:"required,max=32"`
	GuardName     string `json:"guard_name"     binding:"required,max=100"`
	ExitTime      string `json:"exit_time"      binding:"required"`
	ReturnTime    string `json:"return_time"    binding:"required"`
}

// UpdateCommuteRequest edit of a ledger record's times
type UpdateCommuteRequest struct {
	EntryTime string  `json:"entry_time" binding:"required"`
	ExitTime  *string `json:"exit_time"`
}

// CommuteQuery ledger listing filters.
// Either Date or both StartDate and EndDate.
type CommuteQuery struct {
	Date          string `form:"date"`
	StartDate     string `form:"start_date"`
	EndDate       string `form:"end_date"`
	PersonnelCode string `form:"personnel_code" binding:"omitempty,max=32"`
	Department    string `form:"department"     binding:"omitempty,max=100"`
}

// CommuteLogResponse ledger record.
// ReturnTime is only set for short_leave rows and mirrors EntryTime.
type CommuteLogResponse struct {
	ID            int64   `json:"id"`
	PersonnelCode string  `json:"personnel_code"`
	GuardName     string  `json:"guard_name"`
	EntryTime     string  `json:"entry_time"`
	ExitTime      *string `json:"exit_time"`
	ReturnTime    *string `json:"return_time,omitempty"`
	LogType       string  `json:"log_type"`
	FirstName     *string `json:"first_name,omitempty"`
	LastName      *string `json:"last_name,omitempty"`
	Department    *string `json:"department,omitempty"`
	CreatedAt     string  `json:"created_at"`
	UpdatedAt     string  `json:"updated_at"`
}

// CommuteEditLogResponse one audited field change
type CommuteEditLogResponse struct {
	ID            int64   `json:"id"`
	CommuteLogID  int64   `json:"commute_log_id"`
	PersonnelCode string  `json:"personnel_code"`
	EditorName    string  `json:"editor_name"`
	EditTimestamp string  `json:"edit_timestamp"`
	FieldName     string  `json:"field_name"`
	OldValue      *string `json:"old_value"`
	NewValue      *string `json:"new_value"`
}

// IDResponse id of the affected record
type IDResponse struct {
	ID int64 `json:"id"`
}
