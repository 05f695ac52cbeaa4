package dto

// ── hourly ledger DTO ──

// HourlyOutRequest person leaving for an hourly trip
type HourlyOutRequest struct {
	PersonnelCode string  `json:"personnel_code" binding:"required,max=32"`
	FullName      string  `json:"full_name"      binding:"required,max=200"`
	GuardName     string  `json:"guard_name"     binding:"required,max=100"`
	Reason        *string `json:"reason"         binding:"omitempty,max=500"`
}

// HourlyQuery hourly listing filters: status=active, or a date
type HourlyQuery struct {
	Status string `form:"status" binding:"omitempty,oneof=active"`
	Date   string `form:"date"`
}

// HourlyLogResponse hourly trip
type HourlyLogResponse struct {
	ID            int64   `json:"id"`
	PersonnelCode string  `json:"personnel_code"`
	FullName      string  `json:"full_name"`
	GuardName     string  `json:"guard_name"`
	ExitTime      string  `json:"exit_time"`
	ReturnTime    *string `json:"return_time"`
	Reason        *string `json:"reason,omitempty"`
	Active        bool    `json:"active"`
}
