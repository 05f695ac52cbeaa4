package dto

// RestoreResponse summary of a completed restore
type RestoreResponse struct {
	Tables int `json:"tables"`
	Rows   int `json:"rows"`
}

// ExportQuery report range, inclusive civil dates
type ExportQuery struct {
	StartDate string `form:"start_date" binding:"required"`
	EndDate   string `form:"end_date"   binding:"required"`
}
