package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"hr-ledger/internal/dto"
	"hr-ledger/internal/repository"
	"hr-ledger/internal/service"
	"hr-ledger/pkg/response"
)

// ExportHandler spreadsheet downloads
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler creates an ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportCommutes commute report of an inclusive date range
// GET /api/v1/commute-logs/export?start_date=...&end_date=...
func (h *ExportHandler) ExportCommutes(c *gin.Context) {
	var q dto.ExportQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, 10001, "start_date and end_date are required")
		return
	}
	filter := repository.CommuteLogFilter{
		PersonnelCode: c.Query("personnel_code"),
		Department:    c.Query("department"),
	}

	buf, filename, err := h.exportSvc.ExportCommuteReport(c.Request.Context(), q.StartDate, q.EndDate, filter)
	if err != nil {
		if errors.Is(err, service.ErrExportGenerateFail) {
			response.InternalError(c)
			return
		}
		handleKindError(c, err)
		return
	}

	encodedFilename := url.QueryEscape(filename)
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+encodedFilename)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}
