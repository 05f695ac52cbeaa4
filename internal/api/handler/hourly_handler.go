package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"hr-ledger/internal/dto"
	"hr-ledger/internal/service"
	pkgerrors "hr-ledger/pkg/errors"
	"hr-ledger/pkg/response"
)

// HourlyHandler hourly exit ledger endpoints
type HourlyHandler struct {
	hourlySvc service.HourlyService
}

// NewHourlyHandler creates a HourlyHandler
func NewHourlyHandler(hourlySvc service.HourlyService) *HourlyHandler {
	return &HourlyHandler{hourlySvc: hourlySvc}
}

// LogOut
// POST /api/v1/hourly-logs
func (h *HourlyHandler) LogOut(c *gin.Context) {
	var req dto.HourlyOutRequest
	if !bindJSON(c, &req) {
		return
	}

	record, err := h.hourlySvc.LogOut(c.Request.Context(), &req)
	if err != nil {
		h.handleHourlyError(c, err)
		return
	}

	response.Created(c, record)
}

// LogReturn
// PUT /api/v1/hourly-logs/:id/return
func (h *HourlyHandler) LogReturn(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	record, err := h.hourlySvc.LogReturn(c.Request.Context(), id)
	if err != nil {
		h.handleHourlyError(c, err)
		return
	}

	response.OK(c, record)
}

// ListLogs active trips, or returned trips of a day
// GET /api/v1/hourly-logs?status=active
// GET /api/v1/hourly-logs?date=YYYY-MM-DD
func (h *HourlyHandler) ListLogs(c *gin.Context) {
	var q dto.HourlyQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, 10001, "invalid query parameters")
		return
	}

	var (
		list []dto.HourlyLogResponse
		err  error
	)
	switch {
	case q.Status == "active":
		list, err = h.hourlySvc.QueryActive(c.Request.Context())
	case q.Date != "":
		list, err = h.hourlySvc.QueryByDay(c.Request.Context(), q.Date)
	default:
		response.BadRequest(c, 10001, "status=active or date is required")
		return
	}
	if err != nil {
		h.handleHourlyError(c, err)
		return
	}

	response.OKList(c, list, len(list))
}

// DeleteLog
// DELETE /api/v1/hourly-logs/:id
func (h *HourlyHandler) DeleteLog(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.hourlySvc.Delete(c.Request.Context(), id); err != nil {
		h.handleHourlyError(c, err)
		return
	}

	response.OK(c, nil)
}

func (h *HourlyHandler) handleHourlyError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrActiveTripExists):
		response.Conflict(c, 21001, pkgerrors.Message(err))
	case errors.Is(err, service.ErrActiveTripNotFound), errors.Is(err, service.ErrHourlyLogNotFound):
		response.NotFound(c, 21002, pkgerrors.Message(err))
	default:
		handleKindError(c, err)
	}
}
