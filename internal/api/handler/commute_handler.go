package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"hr-ledger/internal/dto"
	"hr-ledger/internal/repository"
	"hr-ledger/internal/service"
	pkgerrors "hr-ledger/pkg/errors"
	"hr-ledger/pkg/response"
)

// CommuteHandler main and short-leave ledger endpoints
type CommuteHandler struct {
	commuteSvc service.CommuteService
	auditSvc   service.AuditService
}

// NewCommuteHandler creates a CommuteHandler
func NewCommuteHandler(commuteSvc service.CommuteService, auditSvc service.AuditService) *CommuteHandler {
	return &CommuteHandler{commuteSvc: commuteSvc, auditSvc: auditSvc}
}

// LogAction records an entry (201) or an exit (200)
// POST /api/v1/commute-logs
func (h *CommuteHandler) LogAction(c *gin.Context) {
	var req dto.CommuteActionRequest
	if !bindJSON(c, &req) {
		return
	}

	if req.Action == "exit" {
		record, err := h.commuteSvc.LogExit(c.Request.Context(), &req)
		if err != nil {
			h.handleCommuteError(c, err)
			return
		}
		response.OK(c, record)
		return
	}

	record, err := h.commuteSvc.LogEntry(c.Request.Context(), &req)
	if err != nil {
		h.handleCommuteError(c, err)
		return
	}
	response.Created(c, record)
}

// LogShortLeave records a completed short leave
// POST /api/v1/commute-logs/short-leave
func (h *CommuteHandler) LogShortLeave(c *gin.Context) {
	var req dto.ShortLeaveRequest
	if !bindJSON(c, &req) {
		return
	}

	record, err := h.commuteSvc.LogShortLeave(c.Request.Context(), &req)
	if err != nil {
		h.handleCommuteError(c, err)
		return
	}

	response.Created(c, record)
}

// ListLogs records of one day or an inclusive date range
// GET /api/v1/commute-logs?date=YYYY-MM-DD
// GET /api/v1/commute-logs?start_date=...&end_date=...
func (h *CommuteHandler) ListLogs(c *gin.Context) {
	var q dto.CommuteQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, 10001, "invalid query parameters")
		return
	}
	filter := repository.CommuteLogFilter{PersonnelCode: q.PersonnelCode, Department: q.Department}

	var (
		list []dto.CommuteLogResponse
		err  error
	)
	switch {
	case q.Date != "":
		list, err = h.commuteSvc.QueryByDay(c.Request.Context(), q.Date, filter)
	case q.StartDate != "" && q.EndDate != "":
		list, err = h.commuteSvc.QueryRange(c.Request.Context(), q.StartDate, q.EndDate, filter)
	default:
		err = service.ErrDateRequired
	}
	if err != nil {
		h.handleCommuteError(c, err)
		return
	}

	response.OKList(c, list, len(list))
}

// GetLog single record
// GET /api/v1/commute-logs/:id
func (h *CommuteHandler) GetLog(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	record, err := h.commuteSvc.GetRecord(c.Request.Context(), id)
	if err != nil {
		h.handleCommuteError(c, err)
		return
	}

	response.OK(c, record)
}

// UpdateLog edits the record's times; the caller is recorded as editor
// PUT /api/v1/commute-logs/:id
func (h *CommuteHandler) UpdateLog(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req dto.UpdateCommuteRequest
	if !bindJSON(c, &req) {
		return
	}

	editor, ok := MustGetFullName(c)
	if !ok {
		return
	}

	record, err := h.commuteSvc.EditRecord(c.Request.Context(), id, &req, editor)
	if err != nil {
		h.handleCommuteError(c, err)
		return
	}

	response.OK(c, dto.IDResponse{ID: record.ID})
}

// DeleteLog
// DELETE /api/v1/commute-logs/:id
func (h *CommuteHandler) DeleteLog(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.commuteSvc.DeleteRecord(c.Request.Context(), id); err != nil {
		h.handleCommuteError(c, err)
		return
	}

	response.OK(c, nil)
}

// ListEdits edit history of a record, newest first
// GET /api/v1/commute-logs/:id/edits
func (h *CommuteHandler) ListEdits(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	list, err := h.auditSvc.ListByCommuteLog(c.Request.Context(), id)
	if err != nil {
		h.handleCommuteError(c, err)
		return
	}

	response.OKList(c, list, len(list))
}

// handleCommuteError maps commute ledger errors
func (h *CommuteHandler) handleCommuteError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrOpenEntryExists):
		response.Conflict(c, 20001, pkgerrors.Message(err))
	case errors.Is(err, service.ErrOpenEntryNotFound), errors.Is(err, service.ErrCommuteLogNotFound):
		response.NotFound(c, 20002, pkgerrors.Message(err))
	default:
		handleKindError(c, err)
	}
}
