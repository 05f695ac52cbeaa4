package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"hr-ledger/internal/service"
	pkgerrors "hr-ledger/pkg/errors"
	"hr-ledger/pkg/response"
)

// Handler aggregate of every handler
type Handler struct {
	Auth    *AuthHandler
	Commute *CommuteHandler
	Hourly  *HourlyHandler
	Backup  *BackupHandler
	Export  *ExportHandler
}

// NewHandler builds the handlers on the service aggregate
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Auth:    NewAuthHandler(svc.Auth),
		Commute: NewCommuteHandler(svc.Commute, svc.Audit),
		Hourly:  NewHourlyHandler(svc.Hourly),
		Backup:  NewBackupHandler(svc.Backup),
		Export:  NewExportHandler(svc.Export),
	}
}

// ── shared helpers ──

// bindJSON binds the body into req; a body over the size cap answers 413
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Error(c, http.StatusRequestEntityTooLarge, 10005, "request body too large")
			return false
		}
		response.BadRequest(c, 10001, "invalid request parameters")
		return false
	}
	return true
}

// parseID reads the :id path parameter
func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(c, 10001, "invalid id")
		return 0, false
	}
	return id, true
}

// handleKindError maps errors no module-specific case matched
func handleKindError(c *gin.Context, err error) {
	switch pkgerrors.KindOf(err) {
	case pkgerrors.KindValidation:
		response.BadRequest(c, 10001, pkgerrors.Message(err))
	case pkgerrors.KindNotFound:
		response.NotFound(c, 10006, pkgerrors.Message(err))
	case pkgerrors.KindConflict:
		response.Conflict(c, 10007, pkgerrors.Message(err))
	default:
		var kinded *pkgerrors.Error
		if errors.As(err, &kinded) {
			response.InternalErrorWithDetails(c, 50000, kinded.Message, pkgerrors.Detail(err))
			return
		}
		response.InternalError(c)
	}
}
