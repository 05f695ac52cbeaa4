package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"hr-ledger/internal/service"
	pkgerrors "hr-ledger/pkg/errors"
	"hr-ledger/pkg/response"
)

// BackupHandler snapshot download and restore
type BackupHandler struct {
	backupSvc service.BackupService
}

// NewBackupHandler creates a BackupHandler
func NewBackupHandler(backupSvc service.BackupService) *BackupHandler {
	return &BackupHandler{backupSvc: backupSvc}
}

// Export writes the snapshot itself as the body, so it can be posted back unchanged
// GET /api/v1/backup
func (h *BackupHandler) Export(c *gin.Context) {
	snap, err := h.backupSvc.Export(c.Request.Context())
	if err != nil {
		h.handleBackupError(c, err)
		return
	}

	c.JSON(http.StatusOK, snap)
}

// Restore replaces the dataset with the posted snapshot
// POST /api/v1/backup
func (h *BackupHandler) Restore(c *gin.Context) {
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Error(c, http.StatusRequestEntityTooLarge, 10005, "backup too large")
			return
		}
		response.BadRequest(c, 22001, "read backup body failed")
		return
	}

	result, err := h.backupSvc.RestoreJSON(c.Request.Context(), raw)
	if err != nil {
		h.handleBackupError(c, err)
		return
	}

	response.OK(c, result)
}

func (h *BackupHandler) handleBackupError(c *gin.Context, err error) {
	switch pkgerrors.KindOf(err) {
	case pkgerrors.KindValidation:
		response.BadRequest(c, 22001, pkgerrors.Message(err))
	default:
		response.InternalErrorWithDetails(c, 22002, pkgerrors.Message(err), pkgerrors.Detail(err))
	}
}
