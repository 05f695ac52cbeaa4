package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"hr-ledger/internal/api/middleware"
	"hr-ledger/internal/backup"
	"hr-ledger/internal/dto"
	"hr-ledger/internal/model"
	"hr-ledger/internal/repository"
	"hr-ledger/internal/service"
	pkgerrors "hr-ledger/pkg/errors"
	"hr-ledger/pkg/jwt"
	"hr-ledger/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ═══════════════════════════════════════════════════════════
// Mock Services
// ═══════════════════════════════════════════════════════════

// ── Mock AuthService ──

type mockAuthService struct {
	loginResult *dto.TokenResponse
	loginErr    error
	logoutErr   error
	logoutJTI   string
}

func (m *mockAuthService) Login(_ context.Context, _ *dto.LoginRequest) (*dto.TokenResponse, error) {
	return m.loginResult, m.loginErr
}
func (m *mockAuthService) Logout(_ context.Context, claims *jwt.Claims) error {
	m.logoutJTI = claims.ID
	return m.logoutErr
}
func (m *mockAuthService) CreateUser(_ context.Context, _, _, _, _ string) (*dto.UserResponse, error) {
	return nil, nil
}

// ── Mock CommuteService ──

type mockCommuteService struct {
	entryResult *dto.CommuteLogResponse
	entryErr    error
	exitResult  *dto.CommuteLogResponse
	exitErr     error
	shortResult *dto.CommuteLogResponse
	shortErr    error
	editResult  *dto.CommuteLogResponse
	editErr     error
	editEditor  string
	deleteErr   error
	getResult   *dto.CommuteLogResponse
	getErr      error
	listResult  []dto.CommuteLogResponse
	listErr     error
	lastFilter  repository.CommuteLogFilter
	rangeCalled bool
}

func (m *mockCommuteService) LogEntry(_ context.Context, _ *dto.CommuteActionRequest) (*dto.CommuteLogResponse, error) {
	return m.entryResult, m.entryErr
}
func (m *mockCommuteService) LogExit(_ context.Context, _ *dto.CommuteActionRequest) (*dto.CommuteLogResponse, error) {
	return m.exitResult, m.exitErr
}
func (m *mockCommuteService) LogShortLeave(_ context.Context, _ *dto.ShortLeaveRequest) (*dto.CommuteLogResponse, error) {
	return m.shortResult, m.shortErr
}
func (m *mockCommuteService) EditRecord(_ context.Context, _ int64, _ *dto.UpdateCommuteRequest, editor string) (*dto.CommuteLogResponse, error) {
	m.editEditor = editor
	return m.editResult, m.editErr
}
func (m *mockCommuteService) DeleteRecord(_ context.Context, _ int64) error {
	return m.deleteErr
}
func (m *mockCommuteService) GetRecord(_ context.Context, _ int64) (*dto.CommuteLogResponse, error) {
	return m.getResult, m.getErr
}
func (m *mockCommuteService) QueryByDay(_ context.Context, _ string, f repository.CommuteLogFilter) ([]dto.CommuteLogResponse, error) {
	m.lastFilter = f
	return m.listResult, m.listErr
}
func (m *mockCommuteService) QueryRange(_ context.Context, _, _ string, f repository.CommuteLogFilter) ([]dto.CommuteLogResponse, error) {
	m.lastFilter = f
	m.rangeCalled = true
	return m.listResult, m.listErr
}

// ── Mock AuditService ──

type mockAuditService struct {
	list []dto.CommuteEditLogResponse
	err  error
}

func (m *mockAuditService) Diff(_, _ *model.CommuteLog) []service.FieldChange { return nil }
func (m *mockAuditService) Record(_ context.Context, _ *repository.Repository, _ *model.CommuteLog, _ string, _ []service.FieldChange) error {
	return nil
}
func (m *mockAuditService) ListByCommuteLog(_ context.Context, _ int64) ([]dto.CommuteEditLogResponse, error) {
	return m.list, m.err
}

// ── Mock HourlyService ──

type mockHourlyService struct {
	outResult    *dto.HourlyLogResponse
	outErr       error
	returnResult *dto.HourlyLogResponse
	returnErr    error
	activeResult []dto.HourlyLogResponse
	dayResult    []dto.HourlyLogResponse
	listErr      error
	deleteErr    error
	activeCalled bool
}

func (m *mockHourlyService) LogOut(_ context.Context, _ *dto.HourlyOutRequest) (*dto.HourlyLogResponse, error) {
	return m.outResult, m.outErr
}
func (m *mockHourlyService) LogReturn(_ context.Context, _ int64) (*dto.HourlyLogResponse, error) {
	return m.returnResult, m.returnErr
}
func (m *mockHourlyService) QueryActive(_ context.Context) ([]dto.HourlyLogResponse, error) {
	m.activeCalled = true
	return m.activeResult, m.listErr
}
func (m *mockHourlyService) QueryByDay(_ context.Context, _ string) ([]dto.HourlyLogResponse, error) {
	return m.dayResult, m.listErr
}
func (m *mockHourlyService) Delete(_ context.Context, _ int64) error {
	return m.deleteErr
}

// ── Mock BackupService ──

type mockBackupService struct {
	snap       *backup.Snapshot
	exportErr  error
	restore    *dto.RestoreResponse
	restoreErr error
	received   []byte
}

func (m *mockBackupService) Export(_ context.Context) (*backup.Snapshot, error) {
	return m.snap, m.exportErr
}
func (m *mockBackupService) Restore(_ context.Context, _ *backup.Snapshot) (*dto.RestoreResponse, error) {
	return m.restore, m.restoreErr
}
func (m *mockBackupService) RestoreJSON(_ context.Context, raw []byte) (*dto.RestoreResponse, error) {
	m.received = raw
	return m.restore, m.restoreErr
}

// ── Mock ExportService ──

type mockExportService struct {
	buf      *bytes.Buffer
	filename string
	err      error
}

func (m *mockExportService) ExportCommuteReport(_ context.Context, _, _ string, _ repository.CommuteLogFilter) (*bytes.Buffer, string, error) {
	return m.buf, m.filename, m.err
}

// ═══════════════════════════════════════════════════════════
// Helpers
// ═══════════════════════════════════════════════════════════

func setupGin() *gin.Engine {
	return gin.New()
}

func setAuth(userID int64, role, fullName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextUserID, userID)
		c.Set(middleware.ContextRole, role)
		c.Set(middleware.ContextFullName, fullName)
		c.Set(middleware.ContextClaims, &jwt.Claims{UserID: userID, FullName: fullName, Role: role})
		c.Next()
	}
}

func jsonBody(v interface{}) *bytes.Buffer {
	b, _ := json.Marshal(v)
	return bytes.NewBuffer(b)
}

func parseResponse(t *testing.T, w *httptest.ResponseRecorder) response.Response {
	t.Helper()
	var resp response.Response
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v, body: %s", err, w.Body.String())
	}
	return resp
}

func strPtr(s string) *string { return &s }

func sampleLog(id int64) *dto.CommuteLogResponse {
	return &dto.CommuteLogResponse{
		ID:            id,
		PersonnelCode: "1001",
		GuardName:     "Reza",
		EntryTime:     "2024-03-01T08:00:00+03:30",
		LogType:       model.LogTypeMain,
	}
}

// ═══════════════════════════════════════════════════════════
// CommuteHandler
// ═══════════════════════════════════════════════════════════

func newCommuteRouter(svc *mockCommuteService, audit *mockAuditService) *gin.Engine {
	h := NewCommuteHandler(svc, audit)
	r := setupGin()
	r.Use(setAuth(1, model.RoleAdmin, "Admin User"))
	r.POST("/commute-logs", h.LogAction)
	r.POST("/commute-logs/short-leave", h.LogShortLeave)
	r.GET("/commute-logs", h.ListLogs)
	r.GET("/commute-logs/:id", h.GetLog)
	r.PUT("/commute-logs/:id", h.UpdateLog)
	r.DELETE("/commute-logs/:id", h.DeleteLog)
	r.GET("/commute-logs/:id/edits", h.ListEdits)
	return r
}

func TestCommuteHandler_LogAction(t *testing.T) {
	tests := []struct {
		name       string
		body       map[string]interface{}
		svc        *mockCommuteService
		wantStatus int
		wantCode   int
	}{
		{
			name:       "entry created",
			body:       map[string]interface{}{"personnel_code": "1001", "guard_name": "Reza", "action": "entry"},
			svc:        &mockCommuteService{entryResult: sampleLog(1)},
			wantStatus: http.StatusCreated,
		},
		{
			name:       "exit ok",
			body:       map[string]interface{}{"personnel_code": "1001", "guard_name": "Reza", "action": "exit"},
			svc:        &mockCommuteService{exitResult: sampleLog(1)},
			wantStatus: http.StatusOK,
		},
		{
			name:       "duplicate open entry",
			body:       map[string]interface{}{"personnel_code": "1001", "guard_name": "Reza", "action": "entry"},
			svc:        &mockCommuteService{entryErr: service.ErrOpenEntryExists},
			wantStatus: http.StatusConflict,
			wantCode:   20001,
		},
		{
			name:       "exit without open entry",
			body:       map[string]interface{}{"personnel_code": "1001", "guard_name": "Reza", "action": "exit"},
			svc:        &mockCommuteService{exitErr: service.ErrOpenEntryNotFound},
			wantStatus: http.StatusNotFound,
			wantCode:   20002,
		},
		{
			name:       "unknown action",
			body:       map[string]interface{}{"personnel_code": "1001", "action": "lunch"},
			svc:        &mockCommuteService{},
			wantStatus: http.StatusBadRequest,
			wantCode:   10001,
		},
		{
			name:       "missing personnel code",
			body:       map[string]interface{}{"action": "entry"},
			svc:        &mockCommuteService{},
			wantStatus: http.StatusBadRequest,
			wantCode:   10001,
		},
		{
			name:       "storage failure",
			body:       map[string]interface{}{"personnel_code": "1001", "action": "entry"},
			svc:        &mockCommuteService{entryErr: pkgerrors.Storage("create commute log failed", errors.New("db down"))},
			wantStatus: http.StatusInternalServerError,
			wantCode:   50000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newCommuteRouter(tt.svc, &mockAuditService{})
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/commute-logs", jsonBody(tt.body))
			req.Header.Set("Content-Type", "application/json")
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d: %s", tt.wantStatus, w.Code, w.Body.String())
			}
			if resp := parseResponse(t, w); resp.Code != tt.wantCode {
				t.Errorf("expected code %d, got %d", tt.wantCode, resp.Code)
			}
		})
	}
}

func TestCommuteHandler_LogAction_BodyTooLarge(t *testing.T) {
	svc := &mockCommuteService{entryResult: sampleLog(1)}
	h := NewCommuteHandler(svc, &mockAuditService{})
	r := setupGin()
	r.Use(middleware.BodyLimit(64))
	r.POST("/commute-logs", h.LogAction)

	body := `{"personnel_code":"` + strings.Repeat("9", 4096) + `","action":"entry"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/commute-logs", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d: %s", w.Code, w.Body.String())
	}
	if resp := parseResponse(t, w); resp.Code != 10005 {
		t.Errorf("expected code 10005, got %d", resp.Code)
	}
}

func TestCommuteHandler_LogShortLeave(t *testing.T) {
	svc := &mockCommuteService{shortResult: &dto.CommuteLogResponse{
		ID:         3,
		LogType:    model.LogTypeShortLeave,
		EntryTime:  "2024-03-01T11:00:00+03:30",
		ExitTime:   strPtr("2024-03-01T10:00:00+03:30"),
		ReturnTime: strPtr("2024-03-01T11:00:00+03:30"),
	}}
	r := newCommuteRouter(svc, &mockAuditService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/commute-logs/short-leave", jsonBody(map[string]string{
		"personnel_code": "1001",
		"guard_name":     "Reza",
		"exit_time":      "2024-03-01T10:00:00+03:30",
		"return_time":    "2024-03-01T11:00:00+03:30",
	}))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	resp := parseResponse(t, w)
	data, _ := resp.Data.(map[string]interface{})
	if data["return_time"] != "2024-03-01T11:00:00+03:30" {
		t.Errorf("expected return_time in the payload, got %v", data["return_time"])
	}
}

func TestCommuteHandler_ListLogs(t *testing.T) {
	t.Run("by day with filters", func(t *testing.T) {
		svc := &mockCommuteService{listResult: []dto.CommuteLogResponse{*sampleLog(1), *sampleLog(2)}}
		r := newCommuteRouter(svc, &mockAuditService{})

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/commute-logs?date=2024-03-01&personnel_code=1001&department=IT", nil)
		r.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
		}
		if svc.lastFilter.PersonnelCode != "1001" || svc.lastFilter.Department != "IT" {
			t.Errorf("filter not forwarded: %+v", svc.lastFilter)
		}
		data, _ := parseResponse(t, w).Data.(map[string]interface{})
		if data["total"] != float64(2) {
			t.Errorf("expected total 2, got %v", data["total"])
		}
	})

	t.Run("by range", func(t *testing.T) {
		svc := &mockCommuteService{}
		r := newCommuteRouter(svc, &mockAuditService{})

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/commute-logs?start_date=2024-03-01&end_date=2024-03-03", nil)
		r.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
		if !svc.rangeCalled {
			t.Error("expected QueryRange to be used")
		}
	})

	t.Run("no date", func(t *testing.T) {
		r := newCommuteRouter(&mockCommuteService{}, &mockAuditService{})

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/commute-logs", nil)
		r.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
	})

	t.Run("inverted range", func(t *testing.T) {
		r := newCommuteRouter(&mockCommuteService{listErr: service.ErrDateRangeInvalid}, &mockAuditService{})

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/commute-logs?start_date=2024-03-03&end_date=2024-03-01", nil)
		r.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
	})
}

func TestCommuteHandler_UpdateLog(t *testing.T) {
	t.Run("records caller as editor", func(t *testing.T) {
		svc := &mockCommuteService{editResult: sampleLog(7)}
		r := newCommuteRouter(svc, &mockAuditService{})

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPut, "/commute-logs/7", jsonBody(map[string]interface{}{
			"entry_time": "2024-03-01T07:55:00+03:30",
			"exit_time":  "2024-03-01T16:00:00+03:30",
		}))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
		}
		if svc.editEditor != "Admin User" {
			t.Errorf("expected editor Admin User, got %q", svc.editEditor)
		}
		data, _ := parseResponse(t, w).Data.(map[string]interface{})
		if data["id"] != float64(7) {
			t.Errorf("expected id 7, got %v", data["id"])
		}
	})

	t.Run("not found", func(t *testing.T) {
		r := newCommuteRouter(&mockCommuteService{editErr: service.ErrCommuteLogNotFound}, &mockAuditService{})

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPut, "/commute-logs/99", jsonBody(map[string]string{"entry_time": "2024-03-01T08:00:00+03:30"}))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)

		if w.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", w.Code)
		}
		if resp := parseResponse(t, w); resp.Code != 20002 {
			t.Errorf("expected code 20002, got %d", resp.Code)
		}
	})

	t.Run("exit before entry", func(t *testing.T) {
		r := newCommuteRouter(&mockCommuteService{editErr: service.ErrExitBeforeEntry}, &mockAuditService{})

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPut, "/commute-logs/7", jsonBody(map[string]string{
			"entry_time": "2024-03-01T16:00:00+03:30",
			"exit_time":  "2024-03-01T08:00:00+03:30",
		}))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
	})

	t.Run("bad id", func(t *testing.T) {
		r := newCommuteRouter(&mockCommuteService{}, &mockAuditService{})

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPut, "/commute-logs/abc", jsonBody(map[string]string{"entry_time": "x"}))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
	})
}

func TestCommuteHandler_DeleteLog(t *testing.T) {
	r := newCommuteRouter(&mockCommuteService{deleteErr: service.ErrCommuteLogNotFound}, &mockAuditService{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/commute-logs/5", nil))

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestCommuteHandler_ListEdits(t *testing.T) {
	audit := &mockAuditService{list: []dto.CommuteEditLogResponse{
		{ID: 2, CommuteLogID: 5, FieldName: model.FieldExitTime, EditorName: "Admin User"},
		{ID: 1, CommuteLogID: 5, FieldName: model.FieldEntryTime, EditorName: "Admin User"},
	}}
	r := newCommuteRouter(&mockCommuteService{}, audit)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/commute-logs/5/edits", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	data, _ := parseResponse(t, w).Data.(map[string]interface{})
	if data["total"] != float64(2) {
		t.Errorf("expected 2 edits, got %v", data["total"])
	}
}

// ═══════════════════════════════════════════════════════════
// HourlyHandler
// ═══════════════════════════════════════════════════════════

func newHourlyRouter(svc *mockHourlyService) *gin.Engine {
	h := NewHourlyHandler(svc)
	r := setupGin()
	r.Use(setAuth(1, model.RoleGuard, "Gate Guard"))
	r.POST("/hourly-logs", h.LogOut)
	r.PUT("/hourly-logs/:id/return", h.LogReturn)
	r.GET("/hourly-logs", h.ListLogs)
	r.DELETE("/hourly-logs/:id", h.DeleteLog)
	return r
}

func TestHourlyHandler_LogOut(t *testing.T) {
	body := map[string]string{"personnel_code": "1001", "full_name": "Ali Ahmadi", "guard_name": "Reza"}

	t.Run("created", func(t *testing.T) {
		r := newHourlyRouter(&mockHourlyService{outResult: &dto.HourlyLogResponse{ID: 1, Active: true}})

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/hourly-logs", jsonBody(body))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)

		if w.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("already out", func(t *testing.T) {
		r := newHourlyRouter(&mockHourlyService{outErr: service.ErrActiveTripExists})

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/hourly-logs", jsonBody(body))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)

		if w.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", w.Code)
		}
		if resp := parseResponse(t, w); resp.Code != 21001 {
			t.Errorf("expected code 21001, got %d", resp.Code)
		}
	})

	t.Run("missing full name", func(t *testing.T) {
		r := newHourlyRouter(&mockHourlyService{})

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/hourly-logs", jsonBody(map[string]string{"personnel_code": "1001", "guard_name": "Reza"}))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
	})
}

func TestHourlyHandler_LogReturn(t *testing.T) {
	r := newHourlyRouter(&mockHourlyService{returnErr: service.ErrActiveTripNotFound})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPut, "/hourly-logs/4/return", nil))

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	if resp := parseResponse(t, w); resp.Code != 21002 {
		t.Errorf("expected code 21002, got %d", resp.Code)
	}
}

func TestHourlyHandler_ListLogs(t *testing.T) {
	svc := &mockHourlyService{activeResult: []dto.HourlyLogResponse{{ID: 1, Active: true}}}
	r := newHourlyRouter(svc)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/hourly-logs?status=active", nil))
	if w.Code != http.StatusOK || !svc.activeCalled {
		t.Fatalf("expected active listing, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/hourly-logs?status=gone", nil))
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown status, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/hourly-logs", nil))
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 without filters, got %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// BackupHandler
// ═══════════════════════════════════════════════════════════

func newBackupRouter(svc *mockBackupService, limit int64) *gin.Engine {
	h := NewBackupHandler(svc)
	r := setupGin()
	r.Use(setAuth(1, model.RoleAdmin, "Admin User"))
	r.GET("/backup", h.Export)
	r.POST("/backup", middleware.BodyLimit(limit), h.Restore)
	return r
}

func TestBackupHandler_Export(t *testing.T) {
	snap := backup.NewSnapshot()
	snap.Set("personnel", []backup.Row{{"id": int64(1), "personnel_code": "1001"}})
	r := newBackupRouter(&mockBackupService{snap: snap}, 1<<20)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/backup", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := w.Body.String()
	if !strings.HasPrefix(body, `{"personnel":`) {
		t.Errorf("expected the raw snapshot as body, got %s", body)
	}
	if strings.Contains(body, `"code"`) {
		t.Error("snapshot must not be wrapped in the response envelope")
	}
}

func TestBackupHandler_Restore(t *testing.T) {
	tests := []struct {
		name        string
		svc         *mockBackupService
		body        string
		limit       int64
		wantStatus  int
		wantCode    int
		wantDetails bool
	}{
		{
			name:       "ok",
			svc:        &mockBackupService{restore: &dto.RestoreResponse{Tables: 6, Rows: 12}},
			body:       `{"personnel":[]}`,
			limit:      1 << 20,
			wantStatus: http.StatusOK,
		},
		{
			name:       "malformed snapshot",
			svc:        &mockBackupService{restoreErr: pkgerrors.Validation("backup is not valid JSON")},
			body:       `{"personnel":`,
			limit:      1 << 20,
			wantStatus: http.StatusBadRequest,
			wantCode:   22001,
		},
		{
			name:        "store failure carries details",
			svc:         &mockBackupService{restoreErr: pkgerrors.Storage("restore failed", errors.New("insert or update violates foreign key"))},
			body:        `{"personnel":[]}`,
			limit:       1 << 20,
			wantStatus:  http.StatusInternalServerError,
			wantCode:    22002,
			wantDetails: true,
		},
		{
			name:       "too large",
			svc:        &mockBackupService{},
			body:       `{"personnel":[` + strings.Repeat(`{"id":1},`, 64) + `{"id":2}]}`,
			limit:      32,
			wantStatus: http.StatusRequestEntityTooLarge,
			wantCode:   10005,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newBackupRouter(tt.svc, tt.limit)
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/backup", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d: %s", tt.wantStatus, w.Code, w.Body.String())
			}
			resp := parseResponse(t, w)
			if resp.Code != tt.wantCode {
				t.Errorf("expected code %d, got %d", tt.wantCode, resp.Code)
			}
			if tt.wantDetails && resp.Details == "" {
				t.Error("expected store error details")
			}
		})
	}
}

// ═══════════════════════════════════════════════════════════
// AuthHandler
// ═══════════════════════════════════════════════════════════

func TestAuthHandler_Login(t *testing.T) {
	t.Run("bad credentials", func(t *testing.T) {
		h := NewAuthHandler(&mockAuthService{loginErr: service.ErrInvalidCredentials})
		r := setupGin()
		r.POST("/auth/login", h.Login)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/auth/login", jsonBody(map[string]string{"username": "admin", "password": "wrong-pass"}))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", w.Code)
		}
		if resp := parseResponse(t, w); resp.Code != 10008 {
			t.Errorf("expected code 10008, got %d", resp.Code)
		}
	})

	t.Run("ok", func(t *testing.T) {
		h := NewAuthHandler(&mockAuthService{loginResult: &dto.TokenResponse{AccessToken: "tok", ExpiresIn: 3600}})
		r := setupGin()
		r.POST("/auth/login", h.Login)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/auth/login", jsonBody(map[string]string{"username": "admin", "password": "secret-pass"}))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
		}
	})
}

func TestAuthHandler_Logout(t *testing.T) {
	svc := &mockAuthService{}
	h := NewAuthHandler(svc)
	r := setupGin()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.ContextClaims, &jwt.Claims{UserID: 1})
		c.Next()
	})
	r.POST("/auth/logout", h.Logout)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/auth/logout", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestAuthHandler_Logout_Unauthenticated(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{})
	r := setupGin()
	r.POST("/auth/logout", h.Logout)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/auth/logout", nil))

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// ExportHandler
// ═══════════════════════════════════════════════════════════

func TestExportHandler_ExportCommutes(t *testing.T) {
	t.Run("attachment", func(t *testing.T) {
		h := NewExportHandler(&mockExportService{buf: bytes.NewBufferString("xlsx"), filename: "commute_2024-03-01_2024-03-03.xlsx"})
		r := setupGin()
		r.GET("/export", h.ExportCommutes)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/export?start_date=2024-03-01&end_date=2024-03-03", nil))

		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
		if !strings.Contains(w.Header().Get("Content-Disposition"), "commute_2024-03-01_2024-03-03.xlsx") {
			t.Errorf("unexpected disposition %q", w.Header().Get("Content-Disposition"))
		}
	})

	t.Run("missing range", func(t *testing.T) {
		h := NewExportHandler(&mockExportService{})
		r := setupGin()
		r.GET("/export", h.ExportCommutes)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/export?start_date=2024-03-01", nil))

		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
	})
}
