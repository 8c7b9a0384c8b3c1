package payrollhandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"hrcrm/internal/domain/audit"
	"hrcrm/internal/domain/auth"
	"hrcrm/internal/domain/notifications"
	"hrcrm/internal/domain/org"
	"hrcrm/internal/domain/payroll"
	"hrcrm/internal/platform/config"
	"hrcrm/internal/transport/http/api"
	"hrcrm/internal/transport/http/middleware"
	"hrcrm/internal/transport/http/shared"
)

type Handler struct {
	DB       *pgxpool.Pool
	Payroll  *payroll.Service
	Org      *org.Service
	Audit    *audit.Service
	Notifier *notifications.Service
	Perms    middleware.PermissionStore
	Cfg      config.Config
}

func NewHandler(db *pgxpool.Pool, payrollSvc *payroll.Service, orgSvc *org.Service, auditor *audit.Service, notifier *notifications.Service, perms middleware.PermissionStore, cfg config.Config) *Handler {
	return &Handler{DB: db, Payroll: payrollSvc, Org: orgSvc, Audit: auditor, Notifier: notifier, Perms: perms, Cfg: cfg}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/payroll", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermPayrollRead, h.Perms)).Get("/payslips", h.handleListPayslips)
		r.With(middleware.RequirePermission(auth.PermPayrollWrite, h.Perms)).Post("/payslips", h.handleCreatePayslip)
		r.With(middleware.RequirePermission(auth.PermPayrollRead, h.Perms)).Get("/payslips/{payslipID}", h.handleGetPayslip)
		r.With(middleware.RequirePermission(auth.PermPayrollWrite, h.Perms)).Post("/payslips/{payslipID}/recompute", h.handleRecompute)
		r.With(middleware.RequirePermission(auth.PermPayrollApprove, h.Perms)).Post("/payslips/{payslipID}/status", h.handleTransitionStatus)
		r.With(middleware.RequirePermission(auth.PermPayrollRead, h.Perms)).Get("/payslips/{payslipID}/download", h.handleDownloadPayslip)
		r.With(middleware.RequirePermission(auth.PermPayrollRead, h.Perms)).Get("/register", h.handleExportRegister)
	})
}

func (h *Handler) handleListPayslips(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	employeeID := r.URL.Query().Get("employeeId")
	if user.RoleName == auth.RoleEmployee {
		self, err := h.Org.GetEmployeeByUserID(r.Context(), user.TenantID, user.UserID)
		if err != nil {
			api.Fail(w, http.StatusNotFound, "not_found", "no employee record for user", requestID)
			return
		}
		employeeID = self.ID
	}

	page := shared.ParsePagination(r, 50, 200)
	total, err := h.Payroll.Count(r.Context(), user.TenantID, employeeID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "payslip_list_failed", "failed to list payslips", requestID)
		return
	}
	payslips, err := h.Payroll.List(r.Context(), user.TenantID, employeeID, page.Limit, page.Offset)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "payslip_list_failed", "failed to list payslips", requestID)
		return
	}
	if payslips == nil {
		payslips = []payroll.Payslip{}
	}
	api.Success(w, shared.NewPage(payslips, total, page), requestID)
}

func (h *Handler) handleGetPayslip(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	payslip, err := h.Payroll.Get(r.Context(), user.TenantID, chi.URLParam(r, "payslipID"))
	if errors.Is(err, payroll.ErrPayslipNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "payslip not found", requestID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "payslip_get_failed", "failed to load payslip", requestID)
		return
	}
	if !h.canSeePayslip(r, user.TenantID, user.UserID, user.RoleName, payslip.EmployeeID) {
		api.Fail(w, http.StatusForbidden, "forbidden", "not allowed", requestID)
		return
	}
	api.Success(w, payslip, requestID)
}

type createPayslipPayload struct {
	EmployeeID      string  `json:"employeeId"`
	PeriodStart     string  `json:"periodStart"`
	PeriodEnd       string  `json:"periodEnd"`
	TotalAllowances float64 `json:"totalAllowances"`
	TotalDeductions float64 `json:"totalDeductions"`
}

func (h *Handler) handleCreatePayslip(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	var payload createPayslipPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	v := shared.NewValidator()
	v.Required("employeeId", payload.EmployeeID, "employee id required")
	periodStart, _ := v.Date("periodStart", payload.PeriodStart)
	periodEnd, _ := v.Date("periodEnd", payload.PeriodEnd)
	v.DateOrder("periodStart", periodStart, "periodEnd", periodEnd)
	v.NonNegative("totalAllowances", payload.TotalAllowances, "must not be negative")
	v.NonNegative("totalDeductions", payload.TotalDeductions, "must not be negative")
	if v.Reject(w, requestID) {
		return
	}

	payslip, err := h.Payroll.Create(r.Context(), user.TenantID, payload.EmployeeID, periodStart, periodEnd, payload.TotalAllowances, payload.TotalDeductions)
	if err != nil {
		h.failPayrollError(w, err, requestID)
		return
	}
	if err := h.Audit.Record(r.Context(), user.TenantID, user.UserID, "payroll.payslip.create", "payslip", payslip.ID, requestID, shared.ClientIP(r), nil, payload); err != nil {
		slog.Warn("audit payroll.payslip.create failed", "err", err)
	}
	api.Created(w, payslip, requestID)
}

type recomputePayload struct {
	TotalAllowances float64 `json:"totalAllowances"`
	TotalDeductions float64 `json:"totalDeductions"`
}

func (h *Handler) handleRecompute(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	payslipID := chi.URLParam(r, "payslipID")

	var payload recomputePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	payslip, err := h.Payroll.Recompute(r.Context(), user.TenantID, payslipID, payload.TotalAllowances, payload.TotalDeductions)
	if err != nil {
		h.failPayrollError(w, err, requestID)
		return
	}
	if err := h.Audit.Record(r.Context(), user.TenantID, user.UserID, "payroll.payslip.recompute", "payslip", payslipID, requestID, shared.ClientIP(r), nil, payload); err != nil {
		slog.Warn("audit payroll.payslip.recompute failed", "err", err)
	}
	api.Success(w, payslip, requestID)
}

type statusPayload struct {
	Status string `json:"status"`
}

func (h *Handler) handleTransitionStatus(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	payslipID := chi.URLParam(r, "payslipID")

	var payload statusPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}
	target := strings.ToLower(strings.TrimSpace(payload.Status))
	if target != payroll.StatusDraft && target != payroll.StatusApproved && target != payroll.StatusPaid {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "unknown payslip status", requestID)
		return
	}

	idempotencyKey := r.Header.Get("Idempotency-Key")
	requestHash := middleware.RequestHash([]byte(payslipID + ":" + target))
	if idempotencyKey != "" {
		stored, found, err := middleware.CheckIdempotency(r.Context(), h.DB, user.TenantID, user.UserID, "payroll.status", idempotencyKey, requestHash)
		if errors.Is(err, middleware.ErrIdempotencyConflict) {
			api.Fail(w, http.StatusConflict, "idempotency_conflict", "idempotency key reused with a different request", requestID)
			return
		}
		if err != nil {
			slog.Warn("idempotency check failed", "err", err)
		}
		if found {
			api.Success(w, json.RawMessage(stored), requestID)
			return
		}
	}

	before, err := h.Payroll.Get(r.Context(), user.TenantID, payslipID)
	if errors.Is(err, payroll.ErrPayslipNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "payslip not found", requestID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "payslip_status_failed", "failed to load payslip", requestID)
		return
	}

	payslip, err := h.Payroll.TransitionStatus(r.Context(), user.TenantID, payslipID, target)
	if err != nil {
		h.failPayrollError(w, err, requestID)
		return
	}

	if target == payroll.StatusApproved && before.Status != payroll.StatusApproved {
		if employee, err := h.Org.GetEmployee(r.Context(), user.TenantID, payslip.EmployeeID); err == nil && employee.UserID != "" {
			if err := h.Notifier.Create(r.Context(), user.TenantID, employee.UserID, notifications.TypePayslipApproved,
				"Payslip approved", "Your payslip for "+payslip.PeriodStart.Format("2006-01-02")+" is approved."); err != nil {
				slog.Warn("payslip approval notification failed", "err", err)
			}
		}
	}
	if err := h.Audit.Record(r.Context(), user.TenantID, user.UserID, "payroll.payslip.status", "payslip", payslipID, requestID, shared.ClientIP(r),
		map[string]string{"status": before.Status}, map[string]string{"status": payslip.Status}); err != nil {
		slog.Warn("audit payroll.payslip.status failed", "err", err)
	}

	if idempotencyKey != "" {
		encoded, err := json.Marshal(payslip)
		if err != nil {
			slog.Warn("idempotency response marshal failed", "err", err)
		} else if err := middleware.SaveIdempotency(r.Context(), h.DB, user.TenantID, user.UserID, "payroll.status", idempotencyKey, requestHash, encoded); err != nil {
			slog.Warn("idempotency save failed", "err", err)
		}
	}
	api.Success(w, payslip, requestID)
}

func (h *Handler) handleDownloadPayslip(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	payslipID := chi.URLParam(r, "payslipID")

	payslip, err := h.Payroll.Get(r.Context(), user.TenantID, payslipID)
	if errors.Is(err, payroll.ErrPayslipNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "payslip not found", requestID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "payslip_download_failed", "failed to load payslip", requestID)
		return
	}
	if !h.canSeePayslip(r, user.TenantID, user.UserID, user.RoleName, payslip.EmployeeID) {
		api.Fail(w, http.StatusForbidden, "forbidden", "not allowed", requestID)
		return
	}

	filePath := payslip.FileURL
	if filePath == "" {
		employee, err := h.Org.GetEmployee(r.Context(), user.TenantID, payslip.EmployeeID)
		if err != nil {
			api.Fail(w, http.StatusInternalServerError, "payslip_download_failed", "failed to load employee", requestID)
			return
		}
		filePath, err = h.Payroll.GeneratePayslipPDF(r.Context(), user.TenantID, payslipID, employee, h.Cfg.StorageDir)
		if err != nil {
			api.Fail(w, http.StatusInternalServerError, "payslip_download_failed", "failed to render payslip", requestID)
			return
		}
	}
	http.ServeFile(w, r, filePath)
}

func (h *Handler) handleExportRegister(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	v := shared.NewValidator()
	from, _ := v.Date("from", r.URL.Query().Get("from"))
	to, _ := v.Date("to", r.URL.Query().Get("to"))
	v.DateOrder("from", from, "to", to)
	if v.Reject(w, requestID) {
		return
	}

	rows, err := h.Payroll.Register(r.Context(), user.TenantID, from, to)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "register_export_failed", "failed to export payroll register", requestID)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", "attachment; filename=payroll-register-"+time.Now().Format("2006-01-02")+".xlsx")
	if err := payroll.WriteRegisterXLSX(rows, w); err != nil {
		slog.Warn("register xlsx write failed", "err", err)
	}
}

func (h *Handler) canSeePayslip(r *http.Request, tenantID, userID, roleName, employeeID string) bool {
	if roleName != auth.RoleEmployee {
		return true
	}
	self, err := h.Org.GetEmployeeByUserID(r.Context(), tenantID, userID)
	if err != nil {
		return false
	}
	return self.ID == employeeID
}

func (h *Handler) failPayrollError(w http.ResponseWriter, err error, requestID string) {
	var validation *payroll.ValidationError
	var transition *payroll.InvalidTransitionError
	switch {
	case errors.As(err, &validation):
		shared.FailValidation(w, requestID, []shared.ValidationIssue{{Field: validation.Field, Reason: validation.Reason}})
	case errors.As(err, &transition):
		api.Fail(w, http.StatusConflict, "invalid_transition", transition.Error(), requestID)
	case errors.Is(err, payroll.ErrPayslipNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "payslip not found", requestID)
	case errors.Is(err, payroll.ErrPayslipImmutable):
		api.Fail(w, http.StatusConflict, "payslip_immutable", "paid payslips cannot change", requestID)
	case errors.Is(err, payroll.ErrNoContract):
		api.Fail(w, http.StatusBadRequest, "no_active_contract", "employee has no active contract for the period", requestID)
	default:
		api.Fail(w, http.StatusInternalServerError, "payroll_failed", "payroll operation failed", requestID)
	}
}
