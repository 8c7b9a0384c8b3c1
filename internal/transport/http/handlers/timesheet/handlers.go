package timesheethandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"hrcrm/internal/domain/audit"
	"hrcrm/internal/domain/auth"
	"hrcrm/internal/domain/notifications"
	"hrcrm/internal/domain/org"
	"hrcrm/internal/domain/timesheet"
	"hrcrm/internal/transport/http/api"
	"hrcrm/internal/transport/http/middleware"
	"hrcrm/internal/transport/http/shared"
)

type Handler struct {
	Timesheet *timesheet.Service
	Org       *org.Service
	Audit     *audit.Service
	Notifier  *notifications.Service
	Perms     middleware.PermissionStore
}

func NewHandler(ts *timesheet.Service, orgSvc *org.Service, auditor *audit.Service, notifier *notifications.Service, perms middleware.PermissionStore) *Handler {
	return &Handler{Timesheet: ts, Org: orgSvc, Audit: auditor, Notifier: notifier, Perms: perms}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/timesheet", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermTimesheetRead, h.Perms)).Get("/logs", h.handleListLogs)
		r.With(middleware.RequirePermission(auth.PermTimesheetWrite, h.Perms)).Post("/logs", h.handleSubmitLog)
		r.With(middleware.RequirePermission(auth.PermTimesheetRead, h.Perms)).Get("/logs/{entryID}", h.handleGetLog)
		r.With(middleware.RequirePermission(auth.PermTimesheetApprove, h.Perms)).Post("/logs/{entryID}/decision", h.handleDecideLog)
	})
}

func (h *Handler) handleListLogs(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	employeeID := r.URL.Query().Get("employeeId")
	status := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("status")))

	// Employees see their own entries regardless of the filter they send.
	if user.RoleName == auth.RoleEmployee {
		self, err := h.Org.GetEmployeeByUserID(r.Context(), user.TenantID, user.UserID)
		if err != nil {
			api.Fail(w, http.StatusNotFound, "not_found", "no employee record for user", requestID)
			return
		}
		employeeID = self.ID
	}

	page := shared.ParsePagination(r, 50, 200)
	total, err := h.Timesheet.Count(r.Context(), user.TenantID, employeeID, status)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "worklog_list_failed", "failed to list work logs", requestID)
		return
	}
	entries, err := h.Timesheet.List(r.Context(), user.TenantID, employeeID, status, page.Limit, page.Offset)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "worklog_list_failed", "failed to list work logs", requestID)
		return
	}
	if entries == nil {
		entries = []timesheet.WorkLogEntry{}
	}
	api.Success(w, shared.NewPage(entries, total, page), requestID)
}

func (h *Handler) handleGetLog(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	entry, err := h.Timesheet.Get(r.Context(), user.TenantID, chi.URLParam(r, "entryID"))
	if err != nil {
		api.Fail(w, http.StatusNotFound, "not_found", "work log entry not found", requestID)
		return
	}
	api.Success(w, entry, requestID)
}

type workLogPayload struct {
	EmployeeID   string  `json:"employeeId"`
	Date         string  `json:"date"`
	StartTime    string  `json:"startTime"`
	EndTime      string  `json:"endTime"`
	BreakMinutes int     `json:"breakMinutes"`
	Multiplier   float64 `json:"multiplier"`
	Notes        string  `json:"notes"`
}

func (h *Handler) handleSubmitLog(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	var payload workLogPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}
	if payload.Multiplier == 0 {
		payload.Multiplier = 1
	}

	v := shared.NewValidator()
	date, _ := v.Date("date", payload.Date)
	start, err := shared.ParseClock(payload.StartTime)
	if err != nil {
		v.Add("startTime", "must be a valid time in HH:MM format")
	}
	end, err := shared.ParseClock(payload.EndTime)
	if err != nil {
		v.Add("endTime", "must be a valid time in HH:MM format")
	}
	v.NonNegative("breakMinutes", float64(payload.BreakMinutes), "must not be negative")
	v.Positive("multiplier", payload.Multiplier, "must be positive")
	if v.Reject(w, requestID) {
		return
	}

	employeeID := payload.EmployeeID
	if user.RoleName == auth.RoleEmployee || employeeID == "" {
		self, err := h.Org.GetEmployeeByUserID(r.Context(), user.TenantID, user.UserID)
		if err != nil {
			api.Fail(w, http.StatusNotFound, "not_found", "no employee record for user", requestID)
			return
		}
		employeeID = self.ID
	}

	entry := timesheet.WorkLogEntry{
		EmployeeID:   employeeID,
		Date:         date,
		StartTime:    combine(date, start),
		EndTime:      combine(date, end),
		BreakMinutes: payload.BreakMinutes,
		Multiplier:   payload.Multiplier,
		Notes:        payload.Notes,
	}
	id, err := h.Timesheet.Submit(r.Context(), user.TenantID, entry)
	if err != nil {
		if errors.Is(err, timesheet.ErrEndBeforeStart) || errors.Is(err, timesheet.ErrBreakExceedsShift) {
			shared.FailValidation(w, requestID, []shared.ValidationIssue{{Field: "endTime", Reason: err.Error()}})
			return
		}
		api.Fail(w, http.StatusInternalServerError, "worklog_submit_failed", "failed to submit work log", requestID)
		return
	}
	if err := h.Audit.Record(r.Context(), user.TenantID, user.UserID, "timesheet.log.submit", "work_log", id, requestID, shared.ClientIP(r), nil, payload); err != nil {
		slog.Warn("audit timesheet.log.submit failed", "err", err)
	}
	api.Created(w, map[string]string{"id": id}, requestID)
}

type decisionPayload struct {
	Status string `json:"status"`
}

func (h *Handler) handleDecideLog(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	entryID := chi.URLParam(r, "entryID")

	var payload decisionPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}
	target := strings.ToLower(strings.TrimSpace(payload.Status))
	if target != timesheet.StatusApproved && target != timesheet.StatusRejected {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "status must be approved or rejected", requestID)
		return
	}

	entry, err := h.Timesheet.Get(r.Context(), user.TenantID, entryID)
	if err != nil {
		api.Fail(w, http.StatusNotFound, "not_found", "work log entry not found", requestID)
		return
	}

	if err := h.Timesheet.Decide(r.Context(), user.TenantID, entryID, target, user.UserID); err != nil {
		if errors.Is(err, timesheet.ErrInvalidStatusChange) {
			api.Fail(w, http.StatusConflict, "invalid_transition", "work log entry is not open for a decision", requestID)
			return
		}
		api.Fail(w, http.StatusInternalServerError, "worklog_decide_failed", "failed to record decision", requestID)
		return
	}

	if employee, err := h.Org.GetEmployee(r.Context(), user.TenantID, entry.EmployeeID); err == nil && employee.UserID != "" {
		if err := h.Notifier.Create(r.Context(), user.TenantID, employee.UserID, notifications.TypeWorkLogDecided,
			"Work log "+target, "Your work log for "+entry.Date.Format("2006-01-02")+" was "+target+"."); err != nil {
			slog.Warn("work log decision notification failed", "err", err)
		}
	}
	if err := h.Audit.Record(r.Context(), user.TenantID, user.UserID, "timesheet.log.decide", "work_log", entryID, requestID, shared.ClientIP(r), map[string]string{"status": entry.Status}, map[string]string{"status": target}); err != nil {
		slog.Warn("audit timesheet.log.decide failed", "err", err)
	}
	api.Success(w, map[string]string{"id": entryID, "status": target}, requestID)
}

func combine(date, clock time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(),
		clock.Hour(), clock.Minute(), 0, 0, time.UTC)
}
