package orghandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"hrcrm/internal/domain/audit"
	"hrcrm/internal/domain/auth"
	"hrcrm/internal/domain/org"
	"hrcrm/internal/transport/http/api"
	"hrcrm/internal/transport/http/middleware"
	"hrcrm/internal/transport/http/shared"
)

type Handler struct {
	Org   *org.Service
	Audit *audit.Service
	Perms middleware.PermissionStore
}

func NewHandler(orgSvc *org.Service, auditor *audit.Service, perms middleware.PermissionStore) *Handler {
	return &Handler{Org: orgSvc, Audit: auditor, Perms: perms}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/org", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermEmployeesRead, h.Perms)).Get("/employees", h.handleListEmployees)
		r.With(middleware.RequirePermission(auth.PermEmployeesWrite, h.Perms)).Post("/employees", h.handleCreateEmployee)
		r.With(middleware.RequirePermission(auth.PermEmployeesRead, h.Perms)).Get("/employees/{employeeID}", h.handleGetEmployee)
		r.With(middleware.RequirePermission(auth.PermEmployeesWrite, h.Perms)).Put("/employees/{employeeID}", h.handleUpdateEmployee)
		r.With(middleware.RequirePermission(auth.PermOrgRead, h.Perms)).Get("/departments", h.handleListDepartments)
		r.With(middleware.RequirePermission(auth.PermOrgRead, h.Perms)).Get("/departments/options", h.handleDepartmentOptions)
		r.With(middleware.RequirePermission(auth.PermOrgWrite, h.Perms)).Post("/departments", h.handleCreateDepartment)
		r.With(middleware.RequirePermission(auth.PermOrgWrite, h.Perms)).Put("/departments/{departmentID}", h.handleUpdateDepartment)
		r.With(middleware.RequirePermission(auth.PermOrgWrite, h.Perms)).Delete("/departments/{departmentID}", h.handleDeleteDepartment)
		r.With(middleware.RequirePermission(auth.PermContractsRead, h.Perms)).Get("/employees/{employeeID}/contracts", h.handleListContracts)
		r.With(middleware.RequirePermission(auth.PermContractsWrite, h.Perms)).Post("/employees/{employeeID}/contracts", h.handleCreateContract)
		r.With(middleware.RequirePermission(auth.PermContractsWrite, h.Perms)).Post("/contracts/{contractID}/close", h.handleCloseContract)
	})
}

func (h *Handler) handleListEmployees(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	page := shared.ParsePagination(r, 50, 200)
	total, err := h.Org.CountEmployees(r.Context(), user.TenantID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "employees_list_failed", "failed to list employees", requestID)
		return
	}
	employees, err := h.Org.ListEmployees(r.Context(), user.TenantID, page.Limit, page.Offset)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "employees_list_failed", "failed to list employees", requestID)
		return
	}
	if employees == nil {
		employees = []org.Employee{}
	}
	api.Success(w, shared.NewPage(employees, total, page), requestID)
}

func (h *Handler) handleGetEmployee(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	employee, err := h.Org.GetEmployee(r.Context(), user.TenantID, chi.URLParam(r, "employeeID"))
	if errors.Is(err, org.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "employee not found", requestID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "employee_get_failed", "failed to load employee", requestID)
		return
	}
	api.Success(w, employee, requestID)
}

func (h *Handler) handleCreateEmployee(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	var payload org.Employee
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	v := shared.NewValidator()
	v.Required("firstName", payload.FirstName, "first name required")
	v.Required("lastName", payload.LastName, "last name required")
	v.Required("email", payload.Email, "email required")
	v.UUID("departmentId", payload.DepartmentID)
	v.UUID("managerId", payload.ManagerID)
	if v.Reject(w, requestID) {
		return
	}
	if payload.Status == "" {
		payload.Status = org.EmployeeStatusActive
	}

	id, err := h.Org.CreateEmployee(r.Context(), user.TenantID, payload)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "employee_create_failed", "failed to create employee", requestID)
		return
	}
	if err := h.Audit.Record(r.Context(), user.TenantID, user.UserID, "org.employee.create", "employee", id, requestID, shared.ClientIP(r), nil, payload); err != nil {
		slog.Warn("audit org.employee.create failed", "err", err)
	}
	api.Created(w, map[string]string{"id": id}, requestID)
}

func (h *Handler) handleUpdateEmployee(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	employeeID := chi.URLParam(r, "employeeID")

	before, err := h.Org.GetEmployee(r.Context(), user.TenantID, employeeID)
	if errors.Is(err, org.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "employee not found", requestID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "employee_update_failed", "failed to load employee", requestID)
		return
	}

	var payload org.Employee
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}
	v := shared.NewValidator()
	v.Required("firstName", payload.FirstName, "first name required")
	v.Required("lastName", payload.LastName, "last name required")
	v.Enum("status", payload.Status, []string{org.EmployeeStatusActive, org.EmployeeStatusTerminated}, "unknown status")
	if v.Reject(w, requestID) {
		return
	}

	updated, err := h.Org.UpdateEmployee(r.Context(), user.TenantID, employeeID, payload)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "employee_update_failed", "failed to update employee", requestID)
		return
	}
	if !updated {
		api.Fail(w, http.StatusNotFound, "not_found", "employee not found", requestID)
		return
	}
	if err := h.Audit.Record(r.Context(), user.TenantID, user.UserID, "org.employee.update", "employee", employeeID, requestID, shared.ClientIP(r), before, payload); err != nil {
		slog.Warn("audit org.employee.update failed", "err", err)
	}
	api.Success(w, map[string]string{"id": employeeID}, requestID)
}

func (h *Handler) handleListDepartments(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	departments, err := h.Org.ListDepartments(r.Context(), user.TenantID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "departments_list_failed", "failed to list departments", requestID)
		return
	}
	if departments == nil {
		departments = []org.Department{}
	}
	api.Success(w, departments, requestID)
}

func (h *Handler) handleDepartmentOptions(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	options, err := h.Org.DepartmentOptions(r.Context(), user.TenantID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "department_options_failed", "failed to build department options", requestID)
		return
	}
	api.Success(w, options, requestID)
}

func (h *Handler) handleCreateDepartment(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	var payload org.Department
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}
	v := shared.NewValidator()
	v.Required("name", payload.Name, "name required")
	v.UUID("parentId", payload.ParentID)
	v.UUID("managerId", payload.ManagerID)
	if v.Reject(w, requestID) {
		return
	}

	id, err := h.Org.CreateDepartment(r.Context(), user.TenantID, payload)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "department_create_failed", "failed to create department", requestID)
		return
	}
	if err := h.Audit.Record(r.Context(), user.TenantID, user.UserID, "org.department.create", "department", id, requestID, shared.ClientIP(r), nil, payload); err != nil {
		slog.Warn("audit org.department.create failed", "err", err)
	}
	api.Created(w, map[string]string{"id": id}, requestID)
}

func (h *Handler) handleUpdateDepartment(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	departmentID := chi.URLParam(r, "departmentID")

	var payload org.Department
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}
	v := shared.NewValidator()
	v.Required("name", payload.Name, "name required")
	v.UUID("parentId", payload.ParentID)
	if payload.ParentID == departmentID {
		v.Add("parentId", "department cannot be its own parent")
	}
	if v.Reject(w, requestID) {
		return
	}

	updated, err := h.Org.UpdateDepartment(r.Context(), user.TenantID, departmentID, payload)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "department_update_failed", "failed to update department", requestID)
		return
	}
	if !updated {
		api.Fail(w, http.StatusNotFound, "not_found", "department not found", requestID)
		return
	}
	api.Success(w, map[string]string{"id": departmentID}, requestID)
}

func (h *Handler) handleDeleteDepartment(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	departmentID := chi.URLParam(r, "departmentID")

	inUse, err := h.Org.DepartmentHasEmployees(r.Context(), user.TenantID, departmentID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "department_delete_failed", "failed to delete department", requestID)
		return
	}
	if inUse {
		api.Fail(w, http.StatusConflict, "department_in_use", "department still has employees assigned", requestID)
		return
	}
	if err := h.Org.DeleteDepartment(r.Context(), user.TenantID, departmentID); err != nil {
		api.Fail(w, http.StatusInternalServerError, "department_delete_failed", "failed to delete department", requestID)
		return
	}
	if err := h.Audit.Record(r.Context(), user.TenantID, user.UserID, "org.department.delete", "department", departmentID, requestID, shared.ClientIP(r), nil, nil); err != nil {
		slog.Warn("audit org.department.delete failed", "err", err)
	}
	api.Success(w, map[string]string{"id": departmentID}, requestID)
}

func (h *Handler) handleListContracts(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	contracts, err := h.Org.ListContracts(r.Context(), user.TenantID, chi.URLParam(r, "employeeID"))
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "contracts_list_failed", "failed to list contracts", requestID)
		return
	}
	if contracts == nil {
		contracts = []org.Contract{}
	}
	api.Success(w, contracts, requestID)
}

type contractPayload struct {
	BaseSalary          float64 `json:"baseSalary"`
	Currency            string  `json:"currency"`
	StandardDailyHours  int     `json:"standardDailyHours"`
	WorkingDaysPerMonth int     `json:"workingDaysPerMonth"`
	StartDate           string  `json:"startDate"`
}

func (h *Handler) handleCreateContract(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	employeeID := chi.URLParam(r, "employeeID")

	var payload contractPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}
	v := shared.NewValidator()
	v.Positive("baseSalary", payload.BaseSalary, "base salary must be positive")
	v.Required("currency", payload.Currency, "currency required")
	startDate, _ := v.Date("startDate", payload.StartDate)
	if v.Reject(w, requestID) {
		return
	}

	contract := org.Contract{
		EmployeeID:          employeeID,
		BaseSalary:          payload.BaseSalary,
		Currency:            payload.Currency,
		StandardDailyHours:  payload.StandardDailyHours,
		WorkingDaysPerMonth: payload.WorkingDaysPerMonth,
		StartDate:           startDate,
	}
	id, err := h.Org.CreateContract(r.Context(), user.TenantID, contract)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "contract_create_failed", "failed to create contract", requestID)
		return
	}
	if err := h.Audit.Record(r.Context(), user.TenantID, user.UserID, "org.contract.create", "contract", id, requestID, shared.ClientIP(r), nil, payload); err != nil {
		slog.Warn("audit org.contract.create failed", "err", err)
	}
	api.Created(w, map[string]string{"id": id}, requestID)
}

func (h *Handler) handleCloseContract(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	contractID := chi.URLParam(r, "contractID")

	var payload struct {
		EndDate string `json:"endDate"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}
	v := shared.NewValidator()
	endDate, _ := v.Date("endDate", payload.EndDate)
	if v.Reject(w, requestID) {
		return
	}

	closed, err := h.Org.CloseContract(r.Context(), user.TenantID, contractID, endDate)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "contract_close_failed", "failed to close contract", requestID)
		return
	}
	if !closed {
		api.Fail(w, http.StatusNotFound, "not_found", "contract not found or already closed", requestID)
		return
	}
	if err := h.Audit.Record(r.Context(), user.TenantID, user.UserID, "org.contract.close", "contract", contractID, requestID, shared.ClientIP(r), nil, payload); err != nil {
		slog.Warn("audit org.contract.close failed", "err", err)
	}
	api.Success(w, map[string]string{"id": contractID}, requestID)
}
