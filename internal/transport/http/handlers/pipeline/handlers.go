package pipelinehandler

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
	"hrcrm/internal/domain/pipeline"
	"hrcrm/internal/transport/http/api"
	"hrcrm/internal/transport/http/middleware"
	"hrcrm/internal/transport/http/shared"
)

type Handler struct {
	Pipeline *pipeline.Service
	Audit    *audit.Service
	Notifier *notifications.Service
	Perms    middleware.PermissionStore
}

func NewHandler(pipelineSvc *pipeline.Service, auditor *audit.Service, notifier *notifications.Service, perms middleware.PermissionStore) *Handler {
	return &Handler{Pipeline: pipelineSvc, Audit: auditor, Notifier: notifier, Perms: perms}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/pipeline", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermPipelineRead, h.Perms)).Get("/stages", h.handleListStages)
		r.With(middleware.RequirePermission(auth.PermPipelineManage, h.Perms)).Post("/stages", h.handleCreateStage)
		r.With(middleware.RequirePermission(auth.PermPipelineManage, h.Perms)).Put("/stages/{stageID}", h.handleUpdateStage)
		r.With(middleware.RequirePermission(auth.PermPipelineManage, h.Perms)).Delete("/stages/{stageID}", h.handleDeleteStage)
		r.With(middleware.RequirePermission(auth.PermPipelineRead, h.Perms)).Get("/sources", h.handleListSources)
		r.With(middleware.RequirePermission(auth.PermPipelineManage, h.Perms)).Post("/sources", h.handleCreateSource)
		r.With(middleware.RequirePermission(auth.PermPipelineRead, h.Perms)).Get("/leads", h.handleListLeads)
		r.With(middleware.RequirePermission(auth.PermPipelineWrite, h.Perms)).Post("/leads", h.handleCreateLead)
		r.With(middleware.RequirePermission(auth.PermPipelineRead, h.Perms)).Get("/leads/{leadID}", h.handleGetLead)
		r.With(middleware.RequirePermission(auth.PermPipelineWrite, h.Perms)).Put("/leads/{leadID}", h.handleUpdateLead)
		r.With(middleware.RequirePermission(auth.PermPipelineWrite, h.Perms)).Post("/leads/{leadID}/assign", h.handleAssignLead)
		r.With(middleware.RequirePermission(auth.PermPipelineWrite, h.Perms)).Post("/leads/{leadID}/transition", h.handleTransitionStage)
		r.With(middleware.RequirePermission(auth.PermPipelineRead, h.Perms)).Get("/leads/{leadID}/history", h.handleLeadHistory)
		r.With(middleware.RequirePermission(auth.PermPipelineWrite, h.Perms)).Post("/leads/{leadID}/convert", h.handleConvertLead)
		r.With(middleware.RequirePermission(auth.PermPipelineRead, h.Perms)).Get("/metrics", h.handleStageMetrics)
		r.With(middleware.RequirePermission(auth.PermPipelineRead, h.Perms)).Get("/opportunities", h.handleListOpportunities)
		r.With(middleware.RequirePermission(auth.PermPipelineWrite, h.Perms)).Put("/opportunities/{opportunityID}", h.handleUpdateOpportunity)
	})
}

func (h *Handler) handleListStages(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	stages, err := h.Pipeline.ListStages(r.Context(), user.TenantID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "stages_list_failed", "failed to list stages", requestID)
		return
	}
	if stages == nil {
		stages = []pipeline.Stage{}
	}
	api.Success(w, stages, requestID)
}

type stagePayload struct {
	Name       string `json:"name"`
	OrderIndex int    `json:"orderIndex"`
}

func (h *Handler) handleCreateStage(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	var payload stagePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}
	v := shared.NewValidator()
	v.Required("name", payload.Name, "name required")
	if payload.OrderIndex < 0 {
		v.Add("orderIndex", "must not be negative")
	}
	if v.Reject(w, requestID) {
		return
	}

	id, err := h.Pipeline.CreateStage(r.Context(), user.TenantID, payload.Name, payload.OrderIndex)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "stage_create_failed", "failed to create stage", requestID)
		return
	}
	if err := h.Audit.Record(r.Context(), user.TenantID, user.UserID, "pipeline.stage.create", "lead_stage", id, requestID, shared.ClientIP(r), nil, payload); err != nil {
		slog.Warn("audit pipeline.stage.create failed", "err", err)
	}
	api.Created(w, map[string]string{"id": id}, requestID)
}

func (h *Handler) handleUpdateStage(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	stageID := chi.URLParam(r, "stageID")

	var payload stagePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}
	v := shared.NewValidator()
	v.Required("name", payload.Name, "name required")
	if v.Reject(w, requestID) {
		return
	}

	updated, err := h.Pipeline.UpdateStage(r.Context(), user.TenantID, stageID, payload.Name, payload.OrderIndex)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "stage_update_failed", "failed to update stage", requestID)
		return
	}
	if !updated {
		api.Fail(w, http.StatusNotFound, "not_found", "stage not found", requestID)
		return
	}
	api.Success(w, map[string]string{"id": stageID}, requestID)
}

func (h *Handler) handleDeleteStage(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	stageID := chi.URLParam(r, "stageID")

	if err := h.Pipeline.DeleteStage(r.Context(), user.TenantID, stageID); err != nil {
		if errors.Is(err, pipeline.ErrStageInUse) {
			api.Fail(w, http.StatusConflict, "stage_in_use", "stage still has leads assigned", requestID)
			return
		}
		api.Fail(w, http.StatusInternalServerError, "stage_delete_failed", "failed to delete stage", requestID)
		return
	}
	if err := h.Audit.Record(r.Context(), user.TenantID, user.UserID, "pipeline.stage.delete", "lead_stage", stageID, requestID, shared.ClientIP(r), nil, nil); err != nil {
		slog.Warn("audit pipeline.stage.delete failed", "err", err)
	}
	api.Success(w, map[string]string{"id": stageID}, requestID)
}

func (h *Handler) handleListSources(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	sources, err := h.Pipeline.ListSources(r.Context(), user.TenantID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "sources_list_failed", "failed to list sources", requestID)
		return
	}
	if sources == nil {
		sources = []pipeline.Source{}
	}
	api.Success(w, sources, requestID)
}

func (h *Handler) handleCreateSource(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	var payload struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}
	if strings.TrimSpace(payload.Name) == "" {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "name required", requestID)
		return
	}

	id, err := h.Pipeline.CreateSource(r.Context(), user.TenantID, payload.Name)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "source_create_failed", "failed to create source", requestID)
		return
	}
	api.Created(w, map[string]string{"id": id}, requestID)
}

func (h *Handler) handleListLeads(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	stageID := r.URL.Query().Get("stageId")
	page := shared.ParsePagination(r, 50, 200)
	total, err := h.Pipeline.CountLeads(r.Context(), user.TenantID, stageID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "leads_list_failed", "failed to list leads", requestID)
		return
	}
	leads, err := h.Pipeline.ListLeads(r.Context(), user.TenantID, stageID, page.Limit, page.Offset)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "leads_list_failed", "failed to list leads", requestID)
		return
	}
	if leads == nil {
		leads = []pipeline.Lead{}
	}
	api.Success(w, shared.NewPage(leads, total, page), requestID)
}

func (h *Handler) handleGetLead(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	lead, err := h.Pipeline.GetLead(r.Context(), user.TenantID, chi.URLParam(r, "leadID"))
	if errors.Is(err, pipeline.ErrLeadNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "lead not found", requestID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "lead_get_failed", "failed to load lead", requestID)
		return
	}
	api.Success(w, lead, requestID)
}

func (h *Handler) handleCreateLead(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	var payload pipeline.Lead
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}
	v := shared.NewValidator()
	v.Required("companyName", payload.CompanyName, "company name required")
	v.UUID("sourceId", payload.SourceID)
	v.UUID("currentStageId", payload.CurrentStageID)
	v.UUID("assignedTo", payload.AssignedTo)
	if v.Reject(w, requestID) {
		return
	}
	if payload.Status == "" {
		payload.Status = pipeline.LeadStatusNew
	}

	id, err := h.Pipeline.CreateLead(r.Context(), user.TenantID, payload)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "lead_create_failed", "failed to create lead", requestID)
		return
	}
	if err := h.Audit.Record(r.Context(), user.TenantID, user.UserID, "pipeline.lead.create", "lead", id, requestID, shared.ClientIP(r), nil, payload); err != nil {
		slog.Warn("audit pipeline.lead.create failed", "err", err)
	}
	api.Created(w, map[string]string{"id": id}, requestID)
}

func (h *Handler) handleUpdateLead(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	leadID := chi.URLParam(r, "leadID")

	var payload pipeline.Lead
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}
	v := shared.NewValidator()
	v.Required("companyName", payload.CompanyName, "company name required")
	v.Enum("status", payload.Status, pipeline.LeadStatuses, "unknown lead status")
	if v.Reject(w, requestID) {
		return
	}

	updated, err := h.Pipeline.UpdateLead(r.Context(), user.TenantID, leadID, payload)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "lead_update_failed", "failed to update lead", requestID)
		return
	}
	if !updated {
		api.Fail(w, http.StatusConflict, "lead_locked", "lead not found or already converted", requestID)
		return
	}
	api.Success(w, map[string]string{"id": leadID}, requestID)
}

func (h *Handler) handleAssignLead(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	leadID := chi.URLParam(r, "leadID")

	var payload struct {
		UserID string `json:"userId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	assigned, err := h.Pipeline.AssignLead(r.Context(), user.TenantID, leadID, payload.UserID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "lead_assign_failed", "failed to assign lead", requestID)
		return
	}
	if !assigned {
		api.Fail(w, http.StatusNotFound, "not_found", "lead not found", requestID)
		return
	}
	if payload.UserID != "" {
		if err := h.Notifier.Create(r.Context(), user.TenantID, payload.UserID, notifications.TypeLeadAssigned,
			"Lead assigned to you", "A lead was assigned to you in the sales pipeline."); err != nil {
			slog.Warn("lead assignment notification failed", "err", err)
		}
	}
	api.Success(w, map[string]string{"id": leadID}, requestID)
}

type transitionPayload struct {
	FromStageID string `json:"fromStageId"`
	ToStageID   string `json:"toStageId"`
	Notes       string `json:"notes"`
}

func (h *Handler) handleTransitionStage(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	leadID := chi.URLParam(r, "leadID")

	var payload transitionPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}
	v := shared.NewValidator()
	v.Required("toStageId", payload.ToStageID, "target stage required")
	v.UUID("fromStageId", payload.FromStageID)
	v.UUID("toStageId", payload.ToStageID)
	if v.Reject(w, requestID) {
		return
	}

	err := h.Pipeline.TransitionStage(r.Context(), user.TenantID, leadID, payload.FromStageID, payload.ToStageID, user.UserID, payload.Notes)
	if err != nil {
		var stale *pipeline.StaleStageError
		switch {
		case errors.As(err, &stale):
			api.FailWithDetails(w, http.StatusConflict, "stale_stage", stale.Error(), map[string]string{
				"currentStageId": stale.CurrentStageID,
			}, requestID)
		case errors.Is(err, pipeline.ErrLeadNotFound):
			api.Fail(w, http.StatusNotFound, "not_found", "lead not found", requestID)
		case errors.Is(err, pipeline.ErrStageNotFound):
			api.Fail(w, http.StatusBadRequest, "unknown_stage", "target stage does not exist", requestID)
		default:
			api.Fail(w, http.StatusInternalServerError, "transition_failed", "failed to move lead", requestID)
		}
		return
	}

	if err := h.Audit.Record(r.Context(), user.TenantID, user.UserID, "pipeline.lead.transition", "lead", leadID, requestID, shared.ClientIP(r),
		map[string]string{"stageId": payload.FromStageID}, map[string]string{"stageId": payload.ToStageID}); err != nil {
		slog.Warn("audit pipeline.lead.transition failed", "err", err)
	}
	api.Success(w, map[string]string{"id": leadID, "stageId": payload.ToStageID}, requestID)
}

func (h *Handler) handleLeadHistory(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	history, err := h.Pipeline.ListHistoryForLead(r.Context(), user.TenantID, chi.URLParam(r, "leadID"))
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "history_list_failed", "failed to list stage history", requestID)
		return
	}
	if history == nil {
		history = []pipeline.StageHistoryEntry{}
	}
	api.Success(w, history, requestID)
}

type convertPayload struct {
	Name              string  `json:"name"`
	Amount            float64 `json:"amount"`
	Currency          string  `json:"currency"`
	ExpectedCloseDate string  `json:"expectedCloseDate"`
}

func (h *Handler) handleConvertLead(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	leadID := chi.URLParam(r, "leadID")

	var payload convertPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}
	v := shared.NewValidator()
	v.NonNegative("amount", payload.Amount, "must not be negative")
	var expectedClose *time.Time
	if payload.ExpectedCloseDate != "" {
		if parsed, ok := v.Date("expectedCloseDate", payload.ExpectedCloseDate); ok {
			expectedClose = &parsed
		}
	}
	if v.Reject(w, requestID) {
		return
	}

	opp := pipeline.Opportunity{
		Name:              payload.Name,
		Amount:            payload.Amount,
		Currency:          payload.Currency,
		ExpectedCloseDate: expectedClose,
	}
	id, err := h.Pipeline.ConvertLead(r.Context(), user.TenantID, leadID, opp)
	if err != nil {
		switch {
		case errors.Is(err, pipeline.ErrLeadNotFound):
			api.Fail(w, http.StatusNotFound, "not_found", "lead not found", requestID)
		case errors.Is(err, pipeline.ErrLeadAlreadyConverted):
			api.Fail(w, http.StatusConflict, "already_converted", "lead is already converted", requestID)
		default:
			api.Fail(w, http.StatusInternalServerError, "convert_failed", "failed to convert lead", requestID)
		}
		return
	}
	if err := h.Audit.Record(r.Context(), user.TenantID, user.UserID, "pipeline.lead.convert", "lead", leadID, requestID, shared.ClientIP(r), nil, map[string]string{"opportunityId": id}); err != nil {
		slog.Warn("audit pipeline.lead.convert failed", "err", err)
	}
	api.Created(w, map[string]string{"opportunityId": id}, requestID)
}

func (h *Handler) handleStageMetrics(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	var rng pipeline.DateRange
	v := shared.NewValidator()
	if raw := r.URL.Query().Get("from"); raw != "" {
		if parsed, ok := v.Date("from", raw); ok {
			rng.From = &parsed
		}
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		if parsed, ok := v.Date("to", raw); ok {
			rng.To = &parsed
		}
	}
	if v.Reject(w, requestID) {
		return
	}

	metrics, err := h.Pipeline.ComputeStageMetrics(r.Context(), user.TenantID, rng)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "metrics_failed", "failed to compute stage metrics", requestID)
		return
	}
	api.Success(w, metrics, requestID)
}

func (h *Handler) handleListOpportunities(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	status := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("status")))
	page := shared.ParsePagination(r, 50, 200)
	total, err := h.Pipeline.CountOpportunities(r.Context(), user.TenantID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "opportunities_list_failed", "failed to list opportunities", requestID)
		return
	}
	opportunities, err := h.Pipeline.ListOpportunities(r.Context(), user.TenantID, status, page.Limit, page.Offset)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "opportunities_list_failed", "failed to list opportunities", requestID)
		return
	}
	if opportunities == nil {
		opportunities = []pipeline.Opportunity{}
	}
	api.Success(w, shared.NewPage(opportunities, total, page), requestID)
}

func (h *Handler) handleUpdateOpportunity(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	opportunityID := chi.URLParam(r, "opportunityID")

	var payload pipeline.Opportunity
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}
	v := shared.NewValidator()
	v.Required("name", payload.Name, "name required")
	v.Enum("status", payload.Status, pipeline.OpportunityStatuses, "unknown opportunity status")
	v.NonNegative("amount", payload.Amount, "must not be negative")
	if v.Reject(w, requestID) {
		return
	}

	updated, err := h.Pipeline.UpdateOpportunity(r.Context(), user.TenantID, opportunityID, payload)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "opportunity_update_failed", "failed to update opportunity", requestID)
		return
	}
	if !updated {
		api.Fail(w, http.StatusNotFound, "not_found", "opportunity not found", requestID)
		return
	}
	api.Success(w, map[string]string{"id": opportunityID}, requestID)
}
