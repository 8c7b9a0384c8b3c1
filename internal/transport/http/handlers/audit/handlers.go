package audithandler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"hrcrm/internal/domain/audit"
	"hrcrm/internal/domain/auth"
	"hrcrm/internal/transport/http/api"
	"hrcrm/internal/transport/http/middleware"
	"hrcrm/internal/transport/http/shared"
)

type Handler struct {
	Audit *audit.Service
	Perms middleware.PermissionStore
}

func NewHandler(auditor *audit.Service, perms middleware.PermissionStore) *Handler {
	return &Handler{Audit: auditor, Perms: perms}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/audit", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermAuditRead, h.Perms)).Get("/events", h.handleListEvents)
	})
}

func (h *Handler) handleListEvents(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	filter := audit.Filter{
		Action:     r.URL.Query().Get("action"),
		EntityType: r.URL.Query().Get("entityType"),
		ActorUser:  r.URL.Query().Get("actorUserId"),
	}
	v := shared.NewValidator()
	v.UUID("actorUserId", filter.ActorUser)
	if v.Reject(w, requestID) {
		return
	}

	page := shared.ParsePagination(r, 50, 500)
	total, err := h.Audit.Count(r.Context(), user.TenantID, filter)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "audit_list_failed", "failed to list audit events", requestID)
		return
	}
	events, err := h.Audit.List(r.Context(), user.TenantID, filter, page.Limit, page.Offset)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "audit_list_failed", "failed to list audit events", requestID)
		return
	}
	if events == nil {
		events = []audit.Event{}
	}
	api.Success(w, shared.NewPage(events, total, page), requestID)
}
