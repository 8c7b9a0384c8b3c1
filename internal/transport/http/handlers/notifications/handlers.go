package notificationshandler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"hrcrm/internal/domain/notifications"
	"hrcrm/internal/transport/http/api"
	"hrcrm/internal/transport/http/middleware"
	"hrcrm/internal/transport/http/shared"
)

// Handler serves the signed-in user's own notifications. There is no
// cross-user access, so authentication alone gates every route.
type Handler struct {
	Notifications *notifications.Service
}

func NewHandler(svc *notifications.Service) *Handler {
	return &Handler{Notifications: svc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/notifications", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.Get("/count", h.handleCount)
		r.Post("/{notificationID}/read", h.handleMarkRead)
		r.Post("/read-all", h.handleMarkAllRead)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestID)
		return
	}

	unreadOnly := r.URL.Query().Get("unread") == "true"
	page := shared.ParsePagination(r, 50, 200)
	total, err := h.Notifications.Count(r.Context(), user.TenantID, user.UserID, unreadOnly)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "notifications_list_failed", "failed to list notifications", requestID)
		return
	}
	items, err := h.Notifications.List(r.Context(), user.TenantID, user.UserID, unreadOnly, page.Limit, page.Offset)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "notifications_list_failed", "failed to list notifications", requestID)
		return
	}
	if items == nil {
		items = []notifications.Notification{}
	}
	api.Success(w, shared.NewPage(items, total, page), requestID)
}

func (h *Handler) handleCount(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestID)
		return
	}

	unread, err := h.Notifications.Count(r.Context(), user.TenantID, user.UserID, true)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "notifications_count_failed", "failed to count notifications", requestID)
		return
	}
	api.Success(w, map[string]int{"unread": unread}, requestID)
}

func (h *Handler) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestID)
		return
	}
	notificationID := chi.URLParam(r, "notificationID")

	marked, err := h.Notifications.MarkRead(r.Context(), user.TenantID, user.UserID, notificationID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "notification_update_failed", "failed to mark notification read", requestID)
		return
	}
	if !marked {
		api.Fail(w, http.StatusNotFound, "not_found", "notification not found or already read", requestID)
		return
	}
	api.Success(w, map[string]string{"id": notificationID}, requestID)
}

func (h *Handler) handleMarkAllRead(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestID)
		return
	}

	marked, err := h.Notifications.MarkAllRead(r.Context(), user.TenantID, user.UserID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "notification_update_failed", "failed to mark notifications read", requestID)
		return
	}
	api.Success(w, map[string]int{"marked": marked}, requestID)
}
