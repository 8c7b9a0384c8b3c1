package documentshandler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"hrcrm/internal/domain/audit"
	"hrcrm/internal/domain/auth"
	"hrcrm/internal/domain/documents"
	"hrcrm/internal/domain/notifications"
	"hrcrm/internal/domain/org"
	"hrcrm/internal/transport/http/api"
	"hrcrm/internal/transport/http/middleware"
	"hrcrm/internal/transport/http/shared"
)

type Handler struct {
	Documents *documents.Service
	Org       *org.Service
	Audit     *audit.Service
	Notifier  *notifications.Service
	Perms     middleware.PermissionStore
}

func NewHandler(docs *documents.Service, orgSvc *org.Service, auditor *audit.Service, notifier *notifications.Service, perms middleware.PermissionStore) *Handler {
	return &Handler{Documents: docs, Org: orgSvc, Audit: auditor, Notifier: notifier, Perms: perms}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/documents", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermDocumentsRead, h.Perms)).Get("/", h.handleList)
		r.With(middleware.RequirePermission(auth.PermDocumentsWrite, h.Perms)).Post("/", h.handleUpload)
		r.With(middleware.RequirePermission(auth.PermDocumentsRead, h.Perms)).Get("/{documentID}", h.handleGet)
		r.With(middleware.RequirePermission(auth.PermDocumentsRead, h.Perms)).Get("/{documentID}/download", h.handleDownload)
		r.With(middleware.RequirePermission(auth.PermDocumentsWrite, h.Perms)).Delete("/{documentID}", h.handleDelete)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
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
	total, err := h.Documents.Count(r.Context(), user.TenantID, employeeID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "documents_list_failed", "failed to list documents", requestID)
		return
	}
	docs, err := h.Documents.List(r.Context(), user.TenantID, employeeID, page.Limit, page.Offset)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "documents_list_failed", "failed to list documents", requestID)
		return
	}
	if docs == nil {
		docs = []documents.Document{}
	}
	api.Success(w, shared.NewPage(docs, total, page), requestID)
}

func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	if err := r.ParseMultipartForm(documents.MaxDocumentBytes); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "expected a multipart form with a file field", requestID)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "file field is required", requestID)
		return
	}
	defer file.Close()

	employeeID := r.FormValue("employeeId")
	v := shared.NewValidator()
	v.UUID("employeeId", employeeID)
	if v.Reject(w, requestID) {
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	doc, err := h.Documents.Upload(r.Context(), user.TenantID, employeeID, user.UserID, header.Filename, contentType, file)
	if err != nil {
		if errors.Is(err, documents.ErrTooLarge) {
			api.Fail(w, http.StatusRequestEntityTooLarge, "file_too_large", "document exceeds the size limit", requestID)
			return
		}
		api.Fail(w, http.StatusInternalServerError, "document_upload_failed", "failed to store document", requestID)
		return
	}

	if employeeID != "" {
		if employee, err := h.Org.GetEmployee(r.Context(), user.TenantID, employeeID); err == nil && employee.UserID != "" && employee.UserID != user.UserID {
			if err := h.Notifier.Create(r.Context(), user.TenantID, employee.UserID, notifications.TypeDocumentUploaded,
				"New document on your file", "The document "+doc.FileName+" was added to your employee file."); err != nil {
				slog.Warn("document upload notification failed", "err", err)
			}
		}
	}
	if err := h.Audit.Record(r.Context(), user.TenantID, user.UserID, "documents.upload", "document", doc.ID, requestID, shared.ClientIP(r), nil,
		map[string]any{"fileName": doc.FileName, "sizeBytes": doc.SizeBytes}); err != nil {
		slog.Warn("audit documents.upload failed", "err", err)
	}
	api.Created(w, doc, requestID)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	doc, err := h.Documents.Get(r.Context(), user.TenantID, chi.URLParam(r, "documentID"))
	if errors.Is(err, documents.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "document not found", requestID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "document_get_failed", "failed to load document", requestID)
		return
	}
	if !h.canSeeDocument(r, user, doc) {
		api.Fail(w, http.StatusForbidden, "forbidden", "insufficient permissions", requestID)
		return
	}
	api.Success(w, doc, requestID)
}

func (h *Handler) handleDownload(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	doc, body, err := h.Documents.Open(r.Context(), user.TenantID, chi.URLParam(r, "documentID"))
	if errors.Is(err, documents.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "document not found", requestID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "document_download_failed", "failed to open document", requestID)
		return
	}
	defer body.Close()

	if !h.canSeeDocument(r, user, doc) {
		api.Fail(w, http.StatusForbidden, "forbidden", "insufficient permissions", requestID)
		return
	}

	w.Header().Set("Content-Type", doc.ContentType)
	w.Header().Set("Content-Length", strconv.FormatInt(doc.SizeBytes, 10))
	w.Header().Set("Content-Disposition", `attachment; filename="`+doc.FileName+`"`)
	if _, err := io.Copy(w, body); err != nil {
		slog.Warn("document download interrupted", "documentId", doc.ID, "err", err)
	}
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	documentID := chi.URLParam(r, "documentID")

	if err := h.Documents.Delete(r.Context(), user.TenantID, documentID); err != nil {
		if errors.Is(err, documents.ErrNotFound) {
			api.Fail(w, http.StatusNotFound, "not_found", "document not found", requestID)
			return
		}
		api.Fail(w, http.StatusInternalServerError, "document_delete_failed", "failed to delete document", requestID)
		return
	}
	if err := h.Audit.Record(r.Context(), user.TenantID, user.UserID, "documents.delete", "document", documentID, requestID, shared.ClientIP(r), nil, nil); err != nil {
		slog.Warn("audit documents.delete failed", "err", err)
	}
	api.Success(w, map[string]string{"id": documentID}, requestID)
}

// Employees only see documents attached to their own employee record.
func (h *Handler) canSeeDocument(r *http.Request, user auth.UserContext, doc *documents.Document) bool {
	if user.RoleName != auth.RoleEmployee {
		return true
	}
	if doc.EmployeeID == "" {
		return false
	}
	self, err := h.Org.GetEmployeeByUserID(r.Context(), user.TenantID, user.UserID)
	return err == nil && self.ID == doc.EmployeeID
}
