package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hireline/hireline/internal/auth"
	"github.com/hireline/hireline/internal/handler/dto"
	"github.com/hireline/hireline/internal/model"
	"github.com/hireline/hireline/internal/service"
)

// AdminHandler serves the administrator review endpoints.
type AdminHandler struct {
	*Handler
	svc *service.AdminService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(h *Handler, svc *service.AdminService) *AdminHandler {
	return &AdminHandler{Handler: h, svc: svc}
}

// Users handles GET /api/admin/users.
func (h *AdminHandler) Users(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.Users(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	if users == nil {
		users = []*model.UserSummary{}
	}
	writeJSON(w, http.StatusOK, dto.UsersResponse{Users: users})
}

// Applications handles GET /api/admin/applications.
func (h *AdminHandler) Applications(w http.ResponseWriter, r *http.Request) {
	apps, err := h.svc.Applications(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	if apps == nil {
		apps = []*model.AdminApplication{}
	}
	writeJSON(w, http.StatusOK, dto.ApplicationsResponse{Applications: apps})
}

// Application handles GET /api/admin/applications/{id}.
func (h *AdminHandler) Application(w http.ResponseWriter, r *http.Request) {
	app, err := h.svc.Application(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ApplicationResponse{Application: app})
}

// SetStatus handles PATCH /api/admin/applications/{id}.
func (h *AdminHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateStatusRequest
	if !h.decodeJSON(w, r, &req) || !h.validate(w, r, req) {
		return
	}

	caller := auth.MustIdentityFromContext(r.Context())
	app, err := h.svc.SetStatus(r.Context(), caller, chi.URLParam(r, "id"), req.Status)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ApplicationResponse{Application: app})
}

// Stats handles GET /api/admin/stats. The store's report is passed through.
func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	raw, err := h.svc.Stats(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(raw)
}
