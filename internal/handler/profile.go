package handler

import (
	"net/http"

	"github.com/hireline/hireline/internal/auth"
	"github.com/hireline/hireline/internal/handler/dto"
	"github.com/hireline/hireline/internal/service"
)

// ProfileHandler serves the caller's own profile.
type ProfileHandler struct {
	*Handler
	svc *service.ProfileService
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(h *Handler, svc *service.ProfileService) *ProfileHandler {
	return &ProfileHandler{Handler: h, svc: svc}
}

// Get handles GET /api/user/profile.
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	caller := auth.MustIdentityFromContext(r.Context())

	profile, err := h.svc.Get(r.Context(), caller.UserID)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ProfileResponse{Profile: profile})
}

// Update handles PUT /api/user/profile.
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateProfileRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	if !h.validate(w, r, req) {
		return
	}

	caller := auth.MustIdentityFromContext(r.Context())
	user, err := h.svc.Rename(r.Context(), caller.UserID, req.Name)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]dto.UserResponse{"user": dto.ToUserResponse(user)})
}
