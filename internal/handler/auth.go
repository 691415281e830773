package handler

import (
	"net/http"

	"github.com/hireline/hireline/internal/auth"
	"github.com/hireline/hireline/internal/handler/dto"
	"github.com/hireline/hireline/internal/service"
)

// AuthHandler handles sign-in and the caller record.
type AuthHandler struct {
	*Handler
	svc *service.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(h *Handler, svc *service.AuthService) *AuthHandler {
	return &AuthHandler{Handler: h, svc: svc}
}

// Google handles POST /api/auth/google.
func (h *AuthHandler) Google(w http.ResponseWriter, r *http.Request) {
	var req dto.GoogleSignInRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	session, err := h.svc.SignInWithGoogle(r.Context(), service.GoogleCredentials{
		AccessToken: req.AccessToken,
		IDToken:     req.IDToken,
	})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, session)
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		h.handleServiceError(w, r, service.Invalid("email and password are required"))
		return
	}

	session, err := h.svc.AdminLogin(r.Context(), req.Email, req.Password)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, session)
}

// Me handles GET /api/auth/me.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	id := auth.MustIdentityFromContext(r.Context())

	user, err := h.svc.Me(r.Context(), id.UserID)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]dto.UserResponse{"user": dto.ToUserResponse(user)})
}
