package handler

import (
	"net/http"

	"deals_api/internal/api/middleware"
	"deals_api/internal/app/service"
	"deals_api/internal/common"
	"deals_api/internal/common/security"

	"github.com/go-chi/chi/v5"
)

type AuthHandler struct {
	authService *service.AuthService
	denylist    security.Denylist
}

func NewAuthHandler(authService *service.AuthService, denylist security.Denylist) *AuthHandler {
	return &AuthHandler{authService: authService, denylist: denylist}
}

func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Post("/", h.register)
	r.Post("/token", h.token)

	r.Group(func(authed chi.Router) {
		authed.Use(middleware.Authenticator(h.denylist))
		authed.Post("/logout", h.logout)
	})
}

func (h *AuthHandler) register(w http.ResponseWriter, r *http.Request) {
	var req service.RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithErr(w, err)
		return
	}

	resp, err := h.authService.Register(r.Context(), req)
	if err != nil {
		respondWithErr(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, resp)
}

// token reads form-encoded username and password.
func (h *AuthHandler) token(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		common.RespondWithError(w, http.StatusUnprocessableEntity, "Invalid form payload: "+err.Error())
		return
	}
	resp, err := h.authService.Login(r.Context(), r.PostForm.Get("username"), r.PostForm.Get("password"))
	if err != nil {
		respondWithErr(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, resp)
}

func (h *AuthHandler) logout(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, middleware.UnauthorizedMessage)
		return
	}
	if err := h.authService.Logout(r.Context(), claims); err != nil {
		respondWithErr(w, err)
		return
	}
	common.RespondWithMessage(w, http.StatusOK, "Token revoked.")
}

// CurrentUser echoes the authenticated identity.
func CurrentUser(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, middleware.UnauthorizedMessage)
		return
	}
	common.RespondWithData(w, http.StatusOK, "User", claims, nil)
}
