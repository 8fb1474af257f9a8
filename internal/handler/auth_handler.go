package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/Asna-1994/ArticleSphere/internal/apperr"
	"github.com/Asna-1994/ArticleSphere/internal/service"
)

const RefreshTokenCookie = "refreshToken"

// el refresh token solo viaja hacia el endpoint de refresh
const refreshCookiePath = "/api/auth/refresh"

type AuthHandler struct {
	svc        *service.AuthService
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewAuthHandler(s *service.AuthService, accessTTL, refreshTTL time.Duration) *AuthHandler {
	return &AuthHandler{svc: s, accessTTL: accessTTL, refreshTTL: refreshTTL}
}

type registerRequest struct {
	FirstName   string   `json:"firstName"`
	LastName    string   `json:"lastName"`
	Email       string   `json:"email"`
	Phone       string   `json:"phone"`
	DOB         string   `json:"dob"`
	Password    string   `json:"password"`
	Preferences []string `json:"preferences"`
}

// @Summary Register
// @Description Crea un usuario nuevo con sus categorías preferidas
// @Tags auth
// @Accept json
// @Produce json
// @Param body body registerRequest true "datos"
// @Success 201 {object} map[string]any
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /api/auth/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, apperr.Validation(err.Error()))
		return
	}

	var dob time.Time
	if req.DOB != "" {
		var err error
		dob, err = time.Parse("2006-01-02", req.DOB)
		if err != nil {
			writeErr(w, apperr.Validation("invalid dob, expected YYYY-MM-DD"))
			return
		}
	}

	u, err := h.svc.Register(r.Context(), service.RegisterUserData{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		Phone:       req.Phone,
		DOB:         dob,
		Password:    req.Password,
		Preferences: req.Preferences,
	})
	if err != nil {
		writeErr(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"user": u})
}

type loginRequest struct {
	// email o teléfono
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

// @Summary Login
// @Description Login con email o teléfono; setea cookies de access y refresh
// @Tags auth
// @Accept json
// @Produce json
// @Param body body loginRequest true "credenciales"
// @Success 200 {object} map[string]any
// @Failure 401 {object} map[string]string
// @Router /api/auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, apperr.Validation(err.Error()))
		return
	}

	u, pair, err := h.svc.Login(r.Context(), req.Identifier, req.Password)
	if err != nil {
		writeErr(w, err)
		return
	}

	h.setAuthCookies(w, pair)
	writeJSON(w, http.StatusOK, map[string]any{"user": u})
}

// @Summary Refresh
// @Description Rota el par de tokens usando la cookie de refresh
// @Tags auth
// @Produce json
// @Success 200 {object} map[string]any
// @Failure 401 {object} map[string]string
// @Router /api/auth/refresh [post]
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	c, err := r.Cookie(RefreshTokenCookie)
	if err != nil || c.Value == "" {
		writeErr(w, apperr.Unauthorized(apperr.MsgInvalidToken))
		return
	}

	pair, err := h.svc.Refresh(r.Context(), c.Value)
	if err != nil {
		h.clearAuthCookies(w)
		writeErr(w, err)
		return
	}

	h.setAuthCookies(w, pair)
	writeJSON(w, http.StatusOK, map[string]any{"message": "token refreshed"})
}

// @Summary Logout
// @Tags auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} map[string]any
// @Router /api/auth/logout [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	userID := UserIDFromContext(r.Context())
	if err := h.svc.Logout(r.Context(), userID); err != nil {
		writeErr(w, err)
		return
	}
	h.clearAuthCookies(w)
	writeJSON(w, http.StatusOK, map[string]any{"message": "logged out"})
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// @Summary Cambiar password
// @Tags auth
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body changePasswordRequest true "passwords"
// @Success 200 {object} map[string]any
// @Router /api/auth/password [patch]
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, apperr.Validation(err.Error()))
		return
	}

	userID := UserIDFromContext(r.Context())
	if err := h.svc.ChangePassword(r.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "password updated"})
}

func (h *AuthHandler) setAuthCookies(w http.ResponseWriter, pair *service.TokenPair) {
	http.SetCookie(w, &http.Cookie{
		Name:     AccessTokenCookie,
		Value:    pair.AccessToken,
		Path:     "/",
		MaxAge:   int(h.accessTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshTokenCookie,
		Value:    pair.RefreshToken,
		Path:     refreshCookiePath,
		MaxAge:   int(h.refreshTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) clearAuthCookies(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name: AccessTokenCookie, Value: "", Path: "/", MaxAge: -1, HttpOnly: true,
	})
	http.SetCookie(w, &http.Cookie{
		Name: RefreshTokenCookie, Value: "", Path: refreshCookiePath, MaxAge: -1, HttpOnly: true,
	})
}
