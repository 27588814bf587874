package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/wiratama/courtside/internal/auth"
	"github.com/wiratama/courtside/internal/usecase"
)

// AuthService issues and verifies the signed login cookies.
type AuthService interface {
	LoginUser(password string) (auth.Token, error)
	LoginAdmin(password string) (auth.Token, error)
	TokenVerifier
}

type loginRequest struct {
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Role      string `json:"role"`
	ExpiresAt string `json:"expiresAt"`
}

type authStatusDTO struct {
	User  bool `json:"user"`
	Admin bool `json:"admin"`
}

func (h *Handler) UserLogin(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UserLogin")
	defer span.End()

	req, err := h.decodeLoginRequest(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	token, err := h.authService.LoginUser(req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrWrongPassword) {
			writeError(ctx, w, fmt.Errorf("%w: wrong password", usecase.ErrUnauthorized))
			return
		}
		h.logger.ErrorContext(ctx, "user login failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	setAuthCookie(w, r, auth.UserCookieName, token)
	writeSuccess(ctx, w, http.StatusOK, loginResponse{
		Role:      string(auth.RoleUser),
		ExpiresAt: token.ExpiresAt.UTC().Format(time.RFC3339),
	})
}

func (h *Handler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.AdminLogin")
	defer span.End()

	req, err := h.decodeLoginRequest(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	token, err := h.authService.LoginAdmin(req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrWrongPassword) {
			writeError(ctx, w, fmt.Errorf("%w: wrong password", usecase.ErrUnauthorized))
			return
		}
		h.logger.ErrorContext(ctx, "admin login failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	setAuthCookie(w, r, auth.AdminCookieName, token)
	writeSuccess(ctx, w, http.StatusOK, loginResponse{
		Role:      string(auth.RoleAdmin),
		ExpiresAt: token.ExpiresAt.UTC().Format(time.RFC3339),
	})
}

func (h *Handler) UserLogout(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UserLogout")
	defer span.End()

	clearAuthCookie(w, r, auth.UserCookieName)
	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "logged_out"})
}

func (h *Handler) AdminLogout(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.AdminLogout")
	defer span.End()

	clearAuthCookie(w, r, auth.AdminCookieName)
	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "logged_out"})
}

func (h *Handler) AuthStatus(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.AuthStatus")
	defer span.End()

	status := authStatusDTO{}
	if cookie, err := r.Cookie(auth.UserCookieName); err == nil {
		status.User = h.authService.VerifyUser(cookie.Value) == nil
	}
	if cookie, err := r.Cookie(auth.AdminCookieName); err == nil {
		status.Admin = h.authService.VerifyAdmin(cookie.Value) == nil
		if status.Admin {
			status.User = true
		}
	}

	writeSuccess(ctx, w, http.StatusOK, status)
}

func (h *Handler) decodeLoginRequest(r *http.Request) (loginRequest, error) {
	decoder := jsoniter.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	var req loginRequest
	if err := decoder.Decode(&req); err != nil {
		return loginRequest{}, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}
	if err := h.validateRequest(r.Context(), req); err != nil {
		return loginRequest{}, err
	}

	return req, nil
}

func setAuthCookie(w http.ResponseWriter, r *http.Request, name string, token auth.Token) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    token.Value,
		Path:     "/",
		HttpOnly: true,
		Secure:   requestIsHTTPS(r),
		SameSite: http.SameSiteLaxMode,
		Expires:  token.ExpiresAt,
		MaxAge:   int(time.Until(token.ExpiresAt).Seconds()),
	})
}

func clearAuthCookie(w http.ResponseWriter, r *http.Request, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   requestIsHTTPS(r),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}

func requestIsHTTPS(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}
	return strings.EqualFold(strings.TrimSpace(r.Header.Get("X-Forwarded-Proto")), "https")
}
