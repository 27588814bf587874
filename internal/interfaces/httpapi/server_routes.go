package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerAuthRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("POST /v1/auth/user/login", handler.UserLogin)
	mux.HandleFunc("DELETE /v1/auth/user/login", handler.UserLogout)
	mux.HandleFunc("POST /v1/auth/admin/login", handler.AdminLogin)
	mux.HandleFunc("DELETE /v1/auth/admin/login", handler.AdminLogout)
	mux.HandleFunc("GET /v1/auth/status", handler.AuthStatus)
}

func registerSessionRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("GET /v1/sessions/current", RequireUser(verifier, http.HandlerFunc(handler.GetCurrentSession)))
	mux.Handle("GET /v1/sessions", RequireAdmin(verifier, http.HandlerFunc(handler.ListSessions)))
	mux.Handle("GET /v1/sessions/overview", RequireAdmin(verifier, http.HandlerFunc(handler.GetSessionsOverview)))
	mux.Handle("POST /v1/sessions", RequireAdmin(verifier, http.HandlerFunc(handler.CreateSession)))
	mux.Handle("PATCH /v1/sessions/{sessionID}", RequireAdmin(verifier, http.HandlerFunc(handler.UpdateSession)))
	mux.Handle("DELETE /v1/sessions/{sessionID}", RequireAdmin(verifier, http.HandlerFunc(handler.DeleteSession)))
}

func registerRegistrantRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("GET /v1/sessions/{sessionID}/registrants", RequireUser(verifier, http.HandlerFunc(handler.ListRegistrants)))
	mux.Handle("POST /v1/sessions/{sessionID}/registrants", RequireUser(verifier, http.HandlerFunc(handler.SignupRegistrant)))
	mux.Handle("DELETE /v1/registrants/{registrantID}", RequireUser(verifier, http.HandlerFunc(handler.CancelRegistrant)))
	mux.Handle("PATCH /v1/registrants/{registrantID}", RequireAdmin(verifier, http.HandlerFunc(handler.SetRegistrantPaid)))
	mux.Handle("POST /v1/registrants/{registrantID}/promote", RequireAdmin(verifier, http.HandlerFunc(handler.PromoteRegistrant)))
}

func registerInternalJobRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.Handle("POST /v1/internal/jobs/rollover", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunRolloverJob)))
}
