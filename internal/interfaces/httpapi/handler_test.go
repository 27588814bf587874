package httpapi

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wiratama/courtside/internal/auth"
	"github.com/wiratama/courtside/internal/infrastructure/repository/memory"
	"github.com/wiratama/courtside/internal/platform/id"
	"github.com/wiratama/courtside/internal/platform/logging"
	"github.com/wiratama/courtside/internal/platform/sessionlock"
	"github.com/wiratama/courtside/internal/usecase"
)

const internalJobToken = "job-token"

type testAPI struct {
	router      http.Handler
	authService *auth.Service
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	sessionRepo := memory.NewSessionRepository()
	registrantRepo := memory.NewRegistrantRepository()
	locks := sessionlock.New()
	idGen := id.NewRandomGenerator()
	logger := logging.NewNop()

	authService := auth.NewService(auth.Config{
		UserPassword:  "everyone",
		AdminPassword: "organizer",
		SigningSecret: "test-secret",
		UserTokenTTL:  time.Hour,
		AdminTokenTTL: time.Hour,
	})

	sessionService := usecase.NewSessionService(sessionRepo, registrantRepo, locks, idGen, time.Wednesday, logger)
	rosterService := usecase.NewRosterService(sessionRepo, registrantRepo, locks, idGen, logger)
	rolloverService := usecase.NewRolloverService(sessionRepo, idGen, time.Wednesday, logger)

	handler := NewHandler(sessionService, rosterService, rolloverService, authService, logger)
	router := NewRouter(handler, authService, logger, []string{"*"}, internalJobToken)

	return &testAPI{router: router, authService: authService}
}

func (a *testAPI) do(t *testing.T, method, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func (a *testAPI) userCookie(t *testing.T) *http.Cookie {
	t.Helper()
	token, err := a.authService.LoginUser("everyone")
	require.NoError(t, err)
	return &http.Cookie{Name: auth.UserCookieName, Value: token.Value}
}

func (a *testAPI) adminCookie(t *testing.T) *http.Cookie {
	t.Helper()
	token, err := a.authService.LoginAdmin("organizer")
	require.NoError(t, err)
	return &http.Cookie{Name: auth.AdminCookieName, Value: token.Value}
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, sonic.Unmarshal(rec.Body.Bytes(), &body))
	data, _ := body["data"].(map[string]any)
	return data
}

func TestHealthz(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthFlow(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodPost, "/v1/auth/user/login", `{"password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = api.do(t, http.MethodPost, "/v1/auth/user/login", `{"password":"everyone"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var loginCookie *http.Cookie
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == auth.UserCookieName {
			loginCookie = cookie
		}
	}
	require.NotNil(t, loginCookie, "login should set the user cookie")

	rec = api.do(t, http.MethodGet, "/v1/auth/status", "", loginCookie)
	require.Equal(t, http.StatusOK, rec.Code)
	data := decodeData(t, rec)
	assert.Equal(t, true, data["user"])
	assert.Equal(t, false, data["admin"])
}

func TestSessionRoutesRequireAdmin(t *testing.T) {
	api := newTestAPI(t)
	userCookie := api.userCookie(t)

	rec := api.do(t, http.MethodPost, "/v1/sessions", `{"date":"2026-09-02","courts":2}`, userCookie)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = api.do(t, http.MethodGet, "/v1/sessions", "", userCookie)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateAndListSessions(t *testing.T) {
	api := newTestAPI(t)
	adminCookie := api.adminCookie(t)

	rec := api.do(t, http.MethodPost, "/v1/sessions", `{"date":"2026-09-02","courts":3}`, adminCookie)
	require.Equal(t, http.StatusCreated, rec.Code)
	data := decodeData(t, rec)
	assert.Equal(t, "2026-09-02", data["date"])
	assert.Equal(t, float64(20), data["maxPlayers"])

	rec = api.do(t, http.MethodPost, "/v1/sessions", `{"date":"2026-09-02","courts":2}`, adminCookie)
	assert.Equal(t, http.StatusConflict, rec.Code, "duplicate date should conflict")

	rec = api.do(t, http.MethodPost, "/v1/sessions", `{"date":"2026-09-09","courts":5}`, adminCookie)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "unsupported court count should be rejected")

	rec = api.do(t, http.MethodGet, "/v1/sessions", "", adminCookie)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestSignupCancelPromoteFlow(t *testing.T) {
	api := newTestAPI(t)
	adminCookie := api.adminCookie(t)
	userCookie := api.userCookie(t)

	rec := api.do(t, http.MethodPost, "/v1/sessions", `{"date":"2026-09-02","courts":2}`, adminCookie)
	require.Equal(t, http.StatusCreated, rec.Code)
	sessionID, _ := decodeData(t, rec)["id"].(string)
	require.NotEmpty(t, sessionID)

	// Fill the main list and push two onto the waitlist.
	registrantIDs := make([]string, 0, 16)
	for i := 0; i < 16; i++ {
		body := fmt.Sprintf(`{"name":"Player %02d","pin":"1234"}`, i)
		rec = api.do(t, http.MethodPost, "/v1/sessions/"+sessionID+"/registrants", body, userCookie)
		require.Equal(t, http.StatusCreated, rec.Code)
		data := decodeData(t, rec)
		registrantID, _ := data["id"].(string)
		registrantIDs = append(registrantIDs, registrantID)
		if i < 14 {
			assert.Equal(t, false, data["waitlisted"])
			assert.Equal(t, float64(i+1), data["position"])
		} else {
			assert.Equal(t, true, data["waitlisted"])
			assert.Equal(t, float64(i-13), data["position"])
		}
	}

	// Responses never leak the PIN.
	assert.NotContains(t, rec.Body.String(), `"pin"`)
	assert.NotContains(t, rec.Body.String(), "1234")

	// Wrong PIN is rejected, correct PIN cancels and promotes the first
	// waitlisted registrant onto the main list.
	rec = api.do(t, http.MethodDelete, "/v1/registrants/"+registrantIDs[4]+"?pin=0000", "", userCookie)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = api.do(t, http.MethodDelete, "/v1/registrants/"+registrantIDs[4]+"?pin=1234", "", userCookie)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = api.do(t, http.MethodGet, "/v1/sessions/"+sessionID+"/registrants", "", userCookie)
	require.Equal(t, http.StatusOK, rec.Code)
	roster := decodeData(t, rec)
	main, _ := roster["main"].([]any)
	waitlist, _ := roster["waitlist"].([]any)
	assert.Len(t, main, 14)
	assert.Len(t, waitlist, 1)

	// Admin cancels without a PIN.
	rec = api.do(t, http.MethodDelete, "/v1/registrants/"+registrantIDs[0], "", adminCookie)
	assert.Equal(t, http.StatusOK, rec.Code)

	// Paid flag is admin-only.
	rec = api.do(t, http.MethodPatch, "/v1/registrants/"+registrantIDs[1], `{"paid":true}`, userCookie)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = api.do(t, http.MethodPatch, "/v1/registrants/"+registrantIDs[1], `{"paid":true}`, adminCookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decodeData(t, rec)["paid"])

	// Promoting a main-list registrant is an invalid state transition.
	rec = api.do(t, http.MethodPost, "/v1/registrants/"+registrantIDs[1]+"/promote", "", adminCookie)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestRolloverJobRequiresToken(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodPost, "/v1/internal/jobs/rollover", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/v1/internal/jobs/rollover", strings.NewReader(""))
	req.Header.Set("X-Internal-Job-Token", internalJobToken)
	rec = httptest.NewRecorder()
	api.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
