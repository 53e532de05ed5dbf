package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/callcleaner/backend/internal/config"
	"github.com/callcleaner/backend/internal/database/databasetest"
	"github.com/callcleaner/backend/internal/handlers"
	"github.com/callcleaner/backend/internal/models"
	"github.com/callcleaner/backend/internal/repository"
	"github.com/callcleaner/backend/internal/routes"
	"github.com/callcleaner/backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type server struct {
	app    *fiber.App
	db     *gorm.DB
	users  *repository.UserRepository
	tokens *services.TokenService
	mailer *captureMailer
}

type captureMailer struct {
	to, subject, body string
}

func (m *captureMailer) Send(_ context.Context, to, subject, body string) error {
	m.to, m.subject, m.body = to, subject, body
	return nil
}

func newServer(t *testing.T) *server {
	t.Helper()
	cfg := &config.Config{
		JWTSecret:          "handler-secret",
		JWTIssuer:          "callcleaner",
		JWTAudience:        "callcleaner-mobile",
		JWTAccessExpiry:    15 * time.Minute,
		JWTRefreshExpiry:   24 * time.Hour,
		EmailConfirmExpiry: time.Hour,
		ResetCodeExpiry:    15 * time.Minute,
		PublicBaseURL:      "http://localhost:8080",
		AdminEmails:        "admin@example.com",
		AdminToken:         "admin-token",
	}
	db := databasetest.Open(t)

	users := repository.NewUserRepository(db)
	settings := repository.NewSettingsRepository(db)
	whitelist := repository.NewWhitelistRepository(db)
	numbers := repository.NewReportedNumberRepository(db)
	refresh := repository.NewRefreshTokenRepository(db)
	calls := repository.NewBlockedCallRepository(db)
	configs := repository.NewRemoteConfigRepository(db)

	mailer := &captureMailer{}
	tokenService := services.NewTokenService(refresh, users, cfg)
	numberService := services.NewNumberCheckService(numbers, settings, whitelist, calls)
	userService := services.NewUserService(users)
	appService := services.NewAppService(configs)
	require.NoError(t, appService.SeedDefaults(context.Background()))

	app := fiber.New(fiber.Config{ErrorHandler: handlers.ErrorHandler})
	routes.Setup(app, cfg, routes.Handlers{
		Auth:         handlers.NewAuthHandler(services.NewAuthService(users, tokenService, mailer, services.NewMemoryCodeStore(), cfg)),
		Health:       handlers.NewHealthHandler(db, "test"),
		Number:       handlers.NewNumberHandler(numberService),
		Settings:     handlers.NewSettingsHandler(services.NewSettingsService(settings, whitelist)),
		BlockedCalls: handlers.NewBlockedCallsHandler(services.NewBlockedCallsService(calls)),
		Reports:      handlers.NewReportHandler(services.NewReportService(numbers, calls, services.NewContentFilter())),
		Sync:         handlers.NewSyncHandler(services.NewSyncService(settings, calls)),
		App:          handlers.NewAppHandler(appService),
		Admin:        handlers.NewAdminHandler(userService, numberService),
	}, userService)

	return &server{app: app, db: db, users: users, tokens: tokenService, mailer: mailer}
}

// signIn creates an account directly and returns an access token for it.
func (s *server) signIn(t *testing.T, email string) (string, *models.User) {
	t.Helper()
	u := &models.User{Email: email, FullName: "Caller", PasswordHash: "x", Role: models.RoleUser, IsActive: true}
	require.NoError(t, s.users.Create(context.Background(), u))
	pair, err := s.tokens.IssuePair(context.Background(), u)
	require.NoError(t, err)
	return pair.AccessToken, u
}

func (s *server) do(t *testing.T, method, path, token string, body interface{}) (int, []byte) {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, out
}

func decode(t *testing.T, b []byte, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(b, v), string(b))
}

func TestHealthAndPublicAppInfo(t *testing.T) {
	s := newServer(t)

	code, body := s.do(t, http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(body), `"db":"ok"`)

	code, body = s.do(t, http.MethodGet, "/api/app/version", "", nil)
	assert.Equal(t, http.StatusOK, code)
	var v services.AppVersion
	decode(t, body, &v)
	assert.Equal(t, "1.0.0", v.Latest)

	code, body = s.do(t, http.MethodGet, "/api/app/required-permissions", "", nil)
	assert.Equal(t, http.StatusOK, code)
	var perms []services.Permission
	decode(t, body, &perms)
	assert.NotEmpty(t, perms)

	code, _ = s.do(t, http.MethodGet, "/api/privacy-policy", "", nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestAuthFlow(t *testing.T) {
	s := newServer(t)

	code, body := s.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email": "New@Example.com", "password": "password1", "full_name": "New User",
	})
	require.Equal(t, http.StatusCreated, code, string(body))
	assert.Equal(t, "new@example.com", s.mailer.to)

	code, _ = s.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email": "new@example.com", "password": "password1", "full_name": "New User",
	})
	assert.Equal(t, http.StatusConflict, code)

	code, _ = s.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "new@example.com", "password": "wrong-pass"})
	assert.Equal(t, http.StatusUnauthorized, code)

	code, body = s.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "new@example.com", "password": "password1"})
	require.Equal(t, http.StatusOK, code, string(body))
	var auth struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
	}
	decode(t, body, &auth)

	code, body = s.do(t, http.MethodGet, "/api/auth/verify-token", auth.AccessToken, nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(body), `"valid":true`)

	code, body = s.do(t, http.MethodPost, "/api/auth/refresh-token", "", map[string]string{"refresh_token": auth.RefreshToken})
	require.Equal(t, http.StatusOK, code, string(body))
	var rotated struct {
		RefreshToken string `json:"refresh_token"`
	}
	decode(t, body, &rotated)

	code, _ = s.do(t, http.MethodPost, "/api/auth/refresh-token", "", map[string]string{"refresh_token": auth.RefreshToken})
	assert.Equal(t, http.StatusUnauthorized, code, "rotated tokens are single use")

	code, _ = s.do(t, http.MethodPost, "/api/auth/logout", auth.AccessToken, map[string]string{"refresh_token": rotated.RefreshToken})
	assert.Equal(t, http.StatusOK, code)
	code, _ = s.do(t, http.MethodPost, "/api/auth/logout", auth.AccessToken, map[string]string{"refresh_token": rotated.RefreshToken})
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	s := newServer(t)
	for _, path := range []string{"/api/settings", "/api/blocked-calls", "/api/sync/last-update", "/api/auth/verify-token"} {
		code, body := s.do(t, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, code, path)
		assert.Contains(t, string(body), `"error":true`)
	}
}

func TestSettingsAndWhitelist(t *testing.T) {
	s := newServer(t)
	token, _ := s.signIn(t, "settings@example.com")

	code, body := s.do(t, http.MethodGet, "/api/settings", token, nil)
	require.Equal(t, http.StatusOK, code, string(body))
	assert.Contains(t, string(body), `"blocking_mode":"known"`)

	code, _ = s.do(t, http.MethodPut, "/api/settings/blocking-mode", token, map[string]string{"mode": "everything"})
	assert.Equal(t, http.StatusBadRequest, code)

	code, body = s.do(t, http.MethodPut, "/api/settings/working-hours", token, map[string]string{"mode": "custom", "start_time": "09:00", "end_time": "18:00"})
	require.Equal(t, http.StatusOK, code, string(body))
	assert.Contains(t, string(body), `"start_time":"09:00"`)

	code, _ = s.do(t, http.MethodPut, "/api/settings/notifications", token, map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, code)
	code, body = s.do(t, http.MethodPut, "/api/settings/notifications", token, map[string]interface{}{"enabled": false})
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(body), `"notifications_enabled":false`)

	code, _ = s.do(t, http.MethodPost, "/api/settings/whitelist", token, map[string]string{"phone_number": "+1 555 0100", "name": "Mom"})
	assert.Equal(t, http.StatusCreated, code)
	code, _ = s.do(t, http.MethodPost, "/api/settings/whitelist", token, map[string]string{"phone_number": "+15550100"})
	assert.Equal(t, http.StatusConflict, code)

	code, body = s.do(t, http.MethodGet, "/api/settings/whitelist", token, nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(body), `"phone_number":"+15550100"`)

	code, _ = s.do(t, http.MethodDelete, "/api/settings/whitelist/%2B15550100", token, nil)
	assert.Equal(t, http.StatusOK, code)
	code, _ = s.do(t, http.MethodDelete, "/api/settings/whitelist/%2B15550100", token, nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestReportsChecksAndBlockedCalls(t *testing.T) {
	s := newServer(t)
	token, _ := s.signIn(t, "reporter@example.com")

	code, _ := s.do(t, http.MethodPost, "/api/reports", token, map[string]string{"phone_number": "+15550199", "spam_type": "robocall"})
	assert.Equal(t, http.StatusBadRequest, code)

	report := func(tok string) {
		t.Helper()
		code, body := s.do(t, http.MethodPost, "/api/reports", tok, map[string]string{
			"phone_number": "+15550199", "spam_type": "scam", "description": "wanted my bank PIN",
		})
		require.Equal(t, http.StatusCreated, code, string(body))
	}
	report(token)
	report(token)
	for i := 0; i < 10; i++ {
		other, _ := s.signIn(t, fmt.Sprintf("neighbour%d@example.com", i))
		report(other)
	}

	code, body := s.do(t, http.MethodGet, "/api/number/%2B15550199/info", token, nil)
	require.Equal(t, http.StatusOK, code, string(body))
	var info struct {
		ReportCount int    `json:"report_count"`
		IsSpam      bool   `json:"is_spam"`
		SpamType    string `json:"spam_type"`
	}
	decode(t, body, &info)
	assert.Equal(t, 11, info.ReportCount)
	assert.True(t, info.IsSpam)
	assert.Equal(t, "scam", info.SpamType)

	code, _ = s.do(t, http.MethodGet, "/api/number/%2B19999999/info", token, nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, body = s.do(t, http.MethodPost, "/api/check-number", token, map[string]string{"phone_number": "+15550199"})
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(body), `"risk_score":85`)

	code, body = s.do(t, http.MethodPost, "/api/incoming-call", token, map[string]string{"phone_number": "+15550199"})
	require.Equal(t, http.StatusOK, code, string(body))
	assert.Contains(t, string(body), `"action":"block"`)

	code, body = s.do(t, http.MethodGet, "/api/blocked-calls?page=1&limit=10", token, nil)
	require.Equal(t, http.StatusOK, code)
	var list struct {
		Calls []struct {
			ID string `json:"id"`
		} `json:"calls"`
		Pagination struct {
			TotalCount int64 `json:"total_count"`
		} `json:"pagination"`
	}
	decode(t, body, &list)
	require.Len(t, list.Calls, 1)
	assert.EqualValues(t, 1, list.Pagination.TotalCount)

	code, body = s.do(t, http.MethodGet, "/api/blocked-calls/stats", token, nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(body), `"total":1`)

	code, _ = s.do(t, http.MethodPut, "/api/blocked-calls/"+list.Calls[0].ID+"/report-wrong", token, nil)
	assert.Equal(t, http.StatusOK, code)
	code, _ = s.do(t, http.MethodDelete, "/api/blocked-calls/"+list.Calls[0].ID, token, nil)
	assert.Equal(t, http.StatusOK, code)
	code, _ = s.do(t, http.MethodDelete, "/api/blocked-calls/not-a-uuid", token, nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, body = s.do(t, http.MethodGet, "/api/reports/spam-types", token, nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(body), `"telemarketing"`)
}

func TestSyncEndpoints(t *testing.T) {
	s := newServer(t)
	token, _ := s.signIn(t, "sync@example.com")
	at := time.Date(2024, 6, 3, 12, 0, 0, 0, time.UTC)

	payload := map[string]interface{}{
		"numbers": []map[string]interface{}{
			{"phone_number": "+15550001", "blocked_at": at},
			{"phone_number": "+15550002", "blocked_at": at.Add(time.Minute)},
		},
	}
	code, body := s.do(t, http.MethodPost, "/api/sync/blocked-numbers", token, payload)
	require.Equal(t, http.StatusOK, code, string(body))
	assert.JSONEq(t, `{"received":2,"synced":2}`, string(body))

	code, body = s.do(t, http.MethodPost, "/api/sync/blocked-numbers", token, payload)
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"received":2,"synced":0}`, string(body))

	code, body = s.do(t, http.MethodGet, "/api/sync/last-update", token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(body), `"blocked_numbers_updated_at":"2024-06-03T12:01:00`)

	code, body = s.do(t, http.MethodPost, "/api/sync/settings", token, map[string]interface{}{
		"blocking_mode":         "all",
		"working_hours":         map[string]string{"mode": "24/7"},
		"notifications_enabled": true,
		"timestamp":             time.Now().Add(time.Minute).UTC(),
	})
	require.Equal(t, http.StatusOK, code, string(body))
	assert.Contains(t, string(body), `"applied":true`)
	assert.Contains(t, string(body), `"blocking_mode":"all"`)
}

func TestVerifyPermissions(t *testing.T) {
	s := newServer(t)
	token, _ := s.signIn(t, "perm@example.com")

	code, body := s.do(t, http.MethodPost, "/api/app/verify-permissions", token, map[string][]string{
		"granted": {"READ_PHONE_STATE"},
	})
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(body), `"status":"partial"`)
}

func TestAdminRoutes(t *testing.T) {
	s := newServer(t)
	userToken, user := s.signIn(t, "plain@example.com")
	adminToken, admin := s.signIn(t, "admin@example.com")
	require.NoError(t, s.db.Model(admin).Update("email_confirmed", true).Error)

	code, _ := s.do(t, http.MethodGet, "/api/admin/users", userToken, nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, body := s.do(t, http.MethodGet, "/api/admin/users", adminToken, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(body), `"total_count":2`)

	code, _ = s.do(t, http.MethodGet, "/api/admin/users/"+user.ID.String(), adminToken, nil)
	assert.Equal(t, http.StatusOK, code)

	code, body = s.do(t, http.MethodPut, "/api/admin/config/app_latest_version", adminToken, map[string]string{"value": "2.0.0"})
	require.Equal(t, http.StatusOK, code, string(body))
	code, body = s.do(t, http.MethodGet, "/api/app/version", "", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(body), `"latest_version":"2.0.0"`)

	code, _ = s.do(t, http.MethodPut, "/api/admin/config/app_force_update", adminToken, map[string]string{"value": "maybe", "type": "bool"})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = s.do(t, http.MethodDelete, "/api/admin/config/missing_key", adminToken, nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = s.do(t, http.MethodGet, "/api/admin/reported-numbers", adminToken, nil)
	assert.Equal(t, http.StatusOK, code)

	code, _ = s.do(t, http.MethodDelete, "/api/admin/users/"+user.ID.String(), adminToken, nil)
	assert.Equal(t, http.StatusOK, code)
	code, body = s.do(t, http.MethodGet, "/api/admin/users", adminToken, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(body), `"total_count":1`)
}

func TestAdminEmailRequiresConfirmation(t *testing.T) {
	s := newServer(t)

	code, body := s.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email": "admin@example.com", "password": "password1", "full_name": "Squatter",
	})
	require.Equal(t, http.StatusCreated, code, string(body))

	code, body = s.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "admin@example.com", "password": "password1"})
	require.Equal(t, http.StatusOK, code, string(body))
	var auth struct {
		AccessToken string `json:"access_token"`
	}
	decode(t, body, &auth)

	code, _ = s.do(t, http.MethodGet, "/api/admin/users", auth.AccessToken, nil)
	assert.Equal(t, http.StatusForbidden, code)

	u, err := s.users.FindByEmail(context.Background(), "admin@example.com")
	require.NoError(t, err)
	require.NotNil(t, u)
	confirm, err := s.tokens.IssueEmailConfirmationToken(u)
	require.NoError(t, err)
	code, body = s.do(t, http.MethodGet, "/api/auth/confirm-email?userId="+u.ID.String()+"&token="+url.QueryEscape(confirm), "", nil)
	require.Equal(t, http.StatusOK, code, string(body))

	code, _ = s.do(t, http.MethodGet, "/api/admin/users", auth.AccessToken, nil)
	assert.Equal(t, http.StatusOK, code)
}
