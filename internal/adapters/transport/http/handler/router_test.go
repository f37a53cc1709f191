package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/Miraines/MoonyAndStarry/rfi-service/internal/adapters/db/postgres"
	redisRepo "github.com/Miraines/MoonyAndStarry/rfi-service/internal/adapters/db/redis"
	"github.com/Miraines/MoonyAndStarry/rfi-service/internal/adapters/transport/http/dto"
	"github.com/Miraines/MoonyAndStarry/rfi-service/internal/adapters/transport/http/handler"
	"github.com/Miraines/MoonyAndStarry/rfi-service/internal/app/auth/jwt"
	"github.com/Miraines/MoonyAndStarry/rfi-service/internal/app/auth/password"
	appsvc "github.com/Miraines/MoonyAndStarry/rfi-service/internal/app/auth/service"
	"github.com/Miraines/MoonyAndStarry/rfi-service/internal/app/projects"
	"github.com/Miraines/MoonyAndStarry/rfi-service/internal/app/rfi"
	"github.com/Miraines/MoonyAndStarry/rfi-service/internal/app/users"
	"github.com/Miraines/MoonyAndStarry/rfi-service/internal/infra/config"
	"github.com/Miraines/MoonyAndStarry/rfi-service/internal/infra/health"
	"github.com/Miraines/MoonyAndStarry/rfi-service/internal/testutil"
	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type app struct {
	router *gin.Engine
	mr     *miniredis.Miniredis
}

func newApp(t *testing.T) app {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		ProjectName:      "RFI Management System",
		Version:          "1.0.0",
		SecretKey:        "router-test-secret",
		Algorithm:        "HS256",
		AccessTokenTTL:   30 * time.Minute,
		RefreshTokenTTL:  7 * 24 * time.Hour,
		BcryptCost:       bcrypt.MinCost,
		AllowedOrigins:   []string{"http://localhost:3000"},
		AllowCredentials: true,
		RateLimitRPS:     1000,
		RateLimitBurst:   1000,
	}
	log := zap.NewNop()
	db := testutil.OpenDB(t)
	rdb, mr := testutil.OpenRedis(t)

	jwtUtil, err := jwt.NewJWTUtil(cfg)
	require.NoError(t, err)
	hasher, err := password.NewHasher(cfg.BcryptCost)
	require.NoError(t, err)
	v := dto.NewValidator()

	userRepo := postgres.NewPostgresUserRepo(db)
	projectRepo := postgres.NewPostgresProjectRepo(db)
	userSvc := users.New(userRepo, hasher, v, log)

	_, err = userSvc.Create(context.Background(), dto.UserCreateDTO{
		Username: "admin", Email: "admin@rfi.local", Password: "Adm1nPass", IsSuperuser: true,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	router := handler.NewRouter(ctx, handler.Deps{
		Config:   cfg,
		Log:      log,
		Auth:     appsvc.New(userRepo, redisRepo.NewRedisTokenRepo(rdb), jwtUtil, hasher, v, log),
		Users:    userSvc,
		Projects: projects.New(projectRepo, v, log),
		RFIs:     rfi.New(postgres.NewPostgresRFIRepo(db), projectRepo, v, log),
		Health: health.NewChecker(time.Second).
			Add("database", health.Database(db)).
			Add("redis", health.Redis(rdb)),
		Registry: prometheus.NewRegistry(),
	})
	return app{router: router, mr: mr}
}

func (a app) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rdr *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		rdr = bytes.NewReader(raw)
	} else {
		rdr = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rdr)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func (a app) login(t *testing.T, username, pwd string) dto.TokenResponse {
	t.Helper()
	w := a.do(t, http.MethodPost, "/api/v1/auth/login", "", gin.H{"username": username, "password": pwd})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var out dto.TokenResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func errorOf(t *testing.T, w *httptest.ResponseRecorder) string {
	return decode[map[string]string](t, w)["error"]
}

func TestRouter_RegisterLoginMe(t *testing.T) {
	a := newApp(t)

	w := a.do(t, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"username": "alice", "email": "alice@x.com", "password": "Passw0rd!",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[dto.UserResponse](t, w)
	require.Equal(t, "alice", created.Username)
	require.NotContains(t, w.Body.String(), "password")

	w = a.do(t, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"username": "alice", "email": "other@x.com", "password": "Passw0rd!",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "username already registered", errorOf(t, w))

	tokens := a.login(t, "alice", "Passw0rd!")
	require.Equal(t, "bearer", tokens.TokenType)
	require.NotEmpty(t, tokens.AccessToken)
	require.NotEmpty(t, tokens.RefreshToken)
	require.Equal(t, 1800, tokens.ExpiresIn)
	require.Equal(t, "alice", tokens.User.Username)

	w = a.do(t, http.MethodGet, "/api/v1/users/me", tokens.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "alice", decode[dto.UserResponse](t, w).Username)

	w = a.do(t, http.MethodGet, "/api/v1/auth/me", tokens.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = a.do(t, http.MethodGet, "/api/v1/users/me", "", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Equal(t, "Not authenticated", errorOf(t, w))

	w = a.do(t, http.MethodGet, "/api/v1/users/me", tokens.RefreshToken, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code, "refresh token is not a bearer credential")

	w = a.do(t, http.MethodPost, "/api/v1/auth/login", "", gin.H{"username": "alice", "password": "wrong"})
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Equal(t, "Bearer", w.Header().Get("WWW-Authenticate"))
	wrong := errorOf(t, w)

	w = a.do(t, http.MethodPost, "/api/v1/auth/login", "", gin.H{"username": "ghost", "password": "Passw0rd!"})
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Equal(t, wrong, errorOf(t, w), "unknown user and wrong password look the same")
}

func TestRouter_LoginForm(t *testing.T) {
	a := newApp(t)

	form := url.Values{"username": {"admin"}, "password": {"Adm1nPass"}}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.True(t, decode[dto.TokenResponse](t, w).User.IsSuperuser)
}

func TestRouter_UserAdministration(t *testing.T) {
	a := newApp(t)
	admin := a.login(t, "admin", "Adm1nPass")

	w := a.do(t, http.MethodPost, "/api/v1/users", admin.AccessToken, gin.H{
		"username": "alice", "email": "alice@x.com", "password": "Passw0rd!", "full_name": "Alice",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	aliceID := decode[dto.UserResponse](t, w).ID
	alice := a.login(t, "alice", "Passw0rd!")

	// не суперпользователь
	w = a.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/users/%d", admin.User.ID), alice.AccessToken, nil)
	require.Equal(t, http.StatusForbidden, w.Code)
	w = a.do(t, http.MethodGet, "/api/v1/users", alice.AccessToken, nil)
	require.Equal(t, http.StatusForbidden, w.Code)
	w = a.do(t, http.MethodGet, fmt.Sprintf("/api/v1/users/%d", admin.User.ID), alice.AccessToken, nil)
	require.Equal(t, http.StatusForbidden, w.Code)
	w = a.do(t, http.MethodPut, fmt.Sprintf("/api/v1/users/%d", aliceID), alice.AccessToken, gin.H{"is_superuser": true})
	require.Equal(t, http.StatusForbidden, w.Code)
	require.Equal(t, "Cannot change superuser status", errorOf(t, w))

	// суперпользователь удаляет сам себя
	w = a.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/users/%d", admin.User.ID), admin.AccessToken, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "Cannot delete yourself", errorOf(t, w))

	w = a.do(t, http.MethodGet, "/api/v1/users?search=ali&limit=10", admin.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	page := decode[dto.Page[dto.UserResponse]](t, w)
	require.EqualValues(t, 1, page.Total)
	require.Equal(t, 10, page.Limit)

	w = a.do(t, http.MethodGet, "/api/v1/users/999", admin.AccessToken, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	w = a.do(t, http.MethodGet, "/api/v1/users/abc", admin.AccessToken, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = a.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/users/%d", aliceID), admin.AccessToken, nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	// деактивированный пользователь теряет доступ сразу
	w = a.do(t, http.MethodGet, "/api/v1/users/me", alice.AccessToken, nil)
	require.Equal(t, http.StatusForbidden, w.Code)
	require.Equal(t, "Inactive user", errorOf(t, w))
	w = a.do(t, http.MethodPost, "/api/v1/auth/login", "", gin.H{"username": "alice", "password": "Passw0rd!"})
	require.Equal(t, http.StatusForbidden, w.Code)

	w = a.do(t, http.MethodPost, fmt.Sprintf("/api/v1/users/%d/restore", aliceID), admin.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, decode[dto.UserResponse](t, w).IsActive)
	w = a.do(t, http.MethodGet, "/api/v1/users/me", alice.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_RefreshAndLogout(t *testing.T) {
	a := newApp(t)
	first := a.login(t, "admin", "Adm1nPass")

	w := a.do(t, http.MethodPost, "/api/v1/auth/refresh", "", gin.H{"refresh_token": first.RefreshToken})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	rotated := decode[dto.RefreshResponse](t, w)
	require.NotEqual(t, first.RefreshToken, rotated.RefreshToken)

	w = a.do(t, http.MethodPost, "/api/v1/auth/refresh?refresh_token="+url.QueryEscape(first.RefreshToken), "", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code, "refresh token is single-use")

	w = a.do(t, http.MethodPost, "/api/v1/auth/refresh", "", gin.H{"refresh_token": first.AccessToken})
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = a.do(t, http.MethodPost, "/api/v1/auth/logout", rotated.AccessToken, gin.H{"refresh_token": rotated.RefreshToken})
	require.Equal(t, http.StatusOK, w.Code)

	w = a.do(t, http.MethodGet, "/api/v1/auth/me", rotated.AccessToken, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	w = a.do(t, http.MethodPost, "/api/v1/auth/refresh", "", gin.H{"refresh_token": rotated.RefreshToken})
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = a.do(t, http.MethodGet, "/api/v1/auth/me", first.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code, "logout revokes only the presented access token")
}

func TestRouter_ProjectsAndRFIs(t *testing.T) {
	a := newApp(t)
	admin := a.login(t, "admin", "Adm1nPass")
	w := a.do(t, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"username": "eng", "email": "eng@x.com", "password": "Passw0rd!", "full_name": "Ivan Petrov",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	eng := a.login(t, "eng", "Passw0rd!")

	w = a.do(t, http.MethodPost, "/api/v1/projects", eng.AccessToken, gin.H{"name": "Refinery", "project_code": "REF-01"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	project := decode[map[string]any](t, w)
	require.Equal(t, "planning", project["status"])
	projectID := int64(project["id"].(float64))

	w = a.do(t, http.MethodPost, "/api/v1/rfis", eng.AccessToken, gin.H{
		"rfi_no": "RFI-001", "rfi_date": "2024-05-10", "project_id": projectID, "tag_no": "P-101",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	rfiID := int64(decode[map[string]any](t, w)["id"].(float64))

	w = a.do(t, http.MethodPost, "/api/v1/rfis", eng.AccessToken, gin.H{"rfi_no": "RFI-001", "rfi_date": "2024-05-11"})
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = a.do(t, http.MethodGet, "/api/v1/rfis/pending", eng.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.EqualValues(t, 1, decode[dto.Page[map[string]any]](t, w).Total)

	w = a.do(t, http.MethodPost, fmt.Sprintf("/api/v1/rfis/%d/reject", rfiID), eng.AccessToken, nil)
	require.Equal(t, http.StatusBadRequest, w.Code, "reason is required")

	w = a.do(t, http.MethodPost, fmt.Sprintf("/api/v1/rfis/%d/approve", rfiID), eng.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "Ivan Petrov", decode[map[string]any](t, w)["inspector"])

	w = a.do(t, http.MethodGet, fmt.Sprintf("/api/v1/rfis/statistics?project_id=%d", projectID), eng.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"total":1,"approved":1,"rejected":0,"cancelled":0,"pending":0}`, w.Body.String())

	w = a.do(t, http.MethodGet, "/api/v1/rfis/search?tag_no=p-1", eng.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.EqualValues(t, 1, decode[dto.Page[map[string]any]](t, w).Total)

	w = a.do(t, http.MethodPost, fmt.Sprintf("/api/v1/rfis/%d/cancel?reason=dup", rfiID), eng.AccessToken, nil)
	require.Equal(t, http.StatusForbidden, w.Code)
	w = a.do(t, http.MethodPost, fmt.Sprintf("/api/v1/rfis/%d/cancel?reason=dup", rfiID), admin.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "Cancelled: dup", decode[map[string]any](t, w)["note"])

	w = a.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/rfis/%d", rfiID), eng.AccessToken, nil)
	require.Equal(t, http.StatusForbidden, w.Code)
	w = a.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/rfis/%d", rfiID), admin.AccessToken, nil)
	require.Equal(t, http.StatusNoContent, w.Code)
	w = a.do(t, http.MethodGet, fmt.Sprintf("/api/v1/rfis/%d", rfiID), eng.AccessToken, nil)
	require.Equal(t, http.StatusNotFound, w.Code)

	w = a.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/projects/%d", projectID), eng.AccessToken, nil)
	require.Equal(t, http.StatusNoContent, w.Code)
}

func TestRouter_RejectReasonBody(t *testing.T) {
	a := newApp(t)
	admin := a.login(t, "admin", "Adm1nPass")

	w := a.do(t, http.MethodPost, "/api/v1/rfis", admin.AccessToken, gin.H{"rfi_no": "RFI-100", "rfi_date": "2024-05-10"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	rfiID := int64(decode[map[string]any](t, w)["id"].(float64))
	path := fmt.Sprintf("/api/v1/rfis/%d/reject?reason=from-query", rfiID)

	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(`{"reason":`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+admin.AccessToken)
	w = httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusBadRequest, w.Code, "malformed body must not fall back to the query")

	w = a.do(t, http.MethodGet, fmt.Sprintf("/api/v1/rfis/%d", rfiID), admin.AccessToken, nil)
	require.Equal(t, false, decode[map[string]any](t, w)["rejected"])

	w = a.do(t, http.MethodPost, path, admin.AccessToken, gin.H{"reason": "from-body"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Contains(t, decode[map[string]any](t, w)["note"], "from-body")
}

func TestRouter_HealthAndMetrics(t *testing.T) {
	a := newApp(t)

	w := a.do(t, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"status":"healthy","service":"RFI Management System","version":"1.0.0"}`, w.Body.String())

	w = a.do(t, http.MethodGet, "/health/detailed", "", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	a.mr.SetError("ERR redis is down")
	w = a.do(t, http.MethodGet, "/health/detailed", "", nil)
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	body := decode[map[string]any](t, w)
	require.Equal(t, "unhealthy", body["status"])
	require.Equal(t, "healthy", body["database"].(map[string]any)["status"])
	require.Equal(t, "unhealthy", body["redis"].(map[string]any)["status"])
	a.mr.SetError("")

	w = a.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "rfi_http_requests_total")
}

func TestRouter_CORS(t *testing.T) {
	a := newApp(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/auth/login", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "POST")
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	require.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
	require.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
}
