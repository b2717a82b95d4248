package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/text/language"
	"gorm.io/gorm"

	"github.com/tbourn/go-presence-bot/internal/config"
	"github.com/tbourn/go-presence-bot/internal/domain"
	"github.com/tbourn/go-presence-bot/internal/presenter"
	"github.com/tbourn/go-presence-bot/internal/repo"
	"github.com/tbourn/go-presence-bot/internal/services"
)

func testConfig() config.Config {
	return config.Config{
		APIBasePath: "/api/v1",
		RateRPS:     1000,
		RateBurst:   1000,
		OTEL:        config.OTELConfig{ServiceName: "presence-test"},
	}
}

func newTestEngine(t *testing.T, cfg config.Config) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := repo.OpenSQLite(filepath.Join(t.TempDir(), "router.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	svc := services.NewStatusService(db, repo.Store{}, services.NewChatDirtyTracker())
	present := presenter.New(time.UTC, language.English)

	r := gin.New()
	RegisterRoutes(r, svc, present, cfg)
	return r, db
}

func get(r *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	r.ServeHTTP(w, req)
	return w
}

func TestRouter_HealthAndBaselineHeaders(t *testing.T) {
	r, _ := newTestEngine(t, testConfig())

	w := get(r, "/health")
	if w.Code != http.StatusOK {
		t.Fatalf("GET /health -> %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"status":"ok"`) {
		t.Fatalf("unexpected health body: %s", w.Body.String())
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("expected ACAO * with no allowlist, got %q", w.Header().Get("Access-Control-Allow-Origin"))
	}
	if w.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Fatalf("security headers missing: %#v", w.Header())
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Fatalf("expected generated X-Request-ID")
	}
}

func TestRouter_MetricsEndpoint(t *testing.T) {
	r, _ := newTestEngine(t, testConfig())

	if w := get(r, "/metrics"); w.Code != http.StatusOK {
		t.Fatalf("GET /metrics -> %d", w.Code)
	}
}

func TestRouter_NoRouteAndNoMethodEnvelopes(t *testing.T) {
	r, _ := newTestEngine(t, testConfig())

	w := get(r, "/nowhere")
	if w.Code != http.StatusNotFound {
		t.Fatalf("GET /nowhere -> %d", w.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid 404 body: %v", err)
	}
	if body["code"] != "not_found" {
		t.Fatalf("unexpected 404 code: %v", body)
	}

	w2 := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/health", nil)
	r.ServeHTTP(w2, req)
	if w2.Code != http.StatusMethodNotAllowed {
		t.Fatalf("POST /health -> %d", w2.Code)
	}
	if err := json.Unmarshal(w2.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid 405 body: %v", err)
	}
	if body["code"] != "method_not_allowed" {
		t.Fatalf("unexpected 405 code: %v", body)
	}
}

func TestRouter_WebhookRoute(t *testing.T) {
	r, db := newTestEngine(t, testConfig())
	ctx := context.Background()

	// Malformed hook id fails closed with the plain-text body.
	w := get(r, "/not-a-uuid/came")
	if w.Code != http.StatusNotFound {
		t.Fatalf("malformed hook -> %d", w.Code)
	}
	if w.Body.String() != "Failed! Specified url was not found." {
		t.Fatalf("unexpected body: %q", w.Body.String())
	}

	// Seed one record, look up its hook token, and drive it over HTTP.
	if _, err := repo.UpdateStatus(ctx, db, 42, 100, false, repo.NameFields{NickName: "neo"}, domain.StatusCameToWork, time.Now()); err != nil {
		t.Fatalf("seed status: %v", err)
	}
	tokens, err := repo.GetWebhookTokens(ctx, db, 42)
	if err != nil || tokens[100] == "" {
		t.Fatalf("hook token lookup failed: %v %v", tokens, err)
	}

	w = get(r, "/"+tokens[100]+"/left")
	if w.Code != http.StatusOK {
		t.Fatalf("webhook update -> %d: %s", w.Code, w.Body.String())
	}
	if !strings.HasPrefix(w.Body.String(), "Success! Status updated") {
		t.Fatalf("unexpected confirmation: %q", w.Body.String())
	}
}

func TestRouter_ListChatStatuses(t *testing.T) {
	r, db := newTestEngine(t, testConfig())
	ctx := context.Background()

	if _, err := repo.UpdateStatus(ctx, db, 42, 100, false, repo.NameFields{NickName: "neo"}, domain.StatusCameToWork, time.Now()); err != nil {
		t.Fatalf("seed status: %v", err)
	}

	w := get(r, "/api/v1/chats/100/statuses")
	if w.Code != http.StatusOK {
		t.Fatalf("list statuses -> %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Statuses []struct {
			UserID int64  `json:"user_id"`
			Status string `json:"status"`
		} `json:"statuses"`
		Pagination struct {
			Total int64 `json:"total"`
		} `json:"pagination"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid body: %v", err)
	}
	if len(resp.Statuses) != 1 || resp.Statuses[0].UserID != 42 || resp.Statuses[0].Status != "CameToWork" {
		t.Fatalf("unexpected listing: %+v", resp)
	}
	if resp.Pagination.Total != 1 {
		t.Fatalf("unexpected total: %d", resp.Pagination.Total)
	}
}

func TestRouter_SwaggerToggle(t *testing.T) {
	cfg := testConfig()
	r, _ := newTestEngine(t, cfg)
	if w := get(r, "/swagger/index.html"); w.Code != http.StatusNotFound {
		t.Fatalf("swagger disabled should 404, got %d", w.Code)
	}

	cfg.SwaggerEnabled = true
	r2, _ := newTestEngine(t, cfg)
	if w := get(r2, "/swagger/index.html"); w.Code != http.StatusOK {
		t.Fatalf("swagger enabled should 200, got %d", w.Code)
	}
}

func TestRouter_AllowlistedCORSOriginEcho(t *testing.T) {
	cfg := testConfig()
	cfg.CORS.AllowedOrigins = []string{"https://ops.example.com"}
	r, _ := newTestEngine(t, cfg)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://ops.example.com")
	r.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://ops.example.com" {
		t.Fatalf("expected origin echo, got %q", got)
	}
}
