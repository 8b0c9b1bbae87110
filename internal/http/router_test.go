package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/vanzoel/chatguard/internal/auth"
	"github.com/vanzoel/chatguard/internal/config"
	"github.com/vanzoel/chatguard/internal/domain"
)

// --- test DB helper (pure-Go sqlite, no CGO) ---
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&domain.LockEntry{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

// newTestStack wires a router against an in-memory database with static
// roles only: developer 1, owner 2, everyone else plain users.
func newTestStack(t *testing.T, cfg config.Config) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	db := newTestDB(t)

	authSvc := auth.NewService(auth.Options{
		OwnerID:              2,
		DeveloperIDs:         []int64{1},
		EnablePublicCommands: true,
	})
	engine := NewLockEngine(db, authSvc, 0)

	RegisterRoutes(r, db, authSvc, engine, cfg)
	return r
}

func baseConfig() config.Config {
	return config.Config{
		APIBasePath: "/api/v1",
		RateRPS:     100,
		RateBurst:   10,
		CORS:        config.CORSConfig{AllowedOrigins: nil}, // triggers AllowAllOrigins branch
		Security:    config.SecurityConfig{EnableHSTS: false, HSTSMaxAge: 0},
		OTEL:        config.OTELConfig{ServiceName: "test-svc"},
	}
}

func TestRegisterRoutes_CORSAllowAll_Health_Metrics_Fallbacks(t *testing.T) {
	r := newTestStack(t, baseConfig())

	// /health works
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("GET /health = %d", w.Code)
	}
	// CORS (AllowAllOrigins) → header "*"
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("AllowAllOrigins expected '*', got %q", got)
	}

	// /metrics is wired
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/metrics", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK || len(w.Body.Bytes()) == 0 {
		t.Fatalf("GET /metrics bad: code=%d len=%d", w.Code, w.Body.Len())
	}

	// NoRoute → 404
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/nope", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("GET /nope expected 404, got %d", w.Code)
	}

	// NoMethod → 405 (POST /health)
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/health", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("POST /health expected 405, got %d", w.Code)
	}
}

func TestRegisterRoutes_CORSWithOrigins_HeaderEcho(t *testing.T) {
	cfg := baseConfig()
	cfg.CORS = config.CORSConfig{AllowedOrigins: []string{"http://example.com"}}
	r := newTestStack(t, cfg)

	// Any request runs through CORS middleware; header should reflect origin.
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://example.com")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("GET /health = %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://example.com" {
		t.Fatalf("expected ACAO echo, got %q", got)
	}
}

// End-to-end lock lifecycle through the full stack: developer locks a user,
// status reflects it, the owner unlocks, status clears.
func TestLockLifecycle_EndToEnd(t *testing.T) {
	r := newTestStack(t, baseConfig())

	do := func(method, path, userID, body string) *httptest.ResponseRecorder {
		t.Helper()
		var rd io.Reader
		if body != "" {
			rd = bytes.NewBufferString(body)
		}
		w := httptest.NewRecorder()
		req := httptest.NewRequest(method, path, rd)
		if userID != "" {
			req.Header.Set("X-User-ID", userID)
		}
		r.ServeHTTP(w, req)
		return w
	}

	// Developer (1) locks plain user 5.
	w := do(http.MethodPost, "/api/v1/chats/-100/locks", "1", `{"target_id":5,"reason":"spam"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("create lock = %d, body=%s", w.Code, w.Body.String())
	}
	var res domain.LockResult
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("json: %v", err)
	}
	if res.Outcome != domain.OutcomeLocked || res.LockedUserID != 5 {
		t.Fatalf("unexpected result: %+v", res)
	}

	// Status shows the lock.
	w = do(http.MethodGet, "/api/v1/chats/-100/locks/5", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var status struct {
		Locked bool              `json:"locked"`
		Entry  *domain.LockEntry `json:"entry"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &status); err != nil {
		t.Fatalf("json: %v", err)
	}
	if !status.Locked || status.Entry == nil || status.Entry.Reason != "spam" {
		t.Fatalf("unexpected status: %+v", status)
	}

	// Ordinary locks need at least the admin tier; 6 resolves to User.
	w = do(http.MethodDelete, "/api/v1/chats/-100/locks/5", "6", "")
	if w.Code != http.StatusForbidden {
		t.Fatalf("user unlock = %d, want 403", w.Code)
	}

	// Owner (2) unlocks.
	w = do(http.MethodDelete, "/api/v1/chats/-100/locks/5", "2", "")
	if w.Code != http.StatusNoContent {
		t.Fatalf("owner unlock = %d, body=%s", w.Code, w.Body.String())
	}

	// Status is now clear, and a second unlock reports no active lock.
	w = do(http.MethodGet, "/api/v1/chats/-100/locks/5", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	status.Locked = true
	if err := json.Unmarshal(w.Body.Bytes(), &status); err != nil {
		t.Fatalf("json: %v", err)
	}
	if status.Locked {
		t.Fatal("expected unlocked after owner unlock")
	}
	w = do(http.MethodDelete, "/api/v1/chats/-100/locks/5", "2", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("second unlock = %d, want 404", w.Code)
	}
}

// Locking the owner as a plain user must backfire on the issuer.
func TestLockBack_EndToEnd(t *testing.T) {
	r := newTestStack(t, baseConfig())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/chats/-100/locks",
		bytes.NewBufferString(`{"target_id":2}`))
	req.Header.Set("X-User-ID", "6")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("lock-back = %d, body=%s", w.Code, w.Body.String())
	}
	var res domain.LockResult
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("json: %v", err)
	}
	if res.Outcome != domain.OutcomeLockedBack || res.LockedUserID != 6 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if res.Entry == nil || res.Entry.Reason != "attempted to lock Orang Dalam" {
		t.Fatalf("unexpected entry: %+v", res.Entry)
	}
}

func Test_limitBody_Middleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	// tiny cap to trigger MaxBytesReader
	r.Use(limitBody(10))
	r.POST("/echo", func(c *gin.Context) {
		_, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.String(http.StatusRequestEntityTooLarge, "too big")
			return
		}
		c.String(http.StatusOK, "ok")
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/echo", bytes.NewBufferString("0123456789AB")) // 12 bytes
	r.ServeHTTP(w, req)
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413 from limitBody, got %d", w.Code)
	}
}

func Test_groupWithPrefix(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	// "/" and "" should mount at root
	root1 := groupWithPrefix(r, "/")
	root1.GET("/one", func(c *gin.Context) { c.String(http.StatusOK, "one") })
	root2 := groupWithPrefix(r, "")
	root2.GET("/two", func(c *gin.Context) { c.String(http.StatusOK, "two") })

	// non-root prefix
	api := groupWithPrefix(r, "/api")
	api.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	for path, want := range map[string]string{"/one": "one", "/two": "two", "/api/ping": "pong"} {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, path, nil)
		r.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK || rec.Body.String() != want {
			t.Fatalf("GET %s got %d %q", path, rec.Code, rec.Body.String())
		}
	}
}

func Test_lockStoreShim_Proxies(t *testing.T) {
	db := newTestDB(t)
	shim := lockStoreShim{db: db}
	ctx := context.Background()

	entry := &domain.LockEntry{ChatID: -100, UserID: 5, Reason: "spam"}
	if err := shim.Replace(ctx, entry); err != nil {
		t.Fatalf("Replace: %v", err)
	}
	if entry.ID == "" || !entry.Active {
		t.Fatalf("Replace left entry unfinished: %+v", entry)
	}

	got, err := shim.GetActive(ctx, -100, 5)
	if err != nil {
		t.Fatalf("GetActive: %v", err)
	}
	if got.ID != entry.ID {
		t.Fatalf("GetActive mismatch: got %s want %s", got.ID, entry.ID)
	}

	if n, err := shim.CountActive(ctx, -100); err != nil || n != 1 {
		t.Fatalf("CountActive = (%d, %v), want (1, nil)", n, err)
	}

	page, err := shim.ListActivePage(ctx, -100, 0, 10)
	if err != nil || len(page) != 1 {
		t.Fatalf("ListActivePage = (%d entries, %v)", len(page), err)
	}

	stats, err := shim.Stats(ctx)
	if err != nil || stats.ActiveLocks != 1 || stats.ChatsWithLocks != 1 {
		t.Fatalf("Stats = (%+v, %v)", stats, err)
	}

	if err := shim.Deactivate(ctx, -100, 5, time.Now().UTC()); err != nil {
		t.Fatalf("Deactivate: %v", err)
	}
	if _, err := shim.GetActive(ctx, -100, 5); err == nil {
		t.Fatal("expected no active lock after Deactivate")
	}

	// Bulk paths.
	if err := shim.Replace(ctx, &domain.LockEntry{ChatID: -200, UserID: 6, Reason: "x"}); err != nil {
		t.Fatalf("Replace: %v", err)
	}
	if n, err := shim.DeactivateChat(ctx, -200, time.Now().UTC()); err != nil || n != 1 {
		t.Fatalf("DeactivateChat = (%d, %v), want (1, nil)", n, err)
	}
	old := &domain.LockEntry{ChatID: -300, UserID: 7, Reason: "stale", CreatedAt: time.Now().UTC().Add(-60 * 24 * time.Hour)}
	if err := shim.Replace(ctx, old); err != nil {
		t.Fatalf("Replace: %v", err)
	}
	cutoff := time.Now().UTC().Add(-30 * 24 * time.Hour)
	if n, err := shim.DeactivateStale(ctx, cutoff, time.Now().UTC()); err != nil || n != 1 {
		t.Fatalf("DeactivateStale = (%d, %v), want (1, nil)", n, err)
	}
}
