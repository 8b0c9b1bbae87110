package config

import (
	"reflect"
	"testing"
	"time"
)

func TestMustLoad_PanicsOnInvalidConfig(t *testing.T) {
	t.Setenv("LOG_LEVEL", "verbose") // invalid -> Load() error
	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("MustLoad should panic on invalid config")
		}
	}()
	_ = MustLoad()
}

func TestLoad_DefaultsAndOverrides(t *testing.T) {
	t.Setenv("PORT", "8088")
	t.Setenv("GIN_MODE", "weird")    // normalizes to "release"
	t.Setenv("LOG_LEVEL", "warning") // normalizes to "warn"
	t.Setenv("API_BASE_PATH", "api/v1/")

	t.Setenv("OWNER_ID", "7777")
	t.Setenv("DEVELOPER_IDS", " 1 , 2 , junk , 3 ")
	t.Setenv("ADMIN_CHAT_IDS", "-100,-200")
	t.Setenv("ENABLE_PUBLIC_COMMANDS", "off")
	t.Setenv("ROLE_CACHE_TTL", "10m")
	t.Setenv("ADMIN_CACHE_TTL", "90s")
	t.Setenv("CACHE_MAX_ENTRIES", "500")

	t.Setenv("PROVIDER_URL", "http://gateway:9000")
	t.Setenv("PROVIDER_TIMEOUT", "2s")
	t.Setenv("LOCK_MAX_AGE", "168h")

	t.Setenv("RATE_RPS", "x")      // parse fallback -> 5.0
	t.Setenv("RATE_BURST", "nope") // parse fallback -> 10

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Port != "8088" || cfg.GinMode != "release" {
		t.Fatalf("server fields unexpected: %+v", cfg)
	}
	if cfg.LogLevel != "warn" || cfg.APIBasePath != "/api/v1" {
		t.Fatalf("logging fields unexpected: %+v", cfg)
	}

	if cfg.Auth.OwnerID != 7777 {
		t.Fatalf("OwnerID = %d", cfg.Auth.OwnerID)
	}
	if !reflect.DeepEqual(cfg.Auth.DeveloperIDs, []int64{1, 2, 3}) {
		t.Fatalf("DeveloperIDs = %v (malformed entries must be skipped)", cfg.Auth.DeveloperIDs)
	}
	if !reflect.DeepEqual(cfg.Auth.AdminChatIDs, []int64{-100, -200}) {
		t.Fatalf("AdminChatIDs = %v", cfg.Auth.AdminChatIDs)
	}
	if cfg.Auth.EnablePublicCommands {
		t.Fatalf("public commands toggle should be off")
	}
	if cfg.Auth.RoleCacheTTL != 10*time.Minute || cfg.Auth.AdminCacheTTL != 90*time.Second {
		t.Fatalf("cache TTLs unexpected: %+v", cfg.Auth)
	}
	if cfg.Auth.CacheMaxEntries != 500 {
		t.Fatalf("CacheMaxEntries = %d", cfg.Auth.CacheMaxEntries)
	}

	if cfg.Provider.URL != "http://gateway:9000" || cfg.Provider.Timeout != 2*time.Second {
		t.Fatalf("provider config unexpected: %+v", cfg.Provider)
	}
	if cfg.LockMaxAge != 168*time.Hour {
		t.Fatalf("LockMaxAge = %v", cfg.LockMaxAge)
	}
	if cfg.RateRPS != 5.0 || cfg.RateBurst != 10 {
		t.Fatalf("rate limiting unexpected: %+v", cfg)
	}
}

func TestLoad_CacheDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Auth.RoleCacheTTL != 5*time.Minute {
		t.Fatalf("ROLE_CACHE_TTL default = %v, want 5m", cfg.Auth.RoleCacheTTL)
	}
	if cfg.Auth.AdminCacheTTL != 3*time.Minute {
		t.Fatalf("ADMIN_CACHE_TTL default = %v, want 3m", cfg.Auth.AdminCacheTTL)
	}
	if cfg.Auth.CacheMaxEntries != 1000 {
		t.Fatalf("CACHE_MAX_ENTRIES default = %d, want 1000", cfg.Auth.CacheMaxEntries)
	}
	if !cfg.Auth.EnablePublicCommands {
		t.Fatalf("public commands should default to enabled")
	}
	if cfg.LockMaxAge != 30*24*time.Hour {
		t.Fatalf("LOCK_MAX_AGE default = %v, want 720h", cfg.LockMaxAge)
	}
}

func TestLoad_ValidationErrors(t *testing.T) {
	cases := map[string]string{
		"ROLE_CACHE_TTL":    "-5m",
		"CACHE_MAX_ENTRIES": "0",
		"PROVIDER_TIMEOUT":  "-1s",
		"LOCK_MAX_AGE":      "-24h",
		"RATE_BURST":        "0",
	}
	for key, val := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, val)
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s=%s", key, val)
			}
		})
	}
}
