package config

import (
	"os"
	"testing"
	"time"
)

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatal(err)
		}
	})
}

func TestLoad_RequiresDatabaseURL(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("DATABASE_URL", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error when DATABASE_URL is empty")
	}
}

func TestLoad_ReadsEnvironment(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("DATABASE_URL", "postgres://localhost/placement")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("EXPORT_RATE_LIMIT", "3")
	t.Setenv("EXPORT_RATE_WINDOW", "30s")
	t.Setenv("DB_MAX_OPEN_CONNS", "not-a-number")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, ,http://b.test")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.HTTPPort != "9090" {
		t.Errorf("HTTPPort = %q, want 9090", cfg.HTTPPort)
	}
	if cfg.ExportRateLimit != 3 || cfg.ExportRateWindow != 30*time.Second {
		t.Errorf("export limit = %d/%v, want 3/30s", cfg.ExportRateLimit, cfg.ExportRateWindow)
	}
	if cfg.DBMaxOpenConns != 25 {
		t.Errorf("DBMaxOpenConns = %d, want default 25 for unparsable value", cfg.DBMaxOpenConns)
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "http://b.test" {
		t.Errorf("CORSAllowedOrigins = %v", cfg.CORSAllowedOrigins)
	}
}
