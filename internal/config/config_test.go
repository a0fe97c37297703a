package config

import (
	"os"
	"testing"
)

func unsetBuildEnv() {
	_ = os.Unsetenv("SITEWISE_BUILD_TARGET")
	_ = os.Unsetenv("SITEWISE_DB_DRIVER")
	_ = os.Unsetenv("SITEWISE_SQLITE_PATH")
	_ = os.Unsetenv("SITEWISE_POSTGRES_DSN")
}

func TestConfigLoad_Defaults(t *testing.T) {
	unsetBuildEnv()
	_ = os.Unsetenv("SITEWISE_HTTP_PORT")
	_ = os.Unsetenv("SITEWISE_INSIGHTS_MODEL")

	cfg, err := New()
	if err != nil {
		t.Fatalf("config load: %v", err)
	}
	if cfg.HTTPPort != 8080 {
		t.Fatalf("unexpected default port: %d", cfg.HTTPPort)
	}
	if cfg.InsightsModel != "gemini-2.5-flash" {
		t.Fatalf("unexpected default insights model: %s", cfg.InsightsModel)
	}
	if cfg.TokenTTLHours != 24 {
		t.Fatalf("unexpected default token ttl: %d", cfg.TokenTTLHours)
	}
}

func TestConfigLoad_EnvOverride(t *testing.T) {
	unsetBuildEnv()
	_ = os.Setenv("SITEWISE_HTTP_PORT", "9191")
	defer func() { _ = os.Unsetenv("SITEWISE_HTTP_PORT") }()

	cfg, err := New()
	if err != nil {
		t.Fatalf("config load: %v", err)
	}
	if cfg.HTTPPort != 9191 {
		t.Fatalf("port env override failed, got %d", cfg.HTTPPort)
	}
}

func TestResolveDefaultsLocal(t *testing.T) {
	unsetBuildEnv()
	_ = os.Setenv("SITEWISE_BUILD_TARGET", "local")
	defer unsetBuildEnv()

	cfg, err := New()
	if err != nil {
		t.Fatalf("config load: %v", err)
	}
	if cfg.DBDriver != "sqlite" {
		t.Fatalf("unexpected mapping: %s", cfg.DBDriver)
	}
	if cfg.SQLitePath == "" {
		t.Fatalf("expected derived sqlite path")
	}
}

func TestResolveDefaultsCloudDev(t *testing.T) {
	unsetBuildEnv()
	_ = os.Setenv("SITEWISE_BUILD_TARGET", "cloud-dev")
	_ = os.Setenv("SITEWISE_POSTGRES_DSN", "postgres://localhost/sitewise")
	defer unsetBuildEnv()

	cfg, err := New()
	if err != nil {
		t.Fatalf("config load: %v", err)
	}
	if cfg.DBDriver != "postgres" {
		t.Fatalf("unexpected mapping: %s", cfg.DBDriver)
	}
}

func TestResolveDefaultsCloudDevMissingDSN(t *testing.T) {
	unsetBuildEnv()
	_ = os.Setenv("SITEWISE_BUILD_TARGET", "cloud-dev")
	defer unsetBuildEnv()

	if _, err := New(); err == nil {
		t.Fatalf("expected error for missing postgres dsn")
	}
}

func TestResolveDefaultsOverride(t *testing.T) {
	unsetBuildEnv()
	_ = os.Setenv("SITEWISE_BUILD_TARGET", "local")
	_ = os.Setenv("SITEWISE_DB_DRIVER", "postgres")
	_ = os.Setenv("SITEWISE_POSTGRES_DSN", "postgres://localhost/sitewise")
	defer unsetBuildEnv()

	cfg, err := New()
	if err != nil {
		t.Fatalf("config load: %v", err)
	}
	if cfg.DBDriver != "postgres" {
		t.Fatalf("override failed, got %s", cfg.DBDriver)
	}
}

func TestResolveDefaultsBadTarget(t *testing.T) {
	unsetBuildEnv()
	_ = os.Setenv("SITEWISE_BUILD_TARGET", "mainframe")
	defer unsetBuildEnv()

	if _, err := New(); err == nil {
		t.Fatalf("expected error for bad build target")
	}
}
