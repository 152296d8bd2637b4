package config

import (
	"os"
	"path/filepath"
	"testing"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"APP_ENV", "PORT", "DB_PATH", "LOG_LEVEL", "TAX_PERCENT",
		"REMOTE_URL", "REMOTE_API_KEY", "S3_BUCKET", "S3_REGION",
		"MONGODB_URI", "MONGODB_DB_NAME", "MONTHLY_SNAPSHOT_CRON", "TIMEZONE",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != defaultPort || cfg.DBPath != defaultDBPath {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if !cfg.IsDev() {
		t.Fatalf("expected dev mode by default")
	}
	if cfg.TaxPercent != 5 {
		t.Fatalf("tax percent = %v, want 5", cfg.TaxPercent)
	}
	if cfg.Reporting.SnapshotCron != defaultSnapshotCron {
		t.Fatalf("snapshot cron = %q", cfg.Reporting.SnapshotCron)
	}
	if cfg.Location().String() != defaultTimezone {
		t.Fatalf("location = %s", cfg.Location())
	}
}

func TestLoadFromEnvFile(t *testing.T) {
	clearEnv(t)
	// godotenv does not override variables that are already set, even when empty.
	for _, key := range []string{"PORT", "DB_PATH", "REMOTE_URL", "REMOTE_API_KEY"} {
		os.Unsetenv(key)
	}

	path := filepath.Join(t.TempDir(), ".env")
	content := "PORT=9090\nDB_PATH=/tmp/spice.db\nREMOTE_URL=https://backend.example.com/rest/v1/\nREMOTE_API_KEY=anon\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Cleanup(func() {
		for _, key := range []string{"PORT", "DB_PATH", "REMOTE_URL", "REMOTE_API_KEY"} {
			os.Unsetenv(key)
		}
	})

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "9090" || cfg.DBPath != "/tmp/spice.db" {
		t.Fatalf("env file not applied: %+v", cfg)
	}
	if cfg.Remote.URL != "https://backend.example.com/rest/v1" {
		t.Fatalf("remote url = %q", cfg.Remote.URL)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]map[string]string{
		"bad env":       {"APP_ENV": "staging"},
		"bad tax":       {"TAX_PERCENT": "abc"},
		"tax range":     {"TAX_PERCENT": "120"},
		"negative tax":  {"TAX_PERCENT": "-1"},
		"remote no key": {"REMOTE_URL": "https://backend.example.com"},
		"bad timezone":  {"TIMEZONE": "Mars/Olympus"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range env {
				t.Setenv(k, v)
			}
			if _, err := Load(filepath.Join(t.TempDir(), "missing.env")); err == nil {
				t.Fatalf("expected error for %v", env)
			}
		})
	}
}
