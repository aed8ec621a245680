package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadParsesYAML(t *testing.T) {
	path := writeConfig(t, `
server:
  address: 127.0.0.1
  port: 9090
storage:
  db_path: /tmp/chatdb
  persist_history: false
user:
  id: u-1
  name: Reception A
limits:
  max_attachment_size: 5MB
sweep:
  enabled: true
  cron: "0 3 * * *"
  period: 168h
security:
  api_keys:
    backend: [bk1]
    frontend: [fk1, fk2]
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Addr() != "127.0.0.1:9090" {
		t.Fatalf("unexpected addr: %s", cfg.Addr())
	}
	if cfg.Storage.DBPath != "/tmp/chatdb" {
		t.Fatalf("unexpected db path: %s", cfg.Storage.DBPath)
	}
	if cfg.PersistHistory() {
		t.Fatalf("persist_history: false should stick")
	}
	if got := cfg.Limits.MaxAttachmentSize.Int64(); got != 5*1000*1000 {
		t.Fatalf("unexpected attachment cap: %d", got)
	}
	if cfg.Sweep.Period.Duration() != 168*time.Hour {
		t.Fatalf("unexpected sweep period: %v", cfg.Sweep.Period.Duration())
	}
	if len(cfg.Security.APIKeys.Frontend) != 2 {
		t.Fatalf("unexpected frontend keys: %v", cfg.Security.APIKeys.Frontend)
	}
}

func TestPersistHistoryDefaultsTrue(t *testing.T) {
	var cfg Config
	if !cfg.PersistHistory() {
		t.Fatalf("unset persist_history must default to true")
	}
}

func TestAddrDefaults(t *testing.T) {
	var cfg Config
	if cfg.Addr() != "0.0.0.0:8080" {
		t.Fatalf("unexpected default addr: %s", cfg.Addr())
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatalf("missing file should error")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("CLINICHAT_ADDR", "0.0.0.0:7070")
	t.Setenv("CLINICHAT_DB_PATH", "/tmp/envdb")
	t.Setenv("CLINICHAT_PERSIST_HISTORY", "false")
	t.Setenv("CLINICHAT_USER_ID", "u-env")
	t.Setenv("CLINICHAT_API_BACKEND_KEYS", "bk1, bk2")

	var cfg Config
	if !LoadEnvOverrides(&cfg) {
		t.Fatalf("env vars set but not reported as used")
	}
	if cfg.Addr() != "0.0.0.0:7070" {
		t.Fatalf("unexpected addr: %s", cfg.Addr())
	}
	if cfg.Storage.DBPath != "/tmp/envdb" {
		t.Fatalf("unexpected db path: %s", cfg.Storage.DBPath)
	}
	if cfg.PersistHistory() {
		t.Fatalf("env persist_history=false should stick")
	}
	if cfg.User.ID != "u-env" {
		t.Fatalf("unexpected user id: %s", cfg.User.ID)
	}
	if len(cfg.Security.APIKeys.Backend) != 2 || cfg.Security.APIKeys.Backend[1] != "bk2" {
		t.Fatalf("backend keys not parsed from list: %v", cfg.Security.APIKeys.Backend)
	}
}

func TestLoadEffectiveMissingFileFallsBack(t *testing.T) {
	t.Setenv("CLINICHAT_DB_PATH", "/tmp/envonly")
	cfg, envUsed, err := LoadEffective(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("LoadEffective: %v", err)
	}
	if !envUsed || cfg.Storage.DBPath != "/tmp/envonly" {
		t.Fatalf("env should drive config when the file is missing: %+v", cfg.Storage)
	}
}

func TestResolveConfigPath(t *testing.T) {
	t.Setenv("CLINICHAT_CONFIG", "/etc/clinichat.yaml")
	if got := ResolveConfigPath("./flag.yaml", true); got != "./flag.yaml" {
		t.Fatalf("explicit flag must win, got %s", got)
	}
	if got := ResolveConfigPath("./flag.yaml", false); got != "/etc/clinichat.yaml" {
		t.Fatalf("env should win over default, got %s", got)
	}
}
