package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/lite-lake/technisync/internal/domain"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func clearServerEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"SERVER1_URL", "SERVER1_API_KEY", "SERVER2_URL", "SERVER2_API_KEY",
		"SYNC_INTERVAL", "DB_PATH", "LOG_LEVEL", "ZONES_TO_SYNC", "SYNC_REVERSE_ZONES", "DNS_PORT",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoadFile_YAML(t *testing.T) {
	clearServerEnv(t)
	path := writeConfig(t, `
servers:
  - name: ns1
    url: http://dns1.lan:5380
    api_key: key-one
  - name: ns2
    url: http://dns2.lan:5380
    api_key: key-two
sync_interval: 120
log_level: DEBUG
zones_to_sync:
  - example.com
sync_reverse_zones: true
db_path: /tmp/state.db
`)

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(cfg.Servers) != 2 {
		t.Fatalf("expected 2 servers, got %d", len(cfg.Servers))
	}
	if cfg.Servers[0].Name != "ns1" || cfg.Servers[0].APIKey != "key-one" {
		t.Errorf("unexpected first server: %+v", cfg.Servers[0])
	}
	if cfg.SyncInterval != 120*time.Second {
		t.Errorf("expected 120s interval, got %v", cfg.SyncInterval)
	}
	if cfg.LogLevel != "DEBUG" {
		t.Errorf("expected DEBUG, got %s", cfg.LogLevel)
	}
	if !cfg.SyncReverseZones {
		t.Error("expected sync_reverse_zones true")
	}
	if cfg.DBPath != "/tmp/state.db" {
		t.Errorf("expected /tmp/state.db, got %s", cfg.DBPath)
	}
}

func TestLoadFile_EnvOverrides(t *testing.T) {
	clearServerEnv(t)
	path := writeConfig(t, `
servers:
  - name: server1
    url: http://old.lan:5380
    api_key: old-key
sync_interval: 120
`)

	t.Setenv("SERVER1_URL", "http://new.lan:5380")
	t.Setenv("SERVER1_API_KEY", "new-key")
	t.Setenv("SERVER2_URL", "http://extra.lan:5380")
	t.Setenv("SERVER2_API_KEY", "extra-key")
	t.Setenv("SYNC_INTERVAL", "60")
	t.Setenv("DB_PATH", "/data/dns_sync.db")
	t.Setenv("ZONES_TO_SYNC", "example.com , example.org,")

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(cfg.Servers) != 2 {
		t.Fatalf("expected 2 servers, got %d", len(cfg.Servers))
	}
	if cfg.Servers[0].URL != "http://new.lan:5380" || cfg.Servers[0].APIKey != "new-key" {
		t.Errorf("expected server1 overridden in place, got %+v", cfg.Servers[0])
	}
	if cfg.Servers[1].Name != "server2" {
		t.Errorf("expected appended server2, got %+v", cfg.Servers[1])
	}
	if cfg.SyncInterval != 60*time.Second {
		t.Errorf("expected 60s interval, got %v", cfg.SyncInterval)
	}
	if cfg.DBPath != "/data/dns_sync.db" {
		t.Errorf("expected /data/dns_sync.db, got %s", cfg.DBPath)
	}
	if len(cfg.ZonesToSync) != 2 || cfg.ZonesToSync[0] != "example.com" || cfg.ZonesToSync[1] != "example.org" {
		t.Errorf("unexpected zone filter: %v", cfg.ZonesToSync)
	}
}

func TestLoadFile_EnvOnly(t *testing.T) {
	clearServerEnv(t)
	t.Setenv("SERVER1_URL", "http://dns1.lan:5380")
	t.Setenv("SERVER1_API_KEY", "key")

	cfg, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cfg.Servers) != 1 || cfg.Servers[0].Name != "server1" {
		t.Fatalf("expected server1 from env, got %+v", cfg.Servers)
	}
	if cfg.SyncInterval != DefaultSyncInterval {
		t.Errorf("expected default interval, got %v", cfg.SyncInterval)
	}
	if cfg.DBPath != DefaultDBPath {
		t.Errorf("expected default db path, got %s", cfg.DBPath)
	}
}

func TestLoadFile_NoServers(t *testing.T) {
	clearServerEnv(t)
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	if !errors.Is(err, domain.ErrNoServers) {
		t.Fatalf("expected ErrNoServers, got %v", err)
	}
}

func TestLoadFile_InvalidYAML(t *testing.T) {
	clearServerEnv(t)
	path := writeConfig(t, "servers: [unclosed")
	_, err := LoadFile(path)
	if !errors.Is(err, domain.ErrConfigParseFailed) {
		t.Fatalf("expected ErrConfigParseFailed, got %v", err)
	}
}

func TestConfig_ShouldSyncZone(t *testing.T) {
	tests := []struct {
		name     string
		cfg      Config
		zone     string
		expected bool
	}{
		{name: "internal zone never syncs", cfg: Config{}, zone: "127.in-addr.arpa", expected: false},
		{name: "empty filter syncs all", cfg: Config{}, zone: "example.com", expected: true},
		{name: "filter match", cfg: Config{ZonesToSync: []string{"example.com"}}, zone: "example.com", expected: true},
		{name: "filter miss", cfg: Config{ZonesToSync: []string{"example.com"}}, zone: "other.com", expected: false},
		{
			name:     "reverse zone bypasses filter when enabled",
			cfg:      Config{ZonesToSync: []string{"example.com"}, SyncReverseZones: true},
			zone:     "1.168.192.in-addr.arpa",
			expected: true,
		},
		{
			name:     "reverse zone filtered when disabled",
			cfg:      Config{ZonesToSync: []string{"example.com"}},
			zone:     "1.168.192.in-addr.arpa",
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.ShouldSyncZone(tt.zone); got != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}
