package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/lite-lake/technisync/internal/domain"
	"github.com/lite-lake/technisync/internal/domain/entity"
)

const (
	DefaultConfigPath   = "config.yaml"
	DefaultDBPath       = "./data/dns_sync.db"
	DefaultSyncInterval = 300 * time.Second
	DefaultDNSPort      = 53
)

// Config is the resolved runtime configuration: YAML file first,
// environment on top.
type Config struct {
	Servers          []entity.Server
	SyncInterval     time.Duration
	DBPath           string
	LogLevel         string
	ZonesToSync      []string
	SyncReverseZones bool
	DNSPort          int
}

type fileConfig struct {
	Servers          []entity.Server `yaml:"servers"`
	SyncInterval     int             `yaml:"sync_interval"`
	DBPath           string          `yaml:"db_path"`
	LogLevel         string          `yaml:"log_level"`
	ZonesToSync      []string        `yaml:"zones_to_sync"`
	SyncReverseZones bool            `yaml:"sync_reverse_zones"`
	DNSPort          int             `yaml:"dns_port"`
}

// Load reads the config file named by CONFIG_PATH and applies
// environment overrides. A missing config file is not an error as long
// as the environment defines the servers.
func Load() (*Config, error) {
	_ = godotenv.Load()

	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = DefaultConfigPath
	}
	return LoadFile(path)
}

func LoadFile(path string) (*Config, error) {
	_ = godotenv.Load()

	fc := fileConfig{}

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// env-only configuration
	case err != nil:
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrConfigReadFailed, path, err)
	default:
		if err := yaml.Unmarshal(data, &fc); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", domain.ErrConfigParseFailed, path, err)
		}
	}

	cfg := fromFile(&fc)
	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func fromFile(fc *fileConfig) *Config {
	cfg := &Config{
		Servers:          fc.Servers,
		SyncInterval:     DefaultSyncInterval,
		DBPath:           DefaultDBPath,
		LogLevel:         "INFO",
		ZonesToSync:      fc.ZonesToSync,
		SyncReverseZones: fc.SyncReverseZones,
		DNSPort:          DefaultDNSPort,
	}
	if fc.SyncInterval > 0 {
		cfg.SyncInterval = time.Duration(fc.SyncInterval) * time.Second
	}
	if fc.DBPath != "" {
		cfg.DBPath = fc.DBPath
	}
	if fc.LogLevel != "" {
		cfg.LogLevel = fc.LogLevel
	}
	if fc.DNSPort > 0 {
		cfg.DNSPort = fc.DNSPort
	}
	return cfg
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("SYNC_INTERVAL"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			cfg.SyncInterval = time.Duration(secs) * time.Second
		}
	}
	if v := os.Getenv("DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v, ok := os.LookupEnv("ZONES_TO_SYNC"); ok {
		cfg.ZonesToSync = splitZones(v)
	}
	if v := os.Getenv("SYNC_REVERSE_ZONES"); v != "" {
		cfg.SyncReverseZones = strings.EqualFold(v, "true")
	}
	if v := os.Getenv("DNS_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil && port > 0 {
			cfg.DNSPort = port
		}
	}
	applyServerEnv(cfg)
}

// applyServerEnv folds SERVER<i>_URL / SERVER<i>_API_KEY pairs into
// the server list. Numbering starts at 1 and must be contiguous; a
// YAML server named server<i> is overridden in place, anything else
// is appended.
func applyServerEnv(cfg *Config) {
	for i := 1; ; i++ {
		url := os.Getenv(fmt.Sprintf("SERVER%d_URL", i))
		apiKey := os.Getenv(fmt.Sprintf("SERVER%d_API_KEY", i))
		if url == "" || apiKey == "" {
			break
		}
		name := fmt.Sprintf("server%d", i)

		replaced := false
		for j := range cfg.Servers {
			if cfg.Servers[j].Name == name {
				cfg.Servers[j].URL = url
				cfg.Servers[j].APIKey = apiKey
				replaced = true
				break
			}
		}
		if !replaced {
			cfg.Servers = append(cfg.Servers, entity.Server{Name: name, URL: url, APIKey: apiKey})
		}
	}
}

func splitZones(s string) []string {
	var zones []string
	for _, zone := range strings.Split(s, ",") {
		zone = strings.TrimSpace(zone)
		if zone != "" {
			zones = append(zones, zone)
		}
	}
	return zones
}

func (c *Config) Validate() error {
	if len(c.Servers) == 0 {
		return domain.ErrNoServers
	}
	seen := make(map[string]bool, len(c.Servers))
	for i := range c.Servers {
		s := &c.Servers[i]
		if err := s.Validate(); err != nil {
			return domain.WrapEntity("server", s.Name, err)
		}
		if seen[s.Name] {
			return fmt.Errorf("%w: duplicate server name %s", domain.ErrConfigValidateFail, s.Name)
		}
		seen[s.Name] = true
	}
	if c.SyncInterval <= 0 {
		return fmt.Errorf("%w: sync interval must be positive", domain.ErrInvalidInterval)
	}
	if c.DBPath == "" {
		return domain.RequiredField("db_path")
	}
	return nil
}

// ShouldSyncZone applies the zone filter: internal zones never sync;
// an empty filter syncs everything; reverse zones sync regardless of
// the filter when reverse-zone handling is on.
func (c *Config) ShouldSyncZone(zone string) bool {
	if entity.IsInternalZone(zone) {
		return false
	}
	if len(c.ZonesToSync) == 0 {
		return true
	}
	for _, z := range c.ZonesToSync {
		if z == zone {
			return true
		}
	}
	return c.SyncReverseZones && entity.IsReverseZone(zone)
}
