package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variables recognized by the configuration loader.
const (
	EnvConfigPath        = "CONFIG_PATH"
	EnvDBConnection      = "DB_CONNECTION"
	EnvJWTSecret         = "JWT_SECRET"
	EnvJWTExpiry         = "JWT_EXPIRY"
	EnvPort              = "PORT"
	EnvSheetsCredsFile   = "SHEETS_CREDENTIALS_FILE"
	EnvSheetsSpreadsheet = "SHEETS_SPREADSHEET_ID"
	EnvSheetsLedgerReads = "SHEETS_LEDGER_READS"
	EnvRedisAddr         = "REDIS_ADDR"
)

// Defaults applied when the config file and environment are silent.
const (
	defaultPort      = 8420
	defaultSQLiteDSN = "dubytrack.db"
	// defaultJWTExpiry matches the session cookie lifetime.
	defaultJWTExpiry   = 7 * 24 * time.Hour
	defaultTemplateTab = "Template"
)

// JWTConfig holds session token secret and expiry settings.
type JWTConfig struct {
	Secret string        `yaml:"secret"`
	Expiry time.Duration `yaml:"expiry"`
}

// SheetsConfig holds the optional spreadsheet mirror settings. The mirror
// is enabled only when both the credentials and the spreadsheet ID are set.
// LedgerReads selects the spreadsheet as the source for the dashboard's
// remaining-budget figure; off, the relational store is authoritative and
// the sheet is write-only.
type SheetsConfig struct {
	CredentialsFile string `yaml:"credentials-file"`
	SpreadsheetID   string `yaml:"spreadsheet-id"`
	TemplateTab     string `yaml:"template-tab"`
	LedgerReads     bool   `yaml:"ledger-reads"`
}

// Enabled reports whether the mirror should be constructed.
func (s SheetsConfig) Enabled() bool {
	return strings.TrimSpace(s.CredentialsFile) != "" && strings.TrimSpace(s.SpreadsheetID) != ""
}

// RateLimitConfig holds auth endpoint rate limit settings.
type RateLimitConfig struct {
	PerSecond     int    `yaml:"per-second"`
	RedisAddr     string `yaml:"redis-addr"`
	RedisPassword string `yaml:"redis-password"`
	RedisDB       int    `yaml:"redis-db"`
	RedisPrefix   string `yaml:"redis-prefix"`
}

// Config holds resolved application configuration values.
type Config struct {
	Port     int `yaml:"port"`
	Database struct {
		DSN string `yaml:"dsn"`
	} `yaml:"database"`
	JWT       JWTConfig       `yaml:"jwt"`
	Sheets    SheetsConfig    `yaml:"sheets"`
	RateLimit RateLimitConfig `yaml:"rate-limit"`
}

// ResolveConfigPath normalizes the config path: an empty argument falls
// back to the CONFIG_PATH environment variable, then to ./config.yaml.
func ResolveConfigPath(p string) string {
	trimmed := strings.TrimSpace(p)
	if trimmed == "" {
		trimmed = strings.TrimSpace(os.Getenv(EnvConfigPath))
	}
	if trimmed == "" {
		trimmed = "./config.yaml"
	}
	if abs, err := filepath.Abs(trimmed); err == nil {
		return abs
	}
	return trimmed
}

// Load reads the YAML config file and applies environment overrides.
// A missing file is not an error: every setting has a default or an
// environment source, so a zero-config run lands on local SQLite.
func Load(configPath string) (Config, error) {
	var cfg Config

	data, errRead := os.ReadFile(configPath)
	if errRead == nil {
		if errUnmarshal := yaml.Unmarshal(data, &cfg); errUnmarshal != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", configPath, errUnmarshal)
		}
	} else if !os.IsNotExist(errRead) {
		return Config{}, fmt.Errorf("config: read %s: %w", configPath, errRead)
	}

	applyEnvOverrides(&cfg)
	applyDefaults(&cfg)
	return cfg, nil
}

// applyEnvOverrides lets environment variables win over file values.
func applyEnvOverrides(cfg *Config) {
	if dsn := strings.TrimSpace(os.Getenv(EnvDBConnection)); dsn != "" {
		cfg.Database.DSN = dsn
	}
	if secret := strings.TrimSpace(os.Getenv(EnvJWTSecret)); secret != "" {
		cfg.JWT.Secret = secret
	}
	if expiryRaw := strings.TrimSpace(os.Getenv(EnvJWTExpiry)); expiryRaw != "" {
		if expiry, errParse := time.ParseDuration(expiryRaw); errParse == nil && expiry > 0 {
			cfg.JWT.Expiry = expiry
		}
	}
	if portRaw := strings.TrimSpace(os.Getenv(EnvPort)); portRaw != "" {
		if port, errParse := strconv.Atoi(portRaw); errParse == nil && port > 0 && port <= 65535 {
			cfg.Port = port
		}
	}
	if creds := strings.TrimSpace(os.Getenv(EnvSheetsCredsFile)); creds != "" {
		cfg.Sheets.CredentialsFile = creds
	}
	if sheet := strings.TrimSpace(os.Getenv(EnvSheetsSpreadsheet)); sheet != "" {
		cfg.Sheets.SpreadsheetID = sheet
	}
	if reads := strings.TrimSpace(os.Getenv(EnvSheetsLedgerReads)); reads != "" {
		if enabled, errParse := strconv.ParseBool(reads); errParse == nil {
			cfg.Sheets.LedgerReads = enabled
		}
	}
	if addr := strings.TrimSpace(os.Getenv(EnvRedisAddr)); addr != "" {
		cfg.RateLimit.RedisAddr = addr
	}
}

// applyDefaults fills in anything still unset.
func applyDefaults(cfg *Config) {
	if cfg.Port <= 0 || cfg.Port > 65535 {
		cfg.Port = defaultPort
	}
	if strings.TrimSpace(cfg.Database.DSN) == "" {
		cfg.Database.DSN = defaultSQLiteDSN
	}
	if cfg.JWT.Expiry <= 0 {
		cfg.JWT.Expiry = defaultJWTExpiry
	}
	if strings.TrimSpace(cfg.Sheets.TemplateTab) == "" {
		cfg.Sheets.TemplateTab = defaultTemplateTab
	}
}
