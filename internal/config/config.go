package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"ctxkeep/internal/models"
)

const (
	DefaultAPIURL         = "http://127.0.0.1:7411"
	DefaultLogLevel       = "info"
	DefaultDirName        = "ContextBuilder"
	DefaultConfigFileName = ".ctxkeep.toml"

	DefaultPresignTTLSeconds       = 3600
	DefaultMaxUploadBytes    int64 = 50 * 1024 * 1024

	configDirEnvKey     = "CTXKEEP_CONFIG_DIR"
	apiURLEnvKey        = "CTXKEEP_API_URL"
	userIDEnvKey        = "CTXKEEP_USER_ID"
	presignSecretEnvKey = "CTXKEEP_PRESIGN_SECRET"
)

// ServerConfig defines runtime configuration for the sync API server.
type ServerConfig struct {
	DBPath            string `toml:"db_path"`
	BlobDir           string `toml:"blob_dir"`
	BaseURL           string `toml:"base_url"`
	PresignSecret     string `toml:"presign_secret"`
	PresignTTLSeconds int    `toml:"presign_ttl_seconds"`
	MaxUploadBytes    int64  `toml:"max_upload_bytes"`
}

// Config defines runtime configuration for ctxkeep.
type Config struct {
	DataDir  string       `toml:"data_dir"`
	APIURL   string       `toml:"api_url"`
	UserID   string       `toml:"user_id"`
	LogLevel string       `toml:"log_level"`
	Server   ServerConfig `toml:"server"`
}

// Default returns default configuration values. Paths that depend on the
// home directory are resolved in Load.
func Default() Config {
	return Config{
		APIURL:   DefaultAPIURL,
		UserID:   models.DefaultUserID,
		LogLevel: DefaultLogLevel,
		Server: ServerConfig{
			PresignTTLSeconds: DefaultPresignTTLSeconds,
			MaxUploadBytes:    DefaultMaxUploadBytes,
		},
	}
}

// Load reads the config file and applies env overrides.
func Load() (*Config, error) {
	cfg := Default()

	path, err := Path()
	if err != nil {
		return nil, err
	}
	if err := loadFileIfExists(path, &cfg); err != nil {
		return nil, err
	}

	applyEnvOverrides(&cfg)

	if cfg.DataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve data dir: %w", err)
		}
		cfg.DataDir = filepath.Join(home, DefaultDirName)
	}
	if cfg.Server.DBPath == "" {
		cfg.Server.DBPath = filepath.Join(cfg.DataDir, "remote.db")
	}
	if cfg.Server.BlobDir == "" {
		cfg.Server.BlobDir = filepath.Join(cfg.DataDir, "blobs")
	}
	if cfg.Server.BaseURL == "" {
		cfg.Server.BaseURL = cfg.APIURL
	}
	if cfg.UserID == "" {
		cfg.UserID = models.DefaultUserID
	}
	if cfg.Server.PresignTTLSeconds <= 0 {
		cfg.Server.PresignTTLSeconds = DefaultPresignTTLSeconds
	}
	if cfg.Server.MaxUploadBytes <= 0 {
		cfg.Server.MaxUploadBytes = DefaultMaxUploadBytes
	}

	return &cfg, nil
}

// Path returns the config file location, honoring the dir override env var.
func Path() (string, error) {
	if dir := strings.TrimSpace(os.Getenv(configDirEnvKey)); dir != "" {
		return filepath.Join(dir, DefaultConfigFileName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, DefaultConfigFileName), nil
}

func loadFileIfExists(path string, cfg *Config) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if info.IsDir() {
		return nil
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv(apiURLEnvKey)); v != "" {
		cfg.APIURL = v
	}
	if v := strings.TrimSpace(os.Getenv(userIDEnvKey)); v != "" {
		cfg.UserID = v
	}
	if v := strings.TrimSpace(os.Getenv(presignSecretEnvKey)); v != "" {
		cfg.Server.PresignSecret = v
	}
}

var allowedKeys = []string{
	"data_dir",
	"api_url",
	"user_id",
	"log_level",
	"server.db_path",
	"server.blob_dir",
	"server.base_url",
	"server.presign_secret",
	"server.presign_ttl_seconds",
	"server.max_upload_bytes",
}

// AllowedKeys returns the set of valid config keys.
func AllowedKeys() []string {
	return allowedKeys
}

// IsAllowedKey checks if a key is a valid config key.
func IsAllowedKey(key string) bool {
	for _, k := range allowedKeys {
		if k == key {
			return true
		}
	}
	return false
}

// Get returns the value of a config key.
func (c *Config) Get(key string) (string, error) {
	switch key {
	case "data_dir":
		return c.DataDir, nil
	case "api_url":
		return c.APIURL, nil
	case "user_id":
		return c.UserID, nil
	case "log_level":
		return c.LogLevel, nil
	case "server.db_path":
		return c.Server.DBPath, nil
	case "server.blob_dir":
		return c.Server.BlobDir, nil
	case "server.base_url":
		return c.Server.BaseURL, nil
	case "server.presign_secret":
		return c.Server.PresignSecret, nil
	case "server.presign_ttl_seconds":
		return strconv.Itoa(c.Server.PresignTTLSeconds), nil
	case "server.max_upload_bytes":
		return strconv.FormatInt(c.Server.MaxUploadBytes, 10), nil
	default:
		return "", fmt.Errorf("unknown key: %s", key)
	}
}

// SetKey reads the TOML file at path, sets key=value, and writes it back.
func SetKey(path, key, value string) error {
	if !IsAllowedKey(key) {
		return fmt.Errorf("unknown key: %s", key)
	}

	data := make(map[string]any)
	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, &data); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
	}

	parsed, err := parseSetValue(key, value)
	if err != nil {
		return err
	}
	parts := strings.Split(key, ".")
	node := data
	for _, part := range parts[:len(parts)-1] {
		child, ok := node[part].(map[string]any)
		if !ok {
			child = make(map[string]any)
			node[part] = child
		}
		node = child
	}
	node[parts[len(parts)-1]] = parsed

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(data)
}

func parseSetValue(key, value string) (any, error) {
	switch key {
	case "server.presign_ttl_seconds":
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid value for %s: %q", key, value)
		}
		return n, nil
	case "server.max_upload_bytes":
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid value for %s: %q", key, value)
		}
		return n, nil
	default:
		return value, nil
	}
}
