package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	DefaultAPIURL            = "http://127.0.0.1:7433"
	DefaultLogLevel          = "info"
	DefaultStorageBackend    = "sqlite"
	DefaultDBFileName        = ".taskhub.db"
	DefaultIDPrefix          = "tk"
	DefaultCacheTTL          = 30 * time.Second
	DefaultSessionTTL        = 24 * time.Hour
	DefaultActivityLimit     = 1000
	DefaultNotificationLimit = 200
	DefaultAMQPExchange      = "taskhub.events"

	configFileName           = ".taskhub.toml"
	configDirEnvKey          = "TASKHUB_CONFIG_DIR"
	trustProjectConfigEnvKey = "TASKHUB_TRUST_PROJECT_CONFIG"

	snapCommonConfigRelativePath = "snap/taskhub/common/.taskhub.toml"
)

// StorageConfig selects the storage backend.
type StorageConfig struct {
	Backend string `toml:"backend"`
	// Path is the database file for sqlite or the directory for file storage.
	Path string `toml:"path"`
	DSN  string `toml:"dsn"`
}

// EventsConfig configures event forwarding to a broker.
type EventsConfig struct {
	AMQPURL  string `toml:"amqp_url"`
	Exchange string `toml:"exchange"`
}

// CollabConfig sizes the activity feed and inboxes.
type CollabConfig struct {
	ActivityLimit        int  `toml:"activity_limit"`
	NotificationLimit    int  `toml:"notification_limit"`
	DisableNotifications bool `toml:"disable_notifications"`
}

// Config defines runtime configuration for taskhub.
type Config struct {
	APIURL     string        `toml:"api_url"`
	LogLevel   string        `toml:"log_level"`
	IDPrefix   string        `toml:"id_prefix"`
	CacheTTL   time.Duration `toml:"cache_ttl"`
	SessionTTL time.Duration `toml:"session_ttl"`
	Storage    StorageConfig `toml:"storage"`
	Events     EventsConfig  `toml:"events"`
	Collab     CollabConfig  `toml:"collab"`

	TrustedProjectConfigPath string `toml:"-"`
}

// Default returns default configuration values.
func Default() Config {
	return Config{
		APIURL:     DefaultAPIURL,
		LogLevel:   DefaultLogLevel,
		IDPrefix:   DefaultIDPrefix,
		CacheTTL:   DefaultCacheTTL,
		SessionTTL: DefaultSessionTTL,
		Storage:    StorageConfig{Backend: DefaultStorageBackend},
		Events:     EventsConfig{Exchange: DefaultAMQPExchange},
		Collab: CollabConfig{
			ActivityLimit:     DefaultActivityLimit,
			NotificationLimit: DefaultNotificationLimit,
		},
	}
}

func loadFile(path string, cfg *Config) error {
	_, err := loadFileIfExists(path, cfg)
	return err
}

func loadFileIfExists(path string, cfg *Config) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	if info.IsDir() {
		return false, nil
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return false, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return true, nil
}

func overrideConfigPath() (string, bool) {
	dir := strings.TrimSpace(os.Getenv(configDirEnvKey))
	if dir == "" {
		return "", false
	}
	return filepath.Join(dir, configFileName), true
}

func trustProjectConfig() bool {
	raw := strings.TrimSpace(os.Getenv(trustProjectConfigEnvKey))
	if raw == "" {
		return false
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return false
	}
	return value
}

var allowedKeys = []string{
	"api_url",
	"log_level",
	"id_prefix",
	"cache_ttl",
	"session_ttl",
	"storage.backend",
	"storage.path",
	"storage.dsn",
	"events.amqp_url",
	"events.exchange",
	"collab.activity_limit",
	"collab.notification_limit",
	"collab.disable_notifications",
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
	case "api_url":
		return c.APIURL, nil
	case "log_level":
		return c.LogLevel, nil
	case "id_prefix":
		return c.IDPrefix, nil
	case "cache_ttl":
		return c.CacheTTL.String(), nil
	case "session_ttl":
		return c.SessionTTL.String(), nil
	case "storage.backend":
		return c.Storage.Backend, nil
	case "storage.path":
		return c.Storage.Path, nil
	case "storage.dsn":
		return c.Storage.DSN, nil
	case "events.amqp_url":
		return c.Events.AMQPURL, nil
	case "events.exchange":
		return c.Events.Exchange, nil
	case "collab.activity_limit":
		return strconv.Itoa(c.Collab.ActivityLimit), nil
	case "collab.notification_limit":
		return strconv.Itoa(c.Collab.NotificationLimit), nil
	case "collab.disable_notifications":
		return strconv.FormatBool(c.Collab.DisableNotifications), nil
	default:
		return "", fmt.Errorf("unknown key: %s", key)
	}
}

// GlobalPath returns the path to the global config file.
func GlobalPath() (string, error) {
	if path, ok := overrideConfigPath(); ok {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	homePath := filepath.Join(home, configFileName)
	if info, statErr := os.Stat(homePath); statErr == nil && !info.IsDir() {
		return homePath, nil
	} else if statErr != nil && !os.IsNotExist(statErr) {
		return "", statErr
	}

	snapPath := filepath.Join(home, snapCommonConfigRelativePath)
	if info, statErr := os.Stat(snapPath); statErr == nil && !info.IsDir() {
		return snapPath, nil
	} else if statErr != nil && !os.IsNotExist(statErr) {
		return "", statErr
	}

	return homePath, nil
}

// ProjectPath returns the path to the project config file.
func ProjectPath() (string, error) {
	if path, ok := overrideConfigPath(); ok {
		return path, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(cwd, configFileName), nil
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

	parsedValue, err := parseSetValue(key, value)
	if err != nil {
		return err
	}
	if err := setNestedKey(data, strings.Split(key, "."), parsedValue); err != nil {
		return err
	}

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

// Load reads config from trusted files and applies env overrides.
func Load() (*Config, error) {
	cfg := Default()

	if overridePath, ok := overrideConfigPath(); ok {
		if err := loadFile(overridePath, &cfg); err != nil {
			return nil, err
		}
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			homePath := filepath.Join(home, configFileName)
			homeLoaded, loadErr := loadFileIfExists(homePath, &cfg)
			if loadErr != nil {
				return nil, loadErr
			}
			if !homeLoaded {
				snapPath := filepath.Join(home, snapCommonConfigRelativePath)
				if err := loadFile(snapPath, &cfg); err != nil {
					return nil, err
				}
			}
		}

		if trustProjectConfig() {
			if cwd, err := os.Getwd(); err == nil {
				projectPath := filepath.Join(cwd, configFileName)
				info, statErr := os.Stat(projectPath)
				switch {
				case statErr == nil && !info.IsDir():
					if err := loadFile(projectPath, &cfg); err != nil {
						return nil, err
					}
					cfg.TrustedProjectConfigPath = projectPath
				case statErr != nil && !os.IsNotExist(statErr):
					return nil, statErr
				}
			}
		}
	}

	applyEnv(&cfg)
	cfg.normalize()

	if cfg.Storage.Path == "" && cfg.Storage.Backend != "memory" && cfg.Storage.Backend != "postgres" {
		if cwd, err := os.Getwd(); err == nil {
			name := DefaultDBFileName
			if cfg.Storage.Backend == "file" {
				name = ".taskhub"
			}
			cfg.Storage.Path = filepath.Join(cwd, name)
		}
	}

	return &cfg, nil
}

func applyEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv("TASKHUB_API_URL")); v != "" {
		cfg.APIURL = v
	}
	if v := strings.TrimSpace(os.Getenv("TASKHUB_LOG_LEVEL")); v != "" {
		cfg.LogLevel = v
	}
	if v := strings.TrimSpace(os.Getenv("TASKHUB_STORAGE_BACKEND")); v != "" {
		cfg.Storage.Backend = v
	}
	if v := strings.TrimSpace(os.Getenv("TASKHUB_STORAGE_PATH")); v != "" {
		cfg.Storage.Path = v
	}
	if v := strings.TrimSpace(os.Getenv("TASKHUB_STORAGE_DSN")); v != "" {
		cfg.Storage.DSN = v
	}
	if v := strings.TrimSpace(os.Getenv("TASKHUB_AMQP_URL")); v != "" {
		cfg.Events.AMQPURL = v
	}
}

func (c *Config) normalize() {
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	c.Storage.Backend = strings.ToLower(strings.TrimSpace(c.Storage.Backend))
	if c.Storage.Backend == "" {
		c.Storage.Backend = DefaultStorageBackend
	}
	if strings.TrimSpace(c.IDPrefix) == "" {
		c.IDPrefix = DefaultIDPrefix
	}
	if c.CacheTTL < 0 {
		c.CacheTTL = 0
	}
	if c.SessionTTL <= 0 {
		c.SessionTTL = DefaultSessionTTL
	}
	if c.Events.Exchange == "" {
		c.Events.Exchange = DefaultAMQPExchange
	}
	if c.Collab.ActivityLimit <= 0 {
		c.Collab.ActivityLimit = DefaultActivityLimit
	}
	if c.Collab.NotificationLimit <= 0 {
		c.Collab.NotificationLimit = DefaultNotificationLimit
	}
}

func parseSetValue(key, value string) (any, error) {
	value = strings.TrimSpace(value)
	switch key {
	case "cache_ttl", "session_ttl":
		parsed, err := time.ParseDuration(value)
		if err != nil || parsed < 0 {
			return nil, fmt.Errorf("%s must be a duration such as 30s or 24h", key)
		}
		return parsed.String(), nil
	case "collab.activity_limit", "collab.notification_limit":
		parsed, err := strconv.Atoi(value)
		if err != nil || parsed <= 0 {
			return nil, fmt.Errorf("%s must be a positive integer", key)
		}
		return parsed, nil
	case "collab.disable_notifications":
		parsed, err := strconv.ParseBool(value)
		if err != nil {
			return nil, fmt.Errorf("%s must be true or false", key)
		}
		return parsed, nil
	case "log_level":
		switch strings.ToLower(value) {
		case "debug", "info", "warn", "error":
			return strings.ToLower(value), nil
		}
		return nil, fmt.Errorf("%s must be one of debug, info, warn, error", key)
	case "storage.backend":
		switch strings.ToLower(value) {
		case "memory", "file", "sqlite", "postgres":
			return strings.ToLower(value), nil
		}
		return nil, fmt.Errorf("%s must be one of memory, file, sqlite, postgres", key)
	default:
		return value, nil
	}
}

func setNestedKey(data map[string]any, parts []string, value any) error {
	if len(parts) == 0 {
		return fmt.Errorf("invalid config key")
	}
	if len(parts) == 1 {
		data[parts[0]] = value
		return nil
	}
	childRaw, ok := data[parts[0]]
	if !ok {
		child := map[string]any{}
		data[parts[0]] = child
		return setNestedKey(child, parts[1:], value)
	}
	child, ok := childRaw.(map[string]any)
	if !ok {
		return fmt.Errorf("cannot set nested key %q", strings.Join(parts, "."))
	}
	return setNestedKey(child, parts[1:], value)
}
