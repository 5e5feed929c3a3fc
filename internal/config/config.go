package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// EnvPrefix namespaces environment overrides, e.g. VISIONARY_DB_PATH.
const EnvPrefix = "VISIONARY"

type Config struct {
	DBPath               string        `yaml:"db_path" envconfig:"DB_PATH"`
	LogLevel             string        `yaml:"log_level" envconfig:"LOG_LEVEL"`
	LogFile              string        `yaml:"log_file" envconfig:"LOG_FILE"`
	PollInterval         time.Duration `yaml:"poll_interval" envconfig:"POLL_INTERVAL"`
	Timezone             string        `yaml:"timezone" envconfig:"TIMEZONE"`
	DesktopNotifications bool          `yaml:"desktop_notifications" envconfig:"DESKTOP_NOTIFICATIONS"`
	NotificationsBlocked bool          `yaml:"notifications_blocked" envconfig:"NOTIFICATIONS_BLOCKED"`
	HTTPAddr             string        `yaml:"http_addr" envconfig:"HTTP_ADDR"`
	WatchSettings        bool          `yaml:"watch_settings" envconfig:"WATCH_SETTINGS"`
}

func Default() Config {
	dataDir := defaultDataDir()
	return Config{
		DBPath:               filepath.Join(dataDir, "visionary.db"),
		LogLevel:             "info",
		LogFile:              filepath.Join(dataDir, "visionary.log"),
		PollInterval:         30 * time.Second,
		DesktopNotifications: true,
		HTTPAddr:             "127.0.0.1:8080",
		WatchSettings:        true,
	}
}

// DefaultPath is where Load looks when no --config flag is given.
func DefaultPath() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "visionary", "config.yaml")
	}
	return "visionary.yaml"
}

// Load layers defaults, the YAML file at path (optional), then VISIONARY_*
// environment variables.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("env config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.DBPath) == "" {
		return errors.New("config: db_path is required")
	}
	if c.PollInterval < time.Second {
		return fmt.Errorf("config: poll_interval %s is below 1s", c.PollInterval)
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("config: unknown log_level %q", c.LogLevel)
	}
	if tz := strings.TrimSpace(c.Timezone); tz != "" {
		if _, err := time.LoadLocation(tz); err != nil {
			return fmt.Errorf("config: unknown timezone %q", tz)
		}
	}
	return nil
}

// Save writes the config as YAML, creating parent directories.
func (c Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultDataDir() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "visionary")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".local", "share", "visionary")
	}
	return ".visionary"
}
