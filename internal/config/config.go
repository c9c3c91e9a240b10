package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"wyboard/internal/kanban/models"
)

// EnvPrefix prefixes every environment variable read by Load
const EnvPrefix = "WYBOARD"

// Config keys
const (
	KeyAPIURL         = "api_url"
	KeyToken          = "token"
	KeyProjectID      = "project_id"
	KeyRequestTimeout = "request_timeout"
	KeyLogDir         = "log_dir"
	KeyLogLevel       = "log_level"
	KeyDefaultColor   = "default_color"
)

// Defaults
const (
	DefaultAPIURL         = "http://localhost:8080/pms"
	DefaultRequestTimeout = 10 * time.Second
	DefaultLogLevel       = "info"
)

// ErrNoProject is returned by RequireProject when no project id is configured
var ErrNoProject = errors.New("no project configured: set --project, WYBOARD_PROJECT_ID or project_id")

// Config holds the unified application configuration
type Config struct {
	APIURL         string
	Token          string
	ProjectID      int64
	RequestTimeout time.Duration
	LogDir         string
	LogLevel       string
	DefaultColor   string

	// ConfigFile is the file the values were read from, empty if none
	ConfigFile string
}

// Settings represents the config file structure
type Settings struct {
	APIURL         string `yaml:"api_url"`
	Token          string `yaml:"token,omitempty"`
	ProjectID      int64  `yaml:"project_id,omitempty"`
	RequestTimeout string `yaml:"request_timeout,omitempty"`
	LogDir         string `yaml:"log_dir,omitempty"`
	LogLevel       string `yaml:"log_level,omitempty"`
	DefaultColor   string `yaml:"default_color,omitempty"`
}

// CLIFlags holds parsed CLI flags. Zero values are not applied.
type CLIFlags struct {
	APIURL     string
	Token      string
	ProjectID  int64
	ConfigFile string
}

// Load loads configuration with priority: CLI flags > env vars > config file > default
func Load(flags CLIFlags) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	v.SetDefault(KeyAPIURL, DefaultAPIURL)
	v.SetDefault(KeyToken, "")
	v.SetDefault(KeyProjectID, 0)
	v.SetDefault(KeyRequestTimeout, DefaultRequestTimeout.String())
	v.SetDefault(KeyLogDir, "")
	v.SetDefault(KeyLogLevel, DefaultLogLevel)
	v.SetDefault(KeyDefaultColor, models.DefaultColumnColor)

	configPath := flags.ConfigFile
	explicit := configPath != ""
	if !explicit {
		if p, err := DefaultPath(); err == nil {
			configPath = p
		}
	}
	cfg := &Config{}
	if configPath != "" {
		configPath = expandPath(configPath)
		if _, err := os.Stat(configPath); err == nil {
			v.SetConfigFile(configPath)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("reading %s: %w", configPath, err)
			}
			cfg.ConfigFile = configPath
		} else if explicit {
			return nil, fmt.Errorf("config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if flags.APIURL != "" {
		v.Set(KeyAPIURL, flags.APIURL)
	}
	if flags.Token != "" {
		v.Set(KeyToken, flags.Token)
	}
	if flags.ProjectID != 0 {
		v.Set(KeyProjectID, flags.ProjectID)
	}

	cfg.APIURL = strings.TrimSpace(v.GetString(KeyAPIURL))
	cfg.Token = v.GetString(KeyToken)
	cfg.LogDir = expandPath(v.GetString(KeyLogDir))
	cfg.LogLevel = v.GetString(KeyLogLevel)
	cfg.DefaultColor = v.GetString(KeyDefaultColor)

	projectID, err := parseInt64(v.GetString(KeyProjectID))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", KeyProjectID, err)
	}
	cfg.ProjectID = projectID

	timeout, err := time.ParseDuration(v.GetString(KeyRequestTimeout))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", KeyRequestTimeout, err)
	}
	if timeout <= 0 {
		return nil, fmt.Errorf("%s must be positive, got %s", KeyRequestTimeout, timeout)
	}
	cfg.RequestTimeout = timeout

	if cfg.APIURL == "" {
		return nil, fmt.Errorf("%s must not be empty", KeyAPIURL)
	}
	if cfg.LogDir == "" {
		if dir, err := DefaultDir(); err == nil {
			cfg.LogDir = dir
		}
	}

	return cfg, nil
}

// RequireProject returns ErrNoProject if no project id is set
func (c *Config) RequireProject() error {
	if c.ProjectID <= 0 {
		return ErrNoProject
	}
	return nil
}

// DefaultDir returns ~/.config/wyboard
func DefaultDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".config", "wyboard"), nil
}

// DefaultPath returns the path to the default configuration file
func DefaultPath() (string, error) {
	dir, err := DefaultDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// EnsureConfigFile creates the config file with defaults if it doesn't exist.
// An empty path means DefaultPath.
func EnsureConfigFile(path string) error {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return err
		}
		path = p
	}
	path = expandPath(path)

	if _, err := os.Stat(path); err == nil {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	settings := Settings{
		APIURL:         DefaultAPIURL,
		RequestTimeout: DefaultRequestTimeout.String(),
		LogLevel:       DefaultLogLevel,
		DefaultColor:   models.DefaultColumnColor,
	}

	data, err := yaml.Marshal(settings)
	if err != nil {
		return err
	}

	// the file may end up holding a token
	return os.WriteFile(path, data, 0600)
}

func parseInt64(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("not an integer: %q", s)
	}
	return n, nil
}

func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(homeDir, path[2:])
	}
	return path
}
