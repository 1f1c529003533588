package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvPrefix  = "GOSOCIAL"
	configName = "config"
	configType = "toml"
	configDir  = ".config/gosocial"

	KeyAPIBaseURL      = "api.base_url"
	KeyAPIOrigin       = "api.origin"
	KeyAPITimeout      = "api.timeout"
	KeySessionPath     = "session.path"
	KeyFeedPageSize    = "feed.page_size"
	KeyFeedDebounce    = "feed.debounce"
	KeyFeedCacheTTL    = "feed.cache_ttl"
	KeyLogLevel        = "log.level"
	KeyLogDevelopment  = "log.development"
	defaultLogLevel    = "warn"
	defaultSessionFile = "session.toml"
)

type Config struct {
	API     APIConfig
	Session SessionConfig
	Feed    FeedConfig
	Log     LogConfig
}

type APIConfig struct {
	BaseURL string
	Origin  string
	Timeout time.Duration
}

type SessionConfig struct {
	Path string
}

type FeedConfig struct {
	PageSize int
	Debounce time.Duration
	CacheTTL time.Duration
}

type LogConfig struct {
	Level       string
	Development bool
}

type Options struct {
	// Home replaces the user's home directory; tests point it at a temp dir.
	Home string
	// EnvFile is loaded before the environment is read. Missing files are
	// skipped. Defaults to ".env" in the working directory.
	EnvFile string
}

// Load resolves configuration into v. Precedence, highest first: values
// already set on v (flags), GOSOCIAL_* environment variables (including those
// from the env file), ~/.config/gosocial/config.toml, defaults.
func Load(v *viper.Viper, opts Options) (Config, error) {
	if v == nil {
		v = viper.New()
	}

	home := opts.Home
	if home == "" {
		var err error
		home, err = os.UserHomeDir()
		if err != nil {
			return Config{}, fmt.Errorf("resolve home directory: %w", err)
		}
	}

	envFile := opts.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	if err := loadEnvFile(envFile); err != nil {
		return Config{}, err
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault(KeyAPIBaseURL, "/v1")
	v.SetDefault(KeyAPIOrigin, "http://localhost:8080")
	v.SetDefault(KeyAPITimeout, 10*time.Second)
	v.SetDefault(KeySessionPath, filepath.Join(home, configDir, defaultSessionFile))
	v.SetDefault(KeyFeedPageSize, 10)
	v.SetDefault(KeyFeedDebounce, 400*time.Millisecond)
	v.SetDefault(KeyFeedCacheTTL, 30*time.Second)
	v.SetDefault(KeyLogLevel, defaultLogLevel)
	v.SetDefault(KeyLogDevelopment, false)

	v.SetConfigName(configName)
	v.SetConfigType(configType)
	v.AddConfigPath(filepath.Join(home, configDir))
	if err := v.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := Config{
		API: APIConfig{
			BaseURL: strings.TrimSpace(v.GetString(KeyAPIBaseURL)),
			Origin:  strings.TrimSpace(v.GetString(KeyAPIOrigin)),
			Timeout: v.GetDuration(KeyAPITimeout),
		},
		Session: SessionConfig{Path: v.GetString(KeySessionPath)},
		Feed: FeedConfig{
			PageSize: v.GetInt(KeyFeedPageSize),
			Debounce: v.GetDuration(KeyFeedDebounce),
			CacheTTL: v.GetDuration(KeyFeedCacheTTL),
		},
		Log: LogConfig{
			Level:       strings.ToLower(strings.TrimSpace(v.GetString(KeyLogLevel))),
			Development: v.GetBool(KeyLogDevelopment),
		},
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error
	if c.API.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive, got %s", KeyAPITimeout, c.API.Timeout))
	}
	if c.Feed.PageSize <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive, got %d", KeyFeedPageSize, c.Feed.PageSize))
	}
	if c.Feed.Debounce < 0 {
		errs = append(errs, fmt.Errorf("%s must not be negative", KeyFeedDebounce))
	}
	if c.Feed.CacheTTL < 0 {
		errs = append(errs, fmt.Errorf("%s must not be negative", KeyFeedCacheTTL))
	}
	if strings.TrimSpace(c.Session.Path) == "" {
		errs = append(errs, fmt.Errorf("%s is empty", KeySessionPath))
	}
	return errors.Join(errs...)
}

func loadEnvFile(path string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("stat env file: %w", err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}
