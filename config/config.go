// Package config loads service settings from .env, an optional YAML file and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds the application's configuration.
type Config struct {
	Port      int    `yaml:"port"`
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	DatabaseURL string `yaml:"database_url"`
	RedisURL    string `yaml:"redis_url"`

	AccessTokenSecret     string `yaml:"access_token_secret"`
	RefreshTokenSecret    string `yaml:"refresh_token_secret"`
	AccessTokenExpiresIn  string `yaml:"access_token_expires_in"`
	RefreshTokenExpiresIn string `yaml:"refresh_token_expires_in"`
	RotateRefreshTokens   bool   `yaml:"rotate_refresh_tokens"`
	NonceTTL              string `yaml:"nonce_ttl"`

	CookieName     string `yaml:"cookie_name"`
	CookieSameSite string `yaml:"cookie_samesite"`
	MaxUploadBytes int64  `yaml:"max_upload_bytes"`

	// Parsed from the string lifetimes by Validate
	AccessTTL  time.Duration `yaml:"-"`
	RefreshTTL time.Duration `yaml:"-"`
	NonceLife  time.Duration `yaml:"-"`
}

// Default returns the configuration used when nothing is set
func Default() *Config {
	return &Config{
		Port:                  9000,
		LogLevel:              "info",
		LogFormat:             "json",
		DatabaseURL:           "sqlite://freelance.db",
		AccessTokenExpiresIn:  "15m",
		RefreshTokenExpiresIn: "7d",
		NonceTTL:              "5m",
		CookieName:            "jwt",
		CookieSameSite:        "none",
		MaxUploadBytes:        32 << 20,
	}
}

// Load reads .env when present, then CONFIG_FILE, then environment overrides
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	return LoadFrom(os.LookupEnv)
}

// LoadFrom builds a validated configuration from lookup
func LoadFrom(lookup func(string) (string, bool)) (*Config, error) {
	cfg := Default()

	if path, ok := lookup("CONFIG_FILE"); ok && path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnv(lookup); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	if err := yaml.NewDecoder(file).Decode(c); err != nil {
		return fmt.Errorf("failed to decode config file: %w", err)
	}
	return nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"LOG_LEVEL":                &c.LogLevel,
		"LOG_FORMAT":               &c.LogFormat,
		"DATABASE_URL":             &c.DatabaseURL,
		"REDIS_URL":                &c.RedisURL,
		"ACCESS_TOKEN_SECRET":      &c.AccessTokenSecret,
		"REFRESH_TOKEN_SECRET":     &c.RefreshTokenSecret,
		"ACCESS_TOKEN_EXPIRES_IN":  &c.AccessTokenExpiresIn,
		"REFRESH_TOKEN_EXPIRES_IN": &c.RefreshTokenExpiresIn,
		"NONCE_TTL":                &c.NonceTTL,
		"COOKIE_NAME":              &c.CookieName,
		"COOKIE_SAMESITE":          &c.CookieSameSite,
	}
	for key, dst := range strs {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	if v, ok := lookup("PORT"); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PORT %q: %w", v, err)
		}
		c.Port = port
	}
	if v, ok := lookup("ROTATE_REFRESH_TOKENS"); ok && v != "" {
		rotate, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid ROTATE_REFRESH_TOKENS %q: %w", v, err)
		}
		c.RotateRefreshTokens = rotate
	}
	if v, ok := lookup("MAX_UPLOAD_BYTES"); ok && v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid MAX_UPLOAD_BYTES %q: %w", v, err)
		}
		c.MaxUploadBytes = n
	}
	return nil
}

// Validate checks the configuration and parses lifetimes. The service refuses to start on error.
func (c *Config) Validate() error {
	var errs []error

	if c.AccessTokenSecret == "" {
		errs = append(errs, errors.New("ACCESS_TOKEN_SECRET is required"))
	}
	if c.RefreshTokenSecret == "" {
		errs = append(errs, errors.New("REFRESH_TOKEN_SECRET is required"))
	}
	if c.AccessTokenSecret != "" && c.AccessTokenSecret == c.RefreshTokenSecret {
		errs = append(errs, errors.New("ACCESS_TOKEN_SECRET and REFRESH_TOKEN_SECRET must differ"))
	}

	var err error
	if c.AccessTTL, err = ParseLifetime(c.AccessTokenExpiresIn); err != nil {
		errs = append(errs, fmt.Errorf("ACCESS_TOKEN_EXPIRES_IN: %w", err))
	}
	if c.RefreshTTL, err = ParseLifetime(c.RefreshTokenExpiresIn); err != nil {
		errs = append(errs, fmt.Errorf("REFRESH_TOKEN_EXPIRES_IN: %w", err))
	}
	if c.NonceLife, err = ParseLifetime(c.NonceTTL); err != nil {
		errs = append(errs, fmt.Errorf("NONCE_TTL: %w", err))
	}

	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("invalid PORT %d", c.Port))
	}
	if c.CookieName == "" {
		errs = append(errs, errors.New("COOKIE_NAME must not be empty"))
	}
	switch strings.ToLower(c.CookieSameSite) {
	case "none", "lax", "strict":
	default:
		errs = append(errs, fmt.Errorf("invalid COOKIE_SAMESITE %q", c.CookieSameSite))
	}
	if c.MaxUploadBytes <= 0 {
		errs = append(errs, errors.New("MAX_UPLOAD_BYTES must be positive"))
	}
	if c.DatabaseURL == "" {
		errs = append(errs, errors.New("DATABASE_URL is required"))
	}

	return errors.Join(errs...)
}

// Addr is the listen address
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// ParseLifetime accepts Go durations and whole days such as "7d"
func ParseLifetime(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)

	var (
		d   time.Duration
		err error
	)
	if days, ok := strings.CutSuffix(s, "d"); ok {
		var n int
		n, err = strconv.Atoi(days)
		d = time.Duration(n) * 24 * time.Hour
	} else {
		d, err = time.ParseDuration(s)
	}

	if err != nil {
		return 0, fmt.Errorf("invalid lifetime %q", s)
	}
	if d <= 0 {
		return 0, fmt.Errorf("lifetime %q must be positive", s)
	}
	return d, nil
}
