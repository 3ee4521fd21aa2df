package internal

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server        ServerConfig        `mapstructure:"http_server"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Portal        PortalConfig        `mapstructure:"portal"`
	Session       SessionConfig       `mapstructure:"session"`
	Otp           OtpConfig           `mapstructure:"otp"`
	Cache         CacheConfig         `mapstructure:"cache"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

type ServerConfig struct {
	Port              int           `mapstructure:"port"`
	BaseURL           string        `mapstructure:"base_url"`
	AllowedOrigins    string        `mapstructure:"allowed_origins"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
}

type DatabaseConfig struct {
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	Source          string        `mapstructure:"source"`
}

// PortalConfig points at the upstream identity provider. The gateway never
// stores passwords or OTP codes itself; everything is delegated here.
type PortalConfig struct {
	BaseURL         string        `mapstructure:"base_url"`
	LoginTimeout    time.Duration `mapstructure:"login_timeout"`
	ValidateTimeout time.Duration `mapstructure:"validate_timeout"`
	Source          string        `mapstructure:"source"`
}

type SessionConfig struct {
	Secret             string        `mapstructure:"secret"`
	AccessTokenHorizon time.Duration `mapstructure:"access_token_horizon"`
	MaxAge             time.Duration `mapstructure:"max_age"`
	RefreshDebounce    time.Duration `mapstructure:"refresh_debounce"`
}

type OtpConfig struct {
	MfaWindow      time.Duration `mapstructure:"mfa_window"`
	EmailWindow    time.Duration `mapstructure:"email_window"`
	ResendCooldown time.Duration `mapstructure:"resend_cooldown"`
}

type CacheConfig struct {
	Driver   string `mapstructure:"driver"` // "memory" | "redis"
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type ObservabilityConfig struct {
	Logging LoggingConfig `mapstructure:"logging"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ----------------- DEFAULTS -----------------

func (c *PortalConfig) ApplyDefaults() {
	if c.LoginTimeout <= 0 {
		c.LoginTimeout = 10 * time.Second
	}
	if c.ValidateTimeout <= 0 {
		c.ValidateTimeout = 5 * time.Second
	}
	if c.Source == "" {
		c.Source = "audit"
	}
}

func (c *SessionConfig) ApplyDefaults() {
	if c.AccessTokenHorizon <= 0 {
		c.AccessTokenHorizon = 4 * time.Hour
	}
	if c.MaxAge <= 0 {
		c.MaxAge = 30 * time.Minute
	}
	if c.RefreshDebounce <= 0 {
		c.RefreshDebounce = 30 * time.Second
	}
}

func (c *OtpConfig) ApplyDefaults() {
	if c.MfaWindow <= 0 {
		c.MfaWindow = 300 * time.Second
	}
	if c.EmailWindow <= 0 {
		c.EmailWindow = 120 * time.Second
	}
	if c.ResendCooldown <= 0 {
		c.ResendCooldown = 20 * time.Second
	}
}

func (c *Config) ApplyDefaults() {
	c.Portal.ApplyDefaults()
	c.Session.ApplyDefaults()
	c.Otp.ApplyDefaults()
	if c.Cache.Driver == "" {
		c.Cache.Driver = "memory"
	}
}

// ----------------- HELPERS -----------------

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

// LoadConfigFromEnv builds the config from environment variables only,
// used for container deployments where no config file is mounted.
func LoadConfigFromEnv() *Config {
	cfg := &Config{
		Server: ServerConfig{
			Port:           getEnvAsInt("HTTP_PORT", 8080),
			BaseURL:        getEnv("BASE_URL", "http://localhost:8080"),
			AllowedOrigins: getEnv("ALLOWED_ORIGINS", "*"),
		},
		Database: DatabaseConfig{
			Source:       getEnv("DATABASE_URL", ""),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
		},
		Portal: PortalConfig{
			BaseURL: getEnv("PORTAL_API_URL", ""),
			Source:  getEnv("PORTAL_SOURCE", "audit"),
		},
		Session: SessionConfig{
			Secret: getEnv("SESSION_SECRET", ""),
		},
		Cache: CacheConfig{
			Driver:   getEnv("CACHE_DRIVER", "memory"),
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Observability: ObservabilityConfig{
			Logging: LoggingConfig{
				Level:  getEnv("LOG_LEVEL", "info"),
				Format: getEnv("LOG_FORMAT", "json"),
			},
		},
	}
	cfg.ApplyDefaults()
	return cfg
}

// ----------------- VALIDATION -----------------

func (c *Config) Validate() error {
	var errs []string

	if err := c.Server.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("server config: %v", err))
	}

	if err := c.Database.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("database config: %v", err))
	}

	if err := c.Portal.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("portal config: %v", err))
	}

	if err := c.Session.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("session config: %v", err))
	}

	if err := c.Cache.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("cache config: %v", err))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

func (c *ServerConfig) Validate() error {
	if c.AllowedOrigins != "" {
		origins := strings.Split(c.AllowedOrigins, ",")
		for _, origin := range origins {
			origin = strings.TrimSpace(origin)
			if origin == "*" {
				continue
			}
			if _, err := url.Parse(origin); err != nil {
				return fmt.Errorf("invalid allowed origin %s: %w", origin, err)
			}
		}
	}
	if c.ReadTimeout < c.ReadHeaderTimeout {
		return errors.New("read_timeout must be >= read_header_timeout")
	}
	return nil
}

func (c *DatabaseConfig) Validate() error {
	if c.MaxIdleConns > c.MaxOpenConns {
		return errors.New("max_idle_conns cannot be greater than max_open_conns")
	}
	return nil
}

func (c *DatabaseConfig) GetDSN() string {
	return c.Source
}

func (c *PortalConfig) Validate() error {
	if c.BaseURL == "" {
		return errors.New("portal base_url is required")
	}
	if _, err := url.Parse(c.BaseURL); err != nil {
		return fmt.Errorf("invalid portal base_url: %w", err)
	}
	return nil
}

func (c *SessionConfig) Validate() error {
	if len(c.Secret) < 32 {
		return errors.New("session secret must be at least 32 characters")
	}
	if c.MaxAge > c.AccessTokenHorizon {
		return errors.New("session max_age cannot exceed access_token_horizon")
	}
	return nil
}

func (c *CacheConfig) Validate() error {
	switch c.Driver {
	case "", "memory":
		return nil
	case "redis":
		if c.Addr == "" {
			return errors.New("redis addr is required when cache driver is redis")
		}
		return nil
	default:
		return fmt.Errorf("unknown cache driver %q", c.Driver)
	}
}
