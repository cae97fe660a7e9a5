package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"todolist/utils"
)

type Config struct {
	Env      string
	HTTPAddr string
	LogLevel string

	// DatabaseURL empty means tasks and users are kept in memory.
	DatabaseURL string
	RedisURL    string

	SessionSecret string
	SessionTTL    time.Duration
	CookieSecure  bool
	BcryptCost    int

	DefaultUsername string
	DefaultPassword string
}

// Load reads configuration from the environment. Outside production a .env
// file in the working directory is loaded first.
func Load() (*Config, error) {
	if os.Getenv("APP_ENV") != "production" {
		// A missing .env file is normal.
		_ = godotenv.Load()
	}

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("REDIS_URL", "redis://localhost:6379/0")
	v.SetDefault("SESSION_TTL", "24h")
	v.SetDefault("BCRYPT_COST", utils.DefaultBcryptCost)
	v.SetDefault("COOKIE_SECURE", false)

	cfg := &Config{
		Env:             strings.ToLower(v.GetString("APP_ENV")),
		HTTPAddr:        v.GetString("HTTP_ADDR"),
		LogLevel:        v.GetString("LOG_LEVEL"),
		DatabaseURL:     v.GetString("DATABASE_URL"),
		RedisURL:        v.GetString("REDIS_URL"),
		SessionSecret:   v.GetString("SESSION_SECRET"),
		SessionTTL:      v.GetDuration("SESSION_TTL"),
		CookieSecure:    v.GetBool("COOKIE_SECURE"),
		BcryptCost:      v.GetInt("BCRYPT_COST"),
		DefaultUsername: strings.TrimSpace(v.GetString("DEFAULT_USERNAME")),
		DefaultPassword: v.GetString("DEFAULT_PASSWORD"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func (c *Config) validate() error {
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive, got %s", c.SessionTTL)
	}
	if c.IsProduction() && c.SessionSecret == "" {
		return errors.New("SESSION_SECRET is required in production")
	}
	if c.IsProduction() && c.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required in production")
	}
	if (c.DefaultUsername == "") != (c.DefaultPassword == "") {
		return errors.New("DEFAULT_USERNAME and DEFAULT_PASSWORD must be set together")
	}
	return nil
}

// EphemeralSecret reports whether sessions are signed with a per-process key.
func (c *Config) EphemeralSecret() bool {
	return c.SessionSecret == ""
}

// SessionKey returns the configured signing key, or a random one when none
// is configured. Sessions signed with a random key do not survive restarts.
func (c *Config) SessionKey() ([]byte, error) {
	if c.SessionSecret != "" {
		return []byte(c.SessionSecret), nil
	}
	token, err := utils.GenerateToken(32)
	if err != nil {
		return nil, err
	}
	return []byte(token), nil
}
