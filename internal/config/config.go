// Package config assembles server configuration from defaults, environment
// variables and command-line flags, in that order. The result is built once
// in main and passed down; nothing reads the environment after startup.
package config

import (
	"errors"
	"flag"
	"os"
	"strconv"
	"time"
)

// Defaults used when neither environment nor flags say otherwise.
// The token lifetimes are deliberately asymmetric: an access token lives
// minutes (it cannot be revoked once issued), a refresh token lives days.
const (
	DefaultAddress         = ":8080"
	DefaultDatabasePath    = "stance.db"
	DefaultAccessTokenTTL  = 15 * time.Minute
	DefaultRefreshTokenTTL = 30 * 24 * time.Hour
)

// Config holds runtime settings for the stance server.
type Config struct {
	Address         string        // HTTP bind address
	DatabasePath    string        // SQLite database file path
	JWTSecret       string        // HMAC secret for signing access tokens (required)
	AccessTokenTTL  time.Duration // access token lifetime
	RefreshTokenTTL time.Duration // refresh token lifetime
}

// Load builds the configuration: defaults, then environment, then flags.
func Load() (*Config, error) {
	return load(os.Args[1:])
}

func load(args []string) (*Config, error) {
	cfg := &Config{
		Address:         DefaultAddress,
		DatabasePath:    DefaultDatabasePath,
		AccessTokenTTL:  DefaultAccessTokenTTL,
		RefreshTokenTTL: DefaultRefreshTokenTTL,
	}

	applyEnv(cfg)

	fs := flag.NewFlagSet("stance-server", flag.ContinueOnError)
	fs.StringVar(&cfg.Address, "a", cfg.Address, "address and port to run server")
	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "path to SQLite database file")
	fs.StringVar(&cfg.JWTSecret, "s", cfg.JWTSecret, "JWT signing secret")
	accessMinutes := fs.Int("t", int(cfg.AccessTokenTTL.Minutes()), "access token lifetime (minutes)")
	refreshDays := fs.Int("r", int(cfg.RefreshTokenTTL.Hours()/24), "refresh token lifetime (days)")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg.AccessTokenTTL = time.Duration(*accessMinutes) * time.Minute
	cfg.RefreshTokenTTL = time.Duration(*refreshDays) * 24 * time.Hour

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyEnv overlays environment variables onto cfg. The variable names
// match the original deployment: JWT_SECRET, ACCESS_TOKEN_EXPIRE_MINUTES,
// REFRESH_TOKEN_EXPIRES_DAYS.
func applyEnv(cfg *Config) {
	if v := os.Getenv("ADDRESS"); v != "" {
		cfg.Address = v
	}
	if v := os.Getenv("DATABASE_PATH"); v != "" {
		cfg.DatabasePath = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.JWTSecret = v
	}
	if v := os.Getenv("ACCESS_TOKEN_EXPIRE_MINUTES"); v != "" {
		if minutes, err := strconv.Atoi(v); err == nil && minutes > 0 {
			cfg.AccessTokenTTL = time.Duration(minutes) * time.Minute
		}
	}
	if v := os.Getenv("REFRESH_TOKEN_EXPIRES_DAYS"); v != "" {
		if days, err := strconv.Atoi(v); err == nil && days > 0 {
			cfg.RefreshTokenTTL = time.Duration(days) * 24 * time.Hour
		}
	}
}

func (c *Config) validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT secret is required (JWT_SECRET env or -s flag)")
	}
	if c.AccessTokenTTL <= 0 {
		return errors.New("access token lifetime must be positive")
	}
	if c.RefreshTokenTTL <= 0 {
		return errors.New("refresh token lifetime must be positive")
	}
	return nil
}
