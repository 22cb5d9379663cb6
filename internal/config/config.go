// Package config provides Viper-based configuration loading for the Integration Quest server.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ServerConfig holds tool-server identity and transport settings.
type ServerConfig struct {
	// Name is the implementation name advertised to clients.
	Name string `mapstructure:"name"`
	// Version is the implementation version advertised to clients.
	Version string `mapstructure:"version"`
	// Transport selects how the server accepts connections: "stdio" or "http".
	Transport string `mapstructure:"transport"`
	// HTTPAddr is the listen address for the streamable HTTP transport.
	HTTPAddr string `mapstructure:"http_addr"`
	// ShutdownTimeout bounds graceful shutdown of the HTTP listener.
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
}

// DSN returns the PostgreSQL connection string.
//
// Precondition: Host, Port, User, and Name must be non-empty.
// Postcondition: Returns a valid PostgreSQL DSN string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// RedisConfig holds leaderboard store connection settings.
type RedisConfig struct {
	// Addr is the "host:port" address of the Redis server.
	Addr string `mapstructure:"addr"`
	// Password is the Redis AUTH password; empty disables AUTH.
	Password string `mapstructure:"password"`
	// DB is the logical Redis database number.
	DB int `mapstructure:"db"`
}

// EmailConfig holds outbound email delivery settings.
type EmailConfig struct {
	// Enabled toggles real delivery; when false, tokens are logged instead of sent.
	Enabled bool `mapstructure:"enabled"`
	// APIKey is the SendGrid API key.
	APIKey string `mapstructure:"api_key"`
	// FromAddress is the sender address on outbound mail.
	FromAddress string `mapstructure:"from_address"`
	// FromName is the sender display name on outbound mail.
	FromName string `mapstructure:"from_name"`
}

// GameConfig holds engine tuning and content locations.
type GameConfig struct {
	// ContentDir is the root directory of YAML content tables.
	ContentDir string `mapstructure:"content_dir"`
	// ScriptDir is the directory of Lua boss ability scripts.
	ScriptDir string `mapstructure:"script_dir"`
	// RoomsPerLevel is the number of rooms generated per dungeon level.
	RoomsPerLevel int `mapstructure:"rooms_per_level"`
	// MaxInventorySlots caps the hero inventory length.
	MaxInventorySlots int `mapstructure:"max_inventory_slots"`
	// Multiplayer enables the registration/login/leaderboard tool set.
	Multiplayer bool `mapstructure:"multiplayer"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// Config is the top-level application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Email    EmailConfig    `mapstructure:"email"`
	Game     GameConfig     `mapstructure:"game"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateServer(c.Server); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateDatabase(c.Database); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateRedis(c.Redis); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateEmail(c.Email); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateGame(c.Game); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateServer(s ServerConfig) error {
	var errs []string
	if s.Name == "" {
		errs = append(errs, "server.name must not be empty")
	}
	if s.Version == "" {
		errs = append(errs, "server.version must not be empty")
	}
	validTransports := map[string]bool{"stdio": true, "http": true}
	if !validTransports[s.Transport] {
		errs = append(errs, fmt.Sprintf("server.transport must be one of [stdio, http], got %q", s.Transport))
	}
	if s.Transport == "http" && s.HTTPAddr == "" {
		errs = append(errs, "server.http_addr must not be empty when server.transport is http")
	}
	if s.ShutdownTimeout < 0 {
		errs = append(errs, "server.shutdown_timeout must not be negative")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateDatabase(d DatabaseConfig) error {
	var errs []string
	if d.Host == "" {
		errs = append(errs, "database.host must not be empty")
	}
	if d.Port < 1 || d.Port > 65535 {
		errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", d.Port))
	}
	if d.User == "" {
		errs = append(errs, "database.user must not be empty")
	}
	if d.Name == "" {
		errs = append(errs, "database.name must not be empty")
	}
	validSSL := map[string]bool{"disable": true, "require": true, "verify-ca": true, "verify-full": true}
	if !validSSL[d.SSLMode] {
		errs = append(errs, fmt.Sprintf("database.sslmode must be one of [disable, require, verify-ca, verify-full], got %q", d.SSLMode))
	}
	if d.MaxConns < 1 {
		errs = append(errs, fmt.Sprintf("database.max_conns must be >= 1, got %d", d.MaxConns))
	}
	if d.MinConns < 0 {
		errs = append(errs, fmt.Sprintf("database.min_conns must be >= 0, got %d", d.MinConns))
	}
	if d.MinConns > d.MaxConns {
		errs = append(errs, "database.min_conns must not exceed database.max_conns")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateRedis(r RedisConfig) error {
	var errs []string
	if r.Addr == "" {
		errs = append(errs, "redis.addr must not be empty")
	}
	if r.DB < 0 {
		errs = append(errs, fmt.Sprintf("redis.db must be >= 0, got %d", r.DB))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateEmail(e EmailConfig) error {
	if !e.Enabled {
		return nil
	}
	var errs []string
	if e.APIKey == "" {
		errs = append(errs, "email.api_key must not be empty when email.enabled is true")
	}
	if e.FromAddress == "" {
		errs = append(errs, "email.from_address must not be empty when email.enabled is true")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateGame(g GameConfig) error {
	var errs []string
	if g.ContentDir == "" {
		errs = append(errs, "game.content_dir must not be empty")
	}
	if g.RoomsPerLevel < 1 {
		errs = append(errs, fmt.Sprintf("game.rooms_per_level must be >= 1, got %d", g.RoomsPerLevel))
	}
	if g.MaxInventorySlots < 1 {
		errs = append(errs, fmt.Sprintf("game.max_inventory_slots must be >= 1, got %d", g.MaxInventorySlots))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Environment variable overrides with IQ_ prefix
	v.SetEnvPrefix("IQ")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	if v == nil {
		return Config{}, errors.New("viper instance must not be nil")
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Default returns the built-in configuration used when no config file is given.
//
// Postcondition: Returns a Config that passes Validate.
func Default() Config {
	v := viper.New()
	v.SetEnvPrefix("IQ")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	var cfg Config
	// Unmarshal of pure defaults cannot fail.
	_ = v.Unmarshal(&cfg)
	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.name", "integration-quest")
	v.SetDefault("server.version", "1.0.0")
	v.SetDefault("server.transport", "stdio")
	v.SetDefault("server.http_addr", ":8000")
	v.SetDefault("server.shutdown_timeout", "10s")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "quest")
	v.SetDefault("database.password", "quest")
	v.SetDefault("database.name", "quest")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.max_conn_lifetime", "1h")

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("email.enabled", false)
	v.SetDefault("email.from_address", "noreply@integrationquest.dev")
	v.SetDefault("email.from_name", "Integration Quest")

	v.SetDefault("game.content_dir", "content")
	v.SetDefault("game.script_dir", "content/scripts")
	v.SetDefault("game.rooms_per_level", 4)
	v.SetDefault("game.max_inventory_slots", 20)
	v.SetDefault("game.multiplayer", false)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}
