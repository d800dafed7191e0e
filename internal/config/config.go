// Package config resolves runtime settings from an optional TOML file, a .env
// file and the process environment, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Store drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// DefaultConfigFile is read when BOMBONIERE_CONFIG is unset and the file exists.
const DefaultConfigFile = "bomboniere.toml"

type Config struct {
	Store  StoreConfig  `toml:"store"`
	Server ServerConfig `toml:"server"`
	// Timezone is the shop's calendar; due dates are computed in it.
	Timezone string `toml:"timezone"`
}

type StoreConfig struct {
	Driver      string `toml:"driver"`
	SQLitePath  string `toml:"sqlite_path"`
	DatabaseURL string `toml:"database_url"`
}

type ServerConfig struct {
	Port           string `toml:"port"`
	AllowedOrigins string `toml:"allowed_origins"`
	MetricsEnabled bool   `toml:"metrics_enabled"`
}

func Default() Config {
	return Config{
		Store: StoreConfig{
			Driver:     DriverSQLite,
			SQLitePath: "bomboniere.db",
		},
		Server: ServerConfig{
			Port:           "8080",
			MetricsEnabled: true,
		},
		Timezone: "America/Sao_Paulo",
	}
}

// Load builds the configuration: defaults, then the TOML file, then .env and
// the environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Default()

	path := os.Getenv("BOMBONIERE_CONFIG")
	explicit := path != ""
	if !explicit {
		path = DefaultConfigFile
	}
	if err := cfg.loadFile(path, explicit); err != nil {
		return Config{}, err
	}

	cfg.applyEnv(os.LookupEnv)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string, required bool) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) && !required {
			return nil
		}
		return fmt.Errorf("config file %s: %w", path, err)
	}
	if _, err := toml.DecodeFile(path, c); err != nil {
		return fmt.Errorf("unable to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup("STORE_DRIVER"); ok && v != "" {
		c.Store.Driver = strings.ToLower(strings.TrimSpace(v))
	}
	if v, ok := lookup("SQLITE_PATH"); ok && v != "" {
		c.Store.SQLitePath = v
	}
	if v, ok := lookup("DATABASE_URL"); ok && v != "" {
		c.Store.DatabaseURL = v
	}
	if v, ok := lookup("SERVER_PORT"); ok && v != "" {
		c.Server.Port = v
	}
	if v, ok := lookup("ALLOWED_ORIGINS"); ok {
		c.Server.AllowedOrigins = v
	}
	if v, ok := lookup("METRICS_ENABLED"); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Server.MetricsEnabled = b
		}
	}
	if v, ok := lookup("TIMEZONE"); ok && v != "" {
		c.Timezone = v
	}
}

// Validate rejects unknown drivers and incomplete driver settings.
func (c Config) Validate() error {
	switch c.Store.Driver {
	case DriverSQLite:
		if c.Store.SQLitePath == "" {
			return errors.New("sqlite driver requires SQLITE_PATH")
		}
	case DriverPostgres:
		if c.Store.DatabaseURL == "" {
			return errors.New("postgres driver requires DATABASE_URL")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown store driver %q (want sqlite, postgres or memory)", c.Store.Driver)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves Timezone; an empty value means the host's local zone.
func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("unknown timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}
