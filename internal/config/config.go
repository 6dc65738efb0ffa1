// Package config loads the bot configuration: the shared core settings plus
// storage, session and dating rules.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	coreconfig "github.com/m3rciful/iskra/core/config"
	coredatabase "github.com/m3rciful/iskra/core/database"
)

const (
	// DriverMemory keeps all data in process memory.
	DriverMemory = "memory"
	// DriverPostgres stores data in Postgres.
	DriverPostgres = "postgres"
)

// StorageConfig selects the persistence backend.
type StorageConfig struct {
	Driver string `yaml:"driver" envconfig:"STORAGE_DRIVER"`
}

// SessionConfig controls in-memory conversation sessions.
type SessionConfig struct {
	TTL           time.Duration `yaml:"ttl" envconfig:"SESSION_TTL"`
	PruneInterval time.Duration `yaml:"prune_interval" envconfig:"SESSION_PRUNE_INTERVAL"`
	Shards        int           `yaml:"shards" envconfig:"SESSION_SHARDS"`
}

// DatingConfig holds the age rules.
type DatingConfig struct {
	// MinAge is the youngest age allowed to register.
	MinAge     int `yaml:"min_age" envconfig:"DATING_MIN_AGE"`
	AgeFloor   int `yaml:"age_floor" envconfig:"DATING_AGE_FLOOR"`
	AgeCeiling int `yaml:"age_ceiling" envconfig:"DATING_AGE_CEILING"`
	// QueueLimit caps the rows of the /queue export.
	QueueLimit int `yaml:"queue_limit" envconfig:"DATING_QUEUE_LIMIT"`
}

// MetricsConfig configures the admin HTTP listener; empty Listen disables it.
type MetricsConfig struct {
	Listen string `yaml:"listen" envconfig:"METRICS_LISTEN"`
}

// Config is the full application configuration.
type Config struct {
	Core     coreconfig.Config   `yaml:",inline"`
	Database coredatabase.Config `yaml:"database"`
	Storage  StorageConfig       `yaml:"storage"`
	Session  SessionConfig       `yaml:"session"`
	Dating   DatingConfig        `yaml:"dating"`
	Metrics  MetricsConfig       `yaml:"metrics"`
}

// CoreConfig exposes the embedded core settings to the shared runner.
func (c *Config) CoreConfig() *coreconfig.Config { return &c.Core }

// UsesPostgres reports whether the Postgres driver is selected.
func (c *Config) UsesPostgres() bool { return c.Storage.Driver == DriverPostgres }

// Load reads a YAML file, then .env and the environment on top of it.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env: %w", err)
	}
	if err := Normalize(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize validates the configuration and fills defaults.
func Normalize(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}
	if err := coreconfig.Normalize(&cfg.Core); err != nil {
		return err
	}

	cfg.Storage.Driver = strings.ToLower(strings.TrimSpace(cfg.Storage.Driver))
	switch cfg.Storage.Driver {
	case "":
		cfg.Storage.Driver = DriverMemory
	case DriverMemory:
	case DriverPostgres:
		if cfg.Database.Host == "" || cfg.Database.Name == "" {
			return fmt.Errorf("database.host and database.name are required for the postgres driver")
		}
		if cfg.Database.Port == "" {
			cfg.Database.Port = "5432"
		}
	default:
		return fmt.Errorf("invalid storage.driver %q; allowed: memory, postgres", cfg.Storage.Driver)
	}

	if cfg.Session.TTL <= 0 {
		cfg.Session.TTL = 24 * time.Hour
	}
	if cfg.Session.PruneInterval <= 0 {
		cfg.Session.PruneInterval = 10 * time.Minute
	}
	if cfg.Session.Shards <= 0 {
		cfg.Session.Shards = 32
	}

	d := &cfg.Dating
	if d.MinAge == 0 {
		d.MinAge = 18
	}
	if d.AgeFloor == 0 {
		d.AgeFloor = 18
	}
	if d.AgeCeiling == 0 {
		d.AgeCeiling = 99
	}
	if d.QueueLimit <= 0 {
		d.QueueLimit = 200
	}
	if d.AgeFloor < d.MinAge {
		return fmt.Errorf("dating.age_floor (%d) must not be below dating.min_age (%d)", d.AgeFloor, d.MinAge)
	}
	if d.AgeFloor > d.AgeCeiling {
		return fmt.Errorf("dating.age_floor must not exceed dating.age_ceiling")
	}
	return nil
}
