package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"space-reservation-backend/internal/calendar"
)

// Config represents the overall application configuration.
type Config struct {
	Server        ServerConfig       `yaml:"server"`
	Database      DatabaseConfig     `yaml:"database"`
	Booking       BookingConfig      `yaml:"booking"`
	Notifications NotificationConfig `yaml:"notifications"`
	Push          PushConfig         `yaml:"push"`
}

// ServerConfig holds the server-related configuration.
type ServerConfig struct {
	Port            int     `yaml:"port"`
	RateLimitPerSec float64 `yaml:"rate_limit_per_sec"`
	RateLimitBurst  int     `yaml:"rate_limit_burst"`
	CacheTTLSeconds int     `yaml:"cache_ttl_seconds"`
}

// DatabaseConfig holds the database connection configuration.
type DatabaseConfig struct {
	Driver                    string `yaml:"driver"` // postgres or sqlite
	DSN                       string `yaml:"dsn"`
	MaxOpenConns              int    `yaml:"max_open_conns"`
	MaxIdleConns              int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes    int    `yaml:"conn_max_lifetime_minutes"`
	EnableExclusionConstraint bool   `yaml:"enable_exclusion_constraint"`
}

// BookingConfig holds the scheduling policy. Times are "HH:MM".
type BookingConfig struct {
	Timezone                string   `yaml:"timezone"`
	BusinessStart           string   `yaml:"business_start"`
	BusinessEnd             string   `yaml:"business_end"`
	SlotMinutes             int      `yaml:"slot_minutes"`
	MinDurationMinutes      int      `yaml:"min_duration_minutes"`
	MaxDurationMinutes      int      `yaml:"max_duration_minutes"`
	MaxDaysAhead            int      `yaml:"max_days_ahead"`
	CancellationLeadMinutes int      `yaml:"cancellation_lead_minutes"`
	SpaceTypes              []string `yaml:"space_types"`
}

// NotificationConfig holds the delivery settings.
type NotificationConfig struct {
	Channel              string        `yaml:"channel"`
	SweepIntervalSeconds int           `yaml:"sweep_interval_seconds"`
	SweepInterval        time.Duration `yaml:"-"` // Ignored by YAML parser
	WorkerPoolSize       int           `yaml:"worker_pool_size"`
}

// PushConfig holds the VAPID keys for web push notifications.
type PushConfig struct {
	PublicKey  string `yaml:"vapid_public_key"`
	PrivateKey string `yaml:"vapid_private_key"`
	Subject    string `yaml:"subject"`
	TTL        int    `yaml:"ttl"`
}

// envOverrides are applied on top of the YAML file.
type envOverrides struct {
	DatabaseDSN     string `envconfig:"DATABASE_DSN"`
	DatabaseDriver  string `envconfig:"DATABASE_DRIVER"`
	ServerPort      int    `envconfig:"SERVER_PORT"`
	VAPIDPublicKey  string `envconfig:"VAPID_PUBLIC_KEY"`
	VAPIDPrivateKey string `envconfig:"VAPID_PRIVATE_KEY"`
}

// EnvPrefix is the prefix of every environment override, e.g. RESERVAD_DATABASE_DSN.
const EnvPrefix = "RESERVAD"

// Load reads the configuration from the given path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns a configuration with every default applied, for tests and
// local runs without a file.
func Default() *Config {
	var cfg Config
	cfg.applyDefaults()
	return &cfg
}

func (c *Config) applyEnv() error {
	var env envOverrides
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return fmt.Errorf("failed to read environment overrides: %w", err)
	}
	if env.DatabaseDSN != "" {
		c.Database.DSN = env.DatabaseDSN
	}
	if env.DatabaseDriver != "" {
		c.Database.Driver = env.DatabaseDriver
	}
	if env.ServerPort != 0 {
		c.Server.Port = env.ServerPort
	}
	if env.VAPIDPublicKey != "" {
		c.Push.PublicKey = env.VAPIDPublicKey
	}
	if env.VAPIDPrivateKey != "" {
		c.Push.PrivateKey = env.VAPIDPrivateKey
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port <= 0 {
		c.Server.Port = 8080
	}
	if c.Server.RateLimitPerSec <= 0 {
		c.Server.RateLimitPerSec = 10
	}
	if c.Server.RateLimitBurst <= 0 {
		c.Server.RateLimitBurst = 5
	}
	if c.Server.CacheTTLSeconds <= 0 {
		c.Server.CacheTTLSeconds = 30
	}

	if c.Database.Driver == "" {
		c.Database.Driver = "postgres"
	}

	b := &c.Booking
	if b.Timezone == "" {
		b.Timezone = "UTC"
	}
	if b.BusinessStart == "" {
		b.BusinessStart = "08:00"
	}
	if b.BusinessEnd == "" {
		b.BusinessEnd = "22:00"
	}
	if b.SlotMinutes <= 0 {
		b.SlotMinutes = 60
	}
	if b.MinDurationMinutes <= 0 {
		b.MinDurationMinutes = 60
	}
	if b.MaxDurationMinutes <= 0 {
		b.MaxDurationMinutes = 240
	}
	if b.MaxDaysAhead <= 0 {
		b.MaxDaysAhead = 30
	}
	if b.CancellationLeadMinutes <= 0 {
		b.CancellationLeadMinutes = 120
	}

	n := &c.Notifications
	if n.Channel == "" {
		n.Channel = "email"
	}
	if n.SweepIntervalSeconds <= 0 {
		n.SweepIntervalSeconds = 60
	}
	n.SweepInterval = time.Duration(n.SweepIntervalSeconds) * time.Second
	if n.WorkerPoolSize <= 0 {
		log.Printf("notifications.worker_pool_size is not set or invalid; defaulting to 1")
		n.WorkerPoolSize = 1
	}

	if c.Push.TTL <= 0 {
		c.Push.TTL = 3600
	}
}

// Validate checks values that have no sensible default.
func (c *Config) Validate() error {
	if _, err := time.LoadLocation(c.Booking.Timezone); err != nil {
		return fmt.Errorf("invalid booking.timezone %q: %w", c.Booking.Timezone, err)
	}
	start, err := calendar.ParseTimeOfDay(c.Booking.BusinessStart)
	if err != nil {
		return fmt.Errorf("invalid booking.business_start: %w", err)
	}
	end, err := calendar.ParseTimeOfDay(c.Booking.BusinessEnd)
	if err != nil {
		return fmt.Errorf("invalid booking.business_end: %w", err)
	}
	if start >= end {
		return fmt.Errorf("booking.business_start %s must be before business_end %s", start, end)
	}
	if c.Booking.MinDurationMinutes > c.Booking.MaxDurationMinutes {
		return fmt.Errorf("booking.min_duration_minutes must not exceed max_duration_minutes")
	}
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported database.driver %q", c.Database.Driver)
	}
	switch c.Notifications.Channel {
	case "email", "sms", "push":
	default:
		return fmt.Errorf("unsupported notifications.channel %q", c.Notifications.Channel)
	}
	return nil
}
