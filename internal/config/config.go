package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	Tailscale TailscaleConfig `yaml:"tailscale"`
	Recovery  RecoveryConfig  `yaml:"recovery"`
	Overload  OverloadConfig  `yaml:"overload"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
}

type AuthConfig struct {
	APIKey string `yaml:"api_key"`
}

type TailscaleConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Hostname string `yaml:"hostname"`
	StateDir string `yaml:"state_dir"`
}

// RecoveryConfig tunes the muscle recovery heuristic. The base windows and
// RPE scaling are not derived from any physiological model; they are knobs,
// not truths.
type RecoveryConfig struct {
	// BaseHours maps muscle name to the baseline full-recovery window.
	// Larger muscle groups get longer windows.
	BaseHours map[string]float64 `yaml:"base_hours"`
	// DefaultBaseHours applies to muscles absent from BaseHours.
	DefaultBaseHours float64 `yaml:"default_base_hours"`
	// RPEReference is the session intensity at which the base window applies
	// unscaled. RPEScalePerPoint stretches the window per RPE point above
	// the reference, as a fraction of the base window.
	RPEReference     float64 `yaml:"rpe_reference"`
	RPEScalePerPoint float64 `yaml:"rpe_scale_per_point"`
}

// OverloadConfig tunes the progressive overload recommendation.
type OverloadConfig struct {
	// IncrementPct is the weight increase proposed after a fully met target,
	// e.g. 0.03 for 3%.
	IncrementPct float64 `yaml:"increment_pct"`
	// RoundToKg rounds proposed weights to the nearest multiple, matching
	// available plate increments.
	RoundToKg float64 `yaml:"round_to_kg"`
}

// DSN returns a PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	sslmode := d.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, sslmode)
}

// Load reads config from a YAML file, then applies environment variable
// overrides. Env vars use the prefix FITFORGE_ and underscore-separated paths:
//
//	FITFORGE_SERVER_HOST, FITFORGE_SERVER_PORT,
//	FITFORGE_DB_HOST, FITFORGE_DB_PORT, FITFORGE_DB_NAME,
//	FITFORGE_DB_USER, FITFORGE_DB_PASSWORD, FITFORGE_DB_SSLMODE,
//	FITFORGE_AUTH_API_KEY
func Load(path string) (*Config, error) {
	cfg := &Config{}
	cfg.applyDefaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func (c *Config) applyDefaults() {
	c.Recovery.DefaultBaseHours = 48
	c.Recovery.RPEReference = 7
	c.Recovery.RPEScalePerPoint = 0.10
	c.Recovery.BaseHours = map[string]float64{
		"chest":      48,
		"back":       48,
		"quads":      72,
		"hamstrings": 72,
		"glutes":     72,
		"shoulders":  36,
		"biceps":     24,
		"triceps":    24,
		"calves":     24,
		"core":       24,
	}
	c.Overload.IncrementPct = 0.03
	c.Overload.RoundToKg = 0.5
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("FITFORGE_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("FITFORGE_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("FITFORGE_DB_HOST"); v != "" {
		cfg.Database.Host = v
	}
	if v := os.Getenv("FITFORGE_DB_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Database.Port = port
		}
	}
	if v := os.Getenv("FITFORGE_DB_NAME"); v != "" {
		cfg.Database.Name = v
	}
	if v := os.Getenv("FITFORGE_DB_USER"); v != "" {
		cfg.Database.User = v
	}
	if v := os.Getenv("FITFORGE_DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("FITFORGE_DB_SSLMODE"); v != "" {
		cfg.Database.SSLMode = v
	}
	if v := os.Getenv("FITFORGE_AUTH_API_KEY"); v != "" {
		cfg.Auth.APIKey = v
	}
}

func (c *Config) validate() error {
	if c.Server.Port == 0 && !c.Tailscale.Enabled {
		return fmt.Errorf("server.port is required")
	}
	if c.Database.Host == "" {
		return fmt.Errorf("database.host is required")
	}
	if c.Database.Port == 0 {
		return fmt.Errorf("database.port is required")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("database.name is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database.user is required")
	}
	if c.Tailscale.Enabled && c.Tailscale.Hostname == "" {
		return fmt.Errorf("tailscale.hostname is required when tailscale is enabled")
	}
	if c.Overload.IncrementPct < 0 {
		return fmt.Errorf("overload.increment_pct must not be negative")
	}
	if c.Overload.RoundToKg <= 0 {
		return fmt.Errorf("overload.round_to_kg must be positive")
	}
	if c.Recovery.DefaultBaseHours <= 0 {
		return fmt.Errorf("recovery.default_base_hours must be positive")
	}
	return nil
}
