// Package config loads server configuration from an optional YAML file and
// the environment. Environment variables always win over the file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Store drivers.
const (
	StoreMemory   = "memory"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
)

// Gateway backends.
const (
	GatewaySimulated = "simulated"
	GatewayStripe    = "stripe"
)

type Config struct {
	Port string `yaml:"port"`
	Env  string `yaml:"environment"`

	StoreDriver string `yaml:"store_driver"`
	DBPath      string `yaml:"db_path"`
	DBSource    string `yaml:"db_source"`

	Gateway            string `yaml:"gateway"`
	StripeSecretKey    string `yaml:"stripe_secret_key"`
	StripeAPIURL       string `yaml:"stripe_api_url"`
	GatewayConcurrency int    `yaml:"gateway_concurrency"`

	// JWTSecret signs terminal tokens. Empty disables terminal auth.
	JWTSecret string        `yaml:"jwt_secret"`
	TokenTTL  time.Duration `yaml:"token_ttl"`

	// Groups are created at startup, for demos and local development.
	Groups []GroupSeed `yaml:"groups"`
}

// GroupSeed describes a group to create at startup.
type GroupSeed struct {
	Name    string       `yaml:"name"`
	Members []MemberSeed `yaml:"members"`
}

type MemberSeed struct {
	ID               string `yaml:"id"`
	Name             string `yaml:"name"`
	Email            string `yaml:"email"`
	PaymentMethodRef string `yaml:"payment_method_ref"`
}

func defaults() *Config {
	return &Config{
		Port:               "8080",
		Env:                "development",
		StoreDriver:        StoreSQLite,
		DBPath:             "./data/groupcard.db",
		Gateway:            GatewaySimulated,
		GatewayConcurrency: 16,
		TokenTTL:           24 * time.Hour,
	}
}

// Load reads CONFIG_FILE (if set), applies environment overrides and
// validates the result.
func Load() (*Config, error) {
	cfg := defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	setString(&c.Port, "SERVER_PORT")
	setString(&c.Env, "ENVIRONMENT")
	setString(&c.StoreDriver, "STORE_DRIVER")
	setString(&c.DBPath, "DB_PATH")
	setString(&c.DBSource, "DB_SOURCE")
	setString(&c.Gateway, "GATEWAY")
	setString(&c.StripeSecretKey, "STRIPE_SECRET_KEY")
	setString(&c.StripeAPIURL, "STRIPE_API_URL")
	setString(&c.JWTSecret, "JWT_SECRET")

	if v := os.Getenv("TOKEN_TTL"); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("TOKEN_TTL: %w", err)
		}
		c.TokenTTL = ttl
	}
	if v := os.Getenv("GATEWAY_CONCURRENCY"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("GATEWAY_CONCURRENCY: %w", err)
		}
		c.GatewayConcurrency = n
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// Validate checks that the selected backends have what they need.
func (c *Config) Validate() error {
	var errs []error

	c.StoreDriver = strings.ToLower(c.StoreDriver)
	switch c.StoreDriver {
	case StoreMemory, StoreSQLite:
	case StorePostgres:
		if c.DBSource == "" {
			errs = append(errs, errors.New("DB_SOURCE is required for the postgres store"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown store driver %q", c.StoreDriver))
	}

	c.Gateway = strings.ToLower(c.Gateway)
	switch c.Gateway {
	case GatewaySimulated:
	case GatewayStripe:
		if c.StripeSecretKey == "" {
			errs = append(errs, errors.New("STRIPE_SECRET_KEY is required for the stripe gateway"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown gateway %q", c.Gateway))
	}

	if c.GatewayConcurrency <= 0 {
		errs = append(errs, fmt.Errorf("gateway concurrency must be positive, got %d", c.GatewayConcurrency))
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, fmt.Errorf("token TTL must be positive, got %s", c.TokenTTL))
	}
	for i, g := range c.Groups {
		if g.Name == "" || len(g.Members) == 0 {
			errs = append(errs, fmt.Errorf("groups[%d]: name and members are required", i))
		}
	}

	return errors.Join(errs...)
}

// AuthEnabled reports whether merchant calls require a terminal token.
func (c *Config) AuthEnabled() bool {
	return c.JWTSecret != ""
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
