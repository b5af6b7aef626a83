package config

import (
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Database drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	Tailscale TailscaleConfig `yaml:"tailscale"`
	MCP       MCPConfig       `yaml:"mcp"`
	Log       LogConfig       `yaml:"log"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type DatabaseConfig struct {
	Driver   string `yaml:"driver"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
	MaxConns int32  `yaml:"max_conns"`
	// Path is the SQLite database file, used when Driver is "sqlite".
	Path string `yaml:"path"`
}

// AuthConfig guards the edit endpoints. An empty APIKey leaves them open to
// anyone who can reach the server.
type AuthConfig struct {
	APIKey string `yaml:"api_key"`
}

// TailscaleConfig serves the API on a tailnet via tsnet instead of a plain
// listener. Callers are identified by their Tailscale login.
type TailscaleConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Hostname string `yaml:"hostname"`
	StateDir string `yaml:"state_dir"`
}

type MCPConfig struct {
	Enabled bool `yaml:"enabled"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// DSN returns a PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	sslmode := d.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     net.JoinHostPort(d.Host, strconv.Itoa(d.Port)),
		Path:     "/" + d.Name,
		RawQuery: "sslmode=" + url.QueryEscape(sslmode),
	}
	return u.String()
}

// SlogLevel parses the configured log level, defaulting to info.
func (l LogConfig) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// Load reads config from a YAML file, then applies environment variable overrides.
// Env vars use the prefix LIFTPLAN_ and underscore-separated paths:
//
//	LIFTPLAN_SERVER_HOST, LIFTPLAN_SERVER_PORT,
//	LIFTPLAN_DB_DRIVER, LIFTPLAN_DB_HOST, LIFTPLAN_DB_PORT, LIFTPLAN_DB_NAME,
//	LIFTPLAN_DB_USER, LIFTPLAN_DB_PASSWORD, LIFTPLAN_DB_SSLMODE, LIFTPLAN_DB_PATH,
//	LIFTPLAN_AUTH_API_KEY,
//	LIFTPLAN_TAILSCALE_ENABLED, LIFTPLAN_TAILSCALE_HOSTNAME, LIFTPLAN_TAILSCALE_STATE_DIR,
//	LIFTPLAN_MCP_ENABLED, LIFTPLAN_LOG_LEVEL
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)
	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	str := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) {
		if v := os.Getenv(key); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}
	flag := func(key string, dst *bool) {
		if v := os.Getenv(key); v != "" {
			if b, err := strconv.ParseBool(v); err == nil {
				*dst = b
			}
		}
	}

	str("LIFTPLAN_SERVER_HOST", &cfg.Server.Host)
	num("LIFTPLAN_SERVER_PORT", &cfg.Server.Port)
	str("LIFTPLAN_DB_DRIVER", &cfg.Database.Driver)
	str("LIFTPLAN_DB_HOST", &cfg.Database.Host)
	num("LIFTPLAN_DB_PORT", &cfg.Database.Port)
	str("LIFTPLAN_DB_NAME", &cfg.Database.Name)
	str("LIFTPLAN_DB_USER", &cfg.Database.User)
	str("LIFTPLAN_DB_PASSWORD", &cfg.Database.Password)
	str("LIFTPLAN_DB_SSLMODE", &cfg.Database.SSLMode)
	str("LIFTPLAN_DB_PATH", &cfg.Database.Path)
	str("LIFTPLAN_AUTH_API_KEY", &cfg.Auth.APIKey)
	flag("LIFTPLAN_TAILSCALE_ENABLED", &cfg.Tailscale.Enabled)
	str("LIFTPLAN_TAILSCALE_HOSTNAME", &cfg.Tailscale.Hostname)
	str("LIFTPLAN_TAILSCALE_STATE_DIR", &cfg.Tailscale.StateDir)
	flag("LIFTPLAN_MCP_ENABLED", &cfg.MCP.Enabled)
	str("LIFTPLAN_LOG_LEVEL", &cfg.Log.Level)
}

func (c *Config) applyDefaults() {
	c.Database.Driver = strings.ToLower(strings.TrimSpace(c.Database.Driver))
	if c.Database.Driver == "" {
		c.Database.Driver = DriverPostgres
	}
	if c.Database.Driver == DriverSQLite && c.Database.Path == "" {
		c.Database.Path = "liftplan.db"
	}
	if c.Tailscale.Enabled && c.Tailscale.Hostname == "" {
		c.Tailscale.Hostname = "liftplan"
	}
}

func (c *Config) validate() error {
	if c.Server.Port == 0 && !c.Tailscale.Enabled {
		return fmt.Errorf("server.port is required")
	}
	switch c.Database.Driver {
	case DriverPostgres:
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
	case DriverSQLite:
	default:
		return fmt.Errorf("database.driver %q is not supported (use %q or %q)",
			c.Database.Driver, DriverPostgres, DriverSQLite)
	}
	if c.Tailscale.Enabled && c.Tailscale.StateDir == "" {
		return fmt.Errorf("tailscale.state_dir is required when tailscale is enabled")
	}
	return nil
}
