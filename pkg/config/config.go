package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"careline/pkg/models"
)

// Config is the YAML-backed service configuration. Environment variables
// (CARELINE_*) override file values, and command-line flags override both.
type Config struct {
	Server struct {
		Address string `yaml:"address"`
		Port    int    `yaml:"port"`
		TLS     struct {
			CertFile string `yaml:"cert_file"`
			KeyFile  string `yaml:"key_file"`
		} `yaml:"tls"`
	} `yaml:"server"`
	Storage struct {
		DBPath string `yaml:"db_path"`
	} `yaml:"storage"`
	Auth struct {
		// JWTSecret verifies bearer tokens issued by the external identity
		// service. The server refuses to start without one.
		JWTSecret string  `yaml:"jwt_secret"`
		RPS       float64 `yaml:"rps"`
		Burst     int     `yaml:"burst"`
	} `yaml:"auth"`
	Directory struct {
		// Principals seeded into the participant directory at startup.
		Principals []models.Identity `yaml:"principals"`
	} `yaml:"directory"`
	Maintenance struct {
		Enabled bool   `yaml:"enabled"`
		Cron    string `yaml:"cron"`
	} `yaml:"maintenance"`
	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
}

// Addr returns the listen address in host:port form.
func (c *Config) Addr() string {
	host := c.Server.Address
	port := c.Server.Port
	if port == 0 {
		port = 8080
	}
	return fmt.Sprintf("%s:%d", host, port)
}

// Load reads and parses the YAML config file at path.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return &c, nil
}

// ApplyEnvOverrides copies CARELINE_* environment values over cfg and
// reports whether any were present.
func ApplyEnvOverrides(cfg *Config) bool {
	used := false
	if v := os.Getenv("CARELINE_SERVER_ADDR"); v != "" {
		used = true
		if h, p, err := net.SplitHostPort(v); err == nil {
			cfg.Server.Address = h
			if pi, err := strconv.Atoi(p); err == nil {
				cfg.Server.Port = pi
			}
		} else {
			cfg.Server.Address = v
		}
	}
	if v := os.Getenv("CARELINE_DB_PATH"); v != "" {
		used = true
		cfg.Storage.DBPath = v
	}
	if v := os.Getenv("CARELINE_JWT_SECRET"); v != "" {
		used = true
		cfg.Auth.JWTSecret = v
	}
	if v := os.Getenv("CARELINE_RATE_RPS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			used = true
			cfg.Auth.RPS = f
		}
	}
	if v := os.Getenv("CARELINE_RATE_BURST"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			used = true
			cfg.Auth.Burst = n
		}
	}
	if v := os.Getenv("CARELINE_MAINTENANCE_CRON"); v != "" {
		used = true
		cfg.Maintenance.Enabled = true
		cfg.Maintenance.Cron = v
	}
	if v := os.Getenv("CARELINE_LOG_LEVEL"); v != "" {
		used = true
		cfg.Logging.Level = strings.ToLower(v)
	}
	return used
}

// ResolveConfigPath picks the config file path: an explicit flag wins,
// then CARELINE_CONFIG, then the provided default.
func ResolveConfigPath(flagPath string, flagSet bool) string {
	if flagSet {
		return flagPath
	}
	if v := os.Getenv("CARELINE_CONFIG"); v != "" {
		return v
	}
	return flagPath
}

// LoadEffective loads the config file at path (missing file is not an
// error), applies env overrides, and reports which sources contributed.
func LoadEffective(path string) (*Config, string, error) {
	cfg := &Config{}
	source := ""
	if path != "" {
		loaded, err := Load(path)
		if err == nil {
			cfg = loaded
			source = "config"
		} else if !os.IsNotExist(err) {
			return nil, "", err
		}
	}
	if ApplyEnvOverrides(cfg) {
		if source != "" {
			source += "+env"
		} else {
			source = "env"
		}
	}
	return cfg, source, nil
}
