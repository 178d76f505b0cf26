// Package config resolves the platform environment and agent settings from
// the process environment and an optional profile file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment selects which platform deployment the client talks to.
type Environment int

const (
	// Production is the live platform.
	Production Environment = iota

	// NonProduction is the staging platform.
	NonProduction

	// Local points at a developer deployment whose URL comes from the
	// LOAM_API_LOC environment variable.
	Local
)

// EnvAPILocation names the environment variable that carries the API URL
// for the Local environment.
const EnvAPILocation = "LOAM_API_LOC"

const (
	productionURL    = "https://api.loamstack.io"
	nonProductionURL = "https://api.loamstack.net"
)

// ParseEnvironment maps a configuration string onto an Environment.
// Matching is case-insensitive and accepts the common aliases.
func ParseEnvironment(s string) (Environment, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "prod", "production":
		return Production, nil
	case "dev", "development", "nonprod", "nonproduction", "non-production":
		return NonProduction, nil
	case "local":
		return Local, nil
	default:
		return Production, fmt.Errorf("unknown environment %q", s)
	}
}

// String returns the canonical environment name.
func (e Environment) String() string {
	switch e {
	case NonProduction:
		return "nonproduction"
	case Local:
		return "local"
	default:
		return "production"
	}
}

// URL returns the API base URL for the environment. For Local it reads
// LOAM_API_LOC and falls back to localhost when unset.
func (e Environment) URL() string {
	switch e {
	case NonProduction:
		return nonProductionURL
	case Local:
		if loc := os.Getenv(EnvAPILocation); loc != "" {
			return loc
		}
		return "http://localhost:8080"
	default:
		return productionURL
	}
}

// Config holds the agent's process-level settings.
type Config struct {
	Environment Environment `yaml:"-"`
	APIToken    string      `yaml:"api_token"`

	// Organization scopes a pre-provisioned APIToken; login flows derive
	// it from the token instead.
	Organization string `yaml:"organization"`
	Email        string `yaml:"email"`
	Password     string `yaml:"password"`
	Concurrency  int    `yaml:"concurrency"`
	ChunkSize    int64  `yaml:"chunk_size"`
	LogLevel     string `yaml:"log_level"`
	LogFormat    string `yaml:"log_format"`

	// RawEnvironment keeps the profile's environment string so Load can
	// report parse failures with the original value.
	RawEnvironment string `yaml:"environment"`
}

// DefaultProfilePath returns the conventional profile location under the
// user's home directory.
func DefaultProfilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".loam", "config.yaml")
}

// Load builds the configuration by layering, lowest precedence first: the
// profile file (when present), a .env file in the working directory (when
// present), and process environment variables.
func Load(profilePath string) (*Config, error) {
	cfg := &Config{
		Concurrency: 4,
		LogLevel:    "info",
		LogFormat:   "text",
	}

	if profilePath != "" {
		if data, err := os.ReadFile(profilePath); err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing profile %s: %w", profilePath, err)
			}
		}
	}

	// Missing .env files are fine; explicit variables still apply.
	_ = godotenv.Load()

	cfg.RawEnvironment = getEnv("LOAM_ENVIRONMENT", cfg.RawEnvironment)
	cfg.APIToken = getEnv("LOAM_API_TOKEN", cfg.APIToken)
	cfg.Organization = getEnv("LOAM_ORGANIZATION", cfg.Organization)
	cfg.Email = getEnv("LOAM_EMAIL", cfg.Email)
	cfg.Password = getEnv("LOAM_PASSWORD", cfg.Password)
	cfg.LogLevel = getEnv("LOAM_LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = getEnv("LOAM_LOG_FORMAT", cfg.LogFormat)

	if v := os.Getenv("LOAM_CONCURRENCY"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("invalid LOAM_CONCURRENCY %q", v)
		}
		cfg.Concurrency = n
	}
	if v := os.Getenv("LOAM_CHUNK_SIZE"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("invalid LOAM_CHUNK_SIZE %q", v)
		}
		cfg.ChunkSize = n
	}

	env, err := ParseEnvironment(cfg.RawEnvironment)
	if err != nil {
		return nil, err
	}
	cfg.Environment = env
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
