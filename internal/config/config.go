// Package config loads the pathwise configuration file and applies
// environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/abhisek/pathwise/internal/llm"
	"github.com/abhisek/pathwise/internal/roadmapgen"
)

// Store backends.
const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Config is the full application configuration.
type Config struct {
	LLM        llm.Config        `yaml:"llm"`
	Generation roadmapgen.Config `yaml:"generation"`
	Log        LogConfig         `yaml:"log"`
	Store      StoreConfig       `yaml:"store"`
	Server     ServerConfig      `yaml:"server"`
}

type LogConfig struct {
	Mode  string `yaml:"mode"`  // "dev" or "prod"
	Level string `yaml:"level"` // zap level name; empty means warn
}

// StoreConfig selects where roadmaps and projects are kept. LLM request
// events always go to SQLite.
type StoreConfig struct {
	Backend     string `yaml:"backend"`
	DBPath      string `yaml:"db_path"`
	RedisAddr   string `yaml:"redis_addr"`
	RedisDB     int    `yaml:"redis_db"`
	RedisPrefix string `yaml:"redis_prefix"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		LLM:        llm.DefaultConfig(),
		Generation: roadmapgen.DefaultConfig(),
		Log:        LogConfig{Mode: "dev"},
		Store: StoreConfig{
			Backend:     BackendSQLite,
			RedisAddr:   "localhost:6379",
			RedisPrefix: "pathwise:",
		},
		Server: ServerConfig{Addr: ":8080"},
	}
}

// Path resolves the config file location: explicit path, then
// $PATHWISE_CONFIG, then $XDG_CONFIG_HOME/pathwise/config.yaml.
func Path(explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	if p := os.Getenv("PATHWISE_CONFIG"); p != "" {
		return p, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config dir: %w", err)
	}
	return filepath.Join(dir, "pathwise", "config.yaml"), nil
}

// Load reads the config file at path over the defaults and applies
// environment overrides. A missing file is not an error unless the path
// was given explicitly.
func Load(explicit string) (Config, error) {
	cfg := Default()

	path, err := Path(explicit)
	if err != nil {
		return cfg, err
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && explicit == "":
	default:
		return cfg, fmt.Errorf("read config: %w", err)
	}

	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	cfg.LLM = llm.ConfigFromEnv(cfg.LLM)

	if v := os.Getenv("PATHWISE_LOG_MODE"); v != "" {
		cfg.Log.Mode = v
	}
	if v := os.Getenv("PATHWISE_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("PATHWISE_STORE"); v != "" {
		cfg.Store.Backend = v
	}
	if v := os.Getenv("PATHWISE_DB"); v != "" {
		cfg.Store.DBPath = v
	}
	if v := os.Getenv("PATHWISE_REDIS_ADDR"); v != "" {
		cfg.Store.RedisAddr = v
	}
	if v := os.Getenv("PATHWISE_REDIS_DB"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PATHWISE_REDIS_DB: %w", err)
		}
		cfg.Store.RedisDB = n
	}
	if v := os.Getenv("PATHWISE_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("PATHWISE_CONCURRENCY"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PATHWISE_CONCURRENCY: %w", err)
		}
		cfg.Generation.Concurrency = n
	}
	return nil
}

// Validate checks settings that are independent of LLM credentials.
// Provider credentials are checked when the provider is built.
func (c Config) Validate() error {
	var errs []error

	switch c.Store.Backend {
	case BackendSQLite, BackendMemory:
	case BackendRedis:
		if c.Store.RedisAddr == "" {
			errs = append(errs, errors.New("store.redis_addr is required for the redis backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown store backend %q", c.Store.Backend))
	}

	g := c.Generation
	if g.MaxTokens <= 0 {
		errs = append(errs, errors.New("generation.max_tokens must be positive"))
	}
	if g.Temperature < 0 || g.Temperature > 1 {
		errs = append(errs, fmt.Errorf("generation.temperature %v out of range [0, 1]", g.Temperature))
	}
	if g.Concurrency < 1 {
		errs = append(errs, errors.New("generation.concurrency must be at least 1"))
	}
	l := g.Limits
	if l.MinNodes < 1 || l.MinProjectIdeas < 0 || l.MinResources < 0 || l.MinVideos < 0 {
		errs = append(errs, errors.New("generation.limits: min_nodes must be at least 1 and other minimums non-negative"))
	}

	return errors.Join(errs...)
}
