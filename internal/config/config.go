// Package config loads the CLI settings from .assist/config.yaml and ASSIST_* environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/aretw0/assist/pkg/client"
	"github.com/aretw0/assist/pkg/flows"
	"github.com/aretw0/assist/pkg/validation"
	"gopkg.in/yaml.v3"
)

// Session backends.
const (
	BackendFile   = "file"
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// FileName is the config file looked up under the project directory.
const FileName = ".assist/config.yaml"

// Config is the resolved configuration of one CLI run.
type Config struct {
	BaseURL  string        `yaml:"base_url"`
	Profile  string        `yaml:"profile"`
	LogLevel string        `yaml:"log_level"`
	Timeout  time.Duration `yaml:"timeout"`
	Session  Session       `yaml:"session"`

	// Rules overrides step rule tables: flow -> step -> rule table.
	Rules map[string]map[string][]map[string]any `yaml:"rules"`
}

// Session selects and tunes the session store.
type Session struct {
	Backend      string        `yaml:"backend"`
	Path         string        `yaml:"path"`
	RedisAddr    string        `yaml:"redis_addr"`
	RedisPrefix  string        `yaml:"redis_prefix"`
	TTL          time.Duration `yaml:"ttl"`
	Key          string        `yaml:"key"`
	FallbackKeys []string      `yaml:"fallback_keys"`
	Redact       []string      `yaml:"redact"`
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{
		BaseURL:  client.DefaultBaseURL,
		Profile:  "default",
		LogLevel: "warn",
		Session: Session{
			Backend: BackendFile,
		},
	}
}

// Load reads path on top of the defaults, then applies the environment.
// A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	strs := map[string]*string{
		"ASSIST_BASE_URL":        &c.BaseURL,
		"ASSIST_PROFILE":         &c.Profile,
		"ASSIST_LOG_LEVEL":       &c.LogLevel,
		"ASSIST_SESSION_BACKEND": &c.Session.Backend,
		"ASSIST_REDIS_ADDR":      &c.Session.RedisAddr,
		"ASSIST_SESSION_KEY":     &c.Session.Key,
	}
	for name, dst := range strs {
		if v, ok := os.LookupEnv(name); ok {
			*dst = v
		}
	}
	if v, ok := os.LookupEnv("ASSIST_TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid ASSIST_TIMEOUT: %w", err)
		}
		c.Timeout = d
	}
	return nil
}

// Validate rejects settings no component could run with.
func (c Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid base_url %q", c.BaseURL)
	}
	if c.Profile == "" {
		return errors.New("profile must not be empty")
	}
	if c.Timeout < 0 {
		return errors.New("timeout must not be negative")
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	if !slices.Contains([]string{BackendFile, BackendMemory, BackendRedis}, c.Session.Backend) {
		return fmt.Errorf("unknown session backend %q", c.Session.Backend)
	}
	if c.Session.Backend == BackendRedis && c.Session.RedisAddr == "" {
		return errors.New("session.redis_addr is required for the redis backend")
	}
	return nil
}

// Level parses LogLevel.
func (c Config) Level() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("invalid log_level %q", c.LogLevel)
	}
	return lvl, nil
}

// SessionPath is where the file backend keeps its sessions, relative paths resolved against dir.
func (c Config) SessionPath(dir string) string {
	p := c.Session.Path
	if p == "" {
		p = filepath.Join(".assist", "sessions")
	}
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, p)
}

// ApplyRules installs the configured rule overrides into a catalog.
func (c Config) ApplyRules(catalog flows.Catalog) error {
	for _, flow := range sortedKeys(c.Rules) {
		steps := c.Rules[flow]
		for _, step := range sortedKeys(steps) {
			rules, err := validation.DecodeRules(steps[step])
			if err != nil {
				return fmt.Errorf("rules.%s.%s: %w", flow, step, err)
			}
			if err := catalog.Override(flow, step, rules); err != nil {
				return err
			}
		}
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
