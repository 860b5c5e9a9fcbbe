// Package config resolves the DrTrace client's configuration from
// defaults, an optional per-project _drtrace/config.json file, and
// environment variables, layering a koanf.Koanf over defaults -> file ->
// env (env wins). Resolution is performed once at client construction;
// later environment mutations never affect an already-resolved Config.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	koanfjson "github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// configFileName is the per-project config file DrTrace looks for,
// searched from the working directory upward to the filesystem root.
const configFileName = "_drtrace/config.json"

const envPrefix = "DRTRACE_"

// Config is the client's fully resolved, immutable configuration. A new
// Config is produced once per client instantiation; nothing in this
// package watches the environment or the file system afterward.
type Config struct {
	ApplicationID   string `koanf:"application_id"`
	DaemonURL       string `koanf:"daemon_url"`
	ServiceName     string `koanf:"service_name"`
	Enabled         bool   `koanf:"enabled"`
	MinLevel        string `koanf:"min_level"`
	BatchSize       int    `koanf:"batch_size"`
	FlushIntervalMS int    `koanf:"flush_interval"`
	MaxBufferSize   int    `koanf:"max_buffer_size"`
	HTTPTimeoutMS   int    `koanf:"http_timeout"`
	RetryBackoffMS  int    `koanf:"retry_backoff"`
	MaxRetries      int    `koanf:"max_retries"`
	CircuitResetMS  int    `koanf:"circuit_reset_interval"`

	// Derived durations, computed by normalize() from the *MS fields above.
	FlushInterval       time.Duration `koanf:"-"`
	HTTPTimeout         time.Duration `koanf:"-"`
	RetryBackoff        time.Duration `koanf:"-"`
	CircuitResetTimeout time.Duration `koanf:"-"`
}

// defaults are the values used when no config file or environment
// variable overrides them.
func defaults() map[string]any {
	return map[string]any{
		"application_id":         "my-app",
		"daemon_url":             "http://localhost:8001/logs/ingest",
		"service_name":           "",
		"enabled":                true,
		"min_level":              "debug",
		"batch_size":             10,
		"flush_interval":         5000,
		"max_buffer_size":        10000,
		"http_timeout":           1000,
		"retry_backoff":          100,
		"max_retries":            3,
		"circuit_reset_interval": 30000,
	}
}

// envKeyToConfigKey maps the DRTRACE_ environment variables that carry a
// different suffix than their Config field onto that field (daemon_host/
// daemon_port are handled separately, since they compose into daemon_url
// rather than overwrite a single key).
var envKeyToConfigKey = map[string]string{
	"application_id":   "application_id",
	"daemon_url":       "daemon_url",
	"service_name":     "service_name",
	"enabled":          "enabled",
	"min_level":        "min_level",
	"max_buffer_size":  "max_buffer_size",
	"http_timeout_ms":  "http_timeout",
	"retry_backoff_ms": "retry_backoff",
	"max_retries":      "max_retries",
	"circuit_reset_ms": "circuit_reset_interval",
}

// Resolve builds a Config from (highest priority first) environment
// variables, _drtrace/config.json found by walking up from the working
// directory, then the hard-coded defaults above. Resolution never fails
// the process: a malformed or missing file/env value is skipped in favor
// of the next-lower-priority source, since a misconfigured client should
// degrade to defaults rather than stop an application from starting.
func Resolve() *Config {
	k := koanf.New(".")

	// Lowest priority: hard-coded defaults.
	_ = k.Load(confmap.Provider(defaults(), "."), nil)

	// Middle priority: the per-project config file, if one can be found
	// and parses cleanly. A present-but-broken file is ignored, not fatal.
	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), koanfjson.Parser()); err != nil {
			k = koanf.New(".")
			_ = k.Load(confmap.Provider(defaults(), "."), nil)
		}
	}

	// Highest priority: environment variables, DRTRACE_-prefixed.
	_ = k.Load(env.Provider(envPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, envPrefix))
		if mapped, ok := envKeyToConfigKey[key]; ok {
			return mapped
		}
		return key
	}), nil)

	cfg := &Config{}
	_ = k.Unmarshal("", cfg)

	// "enabled" needs lenient parsing: a malformed DRTRACE_ENABLED value
	// falls back to the default rather than zeroing the field out.
	if raw := os.Getenv(envPrefix + "ENABLED"); raw != "" {
		if b, err := strconv.ParseBool(raw); err == nil {
			cfg.Enabled = b
		} else {
			cfg.Enabled = defaults()["enabled"].(bool)
		}
	}

	normalize(cfg)
	return cfg
}

// normalize fills in any field that ended up at its zero value (an
// invalid env/file override) with the hard-coded default, then derives
// the time.Duration fields the rest of the client uses.
func normalize(c *Config) {
	d := defaults()
	if c.ApplicationID == "" {
		c.ApplicationID = d["application_id"].(string)
	}
	if c.MinLevel == "" {
		c.MinLevel = d["min_level"].(string)
	}
	if c.BatchSize <= 0 {
		c.BatchSize = d["batch_size"].(int)
	}
	if c.FlushIntervalMS <= 0 {
		c.FlushIntervalMS = d["flush_interval"].(int)
	}
	if c.HTTPTimeoutMS <= 0 {
		c.HTTPTimeoutMS = d["http_timeout"].(int)
	}
	if c.RetryBackoffMS <= 0 {
		c.RetryBackoffMS = d["retry_backoff"].(int)
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = d["max_retries"].(int)
	}
	if c.CircuitResetMS <= 0 {
		c.CircuitResetMS = d["circuit_reset_interval"].(int)
	}
	if c.DaemonURL == "" {
		c.DaemonURL = d["daemon_url"].(string)
	}

	// daemon_host/daemon_port compose a daemon_url when present, taking
	// priority over both the file and the hard-coded default (but not
	// over an explicit DRTRACE_DAEMON_URL, which env.Provider already
	// applied above).
	if host := os.Getenv(envPrefix + "DAEMON_HOST"); host != "" && os.Getenv(envPrefix+"DAEMON_URL") == "" {
		port := os.Getenv(envPrefix + "DAEMON_PORT")
		if port == "" {
			port = "8001"
		}
		c.DaemonURL = fmt.Sprintf("http://%s:%s/logs/ingest", host, port)
	}

	c.FlushInterval = time.Duration(c.FlushIntervalMS) * time.Millisecond
	c.HTTPTimeout = time.Duration(c.HTTPTimeoutMS) * time.Millisecond
	c.RetryBackoff = time.Duration(c.RetryBackoffMS) * time.Millisecond
	c.CircuitResetTimeout = time.Duration(c.CircuitResetMS) * time.Millisecond
}

// findConfigFile walks from the working directory up to the filesystem
// root looking for _drtrace/config.json, so it's found regardless of
// which subdirectory of a project the client is started from.
func findConfigFile() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		candidate := filepath.Join(dir, configFileName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// WriteExampleConfig writes a config.json skeleton at dir/_drtrace/config.json.
// Not called by the client itself; exercised by this package's own tests
// as a round-trip check of the documented file format, and useful for
// any external tooling that wants to scaffold a project's config file.
func WriteExampleConfig(dir string) error {
	path := filepath.Join(dir, "_drtrace")
	if err := os.MkdirAll(path, 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(defaults(), "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(path, "config.json"), data, 0o644)
}
