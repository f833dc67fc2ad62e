package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// FileName is the configuration file created by `conferencia init`.
const FileName = "conferencia.yaml"

// Environment variables that override the file.
const (
	EnvDBPath    = "CONFERENCIA_DB_PATH"
	EnvAddr      = "CONFERENCIA_ADDR"
	EnvLogLevel  = "CONFERENCIA_LOG_LEVEL"
	EnvLogFormat = "CONFERENCIA_LOG_FORMAT"
)

// Config represents conferencia.yaml.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Server   ServerConfig   `yaml:"server"`
	Matching MatchingConfig `yaml:"matching"`
	Log      LogConfig      `yaml:"log"`
}

// DatabaseConfig locates the SQLite database.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// ServerConfig controls `conferencia serve`.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// MatchingConfig tunes the reconciliation engine.
type MatchingConfig struct {
	Tolerance       string `yaml:"tolerance"` // decimal, e.g. "0.01"
	RetentionPrefix string `yaml:"retention_prefix"`
	EntradaOrigin   string `yaml:"entrada_origin"`
	SaidaOrigin     string `yaml:"saida_origin"`
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// Load reads a conferencia.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new project.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{Path: "data/conferencia.db"},
		Server:   ServerConfig{Addr: ":3000"},
		Matching: MatchingConfig{
			Tolerance:       "0.01",
			RetentionPrefix: "RE",
			EntradaOrigin:   "FE",
			SaidaOrigin:     "FS",
		},
		Log: LogConfig{Level: "info", Format: "text"},
	}
}

// ApplyEnv overrides cfg from the process environment. Values from the
// dotenv file at envPath (if it exists) apply when the process does not set
// the variable itself.
func ApplyEnv(cfg *Config, envPath string) error {
	file := map[string]string{}
	if envPath != "" {
		vars, err := godotenv.Read(envPath)
		switch {
		case err == nil:
			file = vars
		case !errors.Is(err, os.ErrNotExist):
			return fmt.Errorf("reading %s: %w", envPath, err)
		}
	}

	lookup := func(key string) string {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			return v
		}
		return file[key]
	}

	for key, dst := range map[string]*string{
		EnvDBPath:    &cfg.Database.Path,
		EnvAddr:      &cfg.Server.Addr,
		EnvLogLevel:  &cfg.Log.Level,
		EnvLogFormat: &cfg.Log.Format,
	} {
		if v := lookup(key); v != "" {
			*dst = v
		}
	}
	return nil
}

// Validate checks the values the engine and server depend on.
func (c *Config) Validate() error {
	var errs []error
	if c.Database.Path == "" {
		errs = append(errs, errors.New("database.path is required"))
	}
	if _, err := c.Matching.ToleranceValue(); err != nil {
		errs = append(errs, err)
	}
	for name, code := range map[string]string{
		"matching.retention_prefix": c.Matching.RetentionPrefix,
		"matching.entrada_origin":   c.Matching.EntradaOrigin,
		"matching.saida_origin":     c.Matching.SaidaOrigin,
	} {
		if !isOriginCode(code) {
			errs = append(errs, fmt.Errorf("%s must be two letters, got %q", name, code))
		}
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	if f := strings.ToLower(c.Log.Format); f != "" && f != "text" && f != "json" {
		errs = append(errs, fmt.Errorf("log.format must be text or json, got %q", c.Log.Format))
	}
	return errors.Join(errs...)
}

// ToleranceValue parses the matching tolerance. Empty means zero, which the
// engine replaces with its default.
func (m MatchingConfig) ToleranceValue() (decimal.Decimal, error) {
	if strings.TrimSpace(m.Tolerance) == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(strings.TrimSpace(m.Tolerance))
	if err != nil {
		return decimal.Zero, fmt.Errorf("matching.tolerance: %w", err)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("matching.tolerance must not be negative, got %s", d)
	}
	return d, nil
}

// NewLogger builds a slog.Logger writing to w.
func (l LogConfig) NewLogger(w io.Writer) (*slog.Logger, error) {
	level, err := parseLevel(l.Level)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(l.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if s == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("log.level: %w", err)
	}
	return level, nil
}

func isOriginCode(s string) bool {
	if len(s) != 2 {
		return false
	}
	for _, r := range strings.ToUpper(s) {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}
