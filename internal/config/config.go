package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"

	"github.com/roach88/popstand/internal/report"
	"github.com/roach88/popstand/internal/state"
	"github.com/roach88/popstand/internal/store"
)

// DefaultPath is the config file looked up when no path is given.
const DefaultPath = "popstand.yaml"

// Environment variables read by Load.
const (
	EnvConfig        = "POPSTAND_CONFIG"
	EnvDatabase      = "POPSTAND_DB"
	EnvWalletAccount = "POPSTAND_WALLET_ACCOUNT"
	EnvLowStock      = "POPSTAND_LOW_STOCK"
	EnvLogLevel      = "POPSTAND_LOG_LEVEL"
)

//go:embed schema.cue
var schemaSource string

// Config is the resolved popstand configuration.
type Config struct {
	Database             string `yaml:"database" json:"database"`
	StorageKey           string `yaml:"storage_key" json:"storage_key"`
	DefaultWalletAccount string `yaml:"default_wallet_account" json:"default_wallet_account"`
	LowStockThreshold    int    `yaml:"low_stock_threshold" json:"low_stock_threshold"`
	CurrencySymbol       string `yaml:"currency_symbol" json:"currency_symbol"`
	LogLevel             string `yaml:"log_level" json:"log_level"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Database:             "popstand.db",
		StorageKey:           store.DefaultKey,
		DefaultWalletAccount: state.DefaultWalletAccount,
		LowStockThreshold:    report.DefaultLowStockThreshold,
		CurrencySymbol:       report.DefaultCurrencySymbol,
		LogLevel:             "info",
	}
}

// Load resolves the configuration. An empty path falls back to
// $POPSTAND_CONFIG and then DefaultPath. A missing file is not an error.
// getenv is usually os.Getenv; nil disables environment overrides.
func Load(path string, getenv func(string) string) (Config, error) {
	if getenv == nil {
		getenv = func(string) string { return "" }
	}
	if path == "" {
		path = getenv(EnvConfig)
	}
	if path == "" {
		path = DefaultPath
	}

	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		slog.Debug("no config file, using defaults", "path", path)
	case err != nil:
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	default:
		if err := decodeYAML(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := applyEnv(&cfg, getenv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// decodeYAML overlays data on cfg. Unknown keys are rejected.
func decodeYAML(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func applyEnv(cfg *Config, getenv func(string) string) error {
	if v := getenv(EnvDatabase); v != "" {
		cfg.Database = v
	}
	if v := getenv(EnvWalletAccount); v != "" {
		cfg.DefaultWalletAccount = v
	}
	if v := getenv(EnvLowStock); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %q is not an integer", EnvLowStock, v)
		}
		cfg.LowStockThreshold = n
	}
	if v := getenv(EnvLogLevel); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}
	return nil
}

// Validate checks cfg against the embedded CUE schema.
func (c Config) Validate() error {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile config schema: %w", err)
	}

	def := schema.LookupPath(cue.ParsePath("#Config"))
	value := ctx.Encode(c)
	if err := value.Err(); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	if err := def.Unify(value).Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Policy returns the report policy the config selects.
func (c Config) Policy() report.Policy {
	return report.Policy{LowStockThreshold: c.LowStockThreshold}
}

// SlogLevel maps LogLevel to a slog level. Unknown values map to info.
func (c Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}
