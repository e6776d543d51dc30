// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/Rodrigoaguilar-sf/Markyt-AI-agent/internal/kvstore"
	"github.com/Rodrigoaguilar-sf/Markyt-AI-agent/internal/model"
	"github.com/Rodrigoaguilar-sf/Markyt-AI-agent/internal/util"
)

// CurrentVersion is written to new config files.
const CurrentVersion = "1"

// Completion providers.
const (
	ProviderBackend = "backend"
	ProviderOpenAI  = "openai"
)

// UI themes.
const (
	ThemeAuto  = "auto"
	ThemeDark  = "dark"
	ThemeLight = "light"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete Markyt configuration.
type Config struct {
	Version string `toml:"version" json:"version"`

	// API is the Markyt backend serving chat, quotes and charts.
	API APIConfig `toml:"api" json:"api"`

	// Completion selects who answers chat messages.
	Completion CompletionConfig `toml:"completion" json:"completion"`

	// Storage configures local persistence.
	Storage StorageConfig `toml:"storage" json:"storage"`

	// Quotes configures the favorites refresh loop.
	Quotes QuotesConfig `toml:"quotes" json:"quotes"`

	UI UIConfig `toml:"ui" json:"ui"`
}

// APIConfig contains backend connection settings.
type APIConfig struct {
	URL               string  `toml:"url" json:"url"`
	TimeoutSecs       int     `toml:"timeout_secs" json:"timeout_secs"`
	MaxRetries        int     `toml:"max_retries" json:"max_retries"`
	RequestsPerSecond float64 `toml:"requests_per_second" json:"requests_per_second"`
	// Verbose logs every HTTP request
	Verbose bool `toml:"verbose" json:"verbose"`
}

// CompletionConfig contains chat completion settings.
type CompletionConfig struct {
	// Provider is "backend" (POST /api/chat) or "openai" (direct)
	Provider string `toml:"provider" json:"provider"`
	// APIKey, BaseURL and Model apply to the openai provider only
	APIKey      string  `toml:"api_key" json:"api_key"`
	BaseURL     string  `toml:"base_url" json:"base_url"`
	Model       string  `toml:"model" json:"model"`
	Temperature float64 `toml:"temperature" json:"temperature"`
	MaxTokens   int     `toml:"max_tokens" json:"max_tokens"`
}

// StorageConfig contains persistence settings.
type StorageConfig struct {
	// Backend is one of kvstore.Backends
	Backend string `toml:"backend" json:"backend"`
	// DataDir holds the stores; empty means the config directory
	DataDir string `toml:"data_dir" json:"data_dir"`
}

// QuotesConfig contains quote refresh settings.
type QuotesConfig struct {
	RefreshIntervalSecs int `toml:"refresh_interval_secs" json:"refresh_interval_secs"`
	MaxConcurrent       int `toml:"max_concurrent" json:"max_concurrent"`
	FetchTimeoutSecs    int `toml:"fetch_timeout_secs" json:"fetch_timeout_secs"`
}

// UIConfig contains UI configuration.
type UIConfig struct {
	// Theme is the initial UI theme: "dark", "light", "auto". A theme picked
	// in the UI is remembered separately and wins over this.
	Theme string `toml:"theme" json:"theme"`
	// ChartPeriod is the default chart window
	ChartPeriod string `toml:"chart_period" json:"chart_period"`
	// RenderMarkdown renders assistant replies with glamour
	RenderMarkdown bool `toml:"render_markdown" json:"render_markdown"`
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Version: CurrentVersion,
		API: APIConfig{
			URL:               "http://localhost:8000",
			TimeoutSecs:       60,
			MaxRetries:        2,
			RequestsPerSecond: 5,
		},
		Completion: CompletionConfig{
			Provider:    ProviderBackend,
			Model:       "gpt-4o-mini",
			Temperature: 0.7,
		},
		Storage: StorageConfig{
			Backend: kvstore.BackendFile,
		},
		Quotes: QuotesConfig{
			RefreshIntervalSecs: 60,
			MaxConcurrent:       4,
			FetchTimeoutSecs:    30,
		},
		UI: UIConfig{
			Theme:          ThemeAuto,
			ChartPeriod:    model.DefaultChartPeriod,
			RenderMarkdown: true,
		},
	}
}

// APITimeout returns api.timeout_secs as a duration.
func (c *Config) APITimeout() time.Duration {
	return time.Duration(c.API.TimeoutSecs) * time.Second
}

// RefreshInterval returns quotes.refresh_interval_secs as a duration.
func (c *Config) RefreshInterval() time.Duration {
	return time.Duration(c.Quotes.RefreshIntervalSecs) * time.Second
}

// FetchTimeout returns quotes.fetch_timeout_secs as a duration.
func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.Quotes.FetchTimeoutSecs) * time.Second
}

// DataDir returns the directory holding persisted state.
func (c *Config) DataDir() (string, error) {
	if c.Storage.DataDir != "" {
		return expandHome(c.Storage.DataDir)
	}
	return ConfigDir()
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the Markyt configuration directory path. MARKYT_HOME
// overrides the default ~/.markyt.
func ConfigDir() (string, error) {
	if dir := os.Getenv("MARKYT_HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".markyt"), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ConfigPathJSON returns the path to the JSON config file.
func ConfigPathJSON() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the config file(s).
// Tries TOML first, then JSON, and falls back to defaults. .env files and
// environment overrides are applied last. A file that fails to decode is
// reported alongside the defaults; a config that fails validation is an error.
func Load() (*Config, error) {
	LoadDotEnv()

	var loadErr error
	for _, pathFn := range []func() (string, error){ConfigPathTOML, ConfigPathJSON} {
		path, err := pathFn()
		if err != nil {
			continue
		}
		if _, statErr := os.Stat(path); statErr != nil {
			continue
		}
		cfg, err := LoadFromPath(path)
		if err == nil {
			return cfg, nil
		}
		if errors.As(err, new(ValidateErrors)) {
			return nil, err
		}
		loadErr = err
		break
	}

	cfg := Default()
	if err := cfg.finish(); err != nil {
		return nil, err
	}
	return cfg, loadErr
}

// LoadFromPath loads configuration from a specific file path with full validation.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	if strings.HasSuffix(path, ".json") {
		if err := LoadJSON(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load JSON config from %s: %w", path, err)
		}
	} else {
		if err := LoadTOML(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load TOML config from %s: %w", path, err)
		}
	}

	if err := cfg.finish(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// finish applies environment overrides, defaults and validation.
func (c *Config) finish() error {
	if err := c.ApplyEnvOverrides(); err != nil {
		return err
	}
	c.SetDefaults()
	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// LoadTOML decodes a TOML file over cfg.
func LoadTOML(cfg *Config, path string) error {
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	return nil
}

// LoadJSON decodes a JSON file over cfg.
func LoadJSON(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read JSON file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode JSON file: %w", err)
	}
	return nil
}

// SetDefaults fills zero values left by a sparse config file.
func (c *Config) SetDefaults() {
	d := Default()

	if c.Version == "" {
		c.Version = d.Version
	}
	if c.API.URL == "" {
		c.API.URL = d.API.URL
	}
	c.API.URL = strings.TrimSuffix(c.API.URL, "/")
	if c.API.TimeoutSecs == 0 {
		c.API.TimeoutSecs = d.API.TimeoutSecs
	}
	if c.API.RequestsPerSecond == 0 {
		c.API.RequestsPerSecond = d.API.RequestsPerSecond
	}
	if c.Completion.Provider == "" {
		c.Completion.Provider = d.Completion.Provider
	}
	c.Completion.Provider = strings.ToLower(c.Completion.Provider)
	if c.Completion.Model == "" {
		c.Completion.Model = d.Completion.Model
	}
	if c.Storage.Backend == "" {
		c.Storage.Backend = d.Storage.Backend
	}
	c.Storage.Backend = strings.ToLower(c.Storage.Backend)
	if c.Quotes.RefreshIntervalSecs == 0 {
		c.Quotes.RefreshIntervalSecs = d.Quotes.RefreshIntervalSecs
	}
	if c.Quotes.MaxConcurrent == 0 {
		c.Quotes.MaxConcurrent = d.Quotes.MaxConcurrent
	}
	if c.Quotes.FetchTimeoutSecs == 0 {
		c.Quotes.FetchTimeoutSecs = d.Quotes.FetchTimeoutSecs
	}
	if c.UI.Theme == "" {
		c.UI.Theme = d.UI.Theme
	}
	c.UI.Theme = strings.ToLower(c.UI.Theme)
	if c.UI.ChartPeriod == "" {
		c.UI.ChartPeriod = d.UI.ChartPeriod
	}
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML saves the configuration to a TOML file with 0600 permissions.
func SaveTOML(cfg *Config, path string) error {
	var buf bytes.Buffer
	buf.WriteString("# Markyt configuration file\n")
	buf.WriteString("# Edit by hand or with `markyt config set <key> <value>`\n\n")

	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFileWithDir(path, buf.Bytes(), 0600, 0700); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// SaveJSON saves the configuration to a JSON file with 0600 permissions.
func SaveJSON(cfg *Config, path string) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFileWithDir(path, data, 0600, 0700); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors
	add := func(field, format string, args ...any) {
		errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	if u, err := url.Parse(c.API.URL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		add("api.url", "must be an absolute http(s) URL, got %q", c.API.URL)
	}
	if c.API.TimeoutSecs < 1 || c.API.TimeoutSecs > 600 {
		add("api.timeout_secs", "must be between 1 and 600, got %d", c.API.TimeoutSecs)
	}
	if c.API.MaxRetries < 0 || c.API.MaxRetries > 10 {
		add("api.max_retries", "must be between 0 and 10, got %d", c.API.MaxRetries)
	}
	if c.API.RequestsPerSecond <= 0 {
		add("api.requests_per_second", "must be positive, got %g", c.API.RequestsPerSecond)
	}

	switch c.Completion.Provider {
	case ProviderBackend:
	case ProviderOpenAI:
		if c.Completion.APIKey == "" {
			add("completion.api_key", "is required for the %s provider (or set OPENAI_API_KEY)", ProviderOpenAI)
		}
		if c.Completion.BaseURL != "" {
			if u, err := url.Parse(c.Completion.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
				add("completion.base_url", "must be an absolute URL, got %q", c.Completion.BaseURL)
			}
		}
	default:
		add("completion.provider", "must be %q or %q, got %q", ProviderBackend, ProviderOpenAI, c.Completion.Provider)
	}
	if c.Completion.Temperature < 0 || c.Completion.Temperature > 2 {
		add("completion.temperature", "must be between 0 and 2, got %g", c.Completion.Temperature)
	}
	if c.Completion.MaxTokens < 0 {
		add("completion.max_tokens", "must not be negative, got %d", c.Completion.MaxTokens)
	}

	if !slices.Contains(kvstore.Backends, c.Storage.Backend) {
		add("storage.backend", "must be one of %s, got %q", strings.Join(kvstore.Backends, ", "), c.Storage.Backend)
	}

	if c.Quotes.RefreshIntervalSecs < 5 || c.Quotes.RefreshIntervalSecs > 3600 {
		add("quotes.refresh_interval_secs", "must be between 5 and 3600, got %d", c.Quotes.RefreshIntervalSecs)
	}
	if c.Quotes.MaxConcurrent < 1 || c.Quotes.MaxConcurrent > model.MaxFavorites {
		add("quotes.max_concurrent", "must be between 1 and %d, got %d", model.MaxFavorites, c.Quotes.MaxConcurrent)
	}
	if c.Quotes.FetchTimeoutSecs < 1 || c.Quotes.FetchTimeoutSecs > 300 {
		add("quotes.fetch_timeout_secs", "must be between 1 and 300, got %d", c.Quotes.FetchTimeoutSecs)
	}

	switch c.UI.Theme {
	case ThemeAuto, ThemeDark, ThemeLight:
	default:
		add("ui.theme", "must be auto, dark or light, got %q", c.UI.Theme)
	}
	if !model.ValidChartPeriod(c.UI.ChartPeriod) {
		add("ui.chart_period", "must be one of %s, got %q", strings.Join(model.ChartPeriods, ", "), c.UI.ChartPeriod)
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// =============================================================================
// GET/SET HELPERS (DOT NOTATION)
// =============================================================================

// Get retrieves a configuration value using dot notation (e.g., "quotes.max_concurrent").
func (c *Config) Get(key string) (any, error) {
	field, err := c.lookup(key)
	if err != nil {
		return nil, err
	}
	return field.Interface(), nil
}

// Set sets a configuration value using dot notation. String values are
// converted to the field's type. The result is not validated; call Validate.
func (c *Config) Set(key string, value any) error {
	field, err := c.lookup(key)
	if err != nil {
		return err
	}
	if !field.CanSet() {
		return fmt.Errorf("cannot set field: %s", key)
	}
	return setFieldValue(field, value)
}

func (c *Config) lookup(key string) (reflect.Value, error) {
	if key == "" {
		return reflect.Value{}, errors.New("empty key")
	}
	parts := strings.Split(key, ".")

	v := reflect.ValueOf(c).Elem()
	for i, part := range parts {
		fieldName := normalizeFieldName(part)
		field := v.FieldByNameFunc(func(name string) bool {
			return strings.EqualFold(name, fieldName)
		})
		if !field.IsValid() {
			return reflect.Value{}, fmt.Errorf("unknown field: %s", strings.Join(parts[:i+1], "."))
		}
		if i == len(parts)-1 {
			if field.Kind() == reflect.Struct {
				return reflect.Value{}, fmt.Errorf("field '%s' is a section, not a value", key)
			}
			return field, nil
		}
		if field.Kind() != reflect.Struct {
			return reflect.Value{}, fmt.Errorf("field '%s' is not a struct", strings.Join(parts[:i+1], "."))
		}
		v = field
	}
	return reflect.Value{}, fmt.Errorf("invalid key: %s", key)
}

// normalizeFieldName converts a snake_case or kebab-case name to its Go field equivalent.
func normalizeFieldName(name string) string {
	parts := strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-'
	})

	var result strings.Builder
	for _, part := range parts {
		result.WriteString(strings.ToUpper(part[:1]))
		result.WriteString(strings.ToLower(part[1:]))
	}
	return result.String()
}

// setFieldValue sets a reflect.Value from an arbitrary value with type conversion.
func setFieldValue(field reflect.Value, value any) error {
	if strVal, ok := value.(string); ok {
		switch field.Kind() {
		case reflect.String:
			field.SetString(strVal)
			return nil
		case reflect.Int, reflect.Int64:
			intVal, err := strconv.ParseInt(strVal, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer value: %w", err)
			}
			field.SetInt(intVal)
			return nil
		case reflect.Float64:
			floatVal, err := strconv.ParseFloat(strVal, 64)
			if err != nil {
				return fmt.Errorf("invalid float value: %w", err)
			}
			field.SetFloat(floatVal)
			return nil
		case reflect.Bool:
			boolVal, err := strconv.ParseBool(strVal)
			if err != nil {
				lower := strings.ToLower(strVal)
				if lower != "yes" && lower != "no" {
					return fmt.Errorf("invalid boolean value: %q", strVal)
				}
				boolVal = lower == "yes"
			}
			field.SetBool(boolVal)
			return nil
		}
	}

	val := reflect.ValueOf(value)
	if !val.IsValid() {
		return fmt.Errorf("cannot assign nil to %s", field.Type())
	}
	if val.Type().AssignableTo(field.Type()) {
		field.Set(val)
		return nil
	}
	if val.Type().ConvertibleTo(field.Type()) && val.Kind() != reflect.String {
		field.Set(val.Convert(field.Type()))
		return nil
	}
	return fmt.Errorf("cannot assign %T to %s", value, field.Type())
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// GetAllKeys returns all configuration keys in dot notation.
func GetAllKeys() []string {
	return []string{
		"version",
		"api.url",
		"api.timeout_secs",
		"api.max_retries",
		"api.requests_per_second",
		"api.verbose",
		"completion.provider",
		"completion.api_key",
		"completion.base_url",
		"completion.model",
		"completion.temperature",
		"completion.max_tokens",
		"storage.backend",
		"storage.data_dir",
		"quotes.refresh_interval_secs",
		"quotes.max_concurrent",
		"quotes.fetch_timeout_secs",
		"ui.theme",
		"ui.chart_period",
		"ui.render_markdown",
	}
}

// IsSecretKey reports whether key holds a credential.
func IsSecretKey(key string) bool {
	return key == "completion.api_key"
}

// Clone returns a copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// String returns a JSON representation with secrets redacted.
func (c *Config) String() string {
	safe := c.Clone()
	if safe.Completion.APIKey != "" {
		safe.Completion.APIKey = "[REDACTED]"
	}
	data, _ := json.MarshalIndent(safe, "", "  ")
	return string(data)
}
