// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rodrigoaguilar-sf/Markyt-AI-agent/internal/kvstore"
)

var envKeys = []string{
	"MARKYT_API_URL",
	"MARKYT_VERBOSE",
	"MARKYT_STORAGE_BACKEND",
	"MARKYT_DATA_DIR",
	"MARKYT_COMPLETION_PROVIDER",
	"MARKYT_THEME",
	"MARKYT_REFRESH_INTERVAL_SECS",
	"OPENAI_API_KEY",
	"OPENAI_BASE_URL",
	"OPENAI_MODEL",
}

// isolate points MARKYT_HOME at a temp dir and removes every override
// variable for the duration of the test.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("MARKYT_HOME", home)
	for _, key := range envKeys {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	return home
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
}

// =============================================================================
// DEFAULTS AND LOADING
// =============================================================================

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	if cfg.Storage.Backend != kvstore.BackendFile {
		t.Errorf("Storage.Backend = %q, want %q", cfg.Storage.Backend, kvstore.BackendFile)
	}
	assert.Equal(t, 60*time.Second, cfg.RefreshInterval())
	assert.Equal(t, 60*time.Second, cfg.APITimeout())
	assert.Equal(t, 30*time.Second, cfg.FetchTimeout())
}

func TestLoad_NoFile(t *testing.T) {
	home := isolate(t)

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, Default().API.URL, cfg.API.URL)
	dir, err := cfg.DataDir()
	require.NoError(t, err)
	assert.Equal(t, home, dir)
}

func TestLoad_PartialTOML(t *testing.T) {
	home := isolate(t)
	writeFile(t, filepath.Join(home, "config.toml"), `
[api]
url = "https://markyt.example.com/"

[quotes]
refresh_interval_secs = 30
`)

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "https://markyt.example.com", cfg.API.URL)
	assert.Equal(t, 30, cfg.Quotes.RefreshIntervalSecs)
	assert.Equal(t, Default().Quotes.MaxConcurrent, cfg.Quotes.MaxConcurrent)
	assert.Equal(t, ThemeAuto, cfg.UI.Theme)
	assert.True(t, cfg.UI.RenderMarkdown)
}

func TestLoad_JSONFallback(t *testing.T) {
	home := isolate(t)
	writeFile(t, filepath.Join(home, "config.json"), `{"ui": {"theme": "light"}}`)

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, ThemeLight, cfg.UI.Theme)
}

func TestLoad_BrokenFileFallsBackToDefaults(t *testing.T) {
	home := isolate(t)
	writeFile(t, filepath.Join(home, "config.toml"), "[api\nurl = ")

	cfg, err := Load()

	require.Error(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, Default().API.URL, cfg.API.URL)
}

func TestLoad_InvalidValues(t *testing.T) {
	home := isolate(t)
	writeFile(t, filepath.Join(home, "config.toml"), `
[ui]
theme = "neon"

[storage]
backend = "floppy"
`)

	cfg, err := Load()

	require.Error(t, err)
	assert.Nil(t, cfg)
	var verrs ValidateErrors
	require.True(t, errors.As(err, &verrs))
	assert.Len(t, verrs, 2)
	assert.Contains(t, err.Error(), "ui.theme")
	assert.Contains(t, err.Error(), "storage.backend")
}

// =============================================================================
// ENVIRONMENT
// =============================================================================

func TestApplyEnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("MARKYT_API_URL", "http://api.internal:9000")
	t.Setenv("MARKYT_STORAGE_BACKEND", "sqlite")
	t.Setenv("MARKYT_COMPLETION_PROVIDER", "openai")
	t.Setenv("OPENAI_API_KEY", "sk-env")
	t.Setenv("OPENAI_MODEL", "llama-3.3-70b-versatile")
	t.Setenv("MARKYT_REFRESH_INTERVAL_SECS", "15")
	t.Setenv("MARKYT_VERBOSE", "true")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "http://api.internal:9000", cfg.API.URL)
	assert.Equal(t, kvstore.BackendSQLite, cfg.Storage.Backend)
	assert.Equal(t, ProviderOpenAI, cfg.Completion.Provider)
	assert.Equal(t, "sk-env", cfg.Completion.APIKey)
	assert.Equal(t, "llama-3.3-70b-versatile", cfg.Completion.Model)
	assert.Equal(t, 15, cfg.Quotes.RefreshIntervalSecs)
	assert.True(t, cfg.API.Verbose)
}

func TestApplyEnvOverrides_BadNumber(t *testing.T) {
	isolate(t)
	t.Setenv("MARKYT_REFRESH_INTERVAL_SECS", "soon")

	cfg := Default()
	assert.Error(t, cfg.ApplyEnvOverrides())
}

func TestLoad_DotEnv(t *testing.T) {
	home := isolate(t)
	writeFile(t, filepath.Join(home, ".env"), "MARKYT_THEME=dark\n")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, ThemeDark, cfg.UI.Theme)
}

func TestLoad_OpenAIRequiresKey(t *testing.T) {
	isolate(t)
	t.Setenv("MARKYT_COMPLETION_PROVIDER", "openai")

	_, err := Load()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "completion.api_key")
}

// =============================================================================
// SAVE
// =============================================================================

func TestSave_RoundTrip(t *testing.T) {
	home := isolate(t)
	cfg := Default()
	cfg.API.URL = "https://saved.example.com"
	cfg.Quotes.MaxConcurrent = 8

	require.NoError(t, Save(cfg))

	path := filepath.Join(home, "config.toml")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "# Markyt configuration file"))

	if runtime.GOOS != "windows" {
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
	}

	loaded, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestSaveJSON_RoundTrip(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "nested", "config.json")
	cfg := Default()
	cfg.UI.ChartPeriod = "1y"

	require.NoError(t, SaveJSON(cfg, path))
	loaded, err := LoadFromPath(path)

	require.NoError(t, err)
	assert.Equal(t, "1y", loaded.UI.ChartPeriod)
}

// =============================================================================
// VALIDATION
// =============================================================================

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"relative url", func(c *Config) { c.API.URL = "localhost:8000" }, "api.url"},
		{"ftp url", func(c *Config) { c.API.URL = "ftp://x" }, "api.url"},
		{"zero timeout", func(c *Config) { c.API.TimeoutSecs = 0 }, "api.timeout_secs"},
		{"negative retries", func(c *Config) { c.API.MaxRetries = -1 }, "api.max_retries"},
		{"unknown provider", func(c *Config) { c.Completion.Provider = "magic" }, "completion.provider"},
		{"hot temperature", func(c *Config) { c.Completion.Temperature = 3 }, "completion.temperature"},
		{"fast refresh", func(c *Config) { c.Quotes.RefreshIntervalSecs = 1 }, "quotes.refresh_interval_secs"},
		{"no concurrency", func(c *Config) { c.Quotes.MaxConcurrent = 0 }, "quotes.max_concurrent"},
		{"bad period", func(c *Config) { c.UI.ChartPeriod = "2w" }, "ui.chart_period"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()

			var verrs ValidateErrors
			require.True(t, errors.As(err, &verrs), "got %v", err)
			require.Len(t, verrs, 1)
			if verrs[0].Field != tt.field {
				t.Errorf("Field = %q, want %q", verrs[0].Field, tt.field)
			}
		})
	}
}

// =============================================================================
// GET / SET
// =============================================================================

func TestConfig_GetSet(t *testing.T) {
	cfg := Default()

	require.NoError(t, cfg.Set("quotes.refresh_interval_secs", "30"))
	v, err := cfg.Get("quotes.refresh_interval_secs")
	require.NoError(t, err)
	assert.Equal(t, 30, v)

	require.NoError(t, cfg.Set("ui.render-markdown", "no"))
	assert.False(t, cfg.UI.RenderMarkdown)

	require.NoError(t, cfg.Set("api.requests_per_second", "2.5"))
	assert.Equal(t, 2.5, cfg.API.RequestsPerSecond)

	require.NoError(t, cfg.Set("completion.max_tokens", 512))
	assert.Equal(t, 512, cfg.Completion.MaxTokens)

	require.NoError(t, cfg.Set("api.url", "http://other:1"))
	assert.Equal(t, "http://other:1", cfg.API.URL)
}

func TestConfig_SetErrors(t *testing.T) {
	cfg := Default()

	assert.ErrorContains(t, cfg.Set("nope", "1"), "unknown field")
	assert.ErrorContains(t, cfg.Set("api.nope", "1"), "unknown field: api.nope")
	assert.ErrorContains(t, cfg.Set("ui", "dark"), "section")
	assert.ErrorContains(t, cfg.Set("version.x", "1"), "not a struct")
	assert.Error(t, cfg.Set("quotes.max_concurrent", "many"))
	assert.Error(t, cfg.Set("api.verbose", "maybe"))
	assert.Error(t, cfg.Set("", "x"))
}

func TestGetAllKeys_Resolve(t *testing.T) {
	cfg := Default()
	for _, key := range GetAllKeys() {
		_, err := cfg.Get(key)
		assert.NoError(t, err, key)
	}
}

func TestConfig_StringRedactsKey(t *testing.T) {
	cfg := Default()
	cfg.Completion.APIKey = "sk-secret"

	s := cfg.String()

	assert.NotContains(t, s, "sk-secret")
	assert.Contains(t, s, "[REDACTED]")
	assert.Equal(t, "sk-secret", cfg.Completion.APIKey, "original untouched")
	assert.True(t, IsSecretKey("completion.api_key"))
}

func TestConfig_DataDirExpandsHome(t *testing.T) {
	cfg := Default()
	cfg.Storage.DataDir = "~/markyt-data"

	dir, err := cfg.DataDir()

	require.NoError(t, err)
	home, _ := os.UserHomeDir()
	assert.Equal(t, filepath.Join(home, "markyt-data"), dir)
}

// =============================================================================
// WATCHER
// =============================================================================

func TestWatch_ReloadsOnChange(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	writeFile(t, path, "[ui]\ntheme = \"dark\"\n")

	changes := make(chan *Config, 4)
	w, err := WatchWithDebounce(path, 10*time.Millisecond, func(cfg *Config) {
		changes <- cfg
	})
	require.NoError(t, err)
	defer w.Close()

	writeFile(t, path, "[ui]\ntheme = \"light\"\n")

	select {
	case cfg := <-changes:
		assert.Equal(t, ThemeLight, cfg.UI.Theme)
	case <-time.After(3 * time.Second):
		t.Fatal("no reload after config change")
	}
}

func TestWatch_SkipsInvalidFile(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	writeFile(t, path, "")

	changes := make(chan *Config, 4)
	w, err := WatchWithDebounce(path, 10*time.Millisecond, func(cfg *Config) {
		changes <- cfg
	})
	require.NoError(t, err)
	defer w.Close()

	writeFile(t, filepath.Join(dir, "other.toml"), "x = 1")
	writeFile(t, path, "[ui]\ntheme = \"neon\"\n")

	select {
	case cfg := <-changes:
		t.Fatalf("unexpected reload: %+v", cfg.UI)
	case <-time.After(200 * time.Millisecond):
	}
	assert.NoError(t, w.Close())
	assert.NoError(t, w.Close(), "Close is idempotent")
}
