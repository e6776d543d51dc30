// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// envOverrides lists the supported environment variables. Empty or zero
// values leave the config untouched.
type envOverrides struct {
	APIURL          string `env:"MARKYT_API_URL"`
	Verbose         bool   `env:"MARKYT_VERBOSE"`
	StorageBackend  string `env:"MARKYT_STORAGE_BACKEND"`
	DataDir         string `env:"MARKYT_DATA_DIR"`
	Provider        string `env:"MARKYT_COMPLETION_PROVIDER"`
	Theme           string `env:"MARKYT_THEME"`
	RefreshInterval int    `env:"MARKYT_REFRESH_INTERVAL_SECS"`
	OpenAIKey       string `env:"OPENAI_API_KEY"`
	OpenAIBaseURL   string `env:"OPENAI_BASE_URL"`
	OpenAIModel     string `env:"OPENAI_MODEL"`
}

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported environment variables:
//   - MARKYT_API_URL: overrides api.url
//   - MARKYT_VERBOSE: set to "1" or "true" to log HTTP requests
//   - MARKYT_STORAGE_BACKEND: overrides storage.backend
//   - MARKYT_DATA_DIR: overrides storage.data_dir
//   - MARKYT_COMPLETION_PROVIDER: overrides completion.provider
//   - MARKYT_THEME: overrides ui.theme
//   - MARKYT_REFRESH_INTERVAL_SECS: overrides quotes.refresh_interval_secs
//   - OPENAI_API_KEY, OPENAI_BASE_URL, OPENAI_MODEL: completion.api_key, base_url, model
func (c *Config) ApplyEnvOverrides() error {
	var o envOverrides
	if err := env.Parse(&o); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}

	setString := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	setString(&c.API.URL, o.APIURL)
	setString(&c.Storage.Backend, o.StorageBackend)
	setString(&c.Storage.DataDir, o.DataDir)
	setString(&c.Completion.Provider, o.Provider)
	setString(&c.UI.Theme, o.Theme)
	setString(&c.Completion.APIKey, o.OpenAIKey)
	setString(&c.Completion.BaseURL, o.OpenAIBaseURL)
	setString(&c.Completion.Model, o.OpenAIModel)
	if o.Verbose {
		c.API.Verbose = true
	}
	if o.RefreshInterval != 0 {
		c.Quotes.RefreshIntervalSecs = o.RefreshInterval
	}
	return nil
}

// LoadDotEnv loads KEY=value pairs from ./.env and <config dir>/.env into the
// process environment. Variables that are already set win; missing files are
// ignored.
func LoadDotEnv() {
	paths := []string{".env"}
	if dir, err := ConfigDir(); err == nil {
		paths = append(paths, filepath.Join(dir, ".env"))
	}
	for _, path := range paths {
		if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			log.Printf("WARNING: could not load %s: %v", path, err)
		}
	}
}
