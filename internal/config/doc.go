// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for Markyt.
//
// Supports both TOML and JSON configuration formats, with defaults,
// .env files, environment variable overrides, validation and live reload.
//
// Configuration file locations (in order of precedence):
//   - ~/.markyt/config.toml
//   - ~/.markyt/config.json
//   - Built-in defaults
//
// MARKYT_HOME moves the whole directory.
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//		log.Printf("WARNING: %v (using defaults)", err)
//	}
//
//	_ = cfg.Set("quotes.refresh_interval_secs", "30")
//	if err := cfg.Validate(); err == nil {
//		_ = config.Save(cfg)
//	}
package config
