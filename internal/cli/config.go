// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// config.go - The "config" command.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Rodrigoaguilar-sf/Markyt-AI-agent/internal/config"
)

const configUsage = "markyt config [show|get|set|keys|path] [key] [value]"

// HandleConfig handles the "config" command.
func HandleConfig(effective *config.Config, args Args) {
	path, err := config.ConfigPathTOML()
	if err == nil {
		err = RunConfig(os.Stdout, effective, path, args)
	}
	exitOnError(err, args.JSON)
}

// RunConfig runs a config subcommand. effective is the loaded configuration
// including environment overrides; set edits only the file at path.
func RunConfig(w io.Writer, effective *config.Config, path string, args Args) error {
	switch args.Subcommand {
	case "", "show":
		if args.JSON {
			return NewJSONResponse("config", redacted(effective)).Write(w)
		}
		fmt.Fprintln(w, TitleStyle.Render("Markyt configuration"))
		fmt.Fprintln(w, DimStyle.Render(path))
		fmt.Fprintln(w)
		for _, key := range config.GetAllKeys() {
			fmt.Fprintln(w, LabelStyle.Render(fmt.Sprintf("%-30s", key))+ValueStyle.Render(configValue(effective, key)))
		}
		return nil

	case "get":
		if args.ConfigKey == "" {
			return ErrMissingArgument("key", "markyt config get api.url")
		}
		if _, err := effective.Get(args.ConfigKey); err != nil {
			return &NotFoundError{Resource: "config key", ID: args.ConfigKey}
		}
		value := configValue(effective, args.ConfigKey)
		if args.JSON {
			return NewJSONResponse("config", map[string]string{args.ConfigKey: value}).Write(w)
		}
		fmt.Fprintln(w, value)
		return nil

	case "set":
		if args.ConfigKey == "" {
			return ErrMissingArgument("key", "markyt config set api.url http://localhost:8000")
		}
		return setConfig(w, path, args)

	case "keys":
		keys := config.GetAllKeys()
		if args.JSON {
			return NewJSONResponse("config", keys).Write(w)
		}
		fmt.Fprintln(w, strings.Join(keys, "\n"))
		return nil

	case "path":
		if args.JSON {
			return NewJSONResponse("config", map[string]string{"path": path}).Write(w)
		}
		fmt.Fprintln(w, path)
		return nil

	default:
		return &UsageError{
			Message: fmt.Sprintf("unknown config subcommand: %s", args.Subcommand),
			Usage:   configUsage,
		}
	}
}

// setConfig edits one key in the config file. Environment overrides are
// not applied, so they never leak into the file.
func setConfig(w io.Writer, path string, args Args) error {
	cfg := config.Default()
	if _, err := os.Stat(path); err == nil {
		if err := config.LoadTOML(cfg, path); err != nil {
			return err
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}

	if err := cfg.Set(args.ConfigKey, args.ConfigVal); err != nil {
		return &UsageError{Message: err.Error(), Usage: configUsage}
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := config.SaveTOML(cfg, path); err != nil {
		return err
	}

	if args.JSON {
		return NewJSONResponse("config", map[string]string{args.ConfigKey: configValue(cfg, args.ConfigKey)}).Write(w)
	}
	fmt.Fprintf(w, "%s %s = %s\n", SuccessStyle.Render("Set"), args.ConfigKey, configValue(cfg, args.ConfigKey))
	return nil
}

// configValue formats a key's value, hiding secrets.
func configValue(cfg *config.Config, key string) string {
	v, err := cfg.Get(key)
	if err != nil {
		return ""
	}
	s := fmt.Sprint(v)
	if config.IsSecretKey(key) && s != "" {
		return "[REDACTED]"
	}
	return s
}

func redacted(cfg *config.Config) *config.Config {
	safe := cfg.Clone()
	if safe.Completion.APIKey != "" {
		safe.Completion.APIKey = "[REDACTED]"
	}
	return safe
}
