// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides command-line parsing and the non-interactive markyt
// commands.
//
// # Usage
//
//	cmd, args := cli.Parse()
//	switch cmd {
//	case cli.CmdTUI:
//	    // start the terminal UI
//	case cli.CmdConfig:
//	    cli.HandleConfig(cfg, args)
//	default:
//	    err := app.Run(ctx, cmd, args)
//	}
//
// # Commands
//
//   - ask: one question in the current conversation
//   - chat: line-edited session with slash commands (/new, /fav, /quote ...)
//   - fav: add, remove, toggle and list favorite symbols
//   - quote: quotes for symbols or for every favorite
//   - chart: sparkline and summary of a symbol's price history
//   - history: list, show, select, delete and export conversations
//   - config: show and edit the configuration file
//
// Every command accepts --json and then prints a JSONResponse envelope.
package cli
