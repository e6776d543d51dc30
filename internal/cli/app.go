// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// app.go - Shared state for markyt commands and the dispatch entry point.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/Rodrigoaguilar-sf/Markyt-AI-agent/internal/backend"
	"github.com/Rodrigoaguilar-sf/Markyt-AI-agent/internal/chat"
	"github.com/Rodrigoaguilar-sf/Markyt-AI-agent/internal/config"
	"github.com/Rodrigoaguilar-sf/Markyt-AI-agent/internal/model"
	"github.com/Rodrigoaguilar-sf/Markyt-AI-agent/internal/storage"
)

// Market serves quotes and charts. *backend.Client implements it.
type Market interface {
	Quotes(ctx context.Context, symbols []string) []backend.QuoteResult
	Chart(ctx context.Context, symbol, period, interval string) (model.ChartSeries, error)
}

var _ Market = (*backend.Client)(nil)

// App holds everything a command needs. main wires it once per run.
type App struct {
	Config        *config.Config
	Conversations *storage.ConversationStore
	Favorites     *storage.FavoritesStore
	Exchange      *chat.Exchange
	Market        Market

	// Out and ErrOut default to os.Stdout and os.Stderr.
	Out    io.Writer
	ErrOut io.Writer

	// Markdown renders assistant replies with glamour.
	Markdown bool
	// Width is the output width; zero detects the terminal.
	Width int
	// JSON switches every command to JSON output.
	JSON bool
}

func (a *App) out() io.Writer {
	if a.Out == nil {
		return os.Stdout
	}
	return a.Out
}

func (a *App) errOut() io.Writer {
	if a.ErrOut == nil {
		return os.Stderr
	}
	return a.ErrOut
}

func (a *App) width() int {
	if a.Width > 0 {
		return a.Width
	}
	return GetTerminalWidth()
}

func (a *App) printJSON(command string, data any) error {
	return NewJSONResponse(command, data).Write(a.out())
}

// Run executes a non-interactive command.
func (a *App) Run(ctx context.Context, cmd Command, args Args) error {
	switch cmd {
	case CmdAsk:
		return a.Ask(ctx, args)
	case CmdChat:
		return a.Chat(ctx)
	case CmdFav:
		return a.Fav(ctx, args)
	case CmdQuote:
		return a.Quote(ctx, args)
	case CmdChart:
		return a.Chart(ctx, args)
	case CmdHistory:
		return a.History(args)
	default:
		return &UsageError{Message: fmt.Sprintf("%s is not a command", cmd)}
	}
}

// HandleVersion handles the "version" command.
func HandleVersion(args Args) {
	if args.JSON {
		NewJSONResponse("version", VersionData{
			Version:   Version,
			GitCommit: GitCommit,
			BuildDate: BuildDate,
			GoVersion: runtime.Version(),
		}).Write(os.Stdout)
		return
	}
	PrintVersion()
}

// HandleHelp handles the "help" command.
func HandleHelp() {
	PrintUsage()
}
