// markyt - Chat about markets and watch your favorite tickers from the terminal.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Rodrigoaguilar-sf/Markyt-AI-agent/internal/backend"
	"github.com/Rodrigoaguilar-sf/Markyt-AI-agent/internal/chat"
	"github.com/Rodrigoaguilar-sf/Markyt-AI-agent/internal/cli"
	"github.com/Rodrigoaguilar-sf/Markyt-AI-agent/internal/config"
	"github.com/Rodrigoaguilar-sf/Markyt-AI-agent/internal/kvstore"
	"github.com/Rodrigoaguilar-sf/Markyt-AI-agent/internal/llm"
	"github.com/Rodrigoaguilar-sf/Markyt-AI-agent/internal/quotes"
	"github.com/Rodrigoaguilar-sf/Markyt-AI-agent/internal/storage"
	uichat "github.com/Rodrigoaguilar-sf/Markyt-AI-agent/internal/ui/chat"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Global program reference for messages sent from outside the update loop.
var (
	programRef *tea.Program
	programMu  sync.Mutex
)

func init() {
	// Sync version info with cli package
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	cmd, args := cli.Parse()

	switch cmd {
	case cli.CmdVersion:
		cli.HandleVersion(args)
		return
	case cli.CmdHelp:
		cli.HandleHelp()
		return
	}

	cfg, err := config.Load()
	if err != nil {
		if cfg == nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(cli.ExitConfigError)
		}
		// A file that fails to decode still leaves usable defaults.
		log.Printf("WARNING: %v; using defaults", err)
	}
	applyArgs(cfg, args)

	if cmd == cli.CmdConfig {
		cli.HandleConfig(cfg, args)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, err := newApp(cfg, args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(cli.ExitConfigError)
	}
	defer deps.close()

	if cmd == cli.CmdTUI {
		if err := runTUI(ctx, deps); err != nil {
			fmt.Fprintf(os.Stderr, "Error running markyt: %v\n", err)
			deps.close()
			os.Exit(1)
		}
		return
	}

	cliApp := &cli.App{
		Config:        cfg,
		Conversations: deps.convs,
		Favorites:     deps.favorites,
		Exchange:      deps.exchange,
		Market:        deps.client,
		Markdown:      cfg.UI.RenderMarkdown,
		JSON:          args.JSON,
	}
	if err := cliApp.Run(ctx, cmd, args); err != nil {
		// os.Exit skips deferred calls.
		deps.close()
		w := os.Stderr
		if args.JSON {
			w = os.Stdout
		}
		cli.DisplayError(w, err, args.JSON)
		os.Exit(cli.GetExitCode(err))
	}
}

// applyArgs lets global flags override the loaded configuration.
func applyArgs(cfg *config.Config, args cli.Args) {
	if args.Backend != "" {
		cfg.Storage.Backend = args.Backend
	}
	if args.Theme != "" {
		cfg.UI.Theme = args.Theme
	}
	if args.APIURL != "" {
		cfg.API.URL = args.APIURL
	}
	if args.Verbose {
		cfg.API.Verbose = true
	}
}

// =============================================================================
// WIRING
// =============================================================================

// app holds the long-lived pieces shared by the TUI and the commands.
type app struct {
	cfg       *config.Config
	args      cli.Args
	dataDir   string
	kv        kvstore.Store
	convs     *storage.ConversationStore
	favorites *storage.FavoritesStore
	client    *backend.Client
	exchange  *chat.Exchange
	scheduler *quotes.Scheduler

	closeOnce sync.Once
}

func newApp(cfg *config.Config, args cli.Args) (*app, error) {
	dataDir, err := cfg.DataDir()
	if err != nil {
		return nil, fmt.Errorf("resolve data dir: %w", err)
	}

	var kv kvstore.Store
	if args.Ephemeral {
		kv = kvstore.NewMemoryStore()
	} else {
		if err := os.MkdirAll(dataDir, 0o700); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
		kv, err = kvstore.Open(cfg.Storage.Backend, dataDir)
		if err != nil {
			return nil, fmt.Errorf("open %s store: %w", cfg.Storage.Backend, err)
		}
	}

	a, err := newAppWithStore(cfg, args, dataDir, kv)
	if err != nil {
		kv.Close()
		return nil, err
	}
	return a, nil
}

// newAppWithStore builds the stores and clients on top of an open kv. It
// starts no background work.
func newAppWithStore(cfg *config.Config, args cli.Args, dataDir string, kv kvstore.Store) (*app, error) {
	a := &app{
		cfg:       cfg,
		args:      args,
		dataDir:   dataDir,
		kv:        kv,
		convs:     storage.NewConversationStore(kv),
		favorites: storage.NewFavoritesStore(kv),
		client:    backend.NewClientWithConfig(clientConfig(cfg)),
	}

	completer, err := newCompleter(cfg, a.client)
	if err != nil {
		return nil, err
	}
	a.exchange = chat.NewExchange(a.convs, completer)
	return a, nil
}

// watchQuotes builds the quote scheduler and keeps it in step with the
// favorites. Only the TUI shows quotes, so commands never call it.
func (a *app) watchQuotes() *quotes.Scheduler {
	if a.scheduler != nil {
		return a.scheduler
	}
	a.scheduler = quotes.NewScheduler(a.client, quotes.Config{
		Interval:      a.cfg.RefreshInterval(),
		MaxConcurrent: a.cfg.Quotes.MaxConcurrent,
		FetchTimeout:  a.cfg.FetchTimeout(),
	})
	a.favorites.OnChange(a.scheduler.Sync)
	a.scheduler.Sync(a.favorites.Symbols())
	return a.scheduler
}

// clientConfig maps the api section onto the backend client. A configured
// zero means no retries, which the client spells as a negative count.
func clientConfig(cfg *config.Config) *backend.ClientConfig {
	maxRetries := cfg.API.MaxRetries
	if maxRetries == 0 {
		maxRetries = -1
	}
	return &backend.ClientConfig{
		BaseURL:           cfg.API.URL,
		Timeout:           cfg.APITimeout(),
		MaxRetries:        maxRetries,
		RequestsPerSecond: cfg.API.RequestsPerSecond,
		Verbose:           cfg.API.Verbose,
	}
}

// newCompleter picks who answers chat messages: the Markyt backend, or an
// OpenAI-compatible endpoint called directly.
func newCompleter(cfg *config.Config, client *backend.Client) (chat.Completer, error) {
	if cfg.Completion.Provider != config.ProviderOpenAI {
		return client, nil
	}
	provider, err := llm.NewProvider(llm.Config{
		APIKey:      cfg.Completion.APIKey,
		BaseURL:     cfg.Completion.BaseURL,
		Model:       cfg.Completion.Model,
		Temperature: float32(cfg.Completion.Temperature),
		MaxTokens:   cfg.Completion.MaxTokens,
		Timeout:     cfg.APITimeout(),
	})
	if err != nil {
		return nil, fmt.Errorf("completion provider %q: %w", cfg.Completion.Provider, err)
	}
	return provider, nil
}

func (a *app) close() {
	a.closeOnce.Do(func() {
		if a.scheduler != nil {
			a.scheduler.Close()
		}
		if err := a.kv.Close(); err != nil {
			log.Printf("WARNING: close store: %v", err)
		}
	})
}

// =============================================================================
// TUI
// =============================================================================

func runTUI(ctx context.Context, a *app) error {
	// The alternate screen owns the terminal; route log output to a file.
	if !a.args.Ephemeral && os.MkdirAll(a.dataDir, 0o700) == nil {
		if restore, err := logToFile(filepath.Join(a.dataDir, "markyt.log")); err == nil {
			defer restore()
		}
	}

	m := uichat.New(uichat.Options{
		Config:        a.cfg,
		Conversations: a.convs,
		Favorites:     a.favorites,
		Exchange:      a.exchange,
		Scheduler:     a.watchQuotes(),
		Charts:        a.client,
		Prefs:         a.kv,
		Context:       ctx,
	})

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	programMu.Lock()
	programRef = p
	programMu.Unlock()

	if path, err := config.ConfigPathTOML(); err == nil {
		w, err := config.Watch(path, func(c *config.Config) {
			applyArgs(c, a.args)
			programMu.Lock()
			p := programRef
			programMu.Unlock()
			if p != nil {
				p.Send(uichat.ConfigReloadedMsg{Config: c})
			}
		})
		if err != nil {
			log.Printf("WARNING: config watcher disabled: %v", err)
		} else {
			defer w.Close()
		}
	}

	_, err := p.Run()

	programMu.Lock()
	programRef = nil
	programMu.Unlock()

	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

// logToFile sends log output to path for as long as the TUI runs. restore
// points the log back at stderr before closing the file, so warnings logged
// during shutdown are not lost.
func logToFile(path string) (restore func(), err error) {
	f, err := tea.LogToFile(path, "markyt")
	if err != nil {
		return nil, err
	}
	return func() {
		log.SetOutput(os.Stderr)
		log.SetPrefix("")
		f.Close()
	}, nil
}
