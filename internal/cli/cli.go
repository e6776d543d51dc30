// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - CLI parsing for markyt.
package cli

import (
	"fmt"
	"os"
	"strings"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdAsk
	CmdChat
	CmdFav
	CmdQuote
	CmdChart
	CmdHistory
	CmdConfig
	CmdVersion
	CmdHelp
)

// String returns the command's name as typed on the command line.
func (c Command) String() string {
	switch c {
	case CmdTUI:
		return "tui"
	case CmdAsk:
		return "ask"
	case CmdChat:
		return "chat"
	case CmdFav:
		return "fav"
	case CmdQuote:
		return "quote"
	case CmdChart:
		return "chart"
	case CmdHistory:
		return "history"
	case CmdConfig:
		return "config"
	case CmdVersion:
		return "version"
	case CmdHelp:
		return "help"
	default:
		return "unknown"
	}
}

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	Verbose   bool
	JSON      bool   // Output in JSON format
	Ephemeral bool   // Use the in-memory store; nothing is persisted
	Backend   string // Storage backend override
	Theme     string // TUI theme override
	APIURL    string // Backend URL override

	// Command-specific
	Query      string
	Subcommand string
	Symbols    []string
	Period     string
	Interval   string
	ConfigKey  string
	ConfigVal  string
	Output     string // Export destination
	Format     string // Export format: markdown, json, html
	NewConv    bool   // ask --new: start a fresh conversation first
	All        bool   // history list --all: show full previews

	// Raw args (remaining after flag parsing)
	Raw []string
}

const usageText = `markyt - chat about markets and watch your favorite tickers

USAGE:
  markyt [flags] [command] [args]

COMMANDS:
  (none), tui                  Start the interactive terminal UI
  ask <question>               Ask one question in the current conversation
  chat                         Line-edited chat session in the terminal
  fav [ls|add|rm|toggle|clear] Manage favorite symbols (max 20)
  quote [symbols...]           Show quotes (defaults to your favorites)
  chart <symbol>               Price history as a sparkline
  history [list|show|select|new|delete|clear|export]
                               Manage saved conversations
  config [show|get|set|keys|path]
                               View or change configuration
  version                      Show version information
  help                         Show this help

GLOBAL FLAGS:
  -v, --verbose                Log HTTP requests to stderr
  --json                       Machine-readable output
  --ephemeral                  Keep everything in memory for this run
  --backend <name>             Storage backend: file, bolt, sqlite, memory
  --theme <name>               TUI theme: auto, dark, light
  --api-url <url>              Markyt backend URL

COMMAND FLAGS:
  ask --new                    Start a new conversation before asking
  chart -p, --period <p>       1mo, 3mo, 6mo, 1y, 5y (default from config)
  chart -i, --interval <i>     Bar interval (default 1d)
  history export <n> -o <file> Export a conversation; format from the extension
  history export -f <format>   markdown, json or html

EXAMPLES:
  markyt ask "How did Apple do this quarter?"
  markyt fav add tesla
  markyt quote AAPL MSFT
  markyt chart nvda --period 1y
  markyt history show 2
  markyt config set quotes.refresh_interval_secs 30

Version: %s
`

// PrintUsage prints the usage/help text.
func PrintUsage() {
	fmt.Printf(usageText, Version)
}

// PrintVersion prints version information.
func PrintVersion() {
	fmt.Printf("markyt version %s\n", Version)
	fmt.Printf("  Git commit: %s\n", GitCommit)
	fmt.Printf("  Build date: %s\n", BuildDate)
}

// Parse parses os.Args and returns the command and args.
func Parse() (Command, Args) {
	return ParseArgs(os.Args[1:])
}

// ParseArgs parses args (without the program name).
func ParseArgs(args []string) (Command, Args) {
	remaining, parsedArgs := parseGlobalFlags(args)

	// If no remaining args, default to TUI
	if len(remaining) == 0 {
		return CmdTUI, parsedArgs
	}

	first := remaining[0]
	cmd := strings.ToLower(first)
	remaining = remaining[1:]
	parsedArgs.Raw = remaining

	switch cmd {
	case "tui":
		return CmdTUI, parsedArgs

	case "ask", "a":
		parseAskArgs(&parsedArgs, remaining)
		return CmdAsk, parsedArgs

	case "chat":
		return CmdChat, parsedArgs

	case "fav", "favs", "favorites":
		parseFavArgs(&parsedArgs, remaining)
		return CmdFav, parsedArgs

	case "quote", "quotes", "q":
		parsedArgs.Symbols = positional(remaining)
		return CmdQuote, parsedArgs

	case "chart":
		parseChartArgs(&parsedArgs, remaining)
		return CmdChart, parsedArgs

	case "history", "hist", "conversations":
		parseHistoryArgs(&parsedArgs, remaining)
		return CmdHistory, parsedArgs

	case "config":
		parseConfigArgs(&parsedArgs, remaining)
		return CmdConfig, parsedArgs

	case "version", "--version":
		return CmdVersion, parsedArgs

	case "help", "-h", "--help":
		return CmdHelp, parsedArgs

	default:
		// Anything else is treated as a question
		parsedArgs.Raw = append([]string{first}, remaining...)
		parseAskArgs(&parsedArgs, parsedArgs.Raw)
		return CmdAsk, parsedArgs
	}
}

// parseGlobalFlags extracts global flags from args and returns remaining args.
func parseGlobalFlags(args []string) ([]string, Args) {
	var remaining []string
	var parsedArgs Args

	i := 0
	for i < len(args) {
		arg := args[i]

		switch arg {
		case "-v", "--verbose":
			parsedArgs.Verbose = true
		case "--json":
			parsedArgs.JSON = true
		case "--ephemeral":
			parsedArgs.Ephemeral = true
		case "--backend":
			if i+1 < len(args) {
				i++
				parsedArgs.Backend = args[i]
			}
		case "--theme":
			if i+1 < len(args) {
				i++
				parsedArgs.Theme = args[i]
			}
		case "--api-url":
			if i+1 < len(args) {
				i++
				parsedArgs.APIURL = args[i]
			}
		default:
			switch {
			case strings.HasPrefix(arg, "--backend="):
				parsedArgs.Backend = strings.TrimPrefix(arg, "--backend=")
			case strings.HasPrefix(arg, "--theme="):
				parsedArgs.Theme = strings.TrimPrefix(arg, "--theme=")
			case strings.HasPrefix(arg, "--api-url="):
				parsedArgs.APIURL = strings.TrimPrefix(arg, "--api-url=")
			default:
				remaining = append(remaining, arg)
			}
		}
		i++
	}

	return remaining, parsedArgs
}

// parseAskArgs parses ask command specific arguments.
func parseAskArgs(args *Args, remaining []string) {
	var query []string
	for _, arg := range remaining {
		switch arg {
		case "-n", "--new":
			args.NewConv = true
		default:
			query = append(query, arg)
		}
	}
	args.Query = strings.Join(query, " ")
}

// parseFavArgs parses fav command specific arguments.
func parseFavArgs(args *Args, remaining []string) {
	if len(remaining) == 0 {
		args.Subcommand = "ls"
		return
	}
	args.Subcommand = strings.ToLower(remaining[0])
	args.Symbols = positional(remaining[1:])
}

// parseChartArgs parses chart command specific arguments.
func parseChartArgs(args *Args, remaining []string) {
	var rest []string
	for i := 0; i < len(remaining); i++ {
		arg := remaining[i]
		switch arg {
		case "-p", "--period":
			if i+1 < len(remaining) {
				i++
				args.Period = remaining[i]
			}
		case "-i", "--interval":
			if i+1 < len(remaining) {
				i++
				args.Interval = remaining[i]
			}
		default:
			switch {
			case strings.HasPrefix(arg, "--period="):
				args.Period = strings.TrimPrefix(arg, "--period=")
			case strings.HasPrefix(arg, "--interval="):
				args.Interval = strings.TrimPrefix(arg, "--interval=")
			default:
				rest = append(rest, arg)
			}
		}
	}
	args.Symbols = positional(rest)
}

// parseHistoryArgs parses history command specific arguments.
func parseHistoryArgs(args *Args, remaining []string) {
	args.Subcommand = "list"
	var rest []string
	for i := 0; i < len(remaining); i++ {
		arg := remaining[i]
		switch arg {
		case "-o", "--output":
			if i+1 < len(remaining) {
				i++
				args.Output = remaining[i]
			}
		case "-f", "--format":
			if i+1 < len(remaining) {
				i++
				args.Format = remaining[i]
			}
		case "-a", "--all":
			args.All = true
		default:
			switch {
			case strings.HasPrefix(arg, "--output="):
				args.Output = strings.TrimPrefix(arg, "--output=")
			case strings.HasPrefix(arg, "--format="):
				args.Format = strings.TrimPrefix(arg, "--format=")
			default:
				rest = append(rest, arg)
			}
		}
	}
	if len(rest) > 0 {
		args.Subcommand = strings.ToLower(rest[0])
		rest = rest[1:]
	}
	if len(rest) > 0 {
		args.Query = rest[0]
	}
}

// parseConfigArgs parses config command specific arguments.
func parseConfigArgs(args *Args, remaining []string) {
	args.Subcommand = "show"
	if len(remaining) > 0 {
		args.Subcommand = strings.ToLower(remaining[0])
		if len(remaining) > 1 {
			args.ConfigKey = remaining[1]
		}
		if len(remaining) > 2 {
			args.ConfigVal = strings.Join(remaining[2:], " ")
		}
	}
}

// positional returns the arguments that are not flags.
func positional(args []string) []string {
	var out []string
	for _, a := range args {
		if a == "" || strings.HasPrefix(a, "-") {
			continue
		}
		out = append(out, a)
	}
	return out
}
