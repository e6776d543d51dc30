// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// chat.go - Interactive line-edited chat session.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/peterh/liner"

	"github.com/Rodrigoaguilar-sf/Markyt-AI-agent/internal/chat"
	"github.com/Rodrigoaguilar-sf/Markyt-AI-agent/internal/config"
)

// =============================================================================
// LINE EDITOR
// =============================================================================

// ChatCLI wraps liner for prompt input with persistent history.
type ChatCLI struct {
	line        *liner.State
	historyFile string
}

// NewChatCLI creates a line editor with history loaded from the config
// directory and tab completion for slash commands.
func NewChatCLI() *ChatCLI {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)
	line.SetCompleter(completeSlash)

	historyFile := ""
	if dir, err := config.ConfigDir(); err == nil {
		historyFile = filepath.Join(dir, "chat_history")
	}

	c := &ChatCLI{line: line, historyFile: historyFile}
	c.LoadHistory()
	return c
}

// LoadHistory loads command history from file.
func (c *ChatCLI) LoadHistory() {
	if c.historyFile == "" {
		return
	}
	if f, err := os.Open(c.historyFile); err == nil {
		c.line.ReadHistory(f)
		f.Close()
	}
}

// ReadInput reads a line of input with the given prompt.
func (c *ChatCLI) ReadInput(prompt string) (string, error) {
	input, err := c.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		c.line.AppendHistory(input)
	}
	return input, nil
}

// SaveHistory persists command history, readable only by the owner.
func (c *ChatCLI) SaveHistory() {
	if c.historyFile == "" {
		return
	}
	if err := os.MkdirAll(filepath.Dir(c.historyFile), 0700); err != nil {
		return
	}
	f, err := os.OpenFile(c.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return
	}
	defer f.Close()
	c.line.WriteHistory(f)
}

// Close saves history and restores the terminal.
func (c *ChatCLI) Close() {
	c.SaveHistory()
	c.line.Close()
}

// =============================================================================
// SLASH COMMANDS
// =============================================================================

var slashHelp = map[string]string{
	"/help":   "Show this help",
	"/new":    "Start a new conversation",
	"/list":   "List conversations",
	"/switch": "Switch conversation: /switch <n>",
	"/delete": "Delete a conversation: /delete [n]",
	"/clear":  "Delete every conversation",
	"/show":   "Print the current transcript",
	"/export": "Write the transcript as Markdown: /export <file>",
	"/fav":    "Toggle a favorite: /fav <symbol>",
	"/favs":   "List favorites",
	"/quote":  "Show quotes: /quote [symbols...]",
	"/quit":   "Leave the chat",
}

func slashCommands() []string {
	cmds := make([]string, 0, len(slashHelp))
	for k := range slashHelp {
		cmds = append(cmds, k)
	}
	sort.Strings(cmds)
	return cmds
}

func completeSlash(line string) []string {
	if !strings.HasPrefix(line, "/") || strings.Contains(line, " ") {
		return nil
	}
	var out []string
	for _, c := range slashCommands() {
		if strings.HasPrefix(c, line) {
			out = append(out, c)
		}
	}
	return out
}

// errQuit ends the chat loop.
var errQuit = errors.New("quit")

// Slash runs one slash command line. It returns errQuit for /quit.
func (a *App) Slash(ctx context.Context, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	cmd, rest := strings.ToLower(fields[0]), fields[1:]
	arg := strings.Join(rest, " ")

	switch cmd {
	case "/quit", "/exit", "/q":
		return errQuit
	case "/help", "/?":
		w := a.out()
		for _, c := range slashCommands() {
			fmt.Fprintf(w, "  %s %s\n", TitleStyle.Render(fmt.Sprintf("%-8s", c)), DimStyle.Render(slashHelp[c]))
		}
		return nil
	case "/new":
		return a.History(Args{Subcommand: "new"})
	case "/list", "/history":
		return a.History(Args{Subcommand: "list"})
	case "/switch":
		return a.History(Args{Subcommand: "select", Query: arg})
	case "/delete":
		if arg == "" {
			arg = a.Conversations.CurrentID()
		}
		return a.History(Args{Subcommand: "delete", Query: arg})
	case "/clear":
		return a.History(Args{Subcommand: "clear"})
	case "/show":
		return a.History(Args{Subcommand: "show"})
	case "/export":
		if arg == "" {
			return ErrMissingArgument("file", "/export notes.md")
		}
		return a.History(Args{Subcommand: "export", Output: arg})
	case "/fav":
		return a.Fav(ctx, Args{Subcommand: "toggle", Symbols: rest})
	case "/favs":
		return a.Fav(ctx, Args{Subcommand: "ls"})
	case "/quote":
		return a.Quote(ctx, Args{Symbols: rest})
	default:
		return &UsageError{Message: "unknown command " + cmd + " (try /help)"}
	}
}

// =============================================================================
// SESSION
// =============================================================================

// Chat runs the interactive session until /quit, Ctrl-C or EOF.
func (a *App) Chat(ctx context.Context) error {
	if !IsTTY() {
		return a.chatLines(ctx, os.Stdin)
	}

	in := NewChatCLI()
	defer in.Close()

	a.printWelcome()
	for {
		input, err := in.ReadInput(UserStyle.Render("you") + " > ")
		if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
			fmt.Fprintln(a.out())
			return nil
		}
		if err != nil {
			return err
		}
		if quit := a.handleLine(ctx, input); quit {
			return nil
		}
	}
}

// chatLines reads one message per line from r, for piped input.
func (a *App) chatLines(ctx context.Context, r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	for _, line := range strings.Split(string(data), "\n") {
		if quit := a.handleLine(ctx, line); quit {
			break
		}
	}
	return nil
}

// handleLine processes one line of input and reports whether to stop.
func (a *App) handleLine(ctx context.Context, input string) bool {
	input = strings.TrimSpace(input)
	if input == "" {
		return false
	}

	if strings.HasPrefix(input, "/") {
		err := a.Slash(ctx, input)
		if errors.Is(err, errQuit) {
			return true
		}
		if err != nil {
			fmt.Fprintln(a.errOut(), ErrorStyle.Render("Error: ")+err.Error())
		}
		return false
	}

	fmt.Fprintln(a.out(), DimStyle.Render("thinking..."))
	reply, err := a.submit(ctx, input)
	if err != nil {
		if errors.Is(err, chat.ErrExchangeFailed) {
			fmt.Fprintln(a.errOut(), WarningStyle.Render(chat.FailureNotice))
		} else {
			fmt.Fprintln(a.errOut(), ErrorStyle.Render("Error: ")+err.Error())
		}
		return false
	}
	fmt.Fprintln(a.out(), AssistantStyle.Render("markyt")+" >")
	fmt.Fprintln(a.out(), a.formatReply(reply))
	fmt.Fprintln(a.out())
	return false
}

func (a *App) printWelcome() {
	w := a.out()
	fmt.Fprintln(w, TitleStyle.Render("Markyt chat"))
	if conv, ok := a.Conversations.Current(); ok {
		fmt.Fprintln(w, DimStyle.Render("Conversation: "+conv.Title))
	}
	if favs := a.Favorites.Symbols(); len(favs) > 0 {
		fmt.Fprintln(w, DimStyle.Render("Favorites: "+strings.Join(favs, " ")))
	}
	fmt.Fprintln(w, DimStyle.Render("Type /help for commands, Ctrl-C to leave."))
	fmt.Fprintln(w)
}

