// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// history.go - Saved conversation management.
package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/Rodrigoaguilar-sf/Markyt-AI-agent/internal/config"
	"github.com/Rodrigoaguilar-sf/Markyt-AI-agent/internal/export"
	"github.com/Rodrigoaguilar-sf/Markyt-AI-agent/internal/model"
	"github.com/Rodrigoaguilar-sf/Markyt-AI-agent/internal/util"
)

const historyUsage = "markyt history [list|show|select|new|delete|clear|export] [n|id]"

// History handles "markyt history ...".
func (a *App) History(args Args) error {
	switch args.Subcommand {
	case "", "list", "ls":
		return a.historyList(args.All)
	case "show", "view":
		return a.historyShow(args.Query)
	case "select", "switch", "use":
		return a.historySelect(args.Query)
	case "new":
		id := a.Conversations.Create()
		if a.JSON {
			return a.printJSON("history", map[string]string{"id": id})
		}
		fmt.Fprintln(a.out(), SuccessStyle.Render("Started a new conversation"))
		return nil
	case "delete", "rm":
		return a.historyDelete(args.Query)
	case "clear":
		a.Conversations.Clear()
		if a.JSON {
			return a.printJSON("history", a.summaries())
		}
		fmt.Fprintln(a.out(), SuccessStyle.Render("All conversations deleted"))
		return nil
	case "export":
		return a.historyExport(args)
	default:
		return &UsageError{
			Message: fmt.Sprintf("unknown history subcommand: %s", args.Subcommand),
			Usage:   historyUsage,
		}
	}
}

// resolveConversation finds a conversation by 1-based list position or by
// ID prefix. An empty ref means the current conversation.
func (a *App) resolveConversation(ref string) (model.Conversation, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		if conv, ok := a.Conversations.Current(); ok {
			return conv, nil
		}
		return model.Conversation{}, &NotFoundError{Resource: "conversation", ID: "current"}
	}

	list := a.Conversations.List()
	if n, err := strconv.Atoi(ref); err == nil {
		if n >= 1 && n <= len(list) {
			return list[n-1], nil
		}
		return model.Conversation{}, &NotFoundError{Resource: "conversation", ID: ref}
	}

	var match []model.Conversation
	for _, c := range list {
		if c.ID == ref {
			return c, nil
		}
		if strings.HasPrefix(c.ID, ref) {
			match = append(match, c)
		}
	}
	switch len(match) {
	case 0:
		return model.Conversation{}, &NotFoundError{Resource: "conversation", ID: ref}
	case 1:
		return match[0], nil
	default:
		return model.Conversation{}, &UsageError{Message: fmt.Sprintf("ambiguous conversation id: %s", ref)}
	}
}

func (a *App) summaries() []ConversationSummary {
	current := a.Conversations.CurrentID()
	list := a.Conversations.List()
	out := make([]ConversationSummary, len(list))
	for i, c := range list {
		out[i] = ConversationSummary{
			Index:     i + 1,
			ID:        c.ID,
			Title:     c.Title,
			Messages:  len(c.Messages),
			Current:   c.ID == current,
			CreatedAt: c.CreatedAt,
			UpdatedAt: c.UpdatedAt,
		}
	}
	return out
}

func (a *App) historyList(full bool) error {
	rows := a.summaries()
	if a.JSON {
		return a.printJSON("history", rows)
	}

	titleWidth := 40
	if full {
		titleWidth = max(a.width()-30, 40)
	}
	t := newTable("", "#", "TITLE", "MSGS", "UPDATED").alignRight(1, 3)
	for _, r := range rows {
		marker := ""
		if r.Current {
			marker = "*"
		}
		updated := r.UpdatedAt
		if updated.IsZero() {
			updated = r.CreatedAt
		}
		t.addRow(marker, strconv.Itoa(r.Index), util.Ellipsize(r.Title, titleWidth),
			strconv.Itoa(r.Messages), formatAge(time.Since(updated)))
	}
	t.withStyle(func(row, col int, cell string) string {
		if col == 0 || (col == 2 && rows[row].Current) {
			return TitleStyle.Render(cell)
		}
		if col == 4 {
			return DimStyle.Render(cell)
		}
		return cell
	})
	t.render(a.out())
	return nil
}

func (a *App) historyShow(ref string) error {
	conv, err := a.resolveConversation(ref)
	if err != nil {
		return err
	}
	if a.JSON {
		return a.printJSON("history", conv)
	}
	a.printTranscript(a.out(), conv)
	return nil
}

func (a *App) printTranscript(w io.Writer, conv model.Conversation) {
	fmt.Fprintln(w, TitleStyle.Render(conv.Title))
	fmt.Fprintln(w, RenderSeparator(min(a.width(), 60)))
	if len(conv.Messages) == 0 {
		fmt.Fprintln(w, DimStyle.Render("No messages yet"))
		return
	}
	for _, m := range conv.Messages {
		if m.Role == model.RoleUser {
			fmt.Fprintln(w, UserStyle.Render(m.Role.DisplayName()+":")+" "+m.Content)
		} else {
			fmt.Fprintln(w, AssistantStyle.Render(m.Role.DisplayName()+":"))
			fmt.Fprintln(w, a.formatReply(m.Content))
		}
		fmt.Fprintln(w)
	}
}

func (a *App) historySelect(ref string) error {
	if ref == "" {
		return ErrMissingArgument("conversation", "markyt history select 2")
	}
	conv, err := a.resolveConversation(ref)
	if err != nil {
		return err
	}
	a.Conversations.Select(conv.ID)
	if a.JSON {
		return a.printJSON("history", map[string]string{"id": conv.ID})
	}
	fmt.Fprintln(a.out(), SuccessStyle.Render("Switched to: "+conv.Title))
	return nil
}

func (a *App) historyDelete(ref string) error {
	if ref == "" {
		return ErrMissingArgument("conversation", "markyt history delete 2")
	}
	conv, err := a.resolveConversation(ref)
	if err != nil {
		return err
	}
	a.Conversations.Delete(conv.ID)
	if a.JSON {
		return a.printJSON("history", a.summaries())
	}
	fmt.Fprintln(a.out(), SuccessStyle.Render("Deleted: "+conv.Title))
	return nil
}

func (a *App) historyExport(args Args) error {
	conv, err := a.resolveConversation(args.Query)
	if err != nil {
		return err
	}

	format := export.FormatForPath(args.Output)
	if args.Format != "" {
		if format, err = export.ParseFormat(args.Format); err != nil {
			return &UsageError{Message: err.Error(), Usage: historyUsage}
		}
	}
	opts := export.DefaultOptions()
	if a.Config != nil && a.Config.UI.Theme == config.ThemeLight {
		opts.Theme = "light"
	}
	exporter, err := export.New(format, opts)
	if err != nil {
		return err
	}

	if args.Output == "-" || (args.Output == "" && !a.JSON) {
		data, err := exporter.Export(conv)
		if err != nil {
			return fmt.Errorf("export conversation: %w", err)
		}
		_, err = a.out().Write(data)
		return err
	}

	output := args.Output
	if output == "" {
		output = export.DefaultFilename(conv, exporter)
	}
	if err := export.WriteFile(conv, exporter, output); err != nil {
		return fmt.Errorf("export conversation: %w", err)
	}
	if a.JSON {
		return a.printJSON("history", map[string]string{"id": conv.ID, "path": output, "format": string(format)})
	}
	fmt.Fprintln(a.out(), SuccessStyle.Render("Exported to "+output))
	return nil
}

// formatAge renders a coarse relative time: "just now", "5m ago", "3d ago".
func formatAge(d time.Duration) string {
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}
