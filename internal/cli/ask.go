// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// ask.go - One-shot questions.
package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Rodrigoaguilar-sf/Markyt-AI-agent/internal/chat"
	"github.com/Rodrigoaguilar-sf/Markyt-AI-agent/internal/model"
)

// Ask sends args.Query in the current conversation and prints the reply.
func (a *App) Ask(ctx context.Context, args Args) error {
	question := strings.TrimSpace(args.Query)
	if question == "" {
		return ErrMissingArgument("question", `markyt ask "How is Apple doing?"`)
	}
	if args.NewConv {
		a.Conversations.Create()
	}

	reply, err := a.submit(ctx, question)
	if err != nil {
		return err
	}

	if a.JSON {
		return a.printJSON("ask", AskData{
			ConversationID: a.Conversations.CurrentID(),
			Question:       question,
			Response:       reply,
		})
	}
	fmt.Fprintln(a.out(), a.formatReply(reply))
	return nil
}

// submit runs one exchange turn and returns the assistant's reply.
func (a *App) submit(ctx context.Context, text string) (string, error) {
	if err := a.Exchange.Submit(ctx, text); err != nil {
		if errors.Is(err, chat.ErrExchangeFailed) {
			notice := a.Exchange.Notice()
			a.Exchange.ClearNotice()
			return "", fmt.Errorf("%s (%w)", notice, err)
		}
		return "", err
	}

	conv, ok := a.Conversations.Current()
	if !ok || len(conv.Messages) == 0 {
		return "", chat.ErrNoConversation
	}
	last := conv.Messages[len(conv.Messages)-1]
	if last.Role != model.RoleAssistant {
		return "", nil
	}
	return last.Content, nil
}

func (a *App) formatReply(reply string) string {
	if a.Markdown {
		return renderMarkdown(reply, a.width())
	}
	return reply
}
