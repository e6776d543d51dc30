// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"bytes"
	"html/template"
	"strings"

	"github.com/Rodrigoaguilar-sf/Markyt-AI-agent/internal/model"
)

// =============================================================================
// HTML EXPORTER
// =============================================================================

// HTMLExporter exports conversations to a standalone HTML page with
// embedded CSS. Message text is escaped and shown with its line breaks.
type HTMLExporter struct {
	options *Options
}

// NewHTMLExporter creates a new HTML exporter.
func NewHTMLExporter(opts *Options) *HTMLExporter {
	return &HTMLExporter{options: opts.normalize()}
}

type htmlMessage struct {
	Class   string
	Label   string
	Content string
}

type htmlPage struct {
	Title    string
	Theme    string
	Created  string
	Exported string
	Count    int
	Metadata bool
	Messages []htmlMessage
}

// Export converts a conversation to HTML.
func (e *HTMLExporter) Export(conv model.Conversation) ([]byte, error) {
	page := htmlPage{
		Title:    conv.Title,
		Theme:    e.options.Theme,
		Created:  formatTimestamp(conv.CreatedAt),
		Exported: formatTimestamp(e.options.Now()),
		Count:    len(conv.Messages),
		Metadata: e.options.IncludeMetadata,
	}
	for _, msg := range conv.Messages {
		class := "assistant"
		if msg.Role == model.RoleUser {
			class = "user"
		}
		page.Messages = append(page.Messages, htmlMessage{
			Class:   class,
			Label:   msg.Role.DisplayName(),
			Content: strings.TrimSpace(msg.Content),
		})
	}

	var buf bytes.Buffer
	if err := htmlTemplate.Execute(&buf, page); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// FileExtension returns the file extension for HTML.
func (e *HTMLExporter) FileExtension() string {
	return ".html"
}

// MimeType returns the MIME type for HTML.
func (e *HTMLExporter) MimeType() string {
	return "text/html"
}

var htmlTemplate = template.Must(template.New("conversation").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<meta name="generator" content="markyt">
<title>{{.Title}}</title>
<style>
body { font-family: -apple-system, "Segoe UI", Roboto, sans-serif; margin: 0; line-height: 1.5; }
body.dark-theme { background: #1e1e2e; color: #e4e4e7; }
body.light-theme { background: #fafafa; color: #18181b; }
.container { max-width: 820px; margin: 0 auto; padding: 2rem 1rem; }
.meta { font-size: 0.85rem; opacity: 0.7; }
.message { border-radius: 10px; padding: 0.75rem 1rem; margin: 1rem 0; }
.message .label { font-weight: 600; font-size: 0.85rem; margin-bottom: 0.25rem; }
.message .content { white-space: pre-wrap; word-wrap: break-word; }
.dark-theme .user { background: #3b2f5c; margin-left: 15%; }
.dark-theme .assistant { background: #27303f; margin-right: 15%; }
.light-theme .user { background: #ede9fe; margin-left: 15%; }
.light-theme .assistant { background: #e0f2fe; margin-right: 15%; }
footer { margin-top: 2rem; font-size: 0.8rem; opacity: 0.6; }
</style>
</head>
<body class="{{.Theme}}-theme">
<div class="container">
<header>
<h1>{{.Title}}</h1>
{{- if .Metadata}}
<p class="meta">Created {{.Created}} &middot; {{.Count}} messages</p>
{{- end}}
</header>
<main>
{{- range .Messages}}
<div class="message {{.Class}}">
<div class="label">{{.Label}}</div>
<div class="content">{{.Content}}</div>
</div>
{{- end}}
</main>
{{- if .Metadata}}
<footer>Exported from markyt on {{.Exported}}</footer>
{{- end}}
</div>
</body>
</html>
`))
