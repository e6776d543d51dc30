// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"
	"time"

	"github.com/Rodrigoaguilar-sf/Markyt-AI-agent/internal/model"
)

// =============================================================================
// JSON EXPORTER
// =============================================================================

// JSONExporter writes the stored conversation record wrapped with export
// metadata. The "conversation" field decodes back into model.Conversation.
type JSONExporter struct {
	options *Options
}

type jsonDocument struct {
	Generator    string             `json:"generator"`
	ExportedAt   time.Time          `json:"exportedAt"`
	Conversation model.Conversation `json:"conversation"`
}

// NewJSONExporter creates a new JSON exporter.
func NewJSONExporter(opts *Options) *JSONExporter {
	return &JSONExporter{options: opts.normalize()}
}

// Export converts a conversation to indented JSON.
func (e *JSONExporter) Export(conv model.Conversation) ([]byte, error) {
	conv = conv.Clone()
	if conv.Messages == nil {
		conv.Messages = []model.Message{}
	}
	data, err := json.MarshalIndent(jsonDocument{
		Generator:    "markyt",
		ExportedAt:   e.options.Now().UTC(),
		Conversation: conv,
	}, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// FileExtension returns the file extension for JSON.
func (e *JSONExporter) FileExtension() string {
	return ".json"
}

// MimeType returns the MIME type for JSON.
func (e *JSONExporter) MimeType() string {
	return "application/json"
}
