// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/Rodrigoaguilar-sf/Markyt-AI-agent/internal/config"
	"github.com/Rodrigoaguilar-sf/Markyt-AI-agent/internal/model"
)

// =============================================================================
// EXCHANGE MESSAGES
// =============================================================================

// SubmitResultMsg reports the end of a send. Text is what the user typed,
// so a failed send can put it back in the input.
type SubmitResultMsg struct {
	Text string
	Err  error
}

// =============================================================================
// QUOTE MESSAGES
// =============================================================================

// QuotesUpdatedMsg is sent after the scheduler changed any quote state.
type QuotesUpdatedMsg struct{}

// ChartLoadedMsg carries a fetched price history.
type ChartLoadedMsg struct {
	Symbol string
	Period string
	Series model.ChartSeries
	Err    error
}

// =============================================================================
// CONFIG MESSAGES
// =============================================================================

// ConfigReloadedMsg is sent by the config watcher after the file changed.
type ConfigReloadedMsg struct {
	Config *config.Config
}

// =============================================================================
// TRANSIENT UI MESSAGES
// =============================================================================

// clearStatusMsg expires a status bar message. seq guards against clearing
// a newer message.
type clearStatusMsg struct {
	seq int
}

// clearNoticeMsg expires the chat failure notice.
type clearNoticeMsg struct {
	seq int
}
