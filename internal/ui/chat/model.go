// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	exchange "github.com/Rodrigoaguilar-sf/Markyt-AI-agent/internal/chat"
	"github.com/Rodrigoaguilar-sf/Markyt-AI-agent/internal/config"
	"github.com/Rodrigoaguilar-sf/Markyt-AI-agent/internal/kvstore"
	"github.com/Rodrigoaguilar-sf/Markyt-AI-agent/internal/model"
	"github.com/Rodrigoaguilar-sf/Markyt-AI-agent/internal/quotes"
	"github.com/Rodrigoaguilar-sf/Markyt-AI-agent/internal/storage"
	"github.com/Rodrigoaguilar-sf/Markyt-AI-agent/internal/ui/components"
	"github.com/Rodrigoaguilar-sf/Markyt-AI-agent/internal/ui/styles"
)

// How long transient texts stay on screen.
const (
	statusTimeout = 3 * time.Second
	noticeTimeout = 6 * time.Second
)

// ChartSource serves price history. *backend.Client implements it.
type ChartSource interface {
	Chart(ctx context.Context, symbol, period, interval string) (model.ChartSeries, error)
}

// Options wires the model to the domain layer. Prefs and Charts may be nil.
type Options struct {
	Config        *config.Config
	Conversations *storage.ConversationStore
	Favorites     *storage.FavoritesStore
	Exchange      *exchange.Exchange
	Scheduler     *quotes.Scheduler
	Charts        ChartSource

	// Prefs stores the theme picked in the UI under kvstore.KeyTheme.
	Prefs kvstore.Store

	// Context bounds sends, fetches and the scheduler ticker.
	Context context.Context
}

// =============================================================================
// MODEL
// =============================================================================

// Model is the Bubble Tea model for the whole TUI.
type Model struct {
	ctx       context.Context
	cfg       *config.Config
	convs     *storage.ConversationStore
	favorites *storage.FavoritesStore
	exchange  *exchange.Exchange
	scheduler *quotes.Scheduler
	charts    ChartSource
	prefs     kvstore.Store

	theme  *styles.Theme
	keys   KeyMap
	header *components.Header
	status *components.StatusBar

	page   components.Page
	width  int
	height int
	ready  bool

	// Chat page
	viewport  viewport.Model
	input     textinput.Model
	spinner   spinner.Model
	sending   bool
	notice    string
	noticeSeq int
	markdown  bool
	renderer  *glamour.TermRenderer
	rendered  map[string]string // assistant markdown cache, reset on resize/theme
	picking   bool
	pickIndex int

	// Favorites page
	favIndex     int
	adding       bool
	favInput     textinput.Model
	quoteStates  map[string]model.QuoteState
	quoteUpdates chan struct{}
	chartSymbol  string
	chartPeriod  string
	chartLoading bool
	chartErr     string
	chart        *model.ChartSeries

	statusSeq int
}

// New creates the TUI model. The theme stored in Prefs wins over the
// configured one.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}

	theme := styles.NewTheme(initialTheme(cfg, opts.Prefs))

	input := textinput.New()
	input.Placeholder = "Ask about a stock, e.g. How is AAPL doing?"
	input.Prompt = "> "
	input.CharLimit = 4000
	input.Focus()

	favInput := textinput.New()
	favInput.Placeholder = "Symbol or company name"
	favInput.Prompt = "Add: "
	favInput.CharLimit = 64

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))

	period := cfg.UI.ChartPeriod
	if !model.ValidChartPeriod(period) {
		period = model.DefaultChartPeriod
	}

	m := Model{
		ctx:          ctx,
		cfg:          cfg,
		convs:        opts.Conversations,
		favorites:    opts.Favorites,
		exchange:     opts.Exchange,
		scheduler:    opts.Scheduler,
		charts:       opts.Charts,
		prefs:        opts.Prefs,
		theme:        theme,
		keys:         DefaultKeyMap(),
		header:       components.NewHeader(theme),
		status:       components.NewStatusBar(theme),
		page:         components.PageChat,
		width:        80,
		height:       24,
		viewport:     viewport.New(80, 18),
		input:        input,
		spinner:      sp,
		markdown:     cfg.UI.RenderMarkdown,
		rendered:     make(map[string]string),
		favInput:     favInput,
		quoteStates:  make(map[string]model.QuoteState),
		quoteUpdates: make(chan struct{}, 1),
		chartPeriod:  period,
	}
	m.applyTheme()

	if m.scheduler != nil {
		updates := m.quoteUpdates
		m.scheduler.OnUpdate(func() {
			select {
			case updates <- struct{}{}:
			default:
			}
		})
		m.quoteStates = m.scheduler.Snapshot()
	}
	m.refreshChrome()
	m.syncTranscript(true)
	return m
}

func initialTheme(cfg *config.Config, prefs kvstore.Store) string {
	if prefs != nil {
		v, ok, err := prefs.Get(kvstore.KeyTheme)
		if err != nil {
			log.Printf("WARNING: failed to read theme: %v", err)
		}
		if ok && (v == styles.ThemeDark || v == styles.ThemeLight) {
			return v
		}
	}
	return cfg.UI.Theme
}

// =============================================================================
// BUBBLE TEA INTERFACE
// =============================================================================

// Init starts the text cursor and the quote listener.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.waitForQuotes())
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case SubmitResultMsg:
		return m.handleSubmitResult(msg)

	case QuotesUpdatedMsg:
		if m.scheduler != nil {
			m.quoteStates = m.scheduler.Snapshot()
		}
		return m, m.waitForQuotes()

	case ChartLoadedMsg:
		return m.handleChartLoaded(msg)

	case ConfigReloadedMsg:
		return m.handleConfigReloaded(msg)

	case spinner.TickMsg:
		if !m.sending && !m.chartLoading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		if m.sending {
			// Picks up the optimistic user message and animates the indicator.
			m.syncTranscript(false)
		}
		return m, cmd

	case clearStatusMsg:
		if msg.seq == m.statusSeq {
			m.status.SetMessage("")
		}
		return m, nil

	case clearNoticeMsg:
		if msg.seq == m.noticeSeq {
			m.notice = ""
		}
		return m, nil
	}

	return m.updateInputs(msg)
}

// View renders the current page.
func (m Model) View() string {
	if !m.ready {
		return "Loading markyt..."
	}
	return m.render()
}

// =============================================================================
// LAYOUT
// =============================================================================

func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	m.ready = true

	m.theme.SetSize(m.width, m.height)
	m.header.SetWidth(m.width)
	m.status.SetWidth(m.width)

	// Layout: header (1) + viewport + notice (1) + input container (2) + status bar (1)
	const reserved = 5
	m.viewport.Width = m.width
	m.viewport.Height = max(1, m.height-reserved)

	// Input container pads one cell each side. The textinput draws its
	// prompt, then Width cells, then the cursor.
	m.input.Width = max(10, m.width-2-len(m.input.Prompt)-2)
	m.favInput.Width = max(10, m.width-2-len(m.favInput.Prompt)-2)

	m.resetRenderer()
	m.syncTranscript(true)
	return m, nil
}

// applyTheme pushes the current theme into components and inputs.
func (m *Model) applyTheme() {
	m.header.SetTheme(m.theme)
	m.status.SetTheme(m.theme)
	m.input.PromptStyle = m.theme.InputPrompt
	m.favInput.PromptStyle = m.theme.InputPrompt
	m.spinner.Style = m.theme.Spinner
	m.resetRenderer()
}

// resetRenderer rebuilds the markdown renderer for the current width and
// theme and drops cached output.
func (m *Model) resetRenderer() {
	m.rendered = make(map[string]string)
	m.renderer = nil
	if !m.markdown {
		return
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(m.theme.GlamourStyle()),
		glamour.WithWordWrap(max(20, m.bubbleWidth()-4)),
	)
	if err != nil {
		log.Printf("WARNING: markdown renderer unavailable: %v", err)
		return
	}
	m.renderer = r
}

// bubbleWidth is the text width inside a message bubble.
func (m Model) bubbleWidth() int {
	// Bubbles have a border, one cell of padding per side and a 4 cell margin.
	return max(16, m.width-4-4)
}

// refreshChrome updates header and status bar for the current state.
func (m *Model) refreshChrome() {
	m.header.SetPage(m.page)
	if m.convs != nil {
		if c, ok := m.convs.Current(); ok {
			m.header.SetConversation(c.Title)
		}
	}
	if m.favorites != nil {
		m.header.SetFavorites(m.favorites.Count())
	}

	switch {
	case m.sending:
		m.status.SetStatus(components.StatusSending)
	case m.chartLoading:
		m.status.SetStatus(components.StatusLoading)
	case m.notice != "":
		m.status.SetStatus(components.StatusError)
	default:
		m.status.SetStatus(components.StatusReady)
	}

	k := m.keys
	switch {
	case m.page == components.PageChat && m.picking:
		m.status.SetShortcuts(shortcuts(k.Select, k.Delete, k.Back))
		m.status.SetRight("")
	case m.page == components.PageChat:
		m.status.SetShortcuts(shortcuts(k.NextPage, k.NewConversation, k.Conversations, k.ToggleTheme, k.Quit))
		m.status.SetRight("")
	case m.adding:
		m.status.SetShortcuts(shortcuts(k.Select, k.Back))
		m.status.SetRight("")
	case m.chartSymbol != "":
		m.status.SetShortcuts(shortcuts(k.Period, k.Refresh, k.Back))
		m.status.SetRight(m.chartPeriod)
	default:
		m.status.SetShortcuts(shortcuts(k.NextPage, k.Add, k.Delete, k.Refresh, k.RefreshAll, k.Select, k.Quit))
		if m.scheduler != nil {
			m.status.SetRight("refresh " + m.scheduler.Interval().String())
		}
	}
}

// =============================================================================
// KEY HANDLING
// =============================================================================

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		if m.scheduler != nil {
			m.scheduler.Stop()
		}
		return m, tea.Quit

	case key.Matches(msg, m.keys.NextPage):
		return m.switchPage()

	case key.Matches(msg, m.keys.ToggleTheme):
		return m.toggleTheme()
	}

	if m.page == components.PageFavorites {
		return m.handleFavoritesKey(msg)
	}
	if m.picking {
		return m.handlePickerKey(msg)
	}
	return m.handleChatKey(msg)
}

// switchPage flips between chat and favorites. The quote ticker runs only
// while favorites are on screen.
func (m Model) switchPage() (tea.Model, tea.Cmd) {
	if m.page == components.PageChat {
		m.page = components.PageFavorites
		m.picking = false
		m.input.Blur()
		if m.scheduler != nil {
			m.scheduler.Start(m.ctx)
		}
	} else {
		m.page = components.PageChat
		m.adding = false
		m.favInput.Blur()
		if m.scheduler != nil {
			m.scheduler.Stop()
		}
		m.input.Focus()
		m.syncTranscript(true)
	}
	m.refreshChrome()
	return m, nil
}

func (m Model) toggleTheme() (tea.Model, tea.Cmd) {
	m.theme = m.theme.Toggled()
	m.applyTheme()
	m.syncTranscript(false)
	if m.prefs != nil {
		if err := m.prefs.Set(kvstore.KeyTheme, m.theme.Name); err != nil {
			log.Printf("WARNING: failed to save theme: %v", err)
		}
	}
	return m.setStatus("Theme: " + m.theme.Name)
}

// setStatus shows a transient status bar message.
func (m Model) setStatus(text string) (Model, tea.Cmd) {
	m.statusSeq++
	m.status.SetMessage(text)
	seq := m.statusSeq
	return m, tea.Tick(statusTimeout, func(time.Time) tea.Msg {
		return clearStatusMsg{seq: seq}
	})
}

// updateInputs forwards anything unhandled to the focused input.
func (m Model) updateInputs(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch {
	case m.page == components.PageFavorites && m.adding:
		m.favInput, cmd = m.favInput.Update(msg)
	case m.page == components.PageChat && !m.picking:
		m.input, cmd = m.input.Update(msg)
	}
	return m, cmd
}

// =============================================================================
// CONFIG RELOAD
// =============================================================================

// handleConfigReloaded applies the settings that can change live: quote
// refresh interval, theme, default chart period and markdown rendering.
func (m Model) handleConfigReloaded(msg ConfigReloadedMsg) (tea.Model, tea.Cmd) {
	cfg := msg.Config
	if cfg == nil {
		return m, nil
	}
	old := m.cfg
	m.cfg = cfg

	if m.scheduler != nil {
		m.scheduler.SetInterval(cfg.RefreshInterval())
	}
	if model.ValidChartPeriod(cfg.UI.ChartPeriod) && cfg.UI.ChartPeriod != old.UI.ChartPeriod {
		m.chartPeriod = cfg.UI.ChartPeriod
	}
	if !strings.EqualFold(cfg.UI.Theme, old.UI.Theme) {
		m.theme = styles.NewTheme(cfg.UI.Theme)
		m.theme.SetSize(m.width, m.height)
		m.applyTheme()
	}
	if cfg.UI.RenderMarkdown != m.markdown {
		m.markdown = cfg.UI.RenderMarkdown
		m.resetRenderer()
	}

	m.syncTranscript(false)
	m.refreshChrome()
	return m.setStatus("Config reloaded")
}
