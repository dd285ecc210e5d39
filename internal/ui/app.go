package ui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/roster/internal/prefs"
	"github.com/five82/roster/internal/query"
	"github.com/five82/roster/internal/source"
)

// Options configures the UI.
type Options struct {
	Query     *query.Query[source.UserPage]
	Prefs     prefs.Prefs
	PrefsPath string
	// PollInterval is used when the user turns polling on; zero means polling
	// is not configured.
	PollInterval time.Duration
	// SourceLabel is shown in the header, typically the endpoint URL.
	SourceLabel string
}

type usersState = query.State[source.UserPage]

// stateMsg carries a snapshot published by the query.
type stateMsg usersState

// queryClosedMsg reports that the query's subscription ended.
type queryClosedMsg struct{}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	query        *query.Query[source.UserPage]
	states       <-chan usersState
	unsubscribe  func()
	prefs        prefs.Prefs
	prefsPath    string
	pollInterval time.Duration
	sourceLabel  string

	// UI state
	keys     keyMap
	help     help.Model
	spinner  spinner.Model
	theme    Theme
	width    int
	height   int
	ready    bool
	showHelp bool
	notice   string

	// Data state
	snapshot usersState
	cursor   int
	offset   int
}

// New creates a model subscribed to opts.Query.
func New(opts Options) Model {
	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}
	themeName := opts.Prefs.Theme
	if themeName == "" {
		themeName = "Dracula"
	}

	states, unsubscribe := opts.Query.Subscribe(64)

	return Model{
		query:        opts.Query,
		states:       states,
		unsubscribe:  unsubscribe,
		prefs:        opts.Prefs,
		prefsPath:    prefsPath,
		pollInterval: opts.PollInterval,
		sourceLabel:  opts.SourceLabel,
		keys:         DefaultKeyMap(),
		help:         help.New(),
		spinner:      spinner.New(spinner.WithSpinner(spinner.Dot)),
		theme:        GetTheme(themeName),
		snapshot:     opts.Query.Snapshot(),
	}
}

// Run starts the TUI and blocks until the user quits or ctx is cancelled.
// The query is closed when the UI exits.
func Run(ctx context.Context, opts Options) error {
	defer opts.Query.Close()

	program := tea.NewProgram(New(opts), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := program.Run()
	if err != nil && errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	if err != nil {
		return fmt.Errorf("run ui: %w", err)
	}
	return nil
}

// waitForState blocks on the subscription for the next snapshot.
func waitForState(states <-chan usersState) tea.Cmd {
	return func() tea.Msg {
		st, ok := <-states
		if !ok {
			return queryClosedMsg{}
		}
		return stateMsg(st)
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(waitForState(m.states), m.spinner.Tick)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.ready = true
		m.clampCursor()
		return m, nil

	case stateMsg:
		m.snapshot = usersState(msg)
		m.clampCursor()
		return m, waitForState(m.states)

	case queryClosedMsg:
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		// Any key closes help
		m.showHelp = false
		return m, nil
	}
	m.notice = ""

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.unsubscribe()
		m.query.Close()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true

	case key.Matches(msg, m.keys.Refetch):
		m.query.Refetch()

	case key.Matches(msg, m.keys.FetchMore):
		switch {
		case !m.snapshot.HasResult:
			m.notice = "Nothing loaded yet"
		case !m.snapshot.Result.HasMore:
			m.notice = "No more users"
		default:
			m.query.FetchMore()
		}

	case key.Matches(msg, m.keys.TogglePoll):
		m.togglePolling()

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.prefs.Theme = m.theme.Name
		m.savePrefs()

	case key.Matches(msg, m.keys.Up):
		m.cursor--
		m.clampCursor()
	case key.Matches(msg, m.keys.Down):
		m.cursor++
		m.clampCursor()
	case key.Matches(msg, m.keys.Top):
		m.cursor = 0
		m.clampCursor()
	case key.Matches(msg, m.keys.Bottom):
		m.cursor = m.snapshot.Result.Len() - 1
		m.clampCursor()
	}

	return m, nil
}

// togglePolling flips the poll timer and remembers the choice.
func (m *Model) togglePolling() {
	if m.snapshot.PollActive {
		m.query.StopPolling()
		m.prefs.PollingPaused = true
		m.notice = "Polling paused"
		m.savePrefs()
		return
	}
	if m.pollInterval <= 0 {
		m.notice = "Polling is not configured (set poll_seconds)"
		return
	}
	m.query.StartPolling(m.pollInterval)
	m.prefs.PollingPaused = false
	m.notice = fmt.Sprintf("Polling every %s", m.pollInterval)
	m.savePrefs()
}

func (m *Model) savePrefs() {
	if m.prefsPath == "" {
		return
	}
	if err := prefs.Save(m.prefsPath, m.prefs); err != nil {
		slog.Warn("save prefs failed", "path", m.prefsPath, "error", err)
		m.notice = "Could not save preferences"
	}
}

// clampCursor keeps the cursor on a row and the row inside the window.
func (m *Model) clampCursor() {
	n := m.snapshot.Result.Len()
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}

	rows := m.listHeight()
	if rows <= 0 {
		m.offset = 0
		return
	}
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+rows {
		m.offset = m.cursor - rows + 1
	}
	if maxOffset := n - rows; m.offset > maxOffset {
		m.offset = max(maxOffset, 0)
	}
}
