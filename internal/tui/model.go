package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Iron-Ham/prtasks/internal/clipboard"
	"github.com/Iron-Ham/prtasks/internal/errors"
	"github.com/Iron-Ham/prtasks/internal/extract"
	"github.com/Iron-Ham/prtasks/internal/logging"
	"github.com/Iron-Ham/prtasks/internal/page"
	"github.com/Iron-Ham/prtasks/internal/tui/msg"
	"github.com/Iron-Ham/prtasks/internal/tui/styles"
)

// DefaultCopyFeedback is how long the copy label shows its confirmation.
const DefaultCopyFeedback = 2 * time.Second

// chromeHeight is the number of rows taken by everything except the task list.
const chromeHeight = 9

// State is the presenter's display state.
type State int

const (
	StateLoading State = iota
	StateError
	StateEmpty
	StatePopulated
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateError:
		return "error"
	case StateEmpty:
		return "empty"
	case StatePopulated:
		return "populated"
	default:
		return "unknown"
	}
}

// Options configures a Model.
type Options struct {
	// Context bounds every request the model issues. Defaults to Background.
	Context context.Context
	// Requester answers getTasks for Tab.
	Requester msg.TaskRequester
	Tab       page.Tab
	Clipboard clipboard.Writer
	// CopyFeedback defaults to DefaultCopyFeedback.
	CopyFeedback time.Duration
	Logger       *logging.Logger
}

// Model holds the TUI application state
type Model struct {
	ctx          context.Context
	requester    msg.TaskRequester
	tab          page.Tab
	clipboard    clipboard.Writer
	copyFeedback time.Duration
	logger       *logging.Logger

	state  State
	result extract.Result
	err    error

	// requestSeq identifies the latest request; older replies are dropped.
	requestSeq int

	// copySeq identifies the latest copy so only its reset restores the label.
	copySeq    int
	copied     bool
	copyFailed bool

	spinner  spinner.Model
	viewport viewport.Model
	help     help.Model
	keys     keyMap

	width    int
	height   int
	ready    bool
	quitting bool
}

// NewModel creates a new TUI model in the Loading state.
func NewModel(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	feedback := opts.CopyFeedback
	if feedback <= 0 {
		feedback = DefaultCopyFeedback
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NopLogger()
	}

	keys := defaultKeyMap()
	keys.Copy.SetEnabled(false)

	return Model{
		ctx:          ctx,
		requester:    opts.Requester,
		tab:          opts.Tab,
		clipboard:    opts.Clipboard,
		copyFeedback: feedback,
		logger:       logger.With("tab", opts.Tab.ID),
		state:        StateLoading,
		result:       extract.EmptyResult(),
		requestSeq:   1,
		spinner: spinner.New(
			spinner.WithSpinner(spinner.Dot),
			spinner.WithStyle(styles.Primary),
		),
		help: help.New(),
		keys: keys,
	}
}

// State returns the current display state.
func (m Model) State() State {
	return m.state
}

// Result returns the last successful result.
func (m Model) Result() extract.Result {
	return m.result
}

// Err returns the error behind the Error state.
func (m Model) Err() error {
	return m.err
}

// Init starts the spinner and issues the first request.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.request())
}

func (m Model) request() tea.Cmd {
	return msg.RequestTasks(m.ctx, m.requester, m.tab, m.requestSeq)
}

// Update handles messages and updates the model
func (m Model) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch message := message.(type) {
	case tea.KeyMsg:
		return m.handleKeypress(message)

	case tea.WindowSizeMsg:
		m.width = message.Width
		m.height = message.Height
		m.help.Width = message.Width
		m.resize()
		return m, nil

	case msg.TasksMsg:
		return m.handleTasks(message), nil

	case msg.CopiedMsg:
		m.copySeq++
		if message.Err != nil {
			m.logger.Warn("copy failed", "error", message.Err.Error())
			m.copied, m.copyFailed = false, true
		} else {
			m.copied, m.copyFailed = true, false
		}
		return m, msg.ResetCopyAfter(m.copyFeedback, m.copySeq)

	case msg.CopyResetMsg:
		if message.Seq == m.copySeq {
			m.copied, m.copyFailed = false, false
		}
		return m, nil

	case spinner.TickMsg:
		if m.state != StateLoading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(message)
		return m, cmd
	}

	return m, nil
}

func (m Model) handleKeypress(k tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(k, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(k, m.keys.Refresh):
		return m.refresh()

	case key.Matches(k, m.keys.Copy):
		if m.state != StatePopulated {
			return m, nil
		}
		return m, msg.CopyIDs(m.clipboard, m.result.TaskIDs)

	case key.Matches(k, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.resize()
		return m, nil
	}

	if m.ready && m.state == StatePopulated {
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(k)
		return m, cmd
	}
	return m, nil
}

// refresh moves to Loading and re-issues the request from any state.
func (m Model) refresh() (tea.Model, tea.Cmd) {
	wasLoading := m.state == StateLoading
	m.requestSeq++
	m.state = StateLoading
	m.err = nil
	m.copied, m.copyFailed = false, false
	m.keys.Copy.SetEnabled(false)
	m.logger.Debug("refresh requested", "seq", m.requestSeq)

	if wasLoading {
		return m, m.request()
	}
	return m, tea.Batch(m.spinner.Tick, m.request())
}

func (m Model) handleTasks(message msg.TasksMsg) Model {
	if message.Seq != m.requestSeq {
		m.logger.Debug("dropping stale reply", "seq", message.Seq, "latest", m.requestSeq)
		return m
	}

	switch {
	case message.Err != nil:
		m.state = StateError
		m.err = message.Err
		m.result = extract.EmptyResult()
		m.logger.Warn("task request failed",
			"error", message.Err.Error(),
			"severity", errors.GetSeverity(message.Err).String(),
		)
	case len(message.Result.TaskIDs) == 0:
		m.state = StateEmpty
		m.result = message.Result
	default:
		m.state = StatePopulated
		m.result = message.Result
		m.logger.Info("tasks loaded", "count", len(message.Result.TaskIDs))
	}

	m.keys.Copy.SetEnabled(m.state == StatePopulated)
	m.viewport.SetContent(m.taskRows())
	m.viewport.GotoTop()
	return m
}

// resize fits the task viewport between the header and the help bar.
func (m *Model) resize() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	listHeight := m.height - chromeHeight
	if m.help.ShowAll {
		listHeight -= 2
	}
	if listHeight < 1 {
		listHeight = 1
	}

	if !m.ready {
		m.viewport = viewport.New(m.width, listHeight)
		m.viewport.SetContent(m.taskRows())
		m.ready = true
		return
	}
	m.viewport.Width = m.width
	m.viewport.Height = listHeight
}
