package tui

import (
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/DrSkyle/cargoload/pkg/engine"
	"github.com/DrSkyle/cargoload/pkg/engine/tetris"
)

type ViewState int

const (
	ViewStateList ViewState = iota
	ViewStateDetail
	ViewStateLevels
	ViewStateHelp
)

// allLevels is the level filter value that shows every item.
const allLevels = -1

// Model is an interactive browser over one loading result.
type Model struct {
	// core components
	spinner  spinner.Model
	progress progress.Model
	Result   *engine.Result

	// state
	state    ViewState
	loading  bool
	quitting bool
	err      error
	run      func() (*engine.Result, error)
	width    int
	height   int

	// data
	levels []float64
	rows   []*tetris.Cylinder

	// navigation
	cursor      int
	levelCursor int
	// level indexes levels; allLevels shows everything, len(levels) only unloaded items.
	level int
}

type resultMsg struct {
	res *engine.Result
	err error
}

func newModel() Model {
	s := spinner.New()
	s.Spinner = spinner.Points
	s.Style = special

	return Model{
		spinner:  s,
		progress: progress.New(progress.WithGradient("#00FF99", "#00CCFF")),
		state:    ViewStateList,
		level:    allLevels,
	}
}

// NewModel browses a finished result.
func NewModel(res *engine.Result) Model {
	m := newModel()
	m.setResult(res)
	return m
}

// NewLoadingModel shows a spinner while run computes the result, then browses it.
func NewLoadingModel(run func() (*engine.Result, error)) Model {
	m := newModel()
	m.loading = true
	m.run = run
	return m
}

func (m Model) Init() tea.Cmd {
	if !m.loading {
		return nil
	}
	run := m.run
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		res, err := run()
		return resultMsg{res: res, err: err}
	})
}

// Err returns the error reported by the load, if any.
func (m Model) Err() error {
	return m.err
}

func (m *Model) setResult(res *engine.Result) {
	m.Result = res
	m.levels = res.Levels()
	m.refreshData()
}

// refreshData rebuilds the visible rows for the current level filter.
func (m *Model) refreshData() {
	if m.Result == nil {
		return
	}
	switch {
	case m.level == allLevels:
		m.rows = m.Result.Items
	case m.unloadedFilter():
		m.rows = m.Result.Unplaced()
	default:
		m.rows = m.Result.AtLevel(m.levels[m.level])
	}
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m Model) unloadedFilter() bool {
	return m.level == len(m.levels)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = msg.Width - 20
		if m.progress.Width > 60 {
			m.progress.Width = 60
		}
		if m.progress.Width < 10 {
			m.progress.Width = 10
		}
		return m, nil

	case resultMsg:
		m.loading = false
		m.err = msg.err
		if msg.res != nil {
			m.setResult(msg.res)
		}
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		return m, tea.Quit
	}
	if m.loading || m.Result == nil {
		return m, nil
	}

	switch msg.String() {
	case "up", "k":
		if m.state == ViewStateLevels {
			if m.levelCursor > 0 {
				m.levelCursor--
			}
		} else if m.cursor > 0 {
			m.cursor--
		}

	case "down", "j":
		if m.state == ViewStateLevels {
			if m.levelCursor < len(m.levels)-1 {
				m.levelCursor++
			}
		} else if m.cursor < len(m.rows)-1 {
			m.cursor++
		}

	case "l":
		// Cycle: all -> each level -> unloaded -> all.
		m.level++
		if m.level > len(m.levels) || (m.level == len(m.levels) && m.Result.UnplacedCount == 0) {
			m.level = allLevels
		}
		m.cursor = 0
		m.refreshData()

	case "enter":
		switch m.state {
		case ViewStateList:
			if len(m.rows) > 0 {
				m.state = ViewStateDetail
			}
		case ViewStateLevels:
			if len(m.levels) > 0 {
				m.level = m.levelCursor
				m.cursor = 0
				m.refreshData()
			}
			m.state = ViewStateList
		}

	case "esc", "b":
		m.state = ViewStateList

	case "v":
		if m.state == ViewStateLevels {
			m.state = ViewStateList
		} else {
			m.state = ViewStateLevels
		}

	case "?":
		if m.state == ViewStateHelp {
			m.state = ViewStateList
		} else {
			m.state = ViewStateHelp
		}
	}
	return m, nil
}
