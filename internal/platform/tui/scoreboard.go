package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/threefind/internal/registry"
	"github.com/vovakirdan/threefind/internal/storage"
)

const maxSessions = 100

// sessionView selects which sessions the scoreboard lists.
type sessionView int

const (
	viewBest sessionView = iota
	viewRecent
)

func (v sessionView) String() string {
	if v == viewRecent {
		return "RECENT GAMES"
	}
	return "HIGH SCORES"
}

// ScoreboardKeyMap defines the key bindings for the scoreboard.
type ScoreboardKeyMap struct {
	Up       key.Binding
	Down     key.Binding
	NextMode key.Binding
	PrevMode key.Binding
	View     key.Binding
	Back     key.Binding
	Quit     key.Binding
}

func (k ScoreboardKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.NextMode, k.View, k.Back}
}

func (k ScoreboardKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.NextMode, k.PrevMode},
		{k.View, k.Back, k.Quit},
	}
}

// DefaultScoreboardKeyMap returns default key bindings.
func DefaultScoreboardKeyMap() ScoreboardKeyMap {
	return ScoreboardKeyMap{
		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("up/k", "scroll up")),
		Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("down/j", "scroll down")),
		NextMode: key.NewBinding(key.WithKeys("tab", "right", "l"), key.WithHelp("tab", "next mode")),
		PrevMode: key.NewBinding(key.WithKeys("shift+tab", "left", "h"), key.WithHelp("S-tab", "prev mode")),
		View:     key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "best/recent")),
		Back:     key.NewBinding(key.WithKeys("esc", "b"), key.WithHelp("esc/b", "back")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ScoreboardModel lists stored game sessions per mode.
type ScoreboardModel struct {
	modes     []registry.GameInfo
	mode      int
	view      sessionView
	store     *storage.Store
	sessions  []storage.SessionRecord
	loadErr   error
	table     table.Model
	help      help.Model
	keys      ScoreboardKeyMap
	width     int
	height    int
	quitting  bool
	goingBack bool
}

// NewScoreboardModel creates a scoreboard showing the best sessions of the
// first registered mode.
func NewScoreboardModel(store *storage.Store, width, height int) ScoreboardModel {
	m := ScoreboardModel{
		modes:  registry.List(),
		store:  store,
		keys:   DefaultScoreboardKeyMap(),
		help:   help.New(),
		width:  width,
		height: height,
	}
	m.table = m.createTable()
	m.reload()
	return m
}

func (m *ScoreboardModel) createTable() table.Model {
	// Rank is replaced by the time of day in the recent view
	first := table.Column{Title: "Rank", Width: 5}
	if m.view == viewRecent {
		first = table.Column{Title: "Time", Width: 5}
	}
	columns := []table.Column{
		first,
		{Title: "Score", Width: 8},
		{Title: "Lv", Width: 3},
		{Title: "Moves", Width: 6},
		{Title: "Chain", Width: 6},
		{Title: "Date", Width: 12},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(max(m.height-10, 3)), // Title, tabs, detail and help
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return t
}

func (m *ScoreboardModel) currentMode() string {
	if len(m.modes) == 0 {
		return ""
	}
	return m.modes[m.mode].ID
}

// reload fetches the sessions for the current mode and view.
func (m *ScoreboardModel) reload() {
	m.sessions, m.loadErr = nil, nil
	if m.store != nil && len(m.modes) > 0 {
		if m.view == viewRecent {
			m.sessions, m.loadErr = m.store.RecentSessions(m.currentMode(), maxSessions)
		} else {
			m.sessions, m.loadErr = m.store.TopSessions(m.currentMode(), maxSessions)
		}
	}

	rows := make([]table.Row, len(m.sessions))
	for i, s := range m.sessions {
		first := fmt.Sprintf("#%d", i+1)
		if m.view == viewRecent {
			first = s.CreatedAt.Format("15:04")
		}
		level := "-"
		if s.Level > 0 {
			level = fmt.Sprintf("%d", s.Level)
		}
		rows[i] = table.Row{
			first,
			fmt.Sprintf("%d", s.Score),
			level,
			fmt.Sprintf("%d", s.Moves),
			fmt.Sprintf("x%d", s.MaxCascade),
			s.CreatedAt.Format("Jan 02 2006"),
		}
	}
	m.table.SetRows(rows)
	m.table.GotoTop()
}

// Selected returns the session under the table cursor.
func (m ScoreboardModel) Selected() (storage.SessionRecord, bool) {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.sessions) {
		return storage.SessionRecord{}, false
	}
	return m.sessions[i], true
}

func (m ScoreboardModel) Init() tea.Cmd {
	return nil
}

func (m ScoreboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.Back):
			m.goingBack = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.NextMode):
			if len(m.modes) > 0 {
				m.mode = (m.mode + 1) % len(m.modes)
				m.reload()
			}
			return m, nil

		case key.Matches(msg, m.keys.PrevMode):
			if len(m.modes) > 0 {
				m.mode = (m.mode + len(m.modes) - 1) % len(m.modes)
				m.reload()
			}
			return m, nil

		case key.Matches(msg, m.keys.View):
			m.view = 1 - m.view
			m.table = m.createTable()
			m.reload()
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.table = m.createTable()
		m.reload()
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m ScoreboardModel) View() string {
	if m.quitting || m.goingBack {
		return ""
	}

	var b strings.Builder

	title := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))
	b.WriteString(title.Render(centerText(m.view.String(), m.width)))
	b.WriteString("\n\n")
	b.WriteString(centerText(m.renderTabs(), m.width))
	b.WriteString("\n\n")

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)
	b.WriteString(box.Render(m.renderTableContent()))
	b.WriteString("\n")
	b.WriteString(m.renderDetail())
	b.WriteString("\n")

	dim := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	b.WriteString(dim.Render(m.help.View(m.keys)))

	return b.String()
}

func (m ScoreboardModel) renderTabs() string {
	inactive := lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Padding(0, 1)
	active := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Padding(0, 1)

	tabs := make([]string, len(m.modes))
	for i, g := range m.modes {
		if i == m.mode {
			tabs[i] = active.Render(g.Title)
		} else {
			tabs[i] = inactive.Render(g.Title)
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m ScoreboardModel) renderTableContent() string {
	empty := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241")).
		Italic(true).
		Padding(2, 4)

	switch {
	case m.loadErr != nil:
		return empty.Foreground(lipgloss.Color("196")).Render("Could not load sessions:\n" + m.loadErr.Error())
	case len(m.sessions) == 0:
		return empty.Render("No games recorded yet.\nClear a board to set a score!")
	}
	return m.table.View()
}

// renderDetail describes the selected session in one line.
func (m ScoreboardModel) renderDetail() string {
	s, ok := m.Selected()
	if !ok {
		return ""
	}
	id := s.SessionID
	if len(id) > 8 {
		id = id[:8]
	}
	d := time.Duration(s.Duration) * time.Second
	return lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Render(fmt.Sprintf(
		" %s  flips %d  matched %d  cascades %d  %s",
		id, s.Flips, s.Matched, s.Cascades, d))
}

// IsGoingBack returns true if user wants to go back to menu.
func (m ScoreboardModel) IsGoingBack() bool {
	return m.goingBack
}

// IsQuitting returns true if user wants to quit entirely.
func (m ScoreboardModel) IsQuitting() bool {
	return m.quitting
}

// RunScoreboard runs the scoreboard screen.
// Returns true if user wants to go back to menu, false if quitting.
func RunScoreboard(store *storage.Store, width, height int) (goBack bool, err error) {
	p := tea.NewProgram(NewScoreboardModel(store, width, height), tea.WithAltScreen())

	finalModel, err := p.Run()
	if err != nil {
		return false, err
	}

	m, ok := finalModel.(ScoreboardModel)
	if !ok {
		return false, nil
	}
	return m.IsGoingBack(), nil
}
