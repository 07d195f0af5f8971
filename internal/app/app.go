// Package app wires the sidebar, release browser, and status bar into the
// top-level Bubble Tea model.
package app

import (
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mchabran/encore/internal/config"
	"github.com/mchabran/encore/internal/discography"
	"github.com/mchabran/encore/internal/ui/browser"
	"github.com/mchabran/encore/internal/ui/sidebar"
	"github.com/mchabran/encore/internal/ui/statusbar"
)

const sidebarWidth = 28

var sidebarStyle = lipgloss.NewStyle().
	BorderStyle(lipgloss.RoundedBorder()).
	BorderForeground(lipgloss.Color("240"))

type tickMsg time.Time

// Model is the top-level application model.
type Model struct {
	orc *discography.Orchestrator

	sidebar sidebar.Model
	browser browser.Model
	status  discography.Status

	transitions *transitionLog

	width, height int
}

// New builds the application model and hooks phase telemetry.
func New(cfg *config.Config, orc *discography.Orchestrator) Model {
	log := newTransitionLog(32)
	orc.OnTransition(func(from, to discography.Phase, artistID string) {
		log.record(from, to, artistID)
	})

	return Model{
		orc:         orc,
		sidebar:     sidebar.New(cfg.Artists),
		browser:     browser.New(orc),
		transitions: log,
	}
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.sidebar.SetSize(sidebarWidth, m.height-2)
		m.browser.SetSize(m.width-sidebarWidth-2, m.height-2)
		return m, nil

	case tickMsg:
		m.status = m.orc.Status()
		return m, tick()

	case sidebar.SelectedMsg:
		return m, m.browser.ShowArtist(msg.Artist)

	case tea.KeyMsg:
		if s := msg.String(); s == "ctrl+c" || s == "q" {
			m.orc.Abort("")
			return m, tea.Quit
		}
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.sidebar, cmd = m.sidebar.Update(msg)
	cmds = append(cmds, cmd)
	m.browser, cmd = m.browser.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	if m.width == 0 {
		return "loading..."
	}

	side := sidebarStyle.
		Width(sidebarWidth).
		Height(m.height - 3).
		Render(m.sidebar.View())

	main := lipgloss.NewStyle().
		Width(m.width - sidebarWidth - 2).
		Height(m.height - 1).
		Padding(0, 1).
		Render(m.browser.View())

	note := ""
	if recent := m.transitions.Recent(1); len(recent) == 1 {
		note = recent[0].From.String() + " -> " + recent[0].To.String()
	}

	content := lipgloss.JoinHorizontal(lipgloss.Top, side, main)
	return lipgloss.JoinVertical(lipgloss.Left, content, statusbar.View(m.status, note, m.width))
}

// transitionLog keeps a bounded history of phase transitions for diagnostics.
// The hook fires on orchestrator goroutines, so access is synchronized.
type transitionLog struct {
	mu       sync.Mutex
	entries  []transitionEntry
	capacity int
}

type transitionEntry struct {
	From, To discography.Phase
	ArtistID string
	At       time.Time
}

func newTransitionLog(capacity int) *transitionLog {
	return &transitionLog{capacity: capacity}
}

func (l *transitionLog) record(from, to discography.Phase, artistID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, transitionEntry{From: from, To: to, ArtistID: artistID, At: time.Now()})
	if len(l.entries) > l.capacity {
		l.entries = l.entries[len(l.entries)-l.capacity:]
	}
}

// Recent returns the most recent transitions, newest last.
func (l *transitionLog) Recent(n int) []transitionEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	if n > len(l.entries) {
		n = len(l.entries)
	}
	out := make([]transitionEntry, n)
	copy(out, l.entries[len(l.entries)-n:])
	return out
}
