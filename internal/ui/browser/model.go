// Package browser renders one artist's release list with lazily hydrated
// album tiles.
package browser

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mchabran/encore/internal/config"
	"github.com/mchabran/encore/internal/discography"
	"github.com/mchabran/encore/internal/errmsg"
)

// Model is the release browser state for the currently selected artist.
type Model struct {
	orc    *discography.Orchestrator
	artist config.ArtistRef

	releases []discography.Release
	hydrated map[string]discography.Release // release ID -> full detail
	pending  map[string]bool                // hydrations in flight

	cursor  int
	loading bool
	spin    spinner.Model

	errorMsg string

	width, height int
}

// New creates an empty browser bound to the orchestrator.
func New(orc *discography.Orchestrator) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return Model{
		orc:      orc,
		hydrated: make(map[string]discography.Release),
		pending:  make(map[string]bool),
	}
}

// SetSize sets the available dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// ShowArtist switches the browser to a new artist and kicks off the
// discography fetch. Switching while a fetch for the previous artist is
// running is fine: the orchestrator aborts the old run itself.
func (m *Model) ShowArtist(artist config.ArtistRef) tea.Cmd {
	m.artist = artist
	m.releases = nil
	m.cursor = 0
	m.errorMsg = ""
	m.loading = true
	return tea.Batch(FetchCmd(m.orc, artist.ID), m.spin.Tick)
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case DiscographyMsg:
		if msg.ArtistID != m.artist.ID {
			// Stale result from a superseded selection
			return m, nil
		}
		m.loading = false
		if msg.Err != nil {
			m.errorMsg = errmsg.FormatWith(errmsg.OpDiscographyFetch, m.artist.Name, msg.Err)
			return m, nil
		}
		m.releases = msg.Releases
		m.cursor = 0
		return m, nil

	case HydrateMsg:
		delete(m.pending, msg.ReleaseID)
		if msg.Release != nil {
			m.hydrated[msg.ReleaseID] = *msg.Release
		}
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.releases)-1 {
			m.cursor++
		}
	case "enter":
		if m.cursor < len(m.releases) {
			id := m.releases[m.cursor].ID
			if _, ok := m.hydrated[id]; !ok && !m.pending[id] {
				m.pending[id] = true
				return m, HydrateCmd(m.orc, id)
			}
		}
	}
	return m, nil
}
