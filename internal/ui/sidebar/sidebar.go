// Package sidebar renders the followed-artists list.
package sidebar

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mchabran/encore/internal/config"
	"github.com/mchabran/encore/internal/ui/render"
)

// SelectedMsg is emitted when the user picks an artist.
type SelectedMsg struct {
	Artist config.ArtistRef
}

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// Model is the sidebar state: the configured artists plus an optional filter.
type Model struct {
	artists  []config.ArtistRef
	filtered []config.ArtistRef

	filterInput textinput.Model
	filtering   bool

	cursor int

	width, height int
}

// New creates a sidebar over the configured artists.
func New(artists []config.ArtistRef) Model {
	ti := textinput.New()
	ti.Placeholder = "filter artists"
	ti.CharLimit = 64
	ti.Width = 20

	return Model{
		artists:     artists,
		filtered:    artists,
		filterInput: ti,
	}
}

// SetSize sets the available dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Selected returns the artist under the cursor, or nil when the list is empty.
func (m *Model) Selected() *config.ArtistRef {
	if len(m.filtered) == 0 || m.cursor >= len(m.filtered) {
		return nil
	}
	return &m.filtered[m.cursor]
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	if m.filtering {
		switch keyMsg.String() {
		case "enter", "esc":
			m.filtering = false
			m.filterInput.Blur()
			if keyMsg.String() == "esc" {
				m.filterInput.SetValue("")
				m.applyFilter()
			}
			return m, nil
		default:
			var cmd tea.Cmd
			m.filterInput, cmd = m.filterInput.Update(msg)
			m.applyFilter()
			return m, cmd
		}
	}

	switch keyMsg.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.filtered)-1 {
			m.cursor++
		}
	case "/":
		m.filtering = true
		return m, m.filterInput.Focus()
	case "enter":
		if sel := m.Selected(); sel != nil {
			artist := *sel
			return m, func() tea.Msg { return SelectedMsg{Artist: artist} }
		}
	}

	return m, nil
}

// applyFilter narrows the artist list to case-insensitive name matches.
func (m *Model) applyFilter() {
	query := strings.ToLower(strings.TrimSpace(m.filterInput.Value()))
	if query == "" {
		m.filtered = m.artists
	} else {
		filtered := make([]config.ArtistRef, 0, len(m.artists))
		for _, a := range m.artists {
			if strings.Contains(strings.ToLower(a.Name), query) {
				filtered = append(filtered, a)
			}
		}
		m.filtered = filtered
	}
	if m.cursor >= len(m.filtered) {
		m.cursor = max(len(m.filtered)-1, 0)
	}
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Artists"))
	b.WriteString("\n")

	if m.filtering || m.filterInput.Value() != "" {
		b.WriteString(m.filterInput.View())
		b.WriteString("\n")
	}

	if len(m.filtered) == 0 {
		b.WriteString(dimStyle.Render("no artists configured"))
		return b.String()
	}

	visible := max(m.height-3, 1)
	start := 0
	if m.cursor >= visible {
		start = m.cursor - visible + 1
	}

	for i := start; i < len(m.filtered) && i < start+visible; i++ {
		name := render.TruncateAndPad(m.filtered[i].Name, max(m.width-2, 1))
		if i == m.cursor {
			b.WriteString(selectedStyle.Render("> " + name))
		} else {
			b.WriteString("  " + name)
		}
		b.WriteString("\n")
	}

	return b.String()
}
