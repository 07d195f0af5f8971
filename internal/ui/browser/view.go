package browser

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mchabran/encore/internal/ui/render"
)

var (
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	detailStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	chipStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

func (m Model) View() string {
	var b strings.Builder

	if m.artist.Name == "" {
		b.WriteString(chipStyle.Render("select an artist"))
		return b.String()
	}

	b.WriteString(headerStyle.Render(m.artist.Name))
	b.WriteString("\n")

	if m.errorMsg != "" {
		b.WriteString(errorStyle.Render(m.errorMsg))
		return b.String()
	}

	if m.loading {
		b.WriteString(m.spin.View())
		b.WriteString(" fetching discography...")
		return b.String()
	}

	if len(m.releases) == 0 {
		b.WriteString(chipStyle.Render("no releases found (try again later)"))
		return b.String()
	}

	visible := max(m.height-3, 1)
	start := 0
	if m.cursor >= visible {
		start = m.cursor - visible + 1
	}

	for i := start; i < len(m.releases) && i < start+visible; i++ {
		b.WriteString(m.renderRow(i))
		b.WriteString("\n")
	}

	return b.String()
}

// renderRow renders one release line. Tiles whose detail has not been
// hydrated yet show as numbered chips; hydrated tiles show the full record.
func (m Model) renderRow(i int) string {
	r := m.releases[i]
	rowWidth := max(m.width-2, 10)

	var line string
	if full, ok := m.hydrated[r.ID]; ok {
		left := fmt.Sprintf("%3d. %s", i+1, full.Name)
		right := detailStyle.Render(releaseTag(full.AlbumType, full.ReleaseDate))
		line = render.Row(render.Truncate(left, rowWidth-lipgloss.Width(right)-1), right, rowWidth)
	} else {
		chip := fmt.Sprintf("%3d. %s", i+1, r.Name)
		if m.pending[r.ID] {
			chip += " ..."
		}
		line = chipStyle.Render(render.TruncateAndPad(chip, rowWidth))
	}

	if i == m.cursor {
		return selectedStyle.Render("> ") + line
	}
	return "  " + line
}

// releaseTag formats the secondary info shown for a hydrated release.
func releaseTag(albumType, date string) string {
	switch {
	case albumType != "" && date != "":
		return fmt.Sprintf("%s · %s", albumType, date)
	case albumType != "":
		return albumType
	default:
		return date
	}
}
