// Package statusbar renders the pipeline status line.
package statusbar

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/mchabran/encore/internal/discography"
	"github.com/mchabran/encore/internal/ui/render"
)

var barStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("250")).
	Background(lipgloss.Color("236"))

// View renders the status bar for the current orchestrator snapshot. note is
// an optional trailing diagnostic (e.g. the last phase transition).
func View(st discography.Status, note string, width int) string {
	left := st.Phase.String()
	if st.ActiveArtistID != "" {
		left = fmt.Sprintf("%s · %s", left, st.ActiveArtistID)
	}
	if note != "" {
		left = fmt.Sprintf("%s · %s", left, note)
	}

	right := ""
	if st.ReleasesCount > 0 {
		right = fmt.Sprintf("%d releases", st.ReleasesCount)
	}
	if !st.FetchedAt.IsZero() {
		if right != "" {
			right += " · "
		}
		right += "fetched " + humanize.Time(st.FetchedAt)
	}

	return barStyle.Width(width).Render(render.Row(" "+left, right+" ", width))
}
