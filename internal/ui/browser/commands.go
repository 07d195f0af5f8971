package browser

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mchabran/encore/internal/discography"
)

// DiscographyMsg contains the result of a discography request.
type DiscographyMsg struct {
	ArtistID string
	Releases []discography.Release
	Err      error
}

// HydrateMsg contains the result of a release detail request.
type HydrateMsg struct {
	ReleaseID string
	Release   *discography.Release // nil when the fetch failed
}

// FetchCmd requests an artist's discography from the orchestrator. The
// orchestrator handles caching, pacing, and superseding a run for a
// previously selected artist.
func FetchCmd(orc *discography.Orchestrator, artistID string) tea.Cmd {
	return func() tea.Msg {
		releases, err := orc.RequestDiscography(context.Background(), artistID)
		if err != nil {
			return DiscographyMsg{ArtistID: artistID, Err: err}
		}
		return DiscographyMsg{ArtistID: artistID, Releases: releases}
	}
}

// HydrateCmd requests one release's full detail. The orchestrator paces the
// fetch, so the result may arrive well after the keypress; the tile stays in
// its pending state until then.
func HydrateCmd(orc *discography.Orchestrator, releaseID string) tea.Cmd {
	return func() tea.Msg {
		rel, err := orc.HydrateOnDemand(context.Background(), releaseID)
		if err != nil {
			return HydrateMsg{ReleaseID: releaseID}
		}
		return HydrateMsg{ReleaseID: releaseID, Release: rel}
	}
}
