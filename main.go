package main

import (
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mchabran/encore/internal/app"
	"github.com/mchabran/encore/internal/catalog"
	"github.com/mchabran/encore/internal/config"
	"github.com/mchabran/encore/internal/discography"
	"github.com/mchabran/encore/internal/errmsg"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, errmsg.Format(errmsg.OpConfigLoad, err))
		os.Exit(1)
	}

	if !cfg.HasCatalogConfig() {
		fmt.Fprintln(os.Stderr, "catalog.base_url is not configured")
		fmt.Fprintln(os.Stderr, "create ~/.config/encore/config.toml with a [catalog] section")
		os.Exit(1)
	}

	client := catalog.NewClient(cfg.Catalog.BaseURL)

	pacing := cfg.GetPacingConfig()
	orc := discography.New(client, discography.Config{
		MaxPages:       pacing.MaxPages,
		PageSize:       pacing.PageSize,
		PageDelay:      time.Duration(pacing.PageDelaySeconds) * time.Second,
		HydrationDelay: time.Duration(pacing.HydrationDelaySeconds) * time.Second,
	})

	m := app.New(cfg, orc)

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintln(os.Stderr, errmsg.Format(errmsg.OpInitialize, err))
		os.Exit(1)
	}
}
