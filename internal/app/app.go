package app

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"diskmap/internal/config"
	"diskmap/internal/services"
	"diskmap/internal/state"
	"diskmap/internal/ui"
)

func Run() {
	base := config.DefaultConfig()
	loaded, loadErr := config.LoadConfig()
	if loadErr == nil {
		base = loaded
	}
	cfg := config.ParseFlags(base)
	session := state.NewSession(cfg)

	scanner := services.NewFSScanner()

	model := ui.NewModel(session, scanner)
	if loadErr != nil {
		model = model.WithStatus("Config warning: using defaults")
	}
	program := tea.NewProgram(model, tea.WithAltScreen())
	finalModel, err := program.Run()
	if err != nil {
		fmt.Println("diskmap error:", err)
		return
	}
	if provider, ok := finalModel.(ui.ConfigProvider); ok {
		if err := config.SaveConfig(provider.ConfigSnapshot()); err != nil {
			fmt.Println("diskmap config save error:", err)
		}
	}
}
