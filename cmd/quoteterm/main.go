package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"quoteterm/internal/api"
	"quoteterm/internal/config"
	"quoteterm/internal/tui"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}

	if err := os.MkdirAll(cfg.ConfigDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Cannot create config directory: %v\n", err)
		os.Exit(1)
	}

	// The TUI owns the terminal, so logs go to a file.
	logFile, err := os.OpenFile(cfg.LogPath(), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cannot open log file: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()
	logger := zerolog.New(logFile).With().Timestamp().Logger()

	client, err := api.New(cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cannot create API client: %v\n", err)
		os.Exit(1)
	}

	appModel := tui.NewAppModel(client, logger, cfg.AuthPollInterval)
	p := tea.NewProgram(&appModel, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Alas, there's been an error: %v\n", err)
		os.Exit(1)
	}
}
