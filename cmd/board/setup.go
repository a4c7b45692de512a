// ABOUTME: Cobra command for interactive backend setup.
// ABOUTME: Launches a bubbletea TUI wizard to collect and validate the API URL.
package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/j0chan/sesac-semi/internal/config"
	"github.com/j0chan/sesac-semi/internal/tui"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Connect to a board backend",
	Long:  "Interactive wizard to configure the backend API endpoint.",
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	model := tui.NewSetupModel(cfg.API.BaseURL)

	p := tea.NewProgram(model)
	result, err := p.Run()
	if err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	final := result.(tui.SetupModel)
	if !final.ShouldSave() {
		fmt.Println("Setup cancelled.")
		return nil
	}

	cfg.API.BaseURL = final.Result()
	if err := cfg.Save(); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	configPath, err := config.GetConfigPath()
	if err != nil {
		fmt.Println("Config saved successfully.")
	} else {
		fmt.Printf("Config saved to %s\n", configPath)
	}
	return nil
}
