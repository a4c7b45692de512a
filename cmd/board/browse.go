// ABOUTME: Cobra command launching the interactive board TUI.
// ABOUTME: Wires the shared services into the bubbletea program.
package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/j0chan/sesac-semi/internal/tui"
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse the board interactively",
	Long:  "Full-screen TUI for reading, writing, and managing posts.",
	RunE:  runBrowse,
}

func init() {
	rootCmd.AddCommand(browseCmd)
}

func runBrowse(cmd *cobra.Command, args []string) error {
	deps := &tui.Deps{
		Session:  globalSession,
		Posts:    globalPosts,
		Uploads:  globalUploads,
		PageSize: globalConfig.UI.PageSize,
	}

	p := tea.NewProgram(tui.NewModel(deps), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
