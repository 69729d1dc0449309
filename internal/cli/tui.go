package cli

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/runoshun/todolog/internal/app"
	"github.com/runoshun/todolog/internal/tui"
)

// newTUICommand creates the tui command for launching the interactive board.
// Running todolog without arguments does the same.
func newTUICommand(c *app.Container, issue *string) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Launch the interactive todo board",
		Long:  `Launch the interactive terminal board for the issue's todos and work sessions.`,
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return launchTUIFunc(c, *issue)
		},
	}
}

// launchTUI runs the board until the user quits.
func launchTUI(c *app.Container, issue string) error {
	key, err := c.ResolveIssue(issue)
	if err != nil {
		return err
	}
	model := tui.New(c, key)
	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err = p.Run()
	return err
}
