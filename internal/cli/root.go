// Package cli provides the command-line interface for todolog.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/runoshun/todolog/internal/app"
)

// Command group IDs.
const (
	groupSetup   = "setup"
	groupTodo    = "todo"
	groupSession = "session"
)

// launchTUIFunc is a function variable for launching the TUI, allowing it to be mocked in tests.
var launchTUIFunc = launchTUI

// NewRootCommand creates the root command for todolog.
// It receives the container for dependency injection and version for display.
func NewRootCommand(c *app.Container, version string) *cobra.Command {
	var issue string

	root := &cobra.Command{
		Use:   "todolog",
		Short: "Issue checklist and work time tracker",
		Long: `todolog keeps a todo checklist inside an issue description and logs
the time spent on each todo as worklog entries on the same issue.

Todos are addressed by their 1-based position (3) or by their stable id (#7).
The issue comes from --issue, default_issue in the config, or TODOLOG_ISSUE.

Run without arguments to open the interactive board.`,
		Version: version,
		// SilenceUsage prevents usage from being printed on errors
		SilenceUsage: true,
		// SilenceErrors prevents Cobra from printing errors (we handle it in main)
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Skip if container is nil (e.g. in tests)
			if c == nil || c.AppConfig == nil {
				return nil
			}
			for _, w := range c.AppConfig.Warnings {
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %s\n", w)
			}
			return nil
		},
		RunE: func(_ *cobra.Command, _ []string) error {
			return launchTUIFunc(c, issue)
		},
	}

	root.PersistentFlags().StringVarP(&issue, "issue", "i", "", "Issue key (default: default_issue or $TODOLOG_ISSUE)")

	root.AddGroup(
		&cobra.Group{ID: groupSetup, Title: "Setup Commands:"},
		&cobra.Group{ID: groupTodo, Title: "Todo Management:"},
		&cobra.Group{ID: groupSession, Title: "Work Sessions:"},
	)

	// Setup commands
	configCmd := newConfigCommand(c)
	configCmd.GroupID = groupSetup

	syncCmd := newSyncCommand(c)
	syncCmd.GroupID = groupSetup

	logsCmd := newLogsCommand(c, &issue)
	logsCmd.GroupID = groupSetup

	// Todo management commands
	todoCmds := []*cobra.Command{
		newListCommand(c, &issue),
		newAddCommand(c, &issue),
		newSeedCommand(c, &issue),
		newCheckCommand(c, &issue, true),
		newCheckCommand(c, &issue, false),
		newEditCommand(c, &issue),
		newRmCommand(c, &issue),
		newShowCommand(c, &issue),
		newTUICommand(c, &issue),
	}
	for _, cmd := range todoCmds {
		cmd.GroupID = groupTodo
	}

	// Work session commands
	sessionCmds := []*cobra.Command{
		newStartCommand(c, &issue),
		newCheckpointCommand(c, &issue),
		newPauseCommand(c, &issue),
		newCompleteCommand(c, &issue),
		newCancelCommand(c, &issue),
		newSessionsCommand(c, &issue),
	}
	for _, cmd := range sessionCmds {
		cmd.GroupID = groupSession
	}

	root.AddCommand(configCmd, syncCmd, logsCmd)
	root.AddCommand(todoCmds...)
	root.AddCommand(sessionCmds...)

	return root
}

// resolveIssue returns the issue a command operates on.
func resolveIssue(c *app.Container, flag *string) (string, error) {
	return c.ResolveIssue(*flag)
}
