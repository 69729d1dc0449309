package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/runoshun/todolog/internal/app"
	"github.com/runoshun/todolog/internal/usecase"
)

func newSyncCommand(c *app.Container) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Sync issues with the remote",
		Long: `Push or fetch the issue refs of the git backend.

Descriptions and worklogs live under refs/<namespace>/ and are exchanged
with origin. Other backends are shared already and do not sync.`,
	}

	cmd.AddCommand(newSyncRunCommand(c, "push", "Push issue refs to origin", true))
	cmd.AddCommand(newSyncRunCommand(c, "fetch", "Fetch issue refs from origin", false))

	return cmd
}

func newSyncRunCommand(c *app.Container, use, short string, push bool) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.SyncRefsUseCase().Execute(cmd.Context(), usecase.SyncRefsInput{Push: push}); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s done\n", use)
			return nil
		},
	}
}
