package cli

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/runoshun/todolog/internal/app"
	"github.com/runoshun/todolog/internal/domain"
	"github.com/runoshun/todolog/internal/usecase"
)

// closeFlags are the flags shared by checkpoint, pause and complete.
type closeFlags struct {
	Comment   string
	TimeSpent string
}

func (f *closeFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.Comment, "message", "m", "", "Worklog comment")
	cmd.Flags().StringVarP(&f.TimeSpent, "time", "t", "", `Time spent instead of the measured segment (e.g. "1h30m", "1h 30m", "1.5")`)
}

// newStartCommand creates the start command.
func newStartCommand(c *app.Container, issue *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start <todo>",
		Short: "Start working on a todo",
		Long: `Open a work segment on a todo. A paused todo is resumed.

Only one segment per todo can be open. Time is logged when the segment
is closed by checkpoint, pause or complete.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := resolveIssue(c, issue)
			if err != nil {
				return err
			}
			out, err := c.StartTodoWorkUseCase().Execute(cmd.Context(), usecase.StartTodoWorkInput{
				IssueKey: key,
				Ref:      args[0],
			})
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if out.Folded > 0 {
				_, _ = fmt.Fprintf(w, "Recovered %d logged segment(s) from the worklog\n", out.Folded)
			}
			_, _ = fmt.Fprintf(w, "Started todo %s: %s\n", out.Todo.Ref(), out.Todo.Text)
			return nil
		},
	}
}

// newCheckpointCommand creates the checkpoint command.
func newCheckpointCommand(c *app.Container, issue *string) *cobra.Command {
	var flags closeFlags

	cmd := &cobra.Command{
		Use:   "checkpoint <todo>",
		Short: "Log the time so far and keep working",
		Long: `Log the open segment as a worklog entry and open the next segment
at the same instant, so no time is lost or counted twice.

Examples:
  todolog checkpoint 2 -m "Parser done"
  todolog checkpoint #7 --time 45m`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := resolveIssue(c, issue)
			if err != nil {
				return err
			}
			out, err := c.CheckpointTodoWorkUseCase().Execute(cmd.Context(), usecase.CheckpointTodoWorkInput{
				IssueKey:  key,
				Ref:       args[0],
				Comment:   flags.Comment,
				TimeSpent: flags.TimeSpent,
			})
			if err != nil {
				return err
			}
			printClosed(cmd.OutOrStdout(), "Checkpointed", out)
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}

// newPauseCommand creates the pause command.
func newPauseCommand(c *app.Container, issue *string) *cobra.Command {
	var flags closeFlags

	cmd := &cobra.Command{
		Use:   "pause <todo>",
		Short: "Log the time so far and stop the clock",
		Long:  `Log the open segment as a worklog entry and leave the todo paused. Resume with start.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := resolveIssue(c, issue)
			if err != nil {
				return err
			}
			out, err := c.PauseTodoWorkUseCase().Execute(cmd.Context(), usecase.PauseTodoWorkInput{
				IssueKey:  key,
				Ref:       args[0],
				Comment:   flags.Comment,
				TimeSpent: flags.TimeSpent,
			})
			if err != nil {
				return err
			}
			printClosed(cmd.OutOrStdout(), "Paused", out)
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}

// newCompleteCommand creates the complete command.
func newCompleteCommand(c *app.Container, issue *string) *cobra.Command {
	var flags closeFlags
	var keepOpen bool

	cmd := &cobra.Command{
		Use:   "complete <todo>",
		Short: "Log the final segment and finish the todo",
		Long: `Log the open segment as the final worklog entry of the session and
check the todo. Use --keep-open to leave the checkbox unchecked.

The default for checking comes from tracking.mark_completed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := resolveIssue(c, issue)
			if err != nil {
				return err
			}
			in := usecase.CompleteTodoWorkInput{
				IssueKey:  key,
				Ref:       args[0],
				Comment:   flags.Comment,
				TimeSpent: flags.TimeSpent,
			}
			if cmd.Flags().Changed("keep-open") {
				mark := !keepOpen
				in.MarkCompleted = &mark
			}
			out, err := c.CompleteTodoWorkUseCase().Execute(cmd.Context(), in)
			if err != nil {
				return err
			}
			printClosed(cmd.OutOrStdout(), "Completed", out)
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&keepOpen, "keep-open", false, "Do not check the todo")
	return cmd
}

// newCancelCommand creates the cancel command.
func newCancelCommand(c *app.Container, issue *string) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <todo>",
		Short: "Drop the open segment without logging it",
		Long: `Discard the open work segment. Nothing is logged for it.
Segments logged earlier are kept.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := resolveIssue(c, issue)
			if err != nil {
				return err
			}
			out, err := c.CancelTodoWorkUseCase().Execute(cmd.Context(), usecase.CancelTodoWorkInput{
				IssueKey: key,
				Ref:      args[0],
			})
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Cancelled todo %s, discarded %s\n",
				out.Todo.Ref(), domain.FormatDuration(int64(out.Discarded/time.Second)))
			return nil
		},
	}
}

// newSessionsCommand creates the sessions command.
func newSessionsCommand(c *app.Container, issue *string) *cobra.Command {
	var activeOnly bool

	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List work sessions",
		Long: `List the todos that have a work session, with their running
segment, logged time and the comments logged so far.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			key, err := resolveIssue(c, issue)
			if err != nil {
				return err
			}
			out, err := c.ListSessionsUseCase().Execute(cmd.Context(), usecase.ListSessionsInput{
				IssueKey:   key,
				ActiveOnly: activeOnly,
			})
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if len(out.Sessions) == 0 {
				_, _ = fmt.Fprintln(w, "No work sessions.")
				return nil
			}

			tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
			_, _ = fmt.Fprintln(tw, "ID\tSTATE\tRUNNING\tLOGGED\tSEGMENTS\tTODO")
			for _, s := range out.Sessions {
				running := "-"
				if s.Todo.Session.State.IsInProgress() {
					running = domain.FormatDuration(int64(s.Elapsed / time.Second))
				}
				_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\n",
					s.Todo.Ref(), s.Todo.Session.State.Display(), running,
					domain.FormatDuration(s.Todo.Session.Accumulated), s.Todo.Session.Segments, s.Todo.Text)
			}
			_ = tw.Flush()

			for _, s := range out.Sessions {
				if len(s.Todo.Session.CommentHistory) == 0 {
					continue
				}
				_, _ = fmt.Fprintf(w, "\n%s %s\n", s.Todo.Ref(), s.Todo.Text)
				for _, comment := range s.Todo.Session.CommentHistory {
					_, _ = fmt.Fprintf(w, "  - %s\n", comment)
				}
			}
			_, _ = fmt.Fprintf(w, "\nTotal logged: %s\n", domain.FormatDuration(out.TotalSeconds))
			return nil
		},
	}

	cmd.Flags().BoolVar(&activeOnly, "active", false, "Only sessions with an open segment")
	return cmd
}

// printClosed reports a closed segment.
func printClosed(w io.Writer, verb string, out *usecase.CloseOutput) {
	_, _ = fmt.Fprintf(w, "%s todo %s: logged %s", verb, out.Todo.Ref(), domain.FormatDuration(out.Seconds))
	if out.Entry != nil && out.Entry.ID != "" {
		_, _ = fmt.Fprintf(w, " (worklog %s)", out.Entry.ID)
	}
	if out.Recovered {
		_, _ = fmt.Fprint(w, ", recovered from an earlier attempt")
	}
	_, _ = fmt.Fprintf(w, "\nTotal on this todo: %s\n", domain.FormatDuration(out.Todo.Session.Accumulated))
}
