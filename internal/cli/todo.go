package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/runoshun/todolog/internal/app"
	"github.com/runoshun/todolog/internal/domain"
	"github.com/runoshun/todolog/internal/usecase"
)

// newListCommand creates the list command.
func newListCommand(c *app.Container, issue *string) *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List the issue's todos",
		Long: `List the todos of the issue's checklist in document order.

Use --status to filter: open (unchecked, not being worked on),
completed (checked), or wip (a work segment is open).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			key, err := resolveIssue(c, issue)
			if err != nil {
				return err
			}
			var filter domain.TodoStatus
			if status != "" {
				if filter, err = domain.ParseTodoStatus(status); err != nil {
					return err
				}
			}

			out, err := c.ListTodosUseCase().Execute(cmd.Context(), usecase.ListTodosInput{
				IssueKey: key,
				Status:   filter,
			})
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if len(out.Todos) == 0 {
				_, _ = fmt.Fprintf(w, "No todos in %s.\n", key)
				return nil
			}
			printTodoList(w, out.Todos, c.Clock.Now())
			_, _ = fmt.Fprintf(w, "\n%d/%d completed\n", out.Completed, out.Total)
			return nil
		},
	}

	cmd.Flags().StringVarP(&status, "status", "s", "", "Filter by status: open, completed, wip")

	return cmd
}

// newAddCommand creates the add command.
func newAddCommand(c *app.Container, issue *string) *cobra.Command {
	var prepend bool

	cmd := &cobra.Command{
		Use:   "add <text>",
		Short: "Add a todo",
		Long: `Add a todo to the issue's checklist.

The todo is appended after the last todo. If the description has no
todos yet, it goes under an existing todo section header or a new
"## Todos" section.

Examples:
  todolog add "Write migration"
  todolog add --prepend "Reproduce the bug first"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := resolveIssue(c, issue)
			if err != nil {
				return err
			}
			out, err := c.AddTodoUseCase().Execute(cmd.Context(), usecase.AddTodoInput{
				IssueKey: key,
				Text:     strings.Join(args, " "),
				Prepend:  prepend,
			})
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Added todo %s (%d): %s\n", out.Todo.Ref(), out.Todo.Order, out.Todo.Text)
			return nil
		},
	}

	cmd.Flags().BoolVar(&prepend, "prepend", false, "Insert before the existing todos")

	return cmd
}

// newSeedCommand creates the seed command.
func newSeedCommand(c *app.Container, issue *string) *cobra.Command {
	var prepend bool
	var from string

	cmd := &cobra.Command{
		Use:   "seed [text...]",
		Short: "Add several todos at once",
		Long: `Add several todos in a single description update.

Each argument becomes one todo. With --from, each non-empty line of the
file becomes one todo ("-" reads stdin). Leading "- [ ]" or "-" markers
are stripped. Nothing is written unless every todo is valid.

Examples:
  todolog seed "Design" "Implement" "Test"
  todolog seed --from plan.md`,
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := resolveIssue(c, issue)
			if err != nil {
				return err
			}

			texts := args
			if from != "" {
				lines, err := readSeedFile(cmd.InOrStdin(), from)
				if err != nil {
					return err
				}
				texts = append(texts, lines...)
			}

			out, err := c.SeedTodosUseCase().Execute(cmd.Context(), usecase.SeedTodosInput{
				IssueKey: key,
				Texts:    texts,
				Prepend:  prepend,
			})
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			for _, t := range out.Todos {
				_, _ = fmt.Fprintf(w, "Added todo %s (%d): %s\n", t.Ref(), t.Order, t.Text)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&prepend, "prepend", false, "Insert before the existing todos")
	cmd.Flags().StringVar(&from, "from", "", "Read todos from a file, one per line (- for stdin)")

	return cmd
}

// readSeedFile reads todo texts from a file or stdin.
func readSeedFile(stdin io.Reader, path string) ([]string, error) {
	r := stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("read file: %w", err)
		}
		defer func() { _ = f.Close() }()
		r = f
	}

	var texts []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		for _, prefix := range []string{"- [ ]", "* [ ]", "-", "*"} {
			if strings.HasPrefix(line, prefix) {
				line = strings.TrimSpace(strings.TrimPrefix(line, prefix))
				break
			}
		}
		if line != "" {
			texts = append(texts, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return texts, nil
}

// newCheckCommand creates the check or uncheck command.
func newCheckCommand(c *app.Container, issue *string, completed bool) *cobra.Command {
	use, short, verb := "check <todo>", "Mark a todo as done", "Checked"
	if !completed {
		use, short, verb = "uncheck <todo>", "Mark a todo as not done", "Unchecked"
	}

	return &cobra.Command{
		Use:   use,
		Short: short,
		Long: short + `.

Only the checkbox changes; a running work session keeps running.
Use "todolog complete" to log the final segment and check the todo.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := resolveIssue(c, issue)
			if err != nil {
				return err
			}
			out, err := c.SetTodoStatusUseCase().Execute(cmd.Context(), usecase.SetTodoStatusInput{
				IssueKey:  key,
				Ref:       args[0],
				Completed: completed,
			})
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if !out.Changed {
				_, _ = fmt.Fprintf(w, "Todo %s already %s\n", out.Todo.Ref(), strings.ToLower(verb))
				return nil
			}
			_, _ = fmt.Fprintf(w, "%s todo %s: %s\n", verb, out.Todo.Ref(), out.Todo.Text)
			return nil
		},
	}
}

// newEditCommand creates the edit command.
func newEditCommand(c *app.Container, issue *string) *cobra.Command {
	return &cobra.Command{
		Use:   "edit <todo> <text>",
		Short: "Change a todo's text",
		Long:  `Change a todo's text. Its id, checkbox and work session are kept.`,
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := resolveIssue(c, issue)
			if err != nil {
				return err
			}
			out, err := c.EditTodoUseCase().Execute(cmd.Context(), usecase.EditTodoInput{
				IssueKey: key,
				Ref:      args[0],
				Text:     strings.Join(args[1:], " "),
			})
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Edited todo %s: %s\n", out.Todo.Ref(), out.Todo.Text)
			return nil
		},
	}
}

// newRmCommand creates the rm command.
func newRmCommand(c *app.Container, issue *string) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:     "rm <todo>",
		Aliases: []string{"remove"},
		Short:   "Remove a todo",
		Long: `Remove a todo from the checklist. Its id is never reused.

A todo with an open work segment is only removed with --force; the
unlogged time of that segment is lost. Logged worklog entries stay.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := resolveIssue(c, issue)
			if err != nil {
				return err
			}
			out, err := c.RemoveTodoUseCase().Execute(cmd.Context(), usecase.RemoveTodoInput{
				IssueKey: key,
				Ref:      args[0],
				Force:    force,
			})
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Removed todo %s: %s\n", out.Todo.Ref(), out.Todo.Text)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Remove even if a work segment is open")

	return cmd
}

// printTodoList prints todos as a table.
func printTodoList(w io.Writer, todos []domain.Todo, now time.Time) {
	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	_, _ = fmt.Fprintln(tw, "#\tID\tDONE\tSESSION\tLOGGED\tTODO")
	for i := range todos {
		t := &todos[i]
		done := "[ ]"
		if t.Completed {
			done = "[x]"
		}
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
			t.Order, t.Ref(), done, sessionLabel(t, now), loggedLabel(t), t.Text)
	}
	_ = tw.Flush()
}

// sessionLabel describes a todo's session, with the running time when open.
func sessionLabel(t *domain.Todo, now time.Time) string {
	s := &t.Session
	if s.State == domain.SessionNotStarted {
		return "-"
	}
	if s.State.IsInProgress() {
		return fmt.Sprintf("%s %s", s.State.Display(), domain.FormatDuration(int64(s.Elapsed(now)/time.Second)))
	}
	return s.State.Display()
}

func loggedLabel(t *domain.Todo) string {
	if t.Session.Segments == 0 {
		return "-"
	}
	return domain.FormatDuration(t.Session.Accumulated)
}
