package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/runoshun/todolog/internal/app"
	"github.com/runoshun/todolog/internal/domain"
	"github.com/runoshun/todolog/internal/usecase"
)

// newShowCommand creates the show command.
func newShowCommand(c *app.Container, issue *string) *cobra.Command {
	var raw bool
	var style string
	var width int

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the issue description and logged time",
		Long: `Render the issue description as Markdown, followed by the worklog
entries written by todo sessions.

Use --raw to print the description as stored, identity tokens included.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			key, err := resolveIssue(c, issue)
			if err != nil {
				return err
			}
			out, err := c.ShowIssueUseCase().Execute(cmd.Context(), usecase.ShowIssueInput{IssueKey: key})
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if raw {
				_, _ = fmt.Fprint(w, out.Description)
				if !strings.HasSuffix(out.Description, "\n") {
					_, _ = fmt.Fprintln(w)
				}
			} else {
				rendered, err := renderMarkdown(out.Description, style, width)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprint(w, rendered)
			}

			printWorklogSummary(w, out)
			return nil
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "Print the stored description without rendering")
	cmd.Flags().StringVar(&style, "style", "auto", "Glamour style (auto, dark, light, notty)")
	cmd.Flags().IntVar(&width, "width", 100, "Word wrap width")

	return cmd
}

// renderMarkdown renders the description for the terminal.
func renderMarkdown(md, style string, width int) (string, error) {
	styleOpt := glamour.WithAutoStyle()
	if style != "" && style != "auto" {
		styleOpt = glamour.WithStandardStyle(style)
	}
	r, err := glamour.NewTermRenderer(styleOpt, glamour.WithWordWrap(width))
	if err != nil {
		return "", fmt.Errorf("create renderer: %w", err)
	}
	out, err := r.Render(md)
	if err != nil {
		return "", fmt.Errorf("render description: %w", err)
	}
	return out, nil
}

func printWorklogSummary(w io.Writer, out *usecase.ShowIssueOutput) {
	if len(out.Ledger) == 0 && out.OtherEntries == 0 {
		_, _ = fmt.Fprintln(w, "No time logged.")
		return
	}

	texts := make(map[int]string, len(out.Todos))
	for _, t := range out.Todos {
		texts[t.ID] = t.Text
	}

	_, _ = fmt.Fprintln(w, "Worklog:")
	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	for _, le := range out.Ledger {
		text, ok := texts[le.Tag.TodoID]
		if !ok {
			text = "(removed)"
		}
		_, _ = fmt.Fprintf(tw, "  #%d\t%s\t%s\t%s\t%s\n",
			le.Tag.TodoID, le.Entry.Started.Local().Format("2006-01-02 15:04"),
			domain.FormatDuration(le.Entry.TimeSpentSeconds), text, le.Comment)
	}
	_ = tw.Flush()
	_, _ = fmt.Fprintf(w, "Total logged on todos: %s\n", domain.FormatDuration(out.LoggedSeconds))
	if out.OtherEntries > 0 {
		_, _ = fmt.Fprintf(w, "%d other worklog entries\n", out.OtherEntries)
	}
}
