package usecase

import (
	"strings"
	"time"

	"github.com/runoshun/todolog/internal/domain"
	"github.com/runoshun/todolog/internal/usecase/shared"
)

// CloseOutput is the result of checkpoint, pause and complete.
// Fields are ordered to minimize memory padding.
type CloseOutput struct {
	Todo      domain.Todo          // Todo after the operation
	Entry     *domain.WorklogEntry // Worklog entry of the closed segment
	Elapsed   time.Duration        // Measured segment length
	Seconds   int64                // Logged seconds
	Recovered bool                 // Already logged by an earlier attempt; nothing was posted
}

// closeOptions builds the session options from the raw comment and time spent.
func closeOptions(comment, timeSpent string) (shared.CloseOptions, error) {
	opts := shared.CloseOptions{Comment: comment}
	if strings.TrimSpace(timeSpent) == "" {
		return opts, nil
	}
	d, err := domain.ParseTimeSpent(timeSpent)
	if err != nil {
		return opts, err
	}
	opts.Override = &d
	return opts, nil
}

func newCloseOutput(res *shared.SessionResult) *CloseOutput {
	return &CloseOutput{
		Todo:      res.Todo,
		Entry:     res.Entry,
		Elapsed:   res.Elapsed,
		Seconds:   res.Seconds,
		Recovered: res.Recovered,
	}
}
