package domain

import "time"

// SessionState represents the lifecycle state of a todo's work session.
type SessionState string

const (
	SessionNotStarted   SessionState = ""             // No session yet
	SessionActive       SessionState = "active"       // Segment open
	SessionCheckpointed SessionState = "checkpointed" // Segment open, at least one checkpoint logged
	SessionPaused       SessionState = "paused"       // No segment open, time already logged
	SessionCompleted    SessionState = "completed"    // Final segment logged
)

// transitions defines the allowed session transitions.
// Checkpointed loops onto itself; paused reopens as active.
var transitions = map[SessionState][]SessionState{
	SessionNotStarted:   {SessionActive},
	SessionActive:       {SessionCheckpointed, SessionPaused, SessionNotStarted, SessionCompleted},
	SessionCheckpointed: {SessionCheckpointed, SessionPaused, SessionCompleted},
	SessionPaused:       {SessionActive},
	SessionCompleted:    {},
}

// CanTransitionTo returns true if the state can transition to the target state.
func (s SessionState) CanTransitionTo(target SessionState) bool {
	allowed, ok := transitions[s]
	if !ok {
		return false
	}
	for _, t := range allowed {
		if t == target {
			return true
		}
	}
	return false
}

// CheckTransition returns nil if the state can move to target, or the error
// describing why it cannot.
func (s SessionState) CheckTransition(target SessionState) error {
	if s.CanTransitionTo(target) {
		return nil
	}
	switch {
	case s.IsTerminal() && (target == SessionActive || target.IsTerminal()):
		return ErrTodoAlreadyCompleted
	case target == SessionActive:
		return ErrAlreadyActive
	default:
		return ErrNotActive
	}
}

// IsInProgress returns true if a segment is open.
func (s SessionState) IsInProgress() bool {
	return s == SessionActive || s == SessionCheckpointed
}

// IsTerminal returns true for the completed state.
func (s SessionState) IsTerminal() bool {
	return s == SessionCompleted
}

// IsValid returns true if the state is a known value.
func (s SessionState) IsValid() bool {
	switch s {
	case SessionNotStarted, SessionActive, SessionCheckpointed, SessionPaused, SessionCompleted:
		return true
	default:
		return false
	}
}

// Display returns a human-readable representation of the state.
func (s SessionState) Display() string {
	switch s {
	case SessionNotStarted:
		return "Not Started"
	case SessionActive:
		return "Active"
	case SessionCheckpointed:
		return "Checkpointed"
	case SessionPaused:
		return "Paused"
	case SessionCompleted:
		return "Completed"
	default:
		return string(s)
	}
}

// WorkSession is the time tracking state of one todo.
// Everything except CommentHistory is persisted in the todo's identity token;
// CommentHistory is rebuilt from the worklog ledger.
// Fields are ordered to minimize memory padding.
type WorkSession struct {
	SegmentStart   time.Time    // Start of the open segment (zero unless in progress)
	IssueKey       string       // Owning issue
	State          SessionState // Current state
	CommentHistory []string     // Checkpoint and completion comments, oldest first
	Accumulated    int64        // Seconds already emitted as worklog entries
	Segments       int          // Number of closed (emitted) segments
	TodoID         int          // Owning todo
}

// Elapsed returns the running duration of the open segment.
func (s *WorkSession) Elapsed(now time.Time) time.Duration {
	if !s.State.IsInProgress() || s.SegmentStart.IsZero() {
		return 0
	}
	d := now.Sub(s.SegmentStart)
	if d < 0 {
		return 0
	}
	return d
}

// Open starts a new segment at the given instant.
func (s *WorkSession) Open(at time.Time) error {
	if err := s.State.CheckTransition(SessionActive); err != nil {
		return err
	}
	s.State = SessionActive
	s.SegmentStart = at
	return nil
}

// CloseSegment records an emitted segment and moves to the target state.
// When reopenAt is non-zero a new segment starts there.
func (s *WorkSession) CloseSegment(seconds int64, next SessionState, reopenAt time.Time) error {
	if err := s.State.CheckTransition(next); err != nil {
		return err
	}
	if !s.State.IsInProgress() || next == SessionNotStarted {
		return ErrNotActive
	}
	s.Accumulated += seconds
	s.Segments++
	s.State = next
	if next.IsInProgress() {
		s.SegmentStart = reopenAt
	} else {
		s.SegmentStart = time.Time{}
	}
	return nil
}

// Discard drops the open segment without logging it.
func (s *WorkSession) Discard() error {
	next := SessionNotStarted
	if s.Segments > 0 {
		next = SessionPaused
	}
	if err := s.State.CheckTransition(next); err != nil {
		return err
	}
	s.SegmentStart = time.Time{}
	s.State = next
	return nil
}
