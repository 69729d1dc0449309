package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// WorklogEntry is an append-only time record owned by the issue store.
// Fields are ordered to minimize memory padding.
type WorklogEntry struct {
	Started          time.Time `json:"started" yaml:"started"`
	CreatedAt        time.Time `json:"created" yaml:"created"`
	ID               string    `json:"id" yaml:"id"`
	IssueKey         string    `json:"issueKey" yaml:"issueKey"`
	Comment          string    `json:"comment" yaml:"comment"`
	Author           string    `json:"author,omitempty" yaml:"author,omitempty"`
	TimeSpentSeconds int64     `json:"timeSpentSeconds" yaml:"timeSpentSeconds"`
}

// WorklogInput is the payload of a worklog append call.
type WorklogInput struct {
	Started time.Time // Segment start (display timestamp)
	Comment string    // Full comment including the segment tag
	Seconds int64     // Whole seconds, may be zero
}

// SegmentKind tells which operation closed a segment.
type SegmentKind string

// Segment kinds.
const (
	SegmentCheckpoint SegmentKind = ""      // Closed and reopened
	SegmentPause      SegmentKind = "pause" // Closed, session paused
	SegmentFinal      SegmentKind = "final" // Closed by complete, todo left unchecked
	SegmentDone       SegmentKind = "done"  // Closed by complete, todo checked
)

// NextState returns the session state after a segment of this kind is closed.
func (k SegmentKind) NextState() SessionState {
	switch k {
	case SegmentPause:
		return SessionPaused
	case SegmentFinal, SegmentDone:
		return SessionCompleted
	default:
		return SessionCheckpointed
	}
}

// Segment is one closed interval of work ready to be logged.
// Fields are ordered to minimize memory padding.
type Segment struct {
	Start    time.Time
	IssueKey string
	Comment  string
	Kind     SegmentKind
	Seconds  int64
	TodoID   int
	Seq      int // 1-based segment number within the todo's session
}

// Tag returns the ledger tag identifying this segment.
func (s Segment) Tag() SegmentTag {
	return SegmentTag{TodoID: s.TodoID, Seq: s.Seq, Kind: s.Kind}
}

// SegmentTag is appended to every emitted worklog comment so the ledger can be
// matched back to todo sessions.
type SegmentTag struct {
	Kind   SegmentKind
	TodoID int
	Seq    int
}

var segmentTagPattern = regexp.MustCompile(`\[todo #(\d+) seg (\d+)(?: (pause|final|done))?\]\s*$`)

// String renders the tag, e.g. "[todo #3 seg 2 final]".
func (t SegmentTag) String() string {
	if t.Kind == SegmentCheckpoint {
		return fmt.Sprintf("[todo #%d seg %d]", t.TodoID, t.Seq)
	}
	return fmt.Sprintf("[todo #%d seg %d %s]", t.TodoID, t.Seq, t.Kind)
}

// AppendTo appends the tag to a worklog comment.
func (t SegmentTag) AppendTo(comment string) string {
	comment = strings.TrimRight(comment, " \n")
	if comment == "" {
		return t.String()
	}
	return comment + " " + t.String()
}

// ParseSegmentTag extracts the tag from a worklog comment.
// It returns the comment without the tag.
func ParseSegmentTag(comment string) (SegmentTag, string, bool) {
	m := segmentTagPattern.FindStringSubmatchIndex(comment)
	if m == nil {
		return SegmentTag{}, comment, false
	}
	todoID, _ := strconv.Atoi(comment[m[2]:m[3]])
	seq, _ := strconv.Atoi(comment[m[4]:m[5]])
	tag := SegmentTag{TodoID: todoID, Seq: seq}
	if m[6] >= 0 {
		tag.Kind = SegmentKind(comment[m[6]:m[7]])
	}
	return tag, strings.TrimRight(comment[:m[0]], " "), true
}

// LedgerEntry is a worklog entry matched to a todo segment.
type LedgerEntry struct {
	Entry   WorklogEntry
	Comment string // Comment without the segment tag
	Tag     SegmentTag
}

// End returns the instant the logged segment ended.
func (e LedgerEntry) End() time.Time {
	return e.Entry.Started.Add(time.Duration(e.Entry.TimeSpentSeconds) * time.Second)
}
