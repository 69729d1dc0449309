package checklist

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/runoshun/todolog/internal/domain"
)

// Token keys.
const (
	keyCreated = "created"
	keyState   = "state"
	keySince   = "since"
	keyLogged  = "logged"
	keySeg     = "seg"
)

const (
	tokenOpen  = "<!-- todo:"
	tokenClose = "-->"
)

// attr is an unrecognized key=value pair kept verbatim.
type attr struct {
	key   string
	value string
}

// ParseError reports a malformed checklist line.
// It unwraps to domain.ErrParse.
type ParseError struct {
	Reason string
	Line   int // 1-based
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Reason)
}

func (e *ParseError) Unwrap() error {
	return domain.ErrParse
}

// splitToken separates the visible text from the identity token.
// Text typed after the token is returned as suffix, without trailing blanks.
// ok is false when the line carries no token.
func splitToken(rest string) (text, inner, suffix string, ok bool, err error) {
	i := strings.LastIndex(rest, tokenOpen)
	if i < 0 {
		return rest, "", "", false, nil
	}
	body := rest[i+len(tokenOpen):]
	j := strings.Index(body, tokenClose)
	if j < 0 {
		return "", "", "", false, errors.New("unterminated todo token")
	}
	suffix = strings.TrimRight(body[j+len(tokenClose):], " \t")
	return rest[:i], body[:j], suffix, true, nil
}

// decodeToken fills the todo from the token body ("3 created=... state=...").
func decodeToken(inner string, t *domain.Todo) ([]attr, error) {
	fields := strings.Fields(inner)
	if len(fields) == 0 {
		return nil, errors.New("todo token without id")
	}
	id, err := strconv.Atoi(fields[0])
	if err != nil || id <= 0 {
		return nil, fmt.Errorf("invalid todo id %q", fields[0])
	}
	t.ID = id

	var extra []attr
	var since time.Time
	for _, f := range fields[1:] {
		key, value, ok := strings.Cut(f, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid token attribute %q", f)
		}
		switch key {
		case keyCreated:
			ts, err := time.Parse(time.RFC3339, value)
			if err != nil {
				return nil, fmt.Errorf("invalid %s %q", key, value)
			}
			t.CreatedAt = ts
		case keyState:
			state := domain.SessionState(value)
			if state == domain.SessionNotStarted || !state.IsValid() {
				return nil, fmt.Errorf("invalid %s %q", key, value)
			}
			t.Session.State = state
		case keySince:
			ts, err := time.Parse(time.RFC3339Nano, value)
			if err != nil {
				return nil, fmt.Errorf("invalid %s %q", key, value)
			}
			since = ts
		case keyLogged:
			n, err := strconv.ParseInt(value, 10, 64)
			if err != nil || n < 0 {
				return nil, fmt.Errorf("invalid %s %q", key, value)
			}
			t.Session.Accumulated = n
		case keySeg:
			n, err := strconv.Atoi(value)
			if err != nil || n < 0 {
				return nil, fmt.Errorf("invalid %s %q", key, value)
			}
			t.Session.Segments = n
		default:
			extra = append(extra, attr{key: key, value: value})
		}
	}

	if t.Session.State.IsInProgress() {
		if since.IsZero() {
			return nil, fmt.Errorf("%s todo without %s", t.Session.State, keySince)
		}
		t.Session.SegmentStart = since
	}
	t.Session.TodoID = t.ID
	return extra, nil
}

// encodeToken renders the identity token for a todo.
func encodeToken(t *domain.Todo, extra []attr) string {
	var b strings.Builder
	b.WriteString(tokenOpen)
	b.WriteString(strconv.Itoa(t.ID))
	if !t.CreatedAt.IsZero() {
		writeAttr(&b, keyCreated, t.CreatedAt.UTC().Format(time.RFC3339))
	}
	s := t.Session
	if s.State != domain.SessionNotStarted {
		writeAttr(&b, keyState, string(s.State))
	}
	if s.State.IsInProgress() && !s.SegmentStart.IsZero() {
		writeAttr(&b, keySince, s.SegmentStart.UTC().Format(time.RFC3339Nano))
	}
	if s.Accumulated > 0 || s.Segments > 0 {
		writeAttr(&b, keyLogged, strconv.FormatInt(s.Accumulated, 10))
		writeAttr(&b, keySeg, strconv.Itoa(s.Segments))
	}
	for _, a := range extra {
		writeAttr(&b, a.key, a.value)
	}
	b.WriteString(" ")
	b.WriteString(tokenClose)
	return b.String()
}

func writeAttr(b *strings.Builder, key, value string) {
	b.WriteByte(' ')
	b.WriteString(key)
	b.WriteByte('=')
	b.WriteString(value)
}
