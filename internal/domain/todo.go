// Package domain contains core business entities and interfaces.
package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Todo is one checklist item embedded in an issue description.
// Fields are ordered to minimize memory padding.
type Todo struct {
	CreatedAt time.Time   // When the todo was added (zero if added by hand)
	Session   WorkSession // Time tracking state persisted next to the item
	Text      string      // Human readable text
	ID        int         // Stable identity, never reused within one issue
	Order     int         // 1-based position in the current document (display only)
	Completed bool        // Checkbox state
}

// TodoStatus is the listing status of a todo.
type TodoStatus string

const (
	TodoStatusOpen      TodoStatus = "open"      // Unchecked, no open segment
	TodoStatusCompleted TodoStatus = "completed" // Checked
	TodoStatusWIP       TodoStatus = "wip"       // Has an open segment
)

// ParseTodoStatus parses a status filter value.
func ParseTodoStatus(s string) (TodoStatus, error) {
	switch TodoStatus(strings.ToLower(strings.TrimSpace(s))) {
	case TodoStatusOpen:
		return TodoStatusOpen, nil
	case TodoStatusCompleted:
		return TodoStatusCompleted, nil
	case TodoStatusWIP:
		return TodoStatusWIP, nil
	default:
		return "", fmt.Errorf("%q: %w", s, ErrInvalidStatus)
	}
}

// Status derives the listing status. An open segment wins over the checkbox.
func (t *Todo) Status() TodoStatus {
	if t.Session.State.IsInProgress() {
		return TodoStatusWIP
	}
	if t.Completed {
		return TodoStatusCompleted
	}
	return TodoStatusOpen
}

// Ref returns the stable reference string for this todo ("#<id>").
func (t *Todo) Ref() string {
	return "#" + strconv.Itoa(t.ID)
}

// TodoRef addresses a todo either by stable id or by 1-based position.
type TodoRef struct {
	Raw   string
	ID    int // > 0 when addressing by id
	Index int // > 0 when addressing by position
}

// ParseTodoRef parses "#3" or "id:3" as an id reference and "3" as a position.
func ParseTodoRef(s string) (TodoRef, error) {
	raw := strings.TrimSpace(s)
	ref := TodoRef{Raw: raw}

	idPart, byID := strings.CutPrefix(raw, "#")
	if !byID {
		idPart, byID = strings.CutPrefix(raw, "id:")
	}

	if byID {
		n, err := strconv.Atoi(idPart)
		if err != nil || n <= 0 {
			return ref, fmt.Errorf("%q: %w", s, ErrInvalidTodoRef)
		}
		ref.ID = n
		return ref, nil
	}

	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return ref, fmt.Errorf("%q: %w", s, ErrInvalidTodoRef)
	}
	ref.Index = n
	return ref, nil
}

// String returns the reference as typed by the caller.
func (r TodoRef) String() string {
	return r.Raw
}

// Resolve finds the referenced todo in an ordered list.
// Positions resolve against the current order; ids are stable across reordering.
func (r TodoRef) Resolve(todos []*Todo) (*Todo, error) {
	if r.ID > 0 {
		for _, t := range todos {
			if t.ID == r.ID {
				return t, nil
			}
		}
		return nil, ErrTodoNotFound
	}
	if r.Index > 0 && r.Index <= len(todos) {
		return todos[r.Index-1], nil
	}
	return nil, ErrTodoNotFound
}
