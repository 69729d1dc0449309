package checklist

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// seqPattern matches the counter line recording the highest id ever allocated.
var seqPattern = regexp.MustCompile(`^\s*<!--\s*todo-seq:(.*?)\s*-->\s*$`)

func formatSeq(n int) string {
	return fmt.Sprintf("<!-- todo-seq:%d -->", n)
}

func parseSeq(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid todo-seq value %q", s)
	}
	return n, nil
}

// SetFloor registers a lookup of ids in use outside the document, such as
// ids tagged in the worklog. It runs at most once, on the next Allocate.
func (l *List) SetFloor(floor func() int) {
	l.floor = floor
}

// Allocate hands out the next id.
// Ids are never reused: the high water mark covers deleted todos too.
func (l *List) Allocate() int {
	if l.floor != nil {
		l.HighWater = max(l.HighWater, l.floor())
		l.floor = nil
	}
	if m := l.maxID(); m > l.HighWater {
		l.HighWater = m
	}
	l.HighWater++
	return l.HighWater
}

func (l *List) maxID() int {
	m := 0
	for _, t := range l.Todos {
		if t.ID > m {
			m = t.ID
		}
	}
	return m
}

// assignProvisional gives untokened entries ids above every id already in use,
// in document order. Returns the resulting high water mark.
func assignProvisional(entries []*entry, seq int) int {
	high := seq
	for _, e := range entries {
		if e.tokened && e.todo.ID > high {
			high = e.todo.ID
		}
	}
	for _, e := range entries {
		if !e.tokened {
			high++
			e.todo.ID = high
			e.todo.Session.TodoID = high
		}
	}
	return high
}
