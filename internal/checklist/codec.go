// Package checklist maps an issue description to an ordered todo list and back.
//
// Each todo is a markdown checkbox line carrying an HTML comment token with
// its stable id and session state:
//
//	- [ ] Write tests <!-- todo:3 created=2026-01-02T09:00:00Z state=active since=... -->
//
// Everything that is not a todo line is preserved byte for byte.
package checklist

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/runoshun/todolog/internal/domain"
)

var (
	// checkboxPattern matches "- [ ] text", "* [x] text", "+ [X] text".
	checkboxPattern = regexp.MustCompile(`^(\s*)([-*+]) \[([ xX])\](.*)$`)
	// headerPattern matches a todo section header.
	headerPattern = regexp.MustCompile(`(?i)^\s*(?:#{1,6}\s*todos?\b.*|todos?:\s*|\*\*todos?:?\*\*:?\s*)$`)
)

// List is the parsed todo list of one document.
type List struct {
	Todos     []*domain.Todo // Document order
	HighWater int            // Highest id ever allocated, including deleted todos
	floor     func() int     // Ids used outside the document, consulted by the first Allocate
}

// Find returns the todo with the given id, or nil.
func (l *List) Find(id int) *domain.Todo {
	for _, t := range l.Todos {
		if t.ID == id {
			return t
		}
	}
	return nil
}

// Remove drops the todo with the given id. Its id stays allocated.
func (l *List) Remove(id int) bool {
	for i, t := range l.Todos {
		if t.ID == id {
			if id > l.HighWater {
				l.HighWater = id
			}
			l.Todos = slices.Delete(l.Todos, i, i+1)
			return true
		}
	}
	return false
}

// Codec parses and renders todo lists.
type Codec struct {
	SectionHeader string // Header written when the document has no todo section yet
}

// NewCodec creates a Codec. An empty header falls back to domain.DefaultSectionHeader.
func NewCodec(sectionHeader string) *Codec {
	if strings.TrimSpace(sectionHeader) == "" {
		sectionHeader = domain.DefaultSectionHeader
	}
	return &Codec{SectionHeader: sectionHeader}
}

// Parse parses a document with the default codec.
func Parse(doc string) (*List, error) {
	return NewCodec("").Parse(doc)
}

// Render renders a list into a document with the default codec.
func Render(list *List, doc string) (string, error) {
	return NewCodec("").Render(list, doc)
}

// line is one document line without its terminator.
type line struct {
	text string
	eol  string // "\n", "\r\n" or "" for an unterminated last line
}

// entry is a parsed todo line.
type entry struct {
	indent  string
	bullet  string
	suffix  string // Text after the token, kept on rewrite
	extra   []attr
	todo    domain.Todo
	line    int
	mark    byte
	tokened bool
}

type scanned struct {
	byID      map[int]*entry
	byLine    map[int]*entry
	lines     []line
	entries   []*entry
	seq       int
	seqLine   int
	highWater int
}

// Parse returns the todos of doc in document order.
// Lines without a token get provisional ids; they are persisted on the next Render
// that changes the document.
func (c *Codec) Parse(doc string) (*List, error) {
	sc, err := scan(doc)
	if err != nil {
		return nil, err
	}
	list := &List{
		Todos:     make([]*domain.Todo, 0, len(sc.entries)),
		HighWater: sc.highWater,
	}
	for i, e := range sc.entries {
		t := e.todo
		t.Order = i + 1
		list.Todos = append(list.Todos, &t)
	}
	return list, nil
}

func scan(doc string) (*scanned, error) {
	sc := &scanned{
		lines:   splitLines(doc),
		byID:    make(map[int]*entry),
		byLine:  make(map[int]*entry),
		seqLine: -1,
	}

	inFence := false
	for i, ln := range sc.lines {
		trimmed := strings.TrimSpace(ln.text)
		if strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~") {
			inFence = !inFence
			continue
		}
		if inFence {
			continue
		}

		if m := seqPattern.FindStringSubmatch(ln.text); m != nil {
			if sc.seqLine >= 0 {
				return nil, &ParseError{Line: i + 1, Reason: "duplicate todo-seq marker"}
			}
			n, err := parseSeq(m[1])
			if err != nil {
				return nil, &ParseError{Line: i + 1, Reason: err.Error()}
			}
			sc.seq = n
			sc.seqLine = i
			continue
		}

		m := checkboxPattern.FindStringSubmatch(ln.text)
		if m == nil {
			continue
		}
		e, err := parseEntry(m, i)
		if err != nil {
			return nil, err
		}
		if e == nil {
			continue
		}
		if e.tokened {
			if prev, dup := sc.byID[e.todo.ID]; dup {
				return nil, fmt.Errorf("line %d: todo #%d also on line %d: %w",
					i+1, e.todo.ID, prev.line+1, domain.ErrDuplicateTodoID)
			}
			sc.byID[e.todo.ID] = e
		}
		sc.byLine[i] = e
		sc.entries = append(sc.entries, e)
	}

	sc.highWater = assignProvisional(sc.entries, sc.seq)
	for _, e := range sc.entries {
		if !e.tokened {
			sc.byID[e.todo.ID] = e
		}
	}
	return sc, nil
}

func parseEntry(m []string, lineIdx int) (*entry, error) {
	e := &entry{
		indent: m[1],
		bullet: m[2],
		mark:   m[3][0],
		line:   lineIdx,
	}
	e.todo.Completed = e.mark != ' '

	rest := m[4]
	if rest != "" && rest[0] != ' ' && rest[0] != '\t' {
		// "- [x]foo" is plain text, not a checkbox item.
		return nil, nil
	}

	text, inner, suffix, ok, err := splitToken(rest)
	if err != nil {
		return nil, &ParseError{Line: lineIdx + 1, Reason: err.Error()}
	}
	if ok {
		extra, err := decodeToken(inner, &e.todo)
		if err != nil {
			return nil, &ParseError{Line: lineIdx + 1, Reason: err.Error()}
		}
		e.extra = extra
		e.suffix = suffix
		e.tokened = true
	}

	e.todo.Text = strings.TrimSpace(text)
	if e.todo.Text == "" {
		return nil, &ParseError{Line: lineIdx + 1, Reason: "empty todo text"}
	}
	return e, nil
}

// Render writes list back into doc.
// Only todo lines and the counter line are touched. When nothing changed the
// document is returned as is.
func (c *Codec) Render(list *List, doc string) (string, error) {
	sc, err := scan(doc)
	if err != nil {
		return "", err
	}

	wanted := make(map[int]*domain.Todo, len(list.Todos))
	maxVisible := 0
	for _, t := range list.Todos {
		if err := validateTodo(t); err != nil {
			return "", err
		}
		if _, dup := wanted[t.ID]; dup {
			return "", fmt.Errorf("todo #%d: %w", t.ID, domain.ErrDuplicateTodoID)
		}
		wanted[t.ID] = t
		maxVisible = max(maxVisible, t.ID)
	}
	highWater := max(list.HighWater, maxVisible, sc.highWater)

	if highWater == sc.highWater && unchanged(sc.entries, list.Todos) {
		return doc, nil
	}

	eol := detectEOL(doc)
	out := make([]line, 0, len(sc.lines)+len(list.Todos)+4)
	first, last, anchor := -1, -1, -1
	var firstEntry, lastEntry *entry

	for i, ln := range sc.lines {
		if i == sc.seqLine {
			continue
		}
		e := sc.byLine[i]
		if e == nil {
			out = append(out, ln)
			continue
		}
		t, keep := wanted[e.todo.ID]
		if !keep {
			if anchor < 0 {
				anchor = len(out)
			}
			continue
		}
		text := ln.text
		if !e.tokened || !sameTodo(&e.todo, t) {
			text = formatLine(e.indent, e.bullet, markFor(e, t), t, e.extra) + e.suffix
		}
		if first < 0 {
			first, firstEntry = len(out), e
		}
		out = append(out, line{text: text, eol: ln.eol})
		last, lastEntry = len(out)-1, e
	}

	// New todos before the first kept todo are prepended, the rest appended.
	var before, after []string
	seenKept := false
	for _, t := range list.Todos {
		if _, existing := sc.byID[t.ID]; existing {
			seenKept = true
			continue
		}
		if seenKept {
			after = append(after, formatNew(lastEntry, t))
		} else {
			before = append(before, formatNew(firstEntry, t))
		}
	}

	var end int // index just past the todo region
	switch {
	case last >= 0:
		out = insertLines(out, last+1, after, eol)
		out = insertLines(out, first, before, eol)
		end = last + 1 + len(before) + len(after)
	case anchor >= 0:
		added := append(before, after...)
		out = insertLines(out, anchor, added, eol)
		end = anchor + len(added)
	default:
		added := append(before, after...)
		if len(added) == 0 {
			end = len(out)
			break
		}
		if h := findHeader(out); h >= 0 {
			out = insertLines(out, h+1, added, eol)
			end = h + 1 + len(added)
			break
		}
		section := make([]string, 0, len(added)+2)
		if len(out) > 0 && strings.TrimSpace(out[len(out)-1].text) != "" {
			section = append(section, "")
		}
		section = append(section, c.SectionHeader)
		section = append(section, added...)
		out = insertLines(out, len(out), section, eol)
		end = len(out)
	}

	// The counter is written on every change so that removing the highest id
	// by hand cannot hand it out again.
	if highWater > 0 {
		out = insertLines(out, end, []string{formatSeq(highWater)}, eol)
	}

	return joinLines(out), nil
}

func validateTodo(t *domain.Todo) error {
	if t.ID <= 0 {
		return fmt.Errorf("todo %q has no id: %w", t.Text, domain.ErrParse)
	}
	if strings.TrimSpace(t.Text) == "" {
		return fmt.Errorf("todo #%d: %w", t.ID, domain.ErrEmptyText)
	}
	if strings.ContainsAny(t.Text, "\r\n") {
		return fmt.Errorf("todo #%d: %w", t.ID, domain.ErrMultilineTodoRejected)
	}
	return nil
}

// unchanged reports whether todos equals the parsed entries, in order.
func unchanged(entries []*entry, todos []*domain.Todo) bool {
	if len(entries) != len(todos) {
		return false
	}
	for i, e := range entries {
		if !sameTodo(&e.todo, todos[i]) {
			return false
		}
	}
	return true
}

// sameTodo compares the persisted fields of two todos.
func sameTodo(a, b *domain.Todo) bool {
	return a.ID == b.ID &&
		a.Text == b.Text &&
		a.Completed == b.Completed &&
		a.CreatedAt.Equal(b.CreatedAt) &&
		a.Session.State == b.Session.State &&
		a.Session.SegmentStart.Equal(b.Session.SegmentStart) &&
		a.Session.Accumulated == b.Session.Accumulated &&
		a.Session.Segments == b.Session.Segments
}

func markFor(e *entry, t *domain.Todo) byte {
	if t.Completed == (e.mark != ' ') {
		return e.mark
	}
	if t.Completed {
		return 'x'
	}
	return ' '
}

func formatNew(tmpl *entry, t *domain.Todo) string {
	indent, bullet := "", "-"
	if tmpl != nil {
		indent, bullet = tmpl.indent, tmpl.bullet
	}
	mark := byte(' ')
	if t.Completed {
		mark = 'x'
	}
	return formatLine(indent, bullet, mark, t, nil)
}

func formatLine(indent, bullet string, mark byte, t *domain.Todo, extra []attr) string {
	return indent + bullet + " [" + string(mark) + "] " + strings.TrimSpace(t.Text) + " " + encodeToken(t, extra)
}

func findHeader(lines []line) int {
	for i, ln := range lines {
		if headerPattern.MatchString(ln.text) {
			return i
		}
	}
	return -1
}

func splitLines(doc string) []line {
	var lines []line
	for doc != "" {
		i := strings.IndexByte(doc, '\n')
		if i < 0 {
			lines = append(lines, line{text: doc})
			break
		}
		text, eol := doc[:i], "\n"
		if strings.HasSuffix(text, "\r") {
			text, eol = text[:len(text)-1], "\r\n"
		}
		lines = append(lines, line{text: text, eol: eol})
		doc = doc[i+1:]
	}
	return lines
}

func joinLines(lines []line) string {
	var b strings.Builder
	for _, ln := range lines {
		b.WriteString(ln.text)
		b.WriteString(ln.eol)
	}
	return b.String()
}

func detectEOL(doc string) string {
	if strings.Contains(doc, "\r\n") {
		return "\r\n"
	}
	return "\n"
}

// insertLines inserts texts at index at. An unterminated last line stays the
// last unterminated line.
func insertLines(out []line, at int, texts []string, eol string) []line {
	if len(texts) == 0 {
		return out
	}
	ins := make([]line, len(texts))
	for i, t := range texts {
		ins[i] = line{text: t, eol: eol}
	}
	if at == len(out) && at > 0 && out[at-1].eol == "" {
		out[at-1].eol = eol
		ins[len(ins)-1].eol = ""
	}
	return slices.Insert(out, at, ins...)
}
