package tui

import (
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runoshun/todolog/internal/app"
	"github.com/runoshun/todolog/internal/checklist"
	"github.com/runoshun/todolog/internal/domain"
	"github.com/runoshun/todolog/internal/testutil"
)

const testDoc = "- [ ] Write parser <!-- todo:1 -->\n- [ ] Write tests <!-- todo:2 -->\n"

func newTestModel(t *testing.T, doc string) (*Model, *testutil.MockIssueStore, *testutil.MockClock) {
	t.Helper()
	store := testutil.NewMockIssueStore()
	if doc != "" {
		store.SetDoc("PROJ-1", doc)
	}
	clock := &testutil.MockClock{NowTime: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)}
	c := app.NewWithDeps(app.Config{LogDir: t.TempDir()}, domain.NewDefaultConfig(), store, clock, nil)

	m := New(c, "PROJ-1")
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	drain(m, m.loadTodos())
	return m, store, clock
}

// drain runs a command chain until it stops producing board messages.
func drain(m *Model, cmd tea.Cmd) {
	for cmd != nil {
		msg := cmd()
		if _, ok := msg.(Msg); !ok {
			return
		}
		if _, ok := msg.(MsgTick); ok {
			return
		}
		_, cmd = m.Update(msg)
	}
}

func press(m *Model, keys string) tea.Cmd {
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(keys)})
	return cmd
}

func typeText(m *Model, text string) {
	for _, r := range text {
		m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func enter(m *Model) tea.Cmd {
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	return cmd
}

func parsedDoc(t *testing.T, store *testutil.MockIssueStore) *checklist.List {
	t.Helper()
	list, err := checklist.Parse(store.Doc("PROJ-1"))
	require.NoError(t, err)
	return list
}

func TestUpdate_MsgTodosLoaded(t *testing.T) {
	m, _, _ := newTestModel(t, testDoc)

	require.Len(t, m.todos, 2)
	todo := m.SelectedTodo()
	require.NotNil(t, todo)
	assert.Equal(t, 1, todo.ID)
}

func TestUpdate_StartCheckpointComplete(t *testing.T) {
	m, store, clock := newTestModel(t, testDoc)

	drain(m, press(m, "s"))
	assert.Equal(t, "Started todo #1", m.notice)
	assert.Equal(t, domain.SessionActive, m.SelectedTodo().Session.State)

	clock.Advance(20 * time.Minute)
	press(m, "c")
	assert.Equal(t, ModeComment, m.mode)
	assert.Equal(t, ActionCheckpoint, m.pending)
	typeText(m, "Lexer")
	drain(m, enter(m))
	assert.Equal(t, ModeNormal, m.mode)
	assert.Equal(t, "Checkpointed todo #1: logged 20m", m.notice)

	clock.Advance(10 * time.Minute)
	press(m, "d")
	assert.Equal(t, ActionComplete, m.pending)
	drain(m, enter(m))
	assert.Equal(t, "Completed todo #1: logged 10m", m.notice)

	entries := store.Entries("PROJ-1")
	require.Len(t, entries, 2)
	assert.Equal(t, "Lexer [todo #1 seg 1]", entries[0].Comment)
	assert.Equal(t, "Work on todo: Write parser [todo #1 seg 2 done]", entries[1].Comment)
	assert.True(t, parsedDoc(t, store).Todos[0].Completed)
}

func TestUpdate_Pause(t *testing.T) {
	m, store, clock := newTestModel(t, testDoc)

	drain(m, press(m, "s"))
	clock.Advance(5 * time.Minute)
	drain(m, press(m, "p"))

	assert.Equal(t, "Paused todo #1: logged 5m", m.notice)
	assert.Equal(t, domain.SessionPaused, m.SelectedTodo().Session.State)
	assert.Len(t, store.Entries("PROJ-1"), 1)
}

func TestUpdate_CancelNeedsConfirmation(t *testing.T) {
	m, store, clock := newTestModel(t, testDoc)

	drain(m, press(m, "s"))
	clock.Advance(5 * time.Minute)

	press(m, "u")
	assert.Equal(t, ModeConfirm, m.mode)
	press(m, "n")
	assert.Equal(t, ModeNormal, m.mode)
	assert.Equal(t, domain.SessionActive, m.SelectedTodo().Session.State)

	press(m, "u")
	drain(m, press(m, "y"))
	assert.Equal(t, "Cancelled todo #1, discarded 5m", m.notice)
	assert.Equal(t, domain.SessionNotStarted, m.SelectedTodo().Session.State)
	assert.Empty(t, store.Entries("PROJ-1"))
}

func TestUpdate_AddToggleRemove(t *testing.T) {
	m, store, _ := newTestModel(t, testDoc)

	press(m, "a")
	assert.Equal(t, ModeAdd, m.mode)
	typeText(m, "Update docs")
	drain(m, enter(m))
	assert.Equal(t, "Added todo #3", m.notice)
	require.Len(t, m.todos, 3)

	drain(m, press(m, "x"))
	assert.Equal(t, "Checked todo #1", m.notice)
	assert.True(t, parsedDoc(t, store).Todos[0].Completed)

	press(m, "D")
	assert.Equal(t, ActionRemove, m.pending)
	drain(m, press(m, "y"))
	assert.Equal(t, "Removed todo #1", m.notice)
	assert.Len(t, parsedDoc(t, store).Todos, 2)
}

func TestUpdate_AddEmptyTextIsIgnored(t *testing.T) {
	m, store, _ := newTestModel(t, testDoc)
	before := store.Doc("PROJ-1")

	press(m, "a")
	assert.Nil(t, enter(m))
	assert.Equal(t, ModeNormal, m.mode)
	assert.Equal(t, before, store.Doc("PROJ-1"))
}

func TestUpdate_EscapeLeavesInput(t *testing.T) {
	m, _, _ := newTestModel(t, testDoc)

	press(m, "c")
	typeText(m, "draft")
	m.Update(tea.KeyMsg{Type: tea.KeyEsc})

	assert.Equal(t, ModeNormal, m.mode)
	assert.Equal(t, ActionNone, m.pending)
	assert.Empty(t, m.textInput.Value())
}

func TestUpdate_ErrorIsShown(t *testing.T) {
	m, _, _ := newTestModel(t, testDoc)

	// Pausing a todo that was never started fails.
	drain(m, press(m, "p"))
	require.Error(t, m.err)
	assert.True(t, errors.Is(m.err, domain.ErrNotActive))

	m.Update(MsgClearError{})
	assert.NoError(t, m.err)
}

func TestUpdate_TickAdvancesRunningSegment(t *testing.T) {
	m, _, clock := newTestModel(t, testDoc)

	drain(m, press(m, "s"))
	clock.Advance(90 * time.Second)
	_, cmd := m.Update(MsgTick{Now: clock.Now()})

	assert.NotNil(t, cmd)
	item, ok := m.todoList.SelectedItem().(todoItem)
	require.True(t, ok)
	assert.Equal(t, 90*time.Second, item.elapsed)
}

func TestUpdate_HelpMode(t *testing.T) {
	m, _, _ := newTestModel(t, testDoc)

	press(m, "?")
	assert.Equal(t, ModeHelp, m.mode)
	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, ModeNormal, m.mode)
}

func TestUpdate_Quit(t *testing.T) {
	m, _, _ := newTestModel(t, testDoc)

	cmd := press(m, "q")
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestUpdate_NavigationMovesSelection(t *testing.T) {
	m, _, _ := newTestModel(t, testDoc)

	press(m, "j")
	assert.Equal(t, 2, m.SelectedTodo().ID)
	press(m, "k")
	assert.Equal(t, 1, m.SelectedTodo().ID)
}
