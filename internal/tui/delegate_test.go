package tui

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/stretchr/testify/assert"

	"github.com/runoshun/todolog/internal/domain"
)

func TestTodoItem_TimeLabel(t *testing.T) {
	tests := []struct {
		name string
		item todoItem
		want string
	}{
		{
			name: "nothing logged",
			item: todoItem{todo: domain.Todo{ID: 1}},
			want: "",
		},
		{
			name: "paused",
			item: todoItem{todo: domain.Todo{ID: 1, Session: domain.WorkSession{State: domain.SessionPaused, Accumulated: 5400}}},
			want: "1h 30m",
		},
		{
			name: "running",
			item: todoItem{
				todo:    domain.Todo{ID: 1, Session: domain.WorkSession{State: domain.SessionCheckpointed, Accumulated: 1800}},
				elapsed: 45 * time.Second,
			},
			want: "30m +45s",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.item.timeLabel())
		})
	}
}

func TestTodoDelegate_Render(t *testing.T) {
	styles := DefaultStyles()
	d := newTodoDelegate(styles)

	items := []list.Item{
		todoItem{todo: domain.Todo{ID: 7, Text: "Write parser", Completed: true}},
		todoItem{todo: domain.Todo{ID: 8, Text: strings.Repeat("long text ", 30)}},
	}
	m := list.New(items, d, 80, 10)

	var buf bytes.Buffer
	d.Render(&buf, m, 0, items[0])
	out := buf.String()
	assert.Contains(t, out, "#7")
	assert.Contains(t, out, "[x]")
	assert.Contains(t, out, "Write parser")
	assert.Contains(t, out, "Not Started")

	buf.Reset()
	d.Render(&buf, m, 1, items[1])
	assert.Contains(t, buf.String(), "...")
	assert.NotContains(t, buf.String(), "\n")
}

func TestTodoDelegate_RenderIgnoresForeignItems(t *testing.T) {
	d := newTodoDelegate(DefaultStyles())
	m := list.New(nil, d, 80, 10)

	var buf bytes.Buffer
	d.Render(&buf, m, 0, nil)
	assert.Empty(t, buf.String())
}
