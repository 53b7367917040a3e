package todolist

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idilsaglam/todolist/internal/model"
)

type recorder struct {
	events []Event
	err    error
}

func (r *recorder) notify(ev Event) error {
	r.events = append(r.events, ev)
	return r.err
}

func TestItem_ToggleNotifies(t *testing.T) {
	rec := &recorder{}
	it := newItem(model.Record{ID: 1, Title: "Buy milk"}, rec.notify)

	require.NoError(t, it.Toggle())
	assert.True(t, it.Completed())
	require.Len(t, rec.events, 1)
	assert.Equal(t, EventToggle, rec.events[0].Kind)
	assert.Same(t, it, rec.events[0].Item)

	require.NoError(t, it.Toggle())
	assert.False(t, it.Completed())
}

func TestItem_Edit(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantTitle string
		changed   bool
	}{
		{"new title", "Buy oat milk", "Buy oat milk", true},
		{"trimmed", "  Walk dog  ", "Walk dog", true},
		{"empty", "", "Buy milk", false},
		{"blank", "   ", "Buy milk", false},
		{"identical", "Buy milk", "Buy milk", false},
		{"identical after trim", " Buy milk\t", "Buy milk", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recorder{}
			it := newItem(model.Record{ID: 1, Title: "Buy milk"}, rec.notify)

			changed, err := it.Edit(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.changed, changed)
			assert.Equal(t, tt.wantTitle, it.Title())
			if tt.changed {
				require.Len(t, rec.events, 1)
				assert.Equal(t, EventEdit, rec.events[0].Kind)
			} else {
				assert.Empty(t, rec.events)
			}
		})
	}
}

func TestItem_RemoveDetaches(t *testing.T) {
	rec := &recorder{}
	it := newItem(model.Record{ID: 1, Title: "Buy milk"}, rec.notify)

	require.NoError(t, it.Remove())
	assert.False(t, it.Attached())
	require.Len(t, rec.events, 1)
	assert.Equal(t, EventDelete, rec.events[0].Kind)

	// detached items no longer report
	require.NoError(t, it.Toggle())
	assert.Len(t, rec.events, 1)
}

func TestItem_NotifyErrorIsReturned(t *testing.T) {
	boom := errors.New("boom")
	rec := &recorder{err: boom}
	it := newItem(model.Record{ID: 1, Title: "Buy milk"}, rec.notify)

	assert.ErrorIs(t, it.Toggle(), boom)
	// state still changed
	assert.True(t, it.Completed())
}

func TestItem_Record(t *testing.T) {
	r := model.Record{ID: 7, Title: "x", Completed: true}
	it := newItem(r, nil)
	assert.Equal(t, r, it.Record())
}

func TestEventKind_String(t *testing.T) {
	assert.Equal(t, "toggle", EventToggle.String())
	assert.Equal(t, "edit", EventEdit.String())
	assert.Equal(t, "delete", EventDelete.String())
	assert.Equal(t, "unknown", EventKind(0).String())
}
