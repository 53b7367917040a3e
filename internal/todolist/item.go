package todolist

import (
	"strings"

	"github.com/idilsaglam/todolist/internal/model"
)

// EventKind says what an Item reported.
type EventKind int

const (
	EventToggle EventKind = iota + 1
	EventEdit
	EventDelete
)

func (k EventKind) String() string {
	switch k {
	case EventToggle:
		return "toggle"
	case EventEdit:
		return "edit"
	case EventDelete:
		return "delete"
	}
	return "unknown"
}

// Event is a change notification from an Item to whoever adopted it.
type Event struct {
	Kind EventKind
	Item *Item
}

// Item is one task. Its owner registers a notify callback on adoption;
// the item never refers to the List type itself.
type Item struct {
	rec    model.Record
	notify func(Event) error
}

func newItem(rec model.Record, notify func(Event) error) *Item {
	return &Item{rec: rec, notify: notify}
}

func (it *Item) ID() int64       { return it.rec.ID }
func (it *Item) Title() string   { return it.rec.Title }
func (it *Item) Completed() bool { return it.rec.Completed }

// Record returns the persisted form of the item.
func (it *Item) Record() model.Record { return it.rec }

// Attached reports whether an owner still listens to this item.
func (it *Item) Attached() bool { return it.notify != nil }

// Toggle flips the completed flag and notifies the owner.
func (it *Item) Toggle() error {
	it.rec.Completed = !it.rec.Completed
	return it.emit(EventToggle)
}

// Edit replaces the title when the trimmed input is non-empty and differs
// from the current one. It reports whether the title changed; a no-op does
// not notify.
func (it *Item) Edit(title string) (bool, error) {
	title = strings.TrimSpace(title)
	if title == "" || title == it.rec.Title {
		return false, nil
	}
	it.rec.Title = title
	return true, it.emit(EventEdit)
}

// Remove announces the deletion and then detaches the item from its owner.
func (it *Item) Remove() error {
	err := it.emit(EventDelete)
	it.notify = nil
	return err
}

func (it *Item) emit(kind EventKind) error {
	if it.notify == nil {
		return nil
	}
	return it.notify(Event{Kind: kind, Item: it})
}
