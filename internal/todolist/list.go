package todolist

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/idilsaglam/todolist/internal/clock"
	"github.com/idilsaglam/todolist/internal/model"
	"github.com/idilsaglam/todolist/internal/store"
	"github.com/idilsaglam/todolist/internal/store/memstore"
)

var (
	ErrEmptyTitle = errors.New("empty title")
	ErrNotFound   = errors.New("task not found")
)

// ClearCompletedPrompt is the question put to the user before a bulk clear.
const ClearCompletedPrompt = "Do you want to delete all COMPLETED tasks ?"

// ConfirmFunc asks the user a yes/no question and blocks until answered.
type ConfirmFunc func(message string) bool

// Confirmed answers yes without asking. Use it once the UI already
// collected the answer.
func Confirmed(string) bool { return true }

// List owns an ordered collection of Items. Index 0 is shown first.
type List struct {
	items  []*Item
	filter model.Filter

	store  store.Store
	key    string
	clock  clock.Clock
	logger *log.Logger
}

type Option func(*List)

// WithStore sets where Persist writes. Defaults to an in-memory store.
func WithStore(s store.Store) Option { return func(l *List) { l.store = s } }

// WithKey overrides store.DefaultKey.
func WithKey(key string) Option { return func(l *List) { l.key = key } }

func WithClock(c clock.Clock) Option { return func(l *List) { l.clock = c } }

func WithLogger(logger *log.Logger) Option { return func(l *List) { l.logger = logger } }

// New adopts records in the given order. Nothing is persisted until the
// first change.
func New(records []model.Record, opts ...Option) *List {
	l := &List{key: store.DefaultKey}
	for _, opt := range opts {
		opt(l)
	}
	if l.store == nil {
		l.store = memstore.New()
	}
	if l.clock == nil {
		l.clock = clock.Real()
	}
	if l.logger == nil {
		l.logger = log.New(io.Discard)
	}
	l.items = make([]*Item, 0, len(records))
	for _, rec := range records {
		l.items = append(l.items, newItem(rec, l.onItemEvent))
	}
	return l
}

// onItemEvent is the single listener for every adopted item.
func (l *List) onItemEvent(ev Event) error {
	if ev.Kind == EventDelete {
		l.items = slices.DeleteFunc(l.items, func(it *Item) bool { return it == ev.Item })
	}
	l.logger.Debug("item changed", "event", ev.Kind, "id", ev.Item.ID())
	return l.Persist()
}

// Add prepends a new active task titled with the trimmed input. Its id is
// the clock's Unix milliseconds, moved forward past any id already held.
func (l *List) Add(title string) (*Item, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrEmptyTitle
	}
	it := newItem(model.Record{
		ID:    l.nextID(),
		Title: title,
	}, l.onItemEvent)
	l.items = slices.Insert(l.items, 0, it)
	return it, l.Persist()
}

func (l *List) nextID() int64 {
	id := l.clock.Now().UnixMilli()
	for l.has(id) {
		id++
	}
	return id
}

func (l *List) has(id int64) bool {
	return slices.ContainsFunc(l.items, func(it *Item) bool { return it.ID() == id })
}

// Get returns the first held item with id.
func (l *List) Get(id int64) (*Item, error) {
	for _, it := range l.items {
		if it.ID() == id {
			return it, nil
		}
	}
	return nil, fmt.Errorf("id %d: %w", id, ErrNotFound)
}

func (l *List) Toggle(id int64) (*Item, error) {
	it, err := l.Get(id)
	if err != nil {
		return nil, err
	}
	return it, it.Toggle()
}

func (l *List) Edit(id int64, title string) (bool, error) {
	it, err := l.Get(id)
	if err != nil {
		return false, err
	}
	return it.Edit(title)
}

func (l *List) Remove(id int64) error {
	it, err := l.Get(id)
	if err != nil {
		return err
	}
	return it.Remove()
}

// SetFilter changes which items Visible returns. Items are untouched.
func (l *List) SetFilter(f model.Filter) { l.filter = f }

func (l *List) Filter() model.Filter { return l.filter }

// ClearCompleted asks confirm and, on yes, drops every completed item
// while keeping the others in order. The list is persisted once for the
// whole batch. It returns how many items were removed.
func (l *List) ClearCompleted(confirm ConfirmFunc) (int, error) {
	if confirm == nil || !confirm(ClearCompletedPrompt) {
		return 0, nil
	}
	kept := make([]*Item, 0, len(l.items))
	removed := 0
	for _, it := range l.items {
		if it.Completed() {
			it.notify = nil
			removed++
			continue
		}
		kept = append(kept, it)
	}
	if removed == 0 {
		return 0, nil
	}
	l.items = kept
	return removed, l.Persist()
}

// Replace detaches every held item and adopts records instead.
func (l *List) Replace(records []model.Record) error {
	for _, it := range l.items {
		it.notify = nil
	}
	l.items = make([]*Item, 0, len(records))
	for _, rec := range records {
		l.items = append(l.items, newItem(rec, l.onItemEvent))
	}
	return l.Persist()
}

// Persist overwrites the store key with every record, in order.
func (l *List) Persist() error {
	b, err := json.Marshal(l.Records())
	if err != nil {
		return fmt.Errorf("persist: %w", err)
	}
	if err := l.store.Set(l.key, b); err != nil {
		return fmt.Errorf("persist: %w", err)
	}
	l.logger.Debug("persisted", "key", l.key, "records", len(l.items))
	return nil
}

// Items returns the held items in display order, ignoring the filter.
func (l *List) Items() []*Item {
	return slices.Clone(l.items)
}

// Visible returns the items the current filter shows.
func (l *List) Visible() []*Item {
	out := make([]*Item, 0, len(l.items))
	for _, it := range l.items {
		if l.filter.Shows(it.rec) {
			out = append(out, it)
		}
	}
	return out
}

// Records serializes every held item, in order.
func (l *List) Records() []model.Record {
	out := make([]model.Record, 0, len(l.items))
	for _, it := range l.items {
		out = append(out, it.rec)
	}
	return out
}

func (l *List) Len() int { return len(l.items) }

func (l *List) Stats() (done, pending int) {
	for _, it := range l.items {
		if it.Completed() {
			done++
		} else {
			pending++
		}
	}
	return
}
