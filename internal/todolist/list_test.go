package todolist

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idilsaglam/todolist/internal/clock"
	"github.com/idilsaglam/todolist/internal/loader"
	"github.com/idilsaglam/todolist/internal/model"
	"github.com/idilsaglam/todolist/internal/store"
	"github.com/idilsaglam/todolist/internal/store/memstore"
)

var start = time.UnixMilli(1_700_000_000_000)

func newTestList(t *testing.T, recs ...model.Record) (*List, *memstore.Store, *clock.Fake) {
	t.Helper()
	st := memstore.New()
	clk := clock.NewFake(start)
	return New(recs, WithStore(st), WithClock(clk)), st, clk
}

func persisted(t *testing.T, st *memstore.Store) []model.Record {
	t.Helper()
	b, ok, err := st.Get(store.DefaultKey)
	require.NoError(t, err)
	require.True(t, ok, "nothing persisted")
	recs, err := loader.Project(b)
	require.NoError(t, err)
	return recs
}

func seed() []model.Record {
	return []model.Record{
		{ID: 1, Title: "one"},
		{ID: 2, Title: "two", Completed: true},
		{ID: 3, Title: "three"},
		{ID: 4, Title: "four", Completed: true},
	}
}

func TestNew_KeepsOrderAndDoesNotPersist(t *testing.T) {
	l, st, _ := newTestList(t, seed()...)

	assert.Equal(t, seed(), l.Records())
	assert.Equal(t, 0, st.Writes())
}

func TestAdd_PrependsAndPersists(t *testing.T) {
	l, st, _ := newTestList(t, seed()...)

	it, err := l.Add("  Walk dog ")
	require.NoError(t, err)
	assert.Equal(t, "Walk dog", it.Title())
	assert.False(t, it.Completed())
	assert.Equal(t, start.UnixMilli(), it.ID())

	assert.Equal(t, len(seed())+1, l.Len())
	assert.Same(t, it, l.Items()[0])
	assert.Equal(t, l.Records(), persisted(t, st))
	assert.Equal(t, 1, st.Writes())
}

func TestAdd_BlankIsRejected(t *testing.T) {
	for _, title := range []string{"", "   ", "\t\n"} {
		l, st, _ := newTestList(t, seed()...)

		it, err := l.Add(title)
		assert.ErrorIs(t, err, ErrEmptyTitle)
		assert.Nil(t, it)
		assert.Equal(t, len(seed()), l.Len())
		assert.Equal(t, 0, st.Writes())
	}
}

func TestAdd_IDsFollowClock(t *testing.T) {
	l, _, clk := newTestList(t)

	a, _ := l.Add("a")
	clk.Advance(3 * time.Millisecond)
	b, _ := l.Add("b")

	assert.Equal(t, a.ID()+3, b.ID())
	assert.Equal(t, []string{"b", "a"}, titles(l.Items()))
}

func TestAdd_SameMillisecondGetsNextFreeID(t *testing.T) {
	l, st, _ := newTestList(t, model.Record{ID: start.UnixMilli() + 1, Title: "seeded"})

	a, err := l.Add("a")
	require.NoError(t, err)
	b, err := l.Add("b")
	require.NoError(t, err)

	assert.Equal(t, start.UnixMilli(), a.ID())
	assert.Equal(t, start.UnixMilli()+2, b.ID())
	// the persisted list must load back
	assert.Len(t, persisted(t, st), 3)
}

func TestToggle_FlipsOnlyTarget(t *testing.T) {
	l, st, _ := newTestList(t, seed()...)

	_, err := l.Toggle(3)
	require.NoError(t, err)

	want := seed()
	want[2].Completed = true
	assert.Equal(t, want, l.Records())
	assert.Equal(t, want, persisted(t, st))

	_, err = l.Toggle(3)
	require.NoError(t, err)
	assert.Equal(t, seed(), l.Records())
	assert.Equal(t, 2, st.Writes())
}

func TestToggle_UnknownID(t *testing.T) {
	l, st, _ := newTestList(t, seed()...)

	_, err := l.Toggle(99)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 0, st.Writes())
}

func TestEdit_IdenticalDoesNotPersist(t *testing.T) {
	l, st, _ := newTestList(t, seed()...)

	changed, err := l.Edit(1, " one ")
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, seed(), l.Records())
	assert.Equal(t, 0, st.Writes())
}

func TestEdit_EmptyKeepsTitle(t *testing.T) {
	l, st, _ := newTestList(t, seed()...)

	changed, err := l.Edit(1, "")
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, "one", l.Items()[0].Title())
	assert.Equal(t, 0, st.Writes())
}

func TestEdit_ChangesAndPersists(t *testing.T) {
	l, st, _ := newTestList(t, seed()...)

	changed, err := l.Edit(2, "deux")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, "deux", persisted(t, st)[1].Title)
	assert.True(t, persisted(t, st)[1].Completed)
}

func TestRemove_ByIdentity(t *testing.T) {
	// two records sharing a value; only the removed pointer goes
	dup := []model.Record{{ID: 5, Title: "same"}, {ID: 5, Title: "same"}}
	l, st, _ := newTestList(t, dup...)

	second := l.Items()[1]
	require.NoError(t, second.Remove())

	require.Equal(t, 1, l.Len())
	assert.NotSame(t, second, l.Items()[0])
	assert.Len(t, persisted(t, st), 1)
}

func TestRemove_ByID(t *testing.T) {
	l, st, _ := newTestList(t, seed()...)

	require.NoError(t, l.Remove(2))
	assert.Equal(t, 3, l.Len())
	_, err := l.Get(2)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, l.Records(), persisted(t, st))

	assert.ErrorIs(t, l.Remove(2), ErrNotFound)
}

func TestSetFilter_DisplayOnly(t *testing.T) {
	l, st, _ := newTestList(t, seed()...)

	l.SetFilter(model.FilterActive)
	assert.Equal(t, model.FilterActive, l.Filter())
	assert.Equal(t, []string{"one", "three"}, titles(l.Visible()))

	l.SetFilter(model.FilterCompleted)
	assert.Equal(t, []string{"two", "four"}, titles(l.Visible()))

	l.SetFilter(model.FilterAll)
	assert.Len(t, l.Visible(), 4)

	assert.Equal(t, seed(), l.Records())
	assert.Equal(t, 0, st.Writes())
}

func TestClearCompleted_Declined(t *testing.T) {
	l, st, _ := newTestList(t, seed()...)

	var asked string
	n, err := l.ClearCompleted(func(msg string) bool { asked = msg; return false })
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, ClearCompletedPrompt, asked)
	assert.Equal(t, seed(), l.Records())
	assert.Equal(t, 0, st.Writes())

	n, err = l.ClearCompleted(nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestClearCompleted_KeepsActiveInOrder(t *testing.T) {
	l, st, _ := newTestList(t, seed()...)
	removed := l.Items()[1]

	n, err := l.ClearCompleted(Confirmed)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	want := []model.Record{{ID: 1, Title: "one"}, {ID: 3, Title: "three"}}
	assert.Equal(t, want, l.Records())
	assert.Equal(t, want, persisted(t, st))
	assert.Equal(t, 1, st.Writes(), "one persist per batch")
	assert.False(t, removed.Attached())
}

func TestClearCompleted_NothingToClear(t *testing.T) {
	l, st, _ := newTestList(t, model.Record{ID: 1, Title: "one"})

	n, err := l.ClearCompleted(Confirmed)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, 0, st.Writes())
}

func TestPersist_RoundTrip(t *testing.T) {
	l, st, _ := newTestList(t, seed()...)
	_, err := l.Add("five")
	require.NoError(t, err)

	reloaded := New(persisted(t, st))
	assert.Equal(t, l.Records(), reloaded.Records())
}

func TestPersist_EmptyListWritesArray(t *testing.T) {
	l, st, _ := newTestList(t)
	require.NoError(t, l.Persist())

	b, _, _ := st.Get(store.DefaultKey)
	assert.Equal(t, "[]", string(b))
}

func TestPersist_CustomKey(t *testing.T) {
	st := memstore.New()
	l := New(nil, WithStore(st), WithKey("other"))
	_, err := l.Add("x")
	require.NoError(t, err)

	_, ok, _ := st.Get("other")
	assert.True(t, ok)
	_, ok, _ = st.Get(store.DefaultKey)
	assert.False(t, ok)
}

type failingStore struct{ *memstore.Store }

var errDiskFull = errors.New("disk full")

func (failingStore) Set(string, []byte) error { return errDiskFull }

func TestPersist_ErrorSurfaces(t *testing.T) {
	l := New(seed(), WithStore(failingStore{memstore.New()}))

	_, err := l.Add("x")
	assert.ErrorIs(t, err, errDiskFull)
	// the mutation is kept in memory
	assert.Equal(t, 5, l.Len())

	_, err = l.Toggle(1)
	assert.ErrorIs(t, err, errDiskFull)
}

func TestReplace(t *testing.T) {
	l, st, _ := newTestList(t, seed()...)
	old := l.Items()[0]

	repl := []model.Record{{ID: 9, Title: "nine"}}
	require.NoError(t, l.Replace(repl))
	assert.Equal(t, repl, l.Records())
	assert.Equal(t, repl, persisted(t, st))
	assert.False(t, old.Attached())
}

func TestStats(t *testing.T) {
	l, _, _ := newTestList(t, seed()...)
	done, pending := l.Stats()
	assert.Equal(t, 2, done)
	assert.Equal(t, 2, pending)
}

func TestScenario_MilkAndDog(t *testing.T) {
	l, st, _ := newTestList(t, model.Record{ID: 1, Title: "Buy milk"})

	dog, err := l.Add("Walk dog")
	require.NoError(t, err)
	assert.Equal(t, []model.Record{
		{ID: dog.ID(), Title: "Walk dog"},
		{ID: 1, Title: "Buy milk"},
	}, l.Records())

	milk, err := l.Toggle(1)
	require.NoError(t, err)
	assert.True(t, milk.Completed())

	_, err = l.ClearCompleted(Confirmed)
	require.NoError(t, err)
	want := []model.Record{{ID: dog.ID(), Title: "Walk dog"}}
	assert.Equal(t, want, l.Records())
	assert.Equal(t, want, persisted(t, st))
}

func titles(items []*Item) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.Title())
	}
	return out
}
