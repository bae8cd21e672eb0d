package viewmodel

import (
	"cmp"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/go-drift/mvvm/pkg/bindtest"
	"github.com/go-drift/mvvm/pkg/collections"
	"github.com/go-drift/mvvm/pkg/dispatch"
	"github.com/go-drift/mvvm/pkg/errors"
	"github.com/go-drift/mvvm/pkg/reactive"
	"github.com/go-drift/mvvm/pkg/store"
)

type model struct {
	Count int
	Name  string
	Tags  []string
}

// subjectStore is a store without Reemit whose subscriber count is visible.
type subjectStore[M any] struct {
	mu      sync.Mutex
	model   M
	changes reactive.Subject[M]
}

func (s *subjectStore[M]) Model() M {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.model
}

func (s *subjectStore[M]) Changes() reactive.Observable[M] { return &s.changes }

func (s *subjectStore[M]) Set(m M) {
	s.mu.Lock()
	s.model = m
	s.mu.Unlock()
	s.changes.Next(m)
}

type counterVM struct {
	Base
	store store.Store[model]
}

func (vm *counterVM) Count() int {
	return MustBind(vm, vm.store, func(m model) int { return m.Count }, "Count")
}

func (vm *counterVM) Name() string {
	return MustBind(vm, vm.store, func(m model) string { return m.Name }, "Name")
}

func TestCounterScenario(t *testing.T) {
	s := store.NewMemory(model{})
	vm := &counterVM{store: s}
	rec := bindtest.Record(t, vm)

	assert.Equal(t, 0, vm.Count())

	s.Set(model{Count: 0})
	rec.RequireNames(t)

	s.Set(model{Count: 1})
	rec.RequireNames(t, "Count")
	assert.Equal(t, 1, vm.Count())

	s.Set(model{Count: 1})
	rec.RequireNames(t, "Count")

	vm.Dispose()
	s.Set(model{Count: 2})
	rec.RequireNames(t, "Count")
}

func TestBindIsIdempotent(t *testing.T) {
	s := &subjectStore[model]{}
	vm := &counterVM{store: s}

	for range 3 {
		vm.Count()
	}
	vm.Name()

	assert.Equal(t, 2, vm.SubscriptionCount())
	assert.Equal(t, 2, s.changes.SubscriberCount())
	assert.True(t, vm.HasBinding("Count"))
	assert.False(t, vm.HasBinding("Tags"))
}

func TestBindReturnsCurrentModel(t *testing.T) {
	s := &subjectStore[model]{model: model{Count: 7}}
	vm := &counterVM{store: s}
	assert.Equal(t, 7, vm.Count())

	s.Set(model{Count: 8})
	assert.Equal(t, 8, vm.Count())
}

func TestBindSignalsOnlyDistinctValues(t *testing.T) {
	s := &subjectStore[model]{}
	vm := &counterVM{store: s}
	rec := bindtest.Record(t, vm)
	vm.Count()
	vm.Name()

	s.Set(model{Name: "a"})
	s.Set(model{Name: "a", Count: 1})
	s.Set(model{Name: "a", Count: 1})
	s.Set(model{Name: "b", Count: 1})

	rec.RequireNames(t, "Name", "Count", "Name")
}

func TestDisposeReleasesEverything(t *testing.T) {
	s := &subjectStore[model]{}
	vm := &counterVM{store: s}
	rec := bindtest.Record(t, vm)
	vm.Count()

	side := 0
	require.NoError(t, Subscribe(vm, s.Changes(), func(model) { side++ }))
	assert.Equal(t, 2, s.changes.SubscriberCount())

	vm.Dispose()
	assert.NotPanics(t, vm.Dispose)

	s.Set(model{Count: 1})
	rec.RequireNames(t)
	assert.Equal(t, 0, side)
	assert.Equal(t, 0, s.changes.SubscriberCount())
	assert.Equal(t, 0, vm.SubscriptionCount())
	assert.True(t, vm.IsDisposed())
}

func TestDisposeOrder(t *testing.T) {
	s := &subjectStore[model]{}
	vm := &counterVM{store: s}
	vm.Count()

	var order []string
	require.NoError(t, vm.AddDisposable(reactive.DisposableFunc(func() {
		order = append(order, "first:"+strconv.Itoa(s.changes.SubscriberCount()))
	})))
	require.NoError(t, vm.AddDisposable(reactive.DisposableFunc(func() {
		order = append(order, "second:"+strconv.Itoa(s.changes.SubscriberCount()))
	})))

	vm.Dispose()
	assert.Equal(t, []string{"second:1", "first:1"}, order, "disposables run before bindings, newest first")
}

func TestUseAfterDispose(t *testing.T) {
	s := store.NewMemory(model{Count: 3})
	vm := &counterVM{store: s}
	vm.Dispose()

	_, err := Bind(vm, s, func(m model) int { return m.Count }, "Count")
	assert.ErrorIs(t, err, errors.ErrDisposed)
	var de *errors.DisposedError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "Count", de.Property)

	_, err = BindOnChange(vm, s, func(m model) int { return m.Count }, func(m model) model { return m }, "Model")
	assert.ErrorIs(t, err, errors.ErrDisposed)

	_, err = BindSourceList[int, int](vm, collections.NewSourceList[int](), nil, "Rows")
	assert.ErrorIs(t, err, errors.ErrDisposed)

	assert.ErrorIs(t, Subscribe(vm, s.Changes(), func(model) {}), errors.ErrDisposed)

	released := false
	err = vm.AddDisposable(reactive.DisposableFunc(func() { released = true }))
	assert.ErrorIs(t, err, errors.ErrDisposed)
	assert.True(t, released, "resources handed to a disposed view-model are released")

	assert.Panics(t, func() { vm.Count() })
}

func TestBindRequiresPropertyName(t *testing.T) {
	vm := &counterVM{store: store.NewMemory(model{})}
	_, err := Bind(vm, vm.store, func(m model) int { return m.Count }, "")
	assert.ErrorIs(t, err, errors.ErrPropertyName)
	assert.Equal(t, 0, vm.SubscriptionCount())
}

func TestRebindWithOtherTypeFails(t *testing.T) {
	vm := &counterVM{store: store.NewMemory(model{})}
	vm.Count()

	_, err := Bind(vm, vm.store, func(m model) string { return m.Name }, "Count")
	assert.ErrorIs(t, err, errors.ErrTypeMismatch)
	assert.Equal(t, 1, vm.SubscriptionCount())
}

func TestBindFunc(t *testing.T) {
	s := &subjectStore[model]{model: model{Tags: []string{"a"}}}
	vm := &counterVM{store: s}
	rec := bindtest.Record(t, vm)

	tags, err := BindFunc(vm, s, func(m model) []string { return m.Tags }, nil, "Tags")
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, tags)

	s.Set(model{Tags: []string{"a"}})
	rec.RequireNames(t)
	s.Set(model{Tags: []string{"a", "b"}})
	rec.RequireNames(t, "Tags")
}

func TestBindOnChangeUsesKey(t *testing.T) {
	s := &subjectStore[model]{}
	vm := &counterVM{store: s}
	rec := bindtest.Record(t, vm)

	summary := func() string {
		return MustBindOnChange(vm, s, func(m model) int { return m.Count }, func(m model) string {
			return m.Name + ":" + strconv.Itoa(m.Count)
		}, "Summary")
	}
	assert.Equal(t, ":0", summary())

	s.Set(model{Name: "x"})
	rec.RequireNames(t)
	assert.Equal(t, "x:0", summary())

	s.Set(model{Name: "x", Count: 2})
	rec.RequireNames(t, "Summary")
}

func TestBindOnChangePrimesStoreOnce(t *testing.T) {
	s := store.NewMemory(model{Count: 5})
	vm := &counterVM{store: s}
	rec := bindtest.Record(t, vm)

	var ticks []int
	require.NoError(t, Subscribe(vm, s.Changes(), func(m model) { ticks = append(ticks, m.Count) }))

	key := func(m model) int { return m.Count }
	project := func(m model) int { return m.Count * 10 }
	v, err := BindOnChange(vm, s, key, project, "Tens")
	require.NoError(t, err)
	assert.Equal(t, 50, v)
	assert.Equal(t, []int{5}, ticks, "side subscriber observes the priming tick")
	rec.RequireNames(t)

	_, err = BindOnChange(vm, s, key, project, "Tens")
	require.NoError(t, err)
	assert.Equal(t, []int{5}, ticks, "only the first bind primes")
}

func TestSignalsRaisedOnScheduler(t *testing.T) {
	s := store.NewMemory(model{})
	q := dispatch.NewQueue(0)
	vm := &counterVM{store: s}
	vm.SetScheduler(q)
	rec := bindtest.Record(t, vm)
	vm.Count()

	s.Set(model{Count: 1})
	rec.RequireNames(t)
	assert.Equal(t, 1, q.Drain())
	rec.RequireNames(t, "Count")

	s.Set(model{Count: 2})
	vm.Dispose()
	q.Drain()
	rec.RequireNames(t, "Count")
}

func TestBackgroundUpdatesMarshaledToUIThread(t *testing.T) {
	ui := bindtest.UIThread(t)
	s := store.NewMemory(model{})
	vm := &counterVM{store: s}
	rec := bindtest.Record(t, vm)
	vm.Count()

	var g errgroup.Group
	g.Go(func() error {
		for i := 1; i <= 100; i++ {
			s.Set(model{Count: i})
		}
		return nil
	})
	require.NoError(t, g.Wait())
	rec.RequireNames(t)

	ui.Drain()
	assert.Equal(t, 100, rec.Count("Count"))
	assert.Equal(t, 100, vm.Count())
}

func TestSubscribeCreatesNewSubscriptionEachCall(t *testing.T) {
	s := &subjectStore[model]{}
	vm := &counterVM{store: s}

	var got []int
	handler := func(m model) { got = append(got, m.Count) }
	require.NoError(t, Subscribe(vm, s.Changes(), handler))
	require.NoError(t, Subscribe(vm, s.Changes(), handler))

	s.Set(model{Count: 1})
	assert.Equal(t, []int{1, 1}, got)
	assert.Equal(t, 0, vm.SubscriptionCount(), "Subscribe is not keyed by property")
}

type tags []string

type item struct {
	ID    int
	Title string
	Rank  int
}

func TestBindSourceList(t *testing.T) {
	vm := &counterVM{}
	src := collections.NewSourceList(1, 2)

	rows, err := BindSourceList(vm, src, strconv.Itoa, "Rows")
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, rows.Items())

	again := MustBindSourceList(vm, src, strconv.Itoa, "Rows")
	assert.Same(t, rows, again)
	assert.Equal(t, 1, vm.SubscriptionCount())

	src.Add(3)
	src.RemoveAt(0)
	assert.Equal(t, []string{"2", "3"}, rows.Items())

	vm.Dispose()
	src.Add(4)
	assert.Equal(t, []string{"2", "3"}, rows.Items())
}

func TestBindSourceListConversion(t *testing.T) {
	vm := &counterVM{}
	src := collections.NewSourceList(tags{"a"}, tags{"b", "c"})

	rows, err := BindSourceList[tags, []string](vm, src, nil, "Rows")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"a"}, {"b", "c"}}, rows.Items())

	anys, err := BindSourceList[tags, any](vm, src, nil, "Any")
	require.NoError(t, err)
	assert.Equal(t, 2, anys.Len())

	_, err = BindSourceList[tags, int](vm, src, nil, "Bad")
	var tm *errors.TypeMismatchError
	require.ErrorAs(t, err, &tm)
	assert.Equal(t, "int", tm.Want)
	assert.False(t, vm.HasBinding("Bad"))
}

func TestBindSourceCache(t *testing.T) {
	vm := &counterVM{}
	src := collections.NewSourceCache(func(it item) int { return it.ID })
	src.AddOrUpdate(item{1, "one", 3}, item{2, "two", 1})

	byRank := func(a, b item) int { return cmp.Compare(a.Rank, b.Rank) }
	sorted, err := BindSourceCache[int, item, item](vm, src, nil, byRank, "Sorted")
	require.NoError(t, err)
	titles, err := BindSourceCache(vm, src, func(it item) string { return it.Title }, nil, "Titles")
	require.NoError(t, err)

	src.AddOrUpdate(item{3, "three", 2})
	assert.Equal(t, []string{"one", "two", "three"}, titles.Items())
	assert.Equal(t, []int{2, 3, 1}, ids(sorted.Items()))

	src.Remove(2)
	assert.Equal(t, []string{"one", "three"}, titles.Items())

	_, err = BindSourceCache[int, item, string](vm, src, nil, nil, "Bad")
	assert.ErrorIs(t, err, errors.ErrTypeMismatch)

	vm.Dispose()
	src.Clear()
	assert.Equal(t, 2, titles.Len())
}

func ids(in []item) []int {
	out := make([]int, len(in))
	for i, it := range in {
		out[i] = it.ID
	}
	return out
}
