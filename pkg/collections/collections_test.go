package collections

import (
	"cmp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-drift/mvvm/pkg/dispatch"
)

func TestChangeReasonString(t *testing.T) {
	assert.Equal(t, "add", Add.String())
	assert.Equal(t, "remove", Remove.String())
	assert.Equal(t, "replace", Replace.String())
	assert.Equal(t, "move", Move.String())
	assert.Equal(t, "unknown", ChangeReason(99).String())
}

func TestSourceListMutations(t *testing.T) {
	l := NewSourceList("a", "b")
	l.Add("c", "d")
	require.True(t, l.Insert(0, "z"))
	assert.False(t, l.Insert(10, "x"))
	assert.Equal(t, []string{"z", "a", "b", "c", "d"}, l.Items())

	removed, ok := l.RemoveAt(1)
	require.True(t, ok)
	assert.Equal(t, "a", removed)
	_, ok = l.RemoveAt(42)
	assert.False(t, ok)

	require.True(t, l.Replace(0, "y"))
	require.True(t, l.Move(0, 3))
	assert.False(t, l.Move(0, 9))
	assert.Equal(t, []string{"b", "c", "d", "y"}, l.Items())

	assert.Equal(t, 2, l.RemoveFunc(func(s string) bool { return s < "d" }))
	assert.Equal(t, []string{"d", "y"}, l.Items())

	l.Clear()
	assert.Equal(t, 0, l.Len())
}

func TestBindListTracksSource(t *testing.T) {
	l := NewSourceList(1, 2, 3)
	rows, sub := BindList(TransformList(l.Connect(), func(v int) string {
		return strings.Repeat("*", v)
	}), nil)
	defer sub.Dispose()

	assert.Equal(t, []string{"*", "**", "***"}, rows.Items())

	l.Add(4)
	l.Insert(0, 0)
	l.RemoveAt(2)
	l.Replace(0, 5)
	l.Move(0, 3)
	assert.Equal(t, mapInts(l.Items()), rows.Items())
	assert.Equal(t, 4, rows.Len())
	assert.Equal(t, "*", rows.At(0))

	l.Clear()
	assert.Equal(t, 0, rows.Len())
}

func TestBindListStopsAfterDispose(t *testing.T) {
	l := NewSourceList[int]()
	rows, sub := BindList(l.Connect(), dispatch.Immediate)
	l.Add(1)
	sub.Dispose()
	l.Add(2)

	assert.Equal(t, []int{1}, rows.Items())
}

func TestBindListThroughQueue(t *testing.T) {
	q := dispatch.NewQueue(0)
	l := NewSourceList("a")
	rows, sub := BindList(l.Connect(), q)
	defer sub.Dispose()

	l.Add("b")
	assert.Equal(t, 0, rows.Len(), "projection updates on the scheduler")
	q.Drain()
	assert.Equal(t, []string{"a", "b"}, rows.Items())
}

func TestReadOnlyListChanges(t *testing.T) {
	l := NewSourceList[string]()
	rows, sub := BindList(l.Connect(), nil)
	defer sub.Dispose()

	var got []ChangeSet[string]
	rows.Changes().Subscribe(func(cs ChangeSet[string]) { got = append(got, cs) })

	l.Add("x")
	l.Replace(0, "y")

	require.Len(t, got, 2)
	assert.Equal(t, Change[string]{Reason: Add, Item: "x", Index: 0}, got[0][0])
	assert.Equal(t, Change[string]{Reason: Replace, Item: "y", Previous: "x", Index: 0}, got[1][0])
}

func TestConnectDeliversSnapshotOnce(t *testing.T) {
	l := NewSourceList(1, 2)
	var sets []ChangeSet[int]
	sub := l.Connect().Subscribe(func(cs ChangeSet[int]) { sets = append(sets, cs) })
	defer sub.Dispose()

	l.Add(3)
	require.Len(t, sets, 2)
	assert.Len(t, sets[0], 2)
	assert.Equal(t, 3, sets[1][0].Item)
	assert.Equal(t, 2, sets[1][0].Index)
}

type person struct {
	ID   int
	Name string
	Age  int
}

func personKey(p person) int { return p.ID }

func TestSourceCacheMutations(t *testing.T) {
	c := NewSourceCache(personKey)
	c.AddOrUpdate(person{1, "ann", 30}, person{2, "bob", 20})
	c.AddOrUpdate(person{1, "ann", 31})

	v, ok := c.Lookup(1)
	require.True(t, ok)
	assert.Equal(t, 31, v.Age)
	assert.Equal(t, []int{1, 2}, c.Keys())
	assert.Equal(t, 2, c.Len())

	assert.Equal(t, 1, c.Remove(1, 99))
	assert.Equal(t, []person{{2, "bob", 20}}, c.Items())

	c.Clear()
	assert.Equal(t, 0, c.Len())
}

func TestBindCacheInsertionOrder(t *testing.T) {
	c := NewSourceCache(personKey)
	c.AddOrUpdate(person{3, "cat", 40}, person{1, "ann", 30})

	names, sub := BindCache(TransformCache(c.Connect(), func(p person) string { return p.Name }), nil, nil)
	defer sub.Dispose()
	assert.Equal(t, []string{"cat", "ann"}, names.Items())

	c.AddOrUpdate(person{2, "bob", 20})
	c.AddOrUpdate(person{3, "cody", 41})
	assert.Equal(t, []string{"cody", "ann", "bob"}, names.Items(), "updates keep their position")

	c.Remove(3)
	c.AddOrUpdate(person{3, "cat", 40})
	assert.Equal(t, []string{"ann", "bob", "cat"}, names.Items(), "re-added keys go last")
}

func TestBindCacheSorted(t *testing.T) {
	c := NewSourceCache(personKey)
	c.AddOrUpdate(person{1, "ann", 30}, person{2, "bob", 20}, person{3, "cat", 40})

	byAge := func(a, b person) int { return cmp.Compare(a.Age, b.Age) }
	people, sub := BindCache(c.Connect(), byAge, dispatch.Immediate)
	defer sub.Dispose()
	assert.Equal(t, []string{"bob", "ann", "cat"}, names(people.Items()))

	var last ChangeSet[person]
	people.Changes().Subscribe(func(cs ChangeSet[person]) { last = cs })

	c.AddOrUpdate(person{2, "bob", 50})
	assert.Equal(t, []string{"ann", "cat", "bob"}, names(people.Items()))
	require.Len(t, last, 1)
	assert.Equal(t, Move, last[0].Reason)
	assert.Equal(t, 0, last[0].PreviousIndex)
	assert.Equal(t, 2, last[0].Index)

	c.AddOrUpdate(person{1, "ann", 31})
	assert.Equal(t, Replace, last[0].Reason)

	c.AddOrUpdate(person{4, "dan", 30}, person{5, "eve", 30})
	assert.Equal(t, []string{"dan", "eve", "ann", "cat", "bob"}, names(people.Items()), "ties keep insertion order")

	c.Remove(3)
	assert.Equal(t, []string{"dan", "eve", "ann", "bob"}, names(people.Items()))
}

func mapInts(in []int) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.Repeat("*", v)
	}
	return out
}

func names(in []person) []string {
	out := make([]string, len(in))
	for i, p := range in {
		out[i] = p.Name
	}
	return out
}
