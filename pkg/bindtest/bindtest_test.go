package bindtest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-drift/mvvm/pkg/dispatch"
	"github.com/go-drift/mvvm/pkg/reactive"
)

type subjectNotifier struct {
	reactive.Subject[string]
}

func (n *subjectNotifier) OnPropertyChanged(handler func(string)) reactive.Disposable {
	return n.Subscribe(handler)
}

func TestRecorder(t *testing.T) {
	n := &subjectNotifier{}
	rec := Record(t, n)
	rec.RequireNames(t)

	n.Next("A")
	n.Next("B")
	n.Next("A")
	rec.RequireNames(t, "A", "B", "A")
	assert.Equal(t, 2, rec.Count("A"))

	rec.Reset()
	assert.Empty(t, rec.Names())

	rec.Stop()
	n.Next("C")
	assert.Empty(t, rec.Names())
	assert.Equal(t, 0, n.SubscriberCount())
}

func TestFakeFactory(t *testing.T) {
	f := &FakeFactory{Name: "home"}
	v := f.New()
	f.New()

	require.IsType(t, &FakeView{}, v)
	assert.Equal(t, "home", v.(*FakeView).Name)
	assert.Equal(t, 2, f.Created())
}

func TestUIThread(t *testing.T) {
	ui := UIThread(t)
	ran := false
	dispatch.Default().Schedule(func() { ran = true })
	assert.False(t, ran)
	assert.Equal(t, 1, ui.Drain())
	assert.True(t, ran)
}
