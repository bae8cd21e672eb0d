// Package bindtest provides helpers for testing view-models and their
// composition.
//
// # Quick Start
//
// Record property-changed signals and drive the UI thread by hand:
//
//	func TestCounter(t *testing.T) {
//	    ui := bindtest.UIThread(t)
//	    vm := NewCounterViewModel(store)
//	    rec := bindtest.Record(t, vm)
//
//	    vm.Count()
//	    store.Set(Model{Count: 1})
//	    ui.Drain()
//
//	    rec.RequireNames(t, "Count")
//	}
//
// # Views
//
// [FakeView] satisfies view.View for composition tests, and [FakeFactory]
// counts the views it creates:
//
//	factory := &bindtest.FakeFactory{Name: "counter"}
//	entry := composition.TransientView[*CounterViewModel](factory.New)
package bindtest
