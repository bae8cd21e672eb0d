// Package composition resolves views bound to view-models.
//
// A [Root] owns a service container populated with the program's view-model
// types and a [Registry] mapping each view-model type to how its view is
// obtained:
//
//	type appHooks struct{ composition.DefaultHooks }
//
//	func (appHooks) RegisterViews() ([]composition.Entry, error) {
//	    return []composition.Entry{
//	        composition.SingletonView[*ShellViewModel](shell),
//	        composition.TransientView[*CounterViewModel](NewCounterPage),
//	    }, nil
//	}
//
//	root := composition.New(appHooks{}, composition.WithTypes(func() []composition.ViewModelType {
//	    return []composition.ViewModelType{
//	        composition.ViewModelOf[*ShellViewModel](nil),
//	        composition.ViewModelOf(NewCounterViewModel),
//	    }
//	}))
//	page, err := composition.Resolve[*CounterViewModel](root)
//
// A singleton view is bound on first resolution and returned unchanged
// afterwards. A transient registration creates a fresh view and view-model
// on every resolution and disposes the view-model when the view is
// detached.
package composition
