package composition_test

import (
	"fmt"

	"github.com/go-drift/mvvm/pkg/bindtest"
	"github.com/go-drift/mvvm/pkg/composition"
	"github.com/go-drift/mvvm/pkg/viewmodel"
)

type GreeterViewModel struct {
	viewmodel.Base
	Greeting string
}

type AboutViewModel struct{ viewmodel.Base }

type appHooks struct {
	composition.DefaultHooks
	pages *bindtest.FakeFactory
}

func (h appHooks) RegisterViews() ([]composition.Entry, error) {
	return []composition.Entry{
		composition.TransientView[*GreeterViewModel](h.pages.New),
	}, nil
}

// This example shows a transient view resolved with a fresh view-model,
// which is disposed when the view is detached.
func ExampleRoot_ResolveView() {
	hooks := appHooks{pages: &bindtest.FakeFactory{Name: "greeter"}}
	root := composition.New(hooks, composition.WithTypes(func() []composition.ViewModelType {
		return []composition.ViewModelType{
			composition.ViewModelOf(func(composition.Container) (*GreeterViewModel, error) {
				return &GreeterViewModel{Greeting: "hello"}, nil
			}),
		}
	}))
	defer root.Close()

	page, err := composition.Resolve[*GreeterViewModel](root)
	if err != nil {
		panic(err)
	}
	vm := page.DataContext().(*GreeterViewModel)
	fmt.Println(page.(*bindtest.FakeView).Name, vm.Greeting)

	page.(*bindtest.FakeView).Detach()
	fmt.Println("disposed:", vm.IsDisposed())

	_, err = composition.Resolve[*AboutViewModel](root)
	fmt.Println(err)

	// Output:
	// greeter hello
	// disposed: true
	// no view registered for view-model "*composition_test.AboutViewModel"
}
