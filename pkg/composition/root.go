package composition

import (
	"fmt"
	"log/slog"
	"os"
	"reflect"
	"sync"
	"sync/atomic"

	"github.com/go-drift/mvvm/pkg/config"
	"github.com/go-drift/mvvm/pkg/dispatch"
	"github.com/go-drift/mvvm/pkg/errors"
	"github.com/go-drift/mvvm/pkg/reactive"
	"github.com/go-drift/mvvm/pkg/view"
	"github.com/go-drift/mvvm/pkg/viewmodel"
)

// ViewModelType describes a view-model type registered in the root's
// container before the services hook runs.
type ViewModelType struct {
	Type reflect.Type
	New  Constructor
}

// ViewModelOf describes VM. A nil ctor builds zero values, allocating when
// VM is a pointer type.
func ViewModelOf[VM any](ctor func(Container) (VM, error)) ViewModelType {
	t := reflect.TypeFor[VM]()
	if ctor == nil {
		return ViewModelType{Type: t, New: zeroConstructor(t)}
	}
	return ViewModelType{Type: t, New: func(c Container) (any, error) { return ctor(c) }}
}

func zeroConstructor(t reflect.Type) Constructor {
	return func(Container) (any, error) {
		if t.Kind() == reflect.Pointer {
			return reflect.New(t.Elem()).Interface(), nil
		}
		return reflect.New(t).Elem().Interface(), nil
	}
}

// TypeEnumerator lists the view-model types of the program. How they are
// found (generated code, a hand-written list) is up to the caller.
type TypeEnumerator func() []ViewModelType

// Hooks customize how a Root builds its container and view registry.
// Embed DefaultHooks and override what you need.
type Hooks interface {
	// RegisterServices adds services on top of the enumerated view-models.
	RegisterServices(c Container) error
	// RegisterViews returns the view registrations.
	RegisterViews() ([]Entry, error)
}

// DefaultHooks registers no services and no views.
type DefaultHooks struct{}

// RegisterServices does nothing.
func (DefaultHooks) RegisterServices(Container) error { return nil }

// RegisterViews returns no entries.
func (DefaultHooks) RegisterViews() ([]Entry, error) { return nil, nil }

// Option configures a Root.
type Option func(*Root)

// WithTypes sets the view-model type enumerator.
func WithTypes(types TypeEnumerator) Option {
	return func(r *Root) { r.types = types }
}

// WithContainer uses c instead of a new ServiceContainer.
func WithContainer(c Container) Option {
	return func(r *Root) { r.container = c }
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Root) { r.logger = logger }
}

// WithScheduler sets the scheduler attached view-models raise
// property-changed signals on. The default is dispatch.Default().
func WithScheduler(s dispatch.Scheduler) Option {
	return func(r *Root) { r.scheduler = s }
}

// WithConfig applies cfg: the duplicate view policy and, unless WithLogger
// is given, a logger at the configured level.
func WithConfig(cfg *config.Config) Option {
	return func(r *Root) { r.cfg = cfg }
}

// Root is the composition root. It builds the service container and the
// view registry on first use and resolves views bound to view-models.
//
// All methods are safe for concurrent use.
type Root struct {
	hooks     Hooks
	types     TypeEnumerator
	container Container
	logger    *slog.Logger
	scheduler dispatch.Scheduler
	cfg       *config.Config
	policy    DuplicatePolicy

	once     sync.Once
	registry *Registry
	buildErr error

	mu         sync.Mutex
	singletons map[Key]*singletonState
	owned      reactive.Composite
	closed     atomic.Bool
}

// singletonState records the one view-model bound to a singleton view.
// vm stays set after the view is detached, so the view is never bound twice.
type singletonState struct {
	mu sync.Mutex
	vm any
}

// New creates a Root. A nil hooks means DefaultHooks.
func New(hooks Hooks, opts ...Option) *Root {
	if hooks == nil {
		hooks = DefaultHooks{}
	}
	r := &Root{hooks: hooks}
	for _, opt := range opts {
		opt(r)
	}
	if r.cfg != nil {
		if r.cfg.Views.Duplicates == config.DuplicatesReplace {
			r.policy = ReplaceDuplicates
		}
		if r.logger == nil {
			r.logger = r.cfg.NewLogger(os.Stderr)
		}
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	return r
}

// Container returns the service container, building it on first use.
func (r *Root) Container() (Container, error) {
	if err := r.build(); err != nil {
		return nil, err
	}
	return r.container, nil
}

// Registry returns the view registry, building it on first use.
func (r *Root) Registry() (*Registry, error) {
	if err := r.build(); err != nil {
		return nil, err
	}
	return r.registry, nil
}

// build runs once; its error is returned by every later call.
func (r *Root) build() error {
	r.once.Do(func() {
		r.buildErr = r.init()
		if r.buildErr != nil {
			r.logger.Error("composition root build failed", "error", r.buildErr)
		}
	})
	return r.buildErr
}

func (r *Root) init() error {
	if r.container == nil {
		r.container = NewServiceContainer()
	}
	if r.types != nil {
		for _, vt := range r.types() {
			if err := r.container.RegisterTransient(vt.Type, vt.New); err != nil {
				return err
			}
		}
	}
	if err := r.hooks.RegisterServices(r.container); err != nil {
		return fmt.Errorf("composition.RegisterServices: %w", err)
	}
	entries, err := r.hooks.RegisterViews()
	if err != nil {
		return fmt.Errorf("composition.RegisterViews: %w", err)
	}
	reg, err := NewRegistry(r.policy, entries...)
	if err != nil {
		return err
	}
	r.registry = reg
	r.logger.Debug("composition root built", "views", reg.Len())
	return nil
}

// ResolveView returns the view registered for vmType, bound to a
// view-model. An unregistered type fails with *errors.RegistrationError.
func (r *Root) ResolveView(vmType reflect.Type) (view.View, error) {
	const op = "composition.ResolveView"
	if r.closed.Load() {
		return nil, &errors.DisposedError{Op: op}
	}
	if err := r.build(); err != nil {
		return nil, err
	}

	key := KeyFor(vmType)
	reg, ok := r.registry.Lookup(key)
	if !ok {
		err := &errors.RegistrationError{ViewModel: key.String()}
		r.logger.Error("view resolution failed", "view_model", key.String(), "error", err)
		return nil, err
	}

	switch reg := reg.(type) {
	case Singleton:
		return r.resolveSingleton(op, key, reg)
	case Transient:
		return r.resolveTransient(op, key, reg)
	default:
		return nil, &errors.Error{Op: op, Kind: errors.KindRegistration, ViewModel: key.String(), Err: errNilRegistration}
	}
}

func (r *Root) singleton(key Key) *singletonState {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.singletons == nil {
		r.singletons = make(map[Key]*singletonState)
	}
	s, ok := r.singletons[key]
	if !ok {
		s = &singletonState{}
		r.singletons[key] = s
	}
	return s
}

// resolveSingleton builds the view-model under the key's lock and binds it
// after releasing it: SetDataContext may read properties that resolve nested
// views through this root.
func (r *Root) resolveSingleton(op string, key Key, reg Singleton) (view.View, error) {
	s := r.singleton(key)
	s.mu.Lock()
	if s.vm != nil {
		s.mu.Unlock()
		return reg.View, nil
	}
	vm, err := r.newViewModel(op, key)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	s.vm = vm
	s.mu.Unlock()

	if d, ok := vm.(reactive.Disposable); ok {
		r.owned.Add(d)
	}
	reg.View.SetDataContext(vm)
	r.logger.Debug("view bound", "view_model", key.String(), "registration", "singleton")
	return reg.View, nil
}

func (r *Root) resolveTransient(op string, key Key, reg Transient) (view.View, error) {
	vm, err := r.newViewModel(op, key)
	if err != nil {
		return nil, err
	}
	d, disposable := vm.(reactive.Disposable)

	v := reg.New()
	if v == nil {
		if disposable {
			d.Dispose()
		}
		return nil, &errors.Error{Op: op, Kind: errors.KindRegistration, ViewModel: key.String(), Err: errNilFactoryView}
	}
	v.SetDataContext(vm)
	if disposable {
		unregister := r.owned.Add(d)
		v.OnDetached(func() {
			unregister()
			d.Dispose()
		})
	}
	r.logger.Debug("view bound", "view_model", key.String(), "registration", "transient")
	return v, nil
}

func (r *Root) newViewModel(op string, key Key) (any, error) {
	vm, err := r.container.Resolve(key.Type())
	if err != nil {
		r.logger.Error("view-model resolution failed", "view_model", key.String(), "error", err)
		return nil, err
	}
	if vm == nil {
		return nil, &errors.TypeMismatchError{Op: op, Want: key.String(), Got: "<nil>"}
	}
	if got := reflect.TypeOf(vm); !got.AssignableTo(key.Type()) {
		return nil, &errors.TypeMismatchError{Op: op, Want: key.String(), Got: got.String()}
	}
	if h, ok := vm.(viewmodel.Host); ok {
		if err := viewmodel.Attach(h, r, r.scheduler); err != nil {
			if d, ok := vm.(reactive.Disposable); ok {
				d.Dispose()
			}
			return nil, err
		}
	}
	return vm, nil
}

// LiveViewModels returns how many view-models bound by this root are still
// owned by it.
func (r *Root) LiveViewModels() int {
	return r.owned.Len()
}

// Close disposes the view-models bound by this root whose views are still
// attached. Later resolutions fail with *errors.DisposedError.
func (r *Root) Close() {
	if r.closed.Swap(true) {
		return
	}
	r.owned.Dispose()
}

// Resolve returns the view registered for VM.
func Resolve[VM any](r *Root) (view.View, error) {
	return r.ResolveView(reflect.TypeFor[VM]())
}

// MustResolve is like Resolve but panics on error.
func MustResolve[VM any](r *Root) view.View {
	v, err := Resolve[VM](r)
	if err != nil {
		panic(err)
	}
	return v
}
