package composition

import (
	stderrors "errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/go-drift/mvvm/pkg/errors"
)

var (
	errNilKey          = stderrors.New("nil view-model type")
	errNilView         = stderrors.New("nil singleton view")
	errNilFactory      = stderrors.New("nil transient view factory")
	errNilRegistration = stderrors.New("nil registration")
	errNilConstructor  = stderrors.New("nil constructor")
	errNilInstance     = stderrors.New("constructor returned nil")
	errNilFactoryView  = stderrors.New("view factory returned nil")
)

// Constructor builds a service. It may resolve its own dependencies from c.
type Constructor func(c Container) (any, error)

// Container is the service container the composition root obtains
// view-models from.
type Container interface {
	// Resolve returns an instance of t.
	Resolve(t reflect.Type) (any, error)
	// RegisterTransient registers ctor to build a new t on every Resolve.
	RegisterTransient(t reflect.Type, ctor Constructor) error
}

// ServiceContainer is a type-keyed Container. All methods are safe for
// concurrent use. Constructors must not resolve their own type.
type ServiceContainer struct {
	mu       sync.RWMutex
	services map[reflect.Type]*service
}

type service struct {
	ctor      Constructor
	singleton bool

	mu       sync.Mutex
	built    bool
	instance any
}

// NewServiceContainer creates an empty container.
func NewServiceContainer() *ServiceContainer {
	return &ServiceContainer{services: make(map[reflect.Type]*service)}
}

// RegisterTransient implements Container.
func (c *ServiceContainer) RegisterTransient(t reflect.Type, ctor Constructor) error {
	return c.register("composition.RegisterTransient", t, &service{ctor: ctor})
}

// RegisterSingleton registers ctor to build t once, on first Resolve.
func (c *ServiceContainer) RegisterSingleton(t reflect.Type, ctor Constructor) error {
	return c.register("composition.RegisterSingleton", t, &service{ctor: ctor, singleton: true})
}

func (c *ServiceContainer) register(op string, t reflect.Type, s *service) error {
	if t == nil {
		return &errors.Error{Op: op, Kind: errors.KindContainer, Err: errNilKey}
	}
	if s.ctor == nil {
		return &errors.Error{Op: op, Kind: errors.KindContainer, ViewModel: t.String(), Err: errNilConstructor}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.services == nil {
		c.services = make(map[reflect.Type]*service)
	}
	if _, ok := c.services[t]; ok {
		return &errors.DuplicateServiceError{Service: t.String()}
	}
	c.services[t] = s
	return nil
}

// Has reports whether t is registered.
func (c *ServiceContainer) Has(t reflect.Type) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.services[t]
	return ok
}

// Resolve implements Container. The instance is checked against t.
func (c *ServiceContainer) Resolve(t reflect.Type) (any, error) {
	const op = "composition.Resolve"
	c.mu.RLock()
	s, ok := c.services[t]
	c.mu.RUnlock()
	if !ok {
		return nil, &errors.MissingServiceError{Service: typeString(t)}
	}

	if !s.singleton {
		return c.build(op, t, s.ctor)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.built {
		return s.instance, nil
	}
	v, err := c.build(op, t, s.ctor)
	if err != nil {
		return nil, err
	}
	s.instance, s.built = v, true
	return v, nil
}

func (c *ServiceContainer) build(op string, t reflect.Type, ctor Constructor) (any, error) {
	v, err := ctor(c)
	if err != nil {
		return nil, &errors.Error{Op: op, Kind: errors.KindContainer, ViewModel: t.String(), Err: err}
	}
	if v == nil {
		return nil, &errors.Error{Op: op, Kind: errors.KindContainer, ViewModel: t.String(), Err: errNilInstance}
	}
	if got := reflect.TypeOf(v); !got.AssignableTo(t) {
		return nil, &errors.TypeMismatchError{Op: op, Want: t.String(), Got: got.String()}
	}
	return v, nil
}

// Provide registers a transient constructor for T.
func Provide[T any](c Container, ctor func(Container) (T, error)) error {
	return c.RegisterTransient(reflect.TypeFor[T](), func(c Container) (any, error) {
		return ctor(c)
	})
}

// ProvideSingleton registers a singleton constructor for T.
func ProvideSingleton[T any](c *ServiceContainer, ctor func(Container) (T, error)) error {
	return c.RegisterSingleton(reflect.TypeFor[T](), func(c Container) (any, error) {
		return ctor(c)
	})
}

// ResolveAs resolves T from c.
func ResolveAs[T any](c Container) (T, error) {
	var zero T
	t := reflect.TypeFor[T]()
	v, err := c.Resolve(t)
	if err != nil {
		return zero, err
	}
	out, ok := v.(T)
	if !ok {
		return zero, &errors.TypeMismatchError{Op: "composition.ResolveAs", Want: t.String(), Got: fmt.Sprintf("%T", v)}
	}
	return out, nil
}

func typeString(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}
