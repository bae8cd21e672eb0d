package composition

import "reflect"

// Key identifies a view-model type in the view registry. Two keys are equal
// iff they name the same type.
type Key struct {
	t reflect.Type
}

// KeyOf returns the key for VM.
func KeyOf[VM any]() Key {
	return Key{t: reflect.TypeFor[VM]()}
}

// KeyFor returns the key for t.
func KeyFor(t reflect.Type) Key {
	return Key{t: t}
}

// Type returns the view-model type.
func (k Key) Type() reflect.Type { return k.t }

func (k Key) String() string {
	if k.t == nil {
		return "<nil>"
	}
	return k.t.String()
}
