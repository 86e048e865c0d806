package desc

import "reflect"

// Listener is one event subscription on an element description. Handler is
// the bound wrapper actually invoked on dispatch; Source records the
// original handler so two listeners wrapping the same function compare as
// unchanged even when the wrappers differ.
type Listener struct {
	Handler func(event any)
	Source  any
}

// On creates a listener from a bare handler function.
func On(fn func(event any)) Listener {
	return Listener{Handler: fn, Source: fn}
}

// Bound creates a listener whose identity is source but which invokes the
// given wrapper. Used when a handler is wrapped with bound arguments.
func Bound(source any, wrapper func(event any)) Listener {
	return Listener{Handler: wrapper, Source: source}
}

// IsZero reports whether the listener is empty.
func (l Listener) IsZero() bool {
	return l.Handler == nil && l.Source == nil
}

// SameSource reports whether two listeners share the same original handler.
// Identity is by function pointer of the source, falling back to the
// wrapper when no source was recorded.
func (l Listener) SameSource(o Listener) bool {
	return l.identity() == o.identity()
}

func (l Listener) identity() uintptr {
	if l.Source != nil {
		v := reflect.ValueOf(l.Source)
		if v.Kind() == reflect.Func || v.Kind() == reflect.Pointer {
			return v.Pointer()
		}
	}
	if l.Handler != nil {
		return reflect.ValueOf(l.Handler).Pointer()
	}
	return 0
}
