package binder

import (
	"reflect"

	"github.com/Station-Manager/errors"
)

// Generic helpers as top-level functions (methods cannot have type parameters yet)

// WithTypeOf is WithType with the concrete type given as a type parameter.
// T and *T register the same type.
func WithTypeOf[T, C any](b *Builder[C], configure func(*TypeBuilder[C]) *Builder[C]) *Builder[C] {
	t := reflect.TypeFor[T]()
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return b.withType(t, configure)
}

// Property is a typed handle to one abstraction property. It is resolved once
// and then reads and writes by ordinal.
type Property[C, T any] struct {
	name    string
	ordinal int
}

// PropertyOf returns the handle for the named property of b's abstraction. T
// must be the property's declared type.
func PropertyOf[T, C any](b *Binder[C], name string) (Property[C, T], error) {
	const op errors.Op = "binder.PropertyOf"
	i, err := b.surface.ordinal(name)
	if err != nil {
		return Property[C, T]{}, err
	}
	want := b.surface.props[i].typ
	if got := reflect.TypeFor[T](); got != want {
		return Property[C, T]{}, fail(op, PropertyTypeMismatch, "%s is %s, not %s", name, want, got).on(b.surface.typ).prop(name)
	}
	return Property[C, T]{name: name, ordinal: i}, nil
}

// Name returns the property name.
func (p Property[C, T]) Name() string { return p.name }

// Get reads the property through a.
func (p Property[C, T]) Get(a *Adapter[C]) (T, error) {
	var zero T
	v, err := a.get(p.ordinal)
	if err != nil {
		return zero, err
	}
	out, _ := v.Interface().(T)
	return out, nil
}

// Set writes the property through a.
func (p Property[C, T]) Set(a *Adapter[C], value T) error {
	return a.set(p.ordinal, reflect.ValueOf(&value).Elem())
}

// Value reads the named property of a as a T.
func Value[T, C any](a *Adapter[C], name string) (T, error) {
	const op errors.Op = "binder.Value"
	var zero T
	v, err := a.Get(name)
	if err != nil {
		return zero, err
	}
	out, ok := v.(T)
	if !ok && v != nil {
		return zero, fail(op, PropertyTypeMismatch, "%s is %T, not %s", name, v, reflect.TypeFor[T]()).on(a.impl.typ).prop(name)
	}
	return out, nil
}
