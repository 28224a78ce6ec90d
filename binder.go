package binder

import (
	"fmt"
	"iter"
	"log/slog"
	"reflect"
	"sync"

	"github.com/Station-Manager/errors"
)

// Binder wraps instances of registered types in adapters exposing the
// abstraction C. It is immutable and safe for concurrent use.
type Binder[C any] struct {
	surface  *surface
	impls    []*implementation // registration order
	exact    map[reflect.Type]*implementation
	ifaces   []*implementation
	useCache bool
	cache    sync.Map // map[reflect.Type]*implementation
	log      *slog.Logger
}

func newBinder[C any](s *surface, impls []*implementation, opts Options) *Binder[C] {
	b := &Binder[C]{
		surface:  s,
		impls:    impls,
		exact:    make(map[reflect.Type]*implementation, len(impls)),
		useCache: opts.ResolutionCache,
		log:      opts.logger(),
	}
	for _, impl := range impls {
		if impl.isInterface() {
			b.ifaces = append(b.ifaces, impl)
			continue
		}
		b.exact[impl.typ] = impl
	}
	return b
}

// Types returns the registered types in registration order.
func (b *Binder[C]) Types() []reflect.Type {
	out := make([]reflect.Type, len(b.impls))
	for i, impl := range b.impls {
		out[i] = impl.typ
	}
	return out
}

// Properties returns the abstraction's property names in sorted order.
func (b *Binder[C]) Properties() []string { return b.surface.names() }

// Map wraps every item in an adapter, in input order. It fails as a whole on
// the first item that is nil or does not match a registered type.
func (b *Binder[C]) Map(items []any) ([]*Adapter[C], error) {
	out := make([]*Adapter[C], 0, len(items))
	for i, item := range items {
		a, err := b.MapOne(item)
		if err != nil {
			return nil, fmt.Errorf("mapping item %d: %w", i, err)
		}
		out = append(out, a)
	}
	return out, nil
}

// MapSeq is Map over an iterator.
func (b *Binder[C]) MapSeq(items iter.Seq[any]) ([]*Adapter[C], error) {
	var out []*Adapter[C]
	i := 0
	for item := range items {
		a, err := b.MapOne(item)
		if err != nil {
			return nil, fmt.Errorf("mapping item %d: %w", i, err)
		}
		out = append(out, a)
		i++
	}
	if out == nil {
		out = []*Adapter[C]{}
	}
	return out, nil
}

// MapOne wraps a single item.
func (b *Binder[C]) MapOne(item any) (*Adapter[C], error) {
	const op errors.Op = "binder.Binder.MapOne"
	if item == nil {
		return nil, fail(op, NullInstance, "instance is nil")
	}
	v := reflect.ValueOf(item)
	if isNil(v) {
		return nil, fail(op, NullInstance, "instance is a nil %s", v.Type()).on(v.Type())
	}
	impl, err := b.resolve(v.Type())
	if err != nil {
		return nil, err
	}
	return &Adapter[C]{impl: impl, recv: impl.prepare(v), src: item}, nil
}

// resolve finds the implementation for dynamic type rt. A pointer to a
// registered struct wins outright; otherwise the most specific registered
// interface rt implements is used.
func (b *Binder[C]) resolve(rt reflect.Type) (*implementation, error) {
	if b.useCache {
		if cached, ok := b.cache.Load(rt); ok {
			return cached.(*implementation), nil
		}
	}
	impl, err := b.match(rt)
	if err != nil {
		b.log.Debug("binder: no adapter for instance", "type", rt.String(), "error", err)
		return nil, err
	}
	if b.useCache {
		actual, _ := b.cache.LoadOrStore(rt, impl)
		return actual.(*implementation), nil
	}
	return impl, nil
}

func (b *Binder[C]) match(rt reflect.Type) (*implementation, error) {
	const op errors.Op = "binder.Binder.match"
	if rt.Kind() == reflect.Pointer {
		if impl, ok := b.exact[rt.Elem()]; ok {
			return impl, nil
		}
	}

	var candidates []*implementation
	for _, impl := range b.ifaces {
		if rt.Implements(impl.typ) {
			candidates = append(candidates, impl)
		}
	}
	switch len(candidates) {
	case 0:
		if _, ok := b.exact[rt]; ok {
			return nil, fail(op, UnregisteredInstanceType, "%s is registered but must be passed as *%s", rt, rt).on(rt)
		}
		return nil, fail(op, UnregisteredInstanceType, "no registered type matches %s", rt).on(rt)
	case 1:
		return candidates[0], nil
	}

	if best := mostSpecific(candidates); best != nil {
		return best, nil
	}
	names := make([]string, len(candidates))
	for i, c := range candidates {
		names[i] = c.typ.String()
	}
	return nil, fail(op, AmbiguousInstanceType, "%s implements %v and none of them includes the others", rt, names).on(rt)
}

// mostSpecific returns the candidate interface that strictly includes every
// other candidate, or nil when there is none.
func mostSpecific(candidates []*implementation) *implementation {
	for _, c := range candidates {
		ok := true
		for _, other := range candidates {
			if other == c {
				continue
			}
			if !c.typ.Implements(other.typ) || other.typ.Implements(c.typ) {
				ok = false
				break
			}
		}
		if ok {
			return c
		}
	}
	return nil
}

func isNil(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return v.IsNil()
	}
	return false
}
