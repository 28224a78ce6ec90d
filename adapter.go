package binder

import (
	"reflect"

	"github.com/Station-Manager/errors"
	"github.com/aarondl/null/v8"
	boilertypes "github.com/aarondl/sqlboiler/v4/types"
	"github.com/goccy/go-json"
)

// Adapter exposes the abstraction C over one source instance. Reads and
// writes go straight to the source; the adapter never copies it.
//
// Adapters are not synchronized. Concurrent access has the same exposure as
// concurrent access to the source's fields.
type Adapter[C any] struct {
	impl *implementation
	recv reflect.Value
	src  any
}

// Source returns the wrapped instance.
func (a *Adapter[C]) Source() any { return a.src }

// Type returns the registered type the adapter was built for.
func (a *Adapter[C]) Type() reflect.Type { return a.impl.typ }

// Mapped reports whether the named property forwards to the source.
func (a *Adapter[C]) Mapped(name string) bool {
	i, ok := a.impl.surface.index[name]
	return ok && a.impl.accessors[i].mapped()
}

// Get reads the named property.
func (a *Adapter[C]) Get(name string) (any, error) {
	i, err := a.impl.surface.ordinal(name)
	if err != nil {
		return nil, err
	}
	v, err := a.get(i)
	if err != nil {
		return nil, err
	}
	return v.Interface(), nil
}

// Set writes the named property. value must have exactly the declared type;
// nil is accepted for nillable types.
func (a *Adapter[C]) Set(name string, value any) error {
	const op errors.Op = "binder.Adapter.Set"
	i, err := a.impl.surface.ordinal(name)
	if err != nil {
		return err
	}
	p := &a.impl.surface.props[i]
	var v reflect.Value
	switch {
	case value == nil:
		if !nillable(p.typ) {
			return fail(op, PropertyTypeMismatch, "nil is not a valid %s", p.typ).on(a.impl.typ).prop(name)
		}
		v = reflect.Zero(p.typ)
	case p.typ.Kind() == reflect.Interface:
		v = reflect.ValueOf(value)
		if !v.Type().Implements(p.typ) {
			return fail(op, PropertyTypeMismatch, "%s does not implement %s", v.Type(), p.typ).on(a.impl.typ).prop(name)
		}
	default:
		v = reflect.ValueOf(value)
		if v.Type() != p.typ {
			return fail(op, PropertyTypeMismatch, "got %s, want %s", v.Type(), p.typ).on(a.impl.typ).prop(name)
		}
	}
	return a.set(i, v)
}

func (a *Adapter[C]) get(i int) (reflect.Value, error) {
	const op errors.Op = "binder.Adapter.get"
	p := &a.impl.surface.props[i]
	if !p.readable() {
		return reflect.Value{}, fail(op, PropertyNotReadable, "%s declares no getter for %s", a.impl.surface.typ, p.name).on(a.impl.typ).prop(p.name)
	}
	return a.impl.accessors[i].get(a.recv)
}

func (a *Adapter[C]) set(i int, v reflect.Value) error {
	const op errors.Op = "binder.Adapter.set"
	p := &a.impl.surface.props[i]
	if !p.writable() {
		return fail(op, PropertyNotWritable, "%s declares no setter for %s", a.impl.surface.typ, p.name).on(a.impl.typ).prop(p.name)
	}
	return a.impl.accessors[i].set(a.recv, v)
}

// MarshalJSON renders every readable, mapped property as a JSON object keyed
// by abstraction property name.
func (a *Adapter[C]) MarshalJSON() ([]byte, error) {
	const op errors.Op = "binder.Adapter.MarshalJSON"
	values, err := a.values()
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(values)
	if err != nil {
		return nil, errors.New(op).Err(err)
	}
	return data, nil
}

// Snapshot is MarshalJSON as a null.JSON. It is null when the adapter has no
// readable mapped property.
func (a *Adapter[C]) Snapshot() (null.JSON, error) {
	const op errors.Op = "binder.Adapter.Snapshot"
	values, err := a.values()
	if err != nil {
		return null.JSON{}, err
	}
	if len(values) == 0 {
		return null.JSON{}, nil
	}
	data, err := json.Marshal(values)
	if err != nil {
		return null.JSON{}, errors.New(op).Err(err)
	}
	return null.JSONFrom(data), nil
}

func (a *Adapter[C]) values() (map[string]any, error) {
	values := make(map[string]any, len(a.impl.accessors))
	for i := range a.impl.surface.props {
		p := &a.impl.surface.props[i]
		if !p.readable() || !a.impl.accessors[i].mapped() {
			continue
		}
		v, err := a.get(i)
		if err != nil {
			return nil, err
		}
		values[p.name] = v.Interface()
	}
	return values, nil
}

// UnmarshalJSON writes the properties present in data. See Restore.
func (a *Adapter[C]) UnmarshalJSON(data []byte) error { return a.Restore(data) }

// Restore writes every writable, mapped property present in the JSON object
// src. src may be null.JSON, sqlboiler types.JSON, json.RawMessage or []byte.
// Unknown and unmapped keys are ignored; a null or empty src is a no-op.
func (a *Adapter[C]) Restore(src any) error {
	const op errors.Op = "binder.Adapter.Restore"
	var raw []byte
	switch v := src.(type) {
	case null.JSON:
		if !v.Valid {
			return nil
		}
		raw = v.JSON
	case boilertypes.JSON:
		raw = v
	case json.RawMessage:
		raw = v
	case []byte:
		raw = v
	default:
		return errors.New(op).Errorf("cannot restore from %T", src)
	}
	if len(raw) == 0 {
		return nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return errors.New(op).Err(err)
	}
	// Decode everything before the first write so a bad key leaves the
	// source untouched.
	type pending struct {
		i int
		v reflect.Value
	}
	writes := make([]pending, 0, len(fields))
	for i := range a.impl.surface.props {
		p := &a.impl.surface.props[i]
		msg, ok := fields[p.name]
		if !ok || !p.writable() || !a.impl.accessors[i].mapped() {
			continue
		}
		ptr := reflect.New(p.typ)
		if err := json.Unmarshal(msg, ptr.Interface()); err != nil {
			return errors.New(op).Errorf("decoding %s: %v", p.name, err)
		}
		writes = append(writes, pending{i: i, v: ptr.Elem()})
	}
	for _, w := range writes {
		if err := a.set(w.i, w.v); err != nil {
			return err
		}
	}
	return nil
}

func nillable(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return true
	}
	return false
}
