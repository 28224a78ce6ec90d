package binder

import (
	"log/slog"
	"reflect"
	"sort"

	"github.com/Station-Manager/errors"
)

// accessor is the per-property behaviour of an implementation. It is either
// forwarding (bound to a concrete property) or unmapped (always failing).
type accessor interface {
	get(recv reflect.Value) (reflect.Value, error)
	set(recv, v reflect.Value) error
	mapped() bool
}

type forwarding struct {
	read  func(recv reflect.Value) reflect.Value
	write func(recv, v reflect.Value) error
}

func (f forwarding) get(recv reflect.Value) (reflect.Value, error) { return f.read(recv), nil }
func (f forwarding) set(recv, v reflect.Value) error               { return f.write(recv, v) }
func (forwarding) mapped() bool                                     { return true }

type unmapped struct {
	owner reflect.Type
	name  string
}

func (u unmapped) get(reflect.Value) (reflect.Value, error) {
	const op errors.Op = "binder.unmapped.get"
	return reflect.Value{}, fail(op, UnmappedPropertyAccess, "%s was not mapped for %s", u.name, u.owner).on(u.owner).prop(u.name)
}

func (u unmapped) set(reflect.Value, reflect.Value) error {
	const op errors.Op = "binder.unmapped.set"
	return fail(op, UnmappedPropertyAccess, "%s was not mapped for %s", u.name, u.owner).on(u.owner).prop(u.name)
}

func (unmapped) mapped() bool { return false }

// member is a resolved concrete property. read and write are nil when the
// concrete side lacks the accessor.
type member struct {
	typ   reflect.Type
	read  func(recv reflect.Value) reflect.Value
	write func(recv, v reflect.Value) error
}

// implementation is the adapter logic synthesized once for one registered
// type. It is immutable after synthesize returns.
type implementation struct {
	typ       reflect.Type // registered type
	surface   *surface     // abstraction
	concrete  *surface     // method surface of typ when typ is an interface
	names     map[string]string
	accessors []accessor // by abstraction ordinal
}

func (impl *implementation) isInterface() bool { return impl.typ.Kind() == reflect.Interface }

// prepare turns a matched instance into the receiver the accessors expect:
// the pointer itself for struct registrations, the value converted to the
// registered interface otherwise.
func (impl *implementation) prepare(v reflect.Value) reflect.Value {
	if impl.isInterface() {
		return v.Convert(impl.typ)
	}
	return v
}

func (impl *implementation) unmappedNames() []string {
	var out []string
	for i, a := range impl.accessors {
		if !a.mapped() {
			out = append(out, impl.surface.props[i].name)
		}
	}
	return out
}

// synthesize builds the implementation of abstraction for concrete type t from
// its property name map.
func synthesize(abstraction *surface, t reflect.Type, names map[string]string, opts Options) (*implementation, error) {
	const op errors.Op = "binder.synthesize"
	impl := &implementation{
		typ:       t,
		surface:   abstraction,
		names:     make(map[string]string, len(names)),
		accessors: make([]accessor, len(abstraction.props)),
	}
	for k, v := range names {
		impl.names[k] = v
	}

	switch t.Kind() {
	case reflect.Struct:
	case reflect.Interface:
		s, err := describe(t, InvalidConcreteType)
		if err != nil {
			return nil, err
		}
		impl.concrete = s
	default:
		return nil, fail(op, InvalidConcreteType, "%s is neither a struct nor an interface", t).on(t)
	}

	keys := make([]string, 0, len(names))
	for k := range names {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if _, ok := abstraction.index[k]; !ok {
			return nil, fail(op, UnknownProperty, "%s declares no property %q", abstraction.typ, k).on(t).prop(k)
		}
	}

	for i := range abstraction.props {
		p := &abstraction.props[i]
		target, ok := names[p.name]
		if !ok {
			if opts.StrictMapping {
				return nil, fail(op, UnmappedProperty, "%s leaves %s unmapped", t, p.name).on(t).prop(p.name)
			}
			impl.accessors[i] = unmapped{owner: t, name: p.name}
			continue
		}
		m, err := impl.lookup(target)
		if err != nil {
			return nil, err
		}
		if m.typ != p.typ {
			return nil, fail(op, PropertyTypeMismatch, "%s is %s but %s.%s is %s", p.name, p.typ, t, target, m.typ).on(t).prop(p.name)
		}
		if p.readable() && m.read == nil {
			return nil, fail(op, MissingGetter, "%s.%s cannot be read", t, target).on(t).prop(p.name)
		}
		if p.writable() && m.write == nil {
			return nil, fail(op, MissingSetter, "%s.%s cannot be written", t, target).on(t).prop(p.name)
		}
		var f forwarding
		if p.readable() {
			f.read = m.read
		}
		if p.writable() {
			f.write = m.write
		}
		impl.accessors[i] = f
	}
	return impl, nil
}

// lookup resolves the concrete property name on the registered type.
func (impl *implementation) lookup(name string) (member, error) {
	const op errors.Op = "binder.implementation.lookup"
	if impl.concrete != nil {
		return interfaceMember(impl.concrete, name)
	}

	t := impl.typ
	if f, ok := t.FieldByName(name); ok {
		if !f.IsExported() {
			return member{}, fail(op, UnknownProperty, "field %s.%s is unexported", t, name).on(t).prop(name)
		}
		return fieldMember(t, f), nil
	}
	return methodMember(t, name)
}

func fieldMember(t reflect.Type, f reflect.StructField) member {
	index := f.Index
	if len(index) == 1 {
		i := index[0]
		return member{
			typ:  f.Type,
			read: func(recv reflect.Value) reflect.Value { return recv.Elem().Field(i) },
			write: func(recv, v reflect.Value) error {
				recv.Elem().Field(i).Set(v)
				return nil
			},
		}
	}
	zero := reflect.Zero(f.Type)
	return member{
		typ: f.Type,
		read: func(recv reflect.Value) reflect.Value {
			v, err := recv.Elem().FieldByIndexErr(index)
			if err != nil {
				return zero
			}
			return v
		},
		write: func(recv, v reflect.Value) error {
			dst, err := promotedField(t, recv.Elem(), index)
			if err != nil {
				return err
			}
			dst.Set(v)
			return nil
		},
	}
}

// promotedField walks index from root, allocating nil embedded struct
// pointers on the way.
func promotedField(t reflect.Type, root reflect.Value, index []int) (reflect.Value, error) {
	const op errors.Op = "binder.promotedField"
	cur := root
	for i, x := range index {
		if i > 0 && cur.Kind() == reflect.Pointer {
			if cur.IsNil() {
				if !cur.CanSet() {
					return reflect.Value{}, fail(op, PropertyNotWritable, "cannot allocate unexported embedded %s in %s", cur.Type(), t).on(t)
				}
				cur.Set(reflect.New(cur.Type().Elem()))
			}
			cur = cur.Elem()
		}
		cur = cur.Field(x)
	}
	return cur, nil
}

// methodMember resolves X() T and SetX(T) in the pointer method set of struct
// type t.
func methodMember(t reflect.Type, name string) (member, error) {
	const op errors.Op = "binder.methodMember"
	pt := reflect.PointerTo(t)
	var m member

	if g, ok := pt.MethodByName(name); ok && g.Type.NumIn() == 1 && g.Type.NumOut() == 1 {
		fn := g.Func
		m.typ = g.Type.Out(0)
		m.read = func(recv reflect.Value) reflect.Value { return fn.Call([]reflect.Value{recv})[0] }
	}
	if s, ok := pt.MethodByName(setterPrefix + name); ok && s.Type.NumIn() == 2 && s.Type.NumOut() == 0 && !s.Type.IsVariadic() {
		fn := s.Func
		vt := s.Type.In(1)
		if m.typ != nil && m.typ != vt {
			return member{}, fail(op, PropertyTypeMismatch, "%s and %s%s of %s disagree: %s vs %s", name, setterPrefix, name, t, m.typ, vt).on(t).prop(name)
		}
		m.typ = vt
		m.write = func(recv, v reflect.Value) error {
			fn.Call([]reflect.Value{recv, v})
			return nil
		}
	}
	if m.typ == nil {
		return member{}, fail(op, UnknownProperty, "%s has no field or accessor methods named %s", t, name).on(t).prop(name)
	}
	return m, nil
}

func interfaceMember(s *surface, name string) (member, error) {
	const op errors.Op = "binder.interfaceMember"
	i, ok := s.index[name]
	if !ok {
		return member{}, fail(op, UnknownProperty, "%s declares no property %q", s.typ, name).on(s.typ).prop(name)
	}
	p := s.props[i]
	m := member{typ: p.typ}
	if p.readable() {
		idx := p.getIdx
		m.read = func(recv reflect.Value) reflect.Value { return recv.Method(idx).Call(nil)[0] }
	}
	if p.writable() {
		idx := p.setIdx
		m.write = func(recv, v reflect.Value) error {
			recv.Method(idx).Call([]reflect.Value{v})
			return nil
		}
	}
	return m, nil
}

func logSynthesized(l *slog.Logger, impl *implementation) {
	missing := impl.unmappedNames()
	l.Debug("binder: synthesized adapter",
		"type", impl.typ.String(),
		"mapped", len(impl.accessors)-len(missing),
		"unmapped", len(missing))
	if len(missing) > 0 {
		l.Warn("binder: properties fail on access", "type", impl.typ.String(), "properties", missing)
	}
}
