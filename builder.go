package binder

import (
	"reflect"

	"github.com/Station-Manager/binder/selector"
	"github.com/Station-Manager/errors"
)

// Builder provides a fluent API to register concrete types against the
// abstraction C and construct a Binder.
//
// The first configuration error is kept and returned by Build; later calls
// become no-ops.
type Builder[C any] struct {
	opts  Options
	order []reflect.Type
	table map[reflect.Type]map[string]string
	err   error
}

// TypeBuilder collects the property mapping of one concrete type.
type TypeBuilder[C any] struct {
	parent *Builder[C]
	typ    reflect.Type
	names  map[string]string
	exprs  map[string]string // abstraction name -> selector that mapped it
	done   bool
}

// Registration is a read-only view of one registered type.
type Registration struct {
	Type       reflect.Type
	Properties map[string]string // abstraction property -> concrete property
}

// NewBuilder creates a new builder for abstraction C.
func NewBuilder[C any](opts ...Option) *Builder[C] {
	o := defaultOptions()
	for _, f := range opts {
		f(&o)
	}
	return &Builder[C]{
		opts:  o,
		table: make(map[reflect.Type]map[string]string),
	}
}

// WithOptions appends options to the builder.
func (b *Builder[C]) WithOptions(opts ...Option) *Builder[C] {
	for _, f := range opts {
		f(&b.opts)
	}
	return b
}

// WithType registers the type of sample and lets configure map its properties.
// Pass T{} or &T{} for a struct and (*I)(nil) for an interface.
func (b *Builder[C]) WithType(sample any, configure func(*TypeBuilder[C]) *Builder[C]) *Builder[C] {
	const op errors.Op = "binder.Builder.WithType"
	if b.err != nil {
		return b
	}
	if sample == nil {
		b.err = fail(op, InvalidConcreteType, "sample must not be nil")
		return b
	}
	t := reflect.TypeOf(sample)
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return b.withType(t, configure)
}

func (b *Builder[C]) withType(t reflect.Type, configure func(*TypeBuilder[C]) *Builder[C]) *Builder[C] {
	const op errors.Op = "binder.Builder.withType"
	if b.err != nil {
		return b
	}
	if k := t.Kind(); k != reflect.Struct && k != reflect.Interface {
		b.err = fail(op, InvalidConcreteType, "%s is neither a struct nor an interface", t).on(t)
		return b
	}
	if _, ok := b.table[t]; ok {
		b.err = fail(op, DuplicateTypeRegistration, "%s is already registered", t).on(t)
		return b
	}
	tb := &TypeBuilder[C]{
		parent: b,
		typ:    t,
		names:  make(map[string]string),
		exprs:  make(map[string]string),
	}
	if configure != nil {
		configure(tb)
	}
	if !tb.done {
		tb.FinalizeType()
	}
	return b
}

// Err returns the first configuration error, if any.
func (b *Builder[C]) Err() error { return b.err }

// Registrations returns the registered types in registration order.
func (b *Builder[C]) Registrations() []Registration {
	out := make([]Registration, 0, len(b.order))
	for _, t := range b.order {
		m := make(map[string]string, len(b.table[t]))
		for k, v := range b.table[t] {
			m[k] = v
		}
		out = append(out, Registration{Type: t, Properties: m})
	}
	return out
}

// Build synthesizes one implementation per registered type and returns the
// Binder. The Binder does not share state with the builder.
func (b *Builder[C]) Build() (*Binder[C], error) {
	if b.err != nil {
		return nil, b.err
	}
	abstraction, err := describe(reflect.TypeFor[C](), InvalidAbstraction)
	if err != nil {
		return nil, err
	}
	log := b.opts.logger()
	impls := make([]*implementation, 0, len(b.order))
	for _, t := range b.order {
		impl, err := synthesize(abstraction, t, b.table[t], b.opts)
		if err != nil {
			return nil, err
		}
		logSynthesized(log, impl)
		impls = append(impls, impl)
	}
	return newBinder[C](abstraction, impls, b.opts), nil
}

// WithProperty maps the abstraction property named by abstractionSelector to
// the concrete property named by concreteSelector. Value types are checked
// by Build.
func (t *TypeBuilder[C]) WithProperty(abstractionSelector, concreteSelector string) *TypeBuilder[C] {
	const op errors.Op = "binder.TypeBuilder.WithProperty"
	b := t.parent
	if b.err != nil {
		return t
	}
	if t.done {
		b.err = fail(op, InvalidConcreteType, "%s is already finalized", t.typ).on(t.typ).expr(abstractionSelector)
		return t
	}
	from, err := selector.Resolve(abstractionSelector)
	if err != nil {
		b.err = wrap(op, InvalidSelectorExpression, err).on(t.typ).expr(abstractionSelector)
		return t
	}
	to, err := selector.Resolve(concreteSelector)
	if err != nil {
		b.err = wrap(op, InvalidSelectorExpression, err).on(t.typ).expr(concreteSelector)
		return t
	}
	if prev, ok := t.exprs[from]; ok {
		b.err = fail(op, DuplicatePropertyMapping, "%s already mapped by `%s`", from, prev).on(t.typ).prop(from).expr(abstractionSelector)
		return t
	}
	t.names[from] = to
	t.exprs[from] = abstractionSelector
	return t
}

// FinalizeType commits the mapping and returns the parent builder.
func (t *TypeBuilder[C]) FinalizeType() *Builder[C] {
	b := t.parent
	if t.done {
		return b
	}
	t.done = true
	if b.err != nil {
		return b
	}
	b.table[t.typ] = t.names
	b.order = append(b.order, t.typ)
	return b
}

// Map returns a copy of the mapping collected so far.
func (t *TypeBuilder[C]) Map() map[string]string {
	m := make(map[string]string, len(t.names))
	for k, v := range t.names {
		m[k] = v
	}
	return m
}
