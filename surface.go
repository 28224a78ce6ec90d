package binder

import (
	"go/token"
	"reflect"
	"sort"
	"strings"

	"github.com/Station-Manager/errors"
)

const setterPrefix = "Set"

// propertyShape describes one property of an interface: its value type and
// the interface method indexes of its accessors (-1 when absent).
type propertyShape struct {
	name   string
	typ    reflect.Type
	getIdx int
	setIdx int
}

func (p *propertyShape) readable() bool { return p.getIdx >= 0 }
func (p *propertyShape) writable() bool { return p.setIdx >= 0 }

// surface is the property view of an interface type. Properties are sorted by
// name and addressed by ordinal.
type surface struct {
	typ   reflect.Type
	props []propertyShape
	index map[string]int
}

// describe derives the property surface of interface type t. Every method of
// t must be a getter X() T or a setter SetX(T); kind is the error Kind used
// when t does not have that shape.
func describe(t reflect.Type, kind Kind) (*surface, error) {
	const op errors.Op = "binder.describe"
	if t == nil || t.Kind() != reflect.Interface {
		return nil, fail(op, kind, "%v is not an interface type", t).on(t)
	}

	byName := make(map[string]*propertyShape, t.NumMethod())
	shape := func(name string) *propertyShape {
		p, ok := byName[name]
		if !ok {
			p = &propertyShape{name: name, getIdx: -1, setIdx: -1}
			byName[name] = p
		}
		return p
	}

	for i := 0; i < t.NumMethod(); i++ {
		m := t.Method(i)
		mt := m.Type
		if !m.IsExported() {
			return nil, fail(op, kind, "method %s is unexported", m.Name).on(t).prop(m.Name)
		}
		var p *propertyShape
		var vt reflect.Type
		switch {
		case mt.NumIn() == 0 && mt.NumOut() == 1:
			p = shape(m.Name)
			p.getIdx = i
			vt = mt.Out(0)
		case mt.NumIn() == 1 && mt.NumOut() == 0 && !mt.IsVariadic() && isSetterName(m.Name):
			p = shape(m.Name[len(setterPrefix):])
			p.setIdx = i
			vt = mt.In(0)
		default:
			return nil, fail(op, kind, "method %s is neither a getter X() T nor a setter SetX(T)", m.Name).on(t).prop(m.Name)
		}
		if p.typ != nil && p.typ != vt {
			return nil, fail(op, kind, "getter and setter of %s disagree: %s vs %s", p.name, p.typ, vt).on(t).prop(p.name)
		}
		p.typ = vt
	}

	s := &surface{typ: t, props: make([]propertyShape, 0, len(byName)), index: make(map[string]int, len(byName))}
	for _, p := range byName {
		s.props = append(s.props, *p)
	}
	sort.Slice(s.props, func(i, j int) bool { return s.props[i].name < s.props[j].name })
	for i := range s.props {
		s.index[s.props[i].name] = i
	}
	return s, nil
}

func isSetterName(name string) bool {
	rest, ok := strings.CutPrefix(name, setterPrefix)
	return ok && rest != "" && token.IsExported(rest)
}

// ordinal returns the position of the named property.
func (s *surface) ordinal(name string) (int, error) {
	const op errors.Op = "binder.surface.ordinal"
	i, ok := s.index[name]
	if !ok {
		return -1, fail(op, UnknownProperty, "%s declares no property %q", s.typ, name).on(s.typ).prop(name)
	}
	return i, nil
}

// names returns the property names in ordinal order.
func (s *surface) names() []string {
	out := make([]string, len(s.props))
	for i := range s.props {
		out[i] = s.props[i].name
	}
	return out
}
