package binder

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/Station-Manager/errors"
)

// Kind classifies a binder failure. Every Kind is also an error so it can be
// used directly as an errors.Is target:
//
//	if errors.Is(err, binder.UnmappedPropertyAccess) { ... }
type Kind uint8

const (
	_ Kind = iota
	InvalidSelectorExpression
	DuplicateTypeRegistration
	DuplicatePropertyMapping
	InvalidAbstraction
	InvalidConcreteType
	UnknownProperty
	PropertyTypeMismatch
	MissingGetter
	MissingSetter
	UnmappedProperty
	UnmappedPropertyAccess
	PropertyNotReadable
	PropertyNotWritable
	UnregisteredInstanceType
	AmbiguousInstanceType
	NullInstance
)

var kindNames = [...]string{
	InvalidSelectorExpression: "invalid selector expression",
	DuplicateTypeRegistration: "duplicate type registration",
	DuplicatePropertyMapping:  "duplicate property mapping",
	InvalidAbstraction:        "invalid abstraction",
	InvalidConcreteType:       "invalid concrete type",
	UnknownProperty:           "unknown property",
	PropertyTypeMismatch:      "property type mismatch",
	MissingGetter:             "missing getter",
	MissingSetter:             "missing setter",
	UnmappedProperty:          "unmapped property",
	UnmappedPropertyAccess:    "unmapped property access",
	PropertyNotReadable:       "property not readable",
	PropertyNotWritable:       "property not writable",
	UnregisteredInstanceType:  "unregistered instance type",
	AmbiguousInstanceType:     "ambiguous instance type",
	NullInstance:              "null instance",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

func (k Kind) Error() string { return "binder: " + k.String() }

// Error is the error returned by every binder operation.
type Error struct {
	Kind     Kind
	Type     reflect.Type // registered or observed type, when known
	Property string       // abstraction or concrete property name, when known
	Expr     string       // offending selector expression, when known
	Err      error        // underlying cause
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("binder: ")
	b.WriteString(e.Kind.String())
	if e.Type != nil {
		b.WriteString(" type=")
		b.WriteString(e.Type.String())
	}
	if e.Property != "" {
		b.WriteString(" property=")
		b.WriteString(e.Property)
	}
	if e.Expr != "" {
		b.WriteString(" expr=`")
		b.WriteString(e.Expr)
		b.WriteString("`")
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is the Kind of e.
func (e *Error) Is(target error) bool {
	k, ok := target.(Kind)
	return ok && k == e.Kind
}

// fail builds an *Error whose cause records op and a formatted message.
func fail(op errors.Op, kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Err: errors.New(op).Errorf(format, args...)}
}

// wrap builds an *Error around an existing cause.
func wrap(op errors.Op, kind Kind, cause error) *Error {
	return &Error{Kind: kind, Err: errors.New(op).Err(cause)}
}

func (e *Error) on(t reflect.Type) *Error {
	e.Type = t
	return e
}

func (e *Error) prop(name string) *Error {
	e.Property = name
	return e
}

func (e *Error) expr(s string) *Error {
	e.Expr = s
	return e
}
