// Package binder exposes several unrelated struct types through one shared
// abstraction.
//
// The abstraction is a Go interface whose methods are property accessors:
// X() T reads property X and SetX(T) writes it. Concrete types are registered
// with a name-to-name property mapping; Build synthesizes, once per type, a
// table of forwarding accessors, and Map wraps each instance of a
// heterogeneous batch in an Adapter backed by its type's table.
//
// Basic Usage
//
//	type Common interface {
//	    Name() string
//	    SetName(string)
//	}
//
//	b, err := binder.NewBuilder[Common]().
//	    WithType(EntityA{}, func(t *binder.TypeBuilder[Common]) *binder.Builder[Common] {
//	        return t.WithProperty("c.Name", "e.Name1").FinalizeType()
//	    }).
//	    WithType(EntityB{}, func(t *binder.TypeBuilder[Common]) *binder.Builder[Common] {
//	        return t.WithProperty("c.Name", "e.Name2").FinalizeType()
//	    }).
//	    Build()
//
//	adapters, err := b.Map([]any{&EntityA{Name1: "a"}, &EntityB{Name2: "b"}})
//	name, err := adapters[0].Get("Name") // "a"
//
// # Selectors
//
// Selectors are Go expressions naming exactly one member: "x.Name" or
// "x => x.Name". Anything else ("x.Name.Len", "len(x.Name)") is rejected
// when the mapping is declared.
//
// # Concrete Properties
//
// For a struct, a concrete property is an exported field (promoted fields
// included) or, when no field matches, the methods X() T and SetX(T) of the
// pointer method set. Struct instances are passed as pointers so writes reach
// the source. An interface may be registered too; its instances are any
// values implementing it.
//
// # Synthesis Rules
//
// Build checks every mapped pair once:
//  1. The value types must be identical; no conversion is performed.
//  2. An accessor the abstraction declares must exist on the concrete side.
//  3. Properties left unmapped become stubs that fail with
//     UnmappedPropertyAccess each time they are read or written.
//
// # Dispatch
//
// A pointer to a registered struct matches that registration. Otherwise the
// registered interfaces the instance implements are candidates and the one
// including all others wins; if there is no such interface Map fails with
// AmbiguousInstanceType. Map is all-or-nothing over its batch.
//
// # Thread Safety
//
// A Binder is immutable after Build and safe for concurrent use. Adapters
// are not synchronized.
package binder
