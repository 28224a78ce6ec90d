package binder

import (
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_Format(t *testing.T) {
	e := &Error{
		Kind:     PropertyTypeMismatch,
		Type:     reflect.TypeOf(EntityA{}),
		Property: "Name",
		Expr:     "c.Name",
	}
	assert.Equal(t, "binder: property type mismatch type=binder.EntityA property=Name expr=`c.Name`", e.Error())

	bare := &Error{Kind: NullInstance}
	assert.Equal(t, "binder: null instance", bare.Error())
}

func TestError_IsAndUnwrap(t *testing.T) {
	cause := errors.New("boom")
	e := &Error{Kind: MissingGetter, Err: cause}

	assert.ErrorIs(t, e, MissingGetter)
	assert.NotErrorIs(t, e, MissingSetter)
	assert.ErrorIs(t, e, cause)

	wrapped := fmt.Errorf("outer: %w", e)
	assert.ErrorIs(t, wrapped, MissingGetter)
	var be *Error
	assert.ErrorAs(t, wrapped, &be)
	assert.Same(t, e, be)
}
