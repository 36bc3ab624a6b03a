package protobridge_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/protobridge"
)

func TestUnresolvedTypeError(t *testing.T) {
	t.Run("Error", func(t *testing.T) {
		err := protobridge.NewUnresolvedTypeError("struct { X int }", []string{"Create", "arg0"}, "anonymous struct")
		assert.Equal(t, `protobridge: unresolved type "struct { X int }" (via Create.arg0): anonymous struct`, err.Error())
	})

	t.Run("IsUnresolvedType", func(t *testing.T) {
		err := protobridge.NewUnresolvedTypeError("x.T", nil, "")
		assert.True(t, protobridge.IsUnresolvedType(err))
		assert.True(t, protobridge.IsUnresolvedType(fmt.Errorf("load: %w", err)))
		assert.True(t, protobridge.IsUnresolvedType(protobridge.ErrUnresolvedType))
		assert.False(t, protobridge.IsUnresolvedType(errors.New("other")))
		assert.False(t, protobridge.IsUnresolvedType(nil))
	})
}

func TestTranslatorNotFoundError(t *testing.T) {
	err := protobridge.NewTranslatorNotFoundError("example.com/shop.Cart")
	assert.Equal(t, "protobridge: no translator for example.com/shop.Cart", err.Error())
	assert.True(t, errors.Is(err, protobridge.ErrTranslatorNotFound))
	assert.True(t, protobridge.IsTranslatorNotFound(err))
	assert.False(t, protobridge.IsMalformedWire(err))
}

func TestMalformedWireError(t *testing.T) {
	tests := []struct {
		name string
		err  *protobridge.MalformedWireError
		want string
	}{
		{
			name: "full",
			err:  protobridge.NewMalformedWireError("Int32Wrapper", "value", "no variant set"),
			want: "protobridge: malformed wire in Int32Wrapper.value: no variant set",
		},
		{
			name: "reason only",
			err:  protobridge.NewMalformedWireError("", "", "overflow"),
			want: "protobridge: malformed wire: overflow",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
			assert.True(t, protobridge.IsMalformedWire(tt.err))
		})
	}
}

func TestTranslationError(t *testing.T) {
	cause := protobridge.NewMalformedWireError("ArrayHolder", "", "empty holder")
	err := protobridge.NewTranslationError("decode", "ArrayHolder", cause)

	require.Error(t, err)
	assert.Equal(t, "protobridge: decode ArrayHolder failed: protobridge: malformed wire in ArrayHolder: empty holder", err.Error())
	assert.True(t, errors.Is(err, protobridge.ErrTranslationFailed))
	assert.True(t, protobridge.IsMalformedWire(err))
	assert.True(t, protobridge.IsTranslationError(err))

	t.Run("wraps once", func(t *testing.T) {
		again := protobridge.NewTranslationError("encode", "Outer", err)
		assert.Same(t, err, again)
	})

	assert.False(t, protobridge.IsTranslationError(cause))
	assert.False(t, protobridge.IsTranslationError(nil))
}
