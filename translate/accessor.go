package translate

import (
	"reflect"

	"github.com/syssam/protobridge/compiler/load"
)

// Accessor is the field table of one closure type. Generated tables
// implement it without reflection; see compiler/gen GenAccessors.
type Accessor interface {
	// New returns a pointer to the canonical zero value of the type.
	New() any
	// FieldPtr returns a pointer to the field with the given ordinal of obj,
	// which must be a pointer returned by New or of the same type. It
	// returns nil for unknown ordinals.
	FieldPtr(obj any, ordinal int) any
}

// reflectAccessor is the fallback table for types without a generated one.
type reflectAccessor struct {
	typ   reflect.Type
	index []int
}

func newReflectAccessor(n *load.TypeNode) *reflectAccessor {
	a := &reflectAccessor{typ: n.Type, index: make([]int, len(n.Fields))}
	for _, f := range n.Fields {
		a.index[f.Ordinal] = f.Index
	}
	return a
}

func (a *reflectAccessor) New() any {
	return reflect.New(a.typ).Interface()
}

func (a *reflectAccessor) FieldPtr(obj any, ordinal int) any {
	if ordinal < 0 || ordinal >= len(a.index) {
		return nil
	}
	return reflect.ValueOf(obj).Elem().Field(a.index[ordinal]).Addr().Interface()
}
