package load

import (
	"reflect"
	"strings"

	"github.com/syssam/protobridge/schema/wire"
)

// Kind classifies a Go type for the schema.
type Kind uint8

// Type kinds.
const (
	KindStruct    Kind = iota + 1 // named struct, one message
	KindInterface                 // interface, erased to the dynamic value
	KindPrimitive                 // supported scalar kind
	KindWrapper                   // pointer to a scalar kind
	KindArray                     // slice or fixed-size array
	KindDynamic                   // everything without a static mapping
)

var kindNames = [...]string{
	KindStruct:    "struct",
	KindInterface: "interface",
	KindPrimitive: "primitive",
	KindWrapper:   "wrapper",
	KindArray:     "array",
	KindDynamic:   "dynamic",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return "invalid"
}

// KindOf classifies t. Pointers to structs classify as their struct.
func KindOf(t reflect.Type) Kind {
	switch {
	case wire.IsScalar(t):
		return KindPrimitive
	case t.Kind() == reflect.Pointer && wire.IsScalar(t.Elem()):
		return KindWrapper
	case t.Kind() == reflect.Pointer && t.Elem().Kind() == reflect.Struct:
		return KindStruct
	}
	switch t.Kind() {
	case reflect.Struct:
		return KindStruct
	case reflect.Interface:
		return KindInterface
	case reflect.Slice, reflect.Array:
		return KindArray
	default:
		return KindDynamic
	}
}

// Shape is the wire shape of a struct field.
type Shape uint8

// Field shapes.
const (
	ShapeScalar Shape = iota + 1
	ShapeWrapper
	ShapeBytes
	ShapeArray
	ShapeMessage
	ShapeDynamic
	ShapeSuper
)

var shapeNames = [...]string{
	ShapeScalar:  "scalar",
	ShapeWrapper: "wrapper",
	ShapeBytes:   "bytes",
	ShapeArray:   "array",
	ShapeMessage: "message",
	ShapeDynamic: "dynamic",
	ShapeSuper:   "super",
}

func (s Shape) String() string {
	if int(s) < len(shapeNames) && shapeNames[s] != "" {
		return shapeNames[s]
	}
	return "invalid"
}

// ShapeOf returns the wire shape of a value of type t held in a field.
// Byte slices and byte arrays are opaque blobs.
func ShapeOf(t reflect.Type) Shape {
	switch KindOf(t) {
	case KindPrimitive:
		return ShapeScalar
	case KindWrapper:
		return ShapeWrapper
	case KindStruct:
		return ShapeMessage
	case KindArray:
		if t.Elem().Kind() == reflect.Uint8 {
			return ShapeBytes
		}
		return ShapeArray
	default:
		return ShapeDynamic
	}
}

// TypeNode is a struct type of the closure. It is created once per qualified
// name and is not modified after Walk returns.
type TypeNode struct {
	// Name is the qualified name, e.g. "example.com/shop.Pair".
	Name string
	Kind Kind
	Type reflect.Type
	// Fields in declaration order, the super field included.
	Fields []*Field
	// Super is the nearest ancestor, nil for roots.
	Super *TypeNode
}

// SimpleName returns the type name without its package path.
func (n *TypeNode) SimpleName() string {
	return n.Name[strings.LastIndexByte(n.Name[:genericStart(n.Name)], '.')+1:]
}

// MessageName returns the mangled message name of the node.
func (n *TypeNode) MessageName() string {
	return wire.Mangle(n.Name)
}

// SuperField returns the field linking the node to its ancestor, or nil.
func (n *TypeNode) SuperField() *Field {
	for _, f := range n.Fields {
		if f.Shape == ShapeSuper {
			return f
		}
	}
	return nil
}

func genericStart(name string) int {
	if i := strings.IndexByte(name, '['); i >= 0 {
		return i
	}
	return len(name)
}

// Field is one exported field of a TypeNode.
type Field struct {
	// Name is the wire name.
	Name string
	// GoName is the Go field name.
	GoName string
	// Ordinal is the position among the wire fields of the node.
	Ordinal int
	// Index is the struct field index for reflect.Value.Field.
	Index int
	Type  reflect.Type
	Shape Shape
	// Nullable is set for pointer-to-struct fields.
	Nullable bool
	// Node is the referenced message for ShapeMessage and ShapeSuper.
	Node *TypeNode
}

// Tag returns the proto field number of the field.
func (f *Field) Tag() int {
	return f.Ordinal + 1
}
