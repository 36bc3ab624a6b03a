package wire

import (
	"reflect"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Type is the proto3 wire type a value is carried in.
type Type uint8

// Wire types used by the emitted schema.
const (
	TypeBool Type = iota + 1
	TypeInt32
	TypeInt64
	TypeUint32
	TypeUint64
	TypeFloat
	TypeDouble
	TypeString
	TypeBytes
	TypeMessage
)

var typeNames = [...]string{
	TypeBool:    "bool",
	TypeInt32:   "int32",
	TypeInt64:   "int64",
	TypeUint32:  "uint32",
	TypeUint64:  "uint64",
	TypeFloat:   "float",
	TypeDouble:  "double",
	TypeString:  "string",
	TypeBytes:   "bytes",
	TypeMessage: "message",
}

// String returns the proto keyword of the wire type.
func (t Type) String() string {
	if int(t) < len(typeNames) && typeNames[t] != "" {
		return typeNames[t]
	}
	return "invalid"
}

// ListTypes are the wire types that have a flat list message. Byte
// elements are not listed: they are carried as one opaque blob.
var ListTypes = []Type{
	TypeBool,
	TypeInt32,
	TypeInt64,
	TypeUint32,
	TypeUint64,
	TypeFloat,
	TypeDouble,
	TypeString,
}

// Scalar describes one supported primitive Go kind and the wire slot it
// rides in. Narrower kinds are widened on encode and narrowed against the
// statically known Go kind on decode.
type Scalar struct {
	Kind reflect.Kind
	// Name is the Go kind name, e.g. "int8".
	Name string
	// Wire is the wire type the value is carried in.
	Wire Type
	// Type is the builtin Go type of the kind.
	Type reflect.Type
	// Wrapper is the name of the wrapper message of the kind.
	Wrapper string
}

// Scalars lists the supported primitive kinds in their fixed schema order.
// The order determines tag numbers inside the runtime support messages and
// must never change.
var Scalars = []Scalar{
	{Kind: reflect.Bool, Wire: TypeBool, Type: reflect.TypeFor[bool]()},
	{Kind: reflect.Int, Wire: TypeInt64, Type: reflect.TypeFor[int]()},
	{Kind: reflect.Int8, Wire: TypeInt32, Type: reflect.TypeFor[int8]()},
	{Kind: reflect.Int16, Wire: TypeInt32, Type: reflect.TypeFor[int16]()},
	{Kind: reflect.Int32, Wire: TypeInt32, Type: reflect.TypeFor[int32]()},
	{Kind: reflect.Int64, Wire: TypeInt64, Type: reflect.TypeFor[int64]()},
	{Kind: reflect.Uint, Wire: TypeUint64, Type: reflect.TypeFor[uint]()},
	{Kind: reflect.Uint8, Wire: TypeUint32, Type: reflect.TypeFor[uint8]()},
	{Kind: reflect.Uint16, Wire: TypeUint32, Type: reflect.TypeFor[uint16]()},
	{Kind: reflect.Uint32, Wire: TypeUint32, Type: reflect.TypeFor[uint32]()},
	{Kind: reflect.Uint64, Wire: TypeUint64, Type: reflect.TypeFor[uint64]()},
	{Kind: reflect.Float32, Wire: TypeFloat, Type: reflect.TypeFor[float32]()},
	{Kind: reflect.Float64, Wire: TypeDouble, Type: reflect.TypeFor[float64]()},
	{Kind: reflect.String, Wire: TypeString, Type: reflect.TypeFor[string]()},
}

var (
	scalarsByKind = make(map[reflect.Kind]Scalar, len(Scalars))
	scalarsByName = make(map[string]Scalar, len(Scalars))
)

func init() {
	title := cases.Title(language.English)
	for i := range Scalars {
		s := &Scalars[i]
		s.Name = s.Kind.String()
		s.Wrapper = title.String(s.Name) + "Wrapper"
		scalarsByKind[s.Kind] = *s
		scalarsByName[s.Name] = *s
	}
}

// LookupScalar returns the scalar description of the given kind.
func LookupScalar(k reflect.Kind) (Scalar, bool) {
	s, ok := scalarsByKind[k]
	return s, ok
}

// ScalarByName returns the scalar description of the given kind name.
func ScalarByName(name string) (Scalar, bool) {
	s, ok := scalarsByName[name]
	return s, ok
}

// IsScalar reports whether values of t are carried as a single wire scalar.
func IsScalar(t reflect.Type) bool {
	_, ok := scalarsByKind[t.Kind()]
	return ok
}

// ListName returns the name of the flat list message of a wire type,
// e.g. "Int32List".
func ListName(t Type) string {
	return listNames[t]
}

// ListField returns the ArrayHolder variant carrying a flat list of t,
// e.g. "int32_list".
func ListField(t Type) string {
	return t.String() + "_list"
}

var listNames = func() map[Type]string {
	title := cases.Title(language.English)
	names := make(map[Type]string, len(ListTypes))
	for _, t := range ListTypes {
		names[t] = title.String(t.String()) + "List"
	}
	return names
}()
