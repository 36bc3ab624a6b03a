package translate

import (
	"fmt"
	"reflect"

	"google.golang.org/protobuf/reflect/protoreflect"

	"github.com/syssam/protobridge/schema/wire"
)

// scalarValue widens the scalar v into its wire slot.
func scalarValue(v reflect.Value) protoreflect.Value {
	sc, _ := wire.LookupScalar(v.Kind())
	switch sc.Wire {
	case wire.TypeBool:
		return protoreflect.ValueOfBool(v.Bool())
	case wire.TypeInt32:
		return protoreflect.ValueOfInt32(int32(v.Int()))
	case wire.TypeInt64:
		return protoreflect.ValueOfInt64(v.Int())
	case wire.TypeUint32:
		return protoreflect.ValueOfUint32(uint32(v.Uint()))
	case wire.TypeUint64:
		return protoreflect.ValueOfUint64(v.Uint())
	case wire.TypeFloat:
		return protoreflect.ValueOfFloat32(float32(v.Float()))
	case wire.TypeDouble:
		return protoreflect.ValueOfFloat64(v.Float())
	default:
		return protoreflect.ValueOfString(v.String())
	}
}

// setScalar narrows the wire value pv into dst. The kind of dst selects the
// narrowing; a value that does not fit is an error.
func setScalar(dst reflect.Value, pv protoreflect.Value) error {
	switch dst.Kind() {
	case reflect.Bool:
		dst.SetBool(pv.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n := pv.Int()
		if dst.OverflowInt(n) {
			return fmt.Errorf("value %d overflows %s", n, dst.Type())
		}
		dst.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n := pv.Uint()
		if dst.OverflowUint(n) {
			return fmt.Errorf("value %d overflows %s", n, dst.Type())
		}
		dst.SetUint(n)
	case reflect.Float32, reflect.Float64:
		dst.SetFloat(pv.Float())
	case reflect.String:
		dst.SetString(pv.String())
	default:
		return fmt.Errorf("%s is not a scalar type", dst.Type())
	}
	return nil
}

// encodeWrapper writes the pointer-to-scalar v into the wrapper message w.
func encodeWrapper(w protoreflect.Message, v reflect.Value) {
	fields := w.Descriptor().Fields()
	if v.IsNil() {
		w.Set(fields.ByName(wire.WrapperAbsent), protoreflect.ValueOfBool(true))
		return
	}
	w.Set(fields.ByName(wire.WrapperValue), scalarValue(v.Elem()))
}

// decodeWrapper reads the wrapper message w into a new value of the
// pointer-to-scalar type t.
func decodeWrapper(w protoreflect.Message, t reflect.Type) (reflect.Value, error) {
	md := w.Descriptor()
	fd := w.WhichOneof(md.Oneofs().ByName(wire.WrapperOneof))
	if fd == nil {
		return reflect.Value{}, malformed(md, wire.WrapperOneof, "neither value nor absent is set")
	}
	if fd.Name() == wire.WrapperAbsent {
		return reflect.Zero(t), nil
	}
	p := reflect.New(t.Elem())
	if err := setScalar(p.Elem(), w.Get(fd)); err != nil {
		return reflect.Value{}, malformed(md, wire.WrapperValue, err.Error())
	}
	return p, nil
}

// encodeBytes copies the byte slice or byte array v.
func encodeBytes(v reflect.Value) []byte {
	b := make([]byte, v.Len())
	for i := range b {
		b[i] = byte(v.Index(i).Uint())
	}
	return b
}

// decodeBytes builds a value of the byte slice or byte array type t from b.
// An empty blob decodes to a nil slice.
func decodeBytes(b []byte, t reflect.Type) (reflect.Value, error) {
	v := reflect.New(t).Elem()
	switch {
	case t.Kind() == reflect.Array:
		if len(b) != 0 && len(b) != t.Len() {
			return reflect.Value{}, fmt.Errorf("blob of %d bytes does not fit %s", len(b), t)
		}
	case len(b) == 0:
		return v, nil
	default:
		v.Set(reflect.MakeSlice(t, len(b), len(b)))
	}
	for i, c := range b {
		v.Index(i).SetUint(uint64(c))
	}
	return v, nil
}
