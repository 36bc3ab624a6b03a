package translate

import (
	"fmt"
	"reflect"

	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/dynamicpb"

	"github.com/syssam/protobridge"
	"github.com/syssam/protobridge/schema/wire"
)

// encodeDynamic encodes v into a self-describing DynamicValue. Interfaces
// are unwrapped to their dynamic value; nil values of any kind encode as
// the null variant. One level of pointer is kept through the pointer flag.
func (r *Registry) encodeDynamic(v reflect.Value) (protoreflect.Message, error) {
	d := dynamicpb.NewMessage(r.dynamic)
	fields := r.dynamic.Fields()
	if v.Kind() == reflect.Interface {
		v = v.Elem()
	}
	if isNil(v) {
		d.Set(fields.ByName(wire.DynamicNull), protoreflect.ValueOfBool(true))
		return d, nil
	}
	if v.Kind() == reflect.Pointer {
		d.Set(fields.ByName(wire.DynamicPointer), protoreflect.ValueOfBool(true))
		v = v.Elem()
	}

	switch {
	case wire.IsScalar(v.Type()):
		sc, _ := wire.LookupScalar(v.Kind())
		d.Set(fields.ByName(protoreflect.Name(wire.ScalarVariant(sc))), scalarValue(v))
	case v.Kind() == reflect.Slice || v.Kind() == reflect.Array:
		h, err := r.encodeArray(v)
		if err != nil {
			return nil, err
		}
		d.Set(fields.ByName(wire.DynamicArray), protoreflect.ValueOfMessage(h))
	case v.Kind() == reflect.Struct:
		tr, ok := r.byType[v.Type()]
		if !ok {
			return nil, protobridge.NewTranslatorNotFoundError(v.Type().String())
		}
		if !v.CanAddr() {
			p := reflect.New(v.Type())
			p.Elem().Set(v)
			v = p.Elem()
		}
		m, err := tr.encode(v.Addr())
		if err != nil {
			return nil, err
		}
		d.Set(fields.ByName(protoreflect.Name(wire.MessageVariant(string(tr.md.Name())))), protoreflect.ValueOfMessage(m))
	default:
		return nil, protobridge.NewTranslatorNotFoundError(v.Type().String())
	}
	return d, nil
}

// decodeDynamic decodes the DynamicValue d into a value assignable to
// target. Scalars decode to the builtin type of their kind. Arrays are
// narrowed against target when it statically names an array type.
func (r *Registry) decodeDynamic(d protoreflect.Message, target reflect.Type) (reflect.Value, error) {
	variant := d.WhichOneof(r.dynamic.Oneofs().ByName(wire.DynamicOneof))
	if variant == nil {
		return reflect.Value{}, malformed(r.dynamic, wire.DynamicOneof, "no value variant is set")
	}
	pointer := d.Get(r.dynamic.Fields().ByName(wire.DynamicPointer)).Bool()
	static := target
	if pointer && static.Kind() == reflect.Pointer {
		static = static.Elem()
	}

	var v reflect.Value
	switch name := variant.Name(); {
	case name == wire.DynamicNull:
		return reflect.Zero(target), nil
	case name == wire.DynamicArray:
		var arr reflect.Type
		if static.Kind() == reflect.Slice || static.Kind() == reflect.Array {
			arr = static
		}
		a, err := r.decodeArray(d.Get(variant).Message(), arr)
		if err != nil {
			return reflect.Value{}, err
		}
		v = a
	case variant.Message() != nil:
		tr, ok := r.byName[string(variant.Message().Name())]
		if !ok {
			return reflect.Value{}, protobridge.NewTranslatorNotFoundError(string(variant.Message().Name()))
		}
		p := tr.newInstance()
		if err := tr.populate(d.Get(variant).Message(), p); err != nil {
			return reflect.Value{}, err
		}
		if pointer {
			return r.assign(p, target)
		}
		v = p.Elem()
	default:
		sc, ok := r.variants[name]
		if !ok {
			return reflect.Value{}, malformed(r.dynamic, string(name), "unknown variant")
		}
		v = reflect.New(sc.Type).Elem()
		if err := setScalar(v, d.Get(variant)); err != nil {
			return reflect.Value{}, malformed(r.dynamic, string(name), err.Error())
		}
	}
	if pointer {
		p := reflect.New(v.Type())
		p.Elem().Set(v)
		v = p
	}
	return r.assign(v, target)
}

func (r *Registry) assign(v reflect.Value, target reflect.Type) (reflect.Value, error) {
	if !v.Type().AssignableTo(target) {
		return reflect.Value{}, malformed(r.dynamic, wire.DynamicOneof, fmt.Sprintf("%s is not assignable to %s", v.Type(), target))
	}
	return v, nil
}
