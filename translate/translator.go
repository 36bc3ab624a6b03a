package translate

import (
	"reflect"

	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/dynamicpb"

	"github.com/syssam/protobridge"
	"github.com/syssam/protobridge/compiler/load"
)

// translator converts one closure struct type to and from its message. It
// holds no per-call state and is shared by concurrent calls.
type translator struct {
	reg    *Registry
	node   *load.TypeNode
	md     protoreflect.MessageDescriptor
	acc    Accessor
	fields []fieldCodec
	// super translates the embedded ancestor, nil for roots.
	super *translator
}

type fieldCodec struct {
	src *load.Field
	fd  protoreflect.FieldDescriptor
	// msg translates ShapeMessage and ShapeSuper fields.
	msg *translator
}

// newInstance returns a pointer to a fresh zero value of the type.
func (t *translator) newInstance() reflect.Value {
	return reflect.ValueOf(t.acc.New())
}

// field returns the addressable storage of f in the struct ptr points to.
func (t *translator) field(ptr reflect.Value, f *load.Field) reflect.Value {
	if p := t.acc.FieldPtr(ptr.Interface(), f.Ordinal); p != nil {
		return reflect.ValueOf(p).Elem()
	}
	return ptr.Elem().Field(f.Index)
}

// encode builds the message of the struct ptr points to. Fields are written
// in ordinal order; the super field is the ancestor's own encoding of the
// embedded value.
func (t *translator) encode(ptr reflect.Value) (protoreflect.Message, error) {
	m := dynamicpb.NewMessage(t.md)
	for _, fc := range t.fields {
		v := t.field(ptr, fc.src)
		switch fc.src.Shape {
		case load.ShapeScalar:
			m.Set(fc.fd, scalarValue(v))
		case load.ShapeWrapper:
			encodeWrapper(m.Mutable(fc.fd).Message(), v)
		case load.ShapeBytes:
			if v.Kind() == reflect.Slice && v.IsNil() {
				continue
			}
			m.Set(fc.fd, protoreflect.ValueOfBytes(encodeBytes(v)))
		case load.ShapeArray:
			if v.Kind() == reflect.Slice && v.IsNil() {
				continue
			}
			h, err := t.reg.encodeArray(v)
			if err != nil {
				return nil, err
			}
			m.Set(fc.fd, protoreflect.ValueOfMessage(h))
		case load.ShapeMessage, load.ShapeSuper:
			if fc.src.Nullable {
				if v.IsNil() {
					continue
				}
			} else {
				v = v.Addr()
			}
			sub, err := fc.msg.encode(v)
			if err != nil {
				return nil, err
			}
			m.Set(fc.fd, protoreflect.ValueOfMessage(sub))
		case load.ShapeDynamic:
			if isNil(v) {
				continue
			}
			d, err := t.reg.encodeDynamic(v)
			if err != nil {
				return nil, err
			}
			m.Set(fc.fd, protoreflect.ValueOfMessage(d))
		}
	}
	return m, nil
}

// populate writes every field of m into the struct ptr points to. Unset
// nullable fields are reset to nil. The super field is populated in place
// through the ancestor's translator.
func (t *translator) populate(m protoreflect.Message, ptr reflect.Value) error {
	for _, fc := range t.fields {
		v := t.field(ptr, fc.src)
		if fc.src.Shape != load.ShapeScalar && fc.src.Shape != load.ShapeBytes && !m.Has(fc.fd) {
			v.SetZero()
			continue
		}
		switch fc.src.Shape {
		case load.ShapeScalar:
			if err := setScalar(v, m.Get(fc.fd)); err != nil {
				return t.malformed(fc, err.Error())
			}
		case load.ShapeWrapper:
			w, err := decodeWrapper(m.Get(fc.fd).Message(), v.Type())
			if err != nil {
				return err
			}
			v.Set(w)
		case load.ShapeBytes:
			b, err := decodeBytes(m.Get(fc.fd).Bytes(), v.Type())
			if err != nil {
				return t.malformed(fc, err.Error())
			}
			v.Set(b)
		case load.ShapeArray:
			a, err := t.reg.decodeArray(m.Get(fc.fd).Message(), v.Type())
			if err != nil {
				return err
			}
			v.Set(a)
		case load.ShapeMessage, load.ShapeSuper:
			sub := m.Get(fc.fd).Message()
			if !fc.src.Nullable {
				if err := fc.msg.populate(sub, v.Addr()); err != nil {
					return err
				}
				continue
			}
			p := fc.msg.newInstance()
			if err := fc.msg.populate(sub, p); err != nil {
				return err
			}
			v.Set(p)
		case load.ShapeDynamic:
			d, err := t.reg.decodeDynamic(m.Get(fc.fd).Message(), v.Type())
			if err != nil {
				return err
			}
			v.Set(d)
		}
	}
	return nil
}

func (t *translator) malformed(fc fieldCodec, reason string) error {
	return protobridge.NewMalformedWireError(string(t.md.Name()), fc.src.Name, reason)
}

// isNil reports whether v holds no value. Only nillable kinds can.
func isNil(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Interface, reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return v.IsNil()
	}
	return !v.IsValid()
}
