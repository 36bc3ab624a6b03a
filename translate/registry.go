// Package translate converts Go values to and from the dynamic messages of
// a generated schema.
//
// A Registry is built once from a schema and is read-only afterwards, so
// any number of goroutines may translate through it without locking:
//
//	reg, err := translate.Build(cfg, load.Service[shop.Service]())
//	if err != nil {
//		return err
//	}
//	msg, err := reg.ToWire(&shop.Pair{J: 3})
//	...
//	pair, err := translate.Decode[shop.Pair](reg, msg)
package translate

import (
	"fmt"
	"log/slog"
	"reflect"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/dynamicpb"

	"github.com/syssam/protobridge"
	"github.com/syssam/protobridge/compiler/gen"
	"github.com/syssam/protobridge/compiler/load"
	"github.com/syssam/protobridge/schema/wire"
)

// Registry holds one translator per closure type, keyed by Go type for
// encoding and by message name for decoding.
type Registry struct {
	schema *gen.Schema
	file   protoreflect.FileDescriptor
	logger *slog.Logger

	byType map[reflect.Type]*translator
	byName map[string]*translator

	holder   protoreflect.MessageDescriptor
	dynamic  protoreflect.MessageDescriptor
	request  protoreflect.MessageDescriptor
	response protoreflect.MessageDescriptor
	// variants maps the scalar variants of DynamicValue and of the
	// envelope payloads to their kinds.
	variants map[protoreflect.Name]wire.Scalar
}

// NewRegistry compiles the schema and builds the translators of its closure
// types. Generated field tables passed through WithAccessors replace
// reflection for the types they cover.
func NewRegistry(s *gen.Schema, opts ...Option) (*Registry, error) {
	o := &options{logger: slog.Default()}
	for _, opt := range opts {
		opt(o)
	}
	file, err := s.Compile()
	if err != nil {
		return nil, err
	}
	r := &Registry{
		schema:   s,
		file:     file,
		logger:   o.logger,
		byType:   make(map[reflect.Type]*translator),
		byName:   make(map[string]*translator),
		variants: make(map[protoreflect.Name]wire.Scalar),
	}
	for name, md := range map[string]*protoreflect.MessageDescriptor{
		wire.ArrayHolder:      &r.holder,
		wire.DynamicValue:     &r.dynamic,
		wire.RequestEnvelope:  &r.request,
		wire.ResponseEnvelope: &r.response,
	} {
		if *md, err = r.descriptor(name); err != nil {
			return nil, err
		}
	}
	for _, sc := range wire.Scalars {
		r.variants[protoreflect.Name(wire.ScalarVariant(sc))] = sc
		r.variants[protoreflect.Name(wire.ScalarPayload(sc))] = sc
	}

	generated := 0
	for _, m := range s.Closure() {
		md, err := r.descriptor(m.Name)
		if err != nil {
			return nil, err
		}
		t := &translator{reg: r, node: m.Node, md: md, acc: newReflectAccessor(m.Node)}
		if acc, ok := o.accessors[m.Name]; ok {
			if got := reflect.TypeOf(acc.New()); got != reflect.PointerTo(m.Node.Type) {
				return nil, fmt.Errorf("translate: field table of %s builds %v", m.Name, got)
			}
			t.acc = acc
			generated++
		}
		r.byType[m.Node.Type] = t
		r.byName[m.Name] = t
	}
	for _, t := range r.byName {
		for _, f := range t.node.Fields {
			fd := t.md.Fields().ByNumber(protoreflect.FieldNumber(f.Tag()))
			if fd == nil || string(fd.Name()) != f.Name {
				return nil, gen.NewSchemaError(string(t.md.Name()), f.Name, "field missing from the compiled schema", nil)
			}
			fc := fieldCodec{src: f, fd: fd}
			if f.Node != nil {
				fc.msg = r.byType[f.Node.Type]
			}
			if f.Shape == load.ShapeSuper {
				t.super = fc.msg
			}
			t.fields = append(t.fields, fc)
		}
	}
	r.logger.Debug("translator registry built",
		slog.Int("messages", len(r.byName)),
		slog.Int("generated_accessors", generated),
	)
	return r, nil
}

// Build walks the closure of entries, emits its schema and returns the
// registry of that schema. Nothing is written to disk.
func Build(cfg *gen.Config, entries []load.Entry, opts ...Option) (*Registry, error) {
	g, err := load.Walk(entries...)
	if err != nil {
		return nil, err
	}
	s, err := gen.Emit(cfg, g)
	if err != nil {
		return nil, err
	}
	return NewRegistry(s, opts...)
}

func (r *Registry) descriptor(name string) (protoreflect.MessageDescriptor, error) {
	md := r.file.Messages().ByName(protoreflect.Name(name))
	if md == nil {
		return nil, gen.NewSchemaError(name, "", "message missing from the compiled schema", nil)
	}
	return md, nil
}

// Schema returns the schema the registry was built from.
func (r *Registry) Schema() *gen.Schema {
	return r.schema
}

// MessageType returns the dynamic message type of the named message.
func (r *Registry) MessageType(name string) (protoreflect.MessageType, bool) {
	md := r.file.Messages().ByName(protoreflect.Name(name))
	if md == nil {
		return nil, false
	}
	return dynamicpb.NewMessageType(md), true
}

// HandlesToWire reports whether values of t, or of the struct t points to,
// can be encoded.
func (r *Registry) HandlesToWire(t reflect.Type) bool {
	_, ok := r.lookup(t)
	return ok
}

// HandlesFromWire reports whether messages can be decoded into values of t,
// or of the struct t points to. Every encodable type is also decodable
// since translators are registered under both keys at once.
func (r *Registry) HandlesFromWire(t reflect.Type) bool {
	_, ok := r.lookup(t)
	return ok
}

func (r *Registry) lookup(t reflect.Type) (*translator, bool) {
	if t == nil {
		return nil, false
	}
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	tr, ok := r.byType[t]
	return tr, ok
}

// ToWire encodes a closure struct or a pointer to one.
func (r *Registry) ToWire(v any) (proto.Message, error) {
	rv := reflect.ValueOf(v)
	typ := typeName(rv)
	tr, ok := r.lookup(reflect.TypeOf(v))
	if !ok {
		return nil, protobridge.NewTranslationError("encode", typ, protobridge.NewTranslatorNotFoundError(typ))
	}
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, protobridge.NewTranslationError("encode", typ, fmt.Errorf("nil pointer"))
		}
	} else {
		p := reflect.New(rv.Type())
		p.Elem().Set(rv)
		rv = p
	}
	m, err := tr.encode(rv)
	if err != nil {
		return nil, protobridge.NewTranslationError("encode", typ, err)
	}
	return m.Interface(), nil
}

// FromWire decodes a closure message into a pointer to a new value of its
// struct type. The translator is chosen by the message name.
func (r *Registry) FromWire(m proto.Message) (any, error) {
	pm, err := r.adopt(m)
	if err != nil {
		return nil, protobridge.NewTranslationError("decode", messageName(m), err)
	}
	name := string(pm.Descriptor().Name())
	tr, ok := r.byName[name]
	if !ok {
		return nil, protobridge.NewTranslationError("decode", name, protobridge.NewTranslatorNotFoundError(name))
	}
	p := tr.newInstance()
	if err := tr.populate(pm, p); err != nil {
		return nil, protobridge.NewTranslationError("decode", tr.node.Name, err)
	}
	return p.Interface(), nil
}

// Decode decodes m into a new value of T.
func Decode[T any](r *Registry, m proto.Message) (*T, error) {
	v, err := r.FromWire(m)
	if err != nil {
		return nil, err
	}
	p, ok := v.(*T)
	if !ok {
		want := reflect.TypeFor[T]().String()
		return nil, protobridge.NewTranslationError("decode", want,
			protobridge.NewMalformedWireError(messageName(m), "", fmt.Sprintf("message decodes to %T, not *%s", v, want)))
	}
	return p, nil
}

// EncodeArray encodes a slice or array of any element kind into an
// ArrayHolder message. A nil slice encodes as the null holder.
func (r *Registry) EncodeArray(v any) (proto.Message, error) {
	rv := reflect.ValueOf(v)
	typ := typeName(rv)
	if !rv.IsValid() || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
		return nil, protobridge.NewTranslationError("encode array", typ, protobridge.NewTranslatorNotFoundError(typ))
	}
	h, err := r.encodeArray(rv)
	if err != nil {
		return nil, protobridge.NewTranslationError("encode array", typ, err)
	}
	return h.Interface(), nil
}

// DecodeArray decodes an ArrayHolder message. The array type is recovered
// from the holder's component descriptor against the closure.
func (r *Registry) DecodeArray(m proto.Message) (any, error) {
	return r.decodeArrayAs(m, nil)
}

// DecodeArrayOf decodes an ArrayHolder message into the slice or array type
// T. The component descriptor of the holder must match T.
func DecodeArrayOf[T any](r *Registry, m proto.Message) (T, error) {
	var zero T
	v, err := r.decodeArrayAs(m, reflect.TypeFor[T]())
	if err != nil {
		return zero, err
	}
	return v.(T), nil
}

func (r *Registry) decodeArrayAs(m proto.Message, target reflect.Type) (any, error) {
	typ := wire.ArrayHolder
	if target != nil {
		typ = target.String()
		if target.Kind() != reflect.Slice && target.Kind() != reflect.Array {
			return nil, protobridge.NewTranslationError("decode array", typ, protobridge.NewTranslatorNotFoundError(typ))
		}
	}
	pm, err := r.adopt(m)
	if err == nil && pm.Descriptor() != r.holder {
		err = protobridge.NewMalformedWireError(string(pm.Descriptor().Name()), "", "not an "+wire.ArrayHolder)
	}
	if err != nil {
		return nil, protobridge.NewTranslationError("decode array", typ, err)
	}
	v, err := r.decodeArray(pm, target)
	if err != nil {
		return nil, protobridge.NewTranslationError("decode array", typ, err)
	}
	return v.Interface(), nil
}

// Marshal encodes v to wire bytes. Slices and arrays go through
// EncodeArray, every other value through ToWire.
func (r *Registry) Marshal(v any) ([]byte, error) {
	var (
		m   proto.Message
		err error
	)
	switch reflect.ValueOf(v).Kind() {
	case reflect.Slice, reflect.Array:
		m, err = r.EncodeArray(v)
	default:
		m, err = r.ToWire(v)
	}
	if err != nil {
		return nil, err
	}
	return proto.Marshal(m)
}

// Unmarshal decodes wire bytes of the named message. ArrayHolder bytes
// decode through DecodeArray, closure messages through FromWire.
func (r *Registry) Unmarshal(b []byte, message string) (any, error) {
	mt, ok := r.MessageType(message)
	if !ok {
		return nil, protobridge.NewTranslationError("decode", message, protobridge.NewTranslatorNotFoundError(message))
	}
	m := mt.New().Interface()
	if err := proto.Unmarshal(b, m); err != nil {
		return nil, protobridge.NewTranslationError("decode", message,
			protobridge.NewMalformedWireError(message, "", err.Error()))
	}
	if message == wire.ArrayHolder {
		return r.DecodeArray(m)
	}
	return r.FromWire(m)
}

// adopt returns the reflective view of m over the registry's descriptors.
// Messages built from another compilation of the same schema, such as
// generated Go types, are copied over through their wire bytes.
func (r *Registry) adopt(m proto.Message) (protoreflect.Message, error) {
	if m == nil {
		return nil, protobridge.NewTranslatorNotFoundError("<nil>")
	}
	pm := m.ProtoReflect()
	md := pm.Descriptor()
	if md.ParentFile() == r.file {
		return pm, nil
	}
	own := r.file.Messages().ByName(md.Name())
	if own == nil || own.FullName() != md.FullName() {
		return nil, protobridge.NewTranslatorNotFoundError(string(md.FullName()))
	}
	b, err := proto.Marshal(m)
	if err != nil {
		return nil, protobridge.NewMalformedWireError(string(md.Name()), "", err.Error())
	}
	cp := dynamicpb.NewMessage(own)
	if err := proto.Unmarshal(b, cp); err != nil {
		return nil, protobridge.NewMalformedWireError(string(md.Name()), "", err.Error())
	}
	return cp, nil
}

func typeName(v reflect.Value) string {
	if !v.IsValid() {
		return "<nil>"
	}
	return v.Type().String()
}

func messageName(m proto.Message) string {
	if m == nil {
		return "<nil>"
	}
	return string(m.ProtoReflect().Descriptor().Name())
}

func malformed(md protoreflect.MessageDescriptor, field, reason string) error {
	return protobridge.NewMalformedWireError(string(md.Name()), field, reason)
}
