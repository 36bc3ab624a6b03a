package gen

import (
	"fmt"
	"reflect"

	"github.com/syssam/protobridge/compiler/load"
	"github.com/syssam/protobridge/schema/wire"
)

// Emit assigns every closure type of g its message and appends the runtime
// support messages and the request and response envelopes. Tags are the
// declaration ordinals plus one, so an unchanged graph emits an identical
// schema.
func Emit(cfg *Config, g *load.Graph) (*Schema, error) {
	if cfg == nil {
		return nil, NewConfigError("", nil, "config cannot be nil")
	}
	if g == nil {
		return nil, NewSchemaError("", "", "nil type graph", nil)
	}
	s := &Schema{
		Package:   cfg.Package,
		GoPackage: cfg.GoPackage,
		Name:      cfg.Name,
		Header:    cfg.Header,
		Graph:     g,
		byName:    make(map[string]*Message),
	}
	for _, n := range g.Nodes {
		m, err := emitNode(n)
		if err != nil {
			return nil, err
		}
		if err := s.append(m); err != nil {
			return nil, err
		}
	}
	for _, m := range supportMessages(s.Closure()) {
		if err := s.append(m); err != nil {
			return nil, err
		}
	}
	req := &Message{Name: wire.RequestEnvelope}
	req.add(&Field{Name: wire.EnvelopeMethod, Type: wire.TypeString})
	req.add(&Field{Name: wire.EnvelopePath, Type: wire.TypeString})
	req.add(&Field{Name: wire.EnvelopeHeaders, Type: wire.TypeMessage, TypeName: wire.Header, Repeated: true})
	addPayloads(req, g.Requests)
	resp := &Message{Name: wire.ResponseEnvelope}
	resp.add(&Field{Name: wire.EnvelopeStatus, Type: wire.TypeInt32})
	resp.add(&Field{Name: wire.EnvelopeHeaders, Type: wire.TypeMessage, TypeName: wire.Header, Repeated: true})
	addPayloads(resp, g.Responses)
	for _, m := range []*Message{req, resp} {
		if err := s.append(m); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Schema) append(m *Message) error {
	if _, ok := s.byName[m.Name]; ok {
		return NewSchemaError(m.Name, "", "message emitted twice", nil)
	}
	s.byName[m.Name] = m
	s.Messages = append(s.Messages, m)
	return nil
}

func emitNode(n *load.TypeNode) (*Message, error) {
	m := &Message{Name: n.MessageName(), Node: n}
	for _, lf := range n.Fields {
		f := &Field{Name: lf.Name, Source: lf}
		switch lf.Shape {
		case load.ShapeScalar:
			sc, _ := wire.LookupScalar(lf.Type.Kind())
			f.Type = sc.Wire
		case load.ShapeWrapper:
			sc, _ := wire.LookupScalar(lf.Type.Elem().Kind())
			f.Type, f.TypeName = wire.TypeMessage, sc.Wrapper
		case load.ShapeBytes:
			f.Type = wire.TypeBytes
		case load.ShapeArray:
			f.Type, f.TypeName = wire.TypeMessage, wire.ArrayHolder
		case load.ShapeMessage, load.ShapeSuper:
			if lf.Node == nil {
				return nil, NewSchemaError(m.Name, lf.Name, "reference to a type outside the closure", nil)
			}
			f.Type, f.TypeName = wire.TypeMessage, lf.Node.MessageName()
		case load.ShapeDynamic:
			f.Type, f.TypeName = wire.TypeMessage, wire.DynamicValue
		default:
			return nil, NewSchemaError(m.Name, lf.Name, fmt.Sprintf("unknown field shape %v", lf.Shape), nil)
		}
		if m.add(f).Tag != lf.Tag() {
			return nil, NewSchemaError(m.Name, lf.Name, "field tag does not follow declaration order", nil)
		}
	}
	return m, nil
}

// supportMessages returns the fixed runtime messages. Their tags never
// depend on the closure except for the trailing closure variants of
// DynamicValue.
func supportMessages(closure []*Message) []*Message {
	var out []*Message
	for _, sc := range wire.Scalars {
		m := &Message{Name: sc.Wrapper}
		o := m.oneof(wire.WrapperOneof)
		m.add(&Field{Name: wire.WrapperValue, Type: sc.Wire, Oneof: o})
		m.add(&Field{Name: wire.WrapperAbsent, Type: wire.TypeBool, Oneof: o})
		out = append(out, m)
	}
	for _, t := range wire.ListTypes {
		m := &Message{Name: wire.ListName(t)}
		m.add(&Field{Name: wire.ListValues, Type: t, Repeated: true})
		out = append(out, m)
	}

	nullable := &Message{Name: wire.NullableList}
	for _, sc := range wire.Scalars {
		nullable.add(&Field{Name: wire.NullableField(sc), Type: wire.TypeMessage, TypeName: sc.Wrapper, Repeated: true})
	}
	nested := &Message{Name: wire.HolderList}
	nested.add(&Field{Name: wire.NestedHolders, Type: wire.TypeMessage, TypeName: wire.ArrayHolder, Repeated: true})
	dynamic := &Message{Name: wire.DynamicList}
	dynamic.add(&Field{Name: wire.ListValues, Type: wire.TypeMessage, TypeName: wire.DynamicValue, Repeated: true})
	out = append(out, nullable, nested, dynamic)

	holder := &Message{Name: wire.ArrayHolder}
	holder.add(&Field{Name: wire.HolderComponent, Type: wire.TypeString})
	holder.add(&Field{Name: wire.HolderFixed, Type: wire.TypeBool})
	elems := holder.oneof(wire.HolderOneof)
	for _, t := range wire.ListTypes {
		holder.add(&Field{Name: wire.ListField(t), Type: wire.TypeMessage, TypeName: wire.ListName(t), Oneof: elems})
	}
	holder.add(&Field{Name: wire.HolderBlob, Type: wire.TypeBytes, Oneof: elems})
	holder.add(&Field{Name: wire.HolderNullable, Type: wire.TypeMessage, TypeName: wire.NullableList, Oneof: elems})
	holder.add(&Field{Name: wire.HolderNested, Type: wire.TypeMessage, TypeName: wire.HolderList, Oneof: elems})
	holder.add(&Field{Name: wire.HolderDynamic, Type: wire.TypeMessage, TypeName: wire.DynamicList, Oneof: elems})
	holder.add(&Field{Name: wire.HolderNull, Type: wire.TypeBool, Oneof: elems})

	value := &Message{Name: wire.DynamicValue}
	value.add(&Field{Name: wire.DynamicPointer, Type: wire.TypeBool})
	variants := value.oneof(wire.DynamicOneof)
	value.add(&Field{Name: wire.DynamicNull, Type: wire.TypeBool, Oneof: variants})
	for _, sc := range wire.Scalars {
		value.add(&Field{Name: wire.ScalarVariant(sc), Type: sc.Wire, Oneof: variants})
	}
	value.add(&Field{Name: wire.DynamicArray, Type: wire.TypeMessage, TypeName: wire.ArrayHolder, Oneof: variants})
	for _, cm := range closure {
		value.add(&Field{Name: wire.MessageVariant(cm.Name), Type: wire.TypeMessage, TypeName: cm.Name, Oneof: variants})
	}

	header := &Message{Name: wire.Header}
	header.add(&Field{Name: wire.HeaderName, Type: wire.TypeString})
	header.add(&Field{Name: wire.HeaderValues, Type: wire.TypeString, Repeated: true})

	return append(out, holder, value, header)
}

// addPayloads appends the payload oneof of an envelope: one variant per
// distinct payload shape of types.
func addPayloads(m *Message, types []reflect.Type) {
	var (
		o    *Oneof
		seen = make(map[string]bool)
	)
	for _, t := range types {
		p := PayloadOf(t)
		if seen[p.Name] {
			continue
		}
		seen[p.Name] = true
		if o == nil {
			o = m.oneof(wire.EnvelopeOneof)
		}
		m.add(&Field{Name: p.Name, Type: p.Type, TypeName: p.TypeName, Oneof: o})
	}
}

// Payload is the envelope variant carrying values of one Go type.
type Payload struct {
	Name     string
	Type     wire.Type
	TypeName string
	Kind     load.Kind
}

// PayloadOf returns the envelope variant of values of type t. Values and
// pointers of a struct share the variant of the struct message.
func PayloadOf(t reflect.Type) Payload {
	switch k := load.KindOf(t); k {
	case load.KindPrimitive:
		sc, _ := wire.LookupScalar(t.Kind())
		return Payload{Name: wire.ScalarPayload(sc), Type: sc.Wire, Kind: k}
	case load.KindWrapper:
		sc, _ := wire.LookupScalar(t.Elem().Kind())
		return Payload{Name: wire.MessagePayload(sc.Wrapper), Type: wire.TypeMessage, TypeName: sc.Wrapper, Kind: k}
	case load.KindStruct:
		if t.Kind() == reflect.Pointer {
			t = t.Elem()
		}
		if name := wire.Qualified(t); name != "" {
			msg := wire.Mangle(name)
			return Payload{Name: wire.MessagePayload(msg), Type: wire.TypeMessage, TypeName: msg, Kind: k}
		}
	case load.KindArray:
		if t.Elem().Kind() == reflect.Uint8 {
			return Payload{Name: wire.PayloadBytes, Type: wire.TypeBytes, Kind: k}
		}
		return Payload{Name: wire.PayloadArray, Type: wire.TypeMessage, TypeName: wire.ArrayHolder, Kind: k}
	}
	return Payload{Name: wire.PayloadDynamic, Type: wire.TypeMessage, TypeName: wire.DynamicValue, Kind: load.KindDynamic}
}
