package translate

import (
	"reflect"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/dynamicpb"

	"github.com/syssam/protobridge"
	"github.com/syssam/protobridge/compiler/gen"
	"github.com/syssam/protobridge/compiler/load"
	"github.com/syssam/protobridge/schema/wire"
)

// Header is one transport header with all of its values.
type Header struct {
	Name   string
	Values []string
}

// Request is the transport view of a RequestEnvelope.
type Request struct {
	Method  string
	Path    string
	Headers []Header
	// Payload is one parameter value of an entry, or nil.
	Payload any
}

// Response is the transport view of a ResponseEnvelope.
type Response struct {
	Status  int32
	Headers []Header
	// Payload is one result value of an entry, or nil.
	Payload any
}

var anyType = reflect.TypeFor[any]()

// WrapRequest encodes req into a RequestEnvelope. The payload must have a
// variant in the envelope; values without a static variant of their own
// ride in the dynamic variant when the envelope has one.
func (r *Registry) WrapRequest(req *Request) (proto.Message, error) {
	m := dynamicpb.NewMessage(r.request)
	fields := r.request.Fields()
	m.Set(fields.ByName(wire.EnvelopeMethod), protoreflect.ValueOfString(req.Method))
	m.Set(fields.ByName(wire.EnvelopePath), protoreflect.ValueOfString(req.Path))
	r.wrapHeaders(m, req.Headers)
	if err := r.wrapPayload(m, req.Payload); err != nil {
		return nil, protobridge.NewTranslationError("encode", wire.RequestEnvelope, err)
	}
	return m, nil
}

// UnwrapRequest decodes a RequestEnvelope. Struct payloads decode to a
// pointer to a new value of their type.
func (r *Registry) UnwrapRequest(m proto.Message) (*Request, error) {
	pm, err := r.envelope(m, r.request)
	if err != nil {
		return nil, protobridge.NewTranslationError("decode", wire.RequestEnvelope, err)
	}
	fields := r.request.Fields()
	req := &Request{
		Method:  pm.Get(fields.ByName(wire.EnvelopeMethod)).String(),
		Path:    pm.Get(fields.ByName(wire.EnvelopePath)).String(),
		Headers: r.unwrapHeaders(pm),
	}
	if req.Payload, err = r.unwrapPayload(pm); err != nil {
		return nil, protobridge.NewTranslationError("decode", wire.RequestEnvelope, err)
	}
	return req, nil
}

// WrapResponse encodes resp into a ResponseEnvelope.
func (r *Registry) WrapResponse(resp *Response) (proto.Message, error) {
	m := dynamicpb.NewMessage(r.response)
	m.Set(r.response.Fields().ByName(wire.EnvelopeStatus), protoreflect.ValueOfInt32(resp.Status))
	r.wrapHeaders(m, resp.Headers)
	if err := r.wrapPayload(m, resp.Payload); err != nil {
		return nil, protobridge.NewTranslationError("encode", wire.ResponseEnvelope, err)
	}
	return m, nil
}

// UnwrapResponse decodes a ResponseEnvelope.
func (r *Registry) UnwrapResponse(m proto.Message) (*Response, error) {
	pm, err := r.envelope(m, r.response)
	if err != nil {
		return nil, protobridge.NewTranslationError("decode", wire.ResponseEnvelope, err)
	}
	resp := &Response{
		Status:  int32(pm.Get(r.response.Fields().ByName(wire.EnvelopeStatus)).Int()),
		Headers: r.unwrapHeaders(pm),
	}
	if resp.Payload, err = r.unwrapPayload(pm); err != nil {
		return nil, protobridge.NewTranslationError("decode", wire.ResponseEnvelope, err)
	}
	return resp, nil
}

func (r *Registry) envelope(m proto.Message, md protoreflect.MessageDescriptor) (protoreflect.Message, error) {
	pm, err := r.adopt(m)
	if err != nil {
		return nil, err
	}
	if pm.Descriptor() != md {
		return nil, malformed(pm.Descriptor(), "", "not a "+string(md.Name()))
	}
	return pm, nil
}

func (r *Registry) wrapHeaders(m protoreflect.Message, headers []Header) {
	if len(headers) == 0 {
		return
	}
	list := m.Mutable(m.Descriptor().Fields().ByName(wire.EnvelopeHeaders)).List()
	for _, h := range headers {
		hm := list.AppendMutable().Message()
		fields := hm.Descriptor().Fields()
		hm.Set(fields.ByName(wire.HeaderName), protoreflect.ValueOfString(h.Name))
		values := hm.Mutable(fields.ByName(wire.HeaderValues)).List()
		for _, v := range h.Values {
			values.Append(protoreflect.ValueOfString(v))
		}
	}
}

func (r *Registry) unwrapHeaders(m protoreflect.Message) []Header {
	list := m.Get(m.Descriptor().Fields().ByName(wire.EnvelopeHeaders)).List()
	if list.Len() == 0 {
		return nil
	}
	headers := make([]Header, list.Len())
	for i := range list.Len() {
		hm := list.Get(i).Message()
		fields := hm.Descriptor().Fields()
		headers[i].Name = hm.Get(fields.ByName(wire.HeaderName)).String()
		values := hm.Get(fields.ByName(wire.HeaderValues)).List()
		for j := range values.Len() {
			headers[i].Values = append(headers[i].Values, values.Get(j).String())
		}
	}
	return headers
}

func (r *Registry) wrapPayload(m protoreflect.Message, payload any) error {
	if payload == nil {
		return nil
	}
	v := reflect.ValueOf(payload)
	p := gen.PayloadOf(v.Type())
	fd := m.Descriptor().Fields().ByName(protoreflect.Name(p.Name))
	if fd == nil {
		if fd = m.Descriptor().Fields().ByName(wire.PayloadDynamic); fd == nil {
			return protobridge.NewTranslatorNotFoundError(v.Type().String())
		}
		p.Kind = load.KindDynamic
	}
	switch p.Kind {
	case load.KindPrimitive:
		m.Set(fd, scalarValue(v))
	case load.KindWrapper:
		encodeWrapper(m.Mutable(fd).Message(), v)
	case load.KindStruct:
		tr, ok := r.lookup(v.Type())
		if !ok {
			return protobridge.NewTranslatorNotFoundError(v.Type().String())
		}
		if v.Kind() == reflect.Pointer {
			if v.IsNil() {
				return nil
			}
		} else {
			ptr := reflect.New(v.Type())
			ptr.Elem().Set(v)
			v = ptr
		}
		sub, err := tr.encode(v)
		if err != nil {
			return err
		}
		m.Set(fd, protoreflect.ValueOfMessage(sub))
	case load.KindArray:
		if fd.Kind() == protoreflect.BytesKind {
			m.Set(fd, protoreflect.ValueOfBytes(encodeBytes(v)))
			return nil
		}
		h, err := r.encodeArray(v)
		if err != nil {
			return err
		}
		m.Set(fd, protoreflect.ValueOfMessage(h))
	default:
		d, err := r.encodeDynamic(v)
		if err != nil {
			return err
		}
		m.Set(fd, protoreflect.ValueOfMessage(d))
	}
	return nil
}

// unwrapPayload decodes the payload variant that is set. The variant's
// descriptor alone selects the Go type, so no static target is involved.
func (r *Registry) unwrapPayload(m protoreflect.Message) (any, error) {
	fd := m.WhichOneof(m.Descriptor().Oneofs().ByName(wire.EnvelopeOneof))
	if fd == nil {
		return nil, nil
	}
	if fd.Kind() == protoreflect.BytesKind {
		b, err := decodeBytes(m.Get(fd).Bytes(), reflect.TypeFor[[]byte]())
		if err != nil {
			return nil, err
		}
		return b.Interface(), nil
	}
	if fd.Message() == nil {
		sc, ok := r.variants[fd.Name()]
		if !ok {
			return nil, malformed(m.Descriptor(), string(fd.Name()), "unknown payload variant")
		}
		v := reflect.New(sc.Type).Elem()
		if err := setScalar(v, m.Get(fd)); err != nil {
			return nil, malformed(m.Descriptor(), string(fd.Name()), err.Error())
		}
		return v.Interface(), nil
	}

	sub := m.Get(fd).Message()
	name := string(fd.Message().Name())
	switch name {
	case wire.ArrayHolder:
		v, err := r.decodeArray(sub, nil)
		if err != nil {
			return nil, err
		}
		return v.Interface(), nil
	case wire.DynamicValue:
		v, err := r.decodeDynamic(sub, anyType)
		if err != nil {
			return nil, err
		}
		if !v.IsValid() || isNil(v) {
			return nil, nil
		}
		return v.Interface(), nil
	}
	if tr, ok := r.byName[name]; ok {
		p := tr.newInstance()
		if err := tr.populate(sub, p); err != nil {
			return nil, err
		}
		return p.Interface(), nil
	}
	for _, sc := range wire.Scalars {
		if sc.Wrapper == name {
			v, err := decodeWrapper(sub, reflect.PointerTo(sc.Type))
			if err != nil {
				return nil, err
			}
			return v.Interface(), nil
		}
	}
	return nil, malformed(m.Descriptor(), string(fd.Name()), "unknown payload variant")
}
