package translate

import (
	"fmt"
	"reflect"

	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/dynamicpb"

	"github.com/syssam/protobridge"
	"github.com/syssam/protobridge/schema/wire"
)

// encodeArray encodes the slice or array v into an ArrayHolder. The element
// kind selects the variant:
//
//	scalar              flat list of the wire type, bytes as one blob
//	pointer to scalar   nullable list of wrappers
//	slice or array      nested holders, one per element
//	anything else       dynamic values, one per element
//
// The component descriptor must resolve against the closure, so that an
// empty array of a foreign element type fails here and not on decode.
func (r *Registry) encodeArray(v reflect.Value) (protoreflect.Message, error) {
	h := dynamicpb.NewMessage(r.holder)
	fields := r.holder.Fields()
	typ := v.Type()
	elem := typ.Elem()
	component := wire.Descriptor(elem)
	if t, err := wire.ParseDescriptor(component, r.schema.Graph.Lookup); err != nil || t != elem {
		return nil, protobridge.NewTranslatorNotFoundError(component)
	}
	h.Set(fields.ByName(wire.HolderComponent), protoreflect.ValueOfString(component))
	if typ.Kind() == reflect.Array {
		h.Set(fields.ByName(wire.HolderFixed), protoreflect.ValueOfBool(true))
	} else if v.IsNil() {
		h.Set(fields.ByName(wire.HolderNull), protoreflect.ValueOfBool(true))
		return h, nil
	}

	n := v.Len()
	switch {
	case elem.Kind() == reflect.Uint8:
		h.Set(fields.ByName(wire.HolderBlob), protoreflect.ValueOfBytes(encodeBytes(v)))
	case wire.IsScalar(elem):
		sc, _ := wire.LookupScalar(elem.Kind())
		list := h.Mutable(fields.ByName(protoreflect.Name(wire.ListField(sc.Wire)))).Message()
		values := list.Mutable(list.Descriptor().Fields().ByName(wire.ListValues)).List()
		for i := range n {
			values.Append(scalarValue(v.Index(i)))
		}
	case elem.Kind() == reflect.Pointer && wire.IsScalar(elem.Elem()):
		sc, _ := wire.LookupScalar(elem.Elem().Kind())
		list := h.Mutable(fields.ByName(wire.HolderNullable)).Message()
		fd := list.Descriptor().Fields().ByName(protoreflect.Name(wire.NullableField(sc)))
		values := list.Mutable(fd).List()
		for i := range n {
			encodeWrapper(values.AppendMutable().Message(), v.Index(i))
		}
	case elem.Kind() == reflect.Slice || elem.Kind() == reflect.Array:
		list := h.Mutable(fields.ByName(wire.HolderNested)).Message()
		holders := list.Mutable(list.Descriptor().Fields().ByName(wire.NestedHolders)).List()
		for i := range n {
			child, err := r.encodeArray(v.Index(i))
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
			holders.Append(protoreflect.ValueOfMessage(child))
		}
	default:
		list := h.Mutable(fields.ByName(wire.HolderDynamic)).Message()
		values := list.Mutable(list.Descriptor().Fields().ByName(wire.ListValues)).List()
		for i := range n {
			d, err := r.encodeDynamic(v.Index(i))
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
			values.Append(protoreflect.ValueOfMessage(d))
		}
	}
	return h, nil
}

// decodeArray decodes the ArrayHolder h. With a nil target the array type
// is resolved from the component descriptor against the closure; otherwise
// the descriptor must name the element type of target.
func (r *Registry) decodeArray(h protoreflect.Message, target reflect.Type) (reflect.Value, error) {
	fields := r.holder.Fields()
	component := h.Get(fields.ByName(wire.HolderComponent)).String()
	fixed := h.Get(fields.ByName(wire.HolderFixed)).Bool()

	var elem reflect.Type
	if target != nil {
		elem = target.Elem()
		if got := wire.Descriptor(elem); got != component {
			return reflect.Value{}, malformed(r.holder, wire.HolderComponent,
				fmt.Sprintf("component %q does not match %s", component, target))
		}
		if fixed != (target.Kind() == reflect.Array) {
			return reflect.Value{}, malformed(r.holder, wire.HolderFixed, fmt.Sprintf("fixed=%t does not match %s", fixed, target))
		}
	} else {
		t, err := wire.ParseDescriptor(component, r.schema.Graph.Lookup)
		if err != nil {
			return reflect.Value{}, malformed(r.holder, wire.HolderComponent, err.Error())
		}
		elem = t
	}

	variant := h.WhichOneof(r.holder.Oneofs().ByName(wire.HolderOneof))
	if variant == nil {
		return reflect.Value{}, malformed(r.holder, wire.HolderOneof, "no elements variant is set")
	}
	switch variant.Name() {
	case wire.HolderNull:
		if fixed {
			return reflect.Value{}, malformed(r.holder, wire.HolderNull, "fixed-size arrays cannot be null")
		}
		if target == nil {
			target = reflect.SliceOf(elem)
		}
		return reflect.Zero(target), nil
	case wire.HolderBlob:
		if elem.Kind() != reflect.Uint8 {
			return reflect.Value{}, r.mismatch(variant, elem)
		}
		b := h.Get(variant).Bytes()
		out := r.makeArray(target, elem, fixed, len(b))
		if err := r.checkLen(out, len(b)); err != nil {
			return reflect.Value{}, err
		}
		for i, c := range b {
			out.Index(i).SetUint(uint64(c))
		}
		return out, nil
	case wire.HolderNullable:
		if elem.Kind() != reflect.Pointer || !wire.IsScalar(elem.Elem()) {
			return reflect.Value{}, r.mismatch(variant, elem)
		}
		sc, _ := wire.LookupScalar(elem.Elem().Kind())
		list := h.Get(variant).Message()
		values := list.Get(list.Descriptor().Fields().ByName(protoreflect.Name(wire.NullableField(sc)))).List()
		out := r.makeArray(target, elem, fixed, values.Len())
		if err := r.checkLen(out, values.Len()); err != nil {
			return reflect.Value{}, err
		}
		for i := range values.Len() {
			w, err := decodeWrapper(values.Get(i).Message(), elem)
			if err != nil {
				return reflect.Value{}, fmt.Errorf("element %d: %w", i, err)
			}
			out.Index(i).Set(w)
		}
		return out, nil
	case wire.HolderNested:
		if elem.Kind() != reflect.Slice && elem.Kind() != reflect.Array {
			return reflect.Value{}, r.mismatch(variant, elem)
		}
		list := h.Get(variant).Message()
		holders := list.Get(list.Descriptor().Fields().ByName(wire.NestedHolders)).List()
		out := r.makeArray(target, elem, fixed, holders.Len())
		if err := r.checkLen(out, holders.Len()); err != nil {
			return reflect.Value{}, err
		}
		for i := range holders.Len() {
			child, err := r.decodeArray(holders.Get(i).Message(), elem)
			if err != nil {
				return reflect.Value{}, fmt.Errorf("element %d: %w", i, err)
			}
			out.Index(i).Set(child)
		}
		return out, nil
	case wire.HolderDynamic:
		if dynamicElem(elem) {
			list := h.Get(variant).Message()
			values := list.Get(list.Descriptor().Fields().ByName(wire.ListValues)).List()
			out := r.makeArray(target, elem, fixed, values.Len())
			if err := r.checkLen(out, values.Len()); err != nil {
				return reflect.Value{}, err
			}
			for i := range values.Len() {
				d, err := r.decodeDynamic(values.Get(i).Message(), elem)
				if err != nil {
					return reflect.Value{}, fmt.Errorf("element %d: %w", i, err)
				}
				out.Index(i).Set(d)
			}
			return out, nil
		}
		return reflect.Value{}, r.mismatch(variant, elem)
	}

	// Flat scalar lists.
	if !wire.IsScalar(elem) || elem.Kind() == reflect.Uint8 {
		return reflect.Value{}, r.mismatch(variant, elem)
	}
	sc, _ := wire.LookupScalar(elem.Kind())
	if string(variant.Name()) != wire.ListField(sc.Wire) {
		return reflect.Value{}, r.mismatch(variant, elem)
	}
	list := h.Get(variant).Message()
	values := list.Get(list.Descriptor().Fields().ByName(wire.ListValues)).List()
	out := r.makeArray(target, elem, fixed, values.Len())
	if err := r.checkLen(out, values.Len()); err != nil {
		return reflect.Value{}, err
	}
	for i := range values.Len() {
		if err := setScalar(out.Index(i), values.Get(i)); err != nil {
			return reflect.Value{}, malformed(r.holder, string(variant.Name()), fmt.Sprintf("element %d: %v", i, err))
		}
	}
	return out, nil
}

// makeArray allocates the decoded array. Without a target, fixed holders
// decode to an array of exactly n elements.
func (r *Registry) makeArray(target, elem reflect.Type, fixed bool, n int) reflect.Value {
	switch {
	case target == nil && fixed:
		target = reflect.ArrayOf(n, elem)
	case target == nil:
		target = reflect.SliceOf(elem)
	}
	out := reflect.New(target).Elem()
	if target.Kind() == reflect.Slice {
		out.Set(reflect.MakeSlice(target, n, n))
	}
	return out
}

func (r *Registry) checkLen(out reflect.Value, n int) error {
	if out.Len() != n {
		return malformed(r.holder, wire.HolderOneof, fmt.Sprintf("%d elements do not fit %s", n, out.Type()))
	}
	return nil
}

func (r *Registry) mismatch(variant protoreflect.FieldDescriptor, elem reflect.Type) error {
	return malformed(r.holder, string(variant.Name()), fmt.Sprintf("variant cannot hold elements of %s", elem))
}

// dynamicElem reports whether elements of t are carried as dynamic values.
func dynamicElem(t reflect.Type) bool {
	switch {
	case wire.IsScalar(t), t.Kind() == reflect.Slice, t.Kind() == reflect.Array:
		return false
	case t.Kind() == reflect.Pointer:
		return !wire.IsScalar(t.Elem())
	}
	return true
}
