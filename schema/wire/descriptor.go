// Package wire holds the naming rules and type descriptors shared by the
// schema compiler and the runtime translators. Both sides must agree on
// every name produced here byte for byte.
package wire

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// Resolver resolves a qualified type name to its Go type. Resolution is
// closed-world: only names known at generation time resolve.
type Resolver func(name string) (reflect.Type, bool)

var anyType = reflect.TypeFor[any]()

// Qualified returns the qualified name of a named type, or "" for unnamed
// and builtin types.
func Qualified(t reflect.Type) string {
	if t.Name() == "" || t.PkgPath() == "" {
		return ""
	}
	return t.PkgPath() + "." + t.Name()
}

// Descriptor returns the component descriptor of t, e.g. "[]*int32",
// "[2]example.com/shop.Pair" or "any".
func Descriptor(t reflect.Type) string {
	switch t.Kind() {
	case reflect.Pointer:
		return "*" + Descriptor(t.Elem())
	case reflect.Slice:
		return "[]" + Descriptor(t.Elem())
	case reflect.Array:
		return "[" + strconv.Itoa(t.Len()) + "]" + Descriptor(t.Elem())
	}
	if q := Qualified(t); q != "" {
		return q
	}
	if t.Name() != "" {
		return t.Name()
	}
	if t == anyType {
		return "any"
	}
	return t.String()
}

// ParseDescriptor inverts Descriptor. Builtin scalar names and "any" resolve
// directly, every other base name goes through resolve.
func ParseDescriptor(desc string, resolve Resolver) (reflect.Type, error) {
	switch {
	case strings.HasPrefix(desc, "*"):
		elem, err := ParseDescriptor(desc[1:], resolve)
		if err != nil {
			return nil, err
		}
		return reflect.PointerTo(elem), nil
	case strings.HasPrefix(desc, "[]"):
		elem, err := ParseDescriptor(desc[2:], resolve)
		if err != nil {
			return nil, err
		}
		return reflect.SliceOf(elem), nil
	case strings.HasPrefix(desc, "["):
		end := strings.IndexByte(desc, ']')
		if end < 0 {
			return nil, fmt.Errorf("wire: malformed array descriptor %q", desc)
		}
		n, err := strconv.Atoi(desc[1:end])
		if err != nil || n < 0 {
			return nil, fmt.Errorf("wire: malformed array length in %q", desc)
		}
		elem, err := ParseDescriptor(desc[end+1:], resolve)
		if err != nil {
			return nil, err
		}
		return reflect.ArrayOf(n, elem), nil
	case desc == "any":
		return anyType, nil
	}
	if s, ok := ScalarByName(desc); ok {
		return s.Type, nil
	}
	if resolve != nil {
		if t, ok := resolve(desc); ok {
			return t, nil
		}
	}
	return nil, fmt.Errorf("wire: unknown type %q", desc)
}
