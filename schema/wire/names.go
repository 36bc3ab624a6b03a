package wire

import (
	"fmt"
	"strings"
)

// Names of the runtime support messages. None of them contains the
// package marker, so they never collide with a mangled type name.
const (
	ArrayHolder      = "ArrayHolder"
	DynamicValue     = "DynamicValue"
	NullableList     = "NullableList"
	HolderList       = "HolderList"
	DynamicList      = "DynamicList"
	Header           = "Header"
	RequestEnvelope  = "RequestEnvelope"
	ResponseEnvelope = "ResponseEnvelope"
)

// Field and oneof names inside the runtime support messages.
const (
	WrapperOneof  = "wrapper"
	WrapperValue  = "value"
	WrapperAbsent = "absent"

	ListValues = "values"

	HolderComponent = "component_type"
	HolderFixed     = "fixed"
	HolderOneof     = "elements"
	HolderBlob      = "blob"
	HolderNullable  = "nullable"
	HolderNested    = "nested"
	HolderDynamic   = "dynamic"
	HolderNull      = "null_holder"

	NestedHolders = "holders"

	DynamicPointer = "pointer"
	DynamicOneof   = "value"
	DynamicNull    = "null"
	DynamicArray   = "array"

	HeaderName   = "name"
	HeaderValues = "values"

	EnvelopeMethod  = "method"
	EnvelopePath    = "path"
	EnvelopeStatus  = "status"
	EnvelopeHeaders = "headers"
	EnvelopeOneof   = "payload"

	PayloadBytes   = "bytes_field"
	PayloadArray   = "array_field"
	PayloadDynamic = "dynamic_field"
)

// SuperSuffix marks the field linking a message to its nearest ancestor.
const SuperSuffix = "___super"

// markers maps every separator of a qualified Go type name, and the
// underscore itself, to a marker. The set is prefix-free and every marker
// starts with an underscore, which never survives mangling on its own, so
// a mangled name splits into markers and plain bytes in exactly one way.
var markers = [...]struct{ sep, mark string }{
	{"_", "_U_"},
	{".", "___"},
	{"/", "_SL_"},
	{"-", "_DS_"},
	{"[", "_GL_"},
	{"]", "_GR_"},
	{",", "_CM_"},
	{"*", "_PT_"},
	{" ", "_SP_"},
	{"(", "_PL_"},
	{")", "_PR_"},
	{"{", "_BL_"},
	{"}", "_BR_"},
	{";", "_SC_"},
}

var mangler = func() *strings.Replacer {
	oldnew := make([]string, 0, 2*len(markers))
	for _, m := range markers {
		oldnew = append(oldnew, m.sep, m.mark)
	}
	return strings.NewReplacer(oldnew...)
}()

// Mangle maps a qualified Go type name ("example.com/shop.Pair") to a proto
// identifier ("example___com_SL_shop___Pair"). Underscores are escaped, so
// distinct names never share a mangled form.
func Mangle(qualified string) string {
	return mangler.Replace(qualified)
}

// Demangle inverts Mangle. It fails on names Mangle cannot produce.
func Demangle(name string) (string, error) {
	var b strings.Builder
	b.Grow(len(name))
	for i := 0; i < len(name); {
		if name[i] != '_' {
			b.WriteByte(name[i])
			i++
			continue
		}
		n := 0
		for _, m := range markers {
			if strings.HasPrefix(name[i:], m.mark) {
				b.WriteString(m.sep)
				n = len(m.mark)
				break
			}
		}
		if n == 0 {
			return "", fmt.Errorf("wire: %q is not a mangled name: stray underscore at offset %d", name, i)
		}
		i += n
	}
	return b.String(), nil
}

// SuperField names the field that links a message to the message of its
// nearest ancestor with the given simple name.
func SuperField(simple string) string {
	return Mangle(simple) + SuperSuffix
}

// IsSuperField reports whether name is an ancestor link field.
func IsSuperField(name string) bool {
	return strings.HasSuffix(name, SuperSuffix)
}

// ScalarVariant returns the DynamicValue variant of a scalar kind.
func ScalarVariant(s Scalar) string {
	return s.Name + "_value"
}

// MessageVariant returns the DynamicValue variant of a closure message.
func MessageVariant(message string) string {
	return message + "_value"
}

// NullableField returns the NullableList field holding wrappers of s.
func NullableField(s Scalar) string {
	return s.Name + "_values"
}

// ScalarPayload returns the envelope payload variant of a scalar kind.
func ScalarPayload(s Scalar) string {
	return s.Name + "_field"
}

// MessagePayload returns the envelope payload variant of a closure message.
func MessagePayload(message string) string {
	return message + "_field"
}
