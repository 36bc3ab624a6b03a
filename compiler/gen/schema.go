package gen

import (
	"github.com/syssam/protobridge/compiler/load"
	"github.com/syssam/protobridge/schema/wire"
)

// Schema is the emitted wire schema: one message per closure type followed
// by the runtime support messages and the two envelopes.
type Schema struct {
	// Package is the proto package.
	Package string
	// GoPackage is the go_package option, if any.
	GoPackage string
	// Name is the base file name of the schema.
	Name string
	// Header is the comment written at the top of the schema text.
	Header   string
	Graph    *load.Graph
	Messages []*Message

	byName map[string]*Message
}

// Message returns the message with the given name.
func (s *Schema) Message(name string) (*Message, bool) {
	m, ok := s.byName[name]
	return m, ok
}

// FullName returns the fully-qualified proto name of a message.
func (s *Schema) FullName(message string) string {
	if s.Package == "" {
		return message
	}
	return s.Package + "." + message
}

// Closure returns the messages emitted for closure types, in closure order.
func (s *Schema) Closure() []*Message {
	out := make([]*Message, 0, len(s.Graph.Nodes))
	for _, m := range s.Messages {
		if m.Node != nil {
			out = append(out, m)
		}
	}
	return out
}

// Message is one emitted message.
type Message struct {
	Name string
	// Node is the closure type of the message, nil for support messages.
	Node *load.TypeNode
	// Fields in tag order; oneof members included.
	Fields []*Field
	Oneofs []*Oneof
}

// Field returns the field with the given name, or nil.
func (m *Message) Field(name string) *Field {
	for _, f := range m.Fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

func (m *Message) add(f *Field) *Field {
	f.Tag = len(m.Fields) + 1
	m.Fields = append(m.Fields, f)
	if f.Oneof != nil {
		f.Oneof.Fields = append(f.Oneof.Fields, f)
	}
	return f
}

func (m *Message) oneof(name string) *Oneof {
	o := &Oneof{Name: name, Index: len(m.Oneofs)}
	m.Oneofs = append(m.Oneofs, o)
	return o
}

// Field is one field of a message.
type Field struct {
	Name string
	Tag  int
	Type wire.Type
	// TypeName is the referenced message for TypeMessage fields.
	TypeName string
	Repeated bool
	Oneof    *Oneof
	// Source is the struct field of closure messages.
	Source *load.Field
}

// TypeString returns the type as written in schema text.
func (f *Field) TypeString() string {
	if f.Type == wire.TypeMessage {
		return f.TypeName
	}
	return f.Type.String()
}

// Oneof groups fields of which at most one is set.
type Oneof struct {
	Name   string
	Index  int
	Fields []*Field
}
