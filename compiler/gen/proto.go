package gen

import (
	"bytes"
	"fmt"
	"strings"
)

// Proto renders the schema as proto3 text. Oneof members are grouped into a
// block at the position of their first member.
func (s *Schema) Proto() []byte {
	var b bytes.Buffer
	for _, line := range strings.Split(s.Header, "\n") {
		fmt.Fprintf(&b, "// %s\n", line)
	}
	b.WriteString("\nsyntax = \"proto3\";\n")
	if s.Package != "" {
		fmt.Fprintf(&b, "\npackage %s;\n", s.Package)
	}
	if s.GoPackage != "" {
		fmt.Fprintf(&b, "\noption go_package = %q;\n", s.GoPackage)
	}
	for _, m := range s.Messages {
		b.WriteString("\n")
		if m.Node != nil {
			fmt.Fprintf(&b, "// %s\n", m.Node.Name)
		}
		fmt.Fprintf(&b, "message %s {\n", m.Name)
		done := make(map[*Oneof]bool)
		for _, f := range m.Fields {
			if f.Oneof == nil {
				writeField(&b, "  ", f)
				continue
			}
			if done[f.Oneof] {
				continue
			}
			done[f.Oneof] = true
			fmt.Fprintf(&b, "  oneof %s {\n", f.Oneof.Name)
			for _, of := range f.Oneof.Fields {
				writeField(&b, "    ", of)
			}
			b.WriteString("  }\n")
		}
		b.WriteString("}\n")
	}
	return b.Bytes()
}

func writeField(b *bytes.Buffer, indent string, f *Field) {
	b.WriteString(indent)
	if f.Repeated {
		b.WriteString("repeated ")
	}
	fmt.Fprintf(b, "%s %s = %d;\n", f.TypeString(), f.Name, f.Tag)
}
