package proto

import (
	"fmt"
	"strings"
)

// Text serializes the model as proto3 source: syntax, package, enums,
// messages, services, each in declaration order. Serialization is pure,
// so an unchanged model always prints byte-identical text.
func (m *Model) Text() string {
	var b strings.Builder
	fmt.Fprintf(&b, "syntax = %q;\n", m.Syntax)
	if m.Package != "" {
		fmt.Fprintf(&b, "\npackage %s;\n", m.Package)
	}
	for _, e := range m.Enums {
		b.WriteByte('\n')
		writeComments(&b, e.Comments, "")
		fmt.Fprintf(&b, "enum %s {\n", e.Name)
		for _, v := range e.Values {
			fmt.Fprintf(&b, "  %s = %d;\n", v.Name, v.Number)
		}
		b.WriteString("}\n")
	}
	for _, msg := range m.Messages {
		b.WriteByte('\n')
		writeComments(&b, msg.Comments, "")
		fmt.Fprintf(&b, "message %s {\n", msg.Name)
		for _, f := range msg.Fields {
			writeComments(&b, f.Comments, "  ")
			b.WriteString("  ")
			switch {
			case f.KeyType != "":
				fmt.Fprintf(&b, "map<%s, %s> %s = %d;\n", f.KeyType, f.Type, f.Name, f.Number)
			case f.Repeated:
				fmt.Fprintf(&b, "repeated %s %s = %d;\n", f.Type, f.Name, f.Number)
			case f.Optional:
				fmt.Fprintf(&b, "optional %s %s = %d;\n", f.Type, f.Name, f.Number)
			default:
				fmt.Fprintf(&b, "%s %s = %d;\n", f.Type, f.Name, f.Number)
			}
		}
		b.WriteString("}\n")
	}
	for _, svc := range m.Services {
		b.WriteByte('\n')
		fmt.Fprintf(&b, "service %s {\n", svc.Name)
		for _, mt := range svc.Methods {
			fmt.Fprintf(&b, "  rpc %s (%s) returns (%s);\n", mt.Name, mt.RequestType, mt.ResponseType)
		}
		b.WriteString("}\n")
	}
	return b.String()
}

func writeComments(b *strings.Builder, lines []string, indent string) {
	for _, line := range lines {
		b.WriteString(indent)
		if line == "" {
			b.WriteString("//\n")
			continue
		}
		b.WriteString("// ")
		b.WriteString(line)
		b.WriteByte('\n')
	}
}
