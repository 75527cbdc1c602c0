package proto

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/jhump/protoreflect/desc"
	"github.com/jhump/protoreflect/desc/protoparse"
	"google.golang.org/protobuf/types/descriptorpb"

	"github.com/typeglot/typeglot/ir"
)

const parseFilename = "schema.proto"

// Parse compiles a single proto3 source with no imports and returns its
// model. Leading comments attach to the declarations they precede.
func Parse(data []byte) (*Model, error) {
	parser := protoparse.Parser{
		IncludeSourceCodeInfo: true,
		Accessor: func(filename string) (io.ReadCloser, error) {
			if filename == parseFilename {
				return io.NopCloser(bytes.NewReader(data)), nil
			}
			return nil, fmt.Errorf("import not supported: %s", filename)
		},
	}
	files, err := parser.ParseFiles(parseFilename)
	if err != nil {
		return nil, &ir.ParseError{Format: "proto", Context: parseFilename, Err: err}
	}
	if len(files) == 0 {
		return nil, &ir.ParseError{Format: "proto", Context: parseFilename, Message: "no file descriptor produced"}
	}
	return fromDescriptor(files[0])
}

func fromDescriptor(fd *desc.FileDescriptor) (*Model, error) {
	if !fd.IsProto3() {
		return nil, &ir.ParseError{Format: "proto", Context: fd.GetName(), Message: "only proto3 sources are supported"}
	}
	m := &Model{Syntax: "proto3", Package: fd.GetPackage()}
	for _, en := range fd.GetEnumTypes() {
		e := Enum{Name: en.GetName(), Comments: leadingComments(en.GetSourceInfo())}
		for _, v := range en.GetValues() {
			e.Values = append(e.Values, EnumValue{Name: v.GetName(), Number: v.GetNumber()})
		}
		m.Enums = append(m.Enums, e)
	}
	for _, md := range fd.GetMessageTypes() {
		msg, err := parseMessage(md)
		if err != nil {
			return nil, err
		}
		m.Messages = append(m.Messages, msg)
	}
	for _, sd := range fd.GetServices() {
		svc := ServiceSpec{Name: sd.GetName()}
		for _, mt := range sd.GetMethods() {
			svc.Methods = append(svc.Methods, MethodSpec{
				Name:         mt.GetName(),
				RequestType:  mt.GetInputType().GetName(),
				ResponseType: mt.GetOutputType().GetName(),
			})
		}
		m.Services = append(m.Services, svc)
	}
	return m, nil
}

func parseMessage(md *desc.MessageDescriptor) (Message, error) {
	msg := Message{Name: md.GetName(), Comments: leadingComments(md.GetSourceInfo())}
	for _, fd := range md.GetFields() {
		f := Field{
			Name:     fd.GetName(),
			Number:   fd.GetNumber(),
			Comments: leadingComments(fd.GetSourceInfo()),
		}
		switch {
		case fd.IsMap():
			if fd.GetMapKeyType().GetType() != descriptorpb.FieldDescriptorProto_TYPE_STRING {
				return Message{}, &ir.ParseError{
					Format:  "proto",
					Context: md.GetName() + "." + fd.GetName(),
					Message: "only string map keys are supported",
				}
			}
			f.KeyType = "string"
			f.Type = typeNameOf(fd.GetMapValueType())
		case fd.IsRepeated():
			f.Repeated = true
			f.Type = typeNameOf(fd)
		default:
			f.Optional = fd.AsFieldDescriptorProto().GetProto3Optional()
			f.Type = typeNameOf(fd)
		}
		msg.Fields = append(msg.Fields, f)
	}
	return msg, nil
}

func typeNameOf(fd *desc.FieldDescriptor) string {
	switch fd.GetType() {
	case descriptorpb.FieldDescriptorProto_TYPE_STRING:
		return "string"
	case descriptorpb.FieldDescriptorProto_TYPE_BYTES:
		return "bytes"
	case descriptorpb.FieldDescriptorProto_TYPE_BOOL:
		return "bool"
	case descriptorpb.FieldDescriptorProto_TYPE_INT32,
		descriptorpb.FieldDescriptorProto_TYPE_SINT32,
		descriptorpb.FieldDescriptorProto_TYPE_SFIXED32:
		return "int32"
	case descriptorpb.FieldDescriptorProto_TYPE_INT64,
		descriptorpb.FieldDescriptorProto_TYPE_SINT64,
		descriptorpb.FieldDescriptorProto_TYPE_SFIXED64:
		return "int64"
	case descriptorpb.FieldDescriptorProto_TYPE_UINT32,
		descriptorpb.FieldDescriptorProto_TYPE_FIXED32:
		return "uint32"
	case descriptorpb.FieldDescriptorProto_TYPE_UINT64,
		descriptorpb.FieldDescriptorProto_TYPE_FIXED64:
		return "uint64"
	case descriptorpb.FieldDescriptorProto_TYPE_FLOAT:
		return "float"
	case descriptorpb.FieldDescriptorProto_TYPE_DOUBLE:
		return "double"
	case descriptorpb.FieldDescriptorProto_TYPE_MESSAGE:
		return fd.GetMessageType().GetName()
	case descriptorpb.FieldDescriptorProto_TYPE_ENUM:
		return fd.GetEnumType().GetName()
	}
	return "string"
}

// leadingComments splits a descriptor's leading comment block into
// lines, dropping the single space the comment syntax inserts.
func leadingComments(info *descriptorpb.SourceCodeInfo_Location) []string {
	text := info.GetLeadingComments()
	if text == "" {
		return nil
	}
	lines := strings.Split(strings.TrimSuffix(text, "\n"), "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		out = append(out, strings.TrimPrefix(line, " "))
	}
	return out
}

// ToDocument maps a model onto the IR: enums become string enums keyed
// by value name, messages become objects, and field shapes reverse the
// emitter's mapping (repeated → Array, optional → nullable non-required
// property, map → Map, type references → Reference).
func ToDocument(m *Model) (*ir.Document, error) {
	doc := ir.NewDocument()
	declared := make(map[string]bool, len(m.Enums)+len(m.Messages))
	for _, e := range m.Enums {
		declared[e.Name] = true
	}
	for _, msg := range m.Messages {
		declared[msg.Name] = true
	}

	for _, e := range m.Enums {
		values := make([]any, 0, len(e.Values))
		for _, v := range e.Values {
			values = append(values, v.Name)
		}
		enum := &ir.Enum{ScalarKind: ir.ScalarString, Values: values}
		enum.Metadata = metaFromComments(e.Comments)
		if err := doc.Add(e.Name, enum); err != nil {
			return nil, err
		}
	}
	for _, msg := range m.Messages {
		obj := &ir.Object{}
		obj.Metadata = metaFromComments(msg.Comments)
		for _, f := range msg.Fields {
			prop, err := propertyFor(msg.Name, f, declared)
			if err != nil {
				return nil, err
			}
			obj.Properties = append(obj.Properties, prop)
		}
		if err := doc.Add(msg.Name, obj); err != nil {
			return nil, err
		}
	}
	return doc, nil
}

func propertyFor(message string, f Field, declared map[string]bool) (ir.Property, error) {
	base, err := nodeFor(message, f, declared)
	if err != nil {
		return ir.Property{}, err
	}
	prop := ir.Property{Name: f.Name, Required: true, Meta: metaFromComments(f.Comments)}
	switch {
	case f.KeyType != "":
		prop.Schema = ir.MapOf(base)
	case f.Repeated:
		prop.Schema = ir.ArrayOf(base)
	case f.Optional:
		prop.Schema = ir.Nullable(base)
		prop.Required = false
	default:
		prop.Schema = base
	}
	return prop, nil
}

func nodeFor(message string, f Field, declared map[string]bool) (ir.Node, error) {
	if n := scalarFor(f.Type); n != nil {
		return n, nil
	}
	if declared[f.Type] {
		return ir.Ref(f.Type), nil
	}
	return nil, &ir.ParseError{
		Format:  "proto",
		Context: message + "." + f.Name,
		Message: fmt.Sprintf("unknown type %q", f.Type),
	}
}

func scalarFor(keyword string) ir.Node {
	switch keyword {
	case "string":
		return ir.String()
	case "bytes":
		return ir.Formatted(ir.ScalarString, "byte")
	case "bool":
		return ir.Boolean()
	case "int32", "int64", "uint32", "uint64", "float", "double":
		return ir.Formatted(ir.ScalarNumber, keyword)
	case "sint32", "sfixed32":
		return ir.Formatted(ir.ScalarNumber, "int32")
	case "sint64", "sfixed64":
		return ir.Formatted(ir.ScalarNumber, "int64")
	case "fixed32":
		return ir.Formatted(ir.ScalarNumber, "uint32")
	case "fixed64":
		return ir.Formatted(ir.ScalarNumber, "uint64")
	}
	return nil
}

// metaFromComments reverses the emitter's comment rendering: leading
// "@name value" lines become tags, everything else is description.
func metaFromComments(lines []string) *ir.Metadata {
	if len(lines) == 0 {
		return nil
	}
	m := &ir.Metadata{}
	var text []string
	for _, line := range lines {
		if rest, ok := strings.CutPrefix(line, "@"); ok {
			name, value, _ := strings.Cut(rest, " ")
			m.Tags = append(m.Tags, ir.Tag{Name: name, Value: value})
			continue
		}
		text = append(text, line)
	}
	m.Description = strings.Join(text, "\n")
	if m.IsZero() {
		return nil
	}
	return m
}
