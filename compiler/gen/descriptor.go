package gen

import (
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/types/descriptorpb"

	"github.com/syssam/protobridge/schema/wire"
)

var fieldTypes = map[wire.Type]descriptorpb.FieldDescriptorProto_Type{
	wire.TypeBool:    descriptorpb.FieldDescriptorProto_TYPE_BOOL,
	wire.TypeInt32:   descriptorpb.FieldDescriptorProto_TYPE_INT32,
	wire.TypeInt64:   descriptorpb.FieldDescriptorProto_TYPE_INT64,
	wire.TypeUint32:  descriptorpb.FieldDescriptorProto_TYPE_UINT32,
	wire.TypeUint64:  descriptorpb.FieldDescriptorProto_TYPE_UINT64,
	wire.TypeFloat:   descriptorpb.FieldDescriptorProto_TYPE_FLOAT,
	wire.TypeDouble:  descriptorpb.FieldDescriptorProto_TYPE_DOUBLE,
	wire.TypeString:  descriptorpb.FieldDescriptorProto_TYPE_STRING,
	wire.TypeBytes:   descriptorpb.FieldDescriptorProto_TYPE_BYTES,
	wire.TypeMessage: descriptorpb.FieldDescriptorProto_TYPE_MESSAGE,
}

// FileDescriptorProto returns the descriptor form of the schema, the same
// file protoc would produce from Proto.
func (s *Schema) FileDescriptorProto() *descriptorpb.FileDescriptorProto {
	fd := &descriptorpb.FileDescriptorProto{
		Name:   proto.String(s.Name + ".proto"),
		Syntax: proto.String("proto3"),
	}
	if s.Package != "" {
		fd.Package = proto.String(s.Package)
	}
	if s.GoPackage != "" {
		fd.Options = &descriptorpb.FileOptions{GoPackage: proto.String(s.GoPackage)}
	}
	for _, m := range s.Messages {
		md := &descriptorpb.DescriptorProto{Name: proto.String(m.Name)}
		for _, o := range m.Oneofs {
			md.OneofDecl = append(md.OneofDecl, &descriptorpb.OneofDescriptorProto{Name: proto.String(o.Name)})
		}
		for _, f := range m.Fields {
			label := descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL
			if f.Repeated {
				label = descriptorpb.FieldDescriptorProto_LABEL_REPEATED
			}
			fdp := &descriptorpb.FieldDescriptorProto{
				Name:   proto.String(f.Name),
				Number: proto.Int32(int32(f.Tag)),
				Label:  label.Enum(),
				Type:   fieldTypes[f.Type].Enum(),
			}
			if f.Type == wire.TypeMessage {
				fdp.TypeName = proto.String("." + s.FullName(f.TypeName))
			}
			if f.Oneof != nil {
				fdp.OneofIndex = proto.Int32(int32(f.Oneof.Index))
			}
			md.Field = append(md.Field, fdp)
		}
		fd.MessageType = append(fd.MessageType, md)
	}
	return fd
}

// Compile builds the file descriptor of the schema. It validates the
// schema the way an external proto compiler would.
func (s *Schema) Compile() (protoreflect.FileDescriptor, error) {
	fd, err := protodesc.NewFile(s.FileDescriptorProto(), new(protoregistry.Files))
	if err != nil {
		return nil, NewSchemaError("", "", "compile schema", err)
	}
	return fd, nil
}
