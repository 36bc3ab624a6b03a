// Package gen emits the proto3 wire schema of a type graph and generates
// the artifacts derived from it.
//
// # Architecture
//
// The generation pipeline follows this flow:
//
//	Entry points (load.Entry)
//	        ↓
//	   load.Walk (type closure)
//	        ↓
//	   Emit (Schema: closure messages + support messages + envelopes)
//	        ↓
//	   Compile (descriptors, validated like protoc would)
//	        ↓
//	   Generator (service.proto, service_accessors.go, service.snapshot)
//
// # Wire Shapes
//
// Every closure type gets one message named by wire.Mangle of its qualified
// name. Field tags follow declaration order starting at 1:
//
//   - scalar fields use their wire scalar (int8 and int16 ride in int32)
//   - pointers to scalars use a <Kind>Wrapper message with an absent variant
//   - []byte and [N]byte are opaque bytes
//   - other slices and arrays use the recursive ArrayHolder
//   - struct fields reference the struct's message
//   - interfaces, maps and other unmapped types use DynamicValue
//   - the first embedded struct links the nearest ancestor as <Name>___super
//
// # Error Handling
//
// The package uses structured error types:
//
//   - SchemaError: emission and compile errors
//   - ConfigError: configuration errors
//   - GenerationError: artifact rendering and writing errors
//   - StabilityError: tag drift against the previous snapshot
//
// # Configuration
//
// Configuration is done via the functional options pattern, or read from a
// YAML file with LoadConfig:
//
//	cfg, err := gen.NewConfig(
//	    gen.WithPackage("shop.v1"),
//	    gen.WithTarget("./wire"),
//	    gen.WithAccessors("example.com/shop", "shop"),
//	    gen.WithSnapshot(true),
//	)
package gen
