// Package protobridge derives a proto3 wire schema from the Go types reachable
// from a set of RPC entry points and translates values of those types to and
// from schema-conformant messages.
//
// Generation is a one-shot pass:
//
//	load.Walk(entries...)   closure of reachable types
//	        ↓
//	gen.Emit(cfg, graph)    one message per closure type plus support messages
//	        ↓
//	gen.Generator           .proto text, accessor tables, tag snapshot
//
// At run time a translate.Registry compiled from the same schema converts
// values in both directions:
//
//	reg, err := translate.Build(cfg, entries)
//	msg, err := reg.ToWire(&Pair{Base: Base{S: "abc"}, J: 3})
//	v, err := reg.FromWire(msg)
//
// Failures are reported with the error types of this package.
package protobridge
