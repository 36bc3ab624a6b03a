package gen

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinels matched by errors.Is against the typed errors below.
var (
	// ErrInvalidSchema matches a SchemaError.
	ErrInvalidSchema = errors.New("protobridge: invalid schema")
	// ErrInvalidConfig matches a ConfigError.
	ErrInvalidConfig = errors.New("protobridge: invalid configuration")
	// ErrGenerationFailed matches a GenerationError.
	ErrGenerationFailed = errors.New("protobridge: artifact generation failed")
	// ErrUnstableTags matches a StabilityError.
	ErrUnstableTags = errors.New("protobridge: unstable field tags")
)

// SchemaError reports a proto message or field that cannot be emitted, or a
// schema that protodesc refuses to compile.
type SchemaError struct {
	// Message is the proto message name, empty for schema-wide failures.
	Message string
	// Field is the wire field name inside Message, if any.
	Field  string
	Reason string
	Cause  error
}

func (e *SchemaError) Error() string {
	return describe("protobridge: schema", fieldPath(e.Message, e.Field), e.Reason, e.Cause)
}

func (e *SchemaError) Unwrap() error { return e.Cause }

func (e *SchemaError) Is(target error) bool { return target == ErrInvalidSchema }

// NewSchemaError returns a SchemaError for field of message.
func NewSchemaError(message, field, reason string, cause error) *SchemaError {
	return &SchemaError{Message: message, Field: field, Reason: reason, Cause: cause}
}

// ConfigError reports an invalid configuration key. File is set when the
// configuration was read by LoadConfig.
type ConfigError struct {
	// Key is the YAML key of the setting, e.g. "accessors.path".
	Key    string
	Value  any
	File   string
	Reason string
	Cause  error
}

func (e *ConfigError) Error() string {
	where := e.Key
	if e.Value != nil {
		where = fmt.Sprintf("%s=%v", e.Key, e.Value)
	}
	if e.File != "" {
		where = strings.TrimSuffix(e.File+": "+where, ": ")
	}
	return describe("protobridge: config", where, e.Reason, e.Cause)
}

func (e *ConfigError) Unwrap() error { return e.Cause }

func (e *ConfigError) Is(target error) bool { return target == ErrInvalidConfig }

// NewConfigError returns a ConfigError for the YAML key.
func NewConfigError(key string, value any, reason string) *ConfigError {
	return &ConfigError{Key: key, Value: value, Reason: reason}
}

// Phase is the step of artifact generation that failed.
type Phase string

// Generation phases.
const (
	PhaseStability Phase = "stability" // reading the previous snapshot
	PhaseRender    Phase = "render"    // producing artifact bytes
	PhaseFormat    Phase = "format"    // goimports on Go sources
	PhaseWrite     Phase = "write"     // staging and renaming into the target
)

// GenerationError reports an artifact that could not be produced. A failed
// run writes no artifact at all.
type GenerationError struct {
	Phase Phase
	// Artifact is the file name relative to the target directory.
	Artifact string
	Reason   string
	Cause    error
}

func (e *GenerationError) Error() string {
	where := string(e.Phase)
	if e.Artifact != "" {
		where += " " + e.Artifact
	}
	return describe("protobridge: generate", where, e.Reason, e.Cause)
}

func (e *GenerationError) Unwrap() error { return e.Cause }

func (e *GenerationError) Is(target error) bool { return target == ErrGenerationFailed }

// NewGenerationError returns a GenerationError for artifact.
func NewGenerationError(phase Phase, artifact, reason string, cause error) *GenerationError {
	return &GenerationError{Phase: phase, Artifact: artifact, Reason: reason, Cause: cause}
}

// StabilityError reports tag drift against the snapshot of the previous
// run, found with strict stability enabled.
type StabilityError struct {
	// Snapshot is the path of the previous snapshot.
	Snapshot string
	Drift    []Drift
}

func (e *StabilityError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "protobridge: %d unstable field tag(s)", len(e.Drift))
	if e.Snapshot != "" {
		fmt.Fprintf(&b, " against %s", e.Snapshot)
	}
	for _, d := range e.Drift {
		b.WriteString("\n  ")
		b.WriteString(d.String())
	}
	return b.String()
}

func (e *StabilityError) Is(target error) bool { return target == ErrUnstableTags }

// IsSchemaError reports whether err is or wraps a SchemaError.
func IsSchemaError(err error) bool {
	var target *SchemaError
	return errors.As(err, &target)
}

// IsConfigError reports whether err is or wraps a ConfigError.
func IsConfigError(err error) bool {
	var target *ConfigError
	return errors.As(err, &target)
}

// IsGenerationError reports whether err is or wraps a GenerationError.
func IsGenerationError(err error) bool {
	var target *GenerationError
	return errors.As(err, &target)
}

// fieldPath joins a message and a field into "Message.field".
func fieldPath(message, field string) string {
	switch {
	case message == "":
		return field
	case field == "":
		return message
	}
	return message + "." + field
}

// describe renders "<prefix> <where>: <reason>: <cause>", skipping empty parts.
func describe(prefix, where, reason string, cause error) string {
	var b strings.Builder
	b.WriteString(prefix)
	if where != "" {
		b.WriteString(" ")
		b.WriteString(where)
	}
	if reason != "" {
		b.WriteString(": ")
		b.WriteString(reason)
	}
	if cause != nil {
		b.WriteString(": ")
		b.WriteString(cause.Error())
	}
	return b.String()
}
