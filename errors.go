package protobridge

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for the failure classes of generation and translation.
var (
	// ErrUnresolvedType is returned when the type closure references a type
	// that cannot be located. It aborts generation.
	ErrUnresolvedType = errors.New("protobridge: unresolved type")
	// ErrTranslatorNotFound is returned when encode or decode is requested for
	// a type without a registered translator.
	ErrTranslatorNotFound = errors.New("protobridge: translator not found")
	// ErrMalformedWire is returned when a decoded message matches none of the
	// expected variants.
	ErrMalformedWire = errors.New("protobridge: malformed wire message")
	// ErrTranslationFailed is the boundary error of every failed translation.
	ErrTranslationFailed = errors.New("protobridge: translation failed")
)

// UnresolvedTypeError reports a type of the closure that could not be
// resolved to a message.
type UnresolvedTypeError struct {
	Type    string   // Qualified or printed type name
	Path    []string // Entry and field path that reached the type
	Message string
}

// Error implements the error interface.
func (e *UnresolvedTypeError) Error() string {
	var b strings.Builder
	b.WriteString("protobridge: unresolved type")
	if e.Type != "" {
		fmt.Fprintf(&b, " %q", e.Type)
	}
	if len(e.Path) > 0 {
		b.WriteString(" (via ")
		b.WriteString(strings.Join(e.Path, "."))
		b.WriteString(")")
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	return b.String()
}

// Is reports whether the target matches ErrUnresolvedType.
func (e *UnresolvedTypeError) Is(target error) bool {
	return target == ErrUnresolvedType
}

// NewUnresolvedTypeError returns a new UnresolvedTypeError.
func NewUnresolvedTypeError(typ string, path []string, message string) *UnresolvedTypeError {
	return &UnresolvedTypeError{Type: typ, Path: path, Message: message}
}

// IsUnresolvedType returns true if the error is an UnresolvedTypeError.
func IsUnresolvedType(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrUnresolvedType)
}

// TranslatorNotFoundError reports a runtime type or message name that has no
// translator in the registry.
type TranslatorNotFoundError struct {
	Type string
}

// Error implements the error interface.
func (e *TranslatorNotFoundError) Error() string {
	return fmt.Sprintf("protobridge: no translator for %s", e.Type)
}

// Is reports whether the target matches ErrTranslatorNotFound.
func (e *TranslatorNotFoundError) Is(target error) bool {
	return target == ErrTranslatorNotFound
}

// NewTranslatorNotFoundError returns a new TranslatorNotFoundError.
func NewTranslatorNotFoundError(typ string) *TranslatorNotFoundError {
	return &TranslatorNotFoundError{Type: typ}
}

// IsTranslatorNotFound returns true if the error is a TranslatorNotFoundError.
func IsTranslatorNotFound(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrTranslatorNotFound)
}

// MalformedWireError reports a message that does not have the shape its
// schema promises.
type MalformedWireError struct {
	Message string // Message type name
	Field   string // Field name (if applicable)
	Reason  string
}

// Error implements the error interface.
func (e *MalformedWireError) Error() string {
	var b strings.Builder
	b.WriteString("protobridge: malformed wire")
	if e.Message != "" {
		b.WriteString(" in ")
		b.WriteString(e.Message)
	}
	if e.Field != "" {
		b.WriteString(".")
		b.WriteString(e.Field)
	}
	if e.Reason != "" {
		b.WriteString(": ")
		b.WriteString(e.Reason)
	}
	return b.String()
}

// Is reports whether the target matches ErrMalformedWire.
func (e *MalformedWireError) Is(target error) bool {
	return target == ErrMalformedWire
}

// NewMalformedWireError returns a new MalformedWireError.
func NewMalformedWireError(message, field, reason string) *MalformedWireError {
	return &MalformedWireError{Message: message, Field: field, Reason: reason}
}

// IsMalformedWire returns true if the error is a MalformedWireError.
func IsMalformedWire(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrMalformedWire)
}

// TranslationError is raised at the translation boundary. It carries the
// operation and the type being translated, and wraps the per-call cause.
type TranslationError struct {
	Op    string // "encode", "decode", "encode array", "decode array"
	Type  string
	Cause error
}

// Error implements the error interface.
func (e *TranslationError) Error() string {
	var b strings.Builder
	b.WriteString("protobridge: ")
	b.WriteString(e.Op)
	if e.Type != "" {
		b.WriteString(" ")
		b.WriteString(e.Type)
	}
	b.WriteString(" failed")
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *TranslationError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches ErrTranslationFailed.
func (e *TranslationError) Is(target error) bool {
	return target == ErrTranslationFailed
}

// NewTranslationError returns a new TranslationError. A cause that already
// is a TranslationError is returned unchanged so the boundary wraps once.
func NewTranslationError(op, typ string, cause error) error {
	var te *TranslationError
	if errors.As(cause, &te) {
		return cause
	}
	return &TranslationError{Op: op, Type: typ, Cause: cause}
}

// IsTranslationError returns true if the error is a TranslationError.
func IsTranslationError(err error) bool {
	if err == nil {
		return false
	}
	var e *TranslationError
	return errors.As(err, &e)
}
