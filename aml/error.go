package aml

import "fmt"

// ErrorKind enumerates the classes of failure that the AML parser reports.
type ErrorKind uint8

// The list of supported error kinds.
const (
	// ErrEndOfStream indicates that fewer bytes remained in the stream
	// than a read requested.
	ErrEndOfStream ErrorKind = iota

	// ErrUnexpectedByte indicates a byte that does not match any expected
	// grammar production. The speculative dispatcher treats this kind as
	// "try the next alternative"; anywhere else it is fatal.
	ErrUnexpectedByte

	// ErrBacktrackedFromStart indicates a rollback request that would
	// move the read pointer before the start of the stream.
	ErrBacktrackedFromStart

	// ErrInvalidPath indicates a name expression whose parent prefixes
	// pop past the root of the current scope.
	ErrInvalidPath

	// ErrUnsupported marks grammar productions that the parser recognizes
	// but does not decode at this stage.
	ErrUnsupported
)

// Error describes errors that occur while parsing AML bytecode. Offset always
// identifies the stream position at which the error was detected so that
// failures can be traced back to the offending firmware bytes.
type Error struct {
	Kind   ErrorKind
	Offset uint32

	// Byte holds the offending byte for ErrUnexpectedByte errors.
	Byte byte

	// Path holds the name expression for ErrInvalidPath errors.
	Path string

	// Production names the grammar production for ErrUnsupported errors.
	Production string
}

// Error implements the error interface.
func (e *Error) Error() string {
	switch e.Kind {
	case ErrEndOfStream:
		return fmt.Sprintf("aml: unexpected end of stream at offset %d", e.Offset)
	case ErrUnexpectedByte:
		return fmt.Sprintf("aml: unexpected byte 0x%02x at offset %d", e.Byte, e.Offset)
	case ErrBacktrackedFromStart:
		return fmt.Sprintf("aml: backtracked past the start of the stream at offset %d", e.Offset)
	case ErrInvalidPath:
		return fmt.Sprintf("aml: invalid path %q at offset %d", e.Path, e.Offset)
	case ErrUnsupported:
		return fmt.Sprintf("aml: %s is not supported at offset %d", e.Production, e.Offset)
	default:
		return fmt.Sprintf("aml: unknown error at offset %d", e.Offset)
	}
}
