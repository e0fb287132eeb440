package codec

import (
	"errors"
	"fmt"
)

// Sentinel errors for common decode/encode failures.
var (
	// ErrBadHeader indicates the header magic byte or version was wrong.
	ErrBadHeader = errors.New("codec: bad header")

	// ErrUnknownRecordTag indicates a top-level byte did not match any
	// known record tag.
	ErrUnknownRecordTag = errors.New("codec: unknown record tag")

	// ErrUnknownMemberTag indicates a member-position byte did not match
	// any known member tag.
	ErrUnknownMemberTag = errors.New("codec: unknown member tag")

	// ErrUnknownMemberType indicates a member-type tag byte was invalid.
	ErrUnknownMemberType = errors.New("codec: unknown member type")

	// ErrUnknownPrimitiveType indicates a primitive-type byte was invalid.
	ErrUnknownPrimitiveType = errors.New("codec: unknown primitive type")

	// ErrDuplicateRecordID indicates the same record id appeared twice in
	// the stream.
	ErrDuplicateRecordID = errors.New("codec: duplicate record id")

	// ErrUnsupportedFeature indicates a structurally valid but unsupported
	// record shape (a non-single-rank BinaryArray, or a Char primitive).
	ErrUnsupportedFeature = errors.New("codec: unsupported feature")

	// ErrUnknownReference indicates an encoder input contains a Reference
	// to an id absent from the graph.
	ErrUnknownReference = errors.New("codec: reference to unknown record id")

	// ErrMemberCountMismatch indicates a Class's member count does not
	// match its ClassType's member_types length.
	ErrMemberCountMismatch = errors.New("codec: member count does not match class type")

	// ErrNonPrimitiveValue indicates a non-Primitive Member was found in a
	// Primitive-typed slot.
	ErrNonPrimitiveValue = errors.New("codec: non-primitive value in primitive slot")

	// ErrStringTooLong indicates a string exceeds the 0x7FFFFFFF varint
	// length limit.
	ErrStringTooLong = errors.New("codec: string exceeds maximum length")

	// ErrClassTypeOutOfRange indicates a Class references a class_type_id
	// outside the graph's class_types slice.
	ErrClassTypeOutOfRange = errors.New("codec: class type id out of range")
)

// ParseError reports a failure while decoding a byte stream, with the byte
// offset it occurred at.
type ParseError struct {
	Offset  int
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("codec: parse error at offset 0x%x: %s: %v", e.Offset, e.Message, e.Err)
	}
	return fmt.Sprintf("codec: parse error at offset 0x%x: %s", e.Offset, e.Message)
}

func (e *ParseError) Unwrap() error { return e.Err }

// EncodeError reports a violated invariant found while walking a graph for
// encoding — a programming error in the caller-mutated graph, not a wire
// format problem.
type EncodeError struct {
	RecordID int32
	Message  string
	Err      error
}

func (e *EncodeError) Error() string {
	if e.RecordID != 0 {
		return fmt.Sprintf("codec: encode error for record %d: %s: %v", e.RecordID, e.Message, e.Err)
	}
	return fmt.Sprintf("codec: encode error: %s: %v", e.Message, e.Err)
}

func (e *EncodeError) Unwrap() error { return e.Err }
