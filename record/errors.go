package record

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by Graph lookups.
var (
	// ErrMemberNotFound indicates a class has no member with the requested name.
	ErrMemberNotFound = errors.New("record: no member with that name")

	// ErrRecordNotFound indicates a reference does not resolve to any record
	// in the graph.
	ErrRecordNotFound = errors.New("record: no record with that id")

	// ErrClassTypeOutOfRange indicates a Class's ClassTypeID does not index
	// into the graph's ClassTypes slice.
	ErrClassTypeOutOfRange = errors.New("record: class type id out of range")
)

// MemberLookupError gives the class and member name for a failed
// ClassMember* lookup.
type MemberLookupError struct {
	ClassName string
	Member    string
	Err       error
}

func (e *MemberLookupError) Error() string {
	return fmt.Sprintf("record: class %q has no member %q: %v", e.ClassName, e.Member, e.Err)
}

func (e *MemberLookupError) Unwrap() error { return e.Err }
