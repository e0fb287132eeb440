package record

import "fmt"

// MemberTypeKind identifies which shape a MemberType carries.
type MemberTypeKind uint8

const (
	MemberTypePrimitive MemberTypeKind = iota
	MemberTypeString
	MemberTypeObject
	MemberTypeSystemClass
	MemberTypeClass
	MemberTypeObjectArray
	MemberTypeStringArray
	MemberTypePrimitiveArray
)

// MemberType is the schema-declared type of one member slot in a ClassType.
// Only the fields relevant to Kind are meaningful:
//   - Primitive / PrimitiveArray: Prim
//   - SystemClass: Name
//   - Class: Name, LibraryID
type MemberType struct {
	Kind      MemberTypeKind
	Prim      PrimitiveType
	Name      string
	LibraryID int32
}

func (t MemberType) String() string {
	switch t.Kind {
	case MemberTypePrimitive:
		return "Primitive(" + t.Prim.String() + ")"
	case MemberTypeString:
		return "String"
	case MemberTypeObject:
		return "Object"
	case MemberTypeSystemClass:
		return "SystemClass(" + t.Name + ")"
	case MemberTypeClass:
		return fmt.Sprintf("Class(%s, %d)", t.Name, t.LibraryID)
	case MemberTypeObjectArray:
		return "ObjectArray"
	case MemberTypeStringArray:
		return "StringArray"
	case MemberTypePrimitiveArray:
		return "PrimitiveArray(" + t.Prim.String() + ")"
	default:
		return fmt.Sprintf("MemberType(%d)", uint8(t.Kind))
	}
}

// ClassType is an interned class schema: a name, the library it was
// declared against, whether it is a system class, and the ordered member
// layout every Class instance of this type shares.
type ClassType struct {
	Name         string
	LibraryID    int32
	SystemClass  bool
	MemberNames  []string
	MemberTypes  []MemberType
}

// MemberKind identifies which shape a Member carries.
type MemberKind uint8

const (
	MemberPrimitive MemberKind = iota
	MemberReference
	MemberNull
	MemberNullMultiple
)

// Member is one slot's value within a Class's member list or a BinaryArray's
// element list. NullMultiple(k) is a stream-level run-length token; it must
// never appear in a materialized member sequence produced by the decoder
// (see codec's null-expansion step), but remains representable here so that
// a caller constructing records from scratch can describe a desired
// encoding shape before the encoder splits policy decisions (tag 13 vs 14).
type Member struct {
	Kind  MemberKind
	Prim  Primitive
	Ref   int32
	Count int32
}

// PrimitiveMember builds a Member carrying a primitive value.
func PrimitiveMember(p Primitive) Member { return Member{Kind: MemberPrimitive, Prim: p} }

// ReferenceMember builds a Member referencing another record by id.
func ReferenceMember(id int32) Member { return Member{Kind: MemberReference, Ref: id} }

// NullMember builds a single-null Member.
func NullMember() Member { return Member{Kind: MemberNull} }

// NullMultipleMember builds a run-of-k-nulls Member token.
func NullMultipleMember(k int32) Member { return Member{Kind: MemberNullMultiple, Count: k} }

// AsReference returns the referenced record id, or an error if this Member
// is not a Reference.
func (m Member) AsReference() (int32, error) {
	if m.Kind != MemberReference {
		return 0, fmt.Errorf("record: member is not a Reference")
	}
	return m.Ref, nil
}

// AsPrimitive returns the carried Primitive, or an error if this Member is
// not a Primitive.
func (m Member) AsPrimitive() (Primitive, error) {
	if m.Kind != MemberPrimitive {
		return Primitive{}, fmt.Errorf("record: member is not a Primitive")
	}
	return m.Prim, nil
}
