// Package codec translates between the on-disk record stream and the
// in-memory record.Graph: Decode parses a byte stream into a Graph; Encode
// walks a Graph back into a byte stream.
package codec

import (
	"fmt"

	"github.com/arvek/bnrg/internal/stream"
	"github.com/arvek/bnrg/record"
)

// decoder holds the transient state of a single decode pass: the byte
// reader, the graph under construction, and the stream-id → class-types-
// index mapping used to resolve ClassWithId records.
type decoder struct {
	r             *stream.Reader
	graph         *record.Graph
	classMetadata map[int32]int
}

// Decode parses a full record stream into a Graph. It fails fast on the
// first malformed byte; no partial Graph is ever returned.
func Decode(data []byte) (*record.Graph, error) {
	d := &decoder{
		r:             stream.NewReader(data),
		classMetadata: make(map[int32]int),
	}
	return d.decode()
}

func (d *decoder) errf(format string, args ...any) error {
	return &ParseError{Offset: d.r.Offset(), Message: fmt.Sprintf(format, args...)}
}

func (d *decoder) wrap(err error, format string, args ...any) error {
	return &ParseError{Offset: d.r.Offset(), Message: fmt.Sprintf(format, args...), Err: err}
}

func (d *decoder) decode() (*record.Graph, error) {
	magic, err := d.r.ReadU8()
	if err != nil {
		return nil, d.wrap(err, "reading header magic")
	}
	if magic != 0 {
		return nil, d.wrap(ErrBadHeader, "header magic byte must be 0, got %d", magic)
	}

	rootID, err := d.r.ReadI32()
	if err != nil {
		return nil, d.wrap(err, "reading root id")
	}
	headerID, err := d.r.ReadI32()
	if err != nil {
		return nil, d.wrap(err, "reading header id")
	}
	major, err := d.r.ReadI32()
	if err != nil {
		return nil, d.wrap(err, "reading major version")
	}
	minor, err := d.r.ReadI32()
	if err != nil {
		return nil, d.wrap(err, "reading minor version")
	}
	if major != formatMajorVersion || minor != formatMinorVersion {
		return nil, d.wrap(ErrBadHeader, "unsupported version %d.%d", major, minor)
	}

	d.graph = record.NewGraph(rootID, headerID)

	for {
		b, err := d.r.PeekU8()
		if err != nil {
			return nil, d.wrap(err, "reading next record tag")
		}
		if b == tagMessageEnd {
			if err := d.r.Skip(1); err != nil {
				return nil, d.wrap(err, "skipping terminator")
			}
			break
		}
		if err := d.parseAndAddRecord(); err != nil {
			return nil, err
		}
	}

	return d.graph, nil
}

// parseAndAddRecord parses one top-level record and inserts it into the
// graph, failing if its id was already used.
func (d *decoder) parseAndAddRecord() error {
	id, rec, err := d.parseRecord()
	if err != nil {
		return err
	}
	return d.addRecord(id, rec)
}

func (d *decoder) addRecord(id int32, rec record.Record) error {
	if _, exists := d.graph.Records[id]; exists {
		return d.wrap(ErrDuplicateRecordID, "record id %d", id)
	}
	d.graph.Records[id] = rec
	return nil
}

func (d *decoder) parseRecord() (int32, record.Record, error) {
	tag, err := d.r.ReadU8()
	if err != nil {
		return 0, nil, d.wrap(err, "reading record tag")
	}
	switch tag {
	case tagClassWithID:
		return d.parseClassWithID()
	case tagSystemClassWithMembersAndType:
		return d.parseClassWithMembersAndType(true)
	case tagClassWithMembersAndType:
		return d.parseClassWithMembersAndType(false)
	case tagBinaryObjectString:
		return d.parseBinaryObjectString()
	case tagBinaryArray:
		return d.parseBinaryArray()
	case tagBinaryLibrary:
		return d.parseBinaryLibrary()
	case tagArraySinglePrimitive:
		return d.parsePrimitiveArray()
	default:
		return 0, nil, d.wrap(ErrUnknownRecordTag, "tag %d", tag)
	}
}

func (d *decoder) parseBinaryLibrary() (int32, record.Record, error) {
	id, err := d.r.ReadI32()
	if err != nil {
		return 0, nil, d.wrap(err, "reading library id")
	}
	name, err := d.readString()
	if err != nil {
		return 0, nil, err
	}
	return id, &record.LibraryRecord{Name: name}, nil
}

func (d *decoder) parseBinaryObjectString() (int32, record.Record, error) {
	id, err := d.r.ReadI32()
	if err != nil {
		return 0, nil, d.wrap(err, "reading string record id")
	}
	val, err := d.readString()
	if err != nil {
		return 0, nil, err
	}
	return id, &record.StringRecord{Value: val}, nil
}

func (d *decoder) parseBinaryArray() (int32, record.Record, error) {
	id, err := d.r.ReadI32()
	if err != nil {
		return 0, nil, d.wrap(err, "reading array id")
	}
	arrayType, err := d.r.ReadU8()
	if err != nil {
		return 0, nil, d.wrap(err, "reading array type byte")
	}
	if arrayType != binaryArrayTypeSingle {
		return 0, nil, d.wrap(ErrUnsupportedFeature, "array type byte %d", arrayType)
	}
	rank, err := d.r.ReadI32()
	if err != nil {
		return 0, nil, d.wrap(err, "reading array rank")
	}
	if rank != 1 {
		return 0, nil, d.wrap(ErrUnsupportedFeature, "array rank %d", rank)
	}
	length, err := d.r.ReadI32()
	if err != nil {
		return 0, nil, d.wrap(err, "reading array length")
	}
	typeTag, err := d.r.ReadU8()
	if err != nil {
		return 0, nil, d.wrap(err, "reading array element type tag")
	}
	elemType, err := d.parseMemberType(typeTag)
	if err != nil {
		return 0, nil, err
	}
	elems, err := d.parseMemberSequence(elemType, int(length))
	if err != nil {
		return 0, nil, err
	}
	return id, &record.BinaryArray{ElementType: elemType, Elements: elems}, nil
}

func (d *decoder) parsePrimitiveArray() (int32, record.Record, error) {
	id, err := d.r.ReadI32()
	if err != nil {
		return 0, nil, d.wrap(err, "reading primitive array id")
	}
	length, err := d.r.ReadI32()
	if err != nil {
		return 0, nil, d.wrap(err, "reading primitive array length")
	}
	typeByte, err := d.r.ReadU8()
	if err != nil {
		return 0, nil, d.wrap(err, "reading primitive array element type")
	}
	pt, err := d.parsePrimitiveType(typeByte)
	if err != nil {
		return 0, nil, err
	}
	vals := make([]record.Primitive, 0, length)
	for i := int32(0); i < length; i++ {
		p, err := d.parsePrimitive(pt)
		if err != nil {
			return 0, nil, err
		}
		vals = append(vals, p)
	}
	return id, &record.PrimitiveArray{ElementType: pt, Elements: vals}, nil
}

func (d *decoder) parseClassWithID() (int32, record.Record, error) {
	id, err := d.r.ReadI32()
	if err != nil {
		return 0, nil, d.wrap(err, "reading class-with-id id")
	}
	metadataID, err := d.r.ReadI32()
	if err != nil {
		return 0, nil, d.wrap(err, "reading class-with-id metadata id")
	}
	classTypeID, ok := d.classMetadata[metadataID]
	if !ok {
		return 0, nil, d.errf("class-with-id references unknown metadata id %d", metadataID)
	}
	memberTypes := d.graph.ClassTypes[classTypeID].MemberTypes
	members, err := d.parseMembers(memberTypes)
	if err != nil {
		return 0, nil, err
	}
	return id, &record.Class{ClassTypeID: classTypeID, Members: members}, nil
}

// parseClassWithMembersAndType reads the shared tag-4/tag-5 class-metadata
// layout: id, name, member count, member names, member-type tag bytes (read
// as a contiguous run), their additional-info fields in the same order,
// then — for tag 5 only — a library id, and finally the member values.
func (d *decoder) parseClassWithMembersAndType(systemClass bool) (int32, record.Record, error) {
	id, err := d.r.ReadI32()
	if err != nil {
		return 0, nil, d.wrap(err, "reading class id")
	}
	name, err := d.readString()
	if err != nil {
		return 0, nil, err
	}
	memberCount, err := d.r.ReadI32()
	if err != nil {
		return 0, nil, d.wrap(err, "reading member count")
	}
	memberNames := make([]string, memberCount)
	for i := range memberNames {
		memberNames[i], err = d.readString()
		if err != nil {
			return 0, nil, err
		}
	}
	memberTypes, err := d.parseMemberTypes(int(memberCount))
	if err != nil {
		return 0, nil, err
	}

	libraryID := int32(0)
	if !systemClass {
		libraryID, err = d.r.ReadI32()
		if err != nil {
			return 0, nil, d.wrap(err, "reading library id")
		}
	}

	members, err := d.parseMembers(memberTypes)
	if err != nil {
		return 0, nil, err
	}

	classTypeID := len(d.graph.ClassTypes)
	d.graph.ClassTypes = append(d.graph.ClassTypes, record.ClassType{
		Name:        name,
		LibraryID:   libraryID,
		SystemClass: systemClass,
		MemberNames: memberNames,
		MemberTypes: memberTypes,
	})
	d.classMetadata[id] = classTypeID

	return id, &record.Class{ClassTypeID: classTypeID, Members: members}, nil
}

// parseMemberTypes reads count member-type tag bytes as a contiguous run,
// then resolves each tag's additional info in the same order. Reading
// tag-then-info interleaved here would consume the wrong bytes.
func (d *decoder) parseMemberTypes(count int) ([]record.MemberType, error) {
	tags := make([]byte, count)
	for i := range tags {
		b, err := d.r.ReadU8()
		if err != nil {
			return nil, d.wrap(err, "reading member type tag %d", i)
		}
		tags[i] = b
	}
	types := make([]record.MemberType, count)
	for i, tag := range tags {
		t, err := d.parseMemberType(tag)
		if err != nil {
			return nil, err
		}
		types[i] = t
	}
	return types, nil
}

func (d *decoder) parseMemberType(tag byte) (record.MemberType, error) {
	switch tag {
	case memberTypeTagPrimitive:
		pt, err := d.parsePrimitiveTypeByte()
		if err != nil {
			return record.MemberType{}, err
		}
		return record.MemberType{Kind: record.MemberTypePrimitive, Prim: pt}, nil
	case memberTypeTagString:
		return record.MemberType{Kind: record.MemberTypeString}, nil
	case memberTypeTagObject:
		return record.MemberType{Kind: record.MemberTypeObject}, nil
	case memberTypeTagSystemClass:
		name, err := d.readString()
		if err != nil {
			return record.MemberType{}, err
		}
		return record.MemberType{Kind: record.MemberTypeSystemClass, Name: name}, nil
	case memberTypeTagClass:
		name, err := d.readString()
		if err != nil {
			return record.MemberType{}, err
		}
		libID, err := d.r.ReadI32()
		if err != nil {
			return record.MemberType{}, d.wrap(err, "reading class member type library id")
		}
		return record.MemberType{Kind: record.MemberTypeClass, Name: name, LibraryID: libID}, nil
	case memberTypeTagObjectArray:
		return record.MemberType{Kind: record.MemberTypeObjectArray}, nil
	case memberTypeTagStringArray:
		return record.MemberType{Kind: record.MemberTypeStringArray}, nil
	case memberTypeTagPrimitiveArray:
		pt, err := d.parsePrimitiveTypeByte()
		if err != nil {
			return record.MemberType{}, err
		}
		return record.MemberType{Kind: record.MemberTypePrimitiveArray, Prim: pt}, nil
	default:
		return record.MemberType{}, d.wrap(ErrUnknownMemberType, "tag %d", tag)
	}
}

func (d *decoder) parsePrimitiveTypeByte() (record.PrimitiveType, error) {
	b, err := d.r.ReadU8()
	if err != nil {
		return 0, d.wrap(err, "reading primitive type byte")
	}
	return d.parsePrimitiveType(b)
}

func (d *decoder) parsePrimitiveType(b byte) (record.PrimitiveType, error) {
	switch b {
	case 1:
		return record.PrimitiveBoolean, nil
	case 2:
		return record.PrimitiveByte, nil
	case 3:
		return record.PrimitiveChar, nil
	case 5:
		return record.PrimitiveDecimal, nil
	case 6:
		return record.PrimitiveDouble, nil
	case 7:
		return record.PrimitiveInt16, nil
	case 8:
		return record.PrimitiveInt32, nil
	case 9:
		return record.PrimitiveInt64, nil
	case 10:
		return record.PrimitiveInt8, nil
	case 11:
		return record.PrimitiveSingle, nil
	case 12:
		return record.PrimitiveTimeSpan, nil
	case 13:
		return record.PrimitiveDateTime, nil
	case 14:
		return record.PrimitiveUInt16, nil
	case 15:
		return record.PrimitiveUInt32, nil
	case 16:
		return record.PrimitiveUInt64, nil
	case 17:
		return record.PrimitiveNull, nil
	case 18:
		return record.PrimitiveString, nil
	default:
		return 0, d.wrap(ErrUnknownPrimitiveType, "byte %d", b)
	}
}

// parseMembers reads len(types) member slots in order, expanding any
// NullMultiple token into that many individual Nulls so the result never
// contains one.
func (d *decoder) parseMembers(types []record.MemberType) ([]record.Member, error) {
	result := make([]record.Member, 0, len(types))
	for _, t := range types {
		m, err := d.parseMember(t)
		if err != nil {
			return nil, err
		}
		if m.Kind == record.MemberNullMultiple {
			for i := int32(0); i < m.Count; i++ {
				result = append(result, record.NullMember())
			}
			continue
		}
		result = append(result, m)
	}
	return result, nil
}

// parseMemberSequence is parseMembers for a fixed target length rather than
// one slot per declared type — used by BinaryArray, whose every element
// shares a single MemberType.
func (d *decoder) parseMemberSequence(t record.MemberType, length int) ([]record.Member, error) {
	result := make([]record.Member, 0, length)
	for len(result) < length {
		m, err := d.parseMember(t)
		if err != nil {
			return nil, err
		}
		if m.Kind == record.MemberNullMultiple {
			for i := int32(0); i < m.Count; i++ {
				result = append(result, record.NullMember())
			}
			continue
		}
		result = append(result, m)
	}
	return result, nil
}

func (d *decoder) parseMember(t record.MemberType) (record.Member, error) {
	if t.Kind == record.MemberTypePrimitive {
		p, err := d.parsePrimitive(t.Prim)
		if err != nil {
			return record.Member{}, err
		}
		return record.PrimitiveMember(p), nil
	}

	tag, err := d.r.ReadU8()
	if err != nil {
		return record.Member{}, d.wrap(err, "reading member tag")
	}
	switch tag {
	case tagClassWithID:
		id, rec, err := d.parseClassWithID()
		if err != nil {
			return record.Member{}, err
		}
		if err := d.addRecord(id, rec); err != nil {
			return record.Member{}, err
		}
		return record.ReferenceMember(id), nil
	case tagSystemClassWithMembersAndType:
		id, rec, err := d.parseClassWithMembersAndType(true)
		if err != nil {
			return record.Member{}, err
		}
		if err := d.addRecord(id, rec); err != nil {
			return record.Member{}, err
		}
		return record.ReferenceMember(id), nil
	case tagClassWithMembersAndType:
		id, rec, err := d.parseClassWithMembersAndType(false)
		if err != nil {
			return record.Member{}, err
		}
		if err := d.addRecord(id, rec); err != nil {
			return record.Member{}, err
		}
		return record.ReferenceMember(id), nil
	case tagBinaryObjectString:
		id, rec, err := d.parseBinaryObjectString()
		if err != nil {
			return record.Member{}, err
		}
		if err := d.addRecord(id, rec); err != nil {
			return record.Member{}, err
		}
		return record.ReferenceMember(id), nil
	case tagBinaryArray:
		id, rec, err := d.parseBinaryArray()
		if err != nil {
			return record.Member{}, err
		}
		if err := d.addRecord(id, rec); err != nil {
			return record.Member{}, err
		}
		return record.ReferenceMember(id), nil
	case tagArraySinglePrimitive:
		id, rec, err := d.parsePrimitiveArray()
		if err != nil {
			return record.Member{}, err
		}
		if err := d.addRecord(id, rec); err != nil {
			return record.Member{}, err
		}
		return record.ReferenceMember(id), nil
	case memberTagReference:
		id, err := d.r.ReadI32()
		if err != nil {
			return record.Member{}, d.wrap(err, "reading reference id")
		}
		return record.ReferenceMember(id), nil
	case memberTagNull:
		return record.NullMember(), nil
	case memberTagNullMultiple256:
		k, err := d.r.ReadU8()
		if err != nil {
			return record.Member{}, d.wrap(err, "reading null-run count (8-bit)")
		}
		return record.NullMultipleMember(int32(k)), nil
	case memberTagNullMultiple:
		k, err := d.r.ReadI32()
		if err != nil {
			return record.Member{}, d.wrap(err, "reading null-run count (32-bit)")
		}
		return record.NullMultipleMember(k), nil
	default:
		return record.Member{}, d.wrap(ErrUnknownMemberTag, "tag %d", tag)
	}
}

func (d *decoder) parsePrimitive(t record.PrimitiveType) (record.Primitive, error) {
	switch t {
	case record.PrimitiveBoolean:
		v, err := d.r.ReadU8()
		if err != nil {
			return record.Primitive{}, d.wrap(err, "reading Boolean")
		}
		return record.Primitive{Type: t, BoolVal: v != 0}, nil
	case record.PrimitiveByte:
		v, err := d.r.ReadU8()
		if err != nil {
			return record.Primitive{}, d.wrap(err, "reading Byte")
		}
		return record.Primitive{Type: t, ByteVal: v}, nil
	case record.PrimitiveChar:
		return record.Primitive{}, d.wrap(ErrUnsupportedFeature, "Char primitive")
	case record.PrimitiveDecimal:
		s, err := d.readString()
		if err != nil {
			return record.Primitive{}, err
		}
		return record.Primitive{Type: t, StringVal: s}, nil
	case record.PrimitiveDouble:
		v, err := d.r.ReadFloat64()
		if err != nil {
			return record.Primitive{}, d.wrap(err, "reading Double")
		}
		return record.Primitive{Type: t, DoubleVal: v}, nil
	case record.PrimitiveInt16:
		v, err := d.r.ReadI16()
		if err != nil {
			return record.Primitive{}, d.wrap(err, "reading Int16")
		}
		return record.Primitive{Type: t, Int16Val: v}, nil
	case record.PrimitiveInt32:
		v, err := d.r.ReadI32()
		if err != nil {
			return record.Primitive{}, d.wrap(err, "reading Int32")
		}
		return record.Primitive{Type: t, Int32Val: v}, nil
	case record.PrimitiveInt64:
		v, err := d.r.ReadI64()
		if err != nil {
			return record.Primitive{}, d.wrap(err, "reading Int64")
		}
		return record.Primitive{Type: t, Int64Val: v}, nil
	case record.PrimitiveInt8:
		v, err := d.r.ReadI8()
		if err != nil {
			return record.Primitive{}, d.wrap(err, "reading Int8")
		}
		return record.Primitive{Type: t, Int8Val: v}, nil
	case record.PrimitiveSingle:
		v, err := d.r.ReadFloat32()
		if err != nil {
			return record.Primitive{}, d.wrap(err, "reading Single")
		}
		return record.Primitive{Type: t, SingleVal: v}, nil
	case record.PrimitiveTimeSpan, record.PrimitiveDateTime:
		v, err := d.r.ReadI64()
		if err != nil {
			return record.Primitive{}, d.wrap(err, "reading tick count")
		}
		return record.Primitive{Type: t, Int64Val: v}, nil
	case record.PrimitiveUInt16:
		v, err := d.r.ReadU16()
		if err != nil {
			return record.Primitive{}, d.wrap(err, "reading UInt16")
		}
		return record.Primitive{Type: t, UInt16Val: v}, nil
	case record.PrimitiveUInt32:
		v, err := d.r.ReadU32()
		if err != nil {
			return record.Primitive{}, d.wrap(err, "reading UInt32")
		}
		return record.Primitive{Type: t, UInt32Val: v}, nil
	case record.PrimitiveUInt64:
		v, err := d.r.ReadU64()
		if err != nil {
			return record.Primitive{}, d.wrap(err, "reading UInt64")
		}
		return record.Primitive{Type: t, UInt64Val: v}, nil
	case record.PrimitiveNull:
		return record.Primitive{Type: t}, nil
	case record.PrimitiveString:
		s, err := d.readString()
		if err != nil {
			return record.Primitive{}, err
		}
		return record.Primitive{Type: t, StringVal: s}, nil
	default:
		return record.Primitive{}, d.wrap(ErrUnknownPrimitiveType, "internal type %d", t)
	}
}

func (d *decoder) readString() (string, error) {
	s, err := d.r.ReadString()
	if err != nil {
		return "", d.wrap(err, "reading length-prefixed string")
	}
	return s, nil
}
