package codec

import (
	"sort"

	"github.com/arvek/bnrg/internal/stream"
	"github.com/arvek/bnrg/record"
)

// encoder holds the transient state of a single encode pass: the output
// writer, the graph being walked, the FIFO worklist of not-yet-emitted
// ids, and the class-type interning table.
type encoder struct {
	w             *stream.Writer
	graph         *record.Graph
	todo          []int32
	done          map[int32]bool
	classMetadata map[int]int32 // class_type_id -> first-emitted record id
}

// Encode walks g from its root plus every BinaryLibrary record and writes
// a byte stream reproducing a semantically equivalent graph. Records
// unreachable from that walk are silently omitted.
func Encode(g *record.Graph) ([]byte, error) {
	e := &encoder{
		w:             stream.NewWriter(),
		graph:         g,
		done:          make(map[int32]bool),
		classMetadata: make(map[int]int32),
	}
	if err := e.encode(); err != nil {
		return nil, err
	}
	return e.w.Bytes(), nil
}

func (e *encoder) addTodo(id int32) {
	if e.done[id] {
		return
	}
	e.done[id] = true
	e.todo = append(e.todo, id)
}

func (e *encoder) encode() error {
	e.w.WriteU8(0)
	e.w.WriteI32(e.graph.RootID)
	e.w.WriteI32(e.graph.HeaderID)
	e.w.WriteI32(formatMajorVersion)
	e.w.WriteI32(formatMinorVersion)

	// Library discovery iterates in id order so output stays bit-exact
	// across runs despite Go's randomized map iteration.
	ids := make([]int32, 0, len(e.graph.Records))
	for id := range e.graph.Records {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		if _, ok := e.graph.Records[id].(*record.LibraryRecord); ok {
			e.addTodo(id)
		}
	}

	// The root id seeds the walk like any other reachable record, but it is
	// allowed to dangle: a header naming a root with zero records is a
	// legal (if degenerate) stream, matching the header/terminator-only
	// form the format allows.
	if _, ok := e.graph.Records[e.graph.RootID]; ok {
		e.addTodo(e.graph.RootID)
	}

	for len(e.todo) > 0 {
		id := e.todo[0]
		e.todo = e.todo[1:]
		rec, ok := e.graph.Records[id]
		if !ok {
			return &EncodeError{RecordID: id, Message: "reference to unknown record id", Err: ErrUnknownReference}
		}
		if err := e.writeRecord(id, rec); err != nil {
			return err
		}
	}

	e.w.WriteU8(tagMessageEnd)
	return nil
}

func (e *encoder) writeRecord(id int32, rec record.Record) error {
	switch r := rec.(type) {
	case *record.LibraryRecord:
		e.w.WriteU8(tagBinaryLibrary)
		e.w.WriteI32(id)
		return e.writeString(id, r.Name)
	case *record.Class:
		return e.writeClass(id, r)
	case *record.BinaryArray:
		return e.writeBinaryArray(id, r)
	case *record.PrimitiveArray:
		return e.writePrimitiveArray(id, r)
	case *record.StringRecord:
		e.w.WriteU8(tagBinaryObjectString)
		e.w.WriteI32(id)
		return e.writeString(id, r.Value)
	default:
		return &EncodeError{RecordID: id, Message: "unrecognized record variant"}
	}
}

func (e *encoder) writeClass(id int32, c *record.Class) error {
	ct, err := e.graph.ClassType(c)
	if err != nil {
		return &EncodeError{RecordID: id, Message: "class type lookup", Err: err}
	}
	if len(c.Members) != len(ct.MemberTypes) {
		return &EncodeError{RecordID: id, Message: "member count mismatch", Err: ErrMemberCountMismatch}
	}

	switch {
	case ct.SystemClass:
		e.w.WriteU8(tagSystemClassWithMembersAndType)
		if err := e.writeClassMetadata(id, ct, false); err != nil {
			return err
		}
	default:
		if priorID, interned := e.classMetadata[c.ClassTypeID]; interned {
			e.w.WriteU8(tagClassWithID)
			e.w.WriteI32(id)
			e.w.WriteI32(priorID)
		} else {
			e.w.WriteU8(tagClassWithMembersAndType)
			if err := e.writeClassMetadata(id, ct, true); err != nil {
				return err
			}
			e.classMetadata[c.ClassTypeID] = id
		}
	}

	for i, m := range c.Members {
		if err := e.writeMember(id, m, ct.MemberTypes[i]); err != nil {
			return err
		}
	}
	return nil
}

// writeClassMetadata writes the id/name/member-count/member-names/
// member-type-tags/additional-info block shared by tags 4 and 5, and — for
// tag 5 (writeLibraryID == true) — the trailing library id.
func (e *encoder) writeClassMetadata(id int32, ct *record.ClassType, writeLibraryID bool) error {
	e.w.WriteI32(id)
	if err := e.writeString(id, ct.Name); err != nil {
		return err
	}
	e.w.WriteI32(int32(len(ct.MemberNames)))
	for _, name := range ct.MemberNames {
		if err := e.writeString(id, name); err != nil {
			return err
		}
	}
	for _, t := range ct.MemberTypes {
		e.writeMemberTypeTag(t)
	}
	for _, t := range ct.MemberTypes {
		if err := e.writeMemberTypeInfo(id, t); err != nil {
			return err
		}
	}
	if writeLibraryID {
		e.w.WriteI32(ct.LibraryID)
	}
	return nil
}

func (e *encoder) writeMemberTypeTag(t record.MemberType) {
	switch t.Kind {
	case record.MemberTypePrimitive:
		e.w.WriteU8(memberTypeTagPrimitive)
	case record.MemberTypeString:
		e.w.WriteU8(memberTypeTagString)
	case record.MemberTypeObject:
		e.w.WriteU8(memberTypeTagObject)
	case record.MemberTypeSystemClass:
		e.w.WriteU8(memberTypeTagSystemClass)
	case record.MemberTypeClass:
		e.w.WriteU8(memberTypeTagClass)
	case record.MemberTypeObjectArray:
		e.w.WriteU8(memberTypeTagObjectArray)
	case record.MemberTypeStringArray:
		e.w.WriteU8(memberTypeTagStringArray)
	case record.MemberTypePrimitiveArray:
		e.w.WriteU8(memberTypeTagPrimitiveArray)
	}
}

func (e *encoder) writeMemberTypeInfo(id int32, t record.MemberType) error {
	switch t.Kind {
	case record.MemberTypePrimitive, record.MemberTypePrimitiveArray:
		e.writePrimitiveTypeByte(t.Prim)
	case record.MemberTypeSystemClass:
		return e.writeString(id, t.Name)
	case record.MemberTypeClass:
		if err := e.writeString(id, t.Name); err != nil {
			return err
		}
		e.w.WriteI32(t.LibraryID)
	}
	return nil
}

func (e *encoder) writeMember(id int32, m record.Member, t record.MemberType) error {
	if t.Kind == record.MemberTypePrimitive {
		if m.Kind != record.MemberPrimitive {
			return &EncodeError{RecordID: id, Message: "non-primitive value in primitive slot", Err: ErrNonPrimitiveValue}
		}
		e.writePrimitive(m.Prim)
		return nil
	}

	switch m.Kind {
	case record.MemberPrimitive:
		e.w.WriteU8(memberTagPrimitive)
		e.writePrimitiveTypeByte(m.Prim.Type)
		e.writePrimitive(m.Prim)
	case record.MemberReference:
		e.w.WriteU8(memberTagReference)
		e.w.WriteI32(m.Ref)
		e.addTodo(m.Ref)
	case record.MemberNull:
		e.w.WriteU8(memberTagNull)
	case record.MemberNullMultiple:
		if m.Count < 0x100 {
			e.w.WriteU8(memberTagNullMultiple256)
			e.w.WriteU8(uint8(m.Count))
		} else {
			e.w.WriteU8(memberTagNullMultiple)
			e.w.WriteI32(m.Count)
		}
	default:
		return &EncodeError{RecordID: id, Message: "unrecognized member variant"}
	}
	return nil
}

func (e *encoder) writeBinaryArray(id int32, a *record.BinaryArray) error {
	e.w.WriteU8(tagBinaryArray)
	e.w.WriteI32(id)
	e.w.WriteU8(binaryArrayTypeSingle)
	e.w.WriteI32(1)
	e.w.WriteI32(int32(len(a.Elements)))
	e.writeMemberTypeTag(a.ElementType)
	if err := e.writeMemberTypeInfo(id, a.ElementType); err != nil {
		return err
	}
	// Runs of two or more consecutive Nulls are contracted back into a single
	// NullMultiple token; a lone Null stays a plain ObjectNull.
	for i := 0; i < len(a.Elements); {
		m := a.Elements[i]
		run := 1
		if m.Kind == record.MemberNull {
			for i+run < len(a.Elements) && a.Elements[i+run].Kind == record.MemberNull {
				run++
			}
			if run > 1 {
				m = record.NullMultipleMember(int32(run))
			}
		}
		if err := e.writeMember(id, m, a.ElementType); err != nil {
			return err
		}
		i += run
	}
	return nil
}

func (e *encoder) writePrimitiveArray(id int32, a *record.PrimitiveArray) error {
	e.w.WriteU8(tagArraySinglePrimitive)
	e.w.WriteI32(id)
	e.w.WriteI32(int32(len(a.Elements)))
	e.writePrimitiveTypeByte(a.ElementType)
	for _, p := range a.Elements {
		if p.Type != a.ElementType {
			return &EncodeError{RecordID: id, Message: "primitive array element type mismatch"}
		}
		e.writePrimitive(p)
	}
	return nil
}

func (e *encoder) writePrimitiveTypeByte(t record.PrimitiveType) {
	var b byte
	switch t {
	case record.PrimitiveBoolean:
		b = 1
	case record.PrimitiveByte:
		b = 2
	case record.PrimitiveChar:
		b = 3
	case record.PrimitiveDecimal:
		b = 5
	case record.PrimitiveDouble:
		b = 6
	case record.PrimitiveInt16:
		b = 7
	case record.PrimitiveInt32:
		b = 8
	case record.PrimitiveInt64:
		b = 9
	case record.PrimitiveInt8:
		b = 10
	case record.PrimitiveSingle:
		b = 11
	case record.PrimitiveTimeSpan:
		b = 12
	case record.PrimitiveDateTime:
		b = 13
	case record.PrimitiveUInt16:
		b = 14
	case record.PrimitiveUInt32:
		b = 15
	case record.PrimitiveUInt64:
		b = 16
	case record.PrimitiveNull:
		b = 17
	case record.PrimitiveString:
		b = 18
	}
	e.w.WriteU8(b)
}

func (e *encoder) writePrimitive(p record.Primitive) {
	switch p.Type {
	case record.PrimitiveBoolean:
		if p.BoolVal {
			e.w.WriteU8(1)
		} else {
			e.w.WriteU8(0)
		}
	case record.PrimitiveByte:
		e.w.WriteU8(p.ByteVal)
	case record.PrimitiveChar:
		// Unsupported: encoding a Char would require an already-rejected
		// decode, so there is nothing reachable to write here.
	case record.PrimitiveDecimal, record.PrimitiveString:
		e.w.WriteString(p.StringVal)
	case record.PrimitiveDouble:
		e.w.WriteFloat64(p.DoubleVal)
	case record.PrimitiveInt16:
		e.w.WriteI16(p.Int16Val)
	case record.PrimitiveInt32:
		e.w.WriteI32(p.Int32Val)
	case record.PrimitiveInt64:
		e.w.WriteI64(p.Int64Val)
	case record.PrimitiveInt8:
		e.w.WriteI8(p.Int8Val)
	case record.PrimitiveSingle:
		e.w.WriteFloat32(p.SingleVal)
	case record.PrimitiveTimeSpan, record.PrimitiveDateTime:
		e.w.WriteI64(p.Int64Val)
	case record.PrimitiveUInt16:
		e.w.WriteU16(p.UInt16Val)
	case record.PrimitiveUInt32:
		e.w.WriteU32(p.UInt32Val)
	case record.PrimitiveUInt64:
		e.w.WriteU64(p.UInt64Val)
	case record.PrimitiveNull:
		// zero bytes
	}
}

func (e *encoder) writeString(id int32, s string) error {
	if len(s) > 0x7FFFFFFF {
		return &EncodeError{RecordID: id, Message: "string exceeds maximum length", Err: ErrStringTooLong}
	}
	e.w.WriteString(s)
	return nil
}
