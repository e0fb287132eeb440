// Package record provides the in-memory object-graph model decoded from
// and encoded to the binary remoting stream: records, class types, member
// types, and primitive values, plus a small by-name lookup and mutation API.
package record

import "fmt"

// PrimitiveType identifies the kind of value carried by a Primitive.
type PrimitiveType uint8

const (
	PrimitiveBoolean PrimitiveType = iota
	PrimitiveByte
	PrimitiveChar
	PrimitiveDecimal
	PrimitiveDouble
	PrimitiveInt16
	PrimitiveInt32
	PrimitiveInt64
	PrimitiveInt8
	PrimitiveSingle
	PrimitiveTimeSpan
	PrimitiveDateTime
	PrimitiveUInt16
	PrimitiveUInt32
	PrimitiveUInt64
	PrimitiveNull
	PrimitiveString
)

func (t PrimitiveType) String() string {
	switch t {
	case PrimitiveBoolean:
		return "Boolean"
	case PrimitiveByte:
		return "Byte"
	case PrimitiveChar:
		return "Char"
	case PrimitiveDecimal:
		return "Decimal"
	case PrimitiveDouble:
		return "Double"
	case PrimitiveInt16:
		return "Int16"
	case PrimitiveInt32:
		return "Int32"
	case PrimitiveInt64:
		return "Int64"
	case PrimitiveInt8:
		return "Int8"
	case PrimitiveSingle:
		return "Single"
	case PrimitiveTimeSpan:
		return "TimeSpan"
	case PrimitiveDateTime:
		return "DateTime"
	case PrimitiveUInt16:
		return "UInt16"
	case PrimitiveUInt32:
		return "UInt32"
	case PrimitiveUInt64:
		return "UInt64"
	case PrimitiveNull:
		return "Null"
	case PrimitiveString:
		return "String"
	default:
		return fmt.Sprintf("PrimitiveType(%d)", uint8(t))
	}
}

// Primitive is a tagged primitive value. Exactly one of the typed fields is
// meaningful, selected by Type. TimeSpan and DateTime carry their tick count
// in Int64Val; Decimal carries its canonical decimal text in StringVal.
type Primitive struct {
	Type      PrimitiveType
	BoolVal   bool
	ByteVal   uint8
	CharVal   rune
	Int8Val   int8
	Int16Val  int16
	Int32Val  int32
	Int64Val  int64
	UInt16Val uint16
	UInt32Val uint32
	UInt64Val uint64
	SingleVal float32
	DoubleVal float64
	StringVal string
}

// Bool builds a Primitive of type Boolean.
func Bool(v bool) Primitive { return Primitive{Type: PrimitiveBoolean, BoolVal: v} }

// Int32 builds a Primitive of type Int32.
func Int32(v int32) Primitive { return Primitive{Type: PrimitiveInt32, Int32Val: v} }

// Str builds a Primitive of type String.
func Str(v string) Primitive { return Primitive{Type: PrimitiveString, StringVal: v} }

// AsInt32 returns the Int32 payload, or an error if Type is not Int32.
func (p Primitive) AsInt32() (int32, error) {
	if p.Type != PrimitiveInt32 {
		return 0, fmt.Errorf("record: primitive is %s, not Int32", p.Type)
	}
	return p.Int32Val, nil
}

// AsBool returns the Boolean payload, or an error if Type is not Boolean.
func (p Primitive) AsBool() (bool, error) {
	if p.Type != PrimitiveBoolean {
		return false, fmt.Errorf("record: primitive is %s, not Boolean", p.Type)
	}
	return p.BoolVal, nil
}
