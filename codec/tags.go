package codec

// Record tags: the first byte of every top-level stream entry.
const (
	tagClassWithID                    = 1
	tagSystemClassWithMembersAndType  = 4
	tagClassWithMembersAndType        = 5
	tagBinaryObjectString             = 6
	tagBinaryArray                    = 7
	tagMessageEnd                     = 11
	tagBinaryLibrary                  = 12
	tagArraySinglePrimitive           = 15
)

// Member-position tags: the byte read for a member whose declared
// MemberType is not Primitive.
const (
	memberTagPrimitive       = 8 // encoder-only: a Primitive value in a non-Primitive slot
	memberTagReference       = 9
	memberTagNull            = 10
	memberTagNullMultiple256 = 13
	memberTagNullMultiple    = 14
)

// Member-type tag bytes, read contiguously before any additional info.
const (
	memberTypeTagPrimitive      = 0
	memberTypeTagString         = 1
	memberTypeTagObject         = 2
	memberTypeTagSystemClass    = 3
	memberTypeTagClass          = 4
	memberTypeTagObjectArray    = 5
	memberTypeTagStringArray    = 6
	memberTypeTagPrimitiveArray = 7
)

// binaryArrayTypeSingle is the only BinaryArrayType this implementation
// accepts: single-rank, zero-based.
const binaryArrayTypeSingle = 0

const (
	formatMajorVersion = 1
	formatMinorVersion = 0
)
