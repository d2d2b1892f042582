package ops

// Kind identifies what an op does when walked.
type Kind uint8

const (
	Primitive Kind = iota
	Enum
	Bitmask
	PushStruct
	PopStruct
	FixedArray
	Vector
	Map
	NoOp
)

var kindNames = [...]string{
	Primitive:  "primitive",
	Enum:       "enum",
	Bitmask:    "bitmask",
	PushStruct: "push",
	PopStruct:  "pop",
	FixedArray: "array",
	Vector:     "vector",
	Map:        "map",
	NoOp:       "nothing",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Valid reports whether k is one of the declared kinds.
func (k Kind) Valid() bool {
	return int(k) < len(kindNames)
}

// IsScalar reports whether k renders a single value without recursion.
func (k Kind) IsScalar() bool {
	return k == Primitive || k == Enum || k == Bitmask
}

// ParseKind maps a kind name back to its Kind.
func ParseKind(s string) (Kind, bool) {
	for k, name := range kindNames {
		if name == s {
			return Kind(k), true
		}
	}
	return 0, false
}

// PrimitiveKind identifies the stored representation of a Primitive op.
type PrimitiveKind uint8

const (
	Bool PrimitiveKind = iota
	Char
	Byte
	U8
	U16
	U32
	U64
	I8
	I16
	I32
	I64
	F32
	F64
	Word
	String
	Entity
)

var primitiveNames = [...]string{
	Bool:   "bool",
	Char:   "char",
	Byte:   "byte",
	U8:     "u8",
	U16:    "u16",
	U32:    "u32",
	U64:    "u64",
	I8:     "i8",
	I16:    "i16",
	I32:    "i32",
	I64:    "i64",
	F32:    "f32",
	F64:    "f64",
	Word:   "word",
	String: "string",
	Entity: "entity",
}

func (p PrimitiveKind) String() string {
	if int(p) < len(primitiveNames) {
		return primitiveNames[p]
	}
	return "unknown"
}

func (p PrimitiveKind) Valid() bool {
	return int(p) < len(primitiveNames)
}

// ParsePrimitive maps a primitive name back to its PrimitiveKind.
func ParsePrimitive(s string) (PrimitiveKind, bool) {
	for p, name := range primitiveNames {
		if name == s {
			return PrimitiveKind(p), true
		}
	}
	return 0, false
}

// Size returns the stored width in bytes. Word is pointer sized and
// defaults to 8; strings are a (ptr u32, len u32) pair.
func (p PrimitiveKind) Size() uint32 {
	switch p {
	case Bool, Char, Byte, U8, I8:
		return 1
	case U16, I16:
		return 2
	case U32, I32, F32:
		return 4
	case U64, I64, F64, Word, Entity, String:
		return 8
	default:
		return 0
	}
}

// Align returns the natural alignment of the stored representation.
func (p PrimitiveKind) Align() uint32 {
	if p == String {
		return 4
	}
	return p.Size()
}
