// Package typeid holds the stable, wire-visible small-integer type ids
// shared across Fory-compatible language implementations. These values
// MUST NOT change once published.
package typeid

// ID is a wire-visible type identifier.
type ID uint32

const (
	BOOL ID = iota + 1
	INT8
	INT16
	INT32
	INT64
	FLOAT32
	FLOAT64
	STRING
	LOCAL_DATE
	TIMESTAMP
	BINARY
	ARRAY
	MAP
	SET
	STRUCT

	// OPTION is a synthetic marker for Optional nodes in FieldType trees.
	// It never tags a value's own payload; it does appear as the element,
	// key or value type marker in a collection header when those are
	// Optional.
	OPTION ID = 0x7fff
)

// RefFlag is the single byte spec.md §6 fixes preceding every Optional
// payload: NULL means the writer wrote no payload, NotNullValue means
// one follows.
type RefFlag uint8

const (
	RefNull         RefFlag = 0
	RefNotNullValue RefFlag = 1
)

// structIDBits is the width of the STRUCT tag packed into a composite id.
const structIDBits = 8

// Composite packs a registered user id and STRUCT into the single varint
// a struct header transmits: (user_id << 8) | STRUCT.
func Composite(userID uint32) uint32 {
	return (userID << structIDBits) | uint32(STRUCT)
}

// SplitComposite recovers the registered user id from a composite type
// id read off the wire.
func SplitComposite(composite uint32) (userID uint32, low ID) {
	return composite >> structIDBits, ID(composite & 0xff)
}

// String renders a human-readable name, used in error messages and logs.
func (id ID) String() string {
	switch id {
	case BOOL:
		return "bool"
	case INT8:
		return "int8"
	case INT16:
		return "int16"
	case INT32:
		return "int32"
	case INT64:
		return "int64"
	case FLOAT32:
		return "float32"
	case FLOAT64:
		return "float64"
	case STRING:
		return "string"
	case LOCAL_DATE:
		return "local_date"
	case TIMESTAMP:
		return "timestamp"
	case BINARY:
		return "binary"
	case ARRAY:
		return "array"
	case MAP:
		return "map"
	case SET:
		return "set"
	case STRUCT:
		return "struct"
	case OPTION:
		return "option"
	default:
		return "unknown"
	}
}
