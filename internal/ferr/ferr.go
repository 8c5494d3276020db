// Package ferr provides the typed, categorized errors the core raises.
package ferr

import "fmt"

// Category groups errors by the kind of recovery a caller can attempt.
type Category string

const (
	// CategoryMalformedStream covers truncated buffers, over-long varints,
	// unknown ref flags, and inconsistent length prefixes.
	CategoryMalformedStream Category = "MALFORMED_STREAM"
	// CategoryUnknownType covers a composite type id whose user id is not
	// present in the registry.
	CategoryUnknownType Category = "UNKNOWN_TYPE"
	// CategoryTypeMismatch is only raised in ObjectGraph mode, when a
	// leaf's wire type id does not match the reader's expectation.
	CategoryTypeMismatch Category = "TYPE_MISMATCH"
	// CategoryUTF8 covers string bytes that fail UTF-8 validation.
	CategoryUTF8 Category = "UTF8"
	// CategoryRegistryMisuse covers duplicate registration and
	// unregistered-type-at-serialize-time errors.
	CategoryRegistryMisuse Category = "REGISTRY_MISUSE"
)

// Error is the core's standard error shape: a category, a short code
// unique within that category, a human message, and optional context.
type Error struct {
	Category Category
	Code     string
	Message  string
	Context  map[string]interface{}
}

func (e *Error) Error() string {
	if len(e.Context) == 0 {
		return fmt.Sprintf("[%s:%s] %s", e.Category, e.Code, e.Message)
	}
	return fmt.Sprintf("[%s:%s] %s %v", e.Category, e.Code, e.Message, e.Context)
}

func new(category Category, code, message string, context map[string]interface{}) *Error {
	return &Error{Category: category, Code: code, Message: message, Context: context}
}

// Is reports whether err carries the given category, so callers can
// branch on error kind without depending on exact messages.
func Is(err error, category Category) bool {
	fe, ok := err.(*Error)
	return ok && fe.Category == category
}

// Truncated reports a read that ran past the end of the buffer.
func Truncated(op string, want, have int) *Error {
	return new(CategoryMalformedStream, "TRUNCATED",
		fmt.Sprintf("%s: need %d bytes, have %d", op, want, have),
		map[string]interface{}{"op": op, "want": want, "have": have})
}

// VarintTooLong reports a LEB128 varint exceeding the five-byte bound.
func VarintTooLong() *Error {
	return new(CategoryMalformedStream, "VARINT_TOO_LONG",
		"variable-length integer is longer than five bytes", nil)
}

// UnknownRefFlag reports a ref-flag byte outside {NULL, NOT_NULL_VALUE}.
func UnknownRefFlag(flag byte) *Error {
	return new(CategoryMalformedStream, "UNKNOWN_REF_FLAG",
		fmt.Sprintf("unknown ref flag byte 0x%02x", flag),
		map[string]interface{}{"flag": flag})
}

// InconsistentLength reports a length prefix that cannot be satisfied by
// the remaining bytes.
func InconsistentLength(kind string, length int) *Error {
	return new(CategoryMalformedStream, "INCONSISTENT_LENGTH",
		fmt.Sprintf("%s: declared length %d cannot be satisfied", kind, length),
		map[string]interface{}{"kind": kind, "length": length})
}

// UnknownUserID reports a composite type id whose user id has no
// registry entry.
func UnknownUserID(userID uint32) *Error {
	return new(CategoryUnknownType, "UNKNOWN_USER_ID",
		fmt.Sprintf("no registered type for user id %d", userID),
		map[string]interface{}{"user_id": userID})
}

// TypeMismatch reports an ObjectGraph-mode leaf whose wire type id did
// not match the reader's expectation.
func TypeMismatch(expected, got uint32) *Error {
	return new(CategoryTypeMismatch, "TYPE_MISMATCH",
		fmt.Sprintf("expected type id %d, got %d", expected, got),
		map[string]interface{}{"expected": expected, "got": got})
}

// InvalidUTF8 reports string bytes that failed UTF-8 validation.
func InvalidUTF8() *Error {
	return new(CategoryUTF8, "INVALID_UTF8", "string bytes are not valid UTF-8", nil)
}

// DuplicateRegistration reports a second Register call for the same
// language type identity or the same user id.
func DuplicateRegistration(what string) *Error {
	return new(CategoryRegistryMisuse, "DUPLICATE_REGISTRATION",
		fmt.Sprintf("duplicate registration: %s", what),
		map[string]interface{}{"what": what})
}

// Unregistered reports a serialize/deserialize call for a type that was
// never registered.
func Unregistered(what string) *Error {
	return new(CategoryRegistryMisuse, "UNREGISTERED",
		fmt.Sprintf("type not registered: %s", what),
		map[string]interface{}{"what": what})
}

// MalformedStream reports a generic framing inconsistency that does not
// fit one of the more specific constructors above.
func MalformedStream(reason string) *Error {
	return new(CategoryMalformedStream, "MALFORMED", reason, nil)
}

// AdjacentOptional reports Optional<Optional<T>> rejected at schema
// construction time (this core's analogue of compile-time rejection).
func AdjacentOptional(field string) *Error {
	return new(CategoryRegistryMisuse, "ADJACENT_OPTIONAL",
		fmt.Sprintf("field %q nests Optional<Optional<_>>, which is not supported", field),
		map[string]interface{}{"field": field})
}
