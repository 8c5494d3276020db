// Package codegen is the runtime schema-builder substitute for the
// reference implementation's derive macro (spec.md §4.6, §9): given a
// Go struct's declared field list (discovered by reflection, since Go
// has no macro/AST access at this layer), it produces the FieldType
// tree each field needs for TypeMeta emission and reconciliation.
package codegen

import (
	"reflect"

	"github.com/fory-project/fory-go-core/internal/ferr"
	"github.com/fory-project/fory-go-core/internal/temporal"
	"github.com/fory-project/fory-go-core/internal/typeid"
	"github.com/fory-project/fory-go-core/internal/typemeta"
)

// TypeSpec is the Go-side declared-type tree spec.md §4.6 says codegen
// parses from a field's declared type: "every named generic becomes a
// FieldType node, its type arguments becoming ordered children." Every
// node, leaf or composite, carries the exact Go reflect.Type it
// decodes into, so ZeroReflect and allocation never have to
// reconstruct it from the children.
type TypeSpec struct {
	ID     typeid.ID
	GoType reflect.Type

	Elem       *TypeSpec // Optional inner / Sequence & Set element
	Key, Value *TypeSpec // Map key/value
}

func leaf(id typeid.ID, sample interface{}) TypeSpec {
	return TypeSpec{ID: id, GoType: reflect.TypeOf(sample)}
}

func Bool() TypeSpec           { return leaf(typeid.BOOL, false) }
func I8() TypeSpec             { return leaf(typeid.INT8, int8(0)) }
func I16() TypeSpec            { return leaf(typeid.INT16, int16(0)) }
func I32() TypeSpec            { return leaf(typeid.INT32, int32(0)) }
func I64() TypeSpec            { return leaf(typeid.INT64, int64(0)) }
func F32() TypeSpec            { return leaf(typeid.FLOAT32, float32(0)) }
func F64() TypeSpec            { return leaf(typeid.FLOAT64, float64(0)) }
func Str() TypeSpec            { return leaf(typeid.STRING, "") }
func Binary() TypeSpec         { return leaf(typeid.BINARY, []byte(nil)) }
func DateSpec() TypeSpec       { return leaf(typeid.LOCAL_DATE, temporal.LocalDate{}) }
func TimestampSpec() TypeSpec  { return leaf(typeid.TIMESTAMP, temporal.DateTime{}) }

// StructSpec describes a struct-typed leaf. The nested schema itself is
// not embedded here: per spec.md §3 each registered type owns exactly
// one TypeMeta, resolved at serialize/deserialize time through the
// registry by Go type, not copied into every referencing field.
func StructSpec(goType reflect.Type) TypeSpec {
	for goType.Kind() == reflect.Ptr {
		goType = goType.Elem()
	}
	return TypeSpec{ID: typeid.STRUCT, GoType: goType}
}

// Opt wraps inner as Optional<inner>, represented on the Go side as a
// pointer to inner's Go type. Adjacent Optional nesting is rejected
// here, the runtime-schema-builder analogue of spec.md §4.6's "Codegen
// rejects adjacent Optional nesting at compile time."
func Opt(inner TypeSpec) (TypeSpec, error) {
	if inner.ID == typeid.OPTION {
		return TypeSpec{}, ferr.AdjacentOptional("")
	}
	innerCopy := inner
	return TypeSpec{ID: typeid.OPTION, GoType: reflect.PointerTo(inner.GoType), Elem: &innerCopy}, nil
}

// Seq builds Sequence<elem>, represented as []elem.GoType.
func Seq(elem TypeSpec) TypeSpec {
	e := elem
	return TypeSpec{ID: typeid.ARRAY, GoType: reflect.SliceOf(elem.GoType), Elem: &e}
}

// SetOf builds Set<elem> over the named Set[T] Go type so the schema
// builder can tell it apart from a plain map at reflect time.
func SetOf(goType reflect.Type, elem TypeSpec) TypeSpec {
	e := elem
	return TypeSpec{ID: typeid.SET, GoType: goType, Elem: &e}
}

// MapOf builds Map<key, value>, represented as map[key.GoType]value.GoType.
func MapOf(key, value TypeSpec) TypeSpec {
	k, v := key, value
	return TypeSpec{ID: typeid.MAP, GoType: reflect.MapOf(key.GoType, value.GoType), Key: &k, Value: &v}
}

// IsOptional reports whether this node is the synthetic Optional wrapper.
func (t TypeSpec) IsOptional() bool { return t.ID == typeid.OPTION }

// ToFieldType produces the wire descriptor spec.md §3/§4.3 define. A
// struct leaf carries no children: its nested fields live in the
// embedded TypeMeta a struct payload itself carries, not in the parent
// field's descriptor (spec.md §4.7 point 3, "locate the nested writer
// TypeMeta embedded at the appropriate point in the stream").
func (t TypeSpec) ToFieldType() typemeta.FieldType {
	switch t.ID {
	case typeid.OPTION:
		return typemeta.FieldType{TypeID: typeid.OPTION, Children: []typemeta.FieldType{t.Elem.ToFieldType()}}
	case typeid.ARRAY, typeid.SET:
		return typemeta.FieldType{TypeID: t.ID, Children: []typemeta.FieldType{t.Elem.ToFieldType()}}
	case typeid.MAP:
		return typemeta.FieldType{TypeID: typeid.MAP, Children: []typemeta.FieldType{t.Key.ToFieldType(), t.Value.ToFieldType()}}
	default:
		return typemeta.FieldType{TypeID: t.ID}
	}
}

// ZeroReflect materialises the reader's default value for this spec:
// integer zero, empty string, empty collection, None for Optional
// (spec.md §4.7 point 1 and the reconciliation scenarios of §8).
func (t TypeSpec) ZeroReflect() reflect.Value {
	return reflect.Zero(t.GoType)
}

// ReservedSpace is the serializer dispatch contract's reserve-space
// hint (spec.md §4.5, §83): a lower bound on the bytes one value of
// this type will occupy, advisory only, used to amortise the Writer's
// growth rather than to bound the actual write. Collections and
// strings only count their length prefix, since their payload size
// isn't known until the value itself is in hand.
func (t TypeSpec) ReservedSpace() int {
	switch t.ID {
	case typeid.BOOL, typeid.INT8:
		return 1
	case typeid.INT16:
		return 2
	case typeid.INT32:
		return 1 // zig-zag varint, best case
	case typeid.LOCAL_DATE:
		return 4
	case typeid.INT64, typeid.FLOAT64, typeid.TIMESTAMP:
		return 8
	case typeid.FLOAT32:
		return 4
	case typeid.STRING, typeid.BINARY, typeid.ARRAY, typeid.SET, typeid.MAP:
		return 1 // var_uint32 length prefix, best case
	case typeid.OPTION:
		return 1 // ref flag alone, for an absent value
	case typeid.STRUCT:
		return 1 // composite header, best case
	default:
		return 1
	}
}
