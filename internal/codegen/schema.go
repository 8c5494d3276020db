package codegen

import (
	"fmt"
	"reflect"

	"github.com/fory-project/fory-go-core/internal/ferr"
	"github.com/fory-project/fory-go-core/internal/temporal"
	"github.com/fory-project/fory-go-core/internal/typeid"
	"github.com/fory-project/fory-go-core/internal/typemeta"
)

// FieldSpec is one declared struct field: its wire name, its TypeSpec,
// and the reflect index used to read/write it on a Go struct value.
type FieldSpec struct {
	Name  string
	Type  TypeSpec
	Index int
}

// StructSchema is this core's in-memory form of a registered struct
// type: the layer id shared with spec.md §3's TypeMeta plus the
// ordered field list the codegen layer derived from the Go type.
type StructSchema struct {
	LayerID uint32
	GoType  reflect.Type
	Fields  []FieldSpec
}

// FieldByName mirrors typemeta.TypeMeta.FieldByName for the reader's
// own declared schema.
func (s *StructSchema) FieldByName(name string) (FieldSpec, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldSpec{}, false
}

// ToTypeMeta converts the schema into the wire descriptor a Compatible
// writer emits (spec.md §4.3).
func (s *StructSchema) ToTypeMeta() typemeta.TypeMeta {
	fields := make([]typemeta.Field, len(s.Fields))
	for i, f := range s.Fields {
		fields[i] = typemeta.Field{Name: f.Name, FieldType: f.Type.ToFieldType()}
	}
	return typemeta.TypeMeta{LayerID: s.LayerID, Fields: fields}
}

// ReservedSpace sums each field's reserve-space hint plus one byte for
// the composite header, the struct-level counterpart to TypeSpec's
// per-value hint (spec.md §4.5, §83).
func (s *StructSchema) ReservedSpace() int {
	n := 1
	for _, f := range s.Fields {
		n += f.Type.ReservedSpace()
	}
	return n
}

var setMarkerType = reflect.TypeOf((*setMarker)(nil)).Elem()

var (
	localDateGoType = reflect.TypeOf(temporal.LocalDate{})
	dateTimeGoType  = reflect.TypeOf(temporal.DateTime{})
)

// BuildStructSchema reflects over sample's type (a struct or pointer to
// struct) and derives its StructSchema. This is the runtime substitute
// spec.md §9 sanctions for the reference derive macro: the struct's
// own declared field list and types stand in for the macro's AST walk.
// layerID is the user-chosen id spec.md's GLOSSARY defines, used to
// group this schema with compatible readers/writers. The composite
// STRUCT wire id comes from the user id passed to the registry
// separately; fory.Register passes the same value for both.
func BuildStructSchema(layerID uint32, sample interface{}) (*StructSchema, error) {
	t := reflect.TypeOf(sample)
	for t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("codegen: %T is not a struct", sample)
	}

	schema := &StructSchema{LayerID: layerID, GoType: t}
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if sf.PkgPath != "" {
			continue // unexported fields are not part of the wire schema
		}
		name := sf.Name
		if tag, ok := sf.Tag.Lookup("fory"); ok && tag != "" {
			name = tag
		}
		spec, err := inferTypeSpec(sf.Type, name)
		if err != nil {
			return nil, err
		}
		schema.Fields = append(schema.Fields, FieldSpec{Name: name, Type: spec, Index: i})
	}
	return schema, nil
}

func inferTypeSpec(t reflect.Type, fieldName string) (TypeSpec, error) {
	switch {
	case t == localDateGoType:
		return DateSpec(), nil
	case t == dateTimeGoType:
		return TimestampSpec(), nil
	case t.Kind() == reflect.Slice && t.Elem().Kind() == reflect.Uint8:
		return Binary(), nil
	}

	switch t.Kind() {
	case reflect.Bool:
		return Bool(), nil
	case reflect.Int8:
		return I8(), nil
	case reflect.Int16:
		return I16(), nil
	case reflect.Int32:
		return I32(), nil
	case reflect.Int64:
		return I64(), nil
	case reflect.Float32:
		return F32(), nil
	case reflect.Float64:
		return F64(), nil
	case reflect.String:
		return Str(), nil
	case reflect.Ptr:
		elemT := t.Elem()
		if elemT.Kind() == reflect.Ptr {
			return TypeSpec{}, ferr.AdjacentOptional(fieldName)
		}
		inner, err := inferTypeSpec(elemT, fieldName)
		if err != nil {
			return TypeSpec{}, err
		}
		if inner.ID == typeid.OPTION {
			return TypeSpec{}, ferr.AdjacentOptional(fieldName)
		}
		spec, err := Opt(inner)
		if err != nil {
			return TypeSpec{}, ferr.AdjacentOptional(fieldName)
		}
		return spec, nil
	case reflect.Slice:
		elem, err := inferTypeSpec(t.Elem(), fieldName)
		if err != nil {
			return TypeSpec{}, err
		}
		return Seq(elem), nil
	case reflect.Map:
		if t.Implements(setMarkerType) {
			elem, err := inferTypeSpec(t.Key(), fieldName)
			if err != nil {
				return TypeSpec{}, err
			}
			return SetOf(t, elem), nil
		}
		key, err := inferTypeSpec(t.Key(), fieldName)
		if err != nil {
			return TypeSpec{}, err
		}
		val, err := inferTypeSpec(t.Elem(), fieldName)
		if err != nil {
			return TypeSpec{}, err
		}
		return MapOf(key, val), nil
	case reflect.Struct:
		return StructSpec(t), nil
	default:
		return TypeSpec{}, fmt.Errorf("codegen: field %q has unsupported type %s", fieldName, t)
	}
}

