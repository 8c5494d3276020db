// Package reconcile implements Compatible mode (spec.md §4.4, §4.7): the
// writer always emits its own TypeMeta inline, and the reader walks the
// writer's field list by name against its own declared schema rather
// than assuming identical field order or types. Fields present on one
// side only are defaulted or skipped; fields present on both but
// retyped are reconciled leaf by leaf, recursively through
// Sequence/Set/Map and nested structs.
package reconcile

import (
	"reflect"

	"go.uber.org/zap"

	"github.com/fory-project/fory-go-core/internal/buffer"
	"github.com/fory-project/fory-go-core/internal/codegen"
	"github.com/fory-project/fory-go-core/internal/ferr"
	"github.com/fory-project/fory-go-core/internal/registry"
	"github.com/fory-project/fory-go-core/internal/serializer"
	"github.com/fory-project/fory-go-core/internal/typeid"
	"github.com/fory-project/fory-go-core/internal/typemeta"
)

// Codec implements serializer.StructCodec for Compatible mode.
type Codec struct{}

var _ serializer.StructCodec = Codec{}

// WriteStruct emits the composite header, the writer's own TypeMeta
// bytes (always inlined; spec.md §9 resolves the "emit TypeMeta only
// sometimes" Open Question in favor of the simpler always-emit rule),
// then each field's payload in the writer's own declaration order.
func (Codec) WriteStruct(ctx *serializer.WriteContext, v reflect.Value, entry *registry.Entry) error {
	ctx.W.Reserve(entry.Schema.ReservedSpace())
	ctx.W.VarUint32(typeid.Composite(entry.UserID))
	tmBytes, err := ctx.Reg.TypeMetaBytes(entry.GoType)
	if err != nil {
		return err
	}
	ctx.W.Bytes(tmBytes)
	for _, f := range entry.Schema.Fields {
		if err := serializer.WriteValue(ctx, v.Field(f.Index), f.Type); err != nil {
			return err
		}
	}
	return nil
}

// ReadStruct decodes the composite header and the writer's inline
// TypeMeta, then walks the writer's fields IN THE WRITER'S OWN ORDER —
// that order is what the byte stream actually holds, regardless of how
// the reader declared its own struct (spec.md §4.7 point 1). Each
// writer field is paired with the reader's same-named field if one
// exists; unmatched writer fields are skip-walked, and reader fields
// the writer never sent are left at their zero value.
func (Codec) ReadStruct(ctx *serializer.ReadContext, entry *registry.Entry) (reflect.Value, error) {
	composite, err := ctx.R.VarUint32()
	if err != nil {
		return reflect.Value{}, err
	}
	if _, low := typeid.SplitComposite(composite); low != typeid.STRUCT {
		return reflect.Value{}, ferr.MalformedStream("composite header does not name a struct")
	}

	writerMeta, err := typemeta.Decode(ctx.R)
	if err != nil {
		return reflect.Value{}, err
	}

	out := reflect.New(entry.Schema.GoType).Elem()
	consumed := make(map[string]bool, len(writerMeta.Fields))

	for _, wf := range writerMeta.Fields {
		rf, ok := entry.Schema.FieldByName(wf.Name)
		if !ok {
			ctx.Reg.Logger().Debug("reconcile: skipping field absent from reader schema", zap.String("field", wf.Name))
			if err := skipValue(ctx.R, wf.FieldType); err != nil {
				return reflect.Value{}, err
			}
			continue
		}
		val, err := reconcileValue(ctx, wf.FieldType, rf.Type)
		if err != nil {
			return reflect.Value{}, err
		}
		out.Field(rf.Index).Set(val)
		consumed[rf.Name] = true
	}

	for _, rf := range entry.Schema.Fields {
		if !consumed[rf.Name] {
			ctx.Reg.Logger().Debug("reconcile: defaulting field absent from writer stream", zap.String("field", rf.Name))
			out.Field(rf.Index).Set(rf.Type.ZeroReflect())
		}
	}
	return out, nil
}

// reconcileValue decodes one field's payload off the stream per the
// writer's FieldType wft, producing a value assignable to the reader's
// declared TypeSpec rst. Nullability is driven exclusively by the
// writer's declaration (spec.md §9's "Ref-flag placement ambiguity"
// resolution): a ref-flag byte precedes the payload if and only if wft
// is Optional, never because rst is.
func reconcileValue(ctx *serializer.ReadContext, wft typemeta.FieldType, rst codegen.TypeSpec) (reflect.Value, error) {
	if wft.IsOptional() {
		flag, err := ctx.R.U8()
		if err != nil {
			return reflect.Value{}, err
		}
		switch typeid.RefFlag(flag) {
		case typeid.RefNull:
			return rst.ZeroReflect(), nil
		case typeid.RefNotNullValue:
			inner := wft.Inner()
			if rst.IsOptional() {
				if inner.TypeID != rst.Elem.ID {
					ctx.Reg.Logger().Debug("reconcile: optional leaf retyped, defaulting to none",
						zap.Uint32("writer_type", uint32(inner.TypeID)), zap.Uint32("reader_type", uint32(rst.Elem.ID)))
					if err := skipValue(ctx.R, inner); err != nil {
						return reflect.Value{}, err
					}
					return rst.ZeroReflect(), nil
				}
				val, err := reconcileValue(ctx, inner, *rst.Elem)
				if err != nil {
					return reflect.Value{}, err
				}
				ptr := reflect.New(rst.Elem.GoType)
				ptr.Elem().Set(val)
				return ptr, nil
			}
			return reconcileValue(ctx, inner, rst)
		default:
			return reflect.Value{}, ferr.UnknownRefFlag(flag)
		}
	}

	// Writer field is not Optional. If the reader declared it Optional,
	// the payload still follows with no ref-flag byte; wrap the decoded
	// value in a non-nil pointer (spec.md §8's optional/primitive matrix).
	// But if the underlying types don't even agree, this is a plain type
	// mismatch wearing an Optional reader type: skip the payload and
	// materialise the reader's own default for Optional, which is None,
	// not Some(leaf-zero) (spec.md §4.7 point 1).
	if rst.IsOptional() {
		if wft.TypeID != rst.Elem.ID {
			ctx.Reg.Logger().Debug("reconcile: leaf retyped under reader optional, defaulting to none",
				zap.Uint32("writer_type", uint32(wft.TypeID)), zap.Uint32("reader_type", uint32(rst.Elem.ID)))
			if err := skipValue(ctx.R, wft); err != nil {
				return reflect.Value{}, err
			}
			return rst.ZeroReflect(), nil
		}
		val, err := reconcileValue(ctx, wft, *rst.Elem)
		if err != nil {
			return reflect.Value{}, err
		}
		ptr := reflect.New(rst.Elem.GoType)
		ptr.Elem().Set(val)
		return ptr, nil
	}

	if wft.TypeID != rst.ID {
		ctx.Reg.Logger().Debug("reconcile: field retyped, defaulting to zero value",
			zap.Uint32("writer_type", uint32(wft.TypeID)), zap.Uint32("reader_type", uint32(rst.ID)))
		if err := skipValue(ctx.R, wft); err != nil {
			return reflect.Value{}, err
		}
		return rst.ZeroReflect(), nil
	}

	switch wft.TypeID {
	case typeid.ARRAY:
		return reconcileSequence(ctx, wft, rst)
	case typeid.SET:
		return reconcileSet(ctx, wft, rst)
	case typeid.MAP:
		return reconcileMap(ctx, wft, rst)
	case typeid.STRUCT:
		nestedEntry, ok := ctx.Reg.ByGoType(rst.GoType)
		if !ok {
			return reflect.Value{}, ferr.Unregistered(rst.GoType.String())
		}
		return ctx.Struct.ReadStruct(ctx, nestedEntry)
	default:
		return serializer.ReadValue(ctx, rst)
	}
}

// coreTypeID returns a FieldType's underlying leaf/container id, looking
// past one level of Optional wrapping (adjacent Optional nesting is
// rejected at schema-build time, so one level is all there ever is).
// Collection element reconciliation must compare on this, not on the raw
// id, or Sequence<Option<i8>> vs Sequence<i8> (scenario 4, a legitimate
// element-wise coercion) would be misread as a type mismatch.
func coreTypeID(ft typemeta.FieldType) typeid.ID {
	if ft.TypeID == typeid.OPTION {
		return ft.Children[0].TypeID
	}
	return ft.TypeID
}

func coreSpecID(t codegen.TypeSpec) typeid.ID {
	if t.IsOptional() {
		return t.Elem.ID
	}
	return t.ID
}

func reconcileSequence(ctx *serializer.ReadContext, wft typemeta.FieldType, rst codegen.TypeSpec) (reflect.Value, error) {
	if _, err := ctx.R.VarUint32(); err != nil {
		return reflect.Value{}, err
	}
	n, err := ctx.R.VarInt32()
	if err != nil {
		return reflect.Value{}, err
	}
	elemWft := wft.Children[0]
	// The container kind matches (both Sequence), but if the element's
	// own underlying type was retyped, the whole field defaults to an
	// empty collection rather than an element-wise-defaulted one of the
	// writer's length (spec.md §8 scenario 1, "f6 defaulted").
	if coreTypeID(elemWft) != coreSpecID(*rst.Elem) {
		ctx.Reg.Logger().Debug("reconcile: sequence element retyped, defaulting field to empty",
			zap.Uint32("writer_elem_type", uint32(coreTypeID(elemWft))), zap.Uint32("reader_elem_type", uint32(coreSpecID(*rst.Elem))))
		for i := int32(0); i < n; i++ {
			if err := skipValue(ctx.R, elemWft); err != nil {
				return reflect.Value{}, err
			}
		}
		return rst.ZeroReflect(), nil
	}
	out := reflect.MakeSlice(rst.GoType, int(n), int(n))
	for i := 0; i < int(n); i++ {
		v, err := reconcileValue(ctx, elemWft, *rst.Elem)
		if err != nil {
			return reflect.Value{}, err
		}
		out.Index(i).Set(v)
	}
	return out, nil
}

func reconcileSet(ctx *serializer.ReadContext, wft typemeta.FieldType, rst codegen.TypeSpec) (reflect.Value, error) {
	if _, err := ctx.R.VarUint32(); err != nil {
		return reflect.Value{}, err
	}
	n, err := ctx.R.VarInt32()
	if err != nil {
		return reflect.Value{}, err
	}
	elemWft := wft.Children[0]
	if coreTypeID(elemWft) != coreSpecID(*rst.Elem) {
		ctx.Reg.Logger().Debug("reconcile: set element retyped, defaulting field to empty",
			zap.Uint32("writer_elem_type", uint32(coreTypeID(elemWft))), zap.Uint32("reader_elem_type", uint32(coreSpecID(*rst.Elem))))
		for i := int32(0); i < n; i++ {
			if err := skipValue(ctx.R, elemWft); err != nil {
				return reflect.Value{}, err
			}
		}
		return rst.ZeroReflect(), nil
	}
	out := reflect.MakeMapWithSize(rst.GoType, int(n))
	empty := reflect.Zero(rst.GoType.Elem())
	for i := 0; i < int(n); i++ {
		k, err := reconcileValue(ctx, elemWft, *rst.Elem)
		if err != nil {
			return reflect.Value{}, err
		}
		out.SetMapIndex(k, empty)
	}
	return out, nil
}

func reconcileMap(ctx *serializer.ReadContext, wft typemeta.FieldType, rst codegen.TypeSpec) (reflect.Value, error) {
	if _, err := ctx.R.VarUint32(); err != nil { // key type id
		return reflect.Value{}, err
	}
	if _, err := ctx.R.VarUint32(); err != nil { // value type id
		return reflect.Value{}, err
	}
	n, err := ctx.R.VarInt32()
	if err != nil {
		return reflect.Value{}, err
	}
	keyWft, valWft := wft.Children[0], wft.Children[1]
	if coreTypeID(keyWft) != coreSpecID(*rst.Key) || coreTypeID(valWft) != coreSpecID(*rst.Value) {
		ctx.Reg.Logger().Debug("reconcile: map key or value retyped, defaulting field to empty")
		for i := int32(0); i < n; i++ {
			if err := skipValue(ctx.R, keyWft); err != nil {
				return reflect.Value{}, err
			}
			if err := skipValue(ctx.R, valWft); err != nil {
				return reflect.Value{}, err
			}
		}
		return rst.ZeroReflect(), nil
	}
	out := reflect.MakeMapWithSize(rst.GoType, int(n))
	for i := 0; i < int(n); i++ {
		k, err := reconcileValue(ctx, keyWft, *rst.Key)
		if err != nil {
			return reflect.Value{}, err
		}
		v, err := reconcileValue(ctx, valWft, *rst.Value)
		if err != nil {
			return reflect.Value{}, err
		}
		out.SetMapIndex(k, v)
	}
	return out, nil
}

// skipValue consumes exactly the bytes a payload of writer type wft
// occupies without materialising a Go value, spec.md §4.7 point 4's
// skip walk for fields the reader's struct does not declare. It must
// mirror serializer.WriteValue's encoding rules byte for byte.
func skipValue(r *buffer.Reader, wft typemeta.FieldType) error {
	switch wft.TypeID {
	case typeid.OPTION:
		flag, err := r.U8()
		if err != nil {
			return err
		}
		switch typeid.RefFlag(flag) {
		case typeid.RefNull:
			return nil
		case typeid.RefNotNullValue:
			return skipValue(r, wft.Inner())
		default:
			return ferr.UnknownRefFlag(flag)
		}
	case typeid.BOOL, typeid.INT8:
		return r.Skip(1)
	case typeid.INT16:
		return r.Skip(2)
	case typeid.INT32:
		_, err := r.VarInt32()
		return err
	case typeid.INT64:
		return r.Skip(8)
	case typeid.FLOAT32:
		return r.Skip(4)
	case typeid.FLOAT64:
		return r.Skip(8)
	case typeid.STRING, typeid.BINARY:
		n, err := r.VarUint32()
		if err != nil {
			return err
		}
		return r.Skip(int(n))
	case typeid.LOCAL_DATE:
		return r.Skip(4)
	case typeid.TIMESTAMP:
		return r.Skip(8)
	case typeid.ARRAY, typeid.SET:
		if _, err := r.VarUint32(); err != nil {
			return err
		}
		n, err := r.VarInt32()
		if err != nil {
			return err
		}
		for i := int32(0); i < n; i++ {
			if err := skipValue(r, wft.Children[0]); err != nil {
				return err
			}
		}
		return nil
	case typeid.MAP:
		if _, err := r.VarUint32(); err != nil {
			return err
		}
		if _, err := r.VarUint32(); err != nil {
			return err
		}
		n, err := r.VarInt32()
		if err != nil {
			return err
		}
		for i := int32(0); i < n; i++ {
			if err := skipValue(r, wft.Children[0]); err != nil {
				return err
			}
			if err := skipValue(r, wft.Children[1]); err != nil {
				return err
			}
		}
		return nil
	case typeid.STRUCT:
		if _, err := r.VarUint32(); err != nil { // nested composite header
			return err
		}
		nested, err := typemeta.Decode(r)
		if err != nil {
			return err
		}
		for _, f := range nested.Fields {
			if err := skipValue(r, f.FieldType); err != nil {
				return err
			}
		}
		return nil
	default:
		return ferr.MalformedStream("skip walk: unknown type id in writer TypeMeta")
	}
}
