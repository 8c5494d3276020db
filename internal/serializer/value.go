package serializer

import (
	"reflect"

	"github.com/fory-project/fory-go-core/internal/codegen"
	"github.com/fory-project/fory-go-core/internal/ferr"
	"github.com/fory-project/fory-go-core/internal/temporal"
	"github.com/fory-project/fory-go-core/internal/typeid"
)

// WriteValue emits v's payload per spec.md §4.5's per-kind rules. v is
// the field's own value; for Optional it is the pointer itself, which
// WriteValue dereferences.
func WriteValue(ctx *WriteContext, v reflect.Value, spec codegen.TypeSpec) error {
	ctx.W.Reserve(spec.ReservedSpace())
	switch spec.ID {
	case typeid.BOOL:
		if v.Bool() {
			ctx.W.U8(1)
		} else {
			ctx.W.U8(0)
		}
		return nil
	case typeid.INT8:
		ctx.W.I8(int8(v.Int()))
		return nil
	case typeid.INT16:
		ctx.W.I16(int16(v.Int()))
		return nil
	case typeid.INT32:
		// Struct-field and collection-element i32 leaves use zig-zag
		// varint rather than fixed width (spec.md §4.5).
		ctx.W.VarInt32(int32(v.Int()))
		return nil
	case typeid.INT64:
		ctx.W.I64(v.Int())
		return nil
	case typeid.FLOAT32:
		ctx.W.F32(float32(v.Float()))
		return nil
	case typeid.FLOAT64:
		ctx.W.F64(v.Float())
		return nil
	case typeid.STRING:
		ctx.W.WriteString(v.String())
		return nil
	case typeid.BINARY:
		b := v.Bytes()
		ctx.W.VarUint32(uint32(len(b)))
		ctx.W.Bytes(b)
		return nil
	case typeid.LOCAL_DATE:
		ctx.W.I32(v.Interface().(temporal.LocalDate).Days())
		return nil
	case typeid.TIMESTAMP:
		ctx.W.I64(v.Interface().(temporal.DateTime).Millis())
		return nil
	case typeid.OPTION:
		if v.IsNil() {
			ctx.W.U8(uint8(typeid.RefNull))
			return nil
		}
		ctx.W.U8(uint8(typeid.RefNotNullValue))
		return WriteValue(ctx, v.Elem(), *spec.Elem)
	case typeid.ARRAY:
		return writeSequence(ctx, v, spec)
	case typeid.SET:
		return writeSet(ctx, v, spec)
	case typeid.MAP:
		return writeMap(ctx, v, spec)
	case typeid.STRUCT:
		entry, ok := ctx.Reg.ByGoType(spec.GoType)
		if !ok {
			return ferr.Unregistered(spec.GoType.String())
		}
		return ctx.Struct.WriteStruct(ctx, v, entry)
	default:
		return ferr.Unregistered(spec.ID.String())
	}
}

func writeSequence(ctx *WriteContext, v reflect.Value, spec codegen.TypeSpec) error {
	n := v.Len()
	ctx.W.VarUint32(uint32(spec.Elem.ID))
	ctx.W.VarInt32(int32(n))
	for i := 0; i < n; i++ {
		if err := WriteValue(ctx, v.Index(i), *spec.Elem); err != nil {
			return err
		}
	}
	return nil
}

func writeSet(ctx *WriteContext, v reflect.Value, spec codegen.TypeSpec) error {
	keys := v.MapKeys()
	ctx.W.VarUint32(uint32(spec.Elem.ID))
	ctx.W.VarInt32(int32(len(keys)))
	for _, k := range keys {
		if err := WriteValue(ctx, k, *spec.Elem); err != nil {
			return err
		}
	}
	return nil
}

func writeMap(ctx *WriteContext, v reflect.Value, spec codegen.TypeSpec) error {
	keys := v.MapKeys()
	ctx.W.VarUint32(uint32(spec.Key.ID))
	ctx.W.VarUint32(uint32(spec.Value.ID))
	ctx.W.VarInt32(int32(len(keys)))
	for _, k := range keys {
		if err := WriteValue(ctx, k, *spec.Key); err != nil {
			return err
		}
		if err := WriteValue(ctx, v.MapIndex(k), *spec.Value); err != nil {
			return err
		}
	}
	return nil
}

// ReadValue is WriteValue's exact inverse for ObjectGraph mode, where
// writer and reader types are assumed identical (spec.md §4.4): every
// on-wire element/key/value type id is cross-checked against spec and
// a mismatch raises TypeMismatch, the one mode in which spec.md §7
// allows that error.
func ReadValue(ctx *ReadContext, spec codegen.TypeSpec) (reflect.Value, error) {
	switch spec.ID {
	case typeid.BOOL:
		b, err := ctx.R.U8()
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(b != 0), nil
	case typeid.INT8:
		i, err := ctx.R.I8()
		return reflect.ValueOf(i), err
	case typeid.INT16:
		i, err := ctx.R.I16()
		return reflect.ValueOf(i), err
	case typeid.INT32:
		i, err := ctx.R.VarInt32()
		return reflect.ValueOf(i), err
	case typeid.INT64:
		i, err := ctx.R.I64()
		return reflect.ValueOf(i), err
	case typeid.FLOAT32:
		f, err := ctx.R.F32()
		return reflect.ValueOf(f), err
	case typeid.FLOAT64:
		f, err := ctx.R.F64()
		return reflect.ValueOf(f), err
	case typeid.STRING:
		s, err := ctx.R.ReadString()
		return reflect.ValueOf(s), err
	case typeid.BINARY:
		n, err := ctx.R.VarUint32()
		if err != nil {
			return reflect.Value{}, err
		}
		b, err := ctx.R.Bytes(int(n))
		if err != nil {
			return reflect.Value{}, err
		}
		cp := make([]byte, len(b))
		copy(cp, b)
		return reflect.ValueOf(cp), nil
	case typeid.LOCAL_DATE:
		days, err := ctx.R.I32()
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(temporal.DateFromDays(days)), nil
	case typeid.TIMESTAMP:
		ms, err := ctx.R.I64()
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(temporal.DateTimeFromMillis(ms)), nil
	case typeid.OPTION:
		flag, err := ctx.R.U8()
		if err != nil {
			return reflect.Value{}, err
		}
		switch typeid.RefFlag(flag) {
		case typeid.RefNull:
			return reflect.Zero(spec.GoType), nil
		case typeid.RefNotNullValue:
			inner, err := ReadValue(ctx, *spec.Elem)
			if err != nil {
				return reflect.Value{}, err
			}
			ptr := reflect.New(spec.Elem.GoType)
			ptr.Elem().Set(inner)
			return ptr, nil
		default:
			return reflect.Value{}, ferr.UnknownRefFlag(flag)
		}
	case typeid.ARRAY:
		return readSequence(ctx, spec)
	case typeid.SET:
		return readSet(ctx, spec)
	case typeid.MAP:
		return readMap(ctx, spec)
	case typeid.STRUCT:
		entry, ok := ctx.Reg.ByGoType(spec.GoType)
		if !ok {
			return reflect.Value{}, ferr.Unregistered(spec.GoType.String())
		}
		return ctx.Struct.ReadStruct(ctx, entry)
	default:
		return reflect.Value{}, ferr.Unregistered(spec.ID.String())
	}
}

func readSequence(ctx *ReadContext, spec codegen.TypeSpec) (reflect.Value, error) {
	elemID, err := ctx.R.VarUint32()
	if err != nil {
		return reflect.Value{}, err
	}
	if typeid.ID(elemID) != spec.Elem.ID {
		return reflect.Value{}, ferr.TypeMismatch(uint32(spec.Elem.ID), elemID)
	}
	n, err := ctx.R.VarInt32()
	if err != nil {
		return reflect.Value{}, err
	}
	out := reflect.MakeSlice(spec.GoType, int(n), int(n))
	for i := 0; i < int(n); i++ {
		v, err := ReadValue(ctx, *spec.Elem)
		if err != nil {
			return reflect.Value{}, err
		}
		out.Index(i).Set(v)
	}
	return out, nil
}

func readSet(ctx *ReadContext, spec codegen.TypeSpec) (reflect.Value, error) {
	elemID, err := ctx.R.VarUint32()
	if err != nil {
		return reflect.Value{}, err
	}
	if typeid.ID(elemID) != spec.Elem.ID {
		return reflect.Value{}, ferr.TypeMismatch(uint32(spec.Elem.ID), elemID)
	}
	n, err := ctx.R.VarInt32()
	if err != nil {
		return reflect.Value{}, err
	}
	out := reflect.MakeMapWithSize(spec.GoType, int(n))
	empty := reflect.Zero(spec.GoType.Elem())
	for i := 0; i < int(n); i++ {
		k, err := ReadValue(ctx, *spec.Elem)
		if err != nil {
			return reflect.Value{}, err
		}
		out.SetMapIndex(k, empty)
	}
	return out, nil
}

func readMap(ctx *ReadContext, spec codegen.TypeSpec) (reflect.Value, error) {
	keyID, err := ctx.R.VarUint32()
	if err != nil {
		return reflect.Value{}, err
	}
	valID, err := ctx.R.VarUint32()
	if err != nil {
		return reflect.Value{}, err
	}
	if typeid.ID(keyID) != spec.Key.ID {
		return reflect.Value{}, ferr.TypeMismatch(uint32(spec.Key.ID), keyID)
	}
	if typeid.ID(valID) != spec.Value.ID {
		return reflect.Value{}, ferr.TypeMismatch(uint32(spec.Value.ID), valID)
	}
	n, err := ctx.R.VarInt32()
	if err != nil {
		return reflect.Value{}, err
	}
	out := reflect.MakeMapWithSize(spec.GoType, int(n))
	for i := 0; i < int(n); i++ {
		k, err := ReadValue(ctx, *spec.Key)
		if err != nil {
			return reflect.Value{}, err
		}
		v, err := ReadValue(ctx, *spec.Value)
		if err != nil {
			return reflect.Value{}, err
		}
		out.SetMapIndex(k, v)
	}
	return out, nil
}
