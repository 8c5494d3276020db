package serializer

import (
	"reflect"

	"github.com/fory-project/fory-go-core/internal/ferr"
	"github.com/fory-project/fory-go-core/internal/registry"
	"github.com/fory-project/fory-go-core/internal/typeid"
)

// ObjectGraphCodec implements StructCodec for spec.md §4.4's ObjectGraph
// mode: writer and reader are assumed to share identical types, so no
// TypeMeta travels on the wire and fields are read back in declaration
// order using the reader's own registered schema.
type ObjectGraphCodec struct{}

var _ StructCodec = ObjectGraphCodec{}

// WriteStruct emits the composite header followed by each field's
// payload in declaration order, with no TypeMeta.
func (ObjectGraphCodec) WriteStruct(ctx *WriteContext, v reflect.Value, entry *registry.Entry) error {
	ctx.W.Reserve(entry.Schema.ReservedSpace())
	ctx.W.VarUint32(typeid.Composite(entry.UserID))
	for _, f := range entry.Schema.Fields {
		if err := WriteValue(ctx, v.Field(f.Index), f.Type); err != nil {
			return err
		}
	}
	return nil
}

// ReadStruct decodes the composite header, validates it names the
// expected user id, then reads entry.Schema's fields back in order.
func (ObjectGraphCodec) ReadStruct(ctx *ReadContext, entry *registry.Entry) (reflect.Value, error) {
	composite, err := ctx.R.VarUint32()
	if err != nil {
		return reflect.Value{}, err
	}
	userID, low := typeid.SplitComposite(composite)
	if low != typeid.STRUCT {
		return reflect.Value{}, ferr.TypeMismatch(uint32(typeid.STRUCT), uint32(low))
	}
	if userID != entry.UserID {
		if _, known := ctx.Reg.ByUserID(userID); !known {
			return reflect.Value{}, ferr.UnknownUserID(userID)
		}
		return reflect.Value{}, ferr.TypeMismatch(typeid.Composite(entry.UserID), composite)
	}

	out := reflect.New(entry.Schema.GoType).Elem()
	for _, f := range entry.Schema.Fields {
		v, err := ReadValue(ctx, f.Type)
		if err != nil {
			return reflect.Value{}, err
		}
		out.Field(f.Index).Set(v)
	}
	return out, nil
}
