package typemeta

import (
	"github.com/fory-project/fory-go-core/internal/buffer"
)

// Field is one named entry in a TypeMeta: a declared field name paired
// with its recursive type descriptor.
type Field struct {
	Name      string
	FieldType FieldType
}

// TypeMeta is the per-struct self-description spec.md §3/§4.3 define:
// a layer id grouping writer/reader schemas meant to reconcile, plus an
// ordered field list. Field names are unique within a TypeMeta and
// order is declaration order; bytes are deterministic given the
// declaration, which is what lets the registry cache and reuse them.
type TypeMeta struct {
	LayerID uint32
	Fields  []Field
}

// FieldByName returns the field with the given name, or false if the
// TypeMeta has none. Compatible reconciliation (spec.md §4.7) pairs
// writer and reader fields by exactly this lookup.
func (m TypeMeta) FieldByName(name string) (Field, bool) {
	for _, f := range m.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Encode writes var_uint32 layer_id, var_uint32 num_fields, then for
// each field: string name, FieldType.
func (m TypeMeta) Encode(w *buffer.Writer) {
	w.VarUint32(m.LayerID)
	w.VarUint32(uint32(len(m.Fields)))
	for _, f := range m.Fields {
		w.WriteString(f.Name)
		f.FieldType.Encode(w)
	}
}

// Decode is the exact inverse of Encode.
func Decode(r *buffer.Reader) (TypeMeta, error) {
	layerID, err := r.VarUint32()
	if err != nil {
		return TypeMeta{}, err
	}
	numFields, err := r.VarUint32()
	if err != nil {
		return TypeMeta{}, err
	}
	fields := make([]Field, 0, numFields)
	for i := uint32(0); i < numFields; i++ {
		name, err := r.ReadString()
		if err != nil {
			return TypeMeta{}, err
		}
		ft, err := DecodeFieldType(r)
		if err != nil {
			return TypeMeta{}, err
		}
		fields = append(fields, Field{Name: name, FieldType: ft})
	}
	return TypeMeta{LayerID: layerID, Fields: fields}, nil
}

// ToBytes serialises this TypeMeta on its own, the form the registry
// caches per language-level type identity (spec.md §3 Lifecycle).
func (m TypeMeta) ToBytes() []byte {
	w := buffer.NewWriter(32)
	m.Encode(w)
	return w.Dump()
}

// CompatibleWith reports whether two TypeMetas share a layer id and are
// therefore eligible for reconciliation; their field sets need not
// agree (spec.md §4.3).
func (m TypeMeta) CompatibleWith(other TypeMeta) bool {
	return m.LayerID == other.LayerID
}
