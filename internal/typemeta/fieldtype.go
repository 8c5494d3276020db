// Package typemeta implements the self-describing struct descriptor a
// Compatible-mode writer emits and a reader decodes to drive schema
// reconciliation (spec.md §4.3).
package typemeta

import (
	"github.com/fory-project/fory-go-core/internal/buffer"
	"github.com/fory-project/fory-go-core/internal/typeid"
)

// FieldType is the recursive descriptor spec.md §3 defines: a type id
// plus an ordered list of children. Sequence/Set carry one child
// (element type), Map carries two (key, value), Optional carries one
// (the inner type) under the synthetic OPTION id.
type FieldType struct {
	TypeID   typeid.ID
	Children []FieldType
}

// Leaf builds a childless FieldType, for primitives/string/temporal.
func Leaf(id typeid.ID) FieldType { return FieldType{TypeID: id} }

// IsOptional reports whether this node is the synthetic Optional wrapper.
func (f FieldType) IsOptional() bool { return f.TypeID == typeid.OPTION }

// Inner returns the wrapped type of an Optional node. It returns
// Children[0] without checking the type id (and panics on a node with no
// children); callers must check IsOptional first.
func (f FieldType) Inner() FieldType {
	return f.Children[0]
}

// Encode writes this FieldType's wire form: var_uint32 type_id,
// var_uint32 num_children, then each child recursively.
func (f FieldType) Encode(w *buffer.Writer) {
	w.VarUint32(uint32(f.TypeID))
	w.VarUint32(uint32(len(f.Children)))
	for _, c := range f.Children {
		c.Encode(w)
	}
}

// DecodeFieldType is the exact inverse of Encode.
func DecodeFieldType(r *buffer.Reader) (FieldType, error) {
	rawID, err := r.VarUint32()
	if err != nil {
		return FieldType{}, err
	}
	numChildren, err := r.VarUint32()
	if err != nil {
		return FieldType{}, err
	}
	var children []FieldType
	if numChildren > 0 {
		children = make([]FieldType, 0, numChildren)
	}
	for i := uint32(0); i < numChildren; i++ {
		child, err := DecodeFieldType(r)
		if err != nil {
			return FieldType{}, err
		}
		children = append(children, child)
	}
	return FieldType{TypeID: typeid.ID(rawID), Children: children}, nil
}

// SkipFieldType consumes exactly the bytes DecodeFieldType would have
// read, without materialising a FieldType. TypeMeta itself is small
// enough that reconciliation always decodes it fully, including a nested
// struct's inline TypeMeta during the skip walk (which calls Decode);
// this exists for symmetry and is not called by the reconcile package.
func SkipFieldType(r *buffer.Reader) error {
	_, err := r.VarUint32()
	if err != nil {
		return err
	}
	numChildren, err := r.VarUint32()
	if err != nil {
		return err
	}
	for i := uint32(0); i < numChildren; i++ {
		if err := SkipFieldType(r); err != nil {
			return err
		}
	}
	return nil
}
