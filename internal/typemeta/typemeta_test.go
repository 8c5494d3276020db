package typemeta

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fory-project/fory-go-core/internal/buffer"
	"github.com/fory-project/fory-go-core/internal/typeid"
)

func TestFieldTypeRoundTrip(t *testing.T) {
	ft := FieldType{
		TypeID: typeid.MAP,
		Children: []FieldType{
			Leaf(typeid.INT8),
			{TypeID: typeid.ARRAY, Children: []FieldType{Leaf(typeid.INT8)}},
		},
	}
	w := buffer.NewWriter(0)
	ft.Encode(w)
	r := buffer.NewReader(w.Dump())
	got, err := DecodeFieldType(r)
	require.NoError(t, err)
	require.Equal(t, ft, got)
	require.Equal(t, 0, r.Remaining())
}

func TestTypeMetaRoundTrip(t *testing.T) {
	m := TypeMeta{
		LayerID: 999,
		Fields: []Field{
			{Name: "f1", FieldType: FieldType{TypeID: typeid.MAP, Children: []FieldType{
				Leaf(typeid.INT8),
				{TypeID: typeid.ARRAY, Children: []FieldType{Leaf(typeid.INT8)}},
			}}},
			{Name: "f2", FieldType: Leaf(typeid.STRING)},
			{Name: "opt", FieldType: FieldType{TypeID: typeid.OPTION, Children: []FieldType{Leaf(typeid.INT8)}}},
		},
	}
	bytes := m.ToBytes()
	r := buffer.NewReader(bytes)
	got, err := Decode(r)
	require.NoError(t, err)
	require.Equal(t, m, got)
}

func TestTypeMetaDeterministic(t *testing.T) {
	m := TypeMeta{LayerID: 1, Fields: []Field{{Name: "a", FieldType: Leaf(typeid.BOOL)}}}
	require.Equal(t, m.ToBytes(), m.ToBytes())
}

func TestFieldByName(t *testing.T) {
	m := TypeMeta{Fields: []Field{{Name: "a", FieldType: Leaf(typeid.BOOL)}}}
	f, ok := m.FieldByName("a")
	require.True(t, ok)
	require.Equal(t, typeid.BOOL, f.FieldType.TypeID)

	_, ok = m.FieldByName("missing")
	require.False(t, ok)
}

func TestCompatibleWith(t *testing.T) {
	a := TypeMeta{LayerID: 999}
	b := TypeMeta{LayerID: 999, Fields: []Field{{Name: "x", FieldType: Leaf(typeid.INT8)}}}
	c := TypeMeta{LayerID: 1}
	require.True(t, a.CompatibleWith(b))
	require.False(t, a.CompatibleWith(c))
}

func TestSkipFieldType(t *testing.T) {
	ft := FieldType{TypeID: typeid.SET, Children: []FieldType{Leaf(typeid.STRING)}}
	w := buffer.NewWriter(0)
	ft.Encode(w)
	w.U8(0xaa) // trailing marker to confirm skip stops exactly at the boundary
	r := buffer.NewReader(w.Dump())
	require.NoError(t, SkipFieldType(r))
	trailer, err := r.U8()
	require.NoError(t, err)
	require.Equal(t, uint8(0xaa), trailer)
}
