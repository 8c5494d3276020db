package reconcile

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fory-project/fory-go-core/internal/buffer"
	"github.com/fory-project/fory-go-core/internal/codegen"
	"github.com/fory-project/fory-go-core/internal/registry"
	"github.com/fory-project/fory-go-core/internal/serializer"
)

// writeCompatible builds a standalone registry containing only sample's
// type, writes sample with Codec, and returns the encoded bytes. Each
// scenario uses a distinct writer registry from its reader registry,
// mirroring two processes that never share registry state, only a
// layer_id convention (spec.md §8's end-to-end scenarios).
func writeCompatible(t *testing.T, layerID uint32, sample interface{}) []byte {
	t.Helper()
	reg := registry.New()
	schema, err := codegen.BuildStructSchema(layerID, sample)
	require.NoError(t, err)
	require.NoError(t, reg.Register(schema, layerID))
	entry, _ := reg.ByGoType(schema.GoType)

	w := buffer.NewWriter(0)
	ctx := &serializer.WriteContext{W: w, Reg: reg, Mode: registry.Compatible, Struct: Codec{}}
	require.NoError(t, Codec{}.WriteStruct(ctx, reflect.ValueOf(sample), entry))
	return w.Dump()
}

func readCompatible(t *testing.T, data []byte, layerID uint32, readerZero interface{}) reflect.Value {
	t.Helper()
	reg := registry.New()
	schema, err := codegen.BuildStructSchema(layerID, readerZero)
	require.NoError(t, err)
	require.NoError(t, reg.Register(schema, layerID))
	entry, _ := reg.ByGoType(schema.GoType)

	r := buffer.NewReader(data)
	ctx := &serializer.ReadContext{R: r, Reg: reg, Mode: registry.Compatible, Struct: Codec{}}
	out, err := Codec{}.ReadStruct(ctx, entry)
	require.NoError(t, err)
	return out
}

// --- Scenario 1: field add/remove/retype ---

type scenario1Writer struct {
	F1 map[int8][]int8 `fory:"f1"`
	F2 string           `fory:"f2"`
	F3 []int8           `fory:"f3"`
	F5 string           `fory:"f5"`
	F6 []int8           `fory:"f6"`
	F7 int8             `fory:"f7"`
	F8 int8             `fory:"f8"`
}

type scenario1Reader struct {
	F1 map[int8][]int8 `fory:"f1"`
	F3 []int8           `fory:"f3"`
	F4 string           `fory:"f4"`
	F5 int8             `fory:"f5"`
	F6 []int16          `fory:"f6"`
	F7 int16            `fory:"f7"`
	F8 int8             `fory:"f8"`
}

func TestScenario1FieldAddRemoveRetype(t *testing.T) {
	in := scenario1Writer{
		F1: map[int8][]int8{1: {2}},
		F2: "hello",
		F3: []int8{1, 2, 3},
		F5: "f5",
		F6: []int8{42},
		F7: 43,
		F8: 44,
	}
	data := writeCompatible(t, 999, in)
	out := readCompatible(t, data, 999, scenario1Reader{}).Interface().(scenario1Reader)

	require.Equal(t, in.F1, out.F1)
	require.Equal(t, in.F3, out.F3)
	require.Equal(t, "", out.F4)
	require.Equal(t, int8(0), out.F5)
	require.Nil(t, out.F6)
	require.Equal(t, int16(0), out.F7)
	require.Equal(t, int8(44), out.F8)
}

// --- Scenario 2: optional -> primitive drop ---

type scenario2Writer struct {
	F1   *string `fory:"f1"`
	F2   *string `fory:"f2"`
	Last int64   `fory:"last"`
}

type scenario2Reader struct {
	F1   int8  `fory:"f1"`
	F2   int8  `fory:"f2"`
	Last int64 `fory:"last"`
}

func TestScenario2OptionalToPrimitiveDrop(t *testing.T) {
	f2 := "f2"
	in := scenario2Writer{F1: nil, F2: &f2, Last: 42}
	data := writeCompatible(t, 999, in)
	out := readCompatible(t, data, 999, scenario2Reader{}).Interface().(scenario2Reader)

	require.Equal(t, int8(0), out.F1)
	require.Equal(t, int8(0), out.F2)
	require.Equal(t, int64(42), out.Last)
}

// --- Scenario 3: six-way nullability matrix ---

type scenario3Writer struct {
	F2   int8  `fory:"f2"`
	F3   *int8 `fory:"f3"`
	F4   *int8 `fory:"f4"`
	F5   *int8 `fory:"f5"`
	F6   *int8 `fory:"f6"`
	Last int64 `fory:"last"`
}

type scenario3Reader struct {
	F2   *int8 `fory:"f2"`
	F3   int8  `fory:"f3"`
	F4   *int8 `fory:"f4"`
	F5   *int8 `fory:"f5"`
	F6   int8  `fory:"f6"`
	Last int64 `fory:"last"`
}

func TestScenario3SixWayNullabilityMatrix(t *testing.T) {
	f3, f4 := int8(44), int8(45)
	in := scenario3Writer{F2: 43, F3: &f3, F4: &f4, F5: nil, F6: nil, Last: 666}
	data := writeCompatible(t, 999, in)
	out := readCompatible(t, data, 999, scenario3Reader{}).Interface().(scenario3Reader)

	require.NotNil(t, out.F2)
	require.Equal(t, int8(43), *out.F2)
	require.Equal(t, int8(44), out.F3)
	require.NotNil(t, out.F4)
	require.Equal(t, int8(45), *out.F4)
	require.Nil(t, out.F5)
	require.Equal(t, int8(0), out.F6)
	require.Equal(t, int64(666), out.Last)
}

// --- Scenario 4: inner-nullable collections ---

type scenario4Writer struct {
	F1 []*int8          `fory:"f1"`
	F2 codegen.Set[*int8] `fory:"f2"`
	F3 map[int8]*int8   `fory:"f3"`
}

type scenario4Reader struct {
	F1 []int8            `fory:"f1"`
	F2 codegen.Set[int8] `fory:"f2"`
	F3 map[int8]int8     `fory:"f3"`
}

func TestScenario4InnerNullableCollections(t *testing.T) {
	e42, e43, e46 := int8(42), int8(43), int8(46)
	in := scenario4Writer{
		F1: []*int8{nil, &e42},
		F2: codegen.NewSet[*int8](nil, &e43),
		F3: map[int8]*int8{44: nil, 45: &e46},
	}
	data := writeCompatible(t, 999, in)
	out := readCompatible(t, data, 999, scenario4Reader{}).Interface().(scenario4Reader)

	require.Equal(t, []int8{0, 42}, out.F1)
	require.Equal(t, codegen.NewSet[int8](0, 43), out.F2)
	require.Equal(t, map[int8]int8{44: 0, 45: 46}, out.F3)
}

// --- Scenario 5: optional struct fields ---

type scenario5Item struct {
	V int8 `fory:"v"`
}

type scenario5Writer struct {
	F1 scenario5Item  `fory:"f1"`
	F2 *scenario5Item `fory:"f2"`
	F3 *scenario5Item `fory:"f3"`
}

type scenario5Reader struct {
	F1 *scenario5Item `fory:"f1"`
	F2 scenario5Item  `fory:"f2"`
	F3 scenario5Item  `fory:"f3"`
}

func writeCompatibleWithNested(t *testing.T, outerLayerID uint32, outer interface{}, innerLayerID uint32, innerSample interface{}) []byte {
	t.Helper()
	reg := registry.New()

	innerSchema, err := codegen.BuildStructSchema(innerLayerID, innerSample)
	require.NoError(t, err)
	require.NoError(t, reg.Register(innerSchema, innerLayerID))

	outerSchema, err := codegen.BuildStructSchema(outerLayerID, outer)
	require.NoError(t, err)
	require.NoError(t, reg.Register(outerSchema, outerLayerID))
	entry, _ := reg.ByGoType(outerSchema.GoType)

	w := buffer.NewWriter(0)
	ctx := &serializer.WriteContext{W: w, Reg: reg, Mode: registry.Compatible, Struct: Codec{}}
	require.NoError(t, Codec{}.WriteStruct(ctx, reflect.ValueOf(outer), entry))
	return w.Dump()
}

func readCompatibleWithNested(t *testing.T, data []byte, outerLayerID uint32, outerZero interface{}, innerLayerID uint32, innerZero interface{}) reflect.Value {
	t.Helper()
	reg := registry.New()

	innerSchema, err := codegen.BuildStructSchema(innerLayerID, innerZero)
	require.NoError(t, err)
	require.NoError(t, reg.Register(innerSchema, innerLayerID))

	outerSchema, err := codegen.BuildStructSchema(outerLayerID, outerZero)
	require.NoError(t, err)
	require.NoError(t, reg.Register(outerSchema, outerLayerID))
	entry, _ := reg.ByGoType(outerSchema.GoType)

	r := buffer.NewReader(data)
	ctx := &serializer.ReadContext{R: r, Reg: reg, Mode: registry.Compatible, Struct: Codec{}}
	out, err := Codec{}.ReadStruct(ctx, entry)
	require.NoError(t, err)
	return out
}

func TestScenario5OptionalStructFields(t *testing.T) {
	item := scenario5Item{V: 7}
	in := scenario5Writer{F1: item, F2: nil, F3: &item}

	data := writeCompatibleWithNested(t, 999, in, 1, scenario5Item{})
	out := readCompatibleWithNested(t, data, 999, scenario5Reader{}, 1, scenario5Item{}).Interface().(scenario5Reader)

	require.NotNil(t, out.F1)
	require.Equal(t, item, *out.F1)
	require.Equal(t, scenario5Item{}, out.F2)
	require.Equal(t, item, out.F3)
}

// --- Scenario 6: nested struct retyping ---

type scenario6InnerWriter struct {
	F1 int8 `fory:"f1"`
}

type scenario6InnerReader struct {
	F1 int64 `fory:"f1"`
}

type scenario6OuterWriter struct {
	Name  string               `fory:"name"`
	Inner scenario6InnerWriter `fory:"inner"`
}

type scenario6OuterReader struct {
	Name  string               `fory:"name"`
	Inner scenario6InnerReader `fory:"inner"`
}

func TestScenario6NestedStructRetyping(t *testing.T) {
	in := scenario6OuterWriter{Name: "x", Inner: scenario6InnerWriter{F1: 5}}

	data := writeCompatibleWithNested(t, 999, in, 1, scenario6InnerWriter{})
	out := readCompatibleWithNested(t, data, 999, scenario6OuterReader{}, 1, scenario6InnerReader{}).Interface().(scenario6OuterReader)

	require.Equal(t, "x", out.Name)
	require.Equal(t, int64(0), out.Inner.F1)
}
