package serializer

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fory-project/fory-go-core/internal/buffer"
	"github.com/fory-project/fory-go-core/internal/codegen"
	"github.com/fory-project/fory-go-core/internal/registry"
)

type point struct {
	X int32
	Y int32
}

type withChild struct {
	Label string
	At    point
	Tags  codegen.Set[string]
	Note  *string
}

func newTestRegistry(t *testing.T) (*registry.Registry, *registry.Entry, *registry.Entry) {
	t.Helper()
	reg := registry.New()

	pointSchema, err := codegen.BuildStructSchema(1, point{})
	require.NoError(t, err)
	require.NoError(t, reg.Register(pointSchema, 1))

	childSchema, err := codegen.BuildStructSchema(2, withChild{})
	require.NoError(t, err)
	// the Point-valued field needs no patching: inferTypeSpec maps
	// struct-kind fields to a nested STRUCT spec.
	require.NoError(t, reg.Register(childSchema, 2))

	pointEntry, _ := reg.ByGoType(pointSchema.GoType)
	childEntry, _ := reg.ByGoType(childSchema.GoType)
	return reg, pointEntry, childEntry
}

func TestObjectGraphRoundTripNestedStruct(t *testing.T) {
	reg, _, childEntry := newTestRegistry(t)
	codec := ObjectGraphCodec{}

	note := "hello"
	in := withChild{
		Label: "origin",
		At:    point{X: 3, Y: -4},
		Tags:  codegen.NewSet("a", "b"),
		Note:  &note,
	}

	w := buffer.NewWriter(0)
	wctx := &WriteContext{W: w, Reg: reg, Mode: registry.ObjectGraph, Struct: codec}
	require.NoError(t, codec.WriteStruct(wctx, reflect.ValueOf(in), childEntry))

	r := buffer.NewReader(w.Dump())
	rctx := &ReadContext{R: r, Reg: reg, Mode: registry.ObjectGraph, Struct: codec}
	out, err := codec.ReadStruct(rctx, childEntry)
	require.NoError(t, err)

	got := out.Interface().(withChild)
	require.Equal(t, in.Label, got.Label)
	require.Equal(t, in.At, got.At)
	require.Equal(t, in.Tags, got.Tags)
	require.NotNil(t, got.Note)
	require.Equal(t, *in.Note, *got.Note)
	require.Equal(t, 0, r.Remaining())
}

func TestObjectGraphNilOptionalRoundTrips(t *testing.T) {
	reg, _, childEntry := newTestRegistry(t)
	codec := ObjectGraphCodec{}

	in := withChild{Label: "no-note", At: point{}, Tags: codegen.NewSet[string]()}

	w := buffer.NewWriter(0)
	wctx := &WriteContext{W: w, Reg: reg, Mode: registry.ObjectGraph, Struct: codec}
	require.NoError(t, codec.WriteStruct(wctx, reflect.ValueOf(in), childEntry))

	r := buffer.NewReader(w.Dump())
	rctx := &ReadContext{R: r, Reg: reg, Mode: registry.ObjectGraph, Struct: codec}
	out, err := codec.ReadStruct(rctx, childEntry)
	require.NoError(t, err)
	require.Nil(t, out.Interface().(withChild).Note)
}

func TestObjectGraphWrongUserIDRejected(t *testing.T) {
	reg, pointEntry, childEntry := newTestRegistry(t)
	codec := ObjectGraphCodec{}

	w := buffer.NewWriter(0)
	wctx := &WriteContext{W: w, Reg: reg, Mode: registry.ObjectGraph, Struct: codec}
	require.NoError(t, codec.WriteStruct(wctx, reflect.ValueOf(point{X: 1, Y: 2}), pointEntry))

	r := buffer.NewReader(w.Dump())
	rctx := &ReadContext{R: r, Reg: reg, Mode: registry.ObjectGraph, Struct: codec}
	_, err := codec.ReadStruct(rctx, childEntry)
	require.Error(t, err)
}
