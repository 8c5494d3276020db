// Package serializer is the polymorphic dispatch contract spec.md §4.5
// describes: given a TypeSpec, write a Go value's payload or read one
// back. Struct payloads are handled through the StructCodec interface
// rather than directly, so this package stays free of the
// Compatible-mode reconciliation logic (internal/reconcile) that would
// otherwise import back into it.
package serializer

import (
	"reflect"

	"github.com/fory-project/fory-go-core/internal/buffer"
	"github.com/fory-project/fory-go-core/internal/registry"
)

// StructCodec writes and reads a whole struct value, header included.
// internal/reconcile implements this for Compatible mode; ObjectGraphCodec
// in this package implements it for ObjectGraph mode.
type StructCodec interface {
	WriteStruct(ctx *WriteContext, v reflect.Value, entry *registry.Entry) error
	ReadStruct(ctx *ReadContext, entry *registry.Entry) (reflect.Value, error)
}

// WriteContext bundles what a write needs: the output buffer, the
// registry (for resolving nested struct ids), the active mode, and the
// struct codec the active mode selected.
type WriteContext struct {
	W      *buffer.Writer
	Reg    *registry.Registry
	Mode   registry.Mode
	Struct StructCodec
}

// ReadContext is WriteContext's read-side mirror.
type ReadContext struct {
	R      *buffer.Reader
	Reg    *registry.Registry
	Mode   registry.Mode
	Struct StructCodec
}
