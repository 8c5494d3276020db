// Package fory is the host-facing façade: a Serializer that owns a
// registry and a wire mode, exposing generic Register/Serialize/
// Deserialize entry points over the internal codec packages (spec.md
// §6). It carries no reconciliation or buffer logic of its own — every
// call is a thin dispatch into internal/registry, internal/serializer,
// and internal/reconcile.
package fory

import (
	"reflect"

	"github.com/Masterminds/semver/v3"
	"go.uber.org/zap"

	"github.com/fory-project/fory-go-core/internal/buffer"
	"github.com/fory-project/fory-go-core/internal/codegen"
	"github.com/fory-project/fory-go-core/internal/ferr"
	"github.com/fory-project/fory-go-core/internal/reconcile"
	"github.com/fory-project/fory-go-core/internal/registry"
	"github.com/fory-project/fory-go-core/internal/serializer"
)

// Mode selects ObjectGraph vs Compatible wire semantics (spec.md §4.4).
type Mode = registry.Mode

const (
	ObjectGraph = registry.ObjectGraph
	Compatible  = registry.Compatible
)

// coreVersion is this wire generation's metadata-only version; it never
// gates compatibility, which is governed purely by layer_id (spec.md §4.3).
const coreVersion = "1.0.0"

// CoreVersion reports this core's semver identity. Purely informational.
func CoreVersion() *semver.Version {
	return semver.MustParse(coreVersion)
}

const (
	flagLittleEndian  byte = 1 << 0
	flagCrossLanguage byte = 1 << 1
	flagCompatible    byte = 1 << 2
)

// Serializer bundles a registry with the wire mode it was built under
// (spec.md §1: "a public façade object that holds a registry and mode
// flag"). Build one per process (or per isolated test), register every
// struct type it will serialize, then call Serialize/Deserialize.
type Serializer struct {
	reg  *registry.Registry
	mode Mode
}

// Option configures a Serializer at construction time.
type Option func(*options)

type options struct {
	mode   Mode
	logger *zap.Logger
}

// WithMode selects ObjectGraph (default) or Compatible wire semantics.
func WithMode(m Mode) Option {
	return func(o *options) { o.mode = m }
}

// WithLogger attaches a structured logger to the underlying registry.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// New builds a Serializer ready for Register calls.
func New(opts ...Option) *Serializer {
	o := options{mode: ObjectGraph}
	for _, opt := range opts {
		opt(&o)
	}
	var regOpts []registry.Option
	if o.logger != nil {
		regOpts = append(regOpts, registry.WithLogger(o.logger))
	}
	return &Serializer{reg: registry.New(regOpts...), mode: o.mode}
}

// Mode reports the wire semantics this Serializer was built with.
func (s *Serializer) Mode() Mode { return s.mode }

func (s *Serializer) structCodec() serializer.StructCodec {
	if s.mode == Compatible {
		return reconcile.Codec{}
	}
	return serializer.ObjectGraphCodec{}
}

// Register derives T's schema by reflection (the runtime substitute
// spec.md §4.6/§9 sanction for the reference derive macro) and binds it
// to userID, the same id that doubles as the TypeMeta layer_id (spec.md
// §8's scenarios register every writer/reader pair under one shared id).
func Register[T any](s *Serializer, userID uint32) error {
	var zero T
	schema, err := codegen.BuildStructSchema(userID, zero)
	if err != nil {
		return err
	}
	return s.reg.Register(schema, userID)
}

// Serialize encodes v, prefixed with the two-byte wire header (spec.md
// §6) naming the flags this Serializer was built with.
func Serialize[T any](s *Serializer, v T) ([]byte, error) {
	t := elemType(reflect.TypeOf(v))
	entry, ok := s.reg.ByGoType(t)
	if !ok {
		return nil, ferr.Unregistered(t.String())
	}

	w := buffer.NewWriter(64)
	flags := flagLittleEndian | flagCrossLanguage
	if s.mode == Compatible {
		flags |= flagCompatible
	}
	w.U8(flags)
	w.U8(0x00)

	ctx := &serializer.WriteContext{W: w, Reg: s.reg, Mode: s.mode, Struct: s.structCodec()}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Ptr {
		rv = rv.Elem()
	}
	if err := ctx.Struct.WriteStruct(ctx, rv, entry); err != nil {
		return nil, err
	}
	return w.Dump(), nil
}

// Deserialize decodes data into a T, reconciling against T's registered
// schema under whichever mode the wire header declares.
func Deserialize[T any](s *Serializer, data []byte) (T, error) {
	var zero T
	r := buffer.NewReader(data)
	flags, err := r.U8()
	if err != nil {
		return zero, err
	}
	if _, err := r.U8(); err != nil {
		return zero, err
	}

	mode := ObjectGraph
	codec := serializer.StructCodec(serializer.ObjectGraphCodec{})
	if flags&flagCompatible != 0 {
		mode = Compatible
		codec = reconcile.Codec{}
	}

	t := elemType(reflect.TypeOf(zero))
	entry, ok := s.reg.ByGoType(t)
	if !ok {
		return zero, ferr.Unregistered(t.String())
	}

	ctx := &serializer.ReadContext{R: r, Reg: s.reg, Mode: mode, Struct: codec}
	val, err := ctx.Struct.ReadStruct(ctx, entry)
	if err != nil {
		return zero, err
	}
	return val.Interface().(T), nil
}

func elemType(t reflect.Type) reflect.Type {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t
}
