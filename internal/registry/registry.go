// Package registry implements the per-instance bidirectional mapping
// between a Go type and its registered numeric id, plus the mode flag
// that selects ObjectGraph vs Compatible wire semantics (spec.md §4.4).
package registry

import (
	"reflect"
	"sync"

	lru "github.com/hashicorp/golang-lru"
	"go.uber.org/zap"

	"github.com/fory-project/fory-go-core/internal/codegen"
	"github.com/fory-project/fory-go-core/internal/ferr"
)

// Mode selects how structs are framed on the wire (spec.md §4.4).
type Mode int

const (
	// ObjectGraph assumes the writer and reader share identical types;
	// no TypeMeta travels on the wire and field order is the contract.
	ObjectGraph Mode = iota
	// Compatible has the writer emit TypeMeta and the reader reconcile
	// against its own declared fields.
	Compatible
)

func (m Mode) String() string {
	if m == Compatible {
		return "compatible"
	}
	return "object_graph"
}

// Entry is one registered binding: a Go type's identity, its
// user-chosen numeric id, and the schema codegen derived for it
// (spec.md §3 "Registry entry").
type Entry struct {
	UserID uint32
	GoType reflect.Type
	Schema *codegen.StructSchema
}

// typeMetaCacheSize bounds the registry's derived-TypeMeta-bytes cache.
// The registry itself is small and build-once; this only bounds hosts
// that register many short-lived generic instantiations over a long
// process lifetime.
const typeMetaCacheSize = 256

// Registry is the per-instance, build-once-then-read-only store spec.md
// §4.4 describes. Reads take the read lock; Register takes the write
// lock and rejects a second registration of the same Go type or id.
type Registry struct {
	mu       sync.RWMutex
	byType   map[reflect.Type]*Entry
	byUserID map[uint32]*Entry

	typeMetaBytes *lru.Cache // reflect.Type -> []byte, spec.md §5's one-time-init cache

	logger *zap.Logger
}

// Option configures a Registry at construction time.
type Option func(*Registry)

// WithLogger attaches a structured logger; the default is a no-op
// logger, so callers that don't care about diagnostics pay nothing. A
// nil logger leaves that default in place.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// New builds an empty, ready-to-register Registry.
func New(opts ...Option) *Registry {
	cache, err := lru.New(typeMetaCacheSize)
	if err != nil {
		// lru.New only errors on a non-positive size, which
		// typeMetaCacheSize never is.
		panic(err)
	}
	r := &Registry{
		byType:        make(map[reflect.Type]*Entry),
		byUserID:      make(map[uint32]*Entry),
		typeMetaBytes: cache,
		logger:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register binds schema.GoType to userID. Duplicate registration of
// either the Go type or the user id is a RegistryMisuse error.
func (r *Registry) Register(schema *codegen.StructSchema, userID uint32) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byType[schema.GoType]; ok {
		return ferr.DuplicateRegistration(schema.GoType.String())
	}
	if _, ok := r.byUserID[userID]; ok {
		return ferr.DuplicateRegistration("user id already registered")
	}

	entry := &Entry{UserID: userID, GoType: schema.GoType, Schema: schema}
	r.byType[schema.GoType] = entry
	r.byUserID[userID] = entry

	r.logger.Debug("registered type",
		zap.String("go_type", schema.GoType.String()),
		zap.Uint32("user_id", userID),
		zap.Uint32("layer_id", schema.LayerID))
	return nil
}

// ByGoType resolves a registry entry by its Go-level type identity.
func (r *Registry) ByGoType(t reflect.Type) (*Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.byType[t]
	return e, ok
}

// ByUserID resolves a registry entry by its registered wire id.
func (r *Registry) ByUserID(id uint32) (*Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.byUserID[id]
	return e, ok
}

// TypeMetaBytes returns the interned TypeMeta encoding for t, computing
// and caching it on first use (spec.md §5's "cached buffer is
// process-wide per type identity", bounded here to this registry
// instance's LRU rather than a true process-global to keep the
// registry's "owner-controlled lifetime" invariant from spec.md §3).
func (r *Registry) TypeMetaBytes(t reflect.Type) ([]byte, error) {
	if cached, ok := r.typeMetaBytes.Get(t); ok {
		return cached.([]byte), nil
	}
	entry, ok := r.ByGoType(t)
	if !ok {
		return nil, ferr.Unregistered(t.String())
	}
	bytes := entry.Schema.ToTypeMeta().ToBytes()
	r.typeMetaBytes.Add(t, bytes)
	return bytes, nil
}

// Logger exposes the configured logger for collaborating packages
// (reconciliation logs fallback/defaulting decisions at Debug).
func (r *Registry) Logger() *zap.Logger { return r.logger }
