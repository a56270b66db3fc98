// Package catalog describes the syncable entity kinds and the capabilities
// the change processor uses to mutate them.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/heartmarshall/learnsync/internal/domain"
)

// Applier mutates the live store of one entity kind. Every method returns
// the entity snapshot to record as the new content version; ApplyDelete
// returns the state the entity had right before removal.
// Implementations run inside the caller's transaction.
type Applier interface {
	ApplyCreate(ctx context.Context, id int64, values Values) (int64, json.RawMessage, error)
	ApplyUpdate(ctx context.Context, id int64, values Values) (json.RawMessage, error)
	ApplyDelete(ctx context.Context, id int64) (json.RawMessage, error)
	Snapshot(ctx context.Context, id int64) (json.RawMessage, error)
}

// Entry pairs a kind's schema with its store.
type Entry struct {
	Kind    Kind
	Applier Applier
}

// Registry resolves entity types to their schema and store. Kinds are
// registered explicitly at wiring time; nothing is looked up by reflection.
type Registry struct {
	validate *validator.Validate
	entries  map[domain.EntityType]Entry
	order    []domain.EntityType
}

// NewRegistry creates an empty registry validating payloads with validate.
func NewRegistry(validate *validator.Validate) *Registry {
	return &Registry{
		validate: validate,
		entries:  make(map[domain.EntityType]Entry),
	}
}

// Register adds a kind. It panics on an invalid or duplicate type, since
// that is a wiring bug.
func (r *Registry) Register(kind Kind, applier Applier) {
	if !kind.Type.IsValid() {
		panic(fmt.Sprintf("catalog: invalid entity type %q", kind.Type))
	}
	if _, dup := r.entries[kind.Type]; dup {
		panic(fmt.Sprintf("catalog: entity type %q registered twice", kind.Type))
	}
	r.entries[kind.Type] = Entry{Kind: kind, Applier: applier}
	r.order = append(r.order, kind.Type)
}

// Lookup returns the entry for t.
func (r *Registry) Lookup(t domain.EntityType) (Entry, bool) {
	e, ok := r.entries[t]
	return e, ok
}

// Types returns the registered types in registration order.
func (r *Registry) Types() []domain.EntityType {
	return append([]domain.EntityType(nil), r.order...)
}

// Decode validates a payload for change type ct against t's schema.
// Delete changes carry no payload and decode to nil.
func (r *Registry) Decode(t domain.EntityType, ct domain.ChangeType, raw json.RawMessage) (Values, error) {
	e, ok := r.entries[t]
	if !ok {
		return nil, domain.NewValidationError("entity_type", fmt.Sprintf("unsupported entity type %q", t))
	}
	switch ct {
	case domain.ChangeTypeCreate:
		return e.Kind.Decode(r.validate, raw, true)
	case domain.ChangeTypeUpdate:
		return e.Kind.Decode(r.validate, raw, false)
	case domain.ChangeTypeDelete:
		return nil, nil
	}
	return nil, domain.NewValidationError("change_type", fmt.Sprintf("unsupported change type %q", ct))
}
