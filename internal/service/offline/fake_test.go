package offline

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/learnsync/internal/catalog"
	"github.com/heartmarshall/learnsync/internal/domain"
)

// memStore is an in-memory stand-in for the change log, the version store,
// the task queue and the live entity tables. RunInTx restores the previous
// state when fn fails, so rollbacks behave like the database.
type memStore struct {
	changes  []*domain.OfflineChange
	versions []*domain.ContentVersion
	entities map[domain.EntityType]map[int64]catalog.Values
	lastID   map[domain.EntityType]int64
	tasks    []domain.TaskKind
}

func newMemStore() *memStore {
	return &memStore{
		entities: make(map[domain.EntityType]map[int64]catalog.Values),
		lastID:   make(map[domain.EntityType]int64),
	}
}

func (m *memStore) addChange(userID uuid.UUID, t domain.EntityType, id int64, ct domain.ChangeType, data string) *domain.OfflineChange {
	c := &domain.OfflineChange{
		ID:         uuid.New(),
		UserID:     userID,
		EntityType: t,
		EntityID:   id,
		ChangeType: ct,
		Data:       json.RawMessage(data),
		CreatedAt:  time.Now(),
		Seq:        int64(len(m.changes) + 1),
	}
	m.changes = append(m.changes, c)
	return c
}

func (m *memStore) change(id uuid.UUID) *domain.OfflineChange {
	for _, c := range m.changes {
		if c.ID == id {
			return c
		}
	}
	return nil
}

func (m *memStore) versionsOf(ref domain.EntityRef) []*domain.ContentVersion {
	var out []*domain.ContentVersion
	for _, v := range m.versions {
		if v.Ref() == ref {
			out = append(out, v)
		}
	}
	return out
}

// ---------------------------------------------------------------------------
// txManager
// ---------------------------------------------------------------------------

type memState struct {
	changes  []domain.OfflineChange
	versions []*domain.ContentVersion
	entities map[domain.EntityType]map[int64]catalog.Values
	lastID   map[domain.EntityType]int64
	tasks    []domain.TaskKind
}

func (m *memStore) save() memState {
	s := memState{
		versions: append([]*domain.ContentVersion(nil), m.versions...),
		entities: make(map[domain.EntityType]map[int64]catalog.Values, len(m.entities)),
		lastID:   maps.Clone(m.lastID),
		tasks:    append([]domain.TaskKind(nil), m.tasks...),
	}
	for _, c := range m.changes {
		s.changes = append(s.changes, *c)
	}
	for t, rows := range m.entities {
		cp := make(map[int64]catalog.Values, len(rows))
		for id, v := range rows {
			cp[id] = maps.Clone(v)
		}
		s.entities[t] = cp
	}
	return s
}

func (m *memStore) restore(s memState) {
	for i := range s.changes {
		*m.changes[i] = s.changes[i]
	}
	m.changes = m.changes[:len(s.changes)]
	m.versions = s.versions
	m.entities = s.entities
	m.lastID = s.lastID
	m.tasks = s.tasks
}

func (m *memStore) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	saved := m.save()
	if err := fn(ctx); err != nil {
		m.restore(saved)
		return err
	}
	return nil
}

// ---------------------------------------------------------------------------
// changeRepo
// ---------------------------------------------------------------------------

func (m *memStore) CreateBatch(_ context.Context, changes []*domain.OfflineChange) ([]*domain.OfflineChange, error) {
	m.changes = append(m.changes, changes...)
	return changes, nil
}

func (m *memStore) ListByUser(_ context.Context, userID uuid.UUID, pendingOnly bool, limit, offset int) ([]*domain.OfflineChange, error) {
	var out []*domain.OfflineChange
	for _, c := range m.changes {
		if c.UserID == userID && (!pendingOnly || c.IsPending()) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *memStore) Resolve(_ context.Context, userID, id uuid.UUID) (*domain.OfflineChange, error) {
	c := m.change(id)
	if c == nil || c.UserID != userID || c.Synced {
		return nil, domain.ErrNotFound
	}
	c.ConflictResolved = true
	cp := *c
	return &cp, nil
}

func (m *memStore) ListPending(_ context.Context, userID uuid.UUID, after *domain.ChangeCursor, limit int) ([]*domain.OfflineChange, error) {
	var out []*domain.OfflineChange
	for _, c := range m.changes {
		if after != nil && !cursorAfter(c.Cursor(), *after) {
			continue
		}
		if c.UserID == userID && c.IsPending() {
			cp := *c
			out = append(out, &cp)
		}
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func cursorAfter(c, after domain.ChangeCursor) bool {
	if c.CreatedAt.Equal(after.CreatedAt) {
		return c.Seq > after.Seq
	}
	return c.CreatedAt.After(after.CreatedAt)
}

func (m *memStore) LockForApply(_ context.Context, id uuid.UUID) (*domain.OfflineChange, error) {
	c := m.change(id)
	if c == nil {
		return nil, fmt.Errorf("offline_change %s: %w", id, domain.ErrNotFound)
	}
	cp := *c
	return &cp, nil
}

func (m *memStore) MarkSynced(_ context.Context, id uuid.UUID, entityID int64) error {
	c := m.change(id)
	if c == nil || c.Synced {
		return domain.ErrConflict
	}
	now := time.Now()
	c.Synced = true
	c.EntityID = entityID
	c.ErrorMessage = nil
	c.SyncedAt = &now
	return nil
}

func (m *memStore) RecordError(_ context.Context, id uuid.UUID, message string) error {
	c := m.change(id)
	if c == nil {
		return domain.ErrNotFound
	}
	c.ErrorMessage = &message
	c.Attempts++
	return nil
}

// ---------------------------------------------------------------------------
// versionRepo
// ---------------------------------------------------------------------------

func (m *memStore) NextVersion(_ context.Context, ref domain.EntityRef) (int, error) {
	return len(m.versionsOf(ref)) + 1, nil
}

func (m *memStore) Create(_ context.Context, v *domain.ContentVersion) (*domain.ContentVersion, error) {
	for _, existing := range m.versions {
		if existing.Ref() == v.Ref() && existing.Version == v.Version {
			return nil, fmt.Errorf("content_version %s: %w", v.Ref(), domain.ErrAlreadyExists)
		}
	}
	v.ID = uuid.New()
	v.CreatedAt = time.Now()
	m.versions = append(m.versions, v)
	return v, nil
}

// ---------------------------------------------------------------------------
// taskQueue
// ---------------------------------------------------------------------------

func (m *memStore) Enqueue(_ context.Context, kind domain.TaskKind, userID uuid.UUID) (*domain.Task, error) {
	m.tasks = append(m.tasks, kind)
	return &domain.Task{ID: uuid.New(), Kind: kind, UserID: userID, Status: domain.TaskStatusPending}, nil
}

// ---------------------------------------------------------------------------
// catalog.Applier
// ---------------------------------------------------------------------------

// memApplier stores one entity kind inside a memStore.
type memApplier struct {
	store *memStore
	kind  domain.EntityType
}

func (a memApplier) rows() map[int64]catalog.Values {
	rows := a.store.entities[a.kind]
	if rows == nil {
		rows = make(map[int64]catalog.Values)
		a.store.entities[a.kind] = rows
	}
	return rows
}

func (a memApplier) snapshot(id int64) json.RawMessage {
	out := map[string]any{"id": id}
	maps.Copy(out, a.rows()[id])
	b, _ := json.Marshal(out)
	return b
}

func (a memApplier) ApplyCreate(_ context.Context, id int64, values catalog.Values) (int64, json.RawMessage, error) {
	rows := a.rows()
	if id == 0 {
		id = a.store.lastID[a.kind] + 1
	}
	if _, ok := rows[id]; ok {
		return 0, nil, fmt.Errorf("%s %d: %w", a.kind, id, domain.ErrAlreadyExists)
	}
	if id > a.store.lastID[a.kind] {
		a.store.lastID[a.kind] = id
	}
	rows[id] = maps.Clone(values)
	return id, a.snapshot(id), nil
}

func (a memApplier) ApplyUpdate(_ context.Context, id int64, values catalog.Values) (json.RawMessage, error) {
	row, ok := a.rows()[id]
	if !ok {
		return nil, fmt.Errorf("%s %d: %w", a.kind, id, domain.ErrNotFound)
	}
	maps.Copy(row, values)
	return a.snapshot(id), nil
}

func (a memApplier) ApplyDelete(_ context.Context, id int64) (json.RawMessage, error) {
	if _, ok := a.rows()[id]; !ok {
		return nil, fmt.Errorf("%s %d: %w", a.kind, id, domain.ErrNotFound)
	}
	snap := a.snapshot(id)
	delete(a.rows(), id)
	return snap, nil
}

func (a memApplier) Snapshot(_ context.Context, id int64) (json.RawMessage, error) {
	if _, ok := a.rows()[id]; !ok {
		return nil, fmt.Errorf("%s %d: %w", a.kind, id, domain.ErrNotFound)
	}
	return a.snapshot(id), nil
}
