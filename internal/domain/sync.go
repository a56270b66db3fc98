package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// SyncQueueEntry tracks delivery of one content version to one user.
type SyncQueueEntry struct {
	ID               uuid.UUID
	UserID           uuid.UUID
	ContentVersionID uuid.UUID
	Status           SyncStatus
	ErrorMessage     *string
	CreatedAt        time.Time
	UpdatedAt        time.Time

	// Version is populated by queries that join the referenced snapshot.
	Version *ContentVersion
}

// OfflineChange is a mutation recorded by a client while offline.
// Rows are never deleted; Synced flips to true exactly once.
type OfflineChange struct {
	ID               uuid.UUID
	UserID           uuid.UUID
	EntityType       EntityType
	EntityID         int64
	ChangeType       ChangeType
	Data             json.RawMessage
	CreatedAt        time.Time
	Seq              int64
	Synced           bool
	ConflictResolved bool
	ErrorMessage     *string
	Attempts         int
	SyncedAt         *time.Time
}

// Ref returns the entity the change targets. EntityID is zero for a create
// until the processor assigns one.
func (c *OfflineChange) Ref() EntityRef {
	return EntityRef{Type: c.EntityType, ID: c.EntityID}
}

// IsPending reports whether the processor should still try to apply the change.
func (c *OfflineChange) IsPending() bool {
	return !c.Synced && !c.ConflictResolved
}

// ChangeCursor is a position in a user's change log. The log is ordered by
// (CreatedAt, Seq); Seq breaks ties within one submitted batch.
type ChangeCursor struct {
	CreatedAt time.Time
	Seq       int64
}

// Cursor returns the log position of c.
func (c *OfflineChange) Cursor() ChangeCursor {
	return ChangeCursor{CreatedAt: c.CreatedAt, Seq: c.Seq}
}

// ProcessResult summarises one processor run.
type ProcessResult struct {
	Applied int `json:"applied"`
	Failed  int `json:"failed"`
	Skipped int `json:"skipped"`
}

// Total returns the number of changes looked at.
func (r ProcessResult) Total() int { return r.Applied + r.Failed + r.Skipped }

// QueueBuildResult counts the sync queue rows a build touched. Reset rows
// were failed deliveries put back to pending.
type QueueBuildResult struct {
	Created int `json:"created"`
	Reset   int `json:"reset"`
}
