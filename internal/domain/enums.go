package domain

import "strings"

// EntityType identifies a syncable kind of content.
type EntityType string

const (
	EntityTypeCourse      EntityType = "course"
	EntityTypeLesson      EntityType = "lesson"
	EntityTypeBadge       EntityType = "badge"
	EntityTypeAchievement EntityType = "achievement"
)

func (e EntityType) String() string { return string(e) }

func (e EntityType) IsValid() bool {
	switch e {
	case EntityTypeCourse, EntityTypeLesson, EntityTypeBadge, EntityTypeAchievement:
		return true
	}
	return false
}

// ParseEntityType accepts any letter case ("Lesson", "LESSON", "lesson").
func ParseEntityType(s string) (EntityType, bool) {
	t := EntityType(strings.ToLower(strings.TrimSpace(s)))
	return t, t.IsValid()
}

// ChangeType is the kind of mutation carried by an offline change.
type ChangeType string

const (
	ChangeTypeCreate ChangeType = "create"
	ChangeTypeUpdate ChangeType = "update"
	ChangeTypeDelete ChangeType = "delete"
)

func (c ChangeType) String() string { return string(c) }

func (c ChangeType) IsValid() bool {
	switch c {
	case ChangeTypeCreate, ChangeTypeUpdate, ChangeTypeDelete:
		return true
	}
	return false
}

// SyncStatus is the delivery state of a sync queue entry.
type SyncStatus string

const (
	SyncStatusPending    SyncStatus = "pending"
	SyncStatusInProgress SyncStatus = "in_progress"
	SyncStatusCompleted  SyncStatus = "completed"
	SyncStatusFailed     SyncStatus = "failed"
)

func (s SyncStatus) String() string { return string(s) }

func (s SyncStatus) IsValid() bool {
	switch s {
	case SyncStatusPending, SyncStatusInProgress, SyncStatusCompleted, SyncStatusFailed:
		return true
	}
	return false
}

// IsFinal reports whether a client acknowledgement may set this status.
func (s SyncStatus) IsFinal() bool {
	return s == SyncStatusCompleted || s == SyncStatusFailed
}

// TaskKind names a background job handled by the worker pool.
type TaskKind string

const (
	TaskKindProcessChanges TaskKind = "offline.process"
	TaskKindBuildQueue     TaskKind = "sync.build"
)

func (k TaskKind) String() string { return string(k) }

func (k TaskKind) IsValid() bool {
	switch k {
	case TaskKindProcessChanges, TaskKindBuildQueue:
		return true
	}
	return false
}

// TaskStatus is the lifecycle state of a background task.
type TaskStatus string

const (
	TaskStatusPending TaskStatus = "pending"
	TaskStatusRunning TaskStatus = "running"
	TaskStatusDone    TaskStatus = "done"
	TaskStatusDead    TaskStatus = "dead"
)

func (s TaskStatus) String() string { return string(s) }

func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusPending, TaskStatusRunning, TaskStatusDone, TaskStatusDead:
		return true
	}
	return false
}
