package domain

import (
	"time"

	"github.com/google/uuid"
)

// Task is a durable unit of background work. Delivery is at-least-once:
// a task whose lease expires while running is handed out again.
type Task struct {
	ID          uuid.UUID
	Kind        TaskKind
	UserID      uuid.UUID
	Status      TaskStatus
	Attempts    int
	LastError   *string
	RunAfter    time.Time
	LeasedUntil *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
