package syncqueue

import (
	"github.com/google/uuid"

	"github.com/heartmarshall/learnsync/internal/domain"
)

// StatusInput filters the queue listing. An empty Status lists every row.
type StatusInput struct {
	Status string
	Limit  int
	Offset int
}

// Validate checks the filter and paging bounds.
func (i StatusInput) Validate() error {
	var errs []domain.FieldError

	if i.Status != "" && !domain.SyncStatus(i.Status).IsValid() {
		errs = append(errs, domain.FieldError{Field: "status", Message: "must be one of pending, in_progress, completed, failed"})
	}
	if i.Limit < 0 || i.Limit > 500 {
		errs = append(errs, domain.FieldError{Field: "limit", Message: "must be between 0 and 500"})
	}
	if i.Offset < 0 {
		errs = append(errs, domain.FieldError{Field: "offset", Message: "must be >= 0"})
	}

	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

// StatusResult is a page of queue rows plus per-status totals.
type StatusResult struct {
	Counts  map[domain.SyncStatus]int `json:"counts"`
	Entries []*domain.SyncQueueEntry  `json:"entries"`
}

// AckItem reports the outcome of one delivery.
type AckItem struct {
	ID     uuid.UUID `json:"id"     validate:"required"`
	Status string    `json:"status" validate:"required,oneof=completed failed"`
	Error  *string   `json:"error"  validate:"omitempty,max=1000"`
}

// AckInput acknowledges pulled deliveries.
type AckInput struct {
	Items []AckItem `json:"items" validate:"required,min=1,max=500,dive"`
}

// AckResult counts acknowledged rows.
type AckResult struct {
	Acked int `json:"acked"`
}
