package offline

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/heartmarshall/learnsync/internal/domain"
)

// ChangeInput is one client mutation as submitted over the API.
type ChangeInput struct {
	EntityType string          `json:"entity_type" validate:"required,entity_type"`
	EntityID   int64           `json:"entity_id"   validate:"gte=0,required_unless=ChangeType create"`
	ChangeType string          `json:"change_type" validate:"required,oneof=create update delete"`
	Data       json.RawMessage `json:"data"`
}

// SubmitInput is a batch of offline changes in client order.
type SubmitInput struct {
	Changes []ChangeInput `json:"changes" validate:"required,min=1,dive"`
}

// checkShape reports the constraints tags cannot express: batch size and
// the presence of a JSON object payload for create and update.
func (i SubmitInput) checkShape(maxChanges int) error {
	verr := &domain.ValidationError{}

	if len(i.Changes) > maxChanges {
		verr.Add("changes", fmt.Sprintf("at most %d changes per request", maxChanges))
	}

	for n, c := range i.Changes {
		if domain.ChangeType(c.ChangeType) == domain.ChangeTypeDelete {
			continue
		}
		if !isObject(c.Data) {
			verr.Add(fmt.Sprintf("changes[%d].data", n), "must be a JSON object")
		}
	}

	return verr.OrNil()
}

func (c ChangeInput) toDomain(userID uuid.UUID) *domain.OfflineChange {
	t, _ := domain.ParseEntityType(c.EntityType)
	data := c.Data
	if len(bytes.TrimSpace(data)) == 0 || bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		data = nil
	}
	return &domain.OfflineChange{
		UserID:     userID,
		EntityType: t,
		EntityID:   c.EntityID,
		ChangeType: domain.ChangeType(c.ChangeType),
		Data:       data,
	}
}

func isObject(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '{' && json.Valid(trimmed)
}

// ListChangesInput pages through a user's change log.
type ListChangesInput struct {
	PendingOnly bool
	Limit       int
	Offset      int
}

// Validate checks paging bounds.
func (i ListChangesInput) Validate() error {
	var errs []domain.FieldError
	if i.Limit < 0 || i.Limit > 200 {
		errs = append(errs, domain.FieldError{Field: "limit", Message: "must be between 0 and 200"})
	}
	if i.Offset < 0 {
		errs = append(errs, domain.FieldError{Field: "offset", Message: "must be >= 0"})
	}
	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

// SubmitResult reports the accepted changes.
type SubmitResult struct {
	Accepted int         `json:"accepted"`
	IDs      []uuid.UUID `json:"ids"`
}
