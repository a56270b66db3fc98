package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/learnsync/internal/domain"
	"github.com/heartmarshall/learnsync/internal/service/offline"
	"github.com/heartmarshall/learnsync/internal/service/syncqueue"
)

type changeService interface {
	Submit(ctx context.Context, input offline.SubmitInput) (*offline.SubmitResult, error)
	ListChanges(ctx context.Context, input offline.ListChangesInput) ([]*domain.OfflineChange, error)
	Resolve(ctx context.Context, changeID uuid.UUID) (*domain.OfflineChange, error)
}

type queueService interface {
	RequestSync(ctx context.Context) error
	Status(ctx context.Context, input syncqueue.StatusInput) (*syncqueue.StatusResult, error)
	Pull(ctx context.Context, limit int) ([]*domain.SyncQueueEntry, error)
	Ack(ctx context.Context, input syncqueue.AckInput) (*syncqueue.AckResult, error)
}

// SyncHandler serves the offline change and delivery endpoints under /api/sync.
type SyncHandler struct {
	changes  changeService
	queue    queueService
	maxBytes int64
	log      *slog.Logger
}

// NewSyncHandler creates a SyncHandler. Request bodies larger than maxBytes
// are rejected.
func NewSyncHandler(changes changeService, queue queueService, maxBytes int64, logger *slog.Logger) *SyncHandler {
	return &SyncHandler{
		changes:  changes,
		queue:    queue,
		maxBytes: maxBytes,
		log:      logger.With("handler", "sync"),
	}
}

type submitResponse struct {
	Message  string      `json:"message"`
	Accepted int         `json:"accepted"`
	IDs      []uuid.UUID `json:"ids"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type changeResponse struct {
	ID               uuid.UUID         `json:"id"`
	EntityType       domain.EntityType `json:"entity_type"`
	EntityID         int64             `json:"entity_id"`
	ChangeType       domain.ChangeType `json:"change_type"`
	Data             json.RawMessage   `json:"data,omitempty"`
	Synced           bool              `json:"synced"`
	ConflictResolved bool              `json:"conflict_resolved"`
	ErrorMessage     *string           `json:"error_message,omitempty"`
	Attempts         int               `json:"attempts"`
	CreatedAt        time.Time         `json:"created_at"`
	SyncedAt         *time.Time        `json:"synced_at,omitempty"`
}

type queueEntryResponse struct {
	ID               uuid.UUID              `json:"id"`
	ContentVersionID uuid.UUID              `json:"content_version_id"`
	Status           domain.SyncStatus      `json:"status"`
	ErrorMessage     *string                `json:"error_message,omitempty"`
	CreatedAt        time.Time              `json:"created_at"`
	UpdatedAt        time.Time              `json:"updated_at"`
	Version          *domain.ContentVersion `json:"version,omitempty"`
}

type statusResponse struct {
	Counts  map[domain.SyncStatus]int `json:"counts"`
	Entries []queueEntryResponse      `json:"entries"`
}

type pullResponse struct {
	Items []queueEntryResponse `json:"items"`
}

// SubmitChanges handles POST /api/sync/changes. The body is either a bare
// JSON array of changes or {"changes": [...]}.
func (h *SyncHandler) SubmitChanges(w http.ResponseWriter, r *http.Request) {
	var raw json.RawMessage
	if err := decodeJSON(w, r, h.maxBytes, &raw); err != nil {
		handleError(h.log, w, r, err)
		return
	}

	var input offline.SubmitInput
	var err error
	if trimmed := bytes.TrimSpace(raw); len(trimmed) > 0 && trimmed[0] == '[' {
		err = strictUnmarshal(trimmed, &input.Changes)
	} else {
		err = strictUnmarshal(trimmed, &input)
	}
	if err != nil {
		handleError(h.log, w, r, domain.NewValidationError("body", "invalid change list: "+err.Error()))
		return
	}

	result, err := h.changes.Submit(r.Context(), input)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusAccepted, submitResponse{
		Message:  "Changes queued for processing",
		Accepted: result.Accepted,
		IDs:      result.IDs,
	})
}

// ListChanges handles GET /api/sync/changes?pending=true&limit=&offset=.
func (h *SyncHandler) ListChanges(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	offset, err := queryInt(r, "offset")
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	changes, err := h.changes.ListChanges(r.Context(), offline.ListChangesInput{
		PendingOnly: r.URL.Query().Get("pending") == "true",
		Limit:       limit,
		Offset:      offset,
	})
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	out := make([]changeResponse, 0, len(changes))
	for _, c := range changes {
		out = append(out, toChangeResponse(c))
	}
	writeJSON(w, http.StatusOK, out)
}

// ResolveChange handles POST /api/sync/changes/{id}/resolve.
func (h *SyncHandler) ResolveChange(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	change, err := h.changes.Resolve(r.Context(), id)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toChangeResponse(change))
}

// RequestSync handles POST /api/sync/request.
func (h *SyncHandler) RequestSync(w http.ResponseWriter, r *http.Request) {
	if err := h.queue.RequestSync(r.Context()); err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, messageResponse{Message: "Content sync initiated"})
}

// Status handles GET /api/sync/status?status=&limit=&offset=.
func (h *SyncHandler) Status(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	offset, err := queryInt(r, "offset")
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	result, err := h.queue.Status(r.Context(), syncqueue.StatusInput{
		Status: r.URL.Query().Get("status"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, statusResponse{
		Counts:  result.Counts,
		Entries: toQueueEntries(result.Entries),
	})
}

// Pull handles GET /api/sync/pull?limit=.
func (h *SyncHandler) Pull(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	entries, err := h.queue.Pull(r.Context(), limit)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, pullResponse{Items: toQueueEntries(entries)})
}

// Ack handles POST /api/sync/ack.
func (h *SyncHandler) Ack(w http.ResponseWriter, r *http.Request) {
	var input syncqueue.AckInput
	if err := decodeJSON(w, r, h.maxBytes, &input); err != nil {
		handleError(h.log, w, r, err)
		return
	}

	result, err := h.queue.Ack(r.Context(), input)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func strictUnmarshal(data []byte, dst any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func toChangeResponse(c *domain.OfflineChange) changeResponse {
	return changeResponse{
		ID:               c.ID,
		EntityType:       c.EntityType,
		EntityID:         c.EntityID,
		ChangeType:       c.ChangeType,
		Data:             c.Data,
		Synced:           c.Synced,
		ConflictResolved: c.ConflictResolved,
		ErrorMessage:     c.ErrorMessage,
		Attempts:         c.Attempts,
		CreatedAt:        c.CreatedAt,
		SyncedAt:         c.SyncedAt,
	}
}

func toQueueEntries(entries []*domain.SyncQueueEntry) []queueEntryResponse {
	out := make([]queueEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, queueEntryResponse{
			ID:               e.ID,
			ContentVersionID: e.ContentVersionID,
			Status:           e.Status,
			ErrorMessage:     e.ErrorMessage,
			CreatedAt:        e.CreatedAt,
			UpdatedAt:        e.UpdatedAt,
			Version:          e.Version,
		})
	}
	return out
}
