package rest

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/heartmarshall/learnsync/internal/domain"
	"github.com/heartmarshall/learnsync/internal/service/versioning"
)

type versionService interface {
	LatestVersions(ctx context.Context) (domain.LatestVersions, error)
	ListVersions(ctx context.Context, limit, offset int) (*versioning.VersionPage, error)
	GetVersion(ctx context.Context, id uuid.UUID) (*domain.ContentVersion, error)
	LatestForEntity(ctx context.Context, ref domain.EntityRef) (*domain.ContentVersion, error)
	EntityHistory(ctx context.Context, ref domain.EntityRef) ([]*domain.ContentVersion, error)
}

// VersionHandler serves read-only version endpoints.
type VersionHandler struct {
	svc versionService
	log *slog.Logger
}

// NewVersionHandler creates a VersionHandler.
func NewVersionHandler(svc versionService, logger *slog.Logger) *VersionHandler {
	return &VersionHandler{svc: svc, log: logger.With("handler", "versions")}
}

// Latest handles GET /api/versions/latest.
func (h *VersionHandler) Latest(w http.ResponseWriter, r *http.Request) {
	latest, err := h.svc.LatestVersions(r.Context())
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	if latest == nil {
		latest = domain.LatestVersions{}
	}
	writeJSON(w, http.StatusOK, latest)
}

// List handles GET /api/versions?limit=&offset=.
func (h *VersionHandler) List(w http.ResponseWriter, r *http.Request) {
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

	page, err := h.svc.ListVersions(r.Context(), limit, offset)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	if page.Items == nil {
		page.Items = []*domain.ContentVersion{}
	}
	writeJSON(w, http.StatusOK, page)
}

// Get handles GET /api/versions/{id}.
func (h *VersionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	v, err := h.svc.GetVersion(r.Context(), id)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// Content handles GET /api/content/{type}/{id}.
func (h *VersionHandler) Content(w http.ResponseWriter, r *http.Request) {
	ref, err := pathRef(r)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	v, err := h.svc.LatestForEntity(r.Context(), ref)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// History handles GET /api/content/{type}/{id}/versions.
func (h *VersionHandler) History(w http.ResponseWriter, r *http.Request) {
	ref, err := pathRef(r)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	versions, err := h.svc.EntityHistory(r.Context(), ref)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, versions)
}
