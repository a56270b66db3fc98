package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// EntityRef addresses one live entity of a syncable kind.
type EntityRef struct {
	Type EntityType
	ID   int64
}

// Key returns "<type>:<id>", the key used in latest-version maps.
func (r EntityRef) Key() string {
	return string(r.Type) + ":" + strconv.FormatInt(r.ID, 10)
}

// CacheKey returns the key of the entity's cached projection.
func (r EntityRef) CacheKey() string {
	return "entity:" + r.Key()
}

func (r EntityRef) String() string { return r.Key() }

// ParseEntityRef parses the "<type>:<id>" form produced by Key.
func ParseEntityRef(s string) (EntityRef, error) {
	typ, id, ok := strings.Cut(s, ":")
	if !ok {
		return EntityRef{}, fmt.Errorf("entity ref %q: missing separator", s)
	}
	t, ok := ParseEntityType(typ)
	if !ok {
		return EntityRef{}, fmt.Errorf("entity ref %q: unknown type", s)
	}
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil || n <= 0 {
		return EntityRef{}, fmt.Errorf("entity ref %q: invalid id", s)
	}
	return EntityRef{Type: t, ID: n}, nil
}

// ContentVersion is an immutable snapshot of an entity at a point in time.
// Version numbers start at 1 and grow by one per applied change.
// A deleted version carries the last known state of a removed entity.
type ContentVersion struct {
	ID         uuid.UUID       `json:"id"`
	EntityType EntityType      `json:"entity_type"`
	EntityID   int64           `json:"entity_id"`
	Version    int             `json:"version"`
	Deleted    bool            `json:"deleted"`
	Data       json.RawMessage `json:"data"`
	CreatedAt  time.Time       `json:"created_at"`
}

// Ref returns the entity the version belongs to.
func (v *ContentVersion) Ref() EntityRef {
	return EntityRef{Type: v.EntityType, ID: v.EntityID}
}

// LatestVersions maps EntityRef.Key() to the highest version number.
type LatestVersions map[string]int

// Observe records version for ref if it is higher than what is already known.
func (m LatestVersions) Observe(ref EntityRef, version int) {
	if cur, ok := m[ref.Key()]; !ok || version > cur {
		m[ref.Key()] = version
	}
}

// LatestVersionsCacheKey returns the key of a user's cached latest-versions map.
func LatestVersionsCacheKey(userID uuid.UUID) string {
	return "latest_versions:" + userID.String()
}
