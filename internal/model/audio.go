package model

import (
	"fmt"
	"time"
)

// EntityType identifies which kind of catalog entity an audio row belongs to.
type EntityType string

const (
	EntityPiece  EntityType = "piece"
	EntityArtist EntityType = "artist"
)

// Audio is one row from the audios table: a narration generated for a single
// piece or artist. ID and CreatedAt are assigned by the store on insert. At
// most one row exists per (EntityType, EntityID) pair; the sync workflow
// enforces that, not the store.
type Audio struct {
	ID         int        `json:"id"`
	CreatedAt  time.Time  `json:"created_at"`
	EntityType EntityType `json:"entity_type"`
	EntityID   int        `json:"entity_id"`
	Link       string     `json:"link"`
}

// String renders the full field dump recorded in the cleanup log when a
// tainted audio row is deleted.
func (a Audio) String() string {
	return fmt.Sprintf("Audio(id=%d, created_at=%s, entity_type=%s, entity_id=%d, link=%s)",
		a.ID, a.CreatedAt.Format(time.RFC3339), a.EntityType, a.EntityID, a.Link)
}
