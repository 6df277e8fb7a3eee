// Package store provides typed access to the catalog tables (pieces, artists,
// audios) and the separate auditing database.
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/open-gallery/narrator-cli/internal/model"
)

var (
	// ErrNotFound is returned when a requested row or collection is absent.
	ErrNotFound = eris.New("store: not found")
	// ErrNoRowsUpdated is returned when a write matched zero rows.
	ErrNoRowsUpdated = eris.New("store: update affected no rows")
)

// PieceFilter holds optional per-field predicates for piece lookups. Text
// fields match case-insensitively on substrings; ID matches exactly. Nil
// fields are ignored.
type PieceFilter struct {
	ID          *int
	Title       *string
	DisplayDate *string
	Artist      *string
	Location    *string
	Overview    *string
	Description *string
}

// Catalog defines the persistence interface for the catalog database.
// Point lookups return (nil, nil) when the row is absent; list operations
// return ErrNotFound when empty.
type Catalog interface {
	// Pieces
	CountPieces(ctx context.Context) (int, error)
	ListPieces(ctx context.Context) ([]model.Piece, error)
	GetPieceByID(ctx context.Context, id int) (*model.Piece, error)
	GetPieceByTitle(ctx context.Context, title string) (*model.Piece, error)
	SearchPieces(ctx context.Context, term string) (*model.Piece, error)
	FindPiece(ctx context.Context, filter PieceFilter) (*model.Piece, error)
	FindPieces(ctx context.Context, filter PieceFilter) ([]model.Piece, error)
	UpdatePiece(ctx context.Context, piece model.Piece) error

	// Artists
	GetArtistByName(ctx context.Context, name string) (*model.Artist, error)

	// Audios
	AddAudio(ctx context.Context, audio *model.Audio) error
	UpdateAudio(ctx context.Context, audio model.Audio) error
	GetAudioByID(ctx context.Context, id int) (*model.Audio, error)
	GetAudioByEntity(ctx context.Context, entityType model.EntityType, entityID int) (*model.Audio, error)
	ListAudios(ctx context.Context) ([]model.Audio, error)
	DeleteAudio(ctx context.Context, id int) (*model.Audio, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// AuditStore defines read access to the auditing database, which lives in a
// separate hosted instance from the catalog.
type AuditStore interface {
	CountAudits(ctx context.Context) (int, error)
	ListAudits(ctx context.Context) ([]model.Audit, error)
	Close() error
}
