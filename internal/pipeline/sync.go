// Package pipeline holds the batch workflows: entity-audio sync, audit
// reconciliation and tainted-audio cleanup. Each workflow is a single
// sequential pass over its candidate list; third-party failures are logged
// and skipped so the batch keeps going, store failures abort the run.
package pipeline

import (
	"context"

	"go.uber.org/zap"

	"github.com/open-gallery/narrator-cli/internal/model"
	"github.com/open-gallery/narrator-cli/internal/store"
	"github.com/open-gallery/narrator-cli/pkg/archive"
	"github.com/open-gallery/narrator-cli/pkg/elevenlabs"
)

// Result is the terminal state of one entity's pass through the sync workflow.
type Result string

const (
	// ResultCreated means a new audio row was generated and persisted.
	ResultCreated Result = "created"
	// ResultExists means the entity already had audio; nothing was done.
	ResultExists Result = "exists"
	// ResultNoText means the entity has no narrative text to synthesize.
	ResultNoText Result = "no_text"
	// ResultAborted means synthesis or upload failed; the entity stays
	// eligible for the next run and no audio row was written.
	ResultAborted Result = "aborted"
)

// Summary counts sync outcomes across a batch.
type Summary struct {
	Created int
	Exists  int
	NoText  int
	Aborted int
}

func (s *Summary) add(r Result) {
	switch r {
	case ResultCreated:
		s.Created++
	case ResultExists:
		s.Exists++
	case ResultNoText:
		s.NoText++
	case ResultAborted:
		s.Aborted++
	}
}

// Total is the number of entities the batch visited.
func (s Summary) Total() int {
	return s.Created + s.Exists + s.NoText + s.Aborted
}

// Narrator runs the entity-audio sync workflow: for each candidate entity it
// synthesizes narration, uploads the MP3 and records the link, enforcing at
// most one audio row per entity.
type Narrator struct {
	catalog          store.Catalog
	tts              elevenlabs.Client
	archive          archive.Client
	pieceCollection  string
	artistCollection string
	log              *zap.Logger
}

// NewNarrator wires the sync workflow. The collection identifiers are the
// pre-provisioned archive items audio files are uploaded into, one per
// entity kind.
func NewNarrator(catalog store.Catalog, tts elevenlabs.Client, arc archive.Client, pieceCollection, artistCollection string) *Narrator {
	return &Narrator{
		catalog:          catalog,
		tts:              tts,
		archive:          arc,
		pieceCollection:  pieceCollection,
		artistCollection: artistCollection,
		log:              zap.L(),
	}
}

// SyncPiece generates and records audio for one piece.
func (n *Narrator) SyncPiece(ctx context.Context, piece model.Piece) (Result, error) {
	if !piece.HasOverview() {
		return ResultNoText, nil
	}
	return n.sync(ctx, model.EntityPiece, piece.ID, piece.Overview, piece.AudioFileName(), n.pieceCollection)
}

// SyncArtist generates and records audio for one artist.
func (n *Narrator) SyncArtist(ctx context.Context, artist model.Artist) (Result, error) {
	if !artist.HasBiography() {
		return ResultNoText, nil
	}
	return n.sync(ctx, model.EntityArtist, artist.ID, artist.Biography, artist.AudioFileName(), n.artistCollection)
}

// sync is the per-entity state machine. The idempotency check runs first so
// a second pass over the same dataset never creates a duplicate row, and no
// audio row is ever written unless both synthesis and upload succeeded.
func (n *Narrator) sync(ctx context.Context, entityType model.EntityType, entityID int, text, fileName, collection string) (Result, error) {
	existing, err := n.catalog.GetAudioByEntity(ctx, entityType, entityID)
	if err != nil {
		return "", err
	}
	if existing != nil {
		n.log.Debug("audio already exists",
			zap.String("entity_type", string(entityType)),
			zap.Int("entity_id", entityID),
		)
		return ResultExists, nil
	}

	n.log.Info("generating audio",
		zap.String("entity_type", string(entityType)),
		zap.Int("entity_id", entityID),
		zap.String("file", fileName),
	)

	data, err := n.tts.Synthesize(ctx, text)
	if err != nil {
		n.log.Warn("synthesis failed",
			zap.String("entity_type", string(entityType)),
			zap.Int("entity_id", entityID),
			zap.Error(err),
		)
		return ResultAborted, nil
	}

	link, err := n.archive.UploadFile(ctx, collection, archive.File{Name: fileName, Data: data})
	if err != nil {
		n.log.Warn("upload failed",
			zap.String("entity_type", string(entityType)),
			zap.Int("entity_id", entityID),
			zap.Error(err),
		)
		return ResultAborted, nil
	}

	audio := model.Audio{
		EntityType: entityType,
		EntityID:   entityID,
		Link:       link,
	}
	if err := n.catalog.AddAudio(ctx, &audio); err != nil {
		return "", err
	}

	n.log.Info("audio added",
		zap.String("entity_type", string(entityType)),
		zap.Int("entity_id", entityID),
		zap.String("link", link),
	)
	return ResultCreated, nil
}

// SelectPieces returns the pieces eligible for narration: those with a
// usable overview.
func (n *Narrator) SelectPieces(ctx context.Context) ([]model.Piece, error) {
	pieces, err := n.catalog.ListPieces(ctx)
	if err != nil {
		return nil, err
	}

	var selected []model.Piece
	for _, piece := range pieces {
		if piece.HasOverview() {
			selected = append(selected, piece)
		}
	}
	n.log.Info("pieces selected", zap.Int("count", len(selected)))
	return selected, nil
}

// SelectArtists returns the artists eligible for narration. Candidates are
// derived through the selected pieces, resolving each piece's named artist
// and keeping those with a usable biography. The traversal order through
// pieces is deliberate and reproducible; an artist named by several selected
// pieces appears once per piece and is deduplicated by the idempotency check.
func (n *Narrator) SelectArtists(ctx context.Context) ([]model.Artist, error) {
	pieces, err := n.SelectPieces(ctx)
	if err != nil {
		return nil, err
	}

	var selected []model.Artist
	for _, piece := range pieces {
		artist, err := n.catalog.GetArtistByName(ctx, piece.Artist)
		if err != nil {
			return nil, err
		}
		if artist != nil && artist.HasBiography() {
			selected = append(selected, *artist)
		}
	}
	n.log.Info("artists selected", zap.Int("count", len(selected)))
	return selected, nil
}

// SyncPieces runs the sync workflow over every candidate piece.
func (n *Narrator) SyncPieces(ctx context.Context) (Summary, error) {
	pieces, err := n.SelectPieces(ctx)
	if err != nil {
		return Summary{}, err
	}

	var summary Summary
	for _, piece := range pieces {
		result, err := n.SyncPiece(ctx, piece)
		if err != nil {
			return summary, err
		}
		summary.add(result)
	}
	return summary, nil
}

// SyncArtists runs the sync workflow over every candidate artist.
func (n *Narrator) SyncArtists(ctx context.Context) (Summary, error) {
	artists, err := n.SelectArtists(ctx)
	if err != nil {
		return Summary{}, err
	}

	var summary Summary
	for _, artist := range artists {
		result, err := n.SyncArtist(ctx, artist)
		if err != nil {
			return summary, err
		}
		summary.add(result)
	}
	return summary, nil
}
