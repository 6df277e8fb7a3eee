package pipeline

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/open-gallery/narrator-cli/internal/model"
	"github.com/open-gallery/narrator-cli/internal/store"
)

// Cleaner removes audio rows for pieces whose overview was invalidated after
// the audio had been generated.
type Cleaner struct {
	catalog store.Catalog
	log     *zap.Logger
}

// NewCleaner wires the tainted-audio cleanup workflow.
func NewCleaner(catalog store.Catalog) *Cleaner {
	return &Cleaner{catalog: catalog, log: zap.L()}
}

// RemoveTaintedAudio deletes the audio row of every piece with no usable
// overview and appends a full field dump of each deleted row to logw.
// Per-entity failures are logged and skipped; cleanup is best-effort.
// Returns the number of rows deleted.
func (c *Cleaner) RemoveTaintedAudio(ctx context.Context, logw io.Writer) (int, error) {
	pieces, err := c.catalog.ListPieces(ctx)
	if err != nil {
		return 0, err
	}

	deleted := 0
	for _, piece := range pieces {
		if piece.HasOverview() {
			continue
		}

		audio, err := c.catalog.GetAudioByEntity(ctx, model.EntityPiece, piece.ID)
		if err != nil {
			c.log.Warn("audio lookup failed during cleanup",
				zap.Int("piece_id", piece.ID),
				zap.Error(err),
			)
			continue
		}
		if audio == nil {
			continue
		}

		removed, err := c.catalog.DeleteAudio(ctx, audio.ID)
		if err != nil {
			c.log.Warn("audio delete failed during cleanup",
				zap.Int("piece_id", piece.ID),
				zap.Int("audio_id", audio.ID),
				zap.Error(err),
			)
			continue
		}

		if _, err := fmt.Fprintln(logw, removed.String()); err != nil {
			return deleted, err
		}
		deleted++
		c.log.Info("tainted audio deleted",
			zap.Int("piece_id", piece.ID),
			zap.Int("audio_id", removed.ID),
		)
	}

	c.log.Info("cleanup finished", zap.Int("deleted", deleted))
	return deleted, nil
}
