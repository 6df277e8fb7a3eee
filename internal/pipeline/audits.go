package pipeline

import (
	"context"

	"go.uber.org/zap"

	"github.com/open-gallery/narrator-cli/internal/store"
)

// Reconciler copies reviewed audit text into pieces that still have no
// usable overview.
type Reconciler struct {
	catalog store.Catalog
	audits  store.AuditStore
	log     *zap.Logger
}

// NewReconciler wires the audit reconciliation workflow.
func NewReconciler(catalog store.Catalog, audits store.AuditStore) *Reconciler {
	return &Reconciler{catalog: catalog, audits: audits, log: zap.L()}
}

// Reconcile walks every audit in listing order and backfills piece overviews
// from audit content. When several audits reference the same piece, the first
// one processed wins; later ones see the updated overview and no-op. Returns
// the number of pieces updated.
func (r *Reconciler) Reconcile(ctx context.Context) (int, error) {
	audits, err := r.audits.ListAudits(ctx)
	if err != nil {
		return 0, err
	}

	updated := 0
	for _, audit := range audits {
		if !audit.HasContent() {
			continue
		}

		piece, err := r.catalog.GetPieceByID(ctx, audit.ArtID)
		if err != nil {
			return updated, err
		}
		if piece == nil {
			r.log.Warn("audit references missing piece",
				zap.Int("audit_id", audit.AuditID),
				zap.Int("art_id", audit.ArtID),
			)
			continue
		}
		if piece.HasOverview() {
			continue
		}

		piece.Overview = audit.Content
		if err := r.catalog.UpdatePiece(ctx, *piece); err != nil {
			return updated, err
		}
		updated++
		r.log.Info("overview backfilled from audit",
			zap.Int("audit_id", audit.AuditID),
			zap.Int("piece_id", piece.ID),
		)
	}

	r.log.Info("audit reconciliation finished", zap.Int("updated", updated))
	return updated, nil
}
