package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/open-gallery/narrator-cli/internal/model"
)

func TestReconcile_BackfillsMissingOverview(t *testing.T) {
	catalog := newFakeCatalog()
	catalog.pieces = []model.Piece{
		{ID: 10, Title: "Still Life", Overview: model.NotFoundSentinel},
		{ID: 11, Title: "Landscape", Overview: "Already written."},
	}
	audits := &fakeAuditStore{audits: []model.Audit{
		{AuditID: 1, ArtID: 10, Content: "A striking still life."},
		{AuditID: 2, ArtID: 11, Content: "Should not be used."},
		{AuditID: 3, ArtID: 10, Content: "Second opinion, too late."},
	}}

	updated, err := NewReconciler(catalog, audits).Reconcile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, updated)

	piece, err := catalog.GetPieceByID(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, "A striking still life.", piece.Overview, "first audit in listing order wins")

	untouched, err := catalog.GetPieceByID(context.Background(), 11)
	require.NoError(t, err)
	assert.Equal(t, "Already written.", untouched.Overview)
}

func TestReconcile_SkipsEmptyContentAndMissingPieces(t *testing.T) {
	catalog := newFakeCatalog()
	catalog.pieces = []model.Piece{
		{ID: 10, Title: "Still Life", Overview: model.NotFoundSentinel},
	}
	audits := &fakeAuditStore{audits: []model.Audit{
		{AuditID: 1, ArtID: 10, Content: ""},
		{AuditID: 2, ArtID: 404, Content: "Piece does not exist."},
	}}

	updated, err := NewReconciler(catalog, audits).Reconcile(context.Background())
	require.NoError(t, err)
	assert.Zero(t, updated)
	assert.Empty(t, catalog.updates)
}

func TestReconcile_EmptyAuditTable(t *testing.T) {
	catalog := newFakeCatalog()
	audits := &fakeAuditStore{}

	_, err := NewReconciler(catalog, audits).Reconcile(context.Background())
	require.Error(t, err)
}
