package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPieceHasOverview(t *testing.T) {
	tests := []struct {
		name     string
		overview string
		want     bool
	}{
		{"real text", "A striking still life with flowers.", true},
		{"sentinel", "Not found", false},
		{"sentinel with whitespace", "  Not found  ", false},
		{"empty", "", false},
		{"whitespace only", "   \t", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Piece{Overview: tt.overview}
			assert.Equal(t, tt.want, p.HasOverview())
		})
	}
}

func TestArtistHasBiography(t *testing.T) {
	assert.True(t, Artist{Biography: "Born in Leiden."}.HasBiography())
	assert.False(t, Artist{Biography: NotFoundSentinel}.HasBiography())
	assert.False(t, Artist{}.HasBiography())
}

func TestAudioFileNames(t *testing.T) {
	p := Piece{Title: "Two Girls under an Umbrella"}
	assert.Equal(t, "Two Girls under an Umbrella.mp3", p.AudioFileName())

	a := Artist{Name: "Ernst Ludwig Kirchner"}
	assert.Equal(t, "Ernst Ludwig Kirchner.mp3", a.AudioFileName())
}

func TestAudioString(t *testing.T) {
	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	a := Audio{
		ID:         9,
		CreatedAt:  created,
		EntityType: EntityPiece,
		EntityID:   72324,
		Link:       "https://archive.org/download/1885564100/x.mp3",
	}
	s := a.String()
	assert.Contains(t, s, "id=9")
	assert.Contains(t, s, "entity_type=piece")
	assert.Contains(t, s, "entity_id=72324")
	assert.Contains(t, s, "link=https://archive.org/download/1885564100/x.mp3")
	assert.Contains(t, s, "2024-03-01T12:00:00Z")
}
