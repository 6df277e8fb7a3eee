package model

import (
	"fmt"
	"strings"
)

// NotFoundSentinel is the literal the upstream catalog writes into narrative
// text fields that have no usable content yet. It is checked here, once, so
// workflows never compare against the raw string themselves.
const NotFoundSentinel = "Not found"

// hasNarrative reports whether a narrative text field carries real content,
// treating whitespace-only values and the sentinel as absent.
func hasNarrative(s string) bool {
	trimmed := strings.TrimSpace(s)
	return trimmed != "" && trimmed != NotFoundSentinel
}

// Piece is one artwork row from the catalog's pieces table.
type Piece struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	DisplayDate string `json:"displaydate"`
	Artist      string `json:"artist"`
	Location    string `json:"location"`
	Overview    string `json:"overview"`
	Description string `json:"description"`
}

// HasOverview reports whether the piece has a usable overview to narrate.
func (p Piece) HasOverview() bool {
	return hasNarrative(p.Overview)
}

// AudioFileName is the name the piece's synthesized narration is uploaded under.
func (p Piece) AudioFileName() string {
	return p.Title + ".mp3"
}

func (p Piece) String() string {
	return fmt.Sprintf("Piece(id=%d, title=%s, displaydate=%s, artist=%s)", p.ID, p.Title, p.DisplayDate, p.Artist)
}
