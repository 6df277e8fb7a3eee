package model

import "fmt"

// Artist is one row from the catalog's artists table. Name is the lookup key;
// pieces reference their artist by name, not id.
type Artist struct {
	ID          int    `json:"id"`
	Name        string `json:"artist_name"`
	Nationality string `json:"nationality"`
	Lifespan    string `json:"lifespan"`
	Biography   string `json:"biography"`
}

// HasBiography reports whether the artist has a usable biography to narrate.
func (a Artist) HasBiography() bool {
	return hasNarrative(a.Biography)
}

// AudioFileName is the name the artist's synthesized narration is uploaded under.
func (a Artist) AudioFileName() string {
	return a.Name + ".mp3"
}

func (a Artist) String() string {
	return fmt.Sprintf("Artist(id=%d, artist_name=%s, nationality=%s, lifespan=%s)", a.ID, a.Name, a.Nationality, a.Lifespan)
}
