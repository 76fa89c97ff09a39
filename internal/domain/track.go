package domain

import "strings"

// Track is the slice of a music-service search result the assistant cares
// about.
type Track struct {
	ID      string
	URI     string
	Name    string
	Artists []string
}

// PrimaryArtist returns the first listed artist, or the empty string.
func (t Track) PrimaryArtist() string {
	if len(t.Artists) == 0 {
		return ""
	}
	return t.Artists[0]
}

// Matches reports whether the track name or any artist name contains the
// fragment, case-insensitively. Used to pick the first relevant candidate
// from a ranked lyric search.
func (t Track) Matches(fragment string) bool {
	fragment = strings.ToLower(fragment)
	if strings.Contains(strings.ToLower(t.Name), fragment) {
		return true
	}
	for _, artist := range t.Artists {
		if strings.Contains(strings.ToLower(artist), fragment) {
			return true
		}
	}
	return false
}

// Device is a playback target reported by the music service.
type Device struct {
	ID     string
	Name   string
	Active bool
}
