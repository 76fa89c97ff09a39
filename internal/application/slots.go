package application

import (
	"strings"

	"music-assistant/internal/domain"
)

// Slot extraction works on fixed English marker substrings over the lowercased
// utterance. The precision limits of that are accepted; what matters is the
// marker precedence, which is part of the contract.

// lyricMarkers in precedence order. "lyrics" must come before "lyric": the
// shorter marker is a substring of the longer one, so checking it first would
// make the longer branch unreachable.
var lyricMarkers = []string{"lyrics", "lyric", "play"}

// ExtractLyric returns the trimmed text after the first occurrence of the
// highest-precedence marker present, or the whole trimmed utterance when no
// marker matches.
func ExtractLyric(utterance string) domain.LyricSlot {
	lowered := strings.ToLower(utterance)
	for _, marker := range lyricMarkers {
		if _, after, found := strings.Cut(lowered, marker); found {
			return domain.LyricSlot{Fragment: strings.TrimSpace(after)}
		}
	}
	return domain.LyricSlot{Fragment: strings.TrimSpace(lowered)}
}

// ExtractTitleAndArtist splits the utterance on the first "by": everything
// after it is the artist, and the title is whatever follows "play the song"
// (or, failing that, "play") in the part before it. An utterance without "by"
// yields an empty slot, and one without a play marker yields an artist but no
// title; both are valid partial extractions that the search downstream
// resolves, typically to a not-found outcome.
func ExtractTitleAndArtist(utterance string) domain.TitleSlot {
	lowered := strings.ToLower(utterance)

	before, after, found := strings.Cut(lowered, "by")
	if !found {
		return domain.TitleSlot{}
	}

	slot := domain.TitleSlot{Artist: strings.TrimSpace(after)}
	if _, rest, ok := strings.Cut(before, "play the song"); ok {
		slot.Title = strings.TrimSpace(rest)
	} else if _, rest, ok := strings.Cut(before, "play"); ok {
		slot.Title = strings.TrimSpace(rest)
	}

	return slot
}
