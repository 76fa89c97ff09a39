package domain

// TitleSlot carries the (title, artist) pair extracted for a title-mode play.
// Either field may be empty when the utterance under-specifies it; that is a
// low-confidence extraction, not a failure, and the search downstream decides
// what to do with it.
type TitleSlot struct {
	Title  string
	Artist string
}

// LyricSlot carries the lyric fragment extracted for a lyric-mode play.
type LyricSlot struct {
	Fragment string
}
