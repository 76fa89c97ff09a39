package domain

// Mode selects how a play intent is interpreted for the rest of the session:
// title+artist search or free-text lyric search. It is only ever changed by an
// explicit mode-change intent, never inferred from the utterance.
type Mode string

const (
	ModeTitle Mode = "title"
	ModeLyric Mode = "lyric"
)

// DefaultMode is the mode every session starts in.
const DefaultMode = ModeTitle
