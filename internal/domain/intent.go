package domain

import "strings"

// Intent is the discrete action category classified from an utterance.
type Intent string

const (
	IntentPlay      Intent = "play"
	IntentPause     Intent = "pause"
	IntentSkip      Intent = "skip"
	IntentTitleMode Intent = "title mode"
	IntentLyricMode Intent = "lyric mode"
	IntentUnknown   Intent = "unknown"
)

// TextCommandPrefix is the marker used to indicate text commands (vs audio)
const TextCommandPrefix = "__TEXT__:"

// ParseIntent maps a raw classifier label onto the closed intent set. The
// classifier vocabulary is open-ended; any label outside the set becomes
// IntentUnknown so new vocabulary can never fall through the dispatch table.
func ParseIntent(label string) Intent {
	switch Intent(strings.ToLower(strings.TrimSpace(label))) {
	case IntentPlay:
		return IntentPlay
	case IntentPause:
		return IntentPause
	case IntentSkip:
		return IntentSkip
	case IntentTitleMode:
		return IntentTitleMode
	case IntentLyricMode:
		return IntentLyricMode
	default:
		return IntentUnknown
	}
}
