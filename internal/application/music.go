package application

import (
	"context"

	"music-assistant/internal/domain"
)

// MusicService executes playback-control operations against the streaming
// backend. Negative cases (no match, no playback device, provider
// restrictions) are business outcomes, returned as a non-nil Outcome with a
// nil error; a non-nil error means the backend itself failed.
type MusicService interface {
	PlayByTitle(ctx context.Context, slot domain.TitleSlot) (*domain.Outcome, error)
	PlayByLyric(ctx context.Context, slot domain.LyricSlot) (*domain.Outcome, error)
	Pause(ctx context.Context) (*domain.Outcome, error)
	SkipNext(ctx context.Context) (*domain.Outcome, error)
}
