package application

import "context"

// AudioSource delivers one utterance per NextCommand call: either raw audio to
// be transcribed, or a ready-made text command marked with
// domain.TextCommandPrefix.
type AudioSource interface {
	Start(ctx context.Context) error
	Stop() error
	NextCommand(ctx context.Context) ([]byte, error)
	Name() string
}
