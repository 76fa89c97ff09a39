package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"music-assistant/internal/domain"
)

const defaultRemoteTimeout = 30 * time.Second

// Dispatcher routes one classified, slot-filled utterance to its remote
// action. It is a pure request/response router: the only state it touches is
// the session ModeState, and only the two mode-change intents mutate it.
type Dispatcher struct {
	classifier IntentClassifier
	music      MusicService
	mode       *ModeState
	timeout    time.Duration
	logger     *slog.Logger
}

func NewDispatcher(
	classifier IntentClassifier,
	music MusicService,
	mode *ModeState,
	timeout time.Duration,
	logger *slog.Logger,
) *Dispatcher {
	if timeout <= 0 {
		timeout = defaultRemoteTimeout
	}
	return &Dispatcher{
		classifier: classifier,
		music:      music,
		mode:       mode,
		timeout:    timeout,
		logger:     logger,
	}
}

// Mode returns the current session mode.
func (d *Dispatcher) Mode() domain.Mode {
	return d.mode.Get()
}

// Dispatch processes one utterance to completion: classify, read the session
// mode, extract whatever slots the intent needs, and invoke at most one music
// service operation. Business outcomes come back as an Outcome with a nil
// error; classifier or music service failures come back as an error, with the
// session mode left exactly as it was. The remote calls for the turn share
// one bounded timeout; expiry surfaces as context.DeadlineExceeded on the
// returned error chain.
func (d *Dispatcher) Dispatch(ctx context.Context, utterance string) (*domain.Outcome, error) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	intent, err := d.classifier.Classify(ctx, utterance)
	if err != nil {
		return nil, fmt.Errorf("classifying intent: %w", err)
	}

	mode := d.mode.Get()
	d.logger.Info("dispatching utterance", "intent", intent, "mode", mode)

	switch intent {
	case domain.IntentPlay:
		return d.play(ctx, utterance, mode)

	case domain.IntentPause:
		outcome, err := d.music.Pause(ctx)
		if err != nil {
			return nil, fmt.Errorf("pausing playback: %w", err)
		}
		return outcome, nil

	case domain.IntentSkip:
		outcome, err := d.music.SkipNext(ctx)
		if err != nil {
			return nil, fmt.Errorf("skipping to next track: %w", err)
		}
		return outcome, nil

	case domain.IntentTitleMode:
		d.mode.Set(domain.ModeTitle)
		return &domain.Outcome{Kind: domain.OutcomeModeChanged, Message: "Mode changed to title."}, nil

	case domain.IntentLyricMode:
		d.mode.Set(domain.ModeLyric)
		return &domain.Outcome{Kind: domain.OutcomeModeChanged, Message: "Mode changed to lyric."}, nil

	default:
		// No remote call for unrecognized intents.
		return &domain.Outcome{
			Kind:    domain.OutcomeNotUnderstood,
			Message: "Sorry, I didn't understand that command.",
		}, nil
	}
}

func (d *Dispatcher) play(ctx context.Context, utterance string, mode domain.Mode) (*domain.Outcome, error) {
	if mode == domain.ModeLyric {
		slot := ExtractLyric(utterance)
		d.logger.Info("extracted lyric fragment", "fragment", slot.Fragment)

		outcome, err := d.music.PlayByLyric(ctx, slot)
		if err != nil {
			return nil, fmt.Errorf("playing by lyric: %w", err)
		}
		return outcome, nil
	}

	slot := ExtractTitleAndArtist(utterance)
	d.logger.Info("extracted title and artist", "title", slot.Title, "artist", slot.Artist)

	outcome, err := d.music.PlayByTitle(ctx, slot)
	if err != nil {
		return nil, fmt.Errorf("playing by title: %w", err)
	}
	return outcome, nil
}
