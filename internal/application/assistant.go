package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"music-assistant/internal/domain"
)

// Assistant runs the session loop: pull an utterance from the audio source,
// transcribe it if needed, dispatch it, and deliver exactly one user-facing
// message per turn.
type Assistant struct {
	audio      AudioSource
	stt        SpeechToText
	dispatcher *Dispatcher
	notifier   Notifier
	logger     *slog.Logger
}

func NewAssistant(
	audio AudioSource,
	stt SpeechToText,
	dispatcher *Dispatcher,
	notifier Notifier,
	logger *slog.Logger,
) *Assistant {
	return &Assistant{
		audio:      audio,
		stt:        stt,
		dispatcher: dispatcher,
		notifier:   notifier,
		logger:     logger,
	}
}

func (a *Assistant) Run(ctx context.Context) error {
	a.logger.Info("starting audio source", "source", a.audio.Name())
	if err := a.audio.Start(ctx); err != nil {
		return fmt.Errorf("starting audio: %w", err)
	}
	defer a.audio.Stop()

	a.logger.Info("assistant ready, listening for commands", "mode", a.dispatcher.Mode())

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			if err := a.processOneTurn(ctx); err != nil {
				a.logger.Error("processing turn", "error", err)
			}
		}
	}
}

func (a *Assistant) processOneTurn(ctx context.Context) error {
	audioData, err := a.audio.NextCommand(ctx)
	if err != nil {
		return fmt.Errorf("getting audio: %w", err)
	}

	if len(audioData) == 0 {
		return nil
	}

	turnID := uuid.NewString()

	var text string

	if directText, isText := isTextCommand(audioData); isText {
		a.logger.Info("received text command directly", "turn_id", turnID, "text", directText)
		text = directText
	} else {
		a.logger.Info("received audio", "turn_id", turnID, "bytes", len(audioData))

		var err error
		text, err = a.stt.Transcribe(ctx, audioData)
		if err != nil {
			return fmt.Errorf("transcribing: %w", err)
		}

		// An empty transcription is still a valid utterance; it dispatches
		// like any other and resolves downstream.
		a.logger.Info("transcribed", "turn_id", turnID, "text", text)
	}

	outcome, err := a.dispatcher.Dispatch(ctx, text)
	if err != nil {
		a.logger.Error("dispatch failed", "turn_id", turnID, "error", err)
		a.notify(ctx, failureMessage(err))
		return fmt.Errorf("dispatching: %w", err)
	}

	a.logger.Info("turn complete",
		"turn_id", turnID,
		"kind", outcome.Kind,
		"message", outcome.Message,
	)

	a.notify(ctx, outcome.Message)
	return nil
}

func (a *Assistant) notify(ctx context.Context, message string) {
	if err := a.notifier.Notify(ctx, message); err != nil {
		a.logger.Error("notifying result", "error", err)
	}
}

// failureMessage converts a collaborator failure into the single user-facing
// string the turn still owes its caller.
func failureMessage(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "The music service took too long to respond. Please try again."
	}
	return "The music service is unavailable right now. Please try again."
}

func isTextCommand(data []byte) (string, bool) {
	if len(data) > len(domain.TextCommandPrefix) && string(data[:len(domain.TextCommandPrefix)]) == domain.TextCommandPrefix {
		return string(data[len(domain.TextCommandPrefix):]), true
	}
	return "", false
}
