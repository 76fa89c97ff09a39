package application

import (
	"context"

	"music-assistant/internal/domain"
)

// IntentClassifier maps an utterance onto the closed intent set. Unrecognized
// text must come back as domain.IntentUnknown, not as an error; errors are
// reserved for the classifier backend being unreachable.
type IntentClassifier interface {
	Classify(ctx context.Context, utterance string) (domain.Intent, error)
}
