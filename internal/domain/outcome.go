package domain

// OutcomeKind distinguishes the result of one turn. Negative cases like "not
// found" or "no device" are legitimate business outcomes, not errors; hard
// collaborator failures travel as Go errors instead and never use these kinds.
type OutcomeKind string

const (
	OutcomePlaying         OutcomeKind = "playing"
	OutcomePaused          OutcomeKind = "paused"
	OutcomeSkipped         OutcomeKind = "skipped"
	OutcomeModeChanged     OutcomeKind = "mode_changed"
	OutcomeNotFound        OutcomeKind = "not_found"
	OutcomeNoDevice        OutcomeKind = "no_device"
	OutcomeRestricted      OutcomeKind = "restricted"
	OutcomePremiumRequired OutcomeKind = "premium_required"
	OutcomeNotUnderstood   OutcomeKind = "not_understood"
)

// Outcome describes the result of one dispatched turn. Message is always set
// and user-facing; Track and Artist are filled only for playback successes.
type Outcome struct {
	Kind    OutcomeKind
	Message string
	Track   string
	Artist  string
}
