// Package reactions implements per-identity like/dislike state for
// comments: the transition rules and the storage backends that hold the
// state for authenticated and anonymous readers.
package reactions

import "inkwell/internal/models"

// State is the reaction state an identity holds for one comment.
type State string

const (
	// StateNone means the identity has not reacted to the comment.
	StateNone State = ""
	// StateLiked means the identity's current reaction is a like.
	StateLiked State = "like"
	// StateDisliked means the identity's current reaction is a dislike.
	StateDisliked State = "dislike"
)

// Outcome classifies a transition for metrics and callers.
type Outcome string

const (
	// OutcomeApplied is a first reaction from the none state.
	OutcomeApplied Outcome = "applied"
	// OutcomeNoop is a repeat of the identity's current reaction.
	OutcomeNoop Outcome = "noop"
	// OutcomeSwitched is a change from like to dislike or back.
	OutcomeSwitched Outcome = "switched"
)

// Transition is the result of applying a reaction request to a state.
type Transition struct {
	New          State
	LikeDelta    int
	DislikeDelta int
	Outcome      Outcome
}

// Apply computes the new state and counter deltas for a reaction request.
// Repeating the current reaction is a no-op; switching decrements the old
// counter and increments the new one. Deltas may be negative; callers clamp
// the stored counters at zero.
func Apply(current State, action models.ReactionKind) Transition {
	switch action {
	case models.ReactionLike:
		switch current {
		case StateLiked:
			return Transition{New: StateLiked, Outcome: OutcomeNoop}
		case StateDisliked:
			return Transition{New: StateLiked, LikeDelta: 1, DislikeDelta: -1, Outcome: OutcomeSwitched}
		default:
			return Transition{New: StateLiked, LikeDelta: 1, Outcome: OutcomeApplied}
		}
	case models.ReactionDislike:
		switch current {
		case StateDisliked:
			return Transition{New: StateDisliked, Outcome: OutcomeNoop}
		case StateLiked:
			return Transition{New: StateDisliked, LikeDelta: -1, DislikeDelta: 1, Outcome: OutcomeSwitched}
		default:
			return Transition{New: StateDisliked, DislikeDelta: 1, Outcome: OutcomeApplied}
		}
	}
	return Transition{New: current, Outcome: OutcomeNoop}
}

// StateFor converts a stored reaction kind into a state.
func StateFor(kind models.ReactionKind) State {
	switch kind {
	case models.ReactionLike:
		return StateLiked
	case models.ReactionDislike:
		return StateDisliked
	}
	return StateNone
}
