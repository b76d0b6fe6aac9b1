package reactions

import (
	"testing"

	"inkwell/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestApply_TransitionTable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		current      State
		action       models.ReactionKind
		wantState    State
		wantLike     int
		wantDislike  int
		wantOutcome  Outcome
	}{
		{"none + like", StateNone, models.ReactionLike, StateLiked, 1, 0, OutcomeApplied},
		{"none + dislike", StateNone, models.ReactionDislike, StateDisliked, 0, 1, OutcomeApplied},
		{"liked + like is noop", StateLiked, models.ReactionLike, StateLiked, 0, 0, OutcomeNoop},
		{"liked + dislike switches", StateLiked, models.ReactionDislike, StateDisliked, -1, 1, OutcomeSwitched},
		{"disliked + dislike is noop", StateDisliked, models.ReactionDislike, StateDisliked, 0, 0, OutcomeNoop},
		{"disliked + like switches", StateDisliked, models.ReactionLike, StateLiked, 1, -1, OutcomeSwitched},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Apply(tt.current, tt.action)
			assert.Equal(t, tt.wantState, got.New)
			assert.Equal(t, tt.wantLike, got.LikeDelta)
			assert.Equal(t, tt.wantDislike, got.DislikeDelta)
			assert.Equal(t, tt.wantOutcome, got.Outcome)
		})
	}
}

func TestApply_Idempotent(t *testing.T) {
	t.Parallel()

	// Applying the same action twice must only move counters once.
	first := Apply(StateNone, models.ReactionLike)
	second := Apply(first.New, models.ReactionLike)

	assert.Equal(t, 1, first.LikeDelta)
	assert.Equal(t, 0, second.LikeDelta)
	assert.Equal(t, 0, second.DislikeDelta)
	assert.Equal(t, first.New, second.New)
}

func TestApply_UnknownActionIsNoop(t *testing.T) {
	t.Parallel()

	got := Apply(StateLiked, models.ReactionKind("boost"))
	assert.Equal(t, StateLiked, got.New)
	assert.Equal(t, OutcomeNoop, got.Outcome)
	assert.Zero(t, got.LikeDelta)
	assert.Zero(t, got.DislikeDelta)
}

func TestStateFor(t *testing.T) {
	t.Parallel()

	assert.Equal(t, StateLiked, StateFor(models.ReactionLike))
	assert.Equal(t, StateDisliked, StateFor(models.ReactionDislike))
	assert.Equal(t, StateNone, StateFor(models.ReactionKind("")))
}
