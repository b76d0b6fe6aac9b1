package service

import (
	"context"
	"testing"

	"inkwell/internal/models"
	"inkwell/internal/reactions"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryStore is an in-memory reactions.Store keyed by identity.
type memoryStore struct {
	states map[reactions.Identity]map[uint]reactions.State
}

func newMemoryStore() *memoryStore {
	return &memoryStore{states: map[reactions.Identity]map[uint]reactions.State{}}
}

func (m *memoryStore) Get(_ context.Context, id reactions.Identity, commentID uint) (reactions.State, error) {
	return m.states[id][commentID], nil
}

func (m *memoryStore) Set(_ context.Context, id reactions.Identity, commentID uint, state reactions.State) error {
	if m.states[id] == nil {
		m.states[id] = map[uint]reactions.State{}
	}
	if state == reactions.StateNone {
		delete(m.states[id], commentID)
		return nil
	}
	m.states[id][commentID] = state
	return nil
}

func (m *memoryStore) GetAll(_ context.Context, id reactions.Identity, commentIDs []uint) (map[uint]reactions.State, error) {
	out := map[uint]reactions.State{}
	for _, cid := range commentIDs {
		if s, ok := m.states[id][cid]; ok {
			out[cid] = s
		}
	}
	return out, nil
}

// reactionRepoStub backs authenticated reactions with a memoryStore and
// records counter updates.
type reactionRepoStub struct {
	*memoryStore
	likes    map[uint]int
	dislikes map[uint]int
}

func newReactionRepoStub() *reactionRepoStub {
	return &reactionRepoStub{
		memoryStore: newMemoryStore(),
		likes:       map[uint]int{},
		dislikes:    map[uint]int{},
	}
}

func (s *reactionRepoStub) ApplyTransition(ctx context.Context, userID, commentID uint, t reactions.Transition) error {
	if t.Outcome == reactions.OutcomeNoop {
		return nil
	}
	if err := s.Set(ctx, reactions.Identity{UserID: userID}, commentID, t.New); err != nil {
		return err
	}
	return s.UpdateCounters(ctx, commentID, t.LikeDelta, t.DislikeDelta)
}

func (s *reactionRepoStub) UpdateCounters(_ context.Context, commentID uint, likeDelta, dislikeDelta int) error {
	s.likes[commentID] += likeDelta
	if s.likes[commentID] < 0 {
		s.likes[commentID] = 0
	}
	s.dislikes[commentID] += dislikeDelta
	if s.dislikes[commentID] < 0 {
		s.dislikes[commentID] = 0
	}
	return nil
}

func approvedCommentRepo(stub *reactionRepoStub) *commentRepoStub {
	repo := noopCommentRepo()
	repo.getByIDFn = func(_ context.Context, id uint) (*models.Comment, error) {
		return &models.Comment{
			ID:       id,
			PostID:   1,
			Approved: true,
			Likes:    stub.likes[id],
			Dislikes: stub.dislikes[id],
		}, nil
	}
	return repo
}

func TestReactionService_React_User(t *testing.T) {
	ctx := context.Background()
	repo := newReactionRepoStub()
	svc := NewReactionService(repo, newMemoryStore(), approvedCommentRepo(repo))
	ident := reactions.Identity{UserID: 7}

	comment, outcome, err := svc.React(ctx, ident, 1, models.ReactionLike)
	require.NoError(t, err)
	assert.Equal(t, reactions.OutcomeApplied, outcome)
	assert.Equal(t, 1, comment.Likes)
	assert.Equal(t, "like", comment.MyReaction)

	// Same reaction again changes nothing.
	comment, outcome, err = svc.React(ctx, ident, 1, models.ReactionLike)
	require.NoError(t, err)
	assert.Equal(t, reactions.OutcomeNoop, outcome)
	assert.Equal(t, 1, comment.Likes)

	// Opposite reaction moves the vote.
	comment, outcome, err = svc.React(ctx, ident, 1, models.ReactionDislike)
	require.NoError(t, err)
	assert.Equal(t, reactions.OutcomeSwitched, outcome)
	assert.Equal(t, 0, comment.Likes)
	assert.Equal(t, 1, comment.Dislikes)
	assert.Equal(t, "dislike", comment.MyReaction)
}

func TestReactionService_React_Anonymous(t *testing.T) {
	ctx := context.Background()
	repo := newReactionRepoStub()
	session := newMemoryStore()
	svc := NewReactionService(repo, session, approvedCommentRepo(repo))
	ident := reactions.Identity{SessionKey: "abc"}

	_, outcome, err := svc.React(ctx, ident, 1, models.ReactionLike)
	require.NoError(t, err)
	assert.Equal(t, reactions.OutcomeApplied, outcome)

	// State went to the session store, not the user rows.
	state, _ := session.Get(ctx, ident, 1)
	assert.Equal(t, reactions.StateLiked, state)
	assert.Empty(t, repo.states)
	assert.Equal(t, 1, repo.likes[1])
}

func TestReactionService_React_NoSession(t *testing.T) {
	repo := newReactionRepoStub()
	svc := NewReactionService(repo, newMemoryStore(), approvedCommentRepo(repo))

	_, _, err := svc.React(context.Background(), reactions.Identity{}, 1, models.ReactionLike)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "UNAUTHORIZED", appErr.Code)
}

func TestReactionService_React_PendingCommentHidden(t *testing.T) {
	repo := newReactionRepoStub()
	commentRepo := noopCommentRepo()
	commentRepo.getByIDFn = func(_ context.Context, id uint) (*models.Comment, error) {
		return &models.Comment{ID: id, PostID: 1, Approved: false}, nil
	}
	svc := NewReactionService(repo, newMemoryStore(), commentRepo)

	_, _, err := svc.React(context.Background(), reactions.Identity{UserID: 7}, 1, models.ReactionLike)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "NOT_FOUND", appErr.Code)
}

func TestReactionService_React_UnknownKind(t *testing.T) {
	repo := newReactionRepoStub()
	svc := NewReactionService(repo, newMemoryStore(), approvedCommentRepo(repo))

	_, _, err := svc.React(context.Background(), reactions.Identity{UserID: 7}, 1, models.ReactionKind("love"))
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
}

func TestReactionService_EnrichReactions(t *testing.T) {
	ctx := context.Background()
	repo := newReactionRepoStub()
	svc := NewReactionService(repo, newMemoryStore(), approvedCommentRepo(repo))
	ident := reactions.Identity{UserID: 7}

	require.NoError(t, repo.Set(ctx, ident, 1, reactions.StateLiked))
	require.NoError(t, repo.Set(ctx, ident, 3, reactions.StateDisliked))

	thread := []*models.Comment{
		{ID: 1, Replies: []*models.Comment{{ID: 3}}},
		{ID: 2},
	}
	require.NoError(t, svc.EnrichReactions(ctx, ident, thread))
	assert.Equal(t, "like", thread[0].MyReaction)
	assert.Equal(t, "dislike", thread[0].Replies[0].MyReaction)
	assert.Empty(t, thread[1].MyReaction)
}

func TestReactionService_EnrichReactions_NoSessionIsQuiet(t *testing.T) {
	repo := newReactionRepoStub()
	svc := NewReactionService(repo, newMemoryStore(), approvedCommentRepo(repo))

	thread := []*models.Comment{{ID: 1}}
	require.NoError(t, svc.EnrichReactions(context.Background(), reactions.Identity{}, thread))
	assert.Empty(t, thread[0].MyReaction)
}
