package service

import (
	"context"

	"inkwell/internal/cache"
	"inkwell/internal/models"
	"inkwell/internal/observability"
	"inkwell/internal/reactions"
	"inkwell/internal/repository"
)

// ReactionService applies like/dislike requests to comments. Authenticated
// users' state lives in reaction rows; anonymous visitors' state lives in
// their session. Comment counters are shared by both.
type ReactionService struct {
	reactionRepo repository.ReactionRepository
	sessionStore reactions.Store
	commentRepo  repository.CommentRepository
}

func NewReactionService(
	reactionRepo repository.ReactionRepository,
	sessionStore reactions.Store,
	commentRepo repository.CommentRepository,
) *ReactionService {
	return &ReactionService{
		reactionRepo: reactionRepo,
		sessionStore: sessionStore,
		commentRepo:  commentRepo,
	}
}

// React applies a like or dislike from the given identity. Repeating the
// identity's current reaction changes nothing; reacting the other way
// moves the identity's vote across. The returned comment carries updated
// counters and the identity's resulting state.
func (s *ReactionService) React(ctx context.Context, ident reactions.Identity, commentID uint, kind models.ReactionKind) (*models.Comment, reactions.Outcome, error) {
	if !kind.Valid() {
		return nil, "", models.NewValidationError("Unknown reaction kind")
	}
	if ident.Anonymous() && ident.SessionKey == "" {
		return nil, "", models.NewUnauthorizedError("No session established")
	}

	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return nil, "", err
	}
	if !comment.Approved {
		// Pending comments are not publicly visible, so reacting to one
		// looks the same as reacting to a missing one.
		return nil, "", models.NewNotFoundError("Comment", commentID)
	}

	store := s.storeFor(ident)
	current, err := store.Get(ctx, ident, commentID)
	if err != nil {
		return nil, "", err
	}

	t := reactions.Apply(current, kind)
	observability.ReactionTransitions.WithLabelValues(string(kind), string(t.Outcome)).Inc()

	if t.Outcome == reactions.OutcomeNoop {
		comment.MyReaction = string(t.New)
		return comment, t.Outcome, nil
	}

	if ident.Anonymous() {
		if err := store.Set(ctx, ident, commentID, t.New); err != nil {
			return nil, "", err
		}
		if err := s.reactionRepo.UpdateCounters(ctx, commentID, t.LikeDelta, t.DislikeDelta); err != nil {
			return nil, "", err
		}
	} else {
		if err := s.reactionRepo.ApplyTransition(ctx, ident.UserID, commentID, t); err != nil {
			return nil, "", err
		}
	}
	cache.Invalidate(ctx, cache.CommentsKey(comment.PostID))

	comment, err = s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return nil, "", err
	}
	comment.MyReaction = string(t.New)
	return comment, t.Outcome, nil
}

// EnrichReactions fills MyReaction on every comment in the thread,
// replies included, for the given identity. Identities with no state yet
// are left untouched.
func (s *ReactionService) EnrichReactions(ctx context.Context, ident reactions.Identity, comments []*models.Comment) error {
	if ident.Anonymous() && ident.SessionKey == "" {
		return nil
	}
	flat := flatten(comments)
	if len(flat) == 0 {
		return nil
	}
	ids := make([]uint, len(flat))
	for i, c := range flat {
		ids[i] = c.ID
	}
	states, err := s.storeFor(ident).GetAll(ctx, ident, ids)
	if err != nil {
		return err
	}
	for _, c := range flat {
		c.MyReaction = string(states[c.ID])
	}
	return nil
}

func (s *ReactionService) storeFor(ident reactions.Identity) reactions.Store {
	if ident.Anonymous() {
		return s.sessionStore
	}
	return s.reactionRepo
}

func flatten(comments []*models.Comment) []*models.Comment {
	var flat []*models.Comment
	for _, c := range comments {
		flat = append(flat, c)
		flat = append(flat, flatten(c.Replies)...)
	}
	return flat
}
