package repository

import (
	"context"
	"errors"

	"inkwell/internal/models"
	"inkwell/internal/reactions"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrAnonymousIdentity is returned when the persistent store is asked to
// handle a session-scoped identity. Anonymous state lives in the session
// store instead.
var ErrAnonymousIdentity = errors.New("persistent reaction store requires an authenticated identity")

// ReactionRepository holds authenticated users' reaction rows and the
// denormalized like/dislike counters on comments. It implements
// reactions.Store for user identities.
type ReactionRepository interface {
	reactions.Store
	// ApplyTransition records the user's new state and adjusts the comment's
	// counters in one transaction.
	ApplyTransition(ctx context.Context, userID, commentID uint, t reactions.Transition) error
	// UpdateCounters adjusts a comment's counters without touching reaction
	// rows; session-scoped identities keep their state elsewhere.
	UpdateCounters(ctx context.Context, commentID uint, likeDelta, dislikeDelta int) error
}

type reactionRepository struct {
	db *gorm.DB
}

// NewReactionRepository creates a new reaction repository
func NewReactionRepository(db *gorm.DB) ReactionRepository {
	return &reactionRepository{db: db}
}

func (r *reactionRepository) Get(ctx context.Context, id reactions.Identity, commentID uint) (reactions.State, error) {
	if id.Anonymous() {
		return reactions.StateNone, ErrAnonymousIdentity
	}
	var row models.Reaction
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND comment_id = ?", id.UserID, commentID).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return reactions.StateNone, nil
		}
		return reactions.StateNone, err
	}
	return reactions.StateFor(row.Kind), nil
}

func (r *reactionRepository) Set(ctx context.Context, id reactions.Identity, commentID uint, state reactions.State) error {
	if id.Anonymous() {
		return ErrAnonymousIdentity
	}
	return setUserState(r.db.WithContext(ctx), id.UserID, commentID, state)
}

func (r *reactionRepository) GetAll(ctx context.Context, id reactions.Identity, commentIDs []uint) (map[uint]reactions.State, error) {
	if id.Anonymous() {
		return nil, ErrAnonymousIdentity
	}
	states := make(map[uint]reactions.State, len(commentIDs))
	if len(commentIDs) == 0 {
		return states, nil
	}
	var rows []models.Reaction
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND comment_id IN ?", id.UserID, commentIDs).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		states[row.CommentID] = reactions.StateFor(row.Kind)
	}
	return states, nil
}

func (r *reactionRepository) ApplyTransition(ctx context.Context, userID, commentID uint, t reactions.Transition) error {
	if t.Outcome == reactions.OutcomeNoop {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := setUserState(tx, userID, commentID, t.New); err != nil {
			return err
		}
		return updateCounters(tx, commentID, t.LikeDelta, t.DislikeDelta)
	})
}

func (r *reactionRepository) UpdateCounters(ctx context.Context, commentID uint, likeDelta, dislikeDelta int) error {
	return updateCounters(r.db.WithContext(ctx), commentID, likeDelta, dislikeDelta)
}

// setUserState upserts the user's reaction row, or deletes it when the new
// state is none. The unique (user_id, comment_id) index makes the upsert a
// single statement.
func setUserState(db *gorm.DB, userID, commentID uint, state reactions.State) error {
	if state == reactions.StateNone {
		return db.Where("user_id = ? AND comment_id = ?", userID, commentID).
			Delete(&models.Reaction{}).Error
	}
	row := models.Reaction{
		UserID:    userID,
		CommentID: commentID,
		Kind:      models.ReactionKind(state),
	}
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "comment_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"kind"}),
	}).Create(&row).Error
}

// updateCounters applies the deltas, clamping each counter at zero so a
// decrement can never drive it negative.
func updateCounters(db *gorm.DB, commentID uint, likeDelta, dislikeDelta int) error {
	updates := map[string]interface{}{}
	if likeDelta != 0 {
		updates["likes"] = gorm.Expr("CASE WHEN likes + ? < 0 THEN 0 ELSE likes + ? END", likeDelta, likeDelta)
	}
	if dislikeDelta != 0 {
		updates["dislikes"] = gorm.Expr("CASE WHEN dislikes + ? < 0 THEN 0 ELSE dislikes + ? END", dislikeDelta, dislikeDelta)
	}
	if len(updates) == 0 {
		return nil
	}
	return db.Model(&models.Comment{}).
		Where("id = ?", commentID).
		UpdateColumns(updates).Error
}
