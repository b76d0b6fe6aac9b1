package repository

import (
	"context"
	"errors"

	"inkwell/internal/cache"
	"inkwell/internal/models"

	"gorm.io/gorm"
)

// CommentRepository defines the interface for comment data operations
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id uint) (*models.Comment, error)
	ListByPost(ctx context.Context, postID uint, includePending bool) ([]*models.Comment, error)
	ListPending(ctx context.Context, limit, offset int) ([]*models.Comment, error)
	Approve(ctx context.Context, id uint) error
	Delete(ctx context.Context, id uint) error
}

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new comment repository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	err := r.db.WithContext(ctx).Create(comment).Error
	if err == nil {
		cache.InvalidatePost(ctx, comment.PostID)
	}
	return err
}

func (r *commentRepository) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	err := r.db.WithContext(ctx).First(&comment, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Comment", id)
		}
		return nil, err
	}
	return &comment, nil
}

// ListByPost returns a post's comments newest-first. Pending comments are
// only included when includePending is set (moderator view).
func (r *commentRepository) ListByPost(ctx context.Context, postID uint, includePending bool) ([]*models.Comment, error) {
	var comments []*models.Comment
	q := r.db.WithContext(ctx).Where("post_id = ?", postID)
	if !includePending {
		q = q.Where("approved")
	}
	err := q.Order("created_at DESC").Find(&comments).Error
	return comments, err
}

func (r *commentRepository) ListPending(ctx context.Context, limit, offset int) ([]*models.Comment, error) {
	var comments []*models.Comment
	err := r.db.WithContext(ctx).
		Where("NOT approved").
		Order("created_at ASC").
		Limit(limit).
		Offset(offset).
		Find(&comments).Error
	return comments, err
}

// Approve flips a comment to the approved state. Approving an already
// approved comment matches zero rows and is a harmless no-op.
func (r *commentRepository) Approve(ctx context.Context, id uint) error {
	var comment models.Comment
	if err := r.db.WithContext(ctx).Select("post_id").First(&comment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("Comment", id)
		}
		return err
	}
	err := r.db.WithContext(ctx).
		Model(&models.Comment{}).
		Where("id = ? AND NOT approved", id).
		Update("approved", true).Error
	if err == nil {
		// Wipes the post detail too; its approved comment count is baked in.
		cache.InvalidatePost(ctx, comment.PostID)
	}
	return err
}

// Delete removes a comment, its replies, and any reaction rows pointing at
// them in a single transaction.
func (r *commentRepository) Delete(ctx context.Context, id uint) error {
	var comment models.Comment
	if err := r.db.WithContext(ctx).Select("id, post_id").First(&comment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("Comment", id)
		}
		return err
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var replyIDs []uint
		if err := tx.Model(&models.Comment{}).
			Where("parent_id = ?", id).
			Pluck("id", &replyIDs).Error; err != nil {
			return err
		}
		ids := append(replyIDs, id)
		if err := tx.Where("comment_id IN ?", ids).
			Delete(&models.Reaction{}).Error; err != nil {
			return err
		}
		return tx.Where("id IN ?", ids).Delete(&models.Comment{}).Error
	})
	if err == nil {
		cache.InvalidatePost(ctx, comment.PostID)
	}
	return err
}
