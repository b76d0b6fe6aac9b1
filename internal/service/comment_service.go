package service

import (
	"context"
	"strings"

	"inkwell/internal/cache"
	"inkwell/internal/models"
	"inkwell/internal/observability"
	"inkwell/internal/repository"
)

type CommentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
	isAdmin     func(ctx context.Context, userID uint) (bool, error)
}

type SubmitCommentInput struct {
	PostID     uint
	ParentID   *uint
	AuthorName string
	Body       string
	// UserID is zero for anonymous visitors. Admin submitters skip the
	// moderation queue.
	UserID uint
}

type ListCommentsInput struct {
	PostID uint
	// IncludePending adds unapproved comments (moderator view).
	IncludePending bool
}

func NewCommentService(
	commentRepo repository.CommentRepository,
	postRepo repository.PostRepository,
	isAdmin func(ctx context.Context, userID uint) (bool, error),
) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		postRepo:    postRepo,
		isAdmin:     isAdmin,
	}
}

// SubmitComment records a new comment in the pending state, or approved
// immediately when the submitter is an admin.
func (s *CommentService) SubmitComment(ctx context.Context, in SubmitCommentInput) (*models.Comment, error) {
	const maxAuthorLen = 200
	const maxBodyLen = 10000

	author := strings.TrimSpace(in.AuthorName)
	if author == "" {
		return nil, models.NewValidationError("Author name is required")
	}
	if len(author) > maxAuthorLen {
		return nil, models.NewValidationError("Author name too long (max 200 characters)")
	}
	if strings.TrimSpace(in.Body) == "" {
		return nil, models.NewValidationError("Comment body is required")
	}
	if len(in.Body) > maxBodyLen {
		return nil, models.NewValidationError("Comment body too long (max 10000 characters)")
	}

	post, err := s.postRepo.GetByID(ctx, in.PostID)
	if err != nil {
		return nil, err
	}
	if !post.Published() {
		return nil, models.NewValidationError("Cannot comment on an unpublished post")
	}

	if in.ParentID != nil {
		parent, err := s.commentRepo.GetByID(ctx, *in.ParentID)
		if err != nil {
			return nil, err
		}
		if parent.PostID != in.PostID {
			return nil, models.NewValidationError("Parent comment belongs to a different post")
		}
	}

	approved := false
	if in.UserID != 0 {
		admin, err := s.isAdmin(ctx, in.UserID)
		if err != nil {
			return nil, err
		}
		approved = admin
	}

	comment := &models.Comment{
		PostID:     in.PostID,
		ParentID:   in.ParentID,
		AuthorName: author,
		Body:       in.Body,
		Approved:   approved,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}

	state := "pending"
	if approved {
		state = "approved"
	}
	observability.CommentsSubmitted.WithLabelValues(state).Inc()
	return comment, nil
}

// ApproveComment releases a pending comment to the public. Approving twice
// is a no-op.
func (s *CommentService) ApproveComment(ctx context.Context, moderatorID, commentID uint) (*models.Comment, error) {
	if err := s.requireAdmin(ctx, moderatorID); err != nil {
		return nil, err
	}
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if comment.Approved {
		return comment, nil
	}
	if err := s.commentRepo.Approve(ctx, commentID); err != nil {
		return nil, err
	}
	observability.CommentsApproved.Inc()
	comment.Approved = true
	return comment, nil
}

// RemoveComment deletes a comment along with its replies and their
// reaction state.
func (s *CommentService) RemoveComment(ctx context.Context, moderatorID, commentID uint) error {
	if err := s.requireAdmin(ctx, moderatorID); err != nil {
		return err
	}
	return s.commentRepo.Delete(ctx, commentID)
}

// ListForPost returns a post's comment thread: top-level comments with
// their replies attached, both newest-first. The public view is served
// through the cache; the moderator view always reads the database.
func (s *CommentService) ListForPost(ctx context.Context, in ListCommentsInput) ([]*models.Comment, error) {
	if in.IncludePending {
		comments, err := s.commentRepo.ListByPost(ctx, in.PostID, true)
		if err != nil {
			return nil, err
		}
		return buildThread(comments), nil
	}

	var thread []*models.Comment
	err := cache.Aside(ctx, cache.CommentsKey(in.PostID), &thread, cache.CommentsTTL, func() error {
		comments, fetchErr := s.commentRepo.ListByPost(ctx, in.PostID, false)
		if fetchErr != nil {
			return fetchErr
		}
		thread = buildThread(comments)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return thread, nil
}

// ListPending returns the moderation queue oldest-first.
func (s *CommentService) ListPending(ctx context.Context, moderatorID uint, limit, offset int) ([]*models.Comment, error) {
	if err := s.requireAdmin(ctx, moderatorID); err != nil {
		return nil, err
	}
	return s.commentRepo.ListPending(ctx, normalizeLimit(limit), offset)
}

func (s *CommentService) requireAdmin(ctx context.Context, userID uint) error {
	if userID == 0 {
		return models.NewUnauthorizedError("Authentication required")
	}
	admin, err := s.isAdmin(ctx, userID)
	if err != nil {
		return err
	}
	if !admin {
		return models.NewUnauthorizedError("Moderator access required")
	}
	return nil
}

// buildThread nests replies under their parents, preserving the input
// order within each level. A reply whose parent was removed or is still
// pending surfaces at the top level rather than disappearing.
func buildThread(comments []*models.Comment) []*models.Comment {
	byID := make(map[uint]*models.Comment, len(comments))
	for _, c := range comments {
		byID[c.ID] = c
	}
	thread := make([]*models.Comment, 0, len(comments))
	for _, c := range comments {
		if c.ParentID != nil {
			if parent, ok := byID[*c.ParentID]; ok {
				parent.Replies = append(parent.Replies, c)
				continue
			}
		}
		thread = append(thread, c)
	}
	return thread
}
