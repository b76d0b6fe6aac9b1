// Package service implements business logic on top of the repository layer.
package service

import (
	"context"
	"strings"
	"time"

	"inkwell/internal/cache"
	"inkwell/internal/models"
	"inkwell/internal/observability"
	"inkwell/internal/repository"
)

// previewWordLimit is the number of body words shown in listings.
const previewWordLimit = 20

type PostService struct {
	postRepo repository.PostRepository
	isAdmin  func(ctx context.Context, userID uint) (bool, error)
	now      func() time.Time
}

type CreatePostInput struct {
	UserID   uint
	Title    string
	Body     string
	ImageURL string
	// Publish makes the post live immediately instead of saving a draft.
	Publish bool
}

type UpdatePostInput struct {
	UserID   uint
	PostID   uint
	Title    string
	Body     string
	ImageURL string
}

type ListPostsInput struct {
	Limit  int
	Offset int
}

func NewPostService(
	postRepo repository.PostRepository,
	isAdmin func(ctx context.Context, userID uint) (bool, error),
) *PostService {
	return &PostService{
		postRepo: postRepo,
		isAdmin:  isAdmin,
		now:      time.Now,
	}
}

func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	const maxTitleLen = 200
	const maxBodyLen = 50000

	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, models.NewValidationError("Title is required")
	}
	if len(title) > maxTitleLen {
		return nil, models.NewValidationError("Title too long (max 200 characters)")
	}
	if strings.TrimSpace(in.Body) == "" {
		return nil, models.NewValidationError("Body is required")
	}
	if len(in.Body) > maxBodyLen {
		return nil, models.NewValidationError("Body too long (max 50000 characters)")
	}

	post := &models.Post{
		Title:    title,
		Body:     in.Body,
		ImageURL: in.ImageURL,
		UserID:   in.UserID,
	}
	if in.Publish {
		now := s.now()
		post.PublishedAt = &now
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}
	if in.Publish {
		observability.PostsPublished.Inc()
	}
	return s.postRepo.GetByID(ctx, post.ID)
}

func (s *PostService) ListPublished(ctx context.Context, in ListPostsInput) ([]*models.Post, error) {
	limit := normalizeLimit(in.Limit)

	var posts []*models.Post
	var err error
	if in.Offset == 0 && limit <= 20 {
		err = cache.Aside(ctx, cache.PublishedListKey, &posts, cache.ListTTL, func() error {
			var fetchErr error
			posts, fetchErr = s.postRepo.ListPublished(ctx, limit, 0)
			return fetchErr
		})
	} else {
		posts, err = s.postRepo.ListPublished(ctx, limit, in.Offset)
	}
	if err != nil {
		return nil, err
	}
	for _, p := range posts {
		p.Preview = p.PreviewText(previewWordLimit)
	}
	return posts, nil
}

// ListDrafts returns the caller's drafts; admins see every author's drafts.
func (s *PostService) ListDrafts(ctx context.Context, userID uint, in ListPostsInput) ([]*models.Post, error) {
	admin, err := s.isAdmin(ctx, userID)
	if err != nil {
		return nil, err
	}
	authorID := userID
	if admin {
		authorID = 0
	}
	posts, err := s.postRepo.ListDrafts(ctx, authorID, normalizeLimit(in.Limit), in.Offset)
	if err != nil {
		return nil, err
	}
	for _, p := range posts {
		p.Preview = p.PreviewText(previewWordLimit)
	}
	return posts, nil
}

// GetPost returns a post for the given reader. Drafts and scheduled posts
// are visible only to their author and admins; everyone else gets a not
// found error so draft IDs are not probeable. Public reads count a view.
func (s *PostService) GetPost(ctx context.Context, id uint, currentUserID uint) (*models.Post, error) {
	// Only published posts are ever cached, so a hit needs no access check.
	post := &models.Post{}
	found, cacheErr := cache.GetJSON(ctx, cache.PostKey(id), post)
	if cacheErr != nil || !found {
		var err error
		post, err = s.postRepo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if !post.Published() {
			if err := s.requireOwnerOrAdmin(ctx, currentUserID, post.UserID); err != nil {
				return nil, models.NewNotFoundError("Post", id)
			}
			return post, nil
		}
		_ = cache.SetJSON(ctx, cache.PostKey(id), post, cache.PostTTL)
	}
	if err := s.postRepo.IncrementViews(ctx, id); err == nil {
		post.Views++
	}
	return post, nil
}

// PublishPost moves a draft live. The transition is one-way; publishing an
// already published post returns it unchanged.
func (s *PostService) PublishPost(ctx context.Context, userID, postID uint) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if err := s.requireOwnerOrAdmin(ctx, userID, post.UserID); err != nil {
		return nil, err
	}
	if post.PublishedAt != nil {
		return post, nil
	}
	if err := s.postRepo.Publish(ctx, postID, s.now()); err != nil {
		return nil, err
	}
	observability.PostsPublished.Inc()
	return s.postRepo.GetByID(ctx, postID)
}

func (s *PostService) UpdatePost(ctx context.Context, in UpdatePostInput) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, in.PostID)
	if err != nil {
		return nil, err
	}
	if err := s.requireOwnerOrAdmin(ctx, in.UserID, post.UserID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Title) == "" {
		return nil, models.NewValidationError("Title is required")
	}
	if strings.TrimSpace(in.Body) == "" {
		return nil, models.NewValidationError("Body is required")
	}
	post.Title = strings.TrimSpace(in.Title)
	post.Body = in.Body
	if in.ImageURL != "" {
		post.ImageURL = in.ImageURL
	}
	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *PostService) DeletePost(ctx context.Context, userID, postID uint) error {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if err := s.requireOwnerOrAdmin(ctx, userID, post.UserID); err != nil {
		return err
	}
	return s.postRepo.Delete(ctx, postID)
}

func (s *PostService) requireOwnerOrAdmin(ctx context.Context, userID, ownerID uint) error {
	if userID == 0 {
		return models.NewUnauthorizedError("Authentication required")
	}
	if userID == ownerID {
		return nil
	}
	admin, err := s.isAdmin(ctx, userID)
	if err != nil {
		return err
	}
	if !admin {
		return models.NewUnauthorizedError("Not allowed to modify this post")
	}
	return nil
}

func normalizeLimit(limit int) int {
	if limit <= 0 || limit > 100 {
		return 20
	}
	return limit
}
