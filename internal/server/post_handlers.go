package server

import (
	"time"

	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/notifications"
	"inkwell/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetPosts handles GET /api/posts - the public list of published posts,
// newest publication first.
func (s *Server) GetPosts(c *fiber.Ctx) error {
	p := parsePagination(c, 20)

	posts, err := s.postService.ListPublished(c.Context(), service.ListPostsInput{
		Limit:  p.Limit,
		Offset: p.Offset,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(posts)
}

// GetDrafts handles GET /api/posts/drafts - the caller's unpublished posts.
func (s *Server) GetDrafts(c *fiber.Ctx) error {
	p := parsePagination(c, 20)

	posts, err := s.postService.ListDrafts(c.Context(), currentUserID(c), service.ListPostsInput{
		Limit:  p.Limit,
		Offset: p.Offset,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(posts)
}

// GetPost handles GET /api/posts/:id
func (s *Server) GetPost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.postService.GetPost(c.Context(), id, currentUserID(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(post)
}

// CreatePost handles POST /api/posts. The post starts as a draft unless
// publish is set.
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var req struct {
		Title    string `json:"title"`
		Body     string `json:"body"`
		ImageURL string `json:"image_url"`
		Publish  bool   `json:"publish"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.CreatePost(c.Context(), service.CreatePostInput{
		UserID:   currentUserID(c),
		Title:    req.Title,
		Body:     req.Body,
		ImageURL: req.ImageURL,
		Publish:  req.Publish,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	if post.Published() {
		s.publishEvent(c, notifications.Event{Type: notifications.EventPostPublished, PostID: post.ID})
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

// PublishPost handles POST /api/posts/:id/publish - the one-way draft to
// published transition.
func (s *Server) PublishPost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	// Peek at the current state so the event only fires on the actual
	// transition; the service treats repeat publishes as no-ops.
	wasDraft := false
	if existing, getErr := s.postRepo.GetByID(c.Context(), id); getErr == nil {
		wasDraft = existing.PublishedAt == nil
	}

	post, err := s.postService.PublishPost(c.Context(), currentUserID(c), id)
	if err != nil {
		return respondServiceError(c, err)
	}

	if wasDraft {
		s.publishEvent(c, notifications.Event{Type: notifications.EventPostPublished, PostID: post.ID})
	}
	return c.JSON(post)
}

// UpdatePost handles PUT /api/posts/:id
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Title    string `json:"title"`
		Body     string `json:"body"`
		ImageURL string `json:"image_url"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.UpdatePost(c.Context(), service.UpdatePostInput{
		UserID:   currentUserID(c),
		PostID:   id,
		Title:    req.Title,
		Body:     req.Body,
		ImageURL: req.ImageURL,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(post)
}

// DeletePost handles DELETE /api/posts/:id
func (s *Server) DeletePost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.postService.DeletePost(c.Context(), currentUserID(c), id); err != nil {
		return respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// publishEvent is a best-effort broadcast to event-stream watchers.
func (s *Server) publishEvent(c *fiber.Ctx, ev notifications.Event) {
	if s.notifier == nil {
		return
	}
	ev.At = time.Now()
	if err := s.notifier.Publish(c.Context(), ev); err != nil {
		middleware.Logger.WarnContext(c.UserContext(), "failed to publish event",
			"type", ev.Type, "error", err)
	}
}
