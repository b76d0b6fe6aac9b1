package server

import (
	"inkwell/internal/models"
	"inkwell/internal/notifications"
	"inkwell/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetComments handles GET /api/posts/:id/comments. Approved comments are
// returned as a thread; moderators can add ?pending=true to include the
// queue inline.
func (s *Server) GetComments(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	includePending := false
	if c.QueryBool("pending", false) {
		admin, adminErr := s.isAdminByUserID(c.Context(), currentUserID(c))
		if adminErr == nil && admin {
			includePending = true
		}
	}

	thread, err := s.commentService.ListForPost(c.Context(), service.ListCommentsInput{
		PostID:         postID,
		IncludePending: includePending,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	ident := s.sessions.Identity(c, currentUserID(c))
	if err := s.reactionService.EnrichReactions(c.Context(), ident, thread); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(thread)
}

// CreateComment handles POST /api/posts/:id/comments. Anonymous visitors
// may comment; submissions wait in the moderation queue.
func (s *Server) CreateComment(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		AuthorName string `json:"author_name"`
		Body       string `json:"body"`
		ParentID   *uint  `json:"parent_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	comment, err := s.commentService.SubmitComment(c.Context(), service.SubmitCommentInput{
		PostID:     postID,
		ParentID:   req.ParentID,
		AuthorName: req.AuthorName,
		Body:       req.Body,
		UserID:     currentUserID(c),
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	s.publishEvent(c, notifications.Event{
		Type:      notifications.EventCommentCreated,
		PostID:    comment.PostID,
		CommentID: comment.ID,
	})
	return c.Status(fiber.StatusCreated).JSON(comment)
}

// GetPendingComments handles GET /api/comments/pending - the moderation
// queue, oldest first.
func (s *Server) GetPendingComments(c *fiber.Ctx) error {
	p := parsePagination(c, 20)

	comments, err := s.commentService.ListPending(c.Context(), currentUserID(c), p.Limit, p.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(comments)
}

// ApproveComment handles POST /api/comments/:id/approve
func (s *Server) ApproveComment(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	comment, err := s.commentService.ApproveComment(c.Context(), currentUserID(c), id)
	if err != nil {
		return respondServiceError(c, err)
	}

	s.publishEvent(c, notifications.Event{
		Type:      notifications.EventCommentApproved,
		PostID:    comment.PostID,
		CommentID: comment.ID,
	})
	return c.JSON(comment)
}

// DeleteComment handles DELETE /api/comments/:id
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.commentService.RemoveComment(c.Context(), currentUserID(c), id); err != nil {
		return respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
