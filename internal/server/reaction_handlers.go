package server

import (
	"inkwell/internal/models"
	"inkwell/internal/notifications"
	"inkwell/internal/service"

	"github.com/gofiber/fiber/v2"
)

// LikeComment handles POST /api/comments/:id/like
func (s *Server) LikeComment(c *fiber.Ctx) error {
	return s.react(c, models.ReactionLike)
}

// DislikeComment handles POST /api/comments/:id/dislike
func (s *Server) DislikeComment(c *fiber.Ctx) error {
	return s.react(c, models.ReactionDislike)
}

// react applies a reaction and returns the updated comment, or with
// ?view=comments the post's whole refreshed thread for clients that
// re-render the comment section in place.
func (s *Server) react(c *fiber.Ctx, kind models.ReactionKind) error {
	commentID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	userID := currentUserID(c)
	ident := s.sessions.Identity(c, userID)
	if ident.Anonymous() {
		// First anonymous reaction establishes the session.
		ident.SessionKey = s.sessions.Establish(c)
	}

	comment, _, err := s.reactionService.React(c.Context(), ident, commentID, kind)
	if err != nil {
		return respondServiceError(c, err)
	}

	s.publishEvent(c, notifications.Event{
		Type:      notifications.EventReactionUpdated,
		PostID:    comment.PostID,
		CommentID: comment.ID,
	})

	if c.Query("view") == "comments" {
		thread, listErr := s.commentService.ListForPost(c.Context(), service.ListCommentsInput{
			PostID: comment.PostID,
		})
		if listErr != nil {
			return respondServiceError(c, listErr)
		}
		if enrichErr := s.reactionService.EnrichReactions(c.Context(), ident, thread); enrichErr != nil {
			return respondServiceError(c, enrichErr)
		}
		return c.JSON(thread)
	}

	return c.JSON(comment)
}
