package server

import (
	"campusboard/internal/models"

	"github.com/gofiber/fiber/v2"
)

type actionRequest struct {
	Action string `json:"action"`
}

// PostLike applies a like/unlike action to a post.
func (s *Server) PostLike(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req actionRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithAppError(c,
			models.NewValidationError("Invalid request body"))
	}

	result, err := s.interactionService.PostLike(c.UserContext(), principalID(c), postID, req.Action)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{
		"liked":       result.Active,
		"likes_count": result.Count,
	})
}

// PostScrap applies a scrap/unscrap action to a post.
func (s *Server) PostScrap(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req actionRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithAppError(c,
			models.NewValidationError("Invalid request body"))
	}

	result, err := s.interactionService.PostScrap(c.UserContext(), principalID(c), postID, req.Action)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{
		"scrapped": result.Active,
	})
}

// CommentLike applies a like/unlike action to a comment.
func (s *Server) CommentLike(c *fiber.Ctx) error {
	commentID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req actionRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithAppError(c,
			models.NewValidationError("Invalid request body"))
	}

	result, err := s.interactionService.CommentLike(c.UserContext(), principalID(c), commentID, req.Action)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{
		"liked":       result.Active,
		"likes_count": result.Count,
	})
}
