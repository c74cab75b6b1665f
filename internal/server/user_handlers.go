package server

import (
	"campusboard/internal/models"
	"campusboard/internal/service"

	"github.com/gofiber/fiber/v2"
)

type syncRequest struct {
	UserID    string `json:"user_id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

// SyncUser creates or refreshes the local record for the authenticated
// principal. The body may supplement profile fields the session token does
// not carry, but it can never sync a different principal.
func (s *Server) SyncUser(c *fiber.Ctx) error {
	claims := principalClaims(c)
	if claims == nil {
		return models.RespondWithAppError(c,
			models.NewUnauthenticatedError("Authorization required"))
	}

	var req syncRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return models.RespondWithAppError(c,
				models.NewValidationError("Invalid request body"))
		}
	}
	if req.UserID != "" && req.UserID != claims.ID {
		return models.RespondWithAppError(c,
			models.NewForbiddenError("Cannot sync another user"))
	}

	merged := service.PrincipalClaims{
		ID:        claims.ID,
		Username:  firstNonEmpty(claims.Username, req.Username),
		FirstName: firstNonEmpty(claims.FirstName, req.FirstName),
		LastName:  firstNonEmpty(claims.LastName, req.LastName),
		Email:     firstNonEmpty(claims.Email, req.Email),
	}

	user, err := s.identityService.Sync(c.UserContext(), merged)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(user)
}

// GetMe returns the authenticated user's local record.
func (s *Server) GetMe(c *fiber.Ctx) error {
	user, err := s.identityService.Get(c.UserContext(), principalID(c))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(user)
}

// UpdateMyNickname sets the authenticated user's display nickname.
func (s *Server) UpdateMyNickname(c *fiber.Ctx) error {
	var req struct {
		Nickname string `json:"nickname"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithAppError(c,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.identityService.UpdateNickname(c.UserContext(), principalID(c), req.Nickname)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(user)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
