package server

import (
	"campusboard/internal/models"

	"github.com/gofiber/fiber/v2"
)

// Upload size cap. Board images only; anything bigger belongs elsewhere.
const maxUploadBytes = 5 << 20

// UploadImage stores an image in object storage and returns its public URL.
func (s *Server) UploadImage(c *fiber.Ctx) error {
	if s.store == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(models.ErrorResponse{
			Error: "Uploads are temporarily unavailable",
			Code:  models.CodeInternal,
		})
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return models.RespondWithAppError(c,
			models.NewValidationError("A 'file' form field is required"))
	}
	if fileHeader.Size > maxUploadBytes {
		return models.RespondWithAppError(c,
			models.NewValidationError("File too large (max 5MB)"))
	}

	contentType := fileHeader.Header.Get("Content-Type")
	switch contentType {
	case "image/jpeg", "image/jpg", "image/png", "image/gif", "image/webp":
	default:
		return models.RespondWithAppError(c,
			models.NewValidationError("Unsupported image format: "+contentType))
	}

	file, err := fileHeader.Open()
	if err != nil {
		return models.RespondWithAppError(c, models.NewInternalError(err))
	}
	defer file.Close()

	url, err := s.store.Put(c.UserContext(), file, fileHeader.Size, contentType)
	if err != nil {
		return models.RespondWithAppError(c, models.NewInternalError(err))
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"url": url})
}
