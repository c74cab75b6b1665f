package server

import (
	"encoding/json"
	"log/slog"

	"campusboard/internal/middleware"
	"campusboard/internal/models"
	"campusboard/internal/service"
	"campusboard/internal/webhook"

	"github.com/gofiber/fiber/v2"
)

type identityEvent struct {
	Type string `json:"type"`
	Data struct {
		ID        string `json:"id"`
		Username  string `json:"username"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		Email     string `json:"email"`
	} `json:"data"`
}

// HandleIdentityWebhook processes signed user lifecycle events pushed by the
// identity provider. It is the out-of-band counterpart of the session sync
// path; both funnel into the same upsert.
func (s *Server) HandleIdentityWebhook(c *fiber.Ctx) error {
	if s.webhookVerifier == nil {
		middleware.WebhookEvents.WithLabelValues("unknown", "rejected").Inc()
		return models.RespondWithAppError(c,
			models.NewUnauthenticatedError("Webhook signing secret not configured"))
	}

	body := c.Body()
	headers := map[string]string{
		webhook.HeaderID:        c.Get(webhook.HeaderID),
		webhook.HeaderTimestamp: c.Get(webhook.HeaderTimestamp),
		webhook.HeaderSignature: c.Get(webhook.HeaderSignature),
	}
	if err := s.webhookVerifier.Verify(body, headers); err != nil {
		middleware.WebhookEvents.WithLabelValues("unknown", "rejected").Inc()
		return models.RespondWithAppError(c,
			models.NewUnauthenticatedError("Invalid webhook signature"))
	}

	var event identityEvent
	if err := json.Unmarshal(body, &event); err != nil {
		middleware.WebhookEvents.WithLabelValues("unknown", "malformed").Inc()
		return models.RespondWithAppError(c,
			models.NewValidationError("Invalid event payload"))
	}

	switch event.Type {
	case "user.created", "user.updated":
		_, err := s.identityService.Sync(c.UserContext(), service.PrincipalClaims{
			ID:        event.Data.ID,
			Username:  event.Data.Username,
			FirstName: event.Data.FirstName,
			LastName:  event.Data.LastName,
			Email:     event.Data.Email,
		})
		if err != nil {
			middleware.WebhookEvents.WithLabelValues(event.Type, "failed").Inc()
			return models.RespondWithAppError(c, err)
		}
		middleware.WebhookEvents.WithLabelValues(event.Type, "processed").Inc()
	default:
		// Unknown event types are acknowledged so the provider stops retrying.
		middleware.Logger.InfoContext(c.UserContext(), "ignoring identity webhook event",
			slog.String("event_type", event.Type))
		middleware.WebhookEvents.WithLabelValues(event.Type, "ignored").Inc()
	}

	return c.JSON(fiber.Map{"success": true})
}
