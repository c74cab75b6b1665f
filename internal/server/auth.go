package server

import (
	"context"
	"strings"

	"campusboard/internal/middleware"
	"campusboard/internal/models"
	"campusboard/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// AuthRequired returns middleware that validates the identity provider's
// session JWT and stores the principal id in locals.
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := bearerToken(c)
		if tokenString == "" {
			return models.RespondWithAppError(c,
				models.NewUnauthenticatedError("Authorization required"))
		}

		claims, err := s.parseSessionToken(tokenString)
		if err != nil {
			return models.RespondWithAppError(c,
				models.NewUnauthenticatedError(err.Error()))
		}

		c.Locals("principalID", claims.ID)
		c.Locals("principalClaims", claims)
		// Sync to UserContext for logging and downstream services
		ctx := context.WithValue(c.UserContext(), middleware.UserIDKey, claims.ID)
		c.SetUserContext(ctx)

		return c.Next()
	}
}

// optionalPrincipal attempts to extract the principal id from the
// Authorization header but does not enforce it. Public board reads use it to
// resolve the viewer's like/scrap overlay.
func (s *Server) optionalPrincipal(c *fiber.Ctx) string {
	tokenString := bearerToken(c)
	if tokenString == "" {
		return ""
	}
	claims, err := s.parseSessionToken(tokenString)
	if err != nil {
		return ""
	}
	return claims.ID
}

func bearerToken(c *fiber.Ctx) string {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return parts[1]
}

// parseSessionToken validates the HMAC signature, issuer and audience, and
// extracts the principal profile claims.
func (s *Server) parseSessionToken(tokenString string) (*service.PrincipalClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
		}
		return []byte(s.config.IdentityJWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, models.NewUnauthenticatedError("Invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, models.NewUnauthenticatedError("Invalid token claims")
	}

	if issuer, issuerOk := claims["iss"].(string); !issuerOk || issuer != s.config.IdentityJWTIssuer {
		return nil, models.NewUnauthenticatedError("Invalid token issuer")
	}
	if audience, audienceOk := claims["aud"].(string); !audienceOk || audience != s.config.IdentityJWTAudience {
		return nil, models.NewUnauthenticatedError("Invalid token audience")
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return nil, models.NewUnauthenticatedError("Invalid subject claim")
	}

	return &service.PrincipalClaims{
		ID:        sub,
		Username:  stringClaim(claims, "username"),
		FirstName: stringClaim(claims, "first_name"),
		LastName:  stringClaim(claims, "last_name"),
		Email:     stringClaim(claims, "email"),
	}, nil
}

func stringClaim(claims jwt.MapClaims, key string) string {
	v, _ := claims[key].(string)
	return v
}

// principalID returns the authenticated principal id set by AuthRequired.
func principalID(c *fiber.Ctx) string {
	id, _ := c.Locals("principalID").(string)
	return id
}

// principalClaims returns the full claims set by AuthRequired.
func principalClaims(c *fiber.Ctx) *service.PrincipalClaims {
	claims, _ := c.Locals("principalClaims").(*service.PrincipalClaims)
	return claims
}
