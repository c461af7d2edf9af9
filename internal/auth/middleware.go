package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// LocalTrackerID is the fiber locals key holding the authenticated tracker.
const LocalTrackerID = "tracker_id"

// JWTMiddleware validates bearer tokens and stores the tracker id in locals.
func JWTMiddleware(secret string) fiber.Handler {
	secretBytes := []byte(secret)
	return func(c *fiber.Ctx) error {
		token := bearerFromHeader(c.Get(fiber.HeaderAuthorization))
		if token == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "missing bearer token")
		}

		claims, err := parseToken(secretBytes, token)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, err.Error())
		}

		c.Locals(LocalTrackerID, claims.TrackerID)
		return c.Next()
	}
}

// TrackerID returns the tracker authenticated for this request, or "" when
// the route is not protected.
func TrackerID(c *fiber.Ctx) string {
	id, _ := c.Locals(LocalTrackerID).(string)
	return id
}

func bearerFromHeader(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
