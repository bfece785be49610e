package api

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/mvucinic/billsight/internal/app"
	"github.com/mvucinic/billsight/internal/httpserver/httputil"
	"github.com/mvucinic/billsight/internal/limits"
	"github.com/mvucinic/billsight/internal/services/users"
)

const (
	bearerPrefix   = "bearer "
	currentUserKey = "billsight_user"
)

func authMiddleware(container *app.Container) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := extractBearer(c)
		if token == "" {
			return httputil.WriteError(c, fiber.StatusUnauthorized, "authorization required")
		}

		user, err := container.Auth.AuthorizeAccessToken(c.UserContext(), token)
		if err != nil {
			return httputil.WriteError(c, fiber.StatusUnauthorized, "invalid or expired token")
		}

		c.Locals(currentUserKey, user)
		return c.Next()
	}
}

// rateLimitMiddleware enforces the per-minute request ceiling. Keyed by user
// once authenticated, by client address before that.
func rateLimitMiddleware(container *app.Container) fiber.Handler {
	perMinute := container.Config.RateLimits.RequestsPerMinute
	return func(c *fiber.Ctx) error {
		key := c.IP()
		if user, ok := currentUser(c); ok {
			key = user.ID.String()
		}
		if err := container.RequestLimits.Allow(c.UserContext(), key, perMinute); err != nil {
			if errors.Is(err, limits.ErrLimitExceeded) {
				return httputil.WriteError(c, fiber.StatusTooManyRequests, "too many requests")
			}
			// Redis trouble should not take the API down.
			container.Logger.Warn("request limiter unavailable", "error", err)
		}
		return c.Next()
	}
}

func currentUser(c *fiber.Ctx) (users.User, bool) {
	user, ok := c.Locals(currentUserKey).(users.User)
	return user, ok
}

func mustCurrentUser(c *fiber.Ctx) users.User {
	user, _ := currentUser(c)
	return user
}

func extractBearer(c *fiber.Ctx) string {
	raw := strings.TrimSpace(c.Get("Authorization"))
	if raw == "" {
		return ""
	}
	if !strings.HasPrefix(strings.ToLower(raw), bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(raw[len(bearerPrefix):])
}
