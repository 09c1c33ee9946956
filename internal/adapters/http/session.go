package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/samirrijal/bboxmap/internal/pkg/logging"
)

const (
	sessionCookie = "bboxmap_session"
	sessionKey    = "session_id"
)

// SessionMiddleware assigns every browser a session id cookie. The id keys
// the form state in the session store.
func SessionMiddleware(secure bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Cookies(sessionCookie)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
			c.Cookie(&fiber.Cookie{
				Name:     sessionCookie,
				Value:    id,
				Path:     "/",
				Expires:  time.Now().Add(30 * 24 * time.Hour),
				HTTPOnly: true,
				Secure:   secure,
				SameSite: fiber.CookieSameSiteLaxMode,
			})
		}
		c.Locals(sessionKey, id)
		ctx := c.UserContext()
		c.SetUserContext(logging.WithLogger(ctx, logging.FromContext(ctx).With("session_id", id)))
		return c.Next()
	}
}

func sessionID(c *fiber.Ctx) string {
	id, _ := c.Locals(sessionKey).(string)
	return id
}
