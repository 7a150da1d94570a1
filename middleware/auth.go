// middleware/auth.go — session context extraction
package middleware

import (
	"log"

	"mission-dispatch-system/services"

	"github.com/gofiber/fiber/v2"
)

// SessionContextMiddleware extracts the agent session forwarded by the
// Gateway. The session is optional on most routes: operations that can run
// anonymously (accept, join) mint their own session downstream. Handlers
// that require one use RequireSession on top of this.
func SessionContextMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		agentID := c.Get("X-Agent-ID")
		if agentID == "" {
			return c.Next()
		}

		sess := &services.Session{
			AgentID:   agentID,
			Email:     c.Get("X-Agent-Email"),
			Username:  c.Get("X-Agent-Username"),
			Anonymous: c.Get("X-Agent-Anonymous") == "true",
		}
		c.Locals("session", sess)

		return c.Next()
	}
}

// RequireSession rejects requests that carry no agent context.
func RequireSession() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if SessionFromCtx(c) == nil {
			log.Printf("❌ [SESSION] X-Agent-ID required but missing on secured route: %s", c.Path())
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"data":  nil,
				"error": "missing agent context — request must come through gateway with auth",
			})
		}
		return c.Next()
	}
}

// SessionFromCtx returns the session attached by SessionContextMiddleware,
// or nil when the request is anonymous.
func SessionFromCtx(c *fiber.Ctx) *services.Session {
	sess, _ := c.Locals("session").(*services.Session)
	return sess
}
