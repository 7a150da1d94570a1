// handlers/session_routes.go
package handlers

import (
	"mission-dispatch-system/middleware"
	"mission-dispatch-system/services"

	"github.com/gofiber/fiber/v2"
)

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Username string `json:"username"`
}

func SetupSessionRoutes(app *fiber.App, facade *services.Facade) {
	app.Post("/auth/signup", func(c *fiber.Ctx) error {
		var req credentialsRequest
		if err := c.BodyParser(&req); err != nil {
			return fail(c, services.ErrValidation)
		}

		sess, agent, err := facade.SignUp(req.Email, req.Password, req.Username)
		if err != nil {
			return fail(c, err)
		}
		return ok(c, fiber.Map{"session": sess, "agent": agent})
	})

	app.Post("/auth/signin", func(c *fiber.Ctx) error {
		var req credentialsRequest
		if err := c.BodyParser(&req); err != nil {
			return fail(c, services.ErrValidation)
		}

		sess, agent, err := facade.SignIn(req.Email, req.Password)
		if err != nil {
			return fail(c, err)
		}
		return ok(c, fiber.Map{"session": sess, "agent": agent})
	})

	app.Post("/auth/anonymous", func(c *fiber.Ctx) error {
		sess, agent, err := facade.SignInAnonymously()
		if err != nil {
			return fail(c, err)
		}
		return ok(c, fiber.Map{"session": sess, "agent": agent})
	})

	app.Post("/auth/signout", func(c *fiber.Ctx) error {
		if err := facade.SignOut(middleware.SessionFromCtx(c)); err != nil {
			return fail(c, err)
		}
		return ok(c, nil)
	})

	// 🔐 Secured — profile routes always need an agent context
	secured := app.Group("/agents", middleware.RequireSession())

	secured.Get("/me", func(c *fiber.Ctx) error {
		agent, err := facade.LoadAgentProfile(middleware.SessionFromCtx(c))
		if err != nil {
			return fail(c, err)
		}
		return ok(c, agent)
	})

	secured.Patch("/me", func(c *fiber.Ctx) error {
		updates := map[string]any{}
		if err := c.BodyParser(&updates); err != nil {
			return fail(c, services.ErrValidation)
		}

		agent, err := facade.UpdateAgentProfile(middleware.SessionFromCtx(c), updates)
		if err != nil {
			return fail(c, err)
		}
		return ok(c, agent)
	})
}
