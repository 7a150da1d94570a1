// handlers/assignment_routes.go
package handlers

import (
	"errors"

	"mission-dispatch-system/middleware"
	"mission-dispatch-system/models"
	"mission-dispatch-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupAssignmentRoutes(app *fiber.App, facade *services.Facade) {
	// 🔓 Public routes — catalog browsing needs no agent context
	app.Get("/assignments", func(c *fiber.Ctx) error {
		filters := services.AssignmentFilters{
			DurationType:   c.Query("duration_type"),
			Classification: c.Query("classification"),
			LocationType:   c.Query("location_type"),
		}

		assignments, err := facade.GetAllAssignments(filters)
		if err != nil {
			return fail(c, err)
		}
		return ok(c, assignments)
	})

	app.Get("/assignments/random", func(c *fiber.Ctx) error {
		assignment, err := facade.GetRandomAssignment(c.Query("duration_type"))
		if err != nil {
			return fail(c, err)
		}
		// No match is a null payload, not an error.
		return ok(c, assignment)
	})

	app.Get("/assignments/progress", func(c *fiber.Ctx) error {
		progress, err := facade.GetMyProgress(middleware.SessionFromCtx(c))
		if err != nil {
			return fail(c, err)
		}
		return ok(c, progress)
	})

	// Accepting works without a session: the store mints an anonymous one
	// and hands it back, so the client must persist data.session.
	app.Post("/assignments/:id/accept", func(c *fiber.Ctx) error {
		progress, sess, err := facade.AcceptAssignment(middleware.SessionFromCtx(c), c.Params("id"))
		if err != nil && errors.Is(err, services.ErrPartialWrite) {
			return partial(c, fiber.Map{"progress": progress, "session": sess}, err)
		}
		if err != nil {
			return fail(c, err)
		}
		return ok(c, fiber.Map{"progress": progress, "session": sess})
	})

	app.Post("/assignments/progress/:id/complete", func(c *fiber.Ctx) error {
		var req struct {
			Notes string `json:"notes"`
		}
		_ = c.BodyParser(&req) // empty body means empty notes

		progress, err := facade.CompleteAssignment(middleware.SessionFromCtx(c), c.Params("id"), req.Notes)
		if err != nil && errors.Is(err, services.ErrPartialWrite) {
			return partial(c, progress, err)
		}
		if err != nil {
			return fail(c, err)
		}
		return ok(c, progress)
	})

	// 🔐 Secured — publishing needs a signed-in agent
	app.Post("/assignments", middleware.RequireSession(), func(c *fiber.Ctx) error {
		var assignment models.Assignment
		if err := c.BodyParser(&assignment); err != nil {
			return fail(c, services.ErrValidation)
		}

		created, err := facade.CreateAssignment(middleware.SessionFromCtx(c), &assignment)
		if err != nil {
			return fail(c, err)
		}
		return ok(c, created)
	})
}
