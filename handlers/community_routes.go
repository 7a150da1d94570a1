// handlers/community_routes.go — missions, teams, leaderboard, stats
package handlers

import (
	"errors"
	"strconv"

	"mission-dispatch-system/middleware"
	"mission-dispatch-system/models"
	"mission-dispatch-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupCommunityRoutes(app *fiber.App, facade *services.Facade) {
	app.Get("/missions", func(c *fiber.Ctx) error {
		missions, err := facade.GetMissions()
		if err != nil {
			return fail(c, err)
		}
		return ok(c, missions)
	})

	app.Post("/missions/:id/join", func(c *fiber.Ctx) error {
		progress, sess, err := facade.JoinMission(middleware.SessionFromCtx(c), c.Params("id"))
		if err != nil && errors.Is(err, services.ErrPartialWrite) {
			return partial(c, fiber.Map{"progress": progress, "session": sess}, err)
		}
		if err != nil {
			return fail(c, err)
		}
		return ok(c, fiber.Map{"progress": progress, "session": sess})
	})

	app.Get("/teams", func(c *fiber.Ctx) error {
		teams, err := facade.GetTeams()
		if err != nil {
			return fail(c, err)
		}
		return ok(c, teams)
	})

	app.Get("/leaderboard", func(c *fiber.Ctx) error {
		limit, _ := strconv.Atoi(c.Query("limit", "10"))
		entries, err := facade.GetLeaderboard(limit)
		if err != nil {
			return fail(c, err)
		}
		return ok(c, entries)
	})

	app.Get("/stats", func(c *fiber.Ctx) error {
		stats, err := facade.GetStats()
		if err != nil {
			return fail(c, err)
		}
		return ok(c, stats)
	})

	// 🔐 Secured — creating and joining teams, creating missions
	requireSession := middleware.RequireSession()

	app.Post("/missions", requireSession, func(c *fiber.Ctx) error {
		var mission models.Mission
		if err := c.BodyParser(&mission); err != nil {
			return fail(c, services.ErrValidation)
		}

		created, err := facade.CreateMission(middleware.SessionFromCtx(c), &mission)
		if err != nil {
			return fail(c, err)
		}
		return ok(c, created)
	})

	app.Post("/teams", requireSession, func(c *fiber.Ctx) error {
		var team models.Team
		if err := c.BodyParser(&team); err != nil {
			return fail(c, services.ErrValidation)
		}

		created, err := facade.CreateTeam(middleware.SessionFromCtx(c), &team)
		if err != nil && errors.Is(err, services.ErrPartialWrite) {
			return partial(c, created, err)
		}
		if err != nil {
			return fail(c, err)
		}
		return ok(c, created)
	})

	app.Post("/teams/:id/join", requireSession, func(c *fiber.Ctx) error {
		member, err := facade.JoinTeam(middleware.SessionFromCtx(c), c.Params("id"))
		if err != nil && errors.Is(err, services.ErrPartialWrite) {
			return partial(c, member, err)
		}
		if err != nil {
			return fail(c, err)
		}
		return ok(c, member)
	})

	app.Get("/teams/mine", requireSession, func(c *fiber.Ctx) error {
		memberships, err := facade.GetMyTeams(middleware.SessionFromCtx(c))
		if err != nil {
			return fail(c, err)
		}
		return ok(c, memberships)
	})
}
