// handlers/targets.go
package handlers

import (
	"errors"
	"strconv"

	"sales-kpi-bot/middleware"
	"sales-kpi-bot/models"
	"sales-kpi-bot/services"

	"github.com/gofiber/fiber/v2"
)

func SetupTargetRoutes(app *fiber.App, targets *services.TargetService, roles *services.RoleService) {
	group := app.Group("/api/targets", middleware.CallerContext())

	// Setting a target overwrites any existing one for the same month.
	group.Put("/", middleware.RequireRole(roles, models.RoleAdmin), func(c *fiber.Ctx) error {
		type Req struct {
			UserID       int64   `json:"user_id"`
			Month        int     `json:"month"`
			Year         int     `json:"year"`
			MeetupTarget int     `json:"meetup_target"`
			SalesTarget  float64 `json:"sales_target"`
		}
		var req Req
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid JSON",
				"cause": err.Error(),
			})
		}

		target, err := targets.Upsert(req.UserID, req.Month, req.Year, req.MeetupTarget, req.SalesTarget)
		if err != nil {
			var vErr *models.ValidationError
			if errors.As(err, &vErr) {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": vErr.Error(),
					"field": vErr.Field,
				})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to set target",
				"cause": err.Error(),
			})
		}
		return c.JSON(target)
	})

	group.Get("/:userID/:year/:month", func(c *fiber.Ctx) error {
		userID, err := strconv.ParseInt(c.Params("userID"), 10, 64)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid user id"})
		}
		year, _ := strconv.Atoi(c.Params("year"))
		month, _ := strconv.Atoi(c.Params("month"))

		if userID != middleware.CallerID(c) {
			if err := roles.Require(middleware.CallerID(c), models.RoleAdmin); err != nil {
				return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
					"error":         "access denied",
					"required_role": models.RoleAdmin,
				})
			}
		}

		target, err := targets.Get(userID, month, year)
		if err != nil {
			if errors.Is(err, services.ErrNoTarget) {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
					"error": "no target set for this month",
				})
			}
			var vErr *models.ValidationError
			if errors.As(err, &vErr) {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": vErr.Error(),
					"field": vErr.Field,
				})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to fetch target",
				"cause": err.Error(),
			})
		}
		return c.JSON(target)
	})

	group.Get("/:userID", func(c *fiber.Ctx) error {
		userID, err := strconv.ParseInt(c.Params("userID"), 10, 64)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid user id"})
		}

		if userID != middleware.CallerID(c) {
			if err := roles.Require(middleware.CallerID(c), models.RoleAdmin); err != nil {
				return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
					"error":         "access denied",
					"required_role": models.RoleAdmin,
				})
			}
		}

		list, err := targets.ListForUser(userID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to list targets",
				"cause": err.Error(),
			})
		}
		return c.JSON(fiber.Map{"targets": list, "count": len(list)})
	})
}
