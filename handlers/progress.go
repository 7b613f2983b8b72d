// handlers/progress.go
package handlers

import (
	"errors"
	"strconv"
	"time"

	"sales-kpi-bot/middleware"
	"sales-kpi-bot/models"
	"sales-kpi-bot/services"

	"github.com/gofiber/fiber/v2"
)

func SetupProgressRoutes(app *fiber.App, progress *services.ProgressService, roles *services.RoleService) {
	group := app.Group("/api/progress", middleware.CallerContext())

	// Team-wide report. Users without a target for the month are skipped.
	group.Get("/", middleware.RequireRole(roles, models.RoleAdmin), func(c *fiber.Ctx) error {
		month, year := monthYearQuery(c)
		report, err := progress.ComputeAll(month, year)
		if err != nil {
			var vErr *models.ValidationError
			if errors.As(err, &vErr) {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": vErr.Error(),
					"field": vErr.Field,
				})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to compute team progress",
				"cause": err.Error(),
			})
		}
		return c.JSON(fiber.Map{
			"month":    month,
			"year":     year,
			"progress": report,
			"count":    len(report),
		})
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

		month, year := monthYearQuery(c)
		prog, err := progress.Compute(userID, month, year)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrNoTarget):
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
					"error": "no target set for this month",
				})
			default:
				var vErr *models.ValidationError
				if errors.As(err, &vErr) {
					return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
						"error": vErr.Error(),
						"field": vErr.Field,
					})
				}
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"error": "failed to compute progress",
					"cause": err.Error(),
				})
			}
		}

		return c.JSON(fiber.Map{
			"progress": prog,
			"overall":  prog.OverallPercentage(),
			"tier":     prog.Tier(),
		})
	})
}

func monthYearQuery(c *fiber.Ctx) (int, int) {
	now := time.Now()
	month, _ := strconv.Atoi(c.Query("month", strconv.Itoa(int(now.Month()))))
	year, _ := strconv.Atoi(c.Query("year", strconv.Itoa(now.Year())))
	return month, year
}
