// handlers/admins.go
package handlers

import (
	"strconv"

	"sales-kpi-bot/middleware"
	"sales-kpi-bot/models"
	"sales-kpi-bot/services"

	"github.com/gofiber/fiber/v2"
)

func SetupAdminRoutes(app *fiber.App, roles *services.RoleService) {
	group := app.Group("/api/admins",
		middleware.CallerContext(),
		middleware.RequireRole(roles, models.RoleAdmin))

	group.Get("/", func(c *fiber.Ctx) error {
		admins, err := roles.ListAdmins()
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to list admins",
				"cause": err.Error(),
			})
		}
		return c.JSON(fiber.Map{"admins": admins, "count": len(admins)})
	})

	group.Post("/", func(c *fiber.Ctx) error {
		type Req struct {
			UserID int64  `json:"user_id"`
			Name   string `json:"name"`
		}
		var req Req
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid JSON",
				"cause": err.Error(),
			})
		}
		if req.UserID <= 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "user_id must be positive",
			})
		}

		if err := roles.AddAdmin(req.UserID, req.Name); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to add admin",
				"cause": err.Error(),
			})
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"message": "admin added",
			"user_id": req.UserID,
		})
	})

	group.Delete("/:id", func(c *fiber.Ctx) error {
		userID, err := strconv.ParseInt(c.Params("id"), 10, 64)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid user id"})
		}
		if err := roles.RemoveAdmin(userID); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to remove admin",
				"cause": err.Error(),
			})
		}
		return c.JSON(fiber.Map{
			"message": "admin removed",
			"user_id": userID,
		})
	})

	group.Post("/refresh", func(c *fiber.Ctx) error {
		if err := roles.Refresh(); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to refresh admin cache",
				"cause": err.Error(),
			})
		}
		return c.JSON(fiber.Map{"message": "admin cache refreshed"})
	})
}
