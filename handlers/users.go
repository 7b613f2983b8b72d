// handlers/users.go
package handlers

import (
	"errors"
	"strconv"

	"sales-kpi-bot/middleware"
	"sales-kpi-bot/models"
	"sales-kpi-bot/services"

	"github.com/gofiber/fiber/v2"
)

func SetupUserRoutes(app *fiber.App, users *services.UserService, roles *services.RoleService) {
	group := app.Group("/api/users", middleware.CallerContext())

	group.Post("/", func(c *fiber.Ctx) error {
		type Req struct {
			UserID      int64  `json:"user_id"`
			Name        string `json:"name"`
			Nationality string `json:"nationality"`
			Phone       string `json:"phone"`
			Upline      string `json:"upline"`
		}
		var req Req
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid JSON",
				"cause": err.Error(),
			})
		}

		userID := req.UserID
		if userID == 0 {
			userID = middleware.CallerID(c)
		}
		if userID != middleware.CallerID(c) {
			if err := roles.Require(middleware.CallerID(c), models.RoleAdmin); err != nil {
				return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
					"error":         "only admins can register other users",
					"required_role": models.RoleAdmin,
				})
			}
		}

		user := models.User{
			UserID:      userID,
			Name:        req.Name,
			Nationality: req.Nationality,
			Phone:       req.Phone,
			Upline:      req.Upline,
		}
		if err := users.Register(&user); err != nil {
			var vErr *models.ValidationError
			switch {
			case errors.As(err, &vErr):
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": vErr.Error(),
					"field": vErr.Field,
				})
			case errors.Is(err, services.ErrDuplicateRegistration):
				return c.Status(fiber.StatusConflict).JSON(fiber.Map{
					"error": "user already registered",
				})
			default:
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"error": "registration failed",
					"cause": err.Error(),
				})
			}
		}

		return c.Status(fiber.StatusCreated).JSON(user)
	})

	group.Get("/", middleware.RequireRole(roles, models.RoleAdmin), func(c *fiber.Ctx) error {
		list, err := users.List()
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to list users",
				"cause": err.Error(),
			})
		}
		return c.JSON(fiber.Map{"users": list, "count": len(list)})
	})

	group.Get("/reps", middleware.RequireRole(roles, models.RoleAdmin), func(c *fiber.Ctx) error {
		reps, err := users.ListSalesReps()
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to list sales reps",
				"cause": err.Error(),
			})
		}
		return c.JSON(fiber.Map{"users": reps, "count": len(reps)})
	})

	group.Get("/:id", func(c *fiber.Ctx) error {
		userID, err := strconv.ParseInt(c.Params("id"), 10, 64)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid user id",
			})
		}
		if userID != middleware.CallerID(c) {
			if err := roles.Require(middleware.CallerID(c), models.RoleAdmin); err != nil {
				return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
					"error":         "access denied",
					"required_role": models.RoleAdmin,
				})
			}
		}

		user, err := users.Get(userID)
		if err != nil {
			if errors.Is(err, services.ErrNotFound) {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
					"error": "user not registered",
				})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to fetch user",
				"cause": err.Error(),
			})
		}
		return c.JSON(user)
	})
}
