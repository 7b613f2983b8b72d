// handlers/health.go
package handlers

import (
	"sales-kpi-bot/services"
	"sales-kpi-bot/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupHealthRoutes(app *fiber.App, db *gorm.DB, conversations *services.ConversationManager) {
	app.Get("/healthz", func(c *fiber.Ctx) error {
		status := fiber.StatusOK
		dbOK := true
		if sqlDB, err := db.DB(); err != nil || sqlDB.Ping() != nil {
			dbOK = false
			status = fiber.StatusServiceUnavailable
		}
		return c.Status(status).JSON(fiber.Map{
			"database":             dbOK,
			"photo_storage":        utils.PhotoStorageReady(),
			"active_conversations": conversations.ActiveCount(),
		})
	})
}
