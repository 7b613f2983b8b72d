// handlers/records.go
package handlers

import (
	"errors"
	"io"
	"log"
	"strconv"
	"time"

	"sales-kpi-bot/middleware"
	"sales-kpi-bot/models"
	"sales-kpi-bot/services"
	"sales-kpi-bot/utils"

	"github.com/gofiber/fiber/v2"
)

func SetupRecordRoutes(app *fiber.App, records *services.RecordService, users *services.UserService, roles *services.RoleService) {
	group := app.Group("/api/records", middleware.CallerContext())

	// Submissions carry the photo as multipart form data. The photo is
	// uploaded first so a storage failure never leaves a record without
	// evidence.
	group.Post("/", func(c *fiber.Ctx) error {
		callerID := middleware.CallerID(c)
		if _, err := users.Get(callerID); err != nil {
			if errors.Is(err, services.ErrNotFound) {
				return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
					"error": "you must register before submitting records",
				})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to verify registration",
				"cause": err.Error(),
			})
		}

		recordType := c.FormValue("record_type")
		if recordType != models.RecordTypeMeetup && recordType != models.RecordTypeSale {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "record_type must be meetup or sale",
			})
		}

		value, err := strconv.ParseFloat(c.FormValue("value"), 64)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "value must be a number",
			})
		}

		recordDate := time.Now()
		if raw := c.FormValue("record_date"); raw != "" {
			recordDate, err = time.Parse("2006-01-02", raw)
			if err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "record_date must be YYYY-MM-DD",
				})
			}
		}

		// Value and date checks run before the upload so a rejected
		// submission never leaves an orphaned evidence object.
		if err := validateSubmission(recordType, value, recordDate); err != nil {
			var vErr *models.ValidationError
			if errors.As(err, &vErr) {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": vErr.Error(),
					"field": vErr.Field,
				})
			}
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		}

		fileHeader, err := c.FormFile("photo")
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "photo is required",
			})
		}
		file, err := fileHeader.Open()
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "failed to open photo",
				"cause": err.Error(),
			})
		}
		defer file.Close()
		data, err := io.ReadAll(file)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to read photo",
				"cause": err.Error(),
			})
		}

		filename := utils.GeneratePhotoFilename(callerID, recordType, recordDate)
		category := utils.PhotoCategory(recordType)
		contentType := fileHeader.Header.Get("Content-Type")
		if contentType == "" {
			contentType = "image/jpeg"
		}
		photoLink, err := utils.UploadPhoto(c.Context(), data, filename, category, recordDate.Year(), int(recordDate.Month()), contentType)
		if err != nil {
			log.Printf("❌ Photo upload failed for user %d: %v", callerID, err)
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
				"error": "photo upload failed",
				"cause": err.Error(),
			})
		}

		rec := models.KPIRecord{
			UserID:     callerID,
			RecordType: recordType,
			Value:      value,
			PhotoLink:  photoLink,
			RecordDate: recordDate,
		}
		if err := records.Append(&rec); err != nil {
			var vErr *models.ValidationError
			if errors.As(err, &vErr) {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": vErr.Error(),
					"field": vErr.Field,
				})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to save record",
				"cause": err.Error(),
			})
		}

		return c.Status(fiber.StatusCreated).JSON(rec)
	})

	group.Get("/", recordQueryHandler(records, roles))
}

// validateSubmission runs the record field checks that don't depend on the
// stored photo link.
func validateSubmission(recordType string, value float64, recordDate time.Time) error {
	if err := models.ValidateNotFuture("record_date", recordDate); err != nil {
		return err
	}
	if recordType == models.RecordTypeMeetup {
		if value != float64(int(value)) {
			return &models.ValidationError{Field: "value", Message: "client count must be a whole number"}
		}
		return models.ValidateMeetupValue(int(value))
	}
	return models.ValidateSaleValue(value)
}

func recordQueryHandler(records *services.RecordService, roles *services.RoleService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		callerID := middleware.CallerID(c)
		q := services.RecordQuery{
			UserID:     callerID,
			RecordType: c.Query("type"),
		}
		if raw := c.Query("user_id"); raw != "" {
			userID, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid user_id"})
			}
			q.UserID = userID
		}
		if q.UserID != callerID {
			if err := roles.Require(callerID, models.RoleAdmin); err != nil {
				return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
					"error":         "access denied",
					"required_role": models.RoleAdmin,
				})
			}
		}
		q.Month, _ = strconv.Atoi(c.Query("month"))
		q.Year, _ = strconv.Atoi(c.Query("year"))

		list, err := records.Query(q)
		if err != nil {
			var vErr *models.ValidationError
			if errors.As(err, &vErr) {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": vErr.Error(),
					"field": vErr.Field,
				})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to query records",
				"cause": err.Error(),
			})
		}
		return c.JSON(fiber.Map{"records": list, "count": len(list)})
	}
}
