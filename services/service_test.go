package services

import (
	"fmt"
	"testing"

	"sales-kpi-bot/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Use a per-test in-memory database to avoid cross-test interference
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.KPITarget{},
		&models.KPIRecord{},
		&models.AdminEntry{},
	))
	return db
}

func registerTestUser(t *testing.T, users *UserService, userID int64, name string) {
	t.Helper()
	require.NoError(t, users.Register(&models.User{
		UserID:      userID,
		Name:        name,
		Nationality: "Thai",
		Phone:       "0812345678",
		Upline:      "Head Office",
	}))
}
