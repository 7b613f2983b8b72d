package services

import (
	"testing"
	"time"

	"sales-kpi-bot/models"

	"github.com/stretchr/testify/require"
)

func TestRefreshUnionsStaticAndRoster(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, db.Create(&models.AdminEntry{UserID: 200, Name: "Roster Admin", AddedDate: time.Now()}).Error)

	roles := NewRoleService(db, []int64{100})
	require.NoError(t, roles.Refresh())

	require.True(t, roles.IsAdmin(100))
	require.True(t, roles.IsAdmin(200))
	require.False(t, roles.IsAdmin(300))

	require.Equal(t, models.RoleAdmin, roles.RoleOf(100))
	require.Equal(t, models.RoleSales, roles.RoleOf(300))
}

func TestRequireDeniesNonAdmins(t *testing.T) {
	db := setupTestDB(t)
	roles := NewRoleService(db, []int64{100})
	require.NoError(t, roles.Refresh())

	require.NoError(t, roles.Require(100, models.RoleAdmin))
	require.NoError(t, roles.Require(300, models.RoleSales))

	err := roles.Require(300, models.RoleAdmin)
	var denied *AccessDeniedError
	require.ErrorAs(t, err, &denied)
	require.Equal(t, int64(300), denied.UserID)
	require.Equal(t, models.RoleAdmin, denied.Required)
}

func TestAddAdminUpdatesCacheImmediately(t *testing.T) {
	db := setupTestDB(t)
	roles := NewRoleService(db, nil)
	require.NoError(t, roles.Refresh())

	require.False(t, roles.IsAdmin(42))
	require.NoError(t, roles.AddAdmin(42, "New Admin"))
	require.True(t, roles.IsAdmin(42))

	entries, err := roles.ListAdmins()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, int64(42), entries[0].UserID)

	// Idempotent
	require.NoError(t, roles.AddAdmin(42, "New Admin"))
	entries, err = roles.ListAdmins()
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestRemoveAdminUpdatesCacheImmediately(t *testing.T) {
	db := setupTestDB(t)
	roles := NewRoleService(db, nil)
	require.NoError(t, roles.Refresh())

	require.NoError(t, roles.AddAdmin(42, "Temp Admin"))
	require.True(t, roles.IsAdmin(42))

	require.NoError(t, roles.RemoveAdmin(42))
	require.False(t, roles.IsAdmin(42))

	entries, err := roles.ListAdmins()
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestRemoveStaticAdminStaysAdmin(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, db.Create(&models.AdminEntry{UserID: 100, Name: "Static Admin", AddedDate: time.Now()}).Error)

	roles := NewRoleService(db, []int64{100})
	require.NoError(t, roles.Refresh())

	// The roster row goes, the admin bit stays
	require.NoError(t, roles.RemoveAdmin(100))
	require.True(t, roles.IsAdmin(100))

	entries, err := roles.ListAdmins()
	require.NoError(t, err)
	require.Empty(t, entries)
}
