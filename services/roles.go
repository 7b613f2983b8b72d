package services

import (
	"log"
	"sync"
	"time"

	"sales-kpi-bot/models"

	"gorm.io/gorm"
)

// RoleService classifies callers as admin or sales and gates command
// execution. Admin status is answered from a process-lifetime in-memory set,
// seeded at startup from the union of a static configured list and the
// admin roster table — is-admin checks never hit the store. All mutations go
// through this object so the cache and the roster cannot diverge.
type RoleService struct {
	DB        *gorm.DB
	staticIDs []int64

	mu     sync.RWMutex
	admins map[int64]struct{}
}

func NewRoleService(db *gorm.DB, staticAdminIDs []int64) *RoleService {
	return &RoleService{
		DB:        db,
		staticIDs: staticAdminIDs,
		admins:    make(map[int64]struct{}),
	}
}

// Refresh rebuilds the cache from the static list and the roster table.
// Called once at startup and periodically by the maintenance worker.
func (s *RoleService) Refresh() error {
	var entries []models.AdminEntry
	if err := s.DB.Find(&entries).Error; err != nil {
		return &StoreError{Op: "admin roster load", Err: err}
	}

	admins := make(map[int64]struct{}, len(entries)+len(s.staticIDs))
	for _, id := range s.staticIDs {
		admins[id] = struct{}{}
	}
	for _, e := range entries {
		admins[e.UserID] = struct{}{}
	}

	s.mu.Lock()
	s.admins = admins
	s.mu.Unlock()

	log.Printf("🔐 Admin cache refreshed: %d admins", len(admins))
	return nil
}

// IsAdmin is a pure set-membership check against the cache.
func (s *RoleService) IsAdmin(userID int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.admins[userID]
	return ok
}

// RoleOf returns admin or sales. Every caller holds at least the sales role.
func (s *RoleService) RoleOf(userID int64) string {
	if s.IsAdmin(userID) {
		return models.RoleAdmin
	}
	return models.RoleSales
}

// Require checks the caller against a command's minimum role. Denials are
// logged for audit before being returned — never silently dropped.
func (s *RoleService) Require(userID int64, required string) error {
	if required == models.RoleAdmin && !s.IsAdmin(userID) {
		log.Printf("🚫 Access denied for user %d: requires role %q", userID, required)
		return &AccessDeniedError{UserID: userID, Required: required}
	}
	return nil
}

// AddAdmin writes the roster row and updates the cache in the same call, so
// the running process sees the change immediately.
func (s *RoleService) AddAdmin(userID int64, name string) error {
	if s.IsAdmin(userID) {
		return nil
	}
	entry := models.AdminEntry{UserID: userID, Name: name, AddedDate: time.Now()}
	if err := withRetry("admin add", func() error {
		return s.DB.Create(&entry).Error
	}); err != nil {
		return err
	}

	s.mu.Lock()
	s.admins[userID] = struct{}{}
	s.mu.Unlock()

	log.Printf("🔐 Added admin %d (%s)", userID, name)
	return nil
}

// RemoveAdmin deletes the roster row and evicts the cache entry. Static
// env-configured admins cannot be removed at runtime; Refresh would restore
// them anyway, so their cache entry stays put.
func (s *RoleService) RemoveAdmin(userID int64) error {
	if err := withRetry("admin remove", func() error {
		return s.DB.Delete(&models.AdminEntry{}, "user_id = ?", userID).Error
	}); err != nil {
		return err
	}

	if s.isStaticAdmin(userID) {
		log.Printf("⚠️  Admin %d is in ADMIN_USER_IDS and stays admin until the list changes", userID)
		return nil
	}

	s.mu.Lock()
	delete(s.admins, userID)
	s.mu.Unlock()

	log.Printf("🔐 Removed admin %d", userID)
	return nil
}

func (s *RoleService) isStaticAdmin(userID int64) bool {
	for _, id := range s.staticIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// ListAdmins returns the roster rows (static-only admins have no row).
func (s *RoleService) ListAdmins() ([]models.AdminEntry, error) {
	var entries []models.AdminEntry
	if err := s.DB.Order("user_id asc").Find(&entries).Error; err != nil {
		return nil, &StoreError{Op: "admin roster listing", Err: err}
	}
	return entries, nil
}
