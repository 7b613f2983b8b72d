package services

import (
	"errors"
	"log"
	"time"

	"sales-kpi-bot/models"

	"gorm.io/gorm"
)

type UserService struct {
	DB *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{DB: db}
}

// Register stores a new representative. A second registration for the same
// user_id is rejected with ErrDuplicateRegistration and leaves the original
// row untouched.
func (s *UserService) Register(u *models.User) error {
	if u.RegistrationDate.IsZero() {
		u.RegistrationDate = time.Now()
	}
	if u.Role == "" {
		u.Role = models.RoleSales
	}
	if err := u.Validate(); err != nil {
		return err
	}

	var existing models.User
	err := s.DB.Where("user_id = ?", u.UserID).First(&existing).Error
	if err == nil {
		log.Printf("⚠️  Duplicate registration attempt for user %d", u.UserID)
		return ErrDuplicateRegistration
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return &StoreError{Op: "user lookup", Err: err}
	}

	if err := withRetry("user registration", func() error {
		return s.DB.Create(u).Error
	}); err != nil {
		return err
	}

	log.Printf("✅ Registered user %d (%s)", u.UserID, u.Name)
	return nil
}

// Get returns the registered user or ErrNotFound.
func (s *UserService) Get(userID int64) (*models.User, error) {
	var u models.User
	err := s.DB.Where("user_id = ?", userID).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, &StoreError{Op: "user lookup", Err: err}
	}
	return &u, nil
}

// List returns all registered users in stable registry order.
func (s *UserService) List() ([]models.User, error) {
	var users []models.User
	if err := s.DB.Order("user_id asc").Find(&users).Error; err != nil {
		return nil, &StoreError{Op: "user listing", Err: err}
	}
	return users, nil
}

// ListSalesReps returns only sales-role users, for admin selection menus.
func (s *UserService) ListSalesReps() ([]models.User, error) {
	var users []models.User
	if err := s.DB.Where("role = ?", models.RoleSales).Order("user_id asc").Find(&users).Error; err != nil {
		return nil, &StoreError{Op: "sales rep listing", Err: err}
	}
	return users, nil
}
