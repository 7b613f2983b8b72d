package models

import (
	"strings"
	"time"
)

// Roles a registered user can hold. Admin is a strict superset of sales:
// every sales-tier operation is also available to admins.
const (
	RoleAdmin = "admin"
	RoleSales = "sales"
)

// User holds one sales representative's registration data. Created once at
// registration and immutable afterwards except for role changes done through
// the admin roster.
type User struct {
	UserID           int64     `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	Name             string    `gorm:"not null" json:"name"`
	Nationality      string    `gorm:"not null" json:"nationality"`
	Phone            string    `gorm:"not null" json:"phone"`
	Upline           string    `gorm:"not null" json:"upline"` // name of the person who referred them
	RegistrationDate time.Time `gorm:"not null" json:"registration_date"`
	Role             string    `gorm:"not null;default:sales" json:"role"`
}

// Validate checks all registration fields and trims string inputs.
// Returns a *ValidationError naming the first offending field.
func (u *User) Validate() error {
	if u.UserID <= 0 {
		return &ValidationError{Field: "user_id", Message: "must be a positive integer"}
	}
	name, err := ValidateName("name", u.Name, 100)
	if err != nil {
		return err
	}
	nationality, err := ValidateName("nationality", u.Nationality, 50)
	if err != nil {
		return err
	}
	if err := ValidatePhone(u.Phone); err != nil {
		return err
	}
	upline, err := ValidateName("upline", u.Upline, 100)
	if err != nil {
		return err
	}
	if err := ValidateNotFuture("registration_date", u.RegistrationDate); err != nil {
		return err
	}
	if u.Role != RoleAdmin && u.Role != RoleSales {
		return &ValidationError{Field: "role", Message: "must be either 'admin' or 'sales'"}
	}

	u.Name = name
	u.Nationality = nationality
	u.Phone = strings.TrimSpace(u.Phone)
	u.Upline = upline
	return nil
}
