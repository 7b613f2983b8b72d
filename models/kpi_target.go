package models

import (
	"time"
)

// KPITarget is the monthly quota pair for one representative. At most one
// live row exists per (user_id, month, year); setting a target for an
// existing key overwrites it and refreshes CreatedDate. There is no history
// of target revisions — the previous values are gone once overwritten.
type KPITarget struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"-"`
	UserID       int64     `gorm:"not null;uniqueIndex:idx_target_key,priority:1" json:"user_id"`
	Month        int       `gorm:"not null;uniqueIndex:idx_target_key,priority:2" json:"month"`
	Year         int       `gorm:"not null;uniqueIndex:idx_target_key,priority:3" json:"year"`
	MeetupTarget int       `gorm:"not null" json:"meetup_target"`
	SalesTarget  float64   `gorm:"not null" json:"sales_target"`
	CreatedDate  time.Time `gorm:"not null" json:"created_date"`
}

func (t *KPITarget) Validate() error {
	if t.UserID <= 0 {
		return &ValidationError{Field: "user_id", Message: "must be a positive integer"}
	}
	if err := ValidateMonthYear(t.Month, t.Year); err != nil {
		return err
	}
	if err := ValidateMeetupTarget(t.MeetupTarget); err != nil {
		return err
	}
	if err := ValidateSalesTarget(t.SalesTarget); err != nil {
		return err
	}
	return ValidateNotFuture("created_date", t.CreatedDate)
}
