package services

import (
	"errors"
	"log"
	"time"

	"sales-kpi-bot/models"

	"gorm.io/gorm"
)

type TargetService struct {
	DB *gorm.DB
}

func NewTargetService(db *gorm.DB) *TargetService {
	return &TargetService{DB: db}
}

// Upsert sets the monthly quota pair for (userID, month, year). An existing
// row is overwritten in place and its CreatedDate refreshed — prior values
// are not recoverable. Two concurrent upserts for the same key race
// last-write-wins; the store provides no locking.
func (s *TargetService) Upsert(userID int64, month, year, meetupTarget int, salesTarget float64) (*models.KPITarget, error) {
	target := &models.KPITarget{
		UserID:       userID,
		Month:        month,
		Year:         year,
		MeetupTarget: meetupTarget,
		SalesTarget:  salesTarget,
		CreatedDate:  time.Now(),
	}
	if err := target.Validate(); err != nil {
		return nil, err
	}

	err := withRetry("target upsert", func() error {
		return s.DB.Transaction(func(tx *gorm.DB) error {
			var existing models.KPITarget
			err := tx.Where("user_id = ? AND month = ? AND year = ?", userID, month, year).
				First(&existing).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return tx.Create(target).Error
			}
			if err != nil {
				return err
			}
			existing.MeetupTarget = meetupTarget
			existing.SalesTarget = salesTarget
			existing.CreatedDate = target.CreatedDate
			if err := tx.Save(&existing).Error; err != nil {
				return err
			}
			*target = existing
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	log.Printf("🎯 Targets set for user %d %d/%d: meetups=%d sales=%.2f",
		userID, month, year, meetupTarget, salesTarget)
	return target, nil
}

// Get returns the target for the key, or ErrNoTarget when none was ever set.
func (s *TargetService) Get(userID int64, month, year int) (*models.KPITarget, error) {
	var target models.KPITarget
	err := s.DB.Where("user_id = ? AND month = ? AND year = ?", userID, month, year).
		First(&target).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNoTarget
	}
	if err != nil {
		return nil, &StoreError{Op: "target lookup", Err: err}
	}
	return &target, nil
}

// ListForUser returns every target ever set for the user, newest period last.
func (s *TargetService) ListForUser(userID int64) ([]models.KPITarget, error) {
	var targets []models.KPITarget
	if err := s.DB.Where("user_id = ?", userID).
		Order("year asc, month asc").Find(&targets).Error; err != nil {
		return nil, &StoreError{Op: "target listing", Err: err}
	}
	return targets, nil
}
