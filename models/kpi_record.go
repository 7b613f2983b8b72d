package models

import (
	"strings"
	"time"
)

// Record types. Meetup values are client counts, sale values dollar amounts.
const (
	RecordTypeMeetup = "meetup"
	RecordTypeSale   = "sale"
)

// KPIRecord is one dated, photo-evidenced submission. The ledger is
// append-only: rows are never mutated or deleted. RecordDate is the activity
// date (may be backdated); SubmissionDate is when it was recorded. Progress
// aggregation filters on RecordDate, never SubmissionDate.
//
// The composite index keeps month-range queries cheap as the ledger grows;
// it does not change query results or ordering.
type KPIRecord struct {
	ID             uint      `gorm:"primaryKey;autoIncrement" json:"-"`
	UserID         int64     `gorm:"not null;index:idx_record_lookup,priority:1" json:"user_id"`
	RecordType     string    `gorm:"not null;index:idx_record_lookup,priority:2" json:"record_type"`
	RecordDate     time.Time `gorm:"not null;index:idx_record_lookup,priority:3" json:"record_date"`
	Value          float64   `gorm:"not null" json:"value"`
	PhotoLink      string    `gorm:"not null;size:500" json:"photo_link"`
	SubmissionDate time.Time `gorm:"not null" json:"submission_date"`
}

func (r *KPIRecord) Validate() error {
	if r.UserID <= 0 {
		return &ValidationError{Field: "user_id", Message: "must be a positive integer"}
	}
	if err := ValidateNotFuture("record_date", r.RecordDate); err != nil {
		return err
	}
	switch r.RecordType {
	case RecordTypeMeetup:
		// Meetup counts are whole clients; a fractional count is malformed.
		if r.Value != float64(int(r.Value)) {
			return &ValidationError{Field: "value", Message: "client count must be a whole number"}
		}
		if err := ValidateMeetupValue(int(r.Value)); err != nil {
			return err
		}
	case RecordTypeSale:
		if err := ValidateSaleValue(r.Value); err != nil {
			return err
		}
	default:
		return &ValidationError{Field: "record_type", Message: "must be either 'meetup' or 'sale'"}
	}
	if err := ValidatePhotoLink(r.PhotoLink); err != nil {
		return err
	}
	if err := ValidateNotFuture("submission_date", r.SubmissionDate); err != nil {
		return err
	}
	r.PhotoLink = strings.TrimSpace(r.PhotoLink)
	return nil
}
