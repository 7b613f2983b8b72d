package services

import (
	"log"
	"time"

	"sales-kpi-bot/models"

	"gorm.io/gorm"
)

type RecordService struct {
	DB *gorm.DB
}

func NewRecordService(db *gorm.DB) *RecordService {
	return &RecordService{DB: db}
}

// RecordQuery filters the ledger. Month and Year bound the activity date
// (RecordDate), never the submission date; both must be set together to
// take effect. RecordType narrows to one type when non-empty.
type RecordQuery struct {
	UserID     int64
	Month      int
	Year       int
	RecordType string
}

// Append adds one submission to the ledger. Rows are never mutated or
// deleted afterwards. The write is retried on transient failure without an
// idempotency key, so a duplicate append is possible when a retry follows a
// successful-but-unacknowledged write.
func (s *RecordService) Append(rec *models.KPIRecord) error {
	if rec.SubmissionDate.IsZero() {
		rec.SubmissionDate = time.Now()
	}
	if rec.RecordDate.IsZero() {
		rec.RecordDate = rec.SubmissionDate
	}
	if err := rec.Validate(); err != nil {
		return err
	}
	if err := withRetry("record append", func() error {
		return s.DB.Create(rec).Error
	}); err != nil {
		return err
	}
	log.Printf("📝 Recorded %s for user %d: %v", rec.RecordType, rec.UserID, rec.Value)
	return nil
}

// Query returns matching records in ledger append order. Append order is not
// guaranteed chronological by activity date, since records may be backdated.
func (s *RecordService) Query(q RecordQuery) ([]models.KPIRecord, error) {
	db := s.DB.Where("user_id = ?", q.UserID)
	if q.Month != 0 && q.Year != 0 {
		start := time.Date(q.Year, time.Month(q.Month), 1, 0, 0, 0, 0, time.Local)
		db = db.Where("record_date >= ? AND record_date < ?", start, start.AddDate(0, 1, 0))
	}
	if q.RecordType != "" {
		db = db.Where("record_type = ?", q.RecordType)
	}

	var records []models.KPIRecord
	if err := db.Order("id asc").Find(&records).Error; err != nil {
		return nil, &StoreError{Op: "record query", Err: err}
	}
	return records, nil
}
