package services

import (
	"errors"
	"log"
	"time"

	"gorm.io/gorm"
)

const (
	retryAttempts     = 3
	retryInitialDelay = 500 * time.Millisecond
	retryBackoff      = 2.0
)

// withRetry runs fn up to retryAttempts times with exponential backoff.
// Record-not-found is never retried. Appends retried through here are
// at-least-once: a retry after a successful-but-unacknowledged write can
// duplicate a row. Known gap, accepted.
func withRetry(op string, fn func() error) error {
	var err error
	delay := retryInitialDelay
	for attempt := 1; attempt <= retryAttempts; attempt++ {
		err = fn()
		if err == nil {
			return nil
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if attempt < retryAttempts {
			log.Printf("⚠️  %s attempt %d/%d failed: %v — retrying in %s", op, attempt, retryAttempts, err, delay)
			time.Sleep(delay)
			delay = time.Duration(float64(delay) * retryBackoff)
		}
	}
	log.Printf("❌ %s failed after %d attempts: %v", op, retryAttempts, err)
	return &StoreError{Op: op, Err: err}
}
