package models

import (
	"time"
)

// AdminEntry is one row of the mutable admin roster. The running process
// reads admin status from an in-memory cache seeded from this table plus the
// ADMIN_USER_IDS environment list; mutations write here and update the cache
// in the same call.
type AdminEntry struct {
	UserID    int64     `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	Name      string    `json:"name"`
	AddedDate time.Time `gorm:"not null" json:"added_date"`
}
