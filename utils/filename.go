package utils

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

// PhotoCategory maps a record type to its storage folder.
func PhotoCategory(recordType string) string {
	return slug.Make(recordType) + "s" // "meetup" -> "meetups", "sale" -> "sales"
}

// GeneratePhotoFilename builds a unique, collision-safe object name for one
// submission photo. The uuid suffix keeps two submissions in the same second
// from clobbering each other.
func GeneratePhotoFilename(userID int64, recordType string, t time.Time) string {
	return fmt.Sprintf("%s_%d_%s_%s.jpg",
		slug.Make(recordType),
		userID,
		t.Format("20060102_150405"),
		uuid.NewString()[:8],
	)
}
