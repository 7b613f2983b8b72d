package services

import (
	"errors"
	"log"

	"sales-kpi-bot/models"
)

// ProgressService computes monthly progress by aggregating ledger records
// against stored targets. Results are derived fresh on every call — nothing
// here is cached across requests, since records can arrive between
// computations.
type ProgressService struct {
	Users   *UserService
	Targets *TargetService
	Records *RecordService
}

func NewProgressService(users *UserService, targets *TargetService, records *RecordService) *ProgressService {
	return &ProgressService{Users: users, Targets: targets, Records: records}
}

// Compute builds the UserProgress for one user and month.
//
// A user with no target for the month has no progress to report: Compute
// returns ErrNoTarget, which is a different state from 0% progress. Store
// failures propagate as errors, never as a partial or zeroed result.
func (s *ProgressService) Compute(userID int64, month, year int) (*models.UserProgress, error) {
	if err := models.ValidateMonthYear(month, year); err != nil {
		return nil, err
	}

	target, err := s.Targets.Get(userID, month, year)
	if err != nil {
		return nil, err
	}

	meetups, err := s.Records.Query(RecordQuery{
		UserID: userID, Month: month, Year: year, RecordType: models.RecordTypeMeetup,
	})
	if err != nil {
		return nil, err
	}
	sales, err := s.Records.Query(RecordQuery{
		UserID: userID, Month: month, Year: year, RecordType: models.RecordTypeSale,
	})
	if err != nil {
		return nil, err
	}

	currentMeetups := 0
	for _, r := range meetups {
		currentMeetups += int(r.Value)
	}
	currentSales := 0.0
	for _, r := range sales {
		currentSales += r.Value
	}

	progress := &models.UserProgress{
		UserID:            userID,
		Month:             month,
		Year:              year,
		CurrentMeetups:    currentMeetups,
		MeetupTarget:      target.MeetupTarget,
		CurrentSales:      currentSales,
		SalesTarget:       target.SalesTarget,
		MeetupRecordCount: len(meetups),
		SalesRecordCount:  len(sales),
	}
	progress.CalculatePercentages()
	return progress, nil
}

// ComputeAll fans Compute out over every registered user, in registry
// listing order. Users without a target for the month are skipped, not
// reported as zero. Each returned entry carries the user's name and role.
func (s *ProgressService) ComputeAll(month, year int) ([]models.UserProgress, error) {
	users, err := s.Users.List()
	if err != nil {
		return nil, err
	}

	var all []models.UserProgress
	for _, u := range users {
		progress, err := s.Compute(u.UserID, month, year)
		if errors.Is(err, ErrNoTarget) {
			continue
		}
		if err != nil {
			log.Printf("❌ Progress computation failed for user %d %d/%d: %v", u.UserID, month, year, err)
			return nil, err
		}
		progress.Name = u.Name
		progress.Role = u.Role
		all = append(all, *progress)
	}
	return all, nil
}
