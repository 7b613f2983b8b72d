package models

import (
	"math"
)

// Status tiers derived from overall completion. Presentation labels only —
// recomputed on every request, never stored.
const (
	TierAchieved  = "All targets achieved"
	TierExcellent = "Excellent"
	TierGood      = "Good progress"
	TierMaking    = "Making progress"
	TierStarting  = "Just getting started"
)

// UserProgress is the derived comparison of summed records against a target
// for one month. It is recomputed on every request since records can arrive
// between computations. Name and Role are attached on fan-out listings.
type UserProgress struct {
	UserID int64 `json:"user_id"`
	Month  int   `json:"month"`
	Year   int   `json:"year"`

	CurrentMeetups   int     `json:"current_meetups"`
	MeetupTarget     int     `json:"meetup_target"`
	MeetupPercentage float64 `json:"meetup_percentage"`

	CurrentSales    float64 `json:"current_sales"`
	SalesTarget     float64 `json:"sales_target"`
	SalesPercentage float64 `json:"sales_percentage"`

	MeetupRecordCount int `json:"meetup_records_count"`
	SalesRecordCount  int `json:"sales_records_count"`

	Name string `json:"name,omitempty"`
	Role string `json:"role,omitempty"`
}

// CalculatePercentages fills both percentage fields from the current values
// and targets. Percentages clamp to [0,100] and round to 2 decimal places;
// a zero target yields 0, not 100 and not a division error.
func (p *UserProgress) CalculatePercentages() {
	p.MeetupPercentage = completionPercentage(float64(p.CurrentMeetups), float64(p.MeetupTarget))
	p.SalesPercentage = completionPercentage(p.CurrentSales, p.SalesTarget)
}

// OverallPercentage is the arithmetic mean of the two clamped percentages.
// A user at 200% meetups and 0% sales shows 50% overall, same as 50%/50% —
// both targets matter equally, raw over-delivery earns no extra credit.
func (p *UserProgress) OverallPercentage() float64 {
	return (p.MeetupPercentage + p.SalesPercentage) / 2
}

// Tier maps overall completion to the five-level status label, inclusive
// lower bounds.
func (p *UserProgress) Tier() string {
	switch overall := p.OverallPercentage(); {
	case overall >= 100:
		return TierAchieved
	case overall >= 75:
		return TierExcellent
	case overall >= 50:
		return TierGood
	case overall >= 25:
		return TierMaking
	default:
		return TierStarting
	}
}

func (p *UserProgress) IsMeetupTargetAchieved() bool {
	return p.CurrentMeetups >= p.MeetupTarget
}

func (p *UserProgress) IsSalesTargetAchieved() bool {
	return p.CurrentSales >= p.SalesTarget
}

func (p *UserProgress) IsAllTargetsAchieved() bool {
	return p.IsMeetupTargetAchieved() && p.IsSalesTargetAchieved()
}

func completionPercentage(current, target float64) float64 {
	if target <= 0 {
		return 0
	}
	pct := math.Min(current/target*100, 100)
	return math.Round(pct*100) / 100
}
