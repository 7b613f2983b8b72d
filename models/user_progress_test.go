package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCalculatePercentagesClampsAt100(t *testing.T) {
	p := UserProgress{
		CurrentMeetups: 25,
		MeetupTarget:   10,
		CurrentSales:   500,
		SalesTarget:    1000,
	}
	p.CalculatePercentages()
	require.Equal(t, 100.0, p.MeetupPercentage)
	require.Equal(t, 50.0, p.SalesPercentage)
	require.Equal(t, 75.0, p.OverallPercentage())
}

func TestCalculatePercentagesZeroTarget(t *testing.T) {
	p := UserProgress{
		CurrentMeetups: 5,
		MeetupTarget:   0,
		CurrentSales:   100,
		SalesTarget:    0,
	}
	p.CalculatePercentages()
	require.Equal(t, 0.0, p.MeetupPercentage)
	require.Equal(t, 0.0, p.SalesPercentage)
	require.Equal(t, 0.0, p.OverallPercentage())
}

func TestCalculatePercentagesRounding(t *testing.T) {
	p := UserProgress{
		CurrentMeetups: 1,
		MeetupTarget:   3,
		CurrentSales:   2,
		SalesTarget:    3,
	}
	p.CalculatePercentages()
	require.Equal(t, 33.33, p.MeetupPercentage)
	require.Equal(t, 66.67, p.SalesPercentage)
}

func TestTierBoundaries(t *testing.T) {
	cases := []struct {
		meetupPct float64
		salesPct  float64
		want      string
	}{
		{100, 100, TierAchieved},
		{100, 99.98, TierExcellent},
		{75, 75, TierExcellent},
		{75, 74.98, TierGood},
		{50, 50, TierGood},
		{50, 49.98, TierMaking},
		{25, 25, TierMaking},
		{25, 24.98, TierStarting},
		{0, 0, TierStarting},
	}
	for _, tc := range cases {
		p := UserProgress{MeetupPercentage: tc.meetupPct, SalesPercentage: tc.salesPct}
		require.Equal(t, tc.want, p.Tier(), "meetup=%.2f sales=%.2f", tc.meetupPct, tc.salesPct)
	}
}

func TestAchievementChecksUseRawValues(t *testing.T) {
	p := UserProgress{
		CurrentMeetups: 12,
		MeetupTarget:   10,
		CurrentSales:   999.99,
		SalesTarget:    1000,
	}
	require.True(t, p.IsMeetupTargetAchieved())
	require.False(t, p.IsSalesTargetAchieved())
	require.False(t, p.IsAllTargetsAchieved())
}
